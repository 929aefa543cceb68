package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/ramonehamilton/mtg-decksampler/internal/charts"
	"github.com/ramonehamilton/mtg-decksampler/internal/config"
	"github.com/ramonehamilton/mtg-decksampler/internal/export"
	"github.com/ramonehamilton/mtg-decksampler/internal/metrics"
	"github.com/ramonehamilton/mtg-decksampler/internal/storage"
)

func runSample(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("sample", flag.ExitOnError)
	n := fs.Int("n", cfg.Sampler.N, "Number of rows")
	fTrue := fs.Float64("f-true", cfg.Sampler.FTrue, "Fraction of same-deck pairs")
	fHalf := fs.Float64("f-half", cfg.Sampler.FHalf, "Fraction of deck/complement pairs")
	noLands := fs.Bool("no-lands", cfg.Sampler.NoLands, "Exclude lands")
	shuffle := fs.Bool("shuffle", cfg.Sampler.Shuffle, "Shuffle rows")
	seed := fs.Uint64("seed", cfg.Sampler.Seed, "RNG seed (0 = random)")
	dir := fs.String("dir", cfg.Decks.Dir, "Deck directory (default: decks stored in the database)")
	bulkFile := fs.String("bulk", "", "Scryfall bulk file (default: universe stored in the database)")
	out := fs.String("out", "", "Output path (default: stdout)")
	format := fs.String("format", "", "Output format: csv, json or jsonl (default: from -out extension, else csv)")
	overwrite := fs.Bool("overwrite", false, "Replace an existing output file")
	chartPath := fs.String("chart", "", "Also write an HTML chart of the label split")
	record := fs.Bool("record", true, "Record the run in the database")
	if err := fs.Parse(args); err != nil {
		return err
	}

	outFormat := export.FormatFor(*out, export.FormatCSV)
	if *format != "" {
		f, err := export.ParseFormat(*format)
		if err != nil {
			return err
		}
		outFormat = f
	}

	ctx := context.Background()

	var store *storage.Service
	if *bulkFile == "" || *dir == "" || *record {
		s, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer closeStore(s)
		store = s
	}

	universe, err := loadUniverse(ctx, cfg, store, *bulkFile)
	if err != nil {
		return err
	}

	m := metrics.NewSamplerMetrics(nil)
	rng := newRand(*seed)
	sampler, _, err := loadSampler(ctx, cfg, store, universe, *dir, deckOptions(cfg, rng, m))
	if err != nil {
		return err
	}

	start := time.Now()
	sample, err := sampler.Sample(*n, *fTrue, *fHalf, *noLands)
	if err != nil {
		return err
	}
	if *shuffle {
		sample.Shuffle(rng)
	}
	took := time.Since(start)
	m.ObserveSample(sample, took)

	if *out == "" {
		err = export.WriteSample(os.Stdout, outFormat, sample, false)
	} else {
		err = export.NewExporter(export.Options{Format: outFormat, FilePath: *out, Overwrite: *overwrite}).Export(sample)
	}
	if err != nil {
		return err
	}

	if *chartPath != "" {
		chartConfig := charts.DefaultChartConfig()
		chartConfig.Title = "Sample labels"
		chartConfig.Subtitle = fmt.Sprintf("%d rows from %d decks", sample.Len(), sampler.Pool().NumDecks())
		err := charts.WriteFile(*chartPath, func(w io.Writer) error {
			return charts.RenderSampleLabels(w, sample, chartConfig)
		})
		if err != nil {
			return err
		}
	}

	if *record && store != nil {
		run := storage.SampleRunFor(sample, *fTrue, *fHalf, *noLands, sampler.Pool().NumDecks(), took)
		if err := store.RecordSampleRun(ctx, run); err != nil {
			log.Printf("[CLI] Failed to record sample run: %v", err)
		}
	}

	stats := m.Stats()
	log.Printf("[CLI] Sampled %d rows (%d true, %d half, %d false) in %s; %d cards dropped",
		sample.Len(), sample.NumTrue, sample.NumHalf, sample.NumFalse, took.Round(time.Millisecond), stats.CardsDropped)
	return nil
}

func runChart(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("chart", flag.ExitOnError)
	kind := fs.String("kind", "tags", "Chart to draw: tags (taxonomy graph) or decks (deck sizes)")
	taxonomy := fs.String("taxonomy", cfg.Tags.TaxonomyFile, "YAML tag taxonomy")
	dir := fs.String("dir", cfg.Decks.Dir, "Deck directory for -kind decks (default: stored decks)")
	out := fs.String("out", "", "HTML output path (default: <kind>.html)")
	open := fs.Bool("open", false, "Open the chart in a browser")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *out == "" {
		*out = *kind + ".html"
	}

	var render func(io.Writer) error
	switch *kind {
	case "tags":
		g, err := loadGraph(cfg, *taxonomy)
		if err != nil {
			return err
		}
		if g == nil {
			return fmt.Errorf("no taxonomy: pass -taxonomy or set [tags] taxonomy_file")
		}
		chartConfig := charts.DefaultChartConfig()
		chartConfig.Title = "Tag taxonomy"
		chartConfig.Subtitle = fmt.Sprintf("%d tags", g.Len()-1)
		render = func(w io.Writer) error { return charts.RenderTagGraph(w, g, chartConfig) }
	case "decks":
		ctx := context.Background()
		store, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer closeStore(store)
		universe, err := loadUniverse(ctx, cfg, store, "")
		if err != nil {
			return err
		}
		sampler, _, err := loadSampler(ctx, cfg, store, universe, *dir, deckOptions(cfg, nil, nil))
		if err != nil {
			return err
		}
		chartConfig := charts.DefaultChartConfig()
		chartConfig.Title = "Deck sizes"
		chartConfig.Subtitle = fmt.Sprintf("%d decks", sampler.Pool().NumDecks())
		render = func(w io.Writer) error { return charts.RenderDeckSizes(w, sampler.Pool(), chartConfig) }
	default:
		return fmt.Errorf("unknown chart kind %q (want tags or decks)", *kind)
	}

	if err := charts.WriteFile(*out, render); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", *out)

	if *open {
		return charts.OpenInBrowser(*out)
	}
	return nil
}
