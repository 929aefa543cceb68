package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/ramonehamilton/mtg-decksampler/internal/cards/scryfall"
	"github.com/ramonehamilton/mtg-decksampler/internal/config"
	"github.com/ramonehamilton/mtg-decksampler/internal/decks/deckdir"
	"github.com/ramonehamilton/mtg-decksampler/internal/tags"
)

func runImportUniverse(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("import-universe", flag.ExitOnError)
	bulkFile := fs.String("file", cfg.Universe.BulkFile, "Scryfall bulk JSON file to import")
	download := fs.Bool("download", false, "Download the bulk file from Scryfall first")
	bulkType := fs.String("type", cfg.Universe.BulkType, "Bulk type to download (oracle_cards, default_cards)")
	keep := fs.Bool("keep", false, "Keep cards not in the new file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx := context.Background()
	path := *bulkFile

	if *download {
		if path == "" {
			dir, err := config.Dir()
			if err != nil {
				return err
			}
			path = filepath.Join(dir, *bulkType+".json")
		}
		if err := downloadBulk(ctx, cfg, *bulkType, path); err != nil {
			return err
		}
	}
	if path == "" {
		return errors.New("no bulk file: pass -file or -download")
	}

	entries, err := readBulkFile(path)
	if err != nil {
		return err
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore(store)

	n, err := store.ImportUniverse(ctx, entries, !*keep)
	if err != nil {
		return err
	}
	fmt.Printf("Imported %d cards from %s\n", n, path)
	return nil
}

func downloadBulk(ctx context.Context, cfg *config.Config, bulkType, path string) (err error) {
	rateLimit, err := cfg.GetRateLimit()
	if err != nil {
		return err
	}
	client := scryfall.NewClient(
		scryfall.WithBaseURL(cfg.Universe.ScryfallURL),
		scryfall.WithRateLimit(rateLimit),
	)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create bulk directory: %w", err)
	}
	tmp := path + ".part"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create bulk file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp)
		}
	}()

	info, err := client.FetchBulk(ctx, bulkType, f)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to move bulk file: %w", err)
	}

	log.Printf("[CLI] Downloaded %s (%s, updated %s)", info.Name, path, info.UpdatedAt.Format("2006-01-02"))
	return nil
}

func runImportDecks(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("import-decks", flag.ExitOnError)
	dir := fs.String("dir", cfg.Decks.Dir, "Directory of .txt/.dec deck lists")
	source := fs.String("source", "", "Source label stored with each deck (default: the directory name)")
	sideboard := fs.Bool("sideboard", cfg.Decks.IncludeSideboard, "Count sideboard cards as deck cards")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *dir == "" {
		return errors.New("no deck directory: pass -dir or set [decks] dir")
	}
	if *source == "" {
		*source = filepath.Base(*dir)
	}

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

	loader := deckdir.NewLoader(*dir, universe, deckOptions(cfg, nil, nil)...)
	loader.SetIncludeSideboard(*sideboard)
	ds, err := loader.Load()
	if err != nil {
		return err
	}

	saved, err := store.SaveDecks(ctx, ds, *source)
	if err != nil {
		return err
	}

	var dropped int
	for _, d := range saved {
		dropped += d.NumDropped
	}
	fmt.Printf("Imported %d decks (%d card names not in the universe)\n", len(saved), dropped)
	return nil
}

func runImportTags(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("import-tags", flag.ExitOnError)
	taxonomy := fs.String("taxonomy", cfg.Tags.TaxonomyFile, "YAML tag taxonomy")
	tappedout := fs.String("tappedout", cfg.Tags.TappedoutFile, "card,tag CSV")
	metamox := fs.String("metamox", cfg.Tags.MetamoxFile, "card,tag,subtag CSV")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var sources []tags.Source
	if *taxonomy != "" {
		g, err := tags.LoadTaxonomyFile(*taxonomy)
		if err != nil {
			return err
		}
		sources = append(sources, tags.NewTaxonomySource(g))
	}
	if *tappedout != "" {
		rows, err := readRows(*tappedout, tags.ReadTappedoutRows)
		if err != nil {
			return err
		}
		sources = append(sources, tags.NewTappedoutSource(rows))
	}
	if *metamox != "" {
		rows, err := readRows(*metamox, tags.ReadMetamoxRows)
		if err != nil {
			return err
		}
		sources = append(sources, tags.NewMetamoxSource(rows))
	}
	if len(sources) == 0 {
		return errors.New("no tag sources: pass -taxonomy, -tappedout or -metamox")
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore(store)

	results, err := store.PublishTags(context.Background(), sources...)
	if err != nil {
		return err
	}
	for _, r := range results {
		fmt.Printf("%-14s %6d tags %6d cards %6d card tags %6d edges\n", r.Label, r.Tags, r.Cards, r.CardTags, r.Edges)
	}
	return nil
}

func readRows[T any](path string, read func(r io.Reader) ([]T, error)) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()
	return read(f)
}
