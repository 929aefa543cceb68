package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/ramonehamilton/mtg-decksampler/internal/api"
	"github.com/ramonehamilton/mtg-decksampler/internal/api/handlers"
	"github.com/ramonehamilton/mtg-decksampler/internal/config"
	"github.com/ramonehamilton/mtg-decksampler/internal/decks"
	"github.com/ramonehamilton/mtg-decksampler/internal/metrics"
)

func runServe(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	addr := fs.String("addr", cfg.API.Addr, "Listen address")
	dir := fs.String("dir", cfg.Decks.Dir, "Deck directory (default: decks stored in the database)")
	watch := fs.Bool("watch", cfg.Decks.Watch, "Reload decks when files in -dir change")
	taxonomy := fs.String("taxonomy", cfg.Tags.TaxonomyFile, "YAML tag taxonomy")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore(store)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.NewSamplerMetrics(reg)

	universe, err := loadUniverse(ctx, cfg, store, "")
	if err != nil {
		return err
	}
	// requests sample concurrently and *rand.Rand is not safe for that
	opts := deckOptions(cfg, nil, m)

	sampler, loader, err := loadSampler(ctx, cfg, store, universe, *dir, opts)
	if err != nil {
		return err
	}
	graph, err := loadGraph(cfg, *taxonomy)
	if err != nil {
		return err
	}

	timeout, err := cfg.GetRequestTimeout()
	if err != nil {
		return err
	}
	server := api.NewServer(&api.Config{
		Addr:           *addr,
		RequestTimeout: timeout,
		CORSOrigins:    cfg.API.CORSOrigins,
		MaxSampleRows:  cfg.API.MaxSampleRows,
	}, api.Deps{
		State:    handlers.NewState(sampler, graph),
		Store:    store,
		Metrics:  m,
		Gatherer: reg,
	})

	if err := server.Start(); err != nil {
		return err
	}
	log.Printf("[CLI] Serving %d decks on http://%s", sampler.Pool().NumDecks(), *addr)

	if *watch && loader != nil {
		debounce, err := cfg.GetDebounce()
		if err != nil {
			return err
		}
		go func() {
			err := loader.Watch(ctx, debounce, func(pool *decks.Pool) {
				pool.SetDebug(cfg.App.DebugMode)
				next, err := newSampler(pool, universe, opts)
				if err != nil {
					log.Printf("[CLI] Error: failed to rebuild sampler: %v", err)
					return
				}
				server.State().SetSampler(next)
				log.Printf("[CLI] Reloaded %d decks", pool.NumDecks())
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("[CLI] Deck watcher stopped: %v", err)
			}
		}()
	}

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
