package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"os"

	"github.com/ramonehamilton/mtg-decksampler/internal/cards"
	"github.com/ramonehamilton/mtg-decksampler/internal/config"
	"github.com/ramonehamilton/mtg-decksampler/internal/decks"
	"github.com/ramonehamilton/mtg-decksampler/internal/decks/deckdir"
	"github.com/ramonehamilton/mtg-decksampler/internal/storage"
	"github.com/ramonehamilton/mtg-decksampler/internal/tags"
)

var errNoUniverse = errors.New("no card universe: run import-universe or set [universe] bulk_file")

// openStore opens the configured database.
func openStore(cfg *config.Config) (*storage.Service, error) {
	path, err := cfg.StoragePath()
	if err != nil {
		return nil, err
	}

	dbConfig := storage.DefaultConfig(path)
	dbConfig.AutoMigrate = cfg.Storage.AutoMigrate
	db, err := storage.Open(dbConfig)
	if err != nil {
		return nil, err
	}
	if cfg.App.DebugMode {
		log.Printf("[CLI] Database: %s", path)
	}
	return storage.NewService(db), nil
}

func closeStore(store *storage.Service) {
	if err := store.Close(); err != nil {
		log.Printf("[CLI] Error closing database: %v", err)
	}
}

// newRand returns a seeded generator, or nil for the shared source.
func newRand(seed uint64) *rand.Rand {
	if seed == 0 {
		return nil
	}
	return rand.New(rand.NewPCG(seed, seed))
}

// deckOptions applies the [decks] settings to every deck built.
func deckOptions(cfg *config.Config, rng *rand.Rand, obs decks.Observer) []decks.Option {
	opts := []decks.Option{
		decks.WithIgnoreLands(cfg.Decks.IgnoreLands),
		decks.WithComplementLimit(cfg.Decks.ComplementLimit),
		decks.WithMaxStallRounds(cfg.Decks.MaxStallRounds),
		decks.WithObserver(obs),
	}
	if rng != nil {
		opts = append(opts, decks.WithRand(rng))
	}
	return opts
}

func readBulkFile(path string) ([]cards.Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open bulk file: %w", err)
	}
	defer func() { _ = f.Close() }()
	return cards.ReadBulk(f)
}

// loadUniverse prefers a bulk file given on the command line or in config,
// then the database.
func loadUniverse(ctx context.Context, cfg *config.Config, store *storage.Service, bulkFile string) (*cards.Universe, error) {
	if bulkFile == "" {
		bulkFile = cfg.Universe.BulkFile
	}
	if bulkFile != "" {
		entries, err := readBulkFile(bulkFile)
		if err != nil {
			return nil, err
		}
		return cards.UniverseFromEntries(entries), nil
	}

	if store == nil {
		return nil, errNoUniverse
	}
	universe, err := store.Universe(ctx)
	if err != nil {
		return nil, err
	}
	if universe.Len() == 0 {
		return nil, errNoUniverse
	}
	return universe, nil
}

// loadSampler builds a sampler from a deck directory, or from stored decks
// when dir is empty.
func loadSampler(ctx context.Context, cfg *config.Config, store *storage.Service, universe *cards.Universe, dir string, opts []decks.Option) (*decks.Sampler, *deckdir.Loader, error) {
	var (
		pool   *decks.Pool
		loader *deckdir.Loader
		err    error
	)
	if dir != "" {
		loader = deckdir.NewLoader(dir, universe, opts...)
		loader.SetIncludeSideboard(cfg.Decks.IncludeSideboard)
		pool, err = loader.LoadPool()
	} else if store != nil {
		pool, err = store.LoadPool(ctx, universe, opts...)
	} else {
		err = errors.New("no decks: pass -dir or run import-decks")
	}
	if err != nil {
		return nil, nil, err
	}
	pool.SetDebug(cfg.App.DebugMode)

	sampler, err := newSampler(pool, universe, opts)
	if err != nil {
		return nil, nil, err
	}
	return sampler, loader, nil
}

func newSampler(pool *decks.Pool, universe *cards.Universe, opts []decks.Option) (*decks.Sampler, error) {
	allCards, err := decks.UniverseDeck(universe, opts...)
	if err != nil {
		return nil, err
	}
	return decks.NewSampler(pool, allCards)
}

// loadGraph reads the configured taxonomy, or returns nil if none is set.
func loadGraph(cfg *config.Config, path string) (*tags.Graph, error) {
	if path == "" {
		path = cfg.Tags.TaxonomyFile
	}
	if path == "" {
		return nil, nil
	}
	return tags.LoadTaxonomyFile(path)
}
