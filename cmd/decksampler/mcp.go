package main

import (
	"context"
	"flag"
	"log"

	"github.com/ramonehamilton/mtg-decksampler/internal/api/handlers"
	"github.com/ramonehamilton/mtg-decksampler/internal/config"
	"github.com/ramonehamilton/mtg-decksampler/internal/mcp"
)

// runMCP serves the sampler over MCP on stdio. Logging stays on stderr so
// stdout carries only protocol messages.
func runMCP(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("mcp", flag.ExitOnError)
	dir := fs.String("dir", cfg.Decks.Dir, "Deck directory (default: decks stored in the database)")
	taxonomy := fs.String("taxonomy", cfg.Tags.TaxonomyFile, "YAML tag taxonomy")
	if err := fs.Parse(args); err != nil {
		return err
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
	sampler, _, err := loadSampler(ctx, cfg, store, universe, *dir, deckOptions(cfg, nil, nil))
	if err != nil {
		return err
	}
	graph, err := loadGraph(cfg, *taxonomy)
	if err != nil {
		return err
	}

	log.Printf("[CLI] Serving %d decks over MCP stdio", sampler.Pool().NumDecks())
	return mcp.NewServer(handlers.NewState(sampler, graph), cfg.API.MaxSampleRows).Serve()
}
