// Command decksampler builds labelled card-pair training samples from a pool
// of Magic: The Gathering decks.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/ramonehamilton/mtg-decksampler/internal/config"
	"github.com/ramonehamilton/mtg-decksampler/internal/version"
)

var (
	configPath = flag.String("config", "", "Path to config.toml (default: ~/.mtg-decksampler/config.toml)")
	dbPath     = flag.String("db-path", "", "Database path, overrides [storage] path")
	debugMode  = flag.Bool("debug-mode", false, "Enable verbose debug logging")
)

type command struct {
	name  string
	usage string
	run   func(cfg *config.Config, args []string) error
}

var commands = []command{
	{"import-universe", "Load the card universe from a Scryfall bulk file or download", runImportUniverse},
	{"import-decks", "Store every deck file in a directory", runImportDecks},
	{"import-tags", "Publish tag vocabularies (taxonomy, tappedout, metamox)", runImportTags},
	{"sample", "Generate a labelled sample as CSV", runSample},
	{"serve", "Run the HTTP API", runServe},
	{"mcp", "Serve sampling tools over MCP on stdio", runMCP},
	{"chart", "Render the tag taxonomy as an HTML graph", runChart},
	{"backup", "Back up the database (create, list, verify)", runBackup},
	{"migrate", "Manage database migrations (up, down, status, goto, force)", runMigrate},
	{"config", "Write the default config file", runConfig},
	{"version", "Print version information", runVersion},
}

func usage() {
	out := flag.CommandLine.Output()
	fmt.Fprintf(out, "Usage: decksampler [flags] <command> [command flags]\n\nCommands:\n")
	for _, c := range commands {
		fmt.Fprintf(out, "  %-16s %s\n", c.name, c.usage)
	}
	fmt.Fprintf(out, "\nFlags:\n")
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
		os.Exit(2)
	}

	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	name, args := flag.Arg(0), flag.Args()[1:]
	for _, c := range commands {
		if c.name != name {
			continue
		}
		if err := c.run(cfg, args); err != nil {
			log.Fatalf("%s: %v", name, err)
		}
		return
	}

	fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", name)
	usage()
	os.Exit(2)
}

func loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if *configPath != "" {
		cfg, err = config.LoadFile(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	if *dbPath != "" {
		cfg.Storage.Path = *dbPath
	}
	if *debugMode {
		cfg.App.DebugMode = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func runConfig(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("config", flag.ExitOnError)
	out := fs.String("out", "", "Output path (default: the config path in use)")
	force := fs.Bool("force", false, "Overwrite an existing file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	path := *out
	if path == "" {
		path = *configPath
	}
	if path == "" {
		p, err := config.Path()
		if err != nil {
			return err
		}
		path = p
	}

	if _, err := os.Stat(path); err == nil && !*force {
		return fmt.Errorf("%s already exists (use -force to overwrite)", path)
	}
	if err := cfg.SaveFile(path); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", path)
	return nil
}

func runVersion(_ *config.Config, _ []string) error {
	fmt.Println(version.String())
	return nil
}
