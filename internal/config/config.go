package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// DirName is the per-user directory holding the config file and database.
const DirName = ".mtg-decksampler"

// Config represents the application configuration.
type Config struct {
	Storage  StorageConfig  `toml:"storage"`
	Universe UniverseConfig `toml:"universe"`
	Decks    DecksConfig    `toml:"decks"`
	Sampler  SamplerConfig  `toml:"sampler"`
	Tags     TagsConfig     `toml:"tags"`
	API      APIConfig      `toml:"api"`
	App      AppConfig      `toml:"app"`
}

// StorageConfig contains database settings.
type StorageConfig struct {
	Path        string `toml:"path"`         // SQLite file, ":memory:" for none
	AutoMigrate bool   `toml:"auto_migrate"` // Run migrations on open
	BackupDir   string `toml:"backup_dir"`   // Directory for backups
}

// UniverseConfig contains card universe settings.
type UniverseConfig struct {
	BulkFile    string `toml:"bulk_file"`    // Local Scryfall bulk JSON file
	BulkType    string `toml:"bulk_type"`    // Bulk type to download
	ScryfallURL string `toml:"scryfall_url"` // API base URL
	RateLimit   string `toml:"rate_limit"`   // Delay between requests (e.g., "100ms")
}

// DecksConfig contains deck loading settings.
type DecksConfig struct {
	Dir              string `toml:"dir"`               // Directory of deck files
	IncludeSideboard bool   `toml:"include_sideboard"` // Count sideboard cards
	IgnoreLands      bool   `toml:"ignore_lands"`      // Always exclude lands
	ComplementLimit  int    `toml:"complement_limit"`  // Skip complements above this universe size (0 = never)
	MaxStallRounds   int    `toml:"max_stall_rounds"`  // Unique backfill stall limit
	Watch            bool   `toml:"watch"`             // Reload on file changes
	Debounce         string `toml:"debounce"`          // Reload debounce (e.g., "500ms")
}

// SamplerConfig contains default sampling parameters.
type SamplerConfig struct {
	N       int     `toml:"n"`        // Rows per sample
	FTrue   float64 `toml:"f_true"`   // Fraction of same-deck pairs
	FHalf   float64 `toml:"f_half"`   // Fraction of deck/complement pairs
	NoLands bool    `toml:"no_lands"` // Exclude lands
	Shuffle bool    `toml:"shuffle"`  // Shuffle rows
	Seed    uint64  `toml:"seed"`     // RNG seed (0 = random)
}

// TagsConfig contains tag vocabulary sources.
type TagsConfig struct {
	TaxonomyFile  string `toml:"taxonomy_file"`  // YAML tag tree
	TappedoutFile string `toml:"tappedout_file"` // card,tag CSV
	MetamoxFile   string `toml:"metamox_file"`   // card,tag,subtag CSV
}

// APIConfig contains HTTP server settings.
type APIConfig struct {
	Addr           string   `toml:"addr"`            // Listen address
	RequestTimeout string   `toml:"request_timeout"` // Per-request timeout
	CORSOrigins    []string `toml:"cors_origins"`    // Allowed origins
	MaxSampleRows  int      `toml:"max_sample_rows"` // Upper bound on n per request
}

// AppConfig contains general application settings.
type AppConfig struct {
	DebugMode bool `toml:"debug_mode"` // Enable debug logging
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			Path:        "",
			AutoMigrate: true,
			BackupDir:   "",
		},
		Universe: UniverseConfig{
			BulkType:    "oracle_cards",
			ScryfallURL: "https://api.scryfall.com",
			RateLimit:   "100ms",
		},
		Decks: DecksConfig{
			IgnoreLands:    true,
			MaxStallRounds: 1000,
			Watch:          false,
			Debounce:       "500ms",
		},
		Sampler: SamplerConfig{
			N:       10000,
			FTrue:   0.5,
			FHalf:   0.25,
			NoLands: true,
		},
		API: APIConfig{
			Addr:           "127.0.0.1:8080",
			RequestTimeout: "60s",
			CORSOrigins:    []string{"http://localhost:*"},
			MaxSampleRows:  1000000,
		},
		App: AppConfig{
			DebugMode: false,
		},
	}
}

// Dir returns the per-user configuration directory, creating it if needed.
func Dir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}

	dir := filepath.Join(homeDir, DirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create config directory: %w", err)
	}
	return dir, nil
}

// Path returns the path to the configuration file.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load loads the configuration from the default path. Returns the default
// config if the file doesn't exist.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFile(path)
}

// LoadFile loads the configuration from path. Keys missing from the file keep
// their default values. A missing file yields the defaults.
func LoadFile(path string) (*Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return config, nil
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	return config, nil
}

// Save saves the configuration to the default path.
func (c *Config) Save() error {
	path, err := Path()
	if err != nil {
		return err
	}
	return c.SaveFile(path)
}

// SaveFile writes the configuration to path.
func (c *Config) SaveFile(path string) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration values.
func (c *Config) Validate() error {
	if _, err := time.ParseDuration(c.Universe.RateLimit); err != nil {
		return fmt.Errorf("invalid rate limit %q: %w", c.Universe.RateLimit, err)
	}

	if _, err := time.ParseDuration(c.Decks.Debounce); err != nil {
		return fmt.Errorf("invalid debounce %q: %w", c.Decks.Debounce, err)
	}

	if c.Decks.ComplementLimit < 0 {
		return fmt.Errorf("complement limit cannot be negative: %d", c.Decks.ComplementLimit)
	}

	if c.Decks.MaxStallRounds <= 0 {
		return fmt.Errorf("max stall rounds must be positive: %d", c.Decks.MaxStallRounds)
	}

	s := c.Sampler
	if s.N < 0 {
		return fmt.Errorf("sample size cannot be negative: %d", s.N)
	}
	if s.FTrue < 0 || s.FHalf < 0 || s.FTrue+s.FHalf > 1 {
		return fmt.Errorf("invalid sample fractions f_true=%v f_half=%v", s.FTrue, s.FHalf)
	}

	if _, err := time.ParseDuration(c.API.RequestTimeout); err != nil {
		return fmt.Errorf("invalid request timeout %q: %w", c.API.RequestTimeout, err)
	}

	if c.API.MaxSampleRows <= 0 {
		return fmt.Errorf("max sample rows must be positive: %d", c.API.MaxSampleRows)
	}

	return nil
}

// StoragePath returns the database path, defaulting to a file in Dir.
func (c *Config) StoragePath() (string, error) {
	if c.Storage.Path != "" {
		return c.Storage.Path, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "decksampler.db"), nil
}

// BackupDir returns the backup directory, defaulting to "backups" next to
// the database.
func (c *Config) BackupDir() (string, error) {
	if c.Storage.BackupDir != "" {
		return c.Storage.BackupDir, nil
	}
	path, err := c.StoragePath()
	if err != nil {
		return "", err
	}
	return filepath.Join(filepath.Dir(path), "backups"), nil
}

// GetRateLimit returns the Scryfall request spacing as a duration.
func (c *Config) GetRateLimit() (time.Duration, error) {
	return time.ParseDuration(c.Universe.RateLimit)
}

// GetDebounce returns the deck reload debounce as a duration.
func (c *Config) GetDebounce() (time.Duration, error) {
	return time.ParseDuration(c.Decks.Debounce)
}

// GetRequestTimeout returns the HTTP request timeout as a duration.
func (c *Config) GetRequestTimeout() (time.Duration, error) {
	return time.ParseDuration(c.API.RequestTimeout)
}
