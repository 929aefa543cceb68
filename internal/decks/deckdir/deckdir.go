// Package deckdir loads a directory of deck list files into decks and keeps
// them current as files change.
package deckdir

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ramonehamilton/mtg-decksampler/internal/cards"
	"github.com/ramonehamilton/mtg-decksampler/internal/deckimport"
	"github.com/ramonehamilton/mtg-decksampler/internal/decks"
)

// DefaultDebounce is how long Watch waits after the last file event before
// reloading.
const DefaultDebounce = 500 * time.Millisecond

// Extensions lists the deck list file extensions that are loaded.
var Extensions = []string{".txt", ".dec"}

// Loader builds decks from the deck list files in a directory.
type Loader struct {
	dir              string
	universe         *cards.Universe
	includeSideboard bool
	deckOpts         []decks.Option
}

// NewLoader creates a loader for dir. deckOpts are applied to every deck.
func NewLoader(dir string, universe *cards.Universe, deckOpts ...decks.Option) *Loader {
	return &Loader{
		dir:      dir,
		universe: universe,
		deckOpts: deckOpts,
	}
}

// SetIncludeSideboard controls whether sideboard cards count as deck cards.
func (l *Loader) SetIncludeSideboard(include bool) { l.includeSideboard = include }

// Dir returns the watched directory.
func (l *Loader) Dir() string { return l.dir }

// Load is shorthand for NewLoader(dir, universe, deckOpts...).Load().
func Load(dir string, universe *cards.Universe, deckOpts ...decks.Option) ([]*decks.Deck, error) {
	return NewLoader(dir, universe, deckOpts...).Load()
}

// Load parses every deck list file in the directory, in file name order.
// Files that cannot be parsed, and decks with fewer than two known cards, are
// logged and skipped.
func (l *Loader) Load() ([]*decks.Deck, error) {
	if l.universe == nil {
		return nil, decks.ErrNilUniverse
	}

	files, err := l.files()
	if err != nil {
		return nil, err
	}

	loaded := make([]*decks.Deck, 0, len(files))
	for _, path := range files {
		d, err := l.loadFile(path)
		if err != nil {
			log.Printf("[DeckDir] Warning: skipping %s: %v", path, err)
			continue
		}
		if d.NumCards() < 2 {
			log.Printf("[DeckDir] Warning: skipping deck %q: %d known cards", d.Name(), d.NumCards())
			continue
		}
		loaded = append(loaded, d)
	}

	log.Printf("[DeckDir] Loaded %d of %d deck files from %s", len(loaded), len(files), l.dir)
	return loaded, nil
}

// LoadPool loads the directory into a deck pool.
func (l *Loader) LoadPool() (*decks.Pool, error) {
	loaded, err := l.Load()
	if err != nil {
		return nil, err
	}
	return decks.NewPool(loaded...)
}

func (l *Loader) files() ([]string, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read deck directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !IsDeckFile(entry.Name()) {
			continue
		}
		files = append(files, filepath.Join(l.dir, entry.Name()))
	}
	sort.Strings(files)
	return files, nil
}

func (l *Loader) loadFile(path string) (*decks.Deck, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read deck file: %w", err)
	}

	parsed, err := deckimport.Parse(string(data))
	if err != nil {
		return nil, err
	}

	name := parsed.Name
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	return decks.NewDeck(name, parsed.CardNames(l.includeSideboard), l.universe, l.deckOpts...)
}

// IsDeckFile reports whether name has a deck list extension.
func IsDeckFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// Watch reloads the directory whenever deck files change and passes each new
// pool to onChange. Bursts of events within debounce trigger one reload.
// Watch blocks until ctx is done.
func (l *Loader) Watch(ctx context.Context, debounce time.Duration, onChange func(*decks.Pool)) (err error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() {
		if closeErr := watcher.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	if err := watcher.Add(l.dir); err != nil {
		return fmt.Errorf("failed to watch deck directory: %w", err)
	}
	log.Printf("[DeckDir] Watching %s for deck changes", l.dir)

	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !IsDeckFile(event.Name) || event.Op == fsnotify.Chmod {
				continue
			}
			timer.Reset(debounce)
		case werr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("[DeckDir] File watcher error: %v", werr)
		case <-timer.C:
			pool, err := l.LoadPool()
			if err != nil {
				log.Printf("[DeckDir] Error: failed to reload decks: %v", err)
				continue
			}
			onChange(pool)
		}
	}
}
