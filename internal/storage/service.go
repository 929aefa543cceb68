package storage

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/ramonehamilton/mtg-decksampler/internal/cards"
	"github.com/ramonehamilton/mtg-decksampler/internal/decks"
	"github.com/ramonehamilton/mtg-decksampler/internal/storage/models"
	"github.com/ramonehamilton/mtg-decksampler/internal/storage/repository"
	"github.com/ramonehamilton/mtg-decksampler/internal/tags"
)

// Service provides high-level operations for storing and retrieving the
// card universe, decks, tag vocabularies and sample history.
type Service struct {
	db    *DB
	repos *Repositories
}

// NewService creates a new storage service.
func NewService(db *DB) *Service {
	return &Service{
		db:    db,
		repos: newRepositories(db.Conn()),
	}
}

// ImportUniverse stores card entries. With replace set, cards not in entries
// are removed first.
func (s *Service) ImportUniverse(ctx context.Context, entries []cards.Entry, replace bool) (int, error) {
	var n int
	err := s.db.WithRepositories(ctx, func(r *Repositories) error {
		if replace {
			if err := r.Cards.DeleteAll(ctx); err != nil {
				return err
			}
		}
		var err error
		n, err = r.Cards.UpsertCards(ctx, entries)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("failed to import card universe: %w", err)
	}

	log.Printf("[Storage] Imported %d cards", n)
	return n, nil
}

// Universe builds the card universe from stored cards.
func (s *Service) Universe(ctx context.Context) (*cards.Universe, error) {
	return s.repos.Cards.Universe(ctx)
}

// SaveDecks stores decks in one transaction, all tagged with source.
func (s *Service) SaveDecks(ctx context.Context, ds []*decks.Deck, source string) ([]*models.Deck, error) {
	saved := make([]*models.Deck, 0, len(ds))
	err := s.db.WithRepositories(ctx, func(r *Repositories) error {
		for i, d := range ds {
			if d == nil {
				return fmt.Errorf("deck %d: %w", i, decks.ErrInvalidDeckArgument)
			}
			m, err := r.Decks.SaveDeck(ctx, d, source)
			if err != nil {
				return fmt.Errorf("deck %q: %w", d.Name(), err)
			}
			saved = append(saved, m)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save decks: %w", err)
	}

	log.Printf("[Storage] Saved %d decks from %s", len(saved), source)
	return saved, nil
}

// LoadDecks rebuilds stored decks against universe. Previously dropped names
// are offered again so they are kept if the universe has since grown.
func (s *Service) LoadDecks(ctx context.Context, universe *cards.Universe, opts ...decks.Option) ([]*decks.Deck, error) {
	stored, err := s.repos.Decks.List(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]*decks.Deck, 0, len(stored))
	for _, m := range stored {
		dc, err := s.repos.Decks.GetCards(ctx, m.Name)
		if err != nil {
			return nil, err
		}
		raw := append(dc.Cards, dc.Dropped...)
		d, err := decks.NewDeck(m.Name, raw, universe, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to rebuild deck %q: %w", m.Name, err)
		}
		out = append(out, d)
	}
	return out, nil
}

// LoadPool is LoadDecks wrapped in a pool.
func (s *Service) LoadPool(ctx context.Context, universe *cards.Universe, opts ...decks.Option) (*decks.Pool, error) {
	ds, err := s.LoadDecks(ctx, universe, opts...)
	if err != nil {
		return nil, err
	}
	return decks.NewPool(ds...)
}

// PublishTags writes every source's vocabulary in one transaction.
func (s *Service) PublishTags(ctx context.Context, sources ...tags.Source) ([]tags.PublishResult, error) {
	var results []tags.PublishResult
	err := s.db.WithRepositories(ctx, func(r *Repositories) error {
		var err error
		results, err = tags.Publish(ctx, r.Tags, sources...)
		return err
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// SampleRunFor summarizes a generated sample for RecordSampleRun.
func SampleRunFor(sample *decks.Sample, fTrue, fHalf float64, noLands bool, numDecks int, took time.Duration) *models.SampleRun {
	return &models.SampleRun{
		N:          sample.Len(),
		FTrue:      fTrue,
		FHalf:      fHalf,
		NoLands:    noLands,
		NumTrue:    sample.NumTrue,
		NumHalf:    sample.NumHalf,
		NumFalse:   sample.NumFalse,
		NumDecks:   numDecks,
		DurationMs: took.Milliseconds(),
	}
}

// RecordSampleRun stores the summary of a generated sample.
func (s *Service) RecordSampleRun(ctx context.Context, run *models.SampleRun) error {
	return s.repos.SampleRuns.Create(ctx, run)
}

// Cards returns the card repository.
func (s *Service) Cards() repository.CardRepository { return s.repos.Cards }

// Decks returns the deck repository.
func (s *Service) Decks() repository.DeckRepository { return s.repos.Decks }

// Tags returns the tag repository.
func (s *Service) Tags() repository.TagRepository { return s.repos.Tags }

// SampleRuns returns the sample run repository.
func (s *Service) SampleRuns() repository.SampleRunRepository { return s.repos.SampleRuns }

// DB returns the underlying database.
func (s *Service) DB() *DB { return s.db }

// Close closes the database connection.
func (s *Service) Close() error {
	return s.db.Close()
}
