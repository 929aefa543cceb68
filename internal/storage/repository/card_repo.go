package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/ramonehamilton/mtg-decksampler/internal/cards"
	"github.com/ramonehamilton/mtg-decksampler/internal/storage/models"
)

// CardRepository handles database operations for the card universe.
type CardRepository interface {
	// UpsertCards inserts or updates card entries and returns how many were written.
	UpsertCards(ctx context.Context, entries []cards.Entry) (int, error)

	// GetByName retrieves a card by exact name.
	GetByName(ctx context.Context, name string) (*models.Card, error)

	// Count returns the number of stored cards.
	Count(ctx context.Context) (int, error)

	// Universe builds a card universe from every stored card.
	Universe(ctx context.Context) (*cards.Universe, error)

	// DeleteAll removes every card.
	DeleteAll(ctx context.Context) error
}

type cardRepository struct {
	db Querier
}

// NewCardRepository creates a new card repository.
func NewCardRepository(db Querier) CardRepository {
	return &cardRepository{db: db}
}

// UpsertCards writes entries with one prepared statement. Run it inside a
// transaction for large imports.
func (r *cardRepository) UpsertCards(ctx context.Context, entries []cards.Entry) (int, error) {
	if len(entries) == 0 {
		return 0, nil
	}

	stmt, err := r.db.PrepareContext(ctx, `
		INSERT INTO cards (name, type_line, is_land, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			type_line = excluded.type_line,
			is_land = excluded.is_land,
			updated_at = excluded.updated_at
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	now := time.Now().UTC()
	for _, e := range entries {
		if _, err := stmt.ExecContext(ctx, e.Name, e.TypeLine, boolToInt(e.IsLand), now); err != nil {
			return 0, fmt.Errorf("failed to upsert card %s: %w", e.Name, err)
		}
	}

	return len(entries), nil
}

func (r *cardRepository) GetByName(ctx context.Context, name string) (*models.Card, error) {
	card := &models.Card{}
	var isLand int
	err := r.db.QueryRowContext(ctx, `
		SELECT name, type_line, is_land, updated_at
		FROM cards
		WHERE name = ?
	`, name).Scan(&card.Name, &card.TypeLine, &isLand, &card.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("card %q: %w", name, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get card: %w", err)
	}
	card.IsLand = isLand == 1
	return card, nil
}

func (r *cardRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM cards`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count cards: %w", err)
	}
	return n, nil
}

func (r *cardRepository) Universe(ctx context.Context) (*cards.Universe, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT name, is_land FROM cards ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query cards: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var all, lands []string
	for rows.Next() {
		var name string
		var isLand int
		if err := rows.Scan(&name, &isLand); err != nil {
			return nil, fmt.Errorf("failed to scan card: %w", err)
		}
		all = append(all, name)
		if isLand == 1 {
			lands = append(lands, name)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate cards: %w", err)
	}

	return cards.NewUniverse(all, lands), nil
}

func (r *cardRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM cards`); err != nil {
		return fmt.Errorf("failed to delete cards: %w", err)
	}
	return nil
}
