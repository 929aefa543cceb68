package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/ramonehamilton/mtg-decksampler/internal/decks"
	"github.com/ramonehamilton/mtg-decksampler/internal/storage/models"
)

// DeckRepository handles database operations for decks.
type DeckRepository interface {
	// SaveDeck stores a deck by name, replacing any deck of the same name.
	SaveDeck(ctx context.Context, deck *decks.Deck, source string) (*models.Deck, error)

	// GetByName retrieves a deck by name.
	GetByName(ctx context.Context, name string) (*models.Deck, error)

	// List retrieves all decks ordered by name.
	List(ctx context.Context) ([]*models.Deck, error)

	// GetCards retrieves a deck's validated and dropped card names.
	GetCards(ctx context.Context, name string) (*models.DeckCards, error)

	// Delete deletes a deck by name.
	Delete(ctx context.Context, name string) error
}

type deckRepository struct {
	db Querier
}

// NewDeckRepository creates a new deck repository.
func NewDeckRepository(db Querier) DeckRepository {
	return &deckRepository{db: db}
}

// SaveDeck issues several statements; run it inside a transaction.
func (r *deckRepository) SaveDeck(ctx context.Context, deck *decks.Deck, source string) (*models.Deck, error) {
	if deck == nil {
		return nil, decks.ErrInvalidDeckArgument
	}

	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO decks (name, source, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			source = excluded.source,
			updated_at = excluded.updated_at
	`, deck.Name(), source, now, now)
	if err != nil {
		return nil, fmt.Errorf("failed to save deck: %w", err)
	}

	var id int64
	if err := r.db.QueryRowContext(ctx, `SELECT id FROM decks WHERE name = ?`, deck.Name()).Scan(&id); err != nil {
		return nil, fmt.Errorf("failed to get deck id: %w", err)
	}

	if err := r.replaceNames(ctx, "deck_cards", id, deck.CardNames()); err != nil {
		return nil, err
	}
	if err := r.replaceNames(ctx, "deck_dropped_cards", id, deck.DroppedCardNames()); err != nil {
		return nil, err
	}

	return r.GetByName(ctx, deck.Name())
}

// replaceNames swaps the card names of one deck in table, which is one of
// the fixed deck card tables.
func (r *deckRepository) replaceNames(ctx context.Context, table string, deckID int64, names []string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM `+table+` WHERE deck_id = ?`, deckID); err != nil {
		return fmt.Errorf("failed to clear %s: %w", table, err)
	}
	if len(names) == 0 {
		return nil
	}

	stmt, err := r.db.PrepareContext(ctx, `INSERT INTO `+table+` (deck_id, card_name) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, name := range names {
		if _, err := stmt.ExecContext(ctx, deckID, name); err != nil {
			return fmt.Errorf("failed to insert %s row for %s: %w", table, name, err)
		}
	}
	return nil
}

const deckColumns = `
	d.id, d.name, d.source, d.created_at, d.updated_at,
	(SELECT COUNT(*) FROM deck_cards c WHERE c.deck_id = d.id),
	(SELECT COUNT(*) FROM deck_dropped_cards x WHERE x.deck_id = d.id)
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDeck(row rowScanner) (*models.Deck, error) {
	d := &models.Deck{}
	if err := row.Scan(&d.ID, &d.Name, &d.Source, &d.CreatedAt, &d.UpdatedAt, &d.NumCards, &d.NumDropped); err != nil {
		return nil, err
	}
	return d, nil
}

func (r *deckRepository) GetByName(ctx context.Context, name string) (*models.Deck, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+deckColumns+` FROM decks d WHERE d.name = ?`, name)
	d, err := scanDeck(row)
	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("deck %q: %w", name, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get deck: %w", err)
	}
	return d, nil
}

func (r *deckRepository) List(ctx context.Context) ([]*models.Deck, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+deckColumns+` FROM decks d ORDER BY d.name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list decks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	list := make([]*models.Deck, 0)
	for rows.Next() {
		d, err := scanDeck(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan deck: %w", err)
		}
		list = append(list, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate decks: %w", err)
	}
	return list, nil
}

func (r *deckRepository) GetCards(ctx context.Context, name string) (*models.DeckCards, error) {
	d, err := r.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `SELECT card_name FROM deck_cards WHERE deck_id = ? ORDER BY card_name`, d.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to query deck cards: %w", err)
	}
	cardNames, err := scanNames(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan deck cards: %w", err)
	}

	rows, err = r.db.QueryContext(ctx, `SELECT card_name FROM deck_dropped_cards WHERE deck_id = ? ORDER BY card_name`, d.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to query dropped cards: %w", err)
	}
	dropped, err := scanNames(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan dropped cards: %w", err)
	}

	return &models.DeckCards{Deck: d, Cards: cardNames, Dropped: dropped}, nil
}

func (r *deckRepository) Delete(ctx context.Context, name string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM decks WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("failed to delete deck: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete deck: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("deck %q: %w", name, ErrNotFound)
	}
	return nil
}
