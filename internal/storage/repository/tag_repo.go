package repository

import (
	"context"
	"fmt"

	"github.com/ramonehamilton/mtg-decksampler/internal/storage/models"
	"github.com/ramonehamilton/mtg-decksampler/internal/tags"
)

// TagRepository stores tag vocabularies. Each Save call replaces what was
// stored for that label, so republishing a source is idempotent.
type TagRepository interface {
	tags.Sink

	// ListTags returns the tag names of one vocabulary.
	ListTags(ctx context.Context, label string) ([]string, error)

	// ListEdges returns the hierarchy of one vocabulary in saved order.
	ListEdges(ctx context.Context, label string) ([]*models.TagEdge, error)

	// TagsForCard returns every tag assigned to a card across vocabularies.
	TagsForCard(ctx context.Context, cardName string) ([]*models.CardTag, error)

	// Labels returns every stored vocabulary label.
	Labels(ctx context.Context) ([]string, error)
}

type tagRepository struct {
	db Querier
}

// NewTagRepository creates a new tag repository.
func NewTagRepository(db Querier) TagRepository {
	return &tagRepository{db: db}
}

func (r *tagRepository) SaveTags(ctx context.Context, label string, names []string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM tags WHERE label = ?`, label); err != nil {
		return fmt.Errorf("failed to clear tags: %w", err)
	}
	if len(names) == 0 {
		return nil
	}

	stmt, err := r.db.PrepareContext(ctx, `INSERT OR IGNORE INTO tags (label, name) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, name := range names {
		if _, err := stmt.ExecContext(ctx, label, name); err != nil {
			return fmt.Errorf("failed to insert tag %s: %w", name, err)
		}
	}
	return nil
}

func (r *tagRepository) SaveCardTags(ctx context.Context, label string, cardTags []tags.CardTag) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM card_tags WHERE label = ?`, label); err != nil {
		return fmt.Errorf("failed to clear card tags: %w", err)
	}
	if len(cardTags) == 0 {
		return nil
	}

	stmt, err := r.db.PrepareContext(ctx, `INSERT OR IGNORE INTO card_tags (label, card_name, tag) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, ct := range cardTags {
		if _, err := stmt.ExecContext(ctx, label, ct.Card, ct.Tag); err != nil {
			return fmt.Errorf("failed to insert card tag %s -> %s: %w", ct.Card, ct.Tag, err)
		}
	}
	return nil
}

func (r *tagRepository) SaveHierarchy(ctx context.Context, label string, edges []tags.Edge) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM tag_edges WHERE label = ?`, label); err != nil {
		return fmt.Errorf("failed to clear tag edges: %w", err)
	}
	if len(edges) == 0 {
		return nil
	}

	stmt, err := r.db.PrepareContext(ctx, `
		INSERT OR IGNORE INTO tag_edges (label, position, child, parent)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, e := range edges {
		if _, err := stmt.ExecContext(ctx, label, i, e.Child, e.Parent); err != nil {
			return fmt.Errorf("failed to insert tag edge %s -> %s: %w", e.Child, e.Parent, err)
		}
	}
	return nil
}

func (r *tagRepository) ListTags(ctx context.Context, label string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT name FROM tags WHERE label = ? ORDER BY name`, label)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	names, err := scanNames(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan tags: %w", err)
	}
	return names, nil
}

func (r *tagRepository) ListEdges(ctx context.Context, label string) ([]*models.TagEdge, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT label, position, child, parent
		FROM tag_edges
		WHERE label = ?
		ORDER BY position
	`, label)
	if err != nil {
		return nil, fmt.Errorf("failed to list tag edges: %w", err)
	}
	defer func() { _ = rows.Close() }()

	edges := make([]*models.TagEdge, 0)
	for rows.Next() {
		e := &models.TagEdge{}
		if err := rows.Scan(&e.Label, &e.Position, &e.Child, &e.Parent); err != nil {
			return nil, fmt.Errorf("failed to scan tag edge: %w", err)
		}
		edges = append(edges, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tag edges: %w", err)
	}
	return edges, nil
}

func (r *tagRepository) TagsForCard(ctx context.Context, cardName string) ([]*models.CardTag, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT label, card_name, tag
		FROM card_tags
		WHERE card_name = ?
		ORDER BY label, tag
	`, cardName)
	if err != nil {
		return nil, fmt.Errorf("failed to get card tags: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := make([]*models.CardTag, 0)
	for rows.Next() {
		ct := &models.CardTag{}
		if err := rows.Scan(&ct.Label, &ct.CardName, &ct.Tag); err != nil {
			return nil, fmt.Errorf("failed to scan card tag: %w", err)
		}
		out = append(out, ct)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate card tags: %w", err)
	}
	return out, nil
}

func (r *tagRepository) Labels(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT label FROM tags
		UNION SELECT label FROM tag_edges
		UNION SELECT label FROM card_tags
		ORDER BY label
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tag labels: %w", err)
	}
	labels, err := scanNames(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan tag labels: %w", err)
	}
	return labels, nil
}
