package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/ramonehamilton/mtg-decksampler/internal/storage/models"
)

// SampleRunRepository records generated training samples.
type SampleRunRepository interface {
	// Create inserts a run and sets its ID.
	Create(ctx context.Context, run *models.SampleRun) error

	// ListRecent returns the latest runs, newest first.
	ListRecent(ctx context.Context, limit int) ([]*models.SampleRun, error)
}

type sampleRunRepository struct {
	db Querier
}

// NewSampleRunRepository creates a new sample run repository.
func NewSampleRunRepository(db Querier) SampleRunRepository {
	return &sampleRunRepository{db: db}
}

func (r *sampleRunRepository) Create(ctx context.Context, run *models.SampleRun) error {
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO sample_runs (
			n, f_true, f_half, no_lands, num_true, num_half, num_false,
			num_decks, duration_ms, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.N, run.FTrue, run.FHalf, boolToInt(run.NoLands),
		run.NumTrue, run.NumHalf, run.NumFalse,
		run.NumDecks, run.DurationMs, run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create sample run: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get sample run id: %w", err)
	}
	run.ID = id
	return nil
}

func (r *sampleRunRepository) ListRecent(ctx context.Context, limit int) ([]*models.SampleRun, error) {
	query := `
		SELECT id, n, f_true, f_half, no_lands, num_true, num_half, num_false,
		       num_decks, duration_ms, created_at
		FROM sample_runs
		ORDER BY created_at DESC, id DESC
	`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list sample runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	runs := make([]*models.SampleRun, 0)
	for rows.Next() {
		run := &models.SampleRun{}
		var noLands int
		if err := rows.Scan(
			&run.ID, &run.N, &run.FTrue, &run.FHalf, &noLands,
			&run.NumTrue, &run.NumHalf, &run.NumFalse,
			&run.NumDecks, &run.DurationMs, &run.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan sample run: %w", err)
		}
		run.NoLands = noLands == 1
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sample runs: %w", err)
	}
	return runs, nil
}
