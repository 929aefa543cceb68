package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ramonehamilton/mtg-decksampler/internal/storage/repository"
)

// TxFunc is a function that runs within a transaction.
type TxFunc func(*sql.Tx) error

// Repositories groups the repositories bound to one connection or transaction.
type Repositories struct {
	Cards      repository.CardRepository
	Decks      repository.DeckRepository
	Tags       repository.TagRepository
	SampleRuns repository.SampleRunRepository
}

func newRepositories(q repository.Querier) *Repositories {
	return &Repositories{
		Cards:      repository.NewCardRepository(q),
		Decks:      repository.NewDeckRepository(q),
		Tags:       repository.NewTagRepository(q),
		SampleRuns: repository.NewSampleRunRepository(q),
	}
}

// WithTransaction executes fn within a database transaction. It commits on
// success and rolls back on error. A panic rolls back and is re-raised.
func (db *DB) WithTransaction(ctx context.Context, fn TxFunc) (err error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		} else if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				err = fmt.Errorf("transaction error: %w, rollback error: %v", err, rbErr)
			}
		} else {
			err = tx.Commit()
			if err != nil {
				err = fmt.Errorf("failed to commit transaction: %w", err)
			}
		}
	}()

	err = fn(tx)
	return err
}

// WithRepositories runs fn with repositories bound to a single transaction.
func (db *DB) WithRepositories(ctx context.Context, fn func(*Repositories) error) error {
	return db.WithTransaction(ctx, func(tx *sql.Tx) error {
		return fn(newRepositories(tx))
	})
}
