package repository

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/ramonehamilton/mtg-decksampler/internal/cards"
)

func TestCardRepository_UpsertAndUniverse(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCardRepository(db)
	ctx := context.Background()

	entries := []cards.Entry{
		{Name: "Lightning Bolt", TypeLine: "Instant"},
		{Name: "Forest", TypeLine: "Basic Land — Forest", IsLand: true},
		{Name: "Dryad Arbor", TypeLine: "Land Creature — Forest Dryad", IsLand: true},
	}

	n, err := repo.UpsertCards(ctx, entries)
	if err != nil {
		t.Fatalf("UpsertCards() error = %v", err)
	}
	if n != 3 {
		t.Errorf("UpsertCards() = %d, want 3", n)
	}

	// upserting again updates in place
	if _, err := repo.UpsertCards(ctx, []cards.Entry{{Name: "Lightning Bolt", TypeLine: "Instant — Arcane"}}); err != nil {
		t.Fatalf("UpsertCards() error = %v", err)
	}

	count, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 3 {
		t.Errorf("Count() = %d, want 3", count)
	}

	card, err := repo.GetByName(ctx, "Lightning Bolt")
	if err != nil {
		t.Fatalf("GetByName() error = %v", err)
	}
	if card.TypeLine != "Instant — Arcane" || card.IsLand {
		t.Errorf("GetByName() = %+v", card)
	}

	u, err := repo.Universe(ctx)
	if err != nil {
		t.Fatalf("Universe() error = %v", err)
	}
	if got, want := u.All(), []string{"Dryad Arbor", "Forest", "Lightning Bolt"}; !reflect.DeepEqual(got, want) {
		t.Errorf("All() = %v, want %v", got, want)
	}
	if got, want := u.Nonland(), []string{"Lightning Bolt"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Nonland() = %v, want %v", got, want)
	}
}

func TestCardRepository_GetByNameNotFound(t *testing.T) {
	repo := NewCardRepository(setupTestDB(t))

	_, err := repo.GetByName(context.Background(), "Nope")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByName() error = %v, want ErrNotFound", err)
	}
}

func TestCardRepository_EmptyAndDelete(t *testing.T) {
	repo := NewCardRepository(setupTestDB(t))
	ctx := context.Background()

	n, err := repo.UpsertCards(ctx, nil)
	if err != nil || n != 0 {
		t.Fatalf("UpsertCards(nil) = %d, %v", n, err)
	}

	if _, err := repo.UpsertCards(ctx, []cards.Entry{{Name: "Opt"}}); err != nil {
		t.Fatalf("UpsertCards() error = %v", err)
	}
	if err := repo.DeleteAll(ctx); err != nil {
		t.Fatalf("DeleteAll() error = %v", err)
	}

	u, err := repo.Universe(ctx)
	if err != nil {
		t.Fatalf("Universe() error = %v", err)
	}
	if u.Len() != 0 {
		t.Errorf("Len() = %d, want 0", u.Len())
	}
}
