package repository

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/ramonehamilton/mtg-decksampler/internal/cards"
	"github.com/ramonehamilton/mtg-decksampler/internal/decks"
)

func testDeck(t *testing.T, name string, raw ...string) *decks.Deck {
	t.Helper()
	u := cards.NewUniverse([]string{"Lightning Bolt", "Shock", "Opt", "Mountain"}, []string{"Mountain"})
	d, err := decks.NewDeck(name, raw, u)
	if err != nil {
		t.Fatalf("NewDeck() error = %v", err)
	}
	return d
}

func TestDeckRepository_SaveAndGet(t *testing.T) {
	repo := NewDeckRepository(setupTestDB(t))
	ctx := context.Background()

	saved, err := repo.SaveDeck(ctx, testDeck(t, "burn", "Lightning Bolt", "Shock", "Mountain", "Goblin Guide"), "decks/burn.txt")
	if err != nil {
		t.Fatalf("SaveDeck() error = %v", err)
	}
	if saved.ID == 0 || saved.Name != "burn" || saved.Source != "decks/burn.txt" {
		t.Errorf("SaveDeck() = %+v", saved)
	}
	if saved.NumCards != 3 || saved.NumDropped != 1 {
		t.Errorf("counts = %d/%d, want 3/1", saved.NumCards, saved.NumDropped)
	}

	got, err := repo.GetCards(ctx, "burn")
	if err != nil {
		t.Fatalf("GetCards() error = %v", err)
	}
	if want := []string{"Lightning Bolt", "Mountain", "Shock"}; !reflect.DeepEqual(got.Cards, want) {
		t.Errorf("Cards = %v, want %v", got.Cards, want)
	}
	if want := []string{"Goblin Guide"}; !reflect.DeepEqual(got.Dropped, want) {
		t.Errorf("Dropped = %v, want %v", got.Dropped, want)
	}
}

func TestDeckRepository_SaveReplaces(t *testing.T) {
	repo := NewDeckRepository(setupTestDB(t))
	ctx := context.Background()

	first, err := repo.SaveDeck(ctx, testDeck(t, "burn", "Lightning Bolt", "Shock"), "a")
	if err != nil {
		t.Fatalf("SaveDeck() error = %v", err)
	}
	second, err := repo.SaveDeck(ctx, testDeck(t, "burn", "Opt"), "b")
	if err != nil {
		t.Fatalf("SaveDeck() error = %v", err)
	}

	if first.ID != second.ID {
		t.Errorf("deck id changed from %d to %d", first.ID, second.ID)
	}
	if second.NumCards != 1 || second.Source != "b" {
		t.Errorf("SaveDeck() = %+v", second)
	}
}

func TestDeckRepository_ListAndDelete(t *testing.T) {
	repo := NewDeckRepository(setupTestDB(t))
	ctx := context.Background()

	for _, name := range []string{"zoo", "burn"} {
		if _, err := repo.SaveDeck(ctx, testDeck(t, name, "Opt", "Shock"), ""); err != nil {
			t.Fatalf("SaveDeck() error = %v", err)
		}
	}

	list, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 2 || list[0].Name != "burn" || list[1].Name != "zoo" {
		t.Fatalf("List() = %v", list)
	}

	if err := repo.Delete(ctx, "zoo"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := repo.Delete(ctx, "zoo"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete() twice error = %v, want ErrNotFound", err)
	}
	if _, err := repo.GetCards(ctx, "zoo"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetCards() error = %v, want ErrNotFound", err)
	}
}

func TestDeckRepository_SaveNil(t *testing.T) {
	repo := NewDeckRepository(setupTestDB(t))
	if _, err := repo.SaveDeck(context.Background(), nil, ""); !errors.Is(err, decks.ErrInvalidDeckArgument) {
		t.Errorf("SaveDeck(nil) error = %v", err)
	}
}
