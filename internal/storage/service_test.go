package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramonehamilton/mtg-decksampler/internal/cards"
	"github.com/ramonehamilton/mtg-decksampler/internal/decks"
	"github.com/ramonehamilton/mtg-decksampler/internal/tags"
)

var testEntries = []cards.Entry{
	{Name: "Lightning Bolt", TypeLine: "Instant"},
	{Name: "Shock", TypeLine: "Instant"},
	{Name: "Opt", TypeLine: "Instant"},
	{Name: "Mountain", TypeLine: "Basic Land — Mountain", IsLand: true},
}

func TestService_ImportUniverse(t *testing.T) {
	svc := OpenTestService(t)
	ctx := context.Background()

	n, err := svc.ImportUniverse(ctx, testEntries, false)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	u, err := svc.Universe(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, u.Len())
	assert.True(t, u.IsLand("Mountain"))

	// replace drops cards missing from the new import
	_, err = svc.ImportUniverse(ctx, testEntries[:2], true)
	require.NoError(t, err)
	count, err := svc.Cards().Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestService_SaveAndLoadDecks(t *testing.T) {
	svc := OpenTestService(t)
	ctx := context.Background()

	small := cards.NewUniverse([]string{"Lightning Bolt", "Shock"}, nil)
	d, err := decks.NewDeck("burn", []string{"Lightning Bolt", "Shock", "Opt"}, small)
	require.NoError(t, err)
	require.Equal(t, []string{"Opt"}, d.DroppedCardNames())

	saved, err := svc.SaveDecks(ctx, []*decks.Deck{d}, "burn.txt")
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, 2, saved[0].NumCards)
	assert.Equal(t, 1, saved[0].NumDropped)

	// a larger universe recovers the previously dropped card
	full := cards.UniverseFromEntries(testEntries)
	pool, err := svc.LoadPool(ctx, full)
	require.NoError(t, err)
	require.Equal(t, 1, pool.NumDecks())

	loaded := pool.Decks()[0]
	assert.Equal(t, "burn", loaded.Name())
	assert.Equal(t, []string{"Lightning Bolt", "Opt", "Shock"}, loaded.CardNames())
	assert.Empty(t, loaded.DroppedCardNames())
	assert.Equal(t, []string{"Mountain"}, loaded.ComplementCardNames())
}

func TestService_SaveDecksRollsBack(t *testing.T) {
	svc := OpenTestService(t)
	ctx := context.Background()

	u := cards.UniverseFromEntries(testEntries)
	d, err := decks.NewDeck("burn", []string{"Shock", "Opt"}, u)
	require.NoError(t, err)

	_, err = svc.SaveDecks(ctx, []*decks.Deck{d, nil}, "mixed")
	require.Error(t, err)
	assert.True(t, errors.Is(err, decks.ErrInvalidDeckArgument))

	list, err := svc.Decks().List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestService_PublishTags(t *testing.T) {
	svc := OpenTestService(t)
	ctx := context.Background()

	g, err := tags.Build(map[string]any{"burn": nil, "draw": map[string]any{"cantrip": nil}})
	require.NoError(t, err)

	results, err := svc.PublishTags(ctx,
		tags.NewTaxonomySource(g),
		tags.NewTappedoutSource([]tags.TappedoutRow{{Card: "Opt", Tag: "cantrip"}, {Card: "Opt", Tag: "engine"}}),
	)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, 3, results[0].Edges)

	edges, err := svc.Tags().ListEdges(ctx, tags.OfficialTagLabel)
	require.NoError(t, err)
	require.Len(t, edges, 3)
	for i, e := range g.Edges() {
		assert.Equal(t, e.Child, edges[i].Child)
		assert.Equal(t, e.Parent, edges[i].Parent)
	}

	cardTags, err := svc.Tags().TagsForCard(ctx, "Opt")
	require.NoError(t, err)
	require.Len(t, cardTags, 1)
	assert.Equal(t, "cantrip", cardTags[0].Tag)
}

func TestService_RecordSampleRun(t *testing.T) {
	svc := OpenTestService(t)
	ctx := context.Background()

	sample := &decks.Sample{
		Pairs:   [][]string{{"a", "b"}, {"c", "d"}},
		Labels:  []int{1, 0},
		NumTrue: 1, NumFalse: 1,
	}
	run := SampleRunFor(sample, 0.5, 0, true, 3, 1500*time.Millisecond)
	require.NoError(t, svc.RecordSampleRun(ctx, run))
	assert.NotZero(t, run.ID)

	runs, err := svc.SampleRuns().ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, 2, runs[0].N)
	assert.Equal(t, int64(1500), runs[0].DurationMs)
	assert.True(t, runs[0].NoLands)
}
