package decks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestSampler builds a sampler over a 20 card universe and two decks of
// eight nonlands plus a basic land.
func newTestSampler(t *testing.T) *Sampler {
	t.Helper()
	u := testUniverse(t, 20)

	a, err := NewDeck("a", append(cardRange(0, 8), "Forest"), u, WithRand(seeded(10)))
	require.NoError(t, err)
	b, err := NewDeck("b", append(cardRange(10, 18), "Island"), u, WithRand(seeded(11)))
	require.NoError(t, err)
	pool, err := NewPool(a, b)
	require.NoError(t, err)

	all, err := UniverseDeck(u, WithRand(seeded(12)))
	require.NoError(t, err)

	s, err := NewSampler(pool, all)
	require.NoError(t, err)
	return s
}

func TestSampler_Sample(t *testing.T) {
	s := newTestSampler(t)

	sample, err := s.Sample(100, 0.4, 0.2, false)
	require.NoError(t, err)

	assert.Equal(t, 100, sample.Len())
	require.Len(t, sample.Labels, 100)
	assert.Equal(t, 40, sample.NumTrue)
	assert.Equal(t, 20, sample.NumHalf)
	assert.Equal(t, 40, sample.NumFalse)

	for i, label := range sample.Labels {
		if i < 40 {
			assert.Equal(t, 1, label, "row %d", i)
		} else {
			assert.Equal(t, 0, label, "row %d", i)
		}
	}

	// true rows: both cards from the same pool deck
	decks := s.Pool().Decks()
	for i, row := range sample.Pairs[:40] {
		owner := decks[i/20]
		members := toSet(owner.CardNames())
		assert.True(t, members[row[0]] && members[row[1]], "true row %d %q", i, row)
	}

	// half rows: first card in a deck, second outside it
	for i, row := range sample.Pairs[40:60] {
		owner := decks[i/10]
		members := toSet(owner.CardNames())
		assert.True(t, members[row[0]], "half row %d %q", i, row)
		assert.False(t, members[row[1]], "half row %d %q", i, row)
	}

	allCards := toSet(s.AllCards().CardNames())
	for _, row := range sample.Pairs[60:] {
		assert.True(t, allCards[row[0]] && allCards[row[1]])
	}
}

func TestSampler_Sample_Floors(t *testing.T) {
	s := newTestSampler(t)

	sample, err := s.Sample(7, 0.5, 0.3, false)
	require.NoError(t, err)

	assert.Equal(t, 3, sample.NumTrue)
	assert.Equal(t, 2, sample.NumHalf)
	assert.Equal(t, 2, sample.NumFalse)
	assert.Equal(t, 7, sample.Len())
}

func TestSampler_Sample_Zero(t *testing.T) {
	s := newTestSampler(t)

	sample, err := s.Sample(0, 0.5, 0.5, true)
	require.NoError(t, err)
	assert.Equal(t, 0, sample.Len())
	assert.Empty(t, sample.Labels)
}

func TestSampler_Sample_InvalidFractions(t *testing.T) {
	s := newTestSampler(t)

	tests := []struct {
		name  string
		fTrue float64
		fHalf float64
		msg   string
	}{
		{"negative true", -0.1, 0.2, "f_true"},
		{"true above one", 1.1, 0, "f_true"},
		{"negative half", 0.2, -0.5, "f_half"},
		{"half above one", 0, 1.5, "f_half"},
		{"sum above one", 0.5, 0.6, "f_true + f_half"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Sample(10, tt.fTrue, tt.fHalf, false)
			require.ErrorIs(t, err, ErrInvalidSampleFraction)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}

	_, err := s.Sample(-1, 0.5, 0.5, false)
	assert.ErrorIs(t, err, ErrInvalidSampleShape)
}

func TestSampler_Sample_CapacityExceeded(t *testing.T) {
	s := newTestSampler(t)

	// each deck holds nine cards, so 72 unique pairs
	_, err := s.Sample(1000, 1, 0, false)
	assert.ErrorIs(t, err, ErrCapacityExceeded)
}

func TestNewSampler_Nil(t *testing.T) {
	_, err := NewSampler(nil, nil)
	assert.ErrorIs(t, err, ErrInvalidDeckArgument)

	_, err = UniverseDeck(nil)
	assert.ErrorIs(t, err, ErrNilUniverse)
}

func TestSample_Shuffle(t *testing.T) {
	s := newTestSampler(t)

	sample, err := s.Sample(60, 0.5, 0, false)
	require.NoError(t, err)

	before := make(map[[2]string]bool, sample.Len())
	for _, row := range sample.Pairs {
		before[[2]string{row[0], row[1]}] = true
	}

	sample.Shuffle(seeded(99))
	require.Equal(t, 60, sample.Len())
	require.Len(t, sample.Labels, 60)

	ones := 0
	for i, row := range sample.Pairs {
		assert.True(t, before[[2]string{row[0], row[1]}], "row %q not in original sample", row)
		ones += sample.Labels[i]
	}
	assert.Equal(t, 30, ones)
}
