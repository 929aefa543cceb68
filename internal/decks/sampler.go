package decks

import (
	"fmt"
	"log"
	"math/rand/v2"

	"github.com/ramonehamilton/mtg-decksampler/internal/cards"
)

// UniverseDeckName labels the deck built from the whole card universe.
const UniverseDeckName = "universe"

// Sample is a block of labelled card pairs. Pairs[i] is labelled Labels[i].
type Sample struct {
	Pairs  [][]string `json:"pairs"`
	Labels []int      `json:"labels"`

	NumTrue  int `json:"num_true"`
	NumHalf  int `json:"num_half"`
	NumFalse int `json:"num_false"`
}

// Len returns the number of rows.
func (s *Sample) Len() int { return len(s.Pairs) }

// Shuffle permutes pairs and labels together. A nil rng uses the top-level
// math/rand/v2 source.
func (s *Sample) Shuffle(rng *rand.Rand) {
	swap := func(i, j int) {
		s.Pairs[i], s.Pairs[j] = s.Pairs[j], s.Pairs[i]
		s.Labels[i], s.Labels[j] = s.Labels[j], s.Labels[i]
	}
	if rng != nil {
		rng.Shuffle(len(s.Pairs), swap)
		return
	}
	rand.Shuffle(len(s.Pairs), swap)
}

// Sampler builds labelled training pairs: true pairs from a pool of real
// decks, and negatives from deck complements and the full universe.
type Sampler struct {
	pool     *Pool
	allCards *Deck
}

// NewSampler creates a sampler over a pool of known decks and a deck holding
// every card in the universe.
func NewSampler(pool *Pool, allCards *Deck) (*Sampler, error) {
	if pool == nil || allCards == nil {
		return nil, ErrInvalidDeckArgument
	}
	return &Sampler{pool: pool, allCards: allCards}, nil
}

// UniverseDeck builds the deck of every card in the universe.
func UniverseDeck(universe *cards.Universe, opts ...Option) (*Deck, error) {
	if universe == nil {
		return nil, ErrNilUniverse
	}
	return NewDeck(UniverseDeckName, universe.All(), universe, opts...)
}

// Pool returns the sampler's deck pool.
func (s *Sampler) Pool() *Pool { return s.pool }

// AllCards returns the sampler's universe deck.
func (s *Sampler) AllCards() *Deck { return s.allCards }

// Sample builds n labelled pairs, ordered [true][half][false]:
//   - floor(n·fTrue) true pairs, both cards from the same pool deck, label 1
//   - floor(n·fHalf) half pairs, one card from a deck and one from its complement, label 0
//   - the rest false pairs, both drawn from the whole universe, label 0
//
// Rows are not shuffled.
func (s *Sampler) Sample(n int, fTrue, fHalf float64, noLands bool) (*Sample, error) {
	var errMsg string
	switch {
	case !(0 <= fTrue && fTrue <= 1):
		errMsg = "f_true must be between 0 and 1"
	case !(0 <= fHalf && fHalf <= 1):
		errMsg = "f_half must be between 0 and 1"
	case !(0 <= fTrue+fHalf && fTrue+fHalf <= 1):
		errMsg = "f_true + f_half must be between 0 and 1"
	}
	if errMsg != "" {
		log.Printf("[DeckSampler] Error: %s (f_true=%v, f_half=%v)", errMsg, fTrue, fHalf)
		return nil, fmt.Errorf("%w: %s", ErrInvalidSampleFraction, errMsg)
	}
	if n < 0 {
		return nil, fmt.Errorf("%w: negative sample size %d", ErrInvalidSampleShape, n)
	}

	nTrue := int(float64(n) * fTrue)
	nHalf := int(float64(n) * fHalf)
	nFalse := n - nTrue - nHalf

	truePairs, err := s.pool.Choice(Shape{Rows: nTrue, Cols: 2},
		ChoiceOptions{InDeck: 2, ForceUnique: true, NoLands: noLands})
	if err != nil {
		return nil, fmt.Errorf("failed to sample true pairs: %w", err)
	}

	halfPairs, err := s.pool.Choice(Shape{Rows: nHalf, Cols: 2},
		ChoiceOptions{InDeck: 1, NotInDeck: 1, ForceUnique: true, NoLands: noLands})
	if err != nil {
		return nil, fmt.Errorf("failed to sample half pairs: %w", err)
	}

	falsePairs, err := s.allCards.Choice(Shape{Rows: nFalse, Cols: 2},
		ChoiceOptions{InDeck: 2, ForceUnique: true, NoLands: noLands})
	if err != nil {
		return nil, fmt.Errorf("failed to sample false pairs: %w", err)
	}

	pairs := make([][]string, 0, n)
	pairs = append(pairs, truePairs...)
	pairs = append(pairs, halfPairs...)
	pairs = append(pairs, falsePairs...)

	// half pairs are negatives, same as false pairs
	labels := make([]int, n)
	for i := 0; i < nTrue; i++ {
		labels[i] = 1
	}

	return &Sample{
		Pairs:    pairs,
		Labels:   labels,
		NumTrue:  nTrue,
		NumHalf:  nHalf,
		NumFalse: nFalse,
	}, nil
}
