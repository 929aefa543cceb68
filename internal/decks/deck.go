// Package decks implements decks of card names and the samplers that turn
// them into labelled card pairs for recommendation training.
package decks

import (
	"fmt"
	"log"
	"math/rand/v2"
	"sort"
	"strings"

	"github.com/ramonehamilton/mtg-decksampler/internal/cards"
)

const (
	// DefaultMaxStallRounds is how many consecutive backfill rounds may add
	// no new unique row before Choice gives up.
	DefaultMaxStallRounds = 1000

	// minBackfillBatch is the smallest batch drawn per backfill round. Rows
	// are taken in draw order, so oversized batches do not bias the sample.
	minBackfillBatch = 64
)

// Deck is a named, deduplicated set of card names validated against a
// universe. A Deck is immutable once built; sampling never mutates it.
type Deck struct {
	name        string
	ignoreLands bool

	cardNames                  []string
	nonlandCardNames           []string
	complementCardNames        []string
	nonlandComplementCardNames []string
	droppedCardNames           []string
	complementSkipped          bool

	complementLimit int
	maxStallRounds  int
	rng             *rand.Rand
	observer        Observer
}

// Option configures a Deck.
type Option func(*Deck)

// WithIgnoreLands controls whether sampling always excludes lands. Default true.
func WithIgnoreLands(ignore bool) Option {
	return func(d *Deck) { d.ignoreLands = ignore }
}

// WithRand sets the random source. Without it the goroutine-safe top-level
// math/rand/v2 source is used. A *rand.Rand is not safe for concurrent use.
func WithRand(rng *rand.Rand) Option {
	return func(d *Deck) { d.rng = rng }
}

// WithObserver attaches a sampling observer (e.g. metrics).
func WithObserver(o Observer) Option {
	return func(d *Deck) {
		if o != nil {
			d.observer = o
		}
	}
}

// WithComplementLimit skips complement computation when the universe holds
// more than limit cards. Zero never skips.
func WithComplementLimit(limit int) Option {
	return func(d *Deck) { d.complementLimit = limit }
}

// WithMaxStallRounds overrides DefaultMaxStallRounds.
func WithMaxStallRounds(n int) Option {
	return func(d *Deck) {
		if n > 0 {
			d.maxStallRounds = n
		}
	}
}

// NewDeck cleans raw card names, drops those missing from the universe and
// prepares the in-deck and complement card arrays used for sampling.
func NewDeck(name string, raw []string, universe *cards.Universe, opts ...Option) (*Deck, error) {
	if universe == nil {
		return nil, ErrNilUniverse
	}

	d := &Deck{
		name:           name,
		ignoreLands:    true,
		maxStallRounds: DefaultMaxStallRounds,
		observer:       nopObserver{},
	}
	for _, opt := range opts {
		opt(d)
	}

	inDeck := cards.NormalizeNames(raw)

	for cardName := range inDeck {
		if universe.Contains(cardName) {
			d.cardNames = append(d.cardNames, cardName)
			if !universe.IsLand(cardName) {
				d.nonlandCardNames = append(d.nonlandCardNames, cardName)
			}
			continue
		}
		d.droppedCardNames = append(d.droppedCardNames, cardName)
	}
	sort.Strings(d.cardNames)
	sort.Strings(d.nonlandCardNames)
	sort.Strings(d.droppedCardNames)

	if len(d.droppedCardNames) > 0 {
		for _, dropped := range d.droppedCardNames {
			log.Printf("[Deck] Warning: card not in card universe: %q (deck %q)", dropped, name)
		}
		d.observer.CardsDropped(name, d.DroppedCardNames())
	}

	if d.complementLimit > 0 && universe.Len() > d.complementLimit {
		log.Printf("[Deck] Universe of %d cards exceeds complement limit %d, skipping complement for deck %q",
			universe.Len(), d.complementLimit, name)
		d.complementSkipped = true
		return d, nil
	}

	for _, cardName := range universe.All() {
		if _, ok := inDeck[cardName]; ok {
			continue
		}
		d.complementCardNames = append(d.complementCardNames, cardName)
		if !universe.IsLand(cardName) {
			d.nonlandComplementCardNames = append(d.nonlandComplementCardNames, cardName)
		}
	}

	return d, nil
}

// Name returns the deck label (may be empty).
func (d *Deck) Name() string { return d.name }

// IgnoreLands reports whether sampling always excludes lands.
func (d *Deck) IgnoreLands() bool { return d.ignoreLands }

// ComplementSkipped reports whether complement computation was skipped.
func (d *Deck) ComplementSkipped() bool { return d.complementSkipped }

// CardNames returns the validated card names in the deck.
func (d *Deck) CardNames() []string { return clone(d.cardNames) }

// NonlandCardNames returns the deck's card names that are not lands.
func (d *Deck) NonlandCardNames() []string { return clone(d.nonlandCardNames) }

// ComplementCardNames returns universe card names not in the deck.
func (d *Deck) ComplementCardNames() []string { return clone(d.complementCardNames) }

// NonlandComplementCardNames returns the complement without lands.
func (d *Deck) NonlandComplementCardNames() []string { return clone(d.nonlandComplementCardNames) }

// DroppedCardNames returns input names that were not in the universe.
func (d *Deck) DroppedCardNames() []string { return clone(d.droppedCardNames) }

// NumCards returns the number of validated cards in the deck.
func (d *Deck) NumCards() int { return len(d.cardNames) }

// MaxUniquePairs returns n·(n−1), the number of ordered pairs of distinct
// cards in the deck.
func (d *Deck) MaxUniquePairs() int {
	n := d.NumCards()
	return n * (n - 1)
}

// Shape is the size of a sample: Rows rows of Cols card names.
type Shape struct {
	Rows int
	Cols int
}

// ChoiceOptions controls how each column of a sample is drawn. The first
// InDeck columns come from the deck, the next NotInDeck from its complement.
type ChoiceOptions struct {
	InDeck      int
	NotInDeck   int
	ForceUnique bool
	// NoLands excludes lands. Decks built with WithIgnoreLands(true)
	// exclude lands regardless.
	NoLands bool
}

// DefaultChoiceOptions draws both columns of a pair from the deck with
// unique rows.
func DefaultChoiceOptions() ChoiceOptions {
	return ChoiceOptions{InDeck: 2, ForceUnique: true}
}

// Choice draws a Rows x Cols sample of card names. Every cell is drawn
// independently with replacement. With ForceUnique no two rows are equal;
// missing rows are backfilled until the shape is filled.
func (d *Deck) Choice(shape Shape, opts ChoiceOptions) ([][]string, error) {
	rows, rounds, err := d.choice(shape, opts)
	if err != nil {
		d.observer.SampleFailed(d.name, err)
		return nil, err
	}
	d.observer.RowsSampled(d.name, len(rows), rounds)
	return rows, nil
}

func (d *Deck) choice(shape Shape, opts ChoiceOptions) ([][]string, int, error) {
	if shape.Rows < 0 || opts.InDeck < 0 || opts.NotInDeck < 0 {
		return nil, 0, fmt.Errorf("%w: negative dimension in %dx%d (in deck %d, not in deck %d)",
			ErrInvalidSampleShape, shape.Rows, shape.Cols, opts.InDeck, opts.NotInDeck)
	}
	if opts.InDeck+opts.NotInDeck != shape.Cols {
		return nil, 0, fmt.Errorf("%w: n_in_deck (%d) and n_not_in_deck (%d) must sum to the requested %d columns",
			ErrInvalidSampleShape, opts.InDeck, opts.NotInDeck, shape.Cols)
	}

	if opts.InDeck == 0 && opts.NotInDeck == 2 {
		log.Printf("[Deck] Warning: sampling only cards *not* in deck %q, you probably want to sample all cards", d.name)
	}

	if opts.ForceUnique && shape.Cols == 2 && shape.Rows > d.MaxUniquePairs() {
		return nil, 0, fmt.Errorf("%w: requested %d rows from deck %q with %d unique pairs",
			ErrCapacityExceeded, shape.Rows, d.name, d.MaxUniquePairs())
	}

	if shape.Rows == 0 {
		return [][]string{}, 0, nil
	}

	in, out := d.cardNames, d.complementCardNames
	if opts.NoLands || d.ignoreLands {
		in, out = d.nonlandCardNames, d.nonlandComplementCardNames
	}
	if opts.InDeck > 0 && len(in) == 0 {
		return nil, 0, fmt.Errorf("%w: deck %q has no cards in deck", ErrEmptySource, d.name)
	}
	if opts.NotInDeck > 0 && len(out) == 0 {
		return nil, 0, fmt.Errorf("%w: deck %q has an empty complement", ErrEmptySource, d.name)
	}

	if !opts.ForceUnique {
		return d.draw(shape.Rows, opts, in, out), 0, nil
	}
	if !distinctRowsAtLeast(shape.Rows, len(in), opts.InDeck, len(out), opts.NotInDeck) {
		return nil, 0, fmt.Errorf("%w: requested %d unique rows from deck %q but its %d drawable and %d complement cards cannot fill them",
			ErrCapacityExceeded, shape.Rows, d.name, len(in), len(out))
	}

	seen := make(map[string]struct{}, shape.Rows)
	result := make([][]string, 0, shape.Rows)
	keep := func(batch [][]string) int {
		added := 0
		for _, row := range batch {
			if len(result) == shape.Rows {
				break
			}
			key := strings.Join(row, "\x00")
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			result = append(result, row)
			added++
		}
		return added
	}

	keep(d.draw(shape.Rows, opts, in, out))

	rounds, stalled := 0, 0
	for len(result) < shape.Rows {
		rounds++
		batch := max(shape.Rows-len(result), minBackfillBatch)
		if keep(d.draw(batch, opts, in, out)) > 0 {
			stalled = 0
			continue
		}
		stalled++
		if stalled >= d.maxStallRounds {
			return nil, rounds, fmt.Errorf("%w: %d of %d unique rows from deck %q after %d rounds",
				ErrSamplingStalled, len(result), shape.Rows, d.name, rounds)
		}
	}

	return result, rounds, nil
}

// distinctRowsAtLeast reports whether nIn^inCols * nOut^outCols, the number
// of distinct rows a draw with replacement can produce, reaches want.
func distinctRowsAtLeast(want, nIn, inCols, nOut, outCols int) bool {
	total := 1
	if total >= want {
		return true
	}
	for _, src := range [][2]int{{nIn, inCols}, {nOut, outCols}} {
		for i := 0; i < src[1]; i++ {
			total *= src[0]
			if total >= want {
				return true
			}
		}
	}
	return false
}

// draw samples rows independently with replacement.
func (d *Deck) draw(rows int, opts ChoiceOptions, in, out []string) [][]string {
	batch := make([][]string, rows)
	for i := range batch {
		row := make([]string, 0, opts.InDeck+opts.NotInDeck)
		for j := 0; j < opts.InDeck; j++ {
			row = append(row, in[d.intN(len(in))])
		}
		for j := 0; j < opts.NotInDeck; j++ {
			row = append(row, out[d.intN(len(out))])
		}
		batch[i] = row
	}
	return batch
}

func (d *Deck) intN(n int) int {
	if d.rng != nil {
		return d.rng.IntN(n)
	}
	return rand.IntN(n)
}

func clone(s []string) []string {
	out := make([]string, len(s))
	copy(out, s)
	return out
}
