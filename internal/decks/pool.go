package decks

import (
	"fmt"
	"log"
	"sort"
)

// Pool is an ordered collection of decks sampled in equal contiguous chunks.
type Pool struct {
	decks []*Deck
	debug bool
}

// NewPool creates a pool holding decks in the given order.
func NewPool(decks ...*Deck) (*Pool, error) {
	p := &Pool{}
	if len(decks) == 0 {
		return p, nil
	}
	if err := p.Add(decks...); err != nil {
		return nil, err
	}
	return p, nil
}

// SetDebug toggles chunk-level debug logging.
func (p *Pool) SetDebug(debug bool) { p.debug = debug }

// Add appends one or more decks. Nothing is added if any deck is nil.
func (p *Pool) Add(decks ...*Deck) error {
	if len(decks) == 0 {
		return ErrInvalidDeckArgument
	}
	for i, d := range decks {
		if d == nil {
			return fmt.Errorf("%w: deck %d is nil", ErrInvalidDeckArgument, i)
		}
	}
	p.decks = append(p.decks, decks...)
	return nil
}

// Decks returns the member decks in insertion order.
func (p *Pool) Decks() []*Deck {
	out := make([]*Deck, len(p.decks))
	copy(out, p.decks)
	return out
}

// NumDecks returns the number of member decks.
func (p *Pool) NumDecks() int { return len(p.decks) }

// MaxChunkSize is the smallest MaxUniquePairs across member decks: the
// largest per-deck unique chunk every deck can serve. Zero for an empty pool.
func (p *Pool) MaxChunkSize() int {
	if len(p.decks) == 0 {
		return 0
	}
	size := p.decks[0].MaxUniquePairs()
	for _, d := range p.decks[1:] {
		size = min(size, d.MaxUniquePairs())
	}
	return size
}

// Dropped returns the union of every member deck's dropped card names.
func (p *Pool) Dropped() []string {
	set := make(map[string]struct{})
	for _, d := range p.decks {
		for _, name := range d.droppedCardNames {
			set[name] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for name := range set {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Choice splits shape.Rows into ceil(rows/numDecks) sized contiguous chunks,
// one per deck in insertion order, and concatenates each deck's sample. The
// final chunk is truncated so exactly shape.Rows rows are returned.
func (p *Pool) Choice(shape Shape, opts ChoiceOptions) ([][]string, error) {
	if len(p.decks) == 0 {
		return nil, ErrEmptyPool
	}
	if shape.Rows < 0 {
		return nil, fmt.Errorf("%w: negative row count %d", ErrInvalidSampleShape, shape.Rows)
	}

	chunk := (shape.Rows + len(p.decks) - 1) / len(p.decks)
	if p.debug {
		log.Printf("[DeckPool] chunksize = %d x %d", chunk, shape.Cols)
	}

	result := make([][]string, 0, shape.Rows)
	for i, d := range p.decks {
		i0 := i * chunk
		i1 := min((i+1)*chunk, shape.Rows)
		if p.debug {
			log.Printf("[DeckPool] i0, i1 = %d, %d", i0, i1)
		}

		rows, err := d.Choice(Shape{Rows: i1 - i0, Cols: shape.Cols}, opts)
		if err != nil {
			return nil, fmt.Errorf("deck %d (%q): %w", i, d.Name(), err)
		}
		result = append(result, rows...)

		if i1 == shape.Rows {
			break
		}
	}

	return result, nil
}
