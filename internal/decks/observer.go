package decks

// Observer receives sampling events. Implementations must be cheap; they are
// called inline from Choice.
type Observer interface {
	// CardsDropped is called once per deck built with names missing from
	// the universe.
	CardsDropped(deck string, names []string)

	// RowsSampled is called after every successful Choice.
	RowsSampled(deck string, rows int, backfillRounds int)

	// SampleFailed is called when Choice returns an error.
	SampleFailed(deck string, err error)
}

type nopObserver struct{}

func (nopObserver) CardsDropped(string, []string) {}
func (nopObserver) RowsSampled(string, int, int)  {}
func (nopObserver) SampleFailed(string, error)    {}
