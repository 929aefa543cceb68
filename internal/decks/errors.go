package decks

import "errors"

var (
	// ErrInvalidSampleShape means the requested columns do not equal
	// InDeck + NotInDeck, or a dimension is negative.
	ErrInvalidSampleShape = errors.New("invalid sample shape")

	// ErrCapacityExceeded means a unique two-column sample asked for more
	// rows than the deck has distinct ordered pairs.
	ErrCapacityExceeded = errors.New("sample size exceeds unique pair capacity")

	// ErrInvalidDeckArgument means a pool was handed something other than
	// one or more decks.
	ErrInvalidDeckArgument = errors.New("append a single deck or list of decks")

	// ErrInvalidSampleFraction means f_true, f_half or their sum is outside [0, 1].
	ErrInvalidSampleFraction = errors.New("invalid sample fraction")

	// ErrSamplingStalled means unique backfill stopped producing new rows.
	ErrSamplingStalled = errors.New("unique sampling stalled")

	// ErrEmptySource means a column was requested from an empty card set.
	ErrEmptySource = errors.New("no cards to sample from")

	// ErrEmptyPool means a pool with no decks was asked to sample.
	ErrEmptyPool = errors.New("deck pool is empty")

	// ErrNilUniverse means a deck was built without a card universe.
	ErrNilUniverse = errors.New("card universe is required")
)
