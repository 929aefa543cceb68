package decks

import (
	"fmt"
	"math/rand/v2"
	"sync"
	"testing"

	"github.com/ramonehamilton/mtg-decksampler/internal/cards"
)

var testLands = []string{"Forest", "Island", "Mountain"}

// testUniverse returns a universe of n nonland cards named "Card 00".."Card n-1"
// plus three basic lands.
func testUniverse(t *testing.T, n int) *cards.Universe {
	t.Helper()
	all := make([]string, 0, n+len(testLands))
	for i := 0; i < n; i++ {
		all = append(all, cardName(i))
	}
	all = append(all, testLands...)
	return cards.NewUniverse(all, testLands)
}

func cardName(i int) string {
	return fmt.Sprintf("Card %02d", i)
}

func cardRange(from, to int) []string {
	names := make([]string, 0, to-from)
	for i := from; i < to; i++ {
		names = append(names, cardName(i))
	}
	return names
}

func seeded(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func toSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}

// recordingObserver captures observer callbacks.
type recordingObserver struct {
	mu      sync.Mutex
	dropped map[string][]string
	rows    int
	calls   int
	errors  []error
}

func newRecordingObserver() *recordingObserver {
	return &recordingObserver{dropped: make(map[string][]string)}
}

func (o *recordingObserver) CardsDropped(deck string, names []string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.dropped[deck] = names
}

func (o *recordingObserver) RowsSampled(_ string, rows int, _ int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.rows += rows
	o.calls++
}

func (o *recordingObserver) SampleFailed(_ string, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.errors = append(o.errors, err)
}

// zeroSource always yields zero, so every draw picks the first card.
type zeroSource struct{}

func (zeroSource) Uint64() uint64 { return 0 }
