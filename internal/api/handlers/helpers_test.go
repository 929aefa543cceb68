package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/ramonehamilton/mtg-decksampler/internal/cards"
	"github.com/ramonehamilton/mtg-decksampler/internal/decks"
	"github.com/ramonehamilton/mtg-decksampler/internal/storage/models"
	"github.com/ramonehamilton/mtg-decksampler/internal/tags"
)

// newTestSampler builds a pool of two ten-card decks over a forty card
// universe plus two basic lands.
func newTestSampler(t *testing.T) *decks.Sampler {
	t.Helper()

	lands := []string{"Forest", "Island"}
	all := make([]string, 0, 42)
	for i := 0; i < 40; i++ {
		all = append(all, testCardName(i))
	}
	all = append(all, lands...)
	universe := cards.NewUniverse(all, lands)

	alphaCards := append([]string{"Forest", "Unknown Card"}, all[0:10]...)
	alpha, err := decks.NewDeck("alpha", alphaCards, universe)
	if err != nil {
		t.Fatalf("NewDeck(alpha) error = %v", err)
	}
	beta, err := decks.NewDeck("beta", all[10:20], universe)
	if err != nil {
		t.Fatalf("NewDeck(beta) error = %v", err)
	}
	pool, err := decks.NewPool(alpha, beta)
	if err != nil {
		t.Fatalf("NewPool() error = %v", err)
	}
	allCards, err := decks.UniverseDeck(universe)
	if err != nil {
		t.Fatalf("UniverseDeck() error = %v", err)
	}
	sampler, err := decks.NewSampler(pool, allCards)
	if err != nil {
		t.Fatalf("NewSampler() error = %v", err)
	}
	return sampler
}

func testCardName(i int) string {
	return fmt.Sprintf("Card %02d", i)
}

func newTestGraph(t *testing.T) *tags.Graph {
	t.Helper()
	g, err := tags.NewGraph(tags.Taxonomy{
		{Name: "removal", Children: tags.Taxonomy{{Name: "creature"}, {Name: "artifact"}}},
		{Name: "ramp"},
	})
	if err != nil {
		t.Fatalf("NewGraph() error = %v", err)
	}
	return g
}

// newTestRouter mounts the handlers the way the server does.
func newTestRouter(state *State, recorder SampleRecorder, cardTags CardTagLister) http.Handler {
	r := chi.NewRouter()

	sampleHandler := NewSampleHandler(state, nil, recorder, 1000)
	r.Post("/sample", sampleHandler.Sample)
	r.Get("/stats", sampleHandler.Stats)

	deckHandler := NewDeckHandler(state, 1000)
	r.Get("/decks", deckHandler.GetDecks)
	r.Get("/decks/{name}", deckHandler.GetDeck)
	r.Post("/decks/{name}/choice", deckHandler.Choice)

	tagHandler := NewTagHandler(state, cardTags)
	r.Get("/tags/edges", tagHandler.GetEdges)
	r.Get("/tags/chart", tagHandler.GetChart)
	r.Get("/tags/cards/{card}", tagHandler.GetCardTags)
	return r
}

func doRequest(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// decodeData unpacks the {"data": ...} envelope into v.
func decodeData(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	envelope := struct {
		Data json.RawMessage `json:"data"`
	}{}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if err := json.Unmarshal(envelope.Data, v); err != nil {
		t.Fatalf("decode data: %v", err)
	}
}

type mockRecorder struct {
	mu   sync.Mutex
	runs []*models.SampleRun
	err  error
}

func (m *mockRecorder) RecordSampleRun(_ context.Context, run *models.SampleRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs = append(m.runs, run)
	return m.err
}

type mockCardTags struct {
	tags map[string][]*models.CardTag
	err  error
}

func (m *mockCardTags) TagsForCard(_ context.Context, cardName string) ([]*models.CardTag, error) {
	return m.tags[cardName], m.err
}
