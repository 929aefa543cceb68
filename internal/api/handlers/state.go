package handlers

import (
	"errors"
	"net/http"
	"sync"

	"github.com/ramonehamilton/mtg-decksampler/internal/api/response"
	"github.com/ramonehamilton/mtg-decksampler/internal/decks"
	"github.com/ramonehamilton/mtg-decksampler/internal/tags"
)

var (
	errNoSampler = errors.New("no decks loaded")
	errNoGraph   = errors.New("no tag taxonomy loaded")
	errNoStore   = errors.New("no database configured")
)

// State holds the live sampler and tag graph. Readers take a snapshot; the
// deck directory watcher swaps the sampler without blocking them for long.
type State struct {
	mu      sync.RWMutex
	sampler *decks.Sampler
	graph   *tags.Graph
}

// NewState creates a State. Either argument may be nil until loaded.
func NewState(sampler *decks.Sampler, graph *tags.Graph) *State {
	return &State{sampler: sampler, graph: graph}
}

// Sampler returns the current sampler, or nil.
func (s *State) Sampler() *decks.Sampler {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sampler
}

// SetSampler replaces the current sampler.
func (s *State) SetSampler(sampler *decks.Sampler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sampler = sampler
}

// Graph returns the current tag graph, or nil.
func (s *State) Graph() *tags.Graph {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.graph
}

// SetGraph replaces the current tag graph.
func (s *State) SetGraph(graph *tags.Graph) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.graph = graph
}

// writeSamplingError maps sampling errors to HTTP statuses.
func writeSamplingError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, decks.ErrInvalidSampleShape),
		errors.Is(err, decks.ErrInvalidSampleFraction),
		errors.Is(err, decks.ErrCapacityExceeded),
		errors.Is(err, decks.ErrEmptySource):
		response.BadRequest(w, err)
	case errors.Is(err, decks.ErrSamplingStalled):
		response.UnprocessableEntity(w, err)
	case errors.Is(err, decks.ErrEmptyPool):
		response.ServiceUnavailable(w, err)
	default:
		response.InternalError(w, err)
	}
}
