package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ramonehamilton/mtg-decksampler/internal/api/response"
	"github.com/ramonehamilton/mtg-decksampler/internal/decks"
)

// MaxChoiceColumns bounds n_in_deck + n_not_in_deck on a choice request.
const MaxChoiceColumns = 16

// DeckHandler handles deck-related API requests.
type DeckHandler struct {
	state   *State
	maxRows int
}

// NewDeckHandler creates a new DeckHandler. maxRows bounds the rows of a
// choice request; zero means no bound.
func NewDeckHandler(state *State, maxRows int) *DeckHandler {
	return &DeckHandler{state: state, maxRows: maxRows}
}

// DeckSummary describes one deck in the pool.
type DeckSummary struct {
	Name           string   `json:"name"`
	NumCards       int      `json:"num_cards"`
	MaxUniquePairs int      `json:"max_unique_pairs"`
	Dropped        []string `json:"dropped,omitempty"`
}

// DeckDetail is a deck with its card list.
type DeckDetail struct {
	DeckSummary
	Cards []string `json:"cards"`
}

func summarize(d *decks.Deck) DeckSummary {
	return DeckSummary{
		Name:           d.Name(),
		NumCards:       d.NumCards(),
		MaxUniquePairs: d.MaxUniquePairs(),
		Dropped:        d.DroppedCardNames(),
	}
}

// GetDecks lists the decks in the pool.
func (h *DeckHandler) GetDecks(w http.ResponseWriter, _ *http.Request) {
	sampler := h.state.Sampler()
	if sampler == nil {
		response.ServiceUnavailable(w, errNoSampler)
		return
	}

	pool := sampler.Pool().Decks()
	out := make([]DeckSummary, 0, len(pool))
	for _, d := range pool {
		out = append(out, summarize(d))
	}
	response.Success(w, out)
}

// GetDeck returns a single deck by name.
func (h *DeckHandler) GetDeck(w http.ResponseWriter, r *http.Request) {
	d, ok := h.lookup(w, r)
	if !ok {
		return
	}
	response.Success(w, DeckDetail{DeckSummary: summarize(d), Cards: d.CardNames()})
}

// ChoiceRequest asks a deck for a block of card rows.
type ChoiceRequest struct {
	Rows        int  `json:"rows"`
	InDeck      int  `json:"n_in_deck"`
	NotInDeck   int  `json:"n_not_in_deck"`
	ForceUnique bool `json:"force_unique"`
	NoLands     bool `json:"no_lands"`
}

// Choice draws rows from a single deck and its complement.
func (h *DeckHandler) Choice(w http.ResponseWriter, r *http.Request) {
	d, ok := h.lookup(w, r)
	if !ok {
		return
	}

	var req ChoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, errors.New("invalid request body"))
		return
	}
	if h.maxRows > 0 && req.Rows > h.maxRows {
		response.BadRequest(w, fmt.Errorf("rows must be at most %d", h.maxRows))
		return
	}
	if cols := req.InDeck + req.NotInDeck; cols > MaxChoiceColumns {
		response.BadRequest(w, fmt.Errorf("n_in_deck + n_not_in_deck must be at most %d, got %d", MaxChoiceColumns, cols))
		return
	}

	shape := decks.Shape{Rows: req.Rows, Cols: req.InDeck + req.NotInDeck}
	rows, err := d.Choice(shape, decks.ChoiceOptions{
		InDeck:      req.InDeck,
		NotInDeck:   req.NotInDeck,
		ForceUnique: req.ForceUnique,
		NoLands:     req.NoLands,
	})
	if err != nil {
		writeSamplingError(w, err)
		return
	}
	response.Success(w, rows)
}

// lookup resolves the {name} URL parameter. The universe deck is addressable
// by its own name.
func (h *DeckHandler) lookup(w http.ResponseWriter, r *http.Request) (*decks.Deck, bool) {
	sampler := h.state.Sampler()
	if sampler == nil {
		response.ServiceUnavailable(w, errNoSampler)
		return nil, false
	}

	name := chi.URLParam(r, "name")
	if name == decks.UniverseDeckName {
		return sampler.AllCards(), true
	}
	for _, d := range sampler.Pool().Decks() {
		if d.Name() == name {
			return d, true
		}
	}
	response.NotFound(w, fmt.Errorf("deck %q not found", name))
	return nil, false
}

func queryInt(r *http.Request, key string, def int) (int, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def, nil
	}
	return strconv.Atoi(v)
}
