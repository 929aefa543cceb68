package handlers

import (
	"bytes"
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ramonehamilton/mtg-decksampler/internal/api/response"
	"github.com/ramonehamilton/mtg-decksampler/internal/charts"
	"github.com/ramonehamilton/mtg-decksampler/internal/storage/models"
)

// CardTagLister looks up stored tag assignments.
type CardTagLister interface {
	TagsForCard(ctx context.Context, cardName string) ([]*models.CardTag, error)
}

// TagHandler serves the tag taxonomy.
type TagHandler struct {
	state *State
	tags  CardTagLister
}

// NewTagHandler creates a TagHandler. tags may be nil when no database is open.
func NewTagHandler(state *State, tags CardTagLister) *TagHandler {
	return &TagHandler{state: state, tags: tags}
}

// GetEdges returns every edge of the taxonomy in traversal order.
func (h *TagHandler) GetEdges(w http.ResponseWriter, _ *http.Request) {
	g := h.state.Graph()
	if g == nil {
		response.ServiceUnavailable(w, errNoGraph)
		return
	}

	response.Success(w, g.Edges())
}

// GetChart renders the taxonomy as an HTML graph.
func (h *TagHandler) GetChart(w http.ResponseWriter, _ *http.Request) {
	g := h.state.Graph()
	if g == nil {
		response.ServiceUnavailable(w, errNoGraph)
		return
	}

	var buf bytes.Buffer
	if err := charts.RenderTagGraph(&buf, g, charts.DefaultChartConfig()); err != nil {
		response.InternalError(w, err)
		return
	}
	response.HTML(w, buf.Bytes())
}

// GetCardTags returns the stored tags of one card.
func (h *TagHandler) GetCardTags(w http.ResponseWriter, r *http.Request) {
	if h.tags == nil {
		response.ServiceUnavailable(w, errNoStore)
		return
	}

	out, err := h.tags.TagsForCard(r.Context(), chi.URLParam(r, "card"))
	if err != nil {
		response.InternalError(w, err)
		return
	}
	if out == nil {
		out = []*models.CardTag{}
	}
	response.Success(w, out)
}
