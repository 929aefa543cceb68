package handlers

import (
	"net/http"
	"strings"
	"testing"

	"github.com/ramonehamilton/mtg-decksampler/internal/storage/models"
	"github.com/ramonehamilton/mtg-decksampler/internal/tags"
)

func TestTagHandler_GetEdges(t *testing.T) {
	router := newTestRouter(NewState(nil, newTestGraph(t)), nil, nil)

	rec := doRequest(t, router, http.MethodGet, "/tags/edges", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var edges []tags.Edge
	decodeData(t, rec, &edges)

	want := []tags.Edge{
		{Child: "mtg:removal", Parent: "mtg"},
		{Child: "mtg:removal:creature", Parent: "mtg:removal"},
		{Child: "mtg:removal:artifact", Parent: "mtg:removal"},
		{Child: "mtg:ramp", Parent: "mtg"},
	}
	if len(edges) != len(want) {
		t.Fatalf("Expected %d edges, got %d: %v", len(want), len(edges), edges)
	}
	for i := range want {
		if edges[i] != want[i] {
			t.Errorf("edges[%d] = %v, want %v", i, edges[i], want[i])
		}
	}
}

func TestTagHandler_GetChart(t *testing.T) {
	router := newTestRouter(NewState(nil, newTestGraph(t)), nil, nil)

	rec := doRequest(t, router, http.MethodGet, "/tags/chart", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Expected text/html, got %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "mtg:removal:artifact") {
		t.Error("Expected chart to contain tag nodes")
	}
}

func TestTagHandler_NoGraph(t *testing.T) {
	router := newTestRouter(NewState(nil, nil), nil, nil)

	for _, path := range []string{"/tags/edges", "/tags/chart"} {
		rec := doRequest(t, router, http.MethodGet, path, nil)
		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("%s: expected status 503, got %d", path, rec.Code)
		}
	}
}

func TestTagHandler_GetCardTags(t *testing.T) {
	store := &mockCardTags{tags: map[string][]*models.CardTag{
		"Swords to Plowshares": {{Label: "Tag", CardName: "Swords to Plowshares", Tag: "mtg:removal:creature"}},
	}}
	router := newTestRouter(NewState(nil, nil), nil, store)

	rec := doRequest(t, router, http.MethodGet, "/tags/cards/Swords%20to%20Plowshares", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}
	var out []*models.CardTag
	decodeData(t, rec, &out)
	if len(out) != 1 || out[0].Tag != "mtg:removal:creature" {
		t.Errorf("Unexpected tags %+v", out)
	}

	rec = doRequest(t, router, http.MethodGet, "/tags/cards/Unknown", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}
	decodeData(t, rec, &out)
	if len(out) != 0 {
		t.Errorf("Expected no tags, got %+v", out)
	}
}

func TestTagHandler_NoStore(t *testing.T) {
	router := newTestRouter(NewState(nil, nil), nil, nil)

	rec := doRequest(t, router, http.MethodGet, "/tags/cards/Anything", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected status 503, got %d", rec.Code)
	}
}
