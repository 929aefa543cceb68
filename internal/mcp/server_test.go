package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ramonehamilton/mtg-decksampler/internal/cards"
	"github.com/ramonehamilton/mtg-decksampler/internal/decks"
	"github.com/ramonehamilton/mtg-decksampler/internal/tags"
)

type fakeState struct {
	sampler *decks.Sampler
	graph   *tags.Graph
}

func (f *fakeState) Sampler() *decks.Sampler { return f.sampler }
func (f *fakeState) Graph() *tags.Graph       { return f.graph }

func newTestState(t *testing.T) *fakeState {
	t.Helper()

	all := make([]string, 0, 30)
	for i := 0; i < 30; i++ {
		all = append(all, fmt.Sprintf("Card %02d", i))
	}
	universe := cards.NewUniverse(all, nil)

	alpha, err := decks.NewDeck("alpha", all[0:8], universe)
	if err != nil {
		t.Fatalf("NewDeck(alpha) error = %v", err)
	}
	beta, err := decks.NewDeck("beta", all[8:16], universe)
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

	g, err := tags.NewGraph(tags.Taxonomy{
		{Name: "removal", Children: tags.Taxonomy{{Name: "creature"}}},
	})
	if err != nil {
		t.Fatalf("NewGraph() error = %v", err)
	}
	return &fakeState{sampler: sampler, graph: g}
}

func callTool(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{Name: name, Arguments: args},
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("Expected content in result")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("Expected TextContent, got %T", result.Content[0])
	}
	return text.Text
}

func TestMCPServer_ReadDecks(t *testing.T) {
	s := NewServer(newTestState(t), 0)

	req := mcp.ReadResourceRequest{Params: mcp.ReadResourceParams{URI: decksURI}}
	result, err := s.handleReadDecks(context.Background(), req)
	if err != nil {
		t.Fatalf("handleReadDecks failed: %v", err)
	}
	if len(result) != 1 {
		t.Fatalf("Expected 1 resource content, got %d", len(result))
	}
	content, ok := result[0].(mcp.TextResourceContents)
	if !ok {
		t.Fatal("Expected TextResourceContents")
	}

	var got []deckInfo
	if err := json.Unmarshal([]byte(content.Text), &got); err != nil {
		t.Fatalf("Failed to parse result JSON: %v", err)
	}
	if len(got) != 2 || got[0].Name != "alpha" || got[0].NumCards != 8 {
		t.Errorf("decks = %+v", got)
	}
	if got[0].MaxUniquePairs != 56 {
		t.Errorf("MaxUniquePairs = %d, want 56", got[0].MaxUniquePairs)
	}
}

func TestMCPServer_ReadTags(t *testing.T) {
	s := NewServer(newTestState(t), 0)

	req := mcp.ReadResourceRequest{Params: mcp.ReadResourceParams{URI: tagsURI}}
	result, err := s.handleReadTags(context.Background(), req)
	if err != nil {
		t.Fatalf("handleReadTags failed: %v", err)
	}
	content := result[0].(mcp.TextResourceContents)

	var edges []tags.Edge
	if err := json.Unmarshal([]byte(content.Text), &edges); err != nil {
		t.Fatalf("Failed to parse result JSON: %v", err)
	}
	want := []tags.Edge{
		{Child: "mtg:removal", Parent: "mtg"},
		{Child: "mtg:removal:creature", Parent: "mtg:removal"},
	}
	if len(edges) != len(want) {
		t.Fatalf("edges = %+v, want %+v", edges, want)
	}
	for i := range want {
		if edges[i] != want[i] {
			t.Errorf("edge %d = %+v, want %+v", i, edges[i], want[i])
		}
	}
}

func TestMCPServer_NothingLoaded(t *testing.T) {
	s := NewServer(&fakeState{}, 0)

	if _, err := s.handleReadDecks(context.Background(), mcp.ReadResourceRequest{}); err == nil {
		t.Error("expected error reading decks with no sampler")
	}
	if _, err := s.handleReadTags(context.Background(), mcp.ReadResourceRequest{}); err == nil {
		t.Error("expected error reading tags with no graph")
	}

	result, err := s.handleSample(context.Background(), callTool("sample", map[string]interface{}{"n": 10}))
	if err != nil {
		t.Fatalf("handleSample failed: %v", err)
	}
	if !result.IsError {
		t.Error("Expected tool error")
	}
}

func TestMCPServer_Sample(t *testing.T) {
	s := NewServer(newTestState(t), 0)

	result, err := s.handleSample(context.Background(), callTool("sample", map[string]interface{}{
		"n":      float64(20),
		"f_true": 0.5,
		"f_half": 0.25,
	}))
	if err != nil {
		t.Fatalf("handleSample failed: %v", err)
	}
	if result.IsError {
		t.Fatalf("Expected success, got %s", resultText(t, result))
	}

	var sample decks.Sample
	if err := json.Unmarshal([]byte(resultText(t, result)), &sample); err != nil {
		t.Fatalf("Failed to parse result JSON: %v", err)
	}
	if sample.Len() != 20 || sample.NumTrue != 10 || sample.NumHalf != 5 || sample.NumFalse != 5 {
		t.Errorf("sample counts = %d/%d/%d of %d", sample.NumTrue, sample.NumHalf, sample.NumFalse, sample.Len())
	}
}

func TestMCPServer_SampleErrors(t *testing.T) {
	s := NewServer(newTestState(t), 5)

	tests := []struct {
		name string
		args map[string]interface{}
	}{
		{"over max rows", map[string]interface{}{"n": float64(6)}},
		{"fractions over one", map[string]interface{}{"n": float64(4), "f_true": 0.8, "f_half": 0.5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := s.handleSample(context.Background(), callTool("sample", tt.args))
			if err != nil {
				t.Fatalf("handleSample failed: %v", err)
			}
			if !result.IsError {
				t.Error("Expected tool error")
			}
		})
	}
}

func TestMCPServer_DeckChoice(t *testing.T) {
	s := NewServer(newTestState(t), 0)

	result, err := s.handleDeckChoice(context.Background(), callTool("deck_choice", map[string]interface{}{
		"deck":          "alpha",
		"rows":          float64(3),
		"n_in_deck":     float64(1),
		"n_not_in_deck": float64(1),
	}))
	if err != nil {
		t.Fatalf("handleDeckChoice failed: %v", err)
	}
	if result.IsError {
		t.Fatalf("Expected success, got %s", resultText(t, result))
	}

	var rows [][]string
	if err := json.Unmarshal([]byte(resultText(t, result)), &rows); err != nil {
		t.Fatalf("Failed to parse result JSON: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}
	for _, row := range rows {
		if len(row) != 2 {
			t.Errorf("row %v, want 2 columns", row)
		}
	}
}

func TestMCPServer_DeckChoiceLimits(t *testing.T) {
	s := NewServer(newTestState(t), 5)

	tests := []struct {
		name string
		args map[string]interface{}
	}{
		{"rows over limit", map[string]interface{}{"deck": "alpha", "rows": float64(6), "force_unique": false}},
		{"too many columns", map[string]interface{}{"deck": "alpha", "rows": float64(1), "n_in_deck": float64(maxChoiceCols + 1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := s.handleDeckChoice(context.Background(), callTool("deck_choice", tt.args))
			if err != nil {
				t.Fatalf("handleDeckChoice failed: %v", err)
			}
			if !result.IsError {
				t.Error("Expected tool error")
			}
		})
	}
}

func TestMCPServer_DeckChoiceUnknownDeck(t *testing.T) {
	s := NewServer(newTestState(t), 0)

	result, err := s.handleDeckChoice(context.Background(), callTool("deck_choice", map[string]interface{}{
		"deck": "gamma",
		"rows": float64(1),
	}))
	if err != nil {
		t.Fatalf("handleDeckChoice failed: %v", err)
	}
	if !result.IsError {
		t.Error("Expected tool error")
	}
}

func TestMCPServer_DeckChoiceUniverse(t *testing.T) {
	s := NewServer(newTestState(t), 0)

	result, err := s.handleDeckChoice(context.Background(), callTool("deck_choice", map[string]interface{}{
		"deck": decks.UniverseDeckName,
		"rows": float64(2),
	}))
	if err != nil {
		t.Fatalf("handleDeckChoice failed: %v", err)
	}
	if result.IsError {
		t.Errorf("Expected success, got %s", resultText(t, result))
	}
}
