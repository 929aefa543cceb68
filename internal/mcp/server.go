// Package mcp exposes the deck sampler to agents over the Model Context
// Protocol.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/ramonehamilton/mtg-decksampler/internal/decks"
	"github.com/ramonehamilton/mtg-decksampler/internal/tags"
	"github.com/ramonehamilton/mtg-decksampler/internal/version"
)

const (
	decksURI = "decksampler://decks"
	tagsURI  = "decksampler://tags"

	// maxChoiceCols bounds n_in_deck + n_not_in_deck.
	maxChoiceCols = 16
)

var errNotLoaded = errors.New("no decks loaded")

// State supplies the live sampler and tag graph.
type State interface {
	Sampler() *decks.Sampler
	Graph() *tags.Graph
}

// Server adapts the sampler to MCP tools and resources.
type Server struct {
	mcpServer *server.MCPServer
	state     State
	maxRows   int
}

// NewServer creates a new MCP server instance. maxRows bounds the rows of
// the sample and deck_choice tools; zero means no bound.
func NewServer(state State, maxRows int) *Server {
	s := &Server{
		mcpServer: server.NewMCPServer(
			"decksampler",
			version.GetVersion(),
		),
		state:   state,
		maxRows: maxRows,
	}
	s.registerResources()
	s.registerTools()
	return s
}

// Serve starts the MCP server on stdio.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcpServer)
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(
		decksURI,
		"Deck Pool",
		mcp.WithResourceDescription("Decks in the pool with card counts and unique pair capacity"),
		mcp.WithMIMEType("application/json"),
	), s.handleReadDecks)

	s.mcpServer.AddResource(mcp.NewResource(
		tagsURI,
		"Tag Taxonomy",
		mcp.WithResourceDescription("Child to parent edges of the card tag taxonomy"),
		mcp.WithMIMEType("application/json"),
	), s.handleReadTags)
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool(
		"sample",
		mcp.WithDescription("Generate labelled card pairs. Label 1 means both cards were drawn from the same deck."),
		mcp.WithNumber("n", mcp.Required(), mcp.Description("Number of rows")),
		mcp.WithNumber("f_true", mcp.Description("Fraction of same-deck pairs (default 0.5)")),
		mcp.WithNumber("f_half", mcp.Description("Fraction of deck/complement pairs (default 0.25)")),
		mcp.WithBoolean("no_lands", mcp.Description("Exclude lands (default true)")),
	), s.handleSample)

	s.mcpServer.AddTool(mcp.NewTool(
		"deck_choice",
		mcp.WithDescription("Draw rows of cards from one deck and its complement."),
		mcp.WithString("deck", mcp.Required(), mcp.Description("Deck name")),
		mcp.WithNumber("rows", mcp.Required(), mcp.Description("Number of rows")),
		mcp.WithNumber("n_in_deck", mcp.Description("Columns drawn from the deck (default 2)")),
		mcp.WithNumber("n_not_in_deck", mcp.Description("Columns drawn from the complement (default 0)")),
		mcp.WithBoolean("force_unique", mcp.Description("Make every row distinct (default true)")),
	), s.handleDeckChoice)
}

func jsonResource(uri string, v interface{}) ([]mcp.ResourceContents, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", uri, err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

// deckInfo is one entry of the deck pool resource.
type deckInfo struct {
	Name           string `json:"name"`
	NumCards       int    `json:"num_cards"`
	MaxUniquePairs int    `json:"max_unique_pairs"`
	NumDropped     int    `json:"num_dropped"`
}

func (s *Server) handleReadDecks(_ context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	sampler := s.state.Sampler()
	if sampler == nil {
		return nil, errNotLoaded
	}

	out := make([]deckInfo, 0, sampler.Pool().NumDecks())
	for _, d := range sampler.Pool().Decks() {
		out = append(out, deckInfo{
			Name:           d.Name(),
			NumCards:       d.NumCards(),
			MaxUniquePairs: d.MaxUniquePairs(),
			NumDropped:     len(d.DroppedCardNames()),
		})
	}
	return jsonResource(request.Params.URI, out)
}

func (s *Server) handleReadTags(_ context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	g := s.state.Graph()
	if g == nil {
		return nil, errors.New("no tag taxonomy loaded")
	}
	return jsonResource(request.Params.URI, g.Edges())
}

func (s *Server) handleSample(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	n := int(mcp.ParseFloat64(request, "n", 0))
	fTrue := mcp.ParseFloat64(request, "f_true", 0.5)
	fHalf := mcp.ParseFloat64(request, "f_half", 0.25)
	noLands := mcp.ParseBoolean(request, "no_lands", true)

	if s.maxRows > 0 && n > s.maxRows {
		return mcp.NewToolResultError(fmt.Sprintf("n must be at most %d", s.maxRows)), nil
	}

	sampler := s.state.Sampler()
	if sampler == nil {
		return mcp.NewToolResultError(errNotLoaded.Error()), nil
	}

	sample, err := sampler.Sample(n, fTrue, fHalf, noLands)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return textJSON(sample)
}

func (s *Server) handleDeckChoice(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := mcp.ParseString(request, "deck", "")
	rows := int(mcp.ParseFloat64(request, "rows", 0))
	inDeck := int(mcp.ParseFloat64(request, "n_in_deck", 2))
	notInDeck := int(mcp.ParseFloat64(request, "n_not_in_deck", 0))
	unique := mcp.ParseBoolean(request, "force_unique", true)

	if s.maxRows > 0 && rows > s.maxRows {
		return mcp.NewToolResultError(fmt.Sprintf("rows must be at most %d", s.maxRows)), nil
	}
	if inDeck+notInDeck > maxChoiceCols {
		return mcp.NewToolResultError(fmt.Sprintf("n_in_deck + n_not_in_deck must be at most %d", maxChoiceCols)), nil
	}

	sampler := s.state.Sampler()
	if sampler == nil {
		return mcp.NewToolResultError(errNotLoaded.Error()), nil
	}

	deck := findDeck(sampler, name)
	if deck == nil {
		return mcp.NewToolResultError(fmt.Sprintf("deck %q not found", name)), nil
	}

	out, err := deck.Choice(decks.Shape{Rows: rows, Cols: inDeck + notInDeck},
		decks.ChoiceOptions{InDeck: inDeck, NotInDeck: notInDeck, ForceUnique: unique})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return textJSON(out)
}

func findDeck(sampler *decks.Sampler, name string) *decks.Deck {
	if name == decks.UniverseDeckName {
		return sampler.AllCards()
	}
	for _, d := range sampler.Pool().Decks() {
		if d.Name() == name {
			return d
		}
	}
	return nil
}

func textJSON(v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
