package tags

import (
	"sort"
)

// Node labels for each tag vocabulary.
const (
	OfficialTagLabel  = "Tag"
	TappedoutTagLabel = "TappedoutTag"
	MetamoxTagLabel   = "MetamoxTag"
)

// TappedoutSpecialTags are tappedout categories that describe a card's role in
// a deck rather than what it does. They are not tags.
var TappedoutSpecialTags = map[string]bool{
	"amplify":    true,
	"engine":     true,
	"standalone": true,
	"stopgap":    true,
	"wincon":     true,
}

// CardTag assigns a tag to a card.
type CardTag struct {
	Card string `json:"card"`
	Tag  string `json:"tag"`
}

// Source is a tag vocabulary: the cards it tags, its tags, which card
// carries which tag, and how its tags nest.
type Source interface {
	// Label names the vocabulary, e.g. "TappedoutTag".
	Label() string
	Cards() []string
	Tags() []string
	CardTags() []CardTag
	Hierarchy() []Edge
}

// TaxonomySource exposes the official taxonomy graph as a Source. It tags no
// cards.
type TaxonomySource struct {
	graph *Graph
}

// NewTaxonomySource wraps a taxonomy graph.
func NewTaxonomySource(g *Graph) *TaxonomySource {
	return &TaxonomySource{graph: g}
}

// Label returns the official tag label.
func (s *TaxonomySource) Label() string { return OfficialTagLabel }

// Cards returns nil; the taxonomy tags no cards.
func (s *TaxonomySource) Cards() []string { return nil }

// CardTags returns nil; the taxonomy tags no cards.
func (s *TaxonomySource) CardTags() []CardTag { return nil }

// Tags returns every node of the graph, Root included.
func (s *TaxonomySource) Tags() []string { return s.graph.Nodes() }

// Hierarchy returns the graph edges in traversal order.
func (s *TaxonomySource) Hierarchy() []Edge { return s.graph.Edges() }

// TappedoutRow is one card category scraped from a tappedout deck.
type TappedoutRow struct {
	Card string
	Tag  string
}

// TappedoutSource is the flat category vocabulary of tappedout decks.
type TappedoutSource struct {
	rows []TappedoutRow
}

// NewTappedoutSource creates a source over tappedout category rows.
func NewTappedoutSource(rows []TappedoutRow) *TappedoutSource {
	return &TappedoutSource{rows: rows}
}

// Label returns the tappedout tag label.
func (s *TappedoutSource) Label() string { return TappedoutTagLabel }

// Cards returns every card with at least one category, special or not.
func (s *TappedoutSource) Cards() []string {
	set := make(map[string]struct{}, len(s.rows))
	for _, r := range s.rows {
		set[r.Card] = struct{}{}
	}
	return sortedKeys(set)
}

// Tags returns the sorted distinct tags, special tags excluded.
func (s *TappedoutSource) Tags() []string {
	set := make(map[string]struct{})
	for _, r := range s.rows {
		if !TappedoutSpecialTags[r.Tag] {
			set[r.Tag] = struct{}{}
		}
	}
	return sortedKeys(set)
}

// CardTags returns one pair per row whose tag is not special.
func (s *TappedoutSource) CardTags() []CardTag {
	out := make([]CardTag, 0, len(s.rows))
	for _, r := range s.rows {
		if TappedoutSpecialTags[r.Tag] {
			continue
		}
		out = append(out, CardTag{Card: r.Card, Tag: r.Tag})
	}
	return out
}

// Hierarchy is empty: tappedout categories are flat.
func (s *TappedoutSource) Hierarchy() []Edge { return nil }

// MetamoxRow is one tag line from metamox. Subtag may be empty.
type MetamoxRow struct {
	Card   string
	Tag    string
	Subtag string
}

// MetamoxSource is the two-level tag/subtag vocabulary of metamox.
type MetamoxSource struct {
	rows []MetamoxRow
}

// NewMetamoxSource creates a source over metamox rows.
func NewMetamoxSource(rows []MetamoxRow) *MetamoxSource {
	return &MetamoxSource{rows: rows}
}

// Label returns the metamox tag label.
func (s *MetamoxSource) Label() string { return MetamoxTagLabel }

// Cards returns every card with a tag or subtag.
func (s *MetamoxSource) Cards() []string {
	set := make(map[string]struct{}, len(s.rows))
	for _, r := range s.rows {
		set[r.Card] = struct{}{}
	}
	return sortedKeys(set)
}

// Tags returns the union of tags and subtags.
func (s *MetamoxSource) Tags() []string {
	set := make(map[string]struct{})
	for _, r := range s.rows {
		if r.Tag != "" {
			set[r.Tag] = struct{}{}
		}
		if r.Subtag != "" {
			set[r.Subtag] = struct{}{}
		}
	}
	return sortedKeys(set)
}

// CardTags lists every card/tag assignment followed by every card/subtag
// assignment.
func (s *MetamoxSource) CardTags() []CardTag {
	out := make([]CardTag, 0, 2*len(s.rows))
	for _, r := range s.rows {
		if r.Tag != "" {
			out = append(out, CardTag{Card: r.Card, Tag: r.Tag})
		}
	}
	for _, r := range s.rows {
		if r.Subtag != "" {
			out = append(out, CardTag{Card: r.Card, Tag: r.Subtag})
		}
	}
	return out
}

// Hierarchy links each subtag to its tag, sorted by subtag then tag with
// duplicates removed.
func (s *MetamoxSource) Hierarchy() []Edge {
	seen := make(map[Edge]struct{})
	var out []Edge
	for _, r := range s.rows {
		if r.Subtag == "" || r.Tag == "" {
			continue
		}
		e := Edge{Child: r.Subtag, Parent: r.Tag}
		if _, ok := seen[e]; ok {
			continue
		}
		seen[e] = struct{}{}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Child != out[j].Child {
			return out[i].Child < out[j].Child
		}
		return out[i].Parent < out[j].Parent
	})
	return out
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
