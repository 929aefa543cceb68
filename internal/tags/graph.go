// Package tags models the hierarchical tag taxonomy used to categorize cards
// and the per-site tag sources that are normalized against it.
package tags

import (
	"errors"
	"fmt"
	"iter"
	"sort"
	"strings"
)

const (
	// Root is the node every top-level tag hangs from.
	Root = "mtg"

	// Separator joins the segments of a fully qualified tag node.
	Separator = ":"
)

// ErrMalformedTaxonomy is returned when a taxonomy value is neither a
// mapping of subtags nor null.
var ErrMalformedTaxonomy = errors.New("malformed tag taxonomy")

// Edge points from a child tag node to its parent.
type Edge struct {
	Child  string `json:"child"`
	Parent string `json:"parent"`
}

// Taxonomy is an ordered tag tree. A Term with no children is a leaf tag.
type Taxonomy []Term

// Term is one tag in a Taxonomy.
type Term struct {
	Name     string
	Children Taxonomy
}

// Graph is a directed tag graph with edges from child to parent. Nodes are
// fully qualified paths such as "mtg:removal:enchantment". Children keep the
// order in which they were added.
type Graph struct {
	nodes    []string
	parent   map[string]string
	children map[string][]string
}

func newGraph() *Graph {
	return &Graph{
		nodes:    []string{Root},
		parent:   make(map[string]string),
		children: make(map[string][]string),
	}
}

// NewGraph builds a graph from an ordered taxonomy.
func NewGraph(taxonomy Taxonomy) (*Graph, error) {
	g := newGraph()
	if err := g.addTerms(Root, taxonomy); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *Graph) addTerms(parent string, terms Taxonomy) error {
	for _, term := range terms {
		if term.Name == "" {
			return fmt.Errorf("%w: empty tag name under %q", ErrMalformedTaxonomy, parent)
		}
		if strings.Contains(term.Name, Separator) {
			return fmt.Errorf("%w: tag name %q under %q contains %q", ErrMalformedTaxonomy, term.Name, parent, Separator)
		}
		node := parent + Separator + term.Name
		g.addEdge(node, parent)
		if err := g.addTerms(node, term.Children); err != nil {
			return err
		}
	}
	return nil
}

// addEdge is a no-op when the edge already exists.
func (g *Graph) addEdge(child, parent string) {
	if _, ok := g.parent[child]; ok {
		return
	}
	g.parent[child] = parent
	g.children[parent] = append(g.children[parent], child)
	g.nodes = append(g.nodes, child)
}

// Build creates a graph from a nested mapping of tag to subtag mapping or nil
// for a leaf. Keys are visited in sorted order since Go maps are unordered;
// use LoadTaxonomy to keep document order.
func Build(tree map[string]any) (*Graph, error) {
	taxonomy, err := taxonomyFromMap(tree, Root)
	if err != nil {
		return nil, err
	}
	return NewGraph(taxonomy)
}

func taxonomyFromMap(tree map[string]any, path string) (Taxonomy, error) {
	keys := make([]string, 0, len(tree))
	for k := range tree {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	taxonomy := make(Taxonomy, 0, len(keys))
	for _, name := range keys {
		term := Term{Name: name}
		switch v := tree[name].(type) {
		case nil:
		case map[string]any:
			children, err := taxonomyFromMap(v, path+Separator+name)
			if err != nil {
				return nil, err
			}
			term.Children = children
		default:
			return nil, fmt.Errorf("%w: %s%s%s has value of type %T",
				ErrMalformedTaxonomy, path, Separator, name, v)
		}
		taxonomy = append(taxonomy, term)
	}
	return taxonomy, nil
}

// Traverse yields every edge reachable from Root as a depth-first walk: each
// edge is yielded before the subtree below its child. The sequence can be
// ranged over any number of times.
func (g *Graph) Traverse() iter.Seq[Edge] {
	return func(yield func(Edge) bool) {
		g.walk(Root, yield)
	}
}

func (g *Graph) walk(node string, yield func(Edge) bool) bool {
	for _, child := range g.children[node] {
		if !yield(Edge{Child: child, Parent: node}) {
			return false
		}
		if !g.walk(child, yield) {
			return false
		}
	}
	return true
}

// Edges collects Traverse into a slice.
func (g *Graph) Edges() []Edge {
	edges := make([]Edge, 0, len(g.nodes)-1)
	for e := range g.Traverse() {
		edges = append(edges, e)
	}
	return edges
}

// Nodes returns every node, Root first, in insertion order.
func (g *Graph) Nodes() []string {
	out := make([]string, len(g.nodes))
	copy(out, g.nodes)
	return out
}

// Len returns the number of nodes including Root.
func (g *Graph) Len() int { return len(g.nodes) }

// Has reports whether node is in the graph.
func (g *Graph) Has(node string) bool {
	if node == Root {
		return true
	}
	_, ok := g.parent[node]
	return ok
}

// Parent returns the parent of node. Root has no parent.
func (g *Graph) Parent(node string) (string, bool) {
	p, ok := g.parent[node]
	return p, ok
}

// Children returns the direct children of node in insertion order.
func (g *Graph) Children(node string) []string {
	out := make([]string, len(g.children[node]))
	copy(out, g.children[node])
	return out
}

// segments splits a node into its tag names without the Root segment.
func segments(node string) []string {
	if node == Root {
		return nil
	}
	return strings.Split(strings.TrimPrefix(node, Root+Separator), Separator)
}

// Name returns the last segment of a node.
func Name(node string) string {
	parts := segments(node)
	if len(parts) == 0 {
		return node
	}
	return parts[len(parts)-1]
}

// LongName renders a node as a slash path, e.g. "/removal/enchantment".
// Root renders as the empty string.
func LongName(node string) string {
	parts := segments(node)
	if len(parts) == 0 {
		return ""
	}
	return "/" + strings.Join(parts, "/")
}

// TappedoutName renders a node as a tappedout category,
// e.g. "#removal_enchantment".
func TappedoutName(node string) string {
	parts := segments(node)
	for i, p := range parts {
		parts[i] = strings.ReplaceAll(strings.ReplaceAll(p, " ", "_"), "/", "")
	}
	return "#" + strings.Join(parts, "_")
}
