package tags

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// VariablesKey is a top-level taxonomy key holding YAML anchors for reuse
// elsewhere in the document. It is not itself a tag.
const VariablesKey = "_yaml_variables"

// LoadTaxonomyFile reads a YAML taxonomy file and builds its graph.
func LoadTaxonomyFile(path string) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open taxonomy file: %w", err)
	}
	defer f.Close()

	return LoadTaxonomy(f)
}

// LoadTaxonomy reads a YAML taxonomy and builds its graph, keeping the
// document order of tags.
func LoadTaxonomy(r io.Reader) (*Graph, error) {
	taxonomy, err := ParseTaxonomy(r)
	if err != nil {
		return nil, err
	}
	return NewGraph(taxonomy)
}

// ParseTaxonomy decodes a YAML taxonomy. Aliases and merge keys are resolved
// and the top-level VariablesKey entry is skipped.
func ParseTaxonomy(r io.Reader) (Taxonomy, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return Taxonomy{}, nil
		}
		return nil, fmt.Errorf("failed to decode taxonomy: %w", err)
	}

	root := resolve(&doc)
	if root.Kind == yaml.DocumentNode {
		if len(root.Content) == 0 {
			return Taxonomy{}, nil
		}
		root = resolve(root.Content[0])
	}
	if isNull(root) {
		return Taxonomy{}, nil
	}
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: top level is not a mapping (line %d)", ErrMalformedTaxonomy, root.Line)
	}

	return parseMapping(root, Root, true)
}

func parseMapping(node *yaml.Node, path string, top bool) (Taxonomy, error) {
	pairs, err := mappingPairs(node)
	if err != nil {
		return nil, err
	}

	taxonomy := make(Taxonomy, 0, len(pairs))
	seen := make(map[string]bool, len(pairs))
	for _, pair := range pairs {
		key, value := pair[0], pair[1]
		if key.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("%w: non-scalar key under %s (line %d)", ErrMalformedTaxonomy, path, key.Line)
		}
		name := key.Value
		if top && name == VariablesKey {
			continue
		}
		if seen[name] {
			continue
		}
		seen[name] = true

		term := Term{Name: name}
		switch {
		case isNull(value):
		case value.Kind == yaml.MappingNode:
			children, err := parseMapping(value, path+Separator+name, false)
			if err != nil {
				return nil, err
			}
			term.Children = children
		default:
			return nil, fmt.Errorf("%w: %s%s%s is neither a mapping nor null (line %d)",
				ErrMalformedTaxonomy, path, Separator, name, value.Line)
		}
		taxonomy = append(taxonomy, term)
	}
	return taxonomy, nil
}

// mappingPairs flattens a mapping into resolved key/value pairs, expanding
// "<<" merge keys in place.
func mappingPairs(node *yaml.Node) ([][2]*yaml.Node, error) {
	var pairs [][2]*yaml.Node
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := resolve(node.Content[i]), resolve(node.Content[i+1])
		if key.Kind == yaml.ScalarNode && key.Tag == "!!merge" {
			merged, err := mergePairs(value)
			if err != nil {
				return nil, err
			}
			pairs = append(pairs, merged...)
			continue
		}
		pairs = append(pairs, [2]*yaml.Node{key, value})
	}
	return pairs, nil
}

func mergePairs(value *yaml.Node) ([][2]*yaml.Node, error) {
	switch value.Kind {
	case yaml.MappingNode:
		return mappingPairs(value)
	case yaml.SequenceNode:
		var pairs [][2]*yaml.Node
		for _, item := range value.Content {
			item = resolve(item)
			if item.Kind != yaml.MappingNode {
				return nil, fmt.Errorf("%w: merge of non-mapping (line %d)", ErrMalformedTaxonomy, item.Line)
			}
			merged, err := mappingPairs(item)
			if err != nil {
				return nil, err
			}
			pairs = append(pairs, merged...)
		}
		return pairs, nil
	default:
		return nil, fmt.Errorf("%w: merge of non-mapping (line %d)", ErrMalformedTaxonomy, value.Line)
	}
}

func resolve(node *yaml.Node) *yaml.Node {
	for node.Kind == yaml.AliasNode && node.Alias != nil {
		node = node.Alias
	}
	return node
}

func isNull(node *yaml.Node) bool {
	return node.Kind == yaml.ScalarNode && node.Tag == "!!null"
}
