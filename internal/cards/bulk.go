package cards

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Entry is one card name extracted from a bulk card file.
type Entry struct {
	Name     string `json:"name"`
	TypeLine string `json:"type_line"`
	IsLand   bool   `json:"is_land"`
}

// bulkCard is the subset of a Scryfall card object needed to build a universe.
type bulkCard struct {
	Name      string `json:"name"`
	Layout    string `json:"layout"`
	TypeLine  string `json:"type_line"`
	CardFaces []struct {
		Name     string `json:"name"`
		TypeLine string `json:"type_line"`
	} `json:"card_faces,omitempty"`
}

// skippedLayouts are bulk objects that are not playable cards.
var skippedLayouts = map[string]bool{
	"token":              true,
	"double_faced_token": true,
	"emblem":             true,
	"art_series":         true,
}

// ReadBulk streams a Scryfall bulk JSON array and returns one entry per
// distinct card name. Multi-faced cards contribute one entry per face, typed
// by that face's type line.
func ReadBulk(r io.Reader) ([]Entry, error) {
	dec := json.NewDecoder(r)

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to read bulk file: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '[' {
		return nil, fmt.Errorf("bulk file must be a JSON array")
	}

	seen := make(map[string]int)
	entries := make([]Entry, 0, 1024)
	add := func(name, typeLine string) {
		name = strings.TrimSpace(name)
		if name == "" {
			return
		}
		isLand := isLandType(typeLine)
		if i, ok := seen[name]; ok {
			// reprints share a name; any land printing marks the name as land
			entries[i].IsLand = entries[i].IsLand || isLand
			return
		}
		seen[name] = len(entries)
		entries = append(entries, Entry{Name: name, TypeLine: typeLine, IsLand: isLand})
	}

	for index := 0; dec.More(); index++ {
		var card bulkCard
		if err := dec.Decode(&card); err != nil {
			return nil, fmt.Errorf("failed to decode card %d: %w", index, err)
		}
		if skippedLayouts[card.Layout] {
			continue
		}

		if len(card.CardFaces) > 0 {
			for _, face := range card.CardFaces {
				typeLine := face.TypeLine
				if typeLine == "" {
					typeLine = card.TypeLine
				}
				add(face.Name, typeLine)
			}
			continue
		}

		if strings.Contains(card.Name, "/") {
			for _, name := range NormalizeName(card.Name) {
				add(name, card.TypeLine)
			}
			continue
		}
		add(card.Name, card.TypeLine)
	}

	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("failed to read end of bulk file: %w", err)
	}

	return entries, nil
}

// LoadBulk reads a Scryfall bulk JSON array into a Universe.
func LoadBulk(r io.Reader) (*Universe, error) {
	entries, err := ReadBulk(r)
	if err != nil {
		return nil, err
	}
	return UniverseFromEntries(entries), nil
}

// UniverseFromEntries builds a universe from bulk entries.
func UniverseFromEntries(entries []Entry) *Universe {
	all := make([]string, 0, len(entries))
	lands := make([]string, 0)
	for _, e := range entries {
		all = append(all, e.Name)
		if e.IsLand {
			lands = append(lands, e.Name)
		}
	}
	return NewUniverse(all, lands)
}

// isLandType reports whether a type line names the Land card type, e.g.
// "Basic Land — Forest" or "Land Creature — Forest Dryad".
func isLandType(typeLine string) bool {
	// only the part before the em dash holds card types
	types, _, _ := strings.Cut(typeLine, "—")
	for _, word := range strings.Fields(types) {
		if word == "Land" {
			return true
		}
	}
	return false
}
