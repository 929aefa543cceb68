// Package cards holds card-name normalization and the card universe that
// decks are validated against.
package cards

import "strings"

// nameRemap fixes spellings that upstream deck sites get wrong.
var nameRemap = map[string]string{
	"Seance": "Séance",
}

// NormalizeName cleans a single raw card name. Two-faced notation
// ("Fire // Ice" or "Fire / Ice") yields one name per face.
func NormalizeName(raw string) []string {
	parts := strings.Split(strings.ReplaceAll(raw, "//", "/"), "/")

	names := make([]string, 0, len(parts))
	for _, part := range parts {
		name := strings.TrimSpace(part)
		if name == "" {
			continue
		}
		name = strings.ReplaceAll(name, "AE", "Æ")
		if fixed, ok := nameRemap[name]; ok {
			name = fixed
		}
		names = append(names, name)
	}
	return names
}

// NormalizeNames cleans and deduplicates raw card names. The result is a set.
func NormalizeNames(raw []string) map[string]struct{} {
	set := make(map[string]struct{}, len(raw))
	for _, r := range raw {
		for _, name := range NormalizeName(r) {
			set[name] = struct{}{}
		}
	}
	return set
}
