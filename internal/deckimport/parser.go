// Package deckimport parses deck lists exported from Arena and other deck
// builders into card names.
package deckimport

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Boards a card can be listed in.
const (
	BoardMain      = "main"
	BoardSideboard = "sideboard"
	BoardCommander = "commander"
)

var (
	// ErrEmptyImport is returned for blank input.
	ErrEmptyImport = errors.New("empty import string")

	// ErrUnrecognizedFormat is returned when no format yields any card.
	ErrUnrecognizedFormat = errors.New("unable to parse deck format")
)

var (
	// "4 Lightning Bolt (M21) 123" or "4 Lightning Bolt"
	arenaLine = regexp.MustCompile(`^(\d+)\s+([^(]+?)(?:\s+\(([A-Za-z0-9]+)\)(?:\s+(\S+))?)?$`)
	// "4 Card Name" or "4x Card Name"
	quantityFirst = regexp.MustCompile(`^(\d+)x?\s+(.+)$`)
	// "Card Name x4"
	quantityLast = regexp.MustCompile(`^(.+?)\s+x(\d+)$`)
)

// ParsedCard is a single line of a deck import.
type ParsedCard struct {
	Quantity int    `json:"quantity"`
	Name     string `json:"name"`
	SetCode  string `json:"set_code,omitempty"`
	Board    string `json:"board"`
}

// ParsedDeck is a deck parsed from an import string.
type ParsedDeck struct {
	Name      string        `json:"name,omitempty"`
	Format    string        `json:"format"`
	Commander []*ParsedCard `json:"commander,omitempty"`
	Mainboard []*ParsedCard `json:"mainboard"`
	Sideboard []*ParsedCard `json:"sideboard"`
	Warnings  []string      `json:"warnings,omitempty"`
}

// CardNames returns the name of every commander and mainboard card in list
// order. Sideboard cards are excluded unless includeSideboard is set.
// Quantities are ignored, so each name appears once per line.
func (d *ParsedDeck) CardNames(includeSideboard bool) []string {
	names := make([]string, 0, len(d.Commander)+len(d.Mainboard)+len(d.Sideboard))
	for _, c := range d.Commander {
		names = append(names, c.Name)
	}
	for _, c := range d.Mainboard {
		names = append(names, c.Name)
	}
	if includeSideboard {
		for _, c := range d.Sideboard {
			names = append(names, c.Name)
		}
	}
	return names
}

// NumCards sums the quantities of commander and mainboard cards.
func (d *ParsedDeck) NumCards() int {
	total := 0
	for _, c := range d.Commander {
		total += c.Quantity
	}
	for _, c := range d.Mainboard {
		total += c.Quantity
	}
	return total
}

func (d *ParsedDeck) empty() bool {
	return len(d.Commander) == 0 && len(d.Mainboard) == 0 && len(d.Sideboard) == 0
}

func (d *ParsedDeck) add(c *ParsedCard) {
	switch c.Board {
	case BoardCommander:
		d.Commander = append(d.Commander, c)
	case BoardSideboard:
		d.Sideboard = append(d.Sideboard, c)
	default:
		d.Mainboard = append(d.Mainboard, c)
	}
}

func newParsedDeck(format string) *ParsedDeck {
	return &ParsedDeck{
		Format:    format,
		Mainboard: make([]*ParsedCard, 0),
		Sideboard: make([]*ParsedCard, 0),
	}
}

// Parse tries Arena format first and falls back to plain text.
func Parse(input string) (*ParsedDeck, error) {
	input = strings.TrimSpace(strings.ReplaceAll(input, "\r\n", "\n"))
	if input == "" {
		return nil, ErrEmptyImport
	}

	if deck := ParseArenaFormat(input); !deck.empty() && len(deck.Warnings) == 0 {
		return deck, nil
	}

	if deck := ParsePlainText(input); !deck.empty() {
		return deck, nil
	}

	return nil, ErrUnrecognizedFormat
}

// ParseArenaFormat parses the Arena deck export format:
//
//	Deck
//	4 Lightning Bolt (M21) 123
//	2 Shock (M21) 124
//
//	2 Duress (M21) 95
//
// A blank line after the main deck starts the sideboard. The section headers
// "Commander", "Deck", "Sideboard" and "Companion" are honored, and "Name"
// lines in the "About" section name the deck.
func ParseArenaFormat(input string) *ParsedDeck {
	deck := newParsedDeck("arena")
	board := BoardMain
	seenCard := false

	for i, line := range strings.Split(input, "\n") {
		line = strings.TrimSpace(line)

		switch strings.ToLower(line) {
		case "about":
			continue
		case "deck":
			board = BoardMain
			continue
		case "commander":
			board = BoardCommander
			continue
		case "sideboard", "companion":
			board = BoardSideboard
			continue
		case "":
			if seenCard && board == BoardMain {
				board = BoardSideboard
			}
			continue
		}

		if name, ok := strings.CutPrefix(line, "Name "); ok {
			deck.Name = strings.TrimSpace(name)
			continue
		}

		matches := arenaLine.FindStringSubmatch(line)
		if matches == nil {
			deck.Warnings = append(deck.Warnings, fmt.Sprintf("Line %d: Could not parse '%s'", i+1, line))
			continue
		}

		quantity, err := strconv.Atoi(matches[1])
		if err != nil {
			deck.Warnings = append(deck.Warnings, fmt.Sprintf("Line %d: Invalid quantity '%s'", i+1, matches[1]))
			continue
		}

		deck.add(&ParsedCard{
			Quantity: quantity,
			Name:     strings.TrimSpace(matches[2]),
			SetCode:  strings.ToUpper(matches[3]),
			Board:    board,
		})
		if board != BoardCommander {
			seenCard = true
		}
	}

	return deck
}

// ParsePlainText parses simple card lists:
//   - "4 Lightning Bolt"
//   - "4x Lightning Bolt"
//   - "Lightning Bolt x4"
//   - "Lightning Bolt" (quantity 1)
//
// Lines starting with "#" or "//" are comments, "// Name: X" names the deck,
// a "Sideboard" line or an "SB:" prefix marks sideboard cards.
func ParsePlainText(input string) *ParsedDeck {
	deck := newParsedDeck("text")
	board := BoardMain

	for _, line := range strings.Split(input, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if comment, ok := cutComment(line); ok {
			if name, ok := strings.CutPrefix(comment, "Name:"); ok {
				deck.Name = strings.TrimSpace(name)
			}
			continue
		}

		lower := strings.ToLower(line)
		if lower == "deck" || lower == "mainboard" {
			board = BoardMain
			continue
		}
		if lower == "sideboard" || lower == "sideboard:" {
			board = BoardSideboard
			continue
		}
		if lower == "commander" || lower == "commander:" {
			board = BoardCommander
			continue
		}

		lineBoard := board
		if rest, ok := strings.CutPrefix(line, "SB:"); ok {
			line = strings.TrimSpace(rest)
			lineBoard = BoardSideboard
		}

		quantity, name := parseQuantity(line)
		if name == "" {
			continue
		}
		deck.add(&ParsedCard{Quantity: quantity, Name: name, Board: lineBoard})
	}

	return deck
}

func cutComment(line string) (string, bool) {
	if rest, ok := strings.CutPrefix(line, "//"); ok {
		return strings.TrimSpace(rest), true
	}
	if rest, ok := strings.CutPrefix(line, "#"); ok {
		return strings.TrimSpace(rest), true
	}
	return "", false
}

func parseQuantity(line string) (int, string) {
	if m := quantityFirst.FindStringSubmatch(line); m != nil {
		if q, err := strconv.Atoi(m[1]); err == nil {
			return q, strings.TrimSpace(m[2])
		}
	}
	if m := quantityLast.FindStringSubmatch(line); m != nil {
		if q, err := strconv.Atoi(m[2]); err == nil {
			return q, strings.TrimSpace(m[1])
		}
	}
	return 1, line
}
