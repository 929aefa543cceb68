package models

import "time"

// Card is one name in the card universe.
type Card struct {
	Name      string    `json:"name" db:"name"`
	TypeLine  string    `json:"type_line" db:"type_line"`
	IsLand    bool      `json:"is_land" db:"is_land"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Deck is a stored deck with its card counts.
type Deck struct {
	ID         int64     `json:"id" db:"id"`
	Name       string    `json:"name" db:"name"`
	Source     string    `json:"source" db:"source"`
	NumCards   int       `json:"num_cards"`
	NumDropped int       `json:"num_dropped"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// DeckCards holds a stored deck's validated and dropped card names.
type DeckCards struct {
	Deck    *Deck    `json:"deck"`
	Cards   []string `json:"cards"`
	Dropped []string `json:"dropped"`
}

// TagEdge is a child to parent link within one tag vocabulary.
type TagEdge struct {
	Label    string `json:"label" db:"label"`
	Position int    `json:"position" db:"position"`
	Child    string `json:"child" db:"child"`
	Parent   string `json:"parent" db:"parent"`
}

// CardTag assigns a tag from one vocabulary to a card.
type CardTag struct {
	Label    string `json:"label" db:"label"`
	CardName string `json:"card_name" db:"card_name"`
	Tag      string `json:"tag" db:"tag"`
}

// SampleRun records one generated training sample.
type SampleRun struct {
	ID         int64     `json:"id" db:"id"`
	N          int       `json:"n" db:"n"`
	FTrue      float64   `json:"f_true" db:"f_true"`
	FHalf      float64   `json:"f_half" db:"f_half"`
	NoLands    bool      `json:"no_lands" db:"no_lands"`
	NumTrue    int       `json:"num_true" db:"num_true"`
	NumHalf    int       `json:"num_half" db:"num_half"`
	NumFalse   int       `json:"num_false" db:"num_false"`
	NumDecks   int       `json:"num_decks" db:"num_decks"`
	DurationMs int64     `json:"duration_ms" db:"duration_ms"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}
