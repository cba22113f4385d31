package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"time"
)

// CardID identifies a card within a deck. Deck files may spell it as a JSON
// string or a JSON number; both decode to the same CardID.
type CardID string

func (id *CardID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = CardID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("card id must be a string or number: %w", err)
	}
	*id = CardID(n.String())
	return nil
}

type DeckMetadata struct {
	DeckName        string `json:"deck_name" validate:"required"`
	MaxLevel        int    `json:"max_level" validate:"required,gt=0"`
	AvailableLevels []int  `json:"available_levels" validate:"required,min=1"`
	CardCount       int    `json:"card_count" validate:"gte=0"`
}

type Card struct {
	ID               CardID   `json:"id" validate:"required"`
	Definition       string   `json:"definition" validate:"required"`
	Term             string   `json:"term" validate:"required"`
	WrongAnswers     []string `json:"wrong_answers" validate:"required,min=1,dive,required"`
	ProgressionLevel int      `json:"progression_level"`
}

type Deck struct {
	Metadata DeckMetadata `json:"metadata" validate:"required"`
	Cards    []Card       `json:"cards" validate:"required,min=1,dive"`
}

// HasLevel reports whether level is one of the deck's available levels.
func (d *Deck) HasLevel(level int) bool {
	return slices.Contains(d.Metadata.AvailableLevels, level)
}

// TotalCards returns the advertised card count, falling back to the number
// of loaded cards when the metadata leaves it unset.
func (d *Deck) TotalCards() int {
	if d.Metadata.CardCount > 0 {
		return d.Metadata.CardCount
	}
	return len(d.Cards)
}

// DeckSummary is a catalog row describing a stored deck.
type DeckSummary struct {
	ID              int64     `json:"id"`
	Ref             string    `json:"ref"`
	Name            string    `json:"name"`
	Source          string    `json:"source,omitempty"`
	MaxLevel        int       `json:"max_level"`
	AvailableLevels []int     `json:"available_levels"`
	CardCount       int       `json:"card_count"`
	ImportedAt      time.Time `json:"imported_at"`
}

type DeckFilter struct {
	Name   string
	Limit  int
	Offset int
}
