// Package deck loads and shape-checks flashcard decks and filters their
// cards by progression level.
package deck

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/vytor/quizdeck/internal/models"
)

// ErrInvalidDeckShape is wrapped by every validation failure.
var ErrInvalidDeckShape = errors.New("deck: invalid deck shape")

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Load parses a JSON deck and validates its shape.
func Load(raw []byte) (*models.Deck, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrInvalidDeckShape)
	}
	var d models.Deck
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDeckShape, err)
	}
	if err := Validate(&d); err != nil {
		return nil, err
	}
	return &d, nil
}

// Validate checks an already-built deck.
func Validate(d *models.Deck) error {
	if d == nil {
		return fmt.Errorf("%w: nil deck", ErrInvalidDeckShape)
	}
	if err := validate.Struct(d); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidDeckShape, describe(err))
	}

	levels := make(map[int]bool, len(d.Metadata.AvailableLevels))
	for _, l := range d.Metadata.AvailableLevels {
		if levels[l] {
			return fmt.Errorf("%w: level %d listed twice in available_levels", ErrInvalidDeckShape, l)
		}
		levels[l] = true
	}

	seen := make(map[models.CardID]bool, len(d.Cards))
	for i, c := range d.Cards {
		if seen[c.ID] {
			return fmt.Errorf("%w: duplicate card id %q", ErrInvalidDeckShape, c.ID)
		}
		seen[c.ID] = true
		if !levels[c.ProgressionLevel] {
			return fmt.Errorf("%w: cards[%d] (id %q) has level %d not in available_levels",
				ErrInvalidDeckShape, i, c.ID, c.ProgressionLevel)
		}
	}
	return nil
}

// CardsForLevel returns the cards whose progression level equals level.
// Order follows the deck; callers shuffle.
func CardsForLevel(d *models.Deck, level int) []models.Card {
	var out []models.Card
	for _, c := range d.Cards {
		if c.ProgressionLevel == level {
			out = append(out, c)
		}
	}
	return out
}

func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s failed %q", fieldPath(fe.Namespace()), fe.Tag()))
	}
	return strings.Join(parts, "; ")
}

// fieldPath trims the leading struct name from a validator namespace.
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}
