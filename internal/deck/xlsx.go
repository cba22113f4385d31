package deck

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/vytor/quizdeck/internal/models"
	"github.com/xuri/excelize/v2"
)

const (
	defaultCardsSheet = "cards"
	defaultDeckSheet  = "deck"
)

// XLSXSource reads a deck from an Excel workbook.
//
// The cards sheet holds one card per row after a header row:
//
//	A: id | B: definition | C: term | D: level | E..: wrong answers
//
// The optional deck sheet carries the deck name in A1; without it the file
// name is used. Levels, max level and card count are derived from the rows.
type XLSXSource struct {
	Path       string
	CardsSheet string
	DeckSheet  string
}

func (s XLSXSource) Ref() string { return refFromPath(s.Path) }

func (s XLSXSource) Load(ctx context.Context) (*models.Deck, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := excelize.OpenFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", s.Path, err)
	}
	defer f.Close()

	d, err := s.read(f)
	if err != nil {
		return nil, fmt.Errorf("load deck %s: %w", s.Path, err)
	}
	return d, nil
}

func (s XLSXSource) read(f *excelize.File) (*models.Deck, error) {
	cardsSheet := s.CardsSheet
	if cardsSheet == "" {
		cardsSheet = defaultCardsSheet
	}
	deckSheet := s.DeckSheet
	if deckSheet == "" {
		deckSheet = defaultDeckSheet
	}

	rows, err := f.GetRows(cardsSheet)
	if err != nil {
		return nil, fmt.Errorf("%w: sheet %q: %v", ErrInvalidDeckShape, cardsSheet, err)
	}

	d := &models.Deck{}
	levelSet := map[int]bool{}
	for i, row := range rows {
		if i == 0 || blank(row) {
			continue // header
		}
		card, err := cardFromRow(row)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", ErrInvalidDeckShape, i+1, err)
		}
		d.Cards = append(d.Cards, card)
		levelSet[card.ProgressionLevel] = true
	}

	for l := range levelSet {
		d.Metadata.AvailableLevels = append(d.Metadata.AvailableLevels, l)
	}
	sort.Ints(d.Metadata.AvailableLevels)
	if n := len(d.Metadata.AvailableLevels); n > 0 {
		d.Metadata.MaxLevel = d.Metadata.AvailableLevels[n-1]
	}
	d.Metadata.CardCount = len(d.Cards)
	d.Metadata.DeckName = s.Ref()
	if name, err := f.GetCellValue(deckSheet, "A1"); err == nil && strings.TrimSpace(name) != "" {
		d.Metadata.DeckName = strings.TrimSpace(name)
	}

	if err := Validate(d); err != nil {
		return nil, err
	}
	return d, nil
}

func cardFromRow(row []string) (models.Card, error) {
	cell := func(i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}
	level, err := strconv.Atoi(cell(3))
	if err != nil {
		return models.Card{}, fmt.Errorf("level %q is not an integer", cell(3))
	}
	c := models.Card{
		ID:               models.CardID(cell(0)),
		Definition:       cell(1),
		Term:             cell(2),
		ProgressionLevel: level,
	}
	for i := 4; i < len(row); i++ {
		if w := cell(i); w != "" {
			c.WrongAnswers = append(c.WrongAnswers, w)
		}
	}
	return c, nil
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
