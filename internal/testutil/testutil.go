package testutil

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vytor/quizdeck/internal/db"
	"github.com/vytor/quizdeck/internal/models"
)

// NewTestDB creates an in-memory SQLite database with all migrations applied.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()
	d, err := db.Open(":memory:")
	require.NoError(t, err)
	return d.DB
}

// MustClose closes a resource and fails the test on error.
func MustClose(t *testing.T, closer interface{ Close() error }) {
	require.NoError(t, closer.Close())
}

// SampleDeck returns a valid two-level deck: cards a and b on level 1, c on
// level 2.
func SampleDeck() *models.Deck {
	return &models.Deck{
		Metadata: models.DeckMetadata{
			DeckName:        "Statistics Basics",
			MaxLevel:        2,
			AvailableLevels: []int{1, 2},
			CardCount:       3,
		},
		Cards: []models.Card{
			{ID: "a", Definition: "Sum of values divided by their count", Term: "Mean", WrongAnswers: []string{"Median", "Mode"}, ProgressionLevel: 1},
			{ID: "b", Definition: "Middle value of an ordered set", Term: "Median", WrongAnswers: []string{"Mean", "Mode", "Range"}, ProgressionLevel: 1},
			{ID: "c", Definition: "Square root of the variance", Term: "Standard deviation", WrongAnswers: []string{"Variance", "Range", "Mean", "IQR"}, ProgressionLevel: 2},
		},
	}
}
