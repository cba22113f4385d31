package repository

import (
	"context"

	"github.com/vytor/quizdeck/internal/models"
)

// DeckRepository handles deck catalog data access. Lookups of a missing
// ref return sql.ErrNoRows.
type DeckRepository interface {
	Upsert(ctx context.Context, ref, source string, deck *models.Deck) (int64, error)
	List(ctx context.Context, filter models.DeckFilter) ([]models.DeckSummary, error)
	Count(ctx context.Context, filter models.DeckFilter) (int, error)
	Summary(ctx context.Context, ref string) (*models.DeckSummary, error)
	GetByRef(ctx context.Context, ref string) (*models.Deck, error)
	CardsForLevel(ctx context.Context, ref string, level int) ([]models.Card, error)
	Delete(ctx context.Context, ref string) error
}
