package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/quizdeck/internal/models"
)

// MockDeckRepository is a mock implementation of repository.DeckRepository
type MockDeckRepository struct {
	mock.Mock
}

func (m *MockDeckRepository) Upsert(ctx context.Context, ref, source string, deck *models.Deck) (int64, error) {
	args := m.Called(ctx, ref, source, deck)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDeckRepository) List(ctx context.Context, filter models.DeckFilter) ([]models.DeckSummary, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.DeckSummary), args.Error(1)
}

func (m *MockDeckRepository) Count(ctx context.Context, filter models.DeckFilter) (int, error) {
	args := m.Called(ctx, filter)
	return args.Int(0), args.Error(1)
}

func (m *MockDeckRepository) Summary(ctx context.Context, ref string) (*models.DeckSummary, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DeckSummary), args.Error(1)
}

func (m *MockDeckRepository) GetByRef(ctx context.Context, ref string) (*models.Deck, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Deck), args.Error(1)
}

func (m *MockDeckRepository) CardsForLevel(ctx context.Context, ref string, level int) ([]models.Card, error) {
	args := m.Called(ctx, ref, level)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Card), args.Error(1)
}

func (m *MockDeckRepository) Delete(ctx context.Context, ref string) error {
	args := m.Called(ctx, ref)
	return args.Error(0)
}
