package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/quizdeck/internal/deck"
	"github.com/vytor/quizdeck/internal/models"
)

// MockDeckService is a mock implementation of services.DeckService
type MockDeckService struct {
	mock.Mock
}

func (m *MockDeckService) Import(ctx context.Context, src deck.Source) error {
	args := m.Called(ctx, src)
	return args.Error(0)
}

func (m *MockDeckService) ListDecks(ctx context.Context, filter models.DeckFilter) ([]models.DeckSummary, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]models.DeckSummary), args.Int(1), args.Error(2)
}

func (m *MockDeckService) GetDeck(ctx context.Context, ref string) (*models.DeckSummary, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DeckSummary), args.Error(1)
}

func (m *MockDeckService) LoadDeck(ctx context.Context, ref string) (*models.Deck, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Deck), args.Error(1)
}

func (m *MockDeckService) LevelCards(ctx context.Context, ref string, level int) ([]models.Card, error) {
	args := m.Called(ctx, ref, level)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Card), args.Error(1)
}

func (m *MockDeckService) DeleteDeck(ctx context.Context, ref string) error {
	args := m.Called(ctx, ref)
	return args.Error(0)
}

func (m *MockDeckService) Prune(ctx context.Context, keep []string) ([]string, error) {
	args := m.Called(ctx, keep)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}
