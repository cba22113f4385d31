package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/quizdeck/internal/services"
)

// MockGameService is a mock implementation of services.GameService
type MockGameService struct {
	mock.Mock
}

func (m *MockGameService) Create(ctx context.Context, req services.StartRequest) (*services.SessionView, error) {
	args := m.Called(ctx, req)
	return view(args.Get(0)), args.Error(1)
}

func (m *MockGameService) Start(ctx context.Context, id string, req services.StartRequest) (*services.SessionView, error) {
	args := m.Called(ctx, id, req)
	return view(args.Get(0)), args.Error(1)
}

func (m *MockGameService) Answer(ctx context.Context, id string, index int) (bool, *services.SessionView, error) {
	args := m.Called(ctx, id, index)
	return args.Bool(0), view(args.Get(1)), args.Error(2)
}

func (m *MockGameService) RestartLevel(ctx context.Context, id string) (*services.SessionView, error) {
	args := m.Called(ctx, id)
	return view(args.Get(0)), args.Error(1)
}

func (m *MockGameService) RestartGame(ctx context.Context, id string) (*services.SessionView, error) {
	args := m.Called(ctx, id)
	return view(args.Get(0)), args.Error(1)
}

func (m *MockGameService) Menu(ctx context.Context, id string) (*services.SessionView, error) {
	args := m.Called(ctx, id)
	return view(args.Get(0)), args.Error(1)
}

func (m *MockGameService) View(ctx context.Context, id string) (*services.SessionView, error) {
	args := m.Called(ctx, id)
	return view(args.Get(0)), args.Error(1)
}

func (m *MockGameService) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockGameService) Count() int {
	args := m.Called()
	return args.Int(0)
}

func view(v any) *services.SessionView {
	if v == nil {
		return nil
	}
	return v.(*services.SessionView)
}
