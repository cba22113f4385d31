package mocks

import (
	"github.com/stretchr/testify/mock"
	"github.com/vytor/quizdeck/internal/game"
)

// MockPresenter is a mock implementation of game.Presenter
type MockPresenter struct {
	mock.Mock
}

func (m *MockPresenter) Present(cmd game.Command) {
	m.Called(cmd)
}
