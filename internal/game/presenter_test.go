package game_test

import (
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vytor/quizdeck/internal/game"
	"github.com/vytor/quizdeck/internal/logger"
	"github.com/vytor/quizdeck/internal/testutil/mocks"
)

func TestPresenter_ReceivesMenuCommands(t *testing.T) {
	p := &mocks.MockPresenter{}
	p.On("Present", mock.Anything).Return()

	ctrl := game.New(p, game.WithLogger(logger.Discard()))
	require.NoError(t, ctrl.StartGame(game.GameConfig{Deck: meanDeck(), Level: 1}))
	ctrl.BackToMenu()

	p.AssertCalled(t, "Present", mock.AnythingOfType("game.RenderQuestion"))
	p.AssertCalled(t, "Present", game.HideOverlay{})
	p.AssertCalled(t, "Present", game.ShowMenu{})
	p.AssertNotCalled(t, "Present", mock.AnythingOfType("game.ShowOverlay"))
}
