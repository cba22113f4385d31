package api

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/vytor/quizdeck/internal/services"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Server struct {
	DB             Pinger
	DeckService    services.DeckService
	GameService    services.GameService
	RequestTimeout time.Duration

	validate *validator.Validate
}

func NewServer(db Pinger, decks services.DeckService, games services.GameService) *Server {
	return &Server{
		DB:             db,
		DeckService:    decks,
		GameService:    games,
		RequestTimeout: 10 * time.Second,
		validate:       newValidator(),
	}
}
