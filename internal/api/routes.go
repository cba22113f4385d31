package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)
	r.Use(securityHeadersMiddleware)

	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)

	r.Route("/api", func(r chi.Router) {
		r.Use(timeoutMiddleware(s.RequestTimeout))

		r.Get("/decks", s.handleListDecks)
		r.Post("/decks", s.handleUploadDeck)
		r.Get("/decks/{ref}", s.handleGetDeck)
		r.Delete("/decks/{ref}", s.handleDeleteDeck)
		r.Get("/decks/{ref}/levels/{level}/cards", s.handleLevelCards)

		r.Post("/sessions", s.handleCreateSession)
		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetSession)
			r.Delete("/", s.handleDeleteSession)
			r.Post("/start", s.handleStartSession)
			r.Post("/answer", s.handleAnswer)
			r.Post("/restart-level", s.handleRestartLevel)
			r.Post("/restart-game", s.handleRestartGame)
			r.Post("/menu", s.handleMenu)
		})
	})
	return r
}
