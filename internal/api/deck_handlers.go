package api

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/vytor/quizdeck/internal/deck"
	"github.com/vytor/quizdeck/internal/errors"
	"github.com/vytor/quizdeck/internal/models"
)

type deckListResponse struct {
	Decks []models.DeckSummary `json:"decks"`
	Total int                  `json:"total"`
}

func (s *Server) handleListDecks(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		handleError(w, r, err)
		return
	}
	offset, err := queryInt(r, "offset")
	if err != nil {
		handleError(w, r, err)
		return
	}

	filter := models.DeckFilter{
		Name:   strings.TrimSpace(r.URL.Query().Get("q")),
		Limit:  limit,
		Offset: offset,
	}
	decks, total, err := s.DeckService.ListDecks(r.Context(), filter)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, deckListResponse{Decks: decks, Total: total})
}

func (s *Server) handleGetDeck(w http.ResponseWriter, r *http.Request) {
	deck, err := s.DeckService.GetDeck(r.Context(), chi.URLParam(r, "ref"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, deck)
}

// maxDeckBytes bounds an uploaded deck document.
const maxDeckBytes = 16 << 20

// handleUploadDeck imports the deck JSON in the request body under the ref
// given by the "ref" query parameter, replacing any deck stored there.
func (s *Server) handleUploadDeck(w http.ResponseWriter, r *http.Request) {
	ref := strings.TrimSpace(r.URL.Query().Get("ref"))
	if err := s.validate.Var(ref, "required,max=100,excludesall=/?#%"); err != nil {
		handleError(w, r, errors.NewValidationError("ref", "must be a non-empty name without /?#%"))
		return
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxDeckBytes))
	if err != nil {
		handleError(w, r, errors.NewBadRequestError(fmt.Sprintf("failed to read deck: %v", err)))
		return
	}

	if err := s.DeckService.Import(r.Context(), deck.BytesSource{Name: ref, Data: data}); err != nil {
		handleError(w, r, err)
		return
	}
	summary, err := s.DeckService.GetDeck(r.Context(), ref)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, summary)
}

func (s *Server) handleDeleteDeck(w http.ResponseWriter, r *http.Request) {
	if err := s.DeckService.DeleteDeck(r.Context(), chi.URLParam(r, "ref")); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleLevelCards(w http.ResponseWriter, r *http.Request) {
	level, err := strconv.Atoi(chi.URLParam(r, "level"))
	if err != nil || level < 0 {
		handleError(w, r, errors.NewValidationError("level", "must be a non-negative integer"))
		return
	}
	cards, err := s.DeckService.LevelCards(r.Context(), chi.URLParam(r, "ref"), level)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, cards)
}
