package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vytor/quizdeck/internal/logger"
	"github.com/vytor/quizdeck/internal/services"
)

type answerRequest struct {
	Index *int `json:"index" validate:"required"`
}

type answerResponse struct {
	Accepted bool `json:"accepted"`
	*services.SessionView
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req services.StartRequest
	if err := s.decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	sess, err := s.GameService.Create(r.Context(), req)
	if err != nil {
		handleError(w, r, err)
		return
	}
	logger.FromContext(r.Context()).Debug("created session %s", sess.ID)
	writeJSON(w, r, http.StatusCreated, sess)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.GameService.View(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, sess)
}

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	var req services.StartRequest
	if err := s.decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	sess, err := s.GameService.Start(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, sess)
}

func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := s.decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	accepted, sess, err := s.GameService.Answer(r.Context(), chi.URLParam(r, "id"), *req.Index)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, answerResponse{Accepted: accepted, SessionView: sess})
}

func (s *Server) handleRestartLevel(w http.ResponseWriter, r *http.Request) {
	s.sessionAction(w, r, s.GameService.RestartLevel)
}

func (s *Server) handleRestartGame(w http.ResponseWriter, r *http.Request) {
	s.sessionAction(w, r, s.GameService.RestartGame)
}

func (s *Server) handleMenu(w http.ResponseWriter, r *http.Request) {
	s.sessionAction(w, r, s.GameService.Menu)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.GameService.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) sessionAction(w http.ResponseWriter, r *http.Request, action func(ctx context.Context, id string) (*services.SessionView, error)) {
	sess, err := action(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, sess)
}
