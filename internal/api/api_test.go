package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vytor/quizdeck/internal/api"
	"github.com/vytor/quizdeck/internal/clock"
	"github.com/vytor/quizdeck/internal/deck"
	"github.com/vytor/quizdeck/internal/errors"
	"github.com/vytor/quizdeck/internal/game"
	"github.com/vytor/quizdeck/internal/models"
	"github.com/vytor/quizdeck/internal/repository/sqlite"
	"github.com/vytor/quizdeck/internal/services"
	"github.com/vytor/quizdeck/internal/testutil"
	"github.com/vytor/quizdeck/internal/testutil/mocks"
	"github.com/vytor/quizdeck/internal/view"
)

type pinger struct{ err error }

func (p pinger) PingContext(context.Context) error { return p.err }

type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type sessionBody struct {
	ID       string     `json:"id"`
	Deck     string     `json:"deck"`
	State    string     `json:"state"`
	Level    int        `json:"level"`
	View     view.Model `json:"view"`
	Accepted bool       `json:"accepted"`
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, path, nil)
	} else {
		r = httptest.NewRequest(method, path, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(bytes.NewReader(w.Body.Bytes())).Decode(&v), w.Body.String())
	return v
}

func newMockServer() (*api.Server, *mocks.MockDeckService, *mocks.MockGameService) {
	decks := &mocks.MockDeckService{}
	games := &mocks.MockGameService{}
	return api.NewServer(pinger{}, decks, games), decks, games
}

func TestHealth(t *testing.T) {
	srv, _, _ := newMockServer()
	w := do(t, srv.Routes(), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestReady(t *testing.T) {
	srv, _, _ := newMockServer()
	assert.Equal(t, http.StatusOK, do(t, srv.Routes(), http.MethodGet, "/ready", "").Code)

	srv.DB = pinger{err: assert.AnError}
	assert.Equal(t, http.StatusServiceUnavailable, do(t, srv.Routes(), http.MethodGet, "/ready", "").Code)
}

func TestListDecks(t *testing.T) {
	srv, decks, _ := newMockServer()
	decks.On("ListDecks", mock.Anything, models.DeckFilter{Name: "stat", Limit: 5, Offset: 10}).
		Return([]models.DeckSummary{{Ref: "stats", Name: "Statistics Basics", CardCount: 3}}, 11, nil)

	w := do(t, srv.Routes(), http.MethodGet, "/api/decks?q=stat&limit=5&offset=10", "")
	require.Equal(t, http.StatusOK, w.Code)

	body := decode[struct {
		Decks []models.DeckSummary `json:"decks"`
		Total int                  `json:"total"`
	}](t, w)
	assert.Equal(t, 11, body.Total)
	require.Len(t, body.Decks, 1)
	assert.Equal(t, "stats", body.Decks[0].Ref)
	decks.AssertExpectations(t)
}

func TestListDecks_BadLimit(t *testing.T) {
	srv, decks, _ := newMockServer()
	w := do(t, srv.Routes(), http.MethodGet, "/api/decks?limit=-1", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, errors.ErrCodeValidation, decode[errorBody](t, w).Error.Code)
	decks.AssertNotCalled(t, "ListDecks", mock.Anything, mock.Anything)
}

func TestGetDeck_NotFound(t *testing.T) {
	srv, decks, _ := newMockServer()
	decks.On("GetDeck", mock.Anything, "nope").Return(nil, errors.NewNotFoundError("deck", "nope"))

	w := do(t, srv.Routes(), http.MethodGet, "/api/decks/nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Equal(t, errors.ErrCodeNotFound, decode[errorBody](t, w).Error.Code)
}

func TestUploadDeck(t *testing.T) {
	srv, decks, _ := newMockServer()
	body := `{"metadata":{"deck_name":"Stats","max_level":1,"available_levels":[1]},"cards":[]}`
	decks.On("Import", mock.Anything, deck.BytesSource{Name: "stats", Data: []byte(body)}).Return(nil)
	decks.On("GetDeck", mock.Anything, "stats").Return(&models.DeckSummary{Ref: "stats", Name: "Stats"}, nil)

	w := do(t, srv.Routes(), http.MethodPost, "/api/decks?ref=stats", body)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Stats", decode[models.DeckSummary](t, w).Name)
	decks.AssertExpectations(t)
}

func TestUploadDeck_Errors(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		status int
		code   string
	}{
		{"missing ref", "/api/decks", http.StatusBadRequest, errors.ErrCodeValidation},
		{"ref with slash", "/api/decks?ref=a/b", http.StatusBadRequest, errors.ErrCodeValidation},
		{"invalid deck", "/api/decks?ref=bad", http.StatusUnprocessableEntity, errors.ErrCodeInvalidDeck},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, decks, _ := newMockServer()
			decks.On("Import", mock.Anything, mock.Anything).Return(errors.NewInvalidDeckError(deck.ErrInvalidDeckShape))

			w := do(t, srv.Routes(), http.MethodPost, tt.path, `{"cards":[]}`)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.code, decode[errorBody](t, w).Error.Code)
		})
	}
}

func TestDeleteDeck(t *testing.T) {
	srv, decks, _ := newMockServer()
	decks.On("DeleteDeck", mock.Anything, "stats").Return(nil)
	decks.On("DeleteDeck", mock.Anything, "nope").Return(errors.NewNotFoundError("deck", "nope"))
	h := srv.Routes()

	assert.Equal(t, http.StatusNoContent, do(t, h, http.MethodDelete, "/api/decks/stats", "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodDelete, "/api/decks/nope", "").Code)
}

func TestLevelCards(t *testing.T) {
	srv, decks, _ := newMockServer()
	decks.On("LevelCards", mock.Anything, "stats", 2).Return(testutil.SampleDeck().Cards[2:], nil)
	h := srv.Routes()

	w := do(t, h, http.MethodGet, "/api/decks/stats/levels/2/cards", "")
	require.Equal(t, http.StatusOK, w.Code)
	cards := decode[[]models.Card](t, w)
	require.Len(t, cards, 1)
	assert.Equal(t, "Standard deviation", cards[0].Term)

	w = do(t, h, http.MethodGet, "/api/decks/stats/levels/two/cards", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	decks.AssertNumberOfCalls(t, "LevelCards", 1)
}

func TestCreateSession(t *testing.T) {
	srv, _, games := newMockServer()
	req := services.StartRequest{Deck: "stats", Level: 1, TimerSeconds: 10}
	games.On("Create", mock.Anything, req).
		Return(&services.SessionView{ID: "s1", Deck: "stats", State: game.Playing, Level: 1}, nil)

	w := do(t, srv.Routes(), http.MethodPost, "/api/sessions", `{"deck":"stats","level":1,"timer_seconds":10}`)
	require.Equal(t, http.StatusCreated, w.Code)
	body := decode[sessionBody](t, w)
	assert.Equal(t, "s1", body.ID)
	assert.Equal(t, "playing", body.State)
	games.AssertExpectations(t)
}

func TestCreateSession_RejectsBadBodies(t *testing.T) {
	tests := []struct {
		name string
		body string
		code string
	}{
		{"malformed", `{"deck":`, errors.ErrCodeBadRequest},
		{"unknown field", `{"deck":"stats","lives":9}`, errors.ErrCodeBadRequest},
		{"negative level", `{"deck":"stats","level":-1}`, errors.ErrCodeValidation},
		{"timer too long", `{"deck":"stats","timer_seconds":4000}`, errors.ErrCodeValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _, games := newMockServer()
			w := do(t, srv.Routes(), http.MethodPost, "/api/sessions", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.code, decode[errorBody](t, w).Error.Code)
			games.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestCreateSession_NoDeck(t *testing.T) {
	srv, _, games := newMockServer()
	games.On("Create", mock.Anything, services.StartRequest{}).Return(nil, errors.NewNoDeckSelectedError())

	w := do(t, srv.Routes(), http.MethodPost, "/api/sessions", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, errors.ErrCodeNoDeckSelected, decode[errorBody](t, w).Error.Code)
}

func TestAnswer(t *testing.T) {
	srv, _, games := newMockServer()
	games.On("Answer", mock.Anything, "s1", 2).Return(true, &services.SessionView{ID: "s1"}, nil)

	w := do(t, srv.Routes(), http.MethodPost, "/api/sessions/s1/answer", `{"index":2}`)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[sessionBody](t, w)
	assert.True(t, body.Accepted)
	assert.Equal(t, "s1", body.ID)
}

func TestAnswer_IndexRequired(t *testing.T) {
	srv, _, games := newMockServer()
	w := do(t, srv.Routes(), http.MethodPost, "/api/sessions/s1/answer", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, errors.ErrCodeValidation, decode[errorBody](t, w).Error.Code)
	games.AssertNotCalled(t, "Answer", mock.Anything, mock.Anything, mock.Anything)
}

func TestSessionActions(t *testing.T) {
	srv, _, games := newMockServer()
	games.On("RestartLevel", mock.Anything, "s1").Return(&services.SessionView{ID: "s1"}, nil)
	games.On("RestartGame", mock.Anything, "s1").Return(&services.SessionView{ID: "s1"}, nil)
	games.On("Menu", mock.Anything, "s1").Return(&services.SessionView{ID: "s1", State: game.MainMenu}, nil)
	games.On("View", mock.Anything, "s1").Return(&services.SessionView{ID: "s1"}, nil)
	games.On("Delete", mock.Anything, "s1").Return(nil)
	h := srv.Routes()

	for _, path := range []string{"restart-level", "restart-game", "menu"} {
		w := do(t, h, http.MethodPost, "/api/sessions/s1/"+path, "")
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/api/sessions/s1", "").Code)
	assert.Equal(t, http.StatusNoContent, do(t, h, http.MethodDelete, "/api/sessions/s1", "").Code)
	games.AssertExpectations(t)
}

func TestSessionActions_Conflict(t *testing.T) {
	srv, _, games := newMockServer()
	games.On("RestartLevel", mock.Anything, "s1").Return(nil, errors.NewConflictError("no game has been started in this session", game.ErrNoSession))

	w := do(t, srv.Routes(), http.MethodPost, "/api/sessions/s1/restart-level", "")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, errors.ErrCodeConflict, decode[errorBody](t, w).Error.Code)
}

func TestRecoveryMiddleware(t *testing.T) {
	srv, decks, _ := newMockServer()
	decks.On("GetDeck", mock.Anything, "boom").Run(func(mock.Arguments) { panic("boom") })

	w := do(t, srv.Routes(), http.MethodGet, "/api/decks/boom", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, errors.ErrCodeInternal, decode[errorBody](t, w).Error.Code)
}

// TestGameFlow plays a level-2 game through the real services.
func TestGameFlow(t *testing.T) {
	database := testutil.NewTestDB(t)
	defer testutil.MustClose(t, database)

	raw, err := json.Marshal(testutil.SampleDeck())
	require.NoError(t, err)
	decks := services.NewDeckService(sqlite.NewDeckRepository(database))

	clk := clock.NewFake(time.Unix(0, 0))
	games := services.NewGameService(decks, services.GameSettings{Clock: clk})
	h := api.NewServer(database, decks, games).Routes()

	w := do(t, h, http.MethodPost, "/api/decks?ref=stats", string(raw))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "stats", decode[models.DeckSummary](t, w).Ref)

	w = do(t, h, http.MethodGet, "/api/decks/stats", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Statistics Basics", decode[models.DeckSummary](t, w).Name)

	w = do(t, h, http.MethodGet, "/api/decks/stats/levels/1/cards", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.Card](t, w), 2)

	w = do(t, h, http.MethodPost, "/api/sessions", `{"deck":"stats","level":2,"timer_seconds":10}`)
	require.Equal(t, http.StatusCreated, w.Code)
	created := decode[sessionBody](t, w)
	assert.Equal(t, "playing", created.State)
	assert.Equal(t, "Square root of the variance", created.View.Definition)

	idx := -1
	for i, a := range created.View.Answers {
		if a.Label == "Standard deviation" {
			idx = i
		}
	}
	require.NotEqual(t, -1, idx)

	w = do(t, h, http.MethodPost, "/api/sessions/"+created.ID+"/answer", `{"index":`+strconv.Itoa(idx)+`}`)
	require.Equal(t, http.StatusOK, w.Code)
	answered := decode[sessionBody](t, w)
	assert.True(t, answered.Accepted)
	assert.Equal(t, 150, answered.View.Stats.Score)
	assert.Equal(t, game.AnswerCorrect, answered.View.Answers[idx].Visual)

	clk.Advance(time.Second)
	w = do(t, h, http.MethodGet, "/api/sessions/"+created.ID, "")
	final := decode[sessionBody](t, w)
	assert.Equal(t, "victory", final.State)
	require.NotNil(t, final.View.Overlay)
	assert.Equal(t, game.OverlayVictory, final.View.Overlay.Kind)

	assert.Equal(t, http.StatusNoContent, do(t, h, http.MethodDelete, "/api/sessions/"+created.ID, "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/api/sessions/"+created.ID, "").Code)

	assert.Equal(t, http.StatusNoContent, do(t, h, http.MethodDelete, "/api/decks/stats", "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/api/decks/stats", "").Code)
}
