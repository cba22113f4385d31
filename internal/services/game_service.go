package services

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/vytor/quizdeck/internal/clock"
	"github.com/vytor/quizdeck/internal/deck"
	"github.com/vytor/quizdeck/internal/errors"
	"github.com/vytor/quizdeck/internal/game"
	"github.com/vytor/quizdeck/internal/logger"
	"github.com/vytor/quizdeck/internal/models"
	"github.com/vytor/quizdeck/internal/view"
)

// StartRequest selects the deck, level and countdown of a game. Level 0
// picks the deck's first available level.
type StartRequest struct {
	Deck         string `json:"deck"`
	Level        int    `json:"level" validate:"gte=0"`
	TimerSeconds int    `json:"timer_seconds" validate:"gte=0,lte=3600"`
}

// SessionView is what clients see of a session.
type SessionView struct {
	ID    string     `json:"id"`
	Deck  string     `json:"deck"`
	State game.State `json:"state"`
	Level int        `json:"level"`
	View  view.Model `json:"view"`

	Progress map[models.CardID]models.CardProgress `json:"progress"`
}

// GameService keeps live game sessions in memory
type GameService interface {
	Create(ctx context.Context, req StartRequest) (*SessionView, error)
	Start(ctx context.Context, id string, req StartRequest) (*SessionView, error)
	Answer(ctx context.Context, id string, index int) (bool, *SessionView, error)
	RestartLevel(ctx context.Context, id string) (*SessionView, error)
	RestartGame(ctx context.Context, id string) (*SessionView, error)
	Menu(ctx context.Context, id string) (*SessionView, error)
	View(ctx context.Context, id string) (*SessionView, error)
	Delete(ctx context.Context, id string) error
	Count() int
}

// GameSettings tunes the sessions a GameService creates.
type GameSettings struct {
	MaxSessions int
	Delays      game.Delays
	Clock       clock.Clock
}

type session struct {
	id       string
	ctrl     *game.Controller
	recorder *view.Recorder

	mu      sync.Mutex
	deckRef string
}

type gameService struct {
	decks    DeckService
	settings GameSettings
	log      *logger.Logger

	mu       sync.Mutex
	sessions map[string]*session
	order    []string
}

// NewGameService creates a new GameService
func NewGameService(decks DeckService, settings GameSettings) GameService {
	if settings.MaxSessions <= 0 {
		settings.MaxSessions = 1000
	}
	if settings.Delays == (game.Delays{}) {
		settings.Delays = game.DefaultDelays()
	}
	if settings.Clock == nil {
		settings.Clock = clock.Real()
	}
	return &gameService{
		decks:    decks,
		settings: settings,
		log:      logger.Default().WithPrefix("sessions"),
		sessions: make(map[string]*session),
	}
}

func (s *gameService) Create(ctx context.Context, req StartRequest) (*SessionView, error) {
	log := logger.FromContext(ctx)
	log.Debug("creating session: deck=%s, level=%d, timer=%d", req.Deck, req.Level, req.TimerSeconds)

	cfg, err := s.config(ctx, req)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	rec := view.NewRecorder()
	ctrl := game.New(rec,
		game.WithClock(s.settings.Clock),
		game.WithDelays(s.settings.Delays),
		game.WithLogger(s.log.WithField("session", id)),
	)
	if err := ctrl.StartGame(cfg); err != nil {
		log.Warn("failed to start game: %v", err)
		return nil, gameError(err)
	}

	sess := &session{id: id, deckRef: req.Deck, ctrl: ctrl, recorder: rec}
	s.store(sess)
	log.Info("session %s created for deck %s", id, req.Deck)
	return sess.view(), nil
}

func (s *gameService) Start(ctx context.Context, id string, req StartRequest) (*SessionView, error) {
	sess, err := s.get(id)
	if err != nil {
		return nil, err
	}
	cfg, err := s.config(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := sess.ctrl.StartGame(cfg); err != nil {
		return nil, gameError(err)
	}
	sess.mu.Lock()
	sess.deckRef = req.Deck
	sess.mu.Unlock()
	logger.FromContext(ctx).Debug("session %s started deck %s", id, req.Deck)
	return sess.view(), nil
}

func (s *gameService) Answer(ctx context.Context, id string, index int) (bool, *SessionView, error) {
	sess, err := s.get(id)
	if err != nil {
		return false, nil, err
	}
	accepted := sess.ctrl.SubmitAnswer(index)
	logger.FromContext(ctx).Debug("session %s answer %d accepted=%t", id, index, accepted)
	return accepted, sess.view(), nil
}

func (s *gameService) RestartLevel(ctx context.Context, id string) (*SessionView, error) {
	sess, err := s.get(id)
	if err != nil {
		return nil, err
	}
	if err := sess.ctrl.RestartLevel(); err != nil {
		return nil, gameError(err)
	}
	return sess.view(), nil
}

func (s *gameService) RestartGame(ctx context.Context, id string) (*SessionView, error) {
	sess, err := s.get(id)
	if err != nil {
		return nil, err
	}
	if err := sess.ctrl.RestartGame(); err != nil {
		return nil, gameError(err)
	}
	return sess.view(), nil
}

func (s *gameService) Menu(ctx context.Context, id string) (*SessionView, error) {
	sess, err := s.get(id)
	if err != nil {
		return nil, err
	}
	sess.ctrl.BackToMenu()
	return sess.view(), nil
}

func (s *gameService) View(ctx context.Context, id string) (*SessionView, error) {
	sess, err := s.get(id)
	if err != nil {
		return nil, err
	}
	return sess.view(), nil
}

func (s *gameService) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	if ok {
		s.remove(id)
	}
	s.mu.Unlock()
	if !ok {
		return errors.NewNotFoundError("session", id)
	}
	sess.ctrl.BackToMenu()
	logger.FromContext(ctx).Info("session %s deleted", id)
	return nil
}

func (s *gameService) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// config resolves req against the catalog.
func (s *gameService) config(ctx context.Context, req StartRequest) (game.GameConfig, error) {
	if req.Deck == "" {
		return game.GameConfig{}, errors.NewNoDeckSelectedError()
	}
	d, err := s.decks.LoadDeck(ctx, req.Deck)
	if err != nil {
		return game.GameConfig{}, err
	}
	level := req.Level
	if level == 0 && len(d.Metadata.AvailableLevels) > 0 {
		level = slices.Min(d.Metadata.AvailableLevels)
	}
	return game.GameConfig{Deck: d, Level: level, TimerSeconds: req.TimerSeconds}, nil
}

func (s *gameService) get(id string) (*session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, errors.NewNotFoundError("session", id)
	}
	return sess, nil
}

// store adds sess, evicting the oldest sessions beyond the cap.
func (s *gameService) store(sess *session) {
	s.mu.Lock()
	var evicted []*session
	for len(s.order) >= s.settings.MaxSessions {
		oldest := s.sessions[s.order[0]]
		s.remove(s.order[0])
		evicted = append(evicted, oldest)
	}
	s.sessions[sess.id] = sess
	s.order = append(s.order, sess.id)
	s.mu.Unlock()

	for _, old := range evicted {
		old.ctrl.BackToMenu()
		s.log.Info("evicted session %s", old.id)
	}
}

// remove must be called with s.mu held.
func (s *gameService) remove(id string) {
	delete(s.sessions, id)
	if i := slices.Index(s.order, id); i >= 0 {
		s.order = slices.Delete(s.order, i, i+1)
	}
}

func (sess *session) view() *SessionView {
	snap := sess.ctrl.Snapshot()
	sess.mu.Lock()
	ref := sess.deckRef
	sess.mu.Unlock()
	return &SessionView{
		ID:    sess.id,
		Deck:  ref,
		State: snap.State,
		Level: snap.Level,
		View:  sess.recorder.Model(),

		Progress: sess.ctrl.LevelProgress(),
	}
}

func gameError(err error) error {
	switch {
	case errors.Is(err, game.ErrNoDeckSelected):
		return errors.NewNoDeckSelectedError()
	case errors.Is(err, deck.ErrInvalidDeckShape):
		return errors.NewInvalidDeckError(err)
	case errors.Is(err, game.ErrLevelUnavailable):
		return errors.NewValidationError("level", err.Error())
	case errors.Is(err, game.ErrNoSession):
		return errors.NewConflictError("no game has been started in this session", err)
	default:
		return errors.NewInternalError(fmt.Errorf("game: %w", err))
	}
}
