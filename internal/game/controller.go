// Package game drives a quiz session: it asks questions, resolves answers,
// keeps score and moves between levels, emitting render commands to a
// Presenter as it goes.
package game

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/vytor/quizdeck/internal/clock"
	"github.com/vytor/quizdeck/internal/deck"
	"github.com/vytor/quizdeck/internal/logger"
	"github.com/vytor/quizdeck/internal/models"
	"github.com/vytor/quizdeck/internal/progress"
	"github.com/vytor/quizdeck/internal/selector"
	"github.com/vytor/quizdeck/internal/stats"
	"github.com/vytor/quizdeck/internal/timer"
)

var (
	ErrNoDeckSelected   = errors.New("game: no deck selected")
	ErrLevelUnavailable = errors.New("game: level not available in deck")
	ErrNoSession        = errors.New("game: no game has been started")
)

// GameConfig selects what to play. TimerSeconds of zero disables the
// countdown.
type GameConfig struct {
	Deck         *models.Deck
	Level        int
	TimerSeconds int
}

// Delays are the pauses between a resolved answer, or a finished level,
// and what comes next.
type Delays struct {
	Correct      time.Duration
	Incorrect    time.Duration
	LevelAdvance time.Duration
}

func DefaultDelays() Delays {
	return Delays{
		Correct:      1000 * time.Millisecond,
		Incorrect:    1500 * time.Millisecond,
		LevelAdvance: 3000 * time.Millisecond,
	}
}

type Option func(*Controller)

func WithClock(clk clock.Clock) Option {
	return func(c *Controller) { c.clock = clk }
}

func WithRand(rng *rand.Rand) Option {
	return func(c *Controller) { c.selector = selector.New(rng) }
}

func WithDelays(d Delays) Option {
	return func(c *Controller) { c.delays = d }
}

func WithLogger(l *logger.Logger) Option {
	return func(c *Controller) { c.log = l }
}

// Controller is safe for concurrent use. Input methods, timer ticks and
// delayed continuations all run under one mutex.
type Controller struct {
	mu        sync.Mutex
	presenter Presenter
	clock     clock.Clock
	selector  *selector.Selector
	timer     *timer.Controller
	delays    Delays
	log       *logger.Logger

	state    State
	started  bool
	cfg      GameConfig
	level    int
	cards    []models.Card
	tracker  *progress.Tracker
	stats    stats.Session
	question *models.Question
	resolved bool
	epoch    uint64
	last     Summary
}

func New(p Presenter, opts ...Option) *Controller {
	c := &Controller{
		presenter: p,
		clock:     clock.Real(),
		delays:    DefaultDelays(),
		log:       logger.Default(),
		state:     MainMenu,
		tracker:   progress.NewTracker(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.selector == nil {
		c.selector = selector.New(nil)
	}
	c.log = c.log.WithPrefix("game")
	c.timer = timer.New(c.clock, timer.WithExecutor(c.locked))
	c.stats = stats.New(c.clock.Now())
	return c
}

func (c *Controller) locked(f func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	f()
}

// StartGame begins a new game from scratch with cfg.
func (c *Controller) StartGame(cfg GameConfig) error {
	if cfg.Deck == nil {
		return ErrNoDeckSelected
	}
	if err := deck.Validate(cfg.Deck); err != nil {
		return err
	}
	if !cfg.Deck.HasLevel(cfg.Level) {
		return fmt.Errorf("%w: %d", ErrLevelUnavailable, cfg.Level)
	}
	if cfg.TimerSeconds < 0 {
		cfg.TimerSeconds = 0
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.cfg = cfg
	c.started = true
	c.begin()
	return nil
}

// SubmitAnswer resolves the current question with the answer at index. It
// reports false when the answer was ignored.
func (c *Controller) SubmitAnswer(index int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.resolve(index, false)
}

// RestartLevel replays the current level with full lives. Score, streak
// and card mastery carry over.
func (c *Controller) RestartLevel() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.started {
		return ErrNoSession
	}
	c.epoch++
	c.timer.Clear()
	c.stats.ResetLives()
	c.log.Debug("restarting level %d", c.level)
	c.enterLevel()
	return nil
}

// RestartGame starts over with the configuration of the last StartGame.
func (c *Controller) RestartGame() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.started {
		return ErrNoSession
	}
	c.log.Debug("restarting game")
	c.begin()
	return nil
}

func (c *Controller) BackToMenu() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == MainMenu {
		return
	}
	c.epoch++
	c.timer.Clear()
	c.question = nil
	c.resolved = false
	c.setState(MainMenu)
	c.emit(SetInputEnabled{Enabled: false})
	c.emit(SetTimerVisual{Visual: timer.VisualIdle})
	c.emit(SetAnswersBlink{On: false})
	c.emit(HideOverlay{})
	c.emit(ShowMenu{})
}

// Snapshot is a read-only copy of the controller state.
type Snapshot struct {
	State      State
	Level      int
	DeckName   string
	Stats      stats.Session
	Question   *QuestionView
	Timer      TimerView
	Summary    Summary
	TotalCards int
}

// QuestionView is the current question without its answer.
type QuestionView struct {
	CardID     models.CardID
	Definition string
	Answers    []string
	Resolved   bool
}

type TimerView struct {
	State     timer.State
	Visual    timer.Visual
	Duration  int
	Remaining int
	Blinking  bool
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Snapshot{
		State: c.state,
		Level: c.level,
		Stats: c.stats,
		Timer: TimerView{
			State:     c.timer.State(),
			Visual:    c.timer.Visual(),
			Duration:  c.timer.Duration(),
			Remaining: c.timer.Remaining(),
			Blinking:  c.timer.Blinking(),
		},
		Summary: c.last,
	}
	if c.cfg.Deck != nil {
		s.DeckName = c.cfg.Deck.Metadata.DeckName
		s.TotalCards = c.cfg.Deck.TotalCards()
	}
	if q := c.question; q != nil {
		s.Question = &QuestionView{
			CardID:     q.Card.ID,
			Definition: q.Card.Definition,
			Answers:    append([]string(nil), q.Answers...),
			Resolved:   c.resolved,
		}
	}
	return s
}

// LevelProgress returns the progress of every card of the current level
// that has been shown at least once.
func (c *Controller) LevelProgress() map[models.CardID]models.CardProgress {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[models.CardID]models.CardProgress, len(c.cards))
	for _, card := range c.cards {
		if p, ok := c.tracker.Get(card.ID); ok {
			out[card.ID] = p
		}
	}
	return out
}

// begin resets all game state and enters the configured level.
func (c *Controller) begin() {
	c.epoch++
	c.timer.Clear()
	c.stats = stats.New(c.clock.Now())
	c.tracker = progress.NewTracker()
	c.level = c.cfg.Level
	c.last = Summary{}
	c.log.Debug("starting %q at level %d, timer %ds", c.cfg.Deck.Metadata.DeckName, c.level, c.cfg.TimerSeconds)
	c.enterLevel()
}

func (c *Controller) enterLevel() {
	c.cards = deck.CardsForLevel(c.cfg.Deck, c.level)
	c.stats.StartLevel(c.clock.Now(), len(c.cards), c.tracker.CountLearned(c.cards))
	c.question = nil
	c.resolved = false
	c.setState(Playing)
	c.emit(HideOverlay{})
	c.nextQuestion()
}

func (c *Controller) nextQuestion() {
	card, ok := c.selector.PickNext(c.cards, c.tracker)
	if !ok {
		c.completeLevel()
		return
	}
	c.tracker.Ensure(card.ID)
	q := c.selector.BuildQuestion(card)
	c.question = &q
	c.resolved = false

	render := RenderQuestion{Definition: card.Definition}
	copy(render.Answers[:], q.Answers)
	c.emit(render)
	for i := range selector.MaxAnswers {
		c.emit(SetAnswerVisual{Index: i, Visual: AnswerNeutral})
	}
	c.emit(SetAnswersBlink{On: false})
	c.emit(SetInputEnabled{Enabled: true})
	c.emit(SetTimerVisual{Visual: timer.VisualIdle})
	c.renderStats()

	if c.cfg.TimerSeconds > 0 {
		c.timer.Start(c.cfg.TimerSeconds, timerEvents{c})
	}
}

// resolve settles the current question once. index is ignored on timeout.
func (c *Controller) resolve(index int, timedOut bool) bool {
	if c.state != Playing || c.question == nil || c.resolved {
		return false
	}
	q := c.question
	if !timedOut && (index < 0 || index >= len(q.Answers)) {
		return false
	}
	c.resolved = true

	running := c.timer.Running()
	remaining, duration := c.timer.Remaining(), c.timer.Duration()
	c.timer.Clear()
	c.emit(SetInputEnabled{Enabled: false})
	c.emit(SetTimerVisual{Visual: timer.VisualIdle})
	c.emit(SetAnswersBlink{On: false})

	delay := c.delays.Incorrect
	if !timedOut && index == q.CorrectAnswerIndex {
		bonus := 0
		if running {
			bonus = stats.SpeedBonus(remaining, duration)
		}
		out := c.stats.RecordCorrect(bonus)
		if _, mastered := c.tracker.RecordOutcome(q.Card.ID, true); mastered {
			c.stats.RecordMastery()
		}
		c.emit(SetAnswerVisual{Index: index, Visual: AnswerCorrect})
		if out.LifeGained {
			c.log.Debug("life gained at score %d", c.stats.Score)
		}
		delay = c.delays.Correct
	} else {
		c.stats.RecordIncorrect()
		c.tracker.RecordOutcome(q.Card.ID, false)
		if !timedOut {
			c.emit(SetAnswerVisual{Index: index, Visual: AnswerWrong})
			c.emit(SetAnswerVisual{Index: q.CorrectAnswerIndex, Visual: AnswerCorrect})
		} else {
			c.log.Debug("card %s timed out", q.Card.ID)
		}
	}
	c.renderStats()
	c.after(delay, c.continueAfterAnswer)
	return true
}

func (c *Controller) continueAfterAnswer() {
	if c.state != Playing || !c.resolved {
		return
	}
	if !c.stats.Alive() {
		c.gameOver()
		return
	}
	c.nextQuestion()
}

func (c *Controller) completeLevel() {
	if !c.tracker.AllLearned(c.cards) {
		c.log.Warn("level %d has no active cards but is not fully learned", c.level)
		c.nextQuestion()
		return
	}
	c.question = nil
	c.emit(SetInputEnabled{Enabled: false})

	summary := c.summary()
	next := c.level + 1
	if c.cfg.Deck.HasLevel(next) {
		summary.NextLevel = next
		c.last = summary
		c.setState(LevelComplete)
		c.emit(ShowOverlay{Overlay: OverlayLevelComplete, Summary: summary})
		c.after(c.delays.LevelAdvance, c.advanceLevel)
		return
	}
	c.last = summary
	c.setState(Victory)
	c.log.Info("victory with score %d in %s", summary.Score, summary.SessionTime)
	c.emit(ShowOverlay{Overlay: OverlayVictory, Summary: summary})
}

func (c *Controller) advanceLevel() {
	if c.state != LevelComplete {
		return
	}
	c.level++
	c.enterLevel()
}

func (c *Controller) gameOver() {
	c.timer.Clear()
	c.question = nil
	summary := c.summary()
	c.last = summary
	c.setState(GameOver)
	c.log.Info("game over at level %d with score %d", c.level, summary.Score)
	c.emit(ShowOverlay{Overlay: OverlayGameOver, Summary: summary})
}

func (c *Controller) summary() Summary {
	now := c.clock.Now()
	levelTime := now.Sub(c.stats.LevelStart)
	sessionTime := now.Sub(c.stats.SessionStart)
	return Summary{
		Level:          c.level,
		Score:          c.stats.Score,
		CardsMastered:  c.stats.CardsMastered,
		CardsInLevel:   c.stats.CardsInCurrentLevel,
		TotalCards:     c.cfg.Deck.TotalCards(),
		Accuracy:       c.stats.Accuracy(),
		LevelAccuracy:  c.stats.LevelAccuracy(),
		TotalAttempts:  c.stats.TotalAttempts,
		LongestStreak:  c.stats.LongestStreak,
		LevelSeconds:   int(levelTime / time.Second),
		SessionSeconds: int(sessionTime / time.Second),
		LevelTime:      stats.FormatDuration(levelTime),
		SessionTime:    stats.FormatDuration(sessionTime),
	}
}

// after runs f under the lock once d has passed, unless the game was
// restarted or left in the meantime.
func (c *Controller) after(d time.Duration, f func()) {
	epoch := c.epoch
	c.clock.AfterFunc(d, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.epoch != epoch {
			return
		}
		f()
	})
}

func (c *Controller) setState(s State) {
	if c.state != s {
		c.log.Debug("%s -> %s", c.state, s)
	}
	c.state = s
}

func (c *Controller) renderStats() {
	c.emit(RenderStats{
		Score:         c.stats.Score,
		Streak:        c.stats.Streak,
		Level:         c.level,
		Lives:         c.stats.Lives,
		CardsMastered: c.stats.CardsMastered,
		CardsInLevel:  c.stats.CardsInCurrentLevel,
		Accuracy:      c.stats.Accuracy(),
	})
}

func (c *Controller) emit(cmd Command) {
	if c.presenter != nil {
		c.presenter.Present(cmd)
	}
}

// timerEvents forwards countdown notifications. They arrive under the
// controller lock through the timer's executor.
type timerEvents struct{ c *Controller }

func (e timerEvents) OnVisual(v timer.Visual, remaining int) {
	e.c.emit(SetTimerVisual{Visual: v, Remaining: remaining})
}

func (e timerEvents) OnBlink() { e.c.emit(SetAnswersBlink{On: true}) }

func (e timerEvents) OnExpire() { e.c.resolve(-1, true) }
