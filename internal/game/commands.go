package game

import (
	"fmt"

	"github.com/vytor/quizdeck/internal/timer"
)

// State is the top-level screen of a game.
type State int

const (
	MainMenu State = iota
	Playing
	LevelComplete
	GameOver
	Victory
)

var stateNames = [...]string{
	MainMenu:      "main_menu",
	Playing:       "playing",
	LevelComplete: "level_complete",
	GameOver:      "game_over",
	Victory:       "victory",
}

func (s State) String() string {
	if s >= MainMenu && s <= Victory {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", int(s))
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

type AnswerVisual string

const (
	AnswerNeutral AnswerVisual = "neutral"
	AnswerCorrect AnswerVisual = "correct"
	AnswerWrong   AnswerVisual = "wrong"
)

type OverlayKind string

const (
	OverlayNone          OverlayKind = ""
	OverlayLevelComplete OverlayKind = "level_complete"
	OverlayGameOver      OverlayKind = "game_over"
	OverlayVictory       OverlayKind = "victory"
)

// Summary is the payload of the end-of-level and end-of-game overlays.
// Fields that do not apply to an overlay are left zero.
type Summary struct {
	Level          int    `json:"level"`
	NextLevel      int    `json:"next_level,omitempty"`
	Score          int    `json:"score"`
	CardsMastered  int    `json:"cards_mastered"`
	CardsInLevel   int    `json:"cards_in_level"`
	TotalCards     int    `json:"total_cards"`
	Accuracy       int    `json:"accuracy"`
	LevelAccuracy  int    `json:"level_accuracy"`
	TotalAttempts  int    `json:"total_attempts"`
	LongestStreak  int    `json:"longest_streak"`
	LevelSeconds   int    `json:"level_seconds"`
	SessionSeconds int    `json:"session_seconds"`
	LevelTime      string `json:"level_time"`
	SessionTime    string `json:"session_time"`
}

// Command is a render instruction for the presentation layer.
type Command interface {
	Kind() string
}

// Presenter consumes commands. Present is called with the controller's
// lock held and must not call back into the controller.
type Presenter interface {
	Present(cmd Command)
}

// PresenterFunc adapts a function to Presenter.
type PresenterFunc func(Command)

func (f PresenterFunc) Present(cmd Command) { f(cmd) }

type RenderQuestion struct {
	Definition string
	Answers    [4]string
}

type SetAnswerVisual struct {
	Index  int
	Visual AnswerVisual
}

type SetInputEnabled struct {
	Enabled bool
}

type RenderStats struct {
	Score         int
	Streak        int
	Level         int
	Lives         int
	CardsMastered int
	CardsInLevel  int
	Accuracy      int
}

type ShowOverlay struct {
	Overlay OverlayKind
	Summary Summary
}

type HideOverlay struct{}

type SetTimerVisual struct {
	Visual    timer.Visual
	Remaining int
}

type SetAnswersBlink struct {
	On bool
}

type ShowMenu struct{}

func (RenderQuestion) Kind() string  { return "render_question" }
func (SetAnswerVisual) Kind() string { return "set_answer_visual" }
func (SetInputEnabled) Kind() string { return "set_input_enabled" }
func (RenderStats) Kind() string     { return "render_stats" }
func (ShowOverlay) Kind() string     { return "show_overlay" }
func (HideOverlay) Kind() string     { return "hide_overlay" }
func (SetTimerVisual) Kind() string  { return "set_timer_visual" }
func (SetAnswersBlink) Kind() string { return "set_answers_blink" }
func (ShowMenu) Kind() string        { return "show_menu" }
