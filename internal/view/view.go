// Package view folds game render commands into a snapshot that can be
// served to clients.
package view

import (
	"sync"

	"github.com/vytor/quizdeck/internal/game"
	"github.com/vytor/quizdeck/internal/timer"
)

type Screen string

const (
	ScreenMenu Screen = "menu"
	ScreenGame Screen = "game"
)

type Answer struct {
	Label  string            `json:"label"`
	Visual game.AnswerVisual `json:"visual"`
}

type Stats struct {
	Score         int `json:"score"`
	Streak        int `json:"streak"`
	Level         int `json:"level"`
	Lives         int `json:"lives"`
	CardsMastered int `json:"cards_mastered"`
	CardsInLevel  int `json:"cards_in_level"`
	Accuracy      int `json:"accuracy"`
}

type Overlay struct {
	Kind    game.OverlayKind `json:"kind"`
	Summary game.Summary     `json:"summary"`
}

type Timer struct {
	Visual    timer.Visual `json:"visual"`
	Remaining int          `json:"remaining"`
}

// Model is what a client needs to draw the game.
type Model struct {
	Screen       Screen    `json:"screen"`
	Definition   string    `json:"definition"`
	Answers      [4]Answer `json:"answers"`
	InputEnabled bool      `json:"input_enabled"`
	Stats        Stats     `json:"stats"`
	Overlay      *Overlay  `json:"overlay,omitempty"`
	Timer        Timer     `json:"timer"`
	Blinking     bool      `json:"blinking"`
	Version      uint64    `json:"version"`
}

func initialModel() Model {
	m := Model{Screen: ScreenMenu, Timer: Timer{Visual: timer.VisualIdle}}
	for i := range m.Answers {
		m.Answers[i].Visual = game.AnswerNeutral
	}
	return m
}

// Recorder is a game.Presenter that keeps the latest Model. It is safe for
// concurrent use.
type Recorder struct {
	mu    sync.RWMutex
	model Model
}

func NewRecorder() *Recorder {
	return &Recorder{model: initialModel()}
}

// Present applies cmd to the model. Unknown commands are ignored.
func (r *Recorder) Present(cmd game.Command) {
	r.mu.Lock()
	defer r.mu.Unlock()
	apply(&r.model, cmd)
	r.model.Version++
}

// Model returns a copy of the current model.
func (r *Recorder) Model() Model {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m := r.model
	if m.Overlay != nil {
		o := *m.Overlay
		m.Overlay = &o
	}
	return m
}

func apply(m *Model, cmd game.Command) {
	switch c := cmd.(type) {
	case game.RenderQuestion:
		m.Screen = ScreenGame
		m.Definition = c.Definition
		for i, label := range c.Answers {
			m.Answers[i] = Answer{Label: label, Visual: game.AnswerNeutral}
		}
	case game.SetAnswerVisual:
		if c.Index >= 0 && c.Index < len(m.Answers) {
			m.Answers[c.Index].Visual = c.Visual
		}
	case game.SetInputEnabled:
		m.InputEnabled = c.Enabled
	case game.RenderStats:
		m.Stats = Stats(c)
	case game.ShowOverlay:
		m.Overlay = &Overlay{Kind: c.Overlay, Summary: c.Summary}
	case game.HideOverlay:
		m.Overlay = nil
	case game.SetTimerVisual:
		m.Timer = Timer{Visual: c.Visual, Remaining: c.Remaining}
	case game.SetAnswersBlink:
		m.Blinking = c.On
	case game.ShowMenu:
		*m = Model{
			Screen:  ScreenMenu,
			Stats:   m.Stats,
			Timer:   Timer{Visual: timer.VisualIdle},
			Version: m.Version,
		}
		for i := range m.Answers {
			m.Answers[i].Visual = game.AnswerNeutral
		}
	}
}
