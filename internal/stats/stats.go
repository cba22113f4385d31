// Package stats holds the score, lives, streak and accuracy counters of a
// game session.
package stats

import (
	"fmt"
	"math"
	"time"
)

const (
	StartingLives    = 5
	MaxLives         = 10
	PointsPerCorrect = 100
	MaxSpeedBonus    = 50
	// LifeEvery awards a life when the score lands on a positive multiple.
	LifeEvery = 1000
)

type Session struct {
	Score          int `json:"score"`
	Lives          int `json:"lives"`
	Streak         int `json:"streak"`
	LongestStreak  int `json:"longest_streak"`
	TotalAttempts  int `json:"total_attempts"`
	CorrectAnswers int `json:"correct_answers"`

	SessionStart time.Time `json:"session_start"`

	CardsInCurrentLevel int       `json:"cards_in_current_level"`
	CardsMastered       int       `json:"cards_mastered"`
	LevelStart          time.Time `json:"level_start"`
	LevelAttempts       int       `json:"level_attempts"`
	LevelCorrect        int       `json:"level_correct"`
}

func New(now time.Time) Session {
	return Session{
		Lives:        StartingLives,
		SessionStart: now,
		LevelStart:   now,
	}
}

// Outcome describes what a single scored answer changed.
type Outcome struct {
	Points     int
	Bonus      int
	LifeGained bool
}

// RecordCorrect scores a correct answer with the given speed bonus.
func (s *Session) RecordCorrect(bonus int) Outcome {
	if bonus < 0 {
		bonus = 0
	}
	s.TotalAttempts++
	s.LevelAttempts++
	s.CorrectAnswers++
	s.LevelCorrect++
	s.Score += PointsPerCorrect + bonus
	s.Streak++
	if s.Streak > s.LongestStreak {
		s.LongestStreak = s.Streak
	}

	out := Outcome{Points: PointsPerCorrect, Bonus: bonus}
	if s.Score > 0 && s.Score%LifeEvery == 0 && s.Lives < MaxLives {
		s.Lives++
		out.LifeGained = true
	}
	return out
}

// RecordIncorrect charges a life for a wrong answer or a timeout.
func (s *Session) RecordIncorrect() {
	s.TotalAttempts++
	s.LevelAttempts++
	s.Streak = 0
	if s.Lives > 0 {
		s.Lives--
	}
}

// RecordMastery counts a card that just became Learned.
func (s *Session) RecordMastery() {
	if s.CardsMastered < s.CardsInCurrentLevel {
		s.CardsMastered++
	}
}

// StartLevel resets the per-level counters.
func (s *Session) StartLevel(now time.Time, cards, mastered int) {
	s.CardsInCurrentLevel = cards
	s.CardsMastered = min(mastered, cards)
	s.LevelStart = now
	s.LevelAttempts = 0
	s.LevelCorrect = 0
}

// ResetLives restores the starting lives without touching anything else.
func (s *Session) ResetLives() {
	s.Lives = StartingLives
}

func (s Session) Alive() bool { return s.Lives > 0 }

func (s Session) Accuracy() int { return Accuracy(s.CorrectAnswers, s.TotalAttempts) }

func (s Session) LevelAccuracy() int { return Accuracy(s.LevelCorrect, s.LevelAttempts) }

// Accuracy returns round(correct/total*100), or 0 with no attempts.
func Accuracy(correct, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(correct) / float64(total) * 100))
}

// SpeedBonus returns floor(remaining/duration*50) for a running countdown.
func SpeedBonus(remaining, duration int) int {
	if duration <= 0 || remaining <= 0 {
		return 0
	}
	if remaining > duration {
		remaining = duration
	}
	return remaining * MaxSpeedBonus / duration
}

// FormatDuration renders whole seconds as m:ss.
func FormatDuration(d time.Duration) string {
	secs := int(d / time.Second)
	if secs < 0 {
		secs = 0
	}
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}
