package stats_test

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/vytor/quizdeck/internal/stats"
)

var epoch = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

func TestNew(t *testing.T) {
	s := stats.New(epoch)
	assert.Equal(t, stats.StartingLives, s.Lives)
	assert.Zero(t, s.Score)
	assert.Equal(t, epoch, s.SessionStart)
	assert.Equal(t, epoch, s.LevelStart)
	assert.Zero(t, s.Accuracy())
}

func TestRecordCorrect_ScoreAndStreak(t *testing.T) {
	s := stats.New(epoch)

	out := s.RecordCorrect(25)
	assert.Equal(t, 125, s.Score)
	assert.Equal(t, 25, out.Bonus)
	assert.False(t, out.LifeGained)

	s.RecordCorrect(0)
	s.RecordIncorrect()
	s.RecordCorrect(0)

	assert.Equal(t, 1, s.Streak)
	assert.Equal(t, 2, s.LongestStreak)
	assert.Equal(t, 4, s.TotalAttempts)
	assert.Equal(t, 3, s.CorrectAnswers)
	assert.Equal(t, 75, s.Accuracy())
}

func TestRecordCorrect_LifeOnThousand(t *testing.T) {
	s := stats.New(epoch)
	for i := 0; i < 9; i++ {
		assert.False(t, s.RecordCorrect(0).LifeGained)
	}
	assert.Equal(t, 900, s.Score)

	out := s.RecordCorrect(0)
	assert.True(t, out.LifeGained)
	assert.Equal(t, 1000, s.Score)
	assert.Equal(t, 6, s.Lives)
}

func TestRecordCorrect_SkippedMultipleGrantsNothing(t *testing.T) {
	s := stats.New(epoch)
	s.Score = 950

	out := s.RecordCorrect(10) // 1060, jumps over 1000
	assert.False(t, out.LifeGained)
	assert.Equal(t, stats.StartingLives, s.Lives)
}

func TestRecordCorrect_LivesCapped(t *testing.T) {
	s := stats.New(epoch)
	s.Lives = stats.MaxLives
	s.Score = 900

	out := s.RecordCorrect(0)
	assert.False(t, out.LifeGained)
	assert.Equal(t, stats.MaxLives, s.Lives)
}

func TestRecordIncorrect_ClampsAtZero(t *testing.T) {
	s := stats.New(epoch)
	for i := 0; i < 8; i++ {
		s.RecordIncorrect()
	}
	assert.Zero(t, s.Lives)
	assert.False(t, s.Alive())
	assert.Zero(t, s.Streak)
}

func TestStartLevel_ResetsLevelCounters(t *testing.T) {
	s := stats.New(epoch)
	s.RecordCorrect(0)
	s.RecordIncorrect()

	later := epoch.Add(time.Minute)
	s.StartLevel(later, 4, 1)

	assert.Equal(t, 4, s.CardsInCurrentLevel)
	assert.Equal(t, 1, s.CardsMastered)
	assert.Equal(t, later, s.LevelStart)
	assert.Zero(t, s.LevelAccuracy())
	assert.Equal(t, 50, s.Accuracy(), "session counters are kept")

	s.RecordMastery()
	s.RecordMastery()
	s.RecordMastery()
	s.RecordMastery()
	assert.Equal(t, 4, s.CardsMastered, "mastered never exceeds cards in level")
}

func TestResetLives_KeepsScore(t *testing.T) {
	s := stats.New(epoch)
	s.RecordCorrect(0)
	s.RecordIncorrect()
	s.RecordIncorrect()

	s.ResetLives()
	assert.Equal(t, stats.StartingLives, s.Lives)
	assert.Equal(t, 100, s.Score)
	assert.Equal(t, 3, s.TotalAttempts)
}

func TestAccuracy(t *testing.T) {
	assert.Equal(t, 0, stats.Accuracy(0, 0))
	assert.Equal(t, 100, stats.Accuracy(1, 1))
	assert.Equal(t, 50, stats.Accuracy(2, 4))
	assert.Equal(t, 67, stats.Accuracy(2, 3))
	assert.Equal(t, 33, stats.Accuracy(1, 3))
}

func TestAccuracy_AlwaysInRange(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	s := stats.New(epoch)
	for i := 0; i < 500; i++ {
		if rng.IntN(2) == 0 {
			s.RecordCorrect(rng.IntN(51))
		} else {
			s.RecordIncorrect()
			s.ResetLives()
		}
		assert.LessOrEqual(t, s.CorrectAnswers, s.TotalAttempts)
		assert.GreaterOrEqual(t, s.Accuracy(), 0)
		assert.LessOrEqual(t, s.Accuracy(), 100)
		assert.LessOrEqual(t, s.Lives, stats.MaxLives)
		assert.GreaterOrEqual(t, s.LongestStreak, s.Streak)
	}
}

func TestSpeedBonus(t *testing.T) {
	tests := []struct {
		remaining, duration, want int
	}{
		{5, 10, 25},
		{10, 10, 50},
		{1, 3, 16},
		{0, 10, 0},
		{3, 0, 0},
		{-1, 10, 0},
		{20, 10, 50},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, stats.SpeedBonus(tt.remaining, tt.duration), "%d/%d", tt.remaining, tt.duration)
	}
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "0:00", stats.FormatDuration(0))
	assert.Equal(t, "0:09", stats.FormatDuration(9*time.Second))
	assert.Equal(t, "2:05", stats.FormatDuration(125*time.Second+400*time.Millisecond))
	assert.Equal(t, "0:00", stats.FormatDuration(-time.Second))
}
