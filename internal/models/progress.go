package models

import (
	"encoding"
	"fmt"
)

// CardState is the learning stage of a card within a level.
type CardState int

const (
	CardNew CardState = iota
	CardStruggling
	CardLearned
)

var (
	cardStateNames  = [...]string{CardNew: "new", CardStruggling: "struggling", CardLearned: "learned"}
	cardStateByName = map[string]CardState{
		"new":        CardNew,
		"struggling": CardStruggling,
		"learned":    CardLearned,
	}
)

var (
	_ fmt.Stringer             = CardState(0)
	_ encoding.TextMarshaler   = CardState(0)
	_ encoding.TextUnmarshaler = (*CardState)(nil)
)

func (s CardState) valid() bool {
	return s >= CardNew && s <= CardLearned
}

func (s CardState) String() string {
	if s.valid() {
		return cardStateNames[s]
	}
	return fmt.Sprintf("CardState(%d)", int(s))
}

func (s CardState) MarshalText() ([]byte, error) {
	if !s.valid() {
		return nil, fmt.Errorf("invalid card state: %d", int(s))
	}
	return []byte(cardStateNames[s]), nil
}

func (s *CardState) UnmarshalText(text []byte) error {
	v, ok := cardStateByName[string(text)]
	if !ok {
		return fmt.Errorf("invalid card state: %q", string(text))
	}
	*s = v
	return nil
}

type CardProgress struct {
	State              CardState `json:"state"`
	ConsecutiveCorrect int       `json:"consecutive_correct"`
	Attempts           int       `json:"attempts"`
	CorrectCount       int       `json:"correct_count"`
}

// Question is the per-turn value shown to the player.
type Question struct {
	Card               Card     `json:"-"`
	Answers            []string `json:"answers"`
	CorrectAnswerIndex int      `json:"-"`
}
