// Package progress tracks per-card learning state within a level.
//
// A card moves New -> Learned after one correct answer, New -> Struggling
// after a wrong answer or timeout, and Struggling -> Learned after two
// consecutive correct answers. Learned is terminal.
package progress

import "github.com/vytor/quizdeck/internal/models"

const (
	// NewToLearned is the consecutive-correct count that masters a new card.
	NewToLearned = 1
	// StrugglingToLearned is the consecutive-correct count that masters a
	// struggling card.
	StrugglingToLearned = 2
)

// Tracker holds card progress keyed by card id. It is not safe for
// concurrent use; the game controller owns it.
type Tracker struct {
	cards map[models.CardID]*models.CardProgress
}

func NewTracker() *Tracker {
	return &Tracker{cards: make(map[models.CardID]*models.CardProgress)}
}

// Ensure creates a New entry for id if none exists.
func (t *Tracker) Ensure(id models.CardID) {
	if _, ok := t.cards[id]; !ok {
		t.cards[id] = &models.CardProgress{State: models.CardNew}
	}
}

// Get returns a copy of the progress for id and whether it is tracked.
func (t *Tracker) Get(id models.CardID) (models.CardProgress, bool) {
	p, ok := t.cards[id]
	if !ok {
		return models.CardProgress{State: models.CardNew}, false
	}
	return *p, true
}

// State returns the card's state. Untracked cards are New.
func (t *Tracker) State(id models.CardID) models.CardState {
	if p, ok := t.cards[id]; ok {
		return p.State
	}
	return models.CardNew
}

// Len returns the number of tracked cards.
func (t *Tracker) Len() int { return len(t.cards) }

// RecordOutcome applies one answer to the card and reports its new state and
// whether this call mastered it. Outcomes on a Learned card only update the
// counters.
func (t *Tracker) RecordOutcome(id models.CardID, correct bool) (models.CardState, bool) {
	t.Ensure(id)
	p := t.cards[id]

	p.Attempts++
	if correct {
		p.CorrectCount++
		p.ConsecutiveCorrect++
	} else {
		p.ConsecutiveCorrect = 0
	}

	switch p.State {
	case models.CardNew:
		if !correct {
			p.State = models.CardStruggling
		} else if p.ConsecutiveCorrect >= NewToLearned {
			p.State = models.CardLearned
			return p.State, true
		}
	case models.CardStruggling:
		if correct && p.ConsecutiveCorrect >= StrugglingToLearned {
			p.State = models.CardLearned
			return p.State, true
		}
	}
	return p.State, false
}

// AllLearned reports whether every card is Learned. An empty set is
// trivially learned.
func (t *Tracker) AllLearned(cards []models.Card) bool {
	for _, c := range cards {
		if t.State(c.ID) != models.CardLearned {
			return false
		}
	}
	return true
}

// CountLearned returns how many of cards are Learned.
func (t *Tracker) CountLearned(cards []models.Card) int {
	n := 0
	for _, c := range cards {
		if t.State(c.ID) == models.CardLearned {
			n++
		}
	}
	return n
}
