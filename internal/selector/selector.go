// Package selector picks the next card to ask and builds its answer set.
package selector

import (
	"math/rand/v2"

	"github.com/vytor/quizdeck/internal/models"
)

// MaxAnswers is the number of answer slots shown per question.
const MaxAnswers = 4

// StateLookup reports a card's learning state.
type StateLookup interface {
	State(id models.CardID) models.CardState
}

type Selector struct {
	rng *rand.Rand
}

// New returns a Selector drawing from rng. A nil rng uses a randomly seeded
// source.
func New(rng *rand.Rand) *Selector {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Selector{rng: rng}
}

// PickNext chooses uniformly among the cards that are not Learned. It keeps
// no memory of earlier picks, so the same card may come up twice in a row.
// ok is false when every card is Learned.
func (s *Selector) PickNext(cards []models.Card, progress StateLookup) (card models.Card, ok bool) {
	active := make([]models.Card, 0, len(cards))
	for _, c := range cards {
		if progress.State(c.ID) != models.CardLearned {
			active = append(active, c)
		}
	}
	if len(active) == 0 {
		return models.Card{}, false
	}
	return active[s.rng.IntN(len(active))], true
}

// BuildQuestion shuffles the term in with the card's wrong answers. Cards
// with more distractors than fit on screen get a uniform sample of them so
// the term is always displayed.
func (s *Selector) BuildQuestion(card models.Card) models.Question {
	wrong := append([]string(nil), card.WrongAnswers...)
	if len(wrong) > MaxAnswers-1 {
		s.shuffle(wrong)
		wrong = wrong[:MaxAnswers-1]
	}

	answers := make([]string, 0, len(wrong)+1)
	answers = append(answers, card.Term)
	answers = append(answers, wrong...)
	s.shuffle(answers)

	correct := -1
	for i, a := range answers {
		if a == card.Term {
			correct = i
			break
		}
	}
	return models.Question{Card: card, Answers: answers, CorrectAnswerIndex: correct}
}

// shuffle is Fisher-Yates: walk down from the last index, swapping each
// element with a uniform pick from [0, i].
func (s *Selector) shuffle(xs []string) {
	for i := len(xs) - 1; i > 0; i-- {
		j := s.rng.IntN(i + 1)
		xs[i], xs[j] = xs[j], xs[i]
	}
}
