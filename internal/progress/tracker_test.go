package progress_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/quizdeck/internal/models"
	"github.com/vytor/quizdeck/internal/progress"
)

func TestEnsure_CreatesNewOnce(t *testing.T) {
	tr := progress.NewTracker()

	_, tracked := tr.Get("mean")
	assert.False(t, tracked)
	assert.Equal(t, models.CardNew, tr.State("mean"))

	tr.Ensure("mean")
	tr.RecordOutcome("mean", false)
	tr.Ensure("mean")

	p, tracked := tr.Get("mean")
	require.True(t, tracked)
	assert.Equal(t, models.CardStruggling, p.State, "ensure must not reset an existing entry")
	assert.Equal(t, 1, tr.Len())
}

func TestRecordOutcome_NewCorrectIsLearned(t *testing.T) {
	tr := progress.NewTracker()
	tr.Ensure("mean")

	state, mastered := tr.RecordOutcome("mean", true)

	assert.Equal(t, models.CardLearned, state)
	assert.True(t, mastered)
	p, _ := tr.Get("mean")
	assert.Equal(t, models.CardProgress{State: models.CardLearned, ConsecutiveCorrect: 1, Attempts: 1, CorrectCount: 1}, p)
}

func TestRecordOutcome_StrugglingPath(t *testing.T) {
	tr := progress.NewTracker()
	tr.Ensure("mean")

	steps := []struct {
		correct     bool
		state       models.CardState
		consecutive int
		mastered    bool
	}{
		{false, models.CardStruggling, 0, false},
		{false, models.CardStruggling, 0, false},
		{true, models.CardStruggling, 1, false},
		{true, models.CardLearned, 2, true},
	}

	for i, s := range steps {
		state, mastered := tr.RecordOutcome("mean", s.correct)
		p, _ := tr.Get("mean")
		assert.Equal(t, s.state, state, "step %d", i)
		assert.Equal(t, s.consecutive, p.ConsecutiveCorrect, "step %d", i)
		assert.Equal(t, s.mastered, mastered, "step %d", i)
	}

	p, _ := tr.Get("mean")
	assert.Equal(t, 4, p.Attempts)
	assert.Equal(t, 2, p.CorrectCount)
}

func TestRecordOutcome_WrongResetsStreakButNotState(t *testing.T) {
	tr := progress.NewTracker()
	tr.RecordOutcome("x", false)
	tr.RecordOutcome("x", true)
	state, _ := tr.RecordOutcome("x", false)

	p, _ := tr.Get("x")
	assert.Equal(t, models.CardStruggling, state)
	assert.Zero(t, p.ConsecutiveCorrect)

	tr.RecordOutcome("x", true)
	state, mastered := tr.RecordOutcome("x", true)
	assert.Equal(t, models.CardLearned, state)
	assert.True(t, mastered)
}

func TestRecordOutcome_LearnedIsTerminal(t *testing.T) {
	tr := progress.NewTracker()
	_, mastered := tr.RecordOutcome("x", true)
	require.True(t, mastered)

	for _, correct := range []bool{false, true, false, false, true} {
		state, again := tr.RecordOutcome("x", correct)
		assert.Equal(t, models.CardLearned, state)
		assert.False(t, again, "mastery is reported exactly once")
	}
}

func TestAllLearnedAndCount(t *testing.T) {
	tr := progress.NewTracker()
	cards := []models.Card{{ID: "a"}, {ID: "b"}, {ID: "c"}}

	assert.True(t, tr.AllLearned(nil))
	assert.False(t, tr.AllLearned(cards))

	tr.RecordOutcome("a", true)
	tr.RecordOutcome("b", false)
	assert.Equal(t, 1, tr.CountLearned(cards))

	tr.RecordOutcome("b", true)
	tr.RecordOutcome("b", true)
	tr.RecordOutcome("c", true)
	assert.Equal(t, 3, tr.CountLearned(cards))
	assert.True(t, tr.AllLearned(cards))
}

func TestCardState_Text(t *testing.T) {
	b, err := models.CardStruggling.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "struggling", string(b))

	var s models.CardState
	require.NoError(t, s.UnmarshalText([]byte("learned")))
	assert.Equal(t, models.CardLearned, s)

	assert.Error(t, s.UnmarshalText([]byte("mastered")))
	assert.Equal(t, "CardState(9)", models.CardState(9).String())
}
