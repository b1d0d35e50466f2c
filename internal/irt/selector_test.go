package irt

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func bankFixture() []Item {
	return []Item{
		{ID: "q1", MainTopicID: "algebra", SubTopicID: "linear", Difficulty: -2.5, Discrimination: 1.0},
		{ID: "q2", MainTopicID: "algebra", SubTopicID: "quadratic", Difficulty: -1.0, Discrimination: 1.0},
		{ID: "q3", MainTopicID: "algebra", SubTopicID: "quadratic", Difficulty: 0.0, Discrimination: 1.0},
		{ID: "q4", MainTopicID: "geometry", SubTopicID: "angles", Difficulty: 1.0, Discrimination: 1.0},
		{ID: "q5", MainTopicID: "geometry", SubTopicID: "angles", Difficulty: 2.5, Discrimination: 1.0},
	}
}

func TestInitialSet_RespectsRequestedSizeAndHasNoDuplicates(t *testing.T) {
	sel := NewSelector(NewResponseModel(0.25), rand.New(rand.NewSource(42)))
	bank := bankFixture()

	items := sel.InitialSet(bank, nil, 3, nil)
	assert.LessOrEqual(t, len(items), 3)

	seen := map[string]bool{}
	for _, it := range items {
		assert.False(t, seen[it.ID], "duplicate item in initial set")
		seen[it.ID] = true
	}
}

func TestInitialSet_FiltersByCoverage(t *testing.T) {
	sel := NewSelector(NewResponseModel(0.25), rand.New(rand.NewSource(1)))
	bank := bankFixture()

	items := sel.InitialSet(bank, nil, 5, []string{"geometry"})
	for _, it := range items {
		assert.Equal(t, "geometry", it.MainTopicID)
	}
}

func TestSelectNext_PicksMaximumInformationCandidate(t *testing.T) {
	sel := NewSelector(NewResponseModel(0.25), nil)
	bank := bankFixture()

	// At theta=0, information peaks for the candidate whose difficulty is
	// closest to 0 (q3, b=0).
	best, err := sel.SelectNext(bank, 0.0)
	assert.NoError(t, err)
	assert.Equal(t, "q3", best.ID)
}

func TestSelectNext_EmptyCandidatesIsNoCandidates(t *testing.T) {
	sel := NewSelector(NewResponseModel(0.25), nil)
	_, err := sel.SelectNext(nil, 0.0)
	assert.ErrorIs(t, err, ErrNoCandidates)
}

func TestSelectNext_TiesBrokenByInputOrder(t *testing.T) {
	sel := NewSelector(NewResponseModel(0.25), nil)
	tied := []Item{
		{ID: "first", Difficulty: 0.0, Discrimination: 1.0},
		{ID: "second", Difficulty: 0.0, Discrimination: 1.0},
	}
	best, err := sel.SelectNext(tied, 0.0)
	assert.NoError(t, err)
	assert.Equal(t, "first", best.ID)
}

func TestExcludeAnswered_DropsAnsweredItems(t *testing.T) {
	bank := bankFixture()
	out := ExcludeAnswered(bank, map[string]bool{"q1": true, "q3": true})
	ids := map[string]bool{}
	for _, it := range out {
		ids[it.ID] = true
	}
	assert.False(t, ids["q1"])
	assert.False(t, ids["q3"])
	assert.True(t, ids["q2"])
}

func TestActiveTopic_FirstUnmetQuotaInInsertionOrder(t *testing.T) {
	quotas := []TopicQuota{{TopicID: "T1", Required: 2}, {TopicID: "T2", Required: 1}}

	topic, ok := ActiveTopic(quotas, map[string]int{"T1": 1, "T2": 0})
	assert.True(t, ok)
	assert.Equal(t, "T1", topic)

	// After T1's quota is met, the active topic moves on.
	topic2, ok2 := ActiveTopic(quotas, map[string]int{"T1": 2, "T2": 0})
	assert.True(t, ok2)
	assert.Equal(t, "T2", topic2)
}

func TestActiveTopic_AllQuotasMetIsComplete(t *testing.T) {
	quotas := []TopicQuota{{TopicID: "T1", Required: 1}}
	_, ok := ActiveTopic(quotas, map[string]int{"T1": 1})
	assert.False(t, ok)
}

func TestFilterByDirection_HarderAndEasierAndFallback(t *testing.T) {
	bank := bankFixture()

	harder := FilterByDirection(bank, 0.0, +1)
	for _, it := range harder {
		assert.Greater(t, it.Difficulty, 0.0)
	}

	easier := FilterByDirection(bank, 0.0, -1)
	for _, it := range easier {
		assert.Less(t, it.Difficulty, 0.0)
	}

	// No item strictly harder than the bank's max difficulty: empty, callers
	// fall back to the unconstrained list.
	none := FilterByDirection(bank, 2.5, +1)
	assert.Empty(t, none)

	unchanged := FilterByDirection(bank, 0.0, 0)
	assert.Equal(t, bank, unchanged)
}
