package irt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func uniformItems(n int, b, a float64) []ScoredItem {
	items := make([]ScoredItem, n)
	for i := range items {
		items[i] = ScoredItem{Theta: 0, Difficulty: b, Discrimination: a}
	}
	return items
}

// 10 items, b=0, a=1, c=0.25, theta=0, tau=0.7.
// p_i ~ 0.625; P(X >= 7) under Binomial(10, 0.625) ~ 0.447
// (P(7)+P(8)+P(9)+P(10) ~ 0.2357+0.1473+0.0546+0.0091).
func TestEvaluate_ExactDP_MatchesBinomialReference(t *testing.T) {
	eval := NewPassEvaluator(NewResponseModel(0.25))
	items := uniformItems(10, 0, 1)

	result := eval.Evaluate(items, 0.7, 0.8, 0.0)
	assert.Equal(t, 7, result.K)
	assert.InDelta(t, 44.7, result.PassingProbabilityPct, 1.0)
	assert.InDelta(t, 62.5, result.ExpectedScorePct, 1.0)
}

// 50 items all with p_i=0.5, tau=0.7 takes the normal-
// approximation path (N>30); P(pass) ~ 1-Phi((35-0.5-25)/sqrt(12.5))
// = 1-Phi(2.687) ~ 0.36%.
func TestEvaluate_NormalApproximation_LargeExam(t *testing.T) {
	eval := NewPassEvaluator(NewResponseModel(0.0))
	// theta == b for every item yields p_i = 0.5 exactly when c = 0.
	items := uniformItems(50, 0, 1)

	result := eval.Evaluate(items, 0.7, 0.8, 0.0)
	assert.Equal(t, 35, result.K)
	assert.InDelta(t, 0.36, result.PassingProbabilityPct, 0.2)
}

// The exact DP and normal-approximation paths must agree within 0.05
// absolute (probability units) around the N=30/31 branch point.
func TestEvaluate_ExactAndNormalApproximationAgreeNearBranchPoint(t *testing.T) {
	eval := NewPassEvaluator(NewResponseModel(0.25))
	items := uniformItems(31, 0, 1)

	exact := eval.exactDP(probsOf(items), 20)
	normal := eval.normalApprox(probsOf(items), 20)

	assert.InDelta(t, exact, normal, 0.05)
}

func probsOf(items []ScoredItem) []float64 {
	model := NewResponseModel(0.25)
	probs := make([]float64, len(items))
	for i, it := range items {
		probs[i] = model.Probability(it.Theta, it.Difficulty, it.Discrimination)
	}
	return probs
}

func TestEvaluate_PassingProbabilityMonotoneInAbility(t *testing.T) {
	eval := NewPassEvaluator(NewResponseModel(0.25))

	lowTheta := []ScoredItem{{Theta: -1, Difficulty: 0, Discrimination: 1}, {Theta: -1, Difficulty: 0.5, Discrimination: 1}}
	highTheta := []ScoredItem{{Theta: 1, Difficulty: 0, Discrimination: 1}, {Theta: 1, Difficulty: 0.5, Discrimination: 1}}

	low := eval.Evaluate(lowTheta, 0.5, 0.8, -1)
	high := eval.Evaluate(highTheta, 0.5, 0.8, 1)

	assert.GreaterOrEqual(t, high.PassingProbabilityPct, low.PassingProbabilityPct)
}

func TestEvaluate_ExpectedAndPassingProbabilityWithinPercentRange(t *testing.T) {
	eval := NewPassEvaluator(NewResponseModel(0.25))
	items := uniformItems(5, 1.5, 1)

	result := eval.Evaluate(items, 0.6, 0.5, 0.0)
	assert.GreaterOrEqual(t, result.ExpectedScorePct, 0.0)
	assert.LessOrEqual(t, result.ExpectedScorePct, 100.0)
	assert.GreaterOrEqual(t, result.PassingProbabilityPct, 0.0)
	assert.LessOrEqual(t, result.PassingProbabilityPct, 100.0)
}

func TestEvaluate_EmptyItemsYieldsZeroResult(t *testing.T) {
	eval := NewPassEvaluator(NewResponseModel(0.25))
	result := eval.Evaluate(nil, 0.5, 0.5, 0.0)
	assert.Equal(t, PassResult{}, result)
}
