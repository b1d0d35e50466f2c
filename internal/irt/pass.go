package irt

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// PassEvaluator computes the probability of passing a hypothetical exam:
// Poisson-binomial exact DP for small exams, normal approximation with
// continuity correction for large ones. The normal CDF is delegated to
// gonum's distuv.Normal rather than a hand-rolled erf.
type PassEvaluator struct {
	model ResponseModel
}

// NewPassEvaluator builds a pass evaluator bound to a response model.
func NewPassEvaluator(model ResponseModel) PassEvaluator {
	return PassEvaluator{model: model}
}

// ExamItemProb is one exam item's resolved probability of a correct
// response under the evaluated ability.
type ExamItemProb struct {
	ItemID string
	Prob   float64
}

// PassResult is the outcome of one passing-probability computation.
type PassResult struct {
	PassingProbabilityPct float64
	ExpectedScorePct      float64
	ConfidenceScore       float64
	N                     int
	K                     int
	AverageDifficulty     float64
	// Theta is the overall ability used as the default scoring theta for
	// items without a dedicated per-topic estimate.
	Theta float64
}

// ScoredItem is one exam item with the ability already resolved against it:
// the caller picks theta per item (the item's dedicated main-topic ability
// when one exists, else the overall ability) before handing
// the item to Evaluate.
type ScoredItem struct {
	Theta          float64
	Difficulty     float64
	Discrimination float64
}

// Evaluate computes the passing probability and related statistics for an
// exam. items carries each exam item's resolved ability/difficulty/
// discrimination; abilityConfidence is the overall ability-estimate
// confidence used in the confidence blend.
func (e PassEvaluator) Evaluate(items []ScoredItem, threshold float64, abilityConfidence float64, overallTheta float64) PassResult {
	n := len(items)
	if n == 0 {
		return PassResult{}
	}

	probs := make([]float64, n)
	var totalDifficulty, expectedCorrect float64
	for i, it := range items {
		p := e.model.Probability(it.Theta, it.Difficulty, it.Discrimination)
		probs[i] = p
		totalDifficulty += it.Difficulty
		expectedCorrect += p
	}

	avgDifficulty := totalDifficulty / float64(n)
	expectedScorePct := 100.0 * expectedCorrect / float64(n)

	k := int(math.Ceil(threshold * float64(n)))

	var passProb float64
	if n > 30 {
		passProb = e.normalApprox(probs, k)
	} else {
		passProb = e.exactDP(probs, k)
	}
	passProb = clamp(passProb*100.0, 0.0, 100.0)

	confidence := confidenceScore(abilityConfidence, n, probs)

	return PassResult{
		PassingProbabilityPct: passProb,
		ExpectedScorePct:      expectedScorePct,
		ConfidenceScore:       confidence,
		N:                     n,
		K:                     k,
		AverageDifficulty:     avgDifficulty,
		Theta:                 overallTheta,
	}
}

// exactDP computes P(X >= k) for X = sum of independent non-identical
// Bernoulli(p_i) trials via the Poisson-binomial recurrence
// dp[j] = dp[j]*(1-p) + dp[j-1]*p, updated in place in descending j, then
// sums dp[k..n]. The row holds all n+1 counts (it is not truncated at k),
// so time is O(N^2) and memory O(N).
func (e PassEvaluator) exactDP(probs []float64, k int) float64 {
	n := len(probs)
	dp := make([]float64, n+1)
	dp[0] = 1.0

	for _, p := range probs {
		for j := n; j >= 1; j-- {
			dp[j] = dp[j]*(1.0-p) + dp[j-1]*p
		}
		dp[0] = dp[0] * (1.0 - p)
	}

	if k < 0 {
		k = 0
	}
	var sum float64
	for j := k; j <= n; j++ {
		sum += dp[j]
	}
	return sum
}

// normalApprox computes P(X >= k) via the normal approximation with
// continuity correction: mean = sum(p_i), variance = sum(p_i(1-p_i)).
func (e PassEvaluator) normalApprox(probs []float64, k int) float64 {
	var mean, variance float64
	for _, p := range probs {
		mean += p
		variance += p * (1.0 - p)
	}
	if variance <= 0 {
		variance = 1.0
	}
	std := math.Sqrt(variance)

	z := (float64(k) - 0.5 - mean) / std
	normal := distuv.Normal{Mu: 0, Sigma: 1}
	return 1.0 - normal.CDF(z)
}

// confidenceScore blends ability confidence, exam size, and item-probability
// variance into a single [0,1] confidence figure.
func confidenceScore(abilityConfidence float64, n int, probs []float64) float64 {
	sizeTerm := math.Min(1.0, float64(n)/50.0)

	var varianceTerm float64
	if len(probs) > 1 {
		variance := variance(probs)
		varianceTerm = math.Min(1.0, 4.0*variance)
	} else {
		varianceTerm = 0.5
	}

	score := 0.5*abilityConfidence + 0.3*sizeTerm + 0.2*varianceTerm
	return clamp(score, 0.0, 1.0)
}

func variance(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var mean float64
	for _, x := range xs {
		mean += x
	}
	mean /= float64(len(xs))

	var sumSq float64
	for _, x := range xs {
		d := x - mean
		sumSq += d * d
	}
	return sumSq / float64(len(xs))
}
