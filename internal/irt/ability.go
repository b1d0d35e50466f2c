package irt

import "math"

// AbilityEstimator performs Newton-iteration MLE/MAP ability estimation
// with optional time-weighted information and a sample-size-adaptive
// Gaussian prior.
type AbilityEstimator struct {
	cfg   Config
	model ResponseModel
}

// NewAbilityEstimator builds an estimator bound to the given configuration
// and response model.
func NewAbilityEstimator(cfg Config, model ResponseModel) AbilityEstimator {
	return AbilityEstimator{cfg: cfg, model: model}
}

// DifficultyLookup resolves an item id to (difficulty, discrimination),
// falling back to (0, 1) for an id the bank/difficulty map doesn't know
// about.
type DifficultyLookup interface {
	Lookup(itemID string) (b, a float64)
}

// mapLookup adapts a plain difficulty map. Discrimination is always
// defaulted to 1.0: the estimator never reads item-level discrimination
// unless the caller opts in.
type mapLookup struct {
	difficulties map[string]float64
}

func (m mapLookup) Lookup(itemID string) (float64, float64) {
	if b, ok := m.difficulties[itemID]; ok {
		return b, 1.0
	}
	return 0.0, 1.0
}

// NewMapLookup wraps a difficulty map as a DifficultyLookup.
func NewMapLookup(difficulties map[string]float64) DifficultyLookup {
	return mapLookup{difficulties: difficulties}
}

// EstimateOptions configures a single estimation call.
type EstimateOptions struct {
	// UseMAP selects the MAP posterior mode (adds the sample-size-adaptive
	// Gaussian prior); false selects plain MLE.
	UseMAP bool
	// AllResponsesForExpectedTime is the pool used to compute each item's
	// expected response time for time-weighting. If empty, the
	// estimator falls back to the responses being estimated over, and if
	// that is also empty, to cfg.DefaultResponseTimeS.
	AllResponsesForExpectedTime []Response
}

// Result is the outcome of a single Newton estimation run.
type Result struct {
	Theta      float64
	Confidence float64
	N          int
}

// Estimate runs Newton iteration over responses against the given
// difficulty lookup. Empty responses return (theta=0, confidence=0).
func (e AbilityEstimator) Estimate(responses []Response, lookup DifficultyLookup, opts EstimateOptions) Result {
	if len(responses) == 0 {
		return Result{Theta: 0.0, Confidence: 0.0, N: 0}
	}

	expectedTimes := e.expectedTimesByItem(responses, opts.AllResponsesForExpectedTime)

	theta := 0.0
	n := len(responses)
	sigmaN := e.sigmaN(n)

	var totalInformation float64
	for iter := 0; iter < e.cfg.MaxNewtonIter; iter++ {
		score := 0.0
		totalInformation = 0.0

		for _, r := range responses {
			b, a := lookup.Lookup(r.ItemID)
			p := e.model.Probability(theta, b, a)

			if p <= e.model.Guessing+epsilon || p >= 1.0-epsilon {
				continue
			}

			u := 0.0
			if r.Correct {
				u = 1.0
			}

			weight := (p - e.model.Guessing) / (p * (1.0 - e.model.Guessing))
			score += a * (u - p) * weight

			info := e.model.Information(theta, b, a)
			info *= e.timeWeight(r, expectedTimes)
			totalInformation += info
		}

		if opts.UseMAP {
			score -= theta / (sigmaN * sigmaN)
			totalInformation += 1.0 / (sigmaN * sigmaN)
		}

		if totalInformation <= epsilon {
			break
		}

		delta := score / totalInformation
		delta = clamp(delta, -2.0, 2.0)
		theta += delta

		if math.Abs(delta) < e.cfg.NewtonTol {
			break
		}
	}

	theta = clamp(theta, -3.0, 3.0)

	var confidence float64
	if totalInformation > epsilon {
		se := 1.0 / math.Sqrt(totalInformation)
		confidence = 1.0 / (1.0 + se)
	}

	return Result{Theta: theta, Confidence: confidence, N: n}
}

// sigmaN computes the sample-size-adaptive MAP prior standard deviation:
// tight for small n, relaxing toward sigmaMax as evidence accumulates.
func (e AbilityEstimator) sigmaN(n int) float64 {
	return e.cfg.SigmaMin + (e.cfg.SigmaMax-e.cfg.SigmaMin)*(1.0-math.Exp(-float64(n)/e.cfg.PriorK))
}

// expectedTimesByItem computes the mean response time per item across pool
// (or responses if pool is empty), used for time-weighting.
func (e AbilityEstimator) expectedTimesByItem(responses, pool []Response) map[string]float64 {
	source := pool
	if len(source) == 0 {
		source = responses
	}

	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, r := range source {
		if r.HasKnownResponseTime() {
			sums[r.ItemID] += r.ResponseTimeS
			counts[r.ItemID]++
		}
	}

	out := make(map[string]float64, len(sums))
	for itemID, sum := range sums {
		out[itemID] = sum / float64(counts[itemID])
	}
	return out
}

// timeWeight applies the piecewise response-time multiplier, scaling only the
// information contribution (never the score), so response time affects
// precision but not the direction of the ability update.
func (e AbilityEstimator) timeWeight(r Response, expectedTimes map[string]float64) float64 {
	if !r.HasKnownResponseTime() {
		return 1.0
	}

	expected, ok := expectedTimes[r.ItemID]
	if !ok || expected <= 0 {
		expected = e.cfg.DefaultResponseTimeS
	}

	ratio := r.ResponseTimeS / expected

	switch {
	case ratio <= 0.5:
		return 1.2
	case ratio <= 0.8:
		return 1.1
	case ratio <= 1.0:
		return 1.0
	case ratio <= 1.5:
		return 0.9
	case ratio <= 2.0:
		return 0.7
	default:
		return 0.5
	}
}

// TopicLookup resolves an item id to its (mainTopicID, subTopicID), the
// mapping EstimatePerTopic uses to split responses into per-topic buckets.
type TopicLookup interface {
	Topics(itemID string) (mainTopicID, subTopicID string)
}

// EstimatePerTopic runs Estimate once per topic (main or sub, selected by
// kind) over the subset of responses belonging to it, for topics with at
// least minResponses answers.
func (e AbilityEstimator) EstimatePerTopic(
	responses []Response,
	topics TopicLookup,
	lookup DifficultyLookup,
	kind TopicKind,
	minResponses int,
	opts EstimateOptions,
) map[string]TopicAbility {
	byTopic := make(map[string][]Response)
	for _, r := range responses {
		main, sub := topics.Topics(r.ItemID)
		topicID := main
		if kind == TopicKindSub {
			topicID = sub
		}
		if topicID == "" {
			continue
		}
		byTopic[topicID] = append(byTopic[topicID], r)
	}

	out := make(map[string]TopicAbility, len(byTopic))
	for topicID, topicResponses := range byTopic {
		if len(topicResponses) < minResponses {
			continue
		}
		res := e.Estimate(topicResponses, lookup, opts)
		out[topicID] = TopicAbility{Theta: res.Theta, Confidence: res.Confidence, N: res.N}
	}
	return out
}
