// Package engine wires the numerical core (internal/irt) to a shared bank
// context and exposes the diagnostic operations as plain synchronous Go
// methods, the layer an HTTP or RPC handler would call into.
package engine

import (
	"context"
	"fmt"
	"hash/fnv"
	"time"

	"irt-diagnostic-engine/internal/bank"
	"irt-diagnostic-engine/internal/cache"
	"irt-diagnostic-engine/internal/enginerr"
	"irt-diagnostic-engine/internal/irt"
	"irt-diagnostic-engine/internal/logger"
	"irt-diagnostic-engine/internal/metrics"
)

// abilityCacheTTL bounds how long a memoized ability estimate is trusted
// before recomputation; ability is derived from a response set the caller
// may extend at any time, so the window stays short.
const abilityCacheTTL = 15 * time.Minute

// Engine is the diagnostic engine's entry point. Every field beyond the
// bank context is stateless and safe for concurrent use; the bank context
// itself is immutable once built.
type Engine struct {
	bank *bank.Context
	cfg  irt.Config

	model     irt.ResponseModel
	ability   irt.AbilityEstimator
	selector  irt.Selector
	passEval  irt.PassEvaluator

	cache   *cache.RedisClient // optional; nil disables caching
	log     *logger.Logger
	metrics *metrics.Metrics
}

// New builds an Engine over an already-constructed bank context. cacheClient
// may be nil, in which case every operation runs uncached.
func New(bankCtx *bank.Context, cfg irt.Config, log *logger.Logger, m *metrics.Metrics, cacheClient *cache.RedisClient) *Engine {
	model := irt.NewResponseModel(cfg.Guessing)
	return &Engine{
		bank:     bankCtx,
		cfg:      cfg,
		model:    model,
		ability:  irt.NewAbilityEstimator(cfg, model),
		selector: irt.NewSelector(model, nil),
		passEval: irt.NewPassEvaluator(model),
		cache:    cacheClient,
		log:      log,
		metrics:  m,
	}
}

// recordOutcome records the generic per-operation request metrics
// (duration, count, error type), alongside the domain-specific histograms
// recorded inline at each call site.
func (e *Engine) recordOutcome(operation string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
		e.metrics.RecordError(operation, string(enginerr.CodeOf(err)))
	}
	e.metrics.RecordRequest(operation, status, time.Since(start))
}

// GenerateInitialQuestionSet builds the non-adaptive initial item set.
// numQuestions <= 0 or no matching candidates is a BadRequest.
func (e *Engine) GenerateInitialQuestionSet(numQuestions int, coverageTopics []string) ([]irt.Item, error) {
	start := time.Now()
	timer := metrics.NewTimer()
	defer func() {
		e.metrics.SelectionDuration.Observe(timer.Duration().Seconds())
	}()

	items := e.selector.InitialSet(e.bank.Items, e.bank.Difficulties, numQuestions, coverageTopics)
	if len(items) == 0 {
		err := enginerr.BadRequestf("no candidate items available for the requested coverage topics")
		e.recordOutcome("generateInitialQuestionSet", start, err)
		return nil, err
	}
	e.metrics.ItemsRecommended.Add(float64(len(items)))
	e.recordOutcome("generateInitialQuestionSet", start, nil)
	return items, nil
}

// ListItemsResult bundles the bank listing with the analysis summary
// returned in the same call.
type ListItemsResult struct {
	Items    []irt.Item
	Analysis irt.Analysis
}

// ListItems returns up to limit items (0 or negative means "all") together
// with the descriptive-statistics bundle over the full bank.
func (e *Engine) ListItems(limit int) ListItemsResult {
	items := e.bank.Items
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return ListItemsResult{
		Items:    items,
		Analysis: irt.Analyze(e.bank.Items, e.bank.Difficulties),
	}
}

// resolveResponses returns the response set an estimation should run over:
// inlineResponses when supplied, otherwise the user's aggregated log entry.
// A user with neither is NotFound.
func (e *Engine) resolveResponses(userID string, inlineResponses []irt.Response) ([]irt.Response, error) {
	if len(inlineResponses) > 0 {
		return inlineResponses, nil
	}
	responses, ok := e.bank.ResponsesByUser[userID]
	if !ok || len(responses) == 0 {
		return nil, enginerr.NotFoundf("no responses on record for user %q", userID)
	}
	return responses, nil
}

// responseSetFingerprint is a content hash of a response set: an FNV-1a
// hash (stdlib hash/fnv) over every response's item id, outcome and
// response time, prefixed with the count, so a changed item, outcome or
// time yields a different cache key. The hash follows input order, so the
// same responses in another order get a different key and miss the cache.
func responseSetFingerprint(responses []irt.Response) string {
	h := fnv.New64a()
	for _, r := range responses {
		fmt.Fprintf(h, "%s|%t|%g;", r.ItemID, r.Correct, r.ResponseTimeS)
	}
	return fmt.Sprintf("%d-%x", len(responses), h.Sum64())
}

// EstimateAbility computes overall and per-topic ability for one user.
// When inlineResponses is non-empty it takes precedence over the
// aggregated response log. Results are memoized in the optional cache,
// keyed by bank version + response-set fingerprint.
func (e *Engine) EstimateAbility(ctx context.Context, userID string, inlineResponses []irt.Response) (irt.UserAbility, error) {
	start := time.Now()
	timer := metrics.NewTimer()
	defer func() {
		e.metrics.AbilityEstimationDuration.Observe(timer.Duration().Seconds())
		e.metrics.AbilityUpdates.Inc()
	}()

	responses, err := e.resolveResponses(userID, inlineResponses)
	if err != nil {
		e.recordOutcome("estimateAbility", start, err)
		return irt.UserAbility{}, err
	}

	cacheKey := cache.AbilityKey(userID, e.bank.Version+"-"+responseSetFingerprint(responses))
	if e.cache != nil {
		var cached irt.UserAbility
		if err := e.cache.Get(ctx, cacheKey, &cached); err == nil {
			e.metrics.RecordCacheHit("ability")
			e.recordOutcome("estimateAbility", start, nil)
			return cached, nil
		}
	}

	// Ability estimation defaults every item to a=1.0, so it reads through
	// irt.NewMapLookup rather than a discrimination-aware lookup; item-level
	// discrimination only enters through the response model and the pass
	// evaluator.
	lookup := irt.NewMapLookup(e.bank.Difficulties)
	pool := e.bank.AllResponses()
	opts := irt.EstimateOptions{UseMAP: true, AllResponsesForExpectedTime: pool}

	overall := e.ability.Estimate(responses, lookup, opts)
	perMain := e.ability.EstimatePerTopic(responses, e.bank.TopicLookup(), lookup, irt.TopicKindMain, 1, opts)
	perSub := e.ability.EstimatePerTopic(responses, e.bank.TopicLookup(), lookup, irt.TopicKindSub, 1, opts)

	result := irt.UserAbility{
		Theta:        overall.Theta,
		Confidence:   overall.Confidence,
		N:            overall.N,
		PerMainTopic: perMain,
		PerSubTopic:  perSub,
	}

	if e.cache != nil {
		if err := e.cache.Set(ctx, cacheKey, result, abilityCacheTTL); err != nil {
			e.log.Errorf("failed to cache ability estimate for user %s: %v", userID, err)
		}
	}

	e.recordOutcome("estimateAbility", start, nil)
	return result, nil
}

// PassingProbabilityResult is the passingProbability return shape.
type PassingProbabilityResult struct {
	PassingProbabilityPct float64
	ConfidenceScore       float64
	ExpectedScorePct      float64
	ThresholdPct          float64
	ExamInfo              irt.PassResult

	// PerMainTopicAbility and PerMainTopicAccuracy round out the exam info
	// with per-topic ability estimates and per-topic historical accuracy.
	PerMainTopicAbility  map[string]irt.TopicAbility
	PerMainTopicAccuracy map[string]float64
}

// PassingProbability evaluates a hypothetical exam blueprint against a
// user's estimated ability. A blueprint that does not name exactly one of
// explicit items or topic blueprints is BadRequest; one that materializes to
// no items is NotFound.
func (e *Engine) PassingProbability(userID string, blueprint irt.ExamBlueprint, inlineResponses []irt.Response) (PassingProbabilityResult, error) {
	start := time.Now()
	timer := metrics.NewTimer()
	defer func() {
		e.metrics.PassEvaluationDuration.Observe(timer.Duration().Seconds())
	}()

	if blueprint.IsExplicit() == blueprint.IsTopicForm() {
		err := enginerr.BadRequestf("exam blueprint must name exactly one of explicit items or topic blueprints")
		e.recordOutcome("passingProbability", start, err)
		return PassingProbabilityResult{}, err
	}

	responses, err := e.resolveResponses(userID, inlineResponses)
	if err != nil {
		e.recordOutcome("passingProbability", start, err)
		return PassingProbabilityResult{}, err
	}

	// Ability estimation defaults discrimination to 1.0; materialized exam
	// items are scored below with their own real discrimination via
	// irt.ScoredItem.
	lookup := irt.NewMapLookup(e.bank.Difficulties)
	opts := irt.EstimateOptions{UseMAP: true, AllResponsesForExpectedTime: e.bank.AllResponses()}
	ability := e.ability.Estimate(responses, lookup, opts)

	materialized := irt.Materialize(blueprint, e.bank.Items, e.bank.Difficulties, nil)
	if len(materialized) == 0 {
		err := enginerr.NotFoundf("exam blueprint resolved to no items")
		e.recordOutcome("passingProbability", start, err)
		return PassingProbabilityResult{}, err
	}

	// When the bank's topic map resolves a main topic for an exam item,
	// score it against that topic's dedicated ability estimate instead of
	// the overall one, falling back to overall when no dedicated estimate
	// exists for the topic.
	perMain := e.ability.EstimatePerTopic(responses, e.bank.TopicLookup(), lookup, irt.TopicKindMain, 1, opts)

	items := make([]irt.ScoredItem, len(materialized))
	for i, m := range materialized {
		theta := ability.Theta
		if m.MainTopicID != "" {
			if topicAbility, ok := perMain[m.MainTopicID]; ok {
				theta = topicAbility.Theta
			}
		}
		items[i] = irt.ScoredItem{Theta: theta, Difficulty: m.Difficulty, Discrimination: m.Discrimination}
	}

	result := e.passEval.Evaluate(items, blueprint.PassingThreshold, ability.Confidence, ability.Theta)
	e.metrics.ExamsScored.Inc()
	e.recordOutcome("passingProbability", start, nil)

	return PassingProbabilityResult{
		PassingProbabilityPct: result.PassingProbabilityPct,
		ConfidenceScore:       result.ConfidenceScore,
		ExpectedScorePct:      result.ExpectedScorePct,
		ThresholdPct:          blueprint.PassingThreshold * 100.0,
		ExamInfo:              result,
		PerMainTopicAbility:   perMain,
		PerMainTopicAccuracy:  accuracyByMainTopic(responses, e.bank.TopicLookup()),
	}, nil
}

// accuracyByMainTopic computes, for every main topic referenced by the
// user's response history, the fraction of those responses that were
// correct, reported alongside the exam info.
func accuracyByMainTopic(responses []irt.Response, topics irt.TopicLookup) map[string]float64 {
	correct := make(map[string]int)
	total := make(map[string]int)
	for _, r := range responses {
		main, _ := topics.Topics(r.ItemID)
		if main == "" {
			continue
		}
		total[main]++
		if r.Correct {
			correct[main]++
		}
	}
	out := make(map[string]float64, len(total))
	for topic, n := range total {
		out[topic] = float64(correct[topic]) / float64(n)
	}
	return out
}
