package irt

// Preview drives one step of an adaptive session: given the observed
// session, it resolves the active topic, selects the current item, and
// previews the two branches ("if correct" / "if incorrect") one level
// ahead.
type Preview struct {
	selector  Selector
	ability   AbilityEstimator
	topics    TopicLookup
	quotas    []TopicQuota
}

// NewPreview builds a preview engine bound to a selector, ability
// estimator, topic lookup, and (possibly empty) quota sequence.
func NewPreview(selector Selector, ability AbilityEstimator, topics TopicLookup, quotas []TopicQuota) Preview {
	return Preview{selector: selector, ability: ability, topics: topics, quotas: quotas}
}

// Branch is one hypothetical continuation (current item answered correctly
// or incorrectly).
type Branch struct {
	NextItem *Item // nil when the branch has no valid candidate
	TopicID  string
}

// PreviewResult is the full output of one preview computation.
type PreviewResult struct {
	ActiveTopicID string
	CurrentItem   Item
	IfCorrect     Branch
	IfIncorrect   Branch

	// Overall ability/confidence on the observed (not hypothetical)
	// session.
	OverallTheta      float64
	OverallConfidence float64
}

// Compute runs the full preview procedure.
func (p Preview) Compute(
	session SessionProgress,
	bank []Item,
	difficulties map[string]float64,
	coverageTopics []string,
	allResponsesForExpectedTime []Response,
) (PreviewResult, error) {
	responses := sessionResponses(session)

	overall := p.ability.Estimate(responses, NewMapLookup(difficulties), EstimateOptions{
		AllResponsesForExpectedTime: allResponsesForExpectedTime,
	})

	activeTopic, hasQuotas := p.activeTopic(session)
	if hasQuotas && activeTopic == "" {
		return PreviewResult{}, ErrNoCandidates
	}

	candidates := p.candidatesForTopic(bank, activeTopic, hasQuotas, coverageTopics)
	candidates = ExcludeAnswered(candidates, session.AnsweredItemIDs())

	topicResponses := p.topicResponses(activeTopic, session)
	topicAbility := p.ability.Estimate(topicResponses, NewMapLookup(difficulties), EstimateOptions{
		AllResponsesForExpectedTime: allResponsesForExpectedTime,
	})

	current, err := p.selector.SelectNext(candidates, topicAbility.Theta)
	if err != nil {
		return PreviewResult{}, err
	}
	currentDifficulty := difficultyOf(current, difficulties)

	sessionCorrect := session.WithAnswer(current.ID, true)
	sessionIncorrect := session.WithAnswer(current.ID, false)

	ifCorrect := p.branch(sessionCorrect, bank, difficulties, coverageTopics, allResponsesForExpectedTime,
		current, currentDifficulty, activeTopic, hasQuotas, +1)
	ifIncorrect := p.branch(sessionIncorrect, bank, difficulties, coverageTopics, allResponsesForExpectedTime,
		current, currentDifficulty, activeTopic, hasQuotas, -1)

	return PreviewResult{
		ActiveTopicID:     activeTopic,
		CurrentItem:       current,
		IfCorrect:         ifCorrect,
		IfIncorrect:       ifIncorrect,
		OverallTheta:      overall.Theta,
		OverallConfidence: overall.Confidence,
	}, nil
}

// branch computes one hypothetical continuation of the session.
func (p Preview) branch(
	hypothetical SessionProgress,
	bank []Item,
	difficulties map[string]float64,
	coverageTopics []string,
	allResponsesForExpectedTime []Response,
	current Item,
	currentDifficulty float64,
	currentTopic string,
	hadQuotas bool,
	direction int,
) Branch {
	nextTopic, hasQuotas := p.activeTopic(hypothetical)
	if hadQuotas && !hasQuotas {
		// All quotas met: no further candidates for this branch.
		return Branch{}
	}

	candidates := p.candidatesForTopic(bank, nextTopic, hasQuotas, coverageTopics)
	candidates = ExcludeAnswered(candidates, hypothetical.AnsweredItemIDs())
	if len(candidates) == 0 {
		return Branch{}
	}

	isNewTopic := hadQuotas && hasQuotas && nextTopic != currentTopic

	effective := candidates
	if !isNewTopic {
		filtered := FilterByDirection(candidates, currentDifficulty, direction)
		if len(filtered) > 0 {
			effective = filtered
		}
	}

	topicResponses := p.topicResponses(nextTopic, hypothetical)
	ability := p.ability.Estimate(topicResponses, NewMapLookup(difficulties), EstimateOptions{
		AllResponsesForExpectedTime: allResponsesForExpectedTime,
	})

	next, err := p.selector.SelectNext(effective, ability.Theta)
	if err != nil {
		return Branch{TopicID: nextTopic}
	}
	nextCopy := next
	return Branch{NextItem: &nextCopy, TopicID: nextTopic}
}

// activeTopic resolves the quota policy for a session; hasQuotas is false
// when no quota map was supplied at all (unrestricted selection).
func (p Preview) activeTopic(session SessionProgress) (topicID string, hasQuotas bool) {
	if len(p.quotas) == 0 {
		return "", false
	}
	counts := AnsweredCountsByTopic(session, p.topics, p.quotas)
	topic, ok := ActiveTopic(p.quotas, counts)
	if !ok {
		return "", true
	}
	return topic, true
}

func (p Preview) candidatesForTopic(bank []Item, topicID string, hasQuotas bool, coverageTopics []string) []Item {
	if hasQuotas {
		return Resolve(bank, Pool{Kind: PoolActiveTopicOnly, TopicID: topicID})
	}
	return Resolve(bank, Pool{Kind: PoolCoverageSet, Topics: coverageTopics})
}

// topicResponses filters session responses to a topic (main or sub id
// match), falling back to the full session when the topic is empty or
// matches nothing.
func (p Preview) topicResponses(topicID string, session SessionProgress) []Response {
	all := sessionResponses(session)
	if topicID == "" {
		return all
	}

	var matched []Response
	for i, ans := range session.Answers {
		main, sub := p.topics.Topics(ans.ItemID)
		if topicID == main || topicID == sub {
			matched = append(matched, all[i])
		}
	}
	if len(matched) == 0 {
		return all
	}
	return matched
}

// sessionResponses converts a session's answer history into Response
// values with an unknown (default) response time, since the session
// protocol tracks only correctness.
func sessionResponses(session SessionProgress) []Response {
	out := make([]Response, len(session.Answers))
	for i, a := range session.Answers {
		out[i] = Response{ItemID: a.ItemID, Correct: a.Correct, ResponseTimeS: 0, ChoiceSelected: -1}
	}
	return out
}
