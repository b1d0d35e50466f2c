package engine

import (
	"time"

	"irt-diagnostic-engine/internal/enginerr"
	"irt-diagnostic-engine/internal/irt"
)

// SessionPreview is the return shape for initSession, nextQuestion
// and submitAnswer: the current item to show, the active topic, and the two
// hypothetical next items one level ahead, with topic display names
// resolved from the catalog.
type SessionPreview struct {
	ActiveTopicID   string
	ActiveTopicName string
	CurrentItem     irt.Item

	IfCorrectNextItem   *irt.Item
	IfCorrectTopicID    string
	IfIncorrectNextItem *irt.Item
	IfIncorrectTopicID  string

	OverallTheta      float64
	OverallConfidence float64
}

func (e *Engine) preview(session irt.SessionProgress, coverageTopics []string, quotas []irt.TopicQuota) (SessionPreview, error) {
	start := time.Now()
	p := irt.NewPreview(e.selector, e.ability, e.bank.TopicLookup(), quotas)

	result, err := p.Compute(session, e.bank.Items, e.bank.Difficulties, coverageTopics, e.bank.AllResponses())
	if err != nil {
		var wrapped error
		if err == irt.ErrNoCandidates {
			wrapped = enginerr.BadRequestf("no candidate items available for the active topic")
		} else {
			wrapped = enginerr.Internalf(err, "session preview computation failed")
		}
		e.recordOutcome("sessionPreview", start, wrapped)
		return SessionPreview{}, wrapped
	}

	e.metrics.ItemsRecommended.Inc()
	e.recordOutcome("sessionPreview", start, nil)

	return SessionPreview{
		ActiveTopicID:       result.ActiveTopicID,
		ActiveTopicName:     e.bank.TopicName(result.ActiveTopicID),
		CurrentItem:         result.CurrentItem,
		IfCorrectNextItem:   result.IfCorrect.NextItem,
		IfCorrectTopicID:    result.IfCorrect.TopicID,
		IfIncorrectNextItem: result.IfIncorrect.NextItem,
		IfIncorrectTopicID:  result.IfIncorrect.TopicID,
		OverallTheta:        result.OverallTheta,
		OverallConfidence:   result.OverallConfidence,
	}, nil
}

// InitSession starts a fresh session for userID and previews its first
// item.
func (e *Engine) InitSession(userID string, coverageTopics []string, quotas []irt.TopicQuota) (irt.SessionProgress, SessionPreview, error) {
	session := irt.SessionProgress{UserID: userID}
	preview, err := e.preview(session, coverageTopics, quotas)
	if err != nil {
		return session, SessionPreview{}, err
	}
	e.metrics.SessionsStarted.Inc()
	return session, preview, nil
}

// NextQuestion recomputes the preview for an in-flight session without
// mutating it.
func (e *Engine) NextQuestion(session irt.SessionProgress, coverageTopics []string, quotas []irt.TopicQuota) (SessionPreview, error) {
	return e.preview(session, coverageTopics, quotas)
}

// SubmitAnswer appends the latest answer to the session and previews the
// resulting next item. The core never persists
// session state; the caller is responsible for carrying the returned
// session forward.
func (e *Engine) SubmitAnswer(session irt.SessionProgress, itemID string, correct bool, coverageTopics []string, quotas []irt.TopicQuota) (irt.SessionProgress, SessionPreview, error) {
	updated := session.WithAnswer(itemID, correct)
	preview, err := e.preview(updated, coverageTopics, quotas)
	return updated, preview, err
}

// DiagnosticResult is the diagnosticResult return shape: the final
// overall and per-topic ability estimate over everything the session has
// observed so far.
type DiagnosticResult struct {
	UserID    string
	AnsweredN int
	Ability   irt.UserAbility
}

// DiagnosticResult summarizes a session's observed answers into a final
// ability estimate. An empty session is BadRequest.
func (e *Engine) DiagnosticResult(session irt.SessionProgress) (DiagnosticResult, error) {
	start := time.Now()
	if len(session.Answers) == 0 {
		err := enginerr.BadRequestf("cannot compute a diagnostic result for an empty session")
		e.recordOutcome("diagnosticResult", start, err)
		return DiagnosticResult{}, err
	}

	responses := make([]irt.Response, len(session.Answers))
	for i, a := range session.Answers {
		responses[i] = irt.Response{ItemID: a.ItemID, Correct: a.Correct, ChoiceSelected: -1}
	}

	// Ability estimation always defaults discrimination to 1.0.
	lookup := irt.NewMapLookup(e.bank.Difficulties)
	opts := irt.EstimateOptions{UseMAP: true, AllResponsesForExpectedTime: e.bank.AllResponses()}

	overall := e.ability.Estimate(responses, lookup, opts)
	perMain := e.ability.EstimatePerTopic(responses, e.bank.TopicLookup(), lookup, irt.TopicKindMain, 1, opts)
	perSub := e.ability.EstimatePerTopic(responses, e.bank.TopicLookup(), lookup, irt.TopicKindSub, 1, opts)

	e.recordOutcome("diagnosticResult", start, nil)
	return DiagnosticResult{
		UserID:    session.UserID,
		AnsweredN: len(session.Answers),
		Ability: irt.UserAbility{
			Theta:        overall.Theta,
			Confidence:   overall.Confidence,
			N:            overall.N,
			PerMainTopic: perMain,
			PerSubTopic:  perSub,
		},
	}, nil
}
