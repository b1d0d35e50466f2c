// Package bank builds the immutable bank context: the item bank, the
// calibrated difficulty map, and the question/topic maps, assembled once
// at startup from the ingest collaborators and published read-only to
// every handler thereafter. No re-initialization path is exposed; a new
// Context is the only way to pick up new data.
package bank

import (
	"time"

	"irt-diagnostic-engine/internal/ingest"
	"irt-diagnostic-engine/internal/irt"
	"irt-diagnostic-engine/internal/metrics"

	"github.com/google/uuid"
)

// Context is the read-only, concurrency-safe snapshot shared by every
// engine operation. Every field is populated once in New and never mutated
// afterward, so it needs no locking to be read from multiple goroutines.
type Context struct {
	// Version identifies this particular bank build, so a cache entry keyed
	// off it is automatically orphaned by the next restart's recalibration
	// instead of serving a stale difficulty map or ability estimate forever.
	Version string

	Items        []irt.Item
	ItemByID     map[string]irt.Item
	Difficulties map[string]float64

	QuestionTopic map[string]ingest.TopicRow
	TopicMeta     map[string]string

	// ResponsesByUser is the aggregated response log, partitioned by user,
	// used when a caller doesn't supply inline responses.
	ResponsesByUser map[string][]irt.Response
}

// topicLookup adapts a Context's question-topic map to irt.TopicLookup.
type topicLookup struct {
	questionTopic map[string]ingest.TopicRow
}

func (t topicLookup) Topics(itemID string) (mainTopicID, subTopicID string) {
	row, ok := t.questionTopic[itemID]
	if !ok {
		return "", ""
	}
	return row.MainTopicID, row.SubTopicID
}

// TopicLookup returns an irt.TopicLookup view over the context.
func (c *Context) TopicLookup() irt.TopicLookup {
	return topicLookup{questionTopic: c.QuestionTopic}
}

// AllResponses flattens the aggregated response log across every user, the
// expected-response-time pool used when a caller doesn't supply one of its
// own.
func (c *Context) AllResponses() []irt.Response {
	var out []irt.Response
	for _, responses := range c.ResponsesByUser {
		out = append(out, responses...)
	}
	return out
}

// TopicName resolves a topic id to its display name, falling back to the id
// itself when no catalog entry names it.
func (c *Context) TopicName(topicID string) string {
	if name, ok := c.TopicMeta[topicID]; ok && name != "" {
		return name
	}
	return topicID
}

// New builds an immutable BankContext from parsed log entries and the topic
// catalog: calibrates a difficulty per item, builds the item bank (every
// question id seen in either the log or the catalog, deduplicated), and
// indexes everything for O(1) lookup.
func New(logEntries []ingest.LogEntry, topicRows []ingest.TopicRow, defaultDiscrimination float64, cfg irt.Config, m *metrics.Metrics) *Context {
	questionTopic, topicMeta := ingest.TopicMaps(topicRows)

	responsesByItem := ingest.GroupByItem(logEntries)
	responsesByUser := ingest.GroupByUser(logEntries)

	calibrationStart := time.Now()
	calibrator := irt.NewCalibrator(cfg)
	difficulties := calibrator.CalibrateAll(responsesByItem)
	if m != nil {
		m.CalibrationDuration.Observe(time.Since(calibrationStart).Seconds())
	}

	seen := make(map[string]bool)
	var items []irt.Item

	addItem := func(id string) {
		if id == "" || seen[id] {
			return
		}
		seen[id] = true
		row := questionTopic[id]
		b := difficulties[id]
		items = append(items, irt.Item{
			ID:             id,
			MainTopicID:    row.MainTopicID,
			SubTopicID:     row.SubTopicID,
			Difficulty:     b,
			Discrimination: defaultDiscrimination,
		})
	}

	for id := range responsesByItem {
		addItem(id)
	}
	for id := range questionTopic {
		addItem(id)
	}

	itemByID := make(map[string]irt.Item, len(items))
	for _, it := range items {
		itemByID[it.ID] = it
	}

	return &Context{
		Version:         uuid.NewString(),
		Items:           items,
		ItemByID:        itemByID,
		Difficulties:    difficulties,
		QuestionTopic:   questionTopic,
		TopicMeta:       topicMeta,
		ResponsesByUser: responsesByUser,
	}
}
