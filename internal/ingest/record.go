// Package ingest adapts the raw response-log and topic-catalog
// collaborators into the typed irt.Response and topic records the
// numerical core consumes.
package ingest

import (
	"encoding/json"
	"time"

	"irt-diagnostic-engine/internal/irt"
)

// PlayedTime is one entry of a response-log record's playedTimes array.
type PlayedTime struct {
	StartTime int64 `json:"startTime"`
	EndTime   int64 `json:"endTime"`
}

// RawLogRecord is the wire shape of a single response-log row.
// PlayedTimes is accepted either already decoded (a JSON array column) or as
// a JSON-encoded string column, which is how the source system stores it.
// ChoicesSelected and Histories are decoded only as JSON integer arrays.
type RawLogRecord struct {
	UserID          string          `json:"userId"`
	QuestionID      string          `json:"questionId"`
	ChoicesSelected []int           `json:"choicesSelected"`
	PlayedTimes     json.RawMessage `json:"playedTimes"`
	Histories       []int           `json:"histories"`
	LastUpdate      int64           `json:"lastUpdate"`
}

// LogEntry is one parsed response-log record: the user/item it belongs to,
// plus the irt.Response derived from it.
type LogEntry struct {
	UserID   string
	ItemID   string
	Response irt.Response
}

// defaultResponseTimeS mirrors the original loaders' fallback when
// playedTimes is empty or unparsable.
const defaultResponseTimeS = 30.0

// ParseLogRecord converts one raw response-log row into a LogEntry:
// response time from the last
// playedTimes entry's (endTime-startTime) in milliseconds, correctness from
// the last histories entry (absent = incorrect), and choice selection
// defaulting to -1 when missing.
func ParseLogRecord(raw RawLogRecord) LogEntry {
	responseTimeS := defaultResponseTimeS
	var times []PlayedTime
	if len(raw.PlayedTimes) > 0 {
		// playedTimes may arrive as a JSON array or as a JSON-encoded
		// string column holding that array; try both.
		if err := json.Unmarshal(raw.PlayedTimes, &times); err != nil {
			var asString string
			if err2 := json.Unmarshal(raw.PlayedTimes, &asString); err2 == nil && asString != "" {
				_ = json.Unmarshal([]byte(asString), &times)
			}
		}
	}
	if len(times) > 0 {
		last := times[len(times)-1]
		responseTimeS = float64(last.EndTime-last.StartTime) / 1000.0
	}

	correct := false
	if len(raw.Histories) > 0 {
		correct = raw.Histories[len(raw.Histories)-1] == 1
	}

	choice := -1
	if len(raw.ChoicesSelected) > 0 {
		choice = raw.ChoicesSelected[0]
	}

	var ts time.Time
	if raw.LastUpdate > 0 {
		ts = time.UnixMilli(raw.LastUpdate)
	}

	return LogEntry{
		UserID: raw.UserID,
		ItemID: raw.QuestionID,
		Response: irt.Response{
			ItemID:         raw.QuestionID,
			Correct:        correct,
			ResponseTimeS:  responseTimeS,
			Timestamp:      ts,
			ChoiceSelected: choice,
		},
	}
}

// GroupByItem buckets a flat list of parsed log entries by item id, the
// shape DIFFICULTY-CALIBRATOR expects.
func GroupByItem(entries []LogEntry) map[string][]irt.Response {
	out := make(map[string][]irt.Response)
	for _, e := range entries {
		out[e.ItemID] = append(out[e.ItemID], e.Response)
	}
	return out
}

// GroupByUser buckets parsed log entries by user id, for ability estimation
// over a specific user's history.
func GroupByUser(entries []LogEntry) map[string][]irt.Response {
	out := make(map[string][]irt.Response)
	for _, e := range entries {
		out[e.UserID] = append(out[e.UserID], e.Response)
	}
	return out
}
