package ingest

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLogRecord_ResponseTimeFromLastPlayedEntry(t *testing.T) {
	raw := RawLogRecord{
		UserID:          "u1",
		QuestionID:      "q1",
		ChoicesSelected: []int{2, 0},
		PlayedTimes:     json.RawMessage(`[{"startTime":1000,"endTime":9000},{"startTime":20000,"endTime":32500}]`),
		Histories:       []int{0, 1},
		LastUpdate:      1700000000000,
	}

	entry := ParseLogRecord(raw)
	assert.Equal(t, "u1", entry.UserID)
	assert.Equal(t, "q1", entry.ItemID)
	assert.Equal(t, 12.5, entry.Response.ResponseTimeS)
	assert.True(t, entry.Response.Correct)
	assert.Equal(t, 2, entry.Response.ChoiceSelected)
	assert.False(t, entry.Response.Timestamp.IsZero())
}

func TestParseLogRecord_PlayedTimesAsJSONEncodedStringColumn(t *testing.T) {
	raw := RawLogRecord{
		UserID:      "u1",
		QuestionID:  "q1",
		PlayedTimes: json.RawMessage(`"[{\"startTime\":0,\"endTime\":45000}]"`),
		Histories:   []int{1},
	}

	entry := ParseLogRecord(raw)
	assert.Equal(t, 45.0, entry.Response.ResponseTimeS)
}

func TestParseLogRecord_DefaultsWhenFieldsAbsent(t *testing.T) {
	entry := ParseLogRecord(RawLogRecord{UserID: "u1", QuestionID: "q1"})

	assert.Equal(t, 30.0, entry.Response.ResponseTimeS)
	assert.False(t, entry.Response.Correct, "absent histories means incorrect")
	assert.Equal(t, -1, entry.Response.ChoiceSelected)
	assert.True(t, entry.Response.Timestamp.IsZero())
}

func TestParseLogRecord_LastHistoryEntryDecidesCorrectness(t *testing.T) {
	wrong := ParseLogRecord(RawLogRecord{QuestionID: "q1", Histories: []int{1, 1, 0}})
	assert.False(t, wrong.Response.Correct)

	right := ParseLogRecord(RawLogRecord{QuestionID: "q1", Histories: []int{0, 0, 1}})
	assert.True(t, right.Response.Correct)
}

func TestGroupByItemAndUser(t *testing.T) {
	entries := []LogEntry{
		ParseLogRecord(RawLogRecord{UserID: "u1", QuestionID: "q1", Histories: []int{1}}),
		ParseLogRecord(RawLogRecord{UserID: "u1", QuestionID: "q2", Histories: []int{0}}),
		ParseLogRecord(RawLogRecord{UserID: "u2", QuestionID: "q1", Histories: []int{1}}),
	}

	byItem := GroupByItem(entries)
	assert.Len(t, byItem["q1"], 2)
	assert.Len(t, byItem["q2"], 1)

	byUser := GroupByUser(entries)
	assert.Len(t, byUser["u1"], 2)
	assert.Len(t, byUser["u2"], 1)
}
