package ingest

import (
	"context"
	"encoding/json"
	"time"

	"irt-diagnostic-engine/internal/database"

	"github.com/lib/pq"
)

// RawResponseLogRow is the GORM model backing the response-log
// collaborator. choicesSelected and histories arrive as native Postgres
// integer arrays, playedTimes as a jsonb column, so ParseLogRecord can be
// reused verbatim against a row loaded from Postgres or one decoded
// straight off the wire.
type RawResponseLogRow struct {
	ID              uint            `gorm:"primaryKey"`
	UserID          string          `gorm:"index;column:user_id"`
	QuestionID      string          `gorm:"index;column:question_id"`
	ChoicesSelected pq.Int64Array   `gorm:"type:integer[];column:choices_selected"`
	PlayedTimes     json.RawMessage `gorm:"type:jsonb;column:played_times"`
	Histories       pq.Int64Array   `gorm:"type:integer[];column:histories"`
	LastUpdate      int64           `gorm:"column:last_update"`
}

func (RawResponseLogRow) TableName() string { return "response_log" }

// TopicCatalogRow is the GORM model backing the topic-catalog collaborator.
type TopicCatalogRow struct {
	ID            uint   `gorm:"primaryKey"`
	QuestionID    string `gorm:"uniqueIndex;column:question_id"`
	MainTopicID   string `gorm:"index;column:main_topic_id"`
	MainTopicName string `gorm:"column:main_topic_name"`
	SubTopicID    string `gorm:"index;column:sub_topic_id"`
	SubTopicName  string `gorm:"column:sub_topic_name"`
}

func (TopicCatalogRow) TableName() string { return "topic_catalog" }

// Store is the Postgres-backed implementation of the response-log and
// topic-catalog collaborators.
type Store struct {
	db *database.DB
}

// NewStore builds a Store over an established database connection.
func NewStore(db *database.DB) *Store {
	return &Store{db: db}
}

// AllResponseLog loads every response-log row, the shape the calibrator and
// batch ability estimation need at startup/refresh time.
func (s *Store) AllResponseLog(ctx context.Context) ([]LogEntry, error) {
	start := time.Now()
	var rows []RawResponseLogRow
	err := s.db.WithContext(ctx).Find(&rows).Error
	s.db.RecordOperation("ingest.all_response_log", time.Since(start), err)
	if err != nil {
		return nil, err
	}

	entries := make([]LogEntry, len(rows))
	for i, r := range rows {
		entries[i] = rowToEntry(r)
	}
	return entries, nil
}

// ResponseLogForUser loads one user's response history.
func (s *Store) ResponseLogForUser(ctx context.Context, userID string) ([]LogEntry, error) {
	start := time.Now()
	var rows []RawResponseLogRow
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Find(&rows).Error
	s.db.RecordOperation("ingest.response_log_for_user", time.Since(start), err)
	if err != nil {
		return nil, err
	}

	entries := make([]LogEntry, len(rows))
	for i, r := range rows {
		entries[i] = rowToEntry(r)
	}
	return entries, nil
}

// TopicCatalog loads the full topic catalog.
func (s *Store) TopicCatalog(ctx context.Context) ([]TopicRow, error) {
	start := time.Now()
	var rows []TopicCatalogRow
	err := s.db.WithContext(ctx).Find(&rows).Error
	s.db.RecordOperation("ingest.topic_catalog", time.Since(start), err)
	if err != nil {
		return nil, err
	}

	out := make([]TopicRow, len(rows))
	for i, r := range rows {
		out[i] = TopicRow{
			QuestionID:    r.QuestionID,
			MainTopicID:   r.MainTopicID,
			MainTopicName: r.MainTopicName,
			SubTopicID:    r.SubTopicID,
			SubTopicName:  r.SubTopicName,
		}
	}
	return out, nil
}

func rowToEntry(r RawResponseLogRow) LogEntry {
	choices := make([]int, len(r.ChoicesSelected))
	for i, v := range r.ChoicesSelected {
		choices[i] = int(v)
	}
	histories := make([]int, len(r.Histories))
	for i, v := range r.Histories {
		histories[i] = int(v)
	}

	return ParseLogRecord(RawLogRecord{
		UserID:          r.UserID,
		QuestionID:      r.QuestionID,
		ChoicesSelected: choices,
		PlayedTimes:     r.PlayedTimes,
		Histories:       histories,
		LastUpdate:      r.LastUpdate,
	})
}
