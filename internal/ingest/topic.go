package ingest

import (
	"encoding/csv"
	"io"
	"strings"
)

// TopicRow is one parsed row of the topic catalog.
type TopicRow struct {
	QuestionID    string
	MainTopicID   string
	MainTopicName string
	SubTopicID    string
	SubTopicName  string
}

// expectedColumns is the canonical topic-catalog header, used both to
// detect the pipe-delimited-single-column case and to map a row's fields by
// name once split.
var expectedColumns = []string{"question_id", "main_topic_id", "main_topic_name", "sub_topic_id", "sub_topic_name"}

// ParseTopicCSV reads the topic catalog. The source file is
// ordinarily comma-delimited, but may instead arrive with every field
// packed pipe-delimited into a single CSV column (the source exporter's
// quirk); this is detected by checking whether the header's first field
// contains '|', and handled by re-splitting the header and every data row
// on '|' before treating the result as ordinary columns.
func ParseTopicCSV(r io.Reader) ([]TopicRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, err
	}

	pipeDelimited := len(header) > 0 && strings.Contains(header[0], "|")
	if pipeDelimited {
		header = strings.Split(header[0], "|")
	}

	colIndex := make(map[string]int, len(header))
	for i, name := range header {
		colIndex[strings.TrimSpace(name)] = i
	}

	var rows []TopicRow
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		if pipeDelimited && len(record) == 1 {
			record = strings.Split(record[0], "|")
		}

		rows = append(rows, TopicRow{
			QuestionID:    field(record, colIndex, "question_id"),
			MainTopicID:   field(record, colIndex, "main_topic_id"),
			MainTopicName: field(record, colIndex, "main_topic_name"),
			SubTopicID:    field(record, colIndex, "sub_topic_id"),
			SubTopicName:  field(record, colIndex, "sub_topic_name"),
		})
	}
	return rows, nil
}

func field(record []string, colIndex map[string]int, name string) string {
	idx, ok := colIndex[name]
	if !ok || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

// TopicMaps builds the question->topic map and the topic-meta map (topic id
// -> display name) the core's TopicLookup and preview/result displays need.
func TopicMaps(rows []TopicRow) (questionTopic map[string]TopicRow, topicMeta map[string]string) {
	questionTopic = make(map[string]TopicRow, len(rows))
	topicMeta = make(map[string]string)
	for _, row := range rows {
		if row.QuestionID != "" {
			questionTopic[row.QuestionID] = row
		}
		if row.MainTopicID != "" {
			topicMeta[row.MainTopicID] = row.MainTopicName
		}
		if row.SubTopicID != "" {
			topicMeta[row.SubTopicID] = row.SubTopicName
		}
	}
	return
}
