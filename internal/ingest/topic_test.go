package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTopicCSV_CommaDelimited(t *testing.T) {
	csvData := "question_id,main_topic_id,main_topic_name,sub_topic_id,sub_topic_name\n" +
		"q1,mt1,Algebra,st1,Linear Equations\n" +
		"q2,mt2,Geometry,st2,Angles\n"

	rows, err := ParseTopicCSV(strings.NewReader(csvData))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, TopicRow{QuestionID: "q1", MainTopicID: "mt1", MainTopicName: "Algebra", SubTopicID: "st1", SubTopicName: "Linear Equations"}, rows[0])
}

// The supplied file may arrive with every field packed pipe-delimited into
// a single CSV column; it must parse to the same rows as the ordinary
// five-column form.
func TestParseTopicCSV_PipeDelimitedSingleColumn(t *testing.T) {
	piped := "question_id|main_topic_id|main_topic_name|sub_topic_id|sub_topic_name\n" +
		"q1|mt1|Algebra|st1|Linear Equations\n" +
		"q2|mt2|Geometry|st2|Angles\n"
	plain := "question_id,main_topic_id,main_topic_name,sub_topic_id,sub_topic_name\n" +
		"q1,mt1,Algebra,st1,Linear Equations\n" +
		"q2,mt2,Geometry,st2,Angles\n"

	pipedRows, err := ParseTopicCSV(strings.NewReader(piped))
	require.NoError(t, err)
	plainRows, err := ParseTopicCSV(strings.NewReader(plain))
	require.NoError(t, err)

	assert.Equal(t, plainRows, pipedRows)
}

func TestParseTopicCSV_EmptyInput(t *testing.T) {
	rows, err := ParseTopicCSV(strings.NewReader(""))
	assert.NoError(t, err)
	assert.Empty(t, rows)
}

func TestTopicMaps_BuildsQuestionAndMetaMaps(t *testing.T) {
	rows := []TopicRow{
		{QuestionID: "q1", MainTopicID: "mt1", MainTopicName: "Algebra", SubTopicID: "st1", SubTopicName: "Linear"},
		{QuestionID: "q2", MainTopicID: "mt1", MainTopicName: "Algebra", SubTopicID: "st2", SubTopicName: "Quadratic"},
	}

	questionTopic, topicMeta := TopicMaps(rows)
	assert.Equal(t, "mt1", questionTopic["q1"].MainTopicID)
	assert.Equal(t, "Algebra", topicMeta["mt1"])
	assert.Equal(t, "Quadratic", topicMeta["st2"])
}
