package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTaskType(t *testing.T) {
	for _, tt := range TaskTypes {
		got, err := ParseTaskType(string(tt))
		require.NoError(t, err)
		assert.Equal(t, tt, got)
	}

	got, err := ParseTaskType("  Grammar_Check ")
	require.NoError(t, err)
	assert.Equal(t, TaskGrammarCheck, got)

	_, err = ParseTaskType("summarize")
	assert.Error(t, err)
}

func TestParseDocType(t *testing.T) {
	d, err := ParseDocType("excel")
	require.NoError(t, err)
	assert.Equal(t, DocExcel, d)
	assert.Equal(t, "Excel spreadsheet", d.Label())

	_, err = ParseDocType("pptx")
	assert.Error(t, err)
}

func TestViewState_String(t *testing.T) {
	assert.Equal(t, "upload", ViewUpload.String())
	assert.Equal(t, "document_chat", ViewDocumentChat.String())
}

func TestTranscript_AppendAndRemoveLoading(t *testing.T) {
	tr := NewTranscript()
	user := tr.Append(KindUser, "hello")
	loading := tr.Append(KindLoading, "Analyzing...")

	require.Equal(t, 2, tr.Len())
	assert.NotEqual(t, user.ID, loading.ID)

	assert.False(t, tr.RemoveLoading(user.ID), "only loading placeholders can be removed")
	assert.True(t, tr.RemoveLoading(loading.ID))
	assert.False(t, tr.RemoveLoading(loading.ID))

	msgs := tr.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, KindUser, msgs[0].Kind)
	assert.Equal(t, "hello", msgs[0].Text)
}

func TestTranscript_Since(t *testing.T) {
	tr := NewTranscript()
	tr.Append(KindInfo, "a")
	tr.Append(KindUser, "b")
	tr.Append(KindBot, "c")

	assert.Len(t, tr.Since(0), 3)
	assert.Len(t, tr.Since(-1), 3)
	got := tr.Since(2)
	require.Len(t, got, 1)
	assert.Equal(t, "c", got[0].Text)
	assert.Nil(t, tr.Since(3))
}

func TestTranscript_MessagesIsCopy(t *testing.T) {
	tr := NewTranscript()
	tr.Append(KindUser, "original")

	msgs := tr.Messages()
	msgs[0].Text = "mutated"

	assert.Equal(t, "original", tr.Messages()[0].Text)

	tr.Reset()
	assert.Equal(t, 0, tr.Len())
}
