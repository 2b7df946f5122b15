package chatbot

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AndreyKorzunin/projectassist/internal/backend"
	"github.com/AndreyKorzunin/projectassist/internal/session"
)

func runREPL(t *testing.T, cb *ChatBot, lines ...string) string {
	t.Helper()
	var out bytes.Buffer
	in := strings.NewReader(strings.Join(lines, "\n") + "\n")
	require.NoError(t, cb.Run(context.Background(), in, &out))
	return out.String()
}

func TestRun_UploadAndAsk(t *testing.T) {
	fb := &fakeBackend{health: &backend.HealthResponse{Status: "ok", Version: "2.0.0"}}
	cb, _ := newTestBot(t, fb)

	doc := filepath.Join(t.TempDir(), "report.docx")
	require.NoError(t, os.WriteFile(doc, []byte("data"), 0644))

	out := runREPL(t, cb,
		doc,
		"What is it about?",
		"/stats",
		"/quit",
		"never read",
	)

	assert.Contains(t, out, "Document Assistant")
	assert.Contains(t, out, "service online, v2.0.0")
	assert.Contains(t, out, "report.docx")
	assert.Contains(t, out, "The document is a report.")
	assert.Contains(t, out, "Documents uploaded: 1")
	assert.Contains(t, out, "Queries sent: 1")
	assert.Contains(t, out, "Goodbye!")
	assert.Equal(t, 1, fb.queryCount())
}

func TestRun_OfflineService(t *testing.T) {
	fb := &fakeBackend{healthErr: backend.ErrTransport}
	cb, _ := newTestBot(t, fb)

	out := runREPL(t, cb, "/quit")
	assert.Contains(t, out, "Service unreachable")
}

func TestRun_UploadErrorIsReported(t *testing.T) {
	fb := &fakeBackend{health: &backend.HealthResponse{Status: "ok"}}
	cb, _ := newTestBot(t, fb)

	out := runREPL(t, cb, "/upload notes.txt")
	assert.Contains(t, out, "Error:")
	assert.Equal(t, session.ViewUpload, cb.View())
}

func TestRun_Commands(t *testing.T) {
	fb := &fakeBackend{health: &backend.HealthResponse{Status: "ok"}}
	cb, _ := newTestBot(t, fb)
	upload(t, cb)

	export := filepath.Join(t.TempDir(), "chat.html")
	out := runREPL(t, cb,
		"/task grammar_check",
		"/task",
		"/quick",
		"/quick 3",
		"/quick 9",
		"hi",
		"/export "+export,
		"/history",
		"/frobnicate",
		"/back",
		"/help",
	)

	assert.Contains(t, out, "Task type set to: Grammar check")
	assert.Contains(t, out, "grammar_check        Grammar check (current)")
	assert.Contains(t, out, "1. Summary")
	assert.Contains(t, out, "no quick reply 9")
	assert.Contains(t, out, "query must be at least 3 characters")
	assert.Contains(t, out, "Transcript exported to "+export)
	assert.Contains(t, out, "history is not enabled")
	assert.Contains(t, out, "unknown command: /frobnicate")
	assert.Contains(t, out, "Session closed.")
	assert.Contains(t, out, "/export [path]")

	require.Len(t, fb.queries, 1)
	assert.Equal(t, "find_repeats", fb.queries[0].TaskType)
	assert.FileExists(t, export)
	assert.Equal(t, session.ViewUpload, cb.View())
}
