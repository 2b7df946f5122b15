package render

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AndreyKorzunin/projectassist/internal/session"
)

func TestFormatText(t *testing.T) {
	got := FormatText("**bold** and *italic*\n- item")
	assert.Equal(t, "<strong>bold</strong> and <em>italic</em><br><ul><li>item</li></ul>", got)
}

func TestFormatText_Cases(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "hello", "hello"},
		{"line breaks", "a\nb\n\nc", "a<br>b<br><br>c"},
		{"grouped list", "- one\n- two\nafter", "<ul><li>one</li><li>two</li></ul>after"},
		{"two lists", "- a\ntext\n- b", "<ul><li>a</li></ul>text<br><ul><li>b</li></ul>"},
		{"markup in items", "- **x**: *y*", "<ul><li><strong>x</strong>: <em>y</em></li></ul>"},
		{"escapes html", "<script>alert(1)</script> & **b**", "&lt;script&gt;alert(1)&lt;/script&gt; &amp; <strong>b</strong>"},
		{"lone asterisks", "3 * 4 * 5", "3 * 4 * 5"},
		{"dash without space", "-5 degrees", "-5 degrees"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatText(tt.in))
		})
	}
}

func TestPlainText(t *testing.T) {
	assert.Equal(t, "Issues found: 3 (note)", PlainText("Issues found: **3** (*note*)"))
}

func TestTerminal_StripsMarkers(t *testing.T) {
	out := Terminal("**Title**\n- item *one*", DefaultStyles())

	assert.NotContains(t, out, "**")
	assert.NotContains(t, out, "- item")
	assert.Contains(t, out, "Title")
	assert.Contains(t, out, "•")
	assert.Contains(t, out, "one")
}

func TestMessage_Label(t *testing.T) {
	s := DefaultStyles()

	single := Message(session.Message{Kind: session.KindUser, Text: "hi"}, s)
	assert.Contains(t, single, "You:")
	assert.Contains(t, single, "hi")
	assert.False(t, strings.Contains(single, "\n"))

	multi := Message(session.Message{Kind: session.KindBot, Text: "line1\nline2"}, s)
	assert.Contains(t, multi, "Bot:")
	assert.Contains(t, multi, "\nline1")
}

func TestExportHTML(t *testing.T) {
	sess := &session.Session{ID: "s1", Filename: "contract.docx", DocType: session.DocWord}
	msgs := []session.Message{
		{ID: "1", Kind: session.KindUser, Text: "check <grammar>", Timestamp: time.Now()},
		{ID: "2", Kind: session.KindLoading, Text: "Analyzing...", Timestamp: time.Now()},
		{ID: "3", Kind: session.KindBot, Text: "**Grammar check**\n- ok", Timestamp: time.Now()},
	}

	var buf bytes.Buffer
	require.NoError(t, ExportHTML(&buf, sess, msgs))
	out := buf.String()

	assert.Contains(t, out, "<title>contract.docx</title>")
	assert.Contains(t, out, "Word document")
	assert.Contains(t, out, `class="message user"`)
	assert.Contains(t, out, "check &lt;grammar&gt;")
	assert.Contains(t, out, "<strong>Grammar check</strong><br><ul><li>ok</li></ul>")
	assert.NotContains(t, out, "Analyzing...")
}

func TestExportHTML_NoSession(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ExportHTML(&buf, nil, nil))
	assert.Contains(t, buf.String(), "Chat transcript")
}
