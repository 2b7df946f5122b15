package chatbot

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/AndreyKorzunin/projectassist/internal/session"
)

// QuickReply is a canned query offered after upload.
type QuickReply struct {
	Label    string
	Query    string
	TaskType session.TaskType
}

var quickReplies = []QuickReply{
	{Label: "Summary", Query: "Give a short summary of the document", TaskType: session.TaskAnswer},
	{Label: "Grammar", Query: "Check the document for grammar and style errors", TaskType: session.TaskGrammarCheck},
	{Label: "Repeats", Query: "Find repeated phrases and overused words", TaskType: session.TaskFindRepeats},
	{Label: "Structure", Query: "Analyze the structure of the document", TaskType: session.TaskStructureAnalysis},
}

// QuickReplies returns the canned queries.
func (cb *ChatBot) QuickReplies() []QuickReply {
	return append([]QuickReply(nil), quickReplies...)
}

func quickReplyHint() string {
	var b strings.Builder
	b.WriteString("**Quick replies:**\n")
	for i, q := range quickReplies {
		fmt.Fprintf(&b, "- %d. %s: *%s*\n", i+1, q.Label, q.Query)
	}
	return strings.TrimRight(b.String(), "\n")
}

type statLabel struct {
	key   string
	label string
}

var greetingStats = map[session.DocType][]statLabel{
	session.DocWord: {
		{"total_words", "Words"},
		{"paragraphs_count", "Paragraphs"},
		{"headings_count", "Headings"},
		{"tables_count", "Tables"},
		{"lists_count", "Lists"},
	},
	session.DocExcel: {
		{"sheets_count", "Sheets"},
		{"total_rows", "Rows"},
	},
	session.DocPDF: {
		{"pages", "Pages"},
		{"total_words", "Words"},
	},
}

// Greeting is the first message of a new session.
func Greeting(sess *session.Session) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Document **%s** loaded (%s).\n", sess.Filename, sess.DocType.Label())

	var lines []string
	for _, s := range greetingStats[sess.DocType] {
		v, ok := sess.Statistics[s.key]
		if !ok {
			v, ok = sess.StructurePreview[s.key]
		}
		if ok {
			lines = append(lines, fmt.Sprintf("- %s: %s", s.label, strconv.FormatFloat(v, 'f', -1, 64)))
		}
	}
	if len(lines) > 0 {
		b.WriteString(strings.Join(lines, "\n"))
		b.WriteString("\n")
	}

	b.WriteString("Ask a question about the document or pick a quick reply.")
	return b.String()
}
