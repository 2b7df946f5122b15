package render

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/AndreyKorzunin/projectassist/internal/session"
)

var transcriptTemplate = template.Must(template.New("transcript").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
</head>
<body>
<h1>{{.Title}}</h1>
<p class="meta">{{.DocType}} · exported {{.Exported.Format "2006-01-02 15:04"}}</p>
<div class="messages">
{{- range .Messages}}
<div class="message {{.Kind}}" id="msg-{{.ID}}">
<div class="message-content">{{.HTML}}</div>
<div class="message-time">{{.Timestamp.Format "15:04:05"}}</div>
</div>
{{- end}}
</div>
</body>
</html>
`))

type exportMessage struct {
	session.Message
	HTML template.HTML
}

// ExportHTML writes a standalone HTML page with the transcript of a session.
// Loading placeholders are skipped.
func ExportHTML(w io.Writer, sess *session.Session, messages []session.Message) error {
	data := struct {
		Title    string
		DocType  string
		Exported time.Time
		Messages []exportMessage
	}{
		Title:    "Chat transcript",
		DocType:  "no document",
		Exported: time.Now(),
	}
	if sess != nil {
		data.Title = sess.Filename
		data.DocType = sess.DocType.Label()
	}

	for _, msg := range messages {
		if msg.Kind == session.KindLoading {
			continue
		}
		data.Messages = append(data.Messages, exportMessage{
			Message: msg,
			// FormatText escapes its input before adding markup.
			HTML: template.HTML(FormatText(msg.Text)), //nolint:gosec
		})
	}

	if err := transcriptTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("failed to render transcript: %w", err)
	}
	return nil
}
