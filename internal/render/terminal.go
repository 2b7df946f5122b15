package render

import (
	"strings"

	"github.com/AndreyKorzunin/projectassist/internal/session"
)

// Terminal converts message markup to styled terminal text. It is the ANSI
// counterpart of FormatText and follows the same rules.
func Terminal(text string, s *Styles) string {
	if s == nil {
		s = DefaultStyles()
	}

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if item, ok := strings.CutPrefix(line, listPrefix); ok {
			line = "  " + s.Bullet.Render("•") + " " + item
		}
		line = boldPattern.ReplaceAllStringFunc(line, func(m string) string {
			return s.Bold.Render(boldPattern.FindStringSubmatch(m)[1])
		})
		line = italicPattern.ReplaceAllStringFunc(line, func(m string) string {
			return s.Italic.Render(italicPattern.FindStringSubmatch(m)[1])
		})
		lines[i] = line
	}
	return strings.Join(lines, "\n")
}

// Message renders a whole chat message with its speaker label.
func Message(msg session.Message, s *Styles) string {
	if s == nil {
		s = DefaultStyles()
	}
	body := Terminal(msg.Text, s)
	if msg.Kind == session.KindLoading {
		body = s.Loading.Render(msg.Text)
	}
	if strings.Contains(body, "\n") {
		return s.Label(msg.Kind) + "\n" + body
	}
	return s.Label(msg.Kind) + " " + body
}
