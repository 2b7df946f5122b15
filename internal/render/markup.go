package render

import (
	"html"
	"regexp"
	"strings"
)

var (
	boldPattern   = regexp.MustCompile(`\*\*(.+?)\*\*`)
	italicPattern = regexp.MustCompile(`\*([^*\s][^*]*?)\*`)
)

const listPrefix = "- "

// FormatText converts message markup to an HTML fragment: **bold** becomes
// <strong>, *italic* becomes <em>, lines starting with "- " become <li>
// items grouped in a <ul>, and the remaining newlines become <br>.
// The input is escaped first; apply it exactly once per message.
func FormatText(text string) string {
	lines := strings.Split(html.EscapeString(text), "\n")

	var b strings.Builder
	inList := false
	for i, line := range lines {
		if item, ok := strings.CutPrefix(line, listPrefix); ok {
			if !inList {
				b.WriteString("<ul>")
				inList = true
			}
			b.WriteString("<li>" + inline(item, "<strong>$1</strong>", "<em>$1</em>") + "</li>")
			continue
		}
		if inList {
			b.WriteString("</ul>")
			inList = false
		}
		b.WriteString(inline(line, "<strong>$1</strong>", "<em>$1</em>"))
		if i < len(lines)-1 {
			b.WriteString("<br>")
		}
	}
	if inList {
		b.WriteString("</ul>")
	}
	return b.String()
}

// PlainText strips markup, for logs and stores that keep text only.
func PlainText(text string) string {
	return inline(text, "$1", "$1")
}

func inline(s, bold, italic string) string {
	s = boldPattern.ReplaceAllString(s, bold)
	return italicPattern.ReplaceAllString(s, italic)
}
