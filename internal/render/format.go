package render

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/AndreyKorzunin/projectassist/internal/backend"
)

const (
	maxGrammarExamples = 5
	maxDuplicates      = 5
	maxCommonWords     = 10
)

// AnswerFallback replaces answers that are not plain text.
const AnswerFallback = "Received an answer in an unexpected format. Try rephrasing the question."

// Format renders a result as a markup block.
func Format(r Result) string {
	switch r := r.(type) {
	case AnswerResult:
		return FormatAnswer(r)
	case GrammarResult:
		return FormatGrammar(r)
	case RepeatsResult:
		return FormatRepeats(r)
	case StructureResult:
		return FormatStructure(r)
	case UnsupportedResult:
		return FormatUnsupported(r)
	default:
		return FormatUnsupported(UnsupportedResult{Tag: fmt.Sprintf("%T", r)})
	}
}

// FormatAnswer returns the answer text, or a fallback for non-string payloads.
func FormatAnswer(r AnswerResult) string {
	if !r.Valid || strings.TrimSpace(r.Text) == "" {
		return AnswerFallback
	}
	return r.Text
}

// FormatUnsupported reports a response type the client cannot display.
func FormatUnsupported(r UnsupportedResult) string {
	tag := r.Tag
	if tag == "" {
		tag = "unknown"
	}
	return fmt.Sprintf("Unsupported response type: *%s*", emphasized(tag))
}

// FormatGrammar renders a grammar_check result.
func FormatGrammar(r GrammarResult) string {
	var b strings.Builder
	b.WriteString("**Grammar check**\n")

	g := r.Grammar
	switch {
	case g == nil:
		b.WriteString("No grammar data in the response.\n")
	case g.Status == "disabled":
		b.WriteString("Grammar checking is disabled on the server.")
		if g.Message != "" {
			b.WriteString("\n*" + emphasized(g.Message) + "*")
		}
		b.WriteString("\n")
	case g.Status == "error":
		b.WriteString("Grammar check failed")
		if g.Message != "" {
			b.WriteString(": " + g.Message)
		}
		b.WriteString("\n")
	case g.Status == "empty":
		b.WriteString("The document has too little text to check.\n")
	case g.TotalIssues == 0 && len(g.Issues) == 0:
		b.WriteString("No grammar errors found.\n")
	default:
		fmt.Fprintf(&b, "Issues found: **%d**\n", g.TotalIssues)
		writeCounts(&b, "By category:", g.Categories, false)

		if len(g.Issues) > 0 {
			b.WriteString("\n**Examples:**\n")
			for i, issue := range g.Issues {
				if i == maxGrammarExamples {
					break
				}
				b.WriteString("- ")
				if ctx := emphasized(issue.Context); ctx != "" {
					fmt.Fprintf(&b, "*%s*: ", ctx)
				}
				b.WriteString(emphasized(issue.Message))
				if len(issue.Suggestions) > 0 && issue.Suggestions[0] != "" {
					fmt.Fprintf(&b, " (suggestion: **%s**)", emphasized(issue.Suggestions[0]))
				}
				b.WriteString("\n")
			}
		}
	}

	if s := r.Style; s != nil {
		b.WriteString("\n**Style analysis**\n")
		fmt.Fprintf(&b, "Style issues: **%d**\n", s.TotalIssues)
		writeCounts(&b, "", s.Statistics, true)
		if len(s.Recommendations) > 0 {
			b.WriteString("\n**Recommendations:**\n")
			for _, rec := range s.Recommendations {
				b.WriteString("- " + oneLine(rec) + "\n")
			}
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

// FormatRepeats renders a find_repeats result.
func FormatRepeats(r RepeatsResult) string {
	var b strings.Builder
	b.WriteString("**Repetition analysis**\n")

	b.WriteString("\n**Exact duplicates:**\n")
	if len(r.ExactDuplicates) == 0 {
		b.WriteString("No exact duplicates found.\n")
	} else {
		for i, d := range r.ExactDuplicates {
			if i == maxDuplicates {
				break
			}
			fmt.Fprintf(&b, "- \"%s\" (%s)\n", oneLine(d.Text), times(d.Count))
		}
	}

	if len(r.CommonWords) > 0 {
		b.WriteString("\n**Most common words:**\n")
		for i, w := range r.CommonWords {
			if i == maxCommonWords {
				break
			}
			fmt.Fprintf(&b, "- %s: %d (%s)\n", w.Word, w.Count, percent(w.Frequency))
		}
	}

	b.WriteString("\n")
	fmt.Fprintf(&b, "Total sentences: %d\n", r.TotalSentences)
	fmt.Fprintf(&b, "Unique sentences: %d\n", r.UniqueSentences)
	fmt.Fprintf(&b, "Redundancy score: **%s**", percent(r.RedundancyScore))
	return b.String()
}

// FormatStructure renders a structure_analysis result.
func FormatStructure(r StructureResult) string {
	if r.Error != "" {
		return "**Structure analysis**\nStructure analysis is not available for this document: " + r.Error
	}

	switch strings.ToLower(r.DocumentType) {
	case "word":
		return formatWordStructure(r)
	case "excel":
		return formatSheetStructure(r)
	default:
		if r.Headings != nil || r.Content != nil {
			return formatWordStructure(r)
		}
		if r.Sheets != nil {
			return formatSheetStructure(r)
		}
		return "**Structure analysis**\nStructure analysis is not available for this document type."
	}
}

func formatWordStructure(r StructureResult) string {
	var b strings.Builder
	b.WriteString("**Structure analysis: Word document**\n")

	if h := r.Headings; h != nil {
		fmt.Fprintf(&b, "\n**Headings:** %d\n", h.Total)
		for _, level := range sortedLevels(h.ByLevel) {
			fmt.Fprintf(&b, "- Level %s: %d\n", level, h.ByLevel[level])
		}
	}

	if c := r.Content; c != nil {
		b.WriteString("\n**Content:**\n")
		fmt.Fprintf(&b, "- Paragraphs: %d\n", c.ParagraphsCount)
		fmt.Fprintf(&b, "- Tables: %d\n", c.TablesCount)
		fmt.Fprintf(&b, "- Lists: %d\n", c.ListsCount)
		fmt.Fprintf(&b, "- Average paragraph length: %s words\n", oneDecimal(c.AvgParagraphLength))
	}

	if q := r.StructureQuality; q != nil {
		fmt.Fprintf(&b, "\n**Structure quality:** %s/100", strconv.FormatFloat(q.Score, 'f', -1, 64))
		if q.Quality != "" {
			fmt.Fprintf(&b, " (%s)", q.Quality)
		}
		b.WriteString("\n")
	}

	writeRecommendations(&b, r.Recommendations)
	return strings.TrimRight(b.String(), "\n")
}

func formatSheetStructure(r StructureResult) string {
	var b strings.Builder
	b.WriteString("**Structure analysis: Excel spreadsheet**\n")

	sheets := r.SheetsCount
	if sheets == 0 {
		sheets = len(r.Sheets)
	}
	fmt.Fprintf(&b, "\nSheets: **%d**\n", sheets)
	fmt.Fprintf(&b, "Total rows: **%d**\n", r.TotalRows)

	if len(r.Sheets) > 0 {
		names := make([]string, 0, len(r.Sheets))
		for name := range r.Sheets {
			names = append(names, name)
		}
		sort.Strings(names)

		b.WriteString("\n**Sheets:**\n")
		for _, name := range names {
			s := r.Sheets[name]
			headers := "no header row"
			if s.HasHeaders {
				headers = "header row"
			}
			fmt.Fprintf(&b, "- %s: %d rows × %d columns, %s, %d numeric columns\n",
				name, s.Rows, s.Cols, headers, s.NumericColumns)
		}
	}

	writeRecommendations(&b, r.Recommendations)
	return strings.TrimRight(b.String(), "\n")
}

// Footer describes how the service produced a response, or "" when there is
// nothing to say.
func Footer(resp *backend.QueryResponse) string {
	if resp == nil {
		return ""
	}
	var parts []string
	if resp.ProcessingTime != nil {
		parts = append(parts, fmt.Sprintf("processed in %ss", strconv.FormatFloat(*resp.ProcessingTime, 'f', 2, 64)))
	}
	if resp.FromCache || resp.Cached {
		parts = append(parts, "from cache")
	}
	if len(parts) == 0 {
		return ""
	}
	return "*" + strings.Join(parts, ", ") + "*"
}

func writeRecommendations(b *strings.Builder, recs []string) {
	if len(recs) == 0 {
		return
	}
	b.WriteString("\n**Recommendations:**\n")
	for _, rec := range recs {
		b.WriteString("- " + oneLine(rec) + "\n")
	}
}

// writeCounts writes a bulleted category → count list, highest count first.
func writeCounts(b *strings.Builder, title string, counts map[string]int, skipZero bool) {
	keys := make([]string, 0, len(counts))
	for k, v := range counts {
		if skipZero && v == 0 {
			continue
		}
		keys = append(keys, k)
	}
	if len(keys) == 0 {
		return
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})

	if title != "" {
		b.WriteString("\n**" + title + "**\n")
	}
	for _, k := range keys {
		fmt.Fprintf(b, "- %s: %d\n", strings.ReplaceAll(k, "_", " "), counts[k])
	}
}

// sortedLevels orders heading levels numerically; non-numeric keys go last.
func sortedLevels(m map[string]int) []string {
	levels := make([]string, 0, len(m))
	for k := range m {
		levels = append(levels, k)
	}
	sort.Slice(levels, func(i, j int) bool {
		a, errA := strconv.Atoi(levels[i])
		c, errC := strconv.Atoi(levels[j])
		switch {
		case errA == nil && errC == nil:
			return a < c
		case errA == nil:
			return true
		case errC == nil:
			return false
		default:
			return levels[i] < levels[j]
		}
	})
	return levels
}

func percent(fraction float64) string {
	return oneDecimal(fraction*100) + "%"
}

func oneDecimal(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}

func times(n int) string {
	if n == 1 {
		return "1 time"
	}
	return fmt.Sprintf("%d times", n)
}

// oneLine keeps list items on a single markup line.
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// emphasized prepares document text for use inside markup. Asterisks would
// close the surrounding emphasis early, so they are dropped.
func emphasized(s string) string {
	return oneLine(strings.ReplaceAll(s, "*", ""))
}
