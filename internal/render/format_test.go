package render

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AndreyKorzunin/projectassist/internal/backend"
	"github.com/AndreyKorzunin/projectassist/internal/session"
)

func decode(t *testing.T, taskType, result string) Result {
	t.Helper()
	r, err := Decode(&backend.QueryResponse{TaskType: taskType, Result: json.RawMessage(result)})
	require.NoError(t, err)
	return r
}

func TestDecode_Variants(t *testing.T) {
	tests := []struct {
		name     string
		taskType string
		result   string
		want     session.TaskType
	}{
		{"answer", "answer", `"The contract ends in May."`, session.TaskAnswer},
		{"grammar", "grammar_check", `{"grammar":{"status":"success"}}`, session.TaskGrammarCheck},
		{"repeats", "find_repeats", `{"total_sentences":1}`, session.TaskFindRepeats},
		{"structure", "structure_analysis", `{"document_type":"Word"}`, session.TaskStructureAnalysis},
		{"unknown", "summarize", `{}`, session.TaskType("summarize")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, decode(t, tt.taskType, tt.result).TaskType())
		})
	}
}

func TestDecode_MalformedPayload(t *testing.T) {
	_, err := Decode(&backend.QueryResponse{TaskType: "find_repeats", Result: json.RawMessage(`"text"`)})
	assert.ErrorContains(t, err, "malformed find_repeats")

	_, err = Decode(&backend.QueryResponse{TaskType: "structure_analysis", Result: json.RawMessage(`[1,2]`)})
	assert.Error(t, err)

	_, err = Decode(nil)
	assert.Error(t, err)
}

func TestFormatAnswer(t *testing.T) {
	assert.Equal(t, "Paris.", Format(decode(t, "answer", `"Paris."`)))
	assert.Equal(t, AnswerFallback, Format(decode(t, "answer", `{"text":"nested"}`)))
	assert.Equal(t, AnswerFallback, Format(decode(t, "answer", `null`)))
	assert.Equal(t, AnswerFallback, Format(decode(t, "answer", `42`)))
}

func TestFormatUnsupported(t *testing.T) {
	out := Format(decode(t, "summarize", `{}`))
	assert.Contains(t, out, "Unsupported response type")
	assert.Contains(t, out, "summarize")
}

func TestFormatGrammar_NoErrors(t *testing.T) {
	out := Format(decode(t, "grammar_check", `{"grammar":{"status":"success","total_issues":0,"issues":[]}}`))

	assert.Contains(t, out, "No grammar errors found")
	assert.NotContains(t, out, "Examples")
	assert.NotContains(t, out, "Style analysis")
}

func TestFormatGrammar_ContextWithAsterisks(t *testing.T) {
	out := Format(decode(t, "grammar_check", `{"grammar":{"status":"success","total_issues":1,"shown_issues":1,
		"issues":[{"type":"spelling","message":"Possible *typo*","context":"see note * and **bold** text","suggestions":["a*b"]}]}}`))

	assert.Contains(t, out, "*see note and bold text*: Possible typo (suggestion: **ab**)")

	html := FormatText(out)
	assert.Contains(t, html, "<em>see note and bold text</em>")
	assert.Contains(t, html, "<strong>ab</strong>")
	assert.NotContains(t, html, "*")
}

func TestFormatGrammar_Disabled(t *testing.T) {
	out := Format(decode(t, "grammar_check", `{"status":"disabled","message":"Install language-tool-python."}`))

	assert.Contains(t, out, "disabled")
	assert.Contains(t, out, "Install language-tool-python.")
}

func TestFormatGrammar_IssuesAndStyle(t *testing.T) {
	issues := make([]map[string]any, 0, 7)
	for i := 0; i < 7; i++ {
		issues = append(issues, map[string]any{
			"category":    "TYPOS",
			"message":     "Possible typo " + string(rune('A'+i)),
			"context":     "some   context",
			"suggestions": []string{"fix"},
		})
	}
	payload, err := json.Marshal(map[string]any{
		"grammar": map[string]any{
			"status":       "success",
			"total_issues": 12,
			"categories":   map[string]int{"TYPOS": 7, "PUNCTUATION": 5},
			"issues":       issues,
		},
		"style": map[string]any{
			"total_issues":    3,
			"statistics":      map[string]int{"пассив": 2, "канцеляризмы": 0, "длинные_предложения": 1},
			"recommendations": []string{"Use active voice"},
		},
	})
	require.NoError(t, err)

	out := Format(decode(t, "grammar_check", string(payload)))

	assert.Contains(t, out, "Issues found: **12**")
	assert.Contains(t, out, "- TYPOS: 7\n- PUNCTUATION: 5")
	assert.Equal(t, maxGrammarExamples, strings.Count(out, "Possible typo"))
	assert.Contains(t, out, "*some context*: Possible typo A (suggestion: **fix**)")

	assert.Contains(t, out, "**Style analysis**")
	assert.Contains(t, out, "Style issues: **3**")
	assert.Contains(t, out, "- пассив: 2")
	assert.Contains(t, out, "- длинные предложения: 1")
	assert.NotContains(t, out, "канцеляризмы")
	assert.Contains(t, out, "- Use active voice")
}

func TestFormatGrammar_Error(t *testing.T) {
	out := Format(decode(t, "grammar_check", `{"grammar":{"status":"error","message":"boom"}}`))
	assert.Contains(t, out, "Grammar check failed: boom")
}

func TestFormatRepeats_None(t *testing.T) {
	out := Format(decode(t, "find_repeats",
		`{"exact_duplicates":[],"common_words":[],"total_sentences":10,"unique_sentences":10,"redundancy_score":0}`))

	assert.Contains(t, out, "No exact duplicates found")
	assert.Contains(t, out, "Total sentences: 10")
	assert.Contains(t, out, "Unique sentences: 10")
	assert.Contains(t, out, "Redundancy score: **0.0%**")
	assert.NotContains(t, out, "Most common words")
}

func TestFormatRepeats_Limits(t *testing.T) {
	r := RepeatsResult{TotalSentences: 40, UniqueSentences: 30, RedundancyScore: 0.25}
	for i := 0; i < 8; i++ {
		r.ExactDuplicates = append(r.ExactDuplicates, Duplicate{Text: "dup sentence", Count: 2})
	}
	for i := 0; i < 15; i++ {
		r.CommonWords = append(r.CommonWords, WordCount{Word: "договор", Count: 9, Frequency: 0.0345})
	}

	out := FormatRepeats(r)

	assert.Equal(t, maxDuplicates, strings.Count(out, "dup sentence"))
	assert.Equal(t, maxCommonWords, strings.Count(out, "договор"))
	assert.Contains(t, out, "- \"dup sentence\" (2 times)")
	assert.Contains(t, out, "- договор: 9 (3.5%)")
	assert.Contains(t, out, "Redundancy score: **25.0%**")
}

func TestFormatStructure_Word(t *testing.T) {
	out := Format(decode(t, "structure_analysis", `{
		"document_type": "Word",
		"headings": {"total": 3, "by_level": {"2": 1, "1": 2}},
		"content": {"paragraphs_count": 14, "avg_paragraph_length": 42.26, "tables_count": 1, "lists_count": 2},
		"structure_quality": {"score": 85, "quality": "Excellent"},
		"recommendations": ["Add more level 1 headings"]
	}`))

	assert.Contains(t, out, "**Headings:** 3")
	assert.Contains(t, out, "- Level 1: 2\n- Level 2: 1")
	assert.Contains(t, out, "- Paragraphs: 14")
	assert.Contains(t, out, "- Tables: 1")
	assert.Contains(t, out, "- Lists: 2")
	assert.Contains(t, out, "- Average paragraph length: 42.3 words")
	assert.Contains(t, out, "**Structure quality:** 85/100 (Excellent)")
	assert.Contains(t, out, "- Add more level 1 headings")
}

func TestFormatStructure_WordWithoutRecommendations(t *testing.T) {
	out := Format(decode(t, "structure_analysis",
		`{"document_type":"Word","headings":{"total":0,"by_level":{}},"recommendations":[]}`))
	assert.Contains(t, out, "**Headings:** 0")
	assert.NotContains(t, out, "Recommendations")
}

func TestFormatStructure_Spreadsheet(t *testing.T) {
	out := Format(decode(t, "structure_analysis", `{
		"document_type": "Excel",
		"sheets_count": 2,
		"total_rows": 130,
		"sheets": {
			"Summary": {"rows": 30, "cols": 4, "has_headers": true, "numeric_columns": 2},
			"Data": {"rows": 100, "cols": 12, "has_headers": false, "numeric_columns": 10}
		},
		"recommendations": ["Add headers to sheet 'Data'"]
	}`))

	assert.Contains(t, out, "Excel spreadsheet")
	assert.Contains(t, out, "Sheets: **2**")
	assert.Contains(t, out, "Total rows: **130**")
	assert.Contains(t, out, "- Data: 100 rows × 12 columns, no header row, 10 numeric columns\n- Summary: 30 rows × 4 columns, header row, 2 numeric columns")
	assert.Contains(t, out, "- Add headers to sheet 'Data'")
}

func TestFormatStructure_ErrorAndUnknownType(t *testing.T) {
	out := Format(decode(t, "structure_analysis", `{"error":"Unsupported document type"}`))
	assert.Contains(t, out, "not available for this document: Unsupported document type")

	out = Format(decode(t, "structure_analysis", `{"document_type":"PDF"}`))
	assert.Contains(t, out, "not available for this document type")
}

func TestFormatStructure_LevelOrdering(t *testing.T) {
	levels := sortedLevels(map[string]int{"10": 1, "2": 1, "1": 1, "x": 1})
	assert.Equal(t, []string{"1", "2", "10", "x"}, levels)
}

func TestFooter(t *testing.T) {
	pt := 1.234
	assert.Equal(t, "*processed in 1.23s, from cache*", Footer(&backend.QueryResponse{ProcessingTime: &pt, FromCache: true}))
	assert.Equal(t, "", Footer(&backend.QueryResponse{}))
	assert.Equal(t, "", Footer(nil))
}
