// Package render turns query responses from the analysis service into chat
// message text.
//
// A response is first decoded into one of the Result variants, then Format
// produces a markup block (**bold**, *italic*, "- " list lines). The markup is
// converted once per message, to HTML by FormatText or to ANSI by Terminal.
package render

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/AndreyKorzunin/projectassist/internal/backend"
	"github.com/AndreyKorzunin/projectassist/internal/session"
)

// Result is a decoded query response. The set of implementations is closed;
// Format switches over all of them.
type Result interface {
	TaskType() session.TaskType
	isResult()
}

// AnswerResult is a free-form answer. Valid is false when the service sent
// something other than a string.
type AnswerResult struct {
	Text  string
	Valid bool
}

// GrammarIssue is one finding of the grammar or style checker.
type GrammarIssue struct {
	Type        string   `json:"type"`
	Category    string   `json:"category"`
	Message     string   `json:"message"`
	Context     string   `json:"context"`
	Suggestions []string `json:"suggestions"`
}

// GrammarReport is the spelling/grammar part of a grammar_check result.
type GrammarReport struct {
	Status      string         `json:"status"`
	Message     string         `json:"message"`
	TotalIssues int            `json:"total_issues"`
	ShownIssues int            `json:"shown_issues"`
	Categories  map[string]int `json:"categories"`
	Issues      []GrammarIssue `json:"issues"`
}

// StyleReport is the stylistic part of a grammar_check result.
type StyleReport struct {
	TotalIssues     int            `json:"total_issues"`
	Statistics      map[string]int `json:"statistics"`
	Issues          []GrammarIssue `json:"issues"`
	Recommendations []string       `json:"recommendations"`
}

// GrammarResult is the payload of a grammar_check response.
type GrammarResult struct {
	Grammar *GrammarReport `json:"grammar"`
	Style   *StyleReport   `json:"style"`
}

// Duplicate is a sentence that occurs more than once.
type Duplicate struct {
	Text  string `json:"text"`
	Count int    `json:"count"`
}

// WordCount is a frequent word; Frequency is a fraction of all counted words.
type WordCount struct {
	Word      string  `json:"word"`
	Count     int     `json:"count"`
	Frequency float64 `json:"frequency"`
}

// RepeatsResult is the payload of a find_repeats response.
type RepeatsResult struct {
	ExactDuplicates []Duplicate `json:"exact_duplicates"`
	CommonWords     []WordCount `json:"common_words"`
	TotalSentences  int         `json:"total_sentences"`
	UniqueSentences int         `json:"unique_sentences"`
	RedundancyScore float64     `json:"redundancy_score"`
}

// HeadingStats counts headings by level. Levels are JSON object keys.
type HeadingStats struct {
	Total        int            `json:"total"`
	ByLevel      map[string]int `json:"by_level"`
	MainSections []Section      `json:"main_sections"`
}

// Section is a top-level heading.
type Section struct {
	Level    int    `json:"level"`
	Text     string `json:"text"`
	Position int    `json:"position"`
}

// ContentStats describes the body of a word-processor document.
type ContentStats struct {
	ParagraphsCount    int     `json:"paragraphs_count"`
	AvgParagraphLength float64 `json:"avg_paragraph_length"`
	TablesCount        int     `json:"tables_count"`
	ListsCount         int     `json:"lists_count"`
}

// Quality is the structure score computed by the service.
type Quality struct {
	Score   float64        `json:"score"`
	Quality string         `json:"quality"`
	Factors map[string]any `json:"factors"`
}

// SheetStats describes one worksheet.
type SheetStats struct {
	Rows           int  `json:"rows"`
	Cols           int  `json:"cols"`
	HasHeaders     bool `json:"has_headers"`
	NumericColumns int  `json:"numeric_columns"`
	DataDensity    int  `json:"data_density"`
}

// StructureResult is the payload of a structure_analysis response. Word
// documents fill Headings/Content/StructureQuality, spreadsheets fill the
// Sheets fields.
type StructureResult struct {
	DocumentType     string                `json:"document_type"`
	Error            string                `json:"error"`
	Headings         *HeadingStats         `json:"headings"`
	Content          *ContentStats         `json:"content"`
	StructureQuality *Quality              `json:"structure_quality"`
	SheetsCount      int                   `json:"sheets_count"`
	Sheets           map[string]SheetStats `json:"sheets"`
	TotalRows        int                   `json:"total_rows"`
	Recommendations  []string              `json:"recommendations"`
}

// UnsupportedResult is a response whose task_type the client does not know.
type UnsupportedResult struct {
	Tag string
}

func (AnswerResult) TaskType() session.TaskType { return session.TaskAnswer }
func (GrammarResult) TaskType() session.TaskType { return session.TaskGrammarCheck }
func (RepeatsResult) TaskType() session.TaskType { return session.TaskFindRepeats }
func (StructureResult) TaskType() session.TaskType { return session.TaskStructureAnalysis }
func (u UnsupportedResult) TaskType() session.TaskType { return session.TaskType(u.Tag) }

func (AnswerResult) isResult() {}
func (GrammarResult) isResult() {}
func (RepeatsResult) isResult() {}
func (StructureResult) isResult() {}
func (UnsupportedResult) isResult() {}

// Decode converts a raw query response into its Result variant.
// It fails only when a known task type carries a payload of the wrong shape.
func Decode(resp *backend.QueryResponse) (Result, error) {
	if resp == nil {
		return nil, fmt.Errorf("empty response")
	}

	switch session.TaskType(resp.TaskType) {
	case session.TaskAnswer:
		var v any
		if err := json.Unmarshal(resp.Result, &v); err != nil {
			return AnswerResult{}, nil
		}
		text, ok := v.(string)
		return AnswerResult{Text: text, Valid: ok}, nil

	case session.TaskGrammarCheck:
		return decodeGrammar(resp.Result)

	case session.TaskFindRepeats:
		var r RepeatsResult
		if err := decodeObject(resp.Result, &r); err != nil {
			return nil, fmt.Errorf("malformed find_repeats result: %w", err)
		}
		return r, nil

	case session.TaskStructureAnalysis:
		var r StructureResult
		if err := decodeObject(resp.Result, &r); err != nil {
			return nil, fmt.Errorf("malformed structure_analysis result: %w", err)
		}
		return r, nil

	default:
		return UnsupportedResult{Tag: resp.TaskType}, nil
	}
}

// decodeGrammar accepts both {grammar, style} and the bare report the service
// sends when the checker is disabled.
func decodeGrammar(raw json.RawMessage) (Result, error) {
	var r GrammarResult
	if err := decodeObject(raw, &r); err != nil {
		return nil, fmt.Errorf("malformed grammar_check result: %w", err)
	}
	if r.Grammar == nil && r.Style == nil {
		var bare GrammarReport
		if err := decodeObject(raw, &bare); err != nil {
			return nil, fmt.Errorf("malformed grammar_check result: %w", err)
		}
		if bare.Status != "" {
			r.Grammar = &bare
		}
	}
	return r, nil
}

func decodeObject(raw json.RawMessage, v any) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return fmt.Errorf("expected a JSON object")
	}
	return json.Unmarshal(trimmed, v)
}
