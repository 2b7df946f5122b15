package session

import (
	"fmt"
	"strings"
	"time"
)

// DocType is the kind of document the service parsed.
type DocType string

const (
	DocWord  DocType = "word"
	DocExcel DocType = "excel"
	DocPDF   DocType = "pdf"
)

// Label returns a human readable name for the document type.
func (d DocType) Label() string {
	switch d {
	case DocWord:
		return "Word document"
	case DocExcel:
		return "Excel spreadsheet"
	case DocPDF:
		return "PDF document"
	default:
		return "document"
	}
}

// ParseDocType validates a doc_type value from the service.
func ParseDocType(s string) (DocType, error) {
	switch d := DocType(strings.ToLower(strings.TrimSpace(s))); d {
	case DocWord, DocExcel, DocPDF:
		return d, nil
	default:
		return "", fmt.Errorf("unknown document type: %q", s)
	}
}

// TaskType selects the analysis run for a query.
type TaskType string

const (
	TaskAnswer            TaskType = "answer"
	TaskGrammarCheck      TaskType = "grammar_check"
	TaskFindRepeats       TaskType = "find_repeats"
	TaskStructureAnalysis TaskType = "structure_analysis"
)

// TaskTypes lists every task type in display order.
var TaskTypes = []TaskType{TaskAnswer, TaskGrammarCheck, TaskFindRepeats, TaskStructureAnalysis}

// ParseTaskType validates a task type name.
func ParseTaskType(s string) (TaskType, error) {
	t := TaskType(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range TaskTypes {
		if t == known {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown task type: %q (answer|grammar_check|find_repeats|structure_analysis)", s)
}

// Label returns the name shown in menus.
func (t TaskType) Label() string {
	switch t {
	case TaskAnswer:
		return "Question & answer"
	case TaskGrammarCheck:
		return "Grammar check"
	case TaskFindRepeats:
		return "Find repeats"
	case TaskStructureAnalysis:
		return "Structure analysis"
	default:
		return string(t)
	}
}

// Session represents a document uploaded to the analysis service
type Session struct {
	ID               string             `json:"session_id"`
	Filename         string             `json:"filename"`
	DocType          DocType            `json:"doc_type"`
	Statistics       map[string]float64 `json:"statistics"`
	StructurePreview map[string]float64 `json:"structure_preview,omitempty"`
	Indexed          bool               `json:"indexed"`
	StartTime        time.Time          `json:"start_time"`
}

// ViewState is the screen the client is showing.
type ViewState int

const (
	ViewUpload ViewState = iota
	ViewDocumentChat
)

func (v ViewState) String() string {
	if v == ViewDocumentChat {
		return "document_chat"
	}
	return "upload"
}
