package backend

import "encoding/json"

// QueryRequest represents the request body for the /query endpoint
type QueryRequest struct {
	SessionID string `json:"session_id"`
	Query     string `json:"query"`
	TaskType  string `json:"task_type"`
}

// QueryResponse represents the response from the /query endpoint.
// Result is kept raw; its shape depends on TaskType.
type QueryResponse struct {
	TaskType       string          `json:"task_type"`
	Result         json.RawMessage `json:"result"`
	Cached         bool            `json:"cached"`
	ProcessingTime *float64        `json:"processing_time,omitempty"`
	FromCache      bool            `json:"from_cache"`
}
