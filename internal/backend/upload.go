package backend

// UploadResponse represents the response from the /upload endpoint
type UploadResponse struct {
	SessionID        string             `json:"session_id"`
	Filename         string             `json:"filename"`
	DocType          string             `json:"doc_type"`
	Statistics       map[string]float64 `json:"statistics"`
	StructurePreview map[string]float64 `json:"structure_preview"`
	Indexed          bool               `json:"indexed"`
}

// SessionInfo represents the response from GET /sessions/{id}
type SessionInfo struct {
	SessionID    string             `json:"session_id"`
	Filename     string             `json:"filename"`
	DocType      string             `json:"doc_type"`
	CreatedAt    string             `json:"created_at"`
	LastAccessed string             `json:"last_accessed"`
	Statistics   map[string]float64 `json:"statistics"`
}

// DeleteResponse represents the response from DELETE /sessions/{id}
type DeleteResponse struct {
	Status    string `json:"status"`
	SessionID string `json:"session_id"`
}
