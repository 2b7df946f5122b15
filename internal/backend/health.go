package backend

// HealthResponse represents the response from the /health endpoint
type HealthResponse struct {
	Status       string          `json:"status"`
	Version      string          `json:"version"`
	GigaChat     ComponentHealth `json:"gigachat"`
	RAG          ComponentHealth `json:"rag"`
	Uptime       string          `json:"uptime"`
	CacheEnabled bool            `json:"cache_enabled"`
}

// ComponentHealth is the state of one service dependency: the language
// model ("gigachat") or the retrieval index ("rag").
type ComponentHealth struct {
	Status        string `json:"status"`
	Message       string `json:"message,omitempty"`
	Model         string `json:"model,omitempty"`
	ChunksIndexed int    `json:"chunks_indexed,omitempty"`
}

// OK reports whether the service declared itself healthy.
func (h HealthResponse) OK() bool {
	return h.Status == "ok"
}
