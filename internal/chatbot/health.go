package chatbot

import (
	"context"
	"fmt"
	"time"
)

// Health is the last known state of the service.
type Health struct {
	Online        bool      `json:"online"`
	Status        string    `json:"status"`
	Version       string    `json:"version"`
	Uptime        string    `json:"uptime,omitempty"`
	CacheEnabled  bool      `json:"cache_enabled"`
	// Model and RAG are the states the service reports for its language
	// model and retrieval index; empty when not reported.
	Model         string    `json:"model,omitempty"`
	RAG           string    `json:"rag,omitempty"`
	ChunksIndexed int       `json:"chunks_indexed,omitempty"`
	CheckedAt     time.Time `json:"checked_at"`
}

// String is the status line shown to the user.
func (h Health) String() string {
	if h.CheckedAt.IsZero() {
		return "service status unknown"
	}
	if !h.Online {
		return fmt.Sprintf("service offline (status %q)", h.Status)
	}
	s := "service online"
	if h.Version != "" {
		s += ", v" + h.Version
	}
	if h.Uptime != "" {
		s += ", up " + h.Uptime
	}
	if h.CacheEnabled {
		s += ", cache on"
	}
	if h.Model != "" {
		s += ", model " + h.Model
	}
	if h.RAG != "" {
		s += ", rag " + h.RAG
		if h.ChunksIndexed > 0 {
			s += fmt.Sprintf(" (%d chunks)", h.ChunksIndexed)
		}
	}
	return s
}

// Health returns the last known service state.
func (cb *ChatBot) Health() Health {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.health
}

// CheckHealth probes the service. On failure the previous state is kept and
// the error is returned for logging.
func (cb *ChatBot) CheckHealth(ctx context.Context) (Health, error) {
	resp, err := cb.backend.Health(ctx)
	if err != nil {
		cb.logger.Warn("health check failed", "error", err)
		return cb.Health(), fmt.Errorf("health check failed: %w", err)
	}

	h := Health{
		Online:        resp.OK(),
		Status:        resp.Status,
		Version:       resp.Version,
		Uptime:        resp.Uptime,
		CacheEnabled:  resp.CacheEnabled,
		Model:         resp.GigaChat.Status,
		RAG:           resp.RAG.Status,
		ChunksIndexed: resp.RAG.ChunksIndexed,
		CheckedAt:     time.Now(),
	}

	cb.mu.Lock()
	cb.health = h
	cb.mu.Unlock()

	cb.logger.Debug("health checked", "status", h.Status, "version", h.Version)
	return h, nil
}
