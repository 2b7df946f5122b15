package chatbot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/AndreyKorzunin/projectassist/internal/render"
	"github.com/AndreyKorzunin/projectassist/internal/session"
	"github.com/AndreyKorzunin/projectassist/internal/store"
)

// ExportHTML writes the transcript of the active session to path as an HTML page.
func (cb *ChatBot) ExportHTML(path string) error {
	sess := cb.Session()
	if sess == nil {
		return ErrNoSession
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create export directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}

	if err := render.ExportHTML(f, sess, cb.transcript.Messages()); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write export file: %w", err)
	}

	cb.logger.Info("transcript exported", "session_id", sess.ID, "path", path)
	return nil
}

// ListHistory returns the most recent sessions.
func (cb *ChatBot) ListHistory(ctx context.Context, limit int) ([]store.SessionSummary, error) {
	if cb.history == nil {
		return nil, ErrNoHistory
	}
	return cb.history.ListSessions(ctx, limit)
}

// LoadHistory returns the saved transcript of a past session.
func (cb *ChatBot) LoadHistory(ctx context.Context, sessionID string) ([]session.Message, error) {
	if cb.history == nil {
		return nil, ErrNoHistory
	}
	return cb.history.LoadMessages(ctx, sessionID)
}
