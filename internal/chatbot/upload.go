package chatbot

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"

	"github.com/AndreyKorzunin/projectassist/internal/backend"
	"github.com/AndreyKorzunin/projectassist/internal/session"
)

// ValidateFile checks a document against the allowed extensions and the
// upload size limit before anything is sent.
func (cb *ChatBot) ValidateFile(name string, size int64) error {
	ext := strings.ToLower(filepath.Ext(name))
	if !slices.Contains(cb.config.Extensions, ext) {
		if ext == "" {
			ext = "no extension"
		}
		return fmt.Errorf("%w: %s (allowed: %s)", ErrUnsupportedFile, ext, strings.Join(cb.config.Extensions, ", "))
	}
	if limit := cb.config.MaxUploadBytes(); limit > 0 && size > limit {
		return fmt.Errorf("%w: %.1f MB (limit %d MB)", ErrFileTooLarge, float64(size)/(1024*1024), cb.config.MaxUploadMB)
	}
	return nil
}

// UploadFile validates and uploads the document at path.
func (cb *ChatBot) UploadFile(ctx context.Context, path string) (*session.Session, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}

	name := filepath.Base(path)
	if err := cb.ValidateFile(name, info.Size()); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read file: %w", err)
	}
	defer f.Close()

	return cb.Upload(ctx, name, f)
}

// Upload sends a document to the service and, on success, makes it the
// active session: the previous session is discarded, the documents counter
// is incremented, the view switches to the chat and the transcript is seeded
// with a greeting. On failure nothing changes.
func (cb *ChatBot) Upload(ctx context.Context, name string, r io.Reader) (*session.Session, error) {
	ctx, span := cb.tracer.Start(ctx, "upload_document")
	defer span.End()
	span.SetAttributes(attribute.String("document.name", name))

	resp, err := cb.backend.Upload(ctx, name, r)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		cb.logger.Error("upload failed", "filename", name, "error", err)
		return nil, fmt.Errorf("upload failed: %w", err)
	}

	sess := newSession(resp, name)
	if _, err := session.ParseDocType(resp.DocType); err != nil {
		cb.logger.Warn("unexpected document type", "doc_type", resp.DocType)
	}

	cb.mu.Lock()
	prev := cb.session
	cb.session = sess
	cb.view = session.ViewDocumentChat
	cb.stats.Documents++
	st := cb.stats
	cb.mu.Unlock()

	cb.saveStats(ctx, st)
	cb.documentsCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("doc_type", string(sess.DocType))))

	if prev != nil {
		cb.saveTranscript(ctx, prev)
		cb.DeleteSession(ctx, prev.ID)
	}
	cb.cache.Clear()

	cb.transcript.Reset()
	cb.transcript.Append(session.KindBot, Greeting(sess))
	cb.transcript.Append(session.KindInfo, quickReplyHint())
	if !sess.Indexed {
		cb.transcript.Append(session.KindInfo, "Semantic search is unavailable for this document; answers may be less precise.")
	}

	if cb.history != nil {
		if err := cb.history.SaveSession(ctx, sess); err != nil {
			cb.logger.Warn("failed to save session", "session_id", sess.ID, "error", err)
		}
	}
	cb.saveTranscript(ctx, sess)

	span.SetAttributes(attribute.String("session.id", sess.ID), attribute.String("document.type", string(sess.DocType)))
	cb.logger.Info("document uploaded",
		"session_id", sess.ID,
		"filename", sess.Filename,
		"doc_type", sess.DocType,
		"indexed", sess.Indexed,
	)

	out := *sess
	return &out, nil
}

func newSession(resp *backend.UploadResponse, name string) *session.Session {
	filename := resp.Filename
	if filename == "" {
		filename = name
	}
	docType, err := session.ParseDocType(resp.DocType)
	if err != nil {
		docType = session.DocType(resp.DocType)
	}
	return &session.Session{
		ID:               resp.SessionID,
		Filename:         filename,
		DocType:          docType,
		Statistics:       resp.Statistics,
		StructurePreview: resp.StructurePreview,
		Indexed:          resp.Indexed,
		StartTime:        time.Now(),
	}
}

// DeleteSession asks the service to discard a session. Failures are logged
// and never reach the caller.
func (cb *ChatBot) DeleteSession(ctx context.Context, id string) {
	if id == "" {
		return
	}
	if err := cb.backend.DeleteSession(ctx, id); err != nil {
		cb.logger.Warn("failed to delete session", "session_id", id, "error", err)
		return
	}
	cb.logger.Info("session deleted", "session_id", id)
}

// NewSession discards the active session and returns to the upload view.
func (cb *ChatBot) NewSession(ctx context.Context) {
	cb.closeSession(ctx, "new_session")
}

// Back leaves the chat and returns to the upload view.
func (cb *ChatBot) Back(ctx context.Context) {
	cb.closeSession(ctx, "back")
}

func (cb *ChatBot) closeSession(ctx context.Context, reason string) {
	cb.mu.Lock()
	prev := cb.session
	cb.session = nil
	cb.view = session.ViewUpload
	cb.mu.Unlock()

	if prev != nil {
		cb.saveTranscript(ctx, prev)
	}
	cb.transcript.Reset()
	cb.cache.Clear()

	if prev != nil {
		cb.DeleteSession(ctx, prev.ID)
		cb.logger.Info("session closed", "session_id", prev.ID, "reason", reason)
	}
}

// SessionInfo fetches the service's view of the active session and refreshes
// its statistics.
func (cb *ChatBot) SessionInfo(ctx context.Context) (*backend.SessionInfo, error) {
	sess := cb.Session()
	if sess == nil {
		return nil, ErrNoSession
	}

	info, err := cb.backend.GetSession(ctx, sess.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch session info: %w", err)
	}

	if len(info.Statistics) > 0 {
		cb.mu.Lock()
		if cb.session != nil && cb.session.ID == sess.ID {
			cb.session.Statistics = info.Statistics
		}
		cb.mu.Unlock()
	}
	return info, nil
}

// saveTranscript stores the transcript of sess in the history, if enabled.
func (cb *ChatBot) saveTranscript(ctx context.Context, sess *session.Session) {
	if cb.history == nil || sess == nil {
		return
	}
	if err := cb.history.SaveMessages(ctx, sess.ID, cb.transcript.Messages()); err != nil {
		cb.logger.Warn("failed to save messages", "session_id", sess.ID, "error", err)
	}
}
