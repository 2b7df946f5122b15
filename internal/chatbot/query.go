package chatbot

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"

	"github.com/AndreyKorzunin/projectassist/internal/backend"
	"github.com/AndreyKorzunin/projectassist/internal/cache"
	"github.com/AndreyKorzunin/projectassist/internal/render"
	"github.com/AndreyKorzunin/projectassist/internal/session"
)

const (
	MinQueryLength = 3
	MaxQueryLength = 1000

	// LoadingText is the placeholder shown while a query runs.
	LoadingText = "Analyzing the document..."
)

// ValidateQuery checks a trimmed query against the length limits the
// service enforces.
func ValidateQuery(query string) error {
	switch n := utf8.RuneCountInString(query); {
	case n == 0:
		return ErrEmptyQuery
	case n < MinQueryLength:
		return ErrQueryTooShort
	case n > MaxQueryLength:
		return ErrQueryTooLong
	}
	return nil
}

// SendQuickReply selects the task type of quick reply i and sends its query.
func (cb *ChatBot) SendQuickReply(ctx context.Context, i int) (session.Message, error) {
	if i < 0 || i >= len(quickReplies) {
		return session.Message{}, fmt.Errorf("no quick reply %d (1-%d)", i+1, len(quickReplies))
	}
	q := quickReplies[i]
	if cb.Session() == nil {
		return session.Message{}, ErrNoSession
	}
	if err := cb.SetTaskType(q.TaskType); err != nil {
		return session.Message{}, err
	}
	return cb.SendMessage(ctx, q.Query)
}

// SendMessage sends a query about the active document with the selected task
// type. Empty text, a missing session or a query already in flight return an
// error and change nothing. Otherwise it appends the user message and a
// loading placeholder, counts the query, and replaces the placeholder with one
// bot message, or one error message when the query is out of range or the
// request fails. The returned message is the one appended last.
func (cb *ChatBot) SendMessage(ctx context.Context, text string) (session.Message, error) {
	query := strings.TrimSpace(text)
	if query == "" {
		return session.Message{}, ErrEmptyQuery
	}

	cb.mu.Lock()
	if cb.session == nil {
		cb.mu.Unlock()
		return session.Message{}, ErrNoSession
	}
	if cb.busy {
		cb.mu.Unlock()
		return session.Message{}, ErrBusy
	}
	cb.busy = true
	sess := *cb.session
	taskType := cb.taskType
	cb.mu.Unlock()

	defer func() {
		cb.mu.Lock()
		cb.busy = false
		cb.mu.Unlock()
	}()

	ctx, span := cb.tracer.Start(ctx, "send_message")
	defer span.End()
	span.SetAttributes(
		attribute.String("session.id", sess.ID),
		attribute.String("task_type", string(taskType)),
	)

	cb.transcript.Append(session.KindUser, query)
	loading := cb.transcript.Append(session.KindLoading, LoadingText)

	cb.mu.Lock()
	cb.stats.Queries++
	st := cb.stats
	cb.mu.Unlock()
	cb.saveStats(ctx, st)
	cb.queriesCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("task_type", string(taskType))))

	// Out-of-range queries are answered in the chat like a rejected request.
	if err := ValidateQuery(query); err != nil {
		cb.logger.Warn("invalid query", "session_id", sess.ID, "query_length", utf8.RuneCountInString(query), "error", err)
		cb.transcript.RemoveLoading(loading.ID)
		msg := cb.transcript.Append(session.KindError, "Invalid query: "+err.Error())
		cb.saveTranscript(ctx, &sess)
		return msg, err
	}

	cb.logger.Info("sending query", "session_id", sess.ID, "task_type", taskType, "query_length", len(query))

	resp, err := cb.query(ctx, sess.ID, taskType, query)

	if !cb.isActive(sess.ID) {
		cb.logger.Warn("dropping response for closed session", "session_id", sess.ID)
		return session.Message{}, ErrSessionClosed
	}
	cb.transcript.RemoveLoading(loading.ID)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		cb.logger.Error("query failed", "session_id", sess.ID, "task_type", taskType, "error", err)
		msg := cb.transcript.Append(session.KindError, "Request failed: "+err.Error())
		cb.saveTranscript(ctx, &sess)
		return msg, err
	}

	result, err := render.Decode(resp)
	if err != nil {
		span.RecordError(err)
		cb.logger.Error("failed to decode response", "task_type", resp.TaskType, "error", err)
		msg := cb.transcript.Append(session.KindError, "Could not read the response: "+err.Error())
		cb.saveTranscript(ctx, &sess)
		return msg, err
	}
	if _, ok := result.(render.UnsupportedResult); ok {
		cb.logger.Warn("unsupported response type", "task_type", resp.TaskType)
	}

	reply := render.Format(result)
	if footer := render.Footer(resp); footer != "" {
		reply += "\n" + footer
	}
	msg := cb.transcript.Append(session.KindBot, reply)
	cb.saveTranscript(ctx, &sess)
	return msg, nil
}

// query returns a cached response or asks the service.
func (cb *ChatBot) query(ctx context.Context, sessionID string, taskType session.TaskType, query string) (*backend.QueryResponse, error) {
	key := cache.GenerateCacheKey(sessionID, taskType, query)
	if cached, ok := cb.cache.Get(key); ok {
		cb.logger.Info("cache hit", "key", key[:16])
		resp := cached.Response
		resp.FromCache = true
		return &resp, nil
	}

	resp, err := cb.backend.Query(ctx, backend.QueryRequest{
		SessionID: sessionID,
		Query:     query,
		TaskType:  string(taskType),
	})
	if err != nil {
		return nil, err
	}

	cb.cache.Store(key, *resp)
	return resp, nil
}

func (cb *ChatBot) isActive(id string) bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.session != nil && cb.session.ID == id
}
