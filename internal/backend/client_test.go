package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := NewClient(srv.URL + "/")
	require.NoError(t, err)
	return c
}

func TestNewClient_RejectsBadURL(t *testing.T) {
	_, err := NewClient("ftp://example.com")
	assert.Error(t, err)

	_, err = NewClient("://nope")
	assert.Error(t, err)

	c, err := NewClient("http://localhost:8000/")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8000", c.BaseURL())
}

func TestClient_Upload(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/upload", r.URL.Path)
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		data, _ := io.ReadAll(file)
		assert.Equal(t, "report.docx", header.Filename)
		assert.Equal(t, "contents", string(data))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"session_id": "abc",
			"filename":   "report.docx",
			"doc_type":   "word",
			"statistics": map[string]any{"total_words": 120},
			"indexed":    true,
		})
	})

	resp, err := c.Upload(context.Background(), "report.docx", strings.NewReader("contents"))
	require.NoError(t, err)
	assert.Equal(t, "abc", resp.SessionID)
	assert.Equal(t, "word", resp.DocType)
	assert.Equal(t, float64(120), resp.Statistics["total_words"])
	assert.True(t, resp.Indexed)
}

func TestClient_UploadErrorDetail(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"detail":"Unsupported file format"}`))
	})

	_, err := c.Upload(context.Background(), "notes.txt", strings.NewReader("x"))
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "Unsupported file format", apiErr.Error())
}

func TestClient_UploadMissingSessionID(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"filename":"a.pdf"}`))
	})

	_, err := c.Upload(context.Background(), "a.pdf", strings.NewReader("x"))
	assert.ErrorContains(t, err, "session_id")
}

func TestClient_Query(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/query", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req QueryRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, QueryRequest{SessionID: "s1", Query: "what is it?", TaskType: "answer"}, req)

		_, _ = w.Write([]byte(`{"task_type":"answer","result":"A report.","processing_time":0.42,"from_cache":true}`))
	})

	resp, err := c.Query(context.Background(), QueryRequest{SessionID: "s1", Query: "what is it?", TaskType: "answer"})
	require.NoError(t, err)
	assert.Equal(t, "answer", resp.TaskType)
	assert.JSONEq(t, `"A report."`, string(resp.Result))
	require.NotNil(t, resp.ProcessingTime)
	assert.InDelta(t, 0.42, *resp.ProcessingTime, 1e-9)
	assert.True(t, resp.FromCache)
}

func TestClient_QueryValidationError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"detail":[{"msg":"query too short"},{"msg":"bad task"}]}`))
	})

	_, err := c.Query(context.Background(), QueryRequest{SessionID: "s", Query: "x", TaskType: "answer"})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "query too short; bad task", apiErr.Detail)
}

func TestClient_NonJSONError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	})

	_, err := c.Health(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "bad gateway", apiErr.Detail)
	assert.False(t, apiErr.NotFound())
}

func TestClient_Health(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		_, _ = w.Write([]byte(`{"status":"ok","version":"1.0.0","uptime":"0:01:02","cache_enabled":true,
			"gigachat":{"status":"ok","model":"GigaChat-Pro","cache_enabled":true},
			"rag":{"status":"active","chunks_indexed":42}}`))
	})

	h, err := c.Health(context.Background())
	require.NoError(t, err)
	assert.True(t, h.OK())
	assert.Equal(t, "1.0.0", h.Version)
	assert.True(t, h.CacheEnabled)
	assert.Equal(t, "ok", h.GigaChat.Status)
	assert.Equal(t, "GigaChat-Pro", h.GigaChat.Model)
	assert.Equal(t, "active", h.RAG.Status)
	assert.Equal(t, 42, h.RAG.ChunksIndexed)
}

func TestClient_GetAndDeleteSession(t *testing.T) {
	var deleted string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			_, _ = w.Write([]byte(`{"session_id":"a b","filename":"x.pdf","doc_type":"pdf","statistics":{"pages":3}}`))
		case http.MethodDelete:
			deleted = r.URL.Path
			_, _ = w.Write([]byte(`{"status":"deleted","session_id":"a b"}`))
		}
	})

	info, err := c.GetSession(context.Background(), "a b")
	require.NoError(t, err)
	assert.Equal(t, float64(3), info.Statistics["pages"])

	require.NoError(t, c.DeleteSession(context.Background(), "a b"))
	assert.Equal(t, "/sessions/a b", deleted)
}

func TestClient_DeleteSessionUnexpectedStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"pending","session_id":"s1"}`))
	})

	err := c.DeleteSession(context.Background(), "s1")
	assert.ErrorContains(t, err, `unexpected status "pending"`)
}

func TestClient_DeleteSessionNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail":"Session not found"}`))
	})

	err := c.DeleteSession(context.Background(), "gone")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.NotFound())
}

func TestClient_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	c, err := NewClient(url, WithTimeout(time.Second))
	require.NoError(t, err)

	_, err = c.Health(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransport)
}

func TestClient_RateLimitHonoursContext(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	WithRateLimit(0.001, 1)(c)

	_, err := c.Health(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = c.Health(ctx)
	assert.ErrorContains(t, err, "rate limiter")
}
