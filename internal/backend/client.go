package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

// Client talks to the document-analysis service over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
	tracer     trace.Tracer
	duration   metric.Float64Histogram
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-request timeout of the default http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithRateLimit limits outgoing requests to rps per second. Zero disables the limit.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithTelemetry sets the tracer and meter used for request spans and durations.
func WithTelemetry(tracer trace.Tracer, meter metric.Meter) Option {
	return func(c *Client) {
		if tracer != nil {
			c.tracer = tracer
		}
		if meter != nil {
			if h, err := meter.Float64Histogram(
				"http.client.request.duration",
				metric.WithDescription("HTTP request duration in milliseconds"),
			); err == nil {
				c.duration = h
			}
		}
	}
}

// NewClient creates a client for the service rooted at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("invalid api url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid api url %q: scheme must be http or https", baseURL)
	}

	c := &Client{
		baseURL:    strings.TrimRight(u.String(), "/"),
		httpClient: &http.Client{Timeout: 60 * time.Second},
		logger:     slog.Default(),
		tracer:     otel.Tracer("docassist"),
	}
	WithTelemetry(nil, otel.Meter("docassist"))(c)

	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the service root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Upload sends a document as multipart form data.
func (c *Client) Upload(ctx context.Context, filename string, r io.Reader) (*UploadResponse, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish form: %w", err)
	}

	var resp UploadResponse
	if err := c.do(ctx, "upload", http.MethodPost, "/upload", &buf, mw.FormDataContentType(), &resp); err != nil {
		return nil, err
	}
	if resp.SessionID == "" {
		return nil, fmt.Errorf("upload response has no session_id")
	}
	return &resp, nil
}

// Query asks a question about the document of a session.
func (c *Client) Query(ctx context.Context, q QueryRequest) (*QueryResponse, error) {
	jsonData, err := json.Marshal(q)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	var resp QueryResponse
	if err := c.do(ctx, "query", http.MethodPost, "/query", bytes.NewReader(jsonData), "application/json", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Health probes the liveness endpoint.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	var resp HealthResponse
	if err := c.do(ctx, "health", http.MethodGet, "/health", nil, "", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetSession fetches server-side metadata for a session.
func (c *Client) GetSession(ctx context.Context, id string) (*SessionInfo, error) {
	var resp SessionInfo
	if err := c.do(ctx, "get_session", http.MethodGet, "/sessions/"+url.PathEscape(id), nil, "", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeleteSession discards server-side session state.
func (c *Client) DeleteSession(ctx context.Context, id string) error {
	var resp DeleteResponse
	if err := c.do(ctx, "delete_session", http.MethodDelete, "/sessions/"+url.PathEscape(id), nil, "", &resp); err != nil {
		return err
	}
	c.logger.Debug("session deleted", "session_id", id, "status", resp.Status)
	if resp.Status != "deleted" {
		return fmt.Errorf("delete session %s: unexpected status %q", id, resp.Status)
	}
	return nil
}

// do performs one request and decodes a JSON body into out when out is non-nil.
func (c *Client) do(ctx context.Context, op, method, path string, body io.Reader, contentType string, out any) error {
	ctx, span := c.tracer.Start(ctx, op+"_api_call",
		trace.WithAttributes(
			attribute.String("http.method", method),
			attribute.String("http.route", path),
		),
	)
	defer span.End()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}
	}

	start := time.Now()
	requestID := uuid.NewString()

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport")
		c.logger.Warn("request failed", "op", op, "request_id", requestID, "error", err)
		return fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	elapsed := time.Since(start)
	if c.duration != nil {
		c.duration.Record(ctx, float64(elapsed.Milliseconds()),
			metric.WithAttributes(attribute.String("op", op), attribute.Int("status", resp.StatusCode)))
	}
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	c.logger.Debug("request complete", "op", op, "status", resp.StatusCode,
		"duration_ms", elapsed.Milliseconds(), "request_id", requestID)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := newAPIError(resp.StatusCode, resp.Status, respBody)
		span.SetStatus(codes.Error, apiErr.Error())
		return apiErr
	}

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}
