package chatbot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/AndreyKorzunin/projectassist/internal/backend"
	"github.com/AndreyKorzunin/projectassist/internal/cache"
	"github.com/AndreyKorzunin/projectassist/internal/config"
	"github.com/AndreyKorzunin/projectassist/internal/session"
	"github.com/AndreyKorzunin/projectassist/internal/stats"
	"github.com/AndreyKorzunin/projectassist/internal/store"
	"github.com/AndreyKorzunin/projectassist/internal/telemetry"
)

var (
	ErrNoSession       = errors.New("no document loaded")
	ErrEmptyQuery      = errors.New("empty query")
	ErrBusy            = errors.New("a query is already running")
	ErrQueryTooShort   = fmt.Errorf("query must be at least %d characters", MinQueryLength)
	ErrQueryTooLong    = fmt.Errorf("query must be at most %d characters", MaxQueryLength)
	ErrUnsupportedFile = errors.New("unsupported file type")
	ErrFileTooLarge    = errors.New("file is too large")
	ErrSessionClosed   = errors.New("session was closed while the query was running")
	ErrNoHistory       = errors.New("history is not enabled")
)

// Backend is the document-analysis service.
type Backend interface {
	Upload(ctx context.Context, filename string, r io.Reader) (*backend.UploadResponse, error)
	Query(ctx context.Context, q backend.QueryRequest) (*backend.QueryResponse, error)
	Health(ctx context.Context) (*backend.HealthResponse, error)
	GetSession(ctx context.Context, id string) (*backend.SessionInfo, error)
	DeleteSession(ctx context.Context, id string) error
}

// History keeps past sessions and their transcripts.
type History interface {
	SaveSession(ctx context.Context, sess *session.Session) error
	SaveMessages(ctx context.Context, sessionID string, messages []session.Message) error
	ListSessions(ctx context.Context, limit int) ([]store.SessionSummary, error)
	LoadMessages(ctx context.Context, sessionID string) ([]session.Message, error)
}

// Deps are the collaborators of a ChatBot. Only Backend is required.
type Deps struct {
	Backend Backend
	Stats   *stats.Store
	History History
	Cache   *cache.ResponseCache
	Logger  *slog.Logger
	Tracer  trace.Tracer
	Meter   metric.Meter
}

// ChatBot represents the main application. It owns the active session, the
// selected task type, the view state, the transcript and the counters.
type ChatBot struct {
	config     config.Config
	backend    Backend
	statsStore *stats.Store
	history    History
	cache      *cache.ResponseCache
	logger     *slog.Logger
	tracer     trace.Tracer

	documentsCounter metric.Int64Counter
	queriesCounter   metric.Int64Counter

	transcript *session.Transcript

	mu       sync.Mutex
	session  *session.Session
	taskType session.TaskType
	view     session.ViewState
	stats    stats.Stats
	health   Health
	busy     bool

	closers []func()
}

// New creates a ChatBot from explicit collaborators.
func New(ctx context.Context, cfg config.Config, deps Deps) (*ChatBot, error) {
	if deps.Backend == nil {
		return nil, errors.New("chatbot: backend is required")
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Stats == nil {
		deps.Stats = stats.NewStore(stats.NewMemoryKV())
	}
	if deps.Cache == nil {
		deps.Cache = cache.NewResponseCache(cfg.CacheTTL())
	}
	if deps.Tracer == nil || deps.Meter == nil {
		tracer, meter := telemetry.Noop()
		if deps.Tracer == nil {
			deps.Tracer = tracer
		}
		if deps.Meter == nil {
			deps.Meter = meter
		}
	}

	cb := &ChatBot{
		config:     cfg,
		backend:    deps.Backend,
		statsStore: deps.Stats,
		history:    deps.History,
		cache:      deps.Cache,
		logger:     deps.Logger,
		tracer:     deps.Tracer,
		transcript: session.NewTranscript(),
		taskType:   cfg.DefaultTask(),
		view:       session.ViewUpload,
	}

	var err error
	cb.documentsCounter, err = deps.Meter.Int64Counter(
		"docassist.documents",
		metric.WithDescription("Documents uploaded"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create documents counter: %w", err)
	}
	cb.queriesCounter, err = deps.Meter.Int64Counter(
		"docassist.queries",
		metric.WithDescription("Queries sent"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create queries counter: %w", err)
	}

	st, err := cb.statsStore.Load(ctx)
	if err != nil {
		cb.logger.Warn("failed to load stats, starting from zero", "error", err)
	}
	cb.stats = st

	return cb, nil
}

// NewChatBot wires a ChatBot with logging, telemetry, the SQLite store and
// the HTTP client described by cfg.
func NewChatBot(ctx context.Context, cfg config.Config) (*ChatBot, error) {
	logger, logFile, err := telemetry.InitLogger(cfg.LogDir(), cfg.Debug)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	closers := []func(){func() { logFile.Close() }}
	fail := func(err error) (*ChatBot, error) {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
		return nil, err
	}

	tracer, meter := telemetry.Noop()
	if cfg.Telemetry {
		t, m, cleanup, err := telemetry.InitTelemetry(ctx, cfg.LogDir())
		if err != nil {
			return fail(fmt.Errorf("failed to initialize telemetry: %w", err))
		}
		tracer, meter = t, m
		closers = append(closers, cleanup)
	}

	db, err := store.Open(cfg.DatabasePath())
	if err != nil {
		return fail(fmt.Errorf("failed to initialize database: %w", err))
	}
	closers = append(closers, func() {
		if err := db.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	})

	if cfg.Debug {
		logger.Info("Debug mode enabled")
	}

	client, err := backend.NewClient(cfg.APIURL,
		backend.WithTimeout(cfg.Timeout()),
		backend.WithRateLimit(cfg.RateLimit, 1),
		backend.WithLogger(logger),
		backend.WithTelemetry(tracer, meter),
	)
	if err != nil {
		return fail(err)
	}

	cb, err := New(ctx, cfg, Deps{
		Backend: client,
		Stats:   stats.NewStore(db),
		History: db,
		Logger:  logger,
		Tracer:  tracer,
		Meter:   meter,
	})
	if err != nil {
		return fail(err)
	}
	cb.closers = closers
	return cb, nil
}

// Close saves the transcript and releases the resources opened by NewChatBot.
func (cb *ChatBot) Close() {
	cb.saveTranscript(context.Background(), cb.Session())
	for i := len(cb.closers) - 1; i >= 0; i-- {
		cb.closers[i]()
	}
	cb.closers = nil
}

// Session returns a copy of the active session, or nil.
func (cb *ChatBot) Session() *session.Session {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if cb.session == nil {
		return nil
	}
	sess := *cb.session
	return &sess
}

// TaskType returns the selected task type.
func (cb *ChatBot) TaskType() session.TaskType {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.taskType
}

// SetTaskType selects the analysis used by the next queries.
func (cb *ChatBot) SetTaskType(t session.TaskType) error {
	parsed, err := session.ParseTaskType(string(t))
	if err != nil {
		return err
	}
	cb.mu.Lock()
	cb.taskType = parsed
	cb.mu.Unlock()
	cb.logger.Debug("task type changed", "task_type", parsed)
	return nil
}

// View returns the current view state.
func (cb *ChatBot) View() session.ViewState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.view
}

// Busy reports whether a query is in flight.
func (cb *ChatBot) Busy() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.busy
}

// Stats returns the current counters.
func (cb *ChatBot) Stats() stats.Stats {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.stats
}

// Messages returns the transcript of the active session.
func (cb *ChatBot) Messages() []session.Message {
	return cb.transcript.Messages()
}

// Transcript exposes the live transcript for presenters.
func (cb *ChatBot) Transcript() *session.Transcript {
	return cb.transcript
}

// Config returns the configuration the ChatBot was created with.
func (cb *ChatBot) Config() config.Config {
	return cb.config
}

// saveStats persists st; failures are logged and never block the caller.
func (cb *ChatBot) saveStats(ctx context.Context, st stats.Stats) {
	if err := cb.statsStore.Save(ctx, st); err != nil {
		cb.logger.Error("failed to save stats", "error", err)
	}
}
