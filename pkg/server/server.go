package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/flosch/pongo2/v6"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/goliatone/go-schemaforge/pkg/export"
	"github.com/goliatone/go-schemaforge/pkg/session"
)

const instrumentationName = "github.com/goliatone/go-schemaforge/pkg/server"

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger for access and hub entries.
func WithLogger(logger Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithTracerProvider sets a custom tracer provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *Server) {
		if tp != nil {
			s.tracerProvider = tp
		}
	}
}

// WithMeterProvider sets a custom meter provider.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(s *Server) {
		if mp != nil {
			s.meterProvider = mp
		}
	}
}

// WithDefaultFormat selects the export format used when /api/schema has no
// format query parameter.
func WithDefaultFormat(format string) Option {
	return func(s *Server) {
		if format != "" {
			s.defaultFormat = format
		}
	}
}

// WithTitle sets the editor page heading.
func WithTitle(title string) Option {
	return func(s *Server) {
		if title != "" {
			s.title = title
		}
	}
}

// WithWebSocketWriteTimeout bounds each websocket write.
func WithWebSocketWriteTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.writeTimeout = d
		}
	}
}

// WithCheckOrigin sets the origin check used for websocket upgrades.
func WithCheckOrigin(fn func(r *http.Request) bool) Option {
	return func(s *Server) {
		s.checkOrigin = fn
	}
}

// Server serves the editor for a single session.
type Server struct {
	session       *session.Session
	logger        Logger
	defaultFormat string
	title         string
	writeTimeout  time.Duration
	checkOrigin   func(r *http.Request) bool

	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
	tracer         trace.Tracer
	requests       metric.Int64Counter
	latency        metric.Float64Histogram
	mutations      metric.Int64Counter

	page        *pongo2.Template
	hub         *hub
	unsubscribe func()
	handler     http.Handler
}

// New wires a Server around sess. Call Close to detach it from the session.
func New(sess *session.Session, options ...Option) (*Server, error) {
	if sess == nil {
		return nil, errors.New("server: session is required")
	}
	s := &Server{
		session:        sess,
		logger:         NopLogger{},
		defaultFormat:  export.FormatJSON,
		title:          "Schema editor",
		writeTimeout:   10 * time.Second,
		tracerProvider: otel.GetTracerProvider(),
		meterProvider:  otel.GetMeterProvider(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}

	s.tracer = s.tracerProvider.Tracer(instrumentationName)
	meter := s.meterProvider.Meter(instrumentationName)
	var err error
	if s.requests, err = meter.Int64Counter(
		"schemaforge.http.requests",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"),
	); err != nil {
		return nil, err
	}
	if s.latency, err = meter.Float64Histogram(
		"schemaforge.http.request.duration",
		metric.WithDescription("Duration of HTTP requests"),
		metric.WithUnit("ms"),
	); err != nil {
		return nil, err
	}
	if s.mutations, err = meter.Int64Counter(
		"schemaforge.mutations",
		metric.WithDescription("Field tree edits applied"),
		metric.WithUnit("{edit}"),
	); err != nil {
		return nil, err
	}

	page, err := loadPage()
	if err != nil {
		return nil, err
	}
	s.page = page

	s.hub = newHub(s.logger, s.writeTimeout, s.checkOrigin)
	s.unsubscribe = sess.Subscribe(func(snap session.Snapshot) {
		msg, err := s.preview(snap)
		if err != nil {
			s.logger.Error("build preview", F("error", err))
			return
		}
		s.hub.broadcast(msg)
	})

	s.handler = s.routes()
	return s, nil
}

// Handler returns the routed and instrumented handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Close detaches from the session and disconnects websocket clients.
func (s *Server) Close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
	s.hub.closeAll()
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	handle := func(pattern string, fn http.HandlerFunc) {
		mux.Handle(pattern, s.instrument(pattern, fn))
	}

	handle("GET /api/fields", s.handleListFields)
	handle("POST /api/fields", s.handleAddField)
	handle("POST /api/fields/{path}/properties", s.handleAddProperty)
	handle("PATCH /api/fields/{path}", s.handleUpdateField)
	handle("POST /api/fields/{path}/required", s.handleToggleRequired)
	handle("DELETE /api/fields/{path}", s.handleDeleteField)
	handle("GET /api/schema", s.handleSchema)
	handle("GET /api/lint", s.handleLint)
	handle("GET /ws", s.hub.serve(s.session, s.preview))
	handle("GET /{$}", s.handlePage)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}
