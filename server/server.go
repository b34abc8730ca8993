package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/trace"

	"github.com/poiesic/faqbot/core"
)

const (
	// DefaultExplainTopK is the number of candidates shown by the debug routes.
	DefaultExplainTopK = 5

	intentPreviewLimit  = 20
	examplePreviewLimit = 3
)

var (
	// ErrResolverRequired is returned by New when no resolver is given.
	ErrResolverRequired = errors.New("resolver is required")
)

// Resolver answers questions and explains intent matches.
type Resolver interface {
	Resolve(ctx context.Context, query string) core.Result
	Explain(ctx context.Context, query string, topK int, threshold float64) (*core.Explanation, error)
}

// Server serves the resolution pipeline.
type Server struct {
	resolver  Resolver
	sources   []core.CorpusSource
	responses core.ResponseTable
	tp        trace.TracerProvider
	logger    *slog.Logger
}

// Option configures a Server.
type Option func(*Server) error

// WithCatalog sets the corpus reported by /debug/intents.
func WithCatalog(sources []core.CorpusSource, responses core.ResponseTable) Option {
	return func(s *Server) error {
		s.sources = sources
		s.responses = responses
		return nil
	}
}

// WithTracerProvider sets the tracer provider for request spans.
// Defaults to the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *Server) error {
		s.tp = tp
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger.With("component", "server")
		return nil
	}
}

// New creates a Server.
func New(resolver Resolver, opts ...Option) (*Server, error) {
	if resolver == nil {
		return nil, ErrResolverRequired
	}
	s := &Server{
		resolver:  resolver,
		responses: core.ResponseTable{},
		logger:    slog.Default().With("component", "server"),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Handler returns the routed and instrumented handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /response/{query}", s.handleResponse)
	mux.HandleFunc("GET /Response/{query}", s.handleResponse)
	mux.HandleFunc("GET /answer", s.handleAnswer)
	mux.HandleFunc("POST /answer", s.handleAnswer)
	mux.HandleFunc("GET /debug/intents", s.handleIntents)
	mux.HandleFunc("GET /debug/match", s.handleMatch)
	mux.HandleFunc("GET /debug/{query}", s.handleDebug)
	mux.HandleFunc("GET /healthz", handleHealth)

	var traceOpts []otelhttp.Option
	if s.tp != nil {
		traceOpts = append(traceOpts, otelhttp.WithTracerProvider(s.tp))
	}
	return Chain(mux,
		Recover(s.logger),
		Tracing("faqbot", traceOpts...),
		RequestLogger(s.logger),
	)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		// Provider calls in the document cascade can take tens of seconds.
		WriteTimeout: 3 * time.Minute,
		IdleTimeout:  2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
		s.logger.Info("shutdown signal received")
	}

	shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutCtx)
}

func (s *Server) handleResponse(w http.ResponseWriter, r *http.Request) {
	s.answer(w, r, r.PathValue("query"))
}

func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	s.answer(w, r, r.FormValue("q"))
}

func (s *Server) answer(w http.ResponseWriter, r *http.Request, query string) {
	if strings.TrimSpace(query) == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}
	result := s.resolver.Resolve(r.Context(), query)
	if result.Kind == core.KindError {
		s.logger.Warn("query resolved to error", "message", result.Message)
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleDebug(w http.ResponseWriter, r *http.Request) {
	s.explain(w, r, r.PathValue("query"), DefaultExplainTopK, -1)
}

func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	topK := DefaultExplainTopK
	if v := q.Get("k"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "k must be a positive integer")
			return
		}
		topK = n
	}

	threshold := -1.0
	if v := q.Get("cutoff"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f < 0 || f > 1 {
			writeError(w, http.StatusBadRequest, "cutoff must be a number between 0 and 1")
			return
		}
		threshold = f
	}

	s.explain(w, r, q.Get("query"), topK, threshold)
}

func (s *Server) explain(w http.ResponseWriter, r *http.Request, query string, topK int, threshold float64) {
	if strings.TrimSpace(query) == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}
	exp, err := s.resolver.Explain(r.Context(), query, topK, threshold)
	if err != nil {
		s.logger.Error("explain failed", "error", err)
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, exp)
}

// IntentPreview summarizes one intent for /debug/intents.
type IntentPreview struct {
	Intent   string   `json:"intent"`
	Examples []string `json:"examples_preview"`
}

// Catalog is the /debug/intents payload.
type Catalog struct {
	Files        map[string][]IntentPreview `json:"files"`
	ResponseKeys []string                   `json:"responses_keys"`
}

func (s *Server) handleIntents(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.catalog())
}

func (s *Server) catalog() Catalog {
	c := Catalog{
		Files:        make(map[string][]IntentPreview, len(s.sources)),
		ResponseKeys: make([]string, 0, len(s.responses)),
	}
	for _, src := range s.sources {
		intents := src.Intents
		if len(intents) > intentPreviewLimit {
			intents = intents[:intentPreviewLimit]
		}
		previews := make([]IntentPreview, 0, len(intents))
		for _, it := range intents {
			examples := it.Examples
			if len(examples) > examplePreviewLimit {
				examples = examples[:examplePreviewLimit]
			}
			previews = append(previews, IntentPreview{
				Intent:   it.ID,
				Examples: append([]string{}, examples...),
			})
		}
		c.Files[src.Name] = previews
	}
	for key := range s.responses {
		c.ResponseKeys = append(c.ResponseKeys, key)
	}
	sort.Strings(c.ResponseKeys)
	return c
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, core.ErrorResult(message))
}
