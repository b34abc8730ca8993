// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package resolve

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/poiesic/faqbot/cascade"
	"github.com/poiesic/faqbot/core"
)

// TracerName is the instrumentation scope of resolver spans.
const TracerName = "github.com/poiesic/faqbot/resolve"

// IntentMatcher is the intent-bank stage.
type IntentMatcher interface {
	Match(ctx context.Context, query string) (*core.Result, error)
	Explain(ctx context.Context, query string, topK int, threshold float64) (*core.Explanation, error)
	TopK() int
	Threshold() float64
}

// DocumentResolver is the document cascade stage.
type DocumentResolver interface {
	ResolveWithMonitor(ctx context.Context, query string, monitor cascade.Monitor) core.Result
}

// Resolver orchestrates the intent matcher and the document cascade.
type Resolver struct {
	matcher IntentMatcher
	cascade DocumentResolver
	tracer  trace.Tracer
	logger  *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger.With("component", "resolver")
		return nil
	}
}

// WithTracerProvider sets the tracer provider. Default is the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(r *Resolver) error {
		if tp != nil {
			r.tracer = tp.Tracer(TracerName)
		}
		return nil
	}
}

// New creates a resolver.
func New(matcher IntentMatcher, cascade DocumentResolver, opts ...Option) (*Resolver, error) {
	if matcher == nil {
		return nil, ErrMatcherRequired
	}
	if cascade == nil {
		return nil, ErrCascadeRequired
	}

	r := &Resolver{
		matcher: matcher,
		cascade: cascade,
		tracer:  otel.Tracer(TracerName),
		logger:  slog.Default().With("component", "resolver"),
	}

	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// Resolve answers query.
func (r *Resolver) Resolve(ctx context.Context, query string) core.Result {
	return r.ResolveWithMonitor(ctx, query, nil)
}

// ResolveWithMonitor answers query, reporting each stage to monitor.
func (r *Resolver) ResolveWithMonitor(ctx context.Context, query string, monitor Monitor) core.Result {
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	ctx, span := r.tracer.Start(ctx, "resolve",
		trace.WithAttributes(attribute.Int("faqbot.query.length", len([]rune(query)))))
	defer span.End()

	monitor.Start(query)

	if result, ok := r.matchIntent(ctx, query, monitor); ok {
		r.finish(span, monitor, result)
		return result
	}

	result := r.resolveDocuments(ctx, query, monitor)
	r.finish(span, monitor, result)
	return result
}

func (r *Resolver) matchIntent(ctx context.Context, query string, monitor Monitor) (core.Result, bool) {
	ctx, span := r.tracer.Start(ctx, "resolve.intent")
	defer span.End()

	result, err := r.matcher.Match(ctx, query)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "intent stage unavailable")
		r.logger.Warn("intent stage unavailable, falling back to documents", "err", err)
		monitor.IntentUnavailable(err)
		return core.Result{}, false
	}
	if result == nil {
		span.SetAttributes(attribute.Bool("faqbot.intent.matched", false))
		monitor.IntentMissed()
		return core.Result{}, false
	}

	span.SetAttributes(attribute.Bool("faqbot.intent.matched", true))
	monitor.IntentMatched(*result)
	return *result, true
}

func (r *Resolver) resolveDocuments(ctx context.Context, query string, monitor Monitor) core.Result {
	ctx, span := r.tracer.Start(ctx, "resolve.cascade")
	defer span.End()

	result := r.cascade.ResolveWithMonitor(ctx, query, monitor)
	if result.Kind == core.KindError {
		span.SetStatus(codes.Error, result.Message)
	}
	return result
}

func (r *Resolver) finish(span trace.Span, monitor Monitor, result core.Result) {
	span.SetAttributes(attribute.String("faqbot.result.kind", string(result.Kind)))
	if result.Kind == core.KindError {
		span.SetStatus(codes.Error, result.Message)
		r.logger.Warn("query resolved with error", "message", result.Message)
	} else {
		r.logger.Debug("query resolved", "kind", result.Kind)
	}
	monitor.Finish(result)
}

// Explain returns the matcher's ranked candidates for query.
// topK <= 0 and threshold < 0 select the matcher's configured values.
func (r *Resolver) Explain(ctx context.Context, query string, topK int, threshold float64) (*core.Explanation, error) {
	ctx, span := r.tracer.Start(ctx, "resolve.explain")
	defer span.End()

	if topK <= 0 {
		topK = r.matcher.TopK()
	}
	if threshold < 0 {
		threshold = r.matcher.Threshold()
	}
	explanation, err := r.matcher.Explain(ctx, query, topK, threshold)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return explanation, nil
}
