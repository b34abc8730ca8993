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


// Package faqbot wires the corpus, the embedding index and the AI providers
// into a ready-to-use question resolver.
package faqbot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/poiesic/faqbot/ai"
	"github.com/poiesic/faqbot/ai/openai"
	"github.com/poiesic/faqbot/cascade"
	"github.com/poiesic/faqbot/config"
	"github.com/poiesic/faqbot/core"
	"github.com/poiesic/faqbot/corpus"
	"github.com/poiesic/faqbot/index"
	"github.com/poiesic/faqbot/match"
	"github.com/poiesic/faqbot/resolve"
	"github.com/poiesic/faqbot/server"
	"github.com/poiesic/faqbot/storage/badger"
)

const retryBaseDelay = 500 * time.Millisecond

// Corpus is everything loaded from disk at startup.
type Corpus struct {
	Sources   []core.CorpusSource
	Responses core.ResponseTable
	Documents []core.DocumentDescriptor
}

// LoadCorpus reads intents, responses and the document registry.
// A missing document registry yields no documents.
func LoadCorpus(paths config.Paths, logger *slog.Logger) (*Corpus, error) {
	if logger == nil {
		logger = slog.Default()
	}

	sources, err := corpus.LoadIntents(paths.Intents)
	if err != nil {
		return nil, err
	}
	responses, err := corpus.LoadResponses(paths.Domain)
	if err != nil {
		return nil, err
	}

	var documents []core.DocumentDescriptor
	if strings.TrimSpace(paths.Documents) != "" {
		documents, err = corpus.LoadDocuments(paths.Documents)
		if errors.Is(err, os.ErrNotExist) {
			logger.Warn("document registry not found", "path", paths.Documents)
			err = nil
		}
		if err != nil {
			return nil, err
		}
	}

	logger.Info("corpus loaded",
		"sources", len(sources),
		"responses", len(responses),
		"documents", len(documents),
	)
	return &Corpus{Sources: sources, Responses: responses, Documents: documents}, nil
}

// Bot owns every long-lived component of the pipeline.
type Bot struct {
	cfg      *config.Config
	corpus   *Corpus
	provider ai.AIProvider
	cache    *badger.EmbeddingCache
	encoder  *index.Encoder
	index    *index.Index
	resolver *resolve.Resolver
	logger   *slog.Logger
}

// Option configures Open.
type Option func(*options)

type options struct {
	env      *config.Env
	provider ai.AIProvider
	logger   *slog.Logger
	progress io.Writer
	tp       trace.TracerProvider
	rebuild  bool
}

// WithEnv sets where credentials are read from.
// Default is the process environment only.
func WithEnv(env *config.Env) Option {
	return func(o *options) {
		o.env = env
	}
}

// WithProvider replaces the provider built from configuration.
// The Bot takes ownership and closes it.
func WithProvider(provider ai.AIProvider) Option {
	return func(o *options) {
		o.provider = provider
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithProgress prints index build progress to w.
func WithProgress(w io.Writer) Option {
	return func(o *options) {
		o.progress = w
	}
}

// WithTracerProvider sets the tracer provider for resolver spans.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) {
		o.tp = tp
	}
}

// WithRebuild discards cached embeddings for the configured model before building.
func WithRebuild(rebuild bool) Option {
	return func(o *options) {
		o.rebuild = rebuild
	}
}

// Open loads the corpus, embeds it and assembles the resolver.
// Call Close when done.
func Open(ctx context.Context, cfg *config.Config, opts ...Option) (*Bot, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.env == nil {
		o.env = config.NewEnv(os.LookupEnv, nil)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	b := &Bot{cfg: cfg, logger: o.logger.With("component", "faqbot")}
	if err := b.open(ctx, o); err != nil {
		b.Close()
		return nil, err
	}
	return b, nil
}

func (b *Bot) open(ctx context.Context, o *options) error {
	var err error
	b.corpus, err = LoadCorpus(b.cfg.Paths, o.logger)
	if err != nil {
		return err
	}

	b.provider = o.provider
	if b.provider == nil {
		b.provider, err = openai.NewProvider(ctx, b.cfg.AIConfig(o.env))
		if err != nil {
			return fmt.Errorf("%w: %w", core.ErrConfiguration, err)
		}
	}

	encoderOpts := []index.Option{
		index.WithBatchSize(b.cfg.Index.BatchSize),
		index.WithLogger(o.logger),
	}
	if b.cfg.Index.PoolSize > 0 {
		encoderOpts = append(encoderOpts, index.WithPoolSize(b.cfg.Index.PoolSize))
	}
	if b.cfg.Index.MaxRetries > 0 {
		encoderOpts = append(encoderOpts, index.WithRetry(b.cfg.Index.MaxRetries, retryBaseDelay))
	}
	if b.cfg.Paths.Cache != "" {
		b.cache, err = badger.OpenEmbeddingCache(b.cfg.Paths.Cache, badger.WithLogger(o.logger))
		if err != nil {
			return err
		}
		encoderOpts = append(encoderOpts, index.WithCache(b.cache))
	}
	b.encoder, err = index.NewEncoder(b.provider.Embedder(), encoderOpts...)
	if err != nil {
		return err
	}

	if o.rebuild && b.cache != nil {
		if err := b.cache.PurgeEmbeddings(ctx, b.encoder.ModelID()); err != nil {
			return err
		}
		b.logger.Info("embedding cache purged", "model", b.encoder.ModelID())
	}

	buildOpts := []index.BuildOption{index.WithBuildLogger(o.logger)}
	if o.progress != nil {
		buildOpts = append(buildOpts, index.WithProgress(o.progress, b.cfg.Index.BatchSize))
	}
	b.index, err = index.Build(ctx, b.corpus.Sources, b.encoder, buildOpts...)
	if err != nil {
		return err
	}

	matcher, err := match.NewMatcher(b.index, b.encoder, b.corpus.Responses,
		match.WithTopK(b.cfg.Match.TopK),
		match.WithThreshold(b.cfg.Match.Threshold),
		match.WithLogger(o.logger),
	)
	if err != nil {
		return err
	}

	cascadeOpts := []cascade.Option{cascade.WithLogger(o.logger)}
	if b.cfg.Cascade.Sentinel != "" {
		cascadeOpts = append(cascadeOpts, cascade.WithSentinel(b.cfg.Cascade.Sentinel))
	}
	cascadeOpts = append(cascadeOpts, cascade.WithPrompts(b.cfg.Cascade.PrimaryPrompt, b.cfg.Cascade.SecondaryPrompt))
	documents, err := cascade.New(b.corpus.Documents, corpus.NewFileStore(b.cfg.Paths.Files),
		b.provider.Primary(), b.provider.Secondary(), cascadeOpts...)
	if err != nil {
		return err
	}

	resolverOpts := []resolve.Option{resolve.WithLogger(o.logger)}
	if o.tp != nil {
		resolverOpts = append(resolverOpts, resolve.WithTracerProvider(o.tp))
	}
	b.resolver, err = resolve.New(matcher, documents, resolverOpts...)
	return err
}

// Close releases the worker pool, the cache and the provider.
func (b *Bot) Close() error {
	var errs []error
	if b.encoder != nil {
		b.encoder.Release()
	}
	if b.cache != nil {
		if err := b.cache.Close(); err != nil {
			b.logger.Error("error closing embedding cache", "err", err)
			errs = append(errs, err)
		}
	}
	if b.provider != nil {
		if err := b.provider.Close(); err != nil {
			b.logger.Error("error closing AI provider", "err", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Resolve answers query.
func (b *Bot) Resolve(ctx context.Context, query string) core.Result {
	return b.resolver.Resolve(ctx, query)
}

// ResolveWithMonitor answers query, reporting each stage to monitor.
func (b *Bot) ResolveWithMonitor(ctx context.Context, query string, monitor resolve.Monitor) core.Result {
	return b.resolver.ResolveWithMonitor(ctx, query, monitor)
}

// Explain returns the ranked intent candidates for query.
func (b *Bot) Explain(ctx context.Context, query string, topK int, threshold float64) (*core.Explanation, error) {
	return b.resolver.Explain(ctx, query, topK, threshold)
}

// Index returns the embedding index.
func (b *Bot) Index() *index.Index {
	return b.index
}

// CachedEmbeddings reports how many vectors the cache holds for the active model.
// Returns 0 when the cache is disabled.
func (b *Bot) CachedEmbeddings(ctx context.Context) (int, error) {
	if b.cache == nil {
		return 0, nil
	}
	return b.cache.CountEmbeddings(ctx, b.encoder.ModelID())
}

// NewServer creates an HTTP server over this bot.
func (b *Bot) NewServer(opts ...server.Option) (*server.Server, error) {
	opts = append([]server.Option{
		server.WithCatalog(b.corpus.Sources, b.corpus.Responses),
		server.WithLogger(b.logger),
	}, opts...)
	return server.New(b.resolver, opts...)
}
