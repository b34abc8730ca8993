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


package index

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/poiesic/faqbot/ai"
	"github.com/poiesic/faqbot/storage"
)

const (
	defaultBatchSize      = 64
	defaultMaxRetries     = 3
	defaultRetryBaseDelay = 500 * time.Millisecond
)

// Encoder turns normalized text into vectors through one embedding model.
// Corpus batches and query embeddings both run on its worker pool.
type Encoder struct {
	embedder       ai.Embedder
	cache          storage.EmbeddingCache
	pool           *ants.Pool
	batchSize      int
	maxRetries     int
	retryBaseDelay time.Duration
	normalize      bool
	logger         *slog.Logger
}

// Option configures an Encoder.
type Option func(*Encoder) error

// WithPoolSize sets the worker pool size.
// Default is runtime.NumCPU(), with a minimum of 2.
func WithPoolSize(size int) Option {
	return func(e *Encoder) error {
		if size < 1 {
			size = 1
		}
		if e.pool != nil {
			e.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		e.pool = pool
		return nil
	}
}

// WithBatchSize sets how many texts are sent per embedding call. Default: 64.
func WithBatchSize(size int) Option {
	return func(e *Encoder) error {
		if size < 1 {
			size = 1
		}
		e.batchSize = size
		return nil
	}
}

// WithRetry sets the retry policy for corpus embedding batches.
// Query embeddings are never retried.
func WithRetry(maxAttempts int, baseDelay time.Duration) Option {
	return func(e *Encoder) error {
		if maxAttempts <= 0 {
			return ErrInvalidMaxAttempts
		}
		e.maxRetries = maxAttempts
		e.retryBaseDelay = baseDelay
		return nil
	}
}

// WithCache sets the embedding cache consulted before the embedder.
func WithCache(cache storage.EmbeddingCache) Option {
	return func(e *Encoder) error {
		e.cache = cache
		return nil
	}
}

// WithNormalization controls L2 normalization of every vector. Default: on.
func WithNormalization(enabled bool) Option {
	return func(e *Encoder) error {
		e.normalize = enabled
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Encoder) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger.With("component", "encoder")
		return nil
	}
}

// NewEncoder creates an encoder around embedder.
// Call Release when done to stop the worker pool.
func NewEncoder(embedder ai.Embedder, opts ...Option) (*Encoder, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	poolSize := max(runtime.NumCPU(), 2)
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	e := &Encoder{
		embedder:       embedder,
		pool:           pool,
		batchSize:      defaultBatchSize,
		maxRetries:     defaultMaxRetries,
		retryBaseDelay: defaultRetryBaseDelay,
		normalize:      true,
		logger:         slog.Default().With("component", "encoder"),
	}

	for _, opt := range opts {
		if optErr := opt(e); optErr != nil {
			e.Release()
			return nil, optErr
		}
	}

	return e, nil
}

// ModelID identifies the embedding space of every vector this encoder produces.
func (e *Encoder) ModelID() string {
	return e.embedder.ModelID()
}

// Release stops the worker pool. The encoder must not be used afterwards.
func (e *Encoder) Release() {
	if e.pool != nil {
		e.pool.Release()
	}
}

type encodeResult struct {
	vector []float32
	err    error
}

// EncodeQuery embeds one already-normalized query on the worker pool.
// It returns as soon as ctx is done; the abandoned call finishes in the background.
func (e *Encoder) EncodeQuery(ctx context.Context, text string) ([]float32, error) {
	done := make(chan encodeResult, 1)
	err := e.pool.Submit(func() {
		v, err := e.embedder.EmbedText(ctx, text)
		done <- encodeResult{vector: v, err: err}
	})
	if err != nil {
		return nil, fmt.Errorf("submitting query embedding: %w", err)
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-done:
		if r.err != nil {
			return nil, r.err
		}
		if len(r.vector) == 0 {
			return nil, fmt.Errorf("%w: empty query vector", ErrEmbeddingCountMismatch)
		}
		if e.normalize {
			return NormalizeL2(r.vector), nil
		}
		return r.vector, nil
	}
}

// EncodeAll embeds texts in batches and returns vectors parallel to texts.
// Cached vectors are reused and fresh ones are written back to the cache.
// onBatch, if non-nil, is called with the size of every completed batch.
func (e *Encoder) EncodeAll(ctx context.Context, texts []string, onBatch func(n int)) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	modelID := e.ModelID()

	if e.cache != nil && len(texts) > 0 {
		cached, err := e.cache.GetEmbeddings(ctx, modelID, texts)
		if err != nil {
			e.logger.Warn("embedding cache lookup failed, embedding everything", "err", err)
		} else {
			copy(vectors, cached)
		}
	}

	var missing []int
	for i, v := range vectors {
		if len(v) == 0 {
			missing = append(missing, i)
		}
	}
	if hits := len(texts) - len(missing); hits > 0 {
		e.logger.Info("reusing cached embeddings", "model", modelID, "hits", hits, "misses", len(missing))
		if onBatch != nil {
			onBatch(hits)
		}
	}

	if err := e.embedMissing(ctx, texts, vectors, missing, onBatch); err != nil {
		return nil, err
	}

	if e.cache != nil && len(missing) > 0 {
		fresh := make([]string, len(missing))
		freshVectors := make([][]float32, len(missing))
		for j, idx := range missing {
			fresh[j] = texts[idx]
			freshVectors[j] = vectors[idx]
		}
		if err := e.cache.PutEmbeddings(ctx, modelID, fresh, freshVectors); err != nil {
			e.logger.Warn("failed to update embedding cache", "err", err)
		}
	}

	if e.normalize {
		for i := range vectors {
			vectors[i] = NormalizeL2(vectors[i])
		}
	}
	return vectors, nil
}

// embedMissing fills vectors[idx] for every idx in missing.
// Each batch writes only its own positions, so batches may finish in any order.
func (e *Encoder) embedMissing(ctx context.Context, texts []string, vectors [][]float32, missing []int, onBatch func(n int)) error {
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	fail := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
	}

	for start := 0; start < len(missing); start += e.batchSize {
		batch := missing[start:min(start+e.batchSize, len(missing))]

		wg.Add(1)
		err := e.pool.Submit(func() {
			defer wg.Done()

			batchTexts := make([]string, len(batch))
			for j, idx := range batch {
				batchTexts[j] = texts[idx]
			}

			var embedded [][]float32
			err := retryWithBackoff(ctx, e.logger, e.maxRetries, e.retryBaseDelay, func() error {
				var err error
				embedded, err = e.embedder.EmbedTexts(ctx, batchTexts)
				if err != nil {
					return err
				}
				if len(embedded) != len(batchTexts) {
					return fmt.Errorf("%w: expected %d, got %d", ErrEmbeddingCountMismatch, len(batchTexts), len(embedded))
				}
				for j, v := range embedded {
					if len(v) == 0 {
						return fmt.Errorf("%w: empty vector for text %d of batch", ErrEmbeddingCountMismatch, j)
					}
				}
				return nil
			})
			if err != nil {
				fail(fmt.Errorf("failed to generate embeddings after %d attempts: %w", e.maxRetries, err))
				return
			}

			for j, idx := range batch {
				vectors[idx] = embedded[j]
			}
			if onBatch != nil {
				onBatch(len(batch))
			}
		})
		if err != nil {
			wg.Done()
			fail(fmt.Errorf("submitting embedding batch: %w", err))
			break
		}
	}

	wg.Wait()
	return firstErr
}
