package index

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	"github.com/poiesic/faqbot/core"
	"github.com/poiesic/faqbot/textnorm"
)

// Index is the immutable set of example records and their vectors.
type Index struct {
	records []core.ExampleRecord
	vectors [][]float32
	modelID string
}

// Scored is one ranked record position.
type Scored struct {
	Index int
	Score float64
}

// Len returns the number of indexed examples.
func (ix *Index) Len() int {
	return len(ix.records)
}

// ModelID returns the embedding model the index was built with.
func (ix *Index) ModelID() string {
	return ix.modelID
}

// Record returns the record at insertion position i.
func (ix *Index) Record(i int) core.ExampleRecord {
	return ix.records[i]
}

// Rank scores query against every record and returns the topK best.
// Equal scores are ordered by insertion position, lowest first.
func (ix *Index) Rank(query []float32, topK int) ([]Scored, error) {
	if topK <= 0 || len(ix.records) == 0 {
		return nil, nil
	}

	scored := make([]Scored, len(ix.vectors))
	for i, v := range ix.vectors {
		score, err := Cosine(query, v)
		if err != nil {
			return nil, fmt.Errorf("%w: query has %d dimensions, index has %d", err, len(query), len(v))
		}
		scored[i] = Scored{Index: i, Score: score}
	}

	sort.Slice(scored, func(a, b int) bool {
		if scored[a].Score != scored[b].Score {
			return scored[a].Score > scored[b].Score
		}
		return scored[a].Index < scored[b].Index
	})

	if topK > len(scored) {
		topK = len(scored)
	}
	return scored[:topK], nil
}

type buildOptions struct {
	logger   *slog.Logger
	progress io.Writer
	every    int
}

// BuildOption configures Build.
type BuildOption func(*buildOptions)

// WithBuildLogger sets the logger used while building.
func WithBuildLogger(logger *slog.Logger) BuildOption {
	return func(o *buildOptions) {
		o.logger = logger
	}
}

// WithProgress prints embedding progress to w every `every` examples.
func WithProgress(w io.Writer, every int) BuildOption {
	return func(o *buildOptions) {
		o.progress = w
		o.every = every
	}
}

// Build validates, normalizes and embeds every example in sources.
// Records follow source order, then intent order, then example order.
// Any intent without an id fails the whole build with core.ErrMalformedCorpus.
func Build(ctx context.Context, sources []core.CorpusSource, encoder *Encoder, opts ...BuildOption) (*Index, error) {
	if encoder == nil {
		return nil, ErrEncoderRequired
	}
	o := buildOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	logger := o.logger.With("component", "index")

	var records []core.ExampleRecord
	for _, source := range sources {
		for i := range source.Intents {
			intent := &source.Intents[i]
			if err := core.ValidateIntent(source.Name, i, intent); err != nil {
				return nil, err
			}

			before := len(records)
			for _, example := range intent.Examples {
				raw := strings.TrimSpace(example)
				normalized := textnorm.Normalize(raw)
				if normalized == "" {
					continue
				}
				records = append(records, core.ExampleRecord{
					IntentID:       intent.ID,
					SourceGroup:    source.Name,
					RawText:        raw,
					NormalizedText: normalized,
				})
			}
			if len(records) == before {
				logger.Warn("intent has no examples", "intent", intent.ID, "source", source.Name)
			}
		}
	}

	texts := make([]string, len(records))
	for i, r := range records {
		texts[i] = r.NormalizedText
	}

	var onBatch func(int)
	var progress *Progress
	if o.progress != nil {
		progress = NewProgress(o.progress, len(texts), o.every)
		onBatch = progress.Add
	}

	vectors, err := encoder.EncodeAll(ctx, texts, onBatch)
	if err != nil {
		return nil, fmt.Errorf("building index: %w", err)
	}
	if progress != nil {
		progress.Done()
	}

	ix := &Index{
		records: records,
		vectors: vectors,
		modelID: encoder.ModelID(),
	}
	logger.Info("index built", "examples", ix.Len(), "sources", len(sources), "model", ix.modelID)
	return ix, nil
}
