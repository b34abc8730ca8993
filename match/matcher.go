package match

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/faqbot/core"
	"github.com/poiesic/faqbot/index"
	"github.com/poiesic/faqbot/textnorm"
)

const (
	// DefaultTopK is the number of candidates considered per query.
	DefaultTopK = 3
	// DefaultThreshold is the minimum cosine similarity for a match.
	DefaultThreshold = 0.65
)

// Matcher answers queries from the intent bank.
// It is read-only after construction and safe for concurrent use.
type Matcher struct {
	index     *index.Index
	encoder   *index.Encoder
	responses core.ResponseTable
	topK      int
	threshold float64
	logger    *slog.Logger
}

// Option configures a Matcher.
type Option func(*Matcher) error

// WithTopK sets how many ranked candidates are considered. Default: 3.
func WithTopK(k int) Option {
	return func(m *Matcher) error {
		if k < 1 {
			return ErrInvalidTopK
		}
		m.topK = k
		return nil
	}
}

// WithThreshold sets the minimum accepted similarity. Default: 0.65.
func WithThreshold(threshold float64) Option {
	return func(m *Matcher) error {
		if threshold < -1 || threshold > 1 {
			return ErrInvalidThreshold
		}
		m.threshold = threshold
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(m *Matcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		m.logger = logger.With("component", "matcher")
		return nil
	}
}

// NewMatcher creates a matcher over ix. Queries are embedded through encoder,
// which must be the encoder the index was built with.
// A nil responses table is treated as empty.
func NewMatcher(ix *index.Index, encoder *index.Encoder, responses core.ResponseTable, opts ...Option) (*Matcher, error) {
	if ix == nil {
		return nil, ErrIndexRequired
	}
	if encoder == nil {
		return nil, ErrEncoderRequired
	}
	if encoder.ModelID() != ix.ModelID() {
		return nil, fmt.Errorf("%w: index %q, encoder %q", ErrModelMismatch, ix.ModelID(), encoder.ModelID())
	}
	if responses == nil {
		responses = core.ResponseTable{}
	}

	m := &Matcher{
		index:     ix,
		encoder:   encoder,
		responses: responses,
		topK:      DefaultTopK,
		threshold: DefaultThreshold,
		logger:    slog.Default().With("component", "matcher"),
	}

	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// TopK returns the configured candidate count.
func (m *Matcher) TopK() int {
	return m.topK
}

// Threshold returns the configured similarity threshold.
func (m *Matcher) Threshold() float64 {
	return m.threshold
}

// Match returns the canned answer of the best qualifying intent, or nil.
// An error means the query could not be embedded; the intent stage is then unavailable.
func (m *Matcher) Match(ctx context.Context, query string) (*core.Result, error) {
	normalized := textnorm.Normalize(query)
	if normalized == "" {
		return nil, nil
	}

	ranked, err := m.rank(ctx, normalized, m.topK)
	if err != nil {
		return nil, err
	}

	for _, s := range ranked {
		if s.Score < m.threshold {
			break
		}
		record := m.index.Record(s.Index)
		variant, ok := m.responses.Lookup(core.ResponseKey(record.IntentID))
		if !ok {
			m.logger.Debug("qualifying intent has no response", "intent", record.IntentID, "score", s.Score)
			continue
		}
		m.logger.Debug("intent matched", "intent", record.IntentID, "score", s.Score, "example", record.RawText)
		result := core.IntentResult(variant.Text)
		return &result, nil
	}

	return nil, nil
}

// Explain returns the ranked candidates for query without deciding a winner.
// topK <= 0 uses the configured value. threshold only sets Candidate.Accepted.
func (m *Matcher) Explain(ctx context.Context, query string, topK int, threshold float64) (*core.Explanation, error) {
	if topK <= 0 {
		topK = m.topK
	}
	normalized := textnorm.Normalize(query)
	explanation := &core.Explanation{
		Query:      query,
		Normalized: normalized,
		Threshold:  threshold,
		Tried:      []core.Candidate{},
	}
	if normalized == "" {
		return explanation, nil
	}

	ranked, err := m.rank(ctx, normalized, topK)
	if err != nil {
		return nil, err
	}

	for i, s := range ranked {
		record := m.index.Record(s.Index)
		key := core.ResponseKey(record.IntentID)
		explanation.Tried = append(explanation.Tried, core.Candidate{
			Rank:           i + 1,
			Index:          s.Index,
			IntentID:       record.IntentID,
			Example:        record.RawText,
			SourceGroup:    record.SourceGroup,
			Score:          s.Score,
			ResponseKey:    key,
			ResponseExists: m.responses.Has(key),
			Accepted:       s.Score >= threshold,
		})
	}
	return explanation, nil
}

func (m *Matcher) rank(ctx context.Context, normalized string, topK int) ([]index.Scored, error) {
	vector, err := m.encoder.EncodeQuery(ctx, normalized)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrQueryEmbedding, err)
	}
	return m.index.Rank(vector, topK)
}
