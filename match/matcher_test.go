package match

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/faqbot/ai/mock"
	"github.com/poiesic/faqbot/core"
	"github.com/poiesic/faqbot/index"
	"github.com/poiesic/faqbot/textnorm"
)

type fixture struct {
	embedder *mock.MockEmbedder
	encoder  *index.Encoder
	index    *index.Index
}

// vec registers a vector for the normalized form of text.
func (f *fixture) vec(text string, v ...float32) *fixture {
	f.embedder.WithVector(textnorm.Normalize(text), v...)
	return f
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	embedder := mock.NewMockEmbedder()
	encoder, err := index.NewEncoder(embedder, index.WithRetry(1, time.Millisecond))
	require.NoError(t, err)
	t.Cleanup(encoder.Release)
	return &fixture{embedder: embedder, encoder: encoder}
}

func (f *fixture) build(t *testing.T, intents ...core.IntentDefinition) *fixture {
	t.Helper()
	ix, err := index.Build(context.Background(), []core.CorpusSource{{Name: "faq.yml", Intents: intents}}, f.encoder)
	require.NoError(t, err)
	f.index = ix
	return f
}

func (f *fixture) matcher(t *testing.T, responses core.ResponseTable, opts ...Option) *Matcher {
	t.Helper()
	m, err := NewMatcher(f.index, f.encoder, responses, opts...)
	require.NoError(t, err)
	return m
}

func responses(pairs ...string) core.ResponseTable {
	table := core.ResponseTable{}
	for i := 0; i+1 < len(pairs); i += 2 {
		table[core.ResponseKey(pairs[i])] = []core.ResponseVariant{{Text: pairs[i+1]}}
	}
	return table
}

func TestNewMatcher(t *testing.T) {
	f := newFixture(t).build(t, core.IntentDefinition{ID: "a", Examples: []string{"x"}})

	t.Run("requires index and encoder", func(t *testing.T) {
		_, err := NewMatcher(nil, f.encoder, nil)
		assert.ErrorIs(t, err, ErrIndexRequired)
		_, err = NewMatcher(f.index, nil, nil)
		assert.ErrorIs(t, err, ErrEncoderRequired)
	})

	t.Run("defaults", func(t *testing.T) {
		m := f.matcher(t, nil)
		assert.Equal(t, DefaultTopK, m.TopK())
		assert.Equal(t, DefaultThreshold, m.Threshold())
	})

	t.Run("invalid options", func(t *testing.T) {
		_, err := NewMatcher(f.index, f.encoder, nil, WithTopK(0))
		assert.ErrorIs(t, err, ErrInvalidTopK)
		_, err = NewMatcher(f.index, f.encoder, nil, WithThreshold(1.5))
		assert.ErrorIs(t, err, ErrInvalidThreshold)
	})

	t.Run("embedding spaces must agree", func(t *testing.T) {
		other := mock.NewMockEmbedder()
		other.Model = "mock:other"
		encoder, err := index.NewEncoder(other)
		require.NoError(t, err)
		defer encoder.Release()

		_, err = NewMatcher(f.index, encoder, nil)
		assert.ErrorIs(t, err, ErrModelMismatch)
	})
}

func TestMatcher_Match(t *testing.T) {
	ctx := context.Background()

	t.Run("paraphrase above threshold", func(t *testing.T) {
		f := newFixture(t).
			vec("ساعت کاری دانشکده چنده؟", 1, 0, 0).
			vec("ساعت کاری دانشگاه چیه؟", 0.9, 0.3, 0)
		f.build(t, core.IntentDefinition{ID: "working_hours", Examples: []string{"ساعت کاری دانشکده چنده؟"}})
		m := f.matcher(t, responses("working_hours", "8 تا 16"))

		result, err := m.Match(ctx, "ساعت کاری دانشگاه چیه؟")
		require.NoError(t, err)
		require.NotNil(t, result)
		assert.Equal(t, core.Result{Kind: core.KindIntent, Answer: "8 تا 16"}, *result)
	})

	t.Run("exact example matches at threshold one", func(t *testing.T) {
		f := newFixture(t).build(t,
			core.IntentDefinition{ID: "tuition", Examples: []string{"شهریه ترم چقدر است؟", "هزینه"}},
			core.IntentDefinition{ID: "library", Examples: []string{"کتابخانه کجاست"}},
		)
		m := f.matcher(t, responses("tuition", "fee answer", "library", "library answer"), WithThreshold(1.0))

		for query, want := range map[string]string{
			"شهریه ترم   چقدر است؟": "fee answer",
			"کتابخانه كجاست":        "library answer", // Arabic kaf folds to Persian kaf
		} {
			result, err := m.Match(ctx, query)
			require.NoError(t, err)
			require.NotNil(t, result, query)
			assert.Equal(t, want, result.Answer)
		}
	})

	t.Run("never returns below threshold", func(t *testing.T) {
		f := newFixture(t).vec("example", 1, 0).vec("query", 0.6, 0.8)
		f.build(t, core.IntentDefinition{ID: "a", Examples: []string{"example"}})

		result, err := f.matcher(t, responses("a", "answer")).Match(ctx, "query")
		require.NoError(t, err)
		assert.Nil(t, result, "0.6 < 0.65")

		result, err = f.matcher(t, responses("a", "answer"), WithThreshold(0.55)).Match(ctx, "query")
		require.NoError(t, err)
		require.NotNil(t, result, "0.6 >= 0.55")
	})

	t.Run("equal scores prefer lower insertion index", func(t *testing.T) {
		f := newFixture(t).
			vec("first", 1, 0).
			vec("second", 1, 0).
			vec("query", 1, 0)
		f.build(t,
			core.IntentDefinition{ID: "one", Examples: []string{"first"}},
			core.IntentDefinition{ID: "two", Examples: []string{"second"}},
		)
		m := f.matcher(t, responses("one", "from one", "two", "from two"))

		for i := 0; i < 5; i++ {
			result, err := m.Match(ctx, "query")
			require.NoError(t, err)
			require.NotNil(t, result)
			assert.Equal(t, "from one", result.Answer)
		}
	})

	t.Run("skips qualifying intents without a response", func(t *testing.T) {
		f := newFixture(t).
			vec("best", 1, 0).
			vec("next", 0.9, 0.1).
			vec("query", 1, 0)
		f.build(t,
			core.IntentDefinition{ID: "orphan", Examples: []string{"best"}},
			core.IntentDefinition{ID: "answered", Examples: []string{"next"}},
		)

		result, err := f.matcher(t, responses("answered", "ok")).Match(ctx, "query")
		require.NoError(t, err)
		require.NotNil(t, result)
		assert.Equal(t, "ok", result.Answer)
	})

	t.Run("stops at the first candidate below threshold", func(t *testing.T) {
		f := newFixture(t).
			vec("best", 1, 0).
			vec("weak", 0.5, 0.8).
			vec("query", 1, 0)
		f.build(t,
			core.IntentDefinition{ID: "orphan", Examples: []string{"best"}},
			core.IntentDefinition{ID: "weak", Examples: []string{"weak"}},
		)

		result, err := f.matcher(t, responses("weak", "should not win")).Match(ctx, "query")
		require.NoError(t, err)
		assert.Nil(t, result)
	})

	t.Run("only topK candidates are considered", func(t *testing.T) {
		f := newFixture(t).
			vec("a", 1, 0).
			vec("b", 0.99, 0.1).
			vec("c", 0.98, 0.2).
			vec("query", 1, 0)
		f.build(t,
			core.IntentDefinition{ID: "a", Examples: []string{"a"}},
			core.IntentDefinition{ID: "b", Examples: []string{"b"}},
			core.IntentDefinition{ID: "c", Examples: []string{"c"}},
		)

		result, err := f.matcher(t, responses("c", "third"), WithTopK(2)).Match(ctx, "query")
		require.NoError(t, err)
		assert.Nil(t, result)

		result, err = f.matcher(t, responses("c", "third"), WithTopK(3)).Match(ctx, "query")
		require.NoError(t, err)
		require.NotNil(t, result)
		assert.Equal(t, "third", result.Answer)
	})

	t.Run("empty query is not embedded", func(t *testing.T) {
		f := newFixture(t).build(t, core.IntentDefinition{ID: "a", Examples: []string{"x"}})
		before := f.embedder.CallCount()

		result, err := f.matcher(t, responses("a", "x")).Match(ctx, "   \t ")
		require.NoError(t, err)
		assert.Nil(t, result)
		assert.Equal(t, before, f.embedder.CallCount())
	})

	t.Run("embedder failure", func(t *testing.T) {
		f := newFixture(t).build(t, core.IntentDefinition{ID: "a", Examples: []string{"x"}})
		f.embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
			return nil, errors.New("quota exceeded")
		}

		_, err := f.matcher(t, responses("a", "x")).Match(ctx, "query")
		assert.ErrorIs(t, err, ErrQueryEmbedding)
	})
}

func TestMatcher_Explain(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t).
		vec("open hours", 1, 0).
		vec("tuition fee", 0, 1).
		vec("query", 0.8, 0.6)
	f.build(t,
		core.IntentDefinition{ID: "hours", Examples: []string{"Open Hours"}},
		core.IntentDefinition{ID: "fees", Examples: []string{"Tuition Fee"}},
	)
	m := f.matcher(t, responses("hours", "8-16"))

	explanation, err := m.Explain(ctx, "QUERY", 5, 0.7)
	require.NoError(t, err)

	assert.Equal(t, "QUERY", explanation.Query)
	assert.Equal(t, "query", explanation.Normalized)
	assert.Equal(t, 0.7, explanation.Threshold)
	require.Len(t, explanation.Tried, 2)

	top := explanation.Tried[0]
	assert.Equal(t, 1, top.Rank)
	assert.Equal(t, 0, top.Index)
	assert.Equal(t, "hours", top.IntentID)
	assert.Equal(t, "Open Hours", top.Example)
	assert.Equal(t, "faq.yml", top.SourceGroup)
	assert.Equal(t, "utter_hours", top.ResponseKey)
	assert.True(t, top.ResponseExists)
	assert.True(t, top.Accepted)
	assert.InDelta(t, 0.8, top.Score, 1e-6)

	second := explanation.Tried[1]
	assert.Equal(t, "fees", second.IntentID)
	assert.False(t, second.ResponseExists)
	assert.False(t, second.Accepted)

	assert.Equal(t, 2, f.index.Len(), "explain does not touch the index")

	t.Run("default topK", func(t *testing.T) {
		explanation, err := m.Explain(ctx, "query", 0, m.Threshold())
		require.NoError(t, err)
		assert.Len(t, explanation.Tried, 2)
	})

	t.Run("empty query", func(t *testing.T) {
		explanation, err := m.Explain(ctx, "", 3, 0.5)
		require.NoError(t, err)
		assert.Empty(t, explanation.Tried)
	})
}
