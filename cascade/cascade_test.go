package cascade

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/faqbot/ai"
	"github.com/poiesic/faqbot/ai/mock"
	"github.com/poiesic/faqbot/core"
)

// memStore is an in-memory Store. Text is prefixed so tests can tell it from bytes.
type memStore struct {
	files   map[string]string
	missing bool
	broken  map[string]bool
}

func (s *memStore) Available() error {
	if s.missing {
		return core.ErrNotFound
	}
	return nil
}

func (s *memStore) Bytes(name string) ([]byte, error) {
	content, ok := s.files[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrNotFound, name)
	}
	return []byte(content), nil
}

func (s *memStore) Text(name string) (string, error) {
	if s.broken[name] {
		return "", errors.New("corrupt pdf")
	}
	content, ok := s.files[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", core.ErrNotFound, name)
	}
	return "text of " + content, nil
}

func (s *memStore) MIMEType(string) string { return "application/pdf" }

type recordingMonitor struct {
	scans   []string
	fallback []string
}

func (m *recordingMonitor) DocumentScanned(doc core.DocumentDescriptor, outcome ScanOutcome) {
	m.scans = append(m.scans, doc.Filename+":"+outcome.String())
}

func (m *recordingMonitor) SecondaryStarted(reason string, documents int) {
	m.fallback = append(m.fallback, fmt.Sprintf("%s/%d", reason, documents))
}

func docs() []core.DocumentDescriptor {
	return []core.DocumentDescriptor{
		{Filename: "low.pdf", Description: "low priority", Priority: 5},
		{Filename: "high.pdf", Description: "high priority", Priority: 10},
		{Filename: "gone.pdf", Description: "not on disk", Priority: 7},
		{Filename: "tie.pdf", Description: "same as low", Priority: 5},
	}
}

func store() *memStore {
	return &memStore{files: map[string]string{
		"low.pdf":  "LOW",
		"high.pdf": "HIGH",
		"tie.pdf":  "TIE",
	}}
}

func newCascade(t *testing.T, s Store, primary, secondary *mock.MockModel, opts ...Option) *Cascade {
	t.Helper()
	var p, sec ai.Model
	if primary != nil {
		p = primary
	}
	if secondary != nil {
		sec = secondary
	}
	c, err := New(docs(), s, p, sec, opts...)
	require.NoError(t, err)
	return c
}

func TestNew(t *testing.T) {
	t.Run("store required", func(t *testing.T) {
		_, err := New(nil, nil, nil, nil)
		assert.ErrorIs(t, err, ErrStoreRequired)
	})

	t.Run("invalid descriptor", func(t *testing.T) {
		_, err := New([]core.DocumentDescriptor{{Description: "x"}}, store(), nil, nil)
		assert.ErrorIs(t, err, core.ErrEmptyFilename)
	})

	t.Run("empty sentinel", func(t *testing.T) {
		_, err := New(nil, store(), nil, nil, WithSentinel("  "))
		assert.ErrorIs(t, err, ErrEmptySentinel)
	})

	t.Run("scan order is descending priority and stable", func(t *testing.T) {
		c := newCascade(t, store(), nil, nil)
		var names []string
		for _, d := range c.Documents() {
			names = append(names, d.Filename)
		}
		assert.Equal(t, []string{"high.pdf", "gone.pdf", "low.pdf", "tie.pdf"}, names)
	})
}

func TestConfident(t *testing.T) {
	c := newCascade(t, store(), nil, nil)
	assert.True(t, c.Confident("ساعت ۸ تا ۱۶"))
	assert.False(t, c.Confident("   \n"))
	assert.False(t, c.Confident("متاسفم. "+DefaultSentinel))
}

func TestResolve_PhaseA(t *testing.T) {
	ctx := context.Background()

	t.Run("first confident document wins and lower ones are never asked", func(t *testing.T) {
		primary := mock.NewMockModel("primary")
		primary.ByAttachment = map[string]string{
			"high.pdf": "answer from high",
			"low.pdf":  "answer from low",
		}
		secondary := mock.NewMockModel("secondary")
		c := newCascade(t, store(), primary, secondary)

		result := c.Resolve(ctx, "سوال")
		assert.Equal(t, core.FallbackResult("answer from high"), result)
		assert.Equal(t, []string{"high.pdf"}, primary.AttachmentNames())
		assert.Zero(t, secondary.CallCount())
	})

	t.Run("sentinel replies move on to the next document", func(t *testing.T) {
		primary := mock.NewMockModel("primary")
		primary.ByAttachment = map[string]string{
			"high.pdf": DefaultSentinel,
			"low.pdf":  "  ",
			"tie.pdf":  "answer from tie",
		}
		secondary := mock.NewMockModel("secondary")
		monitor := &recordingMonitor{}
		c := newCascade(t, store(), primary, secondary)

		result := c.ResolveWithMonitor(ctx, "سوال", monitor)
		assert.Equal(t, core.FallbackResult("answer from tie"), result)
		assert.Equal(t, []string{"high.pdf", "low.pdf", "tie.pdf"}, primary.AttachmentNames())
		assert.Equal(t, []string{
			"high.pdf:not_confident",
			"gone.pdf:skipped",
			"low.pdf:not_confident",
			"tie.pdf:confident",
		}, monitor.scans)
		assert.Zero(t, secondary.CallCount())
	})

	t.Run("prompt and attachment", func(t *testing.T) {
		primary := mock.NewMockModel("primary")
		primary.Reply = "ok"
		c := newCascade(t, store(), primary, nil)

		c.Resolve(ctx, "شهریه چقدر است؟")
		calls := primary.Calls()
		require.Len(t, calls, 1)
		assert.Contains(t, calls[0].Prompt, "عنوان فایل: high.pdf")
		assert.Contains(t, calls[0].Prompt, "توضیح فایل: high priority")
		assert.Contains(t, calls[0].Prompt, "سوال کاربر: شهریه چقدر است؟")
		assert.Contains(t, calls[0].Prompt, DefaultSentinel)
		assert.Equal(t, []byte("HIGH"), calls[0].Attachment.Data)
		assert.Equal(t, "application/pdf", calls[0].Attachment.MIMEType)
	})

	t.Run("custom sentinel", func(t *testing.T) {
		primary := mock.NewMockModel("primary")
		primary.ByAttachment = map[string]string{"high.pdf": "NO ANSWER HERE", "gone.pdf": "x", "low.pdf": "found"}
		c := newCascade(t, store(), primary, nil, WithSentinel("NO ANSWER"))

		assert.Equal(t, core.FallbackResult("found"), c.Resolve(ctx, "q"))
		assert.Contains(t, primary.Calls()[0].Prompt, `"NO ANSWER"`)
	})

	t.Run("provider error ends phase A", func(t *testing.T) {
		primary := mock.NewMockModel("primary")
		primary.Err = fmt.Errorf("%w: quota exceeded", core.ErrProvider)
		secondary := mock.NewMockModel("secondary")
		secondary.Reply = "secondary answer"
		monitor := &recordingMonitor{}
		c := newCascade(t, store(), primary, secondary)

		result := c.ResolveWithMonitor(ctx, "q", monitor)
		assert.Equal(t, core.FallbackResult("secondary answer"), result)
		assert.Equal(t, 1, primary.CallCount(), "remaining documents are not tried")
		require.Len(t, monitor.fallback, 1)
		assert.Contains(t, monitor.fallback[0], "quota exceeded")
	})

	t.Run("missing directory", func(t *testing.T) {
		s := store()
		s.missing = true
		primary := mock.NewMockModel("primary")
		c := newCascade(t, s, primary, mock.NewMockModel("secondary"))

		result := c.Resolve(ctx, "q")
		assert.Equal(t, core.KindError, result.Kind)
		assert.Equal(t, DefaultMessages().MissingDirectory, result.Message)
		assert.Zero(t, primary.CallCount())
	})
}

func TestResolve_PhaseB(t *testing.T) {
	ctx := context.Background()

	t.Run("combined prompt covers present documents in priority order", func(t *testing.T) {
		primary := mock.NewMockModel("primary")
		primary.Err = errors.New("unavailable")
		secondary := mock.NewMockModel("secondary")
		secondary.Reply = "combined answer"
		c := newCascade(t, store(), primary, secondary)

		result := c.Resolve(ctx, "سوال کاربر")
		assert.Equal(t, core.FallbackResult("combined answer"), result)

		calls := secondary.Calls()
		require.Len(t, calls, 1)
		assert.Nil(t, calls[0].Attachment)
		prompt := calls[0].Prompt

		high := strings.Index(prompt, "\n--- high.pdf ---\nتوضیح: high priority\ntext of HIGH")
		low := strings.Index(prompt, "\n--- low.pdf ---\nتوضیح: low priority\ntext of LOW")
		tie := strings.Index(prompt, "\n--- tie.pdf ---\nتوضیح: same as low\ntext of TIE")
		require.NotEqual(t, -1, high)
		require.NotEqual(t, -1, low)
		require.NotEqual(t, -1, tie)
		assert.Less(t, high, low)
		assert.Less(t, low, tie)
		assert.NotContains(t, prompt, "gone.pdf")
		assert.Contains(t, prompt, "سوال کاربر: سوال کاربر")
	})

	t.Run("no confident document falls through", func(t *testing.T) {
		primary := mock.NewMockModel("primary")
		primary.Reply = DefaultSentinel
		secondary := mock.NewMockModel("secondary")
		secondary.Reply = "from secondary"
		c := newCascade(t, store(), primary, secondary)

		assert.Equal(t, core.FallbackResult("from secondary"), c.Resolve(ctx, "q"))
		assert.Equal(t, 3, primary.CallCount())
	})

	t.Run("secondary sentinel is returned verbatim", func(t *testing.T) {
		secondary := mock.NewMockModel("secondary")
		secondary.Reply = DefaultSentinel
		c := newCascade(t, store(), nil, secondary)

		assert.Equal(t, core.FallbackResult(DefaultSentinel), c.Resolve(ctx, "q"))
		assert.Equal(t, 1, secondary.CallCount())
	})

	t.Run("unreadable text is skipped", func(t *testing.T) {
		s := store()
		s.broken = map[string]bool{"low.pdf": true}
		secondary := mock.NewMockModel("secondary")
		c := newCascade(t, s, nil, secondary)

		c.Resolve(ctx, "q")
		prompt := secondary.Calls()[0].Prompt
		assert.NotContains(t, prompt, "low.pdf")
		assert.Contains(t, prompt, "tie.pdf")
	})

	t.Run("secondary failure is terminal", func(t *testing.T) {
		secondary := mock.NewMockModel("secondary")
		secondary.Err = errors.New("401 unauthorized")
		c := newCascade(t, store(), nil, secondary)

		result := c.Resolve(ctx, "q")
		assert.Equal(t, core.KindError, result.Kind)
		assert.Contains(t, result.Message, "401 unauthorized")
		assert.Equal(t, 1, secondary.CallCount(), "not retried")
	})

	t.Run("no providers configured", func(t *testing.T) {
		c := newCascade(t, store(), nil, nil)

		result := c.Resolve(ctx, "q")
		assert.Equal(t, core.KindError, result.Kind)
		assert.Equal(t, core.ErrorResult("❌ خطای Gemini: نامشخص، برای fallback به OpenAI API Key نیاز است."), result)
	})

	t.Run("missing secondary after unconfident primary", func(t *testing.T) {
		primary := mock.NewMockModel("primary")
		primary.Reply = DefaultSentinel
		c := newCascade(t, store(), primary, nil)

		result := c.Resolve(ctx, "q")
		assert.Equal(t, core.ErrorResult("❌ خطای Gemini: نامشخص، برای fallback به OpenAI API Key نیاز است."), result)
	})

	t.Run("custom messages", func(t *testing.T) {
		msgs := DefaultMessages()
		msgs.MissingSecondary = "need secondary (%s)"
		msgs.UnknownReason = "unknown"
		c := newCascade(t, store(), nil, nil, WithMessages(msgs))

		assert.Equal(t, core.ErrorResult("need secondary (unknown)"), c.Resolve(ctx, "q"))
	})
}

func TestWithPrompts(t *testing.T) {
	ctx := context.Background()

	t.Run("custom templates reach both providers", func(t *testing.T) {
		primary := mock.NewMockModel("primary")
		primary.Reply = DefaultSentinel
		secondary := mock.NewMockModel("secondary")
		secondary.Reply = "answer"
		c := newCascade(t, store(), primary, secondary,
			WithPrompts("P %[1]s|%[2]s|%[3]s|%[4]s", "S %[1]s|%[3]s|%[2]s"))

		c.Resolve(ctx, "q")
		assert.Equal(t, "P high.pdf|high priority|q|"+DefaultSentinel, primary.Calls()[0].Prompt)
		require.Len(t, secondary.Calls(), 1)
		assert.True(t, strings.HasPrefix(secondary.Calls()[0].Prompt, "S q|"+DefaultSentinel+"|"))
	})

	t.Run("empty keeps defaults", func(t *testing.T) {
		primary := mock.NewMockModel("primary")
		primary.Reply = "ok"
		c := newCascade(t, store(), primary, nil, WithPrompts("", ""))

		c.Resolve(ctx, "q")
		assert.Contains(t, primary.Calls()[0].Prompt, "عنوان فایل: high.pdf")
	})

	t.Run("missing verbs are rejected", func(t *testing.T) {
		_, err := New(nil, store(), nil, nil, WithPrompts("%[1]s %[2]s %[3]s", ""))
		assert.ErrorIs(t, err, ErrInvalidPrompt)
		assert.ErrorContains(t, err, "%[4]s")

		_, err = New(nil, store(), nil, nil, WithPrompts("", "%[1]s %[3]s"))
		assert.ErrorIs(t, err, ErrInvalidPrompt)
		assert.ErrorContains(t, err, "secondary")
	})
}

func TestResolve_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	primary := mock.NewMockModel("primary")
	primary.GenerateFunc = func(ctx context.Context, prompt string, attachment *ai.Attachment) (string, error) {
		cancel()
		return "", ctx.Err()
	}
	secondary := mock.NewMockModel("secondary")
	c := newCascade(t, store(), primary, secondary)

	result := c.Resolve(ctx, "q")
	assert.Equal(t, core.KindError, result.Kind)
	assert.Zero(t, secondary.CallCount(), "an abandoned request does not reach phase B")
}
