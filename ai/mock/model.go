package mock

import (
	"context"
	"sync"

	"github.com/poiesic/faqbot/ai"
)

// Call records one Generate invocation.
type Call struct {
	Prompt     string
	Attachment *ai.Attachment
}

// MockModel is a test double for ai.Model.
type MockModel struct {
	// GenerateFunc is called by Generate if set.
	GenerateFunc func(ctx context.Context, prompt string, attachment *ai.Attachment) (string, error)

	// ByAttachment answers by attachment name when GenerateFunc is nil.
	ByAttachment map[string]string

	// Reply is the default answer when nothing else matches.
	Reply string

	// Err is returned for every call when set.
	Err error

	name  string
	mu    sync.Mutex
	calls []Call
}

var _ ai.Model = (*MockModel)(nil)

// NewMockModel creates a mock model that answers Reply to everything.
func NewMockModel(name string) *MockModel {
	return &MockModel{name: name}
}

// Name returns the mock's name.
func (m *MockModel) Name() string {
	return m.name
}

// Generate records the call and returns the scripted answer.
func (m *MockModel) Generate(ctx context.Context, prompt string, attachment *ai.Attachment) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, Call{Prompt: prompt, Attachment: attachment})
	m.mu.Unlock()

	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, prompt, attachment)
	}
	if m.Err != nil {
		return "", m.Err
	}
	if attachment != nil {
		if reply, ok := m.ByAttachment[attachment.Name]; ok {
			return reply, nil
		}
	}
	return m.Reply, nil
}

// Calls returns a copy of the recorded calls.
func (m *MockModel) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Call, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallCount returns the number of Generate calls.
func (m *MockModel) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// AttachmentNames returns the attachment names in call order ("" for none).
func (m *MockModel) AttachmentNames() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.calls))
	for i, c := range m.calls {
		if c.Attachment != nil {
			out[i] = c.Attachment.Name
		}
	}
	return out
}
