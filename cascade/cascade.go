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


package cascade

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/poiesic/faqbot/ai"
	"github.com/poiesic/faqbot/core"
)

// Store serves document contents by filename.
// Absent documents are reported with core.ErrNotFound.
type Store interface {
	// Available reports whether the document directory exists.
	Available() error
	Bytes(name string) ([]byte, error)
	Text(name string) (string, error)
	MIMEType(name string) string
}

// Cascade resolves queries against the document registry.
// It is read-only after construction and safe for concurrent use.
type Cascade struct {
	documents         []core.DocumentDescriptor
	store             Store
	primary           ai.Model
	secondary         ai.Model
	sentinel          string
	primaryTemplate   string
	secondaryTemplate string
	messages          Messages
	logger            *slog.Logger
}

// Option configures a Cascade.
type Option func(*Cascade) error

// WithSentinel overrides the no-answer phrase.
func WithSentinel(sentinel string) Option {
	return func(c *Cascade) error {
		if strings.TrimSpace(sentinel) == "" {
			return ErrEmptySentinel
		}
		c.sentinel = sentinel
		return nil
	}
}

// WithPrompts overrides the prompt templates. Empty strings keep the defaults.
// A template must use every positional verb its phase supplies.
func WithPrompts(primary, secondary string) Option {
	return func(c *Cascade) error {
		if primary != "" {
			if err := checkTemplate("primary", primary, primaryVerbs); err != nil {
				return err
			}
			c.primaryTemplate = primary
		}
		if secondary != "" {
			if err := checkTemplate("secondary", secondary, secondaryVerbs); err != nil {
				return err
			}
			c.secondaryTemplate = secondary
		}
		return nil
	}
}

// WithMessages overrides the user-facing error messages.
func WithMessages(messages Messages) Option {
	return func(c *Cascade) error {
		c.messages = messages
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Cascade) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger.With("component", "cascade")
		return nil
	}
}

// New creates a cascade over documents. Either model may be nil, meaning
// that provider is not configured.
func New(documents []core.DocumentDescriptor, store Store, primary, secondary ai.Model, opts ...Option) (*Cascade, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	for i := range documents {
		if err := core.ValidateDocument(i, &documents[i]); err != nil {
			return nil, err
		}
	}

	c := &Cascade{
		documents:         SortByPriority(documents),
		store:             store,
		primary:           primary,
		secondary:         secondary,
		sentinel:          DefaultSentinel,
		primaryTemplate:   DefaultPrimaryPrompt,
		secondaryTemplate: DefaultSecondaryPrompt,
		messages:          DefaultMessages(),
		logger:            slog.Default().With("component", "cascade"),
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// SortByPriority returns a copy of documents ordered by descending priority.
// Documents with equal priority keep their registration order.
func SortByPriority(documents []core.DocumentDescriptor) []core.DocumentDescriptor {
	sorted := slices.Clone(documents)
	slices.SortStableFunc(sorted, func(a, b core.DocumentDescriptor) int {
		return cmp.Compare(b.Priority, a.Priority)
	})
	return sorted
}

// Documents returns the registry in scan order.
func (c *Cascade) Documents() []core.DocumentDescriptor {
	return slices.Clone(c.documents)
}

// Confident reports whether a primary reply counts as an answer.
func (c *Cascade) Confident(reply string) bool {
	return strings.TrimSpace(reply) != "" && !strings.Contains(reply, c.sentinel)
}

// Resolve runs Phase A then, if needed, Phase B.
func (c *Cascade) Resolve(ctx context.Context, query string) core.Result {
	return c.ResolveWithMonitor(ctx, query, nil)
}

// ResolveWithMonitor is Resolve with progress callbacks.
func (c *Cascade) ResolveWithMonitor(ctx context.Context, query string, monitor Monitor) core.Result {
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	if err := c.store.Available(); err != nil {
		c.logger.Error("documents directory unavailable", "err", err)
		return core.ErrorResult(c.messages.MissingDirectory)
	}

	answer, reason, ok := c.scan(ctx, query, monitor)
	if ok {
		return core.FallbackResult(answer)
	}
	if err := ctx.Err(); err != nil {
		return core.ErrorResult(err.Error())
	}
	return c.fallback(ctx, query, reason, monitor)
}

// scan runs Phase A. It returns the confident answer, or the reason there is none.
func (c *Cascade) scan(ctx context.Context, query string, monitor Monitor) (string, string, bool) {
	if c.primary == nil {
		c.logger.Debug("primary provider not configured, skipping documents")
		return "", "", false
	}

	for _, doc := range c.documents {
		if ctx.Err() != nil {
			return "", ctx.Err().Error(), false
		}

		data, err := c.store.Bytes(doc.Filename)
		if err != nil {
			if !errors.Is(err, core.ErrNotFound) {
				c.logger.Warn("document unreadable, skipping", "document", doc.Filename, "err", err)
			} else {
				c.logger.Debug("document missing, skipping", "document", doc.Filename)
			}
			monitor.DocumentScanned(doc, ScanSkipped)
			continue
		}

		attachment := &ai.Attachment{
			Name:     doc.Filename,
			Data:     data,
			MIMEType: c.store.MIMEType(doc.Filename),
		}
		reply, err := c.primary.Generate(ctx, c.primaryPrompt(doc.Filename, doc.Description, query), attachment)
		if err != nil {
			c.logger.Warn("primary provider failed, abandoning document scan",
				"model", c.primary.Name(), "document", doc.Filename, "err", err)
			monitor.DocumentScanned(doc, ScanFailed)
			return "", err.Error(), false
		}

		if c.Confident(reply) {
			c.logger.Debug("document answered", "document", doc.Filename)
			monitor.DocumentScanned(doc, ScanConfident)
			return reply, "", true
		}
		monitor.DocumentScanned(doc, ScanNotConfident)
	}

	return "", "", false
}

// fallback runs Phase B.
func (c *Cascade) fallback(ctx context.Context, query, reason string, monitor Monitor) core.Result {
	if c.secondary == nil {
		if reason == "" {
			reason = c.messages.UnknownReason
		}
		c.logger.Warn("no answer from primary and secondary provider not configured", "reason", reason)
		return core.ErrorResult(fmt.Sprintf(c.messages.MissingSecondary, reason))
	}

	combined, included := c.combinedText()
	monitor.SecondaryStarted(reason, included)
	c.logger.Debug("falling back to secondary provider",
		"model", c.secondary.Name(), "documents", included, "reason", reason)

	reply, err := c.secondary.Generate(ctx, c.secondaryPrompt(query, combined), nil)
	if err != nil {
		c.logger.Error("secondary provider failed", "model", c.secondary.Name(), "err", err)
		return core.ErrorResult(fmt.Sprintf(c.messages.SecondaryFailed, err))
	}
	return core.FallbackResult(reply)
}

// combinedText concatenates every present document in scan order.
func (c *Cascade) combinedText() (string, int) {
	var b strings.Builder
	included := 0
	for _, doc := range c.documents {
		text, err := c.store.Text(doc.Filename)
		if err != nil {
			if !errors.Is(err, core.ErrNotFound) {
				c.logger.Warn("document text unavailable, skipping", "document", doc.Filename, "err", err)
			}
			continue
		}
		b.WriteString(documentHeader(doc.Filename, doc.Description))
		b.WriteString(text)
		included++
	}
	return b.String(), included
}
