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


package openai

import (
	"context"
	"log/slog"

	"github.com/poiesic/faqbot/ai"
	"github.com/poiesic/faqbot/ai/gemini"
)

// Provider implements ai.AIProvider.
// The embedder is always present; primary and secondary models exist only
// when their credentials are configured.
type Provider struct {
	config    *ai.Config
	embedder  *Embedder
	primary   ai.Model
	secondary ai.Model
	logger    *slog.Logger
}

// NewProvider creates a new provider with the given configuration.
// Returns ai.AIProvider interface to enforce abstraction.
func NewProvider(ctx context.Context, config *ai.Config) (ai.AIProvider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	logger := slog.Default().With("component", "ai-provider")

	embedder, err := newEmbedder(config)
	if err != nil {
		return nil, err
	}

	var primary ai.Model
	if config.HasPrimary() {
		primary, err = gemini.NewModel(ctx, config)
		if err != nil {
			return nil, err
		}
		primary = ai.WithRateLimit(primary, config.RequestsPerMinute, 1)
	} else {
		logger.Warn("primary provider not configured")
	}

	var secondary ai.Model
	if config.HasSecondary() {
		chat, err := newChatModel(config)
		if err != nil {
			return nil, err
		}
		secondary = ai.WithRateLimit(chat, config.RequestsPerMinute, 1)
	} else {
		logger.Warn("secondary provider not configured")
	}

	return &Provider{
		config:    config,
		embedder:  embedder,
		primary:   primary,
		secondary: secondary,
		logger:    logger,
	}, nil
}

// Embedder returns the embedding service.
func (p *Provider) Embedder() ai.Embedder {
	return p.embedder
}

// Primary returns the document-reading model, or nil.
func (p *Provider) Primary() ai.Model {
	return p.primary
}

// Secondary returns the chat fallback model, or nil.
func (p *Provider) Secondary() ai.Model {
	return p.secondary
}

// Close releases resources held by the provider.
// Currently a no-op as the HTTP clients don't require cleanup.
func (p *Provider) Close() error {
	p.logger.Debug("closing AI provider")
	return nil
}
