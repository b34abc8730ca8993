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
	"fmt"
	"log/slog"

	"github.com/poiesic/faqbot/ai"
	"github.com/poiesic/faqbot/core"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// ChatModel implements ai.Model with a single-message chat completion.
type ChatModel struct {
	client      llms.Model
	model       string
	temperature float64
	logger      *slog.Logger
}

var _ ai.Model = (*ChatModel)(nil)

func newChatModel(config *ai.Config) (*ChatModel, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if !config.HasSecondary() {
		return nil, fmt.Errorf("%w: secondary API key is not set", core.ErrConfiguration)
	}

	client, err := openai.New(
		openai.WithBaseURL(config.SecondaryHost),
		openai.WithToken(config.SecondaryAPIKey),
		openai.WithModel(config.SecondaryModel),
	)
	if err != nil {
		return nil, err
	}

	return &ChatModel{
		client:      client,
		model:       config.SecondaryModel,
		temperature: config.Temperature,
		logger:      slog.Default().With("component", "openai-chat"),
	}, nil
}

// NewChatModel creates the secondary chat model.
// Returns core.ErrConfiguration when no secondary credential is configured.
func NewChatModel(config *ai.Config) (ai.Model, error) {
	return newChatModel(config)
}

// Name identifies the backend.
func (m *ChatModel) Name() string {
	return "openai:" + m.model
}

// Generate sends prompt as one human message and returns the first choice.
func (m *ChatModel) Generate(ctx context.Context, prompt string, attachment *ai.Attachment) (string, error) {
	if attachment != nil {
		return "", ai.ErrAttachmentUnsupported
	}

	content := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeHuman, prompt),
	}

	m.logger.Debug("sending chat completion", "model", m.model, "promptLength", len(prompt))
	response, err := m.client.GenerateContent(ctx, content, llms.WithTemperature(m.temperature))
	if err != nil {
		m.logger.Error("chat completion failed", "err", err)
		return "", fmt.Errorf("%w: %s: %w", core.ErrProvider, m.Name(), err)
	}

	if len(response.Choices) < 1 {
		m.logger.Warn("no choices returned from model")
		return "", fmt.Errorf("%w: %s: %w", core.ErrProvider, m.Name(), ai.ErrEmptyResponse)
	}

	return response.Choices[0].Content, nil
}
