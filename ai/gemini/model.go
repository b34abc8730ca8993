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


// Package gemini implements the document-reading ai.Model on the Gemini API.
//
// Attachments are sent inline next to the prompt, so the model answers from
// the document itself rather than from extracted text.
package gemini

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/faqbot/ai"
	"github.com/poiesic/faqbot/core"
	"google.golang.org/genai"
)

// contentGenerator is the subset of *genai.Models used by Model.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Model implements ai.Model using Gemini GenerateContent.
type Model struct {
	models contentGenerator
	model  string
	logger *slog.Logger
}

var _ ai.Model = (*Model)(nil)

// NewModel creates the primary model from config.
// Returns core.ErrConfiguration when no primary credential is configured.
func NewModel(ctx context.Context, config *ai.Config) (ai.Model, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if !config.HasPrimary() {
		return nil, fmt.Errorf("%w: primary API key is not set", core.ErrConfiguration)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  config.PrimaryAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return newModel(client.Models, config.PrimaryModel), nil
}

func newModel(models contentGenerator, model string) *Model {
	return &Model{
		models: models,
		model:  model,
		logger: slog.Default().With("component", "gemini-model"),
	}
}

// Name identifies the backend.
func (m *Model) Name() string {
	return "gemini:" + m.model
}

// Generate sends the attachment (if any) followed by the prompt as one user turn.
func (m *Model) Generate(ctx context.Context, prompt string, attachment *ai.Attachment) (string, error) {
	parts := make([]*genai.Part, 0, 2)
	if attachment != nil {
		mimeType := attachment.MIMEType
		if mimeType == "" {
			mimeType = "application/pdf"
		}
		parts = append(parts, genai.NewPartFromBytes(attachment.Data, mimeType))
	}
	parts = append(parts, genai.NewPartFromText(prompt))

	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	m.logger.Debug("generating content", "model", m.model, "hasAttachment", attachment != nil)
	result, err := m.models.GenerateContent(ctx, m.model, contents, nil)
	if err != nil {
		m.logger.Error("GenAI generate failed", "err", err)
		return "", fmt.Errorf("%w: %s: %w", core.ErrProvider, m.Name(), err)
	}
	if result == nil {
		return "", fmt.Errorf("%w: %s: %w", core.ErrProvider, m.Name(), ai.ErrEmptyResponse)
	}

	return result.Text(), nil
}
