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


package mock

import "github.com/poiesic/faqbot/ai"

// MockProvider is a test double for ai.AIProvider.
type MockProvider struct {
	embedder  *MockEmbedder
	primary   *MockModel
	secondary *MockModel
}

// NewMockProvider creates a provider with a mock embedder and both models configured.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		embedder:  NewMockEmbedder(),
		primary:   NewMockModel("mock-primary"),
		secondary: NewMockModel("mock-secondary"),
	}
}

// NewMockProviderWithServices creates a mock provider with custom mock services.
// Pass nil models to simulate unconfigured providers.
func NewMockProviderWithServices(embedder *MockEmbedder, primary, secondary *MockModel) *MockProvider {
	return &MockProvider{
		embedder:  embedder,
		primary:   primary,
		secondary: secondary,
	}
}

// Embedder returns the mock embedder.
func (p *MockProvider) Embedder() ai.Embedder {
	return p.embedder
}

// Primary returns the primary mock, or a nil interface when unconfigured.
func (p *MockProvider) Primary() ai.Model {
	if p.primary == nil {
		return nil
	}
	return p.primary
}

// Secondary returns the secondary mock, or a nil interface when unconfigured.
func (p *MockProvider) Secondary() ai.Model {
	if p.secondary == nil {
		return nil
	}
	return p.secondary
}

// Close is a no-op.
func (p *MockProvider) Close() error {
	return nil
}

// GetMockEmbedder returns the underlying mock embedder for test assertions.
func (p *MockProvider) GetMockEmbedder() *MockEmbedder {
	return p.embedder
}

// GetMockPrimary returns the primary mock model for test assertions.
func (p *MockProvider) GetMockPrimary() *MockModel {
	return p.primary
}

// GetMockSecondary returns the secondary mock model for test assertions.
func (p *MockProvider) GetMockSecondary() *MockModel {
	return p.secondary
}
