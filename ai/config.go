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


package ai

import (
	"errors"
	"strings"
)

// Config holds configuration for AI service providers.
type Config struct {
	// EmbeddingHost is the base URL for the embedding service API.
	// Example: "http://localhost:11434/v1" for local OpenAI-compatible server
	EmbeddingHost string

	// EmbeddingModel is the model identifier to use for text embeddings.
	// Example: "text-embedding-3-small", "paraphrase-multilingual"
	EmbeddingModel string

	// EmbeddingAPIKey authenticates embedding requests.
	// Empty is allowed for local services that don't require authentication.
	EmbeddingAPIKey string

	// PrimaryModel is the Gemini model that reads attached documents.
	PrimaryModel string

	// PrimaryAPIKey is the Gemini credential. Empty disables the primary provider.
	PrimaryAPIKey string

	// SecondaryHost is the base URL of the OpenAI-compatible chat service.
	SecondaryHost string

	// SecondaryModel is the chat model used for the full-text fallback.
	SecondaryModel string

	// SecondaryAPIKey is the chat credential. Empty disables the secondary provider.
	SecondaryAPIKey string

	// Temperature is the sampling temperature for the secondary model.
	// Default: 0.7
	Temperature float64

	// RequestsPerMinute limits outbound generation calls per provider.
	// Zero means unlimited.
	RequestsPerMinute int
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithEmbeddingHost sets the embedding service host URL.
func WithEmbeddingHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
	}
}

// WithEmbeddingModel sets the embedding model identifier.
func WithEmbeddingModel(model string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingModel = model
	}
}

// WithEmbeddingAPIKey sets the embedding credential.
func WithEmbeddingAPIKey(key string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingAPIKey = key
	}
}

// WithPrimaryModel sets the Gemini model identifier.
func WithPrimaryModel(model string) ConfigOption {
	return func(c *Config) {
		c.PrimaryModel = model
	}
}

// WithPrimaryAPIKey sets the Gemini credential.
func WithPrimaryAPIKey(key string) ConfigOption {
	return func(c *Config) {
		c.PrimaryAPIKey = key
	}
}

// WithSecondaryHost sets the chat service host URL.
func WithSecondaryHost(host string) ConfigOption {
	return func(c *Config) {
		c.SecondaryHost = host
	}
}

// WithSecondaryModel sets the chat model identifier.
func WithSecondaryModel(model string) ConfigOption {
	return func(c *Config) {
		c.SecondaryModel = model
	}
}

// WithSecondaryAPIKey sets the chat credential.
func WithSecondaryAPIKey(key string) ConfigOption {
	return func(c *Config) {
		c.SecondaryAPIKey = key
	}
}

// WithTemperature sets the secondary model's sampling temperature.
func WithTemperature(t float64) ConfigOption {
	return func(c *Config) {
		c.Temperature = t
	}
}

// WithRequestsPerMinute sets the per-provider request limit.
func WithRequestsPerMinute(n int) ConfigOption {
	return func(c *Config) {
		c.RequestsPerMinute = n
	}
}

// DefaultConfig returns a Config with the hosted OpenAI and Gemini defaults.
// Credentials are left empty.
func DefaultConfig() *Config {
	defaultHost := "https://api.openai.com/v1"
	return &Config{
		EmbeddingHost:  defaultHost,
		EmbeddingModel: "text-embedding-3-small",
		PrimaryModel:   "gemini-2.0-flash",
		SecondaryHost:  defaultHost,
		SecondaryModel: "gpt-3.5-turbo",
		Temperature:    0.7,
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
//
// Example:
//
//	cfg := NewConfig(
//	    WithEmbeddingHost("http://localhost:11434/v1"),
//	    WithEmbeddingModel("nomic-embed-text"),
//	    WithPrimaryAPIKey(os.Getenv("API_KEY")),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize ensures the configuration is in a canonical form.
// It adds the /v1 suffix to OpenAI-compatible hosts if missing and trims
// whitespace from credentials.
func (c *Config) Normalize() {
	c.EmbeddingHost = withV1(c.EmbeddingHost)
	c.SecondaryHost = withV1(c.SecondaryHost)
	c.EmbeddingAPIKey = strings.TrimSpace(c.EmbeddingAPIKey)
	c.PrimaryAPIKey = strings.TrimSpace(c.PrimaryAPIKey)
	c.SecondaryAPIKey = strings.TrimSpace(c.SecondaryAPIKey)
}

func withV1(host string) string {
	if host == "" || strings.HasSuffix(host, "/v1") {
		return host
	}
	return strings.TrimSuffix(host, "/") + "/v1"
}

// HasPrimary reports whether the primary provider credential is present.
func (c *Config) HasPrimary() bool {
	return strings.TrimSpace(c.PrimaryAPIKey) != ""
}

// HasSecondary reports whether the secondary provider credential is present.
func (c *Config) HasSecondary() bool {
	return strings.TrimSpace(c.SecondaryAPIKey) != ""
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
// Missing provider credentials are not an error: they disable that provider.
func (c *Config) Validate() error {
	c.Normalize()

	if c.EmbeddingHost == "" {
		return errors.New("ai config: EmbeddingHost is required")
	}
	if c.EmbeddingModel == "" {
		return errors.New("ai config: EmbeddingModel is required")
	}
	if c.HasPrimary() && c.PrimaryModel == "" {
		return errors.New("ai config: PrimaryModel is required when PrimaryAPIKey is set")
	}
	if c.HasSecondary() {
		if c.SecondaryHost == "" {
			return errors.New("ai config: SecondaryHost is required when SecondaryAPIKey is set")
		}
		if c.SecondaryModel == "" {
			return errors.New("ai config: SecondaryModel is required when SecondaryAPIKey is set")
		}
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return errors.New("ai config: Temperature must be between 0 and 2")
	}
	if c.RequestsPerMinute < 0 {
		return errors.New("ai config: RequestsPerMinute cannot be negative")
	}
	return nil
}
