// Package config loads faqbot settings from a YAML file and credentials from
// the environment, falling back to a .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/poiesic/faqbot/ai"
)

// Environment keys.
const (
	KeyGeminiAPIKey    = "API_KEY"
	KeyOpenAIAPIKey    = "openai_api_key"
	KeyEmbeddingAPIKey = "FAQBOT_EMBEDDING_API_KEY"

	envPrefix = "FAQBOT_"
)

var (
	// ErrInvalidConfig is returned when a configuration value is out of range.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// Paths locates the corpus on disk.
type Paths struct {
	Intents   string `yaml:"intents"`
	Domain    string `yaml:"domain"`
	Documents string `yaml:"documents"`
	Files     string `yaml:"files"`
	Cache     string `yaml:"cache"` // Empty disables the embedding cache
}

// Match configures the intent matcher.
type Match struct {
	TopK      int     `yaml:"top_k"`
	Threshold float64 `yaml:"threshold"`
}

// Cascade configures the document cascade.
// Empty prompts keep the built-in templates.
type Cascade struct {
	Sentinel        string `yaml:"sentinel"`
	PrimaryPrompt   string `yaml:"primary_prompt"`
	SecondaryPrompt string `yaml:"secondary_prompt"`
}

// Models configures the AI providers. Credentials never live in the file.
type Models struct {
	EmbeddingHost     string  `yaml:"embedding_host"`
	Embedding         string  `yaml:"embedding"`
	Primary           string  `yaml:"primary"`
	SecondaryHost     string  `yaml:"secondary_host"`
	Secondary         string  `yaml:"secondary"`
	Temperature       float64 `yaml:"temperature"`
	RequestsPerMinute int     `yaml:"requests_per_minute"`
}

// Index configures startup embedding.
type Index struct {
	BatchSize  int `yaml:"batch_size"`
	PoolSize   int `yaml:"pool_size"`
	MaxRetries int `yaml:"max_retries"`
}

// Server configures the HTTP surface.
type Server struct {
	Addr string `yaml:"addr"`
}

// Config is the in-memory representation of faqbot.yaml.
type Config struct {
	Paths   Paths   `yaml:"paths"`
	Match   Match   `yaml:"match"`
	Cascade Cascade `yaml:"cascade"`
	Models  Models  `yaml:"models"`
	Index   Index   `yaml:"index"`
	Server  Server  `yaml:"server"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	aiDefaults := ai.DefaultConfig()
	return &Config{
		Paths: Paths{
			Intents:   "intents",
			Domain:    "domain.yml",
			Documents: "documents.yml",
			Files:     "files",
			Cache:     ".faqbot/cache",
		},
		Match: Match{
			TopK:      3,
			Threshold: 0.65,
		},
		Models: Models{
			EmbeddingHost: aiDefaults.EmbeddingHost,
			Embedding:     aiDefaults.EmbeddingModel,
			Primary:       aiDefaults.PrimaryModel,
			SecondaryHost: aiDefaults.SecondaryHost,
			Secondary:     aiDefaults.SecondaryModel,
			Temperature:   aiDefaults.Temperature,
		},
		Index: Index{
			BatchSize:  64,
			MaxRetries: 3,
		},
		Server: Server{
			Addr: ":8000",
		},
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
// Keys absent from the file keep their default values.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("cannot parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overrides settings from FAQBOT_* variables.
func (c *Config) ApplyEnv(env *Env) error {
	strs := map[string]*string{
		"INTENTS":         &c.Paths.Intents,
		"DOMAIN":          &c.Paths.Domain,
		"DOCUMENTS":       &c.Paths.Documents,
		"FILES":           &c.Paths.Files,
		"CACHE":           &c.Paths.Cache,
		"SENTINEL":        &c.Cascade.Sentinel,
		"EMBEDDING_HOST":  &c.Models.EmbeddingHost,
		"EMBEDDING_MODEL": &c.Models.Embedding,
		"PRIMARY_MODEL":   &c.Models.Primary,
		"SECONDARY_HOST":  &c.Models.SecondaryHost,
		"SECONDARY_MODEL": &c.Models.Secondary,
		"ADDR":            &c.Server.Addr,
	}
	for key, dst := range strs {
		if v, ok := env.Lookup(envPrefix + key); ok {
			*dst = v
		}
	}

	if v, ok := env.Lookup(envPrefix + "TOP_K"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %sTOP_K: %w", ErrInvalidConfig, envPrefix, err)
		}
		c.Match.TopK = n
	}
	if v, ok := env.Lookup(envPrefix + "THRESHOLD"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%w: %sTHRESHOLD: %w", ErrInvalidConfig, envPrefix, err)
		}
		c.Match.Threshold = f
	}
	return nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	var errs []error
	if c.Match.TopK < 1 {
		errs = append(errs, fmt.Errorf("match.top_k must be at least 1, got %d", c.Match.TopK))
	}
	if c.Match.Threshold < -1 || c.Match.Threshold > 1 {
		errs = append(errs, fmt.Errorf("match.threshold must be between -1 and 1, got %g", c.Match.Threshold))
	}
	if strings.TrimSpace(c.Paths.Intents) == "" {
		errs = append(errs, errors.New("paths.intents is required"))
	}
	if strings.TrimSpace(c.Paths.Domain) == "" {
		errs = append(errs, errors.New("paths.domain is required"))
	}
	if c.Index.BatchSize < 0 || c.Index.PoolSize < 0 || c.Index.MaxRetries < 0 {
		errs = append(errs, errors.New("index sizes cannot be negative"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// AIConfig builds the provider configuration, taking credentials from env.
// The embedding credential falls back to the OpenAI key.
func (c *Config) AIConfig(env *Env) *ai.Config {
	embeddingKey := env.Get(KeyEmbeddingAPIKey)
	if embeddingKey == "" {
		embeddingKey = env.Get(KeyOpenAIAPIKey)
	}
	cfg := ai.NewConfig(
		ai.WithEmbeddingHost(c.Models.EmbeddingHost),
		ai.WithEmbeddingModel(c.Models.Embedding),
		ai.WithEmbeddingAPIKey(embeddingKey),
		ai.WithPrimaryModel(c.Models.Primary),
		ai.WithPrimaryAPIKey(env.Get(KeyGeminiAPIKey)),
		ai.WithSecondaryHost(c.Models.SecondaryHost),
		ai.WithSecondaryModel(c.Models.Secondary),
		ai.WithSecondaryAPIKey(env.Get(KeyOpenAIAPIKey)),
		ai.WithTemperature(c.Models.Temperature),
		ai.WithRequestsPerMinute(c.Models.RequestsPerMinute),
	)
	cfg.Normalize()
	return cfg
}
