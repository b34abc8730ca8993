package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// ModelID identifies the embedding space, e.g. "openai:text-embedding-3-small".
	// Vectors from embedders with different ModelIDs must never be compared.
	ModelID() string

	// EmbedText generates a vector embedding for a single text string.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Attachment is a document payload sent along with a prompt.
type Attachment struct {
	Name     string
	Data     []byte
	MIMEType string
}

// Model is a text generation capability: a prompt with an optional
// attachment goes in, free text comes out.
// Implementations must be thread-safe for concurrent use.
type Model interface {
	// Name identifies the backend, e.g. "gemini:gemini-2.0-flash".
	Name() string

	// Generate returns the model's answer to prompt.
	// Models that cannot read attachments return ErrAttachmentUnsupported
	// when attachment is non-nil.
	Generate(ctx context.Context, prompt string, attachment *Attachment) (string, error)
}

// AIProvider aggregates AI services for convenient initialization and lifecycle management.
type AIProvider interface {
	// Embedder returns the text embedding service.
	Embedder() Embedder

	// Primary returns the document-reading model, or nil when it is not configured.
	Primary() Model

	// Secondary returns the full-text fallback model, or nil when it is not configured.
	Secondary() Model

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
