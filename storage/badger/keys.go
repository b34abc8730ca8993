package badger

import "github.com/poiesic/faqbot/core"

const (
	embeddingPrefix = "emb"
)

// makeModelPrefix returns the key prefix shared by all vectors of one model.
// Format: emb:hash(model):
func makeModelPrefix(modelID string) []byte {
	return []byte(embeddingPrefix + ":" + core.ContentKey(modelID) + ":")
}

// makeEmbeddingKey generates the key for a cached vector.
// Format: emb:hash(model):hash(model, text)
func makeEmbeddingKey(modelID, text string) []byte {
	prefix := makeModelPrefix(modelID)
	return append(prefix, core.ContentKey(modelID, text)...)
}
