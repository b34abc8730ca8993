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


package storage

import "context"

// EmbeddingCache stores vectors by embedding model and text.
// Entries from different models never collide.
type EmbeddingCache interface {
	// GetEmbeddings looks up vectors for texts under modelID.
	// The result is parallel to texts; a miss is a nil entry.
	GetEmbeddings(ctx context.Context, modelID string, texts []string) ([][]float32, error)

	// PutEmbeddings stores vectors for texts under modelID.
	// texts and vectors must have the same length.
	PutEmbeddings(ctx context.Context, modelID string, texts []string, vectors [][]float32) error

	// CountEmbeddings returns the number of cached vectors for modelID.
	CountEmbeddings(ctx context.Context, modelID string) (int, error)

	// PurgeEmbeddings removes every cached vector for modelID.
	PurgeEmbeddings(ctx context.Context, modelID string) error

	// Close closes the cache and releases resources.
	Close() error
}
