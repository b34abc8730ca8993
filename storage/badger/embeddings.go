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


package badger

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/poiesic/faqbot/storage"
)

// EmbeddingCache implements storage.EmbeddingCache using BadgerDB.
type EmbeddingCache struct {
	backend *Backend
}

var _ storage.EmbeddingCache = (*EmbeddingCache)(nil)

// NewEmbeddingCache creates a cache on top of an open backend.
// The cache owns the backend and closes it on Close.
func NewEmbeddingCache(backend *Backend) *EmbeddingCache {
	return &EmbeddingCache{backend: backend}
}

// OpenEmbeddingCache opens (or creates) an on-disk cache at path.
func OpenEmbeddingCache(path string, opts ...Option) (*EmbeddingCache, error) {
	o := applyOptions(opts)
	backend, err := OpenBackend(BackendConfig{Dir: path, Logger: o.logger})
	if err != nil {
		return nil, err
	}
	return NewEmbeddingCache(backend), nil
}

// GetEmbeddings looks up vectors for texts under modelID.
func (c *EmbeddingCache) GetEmbeddings(ctx context.Context, modelID string, texts []string) ([][]float32, error) {
	if c.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}

	vectors := make([][]float32, len(texts))
	err := c.backend.View(func(tx *badger.Txn) error {
		for i, text := range texts {
			if err := ctx.Err(); err != nil {
				return err
			}
			item, err := tx.Get(makeEmbeddingKey(modelID, text))
			if errors.Is(err, badger.ErrKeyNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			err = item.Value(func(val []byte) error {
				v, err := storage.UnmarshalVector(val)
				if err != nil {
					return err
				}
				vectors[i] = v
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return vectors, nil
}

// PutEmbeddings stores vectors for texts under modelID.
func (c *EmbeddingCache) PutEmbeddings(ctx context.Context, modelID string, texts []string, vectors [][]float32) error {
	if len(texts) != len(vectors) {
		return fmt.Errorf("%w: %d texts but %d vectors", storage.ErrInvalidQuery, len(texts), len(vectors))
	}
	if c.backend.IsClosed() {
		return storage.ErrStorageClosed
	}

	return c.backend.WriteBatch(func(wb *badger.WriteBatch) error {
		for i, text := range texts {
			if err := ctx.Err(); err != nil {
				return err
			}
			if len(vectors[i]) == 0 {
				continue
			}
			if err := wb.Set(makeEmbeddingKey(modelID, text), storage.MarshalVector(vectors[i])); err != nil {
				return err
			}
		}
		return nil
	})
}

// CountEmbeddings returns the number of cached vectors for modelID.
func (c *EmbeddingCache) CountEmbeddings(ctx context.Context, modelID string) (int, error) {
	if c.backend.IsClosed() {
		return 0, storage.ErrStorageClosed
	}

	count := 0
	err := c.backend.ScanKeys(makeModelPrefix(modelID), func([]byte) error {
		count++
		return ctx.Err()
	})
	return count, err
}

// PurgeEmbeddings removes every cached vector for modelID.
func (c *EmbeddingCache) PurgeEmbeddings(ctx context.Context, modelID string) error {
	if c.backend.IsClosed() {
		return storage.ErrStorageClosed
	}

	var keys [][]byte
	err := c.backend.ScanKeys(makeModelPrefix(modelID), func(key []byte) error {
		keys = append(keys, key)
		return nil
	})
	if err != nil {
		return err
	}

	err = c.backend.WriteBatch(func(wb *badger.WriteBatch) error {
		for _, key := range keys {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := wb.Delete(key); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	c.backend.CollectGarbage()
	return nil
}

// Close closes the underlying backend.
func (c *EmbeddingCache) Close() error {
	if c.backend.IsClosed() {
		return nil
	}
	return c.backend.Close()
}
