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
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
)

// Cache entries are small and rewritten rarely, so the store is sized far
// below badger's defaults.
const (
	memTableSize     = 8 << 20
	valueLogFileSize = 32 << 20
	gcDiscardRatio   = 0.5
)

// BackendConfig describes where the store lives.
type BackendConfig struct {
	Dir      string // Ignored when InMemory is set
	InMemory bool
	Logger   *slog.Logger // nil uses slog.Default()
}

// Backend owns a BadgerDB instance holding single-version cache entries.
type Backend struct {
	db     *badger.DB
	logger *slog.Logger
}

// slogAdapter routes badger diagnostics into slog.
type slogAdapter struct {
	logger *slog.Logger
}

var _ badger.Logger = (*slogAdapter)(nil)

func (a *slogAdapter) Errorf(msg string, items ...any) {
	a.logger.Error(fmt.Sprintf(msg, items...))
}

func (a *slogAdapter) Warningf(msg string, items ...any) {
	a.logger.Warn(fmt.Sprintf(msg, items...))
}

// Badger is chatty at info level; demote to debug.
func (a *slogAdapter) Infof(msg string, items ...any) {
	a.logger.Debug(fmt.Sprintf(msg, items...))
}

func (a *slogAdapter) Debugf(msg string, items ...any) {
	a.logger.Debug(fmt.Sprintf(msg, items...))
}

// OpenBackend opens the store described by cfg, creating the directory if needed.
func OpenBackend(cfg BackendConfig) (*Backend, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "badger")

	opts := badger.DefaultOptions("").WithInMemory(true)
	if !cfg.InMemory {
		if err := ensureDir(cfg.Dir); err != nil {
			return nil, err
		}
		opts = badger.DefaultOptions(cfg.Dir).WithValueLogFileSize(valueLogFileSize)
	}
	opts = opts.
		WithLogger(&slogAdapter{logger: logger}).
		WithCompression(options.None).
		WithNumVersionsToKeep(1).
		WithMemTableSize(memTableSize).
		WithDetectConflicts(false)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening embedding store: %w", err)
	}
	return &Backend{db: db, logger: logger}, nil
}

func ensureDir(dir string) error {
	if dir == "" {
		return errors.New("embedding store directory is required")
	}
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return os.MkdirAll(dir, 0o755)
	}
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}
	return nil
}

// Close closes the database.
func (b *Backend) Close() error {
	return b.db.Close()
}

// IsClosed reports whether Close has been called.
func (b *Backend) IsClosed() bool {
	return b.db.IsClosed()
}

// View runs fn in a read-only transaction.
func (b *Backend) View(fn func(tx *badger.Txn) error) error {
	return b.db.View(fn)
}

// ScanKeys calls fn with a copy of every key under prefix, without loading values.
func (b *Backend) ScanKeys(prefix []byte, fn func(key []byte) error) error {
	return b.db.View(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := fn(iter.Item().KeyCopy(nil)); err != nil {
				return err
			}
		}
		return nil
	})
}

// WriteBatch applies fn's writes without the single-transaction size limit.
func (b *Backend) WriteBatch(fn func(wb *badger.WriteBatch) error) error {
	wb := b.db.NewWriteBatch()
	defer wb.Cancel()
	if err := fn(wb); err != nil {
		return err
	}
	return wb.Flush()
}

// CollectGarbage reclaims value log space after large deletions.
// It is a no-op for in-memory stores.
func (b *Backend) CollectGarbage() {
	for {
		err := b.db.RunValueLogGC(gcDiscardRatio)
		if err == nil {
			continue
		}
		if !errors.Is(err, badger.ErrNoRewrite) && !errors.Is(err, badger.ErrGCInMemoryMode) {
			b.logger.Warn("value log GC failed", "err", err)
		}
		return
	}
}
