// Package storage defines the persistence abstraction for faqbot.
//
// The only persisted state is the embedding cache: vectors keyed by
// (embedding model id, normalized text) so a restart does not re-embed an
// unchanged corpus. Implementations live in subpackages (see storage/badger).
package storage
