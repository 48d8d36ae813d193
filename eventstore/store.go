// Package eventstore persists the ledger commit log. Stores hold a single
// totally ordered stream of entries and reject appends whose expected
// version does not match the stream head, so two writers racing on the
// same pre-state cannot both commit.
package eventstore

import (
	"context"
	"errors"

	"github.com/Team9EncodeSolidity/main-tracker-blockchain/eventlog"
)

// ErrConcurrencyConflict is returned when the expected version does not
// match the current stream head.
var ErrConcurrencyConflict = errors.New("eventstore: concurrency conflict")

// Store is the durability layer behind the commit log.
type Store interface {
	// Append stores entries after the given expected last sequence
	// number (-1 for an empty stream). It returns the new last sequence
	// number, or ErrConcurrencyConflict if expected does not match.
	Append(ctx context.Context, expected int64, entries []eventlog.Entry) (int64, error)

	// Read returns all entries with Seq >= fromSeq in sequence order.
	Read(ctx context.Context, fromSeq uint64) ([]eventlog.Entry, error)

	// LastSeq returns the highest stored sequence number, or -1 if the
	// stream is empty.
	LastSeq(ctx context.Context) (int64, error)

	// Close releases any underlying resources.
	Close() error
}

// MemoryStore is an in-memory Store for tests and ephemeral ledgers.
type MemoryStore struct {
	entries []eventlog.Entry
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Append implements Store.
func (s *MemoryStore) Append(_ context.Context, expected int64, entries []eventlog.Entry) (int64, error) {
	last := int64(len(s.entries)) - 1
	if expected != last {
		return last, ErrConcurrencyConflict
	}
	s.entries = append(s.entries, entries...)
	return int64(len(s.entries)) - 1, nil
}

// Read implements Store.
func (s *MemoryStore) Read(_ context.Context, fromSeq uint64) ([]eventlog.Entry, error) {
	if fromSeq >= uint64(len(s.entries)) {
		return nil, nil
	}
	out := make([]eventlog.Entry, len(s.entries)-int(fromSeq))
	copy(out, s.entries[fromSeq:])
	return out, nil
}

// LastSeq implements Store.
func (s *MemoryStore) LastSeq(_ context.Context) (int64, error) {
	return int64(len(s.entries)) - 1, nil
}

// Close implements Store.
func (s *MemoryStore) Close() error { return nil }
