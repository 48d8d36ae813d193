package eventstore_test

import (
	"context"
	"errors"
	"testing"

	"github.com/Team9EncodeSolidity/main-tracker-blockchain/eventlog"
	"github.com/Team9EncodeSolidity/main-tracker-blockchain/eventstore"
)

func TestMemoryStore(t *testing.T) {
	runStoreTests(t, func() eventstore.Store {
		return eventstore.NewMemoryStore()
	})
}

func TestSQLiteStore(t *testing.T) {
	runStoreTests(t, func() eventstore.Store {
		store, err := eventstore.NewSQLiteStore(":memory:")
		if err != nil {
			t.Fatalf("failed to create sqlite store: %v", err)
		}
		return store
	})
}

func sequenced(log *eventlog.Log, op eventlog.Op, attrs map[string]any) eventlog.Entry {
	return log.Append(eventlog.New(op, "0xcaller", attrs))
}

func runStoreTests(t *testing.T, newStore func() eventstore.Store) {
	t.Run("AppendAndRead", func(t *testing.T) {
		store := newStore()
		defer store.Close()
		ctx := context.Background()
		log := eventlog.NewLog()

		e1 := sequenced(log, eventlog.OpTaskOpened, map[string]any{"taskId": "0"})
		e2 := sequenced(log, eventlog.OpTaskCertified, map[string]any{"taskId": "0"})

		last, err := store.Append(ctx, -1, []eventlog.Entry{e1})
		if err != nil {
			t.Fatalf("append failed: %v", err)
		}
		if last != 0 {
			t.Errorf("expected last seq 0, got %d", last)
		}

		last, err = store.Append(ctx, 0, []eventlog.Entry{e2})
		if err != nil {
			t.Fatalf("append failed: %v", err)
		}
		if last != 1 {
			t.Errorf("expected last seq 1, got %d", last)
		}

		entries, err := store.Read(ctx, 0)
		if err != nil {
			t.Fatalf("read failed: %v", err)
		}
		if len(entries) != 2 {
			t.Fatalf("expected 2 entries, got %d", len(entries))
		}
		if entries[0].Op != eventlog.OpTaskOpened {
			t.Errorf("expected taskOpened, got %s", entries[0].Op)
		}
		if entries[1].Op != eventlog.OpTaskCertified {
			t.Errorf("expected taskCertified, got %s", entries[1].Op)
		}
		if entries[0].Attrs["taskId"] != "0" {
			t.Errorf("attrs lost: %v", entries[0].Attrs)
		}
	})

	t.Run("ConcurrencyConflict", func(t *testing.T) {
		store := newStore()
		defer store.Close()
		ctx := context.Background()
		log := eventlog.NewLog()

		e1 := sequenced(log, eventlog.OpDeploy, nil)
		e2 := sequenced(log, eventlog.OpIssue, nil)

		if _, err := store.Append(ctx, -1, []eventlog.Entry{e1}); err != nil {
			t.Fatalf("append failed: %v", err)
		}

		// Wrong expected version must be rejected.
		if _, err := store.Append(ctx, 5, []eventlog.Entry{e2}); !errors.Is(err, eventstore.ErrConcurrencyConflict) {
			t.Errorf("expected concurrency conflict, got: %v", err)
		}

		if _, err := store.Append(ctx, 0, []eventlog.Entry{e2}); err != nil {
			t.Errorf("append with correct version failed: %v", err)
		}
	})

	t.Run("LastSeq", func(t *testing.T) {
		store := newStore()
		defer store.Close()
		ctx := context.Background()

		last, err := store.LastSeq(ctx)
		if err != nil {
			t.Fatalf("last seq failed: %v", err)
		}
		if last != -1 {
			t.Errorf("expected -1 for empty stream, got %d", last)
		}

		log := eventlog.NewLog()
		e := sequenced(log, eventlog.OpDeploy, nil)
		if _, err := store.Append(ctx, -1, []eventlog.Entry{e}); err != nil {
			t.Fatalf("append failed: %v", err)
		}

		last, err = store.LastSeq(ctx)
		if err != nil {
			t.Fatalf("last seq failed: %v", err)
		}
		if last != 0 {
			t.Errorf("expected 0, got %d", last)
		}
	})

	t.Run("ReadFromSeq", func(t *testing.T) {
		store := newStore()
		defer store.Close()
		ctx := context.Background()
		log := eventlog.NewLog()

		for i := 0; i < 3; i++ {
			e := sequenced(log, eventlog.OpIssue, nil)
			if _, err := store.Append(ctx, int64(i)-1, []eventlog.Entry{e}); err != nil {
				t.Fatalf("append failed: %v", err)
			}
		}

		entries, err := store.Read(ctx, 1)
		if err != nil {
			t.Fatalf("read failed: %v", err)
		}
		if len(entries) != 2 {
			t.Fatalf("expected 2 entries, got %d", len(entries))
		}
		if entries[0].Seq != 1 {
			t.Errorf("expected first seq 1, got %d", entries[0].Seq)
		}
	})
}
