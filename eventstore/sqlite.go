package eventstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/Team9EncodeSolidity/main-tracker-blockchain/eventlog"
	"github.com/Team9EncodeSolidity/main-tracker-blockchain/token"
)

// SQLiteStore persists the commit log in a SQLite database. Use ":memory:"
// as the path for an ephemeral database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (and migrates) a SQLite-backed store.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS ledger_entries (
		seq INTEGER PRIMARY KEY,
		id TEXT NOT NULL,
		op TEXT NOT NULL,
		caller TEXT,
		timestamp TEXT NOT NULL,
		attrs TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_ledger_entries_op ON ledger_entries(op);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Append implements Store.
func (s *SQLiteStore) Append(ctx context.Context, expected int64, entries []eventlog.Entry) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return -1, err
	}
	defer tx.Rollback()

	last, err := lastSeqTx(ctx, tx)
	if err != nil {
		return -1, err
	}
	if expected != last {
		return last, ErrConcurrencyConflict
	}

	for _, e := range entries {
		var attrs []byte
		if e.Attrs != nil {
			attrs, err = json.Marshal(e.Attrs)
			if err != nil {
				return -1, fmt.Errorf("encode attrs for seq %d: %w", e.Seq, err)
			}
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO ledger_entries (seq, id, op, caller, timestamp, attrs)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			e.Seq, e.ID, string(e.Op), string(e.Caller),
			e.Timestamp.UTC().Format(time.RFC3339Nano), nullable(attrs),
		)
		if err != nil {
			return -1, err
		}
		last = int64(e.Seq)
	}

	if err := tx.Commit(); err != nil {
		return -1, err
	}
	return last, nil
}

// Read implements Store.
func (s *SQLiteStore) Read(ctx context.Context, fromSeq uint64) ([]eventlog.Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT seq, id, op, caller, timestamp, attrs
		 FROM ledger_entries WHERE seq >= ? ORDER BY seq`, fromSeq,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []eventlog.Entry
	for rows.Next() {
		var (
			e      eventlog.Entry
			op     string
			caller string
			ts     string
			attrs  sql.NullString
		)
		if err := rows.Scan(&e.Seq, &e.ID, &op, &caller, &ts, &attrs); err != nil {
			return nil, err
		}
		e.Op = eventlog.Op(op)
		e.Caller = token.Address(caller)
		e.Timestamp, err = time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return nil, fmt.Errorf("seq %d: invalid timestamp: %w", e.Seq, err)
		}
		if attrs.Valid && attrs.String != "" {
			if err := json.Unmarshal([]byte(attrs.String), &e.Attrs); err != nil {
				return nil, fmt.Errorf("seq %d: invalid attrs: %w", e.Seq, err)
			}
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// LastSeq implements Store.
func (s *SQLiteStore) LastSeq(ctx context.Context) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return -1, err
	}
	defer tx.Rollback()
	return lastSeqTx(ctx, tx)
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func lastSeqTx(ctx context.Context, tx *sql.Tx) (int64, error) {
	var last sql.NullInt64
	err := tx.QueryRowContext(ctx, `SELECT MAX(seq) FROM ledger_entries`).Scan(&last)
	if err != nil {
		return -1, err
	}
	if !last.Valid {
		return -1, nil
	}
	return last.Int64, nil
}

func nullable(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}
