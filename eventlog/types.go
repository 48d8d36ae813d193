// Package eventlog provides the ordered, append-only commit log of the
// maintenance ledger. Every successful operation appends exactly one
// entry; subscribers read the log or receive pushed entries, and the log
// can be encoded as JSONL for persistence and replay.
package eventlog

import (
	"time"

	"github.com/google/uuid"

	"github.com/Team9EncodeSolidity/main-tracker-blockchain/token"
)

// Op names a committed ledger operation.
type Op string

const (
	OpDeploy       Op = "deploy"
	OpIssue        Op = "issue"
	OpApprove      Op = "approve"
	OpTransfer     Op = "transfer"
	OpTransferFrom Op = "transferFrom"
	OpBurn         Op = "burn"
	OpGrantMint    Op = "grantMint"

	OpBuyTokens        Op = "buyTokens"
	OpTreasurySweep    Op = "withdrawTreasuryEthAndBurn"
	OpTaskOpened       Op = "taskOpened"
	OpTaskCompleted    Op = "taskCompleted"
	OpTaskCertified    Op = "taskCertified"
	OpTaskPaid         Op = "taskPaid"
)

// Entry is a single committed operation. Seq is assigned by the log at
// append time and is strictly increasing; ID is a globally unique
// identifier for cross-system correlation. Numeric attributes are stored
// as decimal strings so entries survive JSON encoding without precision
// loss.
type Entry struct {
	Seq       uint64         `json:"seq"`
	ID        string         `json:"id"`
	Op        Op             `json:"op"`
	Caller    token.Address  `json:"caller,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
	Attrs     map[string]any `json:"attrs,omitempty"`
}

// New creates an unsequenced entry for the given operation.
func New(op Op, caller token.Address, attrs map[string]any) Entry {
	return Entry{
		ID:        uuid.NewString(),
		Op:        op,
		Caller:    caller,
		Timestamp: time.Now().UTC(),
		Attrs:     attrs,
	}
}

// Log is the in-memory commit log. Entries are only ever appended, never
// mutated or removed.
type Log struct {
	entries []Entry
}

// NewLog creates an empty log.
func NewLog() *Log {
	return &Log{}
}

// Append assigns the next sequence number and stores the entry, returning
// the sequenced copy.
func (l *Log) Append(e Entry) Entry {
	e.Seq = uint64(len(l.entries))
	l.entries = append(l.entries, e)
	return e
}

// Len returns the number of committed entries.
func (l *Log) Len() int {
	return len(l.entries)
}

// Entries returns a copy of all entries in commit order.
func (l *Log) Entries() []Entry {
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Last returns the most recent entry, if any.
func (l *Log) Last() (Entry, bool) {
	if len(l.entries) == 0 {
		return Entry{}, false
	}
	return l.entries[len(l.entries)-1], true
}

// ByOp returns all entries for the given operation, in commit order.
func (l *Log) ByOp(op Op) []Entry {
	var out []Entry
	for _, e := range l.entries {
		if e.Op == op {
			out = append(out, e)
		}
	}
	return out
}
