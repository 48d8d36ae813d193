package tracker

import (
	"github.com/holiman/uint256"

	"github.com/Team9EncodeSolidity/main-tracker-blockchain/token"
)

// GeneralStatus is the overall settlement state of a task. It only moves
// forward: InProgress -> CompletedUnpaid -> CompletedPaid.
type GeneralStatus int

const (
	InProgress GeneralStatus = iota
	CompletedUnpaid
	CompletedPaid
)

func (s GeneralStatus) String() string {
	switch s {
	case InProgress:
		return "InProgress"
	case CompletedUnpaid:
		return "CompletedUnpaid"
	case CompletedPaid:
		return "CompletedPaid"
	default:
		return "Unknown"
	}
}

// ExecutionStatus is the work-completion state of a task. It only moves
// forward: None -> CompletedByRepairman -> CertifiedByQualityInspector.
type ExecutionStatus int

const (
	None ExecutionStatus = iota
	CompletedByRepairman
	CertifiedByQualityInspector
)

func (s ExecutionStatus) String() string {
	switch s {
	case None:
		return "None"
	case CompletedByRepairman:
		return "CompletedByRepairman"
	case CertifiedByQualityInspector:
		return "CertifiedByQualityInspector"
	default:
		return "Unknown"
	}
}

// Task records one maintenance engagement. Identity fields are immutable
// after creation; the two status axes advance monotonically; the content
// and image references are attached at payment.
type Task struct {
	ID              uint64
	ClientName      string
	SystemName      string
	MaintenanceName string
	SystemCycles    uint64
	IPFSHash        string
	EstimatedTime   int64 // Unix timestamp
	StartTime       int64 // Unix timestamp
	Cost            *uint256.Int

	GeneralStatus   GeneralStatus
	ExecutionStatus ExecutionStatus

	Repairman        token.Address
	QualityInspector token.Address

	// Attached by payForTask.
	ContentHash string
	ImageHash   string
}

func (t Task) clone() Task {
	c := t
	if t.Cost != nil {
		c.Cost = new(uint256.Int).Set(t.Cost)
	}
	return c
}
