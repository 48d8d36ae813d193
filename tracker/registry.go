// Package tracker implements the maintenance-task state machine. Each
// task carries two monotonic status axes (settlement and execution) plus
// the two counterparties of record. Payment settles through the token
// ledger into the treasury account and mints a certificate for the payer.
package tracker

import (
	"github.com/holiman/uint256"

	"github.com/Team9EncodeSolidity/main-tracker-blockchain/certificate"
	"github.com/Team9EncodeSolidity/main-tracker-blockchain/token"
)

// Registry tracks maintenance tasks. Task ids are allocated monotonically
// starting at 0 and never reused; tasks are never deleted. All
// preconditions of an operation are checked before its first write, so a
// rejected operation leaves every task record unchanged. Not
// goroutine-safe; the coordinator serializes access.
type Registry struct {
	ledger       *token.Ledger
	treasuryAddr token.Address
	certs        *certificate.Issuer
	tasks        []Task
}

// NewRegistry creates an empty registry settling payments into
// treasuryAddr on ledger and minting certificates through certs.
func NewRegistry(ledger *token.Ledger, treasuryAddr token.Address, certs *certificate.Issuer) *Registry {
	return &Registry{
		ledger:       ledger,
		treasuryAddr: treasuryAddr,
		certs:        certs,
	}
}

// OpenParams carries the fields of openMaintenanceTask.
type OpenParams struct {
	ClientName       string
	SystemName       string
	MaintenanceName  string
	SystemCycles     uint64
	IPFSHash         string
	EstimatedTime    int64
	StartTime        int64
	Cost             *uint256.Int
	Repairman        token.Address
	QualityInspector token.Address
}

// Open allocates the next task id and stores the task with initial
// statuses (InProgress, None). The assigned id is returned; it is also
// carried by the TaskOpened notification, which is the only way an
// external caller discovers it.
func (r *Registry) Open(p OpenParams) (uint64, error) {
	if p.Cost == nil || p.Cost.IsZero() {
		return 0, ErrInvalidParameters
	}
	if p.Repairman.IsZero() || p.QualityInspector.IsZero() {
		return 0, ErrInvalidParameters
	}

	id := uint64(len(r.tasks))
	r.tasks = append(r.tasks, Task{
		ID:               id,
		ClientName:       p.ClientName,
		SystemName:       p.SystemName,
		MaintenanceName:  p.MaintenanceName,
		SystemCycles:     p.SystemCycles,
		IPFSHash:         p.IPFSHash,
		EstimatedTime:    p.EstimatedTime,
		StartTime:        p.StartTime,
		Cost:             new(uint256.Int).Set(p.Cost),
		GeneralStatus:    InProgress,
		ExecutionStatus:  None,
		Repairman:        p.Repairman,
		QualityInspector: p.QualityInspector,
	})
	return id, nil
}

// Complete marks the task's work as finished by the repairman of record.
// Valid only while executionStatus is None.
func (r *Registry) Complete(caller token.Address, id uint64) error {
	task, err := r.task(id)
	if err != nil {
		return err
	}
	if task.ExecutionStatus != None {
		return ErrInvalidState
	}
	if caller != task.Repairman {
		return ErrUnauthorized
	}
	task.ExecutionStatus = CompletedByRepairman
	return nil
}

// Certify advances the task to CertifiedByQualityInspector. Only the
// recorded quality inspector may certify, and only from exactly
// CompletedByRepairman. The settlement axis moves to CompletedUnpaid to
// record that the work is done but not yet paid for.
func (r *Registry) Certify(caller token.Address, id uint64) error {
	task, err := r.task(id)
	if err != nil {
		return err
	}
	if task.ExecutionStatus != CompletedByRepairman {
		return ErrInvalidState
	}
	if caller != task.QualityInspector {
		return ErrUnauthorized
	}
	task.ExecutionStatus = CertifiedByQualityInspector
	task.GeneralStatus = CompletedUnpaid
	return nil
}

// Pay settles a certified task. The caller must have pre-approved the
// treasury address for at least the task cost; the cost argument must
// match the recorded cost. On success the tokens move from the caller to
// the treasury, the content/image references are attached, the settlement
// axis reaches CompletedPaid, and exactly one certificate is minted to
// the caller. A task can never be paid twice.
//
// The token transfer validates balance and allowance before mutating
// anything, so a failed transfer leaves both the ledger and the task
// record unchanged.
func (r *Registry) Pay(caller token.Address, id uint64, cost *uint256.Int, contentHash, imageHash string) (uint64, error) {
	task, err := r.task(id)
	if err != nil {
		return 0, err
	}
	if task.ExecutionStatus != CertifiedByQualityInspector {
		return 0, ErrInvalidState
	}
	if task.GeneralStatus == CompletedPaid {
		return 0, ErrInvalidState
	}
	if cost == nil || cost.Cmp(task.Cost) != 0 {
		return 0, ErrInvalidParameters
	}

	if err := r.ledger.TransferFrom(r.treasuryAddr, caller, r.treasuryAddr, cost); err != nil {
		return 0, err
	}

	certID, err := r.certs.Mint(caller)
	if err != nil {
		// Cannot happen for a non-zero caller; kept to surface issuer
		// contract changes.
		return 0, err
	}

	task.GeneralStatus = CompletedPaid
	task.ContentHash = contentHash
	task.ImageHash = imageHash
	return certID, nil
}

// Counter returns one more than the highest assigned task id.
func (r *Registry) Counter() uint64 {
	return uint64(len(r.tasks))
}

// Task returns a copy of the task with the given id.
func (r *Registry) Task(id uint64) (Task, error) {
	if id >= uint64(len(r.tasks)) {
		return Task{}, ErrTaskNotFound
	}
	return r.tasks[id].clone(), nil
}

// Tasks returns copies of all tasks in id order.
func (r *Registry) Tasks() []Task {
	out := make([]Task, len(r.tasks))
	for i, t := range r.tasks {
		out[i] = t.clone()
	}
	return out
}

func (r *Registry) task(id uint64) (*Task, error) {
	if id >= uint64(len(r.tasks)) {
		return nil, ErrTaskNotFound
	}
	return &r.tasks[id], nil
}
