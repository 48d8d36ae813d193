package tracker

import (
	"errors"
	"testing"

	"github.com/holiman/uint256"

	"github.com/Team9EncodeSolidity/main-tracker-blockchain/certificate"
	"github.com/Team9EncodeSolidity/main-tracker-blockchain/token"
)

const (
	deployer     = token.Address("0xdeployer")
	treasuryAddr = token.Address("0xtreasury")
	client       = token.Address("0xclient")
	repairman    = token.Address("0xrepairman")
	inspector    = token.Address("0xinspector")
)

type fixedPrice struct{}

func (fixedPrice) CurrentPrice() *uint256.Int { return uint256.NewInt(1000000) }

func newTestRegistry(t *testing.T) (*Registry, *token.Ledger, *certificate.Issuer) {
	t.Helper()
	l := token.NewLedger("MaintenanceToken", "MTT", 18, deployer)
	issuer := certificate.NewIssuer(fixedPrice{})
	return NewRegistry(l, treasuryAddr, issuer), l, issuer
}

func openTask(t *testing.T, r *Registry, cost uint64) uint64 {
	t.Helper()
	id, err := r.Open(OpenParams{
		ClientName:       "Gabriel",
		SystemName:       "AIRCRAFT",
		MaintenanceName:  "EngineMaintenance",
		SystemCycles:     1000,
		IPFSHash:         "ipfs://QmaVkBn2tKmjbhphU7eyztbvSQU5EXDdqRyXZtRhSGgJGo",
		EstimatedTime:    1700259200,
		StartTime:        1700000000,
		Cost:             uint256.NewInt(cost),
		Repairman:        repairman,
		QualityInspector: inspector,
	})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	return id
}

func TestOpenAssignsSequentialIDs(t *testing.T) {
	r, _, _ := newTestRegistry(t)

	for want := uint64(0); want < 3; want++ {
		if id := openTask(t, r, 1); id != want {
			t.Errorf("open id = %d, want %d", id, want)
		}
	}
	if r.Counter() != 3 {
		t.Errorf("counter = %d, want 3", r.Counter())
	}

	task, err := r.Task(0)
	if err != nil {
		t.Fatalf("task: %v", err)
	}
	if task.GeneralStatus != InProgress || task.ExecutionStatus != None {
		t.Errorf("initial statuses = (%s, %s)", task.GeneralStatus, task.ExecutionStatus)
	}
}

func TestOpenValidation(t *testing.T) {
	r, _, _ := newTestRegistry(t)

	_, err := r.Open(OpenParams{Cost: uint256.NewInt(0), Repairman: repairman, QualityInspector: inspector})
	if !errors.Is(err, ErrInvalidParameters) {
		t.Errorf("zero cost: got %v", err)
	}
	_, err = r.Open(OpenParams{Cost: uint256.NewInt(1), QualityInspector: inspector})
	if !errors.Is(err, ErrInvalidParameters) {
		t.Errorf("zero repairman: got %v", err)
	}
	if r.Counter() != 0 {
		t.Errorf("rejected open allocated an id")
	}
}

func TestCompleteRequiresRepairman(t *testing.T) {
	r, _, _ := newTestRegistry(t)
	id := openTask(t, r, 1)

	if err := r.Complete(inspector, id); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("complete by inspector: got %v, want ErrUnauthorized", err)
	}
	if err := r.Complete(repairman, id); err != nil {
		t.Fatalf("complete: %v", err)
	}
	task, _ := r.Task(id)
	if task.ExecutionStatus != CompletedByRepairman {
		t.Errorf("execution status = %s", task.ExecutionStatus)
	}

	// Completing twice is an invalid transition.
	if err := r.Complete(repairman, id); !errors.Is(err, ErrInvalidState) {
		t.Errorf("second complete: got %v, want ErrInvalidState", err)
	}
}

func TestCertify(t *testing.T) {
	r, _, _ := newTestRegistry(t)
	id := openTask(t, r, 1)

	// Certification before completion is an invalid state.
	if err := r.Certify(inspector, id); !errors.Is(err, ErrInvalidState) {
		t.Errorf("certify before complete: got %v, want ErrInvalidState", err)
	}

	if err := r.Complete(repairman, id); err != nil {
		t.Fatalf("complete: %v", err)
	}

	// Only the inspector of record may certify.
	if err := r.Certify(repairman, id); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("certify by repairman: got %v, want ErrUnauthorized", err)
	}
	task, _ := r.Task(id)
	if task.ExecutionStatus != CompletedByRepairman {
		t.Error("failed certify mutated execution status")
	}

	if err := r.Certify(inspector, id); err != nil {
		t.Fatalf("certify: %v", err)
	}
	task, _ = r.Task(id)
	if task.ExecutionStatus != CertifiedByQualityInspector {
		t.Errorf("execution status = %s", task.ExecutionStatus)
	}
	if task.GeneralStatus != CompletedUnpaid {
		t.Errorf("general status = %s, want CompletedUnpaid", task.GeneralStatus)
	}

	if err := r.Certify(inspector, id); !errors.Is(err, ErrInvalidState) {
		t.Errorf("second certify: got %v, want ErrInvalidState", err)
	}
}

func TestCertifyUnknownTask(t *testing.T) {
	r, _, _ := newTestRegistry(t)
	if err := r.Certify(inspector, 0); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("certify unknown: got %v, want ErrTaskNotFound", err)
	}
	if _, err := r.Task(0); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("task unknown: got %v, want ErrTaskNotFound", err)
	}
}

func TestPayBeforeCertificationFails(t *testing.T) {
	r, l, _ := newTestRegistry(t)
	id := openTask(t, r, 1)
	l.Issue(deployer, client, uint256.NewInt(1))
	l.Approve(client, treasuryAddr, uint256.NewInt(1))

	if _, err := r.Pay(client, id, uint256.NewInt(1), "", ""); !errors.Is(err, ErrInvalidState) {
		t.Errorf("pay before certify: got %v, want ErrInvalidState", err)
	}
	r.Complete(repairman, id)
	if _, err := r.Pay(client, id, uint256.NewInt(1), "", ""); !errors.Is(err, ErrInvalidState) {
		t.Errorf("pay before certify: got %v, want ErrInvalidState", err)
	}
	task, _ := r.Task(id)
	if task.GeneralStatus == CompletedPaid {
		t.Error("failed pay advanced settlement status")
	}
	if got := l.BalanceOf(client); got.Uint64() != 1 {
		t.Error("failed pay moved tokens")
	}
}

func TestPayScenario(t *testing.T) {
	r, l, issuer := newTestRegistry(t)
	id := openTask(t, r, 1)

	r.Complete(repairman, id)
	if err := r.Certify(inspector, id); err != nil {
		t.Fatalf("certify: %v", err)
	}

	l.Issue(deployer, client, uint256.NewInt(1))

	// Payment without a pre-approval fails and leaves everything intact.
	if _, err := r.Pay(client, id, uint256.NewInt(1), "", ""); !errors.Is(err, token.ErrInsufficientAllowance) {
		t.Errorf("pay without approval: got %v, want ErrInsufficientAllowance", err)
	}

	l.Approve(client, treasuryAddr, uint256.NewInt(1))

	certID, err := r.Pay(client, id, uint256.NewInt(1),
		"ipfs://content", "ipfs://image")
	if err != nil {
		t.Fatalf("pay: %v", err)
	}

	task, _ := r.Task(id)
	if task.GeneralStatus != CompletedPaid {
		t.Errorf("general status = %s, want CompletedPaid", task.GeneralStatus)
	}
	if task.ContentHash != "ipfs://content" || task.ImageHash != "ipfs://image" {
		t.Errorf("references not attached: %q %q", task.ContentHash, task.ImageHash)
	}
	if got := l.BalanceOf(treasuryAddr); got.Uint64() != 1 {
		t.Errorf("treasury balance = %s, want 1", got.Dec())
	}
	if got := l.BalanceOf(client); !got.IsZero() {
		t.Errorf("client balance = %s, want 0", got.Dec())
	}

	// Exactly one certificate, minted to the payer.
	if issuer.Count() != 1 {
		t.Fatalf("certificate count = %d, want 1", issuer.Count())
	}
	cert, _ := issuer.Get(certID)
	if cert.Owner != client {
		t.Errorf("certificate owner = %s, want %s", cert.Owner, client)
	}

	// No double payment.
	l.Issue(deployer, client, uint256.NewInt(1))
	l.Approve(client, treasuryAddr, uint256.NewInt(1))
	if _, err := r.Pay(client, id, uint256.NewInt(1), "", ""); !errors.Is(err, ErrInvalidState) {
		t.Errorf("second pay: got %v, want ErrInvalidState", err)
	}
	if issuer.Count() != 1 {
		t.Errorf("second pay minted a certificate")
	}
}

func TestPayCostMismatch(t *testing.T) {
	r, l, _ := newTestRegistry(t)
	id := openTask(t, r, 2)
	r.Complete(repairman, id)
	r.Certify(inspector, id)
	l.Issue(deployer, client, uint256.NewInt(5))
	l.Approve(client, treasuryAddr, uint256.NewInt(5))

	if _, err := r.Pay(client, id, uint256.NewInt(1), "", ""); !errors.Is(err, ErrInvalidParameters) {
		t.Errorf("cost mismatch: got %v, want ErrInvalidParameters", err)
	}
}

func TestStatusesNeverRegress(t *testing.T) {
	r, l, _ := newTestRegistry(t)
	id := openTask(t, r, 1)
	l.Issue(deployer, client, uint256.NewInt(1))
	l.Approve(client, treasuryAddr, uint256.NewInt(1))

	type pair struct {
		g GeneralStatus
		e ExecutionStatus
	}
	observe := func() pair {
		task, err := r.Task(id)
		if err != nil {
			t.Fatalf("task: %v", err)
		}
		return pair{task.GeneralStatus, task.ExecutionStatus}
	}

	prev := observe()
	steps := []func() error{
		func() error { return r.Complete(repairman, id) },
		func() error { return r.Certify(inspector, id) },
		func() error { _, err := r.Pay(client, id, uint256.NewInt(1), "", ""); return err },
	}
	for i, step := range steps {
		if err := step(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		cur := observe()
		if cur.g < prev.g || cur.e < prev.e {
			t.Fatalf("step %d regressed: (%s,%s) -> (%s,%s)",
				i, prev.g, prev.e, cur.g, cur.e)
		}
		prev = cur
	}
	if prev.g != CompletedPaid || prev.e != CertifiedByQualityInspector {
		t.Errorf("final pair = (%s, %s)", prev.g, prev.e)
	}
}
