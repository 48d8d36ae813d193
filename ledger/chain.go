// Package ledger provides the coordinator that owns all mutable protocol
// state: the token ledger, the treasury, the task registry, the
// certificate issuer, and the commit log. Every public operation runs
// under a single lock, giving all callers one total order; each operation
// validates its preconditions before its first write, so it either
// commits all of its state changes or none of them.
package ledger

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/holiman/uint256"

	"github.com/Team9EncodeSolidity/main-tracker-blockchain/access"
	"github.com/Team9EncodeSolidity/main-tracker-blockchain/amount"
	"github.com/Team9EncodeSolidity/main-tracker-blockchain/certificate"
	"github.com/Team9EncodeSolidity/main-tracker-blockchain/eventlog"
	"github.com/Team9EncodeSolidity/main-tracker-blockchain/eventstore"
	"github.com/Team9EncodeSolidity/main-tracker-blockchain/token"
	"github.com/Team9EncodeSolidity/main-tracker-blockchain/tracker"
	"github.com/Team9EncodeSolidity/main-tracker-blockchain/treasury"
)

// Config carries the deployment-time parameters of the ledger. The
// exchange ratio is configuration, not protocol: observed deployments
// used values from 1e6 to 1e18.
type Config struct {
	Owner           token.Address
	TreasuryAddress token.Address
	TokenName       string
	TokenSymbol     string
	Decimals        int
	ExchangeRatio   *uint256.Int
}

func (c *Config) applyDefaults() {
	if c.TokenName == "" {
		c.TokenName = "MaintenanceToken"
	}
	if c.TokenSymbol == "" {
		c.TokenSymbol = "MTT"
	}
	if c.Decimals == 0 {
		c.Decimals = amount.Decimals
	}
	if c.TreasuryAddress.IsZero() {
		c.TreasuryAddress = token.Address("treasury")
	}
}

// Chain is the single coordinator of the maintenance ledger. All methods
// are safe for concurrent use; operations are serialized into one total
// order and appended to the commit log on success.
type Chain struct {
	mu sync.Mutex

	cfg      Config
	tokens   *token.Ledger
	treasury *treasury.Treasury
	tracker  *tracker.Registry
	certs    *certificate.Issuer
	policy   *access.Policy

	log   *eventlog.Log
	store eventstore.Store

	subs    map[int]chan eventlog.Entry
	nextSub int
}

// New deploys a chain. If store is non-nil and already holds entries, the
// chain replays them to rebuild state; otherwise a deploy entry recording
// the configuration is committed first.
func New(ctx context.Context, cfg Config, store eventstore.Store) (*Chain, error) {
	cfg.applyDefaults()
	if cfg.Owner.IsZero() {
		return nil, fmt.Errorf("ledger: owner address is required")
	}
	if cfg.ExchangeRatio == nil || cfg.ExchangeRatio.IsZero() {
		return nil, treasury.ErrInvalidRatio
	}

	c := &Chain{
		cfg:   cfg,
		store: store,
		subs:  make(map[int]chan eventlog.Entry),
	}
	if err := c.initState(); err != nil {
		return nil, err
	}

	if store != nil {
		entries, err := store.Read(ctx, 0)
		if err != nil {
			return nil, fmt.Errorf("ledger: read store: %w", err)
		}
		if len(entries) > 0 {
			if err := c.replay(entries); err != nil {
				return nil, err
			}
			return c, nil
		}
	}

	if err := c.commit(ctx, eventlog.New(eventlog.OpDeploy, cfg.Owner, map[string]any{
		"tokenName":     cfg.TokenName,
		"tokenSymbol":   cfg.TokenSymbol,
		"decimals":      fmt.Sprintf("%d", cfg.Decimals),
		"exchangeRatio": cfg.ExchangeRatio.Dec(),
		"treasury":      string(cfg.TreasuryAddress),
	})); err != nil {
		return nil, err
	}
	return c, nil
}

// initState builds fresh genesis components, leaving cfg, store, and
// subscriptions untouched. Used at construction and to discard mutations
// whose commit entry could not be persisted.
func (c *Chain) initState() error {
	tokens := token.NewLedger(c.cfg.TokenName, c.cfg.TokenSymbol, c.cfg.Decimals, c.cfg.Owner)
	if err := tokens.GrantMint(c.cfg.Owner, c.cfg.TreasuryAddress); err != nil {
		return fmt.Errorf("ledger: grant treasury mint role: %w", err)
	}

	tr, err := treasury.New(c.cfg.Owner, c.cfg.TreasuryAddress, tokens, c.cfg.ExchangeRatio)
	if err != nil {
		return err
	}

	certs := certificate.NewIssuer(tr)

	policy := access.NewPolicy(access.DefaultRules())
	policy.Grant(access.RoleOwner, c.cfg.Owner)
	policy.Grant(access.RoleMinter, c.cfg.Owner)
	policy.Grant(access.RoleMinter, c.cfg.TreasuryAddress)

	c.tokens = tokens
	c.treasury = tr
	c.tracker = tracker.NewRegistry(tokens, c.cfg.TreasuryAddress, certs)
	c.certs = certs
	c.policy = policy
	c.log = eventlog.NewLog()
	return nil
}

// commit appends a sequenced entry to the log, persists it, and pushes it
// to subscribers. Called with the chain lock held (or during New, before
// the chain is shared). If the store rejects the entry, the caller's
// component mutations are discarded by rebuilding state from the log
// without it, so a persist failure leaves the chain exactly as it was.
func (c *Chain) commit(ctx context.Context, e eventlog.Entry) error {
	e = c.log.Append(e)

	if c.store != nil {
		if _, err := c.store.Append(ctx, int64(e.Seq)-1, []eventlog.Entry{e}); err != nil {
			prior := c.log.Entries()
			if rerr := c.reset(prior[:len(prior)-1]); rerr != nil {
				return fmt.Errorf("ledger: persist seq %d: %v (state rebuild failed: %w)", e.Seq, err, rerr)
			}
			return fmt.Errorf("ledger: persist seq %d: %w", e.Seq, err)
		}
	}

	for _, ch := range c.subs {
		select {
		case ch <- e:
		default:
			// Slow subscribers miss entries rather than stall commits;
			// they can re-read the log to catch up.
		}
	}
	return nil
}

// Subscribe returns a channel of committed entries and a cancel function.
// Entries committed before the subscription are not delivered; read the
// log for history.
func (c *Chain) Subscribe() (<-chan eventlog.Entry, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextSub
	c.nextSub++
	ch := make(chan eventlog.Entry, 64)
	c.subs[id] = ch

	cancel := func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if sub, ok := c.subs[id]; ok {
			delete(c.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Log returns a copy of the commit log.
func (c *Chain) Log() []eventlog.Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.log.Entries()
}

// Owner returns the deployer address.
func (c *Chain) Owner() token.Address { return c.cfg.Owner }

// TreasuryAddress returns the treasury's ledger address, which is also
// the spender tasks must be approved for before payForTask.
func (c *Chain) TreasuryAddress() token.Address { return c.cfg.TreasuryAddress }

// --- TokenLedger operations ---

// Issue creates new tokens for to. The caller must hold the minter role.
func (c *Chain) Issue(ctx context.Context, caller, to token.Address, value *uint256.Int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.policy.Allow(eventlog.OpIssue, caller) {
		return token.ErrUnauthorized
	}
	if err := c.tokens.Issue(caller, to, value); err != nil {
		return err
	}
	return c.commit(ctx, eventlog.New(eventlog.OpIssue, caller, map[string]any{
		"to":     string(to),
		"amount": value.Dec(),
	}))
}

// Approve sets the allowance spender may move on the caller's behalf.
func (c *Chain) Approve(ctx context.Context, caller, spender token.Address, value *uint256.Int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.tokens.Approve(caller, spender, value); err != nil {
		return err
	}
	return c.commit(ctx, eventlog.New(eventlog.OpApprove, caller, map[string]any{
		"spender": string(spender),
		"amount":  value.Dec(),
	}))
}

// Transfer moves tokens from the caller to to.
func (c *Chain) Transfer(ctx context.Context, caller, to token.Address, value *uint256.Int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.tokens.Transfer(caller, to, value); err != nil {
		return err
	}
	return c.commit(ctx, eventlog.New(eventlog.OpTransfer, caller, map[string]any{
		"to":     string(to),
		"amount": value.Dec(),
	}))
}

// TransferFrom moves tokens from owner to to on the caller's behalf,
// consuming allowance.
func (c *Chain) TransferFrom(ctx context.Context, caller, owner, to token.Address, value *uint256.Int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.tokens.TransferFrom(caller, owner, to, value); err != nil {
		return err
	}
	return c.commit(ctx, eventlog.New(eventlog.OpTransferFrom, caller, map[string]any{
		"from":   string(owner),
		"to":     string(to),
		"amount": value.Dec(),
	}))
}

// Burn destroys tokens held by from. The caller must hold the minter role.
func (c *Chain) Burn(ctx context.Context, caller, from token.Address, value *uint256.Int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.policy.Allow(eventlog.OpBurn, caller) {
		return token.ErrUnauthorized
	}
	if err := c.tokens.Burn(caller, from, value); err != nil {
		return err
	}
	return c.commit(ctx, eventlog.New(eventlog.OpBurn, caller, map[string]any{
		"from":   string(from),
		"amount": value.Dec(),
	}))
}

// GrantMint adds addr to the mint-authority set and the minter role.
func (c *Chain) GrantMint(ctx context.Context, caller, addr token.Address) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.policy.Allow(eventlog.OpGrantMint, caller) {
		return token.ErrUnauthorized
	}
	if err := c.tokens.GrantMint(caller, addr); err != nil {
		return err
	}
	c.policy.Grant(access.RoleMinter, addr)
	return c.commit(ctx, eventlog.New(eventlog.OpGrantMint, caller, map[string]any{
		"address": string(addr),
	}))
}

// BalanceOf returns the token balance of addr.
func (c *Chain) BalanceOf(addr token.Address) *uint256.Int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tokens.BalanceOf(addr)
}

// TotalSupply returns the current token supply.
func (c *Chain) TotalSupply() *uint256.Int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tokens.TotalSupply()
}

// Allowance returns what spender may move on behalf of owner.
func (c *Chain) Allowance(owner, spender token.Address) *uint256.Int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tokens.Allowance(owner, spender)
}

// Minters returns the mint-authority members in address order.
func (c *Chain) Minters() []token.Address {
	c.mu.Lock()
	defer c.mu.Unlock()
	members := c.tokens.Minters()
	slices.Sort(members)
	return members
}

// --- Treasury operations ---

// BuyTokens accepts a native-currency payment and issues payment/ratio
// tokens to the caller.
func (c *Chain) BuyTokens(ctx context.Context, caller token.Address, payment *uint256.Int) (*uint256.Int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	issued, err := c.treasury.BuyTokens(caller, payment)
	if err != nil {
		return nil, err
	}
	if err := c.commit(ctx, eventlog.New(eventlog.OpBuyTokens, caller, map[string]any{
		"payment": payment.Dec(),
		"issued":  issued.Dec(),
	})); err != nil {
		return nil, err
	}
	return issued, nil
}

// TreasuryBalance returns the token balance held by the treasury address.
func (c *Chain) TreasuryBalance() *uint256.Int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.treasury.TokenBalance()
}

// TreasuryEthBalance returns the treasury's accumulated native-currency
// balance.
func (c *Chain) TreasuryEthBalance() *uint256.Int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.treasury.EthBalance()
}

// WithdrawTreasuryEthAndBurn sweeps the treasury: the whole native
// balance to the caller, the whole token balance burned. Owner only.
func (c *Chain) WithdrawTreasuryEthAndBurn(ctx context.Context, caller token.Address) (swept, burned *uint256.Int, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.policy.Allow(eventlog.OpTreasurySweep, caller) {
		return nil, nil, treasury.ErrUnauthorized
	}
	swept, burned, err = c.treasury.WithdrawEthAndBurn(caller)
	if err != nil {
		return nil, nil, err
	}
	if err := c.commit(ctx, eventlog.New(eventlog.OpTreasurySweep, caller, map[string]any{
		"swept":  swept.Dec(),
		"burned": burned.Dec(),
	})); err != nil {
		return nil, nil, err
	}
	return swept, burned, nil
}

// --- TaskRegistry operations ---

// OpenMaintenanceTask allocates the next task id. The TaskOpened entry in
// the commit log carries the assigned id; that entry is how external
// callers discover it.
func (c *Chain) OpenMaintenanceTask(ctx context.Context, caller token.Address, p tracker.OpenParams) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id, err := c.tracker.Open(p)
	if err != nil {
		return 0, err
	}
	if err := c.commit(ctx, eventlog.New(eventlog.OpTaskOpened, caller, map[string]any{
		"taskId":           fmt.Sprintf("%d", id),
		"clientName":       p.ClientName,
		"systemName":       p.SystemName,
		"maintenanceName":  p.MaintenanceName,
		"systemCycles":     fmt.Sprintf("%d", p.SystemCycles),
		"ipfsHash":         p.IPFSHash,
		"estimatedTime":    fmt.Sprintf("%d", p.EstimatedTime),
		"startTime":        fmt.Sprintf("%d", p.StartTime),
		"cost":             p.Cost.Dec(),
		"repairman":        string(p.Repairman),
		"qualityInspector": string(p.QualityInspector),
	})); err != nil {
		return 0, err
	}
	return id, nil
}

// CompleteTask marks the task's work finished; repairman of record only.
func (c *Chain) CompleteTask(ctx context.Context, caller token.Address, id uint64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.tracker.Complete(caller, id); err != nil {
		return err
	}
	return c.commit(ctx, eventlog.New(eventlog.OpTaskCompleted, caller, map[string]any{
		"taskId": fmt.Sprintf("%d", id),
	}))
}

// CertifyTask certifies completed work; quality inspector of record only.
func (c *Chain) CertifyTask(ctx context.Context, caller token.Address, id uint64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.tracker.Certify(caller, id); err != nil {
		return err
	}
	return c.commit(ctx, eventlog.New(eventlog.OpTaskCertified, caller, map[string]any{
		"taskId": fmt.Sprintf("%d", id),
	}))
}

// PayForTask settles a certified task, transferring the cost from the
// caller to the treasury and minting a certificate to the caller. The
// TaskPaid entry carries both the task id and the new certificate id.
func (c *Chain) PayForTask(ctx context.Context, caller token.Address, id uint64, cost *uint256.Int, contentHash, imageHash string) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	certID, err := c.tracker.Pay(caller, id, cost, contentHash, imageHash)
	if err != nil {
		return 0, err
	}
	if err := c.commit(ctx, eventlog.New(eventlog.OpTaskPaid, caller, map[string]any{
		"taskId":        fmt.Sprintf("%d", id),
		"certificateId": fmt.Sprintf("%d", certID),
		"cost":          cost.Dec(),
		"contentHash":   contentHash,
		"imageHash":     imageHash,
	})); err != nil {
		return 0, err
	}
	return certID, nil
}

// TokenIDCounter returns one more than the highest assigned task id.
func (c *Chain) TokenIDCounter() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tracker.Counter()
}

// MaintenanceTask returns a copy of the task with the given id.
func (c *Chain) MaintenanceTask(id uint64) (tracker.Task, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tracker.Task(id)
}

// Tasks returns copies of all tasks in id order.
func (c *Chain) Tasks() []tracker.Task {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tracker.Tasks()
}

// Certificate returns the certificate with the given id.
func (c *Chain) Certificate(id uint64) (certificate.Certificate, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.certs.Get(id)
}

// CertificateCount returns the number of minted certificates.
func (c *Chain) CertificateCount() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.certs.Count()
}
