// Package token implements a fungible-value ledger with role-gated
// issuance, approvals, transfers, and burns.
//
// Amounts are unsigned 256-bit integers scaled by a fixed number of
// decimal places (see the amount package). Every operation validates all
// of its preconditions before the first write, so a rejected operation
// leaves the ledger exactly as it was. The ledger itself is not
// goroutine-safe: callers serialize operations (see the ledger package).
package token

import (
	"github.com/holiman/uint256"
)

// Ledger tracks balances, allowances, the mint-authority set, and total
// supply. The deployer passed to NewLedger is the initial mint authority;
// membership only grows.
type Ledger struct {
	name     string
	symbol   string
	decimals int

	balances   map[Address]*uint256.Int
	allowances map[Address]map[Address]*uint256.Int
	authority  map[Address]bool

	totalSupply *uint256.Int
}

// NewLedger creates an empty ledger with deployer as the initial mint
// authority.
func NewLedger(name, symbol string, decimals int, deployer Address) *Ledger {
	l := &Ledger{
		name:        name,
		symbol:      symbol,
		decimals:    decimals,
		balances:    make(map[Address]*uint256.Int),
		allowances:  make(map[Address]map[Address]*uint256.Int),
		authority:   make(map[Address]bool),
		totalSupply: uint256.NewInt(0),
	}
	if !deployer.IsZero() {
		l.authority[deployer] = true
	}
	return l
}

// Name returns the token name.
func (l *Ledger) Name() string { return l.name }

// Symbol returns the ticker symbol.
func (l *Ledger) Symbol() string { return l.symbol }

// Decimals returns the number of decimal places amounts are scaled by.
func (l *Ledger) Decimals() int { return l.decimals }

// BalanceOf returns a copy of the balance held by addr.
func (l *Ledger) BalanceOf(addr Address) *uint256.Int {
	if b, ok := l.balances[addr]; ok {
		return new(uint256.Int).Set(b)
	}
	return uint256.NewInt(0)
}

// TotalSupply returns a copy of the current total supply.
func (l *Ledger) TotalSupply() *uint256.Int {
	return new(uint256.Int).Set(l.totalSupply)
}

// Allowance returns a copy of the amount spender may move on behalf of owner.
func (l *Ledger) Allowance(owner, spender Address) *uint256.Int {
	if m, ok := l.allowances[owner]; ok {
		if a, ok := m[spender]; ok {
			return new(uint256.Int).Set(a)
		}
	}
	return uint256.NewInt(0)
}

// IsMinter reports whether addr is a member of the mint-authority set.
func (l *Ledger) IsMinter(addr Address) bool {
	return l.authority[addr]
}

// Issue creates amount new tokens for to. The caller must be a mint
// authority.
func (l *Ledger) Issue(caller, to Address, amount *uint256.Int) error {
	if !l.authority[caller] {
		return ErrUnauthorized
	}
	if to.IsZero() || amount == nil {
		return ErrInvalidParameters
	}
	l.credit(to, amount)
	l.totalSupply.Add(l.totalSupply, amount)
	return nil
}

// Approve sets (not adds) the allowance spender may move on behalf of the
// caller. Any prior allowance is overwritten.
func (l *Ledger) Approve(caller, spender Address, amount *uint256.Int) error {
	if caller.IsZero() || spender.IsZero() || amount == nil {
		return ErrInvalidParameters
	}
	m, ok := l.allowances[caller]
	if !ok {
		m = make(map[Address]*uint256.Int)
		l.allowances[caller] = m
	}
	m[spender] = new(uint256.Int).Set(amount)
	return nil
}

// Transfer moves amount from the caller to to.
func (l *Ledger) Transfer(caller, to Address, amount *uint256.Int) error {
	if caller.IsZero() || to.IsZero() || amount == nil {
		return ErrInvalidParameters
	}
	bal := l.balances[caller]
	if bal == nil || bal.Lt(amount) {
		return ErrInsufficientBalance
	}
	bal.Sub(bal, amount)
	l.credit(to, amount)
	return nil
}

// TransferFrom moves amount from owner to to on the caller's behalf,
// consuming the caller's allowance. The allowance is decremented by the
// transferred amount on success.
func (l *Ledger) TransferFrom(caller, owner, to Address, amount *uint256.Int) error {
	if caller.IsZero() || owner.IsZero() || to.IsZero() || amount == nil {
		return ErrInvalidParameters
	}
	bal := l.balances[owner]
	if bal == nil || bal.Lt(amount) {
		return ErrInsufficientBalance
	}
	var allowed *uint256.Int
	if m, ok := l.allowances[owner]; ok {
		allowed = m[caller]
	}
	if allowed == nil || allowed.Lt(amount) {
		return ErrInsufficientAllowance
	}
	allowed.Sub(allowed, amount)
	bal.Sub(bal, amount)
	l.credit(to, amount)
	return nil
}

// Burn destroys amount tokens held by from, decreasing total supply.
// Restricted to mint authorities (the treasury is granted the role at
// deployment).
func (l *Ledger) Burn(caller, from Address, amount *uint256.Int) error {
	if !l.authority[caller] {
		return ErrUnauthorized
	}
	if from.IsZero() || amount == nil {
		return ErrInvalidParameters
	}
	bal := l.balances[from]
	if bal == nil || bal.Lt(amount) {
		return ErrInsufficientBalance
	}
	bal.Sub(bal, amount)
	l.totalSupply.Sub(l.totalSupply, amount)
	return nil
}

// GrantMint adds addr to the mint-authority set. Restricted to existing
// members; granting an existing member again is a no-op, not an error.
// There is no revoke path.
func (l *Ledger) GrantMint(caller, addr Address) error {
	if !l.authority[caller] {
		return ErrUnauthorized
	}
	if addr.IsZero() {
		return ErrInvalidParameters
	}
	l.authority[addr] = true
	return nil
}

// Minters returns the current mint-authority members in no particular order.
func (l *Ledger) Minters() []Address {
	members := make([]Address, 0, len(l.authority))
	for addr := range l.authority {
		members = append(members, addr)
	}
	return members
}

// SumOfBalances returns the sum of all account balances. Together with
// TotalSupply it exposes the conservation invariant to tests and audits.
func (l *Ledger) SumOfBalances() *uint256.Int {
	sum := uint256.NewInt(0)
	for _, b := range l.balances {
		sum.Add(sum, b)
	}
	return sum
}

func (l *Ledger) credit(to Address, amount *uint256.Int) {
	if b, ok := l.balances[to]; ok {
		b.Add(b, amount)
		return
	}
	l.balances[to] = new(uint256.Int).Set(amount)
}
