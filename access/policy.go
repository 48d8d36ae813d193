// Package access centralizes role-based authorization for privileged
// ledger operations. Instead of scattering membership checks across
// components, the coordinator consults one Policy keyed by
// (operation, caller) before delegating.
package access

import (
	"errors"
	"fmt"

	"github.com/Team9EncodeSolidity/main-tracker-blockchain/eventlog"
	"github.com/Team9EncodeSolidity/main-tracker-blockchain/token"
)

// ErrDenied is returned when the caller holds none of the roles an
// operation requires.
var ErrDenied = errors.New("access: operation denied")

// Role defines a named role for access control.
type Role string

const (
	// RoleOwner is held by the deployer; it gates the treasury sweep.
	RoleOwner Role = "owner"
	// RoleMinter mirrors the ledger's mint-authority set; it gates
	// issuance, burning, and granting.
	RoleMinter Role = "minter"
)

// Rule defines which roles may invoke an operation. An empty role list
// means any caller is allowed.
type Rule struct {
	Operation eventlog.Op
	Roles     []Role
}

// DefaultRules returns the rule set for the maintenance ledger's
// privileged operations. Operations without a rule are unrestricted at
// the policy level (identity-of-record checks, such as the task
// counterparties, remain with the component that records them).
func DefaultRules() []Rule {
	return []Rule{
		{Operation: eventlog.OpIssue, Roles: []Role{RoleMinter}},
		{Operation: eventlog.OpBurn, Roles: []Role{RoleMinter}},
		{Operation: eventlog.OpGrantMint, Roles: []Role{RoleMinter}},
		{Operation: eventlog.OpTreasurySweep, Roles: []Role{RoleOwner}},
	}
}

// Policy holds role membership and per-operation rules.
type Policy struct {
	members map[Role]map[token.Address]bool
	rules   map[eventlog.Op][]Role
}

// NewPolicy creates a policy with the given rules and no members.
func NewPolicy(rules []Rule) *Policy {
	p := &Policy{
		members: make(map[Role]map[token.Address]bool),
		rules:   make(map[eventlog.Op][]Role),
	}
	for _, r := range rules {
		p.rules[r.Operation] = append(p.rules[r.Operation], r.Roles...)
	}
	return p
}

// Grant adds addr to a role. Membership only grows; there is no revoke
// path, matching the ledger's mint-authority semantics.
func (p *Policy) Grant(role Role, addr token.Address) {
	m, ok := p.members[role]
	if !ok {
		m = make(map[token.Address]bool)
		p.members[role] = m
	}
	m[addr] = true
}

// HasRole reports whether addr is a member of role.
func (p *Policy) HasRole(role Role, addr token.Address) bool {
	return p.members[role][addr]
}

// Allow reports whether caller may invoke op. Operations without a rule
// are allowed for any caller.
func (p *Policy) Allow(op eventlog.Op, caller token.Address) bool {
	roles, ok := p.rules[op]
	if !ok || len(roles) == 0 {
		return true
	}
	for _, role := range roles {
		if p.members[role][caller] {
			return true
		}
	}
	return false
}

// Check is Allow returning a typed failure naming the operation.
func (p *Policy) Check(op eventlog.Op, caller token.Address) error {
	if !p.Allow(op, caller) {
		return fmt.Errorf("%w: %s for %s", ErrDenied, op, caller)
	}
	return nil
}
