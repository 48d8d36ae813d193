package token

// Address identifies an account on the ledger. Addresses are opaque
// strings; the zero value is the zero address and never holds a balance.
type Address string

// ZeroAddress is the absent/invalid account identifier.
const ZeroAddress Address = ""

// IsZero reports whether the address is the zero address.
func (a Address) IsZero() bool {
	return a == ZeroAddress
}
