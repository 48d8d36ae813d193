// Package certificate mints non-fungible maintenance certificates. Each
// certificate immutably records its owner and a snapshot of the
// exchange-ratio-derived price at mint time, and can render itself as an
// inline SVG with a data-URI metadata document.
package certificate

import (
	"errors"
	"time"

	"github.com/holiman/uint256"

	"github.com/Team9EncodeSolidity/main-tracker-blockchain/token"
)

var ErrNotFound = errors.New("certificate: not found")

// PriceSource supplies the current exchange-ratio-derived price. The
// treasury implements it.
type PriceSource interface {
	CurrentPrice() *uint256.Int
}

// Certificate is an immutable record created once per paid task.
type Certificate struct {
	ID       uint64
	Owner    token.Address
	Price    *uint256.Int // price snapshot valid at mint time
	MintedAt time.Time
}

// Issuer allocates certificate ids monotonically starting at 0. Ids never
// collide and are never reused. Like the token ledger, the issuer is not
// goroutine-safe; the coordinator serializes access.
type Issuer struct {
	prices PriceSource
	certs  []Certificate
	now    func() time.Time
}

// NewIssuer creates an issuer snapshotting prices from the given source.
func NewIssuer(prices PriceSource) *Issuer {
	return &Issuer{prices: prices, now: time.Now}
}

// Mint allocates the next certificate id for to and snapshots the current
// price. The only failure mode is a zero owner address.
func (i *Issuer) Mint(to token.Address) (uint64, error) {
	if to.IsZero() {
		return 0, token.ErrInvalidParameters
	}
	price := uint256.NewInt(0)
	if i.prices != nil {
		price = i.prices.CurrentPrice()
	}
	id := uint64(len(i.certs))
	i.certs = append(i.certs, Certificate{
		ID:       id,
		Owner:    to,
		Price:    price,
		MintedAt: i.now().UTC(),
	})
	return id, nil
}

// Get returns the certificate with the given id.
func (i *Issuer) Get(id uint64) (Certificate, error) {
	if id >= uint64(len(i.certs)) {
		return Certificate{}, ErrNotFound
	}
	return i.certs[id], nil
}

// Count returns the number of minted certificates, which is also the next
// id to be allocated.
func (i *Issuer) Count() uint64 {
	return uint64(len(i.certs))
}
