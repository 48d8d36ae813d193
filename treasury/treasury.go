// Package treasury converts native-currency deposits into token issuance
// at a configured exchange ratio and holds the accumulated native balance
// until the owner sweeps it.
package treasury

import (
	"errors"

	"github.com/holiman/uint256"

	"github.com/Team9EncodeSolidity/main-tracker-blockchain/token"
)

var (
	ErrZeroPayment  = errors.New("treasury: zero payment")
	ErrUnauthorized = errors.New("treasury: caller is not the owner")
	ErrInvalidRatio = errors.New("treasury: exchange ratio must be non-zero")
)

// Treasury exchanges native currency for tokens. The exchange ratio is a
// deployment-time parameter, not a protocol constant; observed deployments
// range from 1e6 to 1e18. The treasury address must be granted mint
// authority on the ledger before BuyTokens can succeed.
type Treasury struct {
	owner  token.Address
	addr   token.Address
	ledger *token.Ledger
	ratio  *uint256.Int

	eth *uint256.Int // accumulated native-currency balance
}

// New creates a treasury owned by owner, holding funds at addr, issuing on
// ledger at the given payment-per-token ratio.
func New(owner, addr token.Address, ledger *token.Ledger, ratio *uint256.Int) (*Treasury, error) {
	if owner.IsZero() || addr.IsZero() || ledger == nil {
		return nil, token.ErrInvalidParameters
	}
	if ratio == nil || ratio.IsZero() {
		return nil, ErrInvalidRatio
	}
	return &Treasury{
		owner:  owner,
		addr:   addr,
		ledger: ledger,
		ratio:  new(uint256.Int).Set(ratio),
		eth:    uint256.NewInt(0),
	}, nil
}

// Address returns the treasury's own ledger address.
func (t *Treasury) Address() token.Address { return t.addr }

// Owner returns the privileged sweep address.
func (t *Treasury) Owner() token.Address { return t.owner }

// Ratio returns a copy of the configured exchange ratio.
func (t *Treasury) Ratio() *uint256.Int { return new(uint256.Int).Set(t.ratio) }

// CurrentPrice reports the exchange-ratio-derived price used for
// certificate snapshots.
func (t *Treasury) CurrentPrice() *uint256.Int { return t.Ratio() }

// EthBalance returns a copy of the accumulated native-currency balance.
func (t *Treasury) EthBalance() *uint256.Int { return new(uint256.Int).Set(t.eth) }

// TokenBalance returns the ledger balance held by the treasury's own
// address.
func (t *Treasury) TokenBalance() *uint256.Int { return t.ledger.BalanceOf(t.addr) }

// BuyTokens accepts a native-currency payment from caller and issues
// payment/ratio tokens (floor division) to the caller. The payment itself
// is retained by the treasury; tokens go to the caller, not the treasury.
func (t *Treasury) BuyTokens(caller token.Address, payment *uint256.Int) (*uint256.Int, error) {
	if payment == nil || payment.IsZero() {
		return nil, ErrZeroPayment
	}
	if caller.IsZero() {
		return nil, token.ErrInvalidParameters
	}

	quantity := new(uint256.Int).Div(payment, t.ratio)
	if err := t.ledger.Issue(t.addr, caller, quantity); err != nil {
		return nil, err
	}
	t.eth.Add(t.eth, payment)
	return quantity, nil
}

// WithdrawEthAndBurn atomically transfers the entire accumulated
// native-currency balance to the caller and burns the entirety of the
// treasury's own token balance. Only the owner may call it; there is no
// partial-withdrawal form. On failure nothing moves.
func (t *Treasury) WithdrawEthAndBurn(caller token.Address) (swept, burned *uint256.Int, err error) {
	if caller != t.owner {
		return nil, nil, ErrUnauthorized
	}

	burned = t.ledger.BalanceOf(t.addr)
	if !burned.IsZero() {
		if err := t.ledger.Burn(t.addr, t.addr, burned); err != nil {
			return nil, nil, err
		}
	}

	swept = t.eth
	t.eth = uint256.NewInt(0)
	return swept, burned, nil
}
