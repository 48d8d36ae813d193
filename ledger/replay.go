package ledger

import (
	"fmt"
	"strconv"

	"github.com/holiman/uint256"

	"github.com/Team9EncodeSolidity/main-tracker-blockchain/access"
	"github.com/Team9EncodeSolidity/main-tracker-blockchain/eventlog"
	"github.com/Team9EncodeSolidity/main-tracker-blockchain/token"
	"github.com/Team9EncodeSolidity/main-tracker-blockchain/tracker"
)

// reset discards all component state and rebuilds it from the given
// entries.
func (c *Chain) reset(entries []eventlog.Entry) error {
	if err := c.initState(); err != nil {
		return err
	}
	return c.replay(entries)
}

// replay rebuilds component state from a stored commit log. Entries must
// be contiguous from sequence zero; each is re-applied to the components
// and appended to the in-memory log without being re-persisted.
func (c *Chain) replay(entries []eventlog.Entry) error {
	for i, e := range entries {
		if e.Seq != uint64(i) {
			return fmt.Errorf("ledger: replay gap: entry %d has seq %d", i, e.Seq)
		}
		if err := c.apply(e); err != nil {
			return fmt.Errorf("ledger: replay seq %d (%s): %w", e.Seq, e.Op, err)
		}
		c.log.Append(e)
	}
	return nil
}

func (c *Chain) apply(e eventlog.Entry) error {
	switch e.Op {
	case eventlog.OpDeploy:
		ratio, err := attrAmount(e, "exchangeRatio")
		if err != nil {
			return err
		}
		if ratio.Cmp(c.cfg.ExchangeRatio) != 0 {
			return fmt.Errorf("stored exchange ratio %s does not match configured %s",
				ratio.Dec(), c.cfg.ExchangeRatio.Dec())
		}
		return nil

	case eventlog.OpIssue:
		amt, err := attrAmount(e, "amount")
		if err != nil {
			return err
		}
		return c.tokens.Issue(e.Caller, attrAddress(e, "to"), amt)

	case eventlog.OpApprove:
		amt, err := attrAmount(e, "amount")
		if err != nil {
			return err
		}
		return c.tokens.Approve(e.Caller, attrAddress(e, "spender"), amt)

	case eventlog.OpTransfer:
		amt, err := attrAmount(e, "amount")
		if err != nil {
			return err
		}
		return c.tokens.Transfer(e.Caller, attrAddress(e, "to"), amt)

	case eventlog.OpTransferFrom:
		amt, err := attrAmount(e, "amount")
		if err != nil {
			return err
		}
		return c.tokens.TransferFrom(e.Caller, attrAddress(e, "from"), attrAddress(e, "to"), amt)

	case eventlog.OpBurn:
		amt, err := attrAmount(e, "amount")
		if err != nil {
			return err
		}
		return c.tokens.Burn(e.Caller, attrAddress(e, "from"), amt)

	case eventlog.OpGrantMint:
		addr := attrAddress(e, "address")
		if err := c.tokens.GrantMint(e.Caller, addr); err != nil {
			return err
		}
		c.policy.Grant(access.RoleMinter, addr)
		return nil

	case eventlog.OpBuyTokens:
		payment, err := attrAmount(e, "payment")
		if err != nil {
			return err
		}
		_, err = c.treasury.BuyTokens(e.Caller, payment)
		return err

	case eventlog.OpTreasurySweep:
		_, _, err := c.treasury.WithdrawEthAndBurn(e.Caller)
		return err

	case eventlog.OpTaskOpened:
		cost, err := attrAmount(e, "cost")
		if err != nil {
			return err
		}
		cycles, err := attrUint(e, "systemCycles")
		if err != nil {
			return err
		}
		estimated, err := attrInt(e, "estimatedTime")
		if err != nil {
			return err
		}
		start, err := attrInt(e, "startTime")
		if err != nil {
			return err
		}
		_, err = c.tracker.Open(tracker.OpenParams{
			ClientName:       attrString(e, "clientName"),
			SystemName:       attrString(e, "systemName"),
			MaintenanceName:  attrString(e, "maintenanceName"),
			SystemCycles:     cycles,
			IPFSHash:         attrString(e, "ipfsHash"),
			EstimatedTime:    estimated,
			StartTime:        start,
			Cost:             cost,
			Repairman:        attrAddress(e, "repairman"),
			QualityInspector: attrAddress(e, "qualityInspector"),
		})
		return err

	case eventlog.OpTaskCompleted:
		id, err := attrUint(e, "taskId")
		if err != nil {
			return err
		}
		return c.tracker.Complete(e.Caller, id)

	case eventlog.OpTaskCertified:
		id, err := attrUint(e, "taskId")
		if err != nil {
			return err
		}
		return c.tracker.Certify(e.Caller, id)

	case eventlog.OpTaskPaid:
		id, err := attrUint(e, "taskId")
		if err != nil {
			return err
		}
		cost, err := attrAmount(e, "cost")
		if err != nil {
			return err
		}
		_, err = c.tracker.Pay(e.Caller, id, cost, attrString(e, "contentHash"), attrString(e, "imageHash"))
		return err

	default:
		return fmt.Errorf("unknown operation %q", e.Op)
	}
}

func attrString(e eventlog.Entry, key string) string {
	s, _ := e.Attrs[key].(string)
	return s
}

func attrAddress(e eventlog.Entry, key string) token.Address {
	return token.Address(attrString(e, key))
}

func attrAmount(e eventlog.Entry, key string) (*uint256.Int, error) {
	s := attrString(e, key)
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return nil, fmt.Errorf("attr %q: %w", key, err)
	}
	return v, nil
}

func attrUint(e eventlog.Entry, key string) (uint64, error) {
	v, err := strconv.ParseUint(attrString(e, key), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("attr %q: %w", key, err)
	}
	return v, nil
}

func attrInt(e eventlog.Entry, key string) (int64, error) {
	v, err := strconv.ParseInt(attrString(e, key), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("attr %q: %w", key, err)
	}
	return v, nil
}
