package state

import (
	"github.com/pkg/errors"

	"github.com/restakelabs/restaking/math"
	"github.com/restakelabs/restaking/types"
)

// CheckInvariant verifies the vault's accounting identities. A violation
// is not a caller mistake; it indicates a prior undetected bug, and the
// protocol service halts the vault when one surfaces.
func (v *Vault) CheckInvariant() error {
	// total_assets == idle + sum(delegated) + sum(cooling)
	sum := v.data.Idle
	for _, d := range v.data.Delegations {
		var err error
		sum, err = math.Add64(sum, d.DelegatedAmount)
		if err != nil {
			return errors.Wrapf(err, "delegated balance overflow for operator %s", d.Operator)
		}
		sum, err = math.Add64(sum, d.CoolingAmount)
		if err != nil {
			return errors.Wrapf(err, "cooling balance overflow for operator %s", d.Operator)
		}
	}
	if sum != v.data.TotalAssets {
		return errors.Errorf("asset conservation broken: idle plus delegations %d, total assets %d", sum, v.data.TotalAssets)
	}

	// The idle balance always covers the claimable reservations.
	if v.data.ClaimableReserved > v.data.Idle {
		return errors.Errorf("claimable reservation %d exceeds idle balance %d", v.data.ClaimableReserved, v.data.Idle)
	}

	// Reserved shares and claimable reservations reconcile against the
	// unsettled tickets.
	var pendingShares, claimablePayout uint64
	for _, t := range v.data.Tickets {
		switch t.Status {
		case types.Pending:
			pendingShares += t.Shares
		case types.Claimable:
			pendingShares += t.Shares
			claimablePayout += t.Payout
		}
	}
	if pendingShares != v.data.ReservedShares {
		return errors.Errorf("unsettled ticket shares %d do not match reserved shares %d", pendingShares, v.data.ReservedShares)
	}
	if claimablePayout != v.data.ClaimableReserved {
		return errors.Errorf("claimable ticket payouts %d do not match claimable reservation %d", claimablePayout, v.data.ClaimableReserved)
	}
	return nil
}
