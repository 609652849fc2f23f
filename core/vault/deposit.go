// Package vault implements the share accounting transitions of a vault.
// Transitions mutate the vault in place. Callers that need all-or-nothing
// behavior run them against a copy and persist only on success.
package vault

import (
	"context"

	"github.com/pkg/errors"
	"go.opencensus.io/trace"

	"github.com/restakelabs/restaking/config/params"
	"github.com/restakelabs/restaking/state"
	"github.com/restakelabs/restaking/types"
)

// ProcessDeposit converts a deposited asset amount into newly minted
// shares at the vault's current exchange rate and credits the amount to
// the idle balance. An empty vault bootstraps a 1:1 rate. The caller is
// responsible for pulling the assets into custody and for crediting the
// minted shares to the depositor on the share ledger.
func ProcessDeposit(ctx context.Context, v *state.Vault, amount uint64) (uint64, error) {
	_, span := trace.StartSpan(ctx, "vault.ProcessDeposit")
	defer span.End()

	if v == nil {
		return 0, errors.New("nil vault")
	}
	if v.Halted() {
		return 0, types.ErrVaultHalted
	}
	cfg := params.RestakingConfig()
	if amount == 0 || amount < cfg.MinDepositAmount {
		return 0, errors.Wrapf(types.ErrInvalidAmount, "deposit %d below minimum %d", amount, cfg.MinDepositAmount)
	}

	var minted uint64
	if v.ShareDenominator() == 0 {
		minted = amount
	} else {
		var err error
		minted, err = v.AssetsToShares(amount)
		if err != nil {
			return 0, err
		}
		if minted == 0 {
			return 0, errors.Wrapf(types.ErrInvalidAmount, "deposit %d mints zero shares at the current rate", amount)
		}
	}
	if err := v.CreditAssets(amount); err != nil {
		return 0, err
	}
	if err := v.MintShares(minted); err != nil {
		return 0, err
	}
	return minted, nil
}
