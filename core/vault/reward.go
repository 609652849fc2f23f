package vault

import (
	"context"

	"github.com/pkg/errors"
	"go.opencensus.io/trace"

	"github.com/restakelabs/restaking/state"
	"github.com/restakelabs/restaking/types"
)

// ProcessReward credits externally earned yield to the vault's idle
// balance without minting shares, raising the exchange rate for every
// share holder including pending withdrawers. Fails with EmptyVault when
// no shares exist to receive the yield.
func ProcessReward(ctx context.Context, v *state.Vault, amount uint64) error {
	_, span := trace.StartSpan(ctx, "vault.ProcessReward")
	defer span.End()

	if v == nil {
		return errors.New("nil vault")
	}
	if v.Halted() {
		return types.ErrVaultHalted
	}
	if amount == 0 {
		return errors.Wrap(types.ErrInvalidAmount, "reward amount must be positive")
	}
	if v.ShareDenominator() == 0 {
		return errors.Wrap(types.ErrEmptyVault, "no shares outstanding to receive the reward")
	}
	return v.CreditAssets(amount)
}
