// Package delegation implements the delegate and undelegate transitions
// of a vault's per-operator stake. Undelegation is split into a begin and
// a complete step separated by the cooldown window so a slash submitted
// during the window still reaches the stake that is leaving.
package delegation

import (
	"context"

	"github.com/pkg/errors"
	"go.opencensus.io/trace"

	"github.com/restakelabs/restaking/state"
	"github.com/restakelabs/restaking/time/epochs"
	"github.com/restakelabs/restaking/types"
)

// OptInCheckFunc reports whether the operator holds at least one active
// network opt-in for the vault.
type OptInCheckFunc func(vault types.VaultID, operator types.OperatorID) bool

// ProcessDelegate moves idle vault assets into an operator's delegated
// stake. The operator must hold an active opt-in for the vault with at
// least one network.
func ProcessDelegate(ctx context.Context, v *state.Vault, op types.OperatorID, amount uint64, optedIn OptInCheckFunc) error {
	_, span := trace.StartSpan(ctx, "delegation.ProcessDelegate")
	defer span.End()

	if v == nil {
		return errors.New("nil vault")
	}
	if optedIn == nil {
		return errors.New("nil opt-in check")
	}
	if v.Halted() {
		return types.ErrVaultHalted
	}
	if amount == 0 {
		return errors.Wrap(types.ErrInvalidAmount, "delegation amount must be positive")
	}
	if !optedIn(v.ID(), op) {
		return errors.Wrapf(types.ErrNotOptedIn, "operator %s has no active opt-in for vault %s", op, v.ID())
	}
	return v.Delegate(op, amount)
}

// ProcessBeginUndelegate moves delegated stake into the cooling bucket
// and starts the cooldown window at the current epoch. Only one cooldown
// may be in flight per (vault, operator) pair.
func ProcessBeginUndelegate(ctx context.Context, v *state.Vault, op types.OperatorID, amount uint64, current types.Epoch) error {
	_, span := trace.StartSpan(ctx, "delegation.ProcessBeginUndelegate")
	defer span.End()

	if v == nil {
		return errors.New("nil vault")
	}
	if v.Halted() {
		return types.ErrVaultHalted
	}
	if amount == 0 {
		return errors.Wrap(types.ErrInvalidAmount, "undelegation amount must be positive")
	}
	return v.BeginCooldown(op, amount, current)
}

// ProcessCompleteUndelegate returns matured cooling stake to the vault's
// idle balance. The cooldown matures at its start epoch plus the
// configured cooldown length, boundary inclusive.
func ProcessCompleteUndelegate(ctx context.Context, v *state.Vault, op types.OperatorID, current types.Epoch) (uint64, error) {
	_, span := trace.StartSpan(ctx, "delegation.ProcessCompleteUndelegate")
	defer span.End()

	if v == nil {
		return 0, errors.New("nil vault")
	}
	if v.Halted() {
		return 0, types.ErrVaultHalted
	}
	d, ok := v.Delegation(op)
	if !ok || !d.CooldownActive {
		return 0, errors.Wrapf(types.ErrCooldownNotMatured, "no active cooldown for operator %s", op)
	}
	if !epochs.CooldownMatured(d.CooldownStart, current) {
		return 0, errors.Wrapf(types.ErrCooldownNotMatured,
			"cooldown started at epoch %d matures at epoch %d, current epoch %d",
			d.CooldownStart, epochs.CooldownEnd(d.CooldownStart), current)
	}
	return v.ReleaseCooling(op)
}
