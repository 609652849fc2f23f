// Package slashing applies authorized slash instructions against an
// operator's stake in a vault. A slash is capped per network per epoch
// by the network's slashable fraction of the operator's epoch-start
// stake, lands on cooling stake before delegated stake, and reports
// partial coverage instead of failing when the remaining stake cannot
// cover the request.
package slashing

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.opencensus.io/trace"

	"github.com/restakelabs/restaking/config/params"
	"github.com/restakelabs/restaking/math"
	"github.com/restakelabs/restaking/state"
	"github.com/restakelabs/restaking/types"
)

// OptInCheckFunc reports whether the exact (vault, operator, network)
// triple holds an active opt-in.
type OptInCheckFunc func(vault types.VaultID, operator types.OperatorID, network types.NetworkID) bool

// SlashableBpsFunc returns the slashable fraction, in basis points, the
// network may impose on the operator's stake in the vault per epoch.
type SlashableBpsFunc func(vault types.VaultID, operator types.OperatorID, network types.NetworkID) uint64

// ProcessSlash validates and applies a slash request. The per-epoch
// budget is the network's slashable fraction of the operator's
// epoch-start stake, reconstructed as current stake plus everything
// already slashed from the operator this epoch, so earlier slashes by
// other networks do not shrink a network's own allowance. Within the
// budget the applied amount is capped at the currently available stake
// and the shortfall is recorded on the returned record rather than
// treated as a failure.
func ProcessSlash(
	ctx context.Context,
	v *state.Vault,
	ref uuid.UUID,
	network types.NetworkID,
	op types.OperatorID,
	requested uint64,
	current types.Epoch,
	optedIn OptInCheckFunc,
	slashableBps SlashableBpsFunc,
) (*types.SlashRecord, error) {
	_, span := trace.StartSpan(ctx, "slashing.ProcessSlash")
	defer span.End()

	if v == nil {
		return nil, errors.New("nil vault")
	}
	if optedIn == nil || slashableBps == nil {
		return nil, errors.New("nil registry query")
	}
	if v.Halted() {
		return nil, types.ErrVaultHalted
	}
	if requested == 0 {
		return nil, errors.Wrap(types.ErrInvalidAmount, "slash amount must be positive")
	}
	if !optedIn(v.ID(), op, network) {
		return nil, errors.Wrapf(types.ErrNotOptedIn,
			"network %s holds no active opt-in for operator %s in vault %s", network, op, v.ID())
	}

	available := v.AvailableStake(op)
	epochBase, err := math.Add64(available, v.SlashTallyTotal(op, current))
	if err != nil {
		return nil, types.ErrArithmeticOverflow
	}
	budget, err := math.MulDiv64(epochBase, slashableBps(v.ID(), op, network), params.RestakingConfig().BpsDenominator)
	if err != nil {
		return nil, types.ErrArithmeticOverflow
	}
	already := v.SlashedThisEpoch(op, network, current)
	newTally, err := math.Add64(already, requested)
	if err != nil {
		return nil, types.ErrArithmeticOverflow
	}
	if newTally > budget {
		return nil, errors.Wrapf(types.ErrSlashExceedsCap,
			"requested %d with %d already slashed this epoch exceeds budget %d", requested, already, budget)
	}

	applied := math.Min(requested, available)
	if applied > 0 {
		if _, _, err := v.ApplySlash(op, applied); err != nil {
			return nil, err
		}
	}
	if err := v.RecordSlashTally(op, network, current, applied); err != nil {
		return nil, err
	}
	return &types.SlashRecord{
		Reference: ref,
		Network:   network,
		Operator:  op,
		Vault:     v.ID(),
		Requested: requested,
		Applied:   applied,
		Epoch:     current,
	}, nil
}
