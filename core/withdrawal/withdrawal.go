// Package withdrawal implements the ticket lifecycle of share
// redemptions. A requested withdrawal burns the holder's shares into a
// vault-side reservation and waits out the withdrawal window before the
// epoch sweep promotes it to claimable, so a slash submitted during the
// window still reduces the payout.
package withdrawal

import (
	"context"

	"github.com/pkg/errors"
	"go.opencensus.io/trace"

	"github.com/restakelabs/restaking/state"
	"github.com/restakelabs/restaking/time/epochs"
	"github.com/restakelabs/restaking/types"
)

// ProcessRequest opens a withdrawal ticket for the given share count.
// The shares move from outstanding to ticket-reserved, leaving the
// exchange rate unchanged, and the ticket records the asset value of the
// shares at the request-time rate. The payout is re-evaluated at the
// then-current rate when the sweep promotes the ticket, so slashes and
// yield during the pending window are shared with the withdrawer. The
// caller burns the holder's shares on the share ledger.
func ProcessRequest(ctx context.Context, v *state.Vault, holder types.Account, shares uint64, current types.Epoch) (*types.WithdrawalTicket, error) {
	_, span := trace.StartSpan(ctx, "withdrawal.ProcessRequest")
	defer span.End()

	if v == nil {
		return nil, errors.New("nil vault")
	}
	if v.Halted() {
		return nil, types.ErrVaultHalted
	}
	if shares == 0 {
		return nil, errors.Wrap(types.ErrInvalidAmount, "withdrawal share count must be positive")
	}
	locked, err := v.SharesToAssets(shares)
	if err != nil {
		return nil, err
	}
	if err := v.BurnSharesToReserve(shares); err != nil {
		return nil, err
	}
	ticket := &types.WithdrawalTicket{
		ID:           v.NextTicketID(),
		Vault:        v.ID(),
		Holder:       holder,
		Shares:       shares,
		LockedAmount: locked,
		Status:       types.Pending,
		CreatedEpoch: current,
	}
	if err := v.AppendTicket(ticket); err != nil {
		return nil, err
	}
	cp := *ticket
	return &cp, nil
}

// AdvanceQueue is the lazy epoch-boundary sweep. It runs at most once
// per epoch per vault and promotes pending tickets whose withdrawal
// window has elapsed, in creation order, when the unreserved idle
// balance covers their re-evaluated payout. An uncovered ticket stays
// pending and is retried by a later sweep without blocking smaller
// tickets behind it. Returns the ids promoted to claimable.
func AdvanceQueue(ctx context.Context, v *state.Vault, current types.Epoch) ([]uint64, error) {
	_, span := trace.StartSpan(ctx, "withdrawal.AdvanceQueue")
	defer span.End()

	if v == nil {
		return nil, errors.New("nil vault")
	}
	if v.Halted() {
		return nil, types.ErrVaultHalted
	}
	if v.LastSwept() >= current {
		return nil, nil
	}
	var promoted []uint64
	for _, t := range v.PendingTickets() {
		if !epochs.TicketMatured(t.CreatedEpoch, current) {
			continue
		}
		payout, err := v.SharesToAssets(t.Shares)
		if err != nil {
			return promoted, errors.Wrapf(err, "could not price ticket %d", t.ID)
		}
		if payout > v.UnreservedIdle() {
			continue
		}
		if err := v.MarkTicketClaimable(t.ID, payout, current); err != nil {
			return promoted, err
		}
		if err := v.ReserveClaimable(payout); err != nil {
			return promoted, err
		}
		promoted = append(promoted, t.ID)
	}
	v.SetLastSwept(current)
	return promoted, nil
}

// ProcessClaim pays out a claimable ticket from the idle balance and
// retires its share reservation. The caller transfers the returned
// payout to the ticket holder from custody.
func ProcessClaim(ctx context.Context, v *state.Vault, id uint64, current types.Epoch) (uint64, error) {
	_, span := trace.StartSpan(ctx, "withdrawal.ProcessClaim")
	defer span.End()

	if v == nil {
		return 0, errors.New("nil vault")
	}
	if v.Halted() {
		return 0, types.ErrVaultHalted
	}
	ticket, err := v.Ticket(id)
	if err != nil {
		return 0, err
	}
	if err := v.MarkTicketClaimed(id, current); err != nil {
		return 0, err
	}
	if err := v.SettleClaim(ticket.Shares, ticket.Payout); err != nil {
		return 0, err
	}
	return ticket.Payout, nil
}

// ProcessCancel withdraws a still-pending ticket and moves its reserved
// shares back to outstanding. The restored shares are worth the current
// exchange rate, not the rate at request time. The caller re-mints the
// share count to the holder on the share ledger.
func ProcessCancel(ctx context.Context, v *state.Vault, id uint64, current types.Epoch) (uint64, error) {
	_, span := trace.StartSpan(ctx, "withdrawal.ProcessCancel")
	defer span.End()

	if v == nil {
		return 0, errors.New("nil vault")
	}
	if v.Halted() {
		return 0, types.ErrVaultHalted
	}
	ticket, err := v.Ticket(id)
	if err != nil {
		return 0, err
	}
	if err := v.MarkTicketCancelled(id, current); err != nil {
		return 0, err
	}
	if err := v.RestoreReservedShares(ticket.Shares); err != nil {
		return 0, err
	}
	return ticket.Shares, nil
}
