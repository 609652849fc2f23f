package state

import (
	"github.com/pkg/errors"

	"github.com/restakelabs/restaking/math"
	"github.com/restakelabs/restaking/types"
)

// Every mutator validates before it writes, so a failed call leaves the
// vault untouched. Mutators that move funds between two fields do so in
// one call; callers never see the intermediate state.

// CreditAssets adds newly deposited or rewarded assets to the idle
// balance and the asset total.
func (v *Vault) CreditAssets(amount uint64) error {
	newIdle, err := math.Add64(v.data.Idle, amount)
	if err != nil {
		return types.ErrArithmeticOverflow
	}
	newTotal, err := math.Add64(v.data.TotalAssets, amount)
	if err != nil {
		return types.ErrArithmeticOverflow
	}
	v.data.Idle = newIdle
	v.data.TotalAssets = newTotal
	return nil
}

// MintShares increases the outstanding share count. The new share
// denominator must stay within range.
func (v *Vault) MintShares(shares uint64) error {
	newOutstanding, err := math.Add64(v.data.TotalShares, shares)
	if err != nil {
		return types.ErrArithmeticOverflow
	}
	if _, err := math.Add64(newOutstanding, v.data.ReservedShares); err != nil {
		return types.ErrArithmeticOverflow
	}
	v.data.TotalShares = newOutstanding
	return nil
}

// BurnSharesToReserve moves shares from outstanding to ticket-reserved
// when a withdrawal is requested. The share denominator is unchanged.
func (v *Vault) BurnSharesToReserve(shares uint64) error {
	newOutstanding, err := math.Sub64(v.data.TotalShares, shares)
	if err != nil {
		return errors.Wrap(types.ErrArithmeticOverflow, "share burn exceeds outstanding shares")
	}
	v.data.TotalShares = newOutstanding
	v.data.ReservedShares += shares
	return nil
}

// RestoreReservedShares moves ticket-reserved shares back to outstanding
// when a pending withdrawal is cancelled.
func (v *Vault) RestoreReservedShares(shares uint64) error {
	newReserved, err := math.Sub64(v.data.ReservedShares, shares)
	if err != nil {
		return errors.Wrap(types.ErrArithmeticOverflow, "share restore exceeds reserved shares")
	}
	v.data.ReservedShares = newReserved
	v.data.TotalShares += shares
	return nil
}

// ReserveClaimable promises part of the idle balance to a ticket turning
// claimable. Fails when unreserved idle cannot cover the payout.
func (v *Vault) ReserveClaimable(amount uint64) error {
	if amount > v.UnreservedIdle() {
		return types.ErrInsufficientIdleBalance
	}
	v.data.ClaimableReserved += amount
	return nil
}

// SettleClaim pays a claimable ticket: the reserved shares leave the
// denominator and the promised payout leaves idle and the asset total.
func (v *Vault) SettleClaim(shares, payout uint64) error {
	newReserved, err := math.Sub64(v.data.ReservedShares, shares)
	if err != nil {
		return errors.Wrap(types.ErrArithmeticOverflow, "claim exceeds reserved shares")
	}
	newClaimable, err := math.Sub64(v.data.ClaimableReserved, payout)
	if err != nil {
		return errors.Wrap(types.ErrArithmeticOverflow, "claim exceeds claimable reservation")
	}
	newIdle, err := math.Sub64(v.data.Idle, payout)
	if err != nil {
		return errors.Wrap(types.ErrArithmeticOverflow, "claim exceeds idle balance")
	}
	newTotal, err := math.Sub64(v.data.TotalAssets, payout)
	if err != nil {
		return errors.Wrap(types.ErrArithmeticOverflow, "claim exceeds total assets")
	}
	v.data.ReservedShares = newReserved
	v.data.ClaimableReserved = newClaimable
	v.data.Idle = newIdle
	v.data.TotalAssets = newTotal
	return nil
}

// Delegate moves funds from unreserved idle to an operator's delegated
// amount, creating the delegation record on first use.
func (v *Vault) Delegate(op types.OperatorID, amount uint64) error {
	if amount > v.UnreservedIdle() {
		return types.ErrInsufficientIdleBalance
	}
	d := v.delegation(op)
	newDelegated, err := math.Add64(d.DelegatedAmount, amount)
	if err != nil {
		return types.ErrArithmeticOverflow
	}
	v.data.Idle -= amount
	d.DelegatedAmount = newDelegated
	return nil
}

// BeginCooldown moves delegated stake into the cooling bucket and stamps
// the cooldown start. A second cooldown cannot begin while one is active;
// the in-flight window is never reset.
func (v *Vault) BeginCooldown(op types.OperatorID, amount uint64, current types.Epoch) error {
	d, ok := v.data.Delegations[op]
	if ok && d.CooldownActive {
		return types.ErrCooldownAlreadyActive
	}
	if !ok || amount > d.DelegatedAmount {
		return types.ErrInsufficientDelegatedBalance
	}
	d.DelegatedAmount -= amount
	d.CoolingAmount += amount
	d.CooldownStart = current
	d.CooldownActive = true
	return nil
}

// ReleaseCooling returns an operator's cooling stake to idle and clears
// the cooldown state, reporting the released amount. Maturity is the
// caller's check.
func (v *Vault) ReleaseCooling(op types.OperatorID) (uint64, error) {
	d, ok := v.data.Delegations[op]
	if !ok || !d.CooldownActive {
		return 0, types.ErrCooldownNotMatured
	}
	released := d.CoolingAmount
	newIdle, err := math.Add64(v.data.Idle, released)
	if err != nil {
		return 0, types.ErrArithmeticOverflow
	}
	d.CoolingAmount = 0
	d.CooldownStart = 0
	d.CooldownActive = false
	v.data.Idle = newIdle
	return released, nil
}

// ApplySlash burns stake from one delegation, cooling first, and removes
// the same value from the asset total. Callers cap the amount at the
// operator's available stake beforehand.
func (v *Vault) ApplySlash(op types.OperatorID, amount uint64) (coolingCut, delegatedCut uint64, err error) {
	d, ok := v.data.Delegations[op]
	if !ok || amount > d.CoolingAmount+d.DelegatedAmount {
		return 0, 0, types.ErrInsufficientDelegatedBalance
	}
	newTotal, err := math.Sub64(v.data.TotalAssets, amount)
	if err != nil {
		return 0, 0, types.ErrArithmeticOverflow
	}
	coolingCut = math.Min(amount, d.CoolingAmount)
	delegatedCut = amount - coolingCut
	d.CoolingAmount -= coolingCut
	d.DelegatedAmount -= delegatedCut
	v.data.TotalAssets = newTotal
	return coolingCut, delegatedCut, nil
}

// RecordSlashTally accumulates a network's slashing within the given
// epoch for cap enforcement. Tallies from elapsed epochs are pruned.
func (v *Vault) RecordSlashTally(op types.OperatorID, network types.NetworkID, epoch types.Epoch, amount uint64) error {
	d := v.delegation(op)
	kept := d.Tallies[:0]
	for _, tally := range d.Tallies {
		if tally.Epoch == epoch {
			kept = append(kept, tally)
		}
	}
	d.Tallies = kept
	for i := range d.Tallies {
		if d.Tallies[i].Network == network {
			newAmount, err := math.Add64(d.Tallies[i].Amount, amount)
			if err != nil {
				return types.ErrArithmeticOverflow
			}
			d.Tallies[i].Amount = newAmount
			return nil
		}
	}
	d.Tallies = append(d.Tallies, types.SlashTally{Network: network, Epoch: epoch, Amount: amount})
	return nil
}

// NextTicketID reserves the next withdrawal ticket id.
func (v *Vault) NextTicketID() uint64 {
	id := v.data.TicketSeq
	v.data.TicketSeq++
	return id
}

// AppendTicket adds a newly created ticket to the queue. Ticket ids are
// dense; the ticket's id must equal its queue position.
func (v *Vault) AppendTicket(t *types.WithdrawalTicket) error {
	if t.ID != uint64(len(v.data.Tickets)) {
		return errors.Errorf("ticket id %d does not match queue position %d", t.ID, len(v.data.Tickets))
	}
	cp := *t
	v.data.Tickets = append(v.data.Tickets, &cp)
	return nil
}

// MarkTicketClaimable freezes a pending ticket's payout and makes it
// claimable.
func (v *Vault) MarkTicketClaimable(id uint64, payout uint64, epoch types.Epoch) error {
	t, err := v.ticketRef(id)
	if err != nil {
		return err
	}
	if t.Status != types.Pending {
		return types.ErrTicketNotPending
	}
	t.Status = types.Claimable
	t.Payout = payout
	t.ClaimableEpoch = epoch
	return nil
}

// MarkTicketClaimed settles a claimable ticket.
func (v *Vault) MarkTicketClaimed(id uint64, epoch types.Epoch) error {
	t, err := v.ticketRef(id)
	if err != nil {
		return err
	}
	switch t.Status {
	case types.Claimed:
		return types.ErrAlreadyClaimed
	case types.Cancelled:
		return types.ErrTicketCancelled
	case types.Pending:
		return types.ErrNotYetClaimable
	}
	t.Status = types.Claimed
	t.SettledEpoch = epoch
	return nil
}

// MarkTicketCancelled settles a pending ticket without payout.
func (v *Vault) MarkTicketCancelled(id uint64, epoch types.Epoch) error {
	t, err := v.ticketRef(id)
	if err != nil {
		return err
	}
	if t.Status != types.Pending {
		return types.ErrTicketNotPending
	}
	t.Status = types.Cancelled
	t.SettledEpoch = epoch
	return nil
}

// SetLastSwept records the epoch of the latest queue sweep.
func (v *Vault) SetLastSwept(epoch types.Epoch) {
	v.data.LastSwept = epoch
}

// Halt marks the vault as refusing further mutation. Only manual
// reconciliation outside the protocol lifts a halt.
func (v *Vault) Halt() {
	v.data.Halted = true
}

func (v *Vault) delegation(op types.OperatorID) *types.Delegation {
	d, ok := v.data.Delegations[op]
	if !ok {
		d = &types.Delegation{Operator: op}
		v.data.Delegations[op] = d
	}
	return d
}

func (v *Vault) ticketRef(id uint64) (*types.WithdrawalTicket, error) {
	if id >= uint64(len(v.data.Tickets)) {
		return nil, types.ErrTicketNotFound
	}
	return v.data.Tickets[id], nil
}
