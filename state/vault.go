// Package state holds the in-memory accounting state of a single vault:
// share totals, idle and delegated balances, the per-operator delegation
// table and the withdrawal ticket queue. A Vault is not safe for
// concurrent use; the protocol service serializes all access per vault.
package state

import (
	"bytes"
	"math/big"
	"sort"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/restakelabs/restaking/math"
	"github.com/restakelabs/restaking/types"
)

// exchangeRatePrecision is the number of decimal places reported by
// ExchangeRate. Reporting only; mutation math is integer throughout.
const exchangeRatePrecision = 18

// VaultData is the plain serializable form of a vault's state. The host
// storage layer persists it verbatim; all mutation goes through Vault.
type VaultData struct {
	ID    types.VaultID
	Asset types.Account

	// TotalShares counts shares held by accounts. ReservedShares counts
	// shares burned for unsettled withdrawal tickets; they stay in the
	// exchange rate denominator until the ticket settles, so pending
	// withdrawers keep sharing slashes and rewards.
	TotalShares    uint64
	ReservedShares uint64

	// TotalAssets == Idle + sum of delegated and cooling amounts, always.
	TotalAssets uint64
	Idle        uint64

	// ClaimableReserved is the portion of Idle promised to claimable
	// tickets. It is never delegated away.
	ClaimableReserved uint64

	Delegations map[types.OperatorID]*types.Delegation
	Tickets     []*types.WithdrawalTicket
	TicketSeq   uint64

	LastSwept types.Epoch
	CreatedAt types.Epoch
	Halted    bool
}

// Vault wraps VaultData with guarded accessors and mutators.
type Vault struct {
	data *VaultData
}

// New creates an empty vault for the given underlying asset.
func New(id types.VaultID, asset types.Account, createdAt types.Epoch) *Vault {
	return &Vault{data: &VaultData{
		ID:          id,
		Asset:       asset,
		Delegations: make(map[types.OperatorID]*types.Delegation),
		CreatedAt:   createdAt,
		LastSwept:   createdAt,
	}}
}

// FromData wraps previously persisted vault data.
func FromData(data *VaultData) *Vault {
	if data.Delegations == nil {
		data.Delegations = make(map[types.OperatorID]*types.Delegation)
	}
	return &Vault{data: data}
}

// ID of the vault.
func (v *Vault) ID() types.VaultID {
	return v.data.ID
}

// Asset returns the underlying asset mint identity.
func (v *Vault) Asset() types.Account {
	return v.data.Asset
}

// CreatedAt returns the epoch the vault was created in.
func (v *Vault) CreatedAt() types.Epoch {
	return v.data.CreatedAt
}

// TotalShares outstanding, excluding ticket-reserved shares.
func (v *Vault) TotalShares() uint64 {
	return v.data.TotalShares
}

// ReservedShares held by unsettled withdrawal tickets.
func (v *Vault) ReservedShares() uint64 {
	return v.data.ReservedShares
}

// ShareDenominator is the share base the exchange rate is quoted against.
func (v *Vault) ShareDenominator() uint64 {
	return v.data.TotalShares + v.data.ReservedShares
}

// TotalAssets under management across idle, delegated and cooling balances.
func (v *Vault) TotalAssets() uint64 {
	return v.data.TotalAssets
}

// Idle balance not currently delegated.
func (v *Vault) Idle() uint64 {
	return v.data.Idle
}

// ClaimableReserved is the idle portion promised to claimable tickets.
func (v *Vault) ClaimableReserved() uint64 {
	return v.data.ClaimableReserved
}

// UnreservedIdle is the idle balance available for delegation or new
// claimable reservations.
func (v *Vault) UnreservedIdle() uint64 {
	return v.data.Idle - v.data.ClaimableReserved
}

// Halted reports whether the vault refuses mutation after an invariant
// violation.
func (v *Vault) Halted() bool {
	return v.data.Halted
}

// LastSwept returns the epoch of the last withdrawal queue sweep.
func (v *Vault) LastSwept() types.Epoch {
	return v.data.LastSwept
}

// Delegation returns a copy of the delegation record for one operator.
func (v *Vault) Delegation(op types.OperatorID) (*types.Delegation, bool) {
	d, ok := v.data.Delegations[op]
	if !ok {
		return nil, false
	}
	return d.Copy(), true
}

// Delegations returns copies of every delegation record, ordered by
// operator id for deterministic iteration.
func (v *Vault) Delegations() []*types.Delegation {
	out := make([]*types.Delegation, 0, len(v.data.Delegations))
	for _, d := range v.data.Delegations {
		out = append(out, d.Copy())
	}
	sort.Slice(out, func(i, j int) bool {
		return bytes.Compare(out[i].Operator[:], out[j].Operator[:]) < 0
	})
	return out
}

// AvailableStake is the slashable stake for one operator, delegated plus
// cooling.
func (v *Vault) AvailableStake(op types.OperatorID) uint64 {
	d, ok := v.data.Delegations[op]
	if !ok {
		return 0
	}
	return d.DelegatedAmount + d.CoolingAmount
}

// SlashedThisEpoch returns how much the network has already slashed from
// the operator's delegation during the given epoch.
func (v *Vault) SlashedThisEpoch(op types.OperatorID, network types.NetworkID, epoch types.Epoch) uint64 {
	d, ok := v.data.Delegations[op]
	if !ok {
		return 0
	}
	for _, tally := range d.Tallies {
		if tally.Network == network && tally.Epoch == epoch {
			return tally.Amount
		}
	}
	return 0
}

// SlashTallyTotal returns the stake all networks together have slashed
// from the operator's delegation during the given epoch. Added to the
// operator's current stake it reconstructs the epoch-start basis the
// per-epoch cap is measured against.
func (v *Vault) SlashTallyTotal(op types.OperatorID, epoch types.Epoch) uint64 {
	d, ok := v.data.Delegations[op]
	if !ok {
		return 0
	}
	var sum uint64
	for _, tally := range d.Tallies {
		if tally.Epoch == epoch {
			sum += tally.Amount
		}
	}
	return sum
}

// DelegatedTotal sums the delegated amounts across operators.
func (v *Vault) DelegatedTotal() uint64 {
	var sum uint64
	for _, d := range v.data.Delegations {
		sum += d.DelegatedAmount
	}
	return sum
}

// CoolingTotal sums the cooling amounts across operators.
func (v *Vault) CoolingTotal() uint64 {
	var sum uint64
	for _, d := range v.data.Delegations {
		sum += d.CoolingAmount
	}
	return sum
}

// Ticket returns a copy of one withdrawal ticket. This will error with
// ErrTicketNotFound when no ticket with the given id exists.
func (v *Vault) Ticket(id uint64) (*types.WithdrawalTicket, error) {
	if id >= uint64(len(v.data.Tickets)) {
		return nil, errors.Wrapf(types.ErrTicketNotFound, "ticket %d", id)
	}
	t := *v.data.Tickets[id]
	return &t, nil
}

// Tickets returns copies of every withdrawal ticket in creation order.
func (v *Vault) Tickets() []*types.WithdrawalTicket {
	out := make([]*types.WithdrawalTicket, len(v.data.Tickets))
	for i, t := range v.data.Tickets {
		cp := *t
		out[i] = &cp
	}
	return out
}

// PendingTickets returns copies of the still pending tickets in creation
// order, the order the sweep evaluates them in.
func (v *Vault) PendingTickets() []*types.WithdrawalTicket {
	var out []*types.WithdrawalTicket
	for _, t := range v.data.Tickets {
		if t.Status == types.Pending {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out
}

// SharesToAssets converts shares to their asset value at the current
// exchange rate, rounding down.
func (v *Vault) SharesToAssets(shares uint64) (uint64, error) {
	denom := v.ShareDenominator()
	if denom == 0 {
		return 0, types.ErrEmptyVault
	}
	amount, err := math.MulDiv64(shares, v.data.TotalAssets, denom)
	if err != nil {
		return 0, types.ErrArithmeticOverflow
	}
	return amount, nil
}

// AssetsToShares converts an asset amount to shares at the current
// exchange rate, rounding down. The empty vault bootstrap case is the
// caller's concern.
func (v *Vault) AssetsToShares(amount uint64) (uint64, error) {
	denom := v.ShareDenominator()
	if denom == 0 {
		return 0, types.ErrEmptyVault
	}
	shares, err := math.MulDiv64(amount, denom, v.data.TotalAssets)
	if err != nil {
		return 0, types.ErrArithmeticOverflow
	}
	return shares, nil
}

// ExchangeRate reports assets per share as a decimal. Mutating operations
// never consume this value; they stay on integer math.
func (v *Vault) ExchangeRate() (decimal.Decimal, error) {
	denom := v.ShareDenominator()
	if denom == 0 {
		return decimal.Zero, types.ErrEmptyVault
	}
	assets := decimal.NewFromBigInt(new(big.Int).SetUint64(v.data.TotalAssets), 0)
	shares := decimal.NewFromBigInt(new(big.Int).SetUint64(denom), 0)
	return assets.DivRound(shares, exchangeRatePrecision), nil
}

// CopyData returns a deep copy of the vault's serializable state.
func (v *Vault) CopyData() *VaultData {
	cp := *v.data
	cp.Delegations = make(map[types.OperatorID]*types.Delegation, len(v.data.Delegations))
	for op, d := range v.data.Delegations {
		cp.Delegations[op] = d.Copy()
	}
	cp.Tickets = make([]*types.WithdrawalTicket, len(v.data.Tickets))
	for i, t := range v.data.Tickets {
		tcp := *t
		cp.Tickets[i] = &tcp
	}
	return &cp
}

// Copy returns a deep copy of the vault.
func (v *Vault) Copy() *Vault {
	return &Vault{data: v.CopyData()}
}
