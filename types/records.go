package types

import (
	"github.com/google/uuid"
)

// SlashTally accumulates the stake a network has slashed from one
// delegation during a single epoch. Tallies for elapsed epochs are
// discarded the next time the delegation is slashed.
type SlashTally struct {
	Network NetworkID
	Epoch   Epoch
	Amount  uint64
}

// Delegation is the per (vault, operator) stake ledger entry. A record is
// created on first delegation and collapses to zero rather than being
// deleted, so it stays addressable as a slash target.
type Delegation struct {
	Operator        OperatorID
	DelegatedAmount uint64
	CoolingAmount   uint64
	// CooldownStart is only meaningful while CooldownActive is set.
	CooldownStart  Epoch
	CooldownActive bool
	Tallies        []SlashTally
}

// Copy returns a deep copy of the delegation record.
func (d *Delegation) Copy() *Delegation {
	if d == nil {
		return nil
	}
	cp := *d
	cp.Tallies = make([]SlashTally, len(d.Tallies))
	copy(cp.Tallies, d.Tallies)
	return &cp
}

// WithdrawalTicket records one share redemption moving through the
// security window. Shares are burned when the ticket is created; the
// payout is fixed only when the ticket turns claimable, so slashes during
// the pending window reduce it like any other holder's balance.
type WithdrawalTicket struct {
	ID     uint64
	Vault  VaultID
	Holder Account
	Shares uint64
	// LockedAmount is the asset value of Shares at the request-time
	// exchange rate. Informational; the payout is re-evaluated later.
	LockedAmount uint64
	// Payout is the asset amount reserved from idle, set on the
	// transition to Claimable.
	Payout         uint64
	Status         TicketStatus
	CreatedEpoch   Epoch
	ClaimableEpoch Epoch
	SettledEpoch   Epoch
}

// SlashRecord is the append-only audit trail entry for one slash request.
// Applied may be less than Requested when the delegation could not cover
// the full amount; that is a reported outcome, not a failure.
type SlashRecord struct {
	Reference uuid.UUID
	Network   NetworkID
	Operator  OperatorID
	Vault     VaultID
	Requested uint64
	Applied   uint64
	Epoch     Epoch
}

// Partial reports whether the slash was capped by available stake.
func (r *SlashRecord) Partial() bool {
	return r.Applied < r.Requested
}

// OperatorRecord is the registry entry for an operator identity.
type OperatorRecord struct {
	ID            OperatorID
	Name          string
	MetadataURI   string
	RegisteredAt  Epoch
	Active        bool
	DeactivatedAt Epoch
}

// NetworkRecord is the registry entry for a network identity.
// MaxSlashableBps is the default per-epoch slashing cap, in basis points
// of an operator's delegated plus cooling stake, applied to opt-ins that
// do not carry their own cap.
type NetworkRecord struct {
	ID              NetworkID
	Name            string
	MaxSlashableBps uint64
	RegisteredAt    Epoch
	Active          bool
	DeactivatedAt   Epoch
}

// OptInRecord is the mutual (vault, operator, network) authorization.
// Records are never deleted; opting out clears Active and stamps the
// epoch, and a later opt-in reactivates the same record.
type OptInRecord struct {
	Vault    VaultID
	Operator OperatorID
	Network  NetworkID
	// MaxSlashableBps overrides the network default when non-zero.
	MaxSlashableBps uint64
	OptedInAt       Epoch
	OptedOutAt      Epoch
	Active          bool
}

// ProtocolRecord is the persisted snapshot of protocol-wide settings and
// participation counts, refreshed after every admin operation. It lets a
// restarted node verify the configuration it runs with against the one
// the database was written under.
type ProtocolRecord struct {
	ConfigName       string
	CooldownEpochs   Epoch
	WithdrawalEpochs Epoch
	Vaults           uint64
	Operators        uint64
	Networks         uint64
	ActiveOptIns     uint64
	UpdatedAt        Epoch
}
