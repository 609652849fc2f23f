// Package operation contains types for operation-specific events fired
// as the protocol service applies deposits, delegations, withdrawals,
// and slashes.
package operation

import (
	"github.com/google/uuid"

	"github.com/restakelabs/restaking/types"
)

const (
	// DepositProcessed is sent after a deposit has minted shares.
	DepositProcessed = iota + 1
	// RewardCredited is sent after external yield has been credited to a vault.
	RewardCredited
	// StakeDelegated is sent after idle assets have been delegated to an operator.
	StakeDelegated
	// CooldownStarted is sent after an undelegation has entered its cooldown window.
	CooldownStarted
	// CooldownCompleted is sent after matured cooling stake has returned to idle.
	CooldownCompleted
	// TicketEnqueued is sent after a withdrawal ticket has been opened.
	TicketEnqueued
	// TicketClaimable is sent for each ticket the epoch sweep promotes.
	TicketClaimable
	// TicketClaimed is sent after a claim has paid out.
	TicketClaimed
	// TicketCancelled is sent after a pending ticket has been withdrawn.
	TicketCancelled
	// SlashApplied is sent after a slash has been applied, fully or partially.
	SlashApplied
	// VaultHalted is sent when an invariant violation freezes a vault.
	VaultHalted
)

// DepositProcessedData is the data sent with DepositProcessed events.
type DepositProcessedData struct {
	Vault     types.VaultID
	Depositor types.Account
	// Amount is the asset amount pulled into custody.
	Amount uint64
	// Minted is the share count credited to the depositor.
	Minted uint64
}

// RewardCreditedData is the data sent with RewardCredited events.
type RewardCreditedData struct {
	Vault  types.VaultID
	Amount uint64
}

// StakeDelegatedData is the data sent with StakeDelegated events.
type StakeDelegatedData struct {
	Vault    types.VaultID
	Operator types.OperatorID
	Amount   uint64
}

// CooldownStartedData is the data sent with CooldownStarted events.
type CooldownStartedData struct {
	Vault    types.VaultID
	Operator types.OperatorID
	Amount   uint64
	// Start is the epoch stamped on the cooldown window.
	Start types.Epoch
}

// CooldownCompletedData is the data sent with CooldownCompleted events.
type CooldownCompletedData struct {
	Vault    types.VaultID
	Operator types.OperatorID
	// Released is the amount returned to the vault's idle balance.
	Released uint64
}

// TicketEnqueuedData is the data sent with TicketEnqueued events.
type TicketEnqueuedData struct {
	Vault  types.VaultID
	Ticket types.WithdrawalTicket
}

// TicketClaimableData is the data sent with TicketClaimable events.
type TicketClaimableData struct {
	Vault    types.VaultID
	TicketID uint64
	// Payout is the amount frozen for the claim at promotion time.
	Payout uint64
}

// TicketClaimedData is the data sent with TicketClaimed events.
type TicketClaimedData struct {
	Vault    types.VaultID
	TicketID uint64
	Holder   types.Account
	Payout   uint64
}

// TicketCancelledData is the data sent with TicketCancelled events.
type TicketCancelledData struct {
	Vault    types.VaultID
	TicketID uint64
	// Restored is the share count returned to the holder.
	Restored uint64
}

// SlashAppliedData is the data sent with SlashApplied events.
type SlashAppliedData struct {
	Reference uuid.UUID
	Vault     types.VaultID
	Operator  types.OperatorID
	Network   types.NetworkID
	Requested uint64
	Applied   uint64
}

// VaultHaltedData is the data sent with VaultHalted events.
type VaultHaltedData struct {
	Vault types.VaultID
	// Reason is the invariant violation that froze the vault.
	Reason string
}
