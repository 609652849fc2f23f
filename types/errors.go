package types

import "github.com/pkg/errors"

// Operation errors. All are synchronous caller precondition failures and
// leave state untouched; none is retryable without corrected arguments.
var (
	// ErrInvalidAmount is returned when an operation receives a zero amount.
	ErrInvalidAmount = errors.New("amount must be greater than zero")
	// ErrArithmeticOverflow is returned when a balance or counter would
	// exceed the uint64 range.
	ErrArithmeticOverflow = errors.New("arithmetic overflow")
	// ErrEmptyVault is returned when the exchange rate is requested from a
	// vault with no shares outstanding or reserved.
	ErrEmptyVault = errors.New("vault has no shares outstanding")
	// ErrNotOptedIn is returned when the registry holds no active opt-in
	// covering the requested triple.
	ErrNotOptedIn = errors.New("no active registry opt-in for vault, operator and network")
	// ErrInsufficientIdleBalance is returned when the vault's idle balance
	// cannot cover a delegation.
	ErrInsufficientIdleBalance = errors.New("insufficient idle balance")
	// ErrInsufficientDelegatedBalance is returned when an undelegation
	// exceeds the delegated amount.
	ErrInsufficientDelegatedBalance = errors.New("insufficient delegated balance")
	// ErrCooldownAlreadyActive is returned when a second undelegation is
	// begun while one is cooling. The in-flight window is never extended
	// or reset.
	ErrCooldownAlreadyActive = errors.New("an undelegation cooldown is already active")
	// ErrCooldownNotMatured is returned when an undelegation is completed
	// before its window has elapsed.
	ErrCooldownNotMatured = errors.New("undelegation cooldown has not matured")
	// ErrNotYetClaimable is returned when a pending ticket is claimed
	// before the sweep has made it claimable.
	ErrNotYetClaimable = errors.New("withdrawal ticket is not yet claimable")
	// ErrAlreadyClaimed is returned on a second claim of the same ticket.
	ErrAlreadyClaimed = errors.New("withdrawal ticket already claimed")
	// ErrSlashExceedsCap is returned when a slash request exceeds the
	// network's remaining per-epoch budget for the delegation.
	ErrSlashExceedsCap = errors.New("requested slash exceeds the network's per-epoch cap")
	// ErrTicketNotFound is returned for an unknown ticket id.
	ErrTicketNotFound = errors.New("withdrawal ticket not found")
	// ErrTicketCancelled is returned when claiming a cancelled ticket.
	ErrTicketCancelled = errors.New("withdrawal ticket was cancelled")
	// ErrTicketNotPending is returned when cancelling a ticket that has
	// already turned claimable or settled.
	ErrTicketNotPending = errors.New("withdrawal ticket is no longer pending")
	// ErrVaultHalted is returned for every mutation after an invariant
	// violation has been detected, until the vault is manually reconciled.
	ErrVaultHalted = errors.New("vault is halted after an invariant violation")
	// ErrUnknownVault is returned when an operation names a vault that was
	// never created.
	ErrUnknownVault = errors.New("unknown vault")
)
