package types

// TicketStatus enum like structure for the withdrawal ticket lifecycle.
type TicketStatus uint8

const (
	// Pending ticket waiting out the withdrawal window.
	Pending TicketStatus = iota
	// Claimable ticket whose window has elapsed and whose payout is
	// reserved against the vault's idle balance.
	Claimable
	// Claimed ticket that has been paid out.
	Claimed
	// Cancelled ticket whose shares were re-minted to the holder.
	Cancelled
)

const unknownStatus = "Unknown"

func (s TicketStatus) String() string {
	names := [...]string{
		"Pending",
		"Claimable",
		"Claimed",
		"Cancelled"}

	if s > Cancelled {
		return unknownStatus
	}
	return names[s]
}
