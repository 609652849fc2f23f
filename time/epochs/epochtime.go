package epochs

import (
	"time"

	"github.com/restakelabs/restaking/config/params"
	"github.com/restakelabs/restaking/types"
)

// CooldownEnd returns the first epoch at which an undelegation begun at
// start may complete.
func CooldownEnd(start types.Epoch) types.Epoch {
	return start.Add(uint64(params.RestakingConfig().CooldownEpochs))
}

// CooldownMatured reports whether an undelegation begun at start may
// complete at the current epoch. The boundary is inclusive: completion at
// exactly start + COOLDOWN_EPOCHS succeeds.
func CooldownMatured(start, current types.Epoch) bool {
	return current >= CooldownEnd(start)
}

// TicketMatured reports whether a withdrawal ticket created at the given
// epoch has waited out the withdrawal window. Like the cooldown, the
// boundary is inclusive.
func TicketMatured(created, current types.Epoch) bool {
	return current >= created.Add(uint64(params.RestakingConfig().WithdrawalEpochs))
}

// StartTime returns the wall time at which the given epoch begins for a
// clock anchored at genesis.
func StartTime(genesis time.Time, e types.Epoch) time.Time {
	d := time.Duration(params.RestakingConfig().SecondsPerEpoch) * time.Second
	return genesis.Add(d * time.Duration(e))
}
