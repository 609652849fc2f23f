// Package epochs supplies the epoch clock collaborators and the helpers
// that turn wall time and configuration windows into epoch arithmetic.
package epochs

import (
	"sync"
	"time"

	"github.com/restakelabs/restaking/config/params"
	"github.com/restakelabs/restaking/types"
)

// Clock supplies the monotonically non-decreasing epoch number the
// accounting core resolves its security windows against. The clock is
// advanced entirely outside the core.
type Clock interface {
	CurrentEpoch() types.Epoch
}

// WallClock derives the current epoch from a genesis time and the
// configured epoch duration.
type WallClock struct {
	genesis time.Time
}

// NewWallClock returns a clock anchored at the given genesis time.
func NewWallClock(genesis time.Time) *WallClock {
	return &WallClock{genesis: genesis}
}

// CurrentEpoch returns the epoch in progress, or 0 before genesis.
func (c *WallClock) CurrentEpoch() types.Epoch {
	cfg := params.RestakingConfig()
	since := time.Since(c.genesis)
	if since < 0 {
		return 0
	}
	return types.Epoch(uint64(since.Seconds()) / cfg.SecondsPerEpoch)
}

// GenesisTime returns the anchor time of the clock.
func (c *WallClock) GenesisTime() time.Time {
	return c.genesis
}

// ManualClock is an epoch clock driven by the caller, used in tests and
// by tooling that replays recorded epochs.
type ManualClock struct {
	lock  sync.RWMutex
	epoch types.Epoch
}

// NewManualClock starts a manual clock at the given epoch.
func NewManualClock(epoch types.Epoch) *ManualClock {
	return &ManualClock{epoch: epoch}
}

// CurrentEpoch returns the epoch the clock was last set to.
func (c *ManualClock) CurrentEpoch() types.Epoch {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.epoch
}

// Set moves the clock to the given epoch. The clock never moves backward;
// a lower value is ignored.
func (c *ManualClock) Set(epoch types.Epoch) {
	c.lock.Lock()
	defer c.lock.Unlock()
	if epoch > c.epoch {
		c.epoch = epoch
	}
}

// Advance moves the clock forward by n epochs.
func (c *ManualClock) Advance(n uint64) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.epoch = c.epoch.Add(n)
}
