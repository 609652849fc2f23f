package epochs

import (
	"time"

	"github.com/restakelabs/restaking/types"
)

// Ticker is a convenience interface for ticker types.
type Ticker interface {
	C() <-chan types.Epoch
	Done()
}

// EpochTicker emits the new epoch number over the epoch interval, keeping
// ticks in line with the genesis time: the duration between a tick and
// genesis is always a multiple of the epoch duration.
type EpochTicker struct {
	c    chan types.Epoch
	done chan struct{}
}

// C returns the ticker channel. Call Cancel afterwards to ensure no leaked goroutines.
func (s *EpochTicker) C() <-chan types.Epoch {
	return s.c
}

// Done should be called to clean up the ticker.
func (s *EpochTicker) Done() {
	go func() {
		s.done <- struct{}{}
	}()
}

// NewEpochTicker starts and returns a new EpochTicker instance.
func NewEpochTicker(genesisTime time.Time, secondsPerEpoch uint64) *EpochTicker {
	if genesisTime.IsZero() {
		panic("zero genesis time")
	}
	ticker := &EpochTicker{
		c:    make(chan types.Epoch),
		done: make(chan struct{}),
	}
	ticker.start(genesisTime, secondsPerEpoch, time.Since, time.Until, time.After)
	return ticker
}

func (s *EpochTicker) start(
	genesisTime time.Time,
	secondsPerEpoch uint64,
	since, until func(time.Time) time.Duration,
	after func(time.Duration) <-chan time.Time) {
	d := time.Duration(secondsPerEpoch) * time.Second

	go func() {
		sinceGenesis := since(genesisTime)

		var nextTickTime time.Time
		var epoch types.Epoch
		if sinceGenesis < d {
			// Handle when the current time is before the genesis time.
			nextTickTime = genesisTime
			epoch = 0
		} else {
			nextTick := sinceGenesis.Truncate(d) + d
			nextTickTime = genesisTime.Add(nextTick)
			epoch = types.Epoch(nextTick / d)
		}

		for {
			waitTime := until(nextTickTime)
			select {
			case <-after(waitTime):
				s.c <- epoch
				epoch++
				nextTickTime = nextTickTime.Add(d)
			case <-s.done:
				return
			}
		}
	}()
}
