package epochs

import (
	"testing"
	"time"

	"github.com/restakelabs/restaking/types"
)

var _ Ticker = (*EpochTicker)(nil)

func TestEpochTicker(t *testing.T) {
	ticker := &EpochTicker{
		c:    make(chan types.Epoch),
		done: make(chan struct{}),
	}
	defer ticker.Done()

	var sinceDuration time.Duration
	since := func(time.Time) time.Duration {
		return sinceDuration
	}

	var untilDuration time.Duration
	until := func(time.Time) time.Duration {
		return untilDuration
	}

	var tick chan time.Time
	after := func(time.Duration) <-chan time.Time {
		return tick
	}

	genesisTime := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	secondsPerEpoch := uint64(8)

	// The ticker starts one second after genesis time.
	sinceDuration = 1 * time.Second
	untilDuration = 7 * time.Second
	// Buffered channel to prevent a deadlock since the other goroutine
	// calls a function in this goroutine.
	tick = make(chan time.Time, 2)
	ticker.start(genesisTime, secondsPerEpoch, since, until, after)

	tick <- time.Now()
	if epoch := <-ticker.C(); epoch != 0 {
		t.Fatalf("Expected %d, got %d", 0, epoch)
	}

	tick <- time.Now()
	if epoch := <-ticker.C(); epoch != 1 {
		t.Fatalf("Expected %d, got %d", 1, epoch)
	}

	tick <- time.Now()
	if epoch := <-ticker.C(); epoch != 2 {
		t.Fatalf("Expected %d, got %d", 2, epoch)
	}
}

func TestEpochTickerGenesis(t *testing.T) {
	ticker := &EpochTicker{
		c:    make(chan types.Epoch),
		done: make(chan struct{}),
	}
	defer ticker.Done()

	var sinceDuration time.Duration
	since := func(time.Time) time.Duration {
		return sinceDuration
	}

	var untilDuration time.Duration
	until := func(time.Time) time.Duration {
		return untilDuration
	}

	var tick chan time.Time
	after := func(time.Duration) <-chan time.Time {
		return tick
	}

	genesisTime := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	secondsPerEpoch := uint64(8)

	// The ticker starts before genesis time.
	sinceDuration = -1 * time.Second
	untilDuration = 1 * time.Second
	tick = make(chan time.Time, 2)
	ticker.start(genesisTime, secondsPerEpoch, since, until, after)

	tick <- time.Now()
	if epoch := <-ticker.C(); epoch != 0 {
		t.Fatalf("Expected %d, got %d", 0, epoch)
	}

	tick <- time.Now()
	if epoch := <-ticker.C(); epoch != 1 {
		t.Fatalf("Expected %d, got %d", 1, epoch)
	}
}
