package epochs_test

import (
	"testing"
	"time"

	"github.com/restakelabs/restaking/config/params"
	"github.com/restakelabs/restaking/time/epochs"
	"github.com/restakelabs/restaking/types"
	"github.com/stretchr/testify/require"
)

func TestCooldownMatured_BoundaryInclusive(t *testing.T) {
	params.SetupTestConfigCleanup(t)
	cfg := params.MinimalSpecConfig()
	cfg.CooldownEpochs = 2
	params.OverrideRestakingConfig(cfg)

	start := types.Epoch(5)
	require.Equal(t, false, epochs.CooldownMatured(start, 5))
	require.Equal(t, false, epochs.CooldownMatured(start, 6))
	require.Equal(t, true, epochs.CooldownMatured(start, 7))
	require.Equal(t, true, epochs.CooldownMatured(start, 8))
	require.Equal(t, types.Epoch(7), epochs.CooldownEnd(start))
}

func TestTicketMatured_BoundaryInclusive(t *testing.T) {
	params.SetupTestConfigCleanup(t)
	cfg := params.MinimalSpecConfig()
	cfg.WithdrawalEpochs = 1
	params.OverrideRestakingConfig(cfg)

	require.Equal(t, false, epochs.TicketMatured(4, 4))
	require.Equal(t, true, epochs.TicketMatured(4, 5))
}

func TestManualClock_NeverMovesBackward(t *testing.T) {
	clock := epochs.NewManualClock(10)
	clock.Set(4)
	require.Equal(t, types.Epoch(10), clock.CurrentEpoch())
	clock.Advance(3)
	require.Equal(t, types.Epoch(13), clock.CurrentEpoch())
}

func TestWallClock_BeforeGenesis(t *testing.T) {
	params.SetupTestConfigCleanup(t)
	params.OverrideRestakingConfig(params.MinimalSpecConfig())

	clock := epochs.NewWallClock(time.Now().Add(time.Hour))
	require.Equal(t, types.Epoch(0), clock.CurrentEpoch())
}

func TestWallClock_EpochProgression(t *testing.T) {
	params.SetupTestConfigCleanup(t)
	cfg := params.MinimalSpecConfig()
	cfg.SecondsPerEpoch = 10
	params.OverrideRestakingConfig(cfg)

	genesis := time.Now().Add(-25 * time.Second)
	clock := epochs.NewWallClock(genesis)
	require.Equal(t, types.Epoch(2), clock.CurrentEpoch())
	require.Equal(t, genesis, clock.GenesisTime())

	start := epochs.StartTime(genesis, 3)
	require.Equal(t, genesis.Add(30*time.Second), start)
}
