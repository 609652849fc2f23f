package vault

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/restakelabs/restaking/config/params"
	"github.com/restakelabs/restaking/state"
	"github.com/restakelabs/restaking/types"
)

func TestProcessDeposit_Bootstrap(t *testing.T) {
	params.SetupTestConfigCleanup(t)
	params.UseMinimalConfig()
	ctx := context.Background()
	v := state.New(types.VaultID{1}, types.Account{2}, 0)

	minted, err := ProcessDeposit(ctx, v, 1000)
	require.NoError(t, err)
	require.Equal(t, uint64(1000), minted)
	require.Equal(t, uint64(1000), v.TotalShares())
	require.Equal(t, uint64(1000), v.TotalAssets())
	require.Equal(t, uint64(1000), v.Idle())

	rate, err := v.ExchangeRate()
	require.NoError(t, err)
	require.Equal(t, "1", rate.String())
}

func TestProcessDeposit_AtCurrentRate(t *testing.T) {
	params.SetupTestConfigCleanup(t)
	params.UseMinimalConfig()
	ctx := context.Background()
	v := state.New(types.VaultID{1}, types.Account{2}, 0)

	_, err := ProcessDeposit(ctx, v, 1000)
	require.NoError(t, err)
	// Yield doubles the rate.
	require.NoError(t, ProcessReward(ctx, v, 1000))

	minted, err := ProcessDeposit(ctx, v, 500)
	require.NoError(t, err)
	require.Equal(t, uint64(250), minted)
	require.Equal(t, uint64(1250), v.TotalShares())
	require.Equal(t, uint64(2500), v.TotalAssets())
}

func TestProcessDeposit_RejectsZeroAndDust(t *testing.T) {
	params.SetupTestConfigCleanup(t)
	cfg := params.MinimalSpecConfig()
	cfg.MinDepositAmount = 10
	params.OverrideRestakingConfig(cfg)
	ctx := context.Background()
	v := state.New(types.VaultID{1}, types.Account{2}, 0)

	_, err := ProcessDeposit(ctx, v, 0)
	require.ErrorIs(t, err, types.ErrInvalidAmount)
	_, err = ProcessDeposit(ctx, v, 9)
	require.ErrorIs(t, err, types.ErrInvalidAmount)
	require.Equal(t, uint64(0), v.TotalAssets())
}

func TestProcessDeposit_ZeroMintedShares(t *testing.T) {
	params.SetupTestConfigCleanup(t)
	params.UseMinimalConfig()
	ctx := context.Background()
	v := state.New(types.VaultID{1}, types.Account{2}, 0)

	_, err := ProcessDeposit(ctx, v, 10)
	require.NoError(t, err)
	// Push the rate far above 1 so a tiny deposit floors to zero shares.
	require.NoError(t, ProcessReward(ctx, v, 990))

	_, err = ProcessDeposit(ctx, v, 5)
	require.ErrorIs(t, err, types.ErrInvalidAmount)
	require.Equal(t, uint64(1000), v.TotalAssets())
	require.Equal(t, uint64(10), v.TotalShares())
}

func TestProcessDeposit_HaltedVault(t *testing.T) {
	params.SetupTestConfigCleanup(t)
	params.UseMinimalConfig()
	v := state.New(types.VaultID{1}, types.Account{2}, 0)
	v.Halt()

	_, err := ProcessDeposit(context.Background(), v, 100)
	require.ErrorIs(t, err, types.ErrVaultHalted)
}

func TestProcessReward(t *testing.T) {
	params.SetupTestConfigCleanup(t)
	params.UseMinimalConfig()
	ctx := context.Background()
	v := state.New(types.VaultID{1}, types.Account{2}, 0)

	// No shares outstanding yet.
	err := ProcessReward(ctx, v, 50)
	require.ErrorIs(t, err, types.ErrEmptyVault)

	_, err = ProcessDeposit(ctx, v, 1000)
	require.NoError(t, err)

	require.ErrorIs(t, ProcessReward(ctx, v, 0), types.ErrInvalidAmount)
	require.NoError(t, ProcessReward(ctx, v, 250))
	require.Equal(t, uint64(1250), v.TotalAssets())
	require.Equal(t, uint64(1000), v.TotalShares())

	rate, err := v.ExchangeRate()
	require.NoError(t, err)
	require.Equal(t, "1.25", rate.String())
}
