package slashing

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/restakelabs/restaking/config/params"
	"github.com/restakelabs/restaking/state"
	"github.com/restakelabs/restaking/types"
)

var (
	opA  = types.OperatorID{7}
	netA = types.NetworkID{1}
	netB = types.NetworkID{2}
)

func allowAll(_ types.VaultID, _ types.OperatorID, _ types.NetworkID) bool { return true }

func fixedBps(bps uint64) SlashableBpsFunc {
	return func(_ types.VaultID, _ types.OperatorID, _ types.NetworkID) uint64 { return bps }
}

func delegatedVault(t *testing.T, assets, delegated uint64) *state.Vault {
	t.Helper()
	v := state.New(types.VaultID{1}, types.Account{2}, 0)
	require.NoError(t, v.CreditAssets(assets))
	require.NoError(t, v.MintShares(assets))
	require.NoError(t, v.Delegate(opA, delegated))
	return v
}

func TestProcessSlash_FullApplication(t *testing.T) {
	params.SetupTestConfigCleanup(t)
	params.UseMinimalConfig()
	ctx := context.Background()
	v := delegatedVault(t, 1000, 600)

	rec, err := ProcessSlash(ctx, v, uuid.New(), netA, opA, 200, 3, allowAll, fixedBps(10000))
	require.NoError(t, err)
	require.Equal(t, uint64(200), rec.Requested)
	require.Equal(t, uint64(200), rec.Applied)
	require.Equal(t, false, rec.Partial())
	require.Equal(t, types.Epoch(3), rec.Epoch)

	require.Equal(t, uint64(800), v.TotalAssets())
	require.Equal(t, uint64(400), v.Idle())
	require.Equal(t, uint64(400), v.AvailableStake(opA))
	require.NoError(t, v.CheckInvariant())
}

func TestProcessSlash_RequiresOptIn(t *testing.T) {
	params.SetupTestConfigCleanup(t)
	params.UseMinimalConfig()
	v := delegatedVault(t, 1000, 600)
	deny := func(_ types.VaultID, _ types.OperatorID, _ types.NetworkID) bool { return false }

	_, err := ProcessSlash(context.Background(), v, uuid.New(), netA, opA, 100, 3, deny, fixedBps(10000))
	require.ErrorIs(t, err, types.ErrNotOptedIn)
	require.Equal(t, uint64(1000), v.TotalAssets())
}

func TestProcessSlash_ZeroAmount(t *testing.T) {
	params.SetupTestConfigCleanup(t)
	params.UseMinimalConfig()
	v := delegatedVault(t, 1000, 600)

	_, err := ProcessSlash(context.Background(), v, uuid.New(), netA, opA, 0, 3, allowAll, fixedBps(10000))
	require.ErrorIs(t, err, types.ErrInvalidAmount)
}

func TestProcessSlash_CapPerEpoch(t *testing.T) {
	params.SetupTestConfigCleanup(t)
	params.UseMinimalConfig()
	ctx := context.Background()
	// 10% of a 1000 epoch-start stake.
	v := delegatedVault(t, 1000, 1000)

	_, err := ProcessSlash(ctx, v, uuid.New(), netA, opA, 101, 3, allowAll, fixedBps(1000))
	require.ErrorIs(t, err, types.ErrSlashExceedsCap)

	rec, err := ProcessSlash(ctx, v, uuid.New(), netA, opA, 60, 3, allowAll, fixedBps(1000))
	require.NoError(t, err)
	require.Equal(t, uint64(60), rec.Applied)

	// The budget is cumulative within the epoch and measured against the
	// epoch-start stake, not the already reduced current stake.
	_, err = ProcessSlash(ctx, v, uuid.New(), netA, opA, 50, 3, allowAll, fixedBps(1000))
	require.ErrorIs(t, err, types.ErrSlashExceedsCap)

	rec, err = ProcessSlash(ctx, v, uuid.New(), netA, opA, 40, 3, allowAll, fixedBps(1000))
	require.NoError(t, err)
	require.Equal(t, uint64(40), rec.Applied)

	// A new epoch opens a fresh budget against the reduced stake.
	rec, err = ProcessSlash(ctx, v, uuid.New(), netA, opA, 90, 4, allowAll, fixedBps(1000))
	require.NoError(t, err)
	require.Equal(t, uint64(90), rec.Applied)
	require.Equal(t, uint64(810), v.AvailableStake(opA))
}

func TestProcessSlash_CoolingFirst(t *testing.T) {
	params.SetupTestConfigCleanup(t)
	params.UseMinimalConfig()
	ctx := context.Background()
	v := delegatedVault(t, 1000, 600)
	require.NoError(t, v.BeginCooldown(opA, 250, 2))

	rec, err := ProcessSlash(ctx, v, uuid.New(), netA, opA, 400, 3, allowAll, fixedBps(10000))
	require.NoError(t, err)
	require.Equal(t, uint64(400), rec.Applied)

	d, ok := v.Delegation(opA)
	require.Equal(t, true, ok)
	require.Equal(t, uint64(0), d.CoolingAmount)
	require.Equal(t, uint64(200), d.DelegatedAmount)
	require.NoError(t, v.CheckInvariant())
}

func TestProcessSlash_PartialCoverage(t *testing.T) {
	params.SetupTestConfigCleanup(t)
	params.UseMinimalConfig()
	ctx := context.Background()
	v := delegatedVault(t, 1000, 1000)

	// Network A drains 600 of the 1000 epoch-start stake.
	rec, err := ProcessSlash(ctx, v, uuid.New(), netA, opA, 600, 3, allowAll, fixedBps(6000))
	require.NoError(t, err)
	require.Equal(t, uint64(600), rec.Applied)
	require.Equal(t, uint64(400), v.AvailableStake(opA))

	// Network B's budget is measured against the same 1000 epoch-start
	// stake, but only 400 remains. The shortfall is reported, not refused.
	rec, err = ProcessSlash(ctx, v, uuid.New(), netB, opA, 500, 3, allowAll, fixedBps(6000))
	require.NoError(t, err)
	require.Equal(t, uint64(500), rec.Requested)
	require.Equal(t, uint64(400), rec.Applied)
	require.Equal(t, true, rec.Partial())
	require.Equal(t, uint64(0), v.AvailableStake(opA))
	require.NoError(t, v.CheckInvariant())
}

func TestProcessSlash_NoStakeNoBudget(t *testing.T) {
	params.SetupTestConfigCleanup(t)
	params.UseMinimalConfig()
	v := state.New(types.VaultID{1}, types.Account{2}, 0)
	require.NoError(t, v.CreditAssets(1000))
	require.NoError(t, v.MintShares(1000))

	_, err := ProcessSlash(context.Background(), v, uuid.New(), netA, opA, 1, 3, allowAll, fixedBps(10000))
	require.ErrorIs(t, err, types.ErrSlashExceedsCap)
}

func TestProcessSlash_HaltedVault(t *testing.T) {
	params.SetupTestConfigCleanup(t)
	params.UseMinimalConfig()
	v := delegatedVault(t, 1000, 600)
	v.Halt()

	_, err := ProcessSlash(context.Background(), v, uuid.New(), netA, opA, 100, 3, allowAll, fixedBps(10000))
	require.ErrorIs(t, err, types.ErrVaultHalted)
}
