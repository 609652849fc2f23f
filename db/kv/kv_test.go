package kv

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/restakelabs/restaking/state"
	"github.com/restakelabs/restaking/types"
)

func setupStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewKVStore(t.TempDir(), &Config{})
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, s.Close())
	})
	return s
}

func sampleVault(t *testing.T) *state.Vault {
	t.Helper()
	v := state.New(types.VaultID{1}, types.Account{2}, 3)
	require.NoError(t, v.CreditAssets(1000))
	require.NoError(t, v.MintShares(1000))
	require.NoError(t, v.Delegate(types.OperatorID{7}, 400))
	require.NoError(t, v.BeginCooldown(types.OperatorID{7}, 100, 4))
	require.NoError(t, v.RecordSlashTally(types.OperatorID{7}, types.NetworkID{5}, 4, 25))
	require.NoError(t, v.AppendTicket(&types.WithdrawalTicket{
		ID:           0,
		Vault:        v.ID(),
		Holder:       types.Account{9},
		Shares:       50,
		LockedAmount: 50,
		Status:       types.Pending,
		CreatedEpoch: 4,
	}))
	require.NoError(t, v.BurnSharesToReserve(50))
	return v
}

func TestStore_SaveVault_RoundTrip(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	v := sampleVault(t)

	require.NoError(t, s.SaveVault(ctx, v.CopyData()))

	got, err := s.Vault(ctx, v.ID())
	require.NoError(t, err)
	require.NotNil(t, got)

	restored := state.FromData(got)
	require.Equal(t, v.TotalShares(), restored.TotalShares())
	require.Equal(t, v.ReservedShares(), restored.ReservedShares())
	require.Equal(t, v.TotalAssets(), restored.TotalAssets())
	require.Equal(t, v.Idle(), restored.Idle())
	require.NoError(t, restored.CheckInvariant())

	d, ok := restored.Delegation(types.OperatorID{7})
	require.Equal(t, true, ok)
	require.Equal(t, uint64(300), d.DelegatedAmount)
	require.Equal(t, uint64(100), d.CoolingAmount)
	require.Equal(t, types.Epoch(4), d.CooldownStart)
	require.Equal(t, true, d.CooldownActive)
	require.Equal(t, uint64(25), restored.SlashedThisEpoch(types.OperatorID{7}, types.NetworkID{5}, 4))

	tk, err := restored.Ticket(0)
	require.NoError(t, err)
	require.Equal(t, uint64(50), tk.Shares)
	require.Equal(t, types.Pending, tk.Status)
}

func TestStore_Vault_Missing(t *testing.T) {
	s := setupStore(t)
	got, err := s.Vault(context.Background(), types.VaultID{42})
	require.NoError(t, err)
	require.Nil(t, got)

	exists, err := s.HasVault(context.Background(), types.VaultID{42})
	require.NoError(t, err)
	require.Equal(t, false, exists)
}

func TestStore_Vault_ReturnsIsolatedCopy(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	v := sampleVault(t)
	require.NoError(t, s.SaveVault(ctx, v.CopyData()))

	first, err := s.Vault(ctx, v.ID())
	require.NoError(t, err)
	first.Idle = 0
	first.Delegations[types.OperatorID{7}].DelegatedAmount = 0

	second, err := s.Vault(ctx, v.ID())
	require.NoError(t, err)
	require.Equal(t, v.Idle(), second.Idle)
	require.Equal(t, uint64(300), second.Delegations[types.OperatorID{7}].DelegatedAmount)
}

func TestStore_Vaults_Ordered(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	for _, id := range []types.VaultID{{3}, {1}, {2}} {
		v := state.New(id, types.Account{2}, 0)
		require.NoError(t, s.SaveVault(ctx, v.CopyData()))
	}
	vaults, err := s.Vaults(ctx)
	require.NoError(t, err)
	require.Equal(t, 3, len(vaults))
	require.Equal(t, types.VaultID{1}, vaults[0].ID)
	require.Equal(t, types.VaultID{2}, vaults[1].ID)
	require.Equal(t, types.VaultID{3}, vaults[2].ID)
}

func TestStore_SlashRecords(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	vault := types.VaultID{1}
	other := types.VaultID{2}

	for _, rec := range []*types.SlashRecord{
		{Reference: uuid.New(), Network: types.NetworkID{5}, Operator: types.OperatorID{7}, Vault: vault, Requested: 100, Applied: 100, Epoch: 9},
		{Reference: uuid.New(), Network: types.NetworkID{5}, Operator: types.OperatorID{7}, Vault: vault, Requested: 50, Applied: 30, Epoch: 4},
		{Reference: uuid.New(), Network: types.NetworkID{6}, Operator: types.OperatorID{7}, Vault: other, Requested: 10, Applied: 10, Epoch: 4},
	} {
		require.NoError(t, s.SaveSlashRecord(ctx, rec))
	}

	records, err := s.SlashRecords(ctx, vault)
	require.NoError(t, err)
	require.Equal(t, 2, len(records))
	// Epoch order from the big-endian key layout.
	require.Equal(t, types.Epoch(4), records[0].Epoch)
	require.Equal(t, types.Epoch(9), records[1].Epoch)
	require.Equal(t, true, records[0].Partial())

	byEpoch, err := s.SlashRecordsByEpoch(ctx, vault, 4)
	require.NoError(t, err)
	require.Equal(t, 1, len(byEpoch))
	require.Equal(t, uint64(30), byEpoch[0].Applied)
}

func TestStore_RegistryRecords(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveOperator(ctx, &types.OperatorRecord{ID: types.OperatorID{7}, Name: "op", RegisteredAt: 1, Active: true}))
	require.NoError(t, s.SaveNetwork(ctx, &types.NetworkRecord{ID: types.NetworkID{5}, Name: "net", MaxSlashableBps: 6000, RegisteredAt: 1, Active: true}))
	require.NoError(t, s.SaveOptIn(ctx, &types.OptInRecord{
		Vault: types.VaultID{1}, Operator: types.OperatorID{7}, Network: types.NetworkID{5}, OptedInAt: 2, Active: true,
	}))

	ops, err := s.Operators(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, len(ops))
	require.Equal(t, "op", ops[0].Name)

	nets, err := s.Networks(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, len(nets))
	require.Equal(t, uint64(6000), nets[0].MaxSlashableBps)

	optIns, err := s.OptIns(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, len(optIns))
	require.Equal(t, types.Epoch(2), optIns[0].OptedInAt)

	// Saving under the same key overwrites in place.
	require.NoError(t, s.SaveOperator(ctx, &types.OperatorRecord{ID: types.OperatorID{7}, Name: "renamed", RegisteredAt: 1, Active: false}))
	ops, err = s.Operators(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, len(ops))
	require.Equal(t, "renamed", ops[0].Name)
}

func TestStore_GenesisData(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	genesisTime, configName, err := s.GenesisData(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(0), genesisTime)
	require.Equal(t, "", configName)

	require.NoError(t, s.SaveGenesisData(ctx, 1700000000, "minimal"))
	genesisTime, configName, err = s.GenesisData(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(1700000000), genesisTime)
	require.Equal(t, "minimal", configName)
}

func TestStore_ProtocolRecord(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	rec, err := s.ProtocolRecord(ctx)
	require.NoError(t, err)
	require.Nil(t, rec)

	want := &types.ProtocolRecord{
		ConfigName:       "mainnet",
		CooldownEpochs:   7,
		WithdrawalEpochs: 7,
		Vaults:           2,
		Operators:        3,
		Networks:         1,
		ActiveOptIns:     4,
		UpdatedAt:        12,
	}
	require.NoError(t, s.SaveProtocolRecord(ctx, want))
	rec, err = s.ProtocolRecord(ctx)
	require.NoError(t, err)
	require.Equal(t, want, rec)
}
