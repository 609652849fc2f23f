package state

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/restakelabs/restaking/types"
)

func TestNewVault_ZeroState(t *testing.T) {
	id := types.ToVaultID([]byte("vault-a"))
	asset := types.ToAccount([]byte("erc20"))
	v := New(id, asset, 3)

	require.Equal(t, id, v.ID())
	require.Equal(t, asset, v.Asset())
	require.Equal(t, types.Epoch(3), v.CreatedAt())
	require.Equal(t, uint64(0), v.TotalShares())
	require.Equal(t, uint64(0), v.TotalAssets())
	require.Equal(t, uint64(0), v.Idle())
	require.Equal(t, false, v.Halted())
	require.NoError(t, v.CheckInvariant())
}

func TestVault_ShareConversions(t *testing.T) {
	v := New(types.VaultID{1}, types.Account{2}, 0)

	_, err := v.SharesToAssets(10)
	require.ErrorIs(t, err, types.ErrEmptyVault)
	_, err = v.AssetsToShares(10)
	require.ErrorIs(t, err, types.ErrEmptyVault)

	require.NoError(t, v.CreditAssets(1000))
	require.NoError(t, v.MintShares(800))

	assets, err := v.SharesToAssets(400)
	require.NoError(t, err)
	require.Equal(t, uint64(500), assets)

	shares, err := v.AssetsToShares(500)
	require.NoError(t, err)
	require.Equal(t, uint64(400), shares)

	// Conversions floor.
	assets, err = v.SharesToAssets(3)
	require.NoError(t, err)
	require.Equal(t, uint64(3), assets)
}

func TestVault_ShareDenominatorIncludesReserved(t *testing.T) {
	v := New(types.VaultID{1}, types.Account{2}, 0)
	require.NoError(t, v.CreditAssets(1000))
	require.NoError(t, v.MintShares(1000))
	require.NoError(t, v.BurnSharesToReserve(250))

	require.Equal(t, uint64(750), v.TotalShares())
	require.Equal(t, uint64(250), v.ReservedShares())
	require.Equal(t, uint64(1000), v.ShareDenominator())

	// Reserving shares must not move the exchange rate.
	assets, err := v.SharesToAssets(100)
	require.NoError(t, err)
	require.Equal(t, uint64(100), assets)
}

func TestVault_ExchangeRate(t *testing.T) {
	v := New(types.VaultID{1}, types.Account{2}, 0)

	_, err := v.ExchangeRate()
	require.ErrorIs(t, err, types.ErrEmptyVault)

	require.NoError(t, v.CreditAssets(800))
	require.NoError(t, v.MintShares(1000))

	rate, err := v.ExchangeRate()
	require.NoError(t, err)
	require.Equal(t, true, rate.Equal(decimal.RequireFromString("0.8")))
}

func TestVault_DelegationCopySemantics(t *testing.T) {
	v := New(types.VaultID{1}, types.Account{2}, 0)
	op := types.OperatorID{7}
	require.NoError(t, v.CreditAssets(500))
	require.NoError(t, v.MintShares(500))
	require.NoError(t, v.Delegate(op, 300))

	d, ok := v.Delegation(op)
	require.Equal(t, true, ok)
	d.DelegatedAmount = 1

	d2, ok := v.Delegation(op)
	require.Equal(t, true, ok)
	require.Equal(t, uint64(300), d2.DelegatedAmount)
}

func TestVault_DelegationsSorted(t *testing.T) {
	v := New(types.VaultID{1}, types.Account{2}, 0)
	require.NoError(t, v.CreditAssets(600))
	require.NoError(t, v.MintShares(600))
	require.NoError(t, v.Delegate(types.OperatorID{9}, 100))
	require.NoError(t, v.Delegate(types.OperatorID{3}, 100))
	require.NoError(t, v.Delegate(types.OperatorID{5}, 100))

	ds := v.Delegations()
	require.Equal(t, 3, len(ds))
	require.Equal(t, types.OperatorID{3}, ds[0].Operator)
	require.Equal(t, types.OperatorID{5}, ds[1].Operator)
	require.Equal(t, types.OperatorID{9}, ds[2].Operator)
}

func TestVault_SlashTallies(t *testing.T) {
	v := New(types.VaultID{1}, types.Account{2}, 0)
	op := types.OperatorID{7}
	n1 := types.NetworkID{1}
	n2 := types.NetworkID{2}
	require.NoError(t, v.CreditAssets(1000))
	require.NoError(t, v.MintShares(1000))
	require.NoError(t, v.Delegate(op, 1000))

	require.NoError(t, v.RecordSlashTally(op, n1, 5, 200))
	require.NoError(t, v.RecordSlashTally(op, n2, 5, 150))
	require.NoError(t, v.RecordSlashTally(op, n1, 5, 50))

	require.Equal(t, uint64(250), v.SlashedThisEpoch(op, n1, 5))
	require.Equal(t, uint64(150), v.SlashedThisEpoch(op, n2, 5))
	require.Equal(t, uint64(0), v.SlashedThisEpoch(op, n1, 6))
	require.Equal(t, uint64(400), v.SlashTallyTotal(op, 5))
	require.Equal(t, uint64(0), v.SlashTallyTotal(op, 6))
}

func TestVault_CopyDataIsDeep(t *testing.T) {
	v := New(types.VaultID{1}, types.Account{2}, 0)
	op := types.OperatorID{7}
	require.NoError(t, v.CreditAssets(500))
	require.NoError(t, v.MintShares(500))
	require.NoError(t, v.Delegate(op, 200))

	id := v.NextTicketID()
	require.NoError(t, v.AppendTicket(&types.WithdrawalTicket{
		ID:     id,
		Vault:  v.ID(),
		Shares: 10,
		Status: types.Pending,
	}))
	require.NoError(t, v.BurnSharesToReserve(10))

	snap := v.CopyData()
	require.NoError(t, v.Delegate(op, 100))
	require.NoError(t, v.MarkTicketCancelled(id, 1))

	require.Equal(t, uint64(200), snap.Delegations[op].DelegatedAmount)
	require.Equal(t, types.Pending, snap.Tickets[0].Status)
}

func TestVault_TicketLookup(t *testing.T) {
	v := New(types.VaultID{1}, types.Account{2}, 0)
	_, err := v.Ticket(0)
	require.ErrorIs(t, err, types.ErrTicketNotFound)

	require.NoError(t, v.AppendTicket(&types.WithdrawalTicket{ID: v.NextTicketID(), Status: types.Pending, Shares: 1}))
	require.NoError(t, v.AppendTicket(&types.WithdrawalTicket{ID: v.NextTicketID(), Status: types.Pending, Shares: 2}))

	tk, err := v.Ticket(1)
	require.NoError(t, err)
	require.Equal(t, uint64(2), tk.Shares)

	// Returned ticket is a copy.
	tk.Shares = 99
	tk2, err := v.Ticket(1)
	require.NoError(t, err)
	require.Equal(t, uint64(2), tk2.Shares)
}
