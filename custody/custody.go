// Package custody defines the external collaborator surfaces the
// protocol settles against. The accounting core tracks logical balances
// only; actual asset movement and share ownership live behind these
// interfaces, and an operation that cannot complete its transfer aborts
// as a whole.
package custody

import (
	"context"

	"github.com/restakelabs/restaking/types"
)

// AssetBank moves underlying assets between external holders and a
// vault's custody.
type AssetBank interface {
	// TransferIn pulls amount from the holder into the vault's custody.
	TransferIn(ctx context.Context, vault types.VaultID, from types.Account, amount uint64) error
	// TransferOut pays amount from the vault's custody to the holder.
	TransferOut(ctx context.Context, vault types.VaultID, to types.Account, amount uint64) error
}

// ShareLedger tracks who owns a vault's receipt shares. The vault's
// outstanding share count and the ledger's total supply move together.
type ShareLedger interface {
	MintTo(ctx context.Context, vault types.VaultID, holder types.Account, shares uint64) error
	BurnFrom(ctx context.Context, vault types.VaultID, holder types.Account, shares uint64) error
	BalanceOf(ctx context.Context, vault types.VaultID, holder types.Account) (uint64, error)
}
