package custody

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/restakelabs/restaking/math"
	"github.com/restakelabs/restaking/types"
)

// ErrInsufficientFunds is returned when a transfer or burn exceeds the
// source balance.
var ErrInsufficientFunds = errors.New("insufficient funds")

// InMemoryBank is an AssetBank holding balances in process memory. It
// backs local development and tests.
type InMemoryBank struct {
	lock     sync.Mutex
	accounts map[types.Account]uint64
	vaults   map[types.VaultID]uint64
}

var _ = AssetBank(&InMemoryBank{})

// NewInMemoryBank creates an empty bank.
func NewInMemoryBank() *InMemoryBank {
	return &InMemoryBank{
		accounts: make(map[types.Account]uint64),
		vaults:   make(map[types.VaultID]uint64),
	}
}

// Credit funds an external account.
func (b *InMemoryBank) Credit(account types.Account, amount uint64) error {
	b.lock.Lock()
	defer b.lock.Unlock()

	next, err := math.Add64(b.accounts[account], amount)
	if err != nil {
		return types.ErrArithmeticOverflow
	}
	b.accounts[account] = next
	return nil
}

// BalanceOf returns an external account's balance.
func (b *InMemoryBank) BalanceOf(account types.Account) uint64 {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.accounts[account]
}

// VaultHoldings returns the assets held in custody for the vault.
func (b *InMemoryBank) VaultHoldings(vault types.VaultID) uint64 {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.vaults[vault]
}

// TransferIn implements AssetBank.
func (b *InMemoryBank) TransferIn(_ context.Context, vault types.VaultID, from types.Account, amount uint64) error {
	b.lock.Lock()
	defer b.lock.Unlock()

	if b.accounts[from] < amount {
		return errors.Wrapf(ErrInsufficientFunds, "account %s holds %d, needs %d", from, b.accounts[from], amount)
	}
	next, err := math.Add64(b.vaults[vault], amount)
	if err != nil {
		return types.ErrArithmeticOverflow
	}
	b.accounts[from] -= amount
	b.vaults[vault] = next
	return nil
}

// TransferOut implements AssetBank.
func (b *InMemoryBank) TransferOut(_ context.Context, vault types.VaultID, to types.Account, amount uint64) error {
	b.lock.Lock()
	defer b.lock.Unlock()

	if b.vaults[vault] < amount {
		return errors.Wrapf(ErrInsufficientFunds, "vault %s custody holds %d, needs %d", vault, b.vaults[vault], amount)
	}
	next, err := math.Add64(b.accounts[to], amount)
	if err != nil {
		return types.ErrArithmeticOverflow
	}
	b.vaults[vault] -= amount
	b.accounts[to] = next
	return nil
}

type shareKey struct {
	vault  types.VaultID
	holder types.Account
}

// InMemoryLedger is a ShareLedger holding balances in process memory.
type InMemoryLedger struct {
	lock     sync.Mutex
	balances map[shareKey]uint64
	supply   map[types.VaultID]uint64
}

var _ = ShareLedger(&InMemoryLedger{})

// NewInMemoryLedger creates an empty ledger.
func NewInMemoryLedger() *InMemoryLedger {
	return &InMemoryLedger{
		balances: make(map[shareKey]uint64),
		supply:   make(map[types.VaultID]uint64),
	}
}

// MintTo implements ShareLedger.
func (l *InMemoryLedger) MintTo(_ context.Context, vault types.VaultID, holder types.Account, shares uint64) error {
	l.lock.Lock()
	defer l.lock.Unlock()

	key := shareKey{vault: vault, holder: holder}
	nextBalance, err := math.Add64(l.balances[key], shares)
	if err != nil {
		return types.ErrArithmeticOverflow
	}
	nextSupply, err := math.Add64(l.supply[vault], shares)
	if err != nil {
		return types.ErrArithmeticOverflow
	}
	l.balances[key] = nextBalance
	l.supply[vault] = nextSupply
	return nil
}

// BurnFrom implements ShareLedger.
func (l *InMemoryLedger) BurnFrom(_ context.Context, vault types.VaultID, holder types.Account, shares uint64) error {
	l.lock.Lock()
	defer l.lock.Unlock()

	key := shareKey{vault: vault, holder: holder}
	if l.balances[key] < shares {
		return errors.Wrapf(ErrInsufficientFunds, "holder %s owns %d shares, needs %d", holder, l.balances[key], shares)
	}
	l.balances[key] -= shares
	l.supply[vault] -= shares
	return nil
}

// BalanceOf implements ShareLedger.
func (l *InMemoryLedger) BalanceOf(_ context.Context, vault types.VaultID, holder types.Account) (uint64, error) {
	l.lock.Lock()
	defer l.lock.Unlock()
	return l.balances[shareKey{vault: vault, holder: holder}], nil
}

// TotalSupply returns the outstanding share count for the vault.
func (l *InMemoryLedger) TotalSupply(vault types.VaultID) uint64 {
	l.lock.Lock()
	defer l.lock.Unlock()
	return l.supply[vault]
}
