package protocol

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/restakelabs/restaking/config/features"
	"github.com/restakelabs/restaking/config/params"
	"github.com/restakelabs/restaking/custody"
	"github.com/restakelabs/restaking/db"
	dbtest "github.com/restakelabs/restaking/db/testing"
	"github.com/restakelabs/restaking/feed"
	"github.com/restakelabs/restaking/feed/operation"
	"github.com/restakelabs/restaking/registry"
	"github.com/restakelabs/restaking/state"
	"github.com/restakelabs/restaking/time/epochs"
	"github.com/restakelabs/restaking/types"
)

var (
	testVault     = types.VaultID{1}
	testAsset     = types.Account{2}
	testDepositor = types.Account{3}
	testOperator  = types.OperatorID{7}
	testNetwork   = types.NetworkID{9}
)

type testEnv struct {
	t       *testing.T
	service *Service
	clock   *epochs.ManualClock
	bank    *custody.InMemoryBank
	ledger  *custody.InMemoryLedger
	db      db.Database
}

func setup(t *testing.T) *testEnv {
	t.Helper()
	params.SetupTestConfigCleanup(t)
	params.UseMinimalConfig()
	env := &testEnv{
		t:      t,
		clock:  epochs.NewManualClock(1),
		bank:   custody.NewInMemoryBank(),
		ledger: custody.NewInMemoryLedger(),
		db:     dbtest.SetupDB(t),
	}
	s, err := NewService(context.Background(), &Config{
		Database: env.db,
		Registry: registry.New(),
		Bank:     env.bank,
		Ledger:   env.ledger,
		Clock:    env.clock,
	})
	require.NoError(t, err)
	env.service = s
	return env
}

// newVault creates the test vault and funds the depositor's bank account.
func (env *testEnv) newVault(funds uint64) {
	env.t.Helper()
	require.NoError(env.t, env.service.CreateVault(context.Background(), testVault, testAsset))
	require.NoError(env.t, env.bank.Credit(testDepositor, funds))
}

// optInOperator registers the operator and network and opts the test
// vault's triple in with the given network-default slashable fraction.
func (env *testEnv) optInOperator(maxSlashableBps uint64) {
	env.t.Helper()
	ctx := context.Background()
	require.NoError(env.t, env.service.RegisterOperator(ctx, testOperator, "operator-one", ""))
	require.NoError(env.t, env.service.RegisterNetwork(ctx, testNetwork, "network-one", maxSlashableBps))
	require.NoError(env.t, env.service.OptIn(ctx, testVault, testOperator, testNetwork, 0))
}

// snapshot returns the test vault's current state.
func (env *testEnv) snapshot() *state.VaultData {
	env.t.Helper()
	data, err := env.service.VaultSnapshot(context.Background(), testVault)
	require.NoError(env.t, err)
	return data
}

// assertConservation checks that the vault's asset total equals its idle
// balance plus everything delegated and cooling.
func (env *testEnv) assertConservation() {
	env.t.Helper()
	data := env.snapshot()
	var bonded uint64
	for _, d := range data.Delegations {
		bonded += d.DelegatedAmount + d.CoolingAmount
	}
	require.Equal(env.t, data.TotalAssets, data.Idle+bonded)
}

func TestNewService_RequiresCollaborators(t *testing.T) {
	_, err := NewService(context.Background(), nil)
	require.Error(t, err)
	_, err = NewService(context.Background(), &Config{})
	require.Error(t, err)
}

func TestService_Lifecycle(t *testing.T) {
	resetCfg := features.InitWithReset(&features.Flags{DisableBackgroundSweeps: true})
	defer resetCfg()
	env := setup(t)

	require.Error(t, env.service.Status())
	env.service.Start()
	require.NoError(t, env.service.Status())
	require.NoError(t, env.service.Stop())
	require.Error(t, env.service.Status())
}

func TestCreateVault_DuplicateID(t *testing.T) {
	env := setup(t)
	ctx := context.Background()
	require.NoError(t, env.service.CreateVault(ctx, testVault, testAsset))
	require.ErrorIs(t, env.service.CreateVault(ctx, testVault, testAsset), ErrVaultExists)
}

func TestOperations_UnknownVault(t *testing.T) {
	env := setup(t)
	ctx := context.Background()

	_, err := env.service.Deposit(ctx, testVault, testDepositor, 100)
	require.ErrorIs(t, err, types.ErrUnknownVault)
	require.ErrorIs(t, env.service.Delegate(ctx, testVault, testOperator, 100), types.ErrUnknownVault)
	_, err = env.service.RequestWithdrawal(ctx, testVault, testDepositor, 100)
	require.ErrorIs(t, err, types.ErrUnknownVault)
	_, err = env.service.ExchangeRate(ctx, testVault)
	require.ErrorIs(t, err, types.ErrUnknownVault)
}

func TestDeposit_MovesCustodyAndMintsShares(t *testing.T) {
	env := setup(t)
	env.newVault(1500)
	ctx := context.Background()

	minted, err := env.service.Deposit(ctx, testVault, testDepositor, 1000)
	require.NoError(t, err)
	require.Equal(t, uint64(1000), minted)

	require.Equal(t, uint64(500), env.bank.BalanceOf(testDepositor))
	require.Equal(t, uint64(1000), env.bank.VaultHoldings(testVault))
	balance, err := env.ledger.BalanceOf(ctx, testVault, testDepositor)
	require.NoError(t, err)
	require.Equal(t, uint64(1000), balance)
	env.assertConservation()
}

func TestDeposit_BankFailureLeavesStateUntouched(t *testing.T) {
	env := setup(t)
	env.newVault(100)
	ctx := context.Background()

	_, err := env.service.Deposit(ctx, testVault, testDepositor, 500)
	require.ErrorIs(t, err, custody.ErrInsufficientFunds)

	data := env.snapshot()
	require.Equal(t, uint64(0), data.TotalAssets)
	require.Equal(t, uint64(0), data.TotalShares)
	balance, err := env.ledger.BalanceOf(ctx, testVault, testDepositor)
	require.NoError(t, err)
	require.Equal(t, uint64(0), balance)
}

func TestRestart_RestoresVaultsAndRegistry(t *testing.T) {
	env := setup(t)
	env.newVault(1000)
	env.optInOperator(10000)
	ctx := context.Background()

	_, err := env.service.Deposit(ctx, testVault, testDepositor, 600)
	require.NoError(t, err)
	require.NoError(t, env.service.Delegate(ctx, testVault, testOperator, 250))

	// A second service over the same database sees the same world.
	reg := registry.New()
	restarted, err := NewService(ctx, &Config{
		Database: env.db,
		Registry: reg,
		Bank:     env.bank,
		Ledger:   env.ledger,
		Clock:    env.clock,
	})
	require.NoError(t, err)

	data, err := restarted.VaultSnapshot(ctx, testVault)
	require.NoError(t, err)
	require.Equal(t, uint64(600), data.TotalAssets)
	require.Equal(t, uint64(350), data.Idle)
	require.Equal(t, uint64(250), data.Delegations[testOperator].DelegatedAmount)
	require.Equal(t, true, reg.IsOptedIn(testVault, testOperator, testNetwork))

	minted, err := restarted.Deposit(ctx, testVault, testDepositor, 100)
	require.NoError(t, err)
	require.Equal(t, uint64(100), minted)
}

func TestInvariantViolation_HaltsVault(t *testing.T) {
	env := setup(t)
	env.newVault(1000)
	ctx := context.Background()
	_, err := env.service.Deposit(ctx, testVault, testDepositor, 500)
	require.NoError(t, err)

	events := make(chan *feed.Event, 4)
	sub := env.service.OperationFeed().Subscribe(events)
	defer sub.Unsubscribe()

	// Corrupt the in-memory state behind the service's back so the next
	// operation trips the conservation check.
	entry := env.service.vaults[testVault]
	corrupted := entry.vault.CopyData()
	corrupted.Idle += 100
	entry.vault = state.FromData(corrupted)

	_, err = env.service.Deposit(ctx, testVault, testDepositor, 100)
	require.ErrorIs(t, err, types.ErrVaultHalted)

	require.Equal(t, 1, len(events))
	ev := <-events
	require.Equal(t, feed.EventType(operation.VaultHalted), ev.Type)

	// The halt is persisted and every further mutation is refused.
	data, err := env.db.Vault(ctx, testVault)
	require.NoError(t, err)
	require.Equal(t, true, data.Halted)
	_, err = env.service.Deposit(ctx, testVault, testDepositor, 100)
	require.ErrorIs(t, err, types.ErrVaultHalted)
	require.ErrorIs(t, env.service.Delegate(ctx, testVault, testOperator, 1), types.ErrVaultHalted)
}

func TestAdminOperations_PersistRecords(t *testing.T) {
	env := setup(t)
	env.newVault(0)
	env.optInOperator(5000)
	ctx := context.Background()

	operators, err := env.db.Operators(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, len(operators))
	networks, err := env.db.Networks(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, len(networks))
	require.Equal(t, uint64(5000), networks[0].MaxSlashableBps)

	rec, err := env.db.ProtocolRecord(ctx)
	require.NoError(t, err)
	require.Equal(t, params.RestakingConfig().ConfigName, rec.ConfigName)
	require.Equal(t, uint64(1), rec.Vaults)
	require.Equal(t, uint64(1), rec.Operators)
	require.Equal(t, uint64(1), rec.Networks)
	require.Equal(t, uint64(1), rec.ActiveOptIns)

	require.NoError(t, env.service.OptOut(ctx, testVault, testOperator, testNetwork))
	optIns, err := env.db.OptIns(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, len(optIns))
	require.Equal(t, false, optIns[0].Active)
	rec, err = env.db.ProtocolRecord(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(0), rec.ActiveOptIns)
}

func TestOptIn_UnknownVault(t *testing.T) {
	env := setup(t)
	ctx := context.Background()
	require.NoError(t, env.service.RegisterOperator(ctx, testOperator, "operator-one", ""))
	require.NoError(t, env.service.RegisterNetwork(ctx, testNetwork, "network-one", 0))
	err := env.service.OptIn(ctx, testVault, testOperator, testNetwork, 0)
	require.ErrorIs(t, err, types.ErrUnknownVault)
}
