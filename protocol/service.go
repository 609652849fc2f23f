// Package protocol implements the operational surface of the restaking
// node. The Service owns every vault's in-memory state, serializes
// mutations per vault, and drives each operation through the same
// sequence: advance the withdrawal queue for the current epoch, apply
// the transition to a working copy, verify the accounting invariants,
// persist, then publish the result on the operation feed. A vault whose
// invariants break is halted on its last consistent state and refuses
// further mutation.
package protocol

import (
	"context"
	"sync"

	"github.com/ethereum/go-ethereum/event"
	"github.com/pkg/errors"
	"go.opencensus.io/trace"

	"github.com/restakelabs/restaking/async"
	"github.com/restakelabs/restaking/config/features"
	"github.com/restakelabs/restaking/config/params"
	"github.com/restakelabs/restaking/core/withdrawal"
	"github.com/restakelabs/restaking/custody"
	"github.com/restakelabs/restaking/db"
	"github.com/restakelabs/restaking/feed"
	"github.com/restakelabs/restaking/feed/operation"
	"github.com/restakelabs/restaking/registry"
	"github.com/restakelabs/restaking/state"
	"github.com/restakelabs/restaking/time/epochs"
	"github.com/restakelabs/restaking/types"
)

// Config holds the collaborators the protocol service operates against.
type Config struct {
	Database db.Database
	Registry *registry.Registry
	Bank     custody.AssetBank
	Ledger   custody.ShareLedger
	Clock    epochs.Clock
}

// Service is the concurrency and persistence boundary around the
// accounting core. It implements runtime.Service and operation.Notifier.
type Service struct {
	cfg           *Config
	ctx           context.Context
	cancel        context.CancelFunc
	operationFeed *event.Feed
	lock          sync.RWMutex
	vaults        map[types.VaultID]*vaultEntry
	isRunning     bool
}

// vaultEntry pairs a vault with the mutex serializing its writers.
type vaultEntry struct {
	lock  sync.Mutex
	vault *state.Vault
}

// NewService restores persisted vaults and registry records into memory
// and returns a service ready to process operations.
func NewService(ctx context.Context, cfg *Config) (*Service, error) {
	if cfg == nil || cfg.Database == nil || cfg.Registry == nil || cfg.Bank == nil || cfg.Ledger == nil || cfg.Clock == nil {
		return nil, errors.New("protocol service requires a database, registry, bank, ledger, and clock")
	}
	ctx, cancel := context.WithCancel(ctx)
	s := &Service{
		cfg:           cfg,
		ctx:           ctx,
		cancel:        cancel,
		operationFeed: new(event.Feed),
		vaults:        make(map[types.VaultID]*vaultEntry),
	}
	if err := s.restore(ctx); err != nil {
		cancel()
		return nil, err
	}
	return s, nil
}

func (s *Service) restore(ctx context.Context) error {
	vaults, err := s.cfg.Database.Vaults(ctx)
	if err != nil {
		return errors.Wrap(err, "could not load vaults")
	}
	for _, data := range vaults {
		s.vaults[data.ID] = &vaultEntry{vault: state.FromData(data)}
	}
	vaultsTrackedGauge.Set(float64(len(s.vaults)))

	operators, err := s.cfg.Database.Operators(ctx)
	if err != nil {
		return errors.Wrap(err, "could not load operators")
	}
	networks, err := s.cfg.Database.Networks(ctx)
	if err != nil {
		return errors.Wrap(err, "could not load networks")
	}
	optIns, err := s.cfg.Database.OptIns(ctx)
	if err != nil {
		return errors.Wrap(err, "could not load opt-ins")
	}
	if err := s.cfg.Registry.Restore(operators, networks, optIns); err != nil {
		return errors.Wrap(err, "could not restore registry")
	}
	return nil
}

// Start marks the service running and launches the periodic background
// sweep, which keeps withdrawal queues advancing on vaults that see no
// traffic of their own.
func (s *Service) Start() {
	s.lock.Lock()
	s.isRunning = true
	count := len(s.vaults)
	s.lock.Unlock()
	log.WithField("vaults", count).Info("Starting protocol service")

	if !features.Get().DisableBackgroundSweeps {
		async.RunEvery(s.ctx, params.RestakingConfig().SweepInterval, s.sweepAll)
	}
}

// Stop the protocol service and its background goroutines.
func (s *Service) Stop() error {
	defer s.cancel()
	s.lock.Lock()
	s.isRunning = false
	s.lock.Unlock()
	log.Info("Stopping protocol service")
	return nil
}

// Status returns an error when the service is not processing operations.
func (s *Service) Status() error {
	s.lock.RLock()
	defer s.lock.RUnlock()
	if !s.isRunning {
		return errors.New("protocol service is not running")
	}
	return nil
}

// OperationFeed satisfies operation.Notifier for feed consumers.
func (s *Service) OperationFeed() *event.Feed {
	return s.operationFeed
}

func (s *Service) entry(id types.VaultID) (*vaultEntry, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	e, ok := s.vaults[id]
	if !ok {
		return nil, errors.Wrapf(types.ErrUnknownVault, "vault %s", id)
	}
	return e, nil
}

// mutate runs one operation against a working copy of the vault under
// its writer lock. The queue sweep for the current epoch runs first, the
// operation second, and the result is persisted and swapped in only when
// the whole sequence, including the invariant check, succeeds. A failed
// operation leaves both memory and disk untouched.
func (s *Service) mutate(ctx context.Context, id types.VaultID, op func(v *state.Vault, current types.Epoch) error) error {
	entry, err := s.entry(id)
	if err != nil {
		return err
	}
	entry.lock.Lock()
	defer entry.lock.Unlock()

	if entry.vault.Halted() {
		return types.ErrVaultHalted
	}
	current := s.cfg.Clock.CurrentEpoch()
	working := entry.vault.Copy()
	promoted, err := withdrawal.AdvanceQueue(ctx, working, current)
	if err != nil {
		return errors.Wrap(err, "could not advance withdrawal queue")
	}
	if err := op(working, current); err != nil {
		return err
	}
	if err := working.CheckInvariant(); err != nil {
		s.haltLocked(ctx, entry, err)
		return errors.Wrapf(types.ErrVaultHalted, "invariant violation: %v", err)
	}
	if err := s.cfg.Database.SaveVault(ctx, working.CopyData()); err != nil {
		return errors.Wrap(err, "could not persist vault")
	}
	entry.vault = working
	s.publishPromotions(id, working, promoted)
	return nil
}

// haltLocked freezes the vault on its last consistent state. The working
// copy that broke the invariant is discarded; the halt flag is persisted
// so the refusal survives restarts. Called with the entry lock held.
func (s *Service) haltLocked(ctx context.Context, entry *vaultEntry, violation error) {
	entry.vault.Halt()
	id := entry.vault.ID()
	log.WithError(violation).WithField("vault", id).Error("Invariant violation, halting vault")
	haltedVaultsTotal.Inc()
	if err := s.cfg.Database.SaveVault(ctx, entry.vault.CopyData()); err != nil {
		log.WithError(err).WithField("vault", id).Error("Could not persist halted vault")
	}
	s.operationFeed.Send(&feed.Event{
		Type: operation.VaultHalted,
		Data: &operation.VaultHaltedData{Vault: id, Reason: violation.Error()},
	})
}

func (s *Service) publishPromotions(id types.VaultID, v *state.Vault, promoted []uint64) {
	for _, ticketID := range promoted {
		t, err := v.Ticket(ticketID)
		if err != nil {
			log.WithError(err).WithField("ticket", ticketID).Error("Promoted ticket missing from queue")
			continue
		}
		ticketsPromotedTotal.Inc()
		s.operationFeed.Send(&feed.Event{
			Type: operation.TicketClaimable,
			Data: &operation.TicketClaimableData{Vault: id, TicketID: ticketID, Payout: t.Payout},
		})
	}
}

// SweepVault advances one vault's withdrawal queue without applying any
// other transition, so tickets mature even on otherwise quiet vaults.
// Returns the ids promoted to claimable; a vault already swept for the
// current epoch is a no-op.
func (s *Service) SweepVault(ctx context.Context, id types.VaultID) ([]uint64, error) {
	ctx, span := trace.StartSpan(ctx, "protocol.SweepVault")
	defer span.End()

	entry, err := s.entry(id)
	if err != nil {
		return nil, err
	}
	entry.lock.Lock()
	defer entry.lock.Unlock()

	if entry.vault.Halted() {
		return nil, types.ErrVaultHalted
	}
	current := s.cfg.Clock.CurrentEpoch()
	if entry.vault.LastSwept() >= current {
		return nil, nil
	}
	working := entry.vault.Copy()
	promoted, err := withdrawal.AdvanceQueue(ctx, working, current)
	if err != nil {
		return nil, errors.Wrap(err, "could not advance withdrawal queue")
	}
	if err := working.CheckInvariant(); err != nil {
		s.haltLocked(ctx, entry, err)
		return nil, errors.Wrapf(types.ErrVaultHalted, "invariant violation: %v", err)
	}
	if err := s.cfg.Database.SaveVault(ctx, working.CopyData()); err != nil {
		return nil, errors.Wrap(err, "could not persist vault")
	}
	entry.vault = working
	s.publishPromotions(id, working, promoted)
	return promoted, nil
}

func (s *Service) sweepAll() {
	s.lock.RLock()
	ids := make([]types.VaultID, 0, len(s.vaults))
	for id := range s.vaults {
		ids = append(ids, id)
	}
	s.lock.RUnlock()

	for _, id := range ids {
		if _, err := s.SweepVault(s.ctx, id); err != nil && !errors.Is(err, types.ErrVaultHalted) {
			log.WithError(err).WithField("vault", id).Error("Background sweep failed")
		}
	}
}
