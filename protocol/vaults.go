package protocol

import (
	"bytes"
	"context"
	"sort"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"go.opencensus.io/trace"

	"github.com/restakelabs/restaking/config/params"
	"github.com/restakelabs/restaking/state"
	"github.com/restakelabs/restaking/types"
)

// CreateVault registers a new vault for the given underlying asset and
// persists its empty state. The caller chooses the id; an id stays taken
// for the life of the database.
func (s *Service) CreateVault(ctx context.Context, id types.VaultID, asset types.Account) error {
	ctx, span := trace.StartSpan(ctx, "protocol.CreateVault")
	defer span.End()

	s.lock.Lock()
	defer s.lock.Unlock()
	if _, ok := s.vaults[id]; ok {
		return errors.Wrapf(ErrVaultExists, "vault %s", id)
	}
	v := state.New(id, asset, s.cfg.Clock.CurrentEpoch())
	if err := s.cfg.Database.SaveVault(ctx, v.CopyData()); err != nil {
		return errors.Wrap(err, "could not persist vault")
	}
	s.vaults[id] = &vaultEntry{vault: v}
	vaultsTrackedGauge.Set(float64(len(s.vaults)))
	log.WithFields(logrus.Fields{
		"vault": id,
		"asset": asset,
	}).Info("Created vault")
	if err := s.saveProtocolRecord(ctx, uint64(len(s.vaults))); err != nil {
		log.WithError(err).Error("Could not update protocol record")
	}
	return nil
}

// ExchangeRate returns the vault's assets-per-share rate. Reporting
// only; the accounting core never rounds through this value.
func (s *Service) ExchangeRate(_ context.Context, id types.VaultID) (decimal.Decimal, error) {
	entry, err := s.entry(id)
	if err != nil {
		return decimal.Zero, err
	}
	entry.lock.Lock()
	defer entry.lock.Unlock()
	return entry.vault.ExchangeRate()
}

// VaultSnapshot returns a deep copy of the vault's current state.
func (s *Service) VaultSnapshot(_ context.Context, id types.VaultID) (*state.VaultData, error) {
	entry, err := s.entry(id)
	if err != nil {
		return nil, err
	}
	entry.lock.Lock()
	defer entry.lock.Unlock()
	return entry.vault.CopyData(), nil
}

// Ticket returns a copy of one withdrawal ticket.
func (s *Service) Ticket(_ context.Context, id types.VaultID, ticketID uint64) (*types.WithdrawalTicket, error) {
	entry, err := s.entry(id)
	if err != nil {
		return nil, err
	}
	entry.lock.Lock()
	defer entry.lock.Unlock()
	return entry.vault.Ticket(ticketID)
}

// VaultIDs returns the ids of every tracked vault in byte order.
func (s *Service) VaultIDs() []types.VaultID {
	s.lock.RLock()
	defer s.lock.RUnlock()
	ids := make([]types.VaultID, 0, len(s.vaults))
	for id := range s.vaults {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return bytes.Compare(ids[i][:], ids[j][:]) < 0
	})
	return ids
}

func (s *Service) vaultCount() uint64 {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return uint64(len(s.vaults))
}

// saveProtocolRecord refreshes the persisted snapshot of settings and
// participation counts. The vault count is passed in so callers already
// holding the service lock avoid re-entering it.
func (s *Service) saveProtocolRecord(ctx context.Context, vaultCount uint64) error {
	cfg := params.RestakingConfig()
	reg := s.cfg.Registry
	rec := &types.ProtocolRecord{
		ConfigName:       cfg.ConfigName,
		CooldownEpochs:   cfg.CooldownEpochs,
		WithdrawalEpochs: cfg.WithdrawalEpochs,
		Vaults:           vaultCount,
		Operators:        uint64(len(reg.Operators())),
		Networks:         uint64(len(reg.Networks())),
		ActiveOptIns:     reg.ActiveOptIns(),
		UpdatedAt:        s.cfg.Clock.CurrentEpoch(),
	}
	return s.cfg.Database.SaveProtocolRecord(ctx, rec)
}
