package protocol

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.opencensus.io/trace"

	"github.com/restakelabs/restaking/types"
)

// RegisterOperator adds an operator identity to the registry and
// persists its record.
func (s *Service) RegisterOperator(ctx context.Context, id types.OperatorID, name, metadataURI string) error {
	ctx, span := trace.StartSpan(ctx, "protocol.RegisterOperator")
	defer span.End()

	if err := s.cfg.Registry.RegisterOperator(id, name, metadataURI, s.cfg.Clock.CurrentEpoch()); err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"operator": id,
		"name":     name,
	}).Info("Registered operator")
	return s.persistOperator(ctx, id)
}

// DeactivateOperator retires an operator. Its record and opt-ins stay
// addressable for slashing and audit.
func (s *Service) DeactivateOperator(ctx context.Context, id types.OperatorID) error {
	ctx, span := trace.StartSpan(ctx, "protocol.DeactivateOperator")
	defer span.End()

	if err := s.cfg.Registry.DeactivateOperator(id, s.cfg.Clock.CurrentEpoch()); err != nil {
		return err
	}
	log.WithField("operator", id).Info("Deactivated operator")
	return s.persistOperator(ctx, id)
}

// RegisterNetwork adds a network identity with its default slashable
// fraction in basis points and persists its record.
func (s *Service) RegisterNetwork(ctx context.Context, id types.NetworkID, name string, maxSlashableBps uint64) error {
	ctx, span := trace.StartSpan(ctx, "protocol.RegisterNetwork")
	defer span.End()

	if err := s.cfg.Registry.RegisterNetwork(id, name, maxSlashableBps, s.cfg.Clock.CurrentEpoch()); err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"network":         id,
		"name":            name,
		"maxSlashableBps": maxSlashableBps,
	}).Info("Registered network")
	return s.persistNetwork(ctx, id)
}

// DeactivateNetwork retires a network. Existing opt-ins stop authorizing
// slashes while the network is inactive.
func (s *Service) DeactivateNetwork(ctx context.Context, id types.NetworkID) error {
	ctx, span := trace.StartSpan(ctx, "protocol.DeactivateNetwork")
	defer span.End()

	if err := s.cfg.Registry.DeactivateNetwork(id, s.cfg.Clock.CurrentEpoch()); err != nil {
		return err
	}
	log.WithField("network", id).Info("Deactivated network")
	return s.persistNetwork(ctx, id)
}

// OptIn records the mutual (vault, operator, network) authorization that
// delegation and slashing check against. A non-zero maxSlashableBps
// overrides the network default for this triple.
func (s *Service) OptIn(ctx context.Context, id types.VaultID, op types.OperatorID, network types.NetworkID, maxSlashableBps uint64) error {
	ctx, span := trace.StartSpan(ctx, "protocol.OptIn")
	defer span.End()

	if _, err := s.entry(id); err != nil {
		return err
	}
	if err := s.cfg.Registry.OptIn(id, op, network, maxSlashableBps, s.cfg.Clock.CurrentEpoch()); err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"vault":    id,
		"operator": op,
		"network":  network,
	}).Info("Opted in")
	return s.persistOptIn(ctx, id, op, network)
}

// OptOut deactivates the triple's authorization. The record survives
// with its opt-out epoch stamped.
func (s *Service) OptOut(ctx context.Context, id types.VaultID, op types.OperatorID, network types.NetworkID) error {
	ctx, span := trace.StartSpan(ctx, "protocol.OptOut")
	defer span.End()

	if err := s.cfg.Registry.OptOut(id, op, network, s.cfg.Clock.CurrentEpoch()); err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"vault":    id,
		"operator": op,
		"network":  network,
	}).Info("Opted out")
	return s.persistOptIn(ctx, id, op, network)
}

func (s *Service) persistOperator(ctx context.Context, id types.OperatorID) error {
	rec, ok := s.cfg.Registry.Operator(id)
	if !ok {
		return errors.Errorf("operator %s missing after registry update", id)
	}
	if err := s.cfg.Database.SaveOperator(ctx, &rec); err != nil {
		return errors.Wrap(err, "could not persist operator record")
	}
	return s.saveProtocolRecord(ctx, s.vaultCount())
}

func (s *Service) persistNetwork(ctx context.Context, id types.NetworkID) error {
	rec, ok := s.cfg.Registry.Network(id)
	if !ok {
		return errors.Errorf("network %s missing after registry update", id)
	}
	if err := s.cfg.Database.SaveNetwork(ctx, &rec); err != nil {
		return errors.Wrap(err, "could not persist network record")
	}
	return s.saveProtocolRecord(ctx, s.vaultCount())
}

func (s *Service) persistOptIn(ctx context.Context, id types.VaultID, op types.OperatorID, network types.NetworkID) error {
	rec, ok := s.cfg.Registry.OptInRecord(id, op, network)
	if !ok {
		return errors.Errorf("opt-in (%s, %s, %s) missing after registry update", id, op, network)
	}
	if err := s.cfg.Database.SaveOptIn(ctx, &rec); err != nil {
		return errors.Wrap(err, "could not persist opt-in record")
	}
	return s.saveProtocolRecord(ctx, s.vaultCount())
}
