package protocol

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.opencensus.io/trace"

	"github.com/restakelabs/restaking/core/slashing"
	"github.com/restakelabs/restaking/feed"
	"github.com/restakelabs/restaking/feed/operation"
	"github.com/restakelabs/restaking/state"
	"github.com/restakelabs/restaking/types"
)

// Slash applies a network's slash request against an operator's stake in
// a vault and appends the outcome to the audit trail. Within the network's
// per-epoch budget a request larger than the operator's remaining stake
// is applied partially and reported, not rejected. Returns the record of
// what actually happened.
func (s *Service) Slash(ctx context.Context, ref uuid.UUID, network types.NetworkID, op types.OperatorID, id types.VaultID, requested uint64) (*types.SlashRecord, error) {
	ctx, span := trace.StartSpan(ctx, "protocol.Slash")
	defer span.End()

	var rec *types.SlashRecord
	err := s.mutate(ctx, id, func(v *state.Vault, current types.Epoch) error {
		var err error
		rec, err = slashing.ProcessSlash(ctx, v, ref, network, op, requested, current,
			s.cfg.Registry.IsOptedIn, s.cfg.Registry.MaxSlashableBps)
		return err
	})
	if err != nil {
		return nil, err
	}
	if err := s.cfg.Database.SaveSlashRecord(ctx, rec); err != nil {
		// The vault state already carries the applied slash.
		log.WithError(err).WithField("reference", rec.Reference).Error("Could not persist slash record")
	}
	slashRequestsTotal.Inc()
	slashedAmountTotal.Add(float64(rec.Applied))
	s.operationFeed.Send(&feed.Event{
		Type: operation.SlashApplied,
		Data: &operation.SlashAppliedData{
			Reference: rec.Reference,
			Vault:     id,
			Operator:  op,
			Network:   network,
			Requested: rec.Requested,
			Applied:   rec.Applied,
		},
	})
	entry := log.WithFields(logrus.Fields{
		"vault":     id,
		"operator":  op,
		"network":   network,
		"requested": rec.Requested,
		"applied":   rec.Applied,
	})
	if rec.Partial() {
		entry.Warn("Slash applied partially")
	} else {
		entry.Info("Slash applied")
	}
	return rec, nil
}
