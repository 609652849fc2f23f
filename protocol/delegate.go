package protocol

import (
	"context"

	"github.com/sirupsen/logrus"
	"go.opencensus.io/trace"

	"github.com/restakelabs/restaking/core/delegation"
	"github.com/restakelabs/restaking/feed"
	"github.com/restakelabs/restaking/feed/operation"
	"github.com/restakelabs/restaking/state"
	"github.com/restakelabs/restaking/types"
)

// Delegate moves idle assets behind an operator. The operator must hold
// an active opt-in with the vault on at least one network.
func (s *Service) Delegate(ctx context.Context, id types.VaultID, op types.OperatorID, amount uint64) error {
	ctx, span := trace.StartSpan(ctx, "protocol.Delegate")
	defer span.End()

	err := s.mutate(ctx, id, func(v *state.Vault, _ types.Epoch) error {
		return delegation.ProcessDelegate(ctx, v, op, amount, s.cfg.Registry.AnyNetworkOptIn)
	})
	if err != nil {
		return err
	}
	delegationsProcessedTotal.Inc()
	s.operationFeed.Send(&feed.Event{
		Type: operation.StakeDelegated,
		Data: &operation.StakeDelegatedData{Vault: id, Operator: op, Amount: amount},
	})
	log.WithFields(logrus.Fields{
		"vault":    id,
		"operator": op,
		"amount":   amount,
	}).Info("Delegated stake")
	return nil
}

// BeginUndelegate moves part of a delegation into its cooldown window.
// Only one cooldown per (vault, operator) runs at a time.
func (s *Service) BeginUndelegate(ctx context.Context, id types.VaultID, op types.OperatorID, amount uint64) error {
	ctx, span := trace.StartSpan(ctx, "protocol.BeginUndelegate")
	defer span.End()

	var start types.Epoch
	err := s.mutate(ctx, id, func(v *state.Vault, current types.Epoch) error {
		start = current
		return delegation.ProcessBeginUndelegate(ctx, v, op, amount, current)
	})
	if err != nil {
		return err
	}
	s.operationFeed.Send(&feed.Event{
		Type: operation.CooldownStarted,
		Data: &operation.CooldownStartedData{Vault: id, Operator: op, Amount: amount, Start: start},
	})
	log.WithFields(logrus.Fields{
		"vault":    id,
		"operator": op,
		"amount":   amount,
		"epoch":    start,
	}).Info("Cooldown started")
	return nil
}

// CompleteUndelegate returns matured cooling stake to the idle balance.
// Returns the released amount, less any slashes landed during the
// cooldown.
func (s *Service) CompleteUndelegate(ctx context.Context, id types.VaultID, op types.OperatorID) (uint64, error) {
	ctx, span := trace.StartSpan(ctx, "protocol.CompleteUndelegate")
	defer span.End()

	var released uint64
	err := s.mutate(ctx, id, func(v *state.Vault, current types.Epoch) error {
		var err error
		released, err = delegation.ProcessCompleteUndelegate(ctx, v, op, current)
		return err
	})
	if err != nil {
		return 0, err
	}
	s.operationFeed.Send(&feed.Event{
		Type: operation.CooldownCompleted,
		Data: &operation.CooldownCompletedData{Vault: id, Operator: op, Released: released},
	})
	log.WithFields(logrus.Fields{
		"vault":    id,
		"operator": op,
		"released": released,
	}).Info("Cooldown completed")
	return released, nil
}
