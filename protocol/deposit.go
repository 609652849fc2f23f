package protocol

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.opencensus.io/trace"

	"github.com/restakelabs/restaking/core/vault"
	"github.com/restakelabs/restaking/feed"
	"github.com/restakelabs/restaking/feed/operation"
	"github.com/restakelabs/restaking/state"
	"github.com/restakelabs/restaking/types"
)

// Deposit pulls assets from the depositor into the vault's custody and
// mints shares at the current exchange rate. The custody transfer runs
// only after the transition has validated on the working copy, so a
// rejected deposit never moves funds. Returns the minted share count.
func (s *Service) Deposit(ctx context.Context, id types.VaultID, depositor types.Account, amount uint64) (uint64, error) {
	ctx, span := trace.StartSpan(ctx, "protocol.Deposit")
	defer span.End()

	var minted uint64
	err := s.mutate(ctx, id, func(v *state.Vault, _ types.Epoch) error {
		var err error
		minted, err = vault.ProcessDeposit(ctx, v, amount)
		if err != nil {
			return err
		}
		if err := s.cfg.Bank.TransferIn(ctx, id, depositor, amount); err != nil {
			return errors.Wrap(err, "could not transfer deposit into custody")
		}
		if err := s.cfg.Ledger.MintTo(ctx, id, depositor, minted); err != nil {
			// Return the pulled assets; the shares were never minted.
			if refundErr := s.cfg.Bank.TransferOut(ctx, id, depositor, amount); refundErr != nil {
				log.WithError(refundErr).WithFields(logrus.Fields{
					"vault":  id,
					"amount": amount,
				}).Error("Could not refund deposit after mint failure")
			}
			return errors.Wrap(err, "could not mint shares to depositor")
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	depositsProcessedTotal.Inc()
	s.operationFeed.Send(&feed.Event{
		Type: operation.DepositProcessed,
		Data: &operation.DepositProcessedData{Vault: id, Depositor: depositor, Amount: amount, Minted: minted},
	})
	log.WithFields(logrus.Fields{
		"vault":  id,
		"amount": amount,
		"minted": minted,
	}).Info("Processed deposit")
	return minted, nil
}

// CreditReward pulls harvested yield from the source account into the
// vault and credits it to idle without minting shares, appreciating
// every outstanding share and ticket reservation alike.
func (s *Service) CreditReward(ctx context.Context, id types.VaultID, source types.Account, amount uint64) error {
	ctx, span := trace.StartSpan(ctx, "protocol.CreditReward")
	defer span.End()

	err := s.mutate(ctx, id, func(v *state.Vault, _ types.Epoch) error {
		if err := vault.ProcessReward(ctx, v, amount); err != nil {
			return err
		}
		if err := s.cfg.Bank.TransferIn(ctx, id, source, amount); err != nil {
			return errors.Wrap(err, "could not transfer reward into custody")
		}
		return nil
	})
	if err != nil {
		return err
	}
	rewardsCreditedTotal.Inc()
	s.operationFeed.Send(&feed.Event{
		Type: operation.RewardCredited,
		Data: &operation.RewardCreditedData{Vault: id, Amount: amount},
	})
	log.WithFields(logrus.Fields{
		"vault":  id,
		"amount": amount,
	}).Info("Credited reward")
	return nil
}
