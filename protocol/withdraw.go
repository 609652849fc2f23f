package protocol

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.opencensus.io/trace"

	"github.com/restakelabs/restaking/core/withdrawal"
	"github.com/restakelabs/restaking/feed"
	"github.com/restakelabs/restaking/feed/operation"
	"github.com/restakelabs/restaking/state"
	"github.com/restakelabs/restaking/types"
)

// RequestWithdrawal burns the holder's shares on the ledger and opens a
// withdrawal ticket that matures after the withdrawal window. A ledger
// burn failure aborts the request before any vault state is persisted.
func (s *Service) RequestWithdrawal(ctx context.Context, id types.VaultID, holder types.Account, shares uint64) (*types.WithdrawalTicket, error) {
	ctx, span := trace.StartSpan(ctx, "protocol.RequestWithdrawal")
	defer span.End()

	var ticket *types.WithdrawalTicket
	err := s.mutate(ctx, id, func(v *state.Vault, current types.Epoch) error {
		var err error
		ticket, err = withdrawal.ProcessRequest(ctx, v, holder, shares, current)
		if err != nil {
			return err
		}
		if err := s.cfg.Ledger.BurnFrom(ctx, id, holder, shares); err != nil {
			return errors.Wrap(err, "could not burn holder shares")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	ticketsOpenedTotal.Inc()
	s.operationFeed.Send(&feed.Event{
		Type: operation.TicketEnqueued,
		Data: &operation.TicketEnqueuedData{Vault: id, Ticket: *ticket},
	})
	log.WithFields(logrus.Fields{
		"vault":  id,
		"ticket": ticket.ID,
		"shares": shares,
	}).Info("Withdrawal requested")
	return ticket, nil
}

// Claim pays out a claimable ticket to its holder from custody.
func (s *Service) Claim(ctx context.Context, id types.VaultID, ticketID uint64) (uint64, error) {
	ctx, span := trace.StartSpan(ctx, "protocol.Claim")
	defer span.End()

	var payout uint64
	var holder types.Account
	err := s.mutate(ctx, id, func(v *state.Vault, current types.Epoch) error {
		t, err := v.Ticket(ticketID)
		if err != nil {
			return err
		}
		holder = t.Holder
		payout, err = withdrawal.ProcessClaim(ctx, v, ticketID, current)
		if err != nil {
			return err
		}
		if err := s.cfg.Bank.TransferOut(ctx, id, holder, payout); err != nil {
			return errors.Wrap(err, "could not pay out claim from custody")
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	ticketsClaimedTotal.Inc()
	s.operationFeed.Send(&feed.Event{
		Type: operation.TicketClaimed,
		Data: &operation.TicketClaimedData{Vault: id, TicketID: ticketID, Holder: holder, Payout: payout},
	})
	log.WithFields(logrus.Fields{
		"vault":  id,
		"ticket": ticketID,
		"payout": payout,
	}).Info("Ticket claimed")
	return payout, nil
}

// Cancel withdraws a still-pending ticket and re-mints its share count
// to the holder. The restored shares are worth the current rate, not the
// rate at request time.
func (s *Service) Cancel(ctx context.Context, id types.VaultID, ticketID uint64) (uint64, error) {
	ctx, span := trace.StartSpan(ctx, "protocol.Cancel")
	defer span.End()

	var restored uint64
	var holder types.Account
	err := s.mutate(ctx, id, func(v *state.Vault, current types.Epoch) error {
		t, err := v.Ticket(ticketID)
		if err != nil {
			return err
		}
		holder = t.Holder
		restored, err = withdrawal.ProcessCancel(ctx, v, ticketID, current)
		if err != nil {
			return err
		}
		if err := s.cfg.Ledger.MintTo(ctx, id, holder, restored); err != nil {
			return errors.Wrap(err, "could not restore holder shares")
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	s.operationFeed.Send(&feed.Event{
		Type: operation.TicketCancelled,
		Data: &operation.TicketCancelledData{Vault: id, TicketID: ticketID, Restored: restored},
	})
	log.WithFields(logrus.Fields{
		"vault":  id,
		"ticket": ticketID,
		"shares": restored,
	}).Info("Ticket cancelled")
	return restored, nil
}
