package monitor

import (
	"bytes"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"

	"github.com/restakelabs/restaking/feed/operation"
	"github.com/restakelabs/restaking/types"
)

func (s *Service) processDelegation(data *operation.StakeDelegatedData) {
	s.Lock()
	defer s.Unlock()
	if !s.trackedOperator(data.Operator) {
		return
	}
	latest := s.latestActivity[data.Operator]
	latest.delegatedAmount += data.Amount
	s.latestActivity[data.Operator] = latest

	agg := s.aggregatedPerformance[data.Operator]
	agg.totalDelegatedAmount += data.Amount
	s.aggregatedPerformance[data.Operator] = agg

	delegationsObservedTotal.WithLabelValues(data.Operator.String()).Inc()
	log.WithFields(logrus.Fields{
		"Operator": data.Operator,
		"Vault":    data.Vault,
		"Amount":   humanize.Comma(int64(data.Amount)),
	}).Info("Stake delegated to tracked operator")
}

func (s *Service) processCooldownStart(data *operation.CooldownStartedData) {
	s.Lock()
	defer s.Unlock()
	if !s.trackedOperator(data.Operator) {
		return
	}
	latest := s.latestActivity[data.Operator]
	if latest.delegatedAmount >= data.Amount {
		latest.delegatedAmount -= data.Amount
	} else {
		latest.delegatedAmount = 0
	}
	latest.coolingAmount += data.Amount
	s.latestActivity[data.Operator] = latest

	agg := s.aggregatedPerformance[data.Operator]
	agg.totalCooldownCount++
	s.aggregatedPerformance[data.Operator] = agg

	log.WithFields(logrus.Fields{
		"Operator":   data.Operator,
		"Vault":      data.Vault,
		"Amount":     humanize.Comma(int64(data.Amount)),
		"StartEpoch": data.Start,
	}).Info("Tracked operator entered undelegation cooldown")
}

func (s *Service) processCooldownComplete(data *operation.CooldownCompletedData) {
	s.Lock()
	defer s.Unlock()
	if !s.trackedOperator(data.Operator) {
		return
	}
	latest := s.latestActivity[data.Operator]
	if latest.coolingAmount >= data.Released {
		latest.coolingAmount -= data.Released
	} else {
		latest.coolingAmount = 0
	}
	s.latestActivity[data.Operator] = latest

	log.WithFields(logrus.Fields{
		"Operator": data.Operator,
		"Vault":    data.Vault,
		"Released": humanize.Comma(int64(data.Released)),
	}).Info("Tracked operator cooldown completed")
	s.logAggregatedPerformance(data.Operator)
}

func (s *Service) processSlash(data *operation.SlashAppliedData) {
	s.Lock()
	defer s.Unlock()
	if !s.trackedOperator(data.Operator) {
		return
	}
	latest := s.latestActivity[data.Operator]
	slashed := data.Applied
	if latest.coolingAmount >= slashed {
		latest.coolingAmount -= slashed
		slashed = 0
	} else {
		slashed -= latest.coolingAmount
		latest.coolingAmount = 0
	}
	if latest.delegatedAmount >= slashed {
		latest.delegatedAmount -= slashed
	} else {
		latest.delegatedAmount = 0
	}
	latest.slashedAmount = data.Applied
	s.latestActivity[data.Operator] = latest

	agg := s.aggregatedPerformance[data.Operator]
	agg.totalSlashCount++
	agg.totalSlashedAmount += data.Applied
	if data.Applied < data.Requested {
		agg.totalPartialSlashes++
	}
	s.aggregatedPerformance[data.Operator] = agg

	slashesObservedTotal.WithLabelValues(data.Operator.String()).Inc()
	slashedAmountObservedTotal.WithLabelValues(data.Operator.String()).Add(float64(data.Applied))
	log.WithFields(logrus.Fields{
		"Operator":  data.Operator,
		"Vault":     data.Vault,
		"Network":   data.Network,
		"Reference": data.Reference,
		"Requested": humanize.Comma(int64(data.Requested)),
		"Applied":   humanize.Comma(int64(data.Applied)),
	}).Warn("Tracked operator was slashed")
	s.logAggregatedPerformance(data.Operator)
}

// Vault halts are reported regardless of the tracked operator set.
func (s *Service) processHalt(data *operation.VaultHaltedData) {
	haltsObservedTotal.Inc()
	log.WithFields(logrus.Fields{
		"Vault":  data.Vault,
		"Reason": data.Reason,
	}).Error("Vault halted")
}

// processEpochTransition reports every tracked operator at the start of
// a new epoch, in id order.
func (s *Service) processEpochTransition(epoch types.Epoch) {
	s.Lock()
	defer s.Unlock()
	log.WithField("Epoch", epoch).Info("Epoch transition")
	ids := make([]types.OperatorID, 0, len(s.TrackedOperators))
	for id := range s.TrackedOperators {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return bytes.Compare(ids[i][:], ids[j][:]) < 0
	})
	for _, id := range ids {
		s.logAggregatedPerformance(id)
	}
}

// logAggregatedPerformance reports the accumulated activity of the
// operator since the monitor started. It assumes the caller holds the
// service Lock.
func (s *Service) logAggregatedPerformance(id types.OperatorID) {
	agg, ok := s.aggregatedPerformance[id]
	if !ok {
		return
	}
	log.WithFields(logrus.Fields{
		"Operator":           id,
		"StartEpoch":         agg.startEpoch,
		"TotalDelegated":     humanize.Comma(int64(agg.totalDelegatedAmount)),
		"TotalCooldowns":     agg.totalCooldownCount,
		"TotalSlashes":       agg.totalSlashCount,
		"TotalSlashedAmount": humanize.Comma(int64(agg.totalSlashedAmount)),
		"PartialSlashes":     agg.totalPartialSlashes,
	}).Info("Aggregated operator report")
}
