package protocol

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	vaultsTrackedGauge = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "restaking_vaults_tracked",
			Help: "Number of vaults the protocol service manages",
		},
	)
	haltedVaultsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "restaking_halted_vaults_total",
			Help: "Times a vault was frozen after an invariant violation",
		},
	)
	depositsProcessedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "restaking_deposits_processed_total",
			Help: "Number of deposits that minted shares",
		},
	)
	rewardsCreditedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "restaking_rewards_credited_total",
			Help: "Number of reward credits applied to vaults",
		},
	)
	delegationsProcessedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "restaking_delegations_processed_total",
			Help: "Number of delegate operations applied",
		},
	)
	ticketsOpenedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "restaking_withdrawal_tickets_opened_total",
			Help: "Number of withdrawal tickets enqueued",
		},
	)
	ticketsPromotedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "restaking_withdrawal_tickets_promoted_total",
			Help: "Number of tickets the epoch sweep turned claimable",
		},
	)
	ticketsClaimedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "restaking_withdrawal_tickets_claimed_total",
			Help: "Number of withdrawal tickets paid out",
		},
	)
	slashRequestsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "restaking_slash_requests_total",
			Help: "Number of slash requests that passed the cap check",
		},
	)
	slashedAmountTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "restaking_slashed_amount_total",
			Help: "Total stake removed by applied slashes",
		},
	)
)
