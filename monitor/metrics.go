package monitor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	delegationsObservedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "restaking_monitor_delegations_observed_total",
			Help: "Number of delegations observed for tracked operators",
		},
		[]string{"operator"},
	)
	slashesObservedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "restaking_monitor_slashes_observed_total",
			Help: "Number of slashes observed for tracked operators",
		},
		[]string{"operator"},
	)
	slashedAmountObservedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "restaking_monitor_slashed_amount_observed_total",
			Help: "Total assets observed slashed from tracked operators",
		},
		[]string{"operator"},
	)
	haltsObservedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "restaking_monitor_vault_halts_observed_total",
			Help: "Number of vault halt events observed",
		},
	)
)
