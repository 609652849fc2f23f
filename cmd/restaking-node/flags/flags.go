// Package flags defines configuration runtime flags specific to the
// restaking node binary.
package flags

import (
	"github.com/urfave/cli/v2"
)

var (
	// MonitoringPortFlag defines the http port used to serve prometheus metrics.
	MonitoringPortFlag = &cli.IntFlag{
		Name:  "monitoring-port",
		Usage: "Port used to listening and respond metrics for prometheus.",
		Value: 8080,
	}
	// GenesisTimeFlag sets the unix timestamp a fresh data directory anchors its epoch clock at.
	GenesisTimeFlag = &cli.Uint64Flag{
		Name: "genesis-time",
		Usage: "Unix timestamp the epoch clock is anchored at. When 0, a new data directory " +
			"is anchored at the current time plus the configured genesis delay.",
	}
	// TrackedOperatorsFlag defines a list of operator ids the monitor service follows.
	TrackedOperatorsFlag = &cli.StringSliceFlag{
		Name:  "monitor-operator",
		Usage: "Hex id of an operator to track for delegation, cooldown and slash activity. This flag may be used multiple times.",
	}
)
