package features

import "github.com/urfave/cli/v2"

// Deprecated flags list.
const deprecatedUsage = "DEPRECATED. DO NOT USE."

var (
	// To deprecate a feature flag, first copy the example below, then insert deprecated flag in `deprecatedFlags`.
	exampleDeprecatedFeatureFlag = &cli.StringFlag{
		Name:   "name",
		Usage:  deprecatedUsage,
		Hidden: true,
	}
	// The vault cache became the default; the opt-in flag no longer does anything.
	deprecatedEnableVaultCache = &cli.BoolFlag{
		Name:   "enable-vault-cache",
		Usage:  deprecatedUsage,
		Hidden: true,
	}
	// Lazy sweeps were folded into every mutating operation and cannot be toggled.
	deprecatedEnableLazySweeps = &cli.BoolFlag{
		Name:   "enable-lazy-sweeps",
		Usage:  deprecatedUsage,
		Hidden: true,
	}
)

// Deprecated flags for the restaking node.
var deprecatedFlags = []cli.Flag{
	exampleDeprecatedFeatureFlag,
	deprecatedEnableVaultCache,
	deprecatedEnableLazySweeps,
}
