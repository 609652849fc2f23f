package features

import (
	"strings"

	"github.com/urfave/cli/v2"
)

var (
	disableBackgroundSweepsFlag = &cli.BoolFlag{
		Name: "disable-background-sweeps",
		Usage: "Disables the periodic withdrawal queue sweep. Queues then advance only lazily, " +
			"on the first operation a vault sees in each epoch.",
	}
	disableVaultCacheFlag = &cli.BoolFlag{
		Name:  "disable-vault-cache",
		Usage: "Disables the in-memory cache of hot vault records in front of the database.",
	}
)

// NodeFlags contains the feature flags of the restaking node.
var NodeFlags = append(deprecatedFlags, []cli.Flag{
	disableBackgroundSweepsFlag,
	disableVaultCacheFlag,
}...)

// ActiveFlags returns all of the flags that are not Deprecated.
func ActiveFlags(flags []cli.Flag) []cli.Flag {
	visibleFlags := make([]cli.Flag, 0, len(flags))
	for _, flag := range flags {
		if !strings.Contains(flag.Names()[0], "deprecated") {
			visibleFlags = append(visibleFlags, flag)
		}
	}
	return visibleFlags
}
