/*
Package features defines which optional behaviors of the restaking node
are enabled at runtime, so behavior still under evaluation can ship dark
and be switched per deployment.

The process for implementing new features using this package is as follows:
	1. Add a new CMD flag in flags.go and place it in NodeFlags.
	2. Add a condition for the flag in ConfigureRestakingNode below.
	3. Gate the new behavior on the corresponding Flags field.
	4. Use the following to enable your flag for tests:
	cfg := &features.Flags{
		DisableBackgroundSweeps: true,
	}
	resetCfg := features.InitWithReset(cfg)
	defer resetCfg()
*/
package features

import (
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var log = logrus.WithField("prefix", "flags")

// Flags is a struct to represent which features the node will perform on runtime.
type Flags struct {
	DisableBackgroundSweeps bool // DisableBackgroundSweeps leaves queue advancement entirely to the lazy per-operation sweeps.
	DisableVaultCache       bool // DisableVaultCache turns off the in-memory hot vault cache in front of the database.
}

var featureConfig *Flags

// Get retrieves feature config.
func Get() *Flags {
	if featureConfig == nil {
		return &Flags{}
	}
	return featureConfig
}

// Init sets the global config equal to the config that is passed in.
func Init(c *Flags) {
	featureConfig = c
}

// InitWithReset sets the global config and returns a function that is
// used to reset configuration.
func InitWithReset(c *Flags) func() {
	resetFunc := func() {
		Init(&Flags{})
	}
	Init(c)
	return resetFunc
}

// ConfigureRestakingNode sets the global config based on what flags are
// enabled for the node.
func ConfigureRestakingNode(ctx *cli.Context) {
	complainOnDeprecatedFlags(ctx)
	cfg := &Flags{}
	if ctx.Bool(disableBackgroundSweepsFlag.Name) {
		log.Warn("Disabled background withdrawal sweeps")
		cfg.DisableBackgroundSweeps = true
	}
	if ctx.Bool(disableVaultCacheFlag.Name) {
		log.Warn("Disabled vault cache")
		cfg.DisableVaultCache = true
	}
	Init(cfg)
}

func complainOnDeprecatedFlags(ctx *cli.Context) {
	for _, f := range deprecatedFlags {
		if ctx.IsSet(f.Names()[0]) {
			log.Errorf("%s is deprecated and has no effect. Do not use this flag, it will be deleted soon.", f.Names()[0])
		}
	}
}
