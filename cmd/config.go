package cmd

import (
	"github.com/urfave/cli/v2"
)

// Flags is a struct to represent which features the node will perform on runtime.
type Flags struct {
	// Configuration related flags.
	MinimalConfig bool // MinimalConfig selects the short-window parameter preset.
}

var sharedConfig *Flags

// Get retrieves the shared configuration.
func Get() *Flags {
	if sharedConfig == nil {
		return &Flags{}
	}
	return sharedConfig
}

// Init sets the global config equal to the config that is passed in.
func Init(c *Flags) {
	sharedConfig = c
}

// InitWithReset sets the global config and returns a function that is used to reset the configuration.
func InitWithReset(c *Flags) func() {
	prevConfig := Get()
	resetFunc := func() {
		Init(prevConfig)
	}
	Init(c)
	return resetFunc
}

// ConfigureRestakingNode sets the global config based
// on what flags are enabled for the restaking node.
func ConfigureRestakingNode(cliCtx *cli.Context) error {
	cfg := &Flags{}
	if cliCtx.Bool(MinimalConfigFlag.Name) {
		log.Warn("Using minimal config")
		cfg.MinimalConfig = true
	}
	Init(cfg)
	return nil
}
