package cmd

import (
	"flag"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func TestOverrideConfig(t *testing.T) {
	cfg := &Flags{
		MinimalConfig: true,
	}
	reset := InitWithReset(cfg)
	defer reset()
	c := Get()
	require.Equal(t, true, c.MinimalConfig)
}

func TestDefaultConfig(t *testing.T) {
	cfg := &Flags{}
	c := Get()
	require.Equal(t, cfg, c)

	reset := InitWithReset(cfg)
	defer reset()
	c = Get()
	require.Equal(t, cfg, c)
}

func TestConfigureRestakingNode(t *testing.T) {
	app := cli.App{}
	set := flag.NewFlagSet("test", 0)
	set.Bool(MinimalConfigFlag.Name, true, "test")
	context := cli.NewContext(&app, set, nil)
	require.NoError(t, ConfigureRestakingNode(context))
	c := Get()
	require.Equal(t, true, c.MinimalConfig)
}
