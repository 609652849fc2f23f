package features

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInitFeatureConfig(t *testing.T) {
	cfg := &Flags{
		DisableBackgroundSweeps: true,
	}
	reset := InitWithReset(cfg)
	require.Equal(t, true, Get().DisableBackgroundSweeps)

	reset()
	require.Equal(t, false, Get().DisableBackgroundSweeps)
	require.Equal(t, false, Get().DisableVaultCache)
}
