package params

import "time"

// MinimalSpecConfig retrieves the minimal config used in tests and local
// devnets. Windows are short enough to cross epoch boundaries quickly.
func MinimalSpecConfig() *ProtocolConfig {
	minimalConfig := mainnetProtocolConfig.Copy()
	minimalConfig.ConfigName = ConfigNames[Minimal]
	minimalConfig.CooldownEpochs = 2
	minimalConfig.WithdrawalEpochs = 1
	minimalConfig.SecondsPerEpoch = 6
	minimalConfig.GenesisDelay = 30
	minimalConfig.DefaultMaxSlashableBps = 10000
	minimalConfig.SweepInterval = time.Second
	return minimalConfig
}

// UseMinimalConfig for restaking services.
func UseMinimalConfig() {
	OverrideRestakingConfig(MinimalSpecConfig())
}
