package params

import (
	"time"
)

// MainnetConfig returns the configuration to be used in the main network.
func MainnetConfig() *ProtocolConfig {
	return mainnetProtocolConfig
}

// UseMainnetConfig for restaking services.
func UseMainnetConfig() {
	OverrideRestakingConfig(MainnetConfig())
}

var mainnetProtocolConfig = &ProtocolConfig{
	ConfigName: ConfigNames[Mainnet],

	// A network gets a full week of one day epochs to observe misbehavior
	// and submit a slash before stake leaves the security window.
	CooldownEpochs:   7,
	WithdrawalEpochs: 7,

	SecondsPerEpoch: 86400,
	GenesisDelay:    86400,

	MinDepositAmount:       1,
	DefaultMaxSlashableBps: 1000,

	BpsDenominator: 10000,
	VaultCacheSize: 100000,
	SweepInterval:  time.Minute,
}
