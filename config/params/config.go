// Package params defines the protocol constants that are essential to the
// restaking services.
package params

import (
	"time"

	"github.com/restakelabs/restaking/types"
)

// ProtocolConfig contains constant configs for services to participate in
// the restaking protocol.
type ProtocolConfig struct {
	// Identity.
	ConfigName string `yaml:"CONFIG_NAME"`

	// Security windows. Cooldown gates undelegation so a network can land a
	// slash before stake returns to idle; the withdrawal window does the
	// same for share redemptions.
	CooldownEpochs   types.Epoch `yaml:"COOLDOWN_EPOCHS"`
	WithdrawalEpochs types.Epoch `yaml:"WITHDRAWAL_EPOCHS"`

	// Epoch timing, used by the node's epoch ticker.
	SecondsPerEpoch uint64 `yaml:"SECONDS_PER_EPOCH"`
	GenesisDelay    uint64 `yaml:"GENESIS_DELAY"`

	// Amount bounds and slashing caps.
	MinDepositAmount       uint64 `yaml:"MIN_DEPOSIT_AMOUNT"`
	DefaultMaxSlashableBps uint64 `yaml:"DEFAULT_MAX_SLASHABLE_BPS"`

	// Values below are not read from configuration files.
	BpsDenominator uint64
	VaultCacheSize int64
	SweepInterval  time.Duration
}
