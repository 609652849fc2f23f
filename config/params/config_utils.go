package params

import (
	"sync"

	"github.com/mohae/deepcopy"
)

var restakingConfig = MainnetConfig()
var restakingConfigLock sync.RWMutex

// RestakingConfig retrieves the active protocol config.
func RestakingConfig() *ProtocolConfig {
	restakingConfigLock.RLock()
	defer restakingConfigLock.RUnlock()
	return restakingConfig
}

// OverrideRestakingConfig by replacing the config. The preferred pattern is
// to call RestakingConfig(), change the specific parameters, and then call
// OverrideRestakingConfig(c). Any subsequent calls to
// params.RestakingConfig() will return this new configuration.
func OverrideRestakingConfig(c *ProtocolConfig) {
	restakingConfigLock.Lock()
	defer restakingConfigLock.Unlock()
	restakingConfig = c
}

// Copy returns a copy of the config object.
func (c *ProtocolConfig) Copy() *ProtocolConfig {
	restakingConfigLock.RLock()
	defer restakingConfigLock.RUnlock()
	config, ok := deepcopy.Copy(*c).(ProtocolConfig)
	if !ok {
		config = *restakingConfig
	}
	return &config
}
