package params

import (
	"io/ioutil"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"
)

// LoadProtocolConfigFile loads, unmarshals, and applies a protocol config
// file. Absent keys keep their mainnet values.
func LoadProtocolConfigFile(configFileName string) {
	yamlFile, err := ioutil.ReadFile(configFileName) // #nosec G304
	if err != nil {
		log.WithError(err).Fatal("Failed to read protocol config file.")
	}
	// Default to using mainnet.
	conf := MainnetConfig().Copy()
	if err := yaml.UnmarshalStrict(yamlFile, conf); err != nil {
		if _, ok := err.(*yaml.TypeError); !ok {
			log.WithError(err).Fatal("Failed to parse protocol config yaml file.")
		} else {
			log.WithError(err).Error("There were some issues parsing the config from a yaml file")
		}
	}
	log.Debugf("Config file values: %+v", conf)
	OverrideRestakingConfig(conf)
}
