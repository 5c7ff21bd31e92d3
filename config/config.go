package config

import (
	configUtil "github.com/fox-one/pkg/config"

	"singular/core"
)

// Load load config file
func Load(configFile string, config *core.Config) error {
	configUtil.AutomaticLoadEnv("SINGULAR")
	if err := configUtil.LoadYaml(configFile, config); err != nil {
		return err
	}

	return nil
}
