package cmd

import (
	"fmt"

	"github.com/paulschiretz/pgl-shipper/pkg/config"
	"github.com/paulschiretz/pgl-shipper/pkg/flagparse"
	"github.com/paulschiretz/pgl-shipper/pkg/plog"
)

// loadRunConfig loads the configuration named by the -config flag, merges the
// flags over it and validates the result.
func loadRunConfig(command flagparse.Command, flagMap map[string]any) (config.Config, error) {
	path, _ := flagMap["config"].(string)
	loadedConfig, err := config.Load(path)
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to load configuration: %w", err)
	}

	runConfig := config.MergeConfigWithFlags(command, loadedConfig, flagMap)
	if err := runConfig.Validate(); err != nil {
		return config.Config{}, err
	}

	plog.SetLevel(plog.LevelFromString(runConfig.LogLevel))
	return runConfig, nil
}
