package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/paulschiretz/pgl-shipper/pkg/buildinfo"
	"github.com/paulschiretz/pgl-shipper/pkg/config"
	"github.com/paulschiretz/pgl-shipper/pkg/plog"
	"github.com/paulschiretz/pgl-shipper/pkg/util"
)

// RunInit writes an example configuration to the path given by -config.
func RunInit(ctx context.Context, flagMap map[string]any) error {
	path, _ := flagMap["config"].(string)
	if path == "" {
		path = config.ConfigFileName
	}
	expanded, err := util.ExpandPath(path)
	if err != nil {
		return err
	}
	absPath, err := filepath.Abs(expanded)
	if err != nil {
		return fmt.Errorf("could not determine absolute path for %s: %w", path, err)
	}

	// Check for force flag to bypass confirmation
	force, _ := flagMap["force"].(bool)
	if !force {
		if _, err := os.Stat(absPath); err == nil {
			fmt.Printf("WARNING: Configuration file already exists at %s.\n", absPath)
			fmt.Printf("Continuing will overwrite it with the example configuration. All custom settings will be lost.\n")
			if !PromptForConfirmation("Are you sure you want to continue?", false) {
				plog.Info(buildinfo.Name + " init operation canceled.")
				return nil
			}
		}
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(absPath), util.UserWritableDirPerms); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := config.Generate(absPath, config.NewExample()); err != nil {
		return fmt.Errorf("failed to generate config file: %w", err)
	}
	plog.Info(buildinfo.Name+" configuration initialized. Edit the backups section before the first run.", "path", absPath)
	return nil
}

// PromptForConfirmation prompts the user for a yes/no response.
func PromptForConfirmation(prompt string, defaultYes bool) bool {
	suffix := "[y/N]"
	if defaultYes {
		suffix = "[Y/n]"
	}
	fmt.Printf("%s %s: ", prompt, suffix)

	var response string
	_, _ = fmt.Scanln(&response)
	response = strings.ToLower(strings.TrimSpace(response))

	if response == "" {
		return defaultYes
	}
	return response == "y" || response == "yes"
}
