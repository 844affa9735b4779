package cmd

import "fmt"

// RunVersion prints the application version.
func RunVersion(appName, appVersion string) error {
	_, err := fmt.Fprintf(stdout, "%s version %s\n", appName, appVersion)
	return err
}
