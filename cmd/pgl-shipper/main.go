package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/fatih/color"

	"github.com/paulschiretz/pgl-shipper/cmd"
	"github.com/paulschiretz/pgl-shipper/pkg/buildinfo"
	"github.com/paulschiretz/pgl-shipper/pkg/flagparse"
	"github.com/paulschiretz/pgl-shipper/pkg/hints"
	"github.com/paulschiretz/pgl-shipper/pkg/plog"
)

// Exit codes: a degraded run still produced every backup.
const (
	exitOK       = 0
	exitDegraded = 1
	exitFailed   = 2
)

// run encapsulates the main application logic and returns an error if something
// goes wrong, allowing the main function to handle exit codes.
func run(ctx context.Context, args []string) error {
	command, flagMap, err := flagparse.Parse(args)
	if errors.Is(err, flag.ErrHelp) {
		return nil
	}
	if err != nil {
		return err
	}

	if quiet, ok := flagMap["quiet"].(bool); ok {
		plog.SetQuiet(quiet)
	}
	if noColor, ok := flagMap["no-color"].(bool); ok && noColor {
		color.NoColor = true
	}

	if command != flagparse.None && command != flagparse.Version {
		plog.Info("Starting "+buildinfo.Name, "version", buildinfo.Version, "pid", os.Getpid(), "command", command)
	}

	switch command {
	case flagparse.None:
		return nil
	case flagparse.Version:
		return cmd.RunVersion(buildinfo.Name, buildinfo.Version)
	case flagparse.Init:
		return cmd.RunInit(ctx, flagMap)
	case flagparse.Backup:
		return cmd.RunBackup(ctx, flagMap)
	case flagparse.Restore:
		return cmd.RunRestore(ctx, flagMap)
	case flagparse.List:
		return cmd.RunList(ctx, flagMap)
	default:
		return fmt.Errorf("internal error: unknown command %s", command)
	}
}

// exitCode maps the error returned by run to the process exit code.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case hints.IsHint(err):
		return exitDegraded
	default:
		return exitFailed
	}
}

func main() {
	// Set up a context that is canceled when an interrupt signal is received.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := run(ctx, os.Args[1:])
	switch code := exitCode(err); code {
	case exitOK:
	case exitDegraded:
		plog.Warn(buildinfo.Name+" finished with warnings", "reason", err)
		stop()
		os.Exit(code)
	default:
		plog.Error(buildinfo.Name+" exited with error", "error", err)
		stop()
		os.Exit(code)
	}
}
