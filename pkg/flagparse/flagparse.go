package flagparse

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/paulschiretz/pgl-shipper/pkg/buildinfo"
)

// cliFlags holds pointers to all possible command-line flags.
// Fields are pointers so we can distinguish between "not registered for this command" (nil)
// and "registered but not set by user" (non-nil pointer to zero value).
type cliFlags struct {
	// Global
	Config   *string
	LogLevel *string
	Quiet    *bool
	NoColor  *bool

	// Shared: Backup / Restore / List
	Only *string

	// Backup specific
	Simulate *bool
	Metrics  *bool

	// List specific
	Sort *string

	// Init specific
	Force *bool
}

func registerGlobalFlags(fs *flag.FlagSet, f *cliFlags) {
	f.Config = fs.String("config", "", "Path to the configuration file (.json, .yaml or .yml). Defaults to ./pgl-shipper.config.json.")
	f.LogLevel = fs.String("log-level", "info", "Set the logging level: 'debug', 'notice', 'info', 'warn', 'error'.")
	f.Quiet = fs.Bool("quiet", false, "Only log warnings and errors.")
	f.NoColor = fs.Bool("no-color", false, "Disable colored output.")
}

func registerSelectionFlags(fs *flag.FlagSet, f *cliFlags) {
	f.Only = fs.String("only", "", "Comma-separated list of backup names to process. Defaults to all.")
}

func registerBackupFlags(fs *flag.FlagSet, f *cliFlags) {
	f.Simulate = fs.Bool("simulate", false, "Show what would be done without executing commands or deleting files.")
	f.Metrics = fs.Bool("metrics", true, "Log cleanup counters.")
}

func registerListFlags(fs *flag.FlagSet, f *cliFlags) {
	f.Sort = fs.String("sort", "desc", "Sort order of the listed artifacts: 'desc' (newest first) or 'asc'.")
}

func registerInitFlags(fs *flag.FlagSet, f *cliFlags) {
	f.Force = fs.Bool("force", false, "Overwrite an existing configuration file.")
}

// Parse parses the provided arguments (usually os.Args[1:]) and returns the command and
// the map of flags explicitly set by the user.
func Parse(args []string) (Command, map[string]any, error) {
	if len(args) == 0 {
		printTopLevelUsage(os.Stdout)
		return None, nil, nil
	}

	cmdStr := strings.ToLower(args[0])
	if cmdStr == "help" || cmdStr == "-h" || cmdStr == "-help" || cmdStr == "--help" {
		printTopLevelUsage(os.Stdout)
		return None, nil, nil
	}

	command, err := ParseCommand(cmdStr)
	if err != nil {
		return None, nil, err
	}
	if command == Version {
		return command, nil, nil
	}

	f := &cliFlags{}
	fs := flag.NewFlagSet(command.String(), flag.ContinueOnError)
	registerGlobalFlags(fs, f)

	var desc string
	switch command {
	case Backup:
		registerSelectionFlags(fs, f)
		registerBackupFlags(fs, f)
		desc = "Run the configured backups."
	case Restore:
		registerSelectionFlags(fs, f)
		desc = "Print the commands that restore the most recent artifact of each backup."
	case List:
		registerSelectionFlags(fs, f)
		registerListFlags(fs, f)
		desc = "List the existing artifacts of each backup."
	case Init:
		registerInitFlags(fs, f)
		desc = "Write an example configuration file."
	}

	fs.Usage = func() {
		printSubcommandUsage(command, desc, fs)
	}
	if err := fs.Parse(args[1:]); err != nil {
		return command, nil, err
	}
	if fs.NArg() > 0 {
		return command, nil, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}
	return command, flagsToMap(fs, f), nil
}

func flagsToMap(fs *flag.FlagSet, f *cliFlags) map[string]any {
	usedFlags := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { usedFlags[f.Name] = true })

	flagMap := make(map[string]any)
	addIfUsed(flagMap, usedFlags, "config", f.Config)
	addIfUsed(flagMap, usedFlags, "log-level", f.LogLevel)
	addIfUsed(flagMap, usedFlags, "quiet", f.Quiet)
	addIfUsed(flagMap, usedFlags, "no-color", f.NoColor)
	addIfUsed(flagMap, usedFlags, "simulate", f.Simulate)
	addIfUsed(flagMap, usedFlags, "metrics", f.Metrics)
	addIfUsed(flagMap, usedFlags, "sort", f.Sort)
	addIfUsed(flagMap, usedFlags, "force", f.Force)
	if f.Only != nil && usedFlags["only"] {
		flagMap["only"] = ParseList(*f.Only)
	}
	return flagMap
}

// addIfUsed adds the value of ptr to flagMap if ptr is not nil and the flag was set.
func addIfUsed[T any](flagMap map[string]any, usedFlags map[string]bool, name string, ptr *T) {
	if ptr != nil && usedFlags[name] {
		flagMap[name] = *ptr
	}
}

func printTopLevelUsage(w io.Writer) {
	execName := filepath.Base(os.Args[0])
	fmt.Fprintf(w, "%s(%s) ", buildinfo.Name, buildinfo.Version)
	fmt.Fprintf(w, "Capture, check, encrypt, ship and rotate backups.\n\n")
	fmt.Fprintf(w, "Usage: %s <command> [flags]\n\n", execName)
	fmt.Fprintf(w, "Commands:\n")
	fmt.Fprintf(w, "  backup      Run the configured backups\n")
	fmt.Fprintf(w, "  restore     Print the restore plan of each backup\n")
	fmt.Fprintf(w, "  list        List existing backup artifacts\n")
	fmt.Fprintf(w, "  init        Write an example configuration\n")
	fmt.Fprintf(w, "  version     Print the application version\n")
	fmt.Fprintf(w, "\nRun '%s <command> -help' for more information on a command.\n", execName)
}

func printSubcommandUsage(command Command, desc string, fs *flag.FlagSet) {
	execName := filepath.Base(os.Args[0])
	fmt.Fprintf(fs.Output(), "%s(%s)\n\n", buildinfo.Name, buildinfo.Version)
	fmt.Fprintf(fs.Output(), "Usage of the %s command: %s %s [flags]\n\n", command, execName, command)
	fmt.Fprintf(fs.Output(), "%s\n\n", desc)
	fmt.Fprintf(fs.Output(), "Flags:\n")
	fs.PrintDefaults()
}

// ParseList parses a comma-separated list. Single or double quotes group
// items that contain commas or spaces and are removed from the result.
func ParseList(s string) []string {
	var list []string
	var current strings.Builder
	var quoteChar rune

	appendItem := func() {
		if trimmed := strings.TrimSpace(current.String()); trimmed != "" {
			list = append(list, trimmed)
		}
		current.Reset()
	}

	for _, r := range s {
		switch {
		case r == '\'' || r == '"':
			switch quoteChar {
			case 0:
				quoteChar = r
			case r:
				quoteChar = 0
			default:
				// A different quote inside a quoted section is literal.
				current.WriteRune(r)
			}
		case r == ',' && quoteChar == 0:
			appendItem()
		default:
			current.WriteRune(r)
		}
	}
	appendItem()
	return list
}
