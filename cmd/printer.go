package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"github.com/paulschiretz/pgl-shipper/pkg/engine"
	"github.com/paulschiretz/pgl-shipper/pkg/metafile"
	"github.com/paulschiretz/pgl-shipper/pkg/restoreplan"
	"github.com/paulschiretz/pgl-shipper/pkg/runstate"
)

// stdout receives the human readable output of the commands.
// Logs go through plog and are not affected.
var stdout io.Writer = color.Output

type printer struct {
	out io.Writer

	ok    func(a ...any) string
	warn  func(a ...any) string
	fail  func(a ...any) string
	muted func(a ...any) string
	bold  func(a ...any) string
}

func newPrinter(out io.Writer) *printer {
	return &printer{
		out:   out,
		ok:    color.New(color.FgGreen, color.Bold).SprintFunc(),
		warn:  color.New(color.FgYellow).SprintFunc(),
		fail:  color.New(color.FgRed, color.Bold).SprintFunc(),
		muted: color.New(color.FgHiBlack).SprintFunc(),
		bold:  color.New(color.Bold).SprintFunc(),
	}
}

func (p *printer) status(s runstate.Status) string {
	switch s {
	case runstate.StatusOK:
		return p.ok(s.String())
	case runstate.StatusDegraded:
		return p.warn(s.String())
	case runstate.StatusNotRun:
		return p.muted(s.String())
	default:
		return p.fail(s.String())
	}
}

// Summary prints the per-backup stage results followed by the run totals.
func (p *printer) Summary(s *runstate.Summary) {
	title := "Backup run"
	if s.Simulated {
		title += " (simulated)"
	}
	fmt.Fprintf(p.out, "\n%s %s %s\n", p.bold(title), p.muted(s.RunID), p.muted(s.Duration().Round(time.Millisecond)))

	for _, b := range s.Backups {
		fmt.Fprintf(p.out, "\n  %s  %s\n", p.bold(b.Name), p.status(b.Status()))
		if err := b.SetupError(); err != nil {
			fmt.Fprintf(p.out, "    %s %v\n", p.fail("setup failed:"), err)
			continue
		}
		for _, r := range b.Results() {
			line := fmt.Sprintf("%-8s %-18s %s", r.Stage, r.Type, r.Outcome)
			switch r.Outcome {
			case runstate.Failed:
				fmt.Fprintf(p.out, "    %s  %v\n", p.fail(line), r.Err)
			case runstate.Skipped:
				fmt.Fprintf(p.out, "    %s\n", p.warn(line))
			default:
				fmt.Fprintf(p.out, "    %s\n", line)
			}
		}
		for _, r := range b.NotRun() {
			fmt.Fprintf(p.out, "    %s\n", p.muted(fmt.Sprintf("%-8s %-18s not run", r.Stage, r.Type)))
		}
	}

	totals := s.Totals()
	fmt.Fprintf(p.out, "\n  %-8s %9s %8s %7s\n", "stage", "executed", "skipped", "failed")
	for _, st := range runstate.Stages {
		c := totals[st]
		fmt.Fprintf(p.out, "  %-8s %9d %8d %7d\n", st, c.Executed, c.Skipped, c.Failed)
	}
	fmt.Fprintf(p.out, "\n%s\n", p.status(s.Status()))
}

// Restores prints the restore plans. Nothing is executed.
func (p *printer) Restores(restores []engine.Restore) {
	for _, r := range restores {
		fmt.Fprintf(p.out, "\n%s %s\n", p.bold("Restore plan for"), p.bold(r.Name))
		if r.Plan == nil {
			fmt.Fprintf(p.out, "  %s %v\n", p.fail("unavailable:"), r.Err)
			continue
		}
		if r.Artifact != "" {
			fmt.Fprintf(p.out, "  artifact: %s\n", r.Artifact)
		} else {
			fmt.Fprintf(p.out, "  %s\n", p.muted("no artifact found, paths refer to the next run"))
		}
		p.commands("Decrypt", r.Plan.DecryptionCommands(), r.Plan.IsCryptSupported())
		p.commands("Decompress", r.Plan.DecompressionCommands(), true)
		p.commands("Restore", r.Plan.RestoreCommands(), r.Plan.IsSourceSupported())
		if r.Incomplete != nil {
			fmt.Fprintf(p.out, "  %s %v\n", p.warn("incomplete:"), r.Incomplete)
		}
		if r.Err != nil {
			fmt.Fprintf(p.out, "  %s %v\n", p.fail("error:"), r.Err)
		}
	}
}

func (p *printer) commands(title string, cmds []restoreplan.Command, supported bool) {
	if !supported {
		fmt.Fprintf(p.out, "  %s\n", p.warn("# "+title+": not supported, restore manually"))
		return
	}
	if len(cmds) == 0 {
		return
	}
	fmt.Fprintf(p.out, "  %s\n", p.muted("# "+title))
	for _, c := range cmds {
		if c.Comment != "" {
			fmt.Fprintf(p.out, "  %s\n", p.muted("# "+c.Comment))
		}
		fmt.Fprintf(p.out, "  %s\n", c.Cmd)
	}
}

// Listings prints the artifacts found for each backup.
func (p *printer) Listings(listings []engine.Listing) {
	for _, l := range listings {
		fmt.Fprintf(p.out, "\n%s %s\n", p.bold(l.Name), p.muted(fmt.Sprintf("(%d artifacts)", len(l.Artifacts))))
		if l.Err != nil {
			fmt.Fprintf(p.out, "  %s %v\n", p.fail("error:"), l.Err)
			continue
		}
		for _, a := range l.Artifacts {
			fmt.Fprintf(p.out, "  %s  %10s  %s\n", a.MTime.Format("2006-01-02 15:04:05"), humanize.IBytes(uint64(max(a.Size, 0))), a.Path)
		}
	}
}

// LastRun prints the status of the last recorded backup run.
func (p *printer) LastRun(m metafile.MetafileContent) {
	status := p.fail(m.Status)
	switch m.Status {
	case runstate.StatusOK.String():
		status = p.ok(m.Status)
	case runstate.StatusDegraded.String():
		status = p.warn(m.Status)
	}
	fmt.Fprintf(p.out, "%s %s  %s %s\n", p.bold("Last run:"), m.FinishedUTC.Local().Format("2006-01-02 15:04:05"), status, p.muted(m.RunID))
}
