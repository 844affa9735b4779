package pipeline

import (
	"errors"
	"strings"
)

var (
	// ErrPipeUnsupported is returned when piping is requested on a platform that cannot pipe.
	ErrPipeUnsupported = errors.New("piping commands is not supported on this platform")
	// ErrPipeAlreadySet is returned when a second pipe tail is registered.
	ErrPipeAlreadySet = errors.New("pipeline already pipes to a command")
)

// Pipeline is a list of commands chained with && and executed as one unit.
// The output of the chain can be piped into a single tail command and the final
// output can be redirected to a file.
type Pipeline struct {
	cmds     []*Cmd
	pipeTail *Cmd
	redirect string
}

// New creates a pipeline from the given commands.
func New(cmds ...*Cmd) *Pipeline {
	return &Pipeline{cmds: cmds}
}

// Add chains another command with &&.
func (p *Pipeline) Add(c *Cmd) *Pipeline {
	p.cmds = append(p.cmds, c)
	return p
}

// PipeTo registers the command that receives the chain's stdout.
func (p *Pipeline) PipeTo(c *Cmd) error {
	if !CanPipe() {
		return ErrPipeUnsupported
	}
	if p.pipeTail != nil {
		return ErrPipeAlreadySet
	}
	p.pipeTail = c
	return nil
}

// RedirectTo sends the pipeline's stdout to path.
func (p *Pipeline) RedirectTo(path string) *Pipeline {
	p.redirect = path
	return p
}

// IsPiped reports whether a pipe tail is registered.
func (p *Pipeline) IsPiped() bool { return p.pipeTail != nil }

// RedirectPath returns the redirect target or "".
func (p *Pipeline) RedirectPath() string { return p.redirect }

// Len returns the number of chained commands, not counting the pipe tail.
func (p *Pipeline) Len() int { return len(p.cmds) }

// String renders the complete command line, e.g. "(a && b) | c > 'out'".
func (p *Pipeline) String() string {
	parts := make([]string, len(p.cmds))
	for i, c := range p.cmds {
		parts[i] = c.String()
	}
	line := strings.Join(parts, " && ")
	if len(p.cmds) > 1 {
		line = "(" + line + ")"
	}
	if p.pipeTail != nil {
		line += " | " + p.pipeTail.String()
	}
	if p.redirect != "" {
		line += " > " + Escape(p.redirect)
	}
	return line
}
