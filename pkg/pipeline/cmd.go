package pipeline

import "strings"

// Cmd is a single shell command built from a program and escaped arguments.
type Cmd struct {
	program string
	parts   []string
	silent  bool
}

// NewCmd creates a command for the given program. The program is used as is,
// so callers may pass a located binary path or a raw shell snippet.
func NewCmd(program string) *Cmd {
	return &Cmd{program: program}
}

// Program returns the program the command was created with.
func (c *Cmd) Program() string {
	return c.program
}

// AddArgument appends each argument individually escaped.
func (c *Cmd) AddArgument(args ...string) *Cmd {
	for _, a := range args {
		c.parts = append(c.parts, Escape(a))
	}
	return c
}

// AddOption appends an option followed by its escaped values separated by a space.
// An option without values is appended as a plain flag.
func (c *Cmd) AddOption(option string, values ...string) *Cmd {
	return c.AddOptionWithGlue(option, " ", values...)
}

// AddOptionWithGlue appends an option joined to its escaped values with glue,
// e.g. "--user='root'" for glue "=". Multiple values are space-joined.
func (c *Cmd) AddOptionWithGlue(option, glue string, values ...string) *Cmd {
	if len(values) == 0 {
		c.parts = append(c.parts, option)
		return c
	}
	escaped := make([]string, len(values))
	for i, v := range values {
		escaped[i] = Escape(v)
	}
	c.parts = append(c.parts, option+glue+strings.Join(escaped, " "))
	return c
}

// AddOptionIf appends the option only when cond is true.
func (c *Cmd) AddOptionIf(cond bool, option string, values ...string) *Cmd {
	if cond {
		c.AddOption(option, values...)
	}
	return c
}

// Silence discards the command's stderr. It has no effect on platforms without
// a null device redirection.
func (c *Cmd) Silence() *Cmd {
	c.silent = true
	return c
}

// String renders the command line.
func (c *Cmd) String() string {
	var b strings.Builder
	b.WriteString(c.program)
	for _, p := range c.parts {
		b.WriteByte(' ')
		b.WriteString(p)
	}
	if c.silent && nullRedirect != "" {
		b.WriteString(nullRedirect)
	}
	return b.String()
}
