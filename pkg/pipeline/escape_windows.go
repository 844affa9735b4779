//go:build windows

package pipeline

import "strings"

const nullRedirect = ""

// Escape quotes s for cmd.exe using double quotes.
func Escape(s string) string {
	s = strings.ReplaceAll(s, `"`, `\"`)
	s = strings.ReplaceAll(s, "%", "%%")
	return `"` + s + `"`
}

// CanPipe reports whether the platform shell supports piping between commands.
func CanPipe() bool { return false }
