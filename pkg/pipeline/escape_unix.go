//go:build !windows

package pipeline

import "strings"

const nullRedirect = " 2> /dev/null"

// Escape quotes s for /bin/sh using single quotes.
func Escape(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// CanPipe reports whether the platform shell supports piping between commands.
func CanPipe() bool { return true }
