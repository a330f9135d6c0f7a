// Package format provides colored output helpers for the CLI layer.
package format

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// Output styles
var (
	ErrorColor   = color.New(color.FgRed, color.Bold)
	WarningColor = color.New(color.FgYellow, color.Bold)
	SuccessColor = color.New(color.FgGreen, color.Bold)
	HeadingColor = color.New(color.FgHiWhite, color.Bold)
	MutedColor   = color.New(color.FgHiBlack)
)

// Success prints a success line to stdout.
func Success(format string, args ...interface{}) {
	SuccessColor.Fprintf(os.Stdout, format+"\n", args...)
}

// Error prints an error line to stderr.
func Error(format string, args ...interface{}) {
	ErrorColor.Fprintf(os.Stderr, format+"\n", args...)
}

// Warning prints a warning line to stderr.
func Warning(format string, args ...interface{}) {
	WarningColor.Fprintf(os.Stderr, format+"\n", args...)
}

// Info prints a plain line to stdout.
func Info(format string, args ...interface{}) {
	fmt.Fprintf(os.Stdout, format+"\n", args...)
}

// Heading prints an emphasized line to stdout.
func Heading(format string, args ...interface{}) {
	HeadingColor.Fprintf(os.Stdout, format+"\n", args...)
}

// Muted prints a de-emphasized detail line to stdout.
func Muted(format string, args ...interface{}) {
	MutedColor.Fprintf(os.Stdout, format+"\n", args...)
}

// TerminalWidth returns the current terminal width, or a sensible default
// when stdout is not a terminal.
func TerminalWidth() int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return 100
}

// Truncate shortens s to at most max runes, marking the cut with an
// ellipsis. A non-positive max returns s unchanged.
func Truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}
