// Package diagcolor applies ANSI coloring to printed diagnostics (after
// the color constants in nilan's printer.go), gated on whether the
// destination is really a terminal instead of always emitting escape
// codes.
package diagcolor

import (
	"os"

	"github.com/mattn/go-isatty"
)

const (
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorReset  = "\033[0m"
)

// Enabled reports whether f is a terminal that should receive ANSI
// color codes.
func Enabled(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Error wraps s in red if color is enabled, otherwise returns s
// unchanged.
func Error(s string, color bool) string {
	if !color {
		return s
	}
	return colorRed + s + colorReset
}

// Dim wraps s in yellow if color is enabled, otherwise returns s
// unchanged.
func Dim(s string, color bool) string {
	if !color {
		return s
	}
	return colorYellow + s + colorReset
}
