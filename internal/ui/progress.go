// Package ui provides plain terminal output for storysense.
// This file renders rating progress.
package ui

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/storysense-dev/storysense/internal/session"
)

const defaultWidth = 80

// TermWidth returns the width of stdout, or 80 when it is not a terminal.
func TermWidth() int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return defaultWidth
	}
	w, _, err := term.GetSize(fd)
	if err != nil || w <= 0 {
		return defaultWidth
	}
	return w
}

// ProgressBar renders p as a bar of exactly width cells between brackets.
func ProgressBar(p session.Progress, width int) string {
	if width < 1 {
		width = 1
	}
	filled := int(p.Fraction()*float64(width) + 0.5)
	if filled > width {
		filled = width
	}
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", width-filled) + "]"
}

// ProgressLine renders "Progress: 2/3 rated [######---] 67%".
func ProgressLine(p session.Progress, width int) string {
	return fmt.Sprintf("Progress: %d/%d rated %s %d%%",
		p.Rated, p.Total, ProgressBar(p, width), int(p.Fraction()*100+0.5))
}
