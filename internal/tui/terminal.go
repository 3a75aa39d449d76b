package tui

import (
	"os"

	"github.com/charmbracelet/x/term"
)

const defaultWidth = 80

// reports whether stdout is an interactive terminal
func Interactive() bool {
	return term.IsTerminal(os.Stdout.Fd())
}

// terminal width, or defaultWidth when unknown
func Width() int {
	width, _, err := term.GetSize(os.Stdout.Fd())
	if err != nil || width <= 0 {
		return defaultWidth
	}

	return width
}
