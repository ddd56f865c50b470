package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// checkState classifies a line of status output. It drives both the
// bracketed token and the color applied to it.
type checkState int

const (
	stateInfo checkState = iota
	stateHealthy
	stateDegraded
	stateBroken
)

func (s checkState) String() string {
	switch s {
	case stateHealthy:
		return "OK"
	case stateDegraded:
		return "WARN"
	case stateBroken:
		return "ERROR"
	}
	return "INFO"
}

func (s checkState) color() string {
	switch s {
	case stateHealthy:
		return colorGreen
	case stateDegraded:
		return colorYellow
	case stateBroken:
		return colorRed
	}
	return colorBlue
}

const (
	colorReset  = "\x1b[0m"
	colorRed    = "\x1b[31m"
	colorGreen  = "\x1b[32m"
	colorYellow = "\x1b[33m"
	colorBlue   = "\x1b[34m"
)

// formatCheckLine renders one "  Label:  [STATE] detail" line. Only the
// state token is colored so the detail text stays readable everywhere.
func formatCheckLine(label string, state checkState, detail string, colorize bool) string {
	token := "[" + state.String() + "]"
	if colorize {
		token = state.color() + token + colorReset
	}
	line := fmt.Sprintf("  %-20s %s", label+":", token)
	if detail != "" {
		line += " " + detail
	}
	return line
}

// sectionHeading returns a "== Title ==" heading with an underline rule
// on the following line.
func sectionHeading(title string, colorize bool) string {
	head := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	rule := strings.Repeat("-", len(head))
	if colorize {
		head = colorBlue + head + colorReset
		rule = colorBlue + rule + colorReset
	}
	return head + "\n" + rule
}

func shouldColorize(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
