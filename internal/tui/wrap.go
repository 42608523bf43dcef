package tui

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/xonecas/tplsel/internal/highlight"
)

// wrapANSI word-wraps an ANSI-styled string to width. Every resulting line
// carries the style active where it starts and ends with a reset, so lines
// can be padded independently.
func wrapANSI(s string, width int) []string {
	if width <= 0 || s == "" {
		return []string{s}
	}
	wrapped := ansi.Wordwrap(s, width, "")
	wrapped = ansi.Hardwrap(wrapped, width, true)
	lines := highlight.SplitLines(wrapped)
	for i := 0; i < len(lines)-1; i++ {
		if strings.Contains(lines[i], "\x1b[") {
			lines[i] += ansi.ResetStyle
		}
	}
	return lines
}
