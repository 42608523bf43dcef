package tui

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
	"github.com/xonecas/tplsel/internal/dom"
	"github.com/xonecas/tplsel/internal/engine"
	"github.com/xonecas/tplsel/internal/widget"
)

// renderStatusBar writes the status separator and bar.
func (m Model) renderStatusBar(b *strings.Builder, bgFill lipgloss.Style) {
	b.WriteString(m.styles.Border.Render(strings.Repeat("─", m.width)))
	b.WriteByte('\n')

	// -- Left: document name, dirty mark, widget counts --
	name := m.docName
	if m.Dirty() {
		name += "*"
	}
	total, flagged := widgetCounts(m)
	left := m.styles.StatusText.Render(fmt.Sprintf(" %s  widgets: %d", name, total))
	if flagged > 0 {
		left += m.styles.Error.Render(fmt.Sprintf("  flagged: %d", flagged))
	}
	if m.source {
		left += m.styles.StatusText.Render("  source")
	}

	// -- Right: notification or help hint --
	right := m.styles.StatusText.Render("ctrl+h help")
	if m.note != nil {
		right = m.noteStyle(m.note.Level).Render(m.note.Text)
	}

	leftW := lipgloss.Width(left)
	if maxRight := m.width - leftW - 2; lipgloss.Width(right) > maxRight {
		right = ansi.Truncate(right, max(0, maxRight), "…")
	}
	gap := max(0, m.width-leftW-lipgloss.Width(right)-1)
	b.WriteString(left)
	b.WriteString(bgFill.Render(strings.Repeat(" ", gap)))
	b.WriteString(right)
	b.WriteString(bgFill.Render(" "))
}

func (m Model) noteStyle(l engine.Level) lipgloss.Style {
	switch l {
	case engine.Warning:
		return m.styles.Warning
	case engine.Error:
		return m.styles.Error
	default:
		return m.styles.Info
	}
}

func widgetCounts(m Model) (total, flagged int) {
	for _, sel := range dom.Controls(m.eng.Body()) {
		total++
		if widget.StateOf(sel).Invalid() {
			flagged++
		}
	}
	return total, flagged
}
