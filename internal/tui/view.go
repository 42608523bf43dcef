package tui

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
	"github.com/xonecas/tplsel/internal/debug"
)

// ---------------------------------------------------------------------------
// View
// ---------------------------------------------------------------------------

func (m Model) View() tea.View {
	content := m.renderContent()
	if m.modal != nil {
		content = m.modal.View(m.width, m.height)
	}
	v := tea.NewView(content)
	v.AltScreen = true
	return v
}

// renderContent produces the string content for the view.
func (m Model) renderContent() string {
	if m.width == 0 {
		return ""
	}

	docW, panelW, contentH := m.layout()
	var docLines []string
	if m.source {
		docLines = m.sourceLines()
	} else {
		lines, _ := m.documentLines(docW)
		docLines = lines[min(m.scroll, len(lines)):]
	}
	panelLines := m.panel.View(panelW, contentH)
	bgFill := m.styles.BgFill

	var b strings.Builder
	for row := 0; row < contentH; row++ {
		renderPaddedLine(&b, docLines, row, docW, bgFill)
		if panelW > 0 {
			b.WriteString(m.styles.Border.Render("│"))
			renderPaddedLine(&b, panelLines, row, panelW, bgFill)
		}
		b.WriteByte('\n')
	}

	m.renderStatusBar(&b, bgFill)
	return b.String()
}

// sourceLines is the highlighted markup, one block per line.
func (m Model) sourceLines() []string {
	return m.hl.Lines(strings.TrimRight(debug.Markup(m.eng.Body()), "\n"))
}

// renderPaddedLine writes a line from lines[idx] padded/truncated to width,
// or a blank fill if idx is out of range.
func renderPaddedLine(b *strings.Builder, lines []string, idx, width int, bgFill lipgloss.Style) {
	if idx < 0 || idx >= len(lines) {
		b.WriteString(bgFill.Render(strings.Repeat(" ", width)))
		return
	}
	line := lines[idx]
	lw := lipgloss.Width(line)
	if lw > width {
		line = ansi.Truncate(line, width, "")
		lw = lipgloss.Width(line)
	}
	b.WriteString(line)
	if lw < width {
		b.WriteString(bgFill.Render(strings.Repeat(" ", width-lw)))
	}
}
