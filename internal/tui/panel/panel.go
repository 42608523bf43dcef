// Package panel is the template list editor shown beside the document.
package panel

import (
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
	"github.com/xonecas/tplsel/internal/constants"
	"github.com/xonecas/tplsel/internal/templates"
)

// Colors holds the theme colors for the panel.
type Colors struct {
	Fg     string
	Bg     string
	Dim    string
	SelFg  string
	SelBg  string
	Border string
}

// Model lists the templates of a store and edits them. It follows the store
// through a change listener, so it must be held by pointer.
type Model struct {
	store    *templates.Store
	items    []string
	selected int
	editing  bool
	focused  bool
	input    textinput.Model
	colors   Colors
	stop     func()
}

// New subscribes a panel to s.
func New(s *templates.Store, colors Colors) *Model {
	in := textinput.New()
	in.Prompt = "> "
	in.Placeholder = constants.NewTemplate
	m := &Model{store: s, input: in, colors: colors}
	m.stop = s.OnChange(m.sync)
	return m
}

// Close unsubscribes from the store.
func (m *Model) Close() {
	if m.stop != nil {
		m.stop()
		m.stop = nil
	}
}

// sync takes a fresh snapshot and keeps the selection in range.
func (m *Model) sync(values []string) {
	m.items = values
	m.clamp()
}

func (m *Model) clamp() {
	switch {
	case len(m.items) == 0:
		m.selected = 0
	case m.selected >= len(m.items):
		m.selected = len(m.items) - 1
	case m.selected < 0:
		m.selected = 0
	}
}

// Items returns the last snapshot received.
func (m *Model) Items() []string { return m.items }

// Selected returns the selected index. It is 0 for an empty list.
func (m *Model) Selected() int { return m.selected }

// Editing reports whether the edit field has focus.
func (m *Model) Editing() bool { return m.editing }

// Focus gives the panel keyboard input.
func (m *Model) Focus() { m.focused = true }

// Blur drops focus, abandoning any edit in progress.
func (m *Model) Blur() {
	m.Cancel()
	m.focused = false
}

// Focused reports whether the panel has keyboard input.
func (m *Model) Focused() bool { return m.focused }

// Select moves the selection to i, clamped.
func (m *Model) Select(i int) {
	m.selected = i
	m.clamp()
}

// Add appends a new template and selects it.
func (m *Model) Add() {
	m.store.Add(constants.NewTemplate)
	m.Select(len(m.items) - 1)
}

// Delete removes the selected template and selects the one before it.
func (m *Model) Delete() {
	if len(m.items) == 0 {
		return
	}
	i := m.selected
	m.store.RemoveAt(i)
	m.Select(max(0, i-1))
}

// StartEdit opens the edit field on the selected template.
func (m *Model) StartEdit() tea.Cmd {
	if len(m.items) == 0 {
		return nil
	}
	m.editing = true
	m.input.SetValue(m.items[m.selected])
	m.input.CursorEnd()
	return m.input.Focus()
}

// Commit writes the trimmed edit back. Blank input is ignored.
func (m *Model) Commit() {
	if !m.editing {
		return
	}
	m.editing = false
	m.input.Blur()
	v := strings.TrimSpace(m.input.Value())
	if v == "" {
		return
	}
	m.store.UpdateAt(m.selected, v)
}

// Cancel closes the edit field without writing.
func (m *Model) Cancel() {
	m.editing = false
	m.input.Blur()
}

// Update handles a key while the panel has focus. It reports whether the key
// was consumed.
func (m *Model) Update(msg tea.Msg) (bool, tea.Cmd) {
	if m.editing {
		if k, ok := msg.(tea.KeyPressMsg); ok {
			switch k.Keystroke() {
			case "enter":
				m.Commit()
				return true, nil
			case "esc":
				m.Cancel()
				return true, nil
			}
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return true, cmd
	}

	k, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return false, nil
	}
	switch k.Keystroke() {
	case "up", "k":
		m.Select(m.selected - 1)
	case "down", "j":
		m.Select(m.selected + 1)
	case "home", "g":
		m.Select(0)
	case "end", "G":
		m.Select(len(m.items) - 1)
	case "a", "+":
		m.Add()
	case "d", "-", "delete":
		m.Delete()
	case "enter", "e":
		return true, m.StartEdit()
	default:
		return false, nil
	}
	return true, nil
}

// View renders the panel into exactly height lines of width cells.
func (m *Model) View(width, height int) []string {
	if width <= 0 || height <= 0 {
		return nil
	}
	bg := lipgloss.Color(m.colors.Bg)
	base := lipgloss.NewStyle().Foreground(lipgloss.Color(m.colors.Fg)).Background(bg)
	dim := lipgloss.NewStyle().Foreground(lipgloss.Color(m.colors.Dim)).Background(bg)
	sel := lipgloss.NewStyle().Foreground(lipgloss.Color(m.colors.SelFg)).Background(lipgloss.Color(m.colors.SelBg))
	if !m.focused {
		sel = sel.Foreground(lipgloss.Color(m.colors.Fg))
	}

	title := "Templates"
	if m.focused {
		title += " *"
	}
	lines := []string{pad(base.Bold(true).Render(title), width, base)}

	// Title, divider and edit line take three rows.
	listH := max(1, height-3)
	scroll := 0
	if m.selected >= listH {
		scroll = m.selected - listH + 1
	}
	if len(m.items) == 0 {
		lines = append(lines, pad(dim.Render("(empty)"), width, base))
	}
	for i := scroll; i < len(m.items) && len(lines) < listH+1; i++ {
		text := ansi.Truncate(m.items[i], width-2, "…")
		if i == m.selected {
			lines = append(lines, sel.Render(padPlain("> "+text, width)))
		} else {
			lines = append(lines, pad(base.Render("  "+text), width, base))
		}
	}
	for len(lines) < listH+1 {
		lines = append(lines, base.Render(strings.Repeat(" ", width)))
	}

	lines = append(lines, dim.Render(strings.Repeat("─", width)))
	if m.editing {
		m.input.SetWidth(max(1, width-3))
		lines = append(lines, pad(m.input.View(), width, base))
	} else {
		lines = append(lines, pad(dim.Render("a add d del e edit"), width, base))
	}
	return lines[:min(len(lines), height)]
}

func pad(s string, width int, fill lipgloss.Style) string {
	w := lipgloss.Width(s)
	if w > width {
		return ansi.Truncate(s, width, "")
	}
	return s + fill.Render(strings.Repeat(" ", width-w))
}

func padPlain(s string, width int) string {
	w := ansi.StringWidth(s)
	if w >= width {
		return ansi.Truncate(s, width, "")
	}
	return s + strings.Repeat(" ", width-w)
}
