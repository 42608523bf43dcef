// Package modal is a filterable list shown over the editor: key bindings,
// saved documents.
package modal

import (
	"strings"
	"time"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
)

// Action is the result of handling a message. nil means no action.
type Action any

// ActionClose signals the modal should be dismissed.
type ActionClose struct{}

// ActionSelect signals an item was chosen.
type ActionSelect struct{ Item Item }

// Item is a single entry in the list.
type Item struct {
	Name string
	Desc string
}

// SearchFunc is called with the current query to produce results.
type SearchFunc func(query string) []Item

// Colors holds the theme colors for the modal.
type Colors struct {
	Fg     string
	Bg     string
	Dim    string
	SelFg  string
	SelBg  string
	Border string
}

const debounceDelay = 150 * time.Millisecond

// debounceMsg is sent after the debounce timer fires.
type debounceMsg struct{ seq int }

// Model is an input over a list. Typing refilters after a short pause.
type Model struct {
	Title string

	input    textinput.Model
	items    []Item
	selected int

	searchFn SearchFunc
	seq      int
	colors   Colors
}

// New creates a modal and runs the empty query.
func New(title string, searchFn SearchFunc, colors Colors) *Model {
	in := textinput.New()
	in.Prompt = "> "
	in.Focus()
	return &Model{
		Title:    title,
		input:    in,
		items:    searchFn(""),
		searchFn: searchFn,
		colors:   colors,
	}
}

// Items returns the current results.
func (m *Model) Items() []Item { return m.items }

// Query returns the current input.
func (m *Model) Query() string { return m.input.Value() }

func (m *Model) debounce() tea.Cmd {
	m.seq++
	seq := m.seq
	return tea.Tick(debounceDelay, func(time.Time) tea.Msg {
		return debounceMsg{seq: seq}
	})
}

// HandleMsg processes a tea.Msg and returns an optional Action and a command
// the parent must dispatch.
func (m *Model) HandleMsg(msg tea.Msg) (Action, tea.Cmd) {
	switch msg := msg.(type) {
	case debounceMsg:
		if msg.seq == m.seq {
			m.refresh()
		}
		return nil, nil
	case tea.KeyPressMsg:
		switch msg.Keystroke() {
		case "esc":
			return ActionClose{}, nil
		case "enter":
			if len(m.items) == 0 {
				return nil, nil
			}
			return ActionSelect{Item: m.items[min(m.selected, len(m.items)-1)]}, nil
		case "up", "ctrl+p":
			m.selected = max(0, m.selected-1)
			return nil, nil
		case "down", "ctrl+n":
			m.selected = min(max(0, len(m.items)-1), m.selected+1)
			return nil, nil
		}
		before := m.input.Value()
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		if m.input.Value() != before {
			return nil, tea.Batch(cmd, m.debounce())
		}
		return nil, cmd
	}
	return nil, nil
}

func (m *Model) refresh() {
	m.items = m.searchFn(m.input.Value())
	m.selected = 0
}

// View renders the modal centered at the given app width and height.
func (m *Model) View(appWidth, appHeight int) string {
	w := max(30, appWidth*70/100)
	h := max(8, appHeight*70/100)
	innerW := max(10, w-4)

	bg := lipgloss.Color(m.colors.Bg)
	dim := lipgloss.NewStyle().Foreground(lipgloss.Color(m.colors.Dim)).Background(bg)
	sel := lipgloss.NewStyle().Foreground(lipgloss.Color(m.colors.SelFg)).Background(lipgloss.Color(m.colors.SelBg))

	m.input.SetWidth(innerW - 3)
	rows := []string{m.Title, m.input.View(), dim.Render(strings.Repeat("─", innerW))}

	listH := max(1, h-2-len(rows))
	scroll := 0
	if m.selected >= listH {
		scroll = m.selected - listH + 1
	}
	if len(m.items) == 0 {
		rows = append(rows, dim.Render("no matches"))
	}
	for i := scroll; i < len(m.items) && i-scroll < listH; i++ {
		it := m.items[i]
		line := it.Name
		if it.Desc != "" {
			line += "  " + it.Desc
		}
		line = ansi.Truncate(line, innerW, "…")
		if i == m.selected {
			rows = append(rows, sel.Render(line+strings.Repeat(" ", max(0, innerW-ansi.StringWidth(line)))))
		} else {
			rows = append(rows, line)
		}
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.colors.Border)).
		BorderBackground(bg).
		Foreground(lipgloss.Color(m.colors.Fg)).
		Background(bg).
		Padding(0, 1).
		Width(w).
		Render(strings.Join(rows, "\n"))

	return lipgloss.Place(appWidth, appHeight, lipgloss.Center, lipgloss.Center, box,
		lipgloss.WithWhitespaceStyle(lipgloss.NewStyle().Background(bg)))
}

// Filter returns the items whose name or description contains query,
// ignoring case.
func Filter(all []Item, query string) []Item {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return all
	}
	var out []Item
	for _, it := range all {
		if strings.Contains(strings.ToLower(it.Name), q) || strings.Contains(strings.ToLower(it.Desc), q) {
			out = append(out, it)
		}
	}
	return out
}
