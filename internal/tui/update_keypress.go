package tui

import (
	tea "charm.land/bubbletea/v2"
	"github.com/atotto/clipboard"
	"github.com/rs/zerolog/log"
)

// handleKeyPress processes global key events. Returns (model, cmd, true) if handled.
func (m *Model) handleKeyPress(msg tea.KeyPressMsg) (Model, tea.Cmd, bool) {
	if m.focus == focusPanel && m.panel.Editing() && msg.Keystroke() != "ctrl+c" {
		return Model{}, nil, false
	}
	handler := m.keyPressHandlers()[msg.Keystroke()]
	if handler == nil {
		return Model{}, nil, false
	}
	return handler(m)
}

// keyBinding documents one global key for the help modal.
type keyBinding struct {
	key  string
	desc string
	fn   func(*Model) (Model, tea.Cmd, bool)
}

func keyBindings() []keyBinding {
	return []keyBinding{
		{"ctrl+c", "quit", (*Model).handleQuit},
		{"tab", "switch between document and templates", (*Model).handleTab},
		{"ctrl+t", "insert a template widget", (*Model).handleInsert},
		{"ctrl+n", "next option of the widget at the caret", (*Model).handleCycleNext},
		{"ctrl+p", "previous option of the widget at the caret", (*Model).handleCyclePrev},
		{"ctrl+d", "delete the widget at the caret", (*Model).handleDeleteWidget},
		{"ctrl+z", "undo", (*Model).handleUndo},
		{"ctrl+y", "redo", (*Model).handleRedo},
		{"ctrl+u", "toggle the HTML source view", (*Model).handleSource},
		{"ctrl+s", "save the document", (*Model).handleSave},
		{"ctrl+o", "open a saved document", (*Model).handleOpen},
		{"ctrl+shift+c", "copy the document markup", (*Model).handleCopy},
		{"ctrl+h", "show key bindings", (*Model).handleHelp},
	}
}

func (m *Model) keyPressHandlers() map[string]func(*Model) (Model, tea.Cmd, bool) {
	handlers := make(map[string]func(*Model) (Model, tea.Cmd, bool))
	for _, kb := range keyBindings() {
		handlers[kb.key] = kb.fn
	}
	handlers["f1"] = (*Model).handleHelp
	return handlers
}

func (m *Model) handleQuit() (Model, tea.Cmd, bool) {
	return *m, tea.Quit, true
}

func (m *Model) handleTab() (Model, tea.Cmd, bool) {
	if m.focus == focusDocument {
		m.focus = focusPanel
		m.panel.Focus()
	} else {
		m.focus = focusDocument
		m.panel.Blur()
	}
	return *m, nil, true
}

func (m *Model) handleInsert() (Model, tea.Cmd, bool) {
	if err := m.plug.InsertDropdown(); err != nil {
		log.Error().Err(err).Msg("insert widget")
		return *m, m.flashError(err.Error()), true
	}
	m.focus = focusDocument
	m.panel.Blur()
	return *m, m.afterEdit(), true
}

func (m *Model) cycle(delta int) (Model, tea.Cmd, bool) {
	sel := m.plug.WidgetAtCaret()
	if sel == nil || !m.plug.Cycle(sel, delta) {
		return *m, nil, true
	}
	return *m, m.afterEdit(), true
}

func (m *Model) handleCycleNext() (Model, tea.Cmd, bool) { return m.cycle(1) }
func (m *Model) handleCyclePrev() (Model, tea.Cmd, bool) { return m.cycle(-1) }

func (m *Model) handleDeleteWidget() (Model, tea.Cmd, bool) {
	if sel := m.plug.WidgetAtCaret(); sel != nil {
		m.plug.DeleteWidget(sel)
	}
	return *m, m.afterEdit(), true
}

func (m *Model) handleUndo() (Model, tea.Cmd, bool) {
	m.eng.Undo()
	return *m, m.afterEdit(), true
}

func (m *Model) handleRedo() (Model, tea.Cmd, bool) {
	m.eng.Redo()
	return *m, m.afterEdit(), true
}

func (m *Model) handleSource() (Model, tea.Cmd, bool) {
	m.source = !m.source
	return *m, nil, true
}

func (m *Model) handleSave() (Model, tea.Cmd, bool) {
	if m.repo == nil {
		return *m, m.flashError("No database configured"), true
	}
	repo, name, markup := m.repo, m.docName, m.eng.HTML()
	return *m, func() tea.Msg {
		err := repo.SaveDocument(name, markup)
		return savedMsg{name: name, markup: markup, err: err}
	}, true
}

func (m *Model) handleCopy() (Model, tea.Cmd, bool) {
	markup := m.eng.HTML()
	native := func() tea.Msg {
		return copiedMsg{err: clipboard.WriteAll(markup)}
	}
	// OSC 52 reaches the local clipboard over SSH and tmux.
	return *m, tea.Batch(tea.SetClipboard(markup), native), true
}
