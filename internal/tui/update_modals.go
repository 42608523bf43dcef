package tui

import (
	"fmt"

	tea "charm.land/bubbletea/v2"
	"github.com/rs/zerolog/log"
	"github.com/xonecas/tplsel/internal/tui/modal"
)

func (m *Model) handleHelp() (Model, tea.Cmd, bool) {
	var items []modal.Item
	for _, kb := range keyBindings() {
		items = append(items, modal.Item{Name: kb.key, Desc: kb.desc})
	}
	m.openModal(modalKeybinds, "Key bindings", func(q string) []modal.Item {
		return modal.Filter(items, q)
	})
	return *m, nil, true
}

func (m *Model) handleOpen() (Model, tea.Cmd, bool) {
	if m.repo == nil {
		return *m, m.flashError("No database configured"), true
	}
	docs, err := m.repo.ListDocuments()
	if err != nil {
		log.Error().Err(err).Msg("list documents")
		return *m, m.flashError("Cannot list documents: " + err.Error()), true
	}
	items := make([]modal.Item, 0, len(docs))
	for _, d := range docs {
		items = append(items, modal.Item{
			Name: d.Name,
			Desc: fmt.Sprintf("updated %s", d.Updated.Format("2006-01-02 15:04")),
		})
	}
	m.openModal(modalDocuments, "Open document", func(q string) []modal.Item {
		return modal.Filter(items, q)
	})
	return *m, nil, true
}

func (m *Model) openModal(kind modalKind, title string, search modal.SearchFunc) {
	m.modal = modal.New(title, search, modalColors(m.palette))
	m.modalKind = kind
}

func (m *Model) closeModal() {
	m.modal = nil
	m.modalKind = modalNone
}

// handleModalMsg routes a message to the open modal and acts on its result.
func (m Model) handleModalMsg(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyPressMsg); ok && k.Keystroke() == "ctrl+c" {
		return m, tea.Quit
	}
	action, cmd := m.modal.HandleMsg(msg)
	switch a := action.(type) {
	case modal.ActionClose:
		m.closeModal()
	case modal.ActionSelect:
		kind := m.modalKind
		m.closeModal()
		if kind == modalDocuments {
			return m, tea.Batch(cmd, m.loadDocument(a.Item.Name))
		}
	}
	return m, cmd
}

func (m *Model) loadDocument(name string) tea.Cmd {
	repo := m.repo
	return func() tea.Msg {
		doc, err := repo.LoadDocument(name)
		return loadedMsg{name: name, markup: doc.Markup, err: err}
	}
}
