package tui

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"github.com/rs/zerolog/log"
	"github.com/xonecas/tplsel/internal/engine"
)

// ---------------------------------------------------------------------------
// Update
// ---------------------------------------------------------------------------

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	// -- Window resize -------------------------------------------------------
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.ensureCaretVisible()
		return m, nil

	// -- Paste ---------------------------------------------------------------
	case tea.PasteMsg:
		if m.modal == nil && m.focus == focusDocument {
			m.paste(msg.Content)
			return m, m.afterEdit()
		}

	// -- Keyboard ------------------------------------------------------------
	case tea.KeyPressMsg:
		if m.modal != nil {
			return m.handleModalMsg(msg)
		}
		if mdl, cmd, handled := m.handleKeyPress(msg); handled {
			return mdl, cmd
		}
		if m.focus == focusPanel {
			_, cmd := m.panel.Update(msg)
			return m, cmd
		}
		return m, m.handleDocumentKey(msg)

	// -- Status bar ----------------------------------------------------------
	case noteExpiredMsg:
		if msg.seq == m.noteSeq {
			m.note = nil
		}
		return m, nil

	case copiedMsg:
		if msg.err != nil {
			log.Warn().Err(msg.err).Msg("copy to system clipboard")
		}
		return m, m.flashInfo("Markup copied")

	case savedMsg:
		if msg.err != nil {
			log.Error().Err(msg.err).Str("name", msg.name).Msg("save document")
			return m, m.flashError("Save failed: " + msg.err.Error())
		}
		m.saved = msg.markup
		return m, m.flashInfo("Saved " + msg.name)

	case loadedMsg:
		if msg.err != nil {
			log.Error().Err(msg.err).Str("name", msg.name).Msg("load document")
			return m, m.flashError("Open failed: " + msg.err.Error())
		}
		if err := m.eng.Load(msg.markup); err != nil {
			return m, m.flashError("Open failed: " + err.Error())
		}
		m.docName = msg.name
		m.saved = m.eng.HTML()
		m.scroll = 0
		return m, m.flashInfo("Opened " + msg.name)
	}

	if m.modal != nil {
		return m.handleModalMsg(msg)
	}
	if m.focus == focusPanel && m.panel.Editing() {
		_, cmd := m.panel.Update(msg)
		return m, cmd
	}
	return m, nil
}

// handleDocumentKey applies editing and caret keys to the document.
func (m *Model) handleDocumentKey(msg tea.KeyPressMsg) tea.Cmd {
	switch msg.Keystroke() {
	case "left":
		m.eng.MoveCaret(-1)
	case "right":
		m.eng.MoveCaret(1)
	case "up":
		m.eng.MoveLine(-1)
	case "down":
		m.eng.MoveLine(1)
	case "home", "ctrl+a":
		m.eng.CaretLineStart()
	case "end", "ctrl+e":
		m.eng.CaretLineEnd()
	case "enter":
		return m.input(engine.InsertParagraph{})
	case "backspace":
		return m.input(engine.DeleteBackward{})
	case "delete":
		return m.input(engine.DeleteForward{})
	case "space":
		return m.input(engine.InsertText{Text: " "})
	default:
		if msg.Text == "" {
			return nil
		}
		return m.input(engine.InsertText{Text: msg.Text})
	}
	m.ensureCaretVisible()
	return nil
}

func (m *Model) input(in engine.Intent) tea.Cmd {
	if err := m.eng.Input(in); err != nil {
		log.Error().Err(err).Str("intent", in.Name()).Msg("input")
		return m.flashError(err.Error())
	}
	return m.afterEdit()
}

// paste inserts text line by line, breaking paragraphs between lines.
func (m *Model) paste(text string) {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	for i, line := range strings.Split(text, "\n") {
		if i > 0 {
			_ = m.eng.Input(engine.InsertParagraph{})
		}
		if line != "" {
			_ = m.eng.Input(engine.InsertText{Text: line})
		}
	}
}

// afterEdit keeps the caret on screen and surfaces new notifications.
func (m *Model) afterEdit() tea.Cmd {
	m.ensureCaretVisible()
	return m.pollNotes()
}

// ensureCaretVisible scrolls the document so the caret row is on screen.
func (m *Model) ensureCaretVisible() {
	docW, _, contentH := m.layout()
	if contentH <= 0 || docW <= 0 {
		return
	}
	_, row := m.documentLines(docW)
	switch {
	case row < m.scroll:
		m.scroll = row
	case row >= m.scroll+contentH:
		m.scroll = row - contentH + 1
	}
}
