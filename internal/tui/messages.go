package tui

import (
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/xonecas/tplsel/internal/engine"
)

// noteExpiredMsg hides the notification shown under seq.
type noteExpiredMsg struct{ seq int }

// copiedMsg reports the outcome of copying the markup.
type copiedMsg struct{ err error }

// savedMsg reports the outcome of saving the document.
type savedMsg struct {
	name   string
	markup string
	err    error
}

// loadedMsg carries a document read from the database.
type loadedMsg struct {
	name   string
	markup string
	err    error
}

const (
	noteTimeout  = 3 * time.Second
	errorTimeout = 5 * time.Second
)

// flash shows n in the status bar until its timeout.
func (m *Model) flash(n engine.Notification) tea.Cmd {
	if n.Timeout <= 0 {
		n.Timeout = noteTimeout
	}
	m.note = &n
	m.noteSeq++
	seq := m.noteSeq
	return tea.Tick(n.Timeout, func(time.Time) tea.Msg {
		return noteExpiredMsg{seq: seq}
	})
}

// pollNotes shows the newest engine notification raised since the last poll.
func (m *Model) pollNotes() tea.Cmd {
	notes := m.eng.Notifications()
	if len(notes) <= m.seenNotes {
		return nil
	}
	m.seenNotes = len(notes)
	return m.flash(notes[len(notes)-1])
}

func (m *Model) flashError(text string) tea.Cmd {
	return m.flash(engine.Notification{Text: text, Level: engine.Error, Timeout: errorTimeout})
}

func (m *Model) flashInfo(text string) tea.Cmd {
	return m.flash(engine.Notification{Text: text, Level: engine.Info, Timeout: noteTimeout})
}
