package tui

import (
	"path/filepath"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/x/ansi"
	"github.com/xonecas/tplsel/internal/dom"
	"github.com/xonecas/tplsel/internal/engine"
	"github.com/xonecas/tplsel/internal/plugin"
	"github.com/xonecas/tplsel/internal/store"
	"github.com/xonecas/tplsel/internal/widget"
)

func press(t *testing.T, m Model, msgs ...tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, msg := range msgs {
		var updated tea.Model
		updated, cmd = m.Update(msg)
		m = updated.(Model)
	}
	return m, cmd
}

func ctrl(r rune) tea.KeyPressMsg { return tea.KeyPressMsg{Code: r, Mod: tea.ModCtrl} }
func char(r rune) tea.KeyPressMsg { return tea.KeyPressMsg{Code: r, Text: string(r)} }
func code(r rune) tea.KeyPressMsg { return tea.KeyPressMsg{Code: r} }

func statusLine(m Model) string {
	lines := strings.Split(ansi.Strip(m.renderContent()), "\n")
	return lines[len(lines)-1]
}

func TestTyping(t *testing.T) {
	m, _ := newTestModel(t, `<p>world</p>`)
	m = resize(m, 60, 10)
	m, _ = press(t, m, char('H'), char('i'), code(tea.KeySpace))
	if got := m.eng.HTML(); got != `<p>Hi world</p>` {
		t.Errorf("HTML = %q", got)
	}
	if !m.Dirty() || !strings.Contains(statusLine(m), "untitled*") {
		t.Errorf("document not marked dirty: %q", statusLine(m))
	}
}

func TestEditingKeys(t *testing.T) {
	m, _ := newTestModel(t, `<p>abc</p>`)
	m = resize(m, 60, 10)
	m, _ = press(t, m, code(tea.KeyRight), code(tea.KeyEnter))
	if got := m.eng.HTML(); got != `<p>a</p><p>bc</p>` {
		t.Fatalf("after enter: %q", got)
	}
	m, _ = press(t, m, code(tea.KeyBackspace))
	if got := m.eng.HTML(); got != `<p>abc</p>` {
		t.Fatalf("after backspace: %q", got)
	}
	m, _ = press(t, m, code(tea.KeyDelete))
	if got := m.eng.HTML(); got != `<p>ac</p>` {
		t.Fatalf("after delete: %q", got)
	}
	m, _ = press(t, m, ctrl('z'))
	if got := m.eng.HTML(); got != `<p>abc</p>` {
		t.Errorf("after undo: %q", got)
	}
	m, _ = press(t, m, ctrl('y'))
	if got := m.eng.HTML(); got != `<p>ac</p>` {
		t.Errorf("after redo: %q", got)
	}
}

func TestInsertWidget(t *testing.T) {
	m, _ := newTestModel(t, `<p>x</p>`, "one", "two")
	m = resize(m, 60, 10)
	m, _ = press(t, m, code(tea.KeyEnd), ctrl('t'))
	if n := len(dom.Controls(m.eng.Body())); n != 1 {
		t.Fatalf("widgets = %d", n)
	}
	if !strings.Contains(ansi.Strip(m.renderContent()), "x[one]") {
		t.Errorf("widget chip not rendered:\n%s", ansi.Strip(m.renderContent()))
	}

	m, _ = press(t, m, ctrl('n'))
	v, _ := widget.Value(dom.Controls(m.eng.Body())[0])
	if widget.Decode(v) != "two" {
		t.Errorf("after cycle value = %q", v)
	}

	m, _ = press(t, m, ctrl('d'))
	if n := len(dom.Controls(m.eng.Body())); n != 0 {
		t.Errorf("widgets after delete = %d", n)
	}
}

func TestInsertWidgetEmptyListWarns(t *testing.T) {
	m, s := newTestModel(t, `<p>x</p>`, "only")
	s.RemoveAt(0)
	m = resize(m, 80, 10)
	m, cmd := press(t, m, ctrl('t'))
	if cmd == nil {
		t.Fatal("no expiry scheduled for the warning")
	}
	if !strings.Contains(statusLine(m), plugin.EmptyListWarning) {
		t.Errorf("status = %q", statusLine(m))
	}
	m, _ = press(t, m, noteExpiredMsg{seq: m.noteSeq})
	if strings.Contains(statusLine(m), plugin.EmptyListWarning) {
		t.Error("warning still shown after expiry")
	}
}

func TestStaleNoteExpiryIgnored(t *testing.T) {
	m, _ := newTestModel(t, `<p>x</p>`)
	m = resize(m, 80, 10)
	m.flashInfo("first")
	old := m.noteSeq
	m.flashInfo("second")
	m, _ = press(t, m, noteExpiredMsg{seq: old})
	if m.note == nil || m.note.Text != "second" {
		t.Errorf("note = %+v", m.note)
	}
}

func TestPanelEditsReachWidgets(t *testing.T) {
	m, s := newTestModel(t, `<p>`+widget.RenderString([]string{"a"}, "a")+`</p>`, "a")
	m = resize(m, 80, 10)
	m, _ = press(t, m, code(tea.KeyTab), char('a'))
	if s.Len() != 2 {
		t.Fatalf("store = %v", s.Get())
	}
	opts := widget.Options(dom.Controls(m.eng.Body())[0])
	if len(opts) != 2 || opts[1].Raw != "template" {
		t.Errorf("options = %+v", opts)
	}

	// Typing in the edit field must not reach the document.
	m, _ = press(t, m, code(tea.KeyEnter), char('!'), code(tea.KeyEnter))
	if got := s.Get()[1]; got != "template!" {
		t.Errorf("edited = %q", got)
	}
	if strings.HasPrefix(m.eng.HTML(), "<p>!") {
		t.Errorf("keystroke leaked into the document: %s", m.eng.HTML())
	}

	m, _ = press(t, m, code(tea.KeyTab), char('z'))
	if !strings.HasPrefix(m.eng.HTML(), "<p>z") {
		t.Errorf("typing after tab back did not reach the document: %s", m.eng.HTML())
	}
}

func TestSourceView(t *testing.T) {
	m, _ := newTestModel(t, `<p>hello</p>`)
	m = resize(m, 60, 6)
	m, _ = press(t, m, ctrl('u'))
	out := ansi.Strip(m.renderContent())
	if !strings.Contains(out, "<p") || !strings.Contains(out, "hello") || !strings.Contains(out, "  source") {
		t.Errorf("source view:\n%s", out)
	}
}

func TestSaveWithoutRepo(t *testing.T) {
	m, _ := newTestModel(t, `<p>x</p>`)
	m = resize(m, 80, 6)
	m, _ = press(t, m, ctrl('s'))
	if m.note == nil || m.note.Level != engine.Error {
		t.Errorf("note = %+v", m.note)
	}
}

func TestSaveAndOpen(t *testing.T) {
	repo, err := store.Open(filepath.Join(t.TempDir(), "t.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	if err := repo.SaveDocument("other", `<p>from db</p>`); err != nil {
		t.Fatal(err)
	}

	m, _ := newTestModel(t, `<p>x</p>`)
	m.repo = repo
	m.docName = "mine"
	m = resize(m, 80, 12)
	m, _ = press(t, m, char('y'))
	if !m.Dirty() {
		t.Fatal("edit did not dirty the document")
	}

	m, cmd := press(t, m, ctrl('s'))
	m, _ = press(t, m, cmd())
	if m.Dirty() {
		t.Error("still dirty after save")
	}
	if doc, err := repo.LoadDocument("mine"); err != nil || doc.Markup != `<p>yx</p>` {
		t.Errorf("saved = %+v, %v", doc, err)
	}

	m, _ = press(t, m, ctrl('o'))
	if m.modal == nil || len(m.modal.Items()) != 2 {
		t.Fatalf("documents modal not opened")
	}
	m, _ = press(t, m, code(tea.KeyDown), code(tea.KeyEnter))
	if m.modal != nil {
		t.Fatal("modal still open after selection")
	}
}

func TestLoadedMsg(t *testing.T) {
	m, _ := newTestModel(t, `<p>x</p>`, "a")
	m = resize(m, 80, 8)
	m, _ = press(t, m, loadedMsg{name: "doc", markup: `<p>` + widget.RenderString([]string{"gone"}, "gone") + `</p>`})
	if m.docName != "doc" || m.Dirty() {
		t.Errorf("name = %q dirty = %v", m.docName, m.Dirty())
	}
	if !strings.Contains(statusLine(m), "flagged: 1") {
		t.Errorf("status = %q", statusLine(m))
	}
}

func TestHelpModal(t *testing.T) {
	m, _ := newTestModel(t, `<p>x</p>`)
	m = resize(m, 80, 20)
	m, _ = press(t, m, ctrl('h'))
	if m.modal == nil || len(m.modal.Items()) != len(keyBindings()) {
		t.Fatal("help modal not opened")
	}
	if !strings.Contains(ansi.Strip(m.modal.View(m.width, m.height)), "ctrl+t") {
		t.Error("help modal does not list ctrl+t")
	}
	m, _ = press(t, m, code(tea.KeyEscape))
	if m.modal != nil {
		t.Error("esc did not close the modal")
	}
}

func TestScrollFollowsCaret(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 20; i++ {
		b.WriteString("<p>line</p>")
	}
	m, _ := newTestModel(t, b.String())
	m = resize(m, 60, 7)
	for i := 0; i < 10; i++ {
		m, _ = press(t, m, code(tea.KeyDown))
	}
	_, _, contentH := m.layout()
	if m.scroll == 0 || m.scroll+contentH <= 10 {
		t.Errorf("scroll = %d with caret on line 10", m.scroll)
	}
}
