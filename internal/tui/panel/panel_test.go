package panel

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/x/ansi"
	"github.com/xonecas/tplsel/internal/templates"
)

var testColors = Colors{Fg: "#ccc", Bg: "#000", Dim: "#666", SelFg: "#fff", SelBg: "#444", Border: "#555"}

func key(ch rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: ch, Text: string(ch)}
}

func special(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

func newPanel(t *testing.T, values ...string) (*Model, *templates.Store) {
	t.Helper()
	s := templates.New(values...)
	m := New(s, testColors)
	t.Cleanup(m.Close)
	return m, s
}

func TestFollowsStore(t *testing.T) {
	m, s := newPanel(t, "a", "b")
	if got := strings.Join(m.Items(), ","); got != "a,b" {
		t.Fatalf("items = %q", got)
	}
	s.Add("c")
	if got := strings.Join(m.Items(), ","); got != "a,b,c" {
		t.Errorf("items after Add = %q", got)
	}
}

func TestAddSelectsLast(t *testing.T) {
	m, s := newPanel(t, "a")
	m.Add()
	if got := s.Get(); len(got) != 2 || got[1] != "template" {
		t.Fatalf("store = %v", got)
	}
	if m.Selected() != 1 {
		t.Errorf("selected = %d, want 1", m.Selected())
	}
}

func TestDeleteSelectsPrevious(t *testing.T) {
	tests := []struct {
		name     string
		values   []string
		selected int
		want     int
		left     string
	}{
		{"middle", []string{"a", "b", "c"}, 1, 0, "a,c"},
		{"last", []string{"a", "b", "c"}, 2, 1, "a,b"},
		{"first", []string{"a", "b"}, 0, 0, "b"},
		{"only", []string{"a"}, 0, 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, s := newPanel(t, tt.values...)
			m.Select(tt.selected)
			m.Delete()
			if m.Selected() != tt.want {
				t.Errorf("selected = %d, want %d", m.Selected(), tt.want)
			}
			if got := strings.Join(s.Get(), ","); got != tt.left {
				t.Errorf("store = %q, want %q", got, tt.left)
			}
		})
	}
}

func TestDeleteOnEmptyList(t *testing.T) {
	m, s := newPanel(t, "a")
	m.Delete()
	m.Delete()
	if s.Len() != 0 || m.Selected() != 0 {
		t.Errorf("len = %d selected = %d", s.Len(), m.Selected())
	}
}

func TestSelectionClampsOnExternalRemoval(t *testing.T) {
	m, s := newPanel(t, "a", "b", "c")
	m.Select(2)
	s.RemoveAt(2)
	if m.Selected() != 1 {
		t.Errorf("selected = %d, want 1", m.Selected())
	}
	m.Select(-5)
	if m.Selected() != 0 {
		t.Errorf("selected = %d, want 0", m.Selected())
	}
}

func TestCommitTrimsAndIgnoresBlank(t *testing.T) {
	m, s := newPanel(t, "a", "b")
	m.Select(1)

	m.StartEdit()
	if !m.Editing() {
		t.Fatal("not editing")
	}
	m.input.SetValue("   renamed  ")
	m.Commit()
	if got := s.Get()[1]; got != "renamed" {
		t.Errorf("value = %q", got)
	}

	m.StartEdit()
	m.input.SetValue("   ")
	m.Commit()
	if got := s.Get()[1]; got != "renamed" {
		t.Errorf("blank commit changed value to %q", got)
	}
	if m.Editing() {
		t.Error("still editing after commit")
	}
}

func TestKeys(t *testing.T) {
	m, s := newPanel(t, "a", "b")
	m.Focus()

	m.Update(special(tea.KeyDown))
	if m.Selected() != 1 {
		t.Errorf("down: selected = %d", m.Selected())
	}
	m.Update(key('a'))
	if s.Len() != 3 || m.Selected() != 2 {
		t.Errorf("add: len = %d selected = %d", s.Len(), m.Selected())
	}
	m.Update(key('d'))
	if s.Len() != 2 || m.Selected() != 1 {
		t.Errorf("delete: len = %d selected = %d", s.Len(), m.Selected())
	}

	m.Update(special(tea.KeyEnter))
	if !m.Editing() {
		t.Fatal("enter did not start editing")
	}
	m.Update(key('!'))
	m.Update(special(tea.KeyEnter))
	if got := s.Get()[1]; got != "b!" {
		t.Errorf("edited value = %q", got)
	}

	if handled, _ := m.Update(key('x')); handled {
		t.Error("unbound key was consumed")
	}
}

func TestEscCancelsEdit(t *testing.T) {
	m, s := newPanel(t, "a")
	m.StartEdit()
	m.Update(key('z'))
	m.Update(special(tea.KeyEscape))
	if m.Editing() || s.Get()[0] != "a" {
		t.Errorf("editing = %v value = %q", m.Editing(), s.Get()[0])
	}
}

func TestView(t *testing.T) {
	m, _ := newPanel(t, "first", "second")
	m.Select(1)
	lines := m.View(20, 6)
	if len(lines) != 6 {
		t.Fatalf("lines = %d, want 6", len(lines))
	}
	for i, l := range lines {
		if w := ansi.StringWidth(l); w != 20 {
			t.Errorf("line %d width = %d: %q", i, w, ansi.Strip(l))
		}
	}
	if !strings.Contains(ansi.Strip(lines[2]), "> second") {
		t.Errorf("selected row = %q", ansi.Strip(lines[2]))
	}
}

func TestCloseUnsubscribes(t *testing.T) {
	m, s := newPanel(t, "a")
	m.Close()
	m.Close()
	if s.Listeners() != 0 {
		t.Errorf("listeners = %d", s.Listeners())
	}
}
