package plugin

import (
	"strings"
	"testing"
	"time"

	"github.com/xonecas/tplsel/internal/dom"
	"github.com/xonecas/tplsel/internal/engine"
	"github.com/xonecas/tplsel/internal/templates"
	"github.com/xonecas/tplsel/internal/widget"
	"golang.org/x/net/html/atom"
)

const ph = `<br data-mce-bogus="1"/>`

func setup(t *testing.T, markup string, values ...string) (*engine.Engine, *templates.Store, *Plugin) {
	t.Helper()
	s := templates.New(values...)
	e := engine.New()
	p := Attach(e, s)
	t.Cleanup(p.Detach)
	if err := e.Load(markup); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return e, s, p
}

func wantHTML(t *testing.T, e *engine.Engine, want string) {
	t.Helper()
	if got := e.HTML(); got != want {
		t.Errorf("HTML =\n%s\nwant\n%s", got, want)
	}
}

func onlyState(t *testing.T, e *engine.Engine) widget.State {
	t.Helper()
	controls := dom.Controls(e.Body())
	if len(controls) != 1 {
		t.Fatalf("widgets = %d, want 1", len(controls))
	}
	return widget.StateOf(controls[0])
}

func TestStoreChangesReachWidgets(t *testing.T) {
	e, s, _ := setup(t, `<p>x`+widget.RenderString([]string{"a", "b"}, "b")+`</p>`, "a", "b")
	if st := onlyState(t, e); st != widget.Valid {
		t.Fatalf("loaded state = %v", st)
	}

	s.RemoveAt(1)
	if st := onlyState(t, e); st != widget.StaleSelection {
		t.Errorf("after removing the selection: %v, want StaleSelection", st)
	}
	if !e.CanUndo() {
		t.Error("reconciliation was not committed")
	}

	s.RemoveAt(0)
	if st := onlyState(t, e); st != widget.EmptyList {
		t.Errorf("after emptying the list: %v, want EmptyList", st)
	}
}

func TestUndoKeepsWidgetsInSync(t *testing.T) {
	e, s, _ := setup(t, `<p>`+widget.RenderString([]string{"a", "b"}, "b")+`</p>`, "a", "b")
	s.RemoveAt(1)
	if !e.Undo() {
		t.Fatal("Undo failed")
	}
	// The restored markup predates the removal; loading reconciles it again.
	if st := onlyState(t, e); st != widget.StaleSelection {
		t.Errorf("state after undo = %v, want StaleSelection", st)
	}
}

func TestLoadReconcilesWithCurrentList(t *testing.T) {
	e, _, _ := setup(t, `<p>`+widget.RenderString([]string{"gone"}, "gone")+`</p>`, "a")
	if st := onlyState(t, e); st != widget.StaleSelection {
		t.Errorf("state = %v, want StaleSelection", st)
	}
	if e.CanUndo() {
		t.Error("load-time reconciliation left an undo level")
	}
}

func TestInsertDropdown(t *testing.T) {
	e, _, p := setup(t, ``, "first", "second")
	if err := p.InsertDropdown(); err != nil {
		t.Fatal(err)
	}
	wantHTML(t, e, `<p>`+widget.RenderString([]string{"first", "second"}, "first")+`</p>`)
	if len(e.Notifications()) != 0 {
		t.Errorf("unexpected notifications: %+v", e.Notifications())
	}
}

func TestInsertDropdownEmptyList(t *testing.T) {
	e, s, p := setup(t, `<p>text</p>`, "x")
	s.RemoveAt(0)

	if err := p.InsertDropdown(); err != nil {
		t.Fatal(err)
	}
	wantHTML(t, e, `<p>text</p>`)
	notes := e.Notifications()
	if len(notes) != 1 {
		t.Fatalf("notifications = %+v", notes)
	}
	want := engine.Notification{Text: EmptyListWarning, Level: engine.Warning, Timeout: 3 * time.Second}
	if notes[0] != want {
		t.Errorf("notification = %+v, want %+v", notes[0], want)
	}
}

// Enter after a widget followed only by noise.
func TestEnterAfterWidgetThroughNoise(t *testing.T) {
	w := widget.RenderString([]string{"a"}, "a")
	e, _, _ := setup(t, `<p>foo `+w+`<span data-mce-type="bookmark"></span>`+"\u200b"+`</p><p>next</p>`, "a")
	p := e.Body().FirstChild
	e.SetCaret(p, dom.ChildCount(p))

	if err := e.Input(engine.InsertParagraph{}); err != nil {
		t.Fatal(err)
	}
	wantHTML(t, e, `<p>foo `+w+`</p><p>`+ph+`</p><p>next</p>`)
	c, _ := e.Selection()
	if c.Node != p.NextSibling || c.Offset != 0 {
		t.Errorf("caret not at the start of the new block")
	}
	if !e.CanUndo() {
		t.Error("split was not committed")
	}
}

// Caret in a zero-width text node before the widget.
func TestEnterBeforeWidgetFromZeroWidthText(t *testing.T) {
	w := widget.RenderString([]string{"a"}, "a")
	e, _, _ := setup(t, `<p>foo`+w+` tail</p>`, "a")
	p := e.Body().FirstChild
	wrapper := p.FirstChild.NextSibling
	zw := dom.Text("\u200b")
	p.InsertBefore(zw, wrapper)
	e.SetCaret(zw, len(zw.Data))

	if err := e.Input(engine.InsertParagraph{}); err != nil {
		t.Fatal(err)
	}
	wantHTML(t, e, `<p>foo`+"\u200b"+`</p><p>`+w+` tail</p>`)
	if n := strings.Count(e.HTML(), dom.WrapClass); n != 1 {
		t.Errorf("widgets = %d, want 1", n)
	}
}

// A widget with no block or root above it cannot be split around, so the break
// degrades to a blank paragraph at the caret.
func TestSplitWithoutBlockInsertsPlainParagraph(t *testing.T) {
	e, _, p := setup(t, `<p>text</p>`, "a")
	span := dom.Element(atom.Span)
	span.AppendChild(dom.Text("x"))
	w := widget.Render([]string{"a"}, "a", true)
	span.AppendChild(w)
	c := dom.Caret{Node: span, Offset: 2}

	if !dom.AdjacentToWidget(c) {
		t.Fatal("caret not adjacent to the widget")
	}
	if _, ok := dom.PlanSplit(c); ok {
		t.Fatal("PlanSplit resolved a block for a detached widget")
	}
	if !p.split(c) {
		t.Fatal("split reported no change")
	}

	np := span.LastChild
	if !dom.IsElement(np, atom.P) || !dom.IsPlaceholder(np.FirstChild) || np.FirstChild.NextSibling != nil {
		t.Fatalf("expected a blank paragraph after the widget, got %+v", np)
	}
	if np.PrevSibling != w {
		t.Error("widget moved")
	}
	wantHTML(t, e, `<p>text</p>`)
}

func TestEnterAwayFromWidgetUsesDefault(t *testing.T) {
	e, _, _ := setup(t, `<p>abcd</p>`, "a")
	e.SetCaret(e.Body().FirstChild.FirstChild, 2)
	if err := e.Input(engine.InsertParagraph{}); err != nil {
		t.Fatal(err)
	}
	wantHTML(t, e, `<p>ab</p><p>cd</p>`)
}

func TestOtherIntentsPassThrough(t *testing.T) {
	w := widget.RenderString([]string{"a"}, "a")
	e, _, _ := setup(t, `<p>`+w+`</p>`, "a")
	e.CaretLineEnd()
	if err := e.Input(engine.InsertText{Text: "x"}); err != nil {
		t.Fatal(err)
	}
	wantHTML(t, e, `<p>`+w+`x</p>`)
}

func TestSelectOptionHeals(t *testing.T) {
	e, s, p := setup(t, `<p>`+widget.RenderString([]string{"a", "b"}, "b")+`</p>`, "a", "b")
	s.RemoveAt(1)
	sel := dom.Controls(e.Body())[0]

	if p.SelectOption(sel, "b") {
		t.Error("selected a removed template")
	}
	if !p.SelectOption(sel, "a") {
		t.Fatal("SelectOption(a) failed")
	}
	if st := onlyState(t, e); st != widget.Valid {
		t.Errorf("state = %v, want Valid", st)
	}
}

func TestCycle(t *testing.T) {
	e, _, p := setup(t, `<p>`+widget.RenderString([]string{"a", "b", "c"}, "a")+`</p>`, "a", "b", "c")
	sel := dom.Controls(e.Body())[0]

	tests := []struct {
		delta int
		want  string
	}{
		{1, "b"},
		{1, "c"},
		{1, "a"},
		{-1, "c"},
	}
	for _, tt := range tests {
		if !p.Cycle(sel, tt.delta) {
			t.Fatalf("Cycle(%d) failed", tt.delta)
		}
		v, _ := widget.Value(sel)
		if widget.Decode(v) != tt.want {
			t.Errorf("after Cycle(%d) value = %q, want %q", tt.delta, widget.Decode(v), tt.want)
		}
	}
}

func TestCycleThroughDuplicates(t *testing.T) {
	e, _, p := setup(t, `<p>`+widget.RenderString([]string{"a", "a", "b"}, "a")+`</p>`, "a", "a", "b")
	sel := dom.Controls(e.Body())[0]
	selectedAt := func() int {
		for i, o := range widget.Options(sel) {
			if o.Selected {
				return i
			}
		}
		return -1
	}

	tests := []struct {
		delta int
		want  int
	}{
		{1, 1},
		{1, 2},
		{1, 0},
		{-1, 2},
		{-1, 1},
	}
	for _, tt := range tests {
		if !p.Cycle(sel, tt.delta) {
			t.Fatalf("Cycle(%d) failed", tt.delta)
		}
		if got := selectedAt(); got != tt.want {
			t.Errorf("after Cycle(%d) selection at %d, want %d", tt.delta, got, tt.want)
		}
	}
	if v, _ := widget.Value(sel); widget.Decode(v) != "a" {
		t.Errorf("value = %q, want a", widget.Decode(v))
	}
}

func TestCycleFromFlaggedWidget(t *testing.T) {
	e, s, p := setup(t, `<p>`+widget.RenderString([]string{"a", "b", "z"}, "z")+`</p>`, "a", "b", "z")
	s.RemoveAt(2)
	sel := dom.Controls(e.Body())[0]
	if !p.Cycle(sel, -1) {
		t.Fatal("Cycle failed")
	}
	v, _ := widget.Value(sel)
	if widget.Decode(v) != "b" || widget.StateOf(sel) != widget.Valid {
		t.Errorf("value = %q state = %v", widget.Decode(v), widget.StateOf(sel))
	}
}

func TestWidgetAtCaretAndDelete(t *testing.T) {
	w := widget.RenderString([]string{"a"}, "a")
	e, _, p := setup(t, `<p>x`+w+`</p>`, "a")
	if p.WidgetAtCaret() != nil {
		t.Error("widget found at the start of text")
	}
	e.CaretLineEnd()
	sel := p.WidgetAtCaret()
	if sel == nil {
		t.Fatal("no widget before the caret")
	}
	if !p.DeleteWidget(sel) {
		t.Fatal("DeleteWidget failed")
	}
	wantHTML(t, e, `<p>x</p>`)
}

func TestDetachStopsReconciling(t *testing.T) {
	w := widget.RenderString([]string{"a"}, "a")
	e, s, p := setup(t, `<p>`+w+`</p>`, "a")
	p.Detach()
	p.Detach()
	s.RemoveAt(0)
	if st := onlyState(t, e); st != widget.Valid {
		t.Errorf("detached plugin still reconciled: %v", st)
	}
	if s.Listeners() != 0 {
		t.Errorf("listeners = %d after detach", s.Listeners())
	}
}
