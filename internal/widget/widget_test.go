package widget

import (
	"strings"
	"testing"

	"github.com/xonecas/tplsel/internal/dom"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	values := []string{
		"plain",
		"with space",
		`<b>"quoted" & 'single'</b>`,
		"100% sure",
		"a+b=c?d#e/f",
		"tab\tnew\nline",
		"ünïcødé ✓",
		"%ERR%",
		"__ERR__",
		"",
	}
	for _, v := range values {
		enc := Encode(v)
		if got := Decode(enc); got != v {
			t.Errorf("Decode(Encode(%q)) = %q", v, got)
		}
		if enc == Sentinel {
			t.Errorf("Encode(%q) collides with the sentinel", v)
		}
		if strings.ContainsAny(enc, `<>"'&+ `) {
			t.Errorf("Encode(%q) = %q leaves markup characters", v, enc)
		}
	}
}

func TestEncodeSpaces(t *testing.T) {
	if got := Encode("a b"); got != "a%20b" {
		t.Errorf("Encode(%q) = %q, want %q", "a b", got, "a%20b")
	}
}

func TestDecodeMalformed(t *testing.T) {
	if got := Decode("%zz"); got != "%zz" {
		t.Errorf("Decode(malformed) = %q", got)
	}
}

func TestTransition(t *testing.T) {
	tests := []struct {
		name     string
		prev     string
		snapshot []string
		state    State
		want     []Option
	}{
		{
			name:     "empty list",
			prev:     Encode("a"),
			snapshot: nil,
			state:    EmptyList,
			want:     []Option{SentinelOption(true)},
		},
		{
			name:     "previous present",
			prev:     Encode("b"),
			snapshot: []string{"a", "b"},
			state:    Valid,
			want: []Option{
				{Raw: "a", Value: "a"},
				{Raw: "b", Value: "b", Selected: true},
			},
		},
		{
			name:     "previous removed",
			prev:     Encode("b"),
			snapshot: []string{"a"},
			state:    StaleSelection,
			want: []Option{
				SentinelOption(true),
				{Raw: "a", Value: "a"},
			},
		},
		{
			name:     "sentinel stays flagged",
			prev:     Sentinel,
			snapshot: []string{"a"},
			state:    StaleSelection,
			want: []Option{
				SentinelOption(true),
				{Raw: "a", Value: "a"},
			},
		},
		{
			name:     "encoded value compared decoded",
			prev:     Encode("x y"),
			snapshot: []string{"x y"},
			state:    Valid,
			want:     []Option{{Raw: "x y", Value: "x%20y", Selected: true}},
		},
		{
			name:     "duplicates select first",
			prev:     "d",
			snapshot: []string{"d", "d"},
			state:    Valid,
			want: []Option{
				{Raw: "d", Value: "d", Selected: true},
				{Raw: "d", Value: "d"},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Transition(tt.prev, tt.snapshot)
			if res.State != tt.state {
				t.Errorf("state = %v, want %v", res.State, tt.state)
			}
			if len(res.Options) != len(tt.want) {
				t.Fatalf("options = %+v, want %+v", res.Options, tt.want)
			}
			for i := range tt.want {
				if res.Options[i] != tt.want[i] {
					t.Errorf("option %d = %+v, want %+v", i, res.Options[i], tt.want[i])
				}
			}
		})
	}
}

// doc parses markup into a body node.
func doc(t *testing.T, markup string) *html.Node {
	t.Helper()
	root, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	body := dom.FindFirst(root, func(n *html.Node) bool { return dom.IsElement(n, atom.Body) })
	if body == nil {
		t.Fatal("no body")
	}
	return body
}

func render(t *testing.T, n *html.Node) string {
	t.Helper()
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&b, c); err != nil {
			t.Fatalf("render: %v", err)
		}
	}
	return b.String()
}

func TestRenderString(t *testing.T) {
	got := RenderString([]string{"a", "b <c>"}, "b <c>")
	want := `<span class="tpl-wrap" contenteditable="false"><select class="tpl-select">` +
		`<option value="a">a</option>` +
		`<option value="b%20%3Cc%3E" selected="">b &lt;c&gt;</option>` +
		`</select></span>`
	if got != want {
		t.Errorf("RenderString =\n%s\nwant\n%s", got, want)
	}
}

func TestRenderWithoutCurrent(t *testing.T) {
	w := Render([]string{"a", "b"}, "", false)
	sel := dom.ControlOf(w)
	for _, o := range Options(sel) {
		if o.Raw == "" {
			t.Fatal("unexpected empty option")
		}
	}
	for c := sel.FirstChild; c != nil; c = c.NextSibling {
		if _, ok := dom.Attr(c, "selected"); ok {
			t.Errorf("option %q selected without a current value", dom.TextContent(c))
		}
	}
}

// Removing the only template empties every widget.
func TestReconcileEmptyList(t *testing.T) {
	body := doc(t, "<p>"+RenderString([]string{"only"}, "only")+" and "+RenderString([]string{"only"}, "only")+"</p>")

	if n := Reconcile(body, nil); n != 2 {
		t.Fatalf("Reconcile touched %d widgets, want 2", n)
	}
	for _, sel := range dom.Controls(body) {
		if StateOf(sel) != EmptyList {
			t.Errorf("state = %v, want EmptyList", StateOf(sel))
		}
		opts := Options(sel)
		if len(opts) != 1 || !opts[0].Sentinel || !opts[0].Selected {
			t.Errorf("options = %+v, want lone selected sentinel", opts)
		}
		if v, _ := dom.Attr(sel, "aria-invalid"); v != "true" {
			t.Error("aria-invalid not set")
		}
		if !dom.HasClass(sel, ErrorClass) {
			t.Error("error class not set")
		}
	}
}

// Removing the selected template leaves a stale selection.
func TestReconcileStaleSelection(t *testing.T) {
	body := doc(t, "<p>"+RenderString([]string{"a", "b"}, "b")+"</p>")

	Reconcile(body, []string{"a"})

	sel := dom.Controls(body)[0]
	if StateOf(sel) != StaleSelection {
		t.Fatalf("state = %v, want StaleSelection", StateOf(sel))
	}
	opts := Options(sel)
	if len(opts) != 2 {
		t.Fatalf("options = %+v", opts)
	}
	if !opts[0].Sentinel || !opts[0].Selected {
		t.Errorf("first option = %+v, want selected sentinel", opts[0])
	}
	if opts[1].Raw != "a" || opts[1].Selected {
		t.Errorf("second option = %+v, want unselected a", opts[1])
	}
	if v, _ := dom.Attr(sel, "title"); v != TitleStaleSelect {
		t.Errorf("title = %q", v)
	}
}

func TestReconcileIdempotent(t *testing.T) {
	snapshots := [][]string{nil, {"a"}, {"a", "b"}, {"c"}}
	for _, snap := range snapshots {
		body := doc(t, "<p>"+RenderString([]string{"a", "b"}, "b")+"</p>")
		Reconcile(body, snap)
		once := render(t, body)
		Reconcile(body, snap)
		if twice := render(t, body); twice != once {
			t.Errorf("snapshot %q not idempotent:\n%s\n%s", snap, once, twice)
		}
	}
}

func TestReconcileValidKeepsSelection(t *testing.T) {
	body := doc(t, "<p>"+RenderString([]string{"a", "b"}, "b")+"</p>")
	Reconcile(body, []string{"z", "b", "a"})
	sel := dom.Controls(body)[0]
	if StateOf(sel) != Valid {
		t.Fatalf("state = %v", StateOf(sel))
	}
	v, _ := Value(sel)
	if Decode(v) != "b" {
		t.Errorf("value = %q, want b", v)
	}
	if len(Options(sel)) != 3 {
		t.Errorf("options = %+v", Options(sel))
	}
}

func TestSelectHealsInvalidWidget(t *testing.T) {
	body := doc(t, "<p>"+RenderString([]string{"a", "b"}, "b")+"</p>")
	Reconcile(body, []string{"a"})
	sel := dom.Controls(body)[0]

	if Select(sel, "missing") {
		t.Fatal("Select accepted an unknown value")
	}
	if !Select(sel, "a") {
		t.Fatal("Select rejected a real value")
	}
	if StateOf(sel) != Valid {
		t.Errorf("state = %v, want Valid", StateOf(sel))
	}
	for _, o := range Options(sel) {
		if o.Sentinel {
			t.Error("sentinel option still present")
		}
	}
	if _, ok := dom.Attr(sel, "aria-invalid"); ok {
		t.Error("aria-invalid still set")
	}
	if _, ok := dom.Attr(sel, "title"); ok {
		t.Error("title still set")
	}
	if !dom.HasClass(sel, dom.SelectClass) {
		t.Error("select lost its widget class")
	}
}

func TestSelectAtDuplicates(t *testing.T) {
	body := doc(t, "<p>"+RenderString([]string{"a", "a", "b"}, "a")+"</p>")
	sel := dom.Controls(body)[0]

	selectedAt := func() int {
		for i, o := range Options(sel) {
			if o.Selected {
				return i
			}
		}
		return -1
	}
	if got := selectedAt(); got != 0 {
		t.Fatalf("initial selection at %d, want 0", got)
	}
	if !SelectAt(sel, 1) {
		t.Fatal("SelectAt(1) failed")
	}
	if got := selectedAt(); got != 1 {
		t.Errorf("selection at %d, want 1", got)
	}
	if v, _ := Value(sel); Decode(v) != "a" {
		t.Errorf("value = %q, want a", v)
	}
	if SelectAt(sel, 3) || SelectAt(sel, -1) {
		t.Error("SelectAt accepted an out-of-range index")
	}
	if !Select(sel, "a") || selectedAt() != 0 {
		t.Errorf("Select(a) should pick the first match, got %d", selectedAt())
	}
}

func TestSelectAtSkipsSentinel(t *testing.T) {
	body := doc(t, "<p>"+RenderString([]string{"a", "b"}, "b")+"</p>")
	Reconcile(body, []string{"x", "y"})
	sel := dom.Controls(body)[0]
	if !SelectAt(sel, 1) {
		t.Fatal("SelectAt failed")
	}
	if v, _ := Value(sel); Decode(v) != "y" || StateOf(sel) != Valid {
		t.Errorf("value = %q state = %v", v, StateOf(sel))
	}
}

func TestEmptyListThenRefill(t *testing.T) {
	body := doc(t, "<p>"+RenderString([]string{"a"}, "a")+"</p>")
	Reconcile(body, nil)
	Reconcile(body, []string{"x", "y"})

	sel := dom.Controls(body)[0]
	if StateOf(sel) != StaleSelection {
		t.Fatalf("state = %v, want StaleSelection", StateOf(sel))
	}
	if !Select(sel, "y") {
		t.Fatal("Select(y) failed")
	}
	v, _ := Value(sel)
	if v != "y" || StateOf(sel) != Valid {
		t.Errorf("value=%q state=%v", v, StateOf(sel))
	}
}
