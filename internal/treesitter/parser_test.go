package treesitter

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/xonecas/tplsel/internal/widget"
)

func TestParseSource(t *testing.T) {
	src := []byte(`<p>Dear
  <span class="tpl-wrap" contenteditable="false"><select class="tpl-select"><option value="a%20b" selected>a b</option><option value="c">c</option></select></span>,
</p>
<p>` + widget.RenderString([]string{"x"}, "x") + `</p>
`)
	syms, err := ParseSource(src)
	if err != nil {
		t.Fatalf("ParseSource: %v", err)
	}
	if len(syms) != 2 {
		t.Fatalf("widgets = %d, want 2", len(syms))
	}

	w := syms[0]
	if w.Kind != KindWidget || w.StartLine != 2 || w.Column != 3 {
		t.Errorf("first widget at %s kind %v", w.Pos(), w.Kind)
	}
	if w.Name != "a b" || w.Value != "a%20b" || w.Flagged {
		t.Errorf("first widget = %+v", w)
	}
	if len(w.Children) != 2 || !w.Children[0].Selected || w.Children[1].Name != "c" {
		t.Errorf("options = %+v", w.Children)
	}
	if syms[1].StartLine != 4 || syms[1].Name != "x" {
		t.Errorf("second widget = %+v", syms[1])
	}
}

func TestParseSourceFlagged(t *testing.T) {
	src := `<p><span class="tpl-wrap" contenteditable="false"><select class="tpl-select tpl-select--error" aria-invalid="true">` +
		`<option value="%ERR%" class="tpl-error" selected>ERROR</option><option value="b">b</option></select></span></p>`
	syms, err := ParseSource([]byte(src))
	if err != nil {
		t.Fatal(err)
	}
	if len(syms) != 1 {
		t.Fatalf("widgets = %d", len(syms))
	}
	w := syms[0]
	if !w.Flagged || w.Value != widget.Sentinel {
		t.Errorf("widget = %+v", w)
	}
	if w.Children[0].Kind != KindSentinel {
		t.Errorf("first option kind = %v", w.Children[0].Kind)
	}
	if got := FormatWidget(w); got != "1:4 widget ERROR (flagged) [b]" {
		t.Errorf("FormatWidget = %q", got)
	}
}

func TestParseSourceIgnoresPlainSelects(t *testing.T) {
	syms, err := ParseSource([]byte(`<form><select><option>a</option></select></form>`))
	if err != nil {
		t.Fatal(err)
	}
	if len(syms) != 0 {
		t.Errorf("widgets = %+v", syms)
	}
}

func TestFormatOutline(t *testing.T) {
	snap := map[string][]Symbol{
		"b.html": nil,
		"a.html": {{
			Name: "greeting", Value: "greeting", Kind: KindWidget, StartLine: 3, Column: 12,
			Children: []Symbol{{Name: "greeting", Kind: KindOption}, {Name: "sign-off", Kind: KindOption}},
		}},
	}
	want := "a.html:\n  3:12 widget \"greeting\" [greeting, sign-off]\nb.html:\n  (no widgets)\n"
	if got := FormatOutline(snap); got != want {
		t.Errorf("FormatOutline =\n%s\nwant\n%s", got, want)
	}
}

func TestIndexBuild(t *testing.T) {
	root := t.TempDir()
	write := func(rel, body string) {
		t.Helper()
		p := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(p), 0750); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(body), 0600); err != nil {
			t.Fatal(err)
		}
	}
	write("one.html", `<p>`+widget.RenderString([]string{"a"}, "a")+`</p>`)
	write("sub/two.htm", `<p>plain</p>`)
	write("notes.txt", `<p>`+widget.RenderString([]string{"a"}, "a")+`</p>`)
	write(".hidden/three.html", `<p>`+widget.RenderString([]string{"a"}, "a")+`</p>`)
	write(".gitignore", "out/\n")
	write("out/four.html", `<p>`+widget.RenderString([]string{"a"}, "a")+`</p>`)

	idx := NewIndex(root)
	if err := idx.Build(); err != nil {
		t.Fatalf("Build: %v", err)
	}
	if files := idx.Files(); !slices.Equal(files, []string{"one.html", "sub/two.htm"}) {
		t.Fatalf("files = %v", files)
	}
	if n := len(idx.Symbols("one.html")); n != 1 {
		t.Errorf("one.html widgets = %d", n)
	}

	write("sub/two.htm", `<p>`+widget.RenderString([]string{"a", "b"}, "b")+`</p>`)
	idx.UpdateFile(filepath.Join(root, "sub", "two.htm"))
	syms := idx.Snapshot(false)["sub/two.htm"]
	if len(syms) != 1 || syms[0].Name != "b" {
		t.Errorf("after update = %+v", syms)
	}
	if out := FormatOutline(idx.Snapshot(false)); !strings.Contains(out, "one.html:") {
		t.Errorf("outline:\n%s", out)
	}

	if n := len(idx.Snapshot(true)); n != 0 {
		t.Errorf("flagged documents = %d, want 0", n)
	}
	write("bad.html", `<p><span class="tpl-wrap" contenteditable="false"><select class="tpl-select `+
		widget.ErrorClass+`"><option value="`+widget.Sentinel+`" selected>`+widget.SentinelLabel+
		`</option><option value="a">a</option></select></span></p>`)
	idx.UpdateFile(filepath.Join(root, "bad.html"))
	flagged := idx.Snapshot(true)
	if len(flagged) != 1 || len(flagged["bad.html"]) != 1 {
		t.Errorf("flagged = %v", flagged)
	}
}
