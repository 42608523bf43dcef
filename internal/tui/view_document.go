package tui

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/xonecas/tplsel/internal/dom"
	"github.com/xonecas/tplsel/internal/engine"
	"github.com/xonecas/tplsel/internal/widget"
	"golang.org/x/net/html"
)

// documentLines renders the document wrapped to width and returns the row
// holding the caret.
func (m Model) documentLines(width int) ([]string, int) {
	var out []string
	caretRow := 0
	for _, blk := range m.eng.Blocks() {
		line, before := m.renderBlock(blk)
		rows := wrapANSI(line, width)
		if blk.Caret && before >= 0 && width > 0 {
			caretRow = len(out) + min(len(rows)-1, before/width)
		}
		out = append(out, rows...)
	}
	return out, caretRow
}

// blockWriter accumulates one styled line and remembers where the caret is.
type blockWriter struct {
	b      strings.Builder
	width  int
	before int // cells before the caret, -1 until drawn
}

func (w *blockWriter) write(styled string, cells int) {
	w.b.WriteString(styled)
	w.width += cells
}

// renderBlock renders one line of the document and returns the number of
// cells before the caret, or -1 when the caret is elsewhere.
func (m Model) renderBlock(blk engine.Block) (string, int) {
	w := &blockWriter{before: -1}
	caret := func(cell string) {
		if w.before < 0 {
			w.before = w.width
		}
		w.write(m.styles.Caret.Render(cell), ansi.StringWidth(cell))
	}
	text := func(s string) {
		if s != "" {
			w.write(m.styles.Text.Render(s), ansi.StringWidth(s))
		}
	}

	for _, seg := range blk.Segments {
		at := seg.Caret
		if w.before >= 0 {
			at = -1
		}
		switch seg.Kind {
		case engine.TextSegment:
			runes := []rune(displayText(seg.Text))
			if at < 0 {
				text(string(runes))
				continue
			}
			at = min(at, len(runes))
			text(string(runes[:at]))
			if at < len(runes) {
				caret(string(runes[at]))
				text(string(runes[at+1:]))
			} else {
				caret(" ")
			}

		case engine.WidgetSegment:
			label, bad := widgetLabel(seg.Node)
			style := m.styles.Widget
			if bad {
				style = m.styles.WidgetBad
				label = "!" + label
			}
			chip := "[" + label + "]"
			if at == 0 {
				caret("[")
				chip = chip[1:]
			}
			w.write(style.Render(chip), ansi.StringWidth(chip))
			if at == 1 {
				caret(" ")
			}

		case engine.BreakSegment:
			if at == 0 {
				caret(" ")
			}
			w.write(m.styles.Dim.Render("↵"), 1)
			if at == 1 {
				caret(" ")
			}

		case engine.ObjectSegment:
			tag := "<" + seg.Node.Data + ">"
			if at == 0 {
				caret(" ")
			}
			w.write(m.styles.Dim.Render(tag), ansi.StringWidth(tag))
			if at == 1 {
				caret(" ")
			}
		}
	}
	if blk.Caret && w.before < 0 {
		caret(" ")
	}
	return w.b.String(), w.before
}

// displayText flattens source whitespace so one text node stays on one line.
func displayText(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '\n', '\r', '\t':
			return ' '
		}
		return r
	}, s)
}

// widgetLabel returns what a widget shows and whether it is flagged.
func widgetLabel(n *html.Node) (string, bool) {
	sel := dom.ControlOf(n)
	if sel == nil {
		return "?", true
	}
	bad := widget.StateOf(sel).Invalid()
	v, ok := widget.Value(sel)
	switch {
	case !ok:
		return "?", true
	case v == widget.Sentinel:
		return widget.SentinelLabel, true
	}
	return widget.Decode(v), bad
}
