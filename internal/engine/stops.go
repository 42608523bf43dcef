package engine

import (
	"math"
	"unicode/utf8"

	"github.com/xonecas/tplsel/internal/dom"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// SegmentKind tells what a Segment renders.
type SegmentKind int

const (
	TextSegment SegmentKind = iota
	WidgetSegment
	BreakSegment
	ObjectSegment
)

// Segment is one leaf of a line: a text node, a widget, a line break or a
// replaced element such as an image.
type Segment struct {
	Kind SegmentKind
	Node *html.Node // text node, widget wrapper, <br> or the replaced element
	Text string     // text content for TextSegment

	// Caret is where the caret sits in this segment, or -1. Text segments
	// count runes; other segments use 0 for before and 1 for after.
	Caret int
}

// Block is one line of the document: a block holding inline content only.
type Block struct {
	Node     *html.Node
	Segments []Segment
	Caret    bool // caret is on this line
}

// Blocks flattens the document into lines for rendering.
func (e *Engine) Blocks() []Block {
	cur, _ := e.Selection()
	st := e.stops()
	at := st.nearest(cur)

	lines := e.lines()
	out := make([]Block, len(lines))
	for i, ln := range lines {
		b := Block{Node: ln}
		for _, lf := range leaves(ln) {
			seg := Segment{Node: lf, Caret: -1}
			switch {
			case lf.Type == html.TextNode:
				seg.Kind, seg.Text = TextSegment, lf.Data
			case dom.IsWidget(lf):
				seg.Kind = WidgetSegment
			case dom.IsElement(lf, atom.Br):
				seg.Kind = BreakSegment
			default:
				seg.Kind = ObjectSegment
			}
			b.Segments = append(b.Segments, seg)
		}
		if at >= 0 && st.items[at].line == i {
			b.Caret = true
			s := st.items[at]
			for j := range b.Segments {
				if b.Segments[j].Node == s.leaf {
					if s.leaf.Type == html.TextNode {
						b.Segments[j].Caret = utf8.RuneCountInString(s.leaf.Data[:s.off])
					} else {
						b.Segments[j].Caret = s.off
					}
				}
			}
		}
		out[i] = b
	}
	return out
}

// lines returns the line blocks in document order.
func (e *Engine) lines() []*html.Node {
	return dom.FindAll(e.body, isLine)
}

// leaves returns the inline leaves of a line in order: non-empty text that is
// not noise, widgets, line breaks and other childless elements. Trailing
// placeholders are omitted.
func leaves(line *html.Node) []*html.Node {
	var out []*html.Node
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			switch {
			case dom.IsNoise(c):
			case c.Type == html.TextNode:
				out = append(out, c)
			case c.Type != html.ElementNode:
			case dom.IsWidget(c):
				out = append(out, dom.WrapperOf(c))
			case c.FirstChild == nil:
				out = append(out, c)
			default:
				walk(c)
			}
		}
	}
	walk(line)
	if len(out) > 0 && dom.IsPlaceholder(out[len(out)-1]) {
		out = out[:len(out)-1]
	}
	return out
}

// stop is one caret position a user can move to.
type stop struct {
	caret dom.Caret
	line  int
	leaf  *html.Node // nil on an empty line
	off   int        // byte offset in a text leaf; 0 before or 1 after other leaves
	key   key
}

// stopList is every caret stop of a document plus the node ordering used to
// place arbitrary carets among them.
type stopList struct {
	items []stop
	ord   ordering
}

// stops enumerates every distinct caret position in the document. Where two
// carets look the same (end of one text node, start of the next) only the
// first is kept.
func (e *Engine) stops() stopList {
	l := stopList{ord: order(e.body)}
	add := func(c dom.Caret, line int, leaf *html.Node, off int) {
		l.items = append(l.items, stop{caret: c, line: line, leaf: leaf, off: off, key: l.ord.of(c)})
	}
	for li, ln := range e.lines() {
		lv := leaves(ln)
		if len(lv) == 0 {
			add(dom.Caret{Node: ln}, li, nil, 0)
			continue
		}
		for i, lf := range lv {
			prevText := i > 0 && lv[i-1].Type == html.TextNode
			if lf.Type == html.TextNode {
				off := 0
				if prevText {
					_, off = utf8.DecodeRuneInString(lf.Data)
				}
				for {
					add(dom.Caret{Node: lf, Offset: off}, li, lf, off)
					if off >= len(lf.Data) {
						break
					}
					_, size := utf8.DecodeRuneInString(lf.Data[off:])
					off += size
				}
				continue
			}
			if !prevText {
				add(dom.Caret{Node: lf.Parent, Offset: dom.IndexOf(lf)}, li, lf, 0)
			}
			if i+1 == len(lv) || lv[i+1].Type != html.TextNode {
				add(dom.Caret{Node: lf.Parent, Offset: dom.IndexOf(lf) + 1}, li, lf, 1)
			}
		}
	}
	return l
}

// nearest returns the index of the stop a caret displays at: the last stop
// at or before it, or the first stop. It returns -1 for an empty list.
func (l stopList) nearest(c dom.Caret) int {
	if len(l.items) == 0 {
		return -1
	}
	if !c.Valid() {
		return 0
	}
	k := l.ord.of(c)
	at := 0
	for i, s := range l.items {
		if s.caret == c {
			return i
		}
		if !k.less(s.key) {
			at = i
		}
	}
	return at
}

// MoveCaret moves the caret by delta positions, crossing lines. A widget is
// a single position wide.
func (e *Engine) MoveCaret(delta int) {
	st := e.stops()
	cur, _ := e.Selection()
	at := st.nearest(cur)
	if at < 0 {
		return
	}
	at = clamp(at+delta, 0, len(st.items)-1)
	e.caret = st.items[at].caret
}

// MoveLine moves the caret delta lines up or down, keeping its column where
// the target line is long enough.
func (e *Engine) MoveLine(delta int) {
	st := e.stops()
	cur, _ := e.Selection()
	at := st.nearest(cur)
	if at < 0 {
		return
	}
	line := st.items[at].line
	col := at - st.lineStart(line)
	target := clamp(line+delta, 0, st.items[len(st.items)-1].line)
	first := st.lineStart(target)
	last := st.lineEnd(target)
	e.caret = st.items[clamp(first+col, first, last)].caret
}

// CaretLineStart moves the caret to the start of its line.
func (e *Engine) CaretLineStart() {
	st := e.stops()
	cur, _ := e.Selection()
	if at := st.nearest(cur); at >= 0 {
		e.caret = st.items[st.lineStart(st.items[at].line)].caret
	}
}

// CaretLineEnd moves the caret to the end of its line.
func (e *Engine) CaretLineEnd() {
	st := e.stops()
	cur, _ := e.Selection()
	if at := st.nearest(cur); at >= 0 {
		e.caret = st.items[st.lineEnd(st.items[at].line)].caret
	}
}

// CaretLine returns the index of the line holding the caret.
func (e *Engine) CaretLine() int {
	st := e.stops()
	cur, _ := e.Selection()
	if at := st.nearest(cur); at >= 0 {
		return st.items[at].line
	}
	return 0
}

func (l stopList) lineStart(line int) int {
	for i, s := range l.items {
		if s.line == line {
			return i
		}
	}
	return 0
}

func (l stopList) lineEnd(line int) int {
	end := 0
	for i, s := range l.items {
		if s.line == line {
			end = i
		}
	}
	return end
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

// key orders carets in the document. A caret before child c sorts just ahead
// of c; a caret after the last child sorts after the whole subtree.
type key struct {
	node int
	off  int
}

func (a key) less(b key) bool {
	if a.node != b.node {
		return a.node < b.node
	}
	return a.off < b.off
}

// ordering numbers nodes in preorder.
type ordering struct {
	pre  map[*html.Node]int
	last map[*html.Node]int // highest preorder number inside the subtree
}

func order(root *html.Node) ordering {
	o := ordering{pre: map[*html.Node]int{}, last: map[*html.Node]int{}}
	i := 0
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		o.pre[n] = i
		i++
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		o.last[n] = i - 1
	}
	walk(root)
	return o
}

func (o ordering) of(c dom.Caret) key {
	if c.Node == nil {
		return key{}
	}
	if c.Node.Type == html.TextNode {
		return key{node: o.pre[c.Node], off: c.Offset}
	}
	if child := dom.ChildAt(c.Node, c.Offset); child != nil {
		return key{node: o.pre[child], off: -1}
	}
	return key{node: o.last[c.Node], off: math.MaxInt}
}
