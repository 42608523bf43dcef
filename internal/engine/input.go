package engine

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	"github.com/xonecas/tplsel/internal/dom"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Intent is an editing request from the user, offered to before-input
// handlers and then applied by the engine.
type Intent interface {
	Name() string
}

// InsertParagraph breaks the current block at the caret.
type InsertParagraph struct{}

// InsertText types Text at the caret.
type InsertText struct{ Text string }

// DeleteBackward removes what precedes the caret.
type DeleteBackward struct{}

// DeleteForward removes what follows the caret.
type DeleteForward struct{}

func (InsertParagraph) Name() string { return "insertParagraph" }
func (InsertText) Name() string      { return "insertText" }
func (DeleteBackward) Name() string  { return "deleteContentBackward" }
func (DeleteForward) Name() string   { return "deleteContentForward" }

// Input offers in to the before-input handlers and, unless one of them
// cancels it, applies the default behavior and commits the change.
func (e *Engine) Input(in Intent) error {
	for _, h := range append([]hook[func(Intent) bool](nil), e.before.list...) {
		if h.fn(in) {
			log.Debug().Str("intent", in.Name()).Msg("input handled by plugin")
			return nil
		}
	}

	switch in := in.(type) {
	case InsertParagraph:
		cur, _ := e.Selection()
		e.InsertParagraphAt(cur)
	case InsertText:
		if in.Text == "" {
			return nil
		}
		e.insertText(in.Text)
	case DeleteBackward:
		if !e.deleteBackward() {
			return nil
		}
	case DeleteForward:
		if !e.deleteForward() {
			return nil
		}
	default:
		return fmt.Errorf("unsupported intent %T", in)
	}
	e.NodeChanged()
	return nil
}

// InsertParagraphAt breaks the block holding c in two and moves the caret to
// the start of the second half. It does not commit; callers follow up with
// NodeChanged.
func (e *Engine) InsertParagraphAt(c dom.Caret) {
	c = e.splitText(c.Clamp())
	if plan, ok := dom.PlanBreak(c); ok {
		nc := plan.Apply()
		e.SetCaret(nc.Node, nc.Offset)
		return
	}

	// Between blocks inside a root: add an empty paragraph there.
	p := dom.Element(atom.P)
	p.AppendChild(dom.Placeholder())
	parent := c.Node
	if parent == nil {
		parent = e.body
	}
	parent.InsertBefore(p, dom.ChildAt(parent, c.Offset))
	e.SetCaret(p, 0)
}

// splitText turns a caret inside a text node into an element caret, cutting
// the text node in two when the caret is in its middle.
func (e *Engine) splitText(c dom.Caret) dom.Caret {
	t := c.Node
	if t == nil || t.Type != html.TextNode || t.Parent == nil {
		return c
	}
	idx := dom.IndexOf(t)
	switch c.Offset {
	case 0:
		return dom.Caret{Node: t.Parent, Offset: idx}
	case len(t.Data):
		return dom.Caret{Node: t.Parent, Offset: idx + 1}
	}
	tail := dom.Text(t.Data[c.Offset:])
	t.Data = t.Data[:c.Offset]
	dom.InsertAfter(t, tail)
	return dom.Caret{Node: t.Parent, Offset: idx + 1}
}

func (e *Engine) insertText(s string) {
	cur, _ := e.Selection()
	st := e.stops()
	if at := st.nearest(cur); at >= 0 && cur.Node.Type != html.TextNode {
		cur = st.items[at].caret
	}

	if t := cur.Node; t.Type == html.TextNode {
		t.Data = t.Data[:cur.Offset] + s + t.Data[cur.Offset:]
		e.SetCaret(t, cur.Offset+len(s))
		dropPlaceholders(e.lineOf(t))
		return
	}

	parent, idx := cur.Node, cur.Offset
	if prev := dom.ChildAt(parent, idx-1); prev != nil && prev.Type == html.TextNode {
		prev.Data += s
		e.SetCaret(prev, len(prev.Data))
	} else if next := dom.ChildAt(parent, idx); next != nil && next.Type == html.TextNode {
		next.Data = s + next.Data
		e.SetCaret(next, len(s))
	} else {
		t := dom.Text(s)
		parent.InsertBefore(t, dom.ChildAt(parent, idx))
		e.SetCaret(t, len(s))
	}
	dropPlaceholders(e.lineOf(parent))
}

// deleteBackward removes the rune, widget or break before the caret, or
// joins the line with the previous one. It reports whether anything changed.
func (e *Engine) deleteBackward() bool {
	st := e.stops()
	cur, _ := e.Selection()
	at := st.nearest(cur)
	if at < 0 {
		return false
	}
	s := st.items[at]

	if s.leaf != nil && s.leaf.Type == html.TextNode && s.off > 0 {
		_, size := utf8.DecodeLastRuneInString(s.leaf.Data[:s.off])
		e.cutText(s.leaf, s.off-size, s.off)
		return true
	}
	if s.leaf != nil && s.leaf.Type != html.TextNode && s.off == 1 {
		e.removeLeaf(s.leaf)
		return true
	}

	line := e.lines()[s.line]
	lv := leaves(line)
	i := indexOf(lv, s.leaf)
	if i > 0 {
		prev := lv[i-1]
		if prev.Type == html.TextNode {
			_, size := utf8.DecodeLastRuneInString(prev.Data)
			e.cutText(prev, len(prev.Data)-size, len(prev.Data))
		} else {
			e.removeLeaf(prev)
		}
		return true
	}
	if s.line == 0 {
		return false
	}
	e.joinLines(e.lines()[s.line-1], line)
	return true
}

// deleteForward removes the rune, widget or break after the caret, or joins
// the next line into this one.
func (e *Engine) deleteForward() bool {
	st := e.stops()
	cur, _ := e.Selection()
	at := st.nearest(cur)
	if at < 0 {
		return false
	}
	s := st.items[at]

	if s.leaf != nil && s.leaf.Type == html.TextNode && s.off < len(s.leaf.Data) {
		_, size := utf8.DecodeRuneInString(s.leaf.Data[s.off:])
		e.cutText(s.leaf, s.off, s.off+size)
		return true
	}
	if s.leaf != nil && s.leaf.Type != html.TextNode && s.off == 0 {
		e.removeLeaf(s.leaf)
		return true
	}

	lines := e.lines()
	lv := leaves(lines[s.line])
	i := indexOf(lv, s.leaf)
	if s.leaf != nil && i+1 < len(lv) {
		next := lv[i+1]
		if next.Type == html.TextNode {
			_, size := utf8.DecodeRuneInString(next.Data)
			e.SetCaret(next, 0)
			e.cutText(next, 0, size)
		} else {
			e.removeLeaf(next)
		}
		return true
	}
	if s.line+1 >= len(lines) {
		return false
	}
	e.joinLines(lines[s.line], lines[s.line+1])
	return true
}

// cutText removes t.Data[from:to] and leaves the caret at from.
func (e *Engine) cutText(t *html.Node, from, to int) {
	t.Data = t.Data[:from] + t.Data[to:]
	if t.Data != "" {
		e.SetCaret(t, from)
		return
	}
	parent, idx := t.Parent, dom.IndexOf(t)
	line := e.lineOf(t)
	dom.Detach(t)
	e.SetCaret(parent, idx)
	fillEmpty(line)
}

// removeLeaf deletes a widget, break or object as a whole.
func (e *Engine) removeLeaf(n *html.Node) {
	if dom.IsWidget(n) {
		n = dom.WrapperOf(n)
	}
	parent, idx := n.Parent, dom.IndexOf(n)
	line := e.lineOf(n)
	dom.Detach(n)
	e.SetCaret(parent, idx)
	fillEmpty(line)
	log.Debug().Str("node", n.Data).Msg("atomic node removed")
}

// DeleteWidget removes the widget containing n and leaves the caret where it
// was. It reports false when n is not part of a widget. The change is
// committed.
func (e *Engine) DeleteWidget(n *html.Node) bool {
	w := dom.WrapperOf(n)
	if w == nil || !dom.Contains(e.body, w) {
		return false
	}
	e.removeLeaf(w)
	e.NodeChanged()
	return true
}

// joinLines moves next's content to the end of prev and removes next.
func (e *Engine) joinLines(prev, next *html.Node) {
	dropPlaceholders(prev)
	dropPlaceholders(next)
	at := dom.ChildCount(prev)
	for c := next.FirstChild; c != nil; {
		n := c.NextSibling
		dom.Detach(c)
		prev.AppendChild(c)
		c = n
	}
	// Remove next and any containers it leaves empty (a list item's list).
	for n := next; n != nil && n != e.body && n.FirstChild == nil; {
		parent := n.Parent
		dom.Detach(n)
		n = parent
	}
	fillEmpty(prev)
	e.SetCaret(prev, at)
}

// InsertContent parses markup as a body fragment and inserts it at the caret,
// splitting a text node when the caret is inside one. The caret ends up after
// the inserted content. The change is committed.
func (e *Engine) InsertContent(markup string) error {
	ctx := dom.Element(atom.Body)
	nodes, err := html.ParseFragment(strings.NewReader(markup), ctx)
	if err != nil {
		return fmt.Errorf("parse fragment: %w", err)
	}
	if len(nodes) == 0 {
		return nil
	}

	cur, _ := e.Selection()
	c := e.splitText(cur)
	if c.Node == e.body {
		// Never place inline content straight into body.
		e.InsertParagraphAt(c)
		c, _ = e.Selection()
	}
	line := e.lineOf(c.Node)
	if line == nil && isLine(c.Node) {
		line = c.Node
	}
	dropPlaceholdersAt(&c, line)

	ref := dom.ChildAt(c.Node, c.Offset)
	for _, n := range nodes {
		c.Node.InsertBefore(n, ref)
	}
	last := nodes[len(nodes)-1]
	e.SetCaret(last.Parent, dom.IndexOf(last)+1)
	log.Debug().Int("nodes", len(nodes)).Msg("content inserted")
	e.NodeChanged()
	return nil
}

// lineOf returns the line containing n (n included).
func (e *Engine) lineOf(n *html.Node) *html.Node {
	for p := n; p != nil; p = p.Parent {
		if isLine(p) {
			return p
		}
	}
	return nil
}

// dropPlaceholders removes bogus breaks from a line that gained content.
func dropPlaceholders(line *html.Node) {
	if line == nil {
		return
	}
	for _, br := range dom.FindAll(line, dom.IsPlaceholder) {
		dom.Detach(br)
	}
}

// dropPlaceholdersAt is dropPlaceholders keeping an element caret in line
// pointing at the same position.
func dropPlaceholdersAt(c *dom.Caret, line *html.Node) {
	if line == nil {
		return
	}
	for _, br := range dom.FindAll(line, dom.IsPlaceholder) {
		if br.Parent == c.Node && dom.IndexOf(br) < c.Offset {
			c.Offset--
		}
		dom.Detach(br)
	}
}

// fillEmpty gives a line left without visible content a placeholder.
func fillEmpty(line *html.Node) {
	if line == nil || dom.HasVisibleContent(line) {
		return
	}
	for c := line.FirstChild; c != nil; c = c.NextSibling {
		if dom.IsElement(c, atom.Br) {
			return
		}
	}
	line.AppendChild(dom.Placeholder())
}

func indexOf(list []*html.Node, n *html.Node) int {
	for i, m := range list {
		if m == n {
			return i
		}
	}
	return -1
}
