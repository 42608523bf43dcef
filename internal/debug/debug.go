// Package debug describes document nodes and carets for logs, and diffs
// markup before and after structural edits.
package debug

import (
	"fmt"
	"strings"

	"github.com/hexops/gotextdiff"
	"github.com/hexops/gotextdiff/myers"
	"github.com/hexops/gotextdiff/span"
	"github.com/rs/zerolog"
	"github.com/xonecas/tplsel/internal/dom"
	"golang.org/x/net/html"
)

// Path describes where n sits, e.g. "html[0] > body[1] > p[0] > span.tpl-wrap[2]".
func Path(n *html.Node) string {
	var parts []string
	for ; n != nil && n.Type != html.DocumentNode; n = n.Parent {
		switch n.Type {
		case html.TextNode:
			parts = append(parts, "#text")
		case html.CommentNode:
			parts = append(parts, "#comment")
		default:
			seg := n.Data
			if id, ok := dom.Attr(n, "id"); ok && id != "" {
				seg += "#" + id
			}
			if cls, ok := dom.Attr(n, "class"); ok {
				for _, c := range strings.Fields(cls) {
					seg += "." + c
				}
			}
			parts = append(parts, fmt.Sprintf("%s[%d]", seg, dom.IndexOf(n)))
		}
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, " > ")
}

// Short renders n as markup cut to limit bytes.
func Short(n *html.Node, limit int) string {
	if n == nil {
		return "(null)"
	}
	var b strings.Builder
	if err := html.Render(&b, n); err != nil {
		return "(unserializable)"
	}
	s := b.String()
	if limit > 0 && len(s) > limit {
		cut := limit
		for cut > 0 && !utf8Start(s[cut]) {
			cut--
		}
		return s[:cut] + "…"
	}
	return s
}

func utf8Start(b byte) bool { return b&0xC0 != 0x80 }

// CaretContext is what surrounds a caret: its container, the enclosing
// parent and the raw siblings on either side.
type CaretContext struct {
	Path       string
	Offset     int
	Text       bool
	ParentPath string
	ParentHTML string
	Left       string
	Right      string
}

// Caret collects the context of c.
func Caret(c dom.Caret) CaretContext {
	if c.Node == nil {
		return CaretContext{Path: "(no caret)"}
	}
	ctx := CaretContext{Path: Path(c.Node), Offset: c.Offset}

	parent := c.Node
	var left, right *html.Node
	if c.Node.Type == html.TextNode {
		ctx.Text = true
		parent = c.Node.Parent
		left, right = c.Node, c.Node
		if c.Offset == 0 {
			left = c.Node.PrevSibling
		}
		if c.Offset == len(c.Node.Data) {
			right = c.Node.NextSibling
		}
	} else {
		left = dom.ChildAt(c.Node, c.Offset-1)
		right = dom.ChildAt(c.Node, c.Offset)
	}
	ctx.ParentPath = Path(parent)
	ctx.ParentHTML = Short(parent, 600)
	ctx.Left = Short(left, 300)
	ctx.Right = Short(right, 300)
	return ctx
}

// MarshalZerologObject lets a context be logged with Object.
func (c CaretContext) MarshalZerologObject(e *zerolog.Event) {
	e.Str("path", c.Path).
		Int("offset", c.Offset).
		Bool("text", c.Text).
		Str("parent", c.ParentPath).
		Str("parent_html", c.ParentHTML).
		Str("left", c.Left).
		Str("right", c.Right)
}

// Markup renders the children of n one block per line, descending into
// blocks that hold other blocks, so diffs line up with paragraphs.
func Markup(n *html.Node) string {
	var lines []string
	var walk func(n *html.Node, depth int)
	walk = func(n *html.Node, depth int) {
		indent := strings.Repeat("  ", depth)
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if dom.IsBlock(c) && hasBlockChild(c) {
				shell := dom.ShallowClone(c)
				open, end := splitShell(Short(shell, 0))
				lines = append(lines, indent+open)
				walk(c, depth+1)
				lines = append(lines, indent+end)
				continue
			}
			if c.Type == html.TextNode && strings.TrimSpace(c.Data) == "" {
				continue
			}
			lines = append(lines, indent+Short(c, 0))
		}
	}
	walk(n, 0)
	return strings.Join(lines, "\n") + "\n"
}

func hasBlockChild(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if dom.IsBlock(c) {
			return true
		}
	}
	return false
}

// splitShell splits "<ul></ul>" into its opening and closing tags.
func splitShell(s string) (string, string) {
	i := strings.LastIndex(s, "</")
	if i < 0 {
		return s, ""
	}
	return s[:i], s[i:]
}

// Diff returns a unified diff from before to after, or "" when they match.
func Diff(before, after string) string {
	if before == after {
		return ""
	}
	edits := myers.ComputeEdits(span.URIFromPath("before.html"), before, after)
	return fmt.Sprint(gotextdiff.ToUnified("before.html", "after.html", before, edits))
}
