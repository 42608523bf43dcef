package dom

import (
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Markup contract for embedded widgets:
//
//	<span class="tpl-wrap" contenteditable="false"><select class="tpl-select">…</select></span>
const (
	WrapClass   = "tpl-wrap"
	SelectClass = "tpl-select"
)

// IsWidget reports whether n is part of a widget: the wrapper, the select
// control, or anything nested inside either. This is the one predicate every
// caret, adjacency, split and reconcile path uses.
func IsWidget(n *html.Node) bool {
	return WrapperOf(n) != nil
}

// WrapperOf returns the outermost widget node containing n (n included): the
// wrapper when there is one, otherwise a bare select control. It returns nil
// when n is not inside a widget.
func WrapperOf(n *html.Node) *html.Node {
	var found *html.Node
	for p := n; p != nil; p = p.Parent {
		if p.Type != html.ElementNode {
			continue
		}
		if HasClass(p, WrapClass) {
			return p
		}
		if found == nil && p.DataAtom == atom.Select {
			found = p
		}
	}
	return found
}

// ControlOf returns the select control of the widget containing n, or nil.
func ControlOf(n *html.Node) *html.Node {
	w := WrapperOf(n)
	if w == nil {
		return nil
	}
	if w.DataAtom == atom.Select {
		return w
	}
	return FindFirst(w, func(c *html.Node) bool { return IsElement(c, atom.Select) })
}

// Controls returns every widget select control under root in document order.
func Controls(root *html.Node) []*html.Node {
	return FindAll(root, func(n *html.Node) bool {
		return IsElement(n, atom.Select) && HasClass(n, SelectClass)
	})
}
