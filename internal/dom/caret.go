package dom

import (
	"golang.org/x/net/html"
)

// Caret is a collapsed caret position. For a text container Offset is a byte
// offset into Data; for an element it indexes the children.
type Caret struct {
	Node   *html.Node
	Offset int
}

// Valid reports whether the caret points at a node.
func (c Caret) Valid() bool { return c.Node != nil }

// Clamp returns c with Offset limited to the container's bounds.
func (c Caret) Clamp() Caret {
	if c.Node == nil {
		return c
	}
	limit := len(c.Node.Data)
	if c.Node.Type != html.TextNode {
		limit = ChildCount(c.Node)
	}
	if c.Offset < 0 {
		c.Offset = 0
	}
	if c.Offset > limit {
		c.Offset = limit
	}
	return c
}

// Neighbors are the nearest real nodes on either side of a caret. Either may
// be nil.
type Neighbors struct {
	Prev *html.Node
	Next *html.Node
}

// Locate finds the nearest non-noise siblings before and after c, walking
// outward over noise within the same parent.
//
// In a text container, offset 0 looks at the text node's previous sibling and
// offset len(Data) at its next sibling; offsets in between have no neighbor.
// A text container that is itself noise is looked through on both sides.
func Locate(c Caret) Neighbors {
	if c.Node == nil {
		return Neighbors{}
	}
	c = c.Clamp()

	var prev, next *html.Node
	if c.Node.Type == html.TextNode {
		blank := IsBlankText(c.Node.Data)
		if c.Offset == 0 || blank {
			prev = c.Node.PrevSibling
		}
		if c.Offset == len(c.Node.Data) || blank {
			next = c.Node.NextSibling
		}
	} else {
		if c.Offset > 0 {
			prev = ChildAt(c.Node, c.Offset-1)
		}
		next = ChildAt(c.Node, c.Offset)
	}

	for prev != nil && IsNoise(prev) {
		prev = prev.PrevSibling
	}
	for next != nil && IsNoise(next) {
		next = next.NextSibling
	}
	return Neighbors{Prev: prev, Next: next}
}

// AdjacentToWidget reports whether the caret sits immediately beside a widget,
// ignoring noise in between. This gates replacing the default paragraph break.
func AdjacentToWidget(c Caret) bool {
	n := Locate(c)
	return IsWidget(n.Prev) || IsWidget(n.Next)
}

// CleanAround removes noise siblings directly around c and returns the caret
// adjusted for the removed nodes. Text containers are left untouched except
// for their noise neighbors at the matching edge. Placeholders stay, since
// they keep an empty block open.
func CleanAround(c Caret) Caret {
	if c.Node == nil {
		return c
	}
	c = c.Clamp()

	if c.Node.Type == html.TextNode {
		if c.Offset == 0 {
			for p := c.Node.PrevSibling; removable(p); {
				prev := p.PrevSibling
				Detach(p)
				p = prev
			}
		}
		if c.Offset == len(c.Node.Data) {
			for n := c.Node.NextSibling; removable(n); {
				next := n.NextSibling
				Detach(n)
				n = next
			}
		}
		return c
	}

	for c.Offset > 0 {
		p := ChildAt(c.Node, c.Offset-1)
		if !removable(p) {
			break
		}
		Detach(p)
		c.Offset--
	}
	for n := ChildAt(c.Node, c.Offset); removable(n); n = ChildAt(c.Node, c.Offset) {
		Detach(n)
	}
	return c
}

func removable(n *html.Node) bool {
	return n != nil && IsNoise(n) && !IsPlaceholder(n)
}
