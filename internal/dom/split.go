package dom

import (
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// SplitLevel is one level of the moved range: the nodes under Parent that
// leave for the new block, in order, and the noise among them that is
// discarded instead.
type SplitLevel struct {
	Parent *html.Node
	Move   []*html.Node
	Drop   []*html.Node
}

// SplitPlan describes a paragraph break. Computing it does not touch the
// tree; Apply performs it.
type SplitPlan struct {
	Widget *html.Node // wrapper or bare select; nil for a plain break
	Before bool       // caret sits before the widget, so the widget moves too
	Block  *html.Node // block being split; a root when Wrap is set
	Wrap   bool       // Block is a root: wrap the inline run around Anchor in a <p> first
	Anchor *html.Node // node whose inline run is wrapped when Wrap is set

	// Levels run from the innermost parent outward to the child level of Block.
	Levels []SplitLevel
}

// PlanSplit resolves the widget beside c and the range of nodes a paragraph
// break must move. It reports false when no widget can be resolved, in which
// case the caller falls back to a plain paragraph break.
func PlanSplit(c Caret) (SplitPlan, bool) {
	n := Locate(c)

	var w *html.Node
	before := false
	switch {
	case IsWidget(n.Next):
		w, before = WrapperOf(n.Next), true
	case IsWidget(n.Prev):
		w = WrapperOf(n.Prev)
	}
	if w == nil || w.Parent == nil {
		return SplitPlan{}, false
	}

	block := EnclosingBlock(w)
	if block == nil {
		return SplitPlan{}, false
	}
	start := w
	if !before {
		start = w.NextSibling
	}
	p := SplitPlan{Widget: w, Before: before, Block: block, Wrap: IsRoot(block), Anchor: w}
	p.Levels = levels(block, w.Parent, start, p.Wrap)
	return p, true
}

// PlanBreak plans a plain paragraph break at an element caret: everything
// from the caret to the end of the enclosing block moves to a new block. It
// reports false for text carets (split the text first) and for carets with
// no inline content around them inside a root.
func PlanBreak(c Caret) (SplitPlan, bool) {
	if c.Node == nil || c.Node.Type != html.ElementNode {
		return SplitPlan{}, false
	}
	c = c.Clamp()

	block := c.Node
	if !IsSplittable(block) && !IsRoot(block) {
		block = EnclosingBlock(c.Node)
	}
	if block == nil {
		return SplitPlan{}, false
	}

	start := ChildAt(c.Node, c.Offset)
	anchor := start
	if anchor == nil || IsBlock(anchor) {
		anchor = ChildAt(c.Node, c.Offset-1)
	}
	p := SplitPlan{Block: block, Wrap: IsRoot(block), Anchor: anchor}
	if p.Wrap && (anchor == nil || IsBlock(anchor)) {
		return SplitPlan{}, false
	}
	p.Levels = levels(block, c.Node, start, p.Wrap)
	return p, true
}

// levels collects the moved range from start (under parent) outward to the
// child level of block.
func levels(block, parent, start *html.Node, wrap bool) []SplitLevel {
	var out []SplitLevel
	var child *html.Node
	for ; parent != nil; parent = parent.Parent {
		lvl := SplitLevel{Parent: parent}
		from := start
		if child != nil {
			from = child.NextSibling
		}
		for m := from; m != nil; m = m.NextSibling {
			if wrap && parent == block && IsBlock(m) {
				break
			}
			if IsNoise(m) {
				lvl.Drop = append(lvl.Drop, m)
			} else {
				lvl.Move = append(lvl.Move, m)
			}
		}
		out = append(out, lvl)
		if parent == block {
			break
		}
		child = parent
	}
	return out
}

// Apply performs the split and returns the caret at the start of the new
// block. Exactly one block is created; moved nodes are relocated, never
// copied. Inline ancestors between the widget and the block are recreated as
// empty shells in the new block so formatting carries over.
func (p SplitPlan) Apply() Caret {
	block := p.Block
	if p.Wrap {
		block = wrapInlineRun(p.Block, topChild(p.Block, p.Anchor))
	}

	nb := Element(blockAtom(block))
	InsertAfter(block, nb)

	var carried *html.Node
	for i, lvl := range p.Levels {
		var target *html.Node
		if i == len(p.Levels)-1 {
			target = nb
		} else {
			target = ShallowClone(lvl.Parent)
		}
		if carried != nil {
			target.AppendChild(carried)
		}
		for _, d := range lvl.Drop {
			Detach(d)
		}
		for _, m := range lvl.Move {
			Detach(m)
			target.AppendChild(m)
		}
		if target != nb {
			carried = target
		}
	}

	pruneEmptyInline(block)
	if !HasVisibleContent(block) && !hasPlaceholder(block) {
		block.AppendChild(Placeholder())
	}
	if !HasVisibleContent(nb) && !hasPlaceholder(nb) {
		nb.AppendChild(Placeholder())
	}
	return CleanAround(Caret{Node: nb, Offset: 0})
}

// blockAtom picks the tag for the new block: the same as the original.
func blockAtom(block *html.Node) atom.Atom {
	if block.DataAtom == 0 {
		return atom.P
	}
	return block.DataAtom
}

// topChild returns the ancestor of n (n included) that is a direct child of root.
func topChild(root, n *html.Node) *html.Node {
	for n != nil && n.Parent != root {
		n = n.Parent
	}
	return n
}

// wrapInlineRun moves the run of non-block siblings around anchor into a new
// <p> placed where the run was, and returns the paragraph.
func wrapInlineRun(root, anchor *html.Node) *html.Node {
	first := anchor
	for first.PrevSibling != nil && !IsBlock(first.PrevSibling) {
		first = first.PrevSibling
	}
	para := Element(atom.P)
	root.InsertBefore(para, first)
	for n := first; n != nil && !IsBlock(n); {
		next := n.NextSibling
		Detach(n)
		para.AppendChild(n)
		n = next
	}
	return para
}

// pruneEmptyInline removes inline elements under n that were emptied by the
// move. Widgets and replaced elements are kept.
func pruneEmptyInline(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		if c.Type == html.ElementNode && inlineWrappers[c.DataAtom] && !IsWidget(c) {
			pruneEmptyInline(c)
			if c.FirstChild == nil {
				Detach(c)
			}
		}
		c = next
	}
}

func hasPlaceholder(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if IsElement(c, atom.Br) {
			return true
		}
	}
	return false
}
