// Package widget renders template selection widgets and keeps them consistent
// with the template list.
package widget

import (
	"strings"

	"github.com/xonecas/tplsel/internal/dom"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Markup used for the invalid state.
const (
	SentinelLabel    = "ERROR"
	SentinelClass    = "tpl-error"
	ErrorClass       = "tpl-select--error"
	TitleEmptyList   = "Template list is empty"
	TitleStaleSelect = "Selected template was removed"
)

// Render builds a detached widget subtree for values. The option equal to
// current is selected when hasCurrent is set; otherwise none is, and the next
// reconciliation flags the widget.
func Render(values []string, current string, hasCurrent bool) *html.Node {
	wrap := dom.Element(atom.Span,
		html.Attribute{Key: "class", Val: dom.WrapClass},
		html.Attribute{Key: "contenteditable", Val: "false"},
	)
	sel := dom.Element(atom.Select, html.Attribute{Key: "class", Val: dom.SelectClass})
	wrap.AppendChild(sel)
	for _, o := range options(values, current, hasCurrent) {
		sel.AppendChild(optionNode(o))
	}
	return wrap
}

// RenderString renders a fresh widget with current selected, as markup ready
// for insertion at the caret.
func RenderString(values []string, current string) string {
	var b strings.Builder
	_ = html.Render(&b, Render(values, current, true))
	return b.String()
}

// optionNode builds an <option> element for o.
func optionNode(o Option) *html.Node {
	n := dom.Element(atom.Option, html.Attribute{Key: "value", Val: o.Value})
	if o.Sentinel {
		dom.SetAttr(n, "class", SentinelClass)
	}
	if o.Selected {
		dom.SetAttr(n, "selected", "")
	}
	n.AppendChild(dom.Text(o.Raw))
	return n
}

// apply replaces sel's options with res and sets or clears the error flag.
func apply(sel *html.Node, res Result) {
	for c := sel.FirstChild; c != nil; {
		next := c.NextSibling
		sel.RemoveChild(c)
		c = next
	}
	for _, o := range res.Options {
		sel.AppendChild(optionNode(o))
	}
	switch res.State {
	case EmptyList:
		setError(sel, TitleEmptyList)
	case StaleSelection:
		setError(sel, TitleStaleSelect)
	default:
		clearError(sel)
	}
}

func setError(sel *html.Node, title string) {
	dom.AddClass(sel, ErrorClass)
	dom.SetAttr(sel, "aria-invalid", "true")
	dom.SetAttr(sel, "title", title)
}

func clearError(sel *html.Node) {
	dom.RemoveClass(sel, ErrorClass)
	dom.RemoveAttr(sel, "aria-invalid")
	dom.RemoveAttr(sel, "title")
}
