package widget

import (
	"github.com/rs/zerolog/log"
	"github.com/xonecas/tplsel/internal/dom"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Reconcile rewrites every widget under root to match snapshot. Each widget's
// options are replaced wholesale rather than diffed; widget counts are small.
// It returns the number of widgets rewritten.
func Reconcile(root *html.Node, snapshot []string) int {
	controls := dom.Controls(root)
	for _, sel := range controls {
		prev, _ := Value(sel)
		res := Transition(prev, snapshot)
		apply(sel, res)
		log.Debug().
			Str("prev", prev).
			Stringer("state", res.State).
			Int("options", len(res.Options)).
			Msg("widget reconciled")
	}
	return len(controls)
}

// Select applies a user's choice of raw on sel, taking the first real option
// with that value. When the widget was flagged, the flag is cleared and the
// sentinel option removed. It reports false when raw is not one of sel's real
// options.
func Select(sel *html.Node, raw string) bool {
	for i, o := range realOptions(sel) {
		if Decode(optionValue(o)) == raw {
			return SelectAt(sel, i)
		}
	}
	return false
}

// SelectAt is Select by position among the real options, so equal values in
// the list stay distinct choices.
func SelectAt(sel *html.Node, i int) bool {
	opts := realOptions(sel)
	if i < 0 || i >= len(opts) {
		return false
	}
	for _, o := range optionNodes(sel) {
		dom.RemoveAttr(o, "selected")
	}
	dom.SetAttr(opts[i], "selected", "")

	if StateOf(sel).Invalid() {
		for _, o := range optionNodes(sel) {
			if optionValue(o) == Sentinel {
				sel.RemoveChild(o)
			}
		}
		clearError(sel)
	}
	return true
}

// Value returns the encoded value of sel's current option: the first one
// marked selected, else the first option, as a browser would.
func Value(sel *html.Node) (string, bool) {
	opts := optionNodes(sel)
	if i := selectedIndex(opts); i >= 0 {
		return optionValue(opts[i]), true
	}
	return "", false
}

// selectedIndex is the position of the current option, or -1 without options.
func selectedIndex(opts []*html.Node) int {
	for i, o := range opts {
		if _, ok := dom.Attr(o, "selected"); ok {
			return i
		}
	}
	if len(opts) > 0 {
		return 0
	}
	return -1
}

// StateOf reads the state a widget currently displays from its markup.
func StateOf(sel *html.Node) State {
	if !dom.HasClass(sel, ErrorClass) {
		return Valid
	}
	for _, o := range optionNodes(sel) {
		if optionValue(o) != Sentinel {
			return StaleSelection
		}
	}
	return EmptyList
}

// Options returns sel's options as values.
func Options(sel *html.Node) []Option {
	nodes := optionNodes(sel)
	cur := selectedIndex(nodes)
	out := make([]Option, 0, len(nodes))
	for i, o := range nodes {
		v := optionValue(o)
		isSentinel := v == Sentinel
		raw := dom.TextContent(o)
		if !isSentinel {
			raw = Decode(v)
		}
		out = append(out, Option{Raw: raw, Value: v, Selected: i == cur, Sentinel: isSentinel})
	}
	return out
}

func optionNodes(sel *html.Node) []*html.Node {
	var out []*html.Node
	for c := sel.FirstChild; c != nil; c = c.NextSibling {
		if dom.IsElement(c, atom.Option) {
			out = append(out, c)
		}
	}
	return out
}

// realOptions are sel's options other than the sentinel.
func realOptions(sel *html.Node) []*html.Node {
	var out []*html.Node
	for _, o := range optionNodes(sel) {
		if optionValue(o) != Sentinel {
			out = append(out, o)
		}
	}
	return out
}

// optionValue is the value attribute, or the text when it is missing.
func optionValue(o *html.Node) string {
	if v, ok := dom.Attr(o, "value"); ok {
		return v
	}
	return Encode(dom.TextContent(o))
}
