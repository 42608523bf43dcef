package treesitter

import (
	"context"
	"os"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/html"
	"github.com/xonecas/tplsel/internal/dom"
	"github.com/xonecas/tplsel/internal/widget"
	xhtml "golang.org/x/net/html"
)

// ParseFile reads and parses a document, returning its widgets.
func ParseFile(path string) ([]Symbol, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseSource(src)
}

// ParseSource parses HTML source and returns its widgets in document order.
// Markup the grammar cannot parse still yields the widgets it recovered.
func ParseSource(src []byte) ([]Symbol, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(html.GetLanguage())

	tree, err := parser.ParseCtx(context.Background(), nil, src)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	var syms []Symbol
	walkElements(tree.RootNode(), func(el *sitter.Node) bool {
		tag, attrs := startTag(el, src)
		if tag != "span" || !hasClass(attrs["class"], dom.WrapClass) {
			return true
		}
		syms = append(syms, extractWidget(el, src))
		return false
	})
	return syms, nil
}

// walkElements calls fn for every element in preorder. Returning false skips
// the element's children.
func walkElements(n *sitter.Node, fn func(*sitter.Node) bool) {
	if n.Type() == "element" && !fn(n) {
		return
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		walkElements(n.NamedChild(i), fn)
	}
}

func extractWidget(wrap *sitter.Node, src []byte) Symbol {
	w := Symbol{
		Kind:      KindWidget,
		StartLine: line(wrap),
		EndLine:   endLine(wrap),
		Column:    column(wrap),
	}
	walkElements(wrap, func(el *sitter.Node) bool {
		tag, attrs := startTag(el, src)
		switch tag {
		case "select":
			if hasClass(attrs["class"], widget.ErrorClass) {
				w.Flagged = true
			}
		case "option":
			o := extractOption(el, attrs, src)
			if o.Selected {
				w.Name = o.Name
				w.Value = o.Value
			}
			w.Children = append(w.Children, o)
			return false
		}
		return true
	})
	return w
}

func extractOption(el *sitter.Node, attrs map[string]string, src []byte) Symbol {
	value, hasValue := attrs["value"]
	label := strings.TrimSpace(text(el, src))
	if !hasValue {
		value = label
	}
	_, selected := attrs["selected"]
	o := Symbol{
		Name:      widget.Decode(value),
		Kind:      KindOption,
		Value:     value,
		StartLine: line(el),
		EndLine:   endLine(el),
		Column:    column(el),
		Selected:  selected,
	}
	if value == widget.Sentinel {
		o.Kind = KindSentinel
		o.Name = widget.SentinelLabel
	}
	return o
}

// startTag returns the lowercased tag name and attributes of an element.
// Attributes without a value map to "".
func startTag(el *sitter.Node, src []byte) (string, map[string]string) {
	attrs := map[string]string{}
	var tag *sitter.Node
	for i := 0; i < int(el.NamedChildCount()); i++ {
		c := el.NamedChild(i)
		if c.Type() == "start_tag" || c.Type() == "self_closing_tag" {
			tag = c
			break
		}
	}
	if tag == nil {
		return "", attrs
	}
	var name string
	for i := 0; i < int(tag.NamedChildCount()); i++ {
		c := tag.NamedChild(i)
		switch c.Type() {
		case "tag_name":
			name = strings.ToLower(c.Content(src))
		case "attribute":
			k, v := attribute(c, src)
			attrs[k] = v
		}
	}
	return name, attrs
}

func attribute(n *sitter.Node, src []byte) (string, string) {
	var key, val string
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		switch c.Type() {
		case "attribute_name":
			key = strings.ToLower(c.Content(src))
		case "attribute_value":
			val = xhtml.UnescapeString(c.Content(src))
		case "quoted_attribute_value":
			if c.NamedChildCount() > 0 {
				val = xhtml.UnescapeString(c.NamedChild(0).Content(src))
			}
		}
	}
	return key, val
}

// text concatenates the text children of an element.
func text(el *sitter.Node, src []byte) string {
	var b strings.Builder
	for i := 0; i < int(el.NamedChildCount()); i++ {
		if c := el.NamedChild(i); c.Type() == "text" {
			b.WriteString(c.Content(src))
		}
	}
	return xhtml.UnescapeString(b.String())
}

func hasClass(attr, cls string) bool {
	for _, c := range strings.Fields(attr) {
		if c == cls {
			return true
		}
	}
	return false
}

func line(node *sitter.Node) int {
	return int(node.StartPoint().Row) + 1
}

func endLine(node *sitter.Node) int {
	return int(node.EndPoint().Row) + 1
}

func column(node *sitter.Node) int {
	return int(node.StartPoint().Column) + 1
}
