// Package engine is a headless rich-text engine over an HTML document. It
// owns the document tree and a collapsed caret, turns input intents into tree
// edits, and lets plugins intercept intents before the default behavior runs.
package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/xonecas/tplsel/internal/dom"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const defaultHistory = 100

// Level is a notification severity.
type Level int

const (
	Info Level = iota
	Warning
	Error
)

func (l Level) String() string {
	switch l {
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return "info"
	}
}

// Notification is a transient message for the user.
type Notification struct {
	Text    string
	Level   Level
	Timeout time.Duration
}

// Option configures an Engine.
type Option func(*Engine)

// WithHistory sets how many undo levels are kept.
func WithHistory(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.history = newStack[snapshot](n)
		}
	}
}

// Engine holds one document and its caret. It is not safe for concurrent use;
// callers serialize access the way a UI event loop does.
type Engine struct {
	doc   *html.Node
	body  *html.Node
	caret dom.Caret

	history *stack[snapshot]
	last    snapshot

	before  hooks[func(Intent) bool]
	changed hooks[func()]
	loaded  hooks[func()]
	notify  hooks[func(Notification)]
	notes   []Notification
}

// New returns an engine holding an empty paragraph.
func New(opts ...Option) *Engine {
	e := &Engine{history: newStack[snapshot](defaultHistory)}
	for _, opt := range opts {
		opt(e)
	}
	if err := e.Load(""); err != nil {
		// Parsing an empty string cannot fail.
		panic(err)
	}
	return e
}

// Load replaces the document with markup, parsed as the content of <body>.
// History is reset and the caret moves to the start of the document.
func (e *Engine) Load(markup string) error {
	if err := e.replace(markup); err != nil {
		return err
	}
	e.SetCaretStart(e.body)
	e.history.Clear()
	log.Debug().Int("bytes", len(markup)).Msg("document loaded")
	e.afterLoad()
	return nil
}

func (e *Engine) replace(markup string) error {
	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return fmt.Errorf("parse document: %w", err)
	}
	body := dom.FindFirst(doc, func(n *html.Node) bool { return dom.IsElement(n, atom.Body) })
	if body == nil {
		return fmt.Errorf("parse document: no body element")
	}
	normalize(body)
	e.doc, e.body = doc, body
	return nil
}

// HTML renders the body's content.
func (e *Engine) HTML() string {
	return Serialize(e.body)
}

// Serialize renders n's children as markup.
func Serialize(n *html.Node) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		_ = html.Render(&b, c)
	}
	return b.String()
}

// Body returns the live <body> node. Plugins edit it in place and call
// NodeChanged afterwards.
func (e *Engine) Body() *html.Node { return e.body }

// Selection returns the caret and whether the selection is collapsed. Ranges
// are not supported, so it is always collapsed.
func (e *Engine) Selection() (dom.Caret, bool) {
	if !e.caret.Valid() || !dom.Contains(e.body, e.caret.Node) {
		e.SetCaretStart(e.body)
	}
	return e.caret, true
}

// SetCaret places the caret at offset within node.
func (e *Engine) SetCaret(node *html.Node, offset int) {
	e.caret = dom.Caret{Node: node, Offset: offset}.Clamp()
}

// SetCaretStart places the caret at the first caret position inside node.
func (e *Engine) SetCaretStart(node *html.Node) {
	for node != nil {
		if node.Type == html.TextNode {
			e.caret = dom.Caret{Node: node}
			return
		}
		first := node.FirstChild
		if first == nil || first.Type != html.TextNode && first.Type != html.ElementNode ||
			dom.IsWidget(first) || dom.IsElement(first, atom.Br) {
			e.caret = dom.Caret{Node: node}
			return
		}
		node = first
	}
}

// OnBeforeInput registers fn to see every intent before the default behavior.
// Returning true cancels the default. Handlers run in registration order and
// the first to cancel wins.
func (e *Engine) OnBeforeInput(fn func(Intent) bool) (unsubscribe func()) {
	return e.before.add(fn)
}

// OnNodeChanged registers fn to run after every committed change.
func (e *Engine) OnNodeChanged(fn func()) (unsubscribe func()) {
	return e.changed.add(fn)
}

// OnLoad registers fn to run after the document is replaced wholesale: on
// Load, Undo and Redo. Edits fn makes become part of the loaded state and
// are not recorded as an undo level.
func (e *Engine) OnLoad(fn func()) (unsubscribe func()) {
	return e.loaded.add(fn)
}

// OnNotify registers fn to receive notifications.
func (e *Engine) OnNotify(fn func(Notification)) (unsubscribe func()) {
	return e.notify.add(fn)
}

// NodeChanged commits the current document: an undo level is recorded when
// the markup differs from the last commit, then subscribers run.
func (e *Engine) NodeChanged() {
	cur := e.snapshot()
	if cur.markup != e.last.markup {
		e.history.Push(e.last)
	}
	e.last = cur
	e.changed.each(func(fn func()) { fn() })
}

// Notify shows n to the user.
func (e *Engine) Notify(n Notification) {
	e.notes = append(e.notes, n)
	log.Debug().Stringer("level", n.Level).Str("text", n.Text).Msg("notification")
	e.notify.each(func(fn func(Notification)) { fn(n) })
}

// Notifications returns every notification shown so far, oldest first.
func (e *Engine) Notifications() []Notification {
	return append([]Notification(nil), e.notes...)
}

func (e *Engine) afterLoad() {
	e.loaded.each(func(fn func()) { fn() })
	e.last = e.snapshot()
}

// hooks is an ordered set of callbacks with idempotent removal.
type hooks[F any] struct {
	next int
	list []hook[F]
}

type hook[F any] struct {
	id int
	fn F
}

func (h *hooks[F]) add(fn F) func() {
	h.next++
	id := h.next
	h.list = append(h.list, hook[F]{id: id, fn: fn})
	return func() {
		for i, k := range h.list {
			if k.id == id {
				h.list = append(h.list[:i:i], h.list[i+1:]...)
				return
			}
		}
	}
}

func (h *hooks[F]) each(call func(F)) {
	for _, k := range append([]hook[F](nil), h.list...) {
		call(k.fn)
	}
}
