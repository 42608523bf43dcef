// Package plugin binds the template list to an editor: widgets follow every
// list change, a paragraph break next to a widget splits the block around it,
// and widgets can be inserted, chosen from and deleted.
package plugin

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/xonecas/tplsel/internal/debug"
	"github.com/xonecas/tplsel/internal/dom"
	"github.com/xonecas/tplsel/internal/engine"
	"github.com/xonecas/tplsel/internal/templates"
	"github.com/xonecas/tplsel/internal/widget"
	"golang.org/x/net/html"
)

// EmptyListWarning is shown when a widget is requested with no templates.
const EmptyListWarning = "The template list is empty."

// Plugin is attached to one engine and one store. Its methods and the store
// listener it registers touch the engine, so store mutations must happen on
// the goroutine that owns the engine.
type Plugin struct {
	eng   *engine.Engine
	store *templates.Store
	undo  []func()
}

// Attach wires s to e. Existing widgets are reconciled right away.
func Attach(e *engine.Engine, s *templates.Store) *Plugin {
	p := &Plugin{eng: e, store: s}
	p.undo = append(p.undo,
		e.OnBeforeInput(p.beforeInput),
		e.OnLoad(p.reconcileLoaded),
		s.OnChange(p.reconcile),
	)
	log.Debug().Int("templates", s.Len()).Msg("plugin attached")
	return p
}

// Detach removes every hook Attach registered. It is safe to call twice.
func (p *Plugin) Detach() {
	for _, fn := range p.undo {
		fn()
	}
	p.undo = nil
}

// reconcile is the store listener: rewrite every widget, then commit.
func (p *Plugin) reconcile(snapshot []string) {
	p.structural("reconcile", func() bool {
		return widget.Reconcile(p.eng.Body(), snapshot) > 0
	})
}

// reconcileLoaded brings a freshly loaded or restored document in line with
// the current list. The engine folds this into the loaded state.
func (p *Plugin) reconcileLoaded() {
	widget.Reconcile(p.eng.Body(), p.store.Get())
}

// beforeInput takes over paragraph breaks next to a widget.
func (p *Plugin) beforeInput(in engine.Intent) bool {
	if _, ok := in.(engine.InsertParagraph); !ok {
		return false
	}
	c, collapsed := p.eng.Selection()
	if !collapsed || !dom.AdjacentToWidget(c) {
		return false
	}
	if tracing() {
		log.Debug().Object("caret", debug.Caret(c)).Msg("paragraph break beside widget")
	}

	p.structural("split", func() bool { return p.split(c) })
	return true
}

// split breaks the paragraph at c around the adjacent widget. When no
// enclosing block can be resolved for the widget, it falls back to a plain
// paragraph at the caret.
func (p *Plugin) split(c dom.Caret) bool {
	plan, ok := dom.PlanSplit(c)
	if !ok {
		log.Debug().Msg("no widget resolved, plain paragraph break")
		p.eng.InsertParagraphAt(c)
		return true
	}
	nc := plan.Apply()
	p.eng.SetCaret(nc.Node, nc.Offset)
	return true
}

// structural runs edit and, when it reports a change, commits it. At debug
// level the markup diff is logged.
func (p *Plugin) structural(op string, edit func() bool) {
	var before string
	trace := tracing()
	if trace {
		before = debug.Markup(p.eng.Body())
	}
	if !edit() {
		return
	}
	if trace {
		log.Debug().
			Str("op", op).
			Str("diff", debug.Diff(before, debug.Markup(p.eng.Body()))).
			Msg("document changed")
	}
	p.eng.NodeChanged()
}

// tracing reports whether debug output is on.
func tracing() bool {
	return zerolog.GlobalLevel() <= zerolog.DebugLevel && log.Logger.GetLevel() <= zerolog.DebugLevel
}

// InsertDropdown inserts a widget with the first template selected at the
// caret. With no templates it shows a warning and inserts nothing.
func (p *Plugin) InsertDropdown() error {
	values := p.store.Get()
	if len(values) == 0 {
		p.eng.Notify(engine.Notification{
			Text:    EmptyListWarning,
			Level:   engine.Warning,
			Timeout: 3 * time.Second,
		})
		return nil
	}
	return p.eng.InsertContent(widget.RenderString(values, values[0]))
}

// SelectOption makes raw the choice of the widget containing n and commits.
// A flagged widget heals. It reports false when raw is not offered.
func (p *Plugin) SelectOption(n *html.Node, raw string) bool {
	sel := dom.ControlOf(n)
	if sel == nil {
		return false
	}
	if !widget.Select(sel, raw) {
		return false
	}
	p.eng.NodeChanged()
	return true
}

// Cycle moves the widget containing n delta options through its real
// options, wrapping around. A flagged widget starts from before the first
// option.
func (p *Plugin) Cycle(n *html.Node, delta int) bool {
	sel := dom.ControlOf(n)
	if sel == nil {
		return false
	}
	var real []widget.Option
	cur := -1
	for _, o := range widget.Options(sel) {
		if o.Sentinel {
			continue
		}
		if o.Selected {
			cur = len(real)
		}
		real = append(real, o)
	}
	if len(real) == 0 {
		return false
	}
	next := cur + delta
	if cur < 0 && delta < 0 {
		next = len(real) + delta
	}
	next = ((next % len(real)) + len(real)) % len(real)
	if !widget.SelectAt(sel, next) {
		return false
	}
	p.eng.NodeChanged()
	return true
}

// DeleteWidget removes the widget containing n.
func (p *Plugin) DeleteWidget(n *html.Node) bool {
	return p.eng.DeleteWidget(n)
}

// WidgetAtCaret returns the select control right after the caret, else the
// one right before it, or nil.
func (p *Plugin) WidgetAtCaret() *html.Node {
	c, _ := p.eng.Selection()
	nb := dom.Locate(c)
	if dom.IsWidget(nb.Next) {
		return dom.ControlOf(nb.Next)
	}
	if dom.IsWidget(nb.Prev) {
		return dom.ControlOf(nb.Prev)
	}
	return nil
}
