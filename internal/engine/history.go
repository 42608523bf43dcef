package engine

import (
	"github.com/rs/zerolog/log"
	"github.com/xonecas/tplsel/internal/dom"
	"golang.org/x/net/html"
)

// stack is a bounded undo/redo stack. Undo and Redo trade the state being
// left for the one being restored.
type stack[S any] struct {
	undo    []S
	redo    []S
	maxSize int
}

func newStack[S any](maxSize int) *stack[S] {
	return &stack[S]{maxSize: maxSize}
}

// Push saves a state onto the undo stack, clearing redo history.
func (s *stack[S]) Push(state S) {
	if len(s.undo) >= s.maxSize {
		// Evict oldest
		s.undo = s.undo[1:]
	}
	s.undo = append(s.undo, state)
	s.redo = s.redo[:0]
}

// Undo pops the most recent state and parks current for Redo.
func (s *stack[S]) Undo(current S) (S, bool) {
	if len(s.undo) == 0 {
		var zero S
		return zero, false
	}
	last := s.undo[len(s.undo)-1]
	s.undo = s.undo[:len(s.undo)-1]
	s.redo = append(s.redo, current)
	return last, true
}

// Redo re-applies the most recently undone state and parks current for Undo.
func (s *stack[S]) Redo(current S) (S, bool) {
	if len(s.redo) == 0 {
		var zero S
		return zero, false
	}
	last := s.redo[len(s.redo)-1]
	s.redo = s.redo[:len(s.redo)-1]
	s.undo = append(s.undo, current)
	return last, true
}

func (s *stack[S]) Clear() {
	s.undo = s.undo[:0]
	s.redo = s.redo[:0]
}

func (s *stack[S]) CanUndo() bool { return len(s.undo) > 0 }
func (s *stack[S]) CanRedo() bool { return len(s.redo) > 0 }

// snapshot is a committed document with its caret stored as a child-index
// path from <body>, since nodes do not survive a reparse.
type snapshot struct {
	markup string
	path   []int
	offset int
}

func (e *Engine) snapshot() snapshot {
	s := snapshot{markup: e.HTML()}
	if e.caret.Valid() && dom.Contains(e.body, e.caret.Node) {
		s.path = pathTo(e.body, e.caret.Node)
		s.offset = e.caret.Offset
	}
	return s
}

// Undo restores the previous committed document. It reports false when there
// is nothing to undo.
func (e *Engine) Undo() bool {
	prev, ok := e.history.Undo(e.last)
	if !ok {
		return false
	}
	e.restore(prev)
	return true
}

// Redo reapplies the most recently undone change.
func (e *Engine) Redo() bool {
	next, ok := e.history.Redo(e.last)
	if !ok {
		return false
	}
	e.restore(next)
	return true
}

// CanUndo reports whether Undo would change the document.
func (e *Engine) CanUndo() bool { return e.history.CanUndo() }

// CanRedo reports whether Redo would change the document.
func (e *Engine) CanRedo() bool { return e.history.CanRedo() }

func (e *Engine) restore(s snapshot) {
	if err := e.replace(s.markup); err != nil {
		// Snapshots are our own serialization; a failure here is a bug.
		log.Error().Err(err).Msg("restore snapshot")
		return
	}
	if n := nodeAt(e.body, s.path); n != nil && s.path != nil {
		e.SetCaret(n, s.offset)
	} else {
		e.SetCaretStart(e.body)
	}
	log.Debug().Int("undo", len(e.history.undo)).Int("redo", len(e.history.redo)).Msg("history restored")
	e.afterLoad()
}

// pathTo returns the child indexes leading from root to n.
func pathTo(root, n *html.Node) []int {
	var path []int
	for ; n != nil && n != root; n = n.Parent {
		path = append(path, dom.IndexOf(n))
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	if path == nil {
		path = []int{}
	}
	return path
}

func nodeAt(root *html.Node, path []int) *html.Node {
	n := root
	for _, i := range path {
		n = dom.ChildAt(n, i)
		if n == nil {
			return nil
		}
	}
	return n
}
