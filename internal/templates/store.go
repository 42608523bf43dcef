// Package templates holds the observable list of template values that every
// embedded widget is synchronized from.
package templates

import (
	"slices"
	"sync"
)

// DefaultValue is the single entry a store starts with when none are given.
const DefaultValue = "template 1"

// Listener receives a private copy of the template list.
type Listener func(values []string)

type subscription struct {
	id int
	fn Listener
}

// Store is an ordered, mutable list of template values with change
// notification. It is created once by the composing application and passed
// to every consumer; there is no package-level instance.
//
// Listeners run synchronously, in registration order, before the mutating
// call returns. A mutation made from inside a listener is applied at once and
// its notification is queued until the running emission finishes.
//
// Mutations belong to one owning goroutine, normally the editor loop. Reads
// (Get, Len, Listeners) are safe from any goroutine. A mutation from another
// goroutine while an emission is running only queues its notification, so
// that call may return before listeners have seen it.
type Store struct {
	mu     sync.Mutex
	values []string
	subs   []subscription
	nextID int

	emitting bool
	pending  int
}

// New creates a store seeded with values. With no values it holds DefaultValue.
func New(values ...string) *Store {
	if len(values) == 0 {
		values = []string{DefaultValue}
	}
	return &Store{values: append([]string(nil), values...)}
}

// Get returns a copy of the current values.
func (s *Store) Get() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Len returns the number of values.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.values)
}

// Add appends value and notifies listeners.
func (s *Store) Add(value string) {
	s.mu.Lock()
	s.values = append(s.values, value)
	s.mu.Unlock()
	s.emit()
}

// RemoveAt removes the value at i. Out-of-range indices are ignored and
// produce no notification.
func (s *Store) RemoveAt(i int) {
	s.mu.Lock()
	if !s.inRangeLocked(i) {
		s.mu.Unlock()
		return
	}
	s.values = append(s.values[:i], s.values[i+1:]...)
	s.mu.Unlock()
	s.emit()
}

// UpdateAt replaces the value at i. Out-of-range indices and unchanged values
// are ignored and produce no notification.
func (s *Store) UpdateAt(i int, value string) {
	s.mu.Lock()
	if !s.inRangeLocked(i) || s.values[i] == value {
		s.mu.Unlock()
		return
	}
	s.values[i] = value
	s.mu.Unlock()
	s.emit()
}

// Replace swaps the whole list, notifying once if anything changed.
func (s *Store) Replace(values []string) {
	s.mu.Lock()
	if slices.Equal(s.values, values) {
		s.mu.Unlock()
		return
	}
	s.values = append([]string(nil), values...)
	s.mu.Unlock()
	s.emit()
}

// OnChange registers fn, calls it once with the current values, and returns a
// function that unregisters it. Unregistering more than once is harmless.
func (s *Store) OnChange(fn Listener) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs = append(s.subs, subscription{id: id, fn: fn})
	snap := s.snapshotLocked()
	s.mu.Unlock()

	fn(snap)

	var once sync.Once
	return func() {
		once.Do(func() { s.unsubscribe(id) })
	}
}

// Listeners returns the number of registered listeners.
func (s *Store) Listeners() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

func (s *Store) unsubscribe(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, sub := range s.subs {
		if sub.id == id {
			s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
			return
		}
	}
}

// emit delivers the current snapshot to every listener. Calls made while an
// emission is already running are queued and drained by the outer call.
func (s *Store) emit() {
	s.mu.Lock()
	if s.emitting {
		s.pending++
		s.mu.Unlock()
		return
	}
	s.emitting = true
	s.pending = 1
	for s.pending > 0 {
		s.pending--
		subs := append([]subscription(nil), s.subs...)
		s.mu.Unlock()
		for _, sub := range subs {
			if !s.subscribed(sub.id) {
				continue
			}
			sub.fn(s.Get())
		}
		s.mu.Lock()
	}
	s.emitting = false
	s.mu.Unlock()
}

func (s *Store) subscribed(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sub := range s.subs {
		if sub.id == id {
			return true
		}
	}
	return false
}

func (s *Store) inRangeLocked(i int) bool {
	return i >= 0 && i < len(s.values)
}

func (s *Store) snapshotLocked() []string {
	out := make([]string, len(s.values))
	copy(out, s.values)
	return out
}
