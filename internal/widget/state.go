package widget

import "slices"

// State is the consistency of a widget with the template list.
type State int

const (
	// Valid means the current value is in the template list.
	Valid State = iota
	// EmptyList means the template list has no entries.
	EmptyList
	// StaleSelection means the list has entries but the current value is
	// not among them.
	StaleSelection
)

func (s State) String() string {
	switch s {
	case Valid:
		return "valid"
	case EmptyList:
		return "empty-list"
	case StaleSelection:
		return "stale-selection"
	default:
		return "unknown"
	}
}

// Invalid reports whether the state carries the error flag.
func (s State) Invalid() bool { return s != Valid }

// Option is one entry of a widget's select control.
type Option struct {
	Raw      string // display label and decoded value
	Value    string // encoded value attribute
	Selected bool
	Sentinel bool
}

// Result is the option set and state a widget should show.
type Result struct {
	State   State
	Options []Option
}

// SentinelOption returns the placeholder option for "no valid selection".
func SentinelOption(selected bool) Option {
	return Option{Raw: SentinelLabel, Value: Sentinel, Selected: selected, Sentinel: true}
}

// Transition computes a widget's next options from its previous encoded value
// and a template snapshot. It is pure: the same inputs always produce the same
// result, so applying it twice is the same as applying it once.
//
//   - empty snapshot: EmptyList, a lone selected sentinel.
//   - previous value present: Valid, every value, previous one selected.
//   - otherwise: StaleSelection, a selected sentinel followed by every value
//     unselected, so a replacement can be picked right away.
//
// A widget already showing the sentinel stays flagged until the user picks a
// real value (see Select).
func Transition(prev string, snapshot []string) Result {
	if len(snapshot) == 0 {
		return Result{State: EmptyList, Options: []Option{SentinelOption(true)}}
	}

	current := ""
	found := false
	if prev != Sentinel {
		current = Decode(prev)
		found = slices.Contains(snapshot, current)
	}

	if found {
		return Result{State: Valid, Options: options(snapshot, current, true)}
	}

	opts := make([]Option, 0, len(snapshot)+1)
	opts = append(opts, SentinelOption(true))
	opts = append(opts, options(snapshot, "", false)...)
	return Result{State: StaleSelection, Options: opts}
}

// options converts raw values to options, selecting the first value equal to
// current when hasCurrent is set.
func options(values []string, current string, hasCurrent bool) []Option {
	out := make([]Option, len(values))
	picked := false
	for i, v := range values {
		sel := hasCurrent && !picked && v == current
		if sel {
			picked = true
		}
		out[i] = Option{Raw: v, Value: Encode(v), Selected: sel}
	}
	return out
}
