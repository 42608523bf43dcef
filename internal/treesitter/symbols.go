// Package treesitter locates template widgets in HTML source with their line
// and column positions, which the DOM parser does not keep.
package treesitter

import "fmt"

// SymbolKind classifies extracted symbols.
type SymbolKind int

const (
	KindWidget SymbolKind = iota
	KindOption
	KindSentinel
)

// Symbol is a widget or one of its options as written in the source.
type Symbol struct {
	Name      string // decoded value for options, selected label for widgets
	Kind      SymbolKind
	Value     string // raw value attribute
	StartLine int    // 1-indexed
	EndLine   int    // 1-indexed
	Column    int    // 1-indexed, in bytes
	Selected  bool
	Flagged   bool // select carries the error class
	Children  []Symbol
}

func (k SymbolKind) String() string {
	switch k {
	case KindWidget:
		return "widget"
	case KindOption:
		return "option"
	case KindSentinel:
		return "sentinel"
	default:
		return "unknown"
	}
}

// Pos formats the start position as line:col.
func (s Symbol) Pos() string {
	return fmt.Sprintf("%d:%d", s.StartLine, s.Column)
}
