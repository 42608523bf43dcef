package treesitter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/xonecas/tplsel/internal/widget"
)

// FormatOutline lists the widgets of every file, one per line, with their
// position, state and options.
//
// Example output:
//
//	docs/letter.html:
//	  3:12 widget "greeting" [greeting, sign-off]
//	  9:5 widget ERROR (flagged) [greeting]
func FormatOutline(snap map[string][]Symbol) string {
	paths := make([]string, 0, len(snap))
	for p := range snap {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var b strings.Builder
	for _, path := range paths {
		fmt.Fprintf(&b, "%s:\n", path)
		syms := snap[path]
		if len(syms) == 0 {
			b.WriteString("  (no widgets)\n")
			continue
		}
		for _, s := range syms {
			b.WriteString("  ")
			b.WriteString(FormatWidget(s))
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// FormatWidget renders one widget on a single line.
func FormatWidget(s Symbol) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s ", s.Pos(), s.Kind)
	switch {
	case s.Value == widget.Sentinel:
		b.WriteString(widget.SentinelLabel)
	case s.Name == "" && s.Value == "":
		b.WriteString("(none selected)")
	default:
		fmt.Fprintf(&b, "%q", s.Name)
	}
	if s.Flagged {
		b.WriteString(" (flagged)")
	}
	var opts []string
	for _, c := range s.Children {
		if c.Kind == KindOption {
			opts = append(opts, c.Name)
		}
	}
	fmt.Fprintf(&b, " [%s]", strings.Join(opts, ", "))
	return b.String()
}
