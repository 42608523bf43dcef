// Package highlight colors document markup for the source view via Chroma,
// and derives the TUI palette from the same theme.
package highlight

import (
	"fmt"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// Highlighter renders source text with one theme.
type Highlighter struct {
	theme string
	bg    string
}

// New returns a highlighter for theme. Unknown themes fall back to Chroma's default.
func New(theme string) *Highlighter {
	return &Highlighter{theme: theme, bg: ThemeBg(theme)}
}

// Theme returns the theme name.
func (h *Highlighter) Theme() string { return h.theme }

// Markup highlights HTML.
func (h *Highlighter) Markup(src string) string {
	return h.Source(src, "html")
}

// Source highlights src as language. Unknown languages come back uncolored.
func (h *Highlighter) Source(src, language string) string {
	return Highlight(src, language, h.theme, h.bg)
}

// Lines is Markup split with SplitLines.
func (h *Highlighter) Lines(src string) []string {
	return SplitLines(h.Markup(src))
}

// Highlight returns an ANSI-highlighted version of text using the given
// Chroma language and theme. bgHex ("#rrggbb") is injected after every ANSI
// reset so the background color is never lost.
func Highlight(text, language, theme, bgHex string) string {
	lex := lexers.Get(language)
	if lex == nil {
		return text
	}
	lex = chroma.Coalesce(lex)
	fmtr := formatters.Get("terminal16m")
	if fmtr == nil {
		fmtr = formatters.Fallback
	}
	it, err := lex.Tokenise(nil, text)
	if err != nil {
		return text
	}
	var buf strings.Builder
	if err := fmtr.Format(&buf, styles.Get(theme), it); err != nil {
		return text
	}
	raw := strings.TrimRight(buf.String(), "\n")

	// Every \x1b[0m clears the background; re-arm it after each reset.
	bgSeq := bgSequence(bgHex)
	if bgSeq == "" {
		return raw
	}
	return bgSeq + strings.ReplaceAll(raw, "\x1b[0m", "\x1b[0m"+bgSeq)
}

func bgSequence(hex string) string {
	r, g, b, ok := parseHex(hex)
	if !ok {
		return ""
	}
	return fmt.Sprintf("\x1b[48;2;%d;%d;%dm", r, g, b)
}

// SplitLines splits a highlighted block into per-line strings, propagating
// ANSI style state across lines so each is independently renderable.
func SplitLines(block string) []string {
	lines := strings.Split(block, "\n")
	var active []string
	for i, line := range lines {
		if i > 0 && len(active) > 0 {
			lines[i] = strings.Join(active, "") + line
		}
		active = scanSGR(line, active)
	}
	return lines
}

// scanSGR tracks the SGR sequences still in effect at the end of line.
func scanSGR(line string, active []string) []string {
	for j := 0; j < len(line); j++ {
		if line[j] != '\x1b' || j+1 >= len(line) || line[j+1] != '[' {
			continue
		}
		k := j + 2
		for k < len(line) && line[k] != 'm' && line[k] != '\x1b' {
			k++
		}
		if k >= len(line) || line[k] != 'm' {
			continue
		}
		if params := line[j+2 : k]; params == "" || params == "0" {
			active = active[:0]
		} else {
			active = append(active, line[j:k+1])
		}
		j = k
	}
	return active
}

// ThemeBg extracts the background hex color from a Chroma style, or "".
func ThemeBg(theme string) string {
	sty := styles.Get(theme)
	if sty == nil {
		return ""
	}
	bg := sty.Get(chroma.Background).Background
	if !bg.IsSet() {
		return ""
	}
	return bg.String()
}

// Palette holds the TUI colors derived from a theme.
type Palette struct {
	Bg     string
	Fg     string
	Border string // 10% bg to fg
	Dim    string // 30% bg to fg
	Accent string // widget chips
	Error  string // flagged widgets
}

// ThemePalette derives the TUI palette from theme.
func ThemePalette(theme string) Palette {
	sty := styles.Get(theme)
	if sty == nil {
		return defaultPalette()
	}
	entry := sty.Get(chroma.Background)
	bg, fg := "#000000", "#c8c8c8"
	if entry.Background.IsSet() {
		bg = entry.Background.String()
	}
	if entry.Colour.IsSet() {
		fg = entry.Colour.String()
	}
	p := Palette{
		Bg:     bg,
		Fg:     fg,
		Border: lerpHex(bg, fg, 0.10),
		Dim:    lerpHex(bg, fg, 0.30),
		Accent: fg,
		Error:  "#d75f5f",
	}
	if e := sty.Get(chroma.NameTag); e.Colour.IsSet() {
		p.Accent = e.Colour.String()
	}
	if e := sty.Get(chroma.Error); e.Colour.IsSet() {
		p.Error = lerpHex(fg, e.Colour.String(), 0.8)
	}
	return p
}

func defaultPalette() Palette {
	return Palette{
		Bg: "#000000", Fg: "#c8c8c8",
		Border: "#141414", Dim: "#3c3c3c",
		Accent: "#00dfff", Error: "#d75f5f",
	}
}

func lerpHex(a, b string, t float64) string {
	ar, ag, ab, _ := parseHex(a)
	br, bg, bb, _ := parseHex(b)
	mix := func(x, y int) int {
		v := float64(x) + (float64(y)-float64(x))*t
		return min(255, max(0, int(v+0.5)))
	}
	return fmt.Sprintf("#%02x%02x%02x", mix(ar, br), mix(ag, bg), mix(ab, bb))
}

func parseHex(hex string) (r, g, b int, ok bool) {
	if len(hex) != 7 || hex[0] != '#' {
		return 0, 0, 0, false
	}
	if _, err := fmt.Sscanf(hex[1:], "%02x%02x%02x", &r, &g, &b); err != nil {
		return 0, 0, 0, false
	}
	return r, g, b, true
}
