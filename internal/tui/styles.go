package tui

import (
	"charm.land/lipgloss/v2"
	"github.com/xonecas/tplsel/internal/highlight"
	"github.com/xonecas/tplsel/internal/tui/modal"
	"github.com/xonecas/tplsel/internal/tui/panel"
)

// Styles holds every style the view uses, derived from one palette.
type Styles struct {
	BgFill     lipgloss.Style
	Text       lipgloss.Style
	Dim        lipgloss.Style
	Border     lipgloss.Style
	Caret      lipgloss.Style
	Widget     lipgloss.Style
	WidgetBad  lipgloss.Style
	StatusText lipgloss.Style
	Info       lipgloss.Style
	Warning    lipgloss.Style
	Error      lipgloss.Style
}

func newStyles(p highlight.Palette) Styles {
	bg := lipgloss.Color(p.Bg)
	fg := lipgloss.Color(p.Fg)
	base := lipgloss.NewStyle().Background(bg)
	return Styles{
		BgFill:     base,
		Text:       base.Foreground(fg),
		Dim:        base.Foreground(lipgloss.Color(p.Dim)),
		Border:     base.Foreground(lipgloss.Color(p.Border)),
		Caret:      base.Foreground(fg).Reverse(true),
		Widget:     base.Foreground(lipgloss.Color(p.Accent)).Bold(true),
		WidgetBad:  base.Foreground(lipgloss.Color(p.Error)).Bold(true),
		StatusText: base.Foreground(lipgloss.Color(p.Dim)),
		Info:       base.Foreground(lipgloss.Color(p.Accent)),
		Warning:    base.Foreground(lipgloss.Color("#d7af5f")),
		Error:      base.Foreground(lipgloss.Color(p.Error)),
	}
}

func panelColors(p highlight.Palette) panel.Colors {
	return panel.Colors{Fg: p.Fg, Bg: p.Bg, Dim: p.Dim, SelFg: p.Bg, SelBg: p.Accent, Border: p.Border}
}

func modalColors(p highlight.Palette) modal.Colors {
	return modal.Colors{Fg: p.Fg, Bg: p.Bg, Dim: p.Dim, SelFg: p.Bg, SelBg: p.Accent, Border: p.Accent}
}
