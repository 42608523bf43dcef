// Package tui is the terminal editor: the document on the left, the template
// list on the right, a status bar below.
package tui

import (
	tea "charm.land/bubbletea/v2"
	"github.com/xonecas/tplsel/internal/engine"
	"github.com/xonecas/tplsel/internal/highlight"
	"github.com/xonecas/tplsel/internal/plugin"
	"github.com/xonecas/tplsel/internal/store"
	"github.com/xonecas/tplsel/internal/templates"
	"github.com/xonecas/tplsel/internal/tui/modal"
	"github.com/xonecas/tplsel/internal/tui/panel"
)

const (
	statusRows    = 2 // separator + bar
	maxPanelWidth = 28
	minDocWidth   = 20

	untitled = "untitled"
)

type focusArea int

const (
	focusDocument focusArea = iota
	focusPanel
)

type modalKind int

const (
	modalNone modalKind = iota
	modalKeybinds
	modalDocuments
)

// Options configures New.
type Options struct {
	Engine  *engine.Engine
	Plugin  *plugin.Plugin
	Store   *templates.Store
	Repo    *store.Repo // nil disables save and open
	Theme   string
	DocName string
}

// Model is the application model.
type Model struct {
	width  int
	height int

	eng   *engine.Engine
	plug  *plugin.Plugin
	store *templates.Store
	repo  *store.Repo

	panel     *panel.Model
	modal     *modal.Model
	modalKind modalKind

	hl      *highlight.Highlighter
	palette highlight.Palette
	styles  Styles

	focus  focusArea
	source bool
	scroll int

	docName string
	saved   string

	note      *engine.Notification
	noteSeq   int
	seenNotes int
}

// New creates the TUI model.
func New(opts Options) Model {
	pal := highlight.ThemePalette(opts.Theme)
	name := opts.DocName
	if name == "" {
		name = untitled
	}
	return Model{
		eng:       opts.Engine,
		plug:      opts.Plugin,
		store:     opts.Store,
		repo:      opts.Repo,
		panel:     panel.New(opts.Store, panelColors(pal)),
		hl:        highlight.New(opts.Theme),
		palette:   pal,
		styles:    newStyles(pal),
		docName:   name,
		saved:     opts.Engine.HTML(),
		seenNotes: len(opts.Engine.Notifications()),
	}
}

// Init initializes the TUI (required by BubbleTea).
func (m Model) Init() tea.Cmd {
	return nil
}

// Close releases the panel's store subscription.
func (m Model) Close() {
	m.panel.Close()
}

// Dirty reports whether the document differs from the last save or load.
func (m Model) Dirty() bool {
	return m.eng.HTML() != m.saved
}

// layout returns the document and panel widths and the content height.
func (m Model) layout() (docW, panelW, contentH int) {
	panelW = min(maxPanelWidth, m.width/3)
	if m.width-panelW-1 < minDocWidth {
		panelW = max(0, m.width-minDocWidth-1)
	}
	docW = m.width - panelW
	if panelW > 0 {
		docW--
	}
	contentH = max(0, m.height-statusRows)
	return docW, panelW, contentH
}
