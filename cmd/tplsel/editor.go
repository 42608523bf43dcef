package main

import (
	"errors"
	"fmt"
	"os"

	tea "charm.land/bubbletea/v2"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/xonecas/tplsel/internal/engine"
	"github.com/xonecas/tplsel/internal/plugin"
	"github.com/xonecas/tplsel/internal/store"
	"github.com/xonecas/tplsel/internal/tui"
)

// runEditor opens the terminal editor, optionally on a saved document.
func runEditor(cmd *cobra.Command, args []string) error {
	a, err := setup()
	if err != nil {
		return err
	}
	defer a.close()

	if a.cfg.Templates.PersistOrDefault() {
		stop := a.repo.Watch(a.store)
		defer stop()
	}

	e := engine.New()
	p := plugin.Attach(e, a.store)
	defer p.Detach()
	stopNotes := e.OnNotify(func(n engine.Notification) {
		log.Info().Str("level", n.Level.String()).Msg(n.Text)
	})
	defer stopNotes()

	var name string
	if len(args) == 1 {
		name = args[0]
		doc, err := a.repo.LoadDocument(name)
		switch {
		case errors.Is(err, store.ErrNotFound):
			log.Info().Str("name", name).Msg("new document")
		case err != nil:
			return err
		default:
			if err := e.Load(doc.Markup); err != nil {
				return fmt.Errorf("load %q: %w", name, err)
			}
		}
	}

	m := tui.New(tui.Options{
		Engine:  e,
		Plugin:  p,
		Store:   a.store,
		Repo:    a.repo,
		Theme:   a.cfg.UI.SyntaxThemeOrDefault(),
		DocName: name,
	})
	defer m.Close()

	final, err := tea.NewProgram(m).Run()
	if err != nil {
		return fmt.Errorf("failed to start the terminal user interface: %w", err)
	}
	if fm, ok := final.(tui.Model); ok && fm.Dirty() {
		fmt.Fprintln(os.Stderr, "Unsaved changes were discarded.")
	}
	return nil
}
