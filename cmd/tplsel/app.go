package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/xonecas/tplsel/internal/config"
	"github.com/xonecas/tplsel/internal/constants"
	"github.com/xonecas/tplsel/internal/store"
	"github.com/xonecas/tplsel/internal/templates"
)

// app is the state shared by every command: configuration, the database and
// the template list seeded from it.
type app struct {
	cfg     *config.Config
	repo    *store.Repo
	store   *templates.Store
	logFile *os.File
}

func setup() (*app, error) {
	a, err := setupLogging()
	if err != nil {
		return nil, err
	}
	cfg := a.cfg

	path, err := cfg.DBPath()
	if err != nil {
		a.close()
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	a.repo, err = store.Open(path)
	if err != nil {
		a.close()
		return nil, err
	}

	values, saved, err := a.repo.LoadTemplates()
	if err != nil {
		a.close()
		return nil, err
	}
	if !saved {
		values = cfg.Templates.Defaults
	}
	a.store = templates.New(values...)
	if len(values) == 0 {
		// An emptied list stays empty.
		a.store.Replace(nil)
	}
	log.Debug().Str("db", path).Int("templates", len(values)).Bool("saved", saved).Msg("setup")
	return a, nil
}

// setupLogging loads the configuration and sends the global logger to the log
// file in the data directory. Commands that need no database stop here.
func setupLogging() (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if dbPath != "" {
		cfg.Storage.Path = dbPath
	}
	a := &app{cfg: cfg}
	if err := a.openLog(); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *app) openLog() error {
	dir, err := config.EnsureDataDir()
	if err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(dir, constants.LogFile), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	a.logFile = f
	zerolog.SetGlobalLevel(a.cfg.Log.LevelOrDefault())
	log.Logger = zerolog.New(f).With().Timestamp().Logger()
	return nil
}

// saveTemplates writes the current list immediately.
func (a *app) saveTemplates() error {
	return a.repo.SaveTemplates(a.store.Get())
}

func (a *app) close() {
	if a.repo != nil {
		a.repo.Flush()
		if err := a.repo.Close(); err != nil {
			log.Warn().Err(err).Msg("close database")
		}
	}
	if a.logFile != nil {
		log.Logger = zerolog.Nop()
		a.logFile.Close()
	}
}
