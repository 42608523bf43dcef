// Package config handles configuration loading from TOML files and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/rs/zerolog"
	"github.com/xonecas/tplsel/internal/constants"
)

// FileName is the config file looked up in the data directory.
const FileName = "config.toml"

// Config is the root configuration structure.
type Config struct {
	Templates TemplatesConfig `toml:"templates"`
	Storage   StorageConfig   `toml:"storage"`
	UI        UIConfig        `toml:"ui"`
	Log       LogConfig       `toml:"log"`
}

// TemplatesConfig seeds the template list.
type TemplatesConfig struct {
	// Defaults is used when nothing has been persisted yet.
	Defaults []string `toml:"defaults"`
	// Persist saves every list change to the database.
	Persist *bool `toml:"persist"`
}

// PersistOrDefault returns the persist flag, true if unset.
func (t TemplatesConfig) PersistOrDefault() bool {
	if t.Persist == nil {
		return true
	}
	return *t.Persist
}

// StorageConfig locates the SQLite database.
type StorageConfig struct {
	// Path defaults to tplsel.db in the data directory.
	Path string `toml:"path"`
}

// UIConfig holds user-interface settings.
type UIConfig struct {
	// SyntaxTheme is the Chroma theme used by the source view.
	SyntaxTheme string `toml:"syntax_theme"`
}

// SyntaxThemeOrDefault returns the configured syntax theme or constants.SyntaxTheme if unset.
func (u UIConfig) SyntaxThemeOrDefault() string {
	if u.SyntaxTheme == "" {
		return constants.SyntaxTheme
	}
	return u.SyntaxTheme
}

// LogConfig controls the log file.
type LogConfig struct {
	Level string `toml:"level"`
}

// LevelOrDefault parses the configured level, falling back to info.
func (l LogConfig) LevelOrDefault() zerolog.Level {
	if l.Level == "" {
		return zerolog.InfoLevel
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(l.Level))
	if err != nil {
		return zerolog.InfoLevel
	}
	return lvl
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Templates: TemplatesConfig{Defaults: []string{constants.DefaultTemplate}},
	}
}

// Load reads configuration from a TOML file and applies environment variable overrides.
// An empty path means the default location; a missing default file yields Default().
// An explicit path must exist.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		dir, err := DataDir()
		if err != nil {
			return nil, fmt.Errorf("resolve data dir: %w", err)
		}
		path = filepath.Join(dir, FileName)
	}

	cfg := Default()
	if _, err := os.Stat(path); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
	} else {
		cfg.Templates.Defaults = nil
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
		if cfg.Templates.Defaults == nil {
			cfg.Templates.Defaults = []string{constants.DefaultTemplate}
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate returns an error if the configuration is invalid.
func (c *Config) Validate() error {
	var errs []error

	for i, v := range c.Templates.Defaults {
		if strings.TrimSpace(v) == "" {
			errs = append(errs, fmt.Errorf("templates.defaults[%d] is blank", i))
		}
	}

	if c.UI.SyntaxTheme != "" {
		if _, ok := styles.Registry[c.UI.SyntaxTheme]; !ok {
			errs = append(errs, fmt.Errorf("ui.syntax_theme=%q is not a known theme", c.UI.SyntaxTheme))
		}
	}

	if c.Log.Level != "" {
		if _, err := zerolog.ParseLevel(strings.ToLower(c.Log.Level)); err != nil {
			errs = append(errs, fmt.Errorf("log.level=%q is invalid: %v", c.Log.Level, err))
		}
	}

	if c.Storage.Path != "" && strings.HasSuffix(c.Storage.Path, string(filepath.Separator)) {
		errs = append(errs, fmt.Errorf("storage.path=%q names a directory", c.Storage.Path))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// DBPath returns the database path, defaulting into the data directory.
func (c *Config) DBPath() (string, error) {
	if c.Storage.Path != "" {
		return c.Storage.Path, nil
	}
	dir, err := EnsureDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, constants.DBFile), nil
}

// applyEnvOverrides applies environment variable overrides to the configuration.
func applyEnvOverrides(cfg *Config) {
	for _, setter := range []struct {
		env   string
		apply func(string)
	}{
		{"TPLSEL_LOG_LEVEL", func(v string) {
			if v != "" {
				cfg.Log.Level = v
			}
		}},
		{"TPLSEL_DB", func(v string) {
			if v != "" {
				cfg.Storage.Path = v
			}
		}},
		{"TPLSEL_THEME", func(v string) {
			if v != "" {
				cfg.UI.SyntaxTheme = v
			}
		}},
	} {
		setter.apply(os.Getenv(setter.env))
	}
}

// DataDir returns the path to the tplsel data directory (~/.config/tplsel).
// TPLSEL_HOME overrides it.
func DataDir() (string, error) {
	if dir := os.Getenv("TPLSEL_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "tplsel"), nil
}

// EnsureDataDir creates the data directory if it doesn't exist.
func EnsureDataDir() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return "", err
	}
	return dir, nil
}
