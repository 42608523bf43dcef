package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/xonecas/tplsel/internal/templates"
)

const savedKey = "templates_saved"

// LoadTemplates returns the persisted template list. saved is false when no
// list was ever written, so callers can fall back to their defaults; an empty
// list that was saved on purpose comes back with saved set.
func (r *Repo) LoadTemplates() (values []string, saved bool, err error) {
	if r == nil {
		return nil, false, nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	var marker string
	if err := r.db.QueryRow("SELECT value FROM meta WHERE key = ?", savedKey).Scan(&marker); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read templates marker: %w", err)
	}

	rows, err := r.db.Query("SELECT value FROM templates ORDER BY position")
	if err != nil {
		return nil, false, fmt.Errorf("load templates: %w", err)
	}
	defer rows.Close()

	values = []string{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, false, fmt.Errorf("scan template: %w", err)
		}
		values = append(values, v)
	}
	return values, true, rows.Err()
}

// SaveTemplates replaces the persisted list with values.
func (r *Repo) SaveTemplates(values []string) error {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.Exec("DELETE FROM templates"); err != nil {
		return fmt.Errorf("clear templates: %w", err)
	}
	for i, v := range values {
		if _, err := tx.Exec("INSERT INTO templates (position, value) VALUES (?, ?)", i, v); err != nil {
			return fmt.Errorf("insert template %d: %w", i, err)
		}
	}
	if _, err := tx.Exec("INSERT OR REPLACE INTO meta (key, value) VALUES (?, '1')", savedKey); err != nil {
		return fmt.Errorf("mark templates saved: %w", err)
	}
	return tx.Commit()
}

// Watch persists every snapshot s emits, including the current one, until
// the returned function is called. Writes happen on a background goroutine;
// Flush waits for them.
func (r *Repo) Watch(s *templates.Store) (stop func()) {
	if r == nil {
		return func() {}
	}
	return s.OnChange(func(values []string) {
		r.mu.Lock()
		defer r.mu.Unlock()
		if r.closed {
			return
		}
		select {
		case r.saveCh <- saveReq{templates: values}:
		default:
			log.Warn().Int("count", len(values)).Msg("save channel full, dropping template snapshot")
		}
	})
}
