// Package store persists the template list and named documents in SQLite.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite" // register sqlite driver
)

const schema = `
CREATE TABLE IF NOT EXISTS templates (
	position INTEGER PRIMARY KEY,
	value    TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS documents (
	name     TEXT PRIMARY KEY,
	markup   TEXT NOT NULL,
	created  INTEGER NOT NULL,
	updated  INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_documents_updated ON documents(updated);
`

// ErrNotFound is returned when a named document does not exist.
var ErrNotFound = errors.New("not found")

// Repo is a SQLite-backed repository. Methods are safe for concurrent use and
// safe to call on a nil receiver, which behaves as an empty, read-only store.
type Repo struct {
	mu     sync.Mutex
	db     *sql.DB
	saveCh chan saveReq
	done   chan struct{}
	closed bool
}

// saveReq is one queued write. A request with flush set only signals that
// every earlier request has been written.
type saveReq struct {
	templates []string
	flush     chan struct{}
}

// Open creates or opens a database at the given path.
func Open(dbPath string) (*Repo, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// SQLite pragmas for performance.
	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("pragma %q: %w", pragma, err)
		}
	}

	// Migrate: early databases kept documents without a created column.
	if hasTable(db, "documents") && !hasColumn(db, "documents", "created") {
		if _, err := db.Exec("ALTER TABLE documents ADD COLUMN created INTEGER NOT NULL DEFAULT 0"); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrate documents: %w", err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	r := &Repo{
		db:     db,
		saveCh: make(chan saveReq, 64),
		done:   make(chan struct{}),
	}
	go r.saveLoop()
	return r, nil
}

// Close drains queued writes and closes the database.
func (r *Repo) Close() error {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	close(r.saveCh)
	r.mu.Unlock()

	<-r.done
	return r.db.Close()
}

// saveLoop drains saveCh and writes to the DB.
func (r *Repo) saveLoop() {
	defer close(r.done)
	for req := range r.saveCh {
		if req.flush != nil {
			close(req.flush)
			continue
		}
		if err := r.SaveTemplates(req.templates); err != nil {
			log.Warn().Err(err).Int("count", len(req.templates)).Msg("failed to save templates")
		}
	}
}

// Flush blocks until all queued async saves have been written to the DB.
// Times out after 5 seconds to avoid deadlocking the caller. It must not race
// Close.
func (r *Repo) Flush() {
	if r == nil {
		return
	}
	r.mu.Lock()
	closed := r.closed
	r.mu.Unlock()
	if closed {
		return
	}
	done := make(chan struct{})
	select {
	case r.saveCh <- saveReq{flush: done}:
		<-done
	case <-time.After(5 * time.Second):
		log.Warn().Msg("flush timed out waiting to enqueue")
	}
}

func hasTable(db *sql.DB, table string) bool {
	var name string
	err := db.QueryRow("SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&name)
	return err == nil
}

// hasColumn checks if a table has a specific column.
func hasColumn(db *sql.DB, table, column string) bool {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table)) //nolint:gosec // table name is hardcoded by caller
	if err != nil {
		return false
	}
	defer rows.Close()
	for rows.Next() {
		var cid int
		var name, typ string
		var notNull, pk int
		var dflt sql.NullString
		if err := rows.Scan(&cid, &name, &typ, &notNull, &dflt, &pk); err != nil {
			continue
		}
		if name == column {
			return true
		}
	}
	return false
}
