package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Document is a named document snapshot.
type Document struct {
	Name    string
	Markup  string
	Created time.Time
	Updated time.Time
}

// SaveDocument creates or replaces the document called name.
func (r *Repo) SaveDocument(name, markup string) error {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().Unix()
	_, err := r.db.Exec(
		`INSERT INTO documents (name, markup, created, updated) VALUES (?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET markup = excluded.markup, updated = excluded.updated`,
		name, markup, now, now,
	)
	if err != nil {
		return fmt.Errorf("save document %q: %w", name, err)
	}
	return nil
}

// LoadDocument returns the document called name, or an error wrapping
// ErrNotFound.
func (r *Repo) LoadDocument(name string) (Document, error) {
	if r == nil {
		return Document{}, fmt.Errorf("document %q: %w", name, ErrNotFound)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	d := Document{Name: name}
	var created, updated int64
	err := r.db.QueryRow(
		"SELECT markup, created, updated FROM documents WHERE name = ?", name,
	).Scan(&d.Markup, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return Document{}, fmt.Errorf("document %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return Document{}, fmt.Errorf("load document %q: %w", name, err)
	}
	d.Created = time.Unix(created, 0)
	d.Updated = time.Unix(updated, 0)
	return d, nil
}

// ListDocuments returns every document without its markup, most recently
// updated first.
func (r *Repo) ListDocuments() ([]Document, error) {
	if r == nil {
		return nil, nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query("SELECT name, created, updated FROM documents ORDER BY updated DESC, name")
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var d Document
		var created, updated int64
		if err := rows.Scan(&d.Name, &created, &updated); err != nil {
			continue
		}
		d.Created = time.Unix(created, 0)
		d.Updated = time.Unix(updated, 0)
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// DeleteDocument removes the document called name. Removing a missing
// document is not an error.
func (r *Repo) DeleteDocument(name string) error {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.db.Exec("DELETE FROM documents WHERE name = ?", name); err != nil {
		return fmt.Errorf("delete document %q: %w", name, err)
	}
	return nil
}
