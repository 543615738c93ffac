// Package storage persists per-thread reply state between runs.
package storage

import (
	"context"
	"path/filepath"
	"strings"

	"x_monitor/internal/model"
	"x_monitor/internal/question"
)

// Store is the interface for state persistence backends.
type Store interface {
	// Load returns all known thread states keyed by model.StateKey. A
	// missing backing store yields an empty map; a malformed one yields an
	// empty map together with the error so callers can warn and start over.
	Load(ctx context.Context) (map[string]model.ThreadState, error)

	// Save replaces the persisted state with the given snapshot.
	Save(ctx context.Context, states map[string]model.ThreadState) error

	Close() error
}

// Open selects a backend for path: files with a SQLite extension get the
// database backend, everything else the JSON file backend.
func Open(path string) (Store, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return NewSQLite(path)
	default:
		return NewJSONFile(path), nil
	}
}

// reclassify refreshes the derived question flag on loaded replies. The flag
// is a pure function of the body text; the persisted value is never trusted.
func reclassify(states map[string]model.ThreadState) {
	for _, st := range states {
		for i := range st.Replies {
			st.Replies[i].IsQuestion = question.IsQuestion(st.Replies[i].Text)
		}
	}
}
