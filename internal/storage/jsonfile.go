package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"x_monitor/internal/model"
)

// JSONFile implements Store backed by a single pretty-printed JSON file.
type JSONFile struct {
	path string
}

// NewJSONFile returns a store that reads and writes the file at path. The
// file and its parent directories are created on first Save.
func NewJSONFile(path string) *JSONFile {
	return &JSONFile{path: path}
}

// Load reads the state file. A missing file is a fresh start, not an error.
func (j *JSONFile) Load(ctx context.Context) (map[string]model.ThreadState, error) {
	states := make(map[string]model.ThreadState)

	data, err := os.ReadFile(j.path)
	if errors.Is(err, fs.ErrNotExist) {
		return states, nil
	}
	if err != nil {
		return states, fmt.Errorf("read state file: %w", err)
	}

	if err := json.Unmarshal(data, &states); err != nil {
		return make(map[string]model.ThreadState), fmt.Errorf("parse state file: %w", err)
	}
	if states == nil {
		states = make(map[string]model.ThreadState)
	}
	reclassify(states)
	return states, nil
}

// Save writes the full state snapshot atomically: the new content goes to a
// temp file in the same directory and is renamed over the old one.
func (j *JSONFile) Save(ctx context.Context, states map[string]model.ThreadState) error {
	data, err := json.MarshalIndent(states, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	dir := filepath.Dir(j.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".state-*.json")
	if err != nil {
		return fmt.Errorf("create temp state file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("close state file: %w", err)
	}
	if err := os.Rename(tmp.Name(), j.path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("replace state file: %w", err)
	}
	return nil
}

// Close is a no-op for the file backend.
func (j *JSONFile) Close() error {
	return nil
}
