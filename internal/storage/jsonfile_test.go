package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"x_monitor/internal/model"
)

func TestJSONFileRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.json")
	j := NewJSONFile(path)

	want := sampleStates()
	if err := j.Save(ctx, want); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := j.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
}

func TestJSONFileMissingFile(t *testing.T) {
	ctx := context.Background()
	j := NewJSONFile(filepath.Join(t.TempDir(), "absent.json"))

	got, err := j.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(map[string]model.ThreadState{}, got); diff != "" {
		t.Errorf("Load() of missing file mismatch (-want +got):\n%s", diff)
	}
}

func TestJSONFileCorruptFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	got, err := NewJSONFile(path).Load(ctx)
	if err == nil {
		t.Fatal("expected parse error for corrupt file")
	}
	if diff := cmp.Diff(map[string]model.ThreadState{}, got); diff != "" {
		t.Errorf("Load() of corrupt file mismatch (-want +got):\n%s", diff)
	}
}

func TestJSONFileLoadReclassifiesQuestions(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.json")

	// Stale flags: a question stored as false and a statement stored as true.
	stored := `{
		"tweet_7": {
			"replies": [
				{"author_handle": "@alice", "author_display_name": "Alice W",
				 "body_text": "How does it work?", "is_question": false},
				{"author_handle": "@carl", "author_display_name": "Carl",
				 "body_text": "Nice work", "is_question": true}
			],
			"last_checked": "2026-01-02T15:04:05Z"
		}
	}`
	if err := os.WriteFile(path, []byte(stored), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	got, err := NewJSONFile(path).Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	replies := got["tweet_7"].Replies
	if len(replies) != 2 {
		t.Fatalf("replies = %d, want 2", len(replies))
	}
	if !replies[0].IsQuestion {
		t.Error("question reply loaded with is_question = false")
	}
	if replies[1].IsQuestion {
		t.Error("statement reply loaded with is_question = true")
	}
}

func TestJSONFileCreatesParentDirs(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data", "nested", "state.json")
	j := NewJSONFile(path)

	if err := j.Save(ctx, sampleStates()); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("stat state file: %v", err)
	}
}

func TestJSONFileSaveReplacesPrevious(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.json")
	j := NewJSONFile(path)

	if err := j.Save(ctx, sampleStates()); err != nil {
		t.Fatalf("first save: %v", err)
	}

	want := map[string]model.ThreadState{}
	if err := j.Save(ctx, want); err != nil {
		t.Fatalf("second save: %v", err)
	}

	got, err := j.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Load() after overwrite mismatch (-want +got):\n%s", diff)
	}
}

func TestOpenBackendSelection(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name     string
		path     string
		wantJSON bool
	}{
		{name: "json extension", path: filepath.Join(dir, "state.json"), wantJSON: true},
		{name: "no extension", path: filepath.Join(dir, "state"), wantJSON: true},
		{name: "db extension", path: filepath.Join(dir, "state.db")},
		{name: "sqlite extension", path: filepath.Join(dir, "state.sqlite")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Open(tt.path)
			if err != nil {
				t.Fatalf("open: %v", err)
			}
			defer func() { _ = s.Close() }()

			_, isJSON := s.(*JSONFile)
			if isJSON != tt.wantJSON {
				t.Errorf("Open(%q) backend = %T, wantJSON = %v", tt.path, s, tt.wantJSON)
			}
		})
	}
}
