package postid

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestAllocatorSequence(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "last_post_id.json")
	backend := NewFileBackend(path)
	if err := backend.SaveCounter(ctx, 7); err != nil {
		t.Fatalf("seed counter: %v", err)
	}

	a := New(backend, discardLogger())
	a.Load(ctx)

	got := []int64{a.Next(), a.Next(), a.Next()}
	if diff := cmp.Diff([]int64{8, 9, 10}, got); diff != "" {
		t.Errorf("Next() sequence mismatch (-want +got):\n%s", diff)
	}

	if err := a.Persist(ctx); err != nil {
		t.Fatalf("persist: %v", err)
	}

	fresh := New(NewFileBackend(path), discardLogger())
	fresh.Load(ctx)
	if diff := cmp.Diff(int64(10), fresh.Last()); diff != "" {
		t.Errorf("reloaded counter mismatch (-want +got):\n%s", diff)
	}
}

func TestAllocatorLoadDefaults(t *testing.T) {
	tests := []struct {
		name    string
		content *string
	}{
		{name: "missing file"},
		{name: "malformed json", content: ptr("{last_id: oops")},
		{name: "wrong shape", content: ptr(`["not", "an", "object"]`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "last_post_id.json")
			if tt.content != nil {
				if err := os.WriteFile(path, []byte(*tt.content), 0o600); err != nil {
					t.Fatalf("write: %v", err)
				}
			}

			a := New(NewFileBackend(path), discardLogger())
			a.Load(context.Background())
			if diff := cmp.Diff(int64(1), a.Next()); diff != "" {
				t.Errorf("first ID mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFileBackendFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "last_post_id.json")
	if err := NewFileBackend(path).SaveCounter(context.Background(), 42); err != nil {
		t.Fatalf("save: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	want := "{\n    \"last_id\": 42\n}"
	if diff := cmp.Diff(want, string(data)); diff != "" {
		t.Errorf("counter file mismatch (-want +got):\n%s", diff)
	}
}

func ptr(s string) *string { return &s }
