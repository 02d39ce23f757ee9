package main

import (
	"context"
	"database/sql"
	"testing"

	"github.com/google/go-cmp/cmp"
	_ "modernc.org/sqlite"

	"tg_scanner/migrations"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestRunUnknownCommand(t *testing.T) {
	p, err := migrations.NewProvider(newTestDB(t))
	if err != nil {
		t.Fatalf("provider: %v", err)
	}

	err = run(context.Background(), p, "sideways")
	if err == nil {
		t.Fatal("expected error")
	}
	if diff := cmp.Diff("unknown command: sideways", err.Error()); diff != "" {
		t.Errorf("error mismatch (-want +got):\n%s", diff)
	}
}

func TestRunUpAndReset(t *testing.T) {
	ctx := context.Background()
	p, err := migrations.NewProvider(newTestDB(t))
	if err != nil {
		t.Fatalf("provider: %v", err)
	}

	if err := run(ctx, p, "up"); err != nil {
		t.Fatalf("up: %v", err)
	}
	v, err := p.GetDBVersion(ctx)
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if diff := cmp.Diff(int64(1), v); diff != "" {
		t.Errorf("version after up mismatch (-want +got):\n%s", diff)
	}

	if err := run(ctx, p, "reset"); err != nil {
		t.Fatalf("reset: %v", err)
	}
	v, err = p.GetDBVersion(ctx)
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if diff := cmp.Diff(int64(0), v); diff != "" {
		t.Errorf("version after reset mismatch (-want +got):\n%s", diff)
	}
}
