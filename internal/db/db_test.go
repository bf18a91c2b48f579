package db

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestConnectPostgres(t *testing.T) {
	t.Run("missing DATABASE_URL is an error", func(t *testing.T) {
		if _, err := ConnectPostgres(context.Background(), ""); err == nil {
			t.Fatal("expected error for empty dsn")
		}
	})

	t.Run("valid DATABASE_URL should connect", func(t *testing.T) {
		dsn := os.Getenv("DATABASE_URL")
		if dsn == "" {
			t.Skip("DATABASE_URL not set, skipping integration test")
		}

		pool, err := ConnectPostgres(context.Background(), dsn)
		if err != nil {
			t.Fatalf("connect: %v", err)
		}
		pool.Close()
	})
}

func TestOpenSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agg.db")

	db, err := OpenSQLite(context.Background(), path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM user_aggregates`).Scan(&n); err != nil {
		t.Fatalf("schema missing: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected empty table, got %d rows", n)
	}
}
