package repository

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"testing"

	finmind "github.com/set-night/finmind"
	"github.com/set-night/finmind/internal/domain"
)

// Runs against a real Postgres only when TEST_DATABASE_URL is set.
func TestKVStore(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()

	migrations, err := fs.Sub(finmind.MigrationsFS, "migrations")
	if err != nil {
		t.Fatal(err)
	}
	if err := RunMigrations(dsn, migrations); err != nil {
		t.Fatalf("RunMigrations err=%v", err)
	}
	pool, err := NewPool(ctx, dsn)
	if err != nil {
		t.Fatalf("NewPool err=%v", err)
	}
	defer pool.Close()

	store := NewKVStore(pool)
	key := "test:" + t.Name()
	t.Cleanup(func() { _ = store.Remove(context.Background(), key) })

	if _, err := store.Get(ctx, key); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("missing key err=%v want ErrNotFound", err)
	}
	if err := store.Set(ctx, key, "v1"); err != nil {
		t.Fatal(err)
	}
	if err := store.Set(ctx, key, "v2"); err != nil {
		t.Fatal(err)
	}
	if v, err := store.Get(ctx, key); err != nil || v != "v2" {
		t.Fatalf("Get=%q err=%v", v, err)
	}
	if err := store.Remove(ctx, key); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Get(ctx, key); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("after Remove err=%v", err)
	}
}
