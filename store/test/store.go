package test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/getwhereabouts/whereabouts/internal/profile"
	"github.com/getwhereabouts/whereabouts/store"
	"github.com/getwhereabouts/whereabouts/store/db"
)

// NewTestingStore opens a throwaway SQLite-backed store with the schema
// applied. Set WHEREABOUTS_TEST_DRIVER/WHEREABOUTS_TEST_DSN to run the same
// tests against PostgreSQL.
func NewTestingStore(ctx context.Context, t *testing.T) *store.Store {
	t.Helper()

	testProfile := getTestingProfile(t)
	dbDriver, err := db.NewDBDriver(testProfile)
	if err != nil {
		t.Fatalf("failed to create db driver: %v", err)
	}
	ts := store.New(dbDriver, testProfile)
	if err := ts.Migrate(ctx); err != nil {
		t.Fatalf("failed to migrate db: %v", err)
	}
	t.Cleanup(func() {
		_ = ts.Close()
	})
	return ts
}

func getTestingProfile(t *testing.T) *profile.Profile {
	t.Helper()

	driver := os.Getenv("WHEREABOUTS_TEST_DRIVER")
	if driver == "" {
		driver = "sqlite"
	}
	dsn := os.Getenv("WHEREABOUTS_TEST_DSN")
	if driver == "sqlite" {
		dsn = filepath.Join(t.TempDir(), "whereabouts_test.db")
	}

	return &profile.Profile{
		Mode:     "dev",
		Driver:   driver,
		DSN:      dsn,
		Timezone: "America/New_York",
	}
}
