package store

import (
	"context"
	"database/sql"
)

// Driver is an interface for store driver.
// It contains all methods that store database driver should implement.
type Driver interface {
	GetDB() *sql.DB
	Close() error

	IsInitialized(ctx context.Context) (bool, error)

	// StatusRecord model related methods.
	UpsertStatusRecord(ctx context.Context, upsert *UpsertStatusRecord) (*StatusRecord, error)
	ListStatusRecords(ctx context.Context, find *FindStatusRecord) ([]*StatusRecord, error)
}
