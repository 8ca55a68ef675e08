package store

import (
	"context"
	"time"

	"github.com/lithammer/shortuuid/v4"

	"github.com/getwhereabouts/whereabouts/internal/profile"
)

// Store provides database access to all raw objects.
type Store struct {
	profile *profile.Profile
	driver  Driver
}

// New creates a new instance of Store.
func New(driver Driver, profile *profile.Profile) *Store {
	return &Store{
		driver:  driver,
		profile: profile,
	}
}

func (s *Store) GetDriver() Driver {
	return s.driver
}

func (s *Store) Close() error {
	return s.driver.Close()
}

// UpsertStatusRecord persists one announcement, last write wins per
// (user_id, date). The UID and timestamps are filled in when absent.
func (s *Store) UpsertStatusRecord(ctx context.Context, upsert *UpsertStatusRecord) (*StatusRecord, error) {
	if upsert.UID == "" {
		upsert.UID = shortuuid.New()
	}
	if upsert.UpdatedTs == 0 {
		upsert.UpdatedTs = time.Now().Unix()
	}
	return s.driver.UpsertStatusRecord(ctx, upsert)
}

func (s *Store) ListStatusRecords(ctx context.Context, find *FindStatusRecord) ([]*StatusRecord, error) {
	return s.driver.ListStatusRecords(ctx, find)
}

// ListStatusRecordsByDate returns every user's record for one calendar day.
func (s *Store) ListStatusRecordsByDate(ctx context.Context, date string) ([]*StatusRecord, error) {
	return s.driver.ListStatusRecords(ctx, &FindStatusRecord{Date: &date})
}

// ListStatusRecordsByUserSince returns one user's records dated on or after
// the given day.
func (s *Store) ListStatusRecordsByUserSince(ctx context.Context, userID, sinceDate string) ([]*StatusRecord, error) {
	return s.driver.ListStatusRecords(ctx, &FindStatusRecord{UserID: &userID, SinceDate: &sinceDate})
}

// ScanStatusRecords returns every stored record.
func (s *Store) ScanStatusRecords(ctx context.Context) ([]*StatusRecord, error) {
	return s.driver.ListStatusRecords(ctx, &FindStatusRecord{})
}
