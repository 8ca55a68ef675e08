package store

// Recognized status kinds. Anything else may be stored but is excluded from
// every aggregation.
const (
	StatusInOffice     = "in"
	StatusWorkFromHome = "wfh"
	StatusOutOfOffice  = "ooo"
)

// WriteStatuses are the subcommand keywords that persist a record.
var WriteStatuses = []string{StatusWorkFromHome, StatusOutOfOffice, StatusInOffice}

// StatusRecord is one work-location announcement for one (user, date) pair.
// The storage key is (user_id, date); a later write for the same pair
// replaces the earlier one.
type StatusRecord struct {
	ID  int32
	UID string

	// Standard fields
	CreatedTs int64
	UpdatedTs int64

	// Domain specific fields
	UserID   string
	UserName string
	// Date is the normalized calendar day, YYYY-MM-DD, no time component.
	Date   string
	Status string
}

// UpsertStatusRecord is the write payload. UID is assigned by the store when
// empty; on conflict the existing row keeps its original UID.
type UpsertStatusRecord struct {
	UID      string
	UserID   string
	UserName string
	Date     string
	Status   string

	UpdatedTs int64
}

// FindStatusRecord narrows a listing. Zero value scans everything.
type FindStatusRecord struct {
	UserID    *string
	Date      *string
	SinceDate *string
	UntilDate *string

	Limit  *int
	Offset *int
}
