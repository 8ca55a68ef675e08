package status

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/getwhereabouts/whereabouts/store"
)

func record(userID, userName, date, status string) *store.StatusRecord {
	return &store.StatusRecord{
		UserID:   userID,
		UserName: userName,
		Date:     date,
		Status:   status,
	}
}

func TestFormatListing_TodayScopeSortsByName(t *testing.T) {
	records := []*store.StatusRecord{
		record("U2", "Bob", "2024-01-01", "wfh"),
		record("U1", "Ann", "2024-01-01", "ooo"),
	}
	window := Window{Start: "2024-01-01", End: "2024-01-01"}

	lines := FormatListing(records, window, ScopeToday, "")
	assert.Equal(t, []string{"Ann - OOO", "Bob - WFH"}, lines)
}

func TestFormatListing_InOfficeNeverSurfaces(t *testing.T) {
	// The store is keyed so duplicates cannot normally occur, but the filter
	// is status-based, not recency-based: even if both rows come back with
	// the "in" row written last, no "in" line may appear.
	records := []*store.StatusRecord{
		record("U1", "Ann", "2024-01-01", "wfh"),
		record("U1", "Ann", "2024-01-01", "in"),
	}
	window := Window{Start: "2024-01-01", End: "2024-01-01"}

	lines := FormatListing(records, window, ScopeToday, "")
	assert.Equal(t, []string{"Ann - WFH"}, lines)
}

func TestFormatListing_StatusCaseInsensitive(t *testing.T) {
	records := []*store.StatusRecord{
		record("U1", "Ann", "2024-01-01", "WFH"),
		record("U2", "Bob", "2024-01-01", "Ooo"),
		record("U3", "Cid", "2024-01-01", "vacation"),
	}
	window := Window{Start: "2024-01-01", End: "2024-01-01"}

	lines := FormatListing(records, window, ScopeToday, "")
	assert.Equal(t, []string{"Ann - WFH", "Bob - OOO"}, lines)
}

func TestFormatListing_HistoryScope(t *testing.T) {
	window := Window{Start: "2023-12-01", End: "2024-01-01"}
	records := []*store.StatusRecord{
		record("U1", "Ann", "2023-11-30", "wfh"), // day before the month-ago boundary
		record("U1", "Ann", "2023-12-01", "wfh"), // boundary itself is included
		record("U1", "Ann", "2023-12-15", "ooo"),
		record("U1", "Ann", "2024-01-05", "ooo"), // future dates never show in history
		record("U2", "Bob", "2023-12-20", "ooo"), // other users are filtered out
	}

	lines := FormatListing(records, window, ScopeHistory, "U1")
	assert.Equal(t, []string{"2023-12-01 - WFH", "2023-12-15 - OOO"}, lines)
}

func TestFormatListing_ScheduleScope(t *testing.T) {
	window := Window{Start: "2024-01-01", End: "2024-02-01"}
	records := []*store.StatusRecord{
		record("U2", "Bob", "2024-01-03", "wfh"),
		record("U1", "Ann", "2024-01-02", "ooo"),
		record("U1", "Ann", "2023-12-30", "ooo"), // already past
	}

	lines := FormatListing(records, window, ScopeSchedule, "")
	assert.Equal(t, []string{
		"2024-01-02 - Ann - OOO",
		"2024-01-03 - Bob - WFH",
	}, lines)
}

func TestFormatListing_EmptyResultIsEmptySlice(t *testing.T) {
	window := Window{Start: "2024-01-01", End: "2024-01-01"}

	lines := FormatListing(nil, window, ScopeToday, "")
	assert.NotNil(t, lines)
	assert.Empty(t, lines)

	lines = FormatListing([]*store.StatusRecord{
		record("U1", "Ann", "2024-01-01", "in"),
	}, window, ScopeToday, "")
	assert.Empty(t, lines)
}
