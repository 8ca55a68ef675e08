package status

import (
	"fmt"
	"sort"
	"strings"

	"github.com/getwhereabouts/whereabouts/store"
)

// Scope selects which identifying fields appear in a listing and which
// records qualify for it.
type Scope int

const (
	// ScopeToday lists every user's status for the current day.
	ScopeToday Scope = iota
	// ScopeHistory lists one user's statuses over the past month.
	ScopeHistory
	// ScopeSchedule lists every user's upcoming statuses.
	ScopeSchedule
)

// Window is an inclusive start/end date range in normalized ISO form.
// ISO dates compare lexicographically in calendar order.
type Window struct {
	Start string
	End   string
}

// Contains reports whether date falls inside the window. Empty boundaries
// are open.
func (w Window) Contains(date string) bool {
	if w.Start != "" && date < w.Start {
		return false
	}
	if w.End != "" && date > w.End {
		return false
	}
	return true
}

// FormatListing turns raw records into sorted, human-readable lines.
//
// Only wfh and ooo records are surfaced; an "in" record exists solely to
// override an earlier announcement at the storage layer. Filtering is
// status-based, never recency-based, so duplicate rows from the store cannot
// leak an "in" line. The returned slice is empty, never nil-checked by
// callers as an error, when nothing qualifies.
func FormatListing(records []*store.StatusRecord, window Window, scope Scope, userID string) []string {
	lines := make([]string, 0, len(records))
	for _, record := range records {
		status := strings.ToLower(record.Status)
		if status != store.StatusWorkFromHome && status != store.StatusOutOfOffice {
			continue
		}
		if !window.Contains(record.Date) {
			continue
		}
		if scope == ScopeHistory && record.UserID != userID {
			continue
		}

		display := strings.ToUpper(status)
		switch scope {
		case ScopeToday:
			lines = append(lines, fmt.Sprintf("%s - %s", record.UserName, display))
		case ScopeHistory:
			lines = append(lines, fmt.Sprintf("%s - %s", record.Date, display))
		case ScopeSchedule:
			lines = append(lines, fmt.Sprintf("%s - %s - %s", record.Date, record.UserName, display))
		}
	}

	// Lexicographic sort: today-scope orders by name, the date-led scopes
	// order chronologically.
	sort.Strings(lines)
	return lines
}
