// Package naturaldate resolves free-text English date expressions
// ("tomorrow", "next friday", "a month ago", "4/13/2019") into calendar
// dates anchored to "now" in a fixed organizational timezone.
//
// Parsing is rule-based and pure: a Parser holds the timezone and an
// injectable clock, and every result is the midnight of the resolved day in
// that timezone. Time-of-day is never produced.
package naturaldate

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/getwhereabouts/whereabouts/server/timezone"
)

// ISODate is the normalized on-the-wire date format.
const ISODate = "2006-01-02"

// Patterns for date parsing
var (
	weekdayPattern = regexp.MustCompile(
		`^(?:(next|this|last)\s+)?(sunday|monday|tuesday|wednesday|thursday|friday|saturday)$`)
	offsetPattern = regexp.MustCompile(
		`^(an?|one|two|three|four|five|six|seven|eight|nine|ten|eleven|twelve|\d+)\s+(day|week|month|year)s?\s+(ago|from\s+now|from\s+today|hence)$`)
	inOffsetPattern = regexp.MustCompile(
		`^in\s+(an?|one|two|three|four|five|six|seven|eight|nine|ten|eleven|twelve|\d+)\s+(day|week|month|year)s?$`)
	unitShiftPattern = regexp.MustCompile(
		`^(next|last)\s+(week|month|year)$`)
)

// relDayOffsets maps relative day keywords to day offsets.
var relDayOffsets = map[string]int{
	"today":     0,
	"tomorrow":  1,
	"yesterday": -1,
}

// weekdays maps lowercased weekday names to time.Weekday.
var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// numberWords maps spelled-out counts to integers.
var numberWords = map[string]int{
	"a": 1, "an": 1, "one": 1,
	"two": 2, "three": 3, "four": 4, "five": 5, "six": 6,
	"seven": 7, "eight": 8, "nine": 9, "ten": 10,
	"eleven": 11, "twelve": 12,
}

// dateLayouts are the explicit literal formats accepted before any
// natural-language rule runs. Layouts without a year take the anchor's year.
// Order matters: four-digit years must be tried before two-digit years.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"1/2/2006",
	"1/2/06",
	"1/2",
	"January 2, 2006",
	"Jan 2, 2006",
	"January 2",
	"Jan 2",
}

// Parser resolves natural language date expressions.
type Parser struct {
	timezone *time.Location
	now      func() time.Time
}

// NewParser creates a parser anchored to the given organizational timezone.
func NewParser(timezone *time.Location) *Parser {
	if timezone == nil {
		timezone = time.UTC
	}
	return &Parser{
		timezone: timezone,
		now:      time.Now,
	}
}

// WithNow returns a parser whose anchor clock is replaced. Used by callers
// that need a deterministic "now" (and by tests).
func (p *Parser) WithNow(now func() time.Time) *Parser {
	return &Parser{
		timezone: p.timezone,
		now:      now,
	}
}

// Location returns the parser's timezone.
func (p *Parser) Location() *time.Location {
	return p.timezone
}

// Today returns the anchor's date at midnight in the parser's timezone.
func (p *Parser) Today() time.Time {
	return timezone.Midnight(p.now(), p.timezone)
}

// ParseDate resolves a single date expression. The result is always midnight
// in the parser's timezone; failure is always an *InvalidDateError, including
// malformed literals such as year digit runs that overflow the layout.
func (p *Parser) ParseDate(input string) (time.Time, error) {
	expr := strings.ToLower(strings.TrimSpace(input))
	if expr == "" {
		return time.Time{}, &InvalidDateError{Expression: input}
	}

	today := p.Today()

	if t, ok := p.tryLiteral(expr, today); ok {
		return t, nil
	}
	if offset, ok := relDayOffsets[expr]; ok {
		return today.AddDate(0, 0, offset), nil
	}
	if t, ok := p.tryWeekday(expr, today); ok {
		return t, nil
	}
	if t, ok := p.tryUnitShift(expr, today); ok {
		return t, nil
	}
	if t, ok := p.tryRelativeOffset(expr, today); ok {
		return t, nil
	}

	return time.Time{}, &InvalidDateError{Expression: input}
}

// ISO formats a resolved date in the normalized YYYY-MM-DD form.
func ISO(t time.Time) string {
	return t.Format(ISODate)
}

// tryLiteral attempts the explicit date layouts.
func (p *Parser) tryLiteral(expr string, today time.Time) (time.Time, bool) {
	for _, layout := range dateLayouts {
		t, err := time.ParseInLocation(layout, expr, p.timezone)
		if err != nil {
			continue
		}
		year := t.Year()
		if year == 0 {
			// Layout carries no year; anchor to the current one.
			year = today.Year()
		}
		return time.Date(year, t.Month(), t.Day(), 0, 0, 0, 0, p.timezone), true
	}
	return time.Time{}, false
}

// tryWeekday resolves weekday names with an optional next/this/last modifier.
//
// Bare names and "this" pick the closest occurrence counting today; "next"
// picks the closest strictly-future occurrence; "last" the closest
// strictly-past one.
func (p *Parser) tryWeekday(expr string, today time.Time) (time.Time, bool) {
	matches := weekdayPattern.FindStringSubmatch(expr)
	if matches == nil {
		return time.Time{}, false
	}

	modifier := matches[1]
	target := weekdays[matches[2]]
	delta := (int(target) - int(today.Weekday()) + 7) % 7

	switch modifier {
	case "next":
		if delta == 0 {
			delta = 7
		}
	case "last":
		delta -= 7
	}

	return today.AddDate(0, 0, delta), true
}

// tryUnitShift resolves "next week", "last month" and the like as exactly
// one unit away from the anchor day.
func (p *Parser) tryUnitShift(expr string, today time.Time) (time.Time, bool) {
	matches := unitShiftPattern.FindStringSubmatch(expr)
	if matches == nil {
		return time.Time{}, false
	}

	n := 1
	if matches[1] == "last" {
		n = -1
	}
	return addUnit(today, matches[2], n)
}

// tryRelativeOffset resolves offsets like "a month ago", "two weeks from
// now", "in 3 days". Months and years move via AddDate so calendar lengths
// are respected.
func (p *Parser) tryRelativeOffset(expr string, today time.Time) (time.Time, bool) {
	var count, unit, direction string

	if matches := offsetPattern.FindStringSubmatch(expr); matches != nil {
		count, unit, direction = matches[1], matches[2], matches[3]
	} else if matches := inOffsetPattern.FindStringSubmatch(expr); matches != nil {
		count, unit, direction = matches[1], matches[2], "from now"
	} else {
		return time.Time{}, false
	}

	n, ok := parseCount(count)
	if !ok {
		return time.Time{}, false
	}
	if direction == "ago" {
		n = -n
	}
	return addUnit(today, unit, n)
}

// addUnit moves by n calendar units; AddDate keeps month and year lengths
// honest.
func addUnit(t time.Time, unit string, n int) (time.Time, bool) {
	switch unit {
	case "day":
		return t.AddDate(0, 0, n), true
	case "week":
		return t.AddDate(0, 0, n*7), true
	case "month":
		return t.AddDate(0, n, 0), true
	case "year":
		return t.AddDate(n, 0, 0), true
	}
	return time.Time{}, false
}

func parseCount(word string) (int, bool) {
	if n, ok := numberWords[word]; ok {
		return n, true
	}
	n, err := strconv.Atoi(word)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
