package naturaldate

import (
	"strings"
	"time"
)

// ExpandKind reports which branch of the expansion policy produced a result.
// Callers phrase their replies differently for each branch.
type ExpandKind int

const (
	// ExpandSingle is a lone date expression.
	ExpandSingle ExpandKind = iota
	// ExpandConjunction is an " and "-separated list of expressions.
	ExpandConjunction
	// ExpandRange is an inclusive "start through end" range.
	ExpandRange
)

// conjunctionSeparator splits multi-date lists. Conjunction detection runs
// before range detection and wins outright: connectors inside a conjunction
// piece are not expanded further.
const conjunctionSeparator = " and "

// rangeConnectors are checked in declared order; the first one literally
// present in the text performs the split.
var rangeConnectors = []string{" through ", " to ", " thru "}

// ExpandDates turns the options text of a write subcommand into the ordered
// list of dates it names. Blank input means "today". Conjunction pieces keep
// their written order and duplicates are preserved (each occurrence is one
// calendar write).
func (p *Parser) ExpandDates(options string) ([]time.Time, ExpandKind, error) {
	text := strings.TrimSpace(options)
	if text == "" {
		text = "today"
	}
	lowered := strings.ToLower(text)

	if strings.Contains(lowered, conjunctionSeparator) {
		pieces := strings.Split(lowered, conjunctionSeparator)
		dates := make([]time.Time, 0, len(pieces))
		for _, piece := range pieces {
			date, err := p.ParseDate(piece)
			if err != nil {
				return nil, ExpandConjunction, err
			}
			dates = append(dates, date)
		}
		return dates, ExpandConjunction, nil
	}

	for _, connector := range rangeConnectors {
		if !strings.Contains(lowered, connector) {
			continue
		}

		segments := strings.Split(lowered, connector)
		if len(segments) != 2 {
			return nil, ExpandRange, &InvalidRangeError{
				Expression: text,
				Reason:     "provide exactly one start and one end date, e.g. 'monday through friday'",
			}
		}
		start, end := strings.TrimSpace(segments[0]), strings.TrimSpace(segments[1])
		if start == "" || end == "" {
			return nil, ExpandRange, &InvalidRangeError{
				Expression: text,
				Reason:     "provide a start and an end date, e.g. 'monday through friday'",
			}
		}

		startDate, err := p.ParseDate(start)
		if err != nil {
			return nil, ExpandRange, err
		}
		endDate, err := p.ParseDate(end)
		if err != nil {
			return nil, ExpandRange, err
		}
		if startDate.After(endDate) {
			return nil, ExpandRange, &InvalidRangeError{
				Expression: text,
				Reason:     "the start date must come before the end date",
			}
		}

		var dates []time.Time
		for d := startDate; !d.After(endDate); d = d.AddDate(0, 0, 1) {
			dates = append(dates, d)
		}
		return dates, ExpandRange, nil
	}

	date, err := p.ParseDate(lowered)
	if err != nil {
		return nil, ExpandSingle, err
	}
	return []time.Time{date}, ExpandSingle, nil
}
