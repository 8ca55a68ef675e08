package naturaldate

import (
	"fmt"

	"github.com/pkg/errors"
)

// InvalidDateError reports an expression the grammar could not resolve to a
// calendar date. It is user-visible and non-fatal.
type InvalidDateError struct {
	Expression string
}

func (e *InvalidDateError) Error() string {
	return fmt.Sprintf("could not parse the given date %q", e.Expression)
}

// InvalidRangeError reports a range whose segments are malformed or whose
// resolved start date comes after its end date.
type InvalidRangeError struct {
	Expression string
	Reason     string
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid date range %q: %s", e.Expression, e.Reason)
}

// IsUserError reports whether err is a parse/validation failure that should
// be echoed back to the caller rather than treated as a server fault.
func IsUserError(err error) bool {
	var invalidDate *InvalidDateError
	var invalidRange *InvalidRangeError
	return errors.As(err, &invalidDate) || errors.As(err, &invalidRange)
}
