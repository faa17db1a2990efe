/*
errors.go - Centralized error types for the attendance engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  The HTTP layer maps these to status codes; the engine itself never
  retries and never swallows them.

ERROR CATEGORIES:
  1. State-machine violations - user-correctable, surfaced as rejected actions
  2. Validation errors - caller-supplied invalid arguments
  3. Store errors - duplicate/missing records at the persistence boundary

USAGE:
  Callers match with errors.Is():

    if errors.Is(err, attendance.ErrAlreadyCheckedIn) {
        // second check-in on the same day; the stored record is unchanged
    }

SEE ALSO:
  - shift.go: Produces the state-machine errors
  - payroll.go: Produces the validation errors
  - store.go: Store-boundary sentinels
*/
package attendance

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrAlreadyCheckedIn is returned when a record already exists for the
	// employee and day. The existing record is left untouched.
	ErrAlreadyCheckedIn = errors.New("already checked in")

	// ErrAlreadyCheckedOut is returned when check-out (or a break event)
	// arrives after the shift has already ended.
	ErrAlreadyCheckedOut = errors.New("already checked out")

	// ErrAlreadyOnBreak is returned when break-start arrives while a break
	// is already open.
	ErrAlreadyOnBreak = errors.New("already on break")

	// ErrNotCheckedIn is returned when an event requires a checked-in shift
	// and no usable record exists.
	ErrNotCheckedIn = errors.New("not checked in")

	// ErrNotOnBreak is returned when break-end arrives with no open break.
	ErrNotOnBreak = errors.New("not on break")

	// ErrOnBreakCannotCheckOut is returned when check-out arrives while a
	// break is open. The break must be ended first so TotalBreakTime is
	// fully settled before work-time arithmetic runs.
	ErrOnBreakCannotCheckOut = errors.New("on break: end break before checking out")

	// ErrEmployeeNotFound is returned when a referenced employee doesn't exist.
	ErrEmployeeNotFound = errors.New("employee not found")

	// ErrInvalidPeriod is returned for a malformed payroll year/month.
	ErrInvalidPeriod = errors.New("invalid payroll period")

	// ErrInvalidCalendarInput is returned for a malformed calendar year/month.
	ErrInvalidCalendarInput = errors.New("invalid calendar input")

	// ErrDuplicateRecord is returned by a store when creating a record that
	// violates the (employee, day) uniqueness constraint.
	ErrDuplicateRecord = errors.New("attendance record already exists for day")

	// ErrRecordNotFound is returned by a store when no record exists for
	// the requested (employee, day).
	ErrRecordNotFound = errors.New("attendance record not found")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// TransitionError describes a rejected shift state-machine event.
type TransitionError struct {
	EmployeeID EmployeeID
	Day        Day
	Event      string // "check-in", "break-start", "break-end", "check-out"
	From       Status
	Err        error
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s rejected for %s on %s (status %s): %v",
		e.Event, e.EmployeeID, e.Day, e.From, e.Err)
}

func (e *TransitionError) Unwrap() error { return e.Err }

// PeriodError describes an invalid payroll/calendar period.
type PeriodError struct {
	Year  int
	Month int
	Err   error
}

func (e *PeriodError) Error() string {
	return fmt.Sprintf("%v: year=%d month=%d", e.Err, e.Year, e.Month)
}

func (e *PeriodError) Unwrap() error { return e.Err }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is a user-correctable rejection
// (state-machine violation or invalid argument), as opposed to a store failure.
func IsClientError(err error) bool {
	return errors.Is(err, ErrAlreadyCheckedIn) ||
		errors.Is(err, ErrAlreadyCheckedOut) ||
		errors.Is(err, ErrAlreadyOnBreak) ||
		errors.Is(err, ErrNotCheckedIn) ||
		errors.Is(err, ErrNotOnBreak) ||
		errors.Is(err, ErrOnBreakCannotCheckOut) ||
		errors.Is(err, ErrInvalidPeriod) ||
		errors.Is(err, ErrInvalidCalendarInput)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrEmployeeNotFound) ||
		errors.Is(err, ErrRecordNotFound)
}
