/*
Package attendance provides the core attendance and payroll accrual engine.

PURPOSE:
  This package contains the domain types and algorithms for tracking daily
  shifts and converting them into payroll figures: the shift state machine
  (check-in, breaks, check-out), the working-day calendar resolver, the
  daily accrual classifier, and the monthly payroll aggregator.

KEY CONCEPTS IN THIS FILE (types.go):
  - AttendanceRecord: One employee's shift record for one calendar day
  - Status: The lifecycle state of a shift (absent ... checked-out/half-day)
  - Break: A single break span within a shift
  - Employee: A payroll subject with a monthly base salary

DESIGN PRINCIPLES:
  1. One record per (employee, day): enforced by the store, never in memory
  2. Precision: decimal.Decimal for paid-day and salary arithmetic
  3. Settled arithmetic: TotalWorkTime is computed exactly once, at check-out,
     after every break has been closed
  4. Explicit state: every transition is guarded; invalid events are rejected,
     never silently coerced

USAGE:
  rec, err := tracker.CheckIn(ctx, "emp-123")
  ...
  rec, err = tracker.CheckOut(ctx, "emp-123")
  // rec.TotalWorkTime now holds net minutes worked

SEE ALSO:
  - shift.go: State machine driving record transitions
  - calendar.go: Working-day resolution from settings
  - accrual.go: Paid-day classification
  - payroll.go: Monthly aggregation into salary figures
*/
package attendance

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// STATUS - Shift lifecycle state
// =============================================================================

type Status string

const (
	StatusAbsent     Status = "absent"
	StatusPresent    Status = "present"
	StatusOnBreak    Status = "on-break"
	StatusCheckedOut Status = "checked-out"
	StatusHalfDay    Status = "half-day"
)

// Valid reports whether s is one of the known shift statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusAbsent, StatusPresent, StatusOnBreak, StatusCheckedOut, StatusHalfDay:
		return true
	}
	return false
}

// Terminal reports whether the shift can no longer transition normally.
// Manual override may still rewrite a terminal record.
func (s Status) Terminal() bool {
	return s == StatusCheckedOut || s == StatusHalfDay
}

// =============================================================================
// IDENTIFIERS
// =============================================================================

type EmployeeID string

// =============================================================================
// BREAK - One break span within a shift
// =============================================================================

// Break records a single break. End is nil while the break is open.
// At most one break per record may be open at any time.
type Break struct {
	Start time.Time  `json:"start"`
	End   *time.Time `json:"end,omitempty"`
}

// Open reports whether the break has not been closed yet.
func (b Break) Open() bool { return b.End == nil }

// Minutes returns the closed break's length in whole minutes (floor).
// Returns 0 for an open break.
func (b Break) Minutes() int {
	if b.End == nil {
		return 0
	}
	return int(b.End.Sub(b.Start).Minutes())
}

// =============================================================================
// ATTENDANCE RECORD - One employee, one calendar day
// =============================================================================

// HalfDayThreshold is the net work time, in minutes, below which a completed
// shift is flagged as a half day. The comparison is strict: exactly 240
// minutes is a full day.
const HalfDayThreshold = 240

// AttendanceRecord is the shift record for one employee on one calendar day.
// Exactly one record may exist per (EmployeeID, Day); the store enforces it.
type AttendanceRecord struct {
	EmployeeID EmployeeID
	Day        Day
	Status     Status

	// CheckIn is set on first check-in and never changes afterwards.
	CheckIn *time.Time

	// CheckOut may only be set once CheckIn is set and no break is open.
	CheckOut *time.Time

	// Breaks in chronological order. At most the last entry may be open.
	Breaks []Break

	// TotalBreakTime accumulates closed-break minutes. Monotonically
	// non-decreasing; updated only when a break closes.
	TotalBreakTime int

	// TotalWorkTime = minutes(CheckOut-CheckIn) - TotalBreakTime, computed
	// at check-out and never recomputed.
	TotalWorkTime int

	// IsHalfDay is derived at check-out (TotalWorkTime < HalfDayThreshold)
	// or set by manual admin override.
	IsHalfDay bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewRecord creates an empty (absent) record for an employee and day.
func NewRecord(employeeID EmployeeID, day Day) *AttendanceRecord {
	return &AttendanceRecord{
		EmployeeID: employeeID,
		Day:        day,
		Status:     StatusAbsent,
	}
}

// OpenBreak returns the currently open break, or nil if none is open.
func (r *AttendanceRecord) OpenBreak() *Break {
	if len(r.Breaks) == 0 {
		return nil
	}
	last := &r.Breaks[len(r.Breaks)-1]
	if last.Open() {
		return last
	}
	return nil
}

// Clone returns a deep copy. Stores hand out clones so callers can never
// mutate persisted state without going through the state machine.
func (r *AttendanceRecord) Clone() *AttendanceRecord {
	if r == nil {
		return nil
	}
	cp := *r
	if r.CheckIn != nil {
		t := *r.CheckIn
		cp.CheckIn = &t
	}
	if r.CheckOut != nil {
		t := *r.CheckOut
		cp.CheckOut = &t
	}
	if r.Breaks != nil {
		cp.Breaks = make([]Break, len(r.Breaks))
		for i, b := range r.Breaks {
			cp.Breaks[i] = b
			if b.End != nil {
				t := *b.End
				cp.Breaks[i].End = &t
			}
		}
	}
	return &cp
}

// =============================================================================
// EMPLOYEE - Payroll subject
// =============================================================================

type Employee struct {
	ID         EmployeeID
	Name       string
	Email      string
	BaseSalary decimal.Decimal // monthly base salary
	HireDate   time.Time
	CreatedAt  time.Time
}

// =============================================================================
// PAYROLL RESULT - Output of the monthly aggregator
// =============================================================================

// PayrollResult is one payroll line for one employee and one month.
//
// CalculatedSalary = round(BaseSalary / DaysInMonth * PaidDays).
// The divisor is DaysInMonth, not WorkingDays; WorkingDays is informational
// and does not participate in the salary formula.
type PayrollResult struct {
	EmployeeID       EmployeeID
	Year             int
	Month            time.Month
	PaidDays         decimal.Decimal
	CalculatedSalary decimal.Decimal
	WorkingDays      int
	DaysInMonth      int
}
