/*
accrual.go - Daily paid-day classification

PURPOSE:
  Converts one day's shift record (or absence) plus the day's calendar
  classification into a paid-day contribution of 0, 0.5, or 1.0.

RULES (priority order):
  1. half-day record                        -> 0.5
  2. present or checked-out record          -> 1.0
  3. no record AND non-working day          -> 1.0  (paid by default)
  4. otherwise                              -> 0    (unexcused absence)

  The order is deliberate: an explicit record on a nominally non-working
  day (someone logged in on a holiday) is classified by its status, not by
  the calendar. The calendar fallback applies only in the absence of a
  record - a manual "absent" record on a holiday contradicts the default
  and pays nothing.
*/
package attendance

import "github.com/shopspring/decimal"

var (
	fullDay = decimal.NewFromInt(1)
	halfDay = decimal.NewFromFloat(0.5)
	noPay   = decimal.Zero
)

// Classify returns the paid-day contribution for one calendar day.
// rec is nil when the employee has no attendance record for the day.
func Classify(rec *AttendanceRecord, isWorkingDay bool) decimal.Decimal {
	switch {
	case rec != nil && (rec.Status == StatusHalfDay || rec.IsHalfDay):
		return halfDay
	case rec != nil && (rec.Status == StatusPresent || rec.Status == StatusCheckedOut):
		return fullDay
	case rec == nil && !isWorkingDay:
		return fullDay
	default:
		return noPay
	}
}
