/*
calendar.go - Working-day resolution for a month

PURPOSE:
  Given a year/month and the configured weekly off-days and named holidays,
  compute every day of the month and classify it as working or non-working.
  The result feeds both the shift state machine (is today a working day?)
  and the accrual classifier (is an absence on this day still paid?).

CLASSIFICATION:
  A day is NON-working if its weekday is in Settings.OffDays OR its ISO
  date matches a holiday. Everything else is a working day. The resolver
  is a pure function of its inputs; it reads no ambient state.

DEFAULTS:
  When no settings have been configured, DefaultSettings() applies:
  Sundays off, no holidays. Callers that load settings from a store get
  this fallback rather than an error.

SEE ALSO:
  - accrual.go: Consumes the working/non-working split
  - payroll.go: Drives the resolver once per payroll computation
*/
package attendance

import "time"

// =============================================================================
// PAYROLL SETTINGS - Off-days and holidays
// =============================================================================

// Holiday is an additional non-working day regardless of weekday.
type Holiday struct {
	Date  Day    `json:"date"`
	Label string `json:"label"`
}

// Settings is the payroll calendar configuration. It is passed explicitly
// into every resolver and aggregator call; the engine holds no global copy.
type Settings struct {
	// OffDays are weekdays globally treated as non-working.
	OffDays []time.Weekday `json:"off_days"`

	// Holidays are additional non-working days.
	Holidays []Holiday `json:"holidays"`
}

// DefaultSettings returns the fallback configuration used when none has
// been stored: Sundays off, no holidays.
func DefaultSettings() Settings {
	return Settings{OffDays: []time.Weekday{time.Sunday}}
}

// IsOffDay reports whether the weekday is a configured weekly off-day.
func (s Settings) IsOffDay(w time.Weekday) bool {
	for _, off := range s.OffDays {
		if off == w {
			return true
		}
	}
	return false
}

// IsHoliday reports whether the day matches a configured holiday.
func (s Settings) IsHoliday(d Day) bool {
	for _, h := range s.Holidays {
		if h.Date.Equal(d) {
			return true
		}
	}
	return false
}

// IsWorkingDay reports whether the day is neither an off-day nor a holiday.
func (s Settings) IsWorkingDay(d Day) bool {
	return !s.IsOffDay(d.Weekday()) && !s.IsHoliday(d)
}

// =============================================================================
// CALENDAR RESOLVER
// =============================================================================

// CalendarDay is one resolved day of a month.
type CalendarDay struct {
	Day     Day
	Working bool
}

// DaysInMonth returns the number of days in the month via the proleptic
// Gregorian calendar: day 0 of the next month is the last day of this one.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ResolveCalendar computes every day of the month with its working-day
// classification. Pure function; the only failure mode is an invalid
// year/month.
func ResolveCalendar(year int, month time.Month, settings Settings) ([]CalendarDay, error) {
	if err := validateYearMonth(year, month, ErrInvalidCalendarInput); err != nil {
		return nil, err
	}

	n := DaysInMonth(year, month)
	days := make([]CalendarDay, 0, n)
	for dom := 1; dom <= n; dom++ {
		d := NewDay(year, month, dom)
		days = append(days, CalendarDay{Day: d, Working: settings.IsWorkingDay(d)})
	}
	return days, nil
}

// WorkingDayCount returns how many resolved days are working days.
func WorkingDayCount(days []CalendarDay) int {
	count := 0
	for _, d := range days {
		if d.Working {
			count++
		}
	}
	return count
}

func validateYearMonth(year int, month time.Month, sentinel error) error {
	if year < 1 || year > 9999 || month < time.January || month > time.December {
		return &PeriodError{Year: year, Month: int(month), Err: sentinel}
	}
	return nil
}
