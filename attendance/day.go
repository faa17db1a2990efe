package attendance

import "time"

// =============================================================================
// DAY - Calendar day normalized to midnight UTC
// =============================================================================

// Day identifies one calendar day in the system's reference timezone (UTC).
// The wrapped time is always midnight UTC, so Day values are comparable and
// usable as map keys.
type Day struct {
	t time.Time
}

func NewDay(year int, month time.Month, day int) Day {
	return Day{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DayOf truncates a timestamp to its calendar day in UTC.
func DayOf(t time.Time) Day {
	u := t.UTC()
	return NewDay(u.Year(), u.Month(), u.Day())
}

// Today returns the current calendar day.
func Today() Day { return DayOf(time.Now()) }

// Comparison
func (d Day) Before(other Day) bool { return d.t.Before(other.t) }
func (d Day) After(other Day) bool  { return d.t.After(other.t) }
func (d Day) Equal(other Day) bool  { return d.t.Equal(other.t) }
func (d Day) IsZero() bool          { return d.t.IsZero() }

// Arithmetic
func (d Day) AddDays(n int) Day { return Day{t: d.t.AddDate(0, 0, n)} }

// Properties
func (d Day) Year() int             { return d.t.Year() }
func (d Day) Month() time.Month     { return d.t.Month() }
func (d Day) DayOfMonth() int       { return d.t.Day() }
func (d Day) Weekday() time.Weekday { return d.t.Weekday() }

// Time returns the underlying midnight-UTC timestamp.
func (d Day) Time() time.Time { return d.t }

// At returns a timestamp on this day at the given wall-clock time.
func (d Day) At(hour, minute int) time.Time {
	return time.Date(d.t.Year(), d.t.Month(), d.t.Day(), hour, minute, 0, 0, time.UTC)
}

// ISO returns the day formatted as "2006-01-02".
func (d Day) ISO() string { return d.t.Format("2006-01-02") }

func (d Day) String() string { return d.ISO() }

// ParseDay parses an ISO "2006-01-02" date string.
func ParseDay(s string) (Day, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Day{}, err
	}
	return DayOf(t), nil
}

// MinutesBetween returns whole minutes from a to b (floor).
func MinutesBetween(a, b time.Time) int {
	return int(b.Sub(a).Minutes())
}
