package attendance

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestClassify_RulePriority(t *testing.T) {
	day := NewDay(2025, time.April, 7)
	checkedOut := &AttendanceRecord{EmployeeID: "e1", Day: day, Status: StatusCheckedOut}
	present := &AttendanceRecord{EmployeeID: "e1", Day: day, Status: StatusPresent}
	halfDay := &AttendanceRecord{EmployeeID: "e1", Day: day, Status: StatusHalfDay, IsHalfDay: true}
	onBreak := &AttendanceRecord{EmployeeID: "e1", Day: day, Status: StatusOnBreak}
	absent := &AttendanceRecord{EmployeeID: "e1", Day: day, Status: StatusAbsent}
	// A record whose status was overridden after a half-day check-out keeps
	// the half-day flag; the flag alone forces the 0.5 credit.
	flaggedOnly := &AttendanceRecord{EmployeeID: "e1", Day: day, Status: StatusCheckedOut, IsHalfDay: true}

	cases := []struct {
		name    string
		rec     *AttendanceRecord
		working bool
		want    string
	}{
		{"half-day status on working day", halfDay, true, "0.5"},
		{"half-day flag wins over checked-out status", flaggedOnly, true, "0.5"},
		{"half-day on non-working day still 0.5", halfDay, false, "0.5"},
		{"checked-out on working day", checkedOut, true, "1"},
		{"present on working day", present, true, "1"},
		{"checked-out on holiday counts by status", checkedOut, false, "1"},
		{"no record on off-day is paid leave", nil, false, "1"},
		{"no record on working day", nil, true, "0"},
		{"on-break at classification time", onBreak, true, "0"},
		{"manual absent on a holiday", absent, false, "0"},
		{"absent on working day", absent, true, "0"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := Classify(c.rec, c.working)
			want, _ := decimal.NewFromString(c.want)
			if !got.Equal(want) {
				t.Errorf("Classify() = %s, want %s", got, want)
			}
		})
	}
}

func TestBreakMinutes_TruncatesPartialMinutes(t *testing.T) {
	start := time.Date(2025, time.April, 7, 13, 0, 0, 0, time.UTC)
	end := start.Add(45*time.Minute + 59*time.Second)
	b := Break{Start: start, End: &end}
	if got := b.Minutes(); got != 45 {
		t.Errorf("expected 45 minutes (seconds truncated), got %d", got)
	}
}

func TestBreakMinutes_OpenBreakIsZero(t *testing.T) {
	b := Break{Start: time.Date(2025, time.April, 7, 13, 0, 0, 0, time.UTC)}
	if !b.Open() {
		t.Fatal("break without end should be open")
	}
	if got := b.Minutes(); got != 0 {
		t.Errorf("open break should contribute 0 minutes, got %d", got)
	}
}
