package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/attendance-engine/attendance"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func sampleRecord(id attendance.EmployeeID, day attendance.Day) *attendance.AttendanceRecord {
	in := day.At(9, 0)
	rec := attendance.NewRecord(id, day)
	rec.Status = attendance.StatusPresent
	rec.CheckIn = &in
	rec.CreatedAt = in
	rec.UpdatedAt = in
	return rec
}

func TestRecordRoundTrip(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	day := attendance.NewDay(2025, time.April, 7)

	rec := sampleRecord("emp-1", day)
	out := day.At(17, 30)
	end := day.At(12, 45)
	rec.Breaks = []attendance.Break{{Start: day.At(12, 0), End: &end}}
	rec.TotalBreakTime = 45
	rec.CheckOut = &out
	rec.TotalWorkTime = 465
	rec.Status = attendance.StatusCheckedOut

	if err := st.Create(ctx, rec); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := st.Get(ctx, "emp-1", day)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Status != attendance.StatusCheckedOut {
		t.Errorf("status = %s, want checked-out", got.Status)
	}
	if got.TotalWorkTime != 465 || got.TotalBreakTime != 45 {
		t.Errorf("work/break = %d/%d, want 465/45", got.TotalWorkTime, got.TotalBreakTime)
	}
	if len(got.Breaks) != 1 {
		t.Fatalf("breaks = %d, want 1", len(got.Breaks))
	}
	if got.Breaks[0].End == nil || !got.Breaks[0].End.Equal(end) {
		t.Errorf("break end = %v, want %v", got.Breaks[0].End, end)
	}
	if !got.CheckIn.Equal(*rec.CheckIn) {
		t.Errorf("check-in = %v, want %v", got.CheckIn, rec.CheckIn)
	}
}

func TestCreate_DuplicateDayRejected(t *testing.T) {
	// The (employee, day) primary key is what turns a concurrent double
	// check-in into ErrDuplicateRecord.
	st := newTestStore(t)
	ctx := context.Background()
	day := attendance.NewDay(2025, time.April, 7)

	if err := st.Create(ctx, sampleRecord("emp-1", day)); err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	err := st.Create(ctx, sampleRecord("emp-1", day))
	if !errors.Is(err, attendance.ErrDuplicateRecord) {
		t.Errorf("expected ErrDuplicateRecord, got %v", err)
	}

	// Same day for a different employee is fine.
	if err := st.Create(ctx, sampleRecord("emp-2", day)); err != nil {
		t.Errorf("other employee create failed: %v", err)
	}
}

func TestGet_MissingRecord(t *testing.T) {
	st := newTestStore(t)
	_, err := st.Get(context.Background(), "emp-1", attendance.NewDay(2025, time.April, 7))
	if !errors.Is(err, attendance.ErrRecordNotFound) {
		t.Errorf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestUpdate_MissingRecord(t *testing.T) {
	st := newTestStore(t)
	rec := sampleRecord("emp-1", attendance.NewDay(2025, time.April, 7))
	err := st.Update(context.Background(), rec)
	if !errors.Is(err, attendance.ErrRecordNotFound) {
		t.Errorf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestUpsert_CreatesThenUpdates(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	day := attendance.NewDay(2025, time.April, 7)

	rec := sampleRecord("emp-1", day)
	if err := st.Upsert(ctx, rec); err != nil {
		t.Fatalf("first upsert failed: %v", err)
	}

	rec.Status = attendance.StatusAbsent
	if err := st.Upsert(ctx, rec); err != nil {
		t.Fatalf("second upsert failed: %v", err)
	}

	got, err := st.Get(ctx, "emp-1", day)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Status != attendance.StatusAbsent {
		t.Errorf("status = %s, want absent", got.Status)
	}
}

func TestListRange_SortedAndBounded(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	days := []int{10, 3, 7, 25}
	for _, d := range days {
		if err := st.Create(ctx, sampleRecord("emp-1", attendance.NewDay(2025, time.April, d))); err != nil {
			t.Fatalf("create day %d failed: %v", d, err)
		}
	}
	// Out-of-range and other-employee rows must not appear.
	st.Create(ctx, sampleRecord("emp-1", attendance.NewDay(2025, time.May, 1)))
	st.Create(ctx, sampleRecord("emp-2", attendance.NewDay(2025, time.April, 7)))

	got, err := st.ListRange(ctx, "emp-1",
		attendance.NewDay(2025, time.April, 1),
		attendance.NewDay(2025, time.April, 30))
	if err != nil {
		t.Fatalf("ListRange failed: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("expected 4 records, got %d", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].Day.Before(got[i-1].Day) {
			t.Errorf("records out of order: %s before %s", got[i].Day, got[i-1].Day)
		}
	}
}

func TestEmployeeRoundTrip(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	emp := attendance.Employee{
		ID:         "emp-1",
		Name:       "Dana Reyes",
		Email:      "dana@example.com",
		BaseSalary: decimal.NewFromInt(30000),
		HireDate:   time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC),
		CreatedAt:  time.Now().UTC(),
	}
	if err := st.SaveEmployee(ctx, emp); err != nil {
		t.Fatalf("SaveEmployee failed: %v", err)
	}

	got, err := st.GetEmployee(ctx, "emp-1")
	if err != nil {
		t.Fatalf("GetEmployee failed: %v", err)
	}
	if !got.BaseSalary.Equal(emp.BaseSalary) {
		t.Errorf("base salary = %s, want %s", got.BaseSalary, emp.BaseSalary)
	}

	_, err = st.GetEmployee(ctx, "nobody")
	if !errors.Is(err, attendance.ErrEmployeeNotFound) {
		t.Errorf("expected ErrEmployeeNotFound, got %v", err)
	}
}

func TestSettings_DefaultsUntilSaved(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	settings, err := st.PayrollSettings(ctx)
	if err != nil {
		t.Fatalf("PayrollSettings failed: %v", err)
	}
	if len(settings.OffDays) != 1 || settings.OffDays[0] != time.Sunday {
		t.Errorf("default off days = %v, want [Sunday]", settings.OffDays)
	}

	saved := attendance.Settings{
		OffDays: []time.Weekday{time.Saturday, time.Sunday},
		Holidays: []attendance.Holiday{
			{Date: attendance.NewDay(2025, time.December, 25), Label: "Christmas"},
		},
	}
	if err := st.SavePayrollSettings(ctx, saved); err != nil {
		t.Fatalf("SavePayrollSettings failed: %v", err)
	}

	settings, err = st.PayrollSettings(ctx)
	if err != nil {
		t.Fatalf("PayrollSettings after save failed: %v", err)
	}
	if len(settings.OffDays) != 2 {
		t.Errorf("off days = %v, want two entries", settings.OffDays)
	}
	if len(settings.Holidays) != 1 || settings.Holidays[0].Label != "Christmas" {
		t.Errorf("holidays = %v", settings.Holidays)
	}
}

func TestAuditAppendAndQuery(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	day := attendance.NewDay(2025, time.April, 7)

	entries := []attendance.AuditEntry{
		{ID: "a1", At: day.At(10, 0), ActorID: "admin-1", Action: attendance.AuditManualCreate,
			EmployeeID: "emp-1", Day: day, Payload: map[string]string{"status": "present"}},
		{ID: "a2", At: day.At(11, 0), ActorID: "admin-1", Action: attendance.AuditManualUpdate,
			EmployeeID: "emp-1", Day: day, Payload: map[string]string{"status": "absent"}},
		{ID: "a3", At: day.At(11, 0), ActorID: "admin-1", Action: attendance.AuditManualCreate,
			EmployeeID: "emp-2", Day: day, Payload: map[string]string{"status": "present"}},
	}
	for _, e := range entries {
		if err := st.AppendAudit(ctx, e); err != nil {
			t.Fatalf("AppendAudit failed: %v", err)
		}
	}

	got, err := st.AuditEntries(ctx, "emp-1", day, day)
	if err != nil {
		t.Fatalf("AuditEntries failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 entries for emp-1, got %d", len(got))
	}
	if got[0].Action != attendance.AuditManualCreate || got[1].Action != attendance.AuditManualUpdate {
		t.Errorf("entries out of order or wrong actions: %+v", got)
	}
	if got[1].Payload["status"] != "absent" {
		t.Errorf("payload = %v", got[1].Payload)
	}
}
