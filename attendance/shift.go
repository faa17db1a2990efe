/*
shift.go - Shift state machine

PURPOSE:
  Drives the lifecycle of one attendance record through its day:

    absent -> present -> on-break <-> present -> checked-out (terminal)

  half-day is a terminal status reached from checked-out when net work time
  is under the threshold, or directly via manual admin override.

TRANSITIONS:
  check-in     no record exists        -> create, status=present
  break-start  status=present          -> open break, status=on-break
  break-end    status=on-break         -> close break, settle minutes, status=present
  check-out    status=present          -> set checkout, compute work time
  manual-set   (admin, any state)      -> idempotent upsert of any status

  Check-out is deliberately forbidden while a break is open: it forces
  explicit break closure so TotalBreakTime is fully settled before the
  work-time arithmetic runs. An open break would otherwise silently lose
  its minutes.

CONCURRENCY:
  Each transition is a single read-modify-write against the one record for
  (employee, today). Duplicate concurrent check-ins are serialized by the
  store's (employee, day) uniqueness constraint; the second writer observes
  ErrAlreadyCheckedIn and the stored record is unchanged.

SEE ALSO:
  - store.go: RecordStore contract the machine relies on
  - accrual.go: Consumes the finished records
*/
package attendance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// TRACKER - Shift state machine over a RecordStore
// =============================================================================

// Tracker applies shift events to attendance records. It performs no
// authorization; callers arrive already authenticated.
type Tracker struct {
	Records RecordStore

	// Audit, when non-nil, receives an entry for every manual override.
	Audit AuditLog

	// Now overrides the clock for tests. Nil means time.Now.
	Now func() time.Time
}

func NewTracker(records RecordStore) *Tracker {
	return &Tracker{Records: records}
}

func (t *Tracker) now() time.Time {
	if t.Now != nil {
		return t.Now()
	}
	return time.Now().UTC()
}

// CheckIn creates today's record for the employee with status present.
// Fails with ErrAlreadyCheckedIn if a record already exists; the existing
// record is left untouched.
func (t *Tracker) CheckIn(ctx context.Context, employeeID EmployeeID) (*AttendanceRecord, error) {
	now := t.now()
	day := DayOf(now)

	rec := NewRecord(employeeID, day)
	rec.CheckIn = &now
	rec.Status = StatusPresent
	rec.CreatedAt = now
	rec.UpdatedAt = now

	if err := t.Records.Create(ctx, rec); err != nil {
		if errors.Is(err, ErrDuplicateRecord) {
			return nil, &TransitionError{
				EmployeeID: employeeID, Day: day,
				Event: "check-in", From: StatusPresent, Err: ErrAlreadyCheckedIn,
			}
		}
		return nil, err
	}
	return rec, nil
}

// StartBreak opens a break on today's record.
func (t *Tracker) StartBreak(ctx context.Context, employeeID EmployeeID) (*AttendanceRecord, error) {
	now := t.now()
	day := DayOf(now)

	rec, err := t.load(ctx, employeeID, day, "break-start")
	if err != nil {
		return nil, err
	}

	switch rec.Status {
	case StatusPresent:
		// ok
	case StatusOnBreak:
		return nil, t.reject(rec, "break-start", ErrAlreadyOnBreak)
	case StatusCheckedOut, StatusHalfDay:
		return nil, t.reject(rec, "break-start", ErrAlreadyCheckedOut)
	default:
		return nil, t.reject(rec, "break-start", ErrNotCheckedIn)
	}

	rec.Breaks = append(rec.Breaks, Break{Start: now})
	rec.Status = StatusOnBreak
	rec.UpdatedAt = now

	if err := t.Records.Update(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// EndBreak closes the open break, settling its minutes into TotalBreakTime.
func (t *Tracker) EndBreak(ctx context.Context, employeeID EmployeeID) (*AttendanceRecord, error) {
	now := t.now()
	day := DayOf(now)

	rec, err := t.load(ctx, employeeID, day, "break-end")
	if err != nil {
		return nil, err
	}

	open := rec.OpenBreak()
	if rec.Status != StatusOnBreak || open == nil {
		return nil, t.reject(rec, "break-end", ErrNotOnBreak)
	}

	end := now
	open.End = &end
	rec.TotalBreakTime += open.Minutes()
	rec.Status = StatusPresent
	rec.UpdatedAt = now

	if err := t.Records.Update(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// CheckOut ends the shift and computes TotalWorkTime. A shift with net work
// time under HalfDayThreshold is flagged half-day; exactly the threshold is
// a full day.
func (t *Tracker) CheckOut(ctx context.Context, employeeID EmployeeID) (*AttendanceRecord, error) {
	now := t.now()
	day := DayOf(now)

	rec, err := t.load(ctx, employeeID, day, "check-out")
	if err != nil {
		return nil, err
	}

	switch {
	case rec.CheckOut != nil:
		return nil, t.reject(rec, "check-out", ErrAlreadyCheckedOut)
	case rec.Status == StatusOnBreak || rec.OpenBreak() != nil:
		return nil, t.reject(rec, "check-out", ErrOnBreakCannotCheckOut)
	case rec.Status != StatusPresent || rec.CheckIn == nil:
		return nil, t.reject(rec, "check-out", ErrNotCheckedIn)
	}

	out := now
	rec.CheckOut = &out
	rec.TotalWorkTime = MinutesBetween(*rec.CheckIn, out) - rec.TotalBreakTime
	rec.Status = StatusCheckedOut
	if rec.TotalWorkTime < HalfDayThreshold {
		rec.IsHalfDay = true
		rec.Status = StatusHalfDay
	}
	rec.UpdatedAt = now

	if err := t.Records.Update(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// =============================================================================
// MANUAL OVERRIDE - Admin create-or-update
// =============================================================================

// manualOp tags which branch of the upsert ran, for the audit trail.
type manualOp string

const (
	manualCreate manualOp = "create"
	manualUpdate manualOp = "update"
)

// SetManual sets the record for (employeeID, day) directly to the given
// status, creating the record if absent. Idempotent upsert: repeating the
// call with the same arguments leaves the same state. IsHalfDay always
// follows the target status.
func (t *Tracker) SetManual(ctx context.Context, employeeID EmployeeID, day Day, status Status, actorID string) (*AttendanceRecord, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("invalid status %q", status)
	}
	now := t.now()

	op := manualUpdate
	rec, err := t.Records.Get(ctx, employeeID, day)
	if errors.Is(err, ErrRecordNotFound) {
		op = manualCreate
		rec = t.synthesize(employeeID, day, status)
		rec.CreatedAt = now
	} else if err != nil {
		return nil, err
	}

	// Moving off on-break closes any open break. The span was never
	// settled, so it ends where it began and contributes no minutes;
	// leaving it open would let a later check-out run with an open break.
	if status != StatusOnBreak {
		if open := rec.OpenBreak(); open != nil {
			end := open.Start
			open.End = &end
		}
	}

	rec.Status = status
	rec.IsHalfDay = status == StatusHalfDay
	rec.UpdatedAt = now

	if err := t.Records.Upsert(ctx, rec); err != nil {
		return nil, err
	}

	if t.Audit != nil {
		action := AuditManualUpdate
		if op == manualCreate {
			action = AuditManualCreate
		}
		entry := AuditEntry{
			ID:         uuid.NewString(),
			At:         now,
			ActorID:    actorID,
			Action:     action,
			EmployeeID: employeeID,
			Day:        day,
			Payload:    map[string]string{"status": string(status)},
		}
		if err := t.Audit.AppendAudit(ctx, entry); err != nil {
			return nil, err
		}
	}
	return rec, nil
}

// synthesize builds a plausible record for a manual create. Timestamps are
// derived from the target day: a standard 09:00-17:00 shift for completed
// statuses, 09:00-12:59 for a half day.
func (t *Tracker) synthesize(employeeID EmployeeID, day Day, status Status) *AttendanceRecord {
	rec := NewRecord(employeeID, day)
	if status == StatusAbsent {
		return rec
	}

	in := day.At(9, 0)
	rec.CheckIn = &in

	switch status {
	case StatusOnBreak:
		rec.Breaks = []Break{{Start: day.At(12, 0)}}
	case StatusCheckedOut:
		out := day.At(17, 0)
		rec.CheckOut = &out
		rec.TotalWorkTime = MinutesBetween(in, out)
	case StatusHalfDay:
		// One minute under the threshold, so the work time agrees with
		// the half-day classification.
		out := day.At(12, 59)
		rec.CheckOut = &out
		rec.TotalWorkTime = MinutesBetween(in, out)
	}
	return rec
}

// =============================================================================
// INTERNAL
// =============================================================================

func (t *Tracker) load(ctx context.Context, employeeID EmployeeID, day Day, event string) (*AttendanceRecord, error) {
	rec, err := t.Records.Get(ctx, employeeID, day)
	if errors.Is(err, ErrRecordNotFound) {
		return nil, &TransitionError{
			EmployeeID: employeeID, Day: day,
			Event: event, From: StatusAbsent, Err: ErrNotCheckedIn,
		}
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (t *Tracker) reject(rec *AttendanceRecord, event string, sentinel error) error {
	return &TransitionError{
		EmployeeID: rec.EmployeeID, Day: rec.Day,
		Event: event, From: rec.Status, Err: sentinel,
	}
}
