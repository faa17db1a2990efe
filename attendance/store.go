/*
store.go - Persistence interfaces for records, employees, and settings

PURPOSE:
  Defines the interface between the engine and the database. The engine is
  storage-agnostic; implementations exist for SQLite (store/sqlite) and
  in-memory (attendance/store).

UNIQUENESS CONTRACT:
  Create() MUST fail with ErrDuplicateRecord when a record already exists
  for the same (employee, day). This is how concurrent duplicate check-ins
  are serialized: the second writer observes the constraint violation
  instead of overwriting the first check-in. Last-write-wins is not
  acceptable here - it would silently drop a check-in timestamp.

MUTATION CONTRACT:
  Records are mutated in place through Update() until check-out, after
  which they are read-only except for manual admin corrections (Upsert).
  Records are never deleted in normal operation.

SEE ALSO:
  - store/memory.go: In-memory implementation for tests/dev
  - store/sqlite/sqlite.go: Production SQLite implementation
*/
package attendance

import (
	"context"
	"time"
)

// =============================================================================
// RECORD STORE
// =============================================================================

// RecordStore persists attendance records, one per (employee, day).
type RecordStore interface {
	// Create inserts a new record. Returns ErrDuplicateRecord if one
	// already exists for (rec.EmployeeID, rec.Day).
	Create(ctx context.Context, rec *AttendanceRecord) error

	// Get returns the record for the employee and day, or ErrRecordNotFound.
	Get(ctx context.Context, employeeID EmployeeID, day Day) (*AttendanceRecord, error)

	// Update replaces the stored record for (rec.EmployeeID, rec.Day).
	// Returns ErrRecordNotFound if no record exists.
	Update(ctx context.Context, rec *AttendanceRecord) error

	// Upsert creates or replaces the record. Used only by manual admin
	// override, which is an idempotent create-or-update by contract.
	Upsert(ctx context.Context, rec *AttendanceRecord) error

	// ListRange returns the employee's records with from <= Day <= to,
	// ordered by day.
	ListRange(ctx context.Context, employeeID EmployeeID, from, to Day) ([]*AttendanceRecord, error)
}

// =============================================================================
// DIRECTORY - Employee lookup
// =============================================================================

// Directory stores employees.
type Directory interface {
	SaveEmployee(ctx context.Context, emp Employee) error

	// GetEmployee returns the employee or ErrEmployeeNotFound.
	GetEmployee(ctx context.Context, id EmployeeID) (*Employee, error)

	ListEmployees(ctx context.Context) ([]Employee, error)
}

// =============================================================================
// SETTINGS - Externally owned payroll configuration
// =============================================================================

// SettingsSource yields the active payroll settings. Implementations must
// return DefaultSettings() rather than fail when nothing is configured.
type SettingsSource interface {
	PayrollSettings(ctx context.Context) (Settings, error)
}

// SettingsStore adds write access for the admin surface.
type SettingsStore interface {
	SettingsSource
	SavePayrollSettings(ctx context.Context, s Settings) error
}

// StaticSettings is a SettingsSource over a fixed value, for tests and
// deployments without a settings table.
type StaticSettings Settings

func (s StaticSettings) PayrollSettings(context.Context) (Settings, error) {
	return Settings(s), nil
}

// =============================================================================
// AUDIT LOG - Who overrode what, when
// =============================================================================

// AuditEntry records a manual admin correction. Append-only.
type AuditEntry struct {
	ID         string
	At         time.Time
	ActorID    string
	Action     AuditAction
	EmployeeID EmployeeID
	Day        Day
	Payload    map[string]string
}

type AuditAction string

const (
	AuditManualCreate AuditAction = "manual_create"
	AuditManualUpdate AuditAction = "manual_update"
	AuditSettingsSave AuditAction = "settings_save"
)

// AuditLog stores audit entries.
type AuditLog interface {
	AppendAudit(ctx context.Context, entry AuditEntry) error
	AuditEntries(ctx context.Context, employeeID EmployeeID, from, to Day) ([]AuditEntry, error)
}
