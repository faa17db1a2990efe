/*
Package sqlite provides a SQLite-backed implementation of the storage interfaces.

PURPOSE:
  Implements attendance.RecordStore, attendance.Directory,
  attendance.SettingsStore, and attendance.AuditLog using SQLite. In
  production the same patterns apply to PostgreSQL - only minor SQL dialect
  differences.

UNIQUENESS ENFORCEMENT:
  The attendance_records table carries a UNIQUE(employee_id, day) primary
  key. A concurrent duplicate check-in hits the constraint and is surfaced
  as attendance.ErrDuplicateRecord, so the second writer observes
  AlreadyCheckedIn instead of overwriting the first check-in timestamp.

KEY TABLES:
  attendance_records: One row per (employee, day); mutated in place by
                      the shift state machine until check-out
  employees:          Payroll subjects with base salary
  payroll_settings:   Singleton row with off-days and holidays
  attendance_audit:   Append-only log of manual admin overrides

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  multiple readers don't block, single writer at a time.

USAGE:
  store, err := sqlite.New("./data/attendance.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  tracker := attendance.NewTracker(store)

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper migration
  tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - attendance/store.go: Interface definitions
  - attendance/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/attendance-engine/attendance"
)

// Store implements all storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- One row per (employee, day). The primary key is what serializes
	-- concurrent duplicate check-ins.
	CREATE TABLE IF NOT EXISTS attendance_records (
		employee_id TEXT NOT NULL,
		day TEXT NOT NULL,
		status TEXT NOT NULL,
		check_in TEXT,
		check_out TEXT,
		breaks_json TEXT NOT NULL DEFAULT '[]',
		total_break_minutes INTEGER NOT NULL DEFAULT 0,
		total_work_minutes INTEGER NOT NULL DEFAULT 0,
		is_half_day INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (employee_id, day)
	);

	CREATE INDEX IF NOT EXISTS idx_records_day
		ON attendance_records(day);

	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL,
		base_salary TEXT NOT NULL,
		hire_date TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	-- Singleton configuration row (id always 1).
	CREATE TABLE IF NOT EXISTS payroll_settings (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		off_days_json TEXT NOT NULL,
		holidays_json TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- Append-only log of manual admin overrides.
	CREATE TABLE IF NOT EXISTS attendance_audit (
		id TEXT PRIMARY KEY,
		at TEXT NOT NULL,
		actor_id TEXT NOT NULL,
		action TEXT NOT NULL,
		employee_id TEXT NOT NULL,
		day TEXT NOT NULL,
		payload_json TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_audit_employee_day
		ON attendance_audit(employee_id, day);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// RECORD STORE (attendance.RecordStore interface)
// =============================================================================

// breakRow is the JSON shape of one break inside breaks_json.
type breakRow struct {
	Start string  `json:"start"`
	End   *string `json:"end,omitempty"`
}

func (s *Store) Create(ctx context.Context, rec *attendance.AttendanceRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO attendance_records
		(employee_id, day, status, check_in, check_out, breaks_json,
		 total_break_minutes, total_work_minutes, is_half_day, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query, recordArgs(rec)...)
	if err != nil {
		if isUniqueConstraintError(err) {
			return attendance.ErrDuplicateRecord
		}
		return fmt.Errorf("failed to create record: %w", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, employeeID attendance.EmployeeID, day attendance.Day) (*attendance.AttendanceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT employee_id, day, status, check_in, check_out, breaks_json,
		       total_break_minutes, total_work_minutes, is_half_day, created_at, updated_at
		FROM attendance_records
		WHERE employee_id = ? AND day = ?
	`, string(employeeID), day.ISO())

	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, attendance.ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get record: %w", err)
	}
	return rec, nil
}

func (s *Store) Update(ctx context.Context, rec *attendance.AttendanceRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		UPDATE attendance_records
		SET status = ?, check_in = ?, check_out = ?, breaks_json = ?,
		    total_break_minutes = ?, total_work_minutes = ?, is_half_day = ?, updated_at = ?
		WHERE employee_id = ? AND day = ?
	`
	res, err := s.db.ExecContext(ctx, query,
		string(rec.Status),
		nullTime(rec.CheckIn),
		nullTime(rec.CheckOut),
		breaksJSON(rec.Breaks),
		rec.TotalBreakTime,
		rec.TotalWorkTime,
		boolInt(rec.IsHalfDay),
		rec.UpdatedAt.UTC().Format(time.RFC3339),
		string(rec.EmployeeID),
		rec.Day.ISO(),
	)
	if err != nil {
		return fmt.Errorf("failed to update record: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return attendance.ErrRecordNotFound
	}
	return nil
}

func (s *Store) Upsert(ctx context.Context, rec *attendance.AttendanceRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO attendance_records
		(employee_id, day, status, check_in, check_out, breaks_json,
		 total_break_minutes, total_work_minutes, is_half_day, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(employee_id, day) DO UPDATE SET
			status = excluded.status,
			check_in = excluded.check_in,
			check_out = excluded.check_out,
			breaks_json = excluded.breaks_json,
			total_break_minutes = excluded.total_break_minutes,
			total_work_minutes = excluded.total_work_minutes,
			is_half_day = excluded.is_half_day,
			updated_at = excluded.updated_at
	`
	_, err := s.db.ExecContext(ctx, query, recordArgs(rec)...)
	if err != nil {
		return fmt.Errorf("failed to upsert record: %w", err)
	}
	return nil
}

func (s *Store) ListRange(ctx context.Context, employeeID attendance.EmployeeID, from, to attendance.Day) ([]*attendance.AttendanceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT employee_id, day, status, check_in, check_out, breaks_json,
		       total_break_minutes, total_work_minutes, is_half_day, created_at, updated_at
		FROM attendance_records
		WHERE employee_id = ? AND day >= ? AND day <= ?
		ORDER BY day ASC
	`, string(employeeID), from.ISO(), to.ISO())
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	var result []*attendance.AttendanceRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, rec)
	}
	return result, rows.Err()
}

func recordArgs(rec *attendance.AttendanceRecord) []any {
	return []any{
		string(rec.EmployeeID),
		rec.Day.ISO(),
		string(rec.Status),
		nullTime(rec.CheckIn),
		nullTime(rec.CheckOut),
		breaksJSON(rec.Breaks),
		rec.TotalBreakTime,
		rec.TotalWorkTime,
		boolInt(rec.IsHalfDay),
		rec.CreatedAt.UTC().Format(time.RFC3339),
		rec.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*attendance.AttendanceRecord, error) {
	var (
		employeeID, dayStr, status string
		checkIn, checkOut          sql.NullString
		breaksRaw                  string
		breakMinutes, workMinutes  int
		halfDay                    int
		createdAt, updatedAt       string
	)
	if err := row.Scan(&employeeID, &dayStr, &status, &checkIn, &checkOut, &breaksRaw,
		&breakMinutes, &workMinutes, &halfDay, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	day, err := attendance.ParseDay(dayStr)
	if err != nil {
		return nil, fmt.Errorf("corrupt day value %q: %w", dayStr, err)
	}

	rec := &attendance.AttendanceRecord{
		EmployeeID:     attendance.EmployeeID(employeeID),
		Day:            day,
		Status:         attendance.Status(status),
		TotalBreakTime: breakMinutes,
		TotalWorkTime:  workMinutes,
		IsHalfDay:      halfDay != 0,
	}
	rec.CheckIn = parseNullTime(checkIn)
	rec.CheckOut = parseNullTime(checkOut)
	rec.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	rec.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)

	var rawBreaks []breakRow
	if err := json.Unmarshal([]byte(breaksRaw), &rawBreaks); err != nil {
		return nil, fmt.Errorf("corrupt breaks for %s/%s: %w", employeeID, dayStr, err)
	}
	for _, rb := range rawBreaks {
		start, err := time.Parse(time.RFC3339, rb.Start)
		if err != nil {
			return nil, fmt.Errorf("corrupt break start: %w", err)
		}
		b := attendance.Break{Start: start}
		if rb.End != nil {
			end, err := time.Parse(time.RFC3339, *rb.End)
			if err != nil {
				return nil, fmt.Errorf("corrupt break end: %w", err)
			}
			b.End = &end
		}
		rec.Breaks = append(rec.Breaks, b)
	}
	return rec, nil
}

// =============================================================================
// DIRECTORY (attendance.Directory interface)
// =============================================================================

func (s *Store) SaveEmployee(ctx context.Context, emp attendance.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	createdAt := emp.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	query := `
		INSERT INTO employees (id, name, email, base_salary, hire_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			email = excluded.email,
			base_salary = excluded.base_salary,
			hire_date = excluded.hire_date
	`
	_, err := s.db.ExecContext(ctx, query,
		string(emp.ID),
		emp.Name,
		emp.Email,
		emp.BaseSalary.String(),
		emp.HireDate.UTC().Format(time.RFC3339),
		createdAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save employee: %w", err)
	}
	return nil
}

func (s *Store) GetEmployee(ctx context.Context, id attendance.EmployeeID) (*attendance.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, email, base_salary, hire_date, created_at
		FROM employees WHERE id = ?
	`, string(id))

	emp, err := scanEmployee(row)
	if err == sql.ErrNoRows {
		return nil, attendance.ErrEmployeeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get employee: %w", err)
	}
	return emp, nil
}

func (s *Store) ListEmployees(ctx context.Context) ([]attendance.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, email, base_salary, hire_date, created_at
		FROM employees ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	var result []attendance.Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *emp)
	}
	return result, rows.Err()
}

func scanEmployee(row rowScanner) (*attendance.Employee, error) {
	var id, name, email, salary, hireDate, createdAt string
	if err := row.Scan(&id, &name, &email, &salary, &hireDate, &createdAt); err != nil {
		return nil, err
	}

	base, err := decimal.NewFromString(salary)
	if err != nil {
		return nil, fmt.Errorf("corrupt base salary %q: %w", salary, err)
	}

	emp := &attendance.Employee{
		ID:         attendance.EmployeeID(id),
		Name:       name,
		Email:      email,
		BaseSalary: base,
	}
	emp.HireDate, _ = time.Parse(time.RFC3339, hireDate)
	emp.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return emp, nil
}

// =============================================================================
// SETTINGS (attendance.SettingsStore interface)
// =============================================================================

type holidayRow struct {
	Date  string `json:"date"`
	Label string `json:"label"`
}

// PayrollSettings returns the stored settings, or DefaultSettings when the
// singleton row has never been written.
func (s *Store) PayrollSettings(ctx context.Context) (attendance.Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var offDaysRaw, holidaysRaw string
	err := s.db.QueryRowContext(ctx,
		"SELECT off_days_json, holidays_json FROM payroll_settings WHERE id = 1",
	).Scan(&offDaysRaw, &holidaysRaw)
	if err == sql.ErrNoRows {
		return attendance.DefaultSettings(), nil
	}
	if err != nil {
		return attendance.Settings{}, fmt.Errorf("failed to load settings: %w", err)
	}

	var offDays []int
	if err := json.Unmarshal([]byte(offDaysRaw), &offDays); err != nil {
		return attendance.Settings{}, fmt.Errorf("corrupt off days: %w", err)
	}
	var holidays []holidayRow
	if err := json.Unmarshal([]byte(holidaysRaw), &holidays); err != nil {
		return attendance.Settings{}, fmt.Errorf("corrupt holidays: %w", err)
	}

	settings := attendance.Settings{}
	for _, d := range offDays {
		settings.OffDays = append(settings.OffDays, time.Weekday(d))
	}
	for _, h := range holidays {
		day, err := attendance.ParseDay(h.Date)
		if err != nil {
			return attendance.Settings{}, fmt.Errorf("corrupt holiday date %q: %w", h.Date, err)
		}
		settings.Holidays = append(settings.Holidays, attendance.Holiday{Date: day, Label: h.Label})
	}
	return settings, nil
}

func (s *Store) SavePayrollSettings(ctx context.Context, settings attendance.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	offDays := make([]int, 0, len(settings.OffDays))
	for _, d := range settings.OffDays {
		offDays = append(offDays, int(d))
	}
	holidays := make([]holidayRow, 0, len(settings.Holidays))
	for _, h := range settings.Holidays {
		holidays = append(holidays, holidayRow{Date: h.Date.ISO(), Label: h.Label})
	}

	offDaysJSON, _ := json.Marshal(offDays)
	holidaysJSON, _ := json.Marshal(holidays)

	query := `
		INSERT INTO payroll_settings (id, off_days_json, holidays_json, updated_at)
		VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			off_days_json = excluded.off_days_json,
			holidays_json = excluded.holidays_json,
			updated_at = excluded.updated_at
	`
	_, err := s.db.ExecContext(ctx, query,
		string(offDaysJSON), string(holidaysJSON), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

// =============================================================================
// AUDIT LOG (attendance.AuditLog interface)
// =============================================================================

func (s *Store) AppendAudit(ctx context.Context, entry attendance.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	payloadJSON, _ := json.Marshal(entry.Payload)
	query := `
		INSERT INTO attendance_audit (id, at, actor_id, action, employee_id, day, payload_json)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		entry.ID,
		entry.At.UTC().Format(time.RFC3339),
		entry.ActorID,
		string(entry.Action),
		string(entry.EmployeeID),
		entry.Day.ISO(),
		string(payloadJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to append audit entry: %w", err)
	}
	return nil
}

func (s *Store) AuditEntries(ctx context.Context, employeeID attendance.EmployeeID, from, to attendance.Day) ([]attendance.AuditEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, at, actor_id, action, employee_id, day, payload_json
		FROM attendance_audit
		WHERE employee_id = ? AND day >= ? AND day <= ?
		ORDER BY at ASC
	`, string(employeeID), from.ISO(), to.ISO())
	if err != nil {
		return nil, fmt.Errorf("failed to query audit entries: %w", err)
	}
	defer rows.Close()

	var result []attendance.AuditEntry
	for rows.Next() {
		var (
			entry                     attendance.AuditEntry
			at, empID, dayStr, action string
			payloadRaw                sql.NullString
		)
		if err := rows.Scan(&entry.ID, &at, &entry.ActorID, &action, &empID, &dayStr, &payloadRaw); err != nil {
			return nil, err
		}
		entry.At, _ = time.Parse(time.RFC3339, at)
		entry.Action = attendance.AuditAction(action)
		entry.EmployeeID = attendance.EmployeeID(empID)
		entry.Day, err = attendance.ParseDay(dayStr)
		if err != nil {
			return nil, fmt.Errorf("corrupt audit day %q: %w", dayStr, err)
		}
		if payloadRaw.Valid && payloadRaw.String != "" {
			if err := json.Unmarshal([]byte(payloadRaw.String), &entry.Payload); err != nil {
				return nil, fmt.Errorf("corrupt audit payload: %w", err)
			}
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}

// =============================================================================
// RESET (dev/test helper)
// =============================================================================

// Reset clears all tables. Dev and test use only.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, table := range []string{"attendance_records", "employees", "payroll_settings", "attendance_audit"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to reset %s: %w", table, err)
		}
	}
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

func breaksJSON(breaks []attendance.Break) string {
	rows := make([]breakRow, 0, len(breaks))
	for _, b := range breaks {
		row := breakRow{Start: b.Start.UTC().Format(time.RFC3339)}
		if b.End != nil {
			end := b.End.UTC().Format(time.RFC3339)
			row.End = &end
		}
		rows = append(rows, row)
	}
	out, _ := json.Marshal(rows)
	return string(out)
}

func nullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.UTC().Format(time.RFC3339), Valid: true}
}

func parseNullTime(s sql.NullString) *time.Time {
	if !s.Valid || s.String == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s.String)
	if err != nil {
		return nil
	}
	return &t
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func isUniqueConstraintError(err error) bool {
	return err != nil && (strings.Contains(err.Error(), "UNIQUE constraint failed") ||
		strings.Contains(err.Error(), "duplicate key"))
}
