// Package store provides in-memory implementations of the attendance
// persistence interfaces, used in tests and development.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/warp/attendance-engine/attendance"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Memory implements RecordStore, Directory, SettingsStore, and AuditLog.
// The (employee, day) uniqueness constraint lives in the map key, so a
// concurrent duplicate check-in observes ErrDuplicateRecord under the lock
// exactly as it would observe a unique-index violation in SQLite.
type Memory struct {
	mu        sync.RWMutex
	records   map[recordKey]*attendance.AttendanceRecord
	employees map[attendance.EmployeeID]attendance.Employee
	settings  *attendance.Settings
	audit     []attendance.AuditEntry
}

type recordKey struct {
	EmployeeID attendance.EmployeeID
	Day        attendance.Day
}

func NewMemory() *Memory {
	return &Memory{
		records:   make(map[recordKey]*attendance.AttendanceRecord),
		employees: make(map[attendance.EmployeeID]attendance.Employee),
	}
}

// =============================================================================
// RECORD STORE
// =============================================================================

func (m *Memory) Create(_ context.Context, rec *attendance.AttendanceRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := recordKey{EmployeeID: rec.EmployeeID, Day: rec.Day}
	if _, exists := m.records[k]; exists {
		return attendance.ErrDuplicateRecord
	}
	m.records[k] = rec.Clone()
	return nil
}

func (m *Memory) Get(_ context.Context, employeeID attendance.EmployeeID, day attendance.Day) (*attendance.AttendanceRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.records[recordKey{EmployeeID: employeeID, Day: day}]
	if !ok {
		return nil, attendance.ErrRecordNotFound
	}
	return rec.Clone(), nil
}

func (m *Memory) Update(_ context.Context, rec *attendance.AttendanceRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := recordKey{EmployeeID: rec.EmployeeID, Day: rec.Day}
	if _, exists := m.records[k]; !exists {
		return attendance.ErrRecordNotFound
	}
	m.records[k] = rec.Clone()
	return nil
}

func (m *Memory) Upsert(_ context.Context, rec *attendance.AttendanceRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.records[recordKey{EmployeeID: rec.EmployeeID, Day: rec.Day}] = rec.Clone()
	return nil
}

func (m *Memory) ListRange(_ context.Context, employeeID attendance.EmployeeID, from, to attendance.Day) ([]*attendance.AttendanceRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []*attendance.AttendanceRecord
	for k, rec := range m.records {
		if k.EmployeeID != employeeID {
			continue
		}
		if k.Day.Before(from) || k.Day.After(to) {
			continue
		}
		result = append(result, rec.Clone())
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Day.Before(result[j].Day)
	})
	return result, nil
}

// =============================================================================
// DIRECTORY
// =============================================================================

func (m *Memory) SaveEmployee(_ context.Context, emp attendance.Employee) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.employees[emp.ID] = emp
	return nil
}

func (m *Memory) GetEmployee(_ context.Context, id attendance.EmployeeID) (*attendance.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	emp, ok := m.employees[id]
	if !ok {
		return nil, attendance.ErrEmployeeNotFound
	}
	return &emp, nil
}

func (m *Memory) ListEmployees(_ context.Context) ([]attendance.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]attendance.Employee, 0, len(m.employees))
	for _, emp := range m.employees {
		result = append(result, emp)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// =============================================================================
// SETTINGS
// =============================================================================

func (m *Memory) PayrollSettings(_ context.Context) (attendance.Settings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.settings == nil {
		return attendance.DefaultSettings(), nil
	}
	return *m.settings, nil
}

func (m *Memory) SavePayrollSettings(_ context.Context, s attendance.Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.settings = &s
	return nil
}

// =============================================================================
// AUDIT LOG
// =============================================================================

func (m *Memory) AppendAudit(_ context.Context, entry attendance.AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.audit = append(m.audit, entry)
	return nil
}

func (m *Memory) AuditEntries(_ context.Context, employeeID attendance.EmployeeID, from, to attendance.Day) ([]attendance.AuditEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []attendance.AuditEntry
	for _, e := range m.audit {
		if e.EmployeeID != employeeID {
			continue
		}
		if e.Day.Before(from) || e.Day.After(to) {
			continue
		}
		result = append(result, e)
	}
	return result, nil
}
