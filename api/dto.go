/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/warp/attendance-engine/attendance"
)

// =============================================================================
// ATTENDANCE
// =============================================================================

// BreakDTO is one break span. End is empty while the break is open.
type BreakDTO struct {
	Start string `json:"start"`
	End   string `json:"end,omitempty"`
}

// RecordDTO is an attendance record in API responses.
type RecordDTO struct {
	EmployeeID     string     `json:"employee_id"`
	Date           string     `json:"date"`
	Status         string     `json:"status"`
	CheckIn        string     `json:"check_in,omitempty"`
	CheckOut       string     `json:"check_out,omitempty"`
	Breaks         []BreakDTO `json:"breaks"`
	TotalBreakTime int        `json:"total_break_time"`
	TotalWorkTime  int        `json:"total_work_time"`
	IsHalfDay      bool       `json:"is_half_day"`
}

func toRecordDTO(rec *attendance.AttendanceRecord) RecordDTO {
	dto := RecordDTO{
		EmployeeID:     string(rec.EmployeeID),
		Date:           rec.Day.ISO(),
		Status:         string(rec.Status),
		Breaks:         []BreakDTO{},
		TotalBreakTime: rec.TotalBreakTime,
		TotalWorkTime:  rec.TotalWorkTime,
		IsHalfDay:      rec.IsHalfDay,
	}
	if rec.CheckIn != nil {
		dto.CheckIn = rec.CheckIn.UTC().Format(time.RFC3339)
	}
	if rec.CheckOut != nil {
		dto.CheckOut = rec.CheckOut.UTC().Format(time.RFC3339)
	}
	for _, b := range rec.Breaks {
		bd := BreakDTO{Start: b.Start.UTC().Format(time.RFC3339)}
		if b.End != nil {
			bd.End = b.End.UTC().Format(time.RFC3339)
		}
		dto.Breaks = append(dto.Breaks, bd)
	}
	return dto
}

// ManualSetRequest is the admin create-or-update of a record.
type ManualSetRequest struct {
	EmployeeID string `json:"employee_id"`
	Date       string `json:"date"`
	Status     string `json:"status"`
}

// =============================================================================
// EMPLOYEES
// =============================================================================

type EmployeeDTO struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	BaseSalary string `json:"base_salary"`
	HireDate   string `json:"hire_date"`
	CreatedAt  string `json:"created_at,omitempty"`
}

type CreateEmployeeRequest struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Email      string  `json:"email"`
	BaseSalary float64 `json:"base_salary"`
	HireDate   string  `json:"hire_date"`
}

func toEmployeeDTO(emp attendance.Employee) EmployeeDTO {
	dto := EmployeeDTO{
		ID:         string(emp.ID),
		Name:       emp.Name,
		Email:      emp.Email,
		BaseSalary: emp.BaseSalary.String(),
		HireDate:   emp.HireDate.Format("2006-01-02"),
	}
	if !emp.CreatedAt.IsZero() {
		dto.CreatedAt = emp.CreatedAt.UTC().Format(time.RFC3339)
	}
	return dto
}

// =============================================================================
// PAYROLL
// =============================================================================

type PayrollDTO struct {
	EmployeeID       string `json:"employee_id"`
	Year             int    `json:"year"`
	Month            int    `json:"month"`
	PaidDays         string `json:"paid_days"`
	CalculatedSalary string `json:"calculated_salary"`
	WorkingDays      int    `json:"working_days"`
	DaysInMonth      int    `json:"days_in_month"`
}

func toPayrollDTO(res *attendance.PayrollResult) PayrollDTO {
	return PayrollDTO{
		EmployeeID:       string(res.EmployeeID),
		Year:             res.Year,
		Month:            int(res.Month),
		PaidDays:         res.PaidDays.String(),
		CalculatedSalary: res.CalculatedSalary.String(),
		WorkingDays:      res.WorkingDays,
		DaysInMonth:      res.DaysInMonth,
	}
}

// =============================================================================
// SETTINGS
// =============================================================================

type HolidayDTO struct {
	Date  string `json:"date"`
	Label string `json:"label"`
}

type SettingsDTO struct {
	OffDays  []int        `json:"off_days"`
	Holidays []HolidayDTO `json:"holidays"`
}

func toSettingsDTO(s attendance.Settings) SettingsDTO {
	dto := SettingsDTO{OffDays: []int{}, Holidays: []HolidayDTO{}}
	for _, d := range s.OffDays {
		dto.OffDays = append(dto.OffDays, int(d))
	}
	for _, h := range s.Holidays {
		dto.Holidays = append(dto.Holidays, HolidayDTO{Date: h.Date.ISO(), Label: h.Label})
	}
	return dto
}

func (dto SettingsDTO) toSettings() (attendance.Settings, error) {
	var s attendance.Settings
	for _, d := range dto.OffDays {
		s.OffDays = append(s.OffDays, time.Weekday(d))
	}
	for _, h := range dto.Holidays {
		day, err := attendance.ParseDay(h.Date)
		if err != nil {
			return attendance.Settings{}, err
		}
		s.Holidays = append(s.Holidays, attendance.Holiday{Date: day, Label: h.Label})
	}
	return s, nil
}

// =============================================================================
// ERRORS
// =============================================================================

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
