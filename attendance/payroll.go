/*
payroll.go - Monthly payroll aggregation

PURPOSE:
  Sums daily accruals across a month for one or all employees and converts
  the total into a prorated salary figure.

ALGORITHM:
  1. Resolve the full calendar for (year, month)
  2. For each day, find the matching record (if any) and classify it
  3. CalculatedSalary = round(BaseSalary / daysInMonth * paidDays)
  4. WorkingDays = explicit override, or the resolver's count

  The salary divisor is daysInMonth, NOT the working-day count. WorkingDays
  is reported to the caller but does not participate in the formula.

DETERMINISM:
  ComputePayroll is pure over already-fetched data: no retries, no clock,
  no ambient settings. The service wrapper fetches inputs and then calls
  it. Per-employee computations read disjoint record sets against
  read-only settings, so the company-wide run executes them in parallel.

SEE ALSO:
  - calendar.go: Resolver driven in step 1
  - accrual.go: Classifier driven in step 2
*/
package attendance

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// ComputePayroll produces the payroll line for one employee and month from
// already-fetched records and settings.
func ComputePayroll(
	emp *Employee,
	year int,
	month time.Month,
	records []*AttendanceRecord,
	settings Settings,
	workingDaysOverride *int,
) (*PayrollResult, error) {
	if emp == nil {
		return nil, ErrEmployeeNotFound
	}
	if err := validateYearMonth(year, month, ErrInvalidPeriod); err != nil {
		return nil, err
	}

	calendar, err := ResolveCalendar(year, month, settings)
	if err != nil {
		return nil, err
	}

	byDay := make(map[Day]*AttendanceRecord, len(records))
	for _, rec := range records {
		if rec.Day.Year() == year && rec.Day.Month() == month {
			byDay[rec.Day] = rec
		}
	}

	paid := decimal.Zero
	for _, cd := range calendar {
		paid = paid.Add(Classify(byDay[cd.Day], cd.Working))
	}

	daysInMonth := len(calendar)
	salary := emp.BaseSalary.
		Div(decimal.NewFromInt(int64(daysInMonth))).
		Mul(paid).
		Round(0)

	workingDays := WorkingDayCount(calendar)
	if workingDaysOverride != nil {
		workingDays = *workingDaysOverride
	}

	return &PayrollResult{
		EmployeeID:       emp.ID,
		Year:             year,
		Month:            month,
		PaidDays:         paid,
		CalculatedSalary: salary,
		WorkingDays:      workingDays,
		DaysInMonth:      daysInMonth,
	}, nil
}

// =============================================================================
// PAYROLL SERVICE - Fetches inputs and drives the pure computation
// =============================================================================

type PayrollService struct {
	Records   RecordStore
	Employees Directory
	Settings  SettingsSource
}

// ForEmployee computes one employee's payroll line for the month.
func (s *PayrollService) ForEmployee(
	ctx context.Context,
	employeeID EmployeeID,
	year int,
	month time.Month,
	workingDaysOverride *int,
) (*PayrollResult, error) {
	if err := validateYearMonth(year, month, ErrInvalidPeriod); err != nil {
		return nil, err
	}

	emp, err := s.Employees.GetEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}

	settings, err := s.settings(ctx)
	if err != nil {
		return nil, err
	}

	records, err := s.monthRecords(ctx, employeeID, year, month)
	if err != nil {
		return nil, err
	}

	return ComputePayroll(emp, year, month, records, settings, workingDaysOverride)
}

// ForAll computes payroll lines for every employee, in parallel. Results
// are ordered by employee ID. The first error aborts the run.
func (s *PayrollService) ForAll(ctx context.Context, year int, month time.Month) ([]*PayrollResult, error) {
	if err := validateYearMonth(year, month, ErrInvalidPeriod); err != nil {
		return nil, err
	}

	employees, err := s.Employees.ListEmployees(ctx)
	if err != nil {
		return nil, err
	}

	settings, err := s.settings(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]*PayrollResult, len(employees))
	errs := make([]error, len(employees))

	var wg sync.WaitGroup
	for i := range employees {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			emp := employees[i]
			records, err := s.monthRecords(ctx, emp.ID, year, month)
			if err != nil {
				errs[i] = err
				return
			}
			results[i], errs[i] = ComputePayroll(&emp, year, month, records, settings, nil)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].EmployeeID < results[j].EmployeeID
	})
	return results, nil
}

func (s *PayrollService) settings(ctx context.Context) (Settings, error) {
	if s.Settings == nil {
		return DefaultSettings(), nil
	}
	return s.Settings.PayrollSettings(ctx)
}

func (s *PayrollService) monthRecords(ctx context.Context, id EmployeeID, year int, month time.Month) ([]*AttendanceRecord, error) {
	from := NewDay(year, month, 1)
	to := NewDay(year, month, DaysInMonth(year, month))
	return s.Records.ListRange(ctx, id, from, to)
}
