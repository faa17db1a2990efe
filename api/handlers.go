/*
handlers.go - HTTP API handlers for the attendance engine

PURPOSE:
  Exposes the attendance engine via REST API. Handles HTTP request and
  response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Attendance:
    POST   /api/attendance/{id}/check-in     Start today's shift
    POST   /api/attendance/{id}/break-start  Open a break
    POST   /api/attendance/{id}/break-end    Close the open break
    POST   /api/attendance/{id}/check-out    End today's shift
    GET    /api/attendance/{id}              Records in ?from=&to=
    GET    /api/attendance/{id}/today        Today's record

  Payroll:
    GET    /api/payroll/{id}?year=&month=    One employee's payroll line
    GET    /api/payroll?year=&month=         All employees (admin)

  Employees:
    GET    /api/employees                    List
    POST   /api/employees                    Create/update (admin)
    GET    /api/employees/{id}               Get

  Admin:
    POST   /api/admin/attendance             Manual record override
    GET    /api/admin/settings               Payroll settings
    PUT    /api/admin/settings               Replace payroll settings

ERROR HANDLING:
  Domain errors map to HTTP status by kind:
  - 400: InvalidPeriod / InvalidCalendarInput / malformed input
  - 403: Missing capability
  - 404: EmployeeNotFound / RecordNotFound
  - 409: State-machine rejections (AlreadyCheckedIn, NotOnBreak, ...)
  - 500: Store failures

SEE ALSO:
  - dto.go: Request/response data structures
  - capability.go: Role checks for admin routes
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/warp/attendance-engine/attendance"
)

// Storage bundles the persistence interfaces the handlers need. Both the
// SQLite store and the in-memory store satisfy it.
type Storage interface {
	attendance.RecordStore
	attendance.Directory
	attendance.SettingsStore
	attendance.AuditLog
}

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store   Storage
	Tracker *attendance.Tracker
	Payroll *attendance.PayrollService
}

func NewHandler(store Storage) *Handler {
	tracker := attendance.NewTracker(store)
	tracker.Audit = store
	return &Handler{
		Store:   store,
		Tracker: tracker,
		Payroll: &attendance.PayrollService{
			Records:   store,
			Employees: store,
			Settings:  store,
		},
	}
}

// =============================================================================
// ATTENDANCE ENDPOINTS
// =============================================================================

func (h *Handler) CheckIn(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Tracker.CheckIn)
}

func (h *Handler) BreakStart(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Tracker.StartBreak)
}

func (h *Handler) BreakEnd(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Tracker.EndBreak)
}

func (h *Handler) CheckOut(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Tracker.CheckOut)
}

// transition runs one shift event and writes the resulting record.
func (h *Handler) transition(
	w http.ResponseWriter,
	r *http.Request,
	event func(ctx context.Context, id attendance.EmployeeID) (*attendance.AttendanceRecord, error),
) {
	id := attendance.EmployeeID(chi.URLParam(r, "id"))

	rec, err := event(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRecordDTO(rec))
}

func (h *Handler) GetToday(w http.ResponseWriter, r *http.Request) {
	id := attendance.EmployeeID(chi.URLParam(r, "id"))

	rec, err := h.Store.Get(r.Context(), id, attendance.Today())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRecordDTO(rec))
}

func (h *Handler) ListRecords(w http.ResponseWriter, r *http.Request) {
	id := attendance.EmployeeID(chi.URLParam(r, "id"))

	from, err := attendance.ParseDay(r.URL.Query().Get("from"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid from date (use YYYY-MM-DD)", err)
		return
	}
	to, err := attendance.ParseDay(r.URL.Query().Get("to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid to date (use YYYY-MM-DD)", err)
		return
	}

	records, err := h.Store.ListRange(r.Context(), id, from, to)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list records", err)
		return
	}

	dtos := make([]RecordDTO, 0, len(records))
	for _, rec := range records {
		dtos = append(dtos, toRecordDTO(rec))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// ADMIN: MANUAL OVERRIDE
// =============================================================================

func (h *Handler) ManualSet(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r)
	if !HasCapability(actor, ActionOverrideAttendance) {
		writeError(w, http.StatusForbidden, "Not allowed", nil)
		return
	}

	var req ManualSetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	day, err := attendance.ParseDay(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date (use YYYY-MM-DD)", err)
		return
	}
	status := attendance.Status(req.Status)
	if !status.Valid() {
		writeError(w, http.StatusBadRequest, "Invalid status", nil)
		return
	}

	rec, err := h.Tracker.SetManual(r.Context(), attendance.EmployeeID(req.EmployeeID), day, status, actor.ID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRecordDTO(rec))
}

// =============================================================================
// PAYROLL ENDPOINTS
// =============================================================================

func (h *Handler) GetPayroll(w http.ResponseWriter, r *http.Request) {
	id := attendance.EmployeeID(chi.URLParam(r, "id"))

	year, month, ok := parsePeriod(w, r)
	if !ok {
		return
	}

	var override *int
	if v := r.URL.Query().Get("working_days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid working_days", err)
			return
		}
		override = &n
	}

	result, err := h.Payroll.ForEmployee(r.Context(), id, year, month, override)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPayrollDTO(result))
}

func (h *Handler) GetPayrollAll(w http.ResponseWriter, r *http.Request) {
	if !HasCapability(actorFrom(r), ActionReadAllPayroll) {
		writeError(w, http.StatusForbidden, "Not allowed", nil)
		return
	}

	year, month, ok := parsePeriod(w, r)
	if !ok {
		return
	}

	results, err := h.Payroll.ForAll(r.Context(), year, month)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	dtos := make([]PayrollDTO, 0, len(results))
	for _, res := range results {
		dtos = append(dtos, toPayrollDTO(res))
	}
	writeJSON(w, http.StatusOK, dtos)
}

func parsePeriod(w http.ResponseWriter, r *http.Request) (int, time.Month, bool) {
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid year", err)
		return 0, 0, false
	}
	month, err := strconv.Atoi(r.URL.Query().Get("month"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid month", err)
		return 0, 0, false
	}
	return year, time.Month(month), true
}

// =============================================================================
// EMPLOYEE ENDPOINTS
// =============================================================================

func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Store.ListEmployees(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list employees", err)
		return
	}

	dtos := make([]EmployeeDTO, 0, len(employees))
	for _, emp := range employees {
		dtos = append(dtos, toEmployeeDTO(emp))
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	id := attendance.EmployeeID(chi.URLParam(r, "id"))

	emp, err := h.Store.GetEmployee(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(*emp))
}

func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	if !HasCapability(actorFrom(r), ActionWriteEmployees) {
		writeError(w, http.StatusForbidden, "Not allowed", nil)
		return
	}

	var req CreateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ID == "" || req.Name == "" {
		writeError(w, http.StatusBadRequest, "id and name are required", nil)
		return
	}

	hireDate, err := time.Parse("2006-01-02", req.HireDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid hire_date format (use YYYY-MM-DD)", err)
		return
	}

	emp := attendance.Employee{
		ID:         attendance.EmployeeID(req.ID),
		Name:       req.Name,
		Email:      req.Email,
		BaseSalary: decimal.NewFromFloat(req.BaseSalary),
		HireDate:   hireDate,
	}
	if err := h.Store.SaveEmployee(r.Context(), emp); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save employee", err)
		return
	}
	writeJSON(w, http.StatusCreated, toEmployeeDTO(emp))
}

// =============================================================================
// ADMIN: SETTINGS
// =============================================================================

func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.Store.PayrollSettings(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load settings", err)
		return
	}
	writeJSON(w, http.StatusOK, toSettingsDTO(settings))
}

func (h *Handler) PutSettings(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r)
	if !HasCapability(actor, ActionWriteSettings) {
		writeError(w, http.StatusForbidden, "Not allowed", nil)
		return
	}

	var dto SettingsDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	settings, err := dto.toSettings()
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid holiday date (use YYYY-MM-DD)", err)
		return
	}
	if err := h.Store.SavePayrollSettings(r.Context(), settings); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save settings", err)
		return
	}

	entry := attendance.AuditEntry{
		ID:      uuid.NewString(),
		At:      time.Now().UTC(),
		ActorID: actor.ID,
		Action:  attendance.AuditSettingsSave,
		Payload: map[string]string{"off_days": fmt.Sprint(dto.OffDays), "holidays": strconv.Itoa(len(dto.Holidays))},
	}
	if err := h.Store.AppendAudit(r.Context(), entry); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to record audit entry", err)
		return
	}
	writeJSON(w, http.StatusOK, toSettingsDTO(settings))
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case attendance.IsNotFound(err):
		writeError(w, http.StatusNotFound, "Not found", err)
	case errors.Is(err, attendance.ErrInvalidPeriod) || errors.Is(err, attendance.ErrInvalidCalendarInput):
		writeError(w, http.StatusBadRequest, "Invalid period", err)
	case attendance.IsClientError(err):
		writeError(w, http.StatusConflict, "Action rejected", err)
	default:
		writeError(w, http.StatusInternalServerError, "Internal error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
