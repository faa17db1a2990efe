/*
capability.go - Single capability predicate for role checks

PURPOSE:
  All role-based checks in the HTTP layer go through one predicate instead
  of scattering role comparisons across handlers. The caller's identity is
  trusted from upstream auth middleware; this layer only maps role to
  capability.

ACTIONS:
  attendance:override  Manual record create-or-update
  settings:write       Payroll settings changes
  employees:write      Employee create/update
  payroll:read-all     Company-wide payroll run
*/
package api

import "net/http"

type Actor struct {
	ID   string
	Role string
}

const (
	RoleAdmin    = "admin"
	RoleOwner    = "owner"
	RoleEmployee = "employee"
)

const (
	ActionOverrideAttendance = "attendance:override"
	ActionWriteSettings      = "settings:write"
	ActionWriteEmployees     = "employees:write"
	ActionReadAllPayroll     = "payroll:read-all"
)

// HasCapability is the single authorization predicate for the API surface.
func HasCapability(actor Actor, action string) bool {
	switch action {
	case ActionOverrideAttendance, ActionWriteSettings, ActionWriteEmployees, ActionReadAllPayroll:
		return actor.Role == RoleAdmin || actor.Role == RoleOwner
	default:
		return false
	}
}

// actorFrom extracts the already-authenticated caller from request headers
// set by the upstream auth middleware.
func actorFrom(r *http.Request) Actor {
	return Actor{
		ID:   r.Header.Get("X-Actor-ID"),
		Role: r.Header.Get("X-Actor-Role"),
	}
}
