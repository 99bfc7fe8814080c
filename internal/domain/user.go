package domain

import (
	"context"
	"errors"
)

// Actor is the identity performing an operation.
type Actor struct {
	ID    string
	Email string
	Role  Role
}

// SystemActor is used for background jobs and unauthenticated local runs.
var SystemActor = Actor{ID: "system", Role: RoleAdmin}

// Role represents an actor's access level
type Role string

const (
	// RoleAdmin has full access to all operations
	RoleAdmin Role = "admin"

	// RoleAccountant can close periods, post journals and run dividends
	RoleAccountant Role = "accountant"

	// RoleViewer can only read reports
	RoleViewer Role = "viewer"
)

var validRoles = map[Role]bool{
	RoleAdmin:      true,
	RoleAccountant: true,
	RoleViewer:     true,
}

// IsValid checks if the role is a valid role
func (r Role) IsValid() bool {
	return validRoles[r]
}

// CanClosePeriods checks if the role may close and confirm fiscal periods
func (r Role) CanClosePeriods() bool {
	return r == RoleAdmin || r == RoleAccountant
}

// CanPostJournal checks if the role may post journal entries and payments
func (r Role) CanPostJournal() bool {
	return r == RoleAdmin || r == RoleAccountant
}

// CanDistributeDividends checks if the role may calculate and pay dividends
func (r Role) CanDistributeDividends() bool {
	return r == RoleAdmin || r == RoleAccountant
}

// CanManageAccounts checks if the role may change the chart of accounts
func (r Role) CanManageAccounts() bool {
	return r == RoleAdmin
}

// CanViewAudit checks if the role may read the audit trail and event history
func (r Role) CanViewAudit() bool {
	return r == RoleAdmin
}

// CanViewReports checks if the role may read ledger views
func (r Role) CanViewReports() bool {
	return r.IsValid()
}

// Authentication errors
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

type actorContextKey struct{}

// ContextWithActor stores the actor on ctx.
func ContextWithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

// ActorFromContext returns the actor stored on ctx, if any.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(Actor)
	return actor, ok
}

// Authorize returns ErrForbidden unless allowed(actor.Role) holds.
func Authorize(actor Actor, allowed func(Role) bool) error {
	if !allowed(actor.Role) {
		return ErrForbidden
	}
	return nil
}
