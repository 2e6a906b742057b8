package auth

import (
	"context"
	"errors"
)

// contextKey is an unexported type to prevent key collisions in context.
type contextKey string

const roleKey contextKey = "role"

// ErrRoleNotFound is returned when no role exists in the request context.
// Handlers should return 401 when this error occurs.
var ErrRoleNotFound = errors.New("role not found in context")

// RoleFromCtx extracts the authenticated role from the request context.
func RoleFromCtx(ctx context.Context) (Role, error) {
	role, ok := ctx.Value(roleKey).(Role)
	if !ok || !role.Valid() {
		return "", ErrRoleNotFound
	}
	return role, nil
}

// WithRole returns a new context with the given role attached.
// Used by RequireRole after validating the session.
func WithRole(ctx context.Context, role Role) context.Context {
	return context.WithValue(ctx, roleKey, role)
}
