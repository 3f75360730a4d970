package auth

import (
	"context"

	"github.com/facturaec/proforma-api/internal/domain"
)

// UserContext holds authenticated user information
type UserContext struct {
	UserID      string
	DisplayName string
	Email       string
	Roles       []domain.UserRoleType
}

type contextKey string

const userContextKey contextKey = "userContext"

// WithUserContext adds user context to the context
func WithUserContext(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// FromContext extracts user context from the context
func FromContext(ctx context.Context) (*UserContext, bool) {
	user, ok := ctx.Value(userContextKey).(*UserContext)
	return user, ok
}

// MustFromContext extracts user context or panics
func MustFromContext(ctx context.Context) *UserContext {
	user, ok := FromContext(ctx)
	if !ok {
		panic("user context not found in context")
	}
	return user
}

// HasRole checks if user has a specific role
func (u *UserContext) HasRole(role domain.UserRoleType) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// HasAnyRole checks if user has any of the specified roles
func (u *UserContext) HasAnyRole(roles ...domain.UserRoleType) bool {
	for _, role := range roles {
		if u.HasRole(role) {
			return true
		}
	}
	return false
}

// IsAdmin checks if user has the admin role
func (u *UserContext) IsAdmin() bool {
	return u.HasAnyRole(domain.RoleAdmin, domain.RoleAPIService)
}

// GetOwnerFilter returns the user ID to scope queries by
// Returns nil for admins and API service callers (no filtering needed)
func (u *UserContext) GetOwnerFilter() *string {
	if u.IsAdmin() {
		return nil
	}
	return &u.UserID
}

// GetEffectiveOwnerFilter reads the owner filter from the request context
// Returns nil when there is no user context or the user sees all data
func GetEffectiveOwnerFilter(ctx context.Context) *string {
	user, ok := FromContext(ctx)
	if !ok {
		return nil
	}
	return user.GetOwnerFilter()
}

// RolesAsStrings returns roles as plain strings for logging
func (u *UserContext) RolesAsStrings() []string {
	out := make([]string, len(u.Roles))
	for i, r := range u.Roles {
		out[i] = string(r)
	}
	return out
}
