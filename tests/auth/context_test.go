package auth_test

import (
	"context"
	"testing"

	"github.com/facturaec/proforma-api/internal/auth"
	"github.com/facturaec/proforma-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserContextRoundTrip(t *testing.T) {
	userCtx := &auth.UserContext{
		UserID: "user-1",
		Roles:  []domain.UserRoleType{domain.RoleUser},
	}

	ctx := auth.WithUserContext(context.Background(), userCtx)

	got, ok := auth.FromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, userCtx, got)

	_, ok = auth.FromContext(context.Background())
	assert.False(t, ok)
}

func TestHasRole(t *testing.T) {
	userCtx := &auth.UserContext{
		Roles: []domain.UserRoleType{domain.RoleUser, domain.RoleAdmin},
	}

	assert.True(t, userCtx.HasRole(domain.RoleAdmin))
	assert.True(t, userCtx.HasRole(domain.RoleUser))
	assert.False(t, userCtx.HasRole(domain.RoleAPIService))
	assert.True(t, userCtx.HasAnyRole(domain.RoleAPIService, domain.RoleAdmin))
}

func TestIsAdmin(t *testing.T) {
	assert.False(t, (&auth.UserContext{Roles: []domain.UserRoleType{domain.RoleUser}}).IsAdmin())
	assert.True(t, (&auth.UserContext{Roles: []domain.UserRoleType{domain.RoleAdmin}}).IsAdmin())
	// Service callers act across all owners, same as admins
	assert.True(t, (&auth.UserContext{Roles: []domain.UserRoleType{domain.RoleAPIService}}).IsAdmin())
}

func TestGetOwnerFilter(t *testing.T) {
	user := &auth.UserContext{UserID: "user-1", Roles: []domain.UserRoleType{domain.RoleUser}}
	filter := user.GetOwnerFilter()
	require.NotNil(t, filter)
	assert.Equal(t, "user-1", *filter)

	admin := &auth.UserContext{UserID: "admin-1", Roles: []domain.UserRoleType{domain.RoleAdmin}}
	assert.Nil(t, admin.GetOwnerFilter())
}

func TestGetEffectiveOwnerFilter(t *testing.T) {
	assert.Nil(t, auth.GetEffectiveOwnerFilter(context.Background()))

	ctx := auth.WithUserContext(context.Background(), &auth.UserContext{
		UserID: "user-1",
		Roles:  []domain.UserRoleType{domain.RoleUser},
	})
	filter := auth.GetEffectiveOwnerFilter(ctx)
	require.NotNil(t, filter)
	assert.Equal(t, "user-1", *filter)
}
