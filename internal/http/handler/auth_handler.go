package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/facturaec/proforma-api/internal/auth"
	"github.com/facturaec/proforma-api/internal/domain"
	"github.com/facturaec/proforma-api/internal/mapper"
	"github.com/facturaec/proforma-api/internal/repository"
	"go.uber.org/zap"
)

// UserRepository interface for dependency injection
type UserRepository interface {
	Upsert(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

type AuthHandler struct {
	userRepo UserRepository
	logger   *zap.Logger
}

func NewAuthHandler(userRepo *repository.UserRepository, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		userRepo: userRepo,
		logger:   logger,
	}
}

// NewAuthHandlerWithMocks creates an auth handler with mock dependencies for testing
func NewAuthHandlerWithMocks(userRepo UserRepository, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		userRepo: userRepo,
		logger:   logger,
	}
}

// Me godoc
// @Summary Get current authenticated user
// @Description Returns the current authenticated user with roles info, refreshing the local user record
// @Tags Auth
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]string "Unauthorized"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userCtx, ok := auth.FromContext(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, map[string]string{
			"error": "unauthorized",
		})
		return
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:          userCtx.UserID,
		DisplayName: userCtx.DisplayName,
		Email:       userCtx.Email,
		Roles:       userCtx.RolesAsStrings(),
		IsActive:    true,
		LastLoginAt: &now,
	}

	if err := h.userRepo.Upsert(r.Context(), user); err != nil {
		h.logger.Warn("failed to upsert user", zap.Error(err))
	}

	// Prefer the stored record so persisted role grants win over token claims
	if stored, err := h.userRepo.GetByID(r.Context(), userCtx.UserID); err == nil {
		user = stored
	}

	respondJSON(w, http.StatusOK, mapper.ToUserDTO(user))
}
