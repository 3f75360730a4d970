package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/facturaec/proforma-api/internal/config"
	"github.com/facturaec/proforma-api/internal/domain"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// JWTValidator validates HMAC-signed bearer tokens
type JWTValidator struct {
	config *config.AuthConfig
}

// NewJWTValidator creates a new JWT validator
func NewJWTValidator(cfg *config.AuthConfig) *JWTValidator {
	return &JWTValidator{config: cfg}
}

// ValidateToken validates a JWT token and returns user context
func (v *JWTValidator) ValidateToken(tokenString string) (*UserContext, error) {
	if v.config.JWTSecret == "" {
		return nil, fmt.Errorf("%w: no signing secret configured", ErrInvalidToken)
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if v.config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.config.Issuer))
	}
	if v.config.Audience != "" {
		opts = append(opts, jwt.WithAudience(v.config.Audience))
	}

	claims := jwt.MapClaims{}
	parsedToken, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(v.config.JWTSecret), nil
	}, opts...)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if !parsedToken.Valid {
		return nil, ErrInvalidToken
	}

	// Extract user information
	userCtx := &UserContext{
		DisplayName: extractString(claims, "name", "preferred_username"),
		Email:       extractString(claims, "email", "upn"),
		Roles:       ExtractRoles(claims),
	}

	userCtx.UserID = extractString(claims, "sub", "oid")
	if userCtx.UserID == "" {
		return nil, fmt.Errorf("%w: missing subject claim", ErrInvalidToken)
	}

	if len(userCtx.Roles) == 0 {
		userCtx.Roles = []domain.UserRoleType{domain.RoleUser}
	}

	return userCtx, nil
}

func extractString(claims jwt.MapClaims, keys ...string) string {
	for _, key := range keys {
		if val, ok := claims[key]; ok {
			if str, ok := val.(string); ok && str != "" {
				return str
			}
		}
	}
	return ""
}

// ExtractRoles extracts roles from JWT claims and returns them as UserRoleType
func ExtractRoles(claims jwt.MapClaims) []domain.UserRoleType {
	roles := []domain.UserRoleType{}

	// Try different claim names
	for _, key := range []string{"roles", "role"} {
		if val, ok := claims[key]; ok {
			switch v := val.(type) {
			case []interface{}:
				for _, r := range v {
					if str, ok := r.(string); ok {
						roles = append(roles, domain.UserRoleType(str))
					}
				}
			case []string:
				for _, str := range v {
					roles = append(roles, domain.UserRoleType(str))
				}
			case string:
				for _, str := range strings.Fields(v) {
					roles = append(roles, domain.UserRoleType(str))
				}
			}
		}
	}

	return roles
}
