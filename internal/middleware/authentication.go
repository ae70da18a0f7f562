package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"client-feedback-admin/internal/logger"
	"client-feedback-admin/internal/models"
	"client-feedback-admin/internal/services"
)

// ContextKey is a type for context keys to avoid collisions
type ContextKey string

// AdminContextKey is the context key for the authenticated administrator
const AdminContextKey ContextKey = "admin"

// AuthenticationMiddleware provides bearer token authentication
type AuthenticationMiddleware struct {
	logger  *logger.Logger
	authSvc services.AuthenticationService
}

// NewAuthenticationMiddleware creates a new authentication middleware
func NewAuthenticationMiddleware(logger *logger.Logger, authSvc services.AuthenticationService) *AuthenticationMiddleware {
	return &AuthenticationMiddleware{
		logger:  logger,
		authSvc: authSvc,
	}
}

// RequireJWT middleware that requires JWT authentication
func (m *AuthenticationMiddleware) RequireJWT(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			unauthorized(w, "Authorization header required")
			return
		}

		const bearerPrefix = "Bearer "
		if len(authHeader) < len(bearerPrefix) || !strings.EqualFold(authHeader[:len(bearerPrefix)], bearerPrefix) {
			unauthorized(w, "Bearer token required")
			return
		}

		token := strings.TrimSpace(authHeader[len(bearerPrefix):])
		admin, err := m.authSvc.ValidateJWT(r.Context(), token)
		if err != nil {
			m.logger.WithError(err).Warn("JWT validation failed")
			if errors.Is(err, services.ErrTokenExpired) {
				unauthorized(w, "Token expired")
				return
			}
			unauthorized(w, "Invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), AdminContextKey, admin)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetAdminFromContext extracts the administrator from the request context
func GetAdminFromContext(ctx context.Context) *models.Admin {
	admin, ok := ctx.Value(AdminContextKey).(*models.Admin)
	if !ok {
		return nil
	}
	return admin
}

// WithAdmin returns a context carrying admin
func WithAdmin(ctx context.Context, admin *models.Admin) context.Context {
	return context.WithValue(ctx, AdminContextKey, admin)
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `Bearer realm="client-feedback-admin"`)
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error":     message,
		"status":    http.StatusUnauthorized,
		"timestamp": time.Now().UTC(),
	})
}
