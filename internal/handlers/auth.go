package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"client-feedback-admin/internal/logger"
	"client-feedback-admin/internal/models"
	"client-feedback-admin/internal/security"
	"client-feedback-admin/internal/services"
)

// AuthHandler handles administrator login
type AuthHandler struct {
	logger    *logger.Logger
	authSvc   services.AuthenticationService
	validator *models.ValidationService
	limiter   *security.RateLimiter
}

// NewAuthHandler creates a new authentication handler
func NewAuthHandler(
	logger *logger.Logger,
	authSvc services.AuthenticationService,
	validator *models.ValidationService,
	limiter *security.RateLimiter,
) *AuthHandler {
	return &AuthHandler{
		logger:    logger,
		authSvc:   authSvc,
		validator: validator,
		limiter:   limiter,
	}
}

// LoginResponse is returned after a successful login
type LoginResponse struct {
	Token     string        `json:"token"`
	TokenType string        `json:"token_type"`
	Admin     *models.Admin `json:"admin"`
	IssuedAt  time.Time     `json:"issued_at"`
}

// RegisterRoutes registers the login route, throttled per remote address
func (h *AuthHandler) RegisterRoutes(router *mux.Router) {
	login := http.HandlerFunc(h.Login)
	router.Handle("/auth/login", security.RateLimit(h.limiter)(login)).Methods("POST")
}

// Login exchanges administrator credentials for a bearer token
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeErrorResponse(h.logger, w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := h.validator.ValidateStruct(&req); err != nil {
		writeServiceError(h.logger, w, err)
		return
	}

	token, admin, err := h.authSvc.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		h.logger.WithField("username", req.Username).
			WithField("remote_addr", h.limiter.ClientKey(r)).
			Warn("Administrator login failed")
		writeServiceError(h.logger, w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, LoginResponse{
		Token:     token,
		TokenType: "Bearer",
		Admin:     admin,
		IssuedAt:  time.Now().UTC(),
	})
}
