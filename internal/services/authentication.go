package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"client-feedback-admin/internal/config"
	"client-feedback-admin/internal/logger"
	"client-feedback-admin/internal/models"
	"client-feedback-admin/internal/repositories"
)

const tokenIssuer = "client-feedback-admin"

// JWTClaims represents the JWT token claims
type JWTClaims struct {
	AdminID  string `json:"admin_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// authenticationService implements AuthenticationService
type authenticationService struct {
	logger    *logger.Logger
	adminRepo repositories.AdminRepository
	jwtSecret []byte
	tokenTTL  time.Duration
}

// NewAuthenticationService creates a new authentication service
func NewAuthenticationService(
	logger *logger.Logger,
	cfg *config.Config,
	adminRepo repositories.AdminRepository,
) AuthenticationService {
	ttl := time.Duration(cfg.Auth.TokenTTLHours) * time.Hour
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	return &authenticationService{
		logger:    logger,
		adminRepo: adminRepo,
		jwtSecret: []byte(cfg.Auth.JWTSecret),
		tokenTTL:  ttl,
	}
}

// Login checks an administrator's password and issues a token
func (s *authenticationService) Login(ctx context.Context, username, password string) (string, *models.Admin, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return "", nil, ErrInvalidCredentials
	}

	admin, err := s.adminRepo.GetByUsername(ctx, username)
	if errors.Is(err, repositories.ErrNotFound) {
		s.logger.WithField("username", username).Warn("Login for unknown administrator")
		return "", nil, ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, err
	}

	if !admin.IsActive {
		return "", nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		s.logger.WithField("username", username).Warn("Invalid password")
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.GenerateJWT(ctx, admin)
	if err != nil {
		return "", nil, err
	}

	now := time.Now()
	admin.LastLoginAt = &now
	if err := s.adminRepo.Update(ctx, admin); err != nil {
		s.logger.WithUser(admin.ID).WithError(err).Warn("Failed to record last login")
	}

	return token, admin, nil
}

// GenerateJWT generates a JWT token for an administrator
func (s *authenticationService) GenerateJWT(ctx context.Context, admin *models.Admin) (string, error) {
	now := time.Now()
	claims := JWTClaims{
		AdminID:  admin.ID,
		Username: admin.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
			Subject:   admin.ID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		s.logger.WithUser(admin.ID).WithError(err).Error("Failed to sign JWT token")
		return "", err
	}

	return tokenString, nil
}

// ValidateJWT validates a JWT token and returns the administrator it names
func (s *authenticationService) ValidateJWT(ctx context.Context, tokenString string) (*models.Admin, error) {
	if tokenString == "" {
		return nil, ErrInvalidToken
	}

	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	}, jwt.WithIssuer(tokenIssuer))

	if errors.Is(err, jwt.ErrTokenExpired) {
		return nil, ErrTokenExpired
	}
	if err != nil {
		s.logger.WithError(err).Warn("Failed to parse JWT token")
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	// the administrator must still exist and be active
	admin, err := s.adminRepo.GetByID(ctx, claims.AdminID)
	if err != nil {
		s.logger.WithUser(claims.AdminID).WithError(err).Warn("Administrator not found for JWT token")
		return nil, ErrInvalidToken
	}
	if !admin.IsActive {
		return nil, ErrInvalidToken
	}

	return admin, nil
}

// HashPassword hashes a password using bcrypt
func (s *authenticationService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
