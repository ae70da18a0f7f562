package security

import (
	"fmt"
	"strings"

	"client-feedback-admin/internal/config"
)

var weakSecrets = []string{
	"secret",
	"change-me",
	"change-this",
	"default",
	"password",
	"123456",
	"testing",
}

// ValidateAuthConfig returns warnings for insecure authentication settings.
// An empty result means the settings look reasonable.
func ValidateAuthConfig(cfg config.AuthConfig) []string {
	var warnings []string

	if len(cfg.JWTSecret) < 32 {
		warnings = append(warnings, "auth.jwt_secret should be at least 32 characters long")
	}

	lower := strings.ToLower(cfg.JWTSecret)
	for _, weak := range weakSecrets {
		if strings.Contains(lower, weak) {
			warnings = append(warnings, "auth.jwt_secret appears to contain a weak or default value")
			break
		}
	}

	if cfg.TokenTTLHours > 24*7 {
		warnings = append(warnings, fmt.Sprintf("auth.token_ttl_hours is %d; tokens should not outlive 7 days", cfg.TokenTTLHours))
	}

	if cfg.LoginRequestsPerMinute <= 0 {
		warnings = append(warnings, "auth.login_requests_per_minute is not positive; a default of 10 is used")
	}

	return warnings
}
