package security

import (
	"fmt"
	"strings"
	"unicode"
)

// PasswordValidator checks administrator passwords before they are hashed
type PasswordValidator struct {
	minLength       int
	maxLength       int
	commonPasswords map[string]bool
}

// NewPasswordValidator creates a new password validator
func NewPasswordValidator() *PasswordValidator {
	common := []string{
		"password", "123456", "123456789", "qwerty", "abc123", "password123",
		"admin", "letmein", "welcome", "feedback", "changeme", "trustno1",
	}
	set := make(map[string]bool, len(common))
	for _, p := range common {
		set[p] = true
	}

	return &PasswordValidator{
		minLength:       10,
		maxLength:       72, // bcrypt ignores anything longer
		commonPasswords: set,
	}
}

// ValidatePassword returns an error describing the first unmet requirement
func (v *PasswordValidator) ValidatePassword(password string) error {
	if len(password) < v.minLength {
		return fmt.Errorf("password must be at least %d characters long", v.minLength)
	}
	if len(password) > v.maxLength {
		return fmt.Errorf("password must be no more than %d bytes long", v.maxLength)
	}
	if v.isCommonPassword(password) {
		return fmt.Errorf("password is too common, please choose a more secure password")
	}

	var hasUpper, hasLower, hasNumber bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasNumber = true
		}
	}

	var missing []string
	if !hasUpper {
		missing = append(missing, "an uppercase letter")
	}
	if !hasLower {
		missing = append(missing, "a lowercase letter")
	}
	if !hasNumber {
		missing = append(missing, "a number")
	}
	if len(missing) > 0 {
		return fmt.Errorf("password must contain %s", strings.Join(missing, ", "))
	}

	if hasRepeatedChars(password, 4) {
		return fmt.Errorf("password cannot contain more than 3 repeated characters in a row")
	}

	return nil
}

// isCommonPassword also catches common passwords with a short numeric suffix
func (v *PasswordValidator) isCommonPassword(password string) bool {
	lower := strings.ToLower(password)
	if v.commonPasswords[lower] {
		return true
	}
	for common := range v.commonPasswords {
		if suffix, ok := strings.CutPrefix(lower, common); ok && len(suffix) <= 4 && isAllNumbers(suffix) {
			return true
		}
	}
	return false
}

func isAllNumbers(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}

func hasRepeatedChars(password string, maxRepeats int) bool {
	count := 1
	for i := 1; i < len(password); i++ {
		if password[i] == password[i-1] {
			count++
			if count >= maxRepeats {
				return true
			}
		} else {
			count = 1
		}
	}
	return false
}
