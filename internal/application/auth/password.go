package auth

import "unicode"

// MinPasswordLength is the floor for the strength policy.
const MinPasswordLength = 8

// IsPasswordStrong applies the registration strength policy: at least eight
// characters with one uppercase letter, one lowercase letter and one digit.
func IsPasswordStrong(password string) bool {
	if len(password) < MinPasswordLength {
		return false
	}
	var hasUpper, hasLower, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	return hasUpper && hasLower && hasDigit
}
