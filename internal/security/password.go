package security

import (
	"crypto/subtle"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword returns the bcrypt hash of password
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// IsHashed reports whether a stored credential is a bcrypt hash rather than legacy plaintext
func IsHashed(stored string) bool {
	return strings.HasPrefix(stored, "$2a$") ||
		strings.HasPrefix(stored, "$2b$") ||
		strings.HasPrefix(stored, "$2y$")
}

// Verification is the outcome of checking a password against a stored credential
type Verification struct {
	Match bool
	// Legacy is set when the stored credential was plaintext and should be rehashed
	Legacy bool
}

// VerifyPassword checks password against stored, which may be a bcrypt hash or legacy plaintext
func VerifyPassword(stored, password string) Verification {
	if stored == "" {
		return Verification{}
	}
	if !IsHashed(stored) {
		match := subtle.ConstantTimeCompare([]byte(stored), []byte(password)) == 1
		return Verification{Match: match, Legacy: match}
	}
	err := bcrypt.CompareHashAndPassword([]byte(stored), []byte(password))
	if err != nil && !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return Verification{}
	}
	return Verification{Match: err == nil}
}

// HashSecurityAnswer normalizes an answer before hashing so that case and surrounding space do not matter
func HashSecurityAnswer(answer string) (string, error) {
	return HashPassword(NormalizeSecurityAnswer(answer))
}

// NormalizeSecurityAnswer trims and lower-cases an answer
func NormalizeSecurityAnswer(answer string) string {
	return strings.ToLower(strings.TrimSpace(answer))
}
