// Package cryptox holds the small cryptographic helpers the auth service
// relies on: password hashing, token fingerprints and one-time codes.
package cryptox

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// bcryptCost is fixed service-wide. Changing it only affects newly hashed
// passwords; existing hashes keep the cost encoded in their prefix.
const bcryptCost = 10

var ErrPasswordMismatch = errors.New("password does not match")

// HashPassword hashes a plaintext password with bcrypt. If the input is
// already a bcrypt hash it is returned unchanged, so a retried create-user
// call cannot double-hash a stored value.
func HashPassword(password string) (string, error) {
	if IsHashed(password) {
		return password, nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// IsHashed reports whether s carries a bcrypt version prefix.
func IsHashed(s string) bool {
	return strings.HasPrefix(s, "$2a$") ||
		strings.HasPrefix(s, "$2b$") ||
		strings.HasPrefix(s, "$2y$")
}

// VerifyPassword compares a plaintext password against a bcrypt hash.
// bcrypt's comparison is constant-time over the derived key.
func VerifyPassword(password, hash string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrPasswordMismatch
	}
	return nil
}
