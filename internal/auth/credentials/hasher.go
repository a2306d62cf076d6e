package credentials

import (
	"identity-service/internal/auth"

	"golang.org/x/crypto/bcrypt"
)

const (
	// HashCost is the bcrypt work factor.
	HashCost = bcrypt.DefaultCost

	minPasswordLen = 8
	maxPasswordLen = 72 // bcrypt ignores input past this many bytes
)

var (
	ErrPasswordTooShort = &auth.ValidationError{Field: "password", Reason: "too short"}
	ErrPasswordTooLong  = &auth.ValidationError{Field: "password", Reason: "too long"}
)

// HashPassword hashes a plaintext password using bcrypt.
// It must only be called when the password was just set or changed.
func HashPassword(password string) (string, error) {
	if len(password) < minPasswordLen {
		return "", ErrPasswordTooShort
	}
	if len(password) > maxPasswordLen {
		return "", ErrPasswordTooLong
	}

	bytes, err := bcrypt.GenerateFromPassword([]byte(password), HashCost)
	if err != nil {
		return "", err
	}

	return string(bytes), nil
}

// VerifyPassword compares plaintext password with stored hash.
func VerifyPassword(hash string, password string) error {
	return bcrypt.CompareHashAndPassword(
		[]byte(hash),
		[]byte(password),
	)
}
