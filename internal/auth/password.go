package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// ErrCorruptHash indicates a stored password hash that bcrypt cannot read.
// It is distinct from a mismatch: the record is unusable, not merely wrong.
var ErrCorruptHash = errors.New("stored password hash is corrupt")

// HashPassword hashes a plaintext password with configured cost.
func HashPassword(password string, cost int) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// VerifyPassword compares a password against its stored bcrypt hash.
// A mismatch returns bcrypt.ErrMismatchedHashAndPassword; a structurally
// unreadable hash returns ErrCorruptHash.
func VerifyPassword(hashed, plain string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
	if err == nil || errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return err
	}
	return errors.Join(ErrCorruptHash, err)
}
