package service

import (
	"crypto/subtle"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Password schemes accepted by NewCredentialVerifier
const (
	SchemePlaintext = "plaintext"
	SchemeBcrypt    = "bcrypt"
)

// MaxBcryptPasswordBytes is the longest input bcrypt accepts.
const MaxBcryptPasswordBytes = 72

// ErrPasswordTooLong is returned by Seal for passwords bcrypt cannot hash.
var ErrPasswordTooLong = errors.New("password is too long")

// CredentialVerifier seals passwords for storage and checks supplied
// passwords against the stored form.
type CredentialVerifier interface {
	Seal(password string) (string, error)
	Verify(stored, supplied string) bool
}

// PlaintextVerifier stores passwords as given and compares by equality.
// It exists for compatibility with accounts created by the legacy backend.
type PlaintextVerifier struct{}

func (PlaintextVerifier) Seal(password string) (string, error) {
	return password, nil
}

func (PlaintextVerifier) Verify(stored, supplied string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(supplied)) == 1
}

// BcryptVerifier stores bcrypt hashes.
type BcryptVerifier struct {
	Cost int
}

func (v BcryptVerifier) Seal(password string) (string, error) {
	if len(password) > MaxBcryptPasswordBytes {
		return "", ErrPasswordTooLong
	}

	cost := v.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

func (v BcryptVerifier) Verify(stored, supplied string) bool {
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(supplied)) == nil
}

// NewCredentialVerifier returns the verifier for a configured scheme.
func NewCredentialVerifier(scheme string) (CredentialVerifier, error) {
	switch scheme {
	case SchemePlaintext:
		return PlaintextVerifier{}, nil
	case SchemeBcrypt, "":
		return BcryptVerifier{Cost: bcrypt.DefaultCost}, nil
	default:
		return nil, fmt.Errorf("unknown password scheme %q", scheme)
	}
}
