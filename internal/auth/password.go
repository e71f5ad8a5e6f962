// Package auth — password hashing and the registration policy.
//
// WHY BCRYPT?
// bcrypt is a password hashing function designed to be slow. That slowness is
// a security feature: it makes brute-force attacks expensive. It generates a
// random salt per hash, embeds the salt in the output, and controls the work
// factor via "cost". Never store passwords in plain text or with fast hashes
// (MD5, SHA-256) — those fall to GPU rigs in minutes.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"

	"github.com/sakif/photofeed/internal/apperror"
)

// defaultCost is the bcrypt work factor.
//
// Cost 12 takes roughly ~250ms on a modern server — negligible for a login,
// brutal for an attacker. Tune so hashing stays in the 200–300ms range on
// your production hardware.
const defaultCost = 12

// Registration policy bounds.
const (
	MinUsernameLength = 3
	MinPasswordLength = 8
)

// PasswordService provides bcrypt hashing and verification.
//
// It's a struct (not free functions) so the cost can be injected in tests —
// cost 4 makes tests run fast without changing the logic being tested.
type PasswordService struct {
	cost int
}

// NewPasswordService creates a PasswordService with the default cost (12).
func NewPasswordService() *PasswordService {
	return &PasswordService{cost: defaultCost}
}

// NewPasswordServiceForTest creates a PasswordService with a low bcrypt cost.
// Use in tests to avoid the ~250ms overhead of cost 12 per hash.
// Do NOT use in production.
func NewPasswordServiceForTest(cost int) *PasswordService {
	return &PasswordService{cost: cost}
}

// Hash hashes the given plaintext password with bcrypt.
//
// The output is self-contained (salt and cost included) — store it directly.
// Returns an error for plaintext over 72 bytes; bcrypt would silently
// truncate it, and we'd rather reject than surprise.
func (p *PasswordService) Hash(plaintext string) (string, error) {
	if len(plaintext) > 72 {
		return "", fmt.Errorf("auth: password must be 72 bytes or fewer")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), p.cost)
	if err != nil {
		return "", fmt.Errorf("auth: hashing password: %w", err)
	}

	return string(hashed), nil
}

// Verify checks whether a plaintext password matches a stored bcrypt hash.
// Returns nil on match. bcrypt compares in constant time internally, so this
// is safe against timing attacks.
func (p *PasswordService) Verify(hash, plaintext string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return fmt.Errorf("auth: invalid password")
		}
		return fmt.Errorf("auth: comparing password hash: %w", err)
	}
	return nil
}

// ValidateUsername enforces the registration username policy:
// at least 3 characters, alphanumeric only.
func ValidateUsername(username string) error {
	if len(username) < MinUsernameLength {
		return apperror.ValidationFailed("username",
			fmt.Sprintf("username must be at least %d characters", MinUsernameLength))
	}
	for _, r := range username {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return apperror.ValidationFailed("username", "username must be alphanumeric")
		}
	}
	return nil
}

// ValidatePassword enforces the registration password policy:
// at least 8 characters, with at least one uppercase letter, one lowercase
// letter and one digit.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return apperror.ValidationFailed("password",
			fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
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

	switch {
	case !hasUpper:
		return apperror.ValidationFailed("password", "password must contain an uppercase letter")
	case !hasLower:
		return apperror.ValidationFailed("password", "password must contain a lowercase letter")
	case !hasDigit:
		return apperror.ValidationFailed("password", "password must contain a number")
	}
	return nil
}

// ValidateEmail does a minimal shape check. Real validation is "send a mail
// and see" — the verify-token flow does that; this just rejects obvious junk.
func ValidateEmail(email string) error {
	at := strings.Index(email, "@")
	if at < 1 || at == len(email)-1 || !strings.Contains(email[at+1:], ".") {
		return apperror.ValidationFailed("email", "invalid email address")
	}
	return nil
}
