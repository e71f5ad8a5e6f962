// Package auth provides JWT issuance/validation, password hashing and the
// registration policy for the feed API.
//
// AUTHENTICATION FLOW OVERVIEW:
// 1. User registers with username/email/password (or signs in via GitHub OAuth)
// 2. Login verifies the bcrypt hash and issues a JWT access token
// 3. The token travels either as an Authorization: Bearer header (API clients)
//    or as an HttpOnly cookie (the dashboard)
// 4. Middleware validates it and puts the userID into the request context
//
// WHY JWT?
// JWT is stateless — no session store. Everything needed (userID, expiry,
// purpose) is inside the signed token, and the HMAC signature means nobody
// can mint or alter one without the secret key.
//
// Besides access tokens we issue PURPOSE-SCOPED tokens for email verification
// and password reset. They share the signing key but carry an audience claim
// ("verify" / "reset") so a reset token can never be replayed as an access
// token or vice versa.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token purposes, carried in the "aud" claim.
const (
	PurposeAccess = "access"
	PurposeVerify = "verify"
	PurposeReset  = "reset"
)

const (
	accessTokenTTL = time.Hour
	// Verify/reset tokens ride in emails, which people open late.
	purposeTokenTTL = 24 * time.Hour

	issuer = "photofeed"
)

// TokenService handles JWT creation and validation.
// It holds the HMAC secret used to sign and verify tokens; the same secret
// must be used for both operations.
type TokenService struct {
	secret []byte
}

// NewTokenService creates a TokenService with the given secret.
// The secret should be at least 32 bytes of random data in production.
// Example: JWT_SECRET=$(openssl rand -hex 32)
func NewTokenService(secret string) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	return &TokenService{secret: []byte(secret)}, nil
}

// claims embeds jwt.RegisteredClaims: "sub" holds the internal user ID and
// "aud" holds the token purpose.
type claims struct {
	jwt.RegisteredClaims
}

// Generate creates and signs a new access token for the given userID.
// Lifetime: 1 hour. After expiry the client must log in again.
func (s *TokenService) Generate(userID string) (string, error) {
	return s.sign(userID, PurposeAccess, accessTokenTTL)
}

// GenerateWithDuration creates an access token with a custom expiry.
// Used in tests to produce already-expired tokens.
func (s *TokenService) GenerateWithDuration(userID string, d time.Duration) (string, error) {
	return s.sign(userID, PurposeAccess, d)
}

// GeneratePurpose creates a verify or reset token for the given userID.
func (s *TokenService) GeneratePurpose(userID, purpose string) (string, error) {
	if purpose != PurposeVerify && purpose != PurposeReset {
		return "", fmt.Errorf("auth: unknown token purpose %q", purpose)
	}
	return s.sign(userID, purpose, purposeTokenTTL)
}

func (s *TokenService) sign(userID, purpose string, ttl time.Duration) (string, error) {
	now := time.Now()

	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Audience:  jwt.ClaimStrings{purpose},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Validate parses and verifies an access token, returning the userID from
// the "sub" claim.
func (s *TokenService) Validate(tokenStr string) (string, error) {
	return s.validate(tokenStr, PurposeAccess)
}

// ValidatePurpose verifies a verify/reset token and returns the userID.
// A token issued for a different purpose is rejected even though the
// signature is valid — that's the whole point of the audience claim.
func (s *TokenService) ValidatePurpose(tokenStr, purpose string) (string, error) {
	return s.validate(tokenStr, purpose)
}

// validate performs the shared checks:
//   - signature is valid (wasn't tampered with)
//   - token is not expired
//   - issuer matches (prevents tokens minted by other apps on the same key)
//   - algorithm is HS256 (prevents algorithm confusion attacks)
//   - audience matches the expected purpose
func (s *TokenService) validate(tokenStr, purpose string) (string, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithAudience(purpose),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", fmt.Errorf("auth: token expired")
		}
		return "", fmt.Errorf("auth: invalid token: %w", err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("auth: invalid token claims")
	}

	if c.Subject == "" {
		return "", fmt.Errorf("auth: token has no subject")
	}

	return c.Subject, nil
}
