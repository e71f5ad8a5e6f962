package auth

import (
	"errors"
	"strings"
	"testing"

	"github.com/sakif/photofeed/internal/apperror"
)

// Cost 4 is bcrypt's minimum — fine for tests, far too weak for production.
func newTestPasswordService() *PasswordService {
	return NewPasswordServiceForTest(4)
}

func TestHashAndVerify(t *testing.T) {
	ps := newTestPasswordService()

	hash, err := ps.Hash("Sup3rSecret")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if hash == "Sup3rSecret" {
		t.Fatal("Hash() returned the plaintext")
	}

	if err := ps.Verify(hash, "Sup3rSecret"); err != nil {
		t.Errorf("Verify() with correct password: error = %v", err)
	}
	if err := ps.Verify(hash, "WrongPassword1"); err == nil {
		t.Error("Verify() should fail with the wrong password")
	}
}

func TestHash_UniqueSalts(t *testing.T) {
	ps := newTestPasswordService()

	h1, err := ps.Hash("Sup3rSecret")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	h2, err := ps.Hash("Sup3rSecret")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	// Same password, different salt, different hash
	if h1 == h2 {
		t.Error("two hashes of the same password should differ (random salt)")
	}
}

func TestHash_RejectsOverlongPassword(t *testing.T) {
	ps := newTestPasswordService()

	if _, err := ps.Hash(strings.Repeat("a", 73)); err == nil {
		t.Fatal("Hash() should reject passwords over 72 bytes")
	}
}

func TestValidateUsername(t *testing.T) {
	tests := []struct {
		name     string
		username string
		wantErr  bool
	}{
		{"valid", "alice", false},
		{"valid with digits", "alice99", false},
		{"minimum length", "bob", false},
		{"too short", "ab", true},
		{"empty", "", true},
		{"contains space", "a lice", true},
		{"contains underscore", "alice_b", true},
		{"contains symbol", "alice!", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUsername(tt.username)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateUsername(%q) error = %v, wantErr %v", tt.username, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, apperror.ErrValidation) {
				t.Errorf("ValidateUsername(%q) error should be a validation error, got %v", tt.username, err)
			}
		})
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"valid", "Sup3rSecret", false},
		{"exactly 8 chars", "Abcdefg1", false},
		{"too short", "Abc1", true},
		{"no uppercase", "sup3rsecret", true},
		{"no lowercase", "SUP3RSECRET", true},
		{"no digit", "SuperSecret", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePassword(%q) error = %v, wantErr %v", tt.password, err, tt.wantErr)
			}
		})
	}
}

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{"valid", "alice@example.com", false},
		{"subdomain", "alice@mail.example.co.uk", false},
		{"no at", "alice.example.com", true},
		{"no domain dot", "alice@localhost", true},
		{"leading at", "@example.com", true},
		{"trailing at", "alice@", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateEmail(%q) error = %v, wantErr %v", tt.email, err, tt.wantErr)
			}
		})
	}
}
