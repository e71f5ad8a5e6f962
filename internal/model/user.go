// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents a registered account.
//
// Identity is primarily email + password (bcrypt hash). A user who signs in
// with GitHub OAuth instead gets a row with GitHubID set and an empty
// PasswordHash — they can never log in with a password, only via OAuth.
//
// WHY A DENORMALIZED Username ON Post AND Comment?
// Posts and comments store the author's username at creation time so the feed
// can render without a join. That only stays consistent because usernames are
// immutable after registration (profile update rejects username changes).
//
// PasswordHash is never serialized — note the `json:"-"` tag. Forgetting that
// tag on a credential field is how hashes end up in API responses.
type User struct {
	ID           string    `json:"id"          db:"id"`
	Username     string    `json:"username"    db:"username"`
	Email        string    `json:"email"       db:"email"`
	PasswordHash string    `json:"-"           db:"password_hash"`
	GitHubID     int64     `json:"-"           db:"github_id"` // 0 unless the account was provisioned via OAuth
	IsActive     bool      `json:"is_active"   db:"is_active"`
	IsVerified   bool      `json:"is_verified" db:"is_verified"`
	CreatedAt    time.Time `json:"created_at"  db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"  db:"updated_at"`
}
