package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sakif/photofeed/internal/apperror"
	"github.com/sakif/photofeed/internal/model"
	"github.com/sakif/photofeed/internal/repository"
)

// Compile-time check that *DB implements repository.UserRepository.
var _ repository.UserRepository = (*DB)(nil)

// CreateUser inserts a new user.
//
// Username and email carry UNIQUE constraints; a violation comes back as a
// conflict error naming the offending field so the handler can return a
// useful 409 instead of a raw constraint message.
func (db *DB) CreateUser(ctx context.Context, user *model.User) error {
	user.ID = uuid.NewString()
	// Timestamps are naive UTC, recomputed per insert — not a shared default.
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (id, username, email, password_hash, github_id, is_active, is_verified, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.GitHubID,
		user.IsActive,
		user.IsVerified,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		switch {
		case isUniqueViolation(err, "users.username"):
			return apperror.ConflictMsg("username is already taken")
		case isUniqueViolation(err, "users.email"):
			return apperror.ConflictMsg("an account with this email already exists")
		case isUniqueViolation(err, "users.github_id"):
			return apperror.ConflictMsg("this GitHub account is already linked")
		}
		return fmt.Errorf("sqlite: creating user: %w", err)
	}

	return nil
}

const userColumns = `id, username, email, password_hash, github_id, is_active, is_verified, created_at, updated_at`

func scanUser(row *sql.Row) (*model.User, error) {
	var u model.User
	err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.GitHubID,
		&u.IsActive,
		&u.IsVerified,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUserByID retrieves a user by their internal ID.
func (db *DB) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	u, err := scanUser(db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", id)
		}
		return nil, fmt.Errorf("sqlite: getting user %s: %w", id, err)
	}
	return u, nil
}

// GetUserByEmail retrieves a user by email. Login looks accounts up this way.
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	u, err := scanUser(db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFoundMsg("user not found")
		}
		return nil, fmt.Errorf("sqlite: getting user by email: %w", err)
	}
	return u, nil
}

// GetUserByGitHubID retrieves a user by their linked GitHub account ID.
func (db *DB) GetUserByGitHubID(ctx context.Context, githubID int64) (*model.User, error) {
	u, err := scanUser(db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE github_id = ? AND github_id != 0`, githubID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFoundMsg("user not found")
		}
		return nil, fmt.Errorf("sqlite: getting user by github_id %d: %w", githubID, err)
	}
	return u, nil
}

// UpdateUser persists changes to email, password hash and the two flags.
// Username is deliberately absent from the SET list — it is immutable, and
// the denormalized copies on posts/comments depend on that.
func (db *DB) UpdateUser(ctx context.Context, user *model.User) error {
	user.UpdatedAt = time.Now().UTC()

	result, err := db.conn.ExecContext(ctx,
		`UPDATE users
		 SET email = ?, password_hash = ?, is_active = ?, is_verified = ?, updated_at = ?
		 WHERE id = ?`,
		user.Email,
		user.PasswordHash,
		user.IsActive,
		user.IsVerified,
		user.UpdatedAt,
		user.ID,
	)
	if err != nil {
		if isUniqueViolation(err, "users.email") {
			return apperror.ConflictMsg("an account with this email already exists")
		}
		return fmt.Errorf("sqlite: updating user %s: %w", user.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("user", user.ID)
	}

	return nil
}

// DeleteUser removes a user row. The ON DELETE CASCADE rules take the user's
// posts with it, and through the posts every dependent like and comment —
// one statement, one transaction. Media assets on the external host are NOT
// touched by account deletion; a known asymmetry with post deletion.
func (db *DB) DeleteUser(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting user %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("user", id)
	}

	return nil
}
