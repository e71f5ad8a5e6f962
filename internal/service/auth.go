// Package service contains the business logic layer of the application.
//
// THE THREE-LAYER ARCHITECTURE:
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (Business layer) → validates, enforces rules, orchestrates
//	Repository (Data layer)  → reads/writes to the database
//
// Services take repository INTERFACES, not concrete types, so tests can
// inject in-memory mocks and the HTTP layer stays swappable. Services return
// domain errors (apperror), never HTTP status codes — the handler translates.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rs/xid"

	"github.com/sakif/photofeed/internal/apperror"
	"github.com/sakif/photofeed/internal/auth"
	"github.com/sakif/photofeed/internal/model"
	"github.com/sakif/photofeed/internal/repository"
)

// AuthService handles registration, login, email verification, password
// reset, profile updates and account deletion.
//
// DEPENDENCIES (injected via NewAuthService):
//   - users      repository.UserRepository → read/write account records
//   - tokens     *auth.TokenService        → access/verify/reset JWTs
//   - passwords  *auth.PasswordService     → bcrypt hashing
//   - logger     *slog.Logger              → structured logging
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

// NewAuthService creates an AuthService with all required dependencies.
func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// AuthResult bundles the user record with the issued JWT so the handler can
// set the cookie and respond in one step.
type AuthResult struct {
	User  *model.User
	Token string
}

// Register creates a password account.
//
// The policy checks (username length/characters, password strength, email
// shape) run here, before hashing: no point burning ~250ms of bcrypt on a
// password we're going to reject. Duplicate username/email surfaces as a
// conflict from the repository's UNIQUE constraints.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*model.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	if err := auth.ValidateUsername(username); err != nil {
		return nil, err
	}
	if err := auth.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := auth.ValidatePassword(password); err != nil {
		return nil, err
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("service/auth: hashing password: %w", err)
	}

	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		IsActive:     true,
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user registered",
		slog.String("userID", user.ID),
		slog.String("username", user.Username),
	)

	return user, nil
}

// Login verifies email+password and issues an access token.
//
// The same unauthorized error covers "no such email", "wrong password" and
// "deactivated account" — distinguishing them would tell an attacker which
// emails have accounts.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	failure := apperror.Unauthorized("incorrect email or password")

	user, err := s.users.GetUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, failure
	}
	if !user.IsActive {
		return nil, failure
	}
	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		return nil, failure
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token for user %s: %w", user.ID, err)
	}

	s.logger.Info("user logged in", slog.String("userID", user.ID))

	return &AuthResult{User: user, Token: token}, nil
}

// RequestVerifyToken issues an email-verification token for the account
// behind the given email.
//
// There is no mailer wired up — the token is logged so an operator (or a
// test) can complete the flow. The caller should respond identically whether
// or not the email exists; an unknown email returns an empty token and no
// error.
func (s *AuthService) RequestVerifyToken(ctx context.Context, email string) (string, error) {
	user, err := s.users.GetUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		// Don't reveal whether the email has an account.
		return "", nil
	}
	if user.IsVerified {
		return "", nil
	}

	token, err := s.tokens.GeneratePurpose(user.ID, auth.PurposeVerify)
	if err != nil {
		return "", fmt.Errorf("service/auth: generating verify token: %w", err)
	}

	s.logger.Info("verification token issued",
		slog.String("userID", user.ID),
		slog.String("token", token),
	)

	return token, nil
}

// Verify marks the account behind a verification token as verified.
func (s *AuthService) Verify(ctx context.Context, token string) (*model.User, error) {
	userID, err := s.tokens.ValidatePurpose(token, auth.PurposeVerify)
	if err != nil {
		return nil, apperror.Unauthorized("invalid or expired verification token")
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if !user.IsVerified {
		user.IsVerified = true
		if err := s.users.UpdateUser(ctx, user); err != nil {
			return nil, fmt.Errorf("service/auth: marking user %s verified: %w", userID, err)
		}
		s.logger.Info("user verified", slog.String("userID", user.ID))
	}

	return user, nil
}

// ForgotPassword issues a password-reset token, logged like the verification
// token. An unknown email is silently ignored for the same reason.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) (string, error) {
	user, err := s.users.GetUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return "", nil
	}

	token, err := s.tokens.GeneratePurpose(user.ID, auth.PurposeReset)
	if err != nil {
		return "", fmt.Errorf("service/auth: generating reset token: %w", err)
	}

	s.logger.Info("password reset token issued",
		slog.String("userID", user.ID),
		slog.String("token", token),
	)

	return token, nil
}

// ResetPassword sets a new password for the account behind a reset token.
// The new password goes through the same strength policy as registration.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	userID, err := s.tokens.ValidatePurpose(token, auth.PurposeReset)
	if err != nil {
		return apperror.Unauthorized("invalid or expired reset token")
	}

	if err := auth.ValidatePassword(newPassword); err != nil {
		return err
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}

	hash, err := s.passwords.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("service/auth: hashing new password: %w", err)
	}

	user.PasswordHash = hash
	if err := s.users.UpdateUser(ctx, user); err != nil {
		return fmt.Errorf("service/auth: storing new password for user %s: %w", userID, err)
	}

	s.logger.Info("password reset", slog.String("userID", user.ID))
	return nil
}

// GetUserByID returns the user for the given internal ID. Used by the
// /users/me handler after the middleware extracts the ID from the JWT.
func (s *AuthService) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	if id == "" {
		return nil, apperror.ValidationFailed("id", "user ID is required")
	}
	return s.users.GetUserByID(ctx, id)
}

// UpdateProfile changes the email and/or password of an account. Empty
// string means "don't change". The username is immutable — posts and
// comments carry it denormalized, and renames would strand the copies.
func (s *AuthService) UpdateProfile(ctx context.Context, userID, email, password string) (*model.User, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if email = strings.TrimSpace(email); email != "" && email != user.Email {
		if err := auth.ValidateEmail(email); err != nil {
			return nil, err
		}
		// Pre-check for a clean conflict message; the UNIQUE constraint
		// still backstops a race.
		if existing, err := s.users.GetUserByEmail(ctx, email); err == nil && existing.ID != userID {
			return nil, apperror.ConflictMsg("email is already in use")
		}
		user.Email = email
		// A changed email needs re-verification.
		user.IsVerified = false
	}

	if password != "" {
		if err := auth.ValidatePassword(password); err != nil {
			return nil, err
		}
		hash, err := s.passwords.Hash(password)
		if err != nil {
			return nil, fmt.Errorf("service/auth: hashing password: %w", err)
		}
		user.PasswordHash = hash
	}

	if err := s.users.UpdateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("service/auth: updating user %s: %w", userID, err)
	}

	s.logger.Info("profile updated", slog.String("userID", user.ID))
	return user, nil
}

// DeleteAccount removes the user and, through the database cascades, every
// post, like and comment they own.
//
// Remote media assets of the user's posts are NOT deleted here — unlike a
// single post delete, an account delete would need a fan-out of image host
// calls with partial-failure handling, and the host's storage is cheap
// enough that orphans are tolerated.
func (s *AuthService) DeleteAccount(ctx context.Context, userID string) error {
	if err := s.users.DeleteUser(ctx, userID); err != nil {
		return err
	}

	s.logger.Info("account deleted", slog.String("userID", userID))
	return nil
}

// LoginOrRegisterGitHub handles the GitHub OAuth callback: find the account
// by GitHub ID, provision one on first login, then issue an access token.
//
// OAuth accounts have no password hash and count as verified — GitHub
// already verified the email. GitHub logins can collide with existing feed
// usernames, so a taken login gets a random suffix.
func (s *AuthService) LoginOrRegisterGitHub(ctx context.Context, ghUser *auth.GitHubUser) (*AuthResult, error) {
	if ghUser == nil {
		return nil, fmt.Errorf("service/auth: GitHub user must not be nil")
	}

	user, err := s.users.GetUserByGitHubID(ctx, ghUser.ID)
	if err != nil {
		user, err = s.provisionGitHubUser(ctx, ghUser)
		if err != nil {
			return nil, err
		}
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token for user %s: %w", user.ID, err)
	}

	s.logger.Info("user authenticated via GitHub",
		slog.String("userID", user.ID),
		slog.Int64("githubID", ghUser.ID),
	)

	return &AuthResult{User: user, Token: token}, nil
}

func (s *AuthService) provisionGitHubUser(ctx context.Context, ghUser *auth.GitHubUser) (*model.User, error) {
	email := ghUser.Email
	if email == "" {
		// GitHub hides the email when the user opts out of sharing it.
		email = fmt.Sprintf("%d+%s@users.noreply.github.com", ghUser.ID, ghUser.Login)
	}

	user := &model.User{
		Username:   ghUser.Login,
		Email:      email,
		GitHubID:   ghUser.ID,
		IsActive:   true,
		IsVerified: true,
	}

	err := s.users.CreateUser(ctx, user)
	if errors.Is(err, apperror.ErrConflict) {
		// The GitHub login is taken as a feed username (or the email is
		// already registered) — retry once with a unique suffix.
		user.Username = ghUser.Login + "-" + xid.New().String()
		err = s.users.CreateUser(ctx, user)
	}
	if err != nil {
		return nil, fmt.Errorf("service/auth: provisioning GitHub user %d: %w", ghUser.ID, err)
	}

	s.logger.Info("github account provisioned",
		slog.String("userID", user.ID),
		slog.String("username", user.Username),
	)

	return user, nil
}
