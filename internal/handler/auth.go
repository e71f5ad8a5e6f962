package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/photofeed/internal/auth"
	"github.com/sakif/photofeed/internal/service"
)

// sessionCookieTTL matches the access token lifetime; an expired cookie
// carrying an expired token would just bounce off the middleware anyway.
const sessionCookieTTL = time.Hour

// AuthHandler exposes registration, login, verification, password reset,
// profile management and the GitHub OAuth flow.
//
// DEPENDENCY CHAIN:
//   - auths  *service.AuthService  → all account business logic
//   - github *auth.GitHubProvider  → OAuth code exchange (nil when not configured)
type AuthHandler struct {
	auths  *service.AuthService
	github *auth.GitHubProvider
	logger *slog.Logger
}

// NewAuthHandler creates an AuthHandler. github may be nil; the server only
// mounts the OAuth routes when a provider is configured.
func NewAuthHandler(auths *service.AuthService, github *auth.GitHubProvider, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		auths:  auths,
		github: github,
		logger: logger,
	}
}

// setSessionCookie stores the JWT as an HttpOnly cookie.
// HttpOnly = JavaScript cannot read it (XSS protection).
// SameSite=Lax = sent on top-level navigations but not cross-site POSTs.
// Secure should be true in production (HTTPS only); false for local dev.
func setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    token,
		Path:     "/",
		MaxAge:   int(sessionCookieTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// HandleRegister creates a password account.
//
// HTTP: POST /auth/register
// Body: {"username": "...", "email": "...", "password": "..."}
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "invalid JSON body",
		})
		return
	}

	user, err := h.auths.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

// HandleLogin verifies credentials and issues the session.
//
// HTTP: POST /auth/jwt/login
// Body: application/x-www-form-urlencoded, username=<email>&password=<pw>
//
// The form field is called "username" but carries the EMAIL — an OAuth2
// password-grant convention kept for client compatibility. The token goes
// out twice: in the JSON body for API clients, and as the HttpOnly cookie
// for the browser.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "invalid form body",
		})
		return
	}

	email := r.PostFormValue("username")
	password := r.PostFormValue("password")

	result, err := h.auths.Login(r.Context(), email, password)
	if err != nil {
		writeError(w, err)
		return
	}

	setSessionCookie(w, result.Token)
	writeJSON(w, http.StatusOK, map[string]string{
		"access_token": result.Token,
		"token_type":   "bearer",
	})
}

// HandleLogout clears the session cookie.
//
// HTTP: POST /auth/jwt/logout
//
// Stateless JWTs can't be revoked server-side; the token stays technically
// valid until expiry, but without the cookie the browser can't send it.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	clearSessionCookie(w)
	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// HandleRequestVerify issues an email-verification token.
//
// HTTP: POST /auth/request-verify-token
// Body: {"email": "..."}
//
// Always 202: the response must not reveal whether the email has an account.
// The token itself lands in the server log (no mailer is wired up).
func (h *AuthHandler) HandleRequestVerify(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "invalid JSON body",
		})
		return
	}

	if _, err := h.auths.RequestVerifyToken(r.Context(), req.Email); err != nil {
		h.logger.Error("request-verify failed", slog.String("error", err.Error()))
	}

	w.WriteHeader(http.StatusAccepted)
}

// HandleVerify marks the account behind a verification token as verified.
//
// HTTP: POST /auth/verify
// Body: {"token": "..."}
func (h *AuthHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "invalid JSON body",
		})
		return
	}

	user, err := h.auths.Verify(r.Context(), req.Token)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// HandleForgotPassword issues a password-reset token.
//
// HTTP: POST /auth/forgot-password
// Body: {"email": "..."}
//
// Always 202, same reasoning as HandleRequestVerify.
func (h *AuthHandler) HandleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "invalid JSON body",
		})
		return
	}

	if _, err := h.auths.ForgotPassword(r.Context(), req.Email); err != nil {
		h.logger.Error("forgot-password failed", slog.String("error", err.Error()))
	}

	w.WriteHeader(http.StatusAccepted)
}

// HandleResetPassword sets a new password using a reset token.
//
// HTTP: POST /auth/reset-password
// Body: {"token": "...", "password": "..."}
func (h *AuthHandler) HandleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "invalid JSON body",
		})
		return
	}

	if err := h.auths.ResetPassword(r.Context(), req.Token, req.Password); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "password updated"})
}

// HandleMe returns the authenticated user's profile.
//
// HTTP: GET /users/me
// Auth: required
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		// Should never happen on a RequireAuth-protected route, but be safe.
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}

	user, err := h.auths.GetUserByID(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// HandleUpdateMe changes the email and/or password of the authenticated
// account. The username is immutable.
//
// HTTP: PATCH /users/me
// Body: {"email": "...", "password": "..."} — omitted fields stay unchanged
func (h *AuthHandler) HandleUpdateMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "invalid JSON body",
		})
		return
	}

	user, err := h.auths.UpdateProfile(r.Context(), userID, req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// HandleDeleteAccount removes the authenticated user and everything they
// own, then clears the session cookie.
//
// HTTP: DELETE /account
// Auth: required; responds 204 on success.
func (h *AuthHandler) HandleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}

	if err := h.auths.DeleteAccount(r.Context(), userID); err != nil {
		writeError(w, err)
		return
	}

	clearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// HandleGitHubLogin redirects the browser to GitHub's authorization page.
//
// HTTP: GET /auth/github/login
//
// CSRF PROTECTION VIA STATE:
// A random state goes into a short-lived cookie; the callback verifies the
// returned state matches, proving the flow started on this server.
func (h *AuthHandler) HandleGitHubLogin(w http.ResponseWriter, r *http.Request) {
	state := xid.New().String()

	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_state",
		Value:    state,
		Path:     "/",
		MaxAge:   600, // 10 minutes: enough to approve, short enough to limit risk
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.github.AuthURL(state), http.StatusTemporaryRedirect)
}

// HandleGitHubCallback completes the OAuth login flow.
//
// HTTP: GET /auth/github/callback?code=xxx&state=yyy
func (h *AuthHandler) HandleGitHubCallback(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie("oauth_state")
	if err != nil || stateCookie.Value == "" {
		h.logger.Warn("oauth callback: missing state cookie")
		http.Error(w, "invalid OAuth state", http.StatusBadRequest)
		return
	}
	if r.URL.Query().Get("state") != stateCookie.Value {
		h.logger.Warn("oauth callback: state mismatch")
		http.Error(w, "invalid OAuth state", http.StatusBadRequest)
		return
	}

	// The state cookie is single-use.
	http.SetCookie(w, &http.Cookie{
		Name:   "oauth_state",
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})

	// GitHub reports a denied authorization via the error query param.
	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.logger.Info("oauth callback: user denied authorization",
			slog.String("error", errParam),
		)
		http.Redirect(w, r, "/?auth=denied", http.StatusSeeOther)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "missing OAuth code", http.StatusBadRequest)
		return
	}

	ghUser, err := h.github.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("oauth callback: GitHub exchange failed", slog.String("error", err.Error()))
		http.Error(w, "authentication failed", http.StatusInternalServerError)
		return
	}

	result, err := h.auths.LoginOrRegisterGitHub(r.Context(), ghUser)
	if err != nil {
		h.logger.Error("oauth callback: login failed",
			slog.Int64("githubID", ghUser.ID),
			slog.String("error", err.Error()),
		)
		http.Error(w, "authentication failed", http.StatusInternalServerError)
		return
	}

	setSessionCookie(w, result.Token)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
