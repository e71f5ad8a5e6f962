package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

// contextKey is an unexported type used for context keys in this package.
//
// WHY A CUSTOM TYPE FOR CONTEXT KEYS?
// context.WithValue uses any as the key type. With a plain string key, any
// package that knows the string could read or shadow the value. A
// package-private type means only this package can touch userID entries.
type contextKey string

const userIDKey contextKey = "userID"

// RequireAuth is a middleware that enforces authentication on protected routes.
//
// The token is accepted from two places, checked in order:
//  1. "Authorization: Bearer <jwt>" header — API clients and the dashboard
//     frontend send this
//  2. the "token" HttpOnly cookie — set on login for browser navigation
//
// On success the userID lands in the request context; otherwise the chain
// stops with 401. Storing the cookie HttpOnly keeps JavaScript from reading
// it, which blocks XSS token theft.
func RequireAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := extractUserID(r, tokens)
			if err != nil {
				http.Error(w, `{"error":"unauthorized","message":"valid authentication required"}`, http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth extracts the user identity if a valid token is present but
// does NOT block the request otherwise.
//
// Used on public routes like GET /feed where anonymous users can read but a
// logged-in user might get extra affordances. Handlers check with
// UserIDFromContext — ("", false) means anonymous.
func OptionalAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if userID, err := extractUserID(r, tokens); err == nil && userID != "" {
				ctx := context.WithValue(r.Context(), userIDKey, userID)
				r = r.WithContext(ctx)
			}
			// Always continue — no 401 even if no token
			next.ServeHTTP(w, r)
		})
	}
}

// UserIDFromContext retrieves the authenticated user's ID from the request
// context. Returns ("", false) if the request is anonymous.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

// extractUserID pulls the JWT from the bearer header or the cookie and
// validates it. Shared by RequireAuth and OptionalAuth.
func extractUserID(r *http.Request, tokens *TokenService) (string, error) {
	if h := r.Header.Get("Authorization"); h != "" {
		raw, ok := strings.CutPrefix(h, "Bearer ")
		if !ok {
			return "", errors.New("auth: malformed Authorization header")
		}
		return tokens.Validate(strings.TrimSpace(raw))
	}

	cookie, err := r.Cookie("token")
	if err != nil {
		// http.ErrNoCookie — not an error as such, just anonymous
		return "", err
	}

	return tokens.Validate(cookie.Value)
}
