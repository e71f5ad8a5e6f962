package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
)

// GitHubUser is the portion of the GitHub /user API response we care about.
// GitHub returns a much larger object — we only unmarshal what we need to
// provision a feed account.
type GitHubUser struct {
	ID    int64  `json:"id"`    // GitHub's numeric user ID — stable, never changes
	Login string `json:"login"` // GitHub username; basis for the derived feed username
	Email string `json:"email"` // primary email (empty if hidden in GitHub settings)
}

// GitHubProvider wraps golang.org/x/oauth2 for the GitHub Authorization Code
// flow, the secondary login path next to email/password.
//
// FLOW:
//  1. We redirect the user to GitHub's authorization endpoint
//  2. The user approves; GitHub redirects back with a short-lived code
//  3. We exchange the code for an access token (server-to-server, so the
//     ClientSecret and token never touch the browser)
//  4. We call GitHub's /user API for the profile and provision an account
type GitHubProvider struct {
	config *oauth2.Config
}

// NewGitHubProvider creates a GitHubProvider with the given credentials.
// callbackURL must exactly match the "Authorization callback URL" configured
// in the GitHub OAuth App settings.
func NewGitHubProvider(clientID, clientSecret, callbackURL string) *GitHubProvider {
	return &GitHubProvider{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  callbackURL,
			Scopes:       []string{"read:user", "user:email"},
			Endpoint:     github.Endpoint,
		},
	}
}

// AuthURL returns the URL to redirect the user to for authorization.
//
// The state is a random nonce stored in a cookie before redirecting; the
// callback verifies the returned state matches, which stops CSRF attempts to
// complete an OAuth flow on someone else's behalf.
func (p *GitHubProvider) AuthURL(state string) string {
	return p.config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Exchange completes the OAuth flow: trades the authorization code for a
// GitHub user profile.
func (p *GitHubProvider) Exchange(ctx context.Context, code string) (*GitHubUser, error) {
	oauthToken, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("auth: exchanging OAuth code: %w", err)
	}

	// oauth2.Config.Client returns an *http.Client that adds the
	// "Authorization: Bearer <token>" header to every request.
	client := p.config.Client(ctx, oauthToken)

	resp, err := client.Get("https://api.github.com/user")
	if err != nil {
		return nil, fmt.Errorf("auth: calling GitHub /user API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("auth: GitHub /user API returned status %d", resp.StatusCode)
	}

	var ghUser GitHubUser
	if err := json.NewDecoder(resp.Body).Decode(&ghUser); err != nil {
		return nil, fmt.Errorf("auth: decoding GitHub /user response: %w", err)
	}

	if ghUser.ID == 0 {
		return nil, fmt.Errorf("auth: GitHub returned an invalid user (ID = 0)")
	}

	return &ghUser, nil
}
