// Package token manages OAuth access token lifecycle, including on-demand
// refresh of expired tokens.
package token

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/teachmate/teachmate/internal/db"
	"github.com/teachmate/teachmate/internal/logging"
)

// ErrAuthRequired signals that no usable access token exists and the user
// must go through the login flow again. It is never retried internally.
var ErrAuthRequired = errors.New("authentication required: please log in again")

// Refresher exchanges a refresh token for a fresh access token.
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error)
}

// OAuthRefresher refreshes tokens against a provider's token endpoint using
// the standard refresh_token grant.
type OAuthRefresher struct {
	conf *oauth2.Config
}

// NewOAuthRefresher builds a refresher for the given client credentials.
// tokenURL overrides the endpoint; empty selects Google's production endpoint.
func NewOAuthRefresher(clientID, clientSecret, tokenURL string) *OAuthRefresher {
	if tokenURL == "" {
		tokenURL = "https://oauth2.googleapis.com/token"
	}
	return &OAuthRefresher{
		conf: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint: oauth2.Endpoint{
				TokenURL: tokenURL,
			},
		},
	}
}

// Refresh posts the refresh_token grant and returns the new token.
// The returned token's Expiry is computed from the response's expires_in.
func (r *OAuthRefresher) Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	src := r.conf.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	return src.Token()
}

// Manager hands out valid access tokens, refreshing expired ones in place.
type Manager struct {
	store     *db.Store
	refresher Refresher
	provider  string
}

// NewManager creates a token manager for one provider's accounts.
func NewManager(store *db.Store, refresher Refresher, provider string) *Manager {
	return &Manager{
		store:     store,
		refresher: refresher,
		provider:  provider,
	}
}

// ValidAccessToken returns an access token usable right now for userID.
//
// Fast path: a stored token whose expiry is still in the future is returned
// as-is, with no network call. Otherwise the stored refresh token is
// exchanged for a new access token, which is persisted before returning.
//
// ErrAuthRequired is returned when no token row or refresh token exists, or
// when the refresh attempt fails; stored state is never mutated on failure.
func (m *Manager) ValidAccessToken(ctx context.Context, userID string) (string, error) {
	account, err := m.store.AccountByUser(ctx, userID, m.provider)
	if err != nil {
		return "", err
	}
	if account == nil || account.RefreshToken == "" {
		logging.Printf(ctx, "❌ User %s has no %s account or refresh token", userID, m.provider)
		return "", ErrAuthRequired
	}

	if account.AccessToken != "" && account.ExpiresAt.After(time.Now()) {
		return account.AccessToken, nil
	}

	fresh, err := m.refresher.Refresh(ctx, account.RefreshToken)
	if err != nil {
		if isPermanentRefreshError(err) {
			logging.Printf(ctx, "🔒 Refresh token for user %s was revoked or invalidated: %v", userID, err)
		} else {
			logging.Printf(ctx, "⏳ Transient refresh failure for user %s: %v", userID, err)
		}
		return "", ErrAuthRequired
	}

	account.AccessToken = fresh.AccessToken
	account.ExpiresAt = fresh.Expiry
	if account.ExpiresAt.IsZero() {
		account.ExpiresAt = time.Now().Add(time.Hour)
	}
	// Persist rotated refresh token if provided (RFC 6749 compliance)
	if fresh.RefreshToken != "" && fresh.RefreshToken != account.RefreshToken {
		logging.Printf(ctx, "🔄 Rotating refresh token for user %s", userID)
		account.RefreshToken = fresh.RefreshToken
	}
	if err := m.store.SaveAccount(ctx, account); err != nil {
		return "", err
	}

	logging.Printf(ctx, "✅ Refreshed token for user %s (expires: %s)", userID, account.ExpiresAt.Format(time.RFC3339))
	return account.AccessToken, nil
}

func isPermanentRefreshError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	permanentMarkers := []string{
		"invalid_grant",
		"invalid_client",
		"unauthorized_client",
		"token has been expired or revoked",
		"revoked",
	}
	for _, marker := range permanentMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
