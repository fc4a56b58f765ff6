package google

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"

	"github.com/teachmate/teachmate/internal/config"
)

// stateToken is used to protect against CSRF attacks
var stateToken string

func init() {
	b := make([]byte, 16)
	rand.Read(b)
	stateToken = hex.EncodeToString(b)
}

// HandleLogin initiates the Google OAuth flow by redirecting to Google's
// consent page. AccessTypeOffline + ApprovalForce make sure Google returns
// a refresh token, which the sync engine depends on.
func HandleLogin(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conf := GetOAuthConfig(cfg, redirectURL(r))
		url := conf.AuthCodeURL(stateToken, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
		http.Redirect(w, r, url, http.StatusTemporaryRedirect)
	}
}

// GetStateToken returns the current CSRF state token for validation.
func GetStateToken() string {
	return stateToken
}

// redirectURL reconstructs the callback URL from the incoming request so the
// flow works behind proxies and on any host/port.
func redirectURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/auth/google/callback", scheme, r.Host)
}
