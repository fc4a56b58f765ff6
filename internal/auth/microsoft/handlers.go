package microsoft

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/teachmate/teachmate/internal/auth/session"
	"github.com/teachmate/teachmate/internal/config"
	"github.com/teachmate/teachmate/internal/db"
	"github.com/teachmate/teachmate/internal/db/models"
)

// stateToken is used to protect against CSRF attacks
var stateToken string

func init() {
	b := make([]byte, 16)
	rand.Read(b)
	stateToken = hex.EncodeToString(b)
}

// HandleLogin redirects to the Microsoft consent page.
func HandleLogin(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conf := GetOAuthConfig(cfg, redirectURL(r))
		http.Redirect(w, r, conf.AuthCodeURL(stateToken), http.StatusTemporaryRedirect)
	}
}

// HandleCallback exchanges the authorization code, upserts the user and
// token row, and issues a session token.
func HandleCallback(cfg *config.Config, store *db.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("state") != stateToken {
			http.Error(w, "Invalid state token", http.StatusBadRequest)
			return
		}

		conf := GetOAuthConfig(cfg, redirectURL(r))
		token, err := conf.Exchange(r.Context(), r.URL.Query().Get("code"))
		if err != nil {
			http.Error(w, fmt.Sprintf("Token exchange failed: %v", err), http.StatusInternalServerError)
			return
		}

		// Fetch user profile from Microsoft Graph
		client := conf.Client(r.Context(), token)
		resp, err := client.Get("https://graph.microsoft.com/v1.0/me")
		if err != nil {
			http.Error(w, fmt.Sprintf("Failed to get user info: %v", err), http.StatusInternalServerError)
			return
		}
		defer resp.Body.Close()

		var profile struct {
			ID                string `json:"id"`
			DisplayName       string `json:"displayName"`
			Mail              string `json:"mail"`
			UserPrincipalName string `json:"userPrincipalName"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
			http.Error(w, fmt.Sprintf("Failed to decode user info: %v", err), http.StatusInternalServerError)
			return
		}
		email := profile.Mail
		if email == "" {
			email = profile.UserPrincipalName
		}

		user, err := store.UserBySubject(r.Context(), Provider, profile.ID)
		if err == nil && user == nil {
			user, err = store.CreateUser(r.Context(), Provider, profile.ID, email, profile.DisplayName)
		}
		if err != nil {
			http.Error(w, fmt.Sprintf("Failed to save user: %v", err), http.StatusInternalServerError)
			return
		}

		account, err := store.AccountByUser(r.Context(), user.ID, Provider)
		if err != nil {
			http.Error(w, fmt.Sprintf("Failed to load account: %v", err), http.StatusInternalServerError)
			return
		}
		if account == nil {
			account = &models.Account{UserID: user.ID, Provider: Provider}
		}
		account.AccessToken = token.AccessToken
		account.ExpiresAt = token.Expiry
		if token.RefreshToken != "" {
			account.RefreshToken = token.RefreshToken
		}
		if err := store.SaveAccount(r.Context(), account); err != nil {
			http.Error(w, fmt.Sprintf("Failed to save account: %v", err), http.StatusInternalServerError)
			return
		}

		sessionToken, err := session.Issue(cfg.JWTSecret, user.ID, cfg.ParsedSessionTTL())
		if err != nil {
			http.Error(w, fmt.Sprintf("Failed to issue session: %v", err), http.StatusInternalServerError)
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     session.CookieName,
			Value:    sessionToken,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
			Expires:  time.Now().Add(cfg.ParsedSessionTTL()),
		})

		log.Printf("✅ Microsoft login for %s", email)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"access_token": sessionToken,
			"token_type":   "bearer",
			"message":      "Login successful",
		})
	}
}

func redirectURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/auth/microsoft/callback", scheme, r.Host)
}
