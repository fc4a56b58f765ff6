package google

import (
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

// HandleCallback processes the OAuth callback from Google: it exchanges the
// authorization code, upserts the user and their token row, and issues a
// session token.
func HandleCallback(cfg *config.Config, store *db.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Verify state token
		state := r.URL.Query().Get("state")
		if state != GetStateToken() {
			http.Error(w, "Invalid state token", http.StatusBadRequest)
			return
		}

		code := r.URL.Query().Get("code")
		conf := GetOAuthConfig(cfg, redirectURL(r))

		token, err := conf.Exchange(r.Context(), code)
		if err != nil {
			http.Error(w, fmt.Sprintf("Token exchange failed: %v", err), http.StatusInternalServerError)
			return
		}

		// Fetch user info from Google
		client := conf.Client(r.Context(), token)
		resp, err := client.Get("https://www.googleapis.com/oauth2/v2/userinfo")
		if err != nil {
			http.Error(w, fmt.Sprintf("Failed to get user info: %v", err), http.StatusInternalServerError)
			return
		}
		defer resp.Body.Close()

		var userInfo struct {
			ID    string `json:"id"`
			Email string `json:"email"`
			Name  string `json:"name"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&userInfo); err != nil {
			http.Error(w, fmt.Sprintf("Failed to decode user info: %v", err), http.StatusInternalServerError)
			return
		}

		user, err := store.UserBySubject(r.Context(), Provider, userInfo.ID)
		if err == nil && user == nil {
			user, err = store.CreateUser(r.Context(), Provider, userInfo.ID, userInfo.Email, userInfo.Name)
		}
		if err != nil {
			http.Error(w, fmt.Sprintf("Failed to save user: %v", err), http.StatusInternalServerError)
			return
		}

		// Create or update the token row in place. A missing refresh token
		// (re-consent without offline access) keeps the previous one.
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

		log.Printf("✅ Google login for %s", userInfo.Email)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"access_token": sessionToken,
			"token_type":   "bearer",
			"message":      "Login successful",
		})
	}
}
