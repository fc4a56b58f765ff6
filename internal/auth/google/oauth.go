// Package google implements the Google OAuth login flow and stores the
// resulting Classroom-scoped tokens.
package google

import (
	"golang.org/x/oauth2"
	googleOAuth "golang.org/x/oauth2/google"

	"github.com/teachmate/teachmate/internal/config"
)

// Provider is the account/user provider discriminator for Google logins.
const Provider = "google"

// Scopes cover identity plus read-only access to everything the sync
// engine fetches from Classroom.
var Scopes = []string{
	"https://www.googleapis.com/auth/userinfo.email",
	"https://www.googleapis.com/auth/userinfo.profile",
	"https://www.googleapis.com/auth/classroom.courses.readonly",
	"https://www.googleapis.com/auth/classroom.announcements.readonly",
	"https://www.googleapis.com/auth/classroom.courseworkmaterials.readonly",
	"https://www.googleapis.com/auth/classroom.coursework.me.readonly",
}

// GetOAuthConfig returns the OAuth2 config for Google authentication.
func GetOAuthConfig(cfg *config.Config, redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     cfg.Google.ClientID,
		ClientSecret: cfg.Google.ClientSecret,
		RedirectURL:  redirectURL,
		Scopes:       Scopes,
		Endpoint:     googleOAuth.Endpoint,
	}
}
