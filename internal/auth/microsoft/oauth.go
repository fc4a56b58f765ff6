// Package microsoft implements Microsoft (Azure AD) OAuth login. It only
// provides identity; Classroom sync is Google-only.
package microsoft

import (
	"golang.org/x/oauth2"
	microsoftOAuth "golang.org/x/oauth2/microsoft"

	"github.com/teachmate/teachmate/internal/config"
)

// Provider is the account/user provider discriminator for Microsoft logins.
const Provider = "microsoft"

var Scopes = []string{
	"openid",
	"profile",
	"email",
	"offline_access",
	"User.Read",
}

// GetOAuthConfig returns the OAuth2 config for Microsoft authentication.
func GetOAuthConfig(cfg *config.Config, redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     cfg.Microsoft.ClientID,
		ClientSecret: cfg.Microsoft.ClientSecret,
		RedirectURL:  redirectURL,
		Scopes:       Scopes,
		Endpoint:     microsoftOAuth.AzureADEndpoint(cfg.Microsoft.TenantID),
	}
}
