// Package config loads application settings from an optional YAML file with
// environment variable overrides.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultListen     = "127.0.0.1:8080"
	DefaultDBPath     = "teachmate.db"
	DefaultUploadDir  = "uploaded_files"
	DefaultSessionTTL = 24 * time.Hour
)

// OAuthProvider holds client credentials for one identity provider.
type OAuthProvider struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	TenantID     string `yaml:"tenant_id"` // Microsoft only
}

// Config is the full application configuration.
type Config struct {
	Listen       string        `yaml:"listen"`
	DatabasePath string        `yaml:"database_path"`
	UploadDir    string        `yaml:"upload_dir"`
	JWTSecret    string        `yaml:"jwt_secret"`
	SessionTTL   string        `yaml:"session_ttl"`
	Google       OAuthProvider `yaml:"google"`
	Microsoft    OAuthProvider `yaml:"microsoft"`

	// ClassroomBaseURL overrides the Google Classroom API endpoint.
	// Left empty in production; set by tests to point at a fake server.
	ClassroomBaseURL string `yaml:"classroom_base_url"`
	// GoogleTokenURL overrides the OAuth token refresh endpoint.
	GoogleTokenURL string `yaml:"google_token_url"`
}

// Load reads the YAML config at path (if it exists) and applies environment
// overrides. A missing file is not an error; defaults and env are enough to run.
func Load(path string) (*Config, error) {
	cfg := &Config{
		Listen:       DefaultListen,
		DatabasePath: DefaultDBPath,
		UploadDir:    DefaultUploadDir,
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	applyEnv(cfg)

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("jwt_secret is required (set TEACHMATE_JWT_SECRET or config file)")
	}
	return cfg, nil
}

// applyEnv overrides file values with environment variables when set.
func applyEnv(cfg *Config) {
	setIfEnv(&cfg.Listen, "TEACHMATE_LISTEN")
	setIfEnv(&cfg.DatabasePath, "TEACHMATE_DB_PATH")
	setIfEnv(&cfg.UploadDir, "TEACHMATE_UPLOAD_DIR")
	setIfEnv(&cfg.JWTSecret, "TEACHMATE_JWT_SECRET")
	setIfEnv(&cfg.SessionTTL, "TEACHMATE_SESSION_TTL")
	setIfEnv(&cfg.Google.ClientID, "GOOGLE_CLIENT_ID")
	setIfEnv(&cfg.Google.ClientSecret, "GOOGLE_CLIENT_SECRET")
	setIfEnv(&cfg.Microsoft.ClientID, "MICROSOFT_CLIENT_ID")
	setIfEnv(&cfg.Microsoft.ClientSecret, "MICROSOFT_CLIENT_SECRET")
	setIfEnv(&cfg.Microsoft.TenantID, "MICROSOFT_TENANT_ID")
	setIfEnv(&cfg.ClassroomBaseURL, "TEACHMATE_CLASSROOM_BASE_URL")
	setIfEnv(&cfg.GoogleTokenURL, "TEACHMATE_GOOGLE_TOKEN_URL")
}

func setIfEnv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// ParsedSessionTTL returns the session lifetime, falling back to the default
// when unset or malformed.
func (c *Config) ParsedSessionTTL() time.Duration {
	if c.SessionTTL == "" {
		return DefaultSessionTTL
	}
	d, err := time.ParseDuration(c.SessionTTL)
	if err != nil || d <= 0 {
		return DefaultSessionTTL
	}
	return d
}
