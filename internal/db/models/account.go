package models

import "time"

// Account stores OAuth tokens for one user and provider.
// The access token is only usable while ExpiresAt is in the future;
// past that it must be refreshed before any API call.
type Account struct {
	ID           string `gorm:"primaryKey"` // UUID
	UserID       string `gorm:"uniqueIndex:idx_user_provider"`
	Provider     string `gorm:"uniqueIndex:idx_user_provider"` // "google" | "microsoft"
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
