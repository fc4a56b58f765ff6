package models

import "time"

// User is a signed-in person. Identity comes from an OAuth provider
// (Google or Microsoft); there is no local password.
type User struct {
	ID        string `gorm:"primaryKey"` // UUID
	Email     string `gorm:"uniqueIndex"`
	Name      string
	Provider  string `gorm:"index:idx_provider_subject"` // "google" | "microsoft"
	SubjectID string `gorm:"index:idx_provider_subject"` // provider-assigned user id
	Role      string `gorm:"default:student"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
