package models

import "time"

// Course mirrors a Google Classroom course. ExternalID is the remote
// provider's stable course id; exactly one local row exists per external id.
// Title is re-applied on every sync, everything else is set once.
type Course struct {
	ID         uint   `gorm:"primaryKey"`
	ExternalID string `gorm:"uniqueIndex"`
	Title      string `gorm:"not null"`
	UserID     string `gorm:"index"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
