package models

import "time"

// Document content kinds.
const (
	DocMaterial     = "material"
	DocAnnouncement = "announcement"
	DocCoursework   = "coursework"
	DocManualUpload = "manual_upload"
)

// Document is one synced or uploaded content item.
//
// ExternalID is the Classroom material id. It is nil for manual uploads and
// unique otherwise: at most one row may exist per external id. That unique
// key is the idempotency contract the sync engine relies on; a document is
// created once on first encounter and never updated afterwards.
type Document struct {
	ID          uint    `gorm:"primaryKey"`
	CourseID    uint    `gorm:"index;not null"`
	ExternalID  *string `gorm:"uniqueIndex"`
	Title       string
	Kind        string // material | announcement | coursework | manual_upload
	ResourceURL string // Drive/link/YouTube URL when the item carries one
	RawText     string // announcement body or assignment description
	FilePath    string // local path, manual uploads only
	CreatedAt   time.Time
}
