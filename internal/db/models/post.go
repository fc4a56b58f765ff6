package models

import "time"

// Post is a discussion entry under a subject.
type Post struct {
	ID        uint   `gorm:"primaryKey"`
	Subject   string `gorm:"index"`
	Content   string
	UserID    string `gorm:"index"`
	CreatedAt time.Time
}

// Comment is a reply on a post. Only the author may edit or delete it.
type Comment struct {
	ID        uint `gorm:"primaryKey"`
	PostID    uint `gorm:"index;not null"`
	UserID    string
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
