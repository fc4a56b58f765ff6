package models

import "time"

// Quiz groups questions under a course.
type Quiz struct {
	ID        uint `gorm:"primaryKey"`
	CourseID  uint `gorm:"index;not null"`
	CreatedBy string
	CreatedAt time.Time

	Questions []QuizQuestion `gorm:"foreignKey:QuizID"`
}

// QuizQuestion is a single question. Options is a JSON-encoded array for
// multiple-choice questions and empty otherwise.
type QuizQuestion struct {
	ID            uint `gorm:"primaryKey"`
	QuizID        uint `gorm:"index;not null"`
	Question      string
	Type          string // "mcq" | "short_answer" | "true_false"
	Options       string
	CorrectAnswer string
}
