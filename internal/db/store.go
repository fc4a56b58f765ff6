package db

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/teachmate/teachmate/internal/db/models"
)

// Store wraps the gorm handle with the persistence operations the rest of
// the application uses. Lookup methods return (nil, nil) when no row exists.
type Store struct {
	db *gorm.DB
}

// NewStore creates a Store on top of an initialized database.
func NewStore(gdb *gorm.DB) *Store {
	return &Store{db: gdb}
}

// DB exposes the underlying handle for callers that need raw access.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// ===== Users =====

// UserByID fetches a user by primary key.
func (s *Store) UserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UserBySubject finds a user by provider + provider-assigned subject id.
func (s *Store) UserBySubject(ctx context.Context, provider, subjectID string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, "provider = ? AND subject_id = ?", provider, subjectID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateUser inserts a new user with a fresh UUID.
func (s *Store) CreateUser(ctx context.Context, provider, subjectID, email, name string) (*models.User, error) {
	user := models.User{
		ID:        uuid.New().String(),
		Email:     email,
		Name:      name,
		Provider:  provider,
		SubjectID: subjectID,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// ===== Accounts (OAuth tokens) =====

// AccountByUser fetches the token row for a user and provider.
func (s *Store) AccountByUser(ctx context.Context, userID, provider string) (*models.Account, error) {
	var account models.Account
	err := s.db.WithContext(ctx).First(&account, "user_id = ? AND provider = ?", userID, provider).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// SaveAccount creates or updates a token row in place. A new row gets a UUID.
func (s *Store) SaveAccount(ctx context.Context, account *models.Account) error {
	if account.ID == "" {
		account.ID = uuid.New().String()
	}
	return s.db.WithContext(ctx).Save(account).Error
}

// ===== Courses =====

// CourseByExternalID finds the local mirror of a remote course.
func (s *Store) CourseByExternalID(ctx context.Context, externalID string) (*models.Course, error) {
	var course models.Course
	err := s.db.WithContext(ctx).First(&course, "external_id = ?", externalID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &course, nil
}

// CourseByID fetches a course by primary key.
func (s *Store) CourseByID(ctx context.Context, id uint) (*models.Course, error) {
	var course models.Course
	err := s.db.WithContext(ctx).First(&course, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &course, nil
}

// CreateCourse inserts a new local course mirroring a remote one.
func (s *Store) CreateCourse(ctx context.Context, userID, externalID, title string) (*models.Course, error) {
	course := models.Course{
		ExternalID: externalID,
		Title:      title,
		UserID:     userID,
	}
	if err := s.db.WithContext(ctx).Create(&course).Error; err != nil {
		return nil, err
	}
	return &course, nil
}

// UpdateCourseTitle re-applies the remote title to an existing course.
func (s *Store) UpdateCourseTitle(ctx context.Context, course *models.Course, title string) error {
	course.Title = title
	return s.db.WithContext(ctx).Model(course).Update("title", title).Error
}

// CoursesByUser lists all courses owned by a user.
func (s *Store) CoursesByUser(ctx context.Context, userID string) ([]models.Course, error) {
	var courses []models.Course
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Find(&courses).Error; err != nil {
		return nil, err
	}
	return courses, nil
}

// ===== Documents =====

// DocumentByExternalID looks up a document by its Classroom material id.
// This is the check behind the skip-if-exists sync policy.
func (s *Store) DocumentByExternalID(ctx context.Context, externalID string) (*models.Document, error) {
	var doc models.Document
	err := s.db.WithContext(ctx).First(&doc, "external_id = ?", externalID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// DocumentByID fetches a document by primary key.
func (s *Store) DocumentByID(ctx context.Context, id uint) (*models.Document, error) {
	var doc models.Document
	err := s.db.WithContext(ctx).First(&doc, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// CreateDocument inserts a new document row. Called only when the external
// id has not been seen before (or for manual uploads, which carry none).
func (s *Store) CreateDocument(ctx context.Context, doc *models.Document) error {
	return s.db.WithContext(ctx).Create(doc).Error
}

// DocumentsByCourse lists all documents in a course.
func (s *Store) DocumentsByCourse(ctx context.Context, courseID uint) ([]models.Document, error) {
	var docs []models.Document
	if err := s.db.WithContext(ctx).Where("course_id = ?", courseID).Find(&docs).Error; err != nil {
		return nil, err
	}
	return docs, nil
}

// ===== Posts & Comments =====

// CreatePost inserts a new discussion post.
func (s *Store) CreatePost(ctx context.Context, subject, content, userID string) (*models.Post, error) {
	post := models.Post{
		Subject:   subject,
		Content:   content,
		UserID:    userID,
		CreatedAt: time.Now(),
	}
	if err := s.db.WithContext(ctx).Create(&post).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

// PostsBySubject lists posts under a subject, newest first.
func (s *Store) PostsBySubject(ctx context.Context, subject string) ([]models.Post, error) {
	var posts []models.Post
	err := s.db.WithContext(ctx).
		Where("subject = ?", subject).
		Order("created_at DESC").
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// CommentsByPost lists comments on a post, oldest first.
func (s *Store) CommentsByPost(ctx context.Context, postID uint) ([]models.Comment, error) {
	var comments []models.Comment
	err := s.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("created_at ASC").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}

// AddComment attaches a comment to a post.
func (s *Store) AddComment(ctx context.Context, postID uint, userID, content string) (*models.Comment, error) {
	comment := models.Comment{
		PostID:  postID,
		UserID:  userID,
		Content: content,
	}
	if err := s.db.WithContext(ctx).Create(&comment).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

// EditComment updates a comment's content. Returns (nil, nil) when the
// comment does not exist or belongs to another user.
func (s *Store) EditComment(ctx context.Context, commentID uint, userID, content string) (*models.Comment, error) {
	var comment models.Comment
	err := s.db.WithContext(ctx).First(&comment, "id = ?", commentID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if comment.UserID != userID {
		return nil, nil
	}
	comment.Content = content
	if err := s.db.WithContext(ctx).Save(&comment).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

// DeleteComment removes a comment owned by userID. Returns false when the
// comment does not exist or belongs to another user.
func (s *Store) DeleteComment(ctx context.Context, commentID uint, userID string) (bool, error) {
	var comment models.Comment
	err := s.db.WithContext(ctx).First(&comment, "id = ?", commentID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if comment.UserID != userID {
		return false, nil
	}
	if err := s.db.WithContext(ctx).Delete(&comment).Error; err != nil {
		return false, err
	}
	return true, nil
}

// ===== Quizzes =====

// QuizzesByCourse lists quizzes with their questions.
func (s *Store) QuizzesByCourse(ctx context.Context, courseID uint) ([]models.Quiz, error) {
	var quizzes []models.Quiz
	err := s.db.WithContext(ctx).
		Preload("Questions").
		Where("course_id = ?", courseID).
		Find(&quizzes).Error
	if err != nil {
		return nil, err
	}
	return quizzes, nil
}

// CreateQuiz inserts a quiz and its questions in one transaction.
func (s *Store) CreateQuiz(ctx context.Context, quiz *models.Quiz) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(quiz).Error
	})
}
