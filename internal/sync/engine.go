// Package sync mirrors a user's Google Classroom content into the local
// store. Course sync is upsert-by-external-id; content sync is
// skip-if-exists, so re-running against unchanged remote state is a no-op.
package sync

import (
	"context"
	"errors"
	"fmt"

	"github.com/teachmate/teachmate/internal/auth/token"
	"github.com/teachmate/teachmate/internal/classroom"
	"github.com/teachmate/teachmate/internal/db"
	"github.com/teachmate/teachmate/internal/db/models"
	"github.com/teachmate/teachmate/internal/logging"
	"github.com/teachmate/teachmate/internal/util"
)

// TokenSource yields a currently-valid access token for a user.
type TokenSource interface {
	ValidAccessToken(ctx context.Context, userID string) (string, error)
}

// Remote is the slice of the Classroom API the engine needs.
type Remote interface {
	ListCourses(ctx context.Context, accessToken string) ([]classroom.Course, error)
	ListMaterials(ctx context.Context, accessToken, courseID string) ([]classroom.Item, error)
	ListAnnouncements(ctx context.Context, accessToken, courseID string) ([]classroom.Item, error)
	ListCoursework(ctx context.Context, accessToken, courseID string) ([]classroom.Item, error)
}

// CourseSummary counts the outcome of a course sync.
type CourseSummary struct {
	New     int `json:"new"`
	Updated int `json:"updated"`
	Total   int `json:"total"`
}

// DocumentSummary counts the outcome of a content sync across all courses.
type DocumentSummary struct {
	MaterialsAdded     int `json:"materials_added"`
	AnnouncementsAdded int `json:"announcements_added"`
	CourseworkAdded    int `json:"coursework_added"`
	TotalNew           int `json:"total_new"`
	Skipped            int `json:"skipped_already_exist"`
}

// Summary is the full-sync result.
type Summary struct {
	Courses   CourseSummary   `json:"courses"`
	Documents DocumentSummary `json:"documents"`
}

// Engine orchestrates token checks, remote fetches and idempotent upserts.
type Engine struct {
	store  *db.Store
	tokens TokenSource
	remote Remote
	locks  *userLocks
}

// NewEngine wires a sync engine.
func NewEngine(store *db.Store, tokens TokenSource, remote Remote) *Engine {
	return &Engine{
		store:  store,
		tokens: tokens,
		remote: remote,
		locks:  newUserLocks(),
	}
}

// SyncCourses mirrors the user's remote course list.
//
// Each remote course is upserted by external id: unseen ids create a local
// course owned by userID, known ids get their title re-applied. An empty
// remote list is a valid zero-sync outcome, not an error. Any persistence
// failure aborts the call; the upsert is idempotent, so a full retry is safe.
func (e *Engine) SyncCourses(ctx context.Context, userID string) (CourseSummary, error) {
	if !e.locks.tryAcquire(userID) {
		return CourseSummary{}, ErrSyncInProgress
	}
	defer e.locks.release(userID)

	accessToken, err := e.tokens.ValidAccessToken(ctx, userID)
	if err != nil {
		return CourseSummary{}, err
	}
	return e.syncCourses(ctx, userID, accessToken)
}

func (e *Engine) syncCourses(ctx context.Context, userID, accessToken string) (CourseSummary, error) {
	courses, err := e.remote.ListCourses(ctx, accessToken)
	if err != nil {
		if errors.Is(err, classroom.ErrUnauthorized) {
			return CourseSummary{}, token.ErrAuthRequired
		}
		// Transient remote trouble: nothing fetched, nothing synced.
		logging.Printf(ctx, "⚠️ Course fetch failed for user %s: %v", userID, err)
		return CourseSummary{}, nil
	}

	var summary CourseSummary
	for _, remote := range courses {
		if remote.ID == "" {
			continue
		}
		title := remote.Name
		if title == "" {
			title = "Untitled Course"
		}

		existing, err := e.store.CourseByExternalID(ctx, remote.ID)
		if err != nil {
			return summary, fmt.Errorf("look up course %s: %w", remote.ID, err)
		}
		if existing != nil {
			if err := e.store.UpdateCourseTitle(ctx, existing, title); err != nil {
				return summary, fmt.Errorf("update course %s: %w", remote.ID, err)
			}
			summary.Updated++
		} else {
			if _, err := e.store.CreateCourse(ctx, userID, remote.ID, title); err != nil {
				return summary, fmt.Errorf("create course %s: %w", remote.ID, err)
			}
			summary.New++
		}
	}
	summary.Total = len(courses)
	logging.Printf(ctx, "✅ Synced courses for user %s: %d new, %d updated", userID, summary.New, summary.Updated)
	return summary, nil
}

// FullSync runs a course sync, then walks every remote course and mirrors
// its materials, announcements and coursework with skip-if-exists semantics.
//
// Items without an external id cannot be deduplicated and are skipped.
// Items whose external id is already stored are counted as skipped and left
// untouched. Running FullSync twice against unchanged remote state therefore
// creates zero new documents the second time.
func (e *Engine) FullSync(ctx context.Context, userID string) (Summary, error) {
	if !e.locks.tryAcquire(userID) {
		return Summary{}, ErrSyncInProgress
	}
	defer e.locks.release(userID)

	accessToken, err := e.tokens.ValidAccessToken(ctx, userID)
	if err != nil {
		return Summary{}, err
	}

	var summary Summary
	summary.Courses, err = e.syncCourses(ctx, userID, accessToken)
	if err != nil {
		return summary, err
	}

	courses, err := e.store.CoursesByUser(ctx, userID)
	if err != nil {
		return summary, fmt.Errorf("list local courses: %w", err)
	}

	for _, course := range courses {
		if err := e.syncCourseContent(ctx, accessToken, course, &summary.Documents); err != nil {
			return summary, err
		}
	}

	logging.Printf(ctx, "✅ Full sync for user %s: %d new documents, %d skipped",
		userID, summary.Documents.TotalNew, summary.Documents.Skipped)
	return summary, nil
}

// category binds one content endpoint to its document kind and counter.
type category struct {
	kind  string
	fetch func(ctx context.Context, accessToken, courseID string) ([]classroom.Item, error)
	count *int
}

func (e *Engine) syncCourseContent(ctx context.Context, accessToken string, course models.Course, docs *DocumentSummary) error {
	categories := []category{
		{models.DocMaterial, e.remote.ListMaterials, &docs.MaterialsAdded},
		{models.DocAnnouncement, e.remote.ListAnnouncements, &docs.AnnouncementsAdded},
		{models.DocCoursework, e.remote.ListCoursework, &docs.CourseworkAdded},
	}

	for _, cat := range categories {
		items, err := cat.fetch(ctx, accessToken, course.ExternalID)
		if err != nil {
			if errors.Is(err, classroom.ErrUnauthorized) {
				return token.ErrAuthRequired
			}
			// One broken category must not sink the run; documents already
			// created stay committed and the next sync picks up the rest.
			logging.Printf(ctx, "⚠️ Skipping %s sync for course %s: %v", cat.kind, course.ExternalID, err)
			continue
		}

		for _, item := range items {
			created, err := e.upsertDocument(ctx, course.ID, cat.kind, item, docs)
			if err != nil {
				return err
			}
			if created {
				*cat.count++
				docs.TotalNew++
			}
		}
	}
	return nil
}

// upsertDocument applies skip-if-exists for one remote item. Returns whether
// a new document row was created.
func (e *Engine) upsertDocument(ctx context.Context, courseID uint, kind string, item classroom.Item, docs *DocumentSummary) (bool, error) {
	if item.ID == "" {
		// No external id means no dedup key; the item is unprocessable.
		return false, nil
	}

	existing, err := e.store.DocumentByExternalID(ctx, item.ID)
	if err != nil {
		return false, fmt.Errorf("look up document %s: %w", item.ID, err)
	}
	if existing != nil {
		docs.Skipped++
		return false, nil
	}

	title := item.Title
	rawText := item.Description
	if kind == models.DocAnnouncement {
		rawText = item.Text
		if title == "" {
			title = util.DeriveTitle(item.Text, util.TitleMaxLen)
		}
	}
	if title == "" {
		title = "Untitled"
	}

	externalID := item.ID
	doc := &models.Document{
		CourseID:    courseID,
		ExternalID:  &externalID,
		Title:       title,
		Kind:        kind,
		ResourceURL: classroom.ExtractResourceURL(item.Materials),
		RawText:     rawText,
	}
	if err := e.store.CreateDocument(ctx, doc); err != nil {
		return false, fmt.Errorf("create document %s: %w", item.ID, err)
	}
	return true, nil
}
