package sync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/teachmate/teachmate/internal/auth/token"
	"github.com/teachmate/teachmate/internal/classroom"
	"github.com/teachmate/teachmate/internal/db"
	"github.com/teachmate/teachmate/internal/db/models"
)

func newTestStore(t *testing.T) *db.Store {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	if err := gdb.AutoMigrate(&models.Course{}, &models.Document{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db.NewStore(gdb)
}

// staticTokens is a TokenSource handing out one fixed token.
type staticTokens struct {
	token string
	err   error
}

func (s staticTokens) ValidAccessToken(ctx context.Context, userID string) (string, error) {
	return s.token, s.err
}

// remoteData is the dataset a fake Classroom server serves.
type remoteData struct {
	courses       []map[string]any
	materials     map[string][]map[string]any
	announcements map[string][]map[string]any
	coursework    map[string][]map[string]any
}

func newFakeClassroom(t *testing.T, data *remoteData) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/courses" {
			json.NewEncoder(w).Encode(map[string]any{"courses": data.courses})
			return
		}
		parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/courses/"), "/")
		if len(parts) != 2 {
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
			return
		}
		courseID, kind := parts[0], parts[1]
		switch kind {
		case "courseWorkMaterials":
			json.NewEncoder(w).Encode(map[string]any{"courseWorkMaterial": data.materials[courseID]})
		case "announcements":
			json.NewEncoder(w).Encode(map[string]any{"announcements": data.announcements[courseID]})
		case "courseWork":
			json.NewEncoder(w).Encode(map[string]any{"courseWork": data.coursework[courseID]})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func newTestEngine(t *testing.T, store *db.Store, baseURL string) *Engine {
	t.Helper()
	return NewEngine(store, staticTokens{token: "tok"}, classroom.NewClient(baseURL))
}

func TestFullSync_EndToEnd(t *testing.T) {
	store := newTestStore(t)
	srv := newFakeClassroom(t, &remoteData{
		courses: []map[string]any{{"id": "ext-1", "name": "Biology"}},
		announcements: map[string][]map[string]any{
			"ext-1": {{"id": "a1", "text": "Welcome to class"}},
		},
	})
	defer srv.Close()

	engine := newTestEngine(t, store, srv.URL)
	summary, err := engine.FullSync(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if summary.Courses.New != 1 || summary.Courses.Updated != 0 {
		t.Fatalf("expected 1 new course, got %+v", summary.Courses)
	}
	if summary.Documents.AnnouncementsAdded != 1 || summary.Documents.TotalNew != 1 || summary.Documents.Skipped != 0 {
		t.Fatalf("unexpected document summary %+v", summary.Documents)
	}

	course, err := store.CourseByExternalID(context.Background(), "ext-1")
	if err != nil || course == nil {
		t.Fatalf("course not created: %v", err)
	}
	if course.Title != "Biology" || course.UserID != "user-1" {
		t.Fatalf("unexpected course %+v", course)
	}

	doc, err := store.DocumentByExternalID(context.Background(), "a1")
	if err != nil || doc == nil {
		t.Fatalf("document not created: %v", err)
	}
	if doc.Kind != models.DocAnnouncement {
		t.Fatalf("expected kind announcement, got %q", doc.Kind)
	}
	if doc.RawText != "Welcome to class" || doc.Title != "Welcome to class" {
		t.Fatalf("unexpected document %+v", doc)
	}
	if doc.CourseID != course.ID {
		t.Fatalf("document bound to course %d, want %d", doc.CourseID, course.ID)
	}
}

func TestFullSync_Idempotent(t *testing.T) {
	store := newTestStore(t)
	srv := newFakeClassroom(t, &remoteData{
		courses: []map[string]any{{"id": "ext-1", "name": "Biology"}},
		materials: map[string][]map[string]any{
			"ext-1": {
				{"id": "m1", "title": "Syllabus", "description": "Course outline"},
				{"id": "m2", "title": "Slides week 1"},
			},
		},
		announcements: map[string][]map[string]any{
			"ext-1": {{"id": "a1", "text": "Welcome to class"}},
		},
		coursework: map[string][]map[string]any{
			"ext-1": {{"id": "w1", "title": "Essay", "materials": []map[string]any{
				{"driveFile": map[string]any{"driveFile": map[string]any{"alternateLink": "https://drive/w1"}}},
			}}},
		},
	})
	defer srv.Close()

	engine := newTestEngine(t, store, srv.URL)

	first, err := engine.FullSync(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("first sync: %v", err)
	}
	if first.Documents.TotalNew != 4 || first.Documents.Skipped != 0 {
		t.Fatalf("first sync should create 4 documents, got %+v", first.Documents)
	}

	second, err := engine.FullSync(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("second sync: %v", err)
	}
	if second.Documents.TotalNew != 0 {
		t.Fatalf("second sync must create nothing, got %+v", second.Documents)
	}
	if second.Documents.Skipped != first.Documents.TotalNew {
		t.Fatalf("second sync should skip %d items, skipped %d", first.Documents.TotalNew, second.Documents.Skipped)
	}

	var count int64
	store.DB().Model(&models.Document{}).Count(&count)
	if count != 4 {
		t.Fatalf("expected 4 document rows after double sync, got %d", count)
	}
}

func TestSyncCourses_TitleUpdate(t *testing.T) {
	store := newTestStore(t)
	data := &remoteData{courses: []map[string]any{{"id": "C1", "name": "Old"}}}
	srv := newFakeClassroom(t, data)
	defer srv.Close()

	engine := newTestEngine(t, store, srv.URL)

	if _, err := engine.SyncCourses(context.Background(), "user-1"); err != nil {
		t.Fatalf("first sync: %v", err)
	}

	data.courses = []map[string]any{{"id": "C1", "name": "New"}}
	summary, err := engine.SyncCourses(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("second sync: %v", err)
	}
	if summary.New != 0 || summary.Updated != 1 {
		t.Fatalf("expected pure update, got %+v", summary)
	}

	var count int64
	store.DB().Model(&models.Course{}).Where("external_id = ?", "C1").Count(&count)
	if count != 1 {
		t.Fatalf("expected exactly one course row, got %d", count)
	}
	course, _ := store.CourseByExternalID(context.Background(), "C1")
	if course.Title != "New" {
		t.Fatalf("title not updated, got %q", course.Title)
	}
}

func TestFullSync_SkipsItemsWithoutExternalID(t *testing.T) {
	store := newTestStore(t)
	srv := newFakeClassroom(t, &remoteData{
		courses: []map[string]any{{"id": "ext-1", "name": "Biology"}},
		materials: map[string][]map[string]any{
			"ext-1": {{"title": "No id, no dedup key"}},
		},
	})
	defer srv.Close()

	engine := newTestEngine(t, store, srv.URL)
	summary, err := engine.FullSync(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Documents.TotalNew != 0 || summary.Documents.Skipped != 0 {
		t.Fatalf("unprocessable item must not be counted, got %+v", summary.Documents)
	}

	var count int64
	store.DB().Model(&models.Document{}).Count(&count)
	if count != 0 {
		t.Fatalf("expected no document rows, got %d", count)
	}
}

func TestFullSync_AuthRequired(t *testing.T) {
	store := newTestStore(t)
	engine := NewEngine(store, staticTokens{err: token.ErrAuthRequired}, classroom.NewClient(""))

	_, err := engine.FullSync(context.Background(), "user-1")
	if !errors.Is(err, token.ErrAuthRequired) {
		t.Fatalf("expected ErrAuthRequired, got %v", err)
	}
}

func TestFullSync_UnauthorizedRemoteMapsToAuthRequired(t *testing.T) {
	store := newTestStore(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	engine := newTestEngine(t, store, srv.URL)
	_, err := engine.FullSync(context.Background(), "user-1")
	if !errors.Is(err, token.ErrAuthRequired) {
		t.Fatalf("expected ErrAuthRequired on remote 401, got %v", err)
	}
}

func TestFullSync_BrokenCategoryDoesNotSinkRun(t *testing.T) {
	store := newTestStore(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/courses":
			json.NewEncoder(w).Encode(map[string]any{
				"courses": []map[string]any{{"id": "ext-1", "name": "Biology"}},
			})
		case strings.HasSuffix(r.URL.Path, "/courseWorkMaterials"):
			w.WriteHeader(http.StatusInternalServerError)
		case strings.HasSuffix(r.URL.Path, "/announcements"):
			json.NewEncoder(w).Encode(map[string]any{
				"announcements": []map[string]any{{"id": "a1", "text": "Still here"}},
			})
		case strings.HasSuffix(r.URL.Path, "/courseWork"):
			json.NewEncoder(w).Encode(map[string]any{})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	engine := newTestEngine(t, store, srv.URL)
	summary, err := engine.FullSync(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("a failing category must not abort the run: %v", err)
	}
	if summary.Documents.AnnouncementsAdded != 1 {
		t.Fatalf("expected the healthy category to sync, got %+v", summary.Documents)
	}
}

func TestSync_LockConflict(t *testing.T) {
	store := newTestStore(t)
	engine := newTestEngine(t, store, "")

	if !engine.locks.tryAcquire("user-1") {
		t.Fatal("setup: could not acquire lock")
	}
	defer engine.locks.release("user-1")

	if _, err := engine.SyncCourses(context.Background(), "user-1"); !errors.Is(err, ErrSyncInProgress) {
		t.Fatalf("expected ErrSyncInProgress, got %v", err)
	}
	if _, err := engine.FullSync(context.Background(), "user-1"); !errors.Is(err, ErrSyncInProgress) {
		t.Fatalf("expected ErrSyncInProgress, got %v", err)
	}
}
