package handlers

import (
	"errors"
	"net/http"

	"github.com/teachmate/teachmate/internal/api/middleware"
	"github.com/teachmate/teachmate/internal/auth/token"
	syncengine "github.com/teachmate/teachmate/internal/sync"
)

// SyncCoursesHandler mirrors the user's Google Classroom course list.
func SyncCoursesHandler(engine *syncengine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r.Context())

		summary, err := engine.SyncCourses(r.Context(), userID)
		if err != nil {
			writeSyncError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"success":         true,
			"message":         "Courses synced successfully",
			"new_courses":     summary.New,
			"updated_courses": summary.Updated,
			"total_courses":   summary.Total,
		})
	}
}

// FullSyncHandler mirrors courses plus materials, announcements and
// coursework for every course.
func FullSyncHandler(engine *syncengine.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r.Context())

		summary, err := engine.FullSync(r.Context(), userID)
		if err != nil {
			writeSyncError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"summary": summary,
		})
	}
}

func writeSyncError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, token.ErrAuthRequired):
		writeError(w, http.StatusUnauthorized, "Could not get valid access token. Please login again.")
	case errors.Is(err, syncengine.ErrSyncInProgress):
		writeError(w, http.StatusConflict, "A sync is already running for this user.")
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
