package handlers

import (
	"net/http"

	"github.com/teachmate/teachmate/internal/api/middleware"
	"github.com/teachmate/teachmate/internal/db"
)

// ListCoursesHandler returns the authenticated user's courses.
func ListCoursesHandler(store *db.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r.Context())

		courses, err := store.CoursesByUser(r.Context(), userID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}

		out := make([]map[string]any, 0, len(courses))
		for _, c := range courses {
			out = append(out, map[string]any{
				"id":          c.ID,
				"external_id": c.ExternalID,
				"title":       c.Title,
				"created_at":  c.CreatedAt,
			})
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"count":   len(out),
			"courses": out,
		})
	}
}
