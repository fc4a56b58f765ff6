package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/teachmate/teachmate/internal/api/middleware"
	"github.com/teachmate/teachmate/internal/db"
)

// CreatePostHandler adds a discussion post under a subject.
func CreatePostHandler(store *db.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r.Context())
		subject := chi.URLParam(r, "subject")

		var body struct {
			Content string `json:"content"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Content == "" {
			writeError(w, http.StatusBadRequest, "content is required")
			return
		}

		post, err := store.CreatePost(r.Context(), subject, body.Content, userID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}

		writeJSON(w, http.StatusCreated, map[string]any{
			"message": "Post created successfully",
			"id":      post.ID,
		})
	}
}

// ListPostsHandler lists posts under a subject.
func ListPostsHandler(store *db.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		subject := chi.URLParam(r, "subject")

		posts, err := store.PostsBySubject(r.Context(), subject)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}

		out := make([]map[string]any, 0, len(posts))
		for _, p := range posts {
			out = append(out, map[string]any{
				"id":         p.ID,
				"subject":    p.Subject,
				"content":    p.Content,
				"user_id":    p.UserID,
				"created_at": p.CreatedAt,
			})
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"count": len(out),
			"posts": out,
		})
	}
}
