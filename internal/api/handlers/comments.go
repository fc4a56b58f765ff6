package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/teachmate/teachmate/internal/api/middleware"
	"github.com/teachmate/teachmate/internal/db"
)

// ListCommentsHandler lists all comments on a post.
func ListCommentsHandler(store *db.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		postID, err := strconv.ParseUint(chi.URLParam(r, "postID"), 10, 32)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid post id")
			return
		}

		comments, err := store.CommentsByPost(r.Context(), uint(postID))
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}

		out := make([]map[string]any, 0, len(comments))
		for _, c := range comments {
			out = append(out, map[string]any{
				"id":         c.ID,
				"content":    c.Content,
				"user_id":    c.UserID,
				"created_at": c.CreatedAt,
			})
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"count":    len(out),
			"comments": out,
		})
	}
}

// AddCommentHandler attaches a comment to a post.
func AddCommentHandler(store *db.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r.Context())
		postID, err := strconv.ParseUint(chi.URLParam(r, "postID"), 10, 32)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid post id")
			return
		}

		var body struct {
			Content string `json:"content"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Content == "" {
			writeError(w, http.StatusBadRequest, "content is required")
			return
		}

		comment, err := store.AddComment(r.Context(), uint(postID), userID, body.Content)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}

		writeJSON(w, http.StatusCreated, map[string]any{
			"message":    "Comment added!",
			"comment_id": comment.ID,
			"post_id":    comment.PostID,
			"created_at": comment.CreatedAt,
		})
	}
}

// EditCommentHandler updates a comment. Only the author may edit.
func EditCommentHandler(store *db.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r.Context())
		commentID, err := strconv.ParseUint(chi.URLParam(r, "commentID"), 10, 32)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid comment id")
			return
		}

		var body struct {
			Content string `json:"content"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Content == "" {
			writeError(w, http.StatusBadRequest, "content is required")
			return
		}

		comment, err := store.EditComment(r.Context(), uint(commentID), userID, body.Content)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if comment == nil {
			writeError(w, http.StatusNotFound, "Comment not found or you don't have permission to edit it")
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"message":    "Comment edited!",
			"comment_id": comment.ID,
			"content":    comment.Content,
		})
	}
}

// DeleteCommentHandler removes a comment. Only the author may delete.
func DeleteCommentHandler(store *db.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r.Context())
		commentID, err := strconv.ParseUint(chi.URLParam(r, "commentID"), 10, 32)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid comment id")
			return
		}

		deleted, err := store.DeleteComment(r.Context(), uint(commentID), userID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if !deleted {
			writeError(w, http.StatusNotFound, "Comment not found or you don't have permission to delete it")
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"message":    "Comment deleted!",
			"comment_id": commentID,
		})
	}
}
