package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/teachmate/teachmate/internal/api/middleware"
	"github.com/teachmate/teachmate/internal/db"
	"github.com/teachmate/teachmate/internal/db/models"
)

// ListQuizzesHandler returns the quizzes of a course with their questions.
func ListQuizzesHandler(store *db.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		courseID, err := strconv.ParseUint(chi.URLParam(r, "courseID"), 10, 32)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid course id")
			return
		}

		course, err := store.CourseByID(r.Context(), uint(courseID))
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if course == nil {
			writeError(w, http.StatusNotFound, "Course not found")
			return
		}

		quizzes, err := store.QuizzesByCourse(r.Context(), course.ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}

		out := make([]map[string]any, 0, len(quizzes))
		for _, q := range quizzes {
			questions := make([]map[string]any, 0, len(q.Questions))
			for _, question := range q.Questions {
				var options []string
				if question.Options != "" {
					json.Unmarshal([]byte(question.Options), &options)
				}
				questions = append(questions, map[string]any{
					"id":             question.ID,
					"question":       question.Question,
					"type":           question.Type,
					"options":        options,
					"correct_answer": question.CorrectAnswer,
				})
			}
			out = append(out, map[string]any{
				"id":         q.ID,
				"course_id":  q.CourseID,
				"created_by": q.CreatedBy,
				"created_at": q.CreatedAt,
				"questions":  questions,
			})
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"count":   len(out),
			"quizzes": out,
		})
	}
}

// quizCreateRequest is the POST body for quiz creation.
type quizCreateRequest struct {
	Questions []struct {
		Question      string   `json:"question"`
		Type          string   `json:"type"`
		Options       []string `json:"options"`
		CorrectAnswer string   `json:"correct_answer"`
	} `json:"questions"`
}

// CreateQuizHandler creates a quiz with its questions under a course.
func CreateQuizHandler(store *db.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserID(r.Context())
		courseID, err := strconv.ParseUint(chi.URLParam(r, "courseID"), 10, 32)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid course id")
			return
		}

		course, err := store.CourseByID(r.Context(), uint(courseID))
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if course == nil {
			writeError(w, http.StatusNotFound, "Course not found")
			return
		}

		var body quizCreateRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || len(body.Questions) == 0 {
			writeError(w, http.StatusBadRequest, "at least one question is required")
			return
		}

		quiz := &models.Quiz{
			CourseID:  course.ID,
			CreatedBy: userID,
		}
		for _, q := range body.Questions {
			options := ""
			if len(q.Options) > 0 {
				raw, _ := json.Marshal(q.Options)
				options = string(raw)
			}
			quiz.Questions = append(quiz.Questions, models.QuizQuestion{
				Question:      q.Question,
				Type:          q.Type,
				Options:       options,
				CorrectAnswer: q.CorrectAnswer,
			})
		}

		if err := store.CreateQuiz(r.Context(), quiz); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}

		writeJSON(w, http.StatusCreated, map[string]any{
			"message": "Quiz created successfully",
			"id":      quiz.ID,
		})
	}
}
