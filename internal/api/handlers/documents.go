package handlers

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/teachmate/teachmate/internal/db"
	"github.com/teachmate/teachmate/internal/db/models"
)

const maxUploadSize = 32 << 20 // 32 MiB

// UploadDocumentHandler accepts a manually uploaded PDF for a course and
// records it as a manual_upload document. Manual uploads carry no external
// id, so they never collide with synced content.
func UploadDocumentHandler(store *db.Store, uploadDir string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(maxUploadSize); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid multipart form")
			return
		}

		courseID, err := strconv.ParseUint(r.FormValue("course_id"), 10, 32)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid course_id")
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

		file, header, err := r.FormFile("file")
		if err != nil {
			writeError(w, http.StatusBadRequest, "Missing file field")
			return
		}
		defer file.Close()

		if header.Header.Get("Content-Type") != "application/pdf" {
			writeError(w, http.StatusBadRequest, "Only PDF files are allowed")
			return
		}

		if err := os.MkdirAll(uploadDir, 0o755); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}

		safeName := fmt.Sprintf("doc_%s_%s",
			time.Now().UTC().Format("20060102_150405"),
			filepath.Base(header.Filename))
		path := filepath.Join(uploadDir, safeName)

		dst, err := os.Create(path)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		defer dst.Close()
		if _, err := io.Copy(dst, file); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}

		doc := &models.Document{
			CourseID: course.ID,
			Title:    header.Filename,
			Kind:     models.DocManualUpload,
			FilePath: path,
		}
		if err := store.CreateDocument(r.Context(), doc); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"message":      "PDF uploaded successfully!",
			"document_id":  doc.ID,
			"filename":     doc.Title,
			"course_id":    doc.CourseID,
			"download_url": fmt.Sprintf("/api/documents/download/%d", doc.ID),
		})
	}
}

// DownloadDocumentHandler serves a manually uploaded file.
func DownloadDocumentHandler(store *db.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 32)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid document id")
			return
		}

		doc, err := store.DocumentByID(r.Context(), uint(id))
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if doc == nil {
			writeError(w, http.StatusNotFound, "Document not found")
			return
		}
		if doc.FilePath == "" {
			writeError(w, http.StatusNotFound, "File not found on server")
			return
		}
		if _, err := os.Stat(doc.FilePath); err != nil {
			writeError(w, http.StatusNotFound, "File not found on server")
			return
		}

		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Title))
		http.ServeFile(w, r, doc.FilePath)
	}
}

// ListDocumentsHandler lists every document in a course, synced and
// manually uploaded alike.
func ListDocumentsHandler(store *db.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		courseID, err := strconv.ParseUint(chi.URLParam(r, "courseID"), 10, 32)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid course id")
			return
		}

		docs, err := store.DocumentsByCourse(r.Context(), uint(courseID))
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}

		out := make([]map[string]any, 0, len(docs))
		for _, d := range docs {
			entry := map[string]any{
				"id":           d.ID,
				"title":        d.Title,
				"doc_type":     d.Kind,
				"resource_url": d.ResourceURL,
				"raw_text":     d.RawText,
				"external_id":  d.ExternalID,
				"created_at":   d.CreatedAt,
			}
			if d.FilePath != "" {
				entry["download_url"] = fmt.Sprintf("/api/documents/download/%d", d.ID)
			}
			out = append(out, entry)
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"count":     len(out),
			"documents": out,
		})
	}
}
