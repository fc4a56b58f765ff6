package main

import (
	"log"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/teachmate/teachmate/internal/api/handlers"
	"github.com/teachmate/teachmate/internal/api/middleware"
	"github.com/teachmate/teachmate/internal/auth/google"
	"github.com/teachmate/teachmate/internal/auth/microsoft"
	"github.com/teachmate/teachmate/internal/auth/token"
	"github.com/teachmate/teachmate/internal/classroom"
	"github.com/teachmate/teachmate/internal/config"
	"github.com/teachmate/teachmate/internal/db"
	syncengine "github.com/teachmate/teachmate/internal/sync"
	"github.com/teachmate/teachmate/internal/version"
)

func main() {
	configPath := os.Getenv("TEACHMATE_CONFIG")
	if configPath == "" {
		configPath = "teachmate.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	database, err := db.InitDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	store := db.NewStore(database)

	// Sync stack: token refresh + Classroom client + engine.
	refresher := token.NewOAuthRefresher(cfg.Google.ClientID, cfg.Google.ClientSecret, cfg.GoogleTokenURL)
	tokenManager := token.NewManager(store, refresher, google.Provider)
	classroomClient := classroom.NewClient(cfg.ClassroomBaseURL)
	engine := syncengine.NewEngine(store, tokenManager, classroomClient)

	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RequestID)

	// OAuth flows
	r.Get("/auth/google/login", google.HandleLogin(cfg))
	r.Get("/auth/google/callback", google.HandleCallback(cfg, store))
	r.Get("/auth/microsoft/login", microsoft.HandleLogin(cfg))
	r.Get("/auth/microsoft/callback", microsoft.HandleCallback(cfg, store))

	// API routes (session required)
	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.SessionAuth(cfg.JWTSecret))

		// Classroom sync
		r.Post("/classroom/sync-courses", handlers.SyncCoursesHandler(engine))
		r.Post("/classroom/full-sync", handlers.FullSyncHandler(engine))

		// Courses & documents
		r.Get("/courses", handlers.ListCoursesHandler(store))
		r.Get("/courses/{courseID}/quizzes", handlers.ListQuizzesHandler(store))
		r.Post("/courses/{courseID}/quizzes", handlers.CreateQuizHandler(store))
		r.Get("/documents/{courseID}", handlers.ListDocumentsHandler(store))
		r.Post("/documents/upload", handlers.UploadDocumentHandler(store, cfg.UploadDir))
		r.Get("/documents/download/{id}", handlers.DownloadDocumentHandler(store))

		// Discussion
		r.Post("/subjects/{subject}/posts", handlers.CreatePostHandler(store))
		r.Get("/subjects/{subject}/posts", handlers.ListPostsHandler(store))
		r.Get("/comments/post/{postID}", handlers.ListCommentsHandler(store))
		r.Post("/comments/post/{postID}", handlers.AddCommentHandler(store))
		r.Put("/comments/{commentID}", handlers.EditCommentHandler(store))
		r.Delete("/comments/{commentID}", handlers.DeleteCommentHandler(store))
	})

	log.Printf("🚀 teachmate %s listening on %s", version.Version, cfg.Listen)
	if err := http.ListenAndServe(cfg.Listen, r); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
