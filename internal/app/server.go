package app

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/calebds/vaultive/internal/api/handlers"
	appMiddleware "github.com/calebds/vaultive/internal/api/middlewares"
	"github.com/calebds/vaultive/internal/config"
	"github.com/calebds/vaultive/internal/core"
	"github.com/calebds/vaultive/internal/core/extraction"
	"github.com/calebds/vaultive/internal/services"
)

// Server wraps the HTTP server instance and its handlers.
type Server struct {
	httpServer *http.Server
}

// NewServer builds and wires all routes.
func NewServer(cfg *config.Config, db core.DbClient, obj core.ObjectClient, dispatcher *extraction.Dispatcher) *Server {
	fileService := services.NewFileService(db, obj, cfg.BucketName)
	adminService := services.NewAdminService(db)

	authHandler := handlers.NewAuthHandler(db)
	fileHandler := handlers.NewFileHandler(fileService)
	ocrHandler := handlers.NewOCRHandler(dispatcher)
	adminHandler := handlers.NewAdminHandler(adminService)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8888"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(api chi.Router) {
		// public endpoints
		api.Post("/signup", authHandler.Signup)
		api.Post("/login", authHandler.Login)

		// protected endpoints
		api.Group(func(protected chi.Router) {
			protected.Use(appMiddleware.JWTMiddleware)

			protected.Post("/files", fileHandler.Upload)
			protected.Get("/files", fileHandler.List)
			protected.Get("/files/{id}/download", fileHandler.Download)
			protected.Post("/files/{id}/trash", fileHandler.Trash)
			protected.Post("/files/{id}/restore", fileHandler.Restore)
			protected.Delete("/files/{id}", fileHandler.Delete)
			protected.Get("/trash", fileHandler.ListTrash)

			protected.Post("/files/{id}/share", fileHandler.Share)
			protected.Delete("/files/{id}/share/{granteeID}", fileHandler.Unshare)
			protected.Get("/shared", fileHandler.ListShared)

			protected.Post("/files/{id}/ocr", ocrHandler.Submit)
			protected.Get("/files/{id}/ocr", ocrHandler.StatusByFile)
			protected.Get("/ocr/{jobID}", ocrHandler.Status)

			// admin-only endpoints
			protected.Group(func(admin chi.Router) {
				admin.Use(appMiddleware.AdminOnly)
				admin.Get("/admin/summary", adminHandler.Summary)
				admin.Post("/admin/departments", adminHandler.CreateDepartment)
				admin.Get("/admin/departments", adminHandler.ListDepartments)
				admin.Get("/admin/usage", adminHandler.Usage)
				admin.Get("/admin/usage.xlsx", adminHandler.UsageExport)
			})
		})
	})

	httpSrv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	return &Server{httpServer: httpSrv}
}

// Start runs the HTTP server.
func (s *Server) Start() {
	log.Printf("HTTP server listening on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down HTTP server...")
	return s.httpServer.Shutdown(ctx)
}
