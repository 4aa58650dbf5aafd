// Package server sets up the HTTP server, router, and all route
// definitions. This is the composition root: every dependency is wired here
// (DB → repositories → services → handlers), so the rest of the codebase
// never constructs its own collaborators.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/zgjun/noto-backend/internal/auth"
	"github.com/zgjun/noto-backend/internal/generator"
	"github.com/zgjun/noto-backend/internal/handler"
	"github.com/zgjun/noto-backend/internal/middleware"
	sqliteRepo "github.com/zgjun/noto-backend/internal/repository/sqlite"
	"github.com/zgjun/noto-backend/internal/service"
)

// Config holds server configuration, loaded from the environment in main.
type Config struct {
	Port      int
	DBPath    string
	JWTSecret string
	Study     service.StudyConfig
}

// Server owns the router, the database connection, and the dependency
// graph. The DB is closed during graceful shutdown.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New creates a Server with all dependencies wired.
//
// The generator is passed in rather than constructed here so main decides
// which implementation runs (the real Gemini client in production, a fake
// in tests) — the orchestrator never sees anything but the interface.
func New(cfg Config, gen generator.Generator, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(gen); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// setupRoutes configures middleware, builds the service/handler graph, and
// declares every route.
//
// ROUTE STRUCTURE:
//
//	POST   /signup                      create account          (public)
//	POST   /signin                      issue token             (public)
//	POST   /upload                      store file
//	GET    /files                       list owned files
//	GET    /files/{id}                  read one file
//	DELETE /files/{id}                  delete one file
//	POST   /quizzes/{fileId}            generate/replace quiz
//	GET    /quizzes/{fileId}            read quiz for file
//	DELETE /quizzes/{fileId}            delete quiz for file
//	GET    /quiz/{quizId}               read quiz by its own id
//	POST   /update_quiz_score/{quizId}  record score
//	GET    /user_quizzes                list owned quizzes
//	POST   /cardspacks/{fileId}         generate/replace pack
//	GET    /cardspacks/{fileId}         read pack for file
//	DELETE /cardspacks/{fileId}         delete pack for file
//	GET    /user_cardspacks             list owned packs
//	GET    /profile                     own profile
//	POST   /update_profile              change display name
//	GET    /get_user/{id}               another user's public fields
//	POST   /delete_data                 wipe quizzes + packs
//	DELETE /delete_account              delete account + cascade
//
// Everything below the RequireUser group needs a valid bearer token; the
// middleware resolves it to a user row once and handlers read it from the
// request context.
func (s *Server) setupRoutes(gen generator.Generator) error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	tokens, err := auth.NewTokenService(s.config.JWTSecret)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	passwords := auth.NewPasswordService()

	users := s.db.Users()
	files := s.db.Files()

	authService := service.NewAuthService(users, tokens, passwords, s.logger)
	fileService := service.NewFileService(files, s.logger)
	studyService := service.NewStudyService(files, s.db.Quizzes(), s.db.CardsPacks(), gen, s.config.Study, s.logger)

	authHandler := handler.NewAuthHandler(authService, s.logger)
	fileHandler := handler.NewFileHandler(fileService, s.logger)
	studyHandler := handler.NewStudyHandler(studyService, s.logger)

	// Public routes
	s.router.Post("/signup", authHandler.HandleSignup)
	s.router.Post("/signin", authHandler.HandleSignin)

	// Protected routes
	s.router.Group(func(r chi.Router) {
		r.Use(auth.RequireUser(tokens, users))

		r.Post("/upload", fileHandler.HandleUpload)
		r.Get("/files", fileHandler.HandleList)
		r.Get("/files/{id}", fileHandler.HandleGet)
		r.Delete("/files/{id}", fileHandler.HandleDelete)

		r.Post("/quizzes/{fileId}", studyHandler.HandleGenerateQuiz)
		r.Get("/quizzes/{fileId}", studyHandler.HandleGetQuiz)
		r.Delete("/quizzes/{fileId}", studyHandler.HandleDeleteQuiz)
		r.Get("/quiz/{quizId}", studyHandler.HandleGetQuizByID)
		r.Post("/update_quiz_score/{quizId}", studyHandler.HandleUpdateScore)
		r.Get("/user_quizzes", studyHandler.HandleListQuizzes)

		r.Post("/cardspacks/{fileId}", studyHandler.HandleGenerateCardsPack)
		r.Get("/cardspacks/{fileId}", studyHandler.HandleGetCardsPack)
		r.Delete("/cardspacks/{fileId}", studyHandler.HandleDeleteCardsPack)
		r.Get("/user_cardspacks", studyHandler.HandleListCardsPacks)

		r.Get("/profile", authHandler.HandleProfile)
		r.Post("/update_profile", authHandler.HandleUpdateProfile)
		r.Get("/get_user/{id}", authHandler.HandleGetUser)
		r.Post("/delete_data", studyHandler.HandleDeleteData)
		r.Delete("/delete_account", authHandler.HandleDeleteAccount)
	})

	return nil
}

// Handler exposes the configured router. Tests drive it directly through
// httptest without binding a port.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the database without going through Start's shutdown path.
func (s *Server) Close() error {
	return s.db.Close()
}

// Start starts the HTTP server and blocks until shutdown.
//
// On SIGINT/SIGTERM: stop accepting connections, give in-flight requests
// 30 seconds to finish, then close the database (flushes the WAL and
// releases the file lock).
func (s *Server) Start() error {
	defer s.db.Close()

	// WriteTimeout must outlast the generation deadline — the quiz and
	// cards endpoints legitimately wait on the AI call before responding.
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: s.config.Study.Timeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
