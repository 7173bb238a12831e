// Package server sets up the HTTP server, router, and all route definitions.
//
// This package is the "wiring" layer — the composition root where handlers,
// services, clients, and middleware are assembled and mapped to routes.
// main.go stays minimal: read config, create the logger, call New and Start.
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
	"github.com/go-chi/cors"

	"github.com/mhasan/pr-reviewer/internal/auth"
	"github.com/mhasan/pr-reviewer/internal/github"
	"github.com/mhasan/pr-reviewer/internal/handler"
	"github.com/mhasan/pr-reviewer/internal/llm"
	"github.com/mhasan/pr-reviewer/internal/middleware"
	sqliteRepo "github.com/mhasan/pr-reviewer/internal/repository/sqlite"
	"github.com/mhasan/pr-reviewer/internal/service"
)

// Config holds server configuration. One struct instead of a parameter list
// so new options don't ripple through function signatures.
type Config struct {
	Port   int
	DBPath string

	// SessionSecret signs session cookies. Must be long and random.
	SessionSecret string

	GitHubClientID     string
	GitHubClientSecret string
	GitHubCallbackURL  string

	// ClientOrigin is where the frontend runs. CORS allows exactly this
	// origin, and login/logout redirect back to it.
	ClientOrigin string

	OpenRouterAPIKey string
	OpenRouterModel  string

	// MaxCodeLength caps review submissions; 0 keeps the default.
	MaxCodeLength int
}

// Server owns the router and the resources that need closing on shutdown.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New assembles the full dependency chain:
//
//	sqlite.DB → repositories → services → handlers → routes
//
// Each layer only receives what it needs; handlers never touch the database
// and services never touch HTTP.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
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

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	// Sweep sessions left over from before the last shutdown.
	if err := db.Sessions().DeleteExpired(context.Background()); err != nil {
		logger.Warn("expired session sweep failed", slog.String("error", err.Error()))
	}

	return s, nil
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTE STRUCTURE:
//
//	GET    /user                    → current user profile (or 401)
//	GET    /auth/github             → redirect to GitHub OAuth
//	GET    /auth/github/callback    → complete OAuth, set session cookie
//	GET    /auth/logout             → destroy session, redirect to login
//	POST   /api/review              → run code through the AI reviewer
//	POST   /api/history             → save a review run
//	GET    /api/history             → list the user's runs
//	DELETE /api/history             → clear the user's history
//	DELETE /api/history/{id}        → delete one entry
//	POST   /github/fetch-pr         → changed files of a PR
//	GET    /github/prs-for-review   → open PRs awaiting the user's review
//
// MIDDLEWARE ORDER MATTERS: RequestID runs first so the logger can see the
// ID; Recoverer runs before the handlers so panics become 500s; CORS runs
// globally because the frontend lives on another origin.
func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	// The frontend sends the session cookie cross-origin, so credentials
	// must be allowed — which in turn forbids a wildcard origin.
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{s.config.ClientOrigin},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	tokens, err := auth.NewTokenService(s.config.SessionSecret)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}

	githubProvider := auth.NewGitHubProvider(
		s.config.GitHubClientID,
		s.config.GitHubClientSecret,
		s.config.GitHubCallbackURL,
	)

	llmClient := llm.NewClient(s.config.OpenRouterAPIKey, s.config.OpenRouterModel, "", s.logger)
	githubClient := github.NewClient("", s.logger)

	sessions := s.db.Sessions()
	history := s.db.History()

	authService := service.NewAuthService(sessions, tokens, s.logger)
	reviewService := service.NewReviewService(llmClient, s.config.MaxCodeLength, s.logger)
	historyService := service.NewHistoryService(history, s.logger)

	authHandler := handler.NewAuthHandler(githubProvider, authService, s.config.ClientOrigin, s.logger)
	reviewHandler := handler.NewReviewHandler(reviewService, s.logger)
	historyHandler := handler.NewHistoryHandler(historyService, s.logger)
	githubHandler := handler.NewGitHubHandler(githubClient, s.logger)

	requireAuth := auth.RequireAuth(tokens, sessions)
	optionalAuth := auth.OptionalAuth(tokens, sessions)

	// Auth and profile. /user and /auth/logout work for anonymous callers
	// too, so they take OptionalAuth rather than RequireAuth.
	s.router.With(optionalAuth).Get("/user", authHandler.HandleMe)
	s.router.Get("/auth/github", authHandler.HandleGitHubLogin)
	s.router.Get("/auth/github/callback", authHandler.HandleGitHubCallback)
	s.router.With(optionalAuth).Get("/auth/logout", authHandler.HandleLogout)

	s.router.Route("/api", func(r chi.Router) {
		r.Use(requireAuth)
		r.Post("/review", reviewHandler.HandleReview)
		r.Post("/history", historyHandler.HandleSave)
		r.Get("/history", historyHandler.HandleList)
		r.Delete("/history", historyHandler.HandleDeleteAll)
		r.Delete("/history/{id}", historyHandler.HandleDeleteOne)
	})

	s.router.Route("/github", func(r chi.Router) {
		r.Use(requireAuth)
		r.Post("/fetch-pr", githubHandler.HandleFetchPR)
		r.Get("/prs-for-review", githubHandler.HandlePRsForReview)
	})

	return nil
}

// Start runs the HTTP server and handles graceful shutdown:
// stop accepting connections, drain in-flight requests (30s), then close
// the database so the WAL is flushed and the file lock released.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 150 * time.Second, // review calls wait on the LLM
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("database", s.config.DBPath),
			slog.String("clientOrigin", s.config.ClientOrigin),
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
