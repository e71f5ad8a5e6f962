// Package server sets up the HTTP server, router, and all route definitions.
//
// This is the composition root: the full dependency chain
//
//	sqlite.DB → services → handlers → routes
//
// is assembled in New/setupRoutes rather than scattered across the codebase.
// main.go stays minimal — load config, build the server, start it.
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

	"github.com/sakif/photofeed/internal/auth"
	"github.com/sakif/photofeed/internal/handler"
	"github.com/sakif/photofeed/internal/media"
	"github.com/sakif/photofeed/internal/middleware"
	sqliteRepo "github.com/sakif/photofeed/internal/repository/sqlite"
	"github.com/sakif/photofeed/internal/service"
)

// Config holds server configuration, loaded from the environment by main.
type Config struct {
	Port   int    `env:"PORT,default=8080"`
	DBPath string `env:"DB_PATH,default=data/photofeed.db"`

	// JWT_SECRET must be long random data: JWT_SECRET=$(openssl rand -hex 32)
	JWTSecret string `env:"JWT_SECRET,required"`

	MediaUploadURL  string `env:"MEDIA_UPLOAD_URL,default=https://upload.imagekit.io"`
	MediaAPIURL     string `env:"MEDIA_API_URL,default=https://api.imagekit.io"`
	MediaPrivateKey string `env:"MEDIA_PRIVATE_KEY,required"`

	// GitHub OAuth is optional; with no client ID the routes aren't mounted.
	GitHubClientID     string `env:"GITHUB_CLIENT_ID"`
	GitHubClientSecret string `env:"GITHUB_CLIENT_SECRET"`
	GitHubCallbackURL  string `env:"GITHUB_CALLBACK_URL"`
}

// Server owns the router and the database connection. The connection is
// closed during graceful shutdown to flush the WAL and release the file
// lock.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New creates a Server and wires the whole dependency chain. Each layer
// only receives what it needs: services get repository interfaces, handlers
// get services.
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

	return s, nil
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTE STRUCTURE:
//
//	POST   /auth/register             → create a password account
//	POST   /auth/jwt/login            → form login, sets session cookie
//	POST   /auth/jwt/logout           → clears the cookie
//	POST   /auth/request-verify-token → issue a verification token (202)
//	POST   /auth/verify               → redeem a verification token
//	POST   /auth/forgot-password      → issue a reset token (202)
//	POST   /auth/reset-password       → redeem a reset token
//	GET    /auth/github/login         → redirect to GitHub (when configured)
//	GET    /auth/github/callback      → OAuth callback
//	GET    /users/me                  → profile (auth)
//	PATCH  /users/me                  → update email/password (auth)
//	DELETE /account                   → delete account, 204 (auth)
//	POST   /upload                    → multipart post upload (auth)
//	GET    /feed                      → all posts, newest first (public)
//	DELETE /posts/{id}                → owner-only post delete (auth)
//	POST   /posts/{id}/like           → like (auth)
//	DELETE /posts/{id}/like           → unlike (auth)
//	GET    /posts/{id}/likes          → like count (public)
//	GET    /posts/{id}/user-like      → has the caller liked it (auth)
//	POST   /posts/{id}/comment        → add comment (auth)
//	GET    /posts/{id}/comments       → list comments (public)
//	DELETE /comments/{id}             → author-only comment delete (auth)
func (s *Server) setupRoutes() error {
	// Middleware order matters: RequestID and RealIP first so the logger
	// sees them, Recoverer so a panic still produces a logged 500.
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	tokens, err := auth.NewTokenService(s.config.JWTSecret)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	passwords := auth.NewPasswordService()

	mediaClient, err := media.New(s.config.MediaUploadURL, s.config.MediaAPIURL, s.config.MediaPrivateKey)
	if err != nil {
		return fmt.Errorf("creating media client: %w", err)
	}

	var github *auth.GitHubProvider
	if s.config.GitHubClientID != "" {
		callbackURL := s.config.GitHubCallbackURL
		if callbackURL == "" {
			callbackURL = fmt.Sprintf("http://localhost:%d/auth/github/callback", s.config.Port)
		}
		github = auth.NewGitHubProvider(s.config.GitHubClientID, s.config.GitHubClientSecret, callbackURL)
	} else {
		s.logger.Warn("GITHUB_CLIENT_ID not set — GitHub login is disabled")
	}

	// s.db implements all four repository interfaces.
	authService := service.NewAuthService(s.db, tokens, passwords, s.logger)
	postService := service.NewPostService(s.db, s.db, mediaClient, s.logger)
	interactionService := service.NewInteractionService(s.db, s.db, s.db, s.db, s.logger)

	authHandler := handler.NewAuthHandler(authService, github, s.logger)
	postHandler := handler.NewPostHandler(postService, s.logger)
	interactionHandler := handler.NewInteractionHandler(interactionService, s.logger)

	requireAuth := auth.RequireAuth(tokens)

	// Public routes.
	s.router.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.HandleRegister)
		r.Post("/jwt/login", authHandler.HandleLogin)
		r.Post("/jwt/logout", authHandler.HandleLogout)
		r.Post("/request-verify-token", authHandler.HandleRequestVerify)
		r.Post("/verify", authHandler.HandleVerify)
		r.Post("/forgot-password", authHandler.HandleForgotPassword)
		r.Post("/reset-password", authHandler.HandleResetPassword)

		if github != nil {
			r.Get("/github/login", authHandler.HandleGitHubLogin)
			r.Get("/github/callback", authHandler.HandleGitHubCallback)
		}
	})

	s.router.Get("/feed", postHandler.HandleFeed)
	s.router.Get("/posts/{id}/likes", interactionHandler.HandleLikesCount)
	s.router.Get("/posts/{id}/comments", interactionHandler.HandleListComments)

	// Authenticated routes.
	s.router.Group(func(r chi.Router) {
		r.Use(requireAuth)

		r.Get("/users/me", authHandler.HandleMe)
		r.Patch("/users/me", authHandler.HandleUpdateMe)
		r.Delete("/account", authHandler.HandleDeleteAccount)

		r.Post("/upload", postHandler.HandleUpload)
		r.Delete("/posts/{id}", postHandler.HandleDelete)

		r.Post("/posts/{id}/like", interactionHandler.HandleLike)
		r.Delete("/posts/{id}/like", interactionHandler.HandleUnlike)
		r.Get("/posts/{id}/user-like", interactionHandler.HandleUserLike)
		r.Post("/posts/{id}/comment", interactionHandler.HandleAddComment)
		r.Delete("/comments/{id}", interactionHandler.HandleDeleteComment)
	})

	return nil
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully: stop accepting connections, give in-flight requests 30s,
// close the database.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // uploads proxy to the image host
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
