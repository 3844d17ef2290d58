// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package server wires configuration, storage, services and routes into a
// running HTTP server.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/urfave/cli/v3"

	"github.com/paperdeck/wallpaper-admin/internal/catalog"
	"github.com/paperdeck/wallpaper-admin/internal/config"
	"github.com/paperdeck/wallpaper-admin/internal/database"
	"github.com/paperdeck/wallpaper-admin/internal/handlers"
	"github.com/paperdeck/wallpaper-admin/internal/i18n"
	"github.com/paperdeck/wallpaper-admin/internal/repository"
	"github.com/paperdeck/wallpaper-admin/internal/services/auth"
	"github.com/paperdeck/wallpaper-admin/internal/services/email"
	"github.com/paperdeck/wallpaper-admin/internal/services/otp"
	"github.com/paperdeck/wallpaper-admin/internal/services/recovery"
	"github.com/paperdeck/wallpaper-admin/internal/services/session"
)

// Run starts the server with the given CLI command.
func Run(ctx context.Context, cmd *cli.Command) error {
	cfg := config.NewFromCLI(cmd)
	setupLogger(cfg.Log.Level, cfg.Log.Format)

	slog.Info("starting server",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"base_url", cfg.Server.BaseURL,
	)

	// Database
	db, err := database.Open(cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("failed to close database", "error", closeErr)
		}
	}()

	// i18n
	if initErr := i18n.Init(); initErr != nil {
		return fmt.Errorf("failed to init i18n: %w", initErr)
	}

	// Repository and services
	repo := repository.New(db)
	authSvc := auth.NewService(repo)

	if bootstrapErr := authSvc.EnsureSuperuser(ctx, cfg.Bootstrap.Username, cfg.Bootstrap.Email, cfg.Bootstrap.Password); bootstrapErr != nil {
		return fmt.Errorf("failed to bootstrap superuser: %w", bootstrapErr)
	}

	sender, err := email.NewSMTPSender(&cfg.SMTP)
	if err != nil {
		return fmt.Errorf("failed to set up mail client: %w", err)
	}

	sessions := session.NewManager(
		cfg.Session.CookieName,
		[]byte(cfg.Session.HashKey),
		time.Duration(cfg.Session.MaxAge)*time.Second,
		isSecure(cfg),
	)

	rec := recovery.NewService(repo, otp.NewEngine(), sender, sessions, authSvc)
	cat := catalog.NewService(newCatalogStore(cfg))

	// Echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	setupMiddleware(e, cfg, sessions, repo)
	setupRoutes(e, handlers.New(repo, cat, authSvc, rec, sessions))

	return startWithGracefulShutdown(e, cfg)
}

// newCatalogStore picks the remote store when a URL is configured and falls
// back to the in-memory store for local development.
func newCatalogStore(cfg *config.Config) catalog.Store {
	if cfg.Catalog.URL == "" {
		slog.Warn("no catalog url configured, using in-memory store")
		return catalog.NewMemoryStore()
	}
	return catalog.NewRTDBStore(cfg.Catalog.URL, cfg.Catalog.AuthToken)
}

func setupRoutes(e *echo.Echo, h *handlers.Handlers) {
	e.GET("/health", h.Health)

	// Authentication and password recovery run without a logged-in user.
	e.POST("/login", h.Login)
	e.POST("/logout", h.Logout)
	e.POST("/forgot-password", h.ForgotPassword)
	e.POST("/verify-otp", h.VerifyOTP)
	e.POST("/reset-password", h.ResetPassword)

	api := e.Group("", requireAuth())

	api.GET("/dashboard", h.Dashboard)

	api.GET("/categories", h.ListCategories)
	api.POST("/categories", h.AddCategory)
	api.GET("/categories/:id", h.CategoryWallpapers)
	api.PUT("/categories/:id", h.EditCategory)
	api.DELETE("/categories/:id", h.DeleteCategory)
	api.POST("/categories/:id/wallpapers", h.AddWallpaper)
	api.DELETE("/categories/:id/wallpapers/:index", h.RemoveWallpaper)

	api.GET("/static/:name", h.StaticCategory)
	api.POST("/static/:name/wallpapers", h.AddStaticWallpaper)
	api.DELETE("/static/:name/wallpapers/:index", h.RemoveStaticWallpaper)

	api.GET("/users", h.ListUsers)
	api.POST("/users", h.AddUser)
	api.PUT("/users/:id", h.EditUser)
	api.DELETE("/users/:id", h.DeleteUser)
}

func isSecure(cfg *config.Config) bool {
	return strings.HasPrefix(cfg.Server.BaseURL, "https://")
}

func startWithGracefulShutdown(e *echo.Echo, cfg *config.Config) error {
	errChan := make(chan error, 1)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	go func() {
		slog.Info("Server running", "addr", addr)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		slog.Info("shutting down server")
	case err := <-errChan:
		slog.Error("server error", "error", err)
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		slog.Error("failed to shutdown server", "error", err)
	}

	slog.Info("server stopped")
	return nil
}
