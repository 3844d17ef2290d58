// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package handlers contains the HTTP handlers of the admin API.
package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/paperdeck/wallpaper-admin/internal/catalog"
	"github.com/paperdeck/wallpaper-admin/internal/repository"
	"github.com/paperdeck/wallpaper-admin/internal/services/auth"
	"github.com/paperdeck/wallpaper-admin/internal/services/recovery"
	"github.com/paperdeck/wallpaper-admin/internal/services/session"
)

// Handlers contains all HTTP handlers.
type Handlers struct {
	repo     *repository.Repository
	catalog  *catalog.Service
	auth     *auth.Service
	recovery *recovery.Service
	sessions *session.Manager
}

// New creates a new Handlers instance.
func New(repo *repository.Repository, cat *catalog.Service, authSvc *auth.Service, rec *recovery.Service, sessions *session.Manager) *Handlers {
	return &Handlers{
		repo:     repo,
		catalog:  cat,
		auth:     authSvc,
		recovery: rec,
		sessions: sessions,
	}
}

// Health returns the health status.
func (h *Handlers) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// Dashboard returns the user-created categories plus all static collections.
func (h *Handlers) Dashboard(c echo.Context) error {
	ctx := c.Request().Context()

	categories, err := h.catalog.Categories(ctx)
	if err != nil {
		return httpError(c, err)
	}

	static := make(map[string][]string, len(catalog.StaticCategories))
	for _, name := range catalog.StaticCategories {
		wallpapers, err := h.catalog.StaticCategory(ctx, name)
		if err != nil {
			return httpError(c, err)
		}
		static[name] = wallpapers
	}

	return c.JSON(http.StatusOK, map[string]any{
		"categories":        categories,
		"static_categories": static,
		"static_names":      catalog.StaticCategories,
	})
}
