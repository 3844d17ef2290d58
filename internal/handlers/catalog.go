// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/paperdeck/wallpaper-admin/internal/services/authz"
)

// CategoryRequest is the request body for creating or updating a category.
type CategoryRequest struct {
	ID       string `json:"id" form:"id"`
	Name     string `json:"name" form:"name"`
	CoverURL string `json:"cover_url" form:"cover_url"`
}

// WallpaperRequest is the request body for adding a wallpaper.
type WallpaperRequest struct {
	URL string `json:"url" form:"url"`
}

// ListCategories returns all user-created categories.
func (h *Handlers) ListCategories(c echo.Context) error {
	if err := authz.Authorize(CurrentUser(c).Role, authz.OpEditCategory); err != nil {
		return httpError(c, err)
	}

	categories, err := h.catalog.Categories(c.Request().Context())
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"categories": categories})
}

// AddCategory creates a new category.
func (h *Handlers) AddCategory(c echo.Context) error {
	if err := authz.Authorize(CurrentUser(c).Role, authz.OpEditCategory); err != nil {
		return httpError(c, err)
	}

	var req CategoryRequest
	if err := c.Bind(&req); err != nil || req.ID == "" || req.Name == "" {
		return message(c, http.StatusBadRequest, "validation_failed", nil)
	}

	if err := h.catalog.AddCategory(c.Request().Context(), req.ID, req.Name, req.CoverURL); err != nil {
		return httpError(c, err)
	}
	return ok(c, "category_added")
}

// EditCategory updates name and cover of an existing category.
func (h *Handlers) EditCategory(c echo.Context) error {
	if err := authz.Authorize(CurrentUser(c).Role, authz.OpEditCategory); err != nil {
		return httpError(c, err)
	}

	var req CategoryRequest
	if err := c.Bind(&req); err != nil || req.Name == "" {
		return message(c, http.StatusBadRequest, "validation_failed", nil)
	}

	if err := h.catalog.UpdateCategory(c.Request().Context(), c.Param("id"), req.Name, req.CoverURL); err != nil {
		return httpError(c, err)
	}
	return ok(c, "category_updated")
}

// DeleteCategory removes a category with all its wallpapers.
func (h *Handlers) DeleteCategory(c echo.Context) error {
	if err := authz.Authorize(CurrentUser(c).Role, authz.OpDeleteCategory); err != nil {
		return httpError(c, err)
	}

	if err := h.catalog.DeleteCategory(c.Request().Context(), c.Param("id")); err != nil {
		return httpError(c, err)
	}
	return ok(c, "category_deleted")
}

// CategoryWallpapers returns the wallpapers of a category.
func (h *Handlers) CategoryWallpapers(c echo.Context) error {
	category, err := h.catalog.Category(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"category_id": c.Param("id"),
		"category":    category,
		"wallpapers":  category.Wallpapers,
	})
}

// AddWallpaper appends a wallpaper to a category.
func (h *Handlers) AddWallpaper(c echo.Context) error {
	if err := authz.Authorize(CurrentUser(c).Role, authz.OpEditCategory); err != nil {
		return httpError(c, err)
	}

	var req WallpaperRequest
	if err := c.Bind(&req); err != nil || req.URL == "" {
		return message(c, http.StatusBadRequest, "validation_failed", nil)
	}

	if err := h.catalog.AddWallpaper(c.Request().Context(), c.Param("id"), req.URL); err != nil {
		return httpError(c, err)
	}
	return ok(c, "wallpaper_added")
}

// RemoveWallpaper removes the wallpaper at the given index from a category.
// An index outside the list leaves the category unchanged.
func (h *Handlers) RemoveWallpaper(c echo.Context) error {
	if err := authz.Authorize(CurrentUser(c).Role, authz.OpDeleteWallpaper); err != nil {
		return httpError(c, err)
	}

	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		return message(c, http.StatusBadRequest, "validation_failed", nil)
	}

	removed, err := h.catalog.RemoveWallpaper(c.Request().Context(), c.Param("id"), index)
	if err != nil {
		return httpError(c, err)
	}
	if !removed {
		return ok(c, "wallpaper_unchanged")
	}
	return ok(c, "wallpaper_removed")
}

// StaticCategory returns the wallpapers of a predefined collection.
func (h *Handlers) StaticCategory(c echo.Context) error {
	wallpapers, err := h.catalog.StaticCategory(c.Request().Context(), c.Param("name"))
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"category_name": c.Param("name"),
		"wallpapers":    wallpapers,
	})
}

// AddStaticWallpaper appends a wallpaper to a predefined collection.
func (h *Handlers) AddStaticWallpaper(c echo.Context) error {
	if err := authz.Authorize(CurrentUser(c).Role, authz.OpEditCategory); err != nil {
		return httpError(c, err)
	}

	var req WallpaperRequest
	if err := c.Bind(&req); err != nil || req.URL == "" {
		return message(c, http.StatusBadRequest, "validation_failed", nil)
	}

	if err := h.catalog.AddStaticWallpaper(c.Request().Context(), c.Param("name"), req.URL); err != nil {
		return httpError(c, err)
	}
	return ok(c, "wallpaper_added")
}

// RemoveStaticWallpaper removes the wallpaper at the given index from a
// predefined collection.
func (h *Handlers) RemoveStaticWallpaper(c echo.Context) error {
	if err := authz.Authorize(CurrentUser(c).Role, authz.OpDeleteWallpaper); err != nil {
		return httpError(c, err)
	}

	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		return message(c, http.StatusBadRequest, "validation_failed", nil)
	}

	removed, err := h.catalog.RemoveStaticWallpaper(c.Request().Context(), c.Param("name"), index)
	if err != nil {
		return httpError(c, err)
	}
	if !removed {
		return ok(c, "wallpaper_unchanged")
	}
	return ok(c, "wallpaper_removed")
}
