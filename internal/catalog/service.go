// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package catalog

import (
	"context"
	"encoding/json"
	"fmt"
)

const (
	rootPath       = "wallpapers"
	categoriesPath = rootPath + "/Categories"
)

// Service exposes catalog operations over a Store.
type Service struct {
	store Store
}

// NewService creates a catalog service.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Categories returns all user-created categories keyed by category id.
func (s *Service) Categories(ctx context.Context) (map[string]Category, error) {
	raw, err := s.store.Get(ctx, categoriesPath)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return map[string]Category{}, nil
	}

	var categories map[string]Category
	if err := json.Unmarshal(raw, &categories); err != nil {
		return nil, fmt.Errorf("decoding categories: %w", err)
	}
	return categories, nil
}

// Category returns a single category by id.
func (s *Service) Category(ctx context.Context, id string) (*Category, error) {
	raw, err := s.store.Get(ctx, categoryPath(id))
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, ErrCategoryNotFound
	}

	var category Category
	if err := json.Unmarshal(raw, &category); err != nil {
		return nil, fmt.Errorf("decoding category %s: %w", id, err)
	}
	return &category, nil
}

// AddCategory creates a category with an empty wallpaper list.
func (s *Service) AddCategory(ctx context.Context, id, name, coverURL string) error {
	return s.store.Set(ctx, categoryPath(id), Category{
		Name:       name,
		CoverURL:   coverURL,
		Wallpapers: []string{},
	})
}

// UpdateCategory changes name and cover of an existing category, keeping its
// wallpapers untouched.
func (s *Service) UpdateCategory(ctx context.Context, id, name, coverURL string) error {
	category, err := s.Category(ctx, id)
	if err != nil {
		return err
	}

	category.Name = name
	category.CoverURL = coverURL
	return s.store.Set(ctx, categoryPath(id), category)
}

// DeleteCategory removes a category and all its wallpapers.
func (s *Service) DeleteCategory(ctx context.Context, id string) error {
	return s.store.Delete(ctx, categoryPath(id))
}

// Wallpapers returns the wallpaper URLs of a category in insertion order.
func (s *Service) Wallpapers(ctx context.Context, id string) ([]string, error) {
	category, err := s.Category(ctx, id)
	if err != nil {
		return nil, err
	}
	return category.Wallpapers, nil
}

// AddWallpaper appends a wallpaper URL to a category.
func (s *Service) AddWallpaper(ctx context.Context, id, wallpaperURL string) error {
	wallpapers, err := s.loadList(ctx, wallpapersPath(id))
	if err != nil {
		return err
	}
	return s.store.Set(ctx, wallpapersPath(id), append(wallpapers, wallpaperURL))
}

// RemoveWallpaper removes the wallpaper at index from a category. An index
// outside the list leaves the category unchanged and reports false.
func (s *Service) RemoveWallpaper(ctx context.Context, id string, index int) (bool, error) {
	wallpapers, err := s.loadList(ctx, wallpapersPath(id))
	if err != nil {
		return false, err
	}
	if index < 0 || index >= len(wallpapers) {
		return false, nil
	}

	wallpapers = append(wallpapers[:index], wallpapers[index+1:]...)
	if err := s.store.Set(ctx, wallpapersPath(id), wallpapers); err != nil {
		return false, err
	}
	return true, nil
}

// StaticCategory returns the wallpapers of one of the predefined collections.
func (s *Service) StaticCategory(ctx context.Context, name string) ([]string, error) {
	if !IsStaticCategory(name) {
		return nil, ErrUnknownCategory
	}
	return s.loadList(ctx, staticPath(name))
}

// AddStaticWallpaper appends a wallpaper URL to a predefined collection.
func (s *Service) AddStaticWallpaper(ctx context.Context, name, wallpaperURL string) error {
	if !IsStaticCategory(name) {
		return ErrUnknownCategory
	}

	wallpapers, err := s.loadList(ctx, staticPath(name))
	if err != nil {
		return err
	}
	return s.store.Set(ctx, staticPath(name), append(wallpapers, wallpaperURL))
}

// RemoveStaticWallpaper removes the wallpaper at index from a predefined
// collection. Out-of-range indexes are a no-op.
func (s *Service) RemoveStaticWallpaper(ctx context.Context, name string, index int) (bool, error) {
	if !IsStaticCategory(name) {
		return false, ErrUnknownCategory
	}

	wallpapers, err := s.loadList(ctx, staticPath(name))
	if err != nil {
		return false, err
	}
	if index < 0 || index >= len(wallpapers) {
		return false, nil
	}

	wallpapers = append(wallpapers[:index], wallpapers[index+1:]...)
	if err := s.store.Set(ctx, staticPath(name), wallpapers); err != nil {
		return false, err
	}
	return true, nil
}

// loadList reads a URL list node, treating an empty node as an empty list.
func (s *Service) loadList(ctx context.Context, path string) ([]string, error) {
	raw, err := s.store.Get(ctx, path)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return []string{}, nil
	}

	var list []string
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("decoding list at %s: %w", path, err)
	}
	return list, nil
}

func categoryPath(id string) string {
	return categoriesPath + "/" + id
}

func wallpapersPath(id string) string {
	return categoryPath(id) + "/wallpapers"
}

func staticPath(name string) string {
	return rootPath + "/" + name
}
