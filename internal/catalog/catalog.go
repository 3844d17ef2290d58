// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package catalog manages the wallpaper catalog kept in a path-addressed
// remote document store.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
)

var (
	// ErrUnavailable is returned when the remote store cannot be reached.
	ErrUnavailable = errors.New("catalog store unavailable")
	// ErrCategoryNotFound is returned when a category does not exist.
	ErrCategoryNotFound = errors.New("category not found")
	// ErrUnknownCategory is returned for a static collection name outside
	// the fixed set.
	ErrUnknownCategory = errors.New("unknown static category")
)

// Store is a path-addressed document store. Paths are slash-delimited and
// address a node in a JSON tree. Get returns nil for an empty node.
type Store interface {
	Get(ctx context.Context, path string) (json.RawMessage, error)
	Set(ctx context.Context, path string, value any) error
	Delete(ctx context.Context, path string) error
}

// Category is a user-created wallpaper collection.
type Category struct {
	Name       string   `json:"name"`
	CoverURL   string   `json:"cover_url"`
	Wallpapers []string `json:"wallpapers"`
}

// StaticCategories is the fixed set of predefined collections. These are not
// user-creatable and hold a bare list of wallpaper URLs.
var StaticCategories = []string{
	"Animated",
	"Art",
	"Black & White",
	"Feature",
	"Horror",
	"Nature",
	"Sports",
	"Tech",
}

// IsStaticCategory reports whether name is one of the predefined collections.
func IsStaticCategory(name string) bool {
	for _, c := range StaticCategories {
		if c == name {
			return true
		}
	}
	return false
}
