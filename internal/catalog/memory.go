// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package catalog

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
)

// MemoryStore is an in-process Store used in tests and local development.
// Like the remote database it keeps a single JSON tree, so reading a parent
// path returns the whole subtree written below it.
type MemoryStore struct {
	mu   sync.RWMutex
	root map[string]any
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{root: make(map[string]any)}
}

// Get returns the subtree at path, or nil if it is empty.
func (s *MemoryStore) Get(_ context.Context, path string) (json.RawMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	node, ok := s.lookup(segments(path))
	if !ok || node == nil {
		return nil, nil
	}
	data, err := json.Marshal(node)
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Set replaces the subtree at path with value.
func (s *MemoryStore) Set(_ context.Context, path string, value any) error {
	// Round-trip through JSON so the tree holds plain maps and slices.
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	var decoded any
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	segs := segments(path)
	parent := s.parentOf(segs, true)
	parent[segs[len(segs)-1]] = decoded
	return nil
}

// Delete removes the subtree at path.
func (s *MemoryStore) Delete(_ context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	segs := segments(path)
	if parent := s.parentOf(segs, false); parent != nil {
		delete(parent, segs[len(segs)-1])
	}
	return nil
}

// lookup walks the tree along segs.
func (s *MemoryStore) lookup(segs []string) (any, bool) {
	var node any = s.root
	for _, seg := range segs {
		m, ok := node.(map[string]any)
		if !ok {
			return nil, false
		}
		node, ok = m[seg]
		if !ok {
			return nil, false
		}
	}
	return node, true
}

// parentOf returns the map holding the last path segment, creating
// intermediate nodes when create is set.
func (s *MemoryStore) parentOf(segs []string, create bool) map[string]any {
	node := s.root
	for _, seg := range segs[:len(segs)-1] {
		child, ok := node[seg].(map[string]any)
		if !ok {
			if !create {
				return nil
			}
			child = make(map[string]any)
			node[seg] = child
		}
		node = child
	}
	return node
}

func segments(path string) []string {
	return strings.Split(strings.Trim(path, "/"), "/")
}
