// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// RTDBStore talks to a Firebase-style realtime database over its JSON REST
// surface. A node at "wallpapers/Categories/sunsets" is addressed as
// "{base}/wallpapers/Categories/sunsets.json".
type RTDBStore struct {
	baseURL   string
	authToken string
	client    *http.Client
}

// NewRTDBStore creates a store client for the given database URL. The auth
// token is optional and passed as the "auth" query parameter when set.
func NewRTDBStore(baseURL, authToken string) *RTDBStore {
	return &RTDBStore{
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		authToken: authToken,
		client:    &http.Client{Timeout: 10 * time.Second},
	}
}

// Get fetches the node at path. An empty node comes back as nil.
func (s *RTDBStore) Get(ctx context.Context, path string) (json.RawMessage, error) {
	body, err := s.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	// RTDB encodes an absent node as the JSON literal null.
	if len(body) == 0 || string(body) == "null" {
		return nil, nil
	}
	return json.RawMessage(body), nil
}

// Set writes value to the node at path, replacing any existing data.
func (s *RTDBStore) Set(ctx context.Context, path string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding value for %s: %w", path, err)
	}
	_, err = s.do(ctx, http.MethodPut, path, bytes.NewReader(payload))
	return err
}

// Delete removes the node at path.
func (s *RTDBStore) Delete(ctx context.Context, path string) error {
	_, err := s.do(ctx, http.MethodDelete, path, nil)
	return err
}

func (s *RTDBStore) do(ctx context.Context, method, path string, body io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, s.nodeURL(path), body)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %w", ErrUnavailable, method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response for %s: %w", ErrUnavailable, path, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s %s: status %d", ErrUnavailable, method, path, resp.StatusCode)
	}

	return data, nil
}

func (s *RTDBStore) nodeURL(path string) string {
	u := s.baseURL + "/" + strings.Trim(path, "/") + ".json"
	if s.authToken != "" {
		u += "?auth=" + url.QueryEscape(s.authToken)
	}
	return u
}
