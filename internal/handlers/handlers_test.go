// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paperdeck/wallpaper-admin/internal/catalog"
	"github.com/paperdeck/wallpaper-admin/internal/handlers"
	"github.com/paperdeck/wallpaper-admin/internal/i18n"
	"github.com/paperdeck/wallpaper-admin/internal/models"
	"github.com/paperdeck/wallpaper-admin/internal/repository"
	"github.com/paperdeck/wallpaper-admin/internal/services/auth"
	"github.com/paperdeck/wallpaper-admin/internal/services/otp"
	"github.com/paperdeck/wallpaper-admin/internal/services/recovery"
	"github.com/paperdeck/wallpaper-admin/internal/services/session"
	"github.com/paperdeck/wallpaper-admin/internal/testutil"
)

// fakeSender records sent messages and optionally fails.
type fakeSender struct {
	sent []string // recipient addresses
	err  error
}

func (f *fakeSender) Send(_ context.Context, to, _, _ string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, to)
	return nil
}

type fixture struct {
	h        *handlers.Handlers
	e        *echo.Echo
	repo     *repository.Repository
	auth     *auth.Service
	sessions *session.Manager
	sender   *fakeSender
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	require.NoError(t, i18n.Init())

	_, repo := testutil.NewTestDB(t)
	authSvc := auth.NewService(repo)
	sender := &fakeSender{}
	sessions := session.NewManager("session", []byte("0123456789abcdef0123456789abcdef"), time.Hour, false)

	now := time.Now()
	engine := otp.NewEngineWithClock(5*time.Minute, func() time.Time { return now })
	rec := recovery.NewService(repo, engine, sender, sessions, authSvc)
	cat := catalog.NewService(catalog.NewMemoryStore())

	return &fixture{
		h:        handlers.New(repo, cat, authSvc, rec, sessions),
		e:        echo.New(),
		repo:     repo,
		auth:     authSvc,
		sessions: sessions,
		sender:   sender,
	}
}

// request builds an echo context carrying a session id and, if user is not
// nil, an authenticated user. Params are alternating name/value pairs.
func (f *fixture) request(method, path, body, sid string, user *models.User, params ...string) (echo.Context, *httptest.ResponseRecorder) {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	c, rec := testutil.NewEchoContext(f.e, method, path, reader)
	c.Set(session.ContextKey, sid)
	if user != nil {
		c.Set(handlers.UserContextKey, user)
	}
	if len(params) > 0 {
		names := make([]string, 0, len(params)/2)
		values := make([]string, 0, len(params)/2)
		for i := 0; i+1 < len(params); i += 2 {
			names = append(names, params[i])
			values = append(values, params[i+1])
		}
		c.SetParamNames(names...)
		c.SetParamValues(values...)
	}
	return c, rec
}

// decode unmarshals a JSON response body.
func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var payload map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	return payload
}

func TestHealth(t *testing.T) {
	f := newFixture(t)

	c, rec := f.request("GET", "/health", "", "sid-1", nil)
	require.NoError(t, f.h.Health(c))

	assert.Equal(t, 200, rec.Code)
	assert.Equal(t, "ok", decode(t, rec)["status"])
}

func TestDashboard(t *testing.T) {
	f := newFixture(t)
	editor := testutil.NewTestUser(t, f.repo, "editor", models.RoleEditor)

	c, _ := f.request("POST", "/categories", `{"id":"cat-1","name":"Cars","cover_url":"https://img/cover.png"}`, "sid-1", editor)
	require.NoError(t, f.h.AddCategory(c))

	c, rec := f.request("GET", "/dashboard", "", "sid-1", editor)
	require.NoError(t, f.h.Dashboard(c))

	require.Equal(t, 200, rec.Code)
	payload := decode(t, rec)
	assert.Len(t, payload["categories"], 1)
	assert.Len(t, payload["static_names"], len(catalog.StaticCategories))

	static, ok := payload["static_categories"].(map[string]any)
	require.True(t, ok)
	assert.Len(t, static, len(catalog.StaticCategories))
}
