// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package session provides a process-scoped session store addressed by a
// signed session-id cookie. Session data does not survive a restart.
package session

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
	"github.com/labstack/echo/v4"
)

// UserIDKey is the bag key holding the authenticated user's id.
const UserIDKey = "user_id"

// ContextKey is the echo context key under which the session id is stored.
const ContextKey = "session_id"

const cookieValueName = "sid"

// Manager issues signed session-id cookies and keeps one key-value bag per
// session in memory.
type Manager struct { //nolint:govet // fieldalignment: readability over optimization
	codec      *securecookie.SecureCookie
	cookieName string
	secure     bool
	ttl        time.Duration
	now        func() time.Time

	mu   sync.Mutex
	bags map[string]*bag
}

type bag struct {
	values    map[string]string
	expiresAt time.Time
}

// NewManager creates a session manager. An empty hashKey generates a random
// one, which invalidates existing cookies on restart.
func NewManager(cookieName string, hashKey []byte, ttl time.Duration, secure bool) *Manager {
	if len(hashKey) == 0 {
		hashKey = securecookie.GenerateRandomKey(32)
		if hashKey == nil {
			// crypto/rand failing is unrecoverable at startup.
			panic("session: cannot generate hash key")
		}
	}
	if cookieName == "" {
		cookieName = "session"
	}

	return &Manager{
		codec:      securecookie.New(hashKey, nil),
		cookieName: cookieName,
		secure:     secure,
		ttl:        ttl,
		now:        time.Now,
		bags:       make(map[string]*bag),
	}
}

// Middleware ensures every request carries a valid session id and stores it
// in the echo context.
func (m *Manager) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sid := ""
			if cookie, err := c.Cookie(m.cookieName); err == nil {
				sid, _ = m.decode(cookie.Value)
			}
			if sid == "" {
				var err error
				sid, err = m.issue(c)
				if err != nil {
					return err
				}
			}
			c.Set(ContextKey, sid)
			return next(c)
		}
	}
}

// SID returns the session id attached to the request, or "" outside the
// session middleware.
func SID(c echo.Context) string {
	if sid, ok := c.Get(ContextKey).(string); ok {
		return sid
	}
	return ""
}

// Get returns the value stored under key for the session.
func (m *Manager) Get(sid, key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.liveBag(sid)
	if !ok {
		return "", false
	}
	value, ok := b.values[key]
	return value, ok
}

// Set stores value under key for the session, extending its lifetime.
func (m *Manager) Set(sid, key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.liveBag(sid)
	if !ok {
		b = &bag{values: make(map[string]string)}
		m.bags[sid] = b
	}
	b.values[key] = value
	b.expiresAt = m.now().Add(m.ttl)
	m.sweep()
}

// Delete removes a single key from the session bag.
func (m *Manager) Delete(sid, key string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if b, ok := m.liveBag(sid); ok {
		delete(b.values, key)
	}
}

// Clear drops the whole session bag.
func (m *Manager) Clear(sid string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.bags, sid)
}

// issue creates a fresh session id and sets its cookie on the response.
func (m *Manager) issue(c echo.Context) (string, error) {
	sid := uuid.NewString()
	encoded, err := m.codec.Encode(cookieValueName, sid)
	if err != nil {
		return "", err
	}

	c.SetCookie(&http.Cookie{
		Name:     m.cookieName,
		Value:    encoded,
		Path:     "/",
		MaxAge:   int(m.ttl.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return sid, nil
}

// decode extracts the session id from an encoded cookie value.
func (m *Manager) decode(value string) (string, error) {
	var sid string
	if err := m.codec.Decode(cookieValueName, value, &sid); err != nil {
		return "", err
	}
	return sid, nil
}

// liveBag returns the bag for sid if it has not expired. Caller holds mu.
func (m *Manager) liveBag(sid string) (*bag, bool) {
	b, ok := m.bags[sid]
	if !ok {
		return nil, false
	}
	if m.now().After(b.expiresAt) {
		delete(m.bags, sid)
		return nil, false
	}
	return b, true
}

// sweep drops expired bags. Caller holds mu.
func (m *Manager) sweep() {
	now := m.now()
	for sid, b := range m.bags {
		if now.After(b.expiresAt) {
			delete(m.bags, sid)
		}
	}
}

// EncodeSID encodes a session id the way the cookie does. Test helper.
func (m *Manager) EncodeSID(sid string) (string, error) {
	return m.codec.Encode(cookieValueName, sid)
}

// CookieName returns the configured cookie name.
func (m *Manager) CookieName() string {
	return m.cookieName
}

// SetClock replaces the manager's clock. Test helper.
func (m *Manager) SetClock(now func() time.Time) {
	m.now = now
}
