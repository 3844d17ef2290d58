// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/paperdeck/wallpaper-admin/internal/config"
	"github.com/paperdeck/wallpaper-admin/internal/handlers"
	"github.com/paperdeck/wallpaper-admin/internal/i18n"
	"github.com/paperdeck/wallpaper-admin/internal/repository"
	"github.com/paperdeck/wallpaper-admin/internal/services/session"
)

func setupMiddleware(e *echo.Echo, cfg *config.Config, sessions *session.Manager, repo *repository.Repository) {
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(requestLogger())
	e.Use(middleware.Secure())
	e.Use(middleware.BodyLimit(fmt.Sprintf("%dM", cfg.Server.MaxBodySize)))
	e.Use(i18nMiddleware())
	e.Use(sessions.Middleware())
	e.Use(loadUser(sessions, repo))
}

// requestLogger returns middleware that logs requests using slog.
func requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:   true,
		LogURI:      true,
		LogMethod:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
			}

			if v.Error != nil {
				attrs = append(attrs, slog.String("error", v.Error.Error()))
				slog.LogAttrs(c.Request().Context(), slog.LevelError, "request", attrs...)
			} else {
				slog.LogAttrs(c.Request().Context(), slog.LevelInfo, "request", attrs...)
			}

			return nil
		},
	})
}

// i18nMiddleware sets the locale based on Accept-Language header.
func i18nMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			acceptLang := c.Request().Header.Get("Accept-Language")
			lang := i18n.MatchLanguage(acceptLang)
			ctx := i18n.WithLocale(c.Request().Context(), lang)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// loadUser resolves the session's user id and attaches the account to the
// echo context. A stale id, for example after the account was deleted, drops
// the session.
func loadUser(sessions *session.Manager, repo *repository.Repository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sid := session.SID(c)
			value, ok := sessions.Get(sid, session.UserIDKey)
			if !ok {
				return next(c)
			}

			userID, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				sessions.Clear(sid)
				return next(c)
			}

			user, err := repo.GetUserByID(c.Request().Context(), userID)
			if err != nil {
				sessions.Clear(sid)
				return next(c)
			}

			c.Set(handlers.UserContextKey, user)
			return next(c)
		}
	}
}

// requireAuth rejects requests that carry no authenticated user.
func requireAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if handlers.CurrentUser(c) == nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{
					"message": http.StatusText(http.StatusUnauthorized),
				})
			}
			return next(c)
		}
	}
}
