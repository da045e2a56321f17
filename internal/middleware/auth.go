package middleware

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/milanhq/milan/internal/models"
	"github.com/milanhq/milan/internal/repository"
)

const profileContextKey = "profile"

// ProfileAuth resolves the bearer token to a profile and stores it on the
// request context. Login itself (OAuth) happens outside this service; the
// token is the session handle it hands us.
func ProfileAuth(profiles repository.ProfileRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := bearerToken(c)
			if token == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
			}

			profile, err := profiles.FindByToken(c.Request().Context(), token)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
				}
				return err
			}

			SetProfile(c, profile)
			return next(c)
		}
	}
}

// RequireAdmin gates admin-only routes. It assumes ProfileAuth ran first.
func RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		profile := CurrentProfile(c)
		if profile == nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
		}
		if !profile.IsAdmin {
			return echo.NewHTTPError(http.StatusForbidden, "admin capability required")
		}
		return next(c)
	}
}

// CronAuth guards the sweep endpoints with the scheduler's shared secret.
func CronAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := bearerToken(c)
			if token == "" || subtle.ConstantTimeCompare([]byte(token), []byte(secret)) != 1 {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid cron token")
			}
			return next(c)
		}
	}
}

func CurrentProfile(c echo.Context) *models.Profile {
	profile, _ := c.Get(profileContextKey).(*models.Profile)
	return profile
}

// SetProfile attaches a profile to the request context the same way
// ProfileAuth does.
func SetProfile(c echo.Context, profile *models.Profile) {
	c.Set(profileContextKey, profile)
}

func bearerToken(c echo.Context) string {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}
