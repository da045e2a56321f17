package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/milanhq/milan/internal/models"
)

type mockProfileRepo struct {
	findByTokenFn func(ctx context.Context, token string) (*models.Profile, error)
}

func (m *mockProfileRepo) Create(context.Context, *models.Profile) error { return nil }
func (m *mockProfileRepo) FindByID(context.Context, uuid.UUID) (*models.Profile, error) {
	return nil, gorm.ErrRecordNotFound
}
func (m *mockProfileRepo) FindByToken(ctx context.Context, token string) (*models.Profile, error) {
	return m.findByTokenFn(ctx, token)
}
func (m *mockProfileRepo) ConsumeDailyQuota(context.Context, *gorm.DB, uuid.UUID, string, int) (bool, error) {
	return true, nil
}

func okHandler(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}

func newContext(authorization string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authorization != "" {
		req.Header.Set(echo.HeaderAuthorization, authorization)
	}
	rec := httptest.NewRecorder()
	return echo.New().NewContext(req, rec), rec
}

func TestProfileAuth(t *testing.T) {
	profile := &models.Profile{ID: uuid.New(), APIToken: "tok-123"}
	repo := &mockProfileRepo{
		findByTokenFn: func(_ context.Context, token string) (*models.Profile, error) {
			if token == profile.APIToken {
				return profile, nil
			}
			return nil, gorm.ErrRecordNotFound
		},
	}

	mw := ProfileAuth(repo)

	t.Run("valid token", func(t *testing.T) {
		c, _ := newContext("Bearer tok-123")
		err := mw(func(c echo.Context) error {
			got := CurrentProfile(c)
			require.NotNil(t, got)
			assert.Equal(t, profile.ID, got.ID)
			return okHandler(c)
		})(c)
		assert.NoError(t, err)
	})

	t.Run("missing header", func(t *testing.T) {
		c, _ := newContext("")
		err := mw(okHandler)(c)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusUnauthorized, he.Code)
	})

	t.Run("unknown token", func(t *testing.T) {
		c, _ := newContext("Bearer wrong")
		err := mw(okHandler)(c)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusUnauthorized, he.Code)
	})

	t.Run("malformed scheme", func(t *testing.T) {
		c, _ := newContext("Basic tok-123")
		err := mw(okHandler)(c)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusUnauthorized, he.Code)
	})
}

func TestRequireAdmin(t *testing.T) {
	t.Run("admin passes", func(t *testing.T) {
		c, rec := newContext("")
		SetProfile(c, &models.Profile{ID: uuid.New(), IsAdmin: true})
		require.NoError(t, RequireAdmin(okHandler)(c))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("non-admin forbidden", func(t *testing.T) {
		c, _ := newContext("")
		SetProfile(c, &models.Profile{ID: uuid.New()})
		err := RequireAdmin(okHandler)(c)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusForbidden, he.Code)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		c, _ := newContext("")
		err := RequireAdmin(okHandler)(c)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusUnauthorized, he.Code)
	})
}

func TestCronAuth(t *testing.T) {
	mw := CronAuth("sweep-secret")

	t.Run("correct secret", func(t *testing.T) {
		c, rec := newContext("Bearer sweep-secret")
		require.NoError(t, mw(okHandler)(c))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("wrong secret", func(t *testing.T) {
		c, _ := newContext("Bearer guess")
		err := mw(okHandler)(c)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusUnauthorized, he.Code)
	})

	t.Run("missing header", func(t *testing.T) {
		c, _ := newContext("")
		err := mw(okHandler)(c)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, http.StatusUnauthorized, he.Code)
	})
}
