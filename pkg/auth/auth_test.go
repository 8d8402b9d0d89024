package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthService(t *testing.T, password string) *Service {
	t.Helper()
	hash, err := HashPassword(password)
	require.NoError(t, err)
	return NewService("test-secret", hash, 1)
}

func TestLogin(t *testing.T) {
	svc := newAuthService(t, "hunter2")

	t.Run("correct password", func(t *testing.T) {
		token, err := svc.Login("hunter2")
		require.NoError(t, err)
		require.NotEmpty(t, token)

		claims, err := svc.ValidateToken(token)
		require.NoError(t, err)
		assert.Equal(t, "admin", claims.Role)
		assert.Equal(t, "admin", claims.Subject)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login("letmein")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("no hash configured", func(t *testing.T) {
		unconfigured := NewService("secret", "", 1)
		_, err := unconfigured.Login("anything")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestValidateTokenRejectsTampering(t *testing.T) {
	svc := newAuthService(t, "hunter2")
	token, err := svc.GenerateToken()
	require.NoError(t, err)

	t.Run("wrong secret", func(t *testing.T) {
		other := NewService("other-secret", "", 1)
		_, err := other.ValidateToken(token)
		assert.Error(t, err)
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := svc.ValidateToken("not.a.token")
		assert.Error(t, err)
	})
}

func TestMiddleware(t *testing.T) {
	svc := newAuthService(t, "hunter2")
	e := echo.New()

	handler := func(c echo.Context) error {
		claims := ClaimsFromContext(c)
		require.NotNil(t, claims)
		return c.String(http.StatusOK, "ok")
	}
	protected := Middleware(svc)(handler)

	t.Run("valid token passes", func(t *testing.T) {
		token, err := svc.GenerateToken()
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
		rec := httptest.NewRecorder()

		err = protected(e.NewContext(req, rec))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("missing header rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		err := protected(e.NewContext(req, httptest.NewRecorder()))

		var httpErr *echo.HTTPError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
	})

	t.Run("malformed header rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(echo.HeaderAuthorization, "Token abc")
		err := protected(e.NewContext(req, httptest.NewRecorder()))

		var httpErr *echo.HTTPError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
	})

	t.Run("invalid token rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(echo.HeaderAuthorization, "Bearer bogus")
		err := protected(e.NewContext(req, httptest.NewRecorder()))

		var httpErr *echo.HTTPError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
	})
}
