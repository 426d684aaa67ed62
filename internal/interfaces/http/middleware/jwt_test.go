package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	identityapp "github.com/alfred/backend/internal/application/identity"
	"github.com/alfred/backend/internal/domain/identity"
	"github.com/alfred/backend/internal/domain/shared"
	"github.com/alfred/backend/internal/infrastructure/auth"
	"github.com/alfred/backend/internal/infrastructure/config"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockUserResolver struct {
	mock.Mock
}

func (m *mockUserResolver) Resolve(ctx context.Context, claims identityapp.ClaimsInput) (*identity.User, error) {
	args := m.Called(ctx, claims)
	if u := args.Get(0); u != nil {
		return u.(*identity.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func newTestJWTService() *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret: "test-secret-key-at-least-32-chars",
		Issuer: "test-issuer",
	})
}

func issueTestToken(t *testing.T, svc *auth.JWTService, ttl time.Duration) string {
	t.Helper()
	token, err := svc.Issue(auth.IssueInput{
		Subject: "idp|123",
		Email:   "ada@example.com",
		Name:    "Ada",
		TTL:     ttl,
	})
	require.NoError(t, err)
	return token
}

func jwtRouter(svc *auth.JWTService, users UserResolver) *gin.Engine {
	router := gin.New()
	router.Use(RequestID())
	router.Use(JWTAuthMiddleware(svc, users))
	handler := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id": GetUserID(c).String(),
			"plan":    c.GetString(UserPlanKey),
		})
	}
	router.GET("/api/v1/me", handler)
	router.GET("/health", handler)
	router.GET("/swagger/index.html", handler)
	return router
}

func getWithToken(router *gin.Engine, path, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if header != "" {
		req.Header.Set(AuthHeaderKey, header)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestJWTAuthMiddleware(t *testing.T) {
	svc := newTestJWTService()

	t.Run("resolves the caller from a valid token", func(t *testing.T) {
		user, err := identity.NewUserFromClaims("idp|123", "ada@example.com", "Ada")
		require.NoError(t, err)

		users := new(mockUserResolver)
		users.On("Resolve", mock.Anything, identityapp.ClaimsInput{
			Subject: "idp|123",
			Email:   "ada@example.com",
			Name:    "Ada",
		}).Return(user, nil).Once()

		w := getWithToken(jwtRouter(svc, users), "/api/v1/me", BearerPrefix+issueTestToken(t, svc, time.Hour))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), user.ID.String())
		assert.Contains(t, w.Body.String(), `"plan":"free"`)
		users.AssertExpectations(t)
	})

	t.Run("missing header", func(t *testing.T) {
		w := getWithToken(jwtRouter(svc, nil), "/api/v1/me", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "ERR_TOKEN_INVALID")
	})

	t.Run("wrong scheme", func(t *testing.T) {
		w := getWithToken(jwtRouter(svc, nil), "/api/v1/me", "Basic abc")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("expired token", func(t *testing.T) {
		w := getWithToken(jwtRouter(svc, nil), "/api/v1/me", BearerPrefix+issueTestToken(t, svc, -time.Minute))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "ERR_TOKEN_EXPIRED")
	})

	t.Run("token signed with another secret", func(t *testing.T) {
		other := auth.NewJWTService(config.JWTConfig{Secret: "another-secret-key-of-32-characters", Issuer: "test-issuer"})
		w := getWithToken(jwtRouter(svc, nil), "/api/v1/me", BearerPrefix+issueTestToken(t, other, time.Hour))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "ERR_TOKEN_INVALID")
	})

	t.Run("rejected claims are unauthorized", func(t *testing.T) {
		users := new(mockUserResolver)
		users.On("Resolve", mock.Anything, mock.Anything).
			Return(nil, shared.NewDomainError("INVALID_EMAIL", "Email is invalid")).Once()

		w := getWithToken(jwtRouter(svc, users), "/api/v1/me", BearerPrefix+issueTestToken(t, svc, time.Hour))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("resolver failure is an internal error", func(t *testing.T) {
		users := new(mockUserResolver)
		users.On("Resolve", mock.Anything, mock.Anything).Return(nil, errors.New("db down")).Once()

		w := getWithToken(jwtRouter(svc, users), "/api/v1/me", BearerPrefix+issueTestToken(t, svc, time.Hour))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, w.Body.String(), "ERR_INTERNAL")
		assert.NotContains(t, w.Body.String(), "db down")
	})

	t.Run("skip paths need no token", func(t *testing.T) {
		router := jwtRouter(svc, nil)
		assert.Equal(t, http.StatusOK, getWithToken(router, "/health", "").Code)
		assert.Equal(t, http.StatusOK, getWithToken(router, "/swagger/index.html", "").Code)
	})
}

func TestGetUserID_Missing(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Equal(t, "00000000-0000-0000-0000-000000000000", GetUserID(c).String())
	assert.Nil(t, GetJWTClaims(c))
}
