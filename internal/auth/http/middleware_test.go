package http

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	authDomain "github.com/medvault/medvault/internal/auth/domain"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	m.Run()
}

// mockTokenUseCase is a mock implementation of TokenUseCase for testing.
type mockTokenUseCase struct {
	mock.Mock
}

func (m *mockTokenUseCase) Login(
	ctx context.Context,
	input *authDomain.LoginInput,
) (*authDomain.LoginOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.LoginOutput), args.Error(1)
}

func (m *mockTokenUseCase) Authenticate(ctx context.Context, tokenHash string) (*authDomain.User, error) {
	args := m.Called(ctx, tokenHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authDomain.User), args.Error(1)
}

func (m *mockTokenUseCase) Logout(ctx context.Context, tokenHash string) error {
	args := m.Called(ctx, tokenHash)
	return args.Error(0)
}

// mockTokenService is a mock implementation of TokenService for testing.
type mockTokenService struct {
	mock.Mock
}

func (m *mockTokenService) GenerateToken() (string, string, error) {
	args := m.Called()
	return args.String(0), args.String(1), args.Error(2)
}

func (m *mockTokenService) HashToken(plainToken string) string {
	args := m.Called(plainToken)
	return args.String(0)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func performRequest(router *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuthenticationMiddleware(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		tokenUseCase := &mockTokenUseCase{}
		tokenService := &mockTokenService{}

		user := &authDomain.User{
			ID:       uuid.Must(uuid.NewV7()),
			Email:    "jane@example.com",
			Role:     authDomain.RolePatient,
			IsActive: true,
		}
		tokenService.On("HashToken", "plain-token").Return("token-hash").Once()
		tokenUseCase.On("Authenticate", mock.Anything, "token-hash").Return(user, nil).Once()

		router := gin.New()
		router.Use(AuthenticationMiddleware(tokenUseCase, tokenService, testLogger()))
		router.GET("/protected", func(c *gin.Context) {
			got, ok := GetUser(c.Request.Context())
			assert.True(t, ok)
			assert.Equal(t, user.ID, got.ID)
			c.Status(http.StatusOK)
		})

		w := performRequest(router, "Bearer plain-token")
		assert.Equal(t, http.StatusOK, w.Code)
		tokenUseCase.AssertExpectations(t)
	})

	t.Run("CaseInsensitiveBearer", func(t *testing.T) {
		tokenUseCase := &mockTokenUseCase{}
		tokenService := &mockTokenService{}

		user := &authDomain.User{ID: uuid.Must(uuid.NewV7()), Role: authDomain.RoleAdmin, IsActive: true}
		tokenService.On("HashToken", "plain-token").Return("token-hash").Once()
		tokenUseCase.On("Authenticate", mock.Anything, "token-hash").Return(user, nil).Once()

		router := gin.New()
		router.Use(AuthenticationMiddleware(tokenUseCase, tokenService, testLogger()))
		router.GET("/protected", func(c *gin.Context) { c.Status(http.StatusOK) })

		w := performRequest(router, "bearer plain-token")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("MissingHeader", func(t *testing.T) {
		router := gin.New()
		router.Use(AuthenticationMiddleware(&mockTokenUseCase{}, &mockTokenService{}, testLogger()))
		router.GET("/protected", func(c *gin.Context) { c.Status(http.StatusOK) })

		w := performRequest(router, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("MalformedHeader", func(t *testing.T) {
		router := gin.New()
		router.Use(AuthenticationMiddleware(&mockTokenUseCase{}, &mockTokenService{}, testLogger()))
		router.GET("/protected", func(c *gin.Context) { c.Status(http.StatusOK) })

		w := performRequest(router, "Basic dXNlcjpwYXNz")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("InvalidToken", func(t *testing.T) {
		tokenUseCase := &mockTokenUseCase{}
		tokenService := &mockTokenService{}

		tokenService.On("HashToken", "bad-token").Return("bad-hash").Once()
		tokenUseCase.On("Authenticate", mock.Anything, "bad-hash").
			Return(nil, authDomain.ErrInvalidCredentials).
			Once()

		router := gin.New()
		router.Use(AuthenticationMiddleware(tokenUseCase, tokenService, testLogger()))
		router.GET("/protected", func(c *gin.Context) { c.Status(http.StatusOK) })

		w := performRequest(router, "Bearer bad-token")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("InactiveUser", func(t *testing.T) {
		tokenUseCase := &mockTokenUseCase{}
		tokenService := &mockTokenService{}

		tokenService.On("HashToken", "plain-token").Return("token-hash").Once()
		tokenUseCase.On("Authenticate", mock.Anything, "token-hash").
			Return(nil, authDomain.ErrUserInactive).
			Once()

		router := gin.New()
		router.Use(AuthenticationMiddleware(tokenUseCase, tokenService, testLogger()))
		router.GET("/protected", func(c *gin.Context) { c.Status(http.StatusOK) })

		w := performRequest(router, "Bearer plain-token")
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestRequireRoleMiddleware(t *testing.T) {
	setupRouter := func(user *authDomain.User, roles ...authDomain.Role) *gin.Engine {
		router := gin.New()
		router.Use(func(c *gin.Context) {
			if user != nil {
				c.Request = c.Request.WithContext(WithUser(c.Request.Context(), user))
			}
			c.Next()
		})
		router.Use(RequireRoleMiddleware(testLogger(), roles...))
		router.GET("/protected", func(c *gin.Context) { c.Status(http.StatusOK) })
		return router
	}

	t.Run("AllowedRole", func(t *testing.T) {
		user := &authDomain.User{ID: uuid.Must(uuid.NewV7()), Role: authDomain.RoleDoctor}
		router := setupRouter(user, authDomain.RoleDoctor, authDomain.RoleAdmin)

		w := performRequest(router, "")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("ForbiddenRole", func(t *testing.T) {
		user := &authDomain.User{ID: uuid.Must(uuid.NewV7()), Role: authDomain.RolePatient}
		router := setupRouter(user, authDomain.RoleDoctor, authDomain.RoleAdmin)

		w := performRequest(router, "")
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("NoAuthenticatedUser", func(t *testing.T) {
		router := setupRouter(nil, authDomain.RoleAdmin)

		w := performRequest(router, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
