package http

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	authDomain "github.com/medvault/medvault/internal/auth/domain"
	"github.com/medvault/medvault/internal/auth/http/dto"
	authService "github.com/medvault/medvault/internal/auth/service"
	authUseCase "github.com/medvault/medvault/internal/auth/usecase"
	"github.com/medvault/medvault/internal/httputil"
	customValidation "github.com/medvault/medvault/internal/validation"
)

// TokenHandler handles HTTP requests for login and logout.
type TokenHandler struct {
	tokenUseCase authUseCase.TokenUseCase
	tokenService authService.TokenService
	logger       *slog.Logger
}

// NewTokenHandler creates a new token handler with required dependencies.
func NewTokenHandler(
	tokenUseCase authUseCase.TokenUseCase,
	tokenService authService.TokenService,
	logger *slog.Logger,
) *TokenHandler {
	return &TokenHandler{
		tokenUseCase: tokenUseCase,
		tokenService: tokenService,
		logger:       logger,
	}
}

// LoginHandler authenticates a user and issues a bearer token.
// POST /v1/auth/login - No authentication required (this is the authentication endpoint).
// Returns 201 Created with the token and its expiration time.
func (h *TokenHandler) LoginHandler(c *gin.Context) {
	var req dto.LoginRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	output, err := h.tokenUseCase.Login(c.Request.Context(), &authDomain.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.LoginResponse{
		Token:     output.PlainToken,
		ExpiresAt: output.ExpiresAt,
	})
}

// LogoutHandler revokes the bearer token presented in the Authorization header.
// POST /v1/auth/logout - Requires authentication. Idempotent.
// Returns 204 No Content.
func (h *TokenHandler) LogoutHandler(c *gin.Context) {
	authHeader := c.GetHeader("Authorization")

	const bearerPrefix = "bearer "
	if len(authHeader) < len(bearerPrefix) ||
		!strings.EqualFold(authHeader[:len(bearerPrefix)], bearerPrefix) {
		// The authentication middleware already validated the header; treat a
		// missing token here as a no-op logout.
		c.Status(http.StatusNoContent)
		return
	}

	tokenHash := h.tokenService.HashToken(authHeader[len(bearerPrefix):])

	if err := h.tokenUseCase.Logout(c.Request.Context(), tokenHash); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

// MeHandler returns the authenticated user's profile.
// GET /v1/auth/me - Requires authentication.
func (h *TokenHandler) MeHandler(c *gin.Context) {
	user, ok := GetUser(c.Request.Context())
	if !ok || user == nil {
		httputil.HandleErrorGin(c, authDomain.ErrInvalidCredentials, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapUserToResponse(user))
}
