package http

import (
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"

	authDomain "github.com/medvault/medvault/internal/auth/domain"
	authService "github.com/medvault/medvault/internal/auth/service"
	authUseCase "github.com/medvault/medvault/internal/auth/usecase"
	auditUseCase "github.com/medvault/medvault/internal/audit/usecase"
	apperrors "github.com/medvault/medvault/internal/errors"
	"github.com/medvault/medvault/internal/httputil"
)

// AuthenticationMiddleware provides authentication via Bearer token in the
// Authorization header.
//
// The middleware:
// 1. Extracts the Bearer token from the Authorization header (case-insensitive)
// 2. Hashes the token using tokenService.HashToken()
// 3. Validates the token using tokenUseCase.Authenticate()
// 4. Stores the authenticated user in the request context
// 5. Allows downstream handlers to access the user via GetUser()
//
// Error handling:
//   - Missing or malformed Authorization header -> 401 Unauthorized
//   - Invalid/expired/revoked token -> 401 Unauthorized
//   - Inactive user -> 403 Forbidden
func AuthenticationMiddleware(
	tokenUseCase authUseCase.TokenUseCase,
	tokenService authService.TokenService,
	logger *slog.Logger,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			logger.Debug("authentication failed: missing authorization header")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		// Parse Bearer token (case-insensitive)
		const bearerPrefix = "bearer "
		if len(authHeader) < len(bearerPrefix) ||
			!strings.EqualFold(authHeader[:len(bearerPrefix)], bearerPrefix) {
			logger.Debug("authentication failed: malformed authorization header")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		plainToken := authHeader[len(bearerPrefix):]
		if plainToken == "" {
			logger.Debug("authentication failed: empty bearer token")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		tokenHash := tokenService.HashToken(plainToken)

		user, err := tokenUseCase.Authenticate(c.Request.Context(), tokenHash)
		if err != nil {
			logger.Debug("authentication failed",
				slog.String("error", err.Error()))
			httputil.HandleErrorGin(c, err, logger)
			c.Abort()
			return
		}

		// Store the authenticated user for handlers and audit attribution
		ctx := WithUser(c.Request.Context(), user)
		ctx = auditUseCase.WithActorID(ctx, user.ID)
		c.Request = c.Request.WithContext(ctx)

		logger.Debug("authentication successful",
			slog.String("user_id", user.ID.String()),
			slog.String("role", string(user.Role)))

		c.Next()
	}
}

// RequireRoleMiddleware provides role-based authorization for authenticated users.
//
// MUST be used after AuthenticationMiddleware. Returns 403 Forbidden when the
// authenticated user's role is not in the allowed set, and 401 Unauthorized
// if no authenticated user is found in context.
func RequireRoleMiddleware(logger *slog.Logger, roles ...authDomain.Role) gin.HandlerFunc {
	allowed := make(map[authDomain.Role]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(c *gin.Context) {
		user, ok := GetUser(c.Request.Context())
		if !ok || user == nil {
			logger.Error("authorization middleware: no authenticated user in context")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		if _, ok := allowed[user.Role]; !ok {
			logger.Debug("authorization failed",
				slog.String("user_id", user.ID.String()),
				slog.String("role", string(user.Role)),
				slog.String("path", c.Request.URL.Path))
			httputil.HandleErrorGin(c, apperrors.ErrForbidden, logger)
			c.Abort()
			return
		}

		c.Next()
	}
}
