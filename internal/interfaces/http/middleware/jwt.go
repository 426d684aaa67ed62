package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	identityapp "github.com/alfred/backend/internal/application/identity"
	"github.com/alfred/backend/internal/domain/identity"
	"github.com/alfred/backend/internal/domain/shared"
	"github.com/alfred/backend/internal/infrastructure/auth"
	"github.com/alfred/backend/internal/infrastructure/logger"
	"github.com/alfred/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// JWT context keys
const (
	JWTClaimsKey  = "jwt_claims"
	UserIDKey     = "user_id"
	UserPlanKey   = "user_plan"
	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
)

// UserResolver maps verified token claims to a local user, creating it on first use
type UserResolver interface {
	Resolve(ctx context.Context, claims identityapp.ClaimsInput) (*identity.User, error)
}

// JWTMiddlewareConfig holds configuration for JWT middleware
type JWTMiddlewareConfig struct {
	// JWTService is required for token validation
	JWTService *auth.JWTService
	// Users resolves the caller; without it only the claims are stored
	Users UserResolver
	// SkipPaths are paths that don't require authentication
	SkipPaths []string
	// SkipPathPrefixes are path prefixes that don't require authentication
	SkipPathPrefixes []string
	Logger           *zap.Logger
}

// DefaultJWTConfig returns default JWT middleware configuration
func DefaultJWTConfig(jwtService *auth.JWTService, users UserResolver) JWTMiddlewareConfig {
	return JWTMiddlewareConfig{
		JWTService: jwtService,
		Users:      users,
		SkipPaths: []string{
			"/health",
			"/metrics",
			"/api/v1/health",
			"/api/v1/seo/robots",
		},
		SkipPathPrefixes: []string{
			"/swagger",
		},
	}
}

// JWTAuthMiddleware creates JWT authentication middleware
func JWTAuthMiddleware(jwtService *auth.JWTService, users UserResolver) gin.HandlerFunc {
	return JWTAuthMiddlewareWithConfig(DefaultJWTConfig(jwtService, users))
}

// JWTAuthMiddlewareWithConfig validates the bearer token, resolves the caller
// and stores both on the context
func JWTAuthMiddlewareWithConfig(cfg JWTMiddlewareConfig) gin.HandlerFunc {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, skipPath := range cfg.SkipPaths {
			if path == skipPath {
				c.Next()
				return
			}
		}
		for _, prefix := range cfg.SkipPathPrefixes {
			if strings.HasPrefix(path, prefix) {
				c.Next()
				return
			}
		}

		authHeader := c.GetHeader(AuthHeaderKey)
		if authHeader == "" {
			abortUnauthorized(c, log, auth.ErrInvalidToken, "Missing authorization header")
			return
		}
		if !strings.HasPrefix(authHeader, BearerPrefix) {
			abortUnauthorized(c, log, auth.ErrInvalidToken, "Invalid authorization header format")
			return
		}
		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, BearerPrefix))
		if tokenString == "" {
			abortUnauthorized(c, log, auth.ErrInvalidToken, "Missing token")
			return
		}

		claims, err := cfg.JWTService.ValidateAccessToken(tokenString)
		if err != nil {
			abortUnauthorized(c, log, err, "Token validation failed")
			return
		}
		c.Set(JWTClaimsKey, claims)

		if cfg.Users != nil {
			user, err := cfg.Users.Resolve(c.Request.Context(), identityapp.ClaimsInput{
				Subject: claims.Subject,
				Email:   claims.Email,
				Name:    claims.Name,
				Picture: claims.Picture,
			})
			if err != nil {
				// a domain error means the claims themselves were rejected
				var domainErr *shared.DomainError
				if errors.As(err, &domainErr) {
					abortUnauthorized(c, log, auth.ErrInvalidClaims, err.Error())
					return
				}
				logger.Enrich(c.Request.Context(), log).Error("Failed to resolve user", zap.Error(err))
				c.AbortWithStatusJSON(http.StatusInternalServerError, dto.NewErrorResponseWithRequestID(
					dto.ErrCodeInternal, "An unexpected error occurred", GetRequestID(c)))
				return
			}
			c.Set(UserIDKey, user.ID.String())
			c.Set(UserPlanKey, user.EffectivePlan())
			c.Request = c.Request.WithContext(logger.WithUserID(c.Request.Context(), user.ID.String()))
		}

		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, log *zap.Logger, err error, message string) {
	log.Debug("JWT authentication failed",
		zap.Error(err),
		zap.String("message", message),
		zap.String("path", c.Request.URL.Path),
	)

	code := dto.ErrCodeUnauthorized
	msg := "Authentication required"
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		code, msg = dto.ErrCodeTokenExpired, "Token has expired"
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrTokenNotYetValid):
		code, msg = dto.ErrCodeTokenInvalid, "Invalid token"
	case errors.Is(err, auth.ErrInvalidClaims):
		code, msg = dto.ErrCodeTokenInvalid, "Token claims are not accepted"
	}
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponseWithRequestID(code, msg, GetRequestID(c)))
}

// GetJWTClaims retrieves JWT claims from gin.Context
func GetJWTClaims(c *gin.Context) *auth.Claims {
	if claims, exists := c.Get(JWTClaimsKey); exists {
		if jwtClaims, ok := claims.(*auth.Claims); ok {
			return jwtClaims
		}
	}
	return nil
}

// GetUserID returns the resolved caller id, or uuid.Nil
func GetUserID(c *gin.Context) uuid.UUID {
	id, err := uuid.Parse(c.GetString(UserIDKey))
	if err != nil {
		return uuid.Nil
	}
	return id
}
