package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sunroad/backend/internal/infrastructure/auth"
	"github.com/sunroad/backend/internal/interfaces/http/dto"
)

// Auth context keys
const (
	AuthClaimsKey  = "auth_claims"
	AuthUserIDKey  = "auth_user_id"
	AuthHeaderKey  = "Authorization"
	BearerPrefix   = "Bearer "
)

// RequireAuth creates JWT authentication middleware for the artist endpoints
func RequireAuth(jwtService *auth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader(AuthHeaderKey)
		if authHeader == "" {
			abortUnauthorized(c, dto.ErrCodeUnauthorized, "Missing authorization header")
			return
		}

		if !strings.HasPrefix(authHeader, BearerPrefix) {
			abortUnauthorized(c, dto.ErrCodeUnauthorized, "Invalid authorization header format")
			return
		}

		tokenString := strings.TrimPrefix(authHeader, BearerPrefix)
		if tokenString == "" {
			abortUnauthorized(c, dto.ErrCodeUnauthorized, "Missing token")
			return
		}

		claims, err := jwtService.ValidateAccessToken(tokenString)
		if err != nil {
			code := dto.ErrCodeUnauthorized
			if errors.Is(err, auth.ErrExpiredToken) {
				code = dto.ErrCodeTokenExpired
			}
			abortUnauthorized(c, code, "Token validation failed")
			return
		}

		userID, err := claims.AuthUserID()
		if err != nil {
			abortUnauthorized(c, dto.ErrCodeUnauthorized, "Token carries no valid user ID")
			return
		}

		c.Set(AuthClaimsKey, claims)
		c.Set(AuthUserIDKey, userID)
		c.Next()
	}
}

// GetAuthUserID extracts the authenticated user's ID from the context
func GetAuthUserID(c *gin.Context) (uuid.UUID, bool) {
	value, exists := c.Get(AuthUserIDKey)
	if !exists {
		return uuid.Nil, false
	}
	userID, ok := value.(uuid.UUID)
	return userID, ok
}

// GetAuthClaims extracts the validated token claims from the context
func GetAuthClaims(c *gin.Context) (*auth.Claims, bool) {
	value, exists := c.Get(AuthClaimsKey)
	if !exists {
		return nil, false
	}
	claims, ok := value.(*auth.Claims)
	return claims, ok
}

func abortUnauthorized(c *gin.Context, code, message string) {
	requestID := c.GetString("request_id")
	c.AbortWithStatusJSON(http.StatusUnauthorized,
		dto.NewErrorResponseWithRequestID(code, message, requestID))
}
