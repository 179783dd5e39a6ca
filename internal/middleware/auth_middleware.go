package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/engageportal/internal/app/models"
	"github.com/yigit/engageportal/internal/app/models/dto"
	"github.com/yigit/engageportal/internal/pkg/apperrors"
	"github.com/yigit/engageportal/internal/pkg/auth"
)

// Context keys set by JWTAuth
const (
	ContextActorKey  = "actor"
	ContextUserIDKey = "userID"
)

// AuthMiddleware for authentication and authorization
type AuthMiddleware struct {
	jwtService *auth.JWTService
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(jwtService *auth.JWTService) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtService,
	}
}

// JWTAuth middleware for JWT token validation. Browsers cannot set headers on a
// websocket handshake, so the token query parameter is accepted as well.
func (m *AuthMiddleware) JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			authHeader = c.Query("token")
		}

		if authHeader == "" {
			abortUnauthorized(c, dto.ErrorCodeUnauthorized, "Authorization header missing")
			return
		}

		tokenString, err := auth.ExtractBearerToken(authHeader)
		if err != nil {
			abortUnauthorized(c, dto.ErrorCodeUnauthorized, "Invalid token format")
			return
		}

		claims, err := m.jwtService.ValidateAndExtractClaims(tokenString)
		if err != nil {
			errorCode := dto.ErrorCodeInvalidToken
			details := "Invalid token"
			if errors.Is(err, auth.ErrExpiredToken) {
				errorCode = dto.ErrorCodeExpiredToken
				details = "Token has expired"
			}
			abortUnauthorized(c, errorCode, details)
			return
		}

		actor := claims.Actor(tokenString)
		c.Set(ContextActorKey, actor)
		c.Set(ContextUserIDKey, actor.UserID)

		c.Next()
	}
}

// RoleRequired middleware to check the actor holds one of roles
func (m *AuthMiddleware) RoleRequired(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := ActorFromContext(c)
		if !ok {
			abortUnauthorized(c, dto.ErrorCodeUnauthorized, "User information not found")
			return
		}

		if !actor.HasRole(roles...) {
			HandleAPIError(c, apperrors.NewCustomError(apperrors.ErrPermissionDenied, "role check failed").
				WithStatusMsg("You don't have sufficient permissions for this operation").
				WithDetails(map[string]interface{}{"requiredRoles": roles}))
			return
		}

		c.Next()
	}
}

// ActorFromContext returns the actor stored by JWTAuth
func ActorFromContext(c *gin.Context) (*models.Actor, bool) {
	v, exists := c.Get(ContextActorKey)
	if !exists {
		return nil, false
	}
	actor, ok := v.(*models.Actor)
	return actor, ok && actor != nil
}

// abortUnauthorized writes a 401 and tells the browser to drop its cached auth state
func abortUnauthorized(c *gin.Context, code dto.ErrorCode, details string) {
	errorDetail := dto.NewErrorDetail(code, "Authentication required").WithDetails(details)
	c.Header("Clear-Site-Data", clearSiteData)
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
}
