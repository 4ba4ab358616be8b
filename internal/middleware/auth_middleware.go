// internal/middleware/auth_middleware.go
package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"nichifier-service/internal/domain/auth"
	"nichifier-service/internal/pkg/jwt"
	"nichifier-service/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

const (
	ctxUserKey   = "user"
	ctxClaimsKey = "claims"
)

// Authenticator verifies a token and loads the user it belongs to.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*jwt.Claims, *auth.User, error)
}

type AuthMiddleware struct {
	authenticator Authenticator
	cookieName    string
}

func NewAuthMiddleware(authenticator Authenticator, cookieName string) *AuthMiddleware {
	return &AuthMiddleware{
		authenticator: authenticator,
		cookieName:    cookieName,
	}
}

// Auth is the base authentication middleware that validates JWT tokens
func (m *AuthMiddleware) Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := m.extractToken(c)
		if token == "" {
			response.Unauthorized(c, "missing authorization token")
			return
		}

		claims, user, err := m.authenticator.Authenticate(c.Request.Context(), token)
		if err != nil {
			response.FromError(c, "invalid or expired token", err)
			return
		}

		c.Set(ctxClaimsKey, claims)
		c.Set(ctxUserKey, user)
		c.Next()
	}
}

// RequireRole middleware that requires user to have at least one of the specified roles
// MUST be used after Auth() middleware
func (m *AuthMiddleware) RequireRole(roles ...auth.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := GetUser(c)
		if !ok {
			response.Forbidden(c, "authentication required")
			return
		}

		for _, role := range roles {
			if user.Role == role {
				c.Next()
				return
			}
		}

		err := errors.New("user does not have required role")
		response.Error(c, http.StatusForbidden, "insufficient permissions", err, map[string]interface{}{
			"required_roles": roles,
			"user_role":      user.Role,
		})
	}
}

// AdminOnly returns middlewares for admin-only routes (Auth + RequireRole)
func (m *AuthMiddleware) AdminOnly() []gin.HandlerFunc {
	return []gin.HandlerFunc{
		m.Auth(),
		m.RequireRole(auth.RoleAdmin),
	}
}

// CreatorOnly admits admins and niche admins.
func (m *AuthMiddleware) CreatorOnly() []gin.HandlerFunc {
	return []gin.HandlerFunc{
		m.Auth(),
		m.RequireRole(auth.RoleAdmin, auth.RoleNicheAdmin),
	}
}

// extractToken checks the Authorization header, then the auth cookie, then ?token=.
func (m *AuthMiddleware) extractToken(c *gin.Context) string {
	return ExtractToken(c, m.cookieName)
}

// ExtractToken is shared with the websocket handshake.
func ExtractToken(c *gin.Context, cookieName string) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return parts[1]
		}
	}

	if cookieName != "" {
		if cookie, err := c.Cookie(cookieName); err == nil && cookie != "" {
			return cookie
		}
	}

	return c.Query("token")
}
