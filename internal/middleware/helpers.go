// internal/middleware/helpers.go
package middleware

import (
	"nichifier-service/internal/domain/auth"
	"nichifier-service/internal/pkg/jwt"

	"github.com/gin-gonic/gin"
)

// GetUser returns the authenticated user stored by Auth.
func GetUser(c *gin.Context) (*auth.User, bool) {
	value, exists := c.Get(ctxUserKey)
	if !exists {
		return nil, false
	}
	user, ok := value.(*auth.User)
	return user, ok && user != nil
}

// MustGetUser gets the user from context or panics
func MustGetUser(c *gin.Context) *auth.User {
	user, ok := GetUser(c)
	if !ok {
		panic("user not found in context")
	}
	return user
}

// GetClaims returns the verified token claims.
func GetClaims(c *gin.Context) (*jwt.Claims, bool) {
	value, exists := c.Get(ctxClaimsKey)
	if !exists {
		return nil, false
	}
	claims, ok := value.(*jwt.Claims)
	return claims, ok && claims != nil
}

// MustGetClaims gets the claims from context or panics
func MustGetClaims(c *gin.Context) *jwt.Claims {
	claims, ok := GetClaims(c)
	if !ok {
		panic("claims not found in context")
	}
	return claims
}

// IsAdmin checks if user is an admin
func IsAdmin(c *gin.Context) bool {
	user, ok := GetUser(c)
	return ok && user.Role == auth.RoleAdmin
}
