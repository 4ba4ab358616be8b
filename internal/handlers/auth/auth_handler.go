// internal/handlers/auth/auth_handler.go
package auth

import (
	"net/http"
	"time"

	"nichifier-service/internal/domain/auth"
	"nichifier-service/internal/middleware"
	"nichifier-service/internal/pkg/response"
	authUsecase "nichifier-service/internal/service/auth"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthHandler struct {
	authService  *authUsecase.AuthService
	cookieName   string
	secureCookie bool
	logger       *zap.Logger
}

func NewAuthHandler(authService *authUsecase.AuthService, cookieName string, secureCookie bool, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		cookieName:   cookieName,
		secureCookie: secureCookie,
		logger:       logger,
	}
}

// ========== Registration ==========

// Register handles user registration (public endpoint)
func (h *AuthHandler) Register(c *gin.Context) {
	var req auth.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	loginResp, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		h.logger.Warn("registration failed", zap.String("email", req.Email), zap.Error(err))
		response.FromError(c, "registration failed", err)
		return
	}

	h.setTokenCookie(c, loginResp)
	response.Success(c, http.StatusCreated, "registration successful", loginResp)
}

// ========== Login ==========

// Login handles user login
func (h *AuthHandler) Login(c *gin.Context) {
	var req auth.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}
	req.IPAddress = c.ClientIP()

	loginResp, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		response.FromError(c, "login failed", err)
		return
	}

	h.setTokenCookie(c, loginResp)
	response.Success(c, http.StatusOK, "login successful", loginResp)
}

// ========== Logout ==========

// Logout revokes the current token and clears the cookie (requires auth)
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := middleware.MustGetClaims(c)

	if err := h.authService.Logout(c.Request.Context(), claims); err != nil {
		h.logger.Error("logout failed", zap.Int64("user_id", claims.UserID), zap.Error(err))
		response.Error(c, http.StatusInternalServerError, "logout failed", err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookieName, "", -1, "/", "", h.secureCookie, true)
	response.Success(c, http.StatusOK, "logout successful", nil)
}

// ========== Profile ==========

// Me returns the caller's profile with their creator plan and usage
func (h *AuthHandler) Me(c *gin.Context) {
	user := middleware.MustGetUser(c)

	profile, err := h.authService.Profile(c.Request.Context(), user.ID)
	if err != nil {
		response.FromError(c, "failed to load profile", err)
		return
	}

	response.Success(c, http.StatusOK, "profile retrieved", profile)
}

// ========== Admin ==========

// PromoteUser changes a user's role (admin only)
func (h *AuthHandler) PromoteUser(c *gin.Context) {
	var req auth.PromoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	user, err := h.authService.PromoteUser(c.Request.Context(), &req)
	if err != nil {
		response.FromError(c, "failed to promote user", err)
		return
	}

	response.Success(c, http.StatusOK, "user promoted", user)
}

func (h *AuthHandler) setTokenCookie(c *gin.Context, resp *auth.LoginResponse) {
	maxAge := int(time.Until(resp.ExpiresAt).Seconds())
	if maxAge <= 0 {
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookieName, resp.AccessToken, maxAge, "/", "", h.secureCookie, true)
}
