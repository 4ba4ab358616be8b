// internal/app/router.go
package app

import (
	"net/http"

	adminHandler "nichifier-service/internal/handlers/admin"
	authHandler "nichifier-service/internal/handlers/auth"
	monetisationHandler "nichifier-service/internal/handlers/monetisation"
	nicheHandler "nichifier-service/internal/handlers/niche"
	subscriptionHandler "nichifier-service/internal/handlers/subscription"
	wsHandler "nichifier-service/internal/handlers/websocket"
	"nichifier-service/internal/middleware"
	"nichifier-service/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handlers struct {
	AdminHandler        *adminHandler.AdminHandler
	AuthHandler         *authHandler.AuthHandler
	NicheHandler        *nicheHandler.NicheHandler
	SubscriptionHandler *subscriptionHandler.SubscriptionHandler
	MonetisationHandler *monetisationHandler.MonetisationHandler
	WSHandler           *wsHandler.WebSocketHandler
	AuthMiddleware      *middleware.AuthMiddleware
}

func health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "version": "1.0.0"})
}

func SetupRouter(r *gin.Engine, h *Handlers) {
	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c, "route not found")
	})

	// ==================== Health Check ====================
	r.GET("/healthz", health)
	api := r.Group("/api/v1")
	api.GET("/health", health)

	// ==================== WebSocket ====================
	r.GET("/ws", h.WSHandler.HandleConnection)

	// ==================== Public Auth Routes ====================
	authPublic := api.Group("/auth")
	{
		authPublic.POST("/register", h.AuthHandler.Register)
		authPublic.POST("/login", h.AuthHandler.Login)
	}

	// ==================== Authenticated Auth Routes ====================
	authProtected := api.Group("/auth")
	authProtected.Use(h.AuthMiddleware.Auth())
	{
		authProtected.POST("/logout", h.AuthHandler.Logout)
		authProtected.GET("/me", h.AuthHandler.Me)
	}

	// ==================== Plans ====================
	api.GET("/plans", h.MonetisationHandler.ListPlans)

	// ==================== Niches ====================
	niches := api.Group("/niches")
	{
		niches.GET("", h.NicheHandler.ListNiches)
		niches.GET("/:id", h.NicheHandler.GetNiche)
		niches.POST("", append(h.AuthMiddleware.CreatorOnly(), h.NicheHandler.CreateNiche)...)

		// Ownership is checked per niche by the service.
		owned := niches.Group("")
		owned.Use(h.AuthMiddleware.Auth())
		{
			owned.PUT("/:id", h.NicheHandler.UpdateNiche)
			owned.DELETE("/:id", h.NicheHandler.DeleteNiche)
			owned.POST("/:id/newsletters/draft", h.NicheHandler.DraftNewsletter)
			owned.POST("/:id/reports/draft", h.NicheHandler.DraftReport)
		}
	}

	// ==================== Subscriptions ====================
	subscriptions := api.Group("/subscriptions")
	subscriptions.Use(h.AuthMiddleware.Auth())
	{
		subscriptions.GET("", h.SubscriptionHandler.ListSubscriptions)
		subscriptions.PUT("/niches/:niche_id", h.SubscriptionHandler.UpsertSubscription)
		subscriptions.DELETE("/:id", h.SubscriptionHandler.DeleteSubscription)
	}

	// ==================== Admin ====================
	admin := api.Group("/admin")
	admin.Use(h.AuthMiddleware.AdminOnly()...)
	{
		admin.GET("/dashboard", h.AdminHandler.Dashboard)
		admin.GET("/monetisation", h.MonetisationHandler.Overview)
		admin.PUT("/monetisation/settings", h.MonetisationHandler.UpdateSettings)
		admin.POST("/monetisation/plans", h.MonetisationHandler.UpsertPlan)
		admin.POST("/creator-subscriptions", h.MonetisationHandler.AssignCreatorPlan)
		admin.DELETE("/creator-subscriptions/:user_id", h.MonetisationHandler.CancelCreatorPlan)
		admin.POST("/users/promote", h.AuthHandler.PromoteUser)
		admin.GET("/ws/stats", h.WSHandler.GetStats)
	}
}
