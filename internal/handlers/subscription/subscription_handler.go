// internal/handlers/subscription/subscription_handler.go
package subscription

import (
	"net/http"
	"strconv"
	"strings"

	"nichifier-service/internal/domain/subscription"
	"nichifier-service/internal/middleware"
	"nichifier-service/internal/pkg/response"
	service "nichifier-service/internal/service/subscription"

	"github.com/gin-gonic/gin"
)

type SubscriptionHandler struct {
	subscriptionService *service.SubscriptionService
}

func NewSubscriptionHandler(subscriptionService *service.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{
		subscriptionService: subscriptionService,
	}
}

// UpsertSubscription creates or updates the caller's subscription to a niche
func (h *SubscriptionHandler) UpsertSubscription(c *gin.Context) {
	nicheID, err := strconv.ParseInt(c.Param("niche_id"), 10, 64)
	if err != nil || nicheID <= 0 {
		response.ValidationError(c, "invalid niche ID", err)
		return
	}

	var req subscription.UpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	user := middleware.MustGetUser(c)
	sub, err := h.subscriptionService.Upsert(c.Request.Context(), user.ID, nicheID, &req)
	if err != nil {
		response.FromError(c, "failed to save subscription", err)
		return
	}

	response.Success(c, http.StatusOK, "subscription saved", sub)
}

// ListSubscriptions lists the caller's subscriptions; ?status=active,trialing filters them
func (h *SubscriptionHandler) ListSubscriptions(c *gin.Context) {
	var statuses []string
	for _, raw := range c.QueryArray("status") {
		for _, s := range strings.Split(raw, ",") {
			if s = strings.TrimSpace(s); s != "" {
				statuses = append(statuses, strings.ToLower(s))
			}
		}
	}

	user := middleware.MustGetUser(c)
	subs, err := h.subscriptionService.List(c.Request.Context(), user.ID, statuses)
	if err != nil {
		response.FromError(c, "failed to list subscriptions", err)
		return
	}

	response.Success(c, http.StatusOK, "subscriptions retrieved", subs)
}

// DeleteSubscription removes one of the caller's subscriptions
func (h *SubscriptionHandler) DeleteSubscription(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.ValidationError(c, "invalid subscription ID", err)
		return
	}

	user := middleware.MustGetUser(c)
	if err := h.subscriptionService.Delete(c.Request.Context(), user.ID, id); err != nil {
		response.FromError(c, "failed to delete subscription", err)
		return
	}

	response.Success(c, http.StatusOK, "subscription deleted", nil)
}
