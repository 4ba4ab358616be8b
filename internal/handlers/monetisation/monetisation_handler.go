// internal/handlers/monetisation/monetisation_handler.go
package monetisation

import (
	"context"
	"net/http"
	"strconv"

	"nichifier-service/internal/domain/monetisation"
	"nichifier-service/internal/pkg/response"
	service "nichifier-service/internal/service/monetisation"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const invalidAmountMessage = "Invalid monetary value supplied"

// Service is the part of the monetisation service the HTTP layer drives.
type Service interface {
	Overview(ctx context.Context) (*monetisation.Overview, error)
	UpdatePlatformSettings(ctx context.Context, in *monetisation.SettingsUpdate) (*monetisation.PlatformSettings, error)
	UpsertCreatorPlan(ctx context.Context, in *monetisation.PlanUpsert) (*monetisation.CreatorPlan, error)
	ListCreatorPlans(ctx context.Context) ([]*monetisation.CreatorPlan, error)
	AssignCreatorPlan(ctx context.Context, req *monetisation.AssignPlanRequest) (*monetisation.CreatorSubscription, error)
	CancelCreatorPlan(ctx context.Context, userID int64) error
}

type MonetisationHandler struct {
	service Service
	logger  *zap.Logger
}

func NewMonetisationHandler(service Service, logger *zap.Logger) *MonetisationHandler {
	return &MonetisationHandler{
		service: service,
		logger:  logger,
	}
}

// ========== Public Endpoints ==========

// ListPlans lists creator plans, cheapest first
func (h *MonetisationHandler) ListPlans(c *gin.Context) {
	plans, err := h.service.ListCreatorPlans(c.Request.Context())
	if err != nil {
		response.FromError(c, "failed to list plans", err)
		return
	}

	response.Success(c, http.StatusOK, "plans retrieved", plans)
}

// ========== Admin Only Endpoints ==========

// Overview returns settings, plans with creator counts and revenue totals
func (h *MonetisationHandler) Overview(c *gin.Context) {
	overview, err := h.service.Overview(c.Request.Context())
	if err != nil {
		response.FromError(c, "failed to load monetisation overview", err)
		return
	}

	response.Success(c, http.StatusOK, "monetisation overview retrieved", overview)
}

// UpdateSettings replaces the platform fee settings
func (h *MonetisationHandler) UpdateSettings(c *gin.Context) {
	var req monetisation.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	in, err := service.ParseSettingsUpdate(&req)
	if err != nil {
		response.ValidationError(c, invalidAmountMessage, err)
		return
	}

	settings, err := h.service.UpdatePlatformSettings(c.Request.Context(), in)
	if err != nil {
		response.FromError(c, "failed to update settings", err)
		return
	}

	response.Success(c, http.StatusOK, "settings updated successfully", settings)
}

// UpsertPlan creates a plan, or updates it when an id is supplied
func (h *MonetisationHandler) UpsertPlan(c *gin.Context) {
	var req monetisation.UpsertPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	in, err := service.ParsePlanUpsert(&req)
	if err != nil {
		response.ValidationError(c, invalidAmountMessage, err)
		return
	}

	plan, err := h.service.UpsertCreatorPlan(c.Request.Context(), in)
	if err != nil {
		response.FromError(c, "failed to save plan", err)
		return
	}

	status := http.StatusOK
	if req.ID == nil {
		status = http.StatusCreated
	}
	response.Success(c, status, "plan saved successfully", plan)
}

// AssignCreatorPlan puts a user on a creator plan
func (h *MonetisationHandler) AssignCreatorPlan(c *gin.Context) {
	var req monetisation.AssignPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	cs, err := h.service.AssignCreatorPlan(c.Request.Context(), &req)
	if err != nil {
		response.FromError(c, "failed to assign creator plan", err)
		return
	}

	response.Success(c, http.StatusCreated, "creator plan assigned", cs)
}

// CancelCreatorPlan cancels a user's active creator plan
func (h *MonetisationHandler) CancelCreatorPlan(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
	if err != nil || userID <= 0 {
		response.ValidationError(c, "invalid user ID", err)
		return
	}

	if err := h.service.CancelCreatorPlan(c.Request.Context(), userID); err != nil {
		response.FromError(c, "failed to cancel creator plan", err)
		return
	}

	response.Success(c, http.StatusOK, "creator plan cancelled", nil)
}
