// internal/handlers/niche/niche_handler.go
package niche

import (
	"errors"
	"net/http"
	"strconv"

	"nichifier-service/internal/domain/niche"
	"nichifier-service/internal/middleware"
	"nichifier-service/internal/pkg/response"
	"nichifier-service/internal/service/newsletter"
	nichesvc "nichifier-service/internal/service/niche"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type NicheHandler struct {
	nicheService      *nichesvc.Service
	newsletterService *newsletter.Service
	logger            *zap.Logger
}

func NewNicheHandler(nicheService *nichesvc.Service, newsletterService *newsletter.Service, logger *zap.Logger) *NicheHandler {
	return &NicheHandler{
		nicheService:      nicheService,
		newsletterService: newsletterService,
		logger:            logger,
	}
}

// ========== Public Endpoints ==========

// ListNiches returns every niche ordered by name
func (h *NicheHandler) ListNiches(c *gin.Context) {
	niches, err := h.nicheService.List(c.Request.Context())
	if err != nil {
		response.FromError(c, "failed to list niches", err)
		return
	}

	response.Success(c, http.StatusOK, "niches retrieved", niches)
}

// GetNiche retrieves a single niche
func (h *NicheHandler) GetNiche(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	n, err := h.nicheService.Get(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, "niche not found", err)
		return
	}

	response.Success(c, http.StatusOK, "niche retrieved", n)
}

// ========== Creator Endpoints ==========

// CreateNiche creates a niche owned by the caller
func (h *NicheHandler) CreateNiche(c *gin.Context) {
	var req niche.NicheRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	n, err := h.nicheService.Create(c.Request.Context(), middleware.MustGetUser(c), &req)
	if err != nil {
		response.FromError(c, "failed to create niche", err)
		return
	}

	response.Success(c, http.StatusCreated, "niche created successfully", n)
}

// UpdateNiche replaces a niche's editable fields
func (h *NicheHandler) UpdateNiche(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req niche.NicheRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	n, err := h.nicheService.Update(c.Request.Context(), middleware.MustGetUser(c), id, &req)
	if err != nil {
		response.FromError(c, "failed to update niche", err)
		return
	}

	response.Success(c, http.StatusOK, "niche updated successfully", n)
}

// DeleteNiche removes a niche and everything attached to it
func (h *NicheHandler) DeleteNiche(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	stats, err := h.nicheService.Delete(c.Request.Context(), middleware.MustGetUser(c), id)
	if err != nil {
		response.FromError(c, "failed to delete niche", err)
		return
	}

	response.Success(c, http.StatusOK, "niche deleted successfully", stats)
}

// DraftNewsletter drafts and stores a newsletter issue from a news feed
func (h *NicheHandler) DraftNewsletter(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req niche.DraftNewsletterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	issue, err := h.newsletterService.DraftNewsletter(c.Request.Context(), middleware.MustGetUser(c), id, &req)
	if err != nil {
		h.draftError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, "newsletter drafted", issue)
}

// DraftReport drafts and stores a report issue from curator insights
func (h *NicheHandler) DraftReport(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req niche.DraftReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	issue, err := h.newsletterService.DraftReport(c.Request.Context(), middleware.MustGetUser(c), id, &req)
	if err != nil {
		h.draftError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, "report drafted", issue)
}

func (h *NicheHandler) draftError(c *gin.Context, err error) {
	if errors.Is(err, newsletter.ErrDraftingDisabled) {
		response.Error(c, http.StatusServiceUnavailable, "drafting unavailable", err)
		return
	}
	response.FromError(c, "failed to draft content", err)
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.ValidationError(c, "invalid niche ID", err)
		return 0, false
	}
	return id, true
}
