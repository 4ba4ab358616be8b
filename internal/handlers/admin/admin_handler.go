// internal/handlers/admin/admin_handler.go
package admin

import (
	"context"
	"net/http"

	"nichifier-service/internal/domain/admin"
	"nichifier-service/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// DashboardReader builds the admin dashboard.
type DashboardReader interface {
	Dashboard(ctx context.Context) (*admin.Dashboard, error)
}

type AdminHandler struct {
	dashboard DashboardReader
}

func NewAdminHandler(dashboard DashboardReader) *AdminHandler {
	return &AdminHandler{dashboard: dashboard}
}

// Dashboard lists every user and every niche with its owner (admin only)
func (h *AdminHandler) Dashboard(c *gin.Context) {
	d, err := h.dashboard.Dashboard(c.Request.Context())
	if err != nil {
		response.FromError(c, "failed to load dashboard", err)
		return
	}

	response.Success(c, http.StatusOK, "dashboard retrieved", d)
}
