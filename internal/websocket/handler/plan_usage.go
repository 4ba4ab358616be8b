// internal/websocket/handler/plan_usage.go
package handler

import (
	"context"

	"nichifier-service/internal/domain/monetisation"
	wstypes "nichifier-service/internal/domain/websocket"
	"nichifier-service/internal/websocket"

	"go.uber.org/zap"
)

// UsageReader reports a creator's niche count against their plan limit.
type UsageReader interface {
	PlanUsage(ctx context.Context, userID int64) (*monetisation.PlanUsage, error)
}

// PlanUsageHandler answers plan:usage requests with the caller's own usage.
type PlanUsageHandler struct {
	usage  UsageReader
	logger *zap.Logger
}

func NewPlanUsageHandler(usage UsageReader, logger *zap.Logger) *PlanUsageHandler {
	return &PlanUsageHandler{usage: usage, logger: logger}
}

func (h *PlanUsageHandler) SupportedEvents() []wstypes.EventType {
	return []wstypes.EventType{wstypes.EventTypePlanUsage}
}

func (h *PlanUsageHandler) HandleMessage(ctx context.Context, client *websocket.Client, msg *wstypes.WSMessage) error {
	usage, err := h.usage.PlanUsage(ctx, client.UserID())
	if err != nil {
		h.logger.Error("failed to load plan usage", zap.Int64("user_id", client.UserID()), zap.Error(err))
		return err
	}
	client.SendMessage(wstypes.NewMessage(wstypes.EventTypePlanUsage, usage))
	return nil
}
