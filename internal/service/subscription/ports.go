package subscription

import (
	"context"

	"nichifier-service/internal/domain/monetisation"
	"nichifier-service/internal/domain/niche"
	"nichifier-service/internal/domain/subscription"
	monetisationsvc "nichifier-service/internal/service/monetisation"
)

// Store reads and removes subscriber subscriptions. Writes go through the metrics updater.
type Store interface {
	FindByUserAndNiche(ctx context.Context, userID, nicheID int64) (*subscription.Subscription, error)
	ListByUser(ctx context.Context, userID int64, statuses []string) ([]*subscription.Subscription, error)
	DeleteByIDAndUser(ctx context.Context, id, userID int64) error
}

// NicheReader loads the niche being subscribed to.
type NicheReader interface {
	FindByID(ctx context.Context, id int64) (*niche.Niche, error)
}

// Monetisation computes and persists the revenue split.
type Monetisation interface {
	GetOrCreatePlatformSettings(ctx context.Context) (*monetisation.PlatformSettings, error)
	ActivePlanForUser(ctx context.Context, userID int64) (*monetisation.CreatorPlan, error)
	EnsureSubscriptionMetrics(ctx context.Context, sub *subscription.Subscription, in monetisationsvc.MetricsInput) error
}

// Notifier pushes revenue changes to the niche owner.
type Notifier interface {
	NotifyRevenueUpdated(ownerID int64, event *subscription.RevenueEvent)
}
