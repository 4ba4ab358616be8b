package monetisation

import (
	"context"

	"nichifier-service/internal/domain/auth"
	"nichifier-service/internal/domain/monetisation"
	"nichifier-service/internal/domain/subscription"
	wstypes "nichifier-service/internal/domain/websocket"
)

// SettingsStore persists the settings singleton.
type SettingsStore interface {
	GetOrCreate(ctx context.Context) (*monetisation.PlatformSettings, error)
	Update(ctx context.Context, settings *monetisation.PlatformSettings) error
}

// SettingsCache is an optional read-through cache in front of SettingsStore.
type SettingsCache interface {
	Get(ctx context.Context) (*monetisation.PlatformSettings, bool, error)
	Set(ctx context.Context, settings *monetisation.PlatformSettings) error
	Invalidate(ctx context.Context) error
}

// PlanStore persists creator plans.
type PlanStore interface {
	Create(ctx context.Context, plan *monetisation.CreatorPlan) error
	Update(ctx context.Context, plan *monetisation.CreatorPlan) error
	FindByID(ctx context.Context, id int64) (*monetisation.CreatorPlan, error)
	ListByMonthlyFee(ctx context.Context) ([]*monetisation.CreatorPlan, error)
	CountCreatorsByPlan(ctx context.Context, statuses []string) (map[int64]int64, error)
}

// CreatorSubscriptionStore persists plan assignments.
type CreatorSubscriptionStore interface {
	FindLatestByUser(ctx context.Context, userID int64, statuses []string) (*monetisation.CreatorSubscription, error)
	Replace(ctx context.Context, cs *monetisation.CreatorSubscription, supersede []string) error
	CancelActive(ctx context.Context, userID int64, statuses []string) (int64, error)
}

// NicheCounter counts the niches a user owns.
type NicheCounter interface {
	CountByOwner(ctx context.Context, ownerID int64) (int64, error)
}

// UserStore reads and updates user privilege columns.
type UserStore interface {
	FindByID(ctx context.Context, id int64) (*auth.User, error)
	UpdatePrivileges(ctx context.Context, id int64, role auth.Role, isPremium bool) error
}

// SubscriptionStore persists subscriber metrics.
type SubscriptionStore interface {
	Save(ctx context.Context, sub *subscription.Subscription) error
	RevenueTotals(ctx context.Context, status subscription.Status) (*monetisation.RevenueTotals, error)
}

// Notifier pushes monetisation events to connected clients.
type Notifier interface {
	NotifyPlanChanged(userID int64, data *wstypes.PlanChangeData)
	NotifySettingsUpdated(settings *monetisation.PlatformSettings)
}
