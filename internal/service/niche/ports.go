package niche

import (
	"context"

	"nichifier-service/internal/domain/monetisation"
	"nichifier-service/internal/domain/niche"
)

// Store persists niches.
type Store interface {
	Create(ctx context.Context, n *niche.Niche) error
	Update(ctx context.Context, n *niche.Niche) error
	FindByID(ctx context.Context, id int64) (*niche.Niche, error)
	List(ctx context.Context) ([]*niche.Niche, error)
	ExistsByName(ctx context.Context, name string, excludeID int64) (bool, error)
	Delete(ctx context.Context, id int64) (*niche.DeleteStats, error)
}

// Quota answers creator plan limits.
type Quota interface {
	ActivePlanForUser(ctx context.Context, userID int64) (*monetisation.CreatorPlan, error)
	CountActiveNichesForUser(ctx context.Context, userID int64) (int64, error)
}
