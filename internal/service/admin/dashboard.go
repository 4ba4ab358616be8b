// internal/service/admin/dashboard.go
package admin

import (
	"context"
	"fmt"

	"nichifier-service/internal/domain/admin"
	"nichifier-service/internal/domain/auth"

	"go.uber.org/zap"
)

// UserLister lists every account.
type UserLister interface {
	List(ctx context.Context) ([]*auth.User, error)
}

// NicheLister lists every niche with its owner.
type NicheLister interface {
	ListWithOwners(ctx context.Context) ([]*admin.NicheListing, error)
}

type DashboardService struct {
	users  UserLister
	niches NicheLister
	logger *zap.Logger
}

func NewDashboardService(users UserLister, niches NicheLister, logger *zap.Logger) *DashboardService {
	return &DashboardService{users: users, niches: niches, logger: logger}
}

// Dashboard collects every user and every niche for the admin overview.
func (s *DashboardService) Dashboard(ctx context.Context) (*admin.Dashboard, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		s.logger.Error("failed to list users", zap.Error(err))
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	niches, err := s.niches.ListWithOwners(ctx)
	if err != nil {
		s.logger.Error("failed to list niches", zap.Error(err))
		return nil, fmt.Errorf("failed to list niches: %w", err)
	}
	return &admin.Dashboard{
		Users:      users,
		Niches:     niches,
		UserCount:  len(users),
		NicheCount: len(niches),
	}, nil
}
