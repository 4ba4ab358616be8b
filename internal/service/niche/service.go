// internal/service/niche/service.go
package niche

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"nichifier-service/internal/domain/auth"
	"nichifier-service/internal/domain/monetisation"
	"nichifier-service/internal/domain/niche"
	xerrors "nichifier-service/internal/pkg/errors"
	"nichifier-service/internal/pkg/money"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Service struct {
	store  Store
	quota  Quota
	logger *zap.Logger
}

func NewService(store Store, quota Quota, logger *zap.Logger) *Service {
	return &Service{store: store, quota: quota, logger: logger}
}

// CanManage reports whether actor may edit n: admins always, creators only their own.
func CanManage(actor *auth.User, n *niche.Niche) bool {
	return actor.IsAdmin() || n.OwnedBy(actor.ID)
}

func (s *Service) List(ctx context.Context) ([]*niche.Niche, error) {
	niches, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	return niches, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*niche.Niche, error) {
	n, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("niche %d: %w", id, err)
	}
	return n, nil
}

// Create adds a niche owned by actor after checking role and plan quota.
func (s *Service) Create(ctx context.Context, actor *auth.User, req *niche.NicheRequest) (*niche.Niche, error) {
	if !actor.IsAdmin() && actor.Role != auth.RoleNicheAdmin {
		return nil, fmt.Errorf("only curators can create niches: %w", xerrors.ErrForbidden)
	}

	n, err := buildNiche(req)
	if err != nil {
		return nil, err
	}

	if !actor.IsAdmin() {
		if err := s.checkQuota(ctx, actor.ID); err != nil {
			return nil, err
		}
	}
	if err := s.ensureUniqueName(ctx, n.Name, 0); err != nil {
		return nil, err
	}

	n.OwnerID = sql.NullInt64{Int64: actor.ID, Valid: true}
	if err := s.store.Create(ctx, n); err != nil {
		return nil, err
	}

	s.logger.Info("niche created",
		zap.Int64("niche_id", n.ID),
		zap.String("name", n.Name),
		zap.Int64("owner_id", actor.ID),
	)
	return n, nil
}

// Update replaces the editable fields. Ownership never changes.
func (s *Service) Update(ctx context.Context, actor *auth.User, id int64, req *niche.NicheRequest) (*niche.Niche, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanManage(actor, existing) {
		return nil, fmt.Errorf("niche belongs to another curator: %w", xerrors.ErrForbidden)
	}

	n, err := buildNiche(req)
	if err != nil {
		return nil, err
	}
	if err := s.ensureUniqueName(ctx, n.Name, id); err != nil {
		return nil, err
	}

	n.ID = existing.ID
	n.OwnerID = existing.OwnerID
	n.CreatedAt = existing.CreatedAt
	if err := s.store.Update(ctx, n); err != nil {
		return nil, err
	}

	s.logger.Info("niche updated", zap.Int64("niche_id", id), zap.Int64("actor_id", actor.ID))
	return n, nil
}

// Delete removes the niche with its articles, issues and subscriptions.
func (s *Service) Delete(ctx context.Context, actor *auth.User, id int64) (*niche.DeleteStats, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanManage(actor, existing) {
		return nil, fmt.Errorf("niche belongs to another curator: %w", xerrors.ErrForbidden)
	}

	stats, err := s.store.Delete(ctx, id)
	if err != nil {
		s.logger.Error("failed to delete niche", zap.Int64("niche_id", id), zap.Error(err))
		return nil, err
	}

	s.logger.Info("niche deleted",
		zap.Int64("niche_id", id),
		zap.Int64("articles", stats.Articles),
		zap.Int64("newsletters", stats.Newsletters),
		zap.Int64("reports", stats.Reports),
		zap.Int64("subscriptions", stats.Subscriptions),
	)
	return stats, nil
}

func (s *Service) checkQuota(ctx context.Context, userID int64) error {
	plan, err := s.quota.ActivePlanForUser(ctx, userID)
	if err != nil {
		return err
	}
	if plan == nil {
		return fmt.Errorf("an active creator plan is required: %w", xerrors.ErrQuotaExceeded)
	}
	count, err := s.quota.CountActiveNichesForUser(ctx, userID)
	if err != nil {
		return err
	}
	if count >= int64(plan.MaxNiches) {
		return fmt.Errorf("plan %q allows %d niches: %w", plan.Name, plan.MaxNiches, xerrors.ErrQuotaExceeded)
	}
	return nil
}

func (s *Service) ensureUniqueName(ctx context.Context, name string, excludeID int64) error {
	taken, err := s.store.ExistsByName(ctx, name, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return fmt.Errorf("niche %q already exists: %w", name, xerrors.ErrConflict)
	}
	return nil
}

func buildNiche(req *niche.NicheRequest) (*niche.Niche, error) {
	name := strings.TrimSpace(req.Name)
	short := strings.TrimSpace(req.ShortDescription)
	if name == "" || short == "" {
		return nil, xerrors.Invalid("name and short description are required")
	}

	newsletterPrice, err := parsePrice(req.NewsletterPrice)
	if err != nil {
		return nil, err
	}
	reportPrice, err := parsePrice(req.ReportPrice)
	if err != nil {
		return nil, err
	}
	newsletterCadence, err := parseCadence(req.NewsletterCadence)
	if err != nil {
		return nil, err
	}
	reportCadence, err := parseCadence(req.ReportCadence)
	if err != nil {
		return nil, err
	}

	return &niche.Niche{
		Name:                name,
		ShortDescription:    short,
		DetailedDescription: optional(req.DetailedDescription),
		SplashImageURL:      optional(req.SplashImageURL),
		NewsletterPrice:     newsletterPrice,
		ReportPrice:         reportPrice,
		CurrencyCode:        money.NormalizeCurrency(req.CurrencyCode, monetisation.DefaultCurrency),
		NewsletterCadence:   newsletterCadence,
		ReportCadence:       reportCadence,
		VoiceInstructions:   optional(req.VoiceInstructions),
		StyleGuide:          optional(req.StyleGuide),
	}, nil
}

func parsePrice(raw string) (decimal.Decimal, error) {
	if strings.TrimSpace(raw) == "" {
		return decimal.Zero, nil
	}
	return money.ParseNonNegative(raw)
}

func parseCadence(raw string) (niche.Cadence, error) {
	c := niche.Cadence(strings.ToLower(strings.TrimSpace(raw)))
	if c == "" {
		return niche.CadenceMonthly, nil
	}
	if !c.IsValid() {
		return "", xerrors.Invalid("unsupported cadence %q", raw)
	}
	return c, nil
}

func optional(v string) sql.NullString {
	v = strings.TrimSpace(v)
	return sql.NullString{String: v, Valid: v != ""}
}
