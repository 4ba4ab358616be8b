// internal/service/monetisation/service.go
package monetisation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"nichifier-service/internal/domain/auth"
	"nichifier-service/internal/domain/monetisation"
	"nichifier-service/internal/domain/subscription"
	wstypes "nichifier-service/internal/domain/websocket"
	xerrors "nichifier-service/internal/pkg/errors"
	"nichifier-service/internal/pkg/money"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var maxFeePercent = decimal.NewFromInt(100)

// Deps groups the stores the monetisation service reads and writes.
type Deps struct {
	Settings             SettingsStore
	Plans                PlanStore
	CreatorSubscriptions CreatorSubscriptionStore
	Niches               NicheCounter
	Users                UserStore
	Subscriptions        SubscriptionStore
	Cache                SettingsCache
	Notifier             Notifier
}

type Service struct {
	settings      SettingsStore
	plans         PlanStore
	creatorSubs   CreatorSubscriptionStore
	niches        NicheCounter
	users         UserStore
	subscriptions SubscriptionStore
	cache         SettingsCache
	notifier      Notifier
	policy        monetisation.PayoutPolicy
	logger        *zap.Logger
}

func NewService(deps Deps, policy monetisation.PayoutPolicy, logger *zap.Logger) *Service {
	return &Service{
		settings:      deps.Settings,
		plans:         deps.Plans,
		creatorSubs:   deps.CreatorSubscriptions,
		niches:        deps.Niches,
		users:         deps.Users,
		subscriptions: deps.Subscriptions,
		cache:         deps.Cache,
		notifier:      deps.Notifier,
		policy:        policy,
		logger:        logger,
	}
}

// ========== Platform Settings ==========

// GetOrCreatePlatformSettings returns the settings singleton, creating it with defaults
// on first access.
func (s *Service) GetOrCreatePlatformSettings(ctx context.Context) (*monetisation.PlatformSettings, error) {
	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx)
		if err != nil {
			s.logger.Warn("settings cache read failed", zap.Error(err))
		} else if ok {
			return cached, nil
		}
	}

	settings, err := s.settings.GetOrCreate(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load platform settings: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, settings); err != nil {
			s.logger.Warn("settings cache write failed", zap.Error(err))
		}
	}
	return settings, nil
}

// ParseSettingsUpdate converts the admin form into decimals.
func ParseSettingsUpdate(req *monetisation.UpdateSettingsRequest) (*monetisation.SettingsUpdate, error) {
	percent, err := money.Parse(req.PlatformFeePercent)
	if err != nil {
		return nil, err
	}
	minimum, err := money.Parse(req.MinimumPlatformFee)
	if err != nil {
		return nil, err
	}
	return &monetisation.SettingsUpdate{
		PlatformFeePercent:   percent,
		MinimumPlatformFee:   minimum,
		CurrencyCode:         req.CurrencyCode,
		StripePublishableKey: req.StripePublishableKey,
		StripeSecretKey:      req.StripeSecretKey,
	}, nil
}

// UpdatePlatformSettings overwrites the singleton.
func (s *Service) UpdatePlatformSettings(ctx context.Context, in *monetisation.SettingsUpdate) (*monetisation.PlatformSettings, error) {
	if in.PlatformFeePercent.IsNegative() || in.PlatformFeePercent.GreaterThan(maxFeePercent) {
		return nil, xerrors.Invalid("platform fee percent must be between 0 and 100")
	}
	if in.MinimumPlatformFee.IsNegative() {
		return nil, xerrors.Invalid("minimum platform fee must not be negative")
	}
	currency := money.NormalizeCurrency(in.CurrencyCode, "")
	if len(currency) != 3 {
		return nil, xerrors.Invalid("currency code must have 3 letters")
	}

	settings, err := s.settings.GetOrCreate(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load platform settings: %w", err)
	}

	settings.PlatformFeePercent = money.Quantize(in.PlatformFeePercent)
	settings.MinimumPlatformFee = money.Quantize(in.MinimumPlatformFee)
	settings.CurrencyCode = currency
	settings.StripePublishableKey = optionalString(in.StripePublishableKey)
	settings.StripeSecretKey = optionalString(in.StripeSecretKey)

	if err := s.settings.Update(ctx, settings); err != nil {
		s.logger.Error("failed to update platform settings", zap.Error(err))
		return nil, fmt.Errorf("failed to update platform settings: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			s.logger.Warn("settings cache invalidation failed", zap.Error(err))
		}
	}
	if s.notifier != nil {
		s.notifier.NotifySettingsUpdated(settings)
	}

	s.logger.Info("platform settings updated",
		zap.String("platform_fee_percent", settings.PlatformFeePercent.StringFixed(2)),
		zap.String("minimum_platform_fee", settings.MinimumPlatformFee.StringFixed(2)),
		zap.String("currency_code", settings.CurrencyCode),
	)

	return settings, nil
}

// ========== Creator Plans ==========

// NormalizeSlug lower-cases a slug and replaces spaces with hyphens.
func NormalizeSlug(slug string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(slug)), " ", "-")
}

// ParsePlanUpsert converts the admin form into decimals.
func ParsePlanUpsert(req *monetisation.UpsertPlanRequest) (*monetisation.PlanUpsert, error) {
	fee, err := money.Parse(req.MonthlyFee)
	if err != nil {
		return nil, err
	}
	discount := decimal.Zero
	if strings.TrimSpace(req.PlatformFeeDiscountPercent) != "" {
		if discount, err = money.Parse(req.PlatformFeeDiscountPercent); err != nil {
			return nil, err
		}
	}
	return &monetisation.PlanUpsert{
		ID:                         req.ID,
		Name:                       req.Name,
		Slug:                       req.Slug,
		Description:                req.Description,
		MonthlyFee:                 fee,
		CurrencyCode:               req.CurrencyCode,
		PlatformFeeDiscountPercent: discount,
		StripePriceID:              req.StripePriceID,
		MaxNiches:                  req.MaxNiches,
		FeatureSummary:             req.FeatureSummary,
	}, nil
}

// UpsertCreatorPlan creates a plan when no id is given and updates it in place otherwise.
func (s *Service) UpsertCreatorPlan(ctx context.Context, in *monetisation.PlanUpsert) (*monetisation.CreatorPlan, error) {
	name := strings.TrimSpace(in.Name)
	slug := NormalizeSlug(in.Slug)
	if name == "" {
		return nil, xerrors.Invalid("plan name is required")
	}
	if slug == "" {
		return nil, xerrors.Invalid("plan slug is required")
	}
	if in.MonthlyFee.IsNegative() {
		return nil, xerrors.Invalid("monthly fee must not be negative")
	}
	if in.PlatformFeeDiscountPercent.IsNegative() || in.PlatformFeeDiscountPercent.GreaterThan(maxFeePercent) {
		return nil, xerrors.Invalid("platform fee discount must be between 0 and 100")
	}

	// The slug identifies a plan for its whole life; updates keep the stored one.
	plan := &monetisation.CreatorPlan{Slug: slug}
	if in.ID != nil {
		existing, err := s.plans.FindByID(ctx, *in.ID)
		if err != nil {
			if errors.Is(err, xerrors.ErrNotFound) {
				return nil, fmt.Errorf("creator plan %d not found: %w", *in.ID, xerrors.ErrNotFound)
			}
			return nil, fmt.Errorf("failed to load creator plan: %w", err)
		}
		plan = existing
	}

	plan.Name = name
	plan.Description = optionalString(in.Description)
	plan.MonthlyFee = money.Quantize(in.MonthlyFee)
	plan.CurrencyCode = money.NormalizeCurrency(in.CurrencyCode, monetisation.DefaultCurrency)
	plan.PlatformFeeDiscountPercent = money.Quantize(in.PlatformFeeDiscountPercent)
	plan.StripePriceID = optionalString(in.StripePriceID)
	plan.MaxNiches = max(1, in.MaxNiches)
	plan.FeatureSummary = strings.TrimSpace(in.FeatureSummary)

	if plan.ID == 0 {
		if err := s.plans.Create(ctx, plan); err != nil {
			s.logger.Error("failed to create creator plan", zap.String("slug", slug), zap.Error(err))
			return nil, fmt.Errorf("failed to create creator plan: %w", err)
		}
		s.logger.Info("creator plan created", zap.Int64("plan_id", plan.ID), zap.String("slug", plan.Slug))
		return plan, nil
	}

	if err := s.plans.Update(ctx, plan); err != nil {
		s.logger.Error("failed to update creator plan", zap.Int64("plan_id", plan.ID), zap.Error(err))
		return nil, fmt.Errorf("failed to update creator plan: %w", err)
	}
	s.logger.Info("creator plan updated", zap.Int64("plan_id", plan.ID), zap.String("slug", plan.Slug))
	return plan, nil
}

// ListCreatorPlans returns every plan, cheapest first.
func (s *Service) ListCreatorPlans(ctx context.Context) ([]*monetisation.CreatorPlan, error) {
	plans, err := s.plans.ListByMonthlyFee(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list creator plans: %w", err)
	}
	return plans, nil
}

// ========== Creator Subscriptions ==========

// GetActiveCreatorSubscription returns the most recently started active or trialing
// subscription for a user, or nil when there is none.
func (s *Service) GetActiveCreatorSubscription(ctx context.Context, userID int64) (*monetisation.CreatorSubscription, error) {
	cs, err := s.creatorSubs.FindLatestByUser(ctx, userID, monetisation.ActiveCreatorStatuses)
	if errors.Is(err, xerrors.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load creator subscription: %w", err)
	}
	return cs, nil
}

// ActivePlanForUser returns the plan behind the user's active creator subscription.
func (s *Service) ActivePlanForUser(ctx context.Context, userID int64) (*monetisation.CreatorPlan, error) {
	cs, err := s.GetActiveCreatorSubscription(ctx, userID)
	if err != nil || cs == nil {
		return nil, err
	}
	if cs.Plan != nil {
		return cs.Plan, nil
	}
	plan, err := s.plans.FindByID(ctx, cs.PlanID)
	if err != nil {
		return nil, fmt.Errorf("failed to load creator plan: %w", err)
	}
	return plan, nil
}

// CountActiveNichesForUser counts niches owned by the user.
func (s *Service) CountActiveNichesForUser(ctx context.Context, userID int64) (int64, error) {
	count, err := s.niches.CountByOwner(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to count niches: %w", err)
	}
	return count, nil
}

// PlanUsage reports niche usage against the active plan, or nil without a plan.
func (s *Service) PlanUsage(ctx context.Context, userID int64) (*monetisation.PlanUsage, error) {
	plan, err := s.ActivePlanForUser(ctx, userID)
	if err != nil || plan == nil {
		return nil, err
	}
	count, err := s.CountActiveNichesForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &monetisation.PlanUsage{Count: count, Limit: plan.MaxNiches}, nil
}

// AttachCreatorPrivileges aligns role and premium flag with the user's plan.
// Admins keep their role.
func (s *Service) AttachCreatorPrivileges(ctx context.Context, user *auth.User) (*monetisation.CreatorPlan, error) {
	plan, err := s.ActivePlanForUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	role := user.Role
	if !user.IsAdmin() {
		role = auth.RoleSubscriber
		if plan != nil {
			role = auth.RoleNicheAdmin
		}
	}
	premium := plan != nil || user.IsAdmin()

	if role == user.Role && premium == user.IsPremium {
		return plan, nil
	}
	if err := s.users.UpdatePrivileges(ctx, user.ID, role, premium); err != nil {
		return nil, fmt.Errorf("failed to update user privileges: %w", err)
	}
	s.logger.Info("creator privileges updated",
		zap.Int64("user_id", user.ID),
		zap.String("role", string(role)),
		zap.Bool("is_premium", premium),
	)
	user.Role = role
	user.IsPremium = premium
	return plan, nil
}

// AssignCreatorPlan puts a user on a plan, superseding any active plan they had.
func (s *Service) AssignCreatorPlan(ctx context.Context, req *monetisation.AssignPlanRequest) (*monetisation.CreatorSubscription, error) {
	status := monetisation.CreatorSubscriptionStatus(strings.ToLower(strings.TrimSpace(req.Status)))
	if status == "" {
		status = monetisation.CreatorStatusActive
	}
	if !status.IsActive() {
		return nil, xerrors.Invalid("status must be active or trialing")
	}

	plan, err := s.plans.FindByID(ctx, req.PlanID)
	if err != nil {
		return nil, fmt.Errorf("failed to load creator plan: %w", err)
	}
	user, err := s.users.FindByID(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	cs := &monetisation.CreatorSubscription{
		UserID: user.ID,
		PlanID: plan.ID,
		Status: status,
	}
	if err := s.creatorSubs.Replace(ctx, cs, monetisation.ActiveCreatorStatuses); err != nil {
		s.logger.Error("failed to assign creator plan", zap.Int64("user_id", user.ID), zap.Error(err))
		return nil, fmt.Errorf("failed to assign creator plan: %w", err)
	}
	cs.Plan = plan

	if _, err := s.AttachCreatorPrivileges(ctx, user); err != nil {
		return nil, err
	}
	s.notifyPlanChange(user, plan, string(status))

	s.logger.Info("creator plan assigned",
		zap.Int64("user_id", user.ID),
		zap.Int64("plan_id", plan.ID),
		zap.String("status", string(status)),
	)
	return cs, nil
}

// CancelCreatorPlan cancels the user's active plan and drops the privileges it granted.
func (s *Service) CancelCreatorPlan(ctx context.Context, userID int64) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load user: %w", err)
	}
	cancelled, err := s.creatorSubs.CancelActive(ctx, userID, monetisation.ActiveCreatorStatuses)
	if err != nil {
		return fmt.Errorf("failed to cancel creator plan: %w", err)
	}
	if cancelled == 0 {
		return fmt.Errorf("no active creator plan: %w", xerrors.ErrNotFound)
	}

	if _, err := s.AttachCreatorPrivileges(ctx, user); err != nil {
		return err
	}
	s.notifyPlanChange(user, nil, string(monetisation.CreatorStatusCancelled))

	s.logger.Info("creator plan cancelled", zap.Int64("user_id", userID))
	return nil
}

func (s *Service) notifyPlanChange(user *auth.User, plan *monetisation.CreatorPlan, status string) {
	if s.notifier == nil {
		return
	}
	data := &wstypes.PlanChangeData{
		Status:    status,
		Role:      string(user.Role),
		IsPremium: user.IsPremium,
	}
	if plan != nil {
		data.PlanID = plan.ID
		data.PlanName = plan.Name
	}
	s.notifier.NotifyPlanChanged(user.ID, data)
}

// ========== Subscription Metrics ==========

// MetricsInput is everything the metrics updater needs besides the subscription.
type MetricsInput struct {
	GrossAmount    decimal.Decimal
	Settings       *monetisation.PlatformSettings
	Plan           *monetisation.CreatorPlan
	CurrencyCode   string
	BillingCadence string
}

// EnsureSubscriptionMetrics computes the split for sub, writes it back and persists it.
// sub is refreshed from the stored row.
func (s *Service) EnsureSubscriptionMetrics(ctx context.Context, sub *subscription.Subscription, in MetricsInput) error {
	gross := money.Quantize(in.GrossAmount)
	split := CalculateRevenueSplit(gross, in.Settings, in.Plan)
	if split.CreatorPayout.IsNegative() {
		s.logger.Warn("minimum platform fee exceeds gross amount",
			zap.Int64("user_id", sub.UserID),
			zap.Int64("niche_id", sub.NicheID),
			zap.String("gross_amount", gross.StringFixed(2)),
			zap.String("creator_payout", split.CreatorPayout.StringFixed(2)),
			zap.Bool("clamped", s.policy.ClampNegativePayout),
		)
		split = ApplyPayoutPolicy(split, s.policy)
	}

	sub.CurrencyCode = in.CurrencyCode
	sub.BillingCadence = in.BillingCadence
	sub.GrossAmount = gross
	sub.PlatformFeeAmount = split.PlatformFee
	sub.CreatorPayoutAmount = split.CreatorPayout
	sub.Status = subscription.StatusTrialing
	if gross.IsPositive() {
		sub.Status = subscription.StatusActive
	}

	if err := s.subscriptions.Save(ctx, sub); err != nil {
		s.logger.Error("failed to persist subscription metrics",
			zap.Int64("user_id", sub.UserID),
			zap.Int64("niche_id", sub.NicheID),
			zap.Error(err),
		)
		return fmt.Errorf("failed to persist subscription metrics: %w", err)
	}
	return nil
}

// ========== Overview ==========

// Overview collects settings, plans with creator counts, and revenue totals.
func (s *Service) Overview(ctx context.Context) (*monetisation.Overview, error) {
	settings, err := s.GetOrCreatePlatformSettings(ctx)
	if err != nil {
		return nil, err
	}
	plans, err := s.ListCreatorPlans(ctx)
	if err != nil {
		return nil, err
	}
	counts, err := s.plans.CountCreatorsByPlan(ctx, monetisation.ActiveCreatorStatuses)
	if err != nil {
		return nil, fmt.Errorf("failed to count creators by plan: %w", err)
	}
	revenue, err := s.subscriptions.RevenueTotals(ctx, subscription.StatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to total revenue: %w", err)
	}

	summaries := make([]*monetisation.PlanSummary, 0, len(plans))
	for _, plan := range plans {
		summaries = append(summaries, &monetisation.PlanSummary{
			Plan:           plan,
			ActiveCreators: counts[plan.ID],
		})
	}

	return &monetisation.Overview{
		Settings: settings,
		Plans:    summaries,
		Revenue:  revenue,
	}, nil
}

// ========== Helper Methods ==========

func optionalString(v string) sql.NullString {
	v = strings.TrimSpace(v)
	return sql.NullString{String: v, Valid: v != ""}
}
