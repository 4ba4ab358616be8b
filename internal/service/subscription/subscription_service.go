// internal/service/subscription/subscription_service.go
package subscription

import (
	"context"
	"errors"
	"fmt"
	"time"

	"nichifier-service/internal/domain/monetisation"
	"nichifier-service/internal/domain/subscription"
	xerrors "nichifier-service/internal/pkg/errors"
	"nichifier-service/internal/pkg/money"
	monetisationsvc "nichifier-service/internal/service/monetisation"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

type SubscriptionService struct {
	subscriptions Store
	niches        NicheReader
	monetisation  Monetisation
	notifier      Notifier
	now           func() time.Time
	logger        *zap.Logger
}

func NewSubscriptionService(
	subscriptions Store,
	niches NicheReader,
	monetisation Monetisation,
	notifier Notifier,
	logger *zap.Logger,
) *SubscriptionService {
	return &SubscriptionService{
		subscriptions: subscriptions,
		niches:        niches,
		monetisation:  monetisation,
		notifier:      notifier,
		now:           time.Now,
		logger:        logger,
	}
}

// Upsert creates or updates the user's subscription to a niche and recomputes its
// revenue split.
func (s *SubscriptionService) Upsert(ctx context.Context, userID, nicheID int64, req *subscription.UpsertRequest) (*subscription.Subscription, error) {
	n, err := s.niches.FindByID(ctx, nicheID)
	if err != nil {
		return nil, fmt.Errorf("niche %d: %w", nicheID, err)
	}

	settings, err := s.monetisation.GetOrCreatePlatformSettings(ctx)
	if err != nil {
		return nil, err
	}

	var ownerID int64
	var plan *monetisation.CreatorPlan
	if n.OwnerID.Valid {
		ownerID = n.OwnerID.Int64
		plan, err = s.monetisation.ActivePlanForUser(ctx, ownerID)
		if err != nil {
			return nil, err
		}
	}

	sub, err := s.subscriptions.FindByUserAndNiche(ctx, userID, nicheID)
	if errors.Is(err, xerrors.ErrNotFound) {
		sub = &subscription.Subscription{
			UserID:    userID,
			NicheID:   nicheID,
			Reference: generateSubscriptionReference(),
			StartedAt: s.now().UTC(),
		}
	} else if err != nil {
		return nil, fmt.Errorf("failed to load subscription: %w", err)
	}
	created := sub.IsNew()

	sub.WantsNewsletter = req.WantsNewsletter
	sub.WantsReport = req.WantsReport

	in := monetisationsvc.MetricsInput{
		GrossAmount:    monetisationsvc.CalculateSubscriptionTotals(n.NewsletterPrice, n.ReportPrice, req.WantsNewsletter, req.WantsReport),
		Settings:       settings,
		Plan:           plan,
		CurrencyCode:   money.NormalizeCurrency(n.CurrencyCode, settings.CurrencyCode),
		BillingCadence: monetisationsvc.DeriveBillingCadence(n, req.WantsNewsletter, req.WantsReport),
	}
	if err := s.monetisation.EnsureSubscriptionMetrics(ctx, sub, in); err != nil {
		return nil, err
	}
	sub.NicheName = n.Name

	s.logger.Info("subscription saved",
		zap.Int64("user_id", userID),
		zap.Int64("niche_id", nicheID),
		zap.String("reference", sub.Reference),
		zap.Bool("created", created),
		zap.String("gross_amount", sub.GrossAmount.StringFixed(2)),
	)

	if s.notifier != nil && ownerID != 0 {
		s.notifier.NotifyRevenueUpdated(ownerID, subscription.NewRevenueEvent(sub))
	}
	return sub, nil
}

// List returns the user's subscriptions. statuses narrows the result when non-empty.
func (s *SubscriptionService) List(ctx context.Context, userID int64, statuses []string) ([]*subscription.Subscription, error) {
	for _, st := range statuses {
		switch subscription.Status(st) {
		case subscription.StatusActive, subscription.StatusTrialing:
		default:
			return nil, xerrors.Invalid("unknown subscription status %q", st)
		}
	}
	subs, err := s.subscriptions.ListByUser(ctx, userID, statuses)
	if err != nil {
		return nil, err
	}
	return subs, nil
}

// Delete removes one of the user's own subscriptions.
func (s *SubscriptionService) Delete(ctx context.Context, userID, subscriptionID int64) error {
	if err := s.subscriptions.DeleteByIDAndUser(ctx, subscriptionID, userID); err != nil {
		if errors.Is(err, xerrors.ErrNotFound) {
			return fmt.Errorf("subscription %d: %w", subscriptionID, xerrors.ErrNotFound)
		}
		return err
	}
	s.logger.Info("subscription deleted", zap.Int64("user_id", userID), zap.Int64("subscription_id", subscriptionID))
	return nil
}

// generateSubscriptionReference generates unique subscription reference
func generateSubscriptionReference() string {
	return "SUB-" + ulid.Make().String()
}
