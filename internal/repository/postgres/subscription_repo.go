// internal/repository/postgres/subscription_repo.go
package postgres

import (
	"context"
	"fmt"

	"nichifier-service/internal/domain/monetisation"
	"nichifier-service/internal/domain/subscription"
	xerrors "nichifier-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

type SubscriptionRepository struct {
	db *pgxpool.Pool
}

func NewSubscriptionRepository(db *pgxpool.Pool) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

const subscriptionColumns = `
	s.id, s.user_id, s.niche_id, s.reference, s.wants_newsletter, s.wants_report,
	s.status, s.currency_code, s.billing_cadence, s.gross_amount, s.platform_fee_amount,
	s.creator_payout_amount, s.started_at, s.expires_at, s.created_at, s.updated_at
`

func subscriptionDest(s *subscription.Subscription) []any {
	return []any{
		&s.ID, &s.UserID, &s.NicheID, &s.Reference, &s.WantsNewsletter, &s.WantsReport,
		&s.Status, &s.CurrencyCode, &s.BillingCadence, &s.GrossAmount, &s.PlatformFeeAmount,
		&s.CreatorPayoutAmount, &s.StartedAt, &s.ExpiresAt, &s.CreatedAt, &s.UpdatedAt,
	}
}

// FindByUserAndNiche returns the subscriber's subscription to a niche.
func (r *SubscriptionRepository) FindByUserAndNiche(ctx context.Context, userID, nicheID int64) (*subscription.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions s WHERE s.user_id = $1 AND s.niche_id = $2`

	var s subscription.Subscription
	if err := r.db.QueryRow(ctx, query, userID, nicheID).Scan(subscriptionDest(&s)...); err != nil {
		return nil, mapError(err, "failed to find subscription")
	}
	return &s, nil
}

// Save writes the subscription keyed by (user, niche). A concurrent insert for the
// same pair collapses into an update, and the stored row is read back into s.
func (r *SubscriptionRepository) Save(ctx context.Context, s *subscription.Subscription) error {
	query := `
		INSERT INTO subscriptions AS s (
			user_id, niche_id, reference, wants_newsletter, wants_report, status,
			currency_code, billing_cadence, gross_amount, platform_fee_amount,
			creator_payout_amount, started_at, expires_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (user_id, niche_id) DO UPDATE SET
			wants_newsletter = EXCLUDED.wants_newsletter,
			wants_report = EXCLUDED.wants_report,
			status = EXCLUDED.status,
			currency_code = EXCLUDED.currency_code,
			billing_cadence = EXCLUDED.billing_cadence,
			gross_amount = EXCLUDED.gross_amount,
			platform_fee_amount = EXCLUDED.platform_fee_amount,
			creator_payout_amount = EXCLUDED.creator_payout_amount,
			expires_at = EXCLUDED.expires_at,
			updated_at = NOW()
		RETURNING ` + subscriptionColumns

	err := r.db.QueryRow(ctx, query,
		s.UserID, s.NicheID, s.Reference, s.WantsNewsletter, s.WantsReport, s.Status,
		s.CurrencyCode, s.BillingCadence, s.GrossAmount, s.PlatformFeeAmount,
		s.CreatorPayoutAmount, s.StartedAt, s.ExpiresAt,
	).Scan(subscriptionDest(s)...)
	return mapError(err, "failed to save subscription")
}

// ListByUser returns the user's subscriptions with niche names, newest first.
// An empty statuses slice means every status.
func (r *SubscriptionRepository) ListByUser(ctx context.Context, userID int64, statuses []string) ([]*subscription.Subscription, error) {
	query := `
		SELECT ` + subscriptionColumns + `, n.name
		FROM subscriptions s
		JOIN niches n ON n.id = s.niche_id
		WHERE s.user_id = $1 AND (cardinality($2::text[]) = 0 OR s.status = ANY($2))
		ORDER BY s.created_at DESC, s.id DESC
	`
	if statuses == nil {
		statuses = []string{}
	}

	rows, err := r.db.Query(ctx, query, userID, pq.Array(statuses))
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	defer rows.Close()

	subs := []*subscription.Subscription{}
	for rows.Next() {
		var s subscription.Subscription
		dest := append(subscriptionDest(&s), &s.NicheName)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan subscription: %w", err)
		}
		subs = append(subs, &s)
	}
	return subs, rows.Err()
}

// DeleteByIDAndUser removes a subscription only when it belongs to userID.
func (r *SubscriptionRepository) DeleteByIDAndUser(ctx context.Context, id, userID int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM subscriptions WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete subscription: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

// RevenueTotals sums gross, fee and payout across subscriptions in status.
func (r *SubscriptionRepository) RevenueTotals(ctx context.Context, status subscription.Status) (*monetisation.RevenueTotals, error) {
	query := `
		SELECT COUNT(*),
		       COALESCE(SUM(gross_amount), 0),
		       COALESCE(SUM(platform_fee_amount), 0),
		       COALESCE(SUM(creator_payout_amount), 0)
		FROM subscriptions
		WHERE status = $1
	`
	var totals monetisation.RevenueTotals
	err := r.db.QueryRow(ctx, query, status).Scan(
		&totals.Subscriptions, &totals.Gross, &totals.PlatformFees, &totals.CreatorPayout,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to sum revenue: %w", err)
	}
	return &totals, nil
}
