// internal/repository/postgres/creator_subscription_repo.go
package postgres

import (
	"context"
	"fmt"

	"nichifier-service/internal/domain/monetisation"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

type CreatorSubscriptionRepository struct {
	db *pgxpool.Pool
}

func NewCreatorSubscriptionRepository(db *pgxpool.Pool) *CreatorSubscriptionRepository {
	return &CreatorSubscriptionRepository{db: db}
}

// FindLatestByUser returns the most recently started subscription whose status is in
// statuses, with its plan attached.
func (r *CreatorSubscriptionRepository) FindLatestByUser(ctx context.Context, userID int64, statuses []string) (*monetisation.CreatorSubscription, error) {
	query := `
		SELECT cs.id, cs.user_id, cs.plan_id, cs.status, cs.started_at, cs.ends_at,
		       cs.created_at, cs.updated_at,
		       p.id, p.name, p.slug, p.description, p.monthly_fee, p.currency_code,
		       p.platform_fee_discount_percent, p.stripe_price_id, p.max_niches,
		       p.feature_summary, p.created_at, p.updated_at
		FROM creator_subscriptions cs
		JOIN creator_plans p ON p.id = cs.plan_id
		WHERE cs.user_id = $1 AND cs.status = ANY($2)
		ORDER BY cs.started_at DESC, cs.id DESC
		LIMIT 1
	`

	var cs monetisation.CreatorSubscription
	var p monetisation.CreatorPlan
	err := r.db.QueryRow(ctx, query, userID, pq.Array(statuses)).Scan(
		&cs.ID, &cs.UserID, &cs.PlanID, &cs.Status, &cs.StartedAt, &cs.EndsAt,
		&cs.CreatedAt, &cs.UpdatedAt,
		&p.ID, &p.Name, &p.Slug, &p.Description, &p.MonthlyFee, &p.CurrencyCode,
		&p.PlatformFeeDiscountPercent, &p.StripePriceID, &p.MaxNiches,
		&p.FeatureSummary, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, mapError(err, "failed to find creator subscription")
	}
	cs.Plan = &p
	return &cs, nil
}

// Replace cancels the user's subscriptions in supersede and inserts cs, atomically.
func (r *CreatorSubscriptionRepository) Replace(ctx context.Context, cs *monetisation.CreatorSubscription, supersede []string) error {
	return withTx(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := cancelWithTx(ctx, tx, cs.UserID, supersede); err != nil {
			return err
		}

		query := `
			INSERT INTO creator_subscriptions (user_id, plan_id, status)
			VALUES ($1, $2, $3)
			RETURNING id, started_at, created_at, updated_at
		`
		err := tx.QueryRow(ctx, query, cs.UserID, cs.PlanID, cs.Status).
			Scan(&cs.ID, &cs.StartedAt, &cs.CreatedAt, &cs.UpdatedAt)
		return mapError(err, "failed to create creator subscription")
	})
}

// CancelActive cancels every subscription of the user whose status is in statuses.
func (r *CreatorSubscriptionRepository) CancelActive(ctx context.Context, userID int64, statuses []string) (int64, error) {
	var cancelled int64
	err := withTx(ctx, r.db, func(tx pgx.Tx) error {
		n, err := cancelWithTx(ctx, tx, userID, statuses)
		cancelled = n
		return err
	})
	return cancelled, err
}

func cancelWithTx(ctx context.Context, tx pgx.Tx, userID int64, statuses []string) (int64, error) {
	query := `
		UPDATE creator_subscriptions
		SET status = $3, ends_at = NOW(), updated_at = NOW()
		WHERE user_id = $1 AND status = ANY($2)
	`
	tag, err := tx.Exec(ctx, query, userID, pq.Array(statuses), monetisation.CreatorStatusCancelled)
	if err != nil {
		return 0, fmt.Errorf("failed to cancel creator subscriptions: %w", err)
	}
	return tag.RowsAffected(), nil
}
