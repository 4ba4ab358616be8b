// internal/repository/postgres/creator_plan_repo.go
package postgres

import (
	"context"
	"fmt"

	"nichifier-service/internal/domain/monetisation"
	xerrors "nichifier-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

type CreatorPlanRepository struct {
	db *pgxpool.Pool
}

func NewCreatorPlanRepository(db *pgxpool.Pool) *CreatorPlanRepository {
	return &CreatorPlanRepository{db: db}
}

const creatorPlanColumns = `
	id, name, slug, description, monthly_fee, currency_code,
	platform_fee_discount_percent, stripe_price_id, max_niches, feature_summary,
	created_at, updated_at
`

func scanCreatorPlan(row pgx.Row) (*monetisation.CreatorPlan, error) {
	var p monetisation.CreatorPlan
	err := row.Scan(
		&p.ID, &p.Name, &p.Slug, &p.Description, &p.MonthlyFee, &p.CurrencyCode,
		&p.PlatformFeeDiscountPercent, &p.StripePriceID, &p.MaxNiches, &p.FeatureSummary,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create inserts a plan. A taken slug yields ErrConflict.
func (r *CreatorPlanRepository) Create(ctx context.Context, p *monetisation.CreatorPlan) error {
	query := `
		INSERT INTO creator_plans (
			name, slug, description, monthly_fee, currency_code,
			platform_fee_discount_percent, stripe_price_id, max_niches, feature_summary
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		p.Name, p.Slug, p.Description, p.MonthlyFee, p.CurrencyCode,
		p.PlatformFeeDiscountPercent, p.StripePriceID, p.MaxNiches, p.FeatureSummary,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	return mapError(err, "failed to create creator plan")
}

// Update rewrites every mutable column of the plan. The slug is fixed at creation.
func (r *CreatorPlanRepository) Update(ctx context.Context, p *monetisation.CreatorPlan) error {
	query := `
		UPDATE creator_plans SET
			name = $2,
			description = $3,
			monthly_fee = $4,
			currency_code = $5,
			platform_fee_discount_percent = $6,
			stripe_price_id = $7,
			max_niches = $8,
			feature_summary = $9,
			updated_at = NOW()
		WHERE id = $1
		RETURNING slug, updated_at
	`
	err := r.db.QueryRow(ctx, query,
		p.ID, p.Name, p.Description, p.MonthlyFee, p.CurrencyCode,
		p.PlatformFeeDiscountPercent, p.StripePriceID, p.MaxNiches, p.FeatureSummary,
	).Scan(&p.Slug, &p.UpdatedAt)
	return mapError(err, "failed to update creator plan")
}

// FindByID retrieves a plan by ID
func (r *CreatorPlanRepository) FindByID(ctx context.Context, id int64) (*monetisation.CreatorPlan, error) {
	query := `SELECT ` + creatorPlanColumns + ` FROM creator_plans WHERE id = $1`
	p, err := scanCreatorPlan(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, mapError(err, "failed to find creator plan")
	}
	return p, nil
}

// ListByMonthlyFee returns all plans, cheapest first. Ties break on id.
func (r *CreatorPlanRepository) ListByMonthlyFee(ctx context.Context) ([]*monetisation.CreatorPlan, error) {
	query := `SELECT ` + creatorPlanColumns + ` FROM creator_plans ORDER BY monthly_fee ASC, id ASC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list creator plans: %w", err)
	}
	defer rows.Close()

	plans := []*monetisation.CreatorPlan{}
	for rows.Next() {
		p, err := scanCreatorPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan creator plan: %w", err)
		}
		plans = append(plans, p)
	}
	return plans, rows.Err()
}

// CountCreatorsByPlan counts users per plan whose subscription has one of statuses.
func (r *CreatorPlanRepository) CountCreatorsByPlan(ctx context.Context, statuses []string) (map[int64]int64, error) {
	if len(statuses) == 0 {
		return nil, fmt.Errorf("%w: statuses required", xerrors.ErrInvalidInput)
	}
	query := `
		SELECT plan_id, COUNT(DISTINCT user_id)
		FROM creator_subscriptions
		WHERE status = ANY($1)
		GROUP BY plan_id
	`
	rows, err := r.db.Query(ctx, query, pq.Array(statuses))
	if err != nil {
		return nil, fmt.Errorf("failed to count creators by plan: %w", err)
	}
	defer rows.Close()

	counts := make(map[int64]int64)
	for rows.Next() {
		var planID, count int64
		if err := rows.Scan(&planID, &count); err != nil {
			return nil, fmt.Errorf("failed to scan plan count: %w", err)
		}
		counts[planID] = count
	}
	return counts, rows.Err()
}
