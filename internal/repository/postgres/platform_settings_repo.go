// internal/repository/postgres/platform_settings_repo.go
package postgres

import (
	"context"

	"nichifier-service/internal/domain/monetisation"

	"github.com/jackc/pgx/v5/pgxpool"
)

type PlatformSettingsRepository struct {
	db *pgxpool.Pool
}

func NewPlatformSettingsRepository(db *pgxpool.Pool) *PlatformSettingsRepository {
	return &PlatformSettingsRepository{db: db}
}

// GetOrCreate inserts the default row if it is missing and returns the singleton.
// The primary key check makes concurrent first calls converge on one row.
func (r *PlatformSettingsRepository) GetOrCreate(ctx context.Context) (*monetisation.PlatformSettings, error) {
	insert := `
		INSERT INTO platform_settings (id, platform_fee_percent, minimum_platform_fee, currency_code)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO NOTHING
	`
	if _, err := r.db.Exec(ctx, insert,
		monetisation.SettingsID,
		monetisation.DefaultPlatformFeePercent,
		monetisation.DefaultMinimumPlatformFee,
		monetisation.DefaultCurrency,
	); err != nil {
		return nil, mapError(err, "failed to create platform settings")
	}

	query := `
		SELECT id, platform_fee_percent, minimum_platform_fee, currency_code,
		       stripe_publishable_key, stripe_secret_key, created_at, updated_at
		FROM platform_settings
		WHERE id = $1
	`
	var s monetisation.PlatformSettings
	err := r.db.QueryRow(ctx, query, monetisation.SettingsID).Scan(
		&s.ID, &s.PlatformFeePercent, &s.MinimumPlatformFee, &s.CurrencyCode,
		&s.StripePublishableKey, &s.StripeSecretKey, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, mapError(err, "failed to load platform settings")
	}
	return &s, nil
}

// Update overwrites the singleton and refreshes updated_at.
func (r *PlatformSettingsRepository) Update(ctx context.Context, s *monetisation.PlatformSettings) error {
	query := `
		UPDATE platform_settings SET
			platform_fee_percent = $2,
			minimum_platform_fee = $3,
			currency_code = $4,
			stripe_publishable_key = $5,
			stripe_secret_key = $6,
			updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err := r.db.QueryRow(ctx, query,
		monetisation.SettingsID, s.PlatformFeePercent, s.MinimumPlatformFee, s.CurrencyCode,
		s.StripePublishableKey, s.StripeSecretKey,
	).Scan(&s.UpdatedAt)
	return mapError(err, "failed to update platform settings")
}
