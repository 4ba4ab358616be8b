// internal/cache/settings_cache.go
package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"nichifier-service/internal/domain/monetisation"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

const settingsKey = "settings:platform"

// settingsEntry is the cached shape. The publishable key is carried explicitly since
// PlatformSettings hides it from JSON. The secret key is never cached; readers that need
// it load the row from Postgres.
type settingsEntry struct {
	ID                   int16           `json:"id"`
	PlatformFeePercent   decimal.Decimal `json:"platform_fee_percent"`
	MinimumPlatformFee   decimal.Decimal `json:"minimum_platform_fee"`
	CurrencyCode         string          `json:"currency_code"`
	StripePublishableKey *string         `json:"stripe_publishable_key,omitempty"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

// SettingsCache keeps the settings singleton in Redis for ttl.
type SettingsCache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

func NewSettingsCache(client redis.UniversalClient, ttl time.Duration) *SettingsCache {
	return &SettingsCache{client: client, ttl: ttl}
}

// Get returns the cached settings. ok is false on a miss.
func (c *SettingsCache) Get(ctx context.Context) (*monetisation.PlatformSettings, bool, error) {
	data, err := c.client.Get(ctx, settingsKey).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read settings cache: %w", err)
	}

	var entry settingsEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, false, fmt.Errorf("failed to decode settings cache: %w", err)
	}
	return entry.settings(), true, nil
}

func (c *SettingsCache) Set(ctx context.Context, settings *monetisation.PlatformSettings) error {
	data, err := json.Marshal(newSettingsEntry(settings))
	if err != nil {
		return fmt.Errorf("failed to encode settings cache: %w", err)
	}
	if err := c.client.Set(ctx, settingsKey, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write settings cache: %w", err)
	}
	return nil
}

func (c *SettingsCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, settingsKey).Err(); err != nil {
		return fmt.Errorf("failed to invalidate settings cache: %w", err)
	}
	return nil
}

func newSettingsEntry(s *monetisation.PlatformSettings) *settingsEntry {
	return &settingsEntry{
		ID:                   s.ID,
		PlatformFeePercent:   s.PlatformFeePercent,
		MinimumPlatformFee:   s.MinimumPlatformFee,
		CurrencyCode:         s.CurrencyCode,
		StripePublishableKey: fromNull(s.StripePublishableKey),
		CreatedAt:            s.CreatedAt,
		UpdatedAt:            s.UpdatedAt,
	}
}

func (e *settingsEntry) settings() *monetisation.PlatformSettings {
	return &monetisation.PlatformSettings{
		ID:                   e.ID,
		PlatformFeePercent:   e.PlatformFeePercent,
		MinimumPlatformFee:   e.MinimumPlatformFee,
		CurrencyCode:         e.CurrencyCode,
		StripePublishableKey: toNull(e.StripePublishableKey),
		CreatedAt:            e.CreatedAt,
		UpdatedAt:            e.UpdatedAt,
	}
}

func fromNull(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

func toNull(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}
