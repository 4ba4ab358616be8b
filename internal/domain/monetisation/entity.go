// internal/domain/monetisation/entity.go
package monetisation

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// Defaults used when the settings row is first created.
var (
	DefaultPlatformFeePercent = decimal.RequireFromString("15.00")
	DefaultMinimumPlatformFee = decimal.RequireFromString("1.00")
)

const DefaultCurrency = "GBP"

// SettingsID is the only primary key the platform_settings table accepts.
const SettingsID = 1

// PlatformSettings is the singleton fee configuration.
type PlatformSettings struct {
	ID                   int16           `json:"id" db:"id"`
	PlatformFeePercent   decimal.Decimal `json:"platform_fee_percent" db:"platform_fee_percent"`
	MinimumPlatformFee   decimal.Decimal `json:"minimum_platform_fee" db:"minimum_platform_fee"`
	CurrencyCode         string          `json:"currency_code" db:"currency_code"`
	StripePublishableKey sql.NullString  `json:"-" db:"stripe_publishable_key"`
	StripeSecretKey      sql.NullString  `json:"-" db:"stripe_secret_key"`
	CreatedAt            time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at" db:"updated_at"`
}

// CreatorPlan is a pricing tier bought by niche curators.
type CreatorPlan struct {
	ID                         int64           `json:"id" db:"id"`
	Name                       string          `json:"name" db:"name"`
	Slug                       string          `json:"slug" db:"slug"`
	Description                sql.NullString  `json:"description" db:"description"`
	MonthlyFee                 decimal.Decimal `json:"monthly_fee" db:"monthly_fee"`
	CurrencyCode               string          `json:"currency_code" db:"currency_code"`
	PlatformFeeDiscountPercent decimal.Decimal `json:"platform_fee_discount_percent" db:"platform_fee_discount_percent"`
	StripePriceID              sql.NullString  `json:"stripe_price_id" db:"stripe_price_id"`
	MaxNiches                  int             `json:"max_niches" db:"max_niches"`
	FeatureSummary             string          `json:"feature_summary" db:"feature_summary"`
	CreatedAt                  time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt                  time.Time       `json:"updated_at" db:"updated_at"`
}

// CreatorSubscriptionStatus represents the lifecycle of a curator's plan.
type CreatorSubscriptionStatus string

const (
	CreatorStatusActive    CreatorSubscriptionStatus = "active"
	CreatorStatusTrialing  CreatorSubscriptionStatus = "trialing"
	CreatorStatusPastDue   CreatorSubscriptionStatus = "past_due"
	CreatorStatusCancelled CreatorSubscriptionStatus = "cancelled"
)

// ActiveCreatorStatuses are the statuses that count as "the user's active plan".
var ActiveCreatorStatuses = []string{
	string(CreatorStatusActive),
	string(CreatorStatusTrialing),
}

// IsActive reports whether the status grants plan privileges.
func (s CreatorSubscriptionStatus) IsActive() bool {
	return s == CreatorStatusActive || s == CreatorStatusTrialing
}

// CreatorSubscription links a user to a CreatorPlan.
type CreatorSubscription struct {
	ID        int64                     `json:"id" db:"id"`
	UserID    int64                     `json:"user_id" db:"user_id"`
	PlanID    int64                     `json:"plan_id" db:"plan_id"`
	Status    CreatorSubscriptionStatus `json:"status" db:"status"`
	StartedAt time.Time                 `json:"started_at" db:"started_at"`
	EndsAt    sql.NullTime              `json:"ends_at" db:"ends_at"`
	CreatedAt time.Time                 `json:"created_at" db:"created_at"`
	UpdatedAt time.Time                 `json:"updated_at" db:"updated_at"`

	Plan *CreatorPlan `json:"plan,omitempty" db:"-"`
}

// RevenueSplit is the result of dividing a gross amount between platform and creator.
type RevenueSplit struct {
	PlatformFee   decimal.Decimal `json:"platform_fee"`
	CreatorPayout decimal.Decimal `json:"creator_payout"`
}

// PayoutPolicy controls what happens when the minimum fee exceeds the gross amount.
type PayoutPolicy struct {
	// ClampNegativePayout caps the fee at the gross amount so the payout never drops
	// below zero. Off by default.
	ClampNegativePayout bool
}
