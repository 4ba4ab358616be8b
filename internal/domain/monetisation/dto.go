// internal/domain/monetisation/dto.go
package monetisation

import "github.com/shopspring/decimal"

// UpdateSettingsRequest carries string-encoded amounts as submitted by the admin form.
type UpdateSettingsRequest struct {
	PlatformFeePercent   string `json:"platform_fee_percent" binding:"required"`
	MinimumPlatformFee   string `json:"minimum_platform_fee" binding:"required"`
	CurrencyCode         string `json:"currency_code" binding:"required"`
	StripePublishableKey string `json:"stripe_publishable_key"`
	StripeSecretKey      string `json:"stripe_secret_key"`
}

// SettingsUpdate is the parsed form of UpdateSettingsRequest.
type SettingsUpdate struct {
	PlatformFeePercent   decimal.Decimal
	MinimumPlatformFee   decimal.Decimal
	CurrencyCode         string
	StripePublishableKey string
	StripeSecretKey      string
}

// UpsertPlanRequest creates a plan when ID is nil and updates it otherwise.
type UpsertPlanRequest struct {
	ID                         *int64 `json:"id"`
	Name                       string `json:"name" binding:"required"`
	Slug                       string `json:"slug" binding:"required"`
	Description                string `json:"description"`
	MonthlyFee                 string `json:"monthly_fee" binding:"required"`
	CurrencyCode               string `json:"currency_code"`
	PlatformFeeDiscountPercent string `json:"platform_fee_discount_percent"`
	StripePriceID              string `json:"stripe_price_id"`
	MaxNiches                  int    `json:"max_niches"`
	FeatureSummary             string `json:"feature_summary"`
}

// PlanUpsert is the parsed form of UpsertPlanRequest.
type PlanUpsert struct {
	ID                         *int64
	Name                       string
	Slug                       string
	Description                string
	MonthlyFee                 decimal.Decimal
	CurrencyCode               string
	PlatformFeeDiscountPercent decimal.Decimal
	StripePriceID              string
	MaxNiches                  int
	FeatureSummary             string
}

// AssignPlanRequest attaches a creator plan to a user.
type AssignPlanRequest struct {
	UserID int64  `json:"user_id" binding:"required"`
	PlanID int64  `json:"plan_id" binding:"required"`
	Status string `json:"status"`
}

// PlanUsage reports how many niches a creator owns against the plan limit.
type PlanUsage struct {
	Count int64 `json:"count"`
	Limit int   `json:"limit"`
}

// PlanSummary pairs a plan with the number of creators currently on it.
type PlanSummary struct {
	Plan           *CreatorPlan `json:"plan"`
	ActiveCreators int64        `json:"active_creators"`
}

// RevenueTotals aggregates amounts over active subscriptions.
type RevenueTotals struct {
	Subscriptions int64           `json:"subscriptions"`
	Gross         decimal.Decimal `json:"gross"`
	PlatformFees  decimal.Decimal `json:"platform_fees"`
	CreatorPayout decimal.Decimal `json:"creator_payout"`
}

// Overview is the admin monetisation dashboard payload.
type Overview struct {
	Settings *PlatformSettings `json:"settings"`
	Plans    []*PlanSummary    `json:"plans"`
	Revenue  *RevenueTotals    `json:"revenue"`
}
