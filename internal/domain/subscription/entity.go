// internal/domain/subscription/entity.go
package subscription

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// Status of a subscriber's niche subscription.
type Status string

const (
	StatusActive   Status = "active"
	StatusTrialing Status = "trialing"
)

// CadenceBundle is the billing cadence used when both products are selected.
const CadenceBundle = "bundle"

// Subscription links a subscriber to a niche and carries the computed revenue split.
type Subscription struct {
	ID                  int64           `json:"id" db:"id"`
	UserID              int64           `json:"user_id" db:"user_id"`
	NicheID             int64           `json:"niche_id" db:"niche_id"`
	Reference           string          `json:"reference" db:"reference"`
	WantsNewsletter     bool            `json:"wants_newsletter" db:"wants_newsletter"`
	WantsReport         bool            `json:"wants_report" db:"wants_report"`
	Status              Status          `json:"status" db:"status"`
	CurrencyCode        string          `json:"currency_code" db:"currency_code"`
	BillingCadence      string          `json:"billing_cadence" db:"billing_cadence"`
	GrossAmount         decimal.Decimal `json:"gross_amount" db:"gross_amount"`
	PlatformFeeAmount   decimal.Decimal `json:"platform_fee_amount" db:"platform_fee_amount"`
	CreatorPayoutAmount decimal.Decimal `json:"creator_payout_amount" db:"creator_payout_amount"`
	StartedAt           time.Time       `json:"started_at" db:"started_at"`
	ExpiresAt           sql.NullTime    `json:"expires_at" db:"expires_at"`
	CreatedAt           time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at" db:"updated_at"`

	NicheName string `json:"niche_name,omitempty" db:"-"`
}

// IsNew reports whether the subscription has not been persisted yet.
func (s *Subscription) IsNew() bool {
	return s.ID == 0
}
