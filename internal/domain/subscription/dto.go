// internal/domain/subscription/dto.go
package subscription

// UpsertRequest selects the products a subscriber wants from a niche.
type UpsertRequest struct {
	WantsNewsletter bool `json:"wants_newsletter"`
	WantsReport     bool `json:"wants_report"`
}

// RevenueEvent is pushed to the niche owner whenever a subscription's split changes.
type RevenueEvent struct {
	SubscriptionID int64  `json:"subscription_id"`
	NicheID        int64  `json:"niche_id"`
	Status         Status `json:"status"`
	BillingCadence string `json:"billing_cadence"`
	CurrencyCode   string `json:"currency_code"`
	GrossAmount    string `json:"gross_amount"`
	PlatformFee    string `json:"platform_fee_amount"`
	CreatorPayout  string `json:"creator_payout_amount"`
}

// NewRevenueEvent renders amounts with two fixed decimals for display.
func NewRevenueEvent(sub *Subscription) *RevenueEvent {
	return &RevenueEvent{
		SubscriptionID: sub.ID,
		NicheID:        sub.NicheID,
		Status:         sub.Status,
		BillingCadence: sub.BillingCadence,
		CurrencyCode:   sub.CurrencyCode,
		GrossAmount:    sub.GrossAmount.StringFixed(2),
		PlatformFee:    sub.PlatformFeeAmount.StringFixed(2),
		CreatorPayout:  sub.CreatorPayoutAmount.StringFixed(2),
	}
}
