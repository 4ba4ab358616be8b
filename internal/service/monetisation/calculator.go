package monetisation

import (
	"nichifier-service/internal/domain/monetisation"
	"nichifier-service/internal/domain/niche"
	"nichifier-service/internal/domain/subscription"
	"nichifier-service/internal/pkg/money"

	"github.com/shopspring/decimal"
)

// CalculateSubscriptionTotals sums the selected product prices.
func CalculateSubscriptionTotals(newsletterPrice, reportPrice decimal.Decimal, wantsNewsletter, wantsReport bool) decimal.Decimal {
	total := decimal.Zero
	if wantsNewsletter {
		total = total.Add(newsletterPrice)
	}
	if wantsReport {
		total = total.Add(reportPrice)
	}
	return money.Quantize(total)
}

// EffectiveFeePercent is the base platform percent minus the plan discount, never negative.
func EffectiveFeePercent(settings *monetisation.PlatformSettings, plan *monetisation.CreatorPlan) decimal.Decimal {
	percent := settings.PlatformFeePercent
	if plan != nil && plan.PlatformFeeDiscountPercent.IsPositive() {
		percent = percent.Sub(plan.PlatformFeeDiscountPercent)
		if percent.IsNegative() {
			percent = decimal.Zero
		}
	}
	return percent
}

// CalculateRevenueSplit divides gross between the platform and the creator.
// The minimum fee floor applies to the discounted percentage, so a payout can go
// negative when the floor exceeds gross.
func CalculateRevenueSplit(gross decimal.Decimal, settings *monetisation.PlatformSettings, plan *monetisation.CreatorPlan) monetisation.RevenueSplit {
	if !gross.IsPositive() {
		return monetisation.RevenueSplit{PlatformFee: money.Quantize(decimal.Zero), CreatorPayout: money.Quantize(decimal.Zero)}
	}

	fee := money.Percent(gross, EffectiveFeePercent(settings, plan))
	fee = decimal.Max(fee, settings.MinimumPlatformFee)
	fee = money.Quantize(fee)

	return monetisation.RevenueSplit{
		PlatformFee:   fee,
		CreatorPayout: money.Quantize(gross.Sub(fee)),
	}
}

// ApplyPayoutPolicy clamps a negative payout when the policy asks for it. The fee is
// reduced by the same amount so fee + payout still equals gross.
func ApplyPayoutPolicy(split monetisation.RevenueSplit, policy monetisation.PayoutPolicy) monetisation.RevenueSplit {
	if !policy.ClampNegativePayout || !split.CreatorPayout.IsNegative() {
		return split
	}
	return monetisation.RevenueSplit{
		PlatformFee:   money.Quantize(split.PlatformFee.Add(split.CreatorPayout)),
		CreatorPayout: money.Quantize(decimal.Zero),
	}
}

// DeriveBillingCadence picks the cadence label for a product selection.
func DeriveBillingCadence(n *niche.Niche, wantsNewsletter, wantsReport bool) string {
	switch {
	case wantsNewsletter && wantsReport:
		return subscription.CadenceBundle
	case wantsReport:
		return string(n.ReportCadence)
	default:
		return string(n.NewsletterCadence)
	}
}
