package monetisation

import (
	"context"
	"testing"
	"time"

	"nichifier-service/internal/domain/auth"
	"nichifier-service/internal/domain/monetisation"
	"nichifier-service/internal/domain/subscription"
	xerrors "nichifier-service/internal/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixture struct {
	svc      *Service
	settings *fakeSettingsStore
	plans    *fakePlanStore
	creators *fakeCreatorSubs
	users    *fakeUserStore
	subs     *fakeSubscriptionStore
	niches   fakeNicheCounter
}

func newFixture(policy monetisation.PayoutPolicy) *fixture {
	f := &fixture{
		settings: &fakeSettingsStore{},
		plans:    newFakePlanStore(),
		users:    &fakeUserStore{users: map[int64]*auth.User{}},
		subs:     &fakeSubscriptionStore{},
		niches:   fakeNicheCounter{},
	}
	f.creators = &fakeCreatorSubs{plans: f.plans}
	f.svc = NewService(Deps{
		Settings:             f.settings,
		Plans:                f.plans,
		CreatorSubscriptions: f.creators,
		Niches:               f.niches,
		Users:                f.users,
		Subscriptions:        f.subs,
	}, policy, zap.NewNop())
	return f
}

func (f *fixture) createPlan(t *testing.T, slug, fee, discount string, maxNiches int) *monetisation.CreatorPlan {
	t.Helper()
	plan, err := f.svc.UpsertCreatorPlan(context.Background(), &monetisation.PlanUpsert{
		Name:                       slug,
		Slug:                       slug,
		MonthlyFee:                 d(fee),
		PlatformFeeDiscountPercent: d(discount),
		MaxNiches:                  maxNiches,
	})
	require.NoError(t, err)
	return plan
}

func TestGetOrCreatePlatformSettingsIsIdempotent(t *testing.T) {
	f := newFixture(monetisation.PayoutPolicy{})
	ctx := context.Background()

	first, err := f.svc.GetOrCreatePlatformSettings(ctx)
	require.NoError(t, err)
	second, err := f.svc.GetOrCreatePlatformSettings(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, f.settings.creates)
	assertAmount(t, "15.00", first.PlatformFeePercent)
	assertAmount(t, "1.00", first.MinimumPlatformFee)
	assert.Equal(t, "GBP", first.CurrencyCode)
	assert.True(t, first.PlatformFeePercent.Equal(second.PlatformFeePercent))
	assert.True(t, first.MinimumPlatformFee.Equal(second.MinimumPlatformFee))
	assert.Equal(t, first.CurrencyCode, second.CurrencyCode)
}

func TestGetOrCreatePlatformSettingsUsesCache(t *testing.T) {
	f := newFixture(monetisation.PayoutPolicy{})
	cache := &fakeCache{}
	f.svc.cache = cache
	ctx := context.Background()

	_, err := f.svc.GetOrCreatePlatformSettings(ctx)
	require.NoError(t, err)
	_, err = f.svc.GetOrCreatePlatformSettings(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, f.settings.reads)
	assert.NotNil(t, cache.value)
}

func TestUpdatePlatformSettings(t *testing.T) {
	f := newFixture(monetisation.PayoutPolicy{})
	cache := &fakeCache{}
	notifier := &mockNotifier{}
	notifier.On("NotifySettingsUpdated", mock.AnythingOfType("*monetisation.PlatformSettings")).Return()
	f.svc.cache = cache
	f.svc.notifier = notifier

	in, err := ParseSettingsUpdate(&monetisation.UpdateSettingsRequest{
		PlatformFeePercent:   "12.345",
		MinimumPlatformFee:   "0.755",
		CurrencyCode:         " usd ",
		StripePublishableKey: "  ",
		StripeSecretKey:      "sk_test_123",
	})
	require.NoError(t, err)

	settings, err := f.svc.UpdatePlatformSettings(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, "12.35", settings.PlatformFeePercent.StringFixed(2))
	assert.Equal(t, "0.76", settings.MinimumPlatformFee.StringFixed(2))
	assert.Equal(t, "USD", settings.CurrencyCode)
	assert.False(t, settings.StripePublishableKey.Valid)
	assert.Equal(t, "sk_test_123", settings.StripeSecretKey.String)
	assert.Equal(t, 1, cache.invalidated)
	assert.Equal(t, "USD", f.settings.row.CurrencyCode)
	notifier.AssertExpectations(t)
}

func TestUpdatePlatformSettingsRejectsBadInput(t *testing.T) {
	f := newFixture(monetisation.PayoutPolicy{})
	ctx := context.Background()

	_, err := ParseSettingsUpdate(&monetisation.UpdateSettingsRequest{
		PlatformFeePercent: "abc", MinimumPlatformFee: "1", CurrencyCode: "GBP",
	})
	assert.ErrorIs(t, err, xerrors.ErrInvalidAmount)

	_, err = f.svc.UpdatePlatformSettings(ctx, &monetisation.SettingsUpdate{
		PlatformFeePercent: d("101"), MinimumPlatformFee: d("1"), CurrencyCode: "GBP",
	})
	assert.ErrorIs(t, err, xerrors.ErrInvalidInput)

	_, err = f.svc.UpdatePlatformSettings(ctx, &monetisation.SettingsUpdate{
		PlatformFeePercent: d("10"), MinimumPlatformFee: d("-1"), CurrencyCode: "GBP",
	})
	assert.ErrorIs(t, err, xerrors.ErrInvalidInput)
}

func TestUpsertCreatorPlanCreatesWithNormalizedSlug(t *testing.T) {
	f := newFixture(monetisation.PayoutPolicy{})

	plan, err := f.svc.UpsertCreatorPlan(context.Background(), &monetisation.PlanUpsert{
		Name:           "  Pro  ",
		Slug:           " Pro Tier ",
		Description:    "   ",
		MonthlyFee:     d("19.999"),
		MaxNiches:      0,
		FeatureSummary: " Everything ",
	})
	require.NoError(t, err)

	assert.NotZero(t, plan.ID)
	assert.Equal(t, "pro-tier", plan.Slug)
	assert.Equal(t, "Pro", plan.Name)
	assert.False(t, plan.Description.Valid)
	assert.Equal(t, "20.00", plan.MonthlyFee.StringFixed(2))
	assert.Equal(t, "GBP", plan.CurrencyCode)
	assert.Equal(t, 1, plan.MaxNiches)
	assert.Equal(t, "Everything", plan.FeatureSummary)
}

func TestUpsertCreatorPlanUpdatesInPlace(t *testing.T) {
	f := newFixture(monetisation.PayoutPolicy{})
	ctx := context.Background()
	created := f.createPlan(t, "starter", "5.00", "0", 1)

	id := created.ID
	updated, err := f.svc.UpsertCreatorPlan(ctx, &monetisation.PlanUpsert{
		ID:                         &id,
		Name:                       "Starter Plus",
		Slug:                       "Starter Plus",
		MonthlyFee:                 d("7.50"),
		CurrencyCode:               "eur",
		PlatformFeeDiscountPercent: d("2.5"),
		MaxNiches:                  3,
	})
	require.NoError(t, err)

	assert.Equal(t, created.ID, updated.ID)
	stored, err := f.plans.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "starter", stored.Slug, "slug is kept on update")
	assert.Equal(t, "Starter Plus", stored.Name)
	assert.Equal(t, "EUR", stored.CurrencyCode)
	assert.Equal(t, 3, stored.MaxNiches)
	assert.Equal(t, "2.50", stored.PlatformFeeDiscountPercent.StringFixed(2))
	assert.Len(t, f.plans.plans, 1)
}

func TestUpsertCreatorPlanUnknownIDIsNotFound(t *testing.T) {
	f := newFixture(monetisation.PayoutPolicy{})
	missing := int64(42)

	_, err := f.svc.UpsertCreatorPlan(context.Background(), &monetisation.PlanUpsert{
		ID: &missing, Name: "Ghost", Slug: "ghost", MonthlyFee: d("1"),
	})
	assert.ErrorIs(t, err, xerrors.ErrNotFound)
}

func TestUpsertCreatorPlanRejectsNegativeDiscount(t *testing.T) {
	f := newFixture(monetisation.PayoutPolicy{})

	_, err := f.svc.UpsertCreatorPlan(context.Background(), &monetisation.PlanUpsert{
		Name: "Odd", Slug: "odd", MonthlyFee: d("1"), PlatformFeeDiscountPercent: d("-1"),
	})
	assert.ErrorIs(t, err, xerrors.ErrInvalidInput)
}

func TestListCreatorPlansOrderedByMonthlyFee(t *testing.T) {
	f := newFixture(monetisation.PayoutPolicy{})
	f.createPlan(t, "gold", "30.00", "0", 5)
	f.createPlan(t, "bronze", "5.00", "0", 1)
	f.createPlan(t, "silver", "15.00", "0", 2)
	f.createPlan(t, "copper", "5.00", "0", 1)

	plans, err := f.svc.ListCreatorPlans(context.Background())
	require.NoError(t, err)
	slugs := make([]string, 0, len(plans))
	for _, p := range plans {
		slugs = append(slugs, p.Slug)
	}
	// Equal fees fall back to creation order.
	assert.Equal(t, []string{"bronze", "copper", "silver", "gold"}, slugs)
}

func TestGetActiveCreatorSubscriptionPicksLatestActive(t *testing.T) {
	f := newFixture(monetisation.PayoutPolicy{})
	plan := f.createPlan(t, "pro", "10", "5", 2)
	now := time.Now()
	f.creators.rows = []*monetisation.CreatorSubscription{
		{ID: 1, UserID: 7, PlanID: plan.ID, Status: monetisation.CreatorStatusActive, StartedAt: now.Add(-48 * time.Hour)},
		{ID: 2, UserID: 7, PlanID: plan.ID, Status: monetisation.CreatorStatusTrialing, StartedAt: now.Add(-time.Hour)},
		{ID: 3, UserID: 7, PlanID: plan.ID, Status: monetisation.CreatorStatusCancelled, StartedAt: now},
	}

	cs, err := f.svc.GetActiveCreatorSubscription(context.Background(), 7)
	require.NoError(t, err)
	require.NotNil(t, cs)
	assert.Equal(t, int64(2), cs.ID)

	none, err := f.svc.GetActiveCreatorSubscription(context.Background(), 8)
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestPlanUsageAndNicheCount(t *testing.T) {
	f := newFixture(monetisation.PayoutPolicy{})
	plan := f.createPlan(t, "pro", "10", "0", 4)
	f.creators.rows = []*monetisation.CreatorSubscription{
		{ID: 1, UserID: 3, PlanID: plan.ID, Status: monetisation.CreatorStatusActive, StartedAt: time.Now()},
	}
	f.niches[3] = 2

	count, err := f.svc.CountActiveNichesForUser(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	usage, err := f.svc.PlanUsage(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, &monetisation.PlanUsage{Count: 2, Limit: 4}, usage)

	noPlan, err := f.svc.PlanUsage(context.Background(), 99)
	require.NoError(t, err)
	assert.Nil(t, noPlan)
}

func TestAttachCreatorPrivileges(t *testing.T) {
	f := newFixture(monetisation.PayoutPolicy{})
	plan := f.createPlan(t, "pro", "10", "0", 2)
	f.users.users[1] = &auth.User{ID: 1, Role: auth.RoleSubscriber}
	f.users.users[2] = &auth.User{ID: 2, Role: auth.RoleNicheAdmin, IsPremium: true}
	f.users.users[3] = &auth.User{ID: 3, Role: auth.RoleAdmin}
	f.creators.rows = []*monetisation.CreatorSubscription{
		{ID: 1, UserID: 1, PlanID: plan.ID, Status: monetisation.CreatorStatusActive, StartedAt: time.Now()},
	}
	ctx := context.Background()

	withPlan, _ := f.users.FindByID(ctx, 1)
	got, err := f.svc.AttachCreatorPrivileges(ctx, withPlan)
	require.NoError(t, err)
	assert.Equal(t, plan.ID, got.ID)
	assert.Equal(t, auth.RoleNicheAdmin, f.users.users[1].Role)
	assert.True(t, f.users.users[1].IsPremium)

	lapsed, _ := f.users.FindByID(ctx, 2)
	_, err = f.svc.AttachCreatorPrivileges(ctx, lapsed)
	require.NoError(t, err)
	assert.Equal(t, auth.RoleSubscriber, f.users.users[2].Role)
	assert.False(t, f.users.users[2].IsPremium)

	admin, _ := f.users.FindByID(ctx, 3)
	_, err = f.svc.AttachCreatorPrivileges(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, auth.RoleAdmin, f.users.users[3].Role)
	assert.True(t, f.users.users[3].IsPremium)
}

func TestAssignCreatorPlanSupersedesPrevious(t *testing.T) {
	f := newFixture(monetisation.PayoutPolicy{})
	notifier := &mockNotifier{}
	notifier.On("NotifyPlanChanged", int64(5), mock.Anything).Return().Twice()
	f.svc.notifier = notifier
	basic := f.createPlan(t, "basic", "5", "0", 1)
	pro := f.createPlan(t, "pro", "20", "10", 5)
	f.users.users[5] = &auth.User{ID: 5, Role: auth.RoleSubscriber}
	ctx := context.Background()

	_, err := f.svc.AssignCreatorPlan(ctx, &monetisation.AssignPlanRequest{UserID: 5, PlanID: basic.ID})
	require.NoError(t, err)
	cs, err := f.svc.AssignCreatorPlan(ctx, &monetisation.AssignPlanRequest{UserID: 5, PlanID: pro.ID, Status: "trialing"})
	require.NoError(t, err)

	assert.Equal(t, monetisation.CreatorStatusTrialing, cs.Status)
	assert.Equal(t, monetisation.CreatorStatusCancelled, f.creators.rows[0].Status)
	active, err := f.svc.ActivePlanForUser(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, pro.ID, active.ID)
	assert.Equal(t, auth.RoleNicheAdmin, f.users.users[5].Role)
	notifier.AssertExpectations(t)

	_, err = f.svc.AssignCreatorPlan(ctx, &monetisation.AssignPlanRequest{UserID: 5, PlanID: pro.ID, Status: "cancelled"})
	assert.ErrorIs(t, err, xerrors.ErrInvalidInput)
}

func TestCancelCreatorPlan(t *testing.T) {
	f := newFixture(monetisation.PayoutPolicy{})
	plan := f.createPlan(t, "pro", "20", "0", 5)
	f.users.users[5] = &auth.User{ID: 5, Role: auth.RoleNicheAdmin, IsPremium: true}
	f.creators.rows = []*monetisation.CreatorSubscription{
		{ID: 1, UserID: 5, PlanID: plan.ID, Status: monetisation.CreatorStatusActive, StartedAt: time.Now()},
	}
	ctx := context.Background()

	require.NoError(t, f.svc.CancelCreatorPlan(ctx, 5))
	assert.Equal(t, auth.RoleSubscriber, f.users.users[5].Role)
	assert.False(t, f.users.users[5].IsPremium)

	assert.ErrorIs(t, f.svc.CancelCreatorPlan(ctx, 5), xerrors.ErrNotFound)
}

func TestEnsureSubscriptionMetrics(t *testing.T) {
	settings := defaultSettings()

	t.Run("paid subscription is active", func(t *testing.T) {
		f := newFixture(monetisation.PayoutPolicy{})
		sub := &subscription.Subscription{UserID: 1, NicheID: 2}

		err := f.svc.EnsureSubscriptionMetrics(context.Background(), sub, MetricsInput{
			GrossAmount: d("10.00"), Settings: settings, CurrencyCode: "GBP", BillingCadence: "monthly",
		})
		require.NoError(t, err)

		assert.Equal(t, subscription.StatusActive, sub.Status)
		assert.Equal(t, "GBP", sub.CurrencyCode)
		assert.Equal(t, "monthly", sub.BillingCadence)
		assertAmount(t, "1.50", sub.PlatformFeeAmount)
		assertAmount(t, "8.50", sub.CreatorPayoutAmount)
		assert.NotZero(t, sub.ID)
		require.Len(t, f.subs.saved, 1)
	})

	t.Run("free subscription is trialing with zero split", func(t *testing.T) {
		f := newFixture(monetisation.PayoutPolicy{})
		sub := &subscription.Subscription{UserID: 1, NicheID: 2, Status: subscription.StatusActive}

		err := f.svc.EnsureSubscriptionMetrics(context.Background(), sub, MetricsInput{
			GrossAmount: d("0"), Settings: settings, CurrencyCode: "GBP", BillingCadence: "monthly",
		})
		require.NoError(t, err)

		assert.Equal(t, subscription.StatusTrialing, sub.Status)
		assertAmount(t, "0", sub.GrossAmount)
		assertAmount(t, "0", sub.PlatformFeeAmount)
		assertAmount(t, "0", sub.CreatorPayoutAmount)
	})

	t.Run("negative payout preserved by default", func(t *testing.T) {
		f := newFixture(monetisation.PayoutPolicy{})
		sub := &subscription.Subscription{UserID: 1, NicheID: 2}

		require.NoError(t, f.svc.EnsureSubscriptionMetrics(context.Background(), sub, MetricsInput{
			GrossAmount: d("0.50"), Settings: settings, CurrencyCode: "GBP", BillingCadence: "weekly",
		}))
		assertAmount(t, "1.00", sub.PlatformFeeAmount)
		assertAmount(t, "-0.50", sub.CreatorPayoutAmount)
	})

	t.Run("negative payout clamped when enabled", func(t *testing.T) {
		f := newFixture(monetisation.PayoutPolicy{ClampNegativePayout: true})
		sub := &subscription.Subscription{UserID: 1, NicheID: 2}

		require.NoError(t, f.svc.EnsureSubscriptionMetrics(context.Background(), sub, MetricsInput{
			GrossAmount: d("0.50"), Settings: settings, CurrencyCode: "GBP", BillingCadence: "weekly",
		}))
		assertAmount(t, "0.50", sub.PlatformFeeAmount)
		assertAmount(t, "0", sub.CreatorPayoutAmount)
	})
}

func TestOverview(t *testing.T) {
	f := newFixture(monetisation.PayoutPolicy{})
	basic := f.createPlan(t, "basic", "5", "0", 1)
	f.plans.counts[basic.ID] = 3
	f.subs.totals = &monetisation.RevenueTotals{Subscriptions: 2, Gross: d("20"), PlatformFees: d("3"), CreatorPayout: d("17")}

	overview, err := f.svc.Overview(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "GBP", overview.Settings.CurrencyCode)
	require.Len(t, overview.Plans, 1)
	assert.Equal(t, int64(3), overview.Plans[0].ActiveCreators)
	assert.Equal(t, int64(2), overview.Revenue.Subscriptions)
}
