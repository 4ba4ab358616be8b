package monetisation

import (
	"context"
	"sort"
	"sync"
	"time"

	"nichifier-service/internal/domain/auth"
	"nichifier-service/internal/domain/monetisation"
	"nichifier-service/internal/domain/subscription"
	wstypes "nichifier-service/internal/domain/websocket"
	xerrors "nichifier-service/internal/pkg/errors"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type fakeSettingsStore struct {
	mu      sync.Mutex
	row     *monetisation.PlatformSettings
	creates int
	reads   int
}

func (f *fakeSettingsStore) GetOrCreate(_ context.Context) (*monetisation.PlatformSettings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads++
	if f.row == nil {
		f.creates++
		f.row = &monetisation.PlatformSettings{
			ID:                 monetisation.SettingsID,
			PlatformFeePercent: monetisation.DefaultPlatformFeePercent,
			MinimumPlatformFee: monetisation.DefaultMinimumPlatformFee,
			CurrencyCode:       monetisation.DefaultCurrency,
		}
	}
	copied := *f.row
	return &copied, nil
}

func (f *fakeSettingsStore) Update(_ context.Context, settings *monetisation.PlatformSettings) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *settings
	f.row = &copied
	return nil
}

type fakeCache struct {
	value       *monetisation.PlatformSettings
	invalidated int
}

func (f *fakeCache) Get(_ context.Context) (*monetisation.PlatformSettings, bool, error) {
	return f.value, f.value != nil, nil
}

func (f *fakeCache) Set(_ context.Context, settings *monetisation.PlatformSettings) error {
	f.value = settings
	return nil
}

func (f *fakeCache) Invalidate(_ context.Context) error {
	f.value = nil
	f.invalidated++
	return nil
}

type fakePlanStore struct {
	plans  map[int64]*monetisation.CreatorPlan
	nextID int64
	counts map[int64]int64
}

func newFakePlanStore() *fakePlanStore {
	return &fakePlanStore{plans: map[int64]*monetisation.CreatorPlan{}, counts: map[int64]int64{}}
}

func (f *fakePlanStore) slugTaken(slug string, except int64) bool {
	for id, p := range f.plans {
		if p.Slug == slug && id != except {
			return true
		}
	}
	return false
}

func (f *fakePlanStore) Create(_ context.Context, plan *monetisation.CreatorPlan) error {
	if f.slugTaken(plan.Slug, 0) {
		return xerrors.ErrConflict
	}
	f.nextID++
	plan.ID = f.nextID
	plan.CreatedAt = time.Now()
	plan.UpdatedAt = plan.CreatedAt
	copied := *plan
	f.plans[plan.ID] = &copied
	return nil
}

func (f *fakePlanStore) Update(_ context.Context, plan *monetisation.CreatorPlan) error {
	if _, ok := f.plans[plan.ID]; !ok {
		return xerrors.ErrNotFound
	}
	if f.slugTaken(plan.Slug, plan.ID) {
		return xerrors.ErrConflict
	}
	copied := *plan
	f.plans[plan.ID] = &copied
	return nil
}

func (f *fakePlanStore) FindByID(_ context.Context, id int64) (*monetisation.CreatorPlan, error) {
	p, ok := f.plans[id]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	copied := *p
	return &copied, nil
}

func (f *fakePlanStore) ListByMonthlyFee(_ context.Context) ([]*monetisation.CreatorPlan, error) {
	out := make([]*monetisation.CreatorPlan, 0, len(f.plans))
	for _, p := range f.plans {
		out = append(out, p)
	}
	// Mirrors ORDER BY monthly_fee ASC, id ASC.
	sort.Slice(out, func(i, j int) bool {
		if !out[i].MonthlyFee.Equal(out[j].MonthlyFee) {
			return out[i].MonthlyFee.LessThan(out[j].MonthlyFee)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (f *fakePlanStore) CountCreatorsByPlan(_ context.Context, _ []string) (map[int64]int64, error) {
	return f.counts, nil
}

type fakeCreatorSubs struct {
	rows   []*monetisation.CreatorSubscription
	nextID int64
	plans  *fakePlanStore
}

func (f *fakeCreatorSubs) FindLatestByUser(_ context.Context, userID int64, statuses []string) (*monetisation.CreatorSubscription, error) {
	var latest *monetisation.CreatorSubscription
	for _, cs := range f.rows {
		if cs.UserID != userID || !contains(statuses, string(cs.Status)) {
			continue
		}
		if latest == nil || cs.StartedAt.After(latest.StartedAt) {
			latest = cs
		}
	}
	if latest == nil {
		return nil, xerrors.ErrNotFound
	}
	copied := *latest
	if f.plans != nil {
		copied.Plan, _ = f.plans.FindByID(context.Background(), latest.PlanID)
	}
	return &copied, nil
}

func (f *fakeCreatorSubs) Replace(ctx context.Context, cs *monetisation.CreatorSubscription, supersede []string) error {
	if _, err := f.CancelActive(ctx, cs.UserID, supersede); err != nil {
		return err
	}
	f.nextID++
	cs.ID = f.nextID
	if cs.StartedAt.IsZero() {
		cs.StartedAt = time.Now().Add(time.Duration(f.nextID) * time.Millisecond)
	}
	copied := *cs
	f.rows = append(f.rows, &copied)
	return nil
}

func (f *fakeCreatorSubs) CancelActive(_ context.Context, userID int64, statuses []string) (int64, error) {
	var n int64
	for _, cs := range f.rows {
		if cs.UserID == userID && contains(statuses, string(cs.Status)) {
			cs.Status = monetisation.CreatorStatusCancelled
			n++
		}
	}
	return n, nil
}

type fakeNicheCounter map[int64]int64

func (f fakeNicheCounter) CountByOwner(_ context.Context, ownerID int64) (int64, error) {
	return f[ownerID], nil
}

type fakeUserStore struct {
	users   map[int64]*auth.User
	updates int
}

func (f *fakeUserStore) FindByID(_ context.Context, id int64) (*auth.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (f *fakeUserStore) UpdatePrivileges(_ context.Context, id int64, role auth.Role, isPremium bool) error {
	u, ok := f.users[id]
	if !ok {
		return xerrors.ErrNotFound
	}
	f.updates++
	u.Role = role
	u.IsPremium = isPremium
	return nil
}

type fakeSubscriptionStore struct {
	saved  []*subscription.Subscription
	nextID int64
	totals *monetisation.RevenueTotals
}

func (f *fakeSubscriptionStore) Save(_ context.Context, sub *subscription.Subscription) error {
	if sub.ID == 0 {
		f.nextID++
		sub.ID = f.nextID
	}
	sub.UpdatedAt = time.Now()
	copied := *sub
	f.saved = append(f.saved, &copied)
	return nil
}

func (f *fakeSubscriptionStore) RevenueTotals(_ context.Context, _ subscription.Status) (*monetisation.RevenueTotals, error) {
	if f.totals == nil {
		return &monetisation.RevenueTotals{Gross: decimal.Zero, PlatformFees: decimal.Zero, CreatorPayout: decimal.Zero}, nil
	}
	return f.totals, nil
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) NotifyPlanChanged(userID int64, data *wstypes.PlanChangeData) {
	m.Called(userID, data)
}

func (m *mockNotifier) NotifySettingsUpdated(settings *monetisation.PlatformSettings) {
	m.Called(settings)
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
