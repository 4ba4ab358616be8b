package admin

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"nichifier-service/internal/domain/admin"
	"nichifier-service/internal/domain/auth"
	"nichifier-service/internal/domain/niche"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type staticUsers struct {
	users []*auth.User
	err   error
}

func (s staticUsers) List(context.Context) ([]*auth.User, error) { return s.users, s.err }

type staticNiches []*admin.NicheListing

func (s staticNiches) ListWithOwners(context.Context) ([]*admin.NicheListing, error) { return s, nil }

func TestDashboardCollectsUsersAndNiches(t *testing.T) {
	users := staticUsers{users: []*auth.User{
		{ID: 1, Email: "root@example.com", Role: auth.RoleAdmin},
		{ID: 2, Email: "cur@example.com", Role: auth.RoleNicheAdmin},
	}}
	niches := staticNiches{
		{
			Niche: &niche.Niche{ID: 7, Name: "Climate", OwnerID: sql.NullInt64{Int64: 2, Valid: true}},
			Owner: &admin.NicheOwner{ID: 2, Email: "cur@example.com"},
		},
		{Niche: &niche.Niche{ID: 8, Name: "Orphaned"}},
	}

	d, err := NewDashboardService(users, niches, zap.NewNop()).Dashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, d.UserCount)
	assert.Equal(t, 2, d.NicheCount)
	assert.Equal(t, "cur@example.com", d.Niches[0].Owner.Email)
	assert.Nil(t, d.Niches[1].Owner)
}

func TestDashboardPropagatesStoreErrors(t *testing.T) {
	boom := errors.New("connection reset")
	_, err := NewDashboardService(staticUsers{err: boom}, staticNiches{}, zap.NewNop()).Dashboard(context.Background())
	assert.ErrorIs(t, err, boom)
}
