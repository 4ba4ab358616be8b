package admin

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"nichifier-service/internal/domain/admin"
	"nichifier-service/internal/domain/auth"
	"nichifier-service/internal/domain/niche"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockDashboard struct{ mock.Mock }

func (m *mockDashboard) Dashboard(ctx context.Context) (*admin.Dashboard, error) {
	args := m.Called(ctx)
	d, _ := args.Get(0).(*admin.Dashboard)
	return d, args.Error(1)
}

func serve(t *testing.T, svc DashboardReader) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/admin/dashboard", NewAdminHandler(svc).Dashboard)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil))
	return w
}

func TestDashboardListsUsersAndOwnedNiches(t *testing.T) {
	svc := &mockDashboard{}
	svc.On("Dashboard", mock.Anything).Return(&admin.Dashboard{
		Users: []*auth.User{{ID: 2, Email: "cur@example.com", HashedPassword: "secret-hash", Role: auth.RoleNicheAdmin}},
		Niches: []*admin.NicheListing{{
			Niche: &niche.Niche{ID: 7, Name: "Climate"},
			Owner: &admin.NicheOwner{ID: 2, Email: "cur@example.com", FullName: "Cur"},
		}},
		UserCount:  1,
		NicheCount: 1,
	}, nil)

	w := serve(t, svc)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data struct {
			Users  []map[string]interface{} `json:"users"`
			Niches []struct {
				Name  string            `json:"name"`
				Owner *admin.NicheOwner `json:"owner"`
			} `json:"niches"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Data.Niches, 1)
	assert.Equal(t, "Climate", body.Data.Niches[0].Name)
	assert.Equal(t, "cur@example.com", body.Data.Niches[0].Owner.Email)
	require.Len(t, body.Data.Users, 1)
	assert.NotContains(t, body.Data.Users[0], "hashed_password")
	svc.AssertExpectations(t)
}

func TestDashboardFailureIsServerError(t *testing.T) {
	svc := &mockDashboard{}
	svc.On("Dashboard", mock.Anything).Return(nil, errors.New("db down"))

	w := serve(t, svc)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
