package tests

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labasprak/asprak/core/auditlog"
	"github.com/labasprak/asprak/core/rbac"
)

func Test_systemApi_maintenance(t *testing.T) {
	app, st := setup(t)
	tokens := staff(t, app, st)

	off := marshalObj(t, httpOK{OK: true, Data: map[string]bool{"is_maintenance": false}})
	on := marshalObj(t, httpOK{OK: true, Data: map[string]bool{"is_maintenance": true}})

	runHTTPTests(t, app, []httpTest{
		{name: "public status", path: "/api/system/maintenance", wantCode: http.StatusOK, wantData: off},
		{name: "auth required", method: http.MethodPost, path: "/api/system/maintenance", body: []byte(`{"active":true}`), wantCode: http.StatusUnauthorized},
		{
			name: "admin required", method: http.MethodPost, path: "/api/system/maintenance", token: tokens[rbac.RoleAslab],
			body: []byte(`{"active":true}`), wantCode: http.StatusForbidden, wantData: marshalObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "active must be a boolean", method: http.MethodPost, path: "/api/system/maintenance", token: tokens[rbac.RoleAdmin],
			body: []byte(`{}`), wantCode: http.StatusBadRequest, wantData: marshalObj(t, httpErr{Error: `Field "active" (boolean) diperlukan`}),
		},
		{
			name: "enable", method: http.MethodPost, path: "/api/system/maintenance", token: tokens[rbac.RoleAdmin],
			body: []byte(`{"active":true}`), wantCode: http.StatusOK, wantData: on,
		},
		{name: "status after enable", path: "/api/system/maintenance", wantCode: http.StatusOK, wantData: on},
		{
			name: "non-admin locked out", path: "/api/stats", token: tokens[rbac.RoleAslab],
			wantCode: http.StatusServiceUnavailable, wantData: marshalObj(t, httpErr{Error: "Sistem sedang dalam maintenance"}),
		},
		{name: "admin still served", path: "/api/stats", token: tokens[rbac.RoleAdmin], wantCode: http.StatusOK},
		{
			name: "disable", method: http.MethodPost, path: "/api/system/maintenance", token: tokens[rbac.RoleAdmin],
			body: []byte(`{"active":false}`), wantCode: http.StatusOK, wantData: off,
		},
		{name: "non-admin served again", path: "/api/stats", token: tokens[rbac.RoleAslab], wantCode: http.StatusOK},
	})

	page, err := st.AuditLog.Query(context.Background(), 1, 10)
	require.NoError(t, err)
	require.Equal(t, 2, page.Count)
	assert.Equal(t, auditlog.ActionDisableMaintenance, page.Logs[0].Action)
	assert.Equal(t, auditlog.ActionEnableMaintenance, page.Logs[1].Action)
	require.NotNil(t, page.Logs[0].Pengguna)
	assert.Equal(t, rbac.RoleAdmin, page.Logs[0].Pengguna.Role)
}

func Test_home(t *testing.T) {
	app, _ := setup(t)

	req, rec := newRequest(http.MethodGet, "/")
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Welcome to Asprak API!", rec.Body.String())

	req, rec = newRequest(http.MethodGet, "/metrics")
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "asprak_http_requests_total")
}

// Test_roles checks the role table of a sample of routes.
func Test_roles(t *testing.T) {
	app, st := setup(t)
	tokens := staff(t, app, st)

	tests := []struct {
		method, path string
		allowed      []string
	}{
		{http.MethodGet, "/api/stats", rbac.AllRoles},
		{http.MethodGet, "/api/tahun-ajaran", rbac.Staff},
		{http.MethodGet, "/api/asprak", rbac.Staff},
		{http.MethodGet, "/api/asprak/codes", rbac.Staff},
		{http.MethodGet, "/api/praktikum", rbac.AllRoles},
		{http.MethodGet, "/api/praktikum/names", rbac.AllRoles},
		{http.MethodGet, "/api/mata-kuliah", rbac.AllRoles},
		{http.MethodGet, "/api/jadwal", rbac.AllRoles},
		{http.MethodGet, "/api/jadwal/sessions", rbac.AllRoles},
		{http.MethodGet, "/api/pelanggaran", rbac.AllRoles},
		{http.MethodGet, "/api/plotting", rbac.AllRoles},
		{http.MethodGet, "/api/audit-logs", rbac.Staff},
		{http.MethodGet, "/api/admin/users", []string{rbac.RoleAdmin}},
		{http.MethodGet, "/api/export?term=2425-1", rbac.Staff},
	}
	for _, tt := range tests {
		for _, role := range rbac.AllRoles {
			t.Run(role+" "+tt.path, func(t *testing.T) {
				req, rec := newAuthRequest(tt.method, tt.path, tokens[role])
				app.ServeHTTP(rec, req)
				if rbac.HasRole(role, tt.allowed...) {
					assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
				} else {
					assert.Equal(t, http.StatusForbidden, rec.Code, rec.Body.String())
				}
			})
		}
	}
}
