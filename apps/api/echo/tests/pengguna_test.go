package tests

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labasprak/asprak/core/pengguna"
	"github.com/labasprak/asprak/core/rbac"
	emailsvc "github.com/labasprak/asprak/services/email"
	"github.com/labasprak/asprak/tests"
)

func Test_penggunaApi_create(t *testing.T) {
	app, st := setup(t)
	tokens := staff(t, app, st)
	emailsvc.ResetSentMessages()

	newPengguna := func(nama, email, pwd, role string) []byte {
		return marshalObj(t, pengguna.NewPengguna{NamaLengkap: nama, Email: email, Password: pwd, Role: role})
	}

	runHTTPTests(t, app, []httpTest{
		{
			name: "all fields required", method: http.MethodPost, path: "/api/admin/users", token: tokens[rbac.RoleAdmin],
			body: newPengguna("", "x@lab.id", testPassword, rbac.RoleAslab), wantCode: http.StatusBadRequest,
			wantData: marshalObj(t, httpErr{Error: "Semua field wajib diisi."}),
		},
		{
			name: "unknown role", method: http.MethodPost, path: "/api/admin/users", token: tokens[rbac.RoleAdmin],
			body: newPengguna("Budi", "budi@lab.id", testPassword, "ROOT"), wantCode: http.StatusBadRequest,
		},
		{
			name: "weak password", method: http.MethodPost, path: "/api/admin/users", token: tokens[rbac.RoleAdmin],
			body: newPengguna("Budi", "budi@lab.id", "12345678", rbac.RoleAslab), wantCode: http.StatusBadRequest,
		},
		{
			name: "email taken", method: http.MethodPost, path: "/api/admin/users", token: tokens[rbac.RoleAdmin],
			body: newPengguna("Budi", "ASLAB@lab.id", testPassword, rbac.RoleAslab), wantCode: http.StatusBadRequest,
		},
		{
			name: "ok", method: http.MethodPost, path: "/api/admin/users", token: tokens[rbac.RoleAdmin],
			body: newPengguna(" Budi ", "Budi@Lab.id", testPassword, "aslab"), wantCode: http.StatusCreated,
		},
	})

	p, err := st.Pengguna.GetByEmail(context.Background(), "budi@lab.id")
	require.NoError(t, err)
	assert.Equal(t, "Budi", p.NamaLengkap)
	assert.Equal(t, rbac.RoleAslab, p.Role)
	assert.True(t, p.IsActive)
	assert.NoError(t, p.CheckPassword(testPassword))

	sent := emailsvc.SentMessages
	require.Len(t, sent, 1)
	assert.Equal(t, "budi@lab.id", sent[0].To[0].Address)
}

func Test_penggunaApi_updateDelete(t *testing.T) {
	app, st := setup(t)
	tokens := staff(t, app, st)
	admin, err := st.Pengguna.GetByEmail(context.Background(), "admin@lab.id")
	require.NoError(t, err)
	budi := testutil.CreatePengguna(t, st.PenggunaRepo, "Budi", "budi@lab.id", testPassword, rbac.RoleAslab, true)

	code, env := do(t, app, http.MethodPatch, "/api/admin/users/"+budi.ID, tokens[rbac.RoleAdmin],
		[]byte(`{"role":"ASPRAK_KOOR","is_active":false}`))
	require.Equal(t, http.StatusOK, code, env.Error)
	var updated pengguna.Pengguna
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	assert.Equal(t, rbac.RoleAsprakKoor, updated.Role)
	assert.False(t, updated.IsActive)
	assert.Equal(t, "Budi", updated.NamaLengkap)

	runHTTPTests(t, app, []httpTest{
		{
			name: "update unknown", method: http.MethodPatch, path: "/api/admin/users/nope", token: tokens[rbac.RoleAdmin],
			body: []byte(`{}`), wantCode: http.StatusNotFound,
		},
		{
			name: "delete self", method: http.MethodDelete, path: "/api/admin/users/" + admin.ID, token: tokens[rbac.RoleAdmin],
			wantCode: http.StatusForbidden, wantData: marshalObj(t, httpErr{Error: "Tidak dapat menghapus akun sendiri"}),
		},
		{name: "delete", method: http.MethodDelete, path: "/api/admin/users/" + budi.ID, token: tokens[rbac.RoleAdmin], wantCode: http.StatusOK},
		{name: "delete again", method: http.MethodDelete, path: "/api/admin/users/" + budi.ID, token: tokens[rbac.RoleAdmin], wantCode: http.StatusNotFound},
	})
}

func Test_penggunaApi_assignments(t *testing.T) {
	app, st := setup(t)
	tokens := staff(t, app, st)
	koor, err := st.Pengguna.GetByEmail(context.Background(), "koor@lab.id")
	require.NoError(t, err)
	p1 := testutil.CreatePraktikum(t, st.PraktikumRepo, "ALPRO", "2425-1")
	p2 := testutil.CreatePraktikum(t, st.PraktikumRepo, "BASDAT", "2425-1")

	runHTTPTests(t, app, []httpTest{
		{
			name: "id_pengguna required", path: "/api/admin/users/assignments", token: tokens[rbac.RoleAdmin],
			wantCode: http.StatusBadRequest, wantData: marshalObj(t, httpErr{Error: "id_pengguna diperlukan."}),
		},
		{
			name: "unknown praktikum", method: http.MethodPut, path: "/api/admin/users/" + koor.ID + "/assignments",
			token: tokens[rbac.RoleAdmin], body: []byte(`{"praktikum_ids":["nope"]}`), wantCode: http.StatusInternalServerError,
		},
	})

	body := marshalObj(t, map[string][]string{"praktikum_ids": {p1.ID, p2.ID, p1.ID}})
	code, env := do(t, app, http.MethodPut, "/api/admin/users/"+koor.ID+"/assignments", tokens[rbac.RoleAdmin], body)
	require.Equal(t, http.StatusOK, code, env.Error)

	code, env = do(t, app, http.MethodGet, "/api/admin/users/assignments?id_pengguna="+koor.ID, tokens[rbac.RoleAdmin])
	require.Equal(t, http.StatusOK, code)
	var as []pengguna.Assignment
	require.NoError(t, json.Unmarshal(env.Data, &as))
	assert.ElementsMatch(t, []pengguna.Assignment{
		{IDPraktikum: p1.ID, TahunAjaran: "2425-1", NamaPraktikum: "ALPRO"},
		{IDPraktikum: p2.ID, TahunAjaran: "2425-1", NamaPraktikum: "BASDAT"},
	}, as)

	body = marshalObj(t, map[string][]string{"praktikum_ids": {p2.ID}})
	code, _ = do(t, app, http.MethodPut, "/api/admin/users/"+koor.ID+"/assignments", tokens[rbac.RoleAdmin], body)
	require.Equal(t, http.StatusOK, code)
	ids, err := st.Pengguna.ActivePraktikumIDs(context.Background(), koor.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{p2.ID}, ids)
}
