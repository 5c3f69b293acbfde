package tests

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labasprak/asprak/core/asprak"
	"github.com/labasprak/asprak/core/auditlog"
	"github.com/labasprak/asprak/core/plotting"
	"github.com/labasprak/asprak/core/rbac"
	"github.com/labasprak/asprak/tests"
)

func Test_asprakApi_upsert(t *testing.T) {
	app, st := setup(t)
	tokens := staff(t, app, st)
	active := time.Now().Year() - 1

	holder := testutil.CreateAsprak(t, st.AsprakRepo, "1301", "ANDI WIJAYA", "AWI", active)
	retired := testutil.CreateAsprak(t, st.AsprakRepo, "1101", "RINA LESTARI", "RLE", 2010)

	upsert := func(nim, nama, kode string, angkatan int, praktikum ...string) []byte {
		return marshalObj(t, asprak.UpsertAsprak{
			NIM: nim, NamaLengkap: nama, Kode: kode, Angkatan: angkatan, Term: "2425-1", PraktikumNames: praktikum,
		})
	}

	runHTTPTests(t, app, []httpTest{
		{
			name: "koor forbidden", method: http.MethodPost, path: "/api/asprak", token: tokens[rbac.RoleAsprakKoor],
			body: upsert("1302", "Budi", "BUD", active), wantCode: http.StatusForbidden,
		},
		{
			name: "invalid kode", method: http.MethodPost, path: "/api/asprak", token: tokens[rbac.RoleAslab],
			body: upsert("1302", "Budi", "B1", active), wantCode: http.StatusBadRequest,
		},
		{
			name: "code held by active asprak", method: http.MethodPost, path: "/api/asprak", token: tokens[rbac.RoleAslab],
			body: upsert("1302", "Budi", "awi", active), wantCode: http.StatusConflict,
			wantData: marshalObj(t, httpErr{Error: asprak.ConflictMessage("AWI", holder)}),
		},
	})

	code, env := do(t, app, http.MethodPost, "/api/asprak", tokens[rbac.RoleAslab],
		upsert("1302", " budi santoso ", "rle", active%100, "alpro", "ALPRO "))
	require.Equal(t, http.StatusOK, code, env.Error)
	var res struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &res))

	ctx := context.Background()
	budi, err := st.AsprakRepo.GetByNIM(ctx, "1302")
	require.NoError(t, err)
	assert.Equal(t, res.ID, budi.ID)
	assert.Equal(t, "BUDI SANTOSO", budi.NamaLengkap)
	assert.Equal(t, "RLE", budi.Kode)
	assert.Equal(t, active, budi.Angkatan)

	old, err := st.AsprakRepo.GetByNIM(ctx, "1101")
	require.NoError(t, err)
	assert.Equal(t, asprak.ExpiredCode(retired), old.Kode)

	as, err := st.Asprak.Assignments(ctx, budi.ID)
	require.NoError(t, err)
	require.Len(t, as, 1)
	assert.Equal(t, "ALPRO", as[0].Nama)
	assert.Equal(t, "2425-1", as[0].TahunAjaran)

	// same nim updates in place
	code, env = do(t, app, http.MethodPost, "/api/asprak", tokens[rbac.RoleAdmin], upsert("1302", "Budi S", "BSA", active))
	require.Equal(t, http.StatusOK, code, env.Error)
	budi, err = st.AsprakRepo.GetByID(ctx, budi.ID)
	require.NoError(t, err)
	assert.Equal(t, "BSA", budi.Kode)
	assert.Equal(t, "BUDI S", budi.NamaLengkap)

	entries, err := st.AuditLog.Query(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, entries.Count)
	require.Len(t, entries.Logs, 2)
	assert.Equal(t, auditlog.ActionUpdate, entries.Logs[0].Action)
	assert.Equal(t, auditlog.ActionCreate, entries.Logs[1].Action)
	assert.Equal(t, budi.ID, entries.Logs[1].RecordID)
}

func Test_asprakApi_generateCode(t *testing.T) {
	app, st := setup(t)
	tokens := staff(t, app, st)
	testutil.CreateAsprak(t, st.AsprakRepo, "1301", "BUNGA SARI", "BUS", 2023)

	runHTTPTests(t, app, []httpTest{
		{
			name: "name required", method: http.MethodPost, path: "/api/asprak/generate-code", token: tokens[rbac.RoleAslab],
			body: []byte(`{"nama_lengkap":"  "}`), wantCode: http.StatusBadRequest,
		},
		{
			name: "no letters", method: http.MethodPost, path: "/api/asprak/generate-code", token: tokens[rbac.RoleAslab],
			body: []byte(`{"nama_lengkap":"123"}`), wantCode: http.StatusBadRequest,
		},
		{
			name: "skips used code", method: http.MethodPost, path: "/api/asprak/generate-code", token: tokens[rbac.RoleAslab],
			body: []byte(`{"nama_lengkap":"Budi Santoso"}`), wantCode: http.StatusOK,
			wantData: marshalObj(t, httpOK{OK: true, Data: asprak.CodeResult{Code: "BSA", Rule: "Standard 2.2"}}),
		},
	})
}

func Test_asprakApi_preview(t *testing.T) {
	app, st := setup(t)
	tokens := staff(t, app, st)
	testutil.CreateAsprak(t, st.AsprakRepo, "1301", "BUNGA SARI", "BUS", 2023)

	body := []byte(`{"rows":[
		{"nama_lengkap":"Budi Santoso","nim":"1302","angkatan":"23"},
		{"nama_lengkap":"Bunga Sari","nim":"1301","kode":"BSR","angkatan":"2023"},
		{"nama_lengkap":"","nim":"1303","angkatan":"2023"}
	]}`)
	code, env := do(t, app, http.MethodPost, "/api/asprak/import/preview", tokens[rbac.RoleAslab], body)
	require.Equal(t, http.StatusOK, code, env.Error)

	var rows []asprak.PreviewRow
	require.NoError(t, json.Unmarshal(env.Data, &rows))
	require.Len(t, rows, 3)
	assert.Equal(t, "BSA", rows[0].Kode)
	assert.Equal(t, 2023, rows[0].Angkatan)
	assert.Equal(t, asprak.StatusOK, rows[0].Status)
	assert.Equal(t, asprak.StatusError, rows[1].Status)
	assert.Equal(t, asprak.StatusError, rows[2].Status)

	code, _ = do(t, app, http.MethodPost, "/api/asprak/import/preview", tokens[rbac.RoleAslab], []byte(`{}`))
	assert.Equal(t, http.StatusBadRequest, code)

	editBody := marshalObj(t, map[string]interface{}{"rows": rows, "index": 0, "kode": "bus"})
	code, env = do(t, app, http.MethodPost, "/api/asprak/import/edit-code", tokens[rbac.RoleAslab], editBody)
	require.Equal(t, http.StatusOK, code, env.Error)
	var edited []asprak.PreviewRow
	require.NoError(t, json.Unmarshal(env.Data, &edited))
	assert.Equal(t, "BUS", edited[0].Kode)
	assert.NotEqual(t, asprak.StatusOK, edited[0].Status)
}

func Test_asprakApi_listDelete(t *testing.T) {
	app, st := setup(t)
	tokens := staff(t, app, st)
	a := testutil.CreateAsprak(t, st.AsprakRepo, "1301", "BUNGA SARI", "BUS", 2023)
	b := testutil.CreateAsprak(t, st.AsprakRepo, "1302", "ANDI", "AND", 2022)
	p := testutil.CreatePraktikum(t, st.PraktikumRepo, "ALPRO", "2425-1")
	linkID := testutil.Link(t, st.PlottingRepo, a, p)

	code, env := do(t, app, http.MethodGet, "/api/asprak?ordering=kode", tokens[rbac.RoleAslab])
	require.Equal(t, http.StatusOK, code, env.Error)
	var as []asprak.Asprak
	require.NoError(t, json.Unmarshal(env.Data, &as))
	require.Len(t, as, 2)
	assert.Equal(t, []string{b.ID, a.ID}, []string{as[0].ID, as[1].ID})

	runHTTPTests(t, app, []httpTest{
		{
			name: "codes", path: "/api/asprak/codes", token: tokens[rbac.RoleAslab], wantCode: http.StatusOK,
			wantData: marshalObj(t, httpOK{OK: true, Data: []string{"AND", "BUS"}}),
		},
		{
			name: "assignments", path: "/api/asprak/" + a.ID + "/assignments", token: tokens[rbac.RoleAslab], wantCode: http.StatusOK,
			wantData: marshalObj(t, httpOK{OK: true, Data: []asprak.Assignment{
				{ID: linkID, IDPraktikum: p.ID, Nama: "ALPRO", TahunAjaran: "2425-1"},
			}}),
		},
		{name: "delete", method: http.MethodDelete, path: "/api/asprak/" + a.ID, token: tokens[rbac.RoleAslab], wantCode: http.StatusOK},
		{name: "delete unknown", method: http.MethodDelete, path: "/api/asprak/" + a.ID, token: tokens[rbac.RoleAslab], wantCode: http.StatusNotFound},
	})

	_, n, err := st.PlottingRepo.Query(context.Background(), plotting.ListFilter{PraktikumID: p.ID})
	require.NoError(t, err)
	assert.Zero(t, n, "links of "+strconv.Quote(a.ID)+" should be gone")
}
