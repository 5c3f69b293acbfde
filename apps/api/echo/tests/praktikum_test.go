package tests

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/labasprak/asprak/apps/api/echo"
	"github.com/labasprak/asprak/core/matakuliah"
	"github.com/labasprak/asprak/core/praktikum"
	"github.com/labasprak/asprak/core/rbac"
	"github.com/labasprak/asprak/tests"
)

func Test_praktikumApi(t *testing.T) {
	app, st := setup(t)
	tokens := staff(t, app, st)
	aslab := tokens[rbac.RoleAslab]

	code, env := do(t, app, http.MethodPost, "/api/praktikum", aslab, []byte(`{"nama":" alpro ","tahun_ajaran":"2425-1"}`))
	require.Equal(t, http.StatusOK, code, env.Error)
	var alpro praktikum.Praktikum
	require.NoError(t, json.Unmarshal(env.Data, &alpro))
	assert.Equal(t, "ALPRO", alpro.Nama)

	// existing pair is returned as is
	code, env = do(t, app, http.MethodPost, "/api/praktikum", aslab, []byte(`{"nama":"ALPRO","tahun_ajaran":"2425-1"}`))
	require.Equal(t, http.StatusOK, code, env.Error)
	var again praktikum.Praktikum
	require.NoError(t, json.Unmarshal(env.Data, &again))
	assert.Equal(t, alpro.ID, again.ID)

	bulk := marshalObj(t, echoapi.BulkPraktikumRequest{Rows: []praktikum.NewPraktikum{
		{Nama: "alpro", TahunAjaran: "2425-1"},
		{Nama: "basdat", TahunAjaran: "2425-1"},
		{Nama: "basdat", TahunAjaran: "2425-1"},
		{Nama: "jarkom", TahunAjaran: "2024"},
	}})
	code, env = do(t, app, http.MethodPost, "/api/praktikum/bulk", aslab, bulk)
	require.Equal(t, http.StatusOK, code, env.Error)
	var res praktikum.BulkResult
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, 1, res.Inserted)
	assert.Equal(t, 2, res.Skipped)
	assert.Len(t, res.Errors, 1)

	runHTTPTests(t, app, []httpTest{
		{name: "invalid term", method: http.MethodPost, path: "/api/praktikum", token: aslab, body: []byte(`{"nama":"X","tahun_ajaran":"2024"}`), wantCode: http.StatusBadRequest},
		{name: "koor cannot create", method: http.MethodPost, path: "/api/praktikum", token: tokens[rbac.RoleAsprakKoor], body: []byte(`{}`), wantCode: http.StatusForbidden},
		{
			name: "terms", path: "/api/tahun-ajaran", token: aslab, wantCode: http.StatusOK,
			wantData: marshalObj(t, httpOK{OK: true, Data: []string{"2425-1"}}),
		},
		{name: "delete requires ids", method: http.MethodDelete, path: "/api/praktikum", token: aslab, body: []byte(`{"ids":[]}`), wantCode: http.StatusBadRequest},
	})

	code, env = do(t, app, http.MethodGet, "/api/praktikum?term=2425-1", tokens[rbac.RoleAsprakKoor])
	require.Equal(t, http.StatusOK, code, env.Error)
	var ps []praktikum.WithStats
	require.NoError(t, json.Unmarshal(env.Data, &ps))
	assert.Len(t, ps, 2)

	code, _ = do(t, app, http.MethodDelete, "/api/praktikum", aslab, marshalObj(t, echoapi.DeleteRequest{IDs: []string{alpro.ID}}))
	require.Equal(t, http.StatusOK, code)
	_, err := st.PraktikumRepo.GetByID(context.Background(), alpro.ID)
	assert.Error(t, err)
}

func Test_praktikumApi_details(t *testing.T) {
	app, st := setup(t)
	tokens := staff(t, app, st)
	p1 := testutil.CreatePraktikum(t, st.PraktikumRepo, "ALPRO", "2425-1")
	p2 := testutil.CreatePraktikum(t, st.PraktikumRepo, "BASDAT", "2425-1")
	mk := testutil.CreateMataKuliah(t, st.MataKuliahRepo, p1, "ALGORITMA", "IF")
	testutil.CreateJadwal(t, st.JadwalRepo, mk, "IF-01", "SENIN", 1, "06:30", "A101")
	testutil.CreateJadwal(t, st.JadwalRepo, mk, "IF-01", "RABU", 2, "09:30", "A102")
	testutil.CreateJadwal(t, st.JadwalRepo, mk, "IF-02", "SELASA", 1, "06:30", "A103")

	koor, err := st.Pengguna.GetByEmail(context.Background(), "koor@lab.id")
	require.NoError(t, err)
	_, err = st.Pengguna.SetAssignments(context.Background(), koor.ID, []string{p1.ID})
	require.NoError(t, err)

	code, env := do(t, app, http.MethodGet, "/api/praktikum/"+p1.ID+"/details", tokens[rbac.RoleAsprakKoor])
	require.Equal(t, http.StatusOK, code, env.Error)
	var d praktikum.Details
	require.NoError(t, json.Unmarshal(env.Data, &d))
	assert.Equal(t, 2, d.TotalKelas)
	require.Len(t, d.Classes, 2)

	runHTTPTests(t, app, []httpTest{
		{name: "koor outside scope", path: "/api/praktikum/" + p2.ID + "/details", token: tokens[rbac.RoleAsprakKoor], wantCode: http.StatusForbidden},
		{name: "aslab anywhere", path: "/api/praktikum/" + p2.ID + "/details", token: tokens[rbac.RoleAslab], wantCode: http.StatusOK},
		{name: "unknown", path: "/api/praktikum/nope/details", token: tokens[rbac.RoleAslab], wantCode: http.StatusNotFound},
	})
}

func Test_mataKuliahApi(t *testing.T) {
	app, st := setup(t)
	tokens := staff(t, app, st)
	aslab := tokens[rbac.RoleAslab]

	create := marshalObj(t, echoapi.CreateMataKuliahRequest{
		Data: matakuliah.NewMataKuliah{MKSingkat: "alpro", NamaLengkap: "Algoritma", ProgramStudi: "if"},
		Term: "2425-1",
	})
	code, env := do(t, app, http.MethodPost, "/api/mata-kuliah", aslab, create)
	require.Equal(t, http.StatusCreated, code, env.Error)
	var mk matakuliah.MataKuliah
	require.NoError(t, json.Unmarshal(env.Data, &mk))
	assert.Equal(t, "IF", mk.ProgramStudi)
	assert.Equal(t, matakuliah.CourseColor("ALPRO"), mk.Warna)

	p, err := st.PraktikumRepo.GetByID(context.Background(), mk.IDPraktikum)
	require.NoError(t, err)
	assert.Equal(t, "ALPRO", p.Nama)

	runHTTPTests(t, app, []httpTest{
		{
			name: "unknown prodi", method: http.MethodPost, path: "/api/mata-kuliah", token: aslab,
			body: []byte(`{"data":{"mk_singkat":"ALPRO","nama_lengkap":"X","program_studi":"TI"},"term":"2425-1"}`), wantCode: http.StatusBadRequest,
		},
		{
			name: "term required without praktikum", method: http.MethodPost, path: "/api/mata-kuliah", token: aslab,
			body: []byte(`{"data":{"mk_singkat":"ALPRO","nama_lengkap":"X","program_studi":"IT"}}`), wantCode: http.StatusBadRequest,
		},
		{
			name: "exists", path: "/api/mata-kuliah/exists?id_praktikum=" + p.ID + "&program_studi=if", token: aslab, wantCode: http.StatusOK,
			wantData: marshalObj(t, httpOK{OK: true, Data: echoapi.ExistsResponse{Exists: true}}),
		},
		{
			name: "not exists", path: "/api/mata-kuliah/exists?id_praktikum=" + p.ID + "&program_studi=SE", token: aslab, wantCode: http.StatusOK,
			wantData: marshalObj(t, httpOK{OK: true, Data: echoapi.ExistsResponse{Exists: false}}),
		},
		{name: "exists needs params", path: "/api/mata-kuliah/exists", token: aslab, wantCode: http.StatusBadRequest},
		{
			name: "colour by praktikum", method: http.MethodPut, path: "/api/mata-kuliah/colors/by-praktikum", token: aslab,
			body: []byte(`{"nama":"alpro","warna":"#123456"}`), wantCode: http.StatusOK,
			wantData: marshalObj(t, httpOK{OK: true, Data: echoapi.UpdatedResponse{Updated: 1}}),
		},
	})

	got, err := st.MataKuliah.GetByID(context.Background(), mk.ID)
	require.NoError(t, err)
	assert.Equal(t, "#123456", got.Warna)

	bulk := marshalObj(t, echoapi.BulkMataKuliahRequest{
		Data: []matakuliah.NewMataKuliah{
			{MKSingkat: "ALPRO", NamaLengkap: "Algoritma", ProgramStudi: "IT"},
			{MKSingkat: "BASDAT", NamaLengkap: "Basis Data", ProgramStudi: "IF"},
			{MKSingkat: "BASDAT", NamaLengkap: "", ProgramStudi: "IF"},
		},
		Term: "2425-1",
	})
	code, env = do(t, app, http.MethodPost, "/api/mata-kuliah/bulk", aslab, bulk)
	require.Equal(t, http.StatusOK, code, env.Error)
	var res matakuliah.BulkResult
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, 2, res.Inserted)
	assert.Len(t, res.Errors, 1)

	code, env = do(t, app, http.MethodGet, "/api/mata-kuliah?term=2425-1", tokens[rbac.RoleAsprakKoor])
	require.Equal(t, http.StatusOK, code, env.Error)
	var groups []matakuliah.Group
	require.NoError(t, json.Unmarshal(env.Data, &groups))
	require.Len(t, groups, 2)
}
