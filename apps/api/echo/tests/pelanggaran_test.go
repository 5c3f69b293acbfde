package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labasprak/asprak/core/jadwal"
	"github.com/labasprak/asprak/core/pelanggaran"
	"github.com/labasprak/asprak/core/rbac"
	"github.com/labasprak/asprak/services/spreadsheet"
	"github.com/labasprak/asprak/tests"
)

type pelanggaranFixture struct {
	tokens   map[string]string
	jadwalP1 jadwal.Jadwal
	jadwalP2 jadwal.Jadwal
	mkP1     int64
	asprakID string
}

// newPelanggaranFixture assigns the koordinator to ALPRO only.
func newPelanggaranFixture(t *testing.T, st *testutil.Stack, tokens map[string]string) pelanggaranFixture {
	ctx := context.Background()
	p1 := testutil.CreatePraktikum(t, st.PraktikumRepo, "ALPRO", "2425-1")
	p2 := testutil.CreatePraktikum(t, st.PraktikumRepo, "BASDAT", "2425-1")
	mk1 := testutil.CreateMataKuliah(t, st.MataKuliahRepo, p1, "Algoritma Pemrograman", "IF")
	mk2 := testutil.CreateMataKuliah(t, st.MataKuliahRepo, p2, "Basis Data", "IF")
	a := testutil.CreateAsprak(t, st.AsprakRepo, "1301", "BUNGA SARI", "BUS", 2023)

	koor, err := st.Pengguna.GetByEmail(ctx, "koor@lab.id")
	require.NoError(t, err)
	_, err = st.Pengguna.SetAssignments(ctx, koor.ID, []string{p1.ID})
	require.NoError(t, err)

	return pelanggaranFixture{
		tokens:   tokens,
		jadwalP1: testutil.CreateJadwal(t, st.JadwalRepo, mk1, "IF-01", "SENIN", 1, "06:30", "A101"),
		jadwalP2: testutil.CreateJadwal(t, st.JadwalRepo, mk2, "IF-02", "SELASA", 2, "09:30", "A102"),
		mkP1:     mk1.ID,
		asprakID: a.ID,
	}
}

func (f pelanggaranFixture) body(t *testing.T, j jadwal.Jadwal, modul string) []byte {
	return marshalObj(t, pelanggaran.NewPelanggaran{IDAsprak: f.asprakID, IDJadwal: j.ID, Jenis: "TELAT", Modul: modul})
}

func Test_pelanggaranApi_scope(t *testing.T) {
	app, st := setup(t)
	f := newPelanggaranFixture(t, st, staff(t, app, st))
	koor, aslab := f.tokens[rbac.RoleAsprakKoor], f.tokens[rbac.RoleAslab]

	runHTTPTests(t, app, []httpTest{
		{
			name: "jenis required", method: http.MethodPost, path: "/api/pelanggaran", token: aslab,
			body: []byte(fmt.Sprintf(`{"id_asprak":%q,"id_jadwal":%d}`, f.asprakID, f.jadwalP1.ID)), wantCode: http.StatusBadRequest,
		},
		{
			name: "unknown asprak", method: http.MethodPost, path: "/api/pelanggaran", token: aslab,
			body: []byte(fmt.Sprintf(`{"id_asprak":"nope","id_jadwal":%d,"jenis":"TELAT"}`, f.jadwalP1.ID)), wantCode: http.StatusBadRequest,
		},
		{
			name: "koor outside scope", method: http.MethodPost, path: "/api/pelanggaran", token: koor,
			body: f.body(t, f.jadwalP2, "1"), wantCode: http.StatusForbidden,
			wantData: marshalObj(t, httpErr{Error: "Anda tidak mengkoordinasi praktikum ini"}),
		},
		{name: "koor in scope", method: http.MethodPost, path: "/api/pelanggaran", token: koor, body: f.body(t, f.jadwalP1, "1"), wantCode: http.StatusCreated},
		{name: "aslab anywhere", method: http.MethodPost, path: "/api/pelanggaran", token: aslab, body: f.body(t, f.jadwalP2, "2"), wantCode: http.StatusCreated},
	})

	list := func(token string) []pelanggaran.Detail {
		code, env := do(t, app, http.MethodGet, "/api/pelanggaran", token)
		require.Equal(t, http.StatusOK, code, env.Error)
		var ds []pelanggaran.Detail
		require.NoError(t, json.Unmarshal(env.Data, &ds))
		return ds
	}
	assert.Len(t, list(aslab), 2)
	koorList := list(koor)
	require.Len(t, koorList, 1)
	assert.Equal(t, f.jadwalP1.ID, koorList[0].IDJadwal)
	assert.Equal(t, "BUS", koorList[0].Asprak.Kode)
	assert.Equal(t, "Algoritma Pemrograman", koorList[0].Jadwal.MataKuliah.NamaLengkap)

	code, _ := do(t, app, http.MethodGet, fmt.Sprintf("/api/pelanggaran/mata-kuliah/%d", f.jadwalP2.IDMK), koor)
	assert.Equal(t, http.StatusForbidden, code)
	code, _ = do(t, app, http.MethodGet, "/api/pelanggaran/mata-kuliah/0", koor)
	assert.Equal(t, http.StatusBadRequest, code)
}

func Test_pelanggaranApi_finalize(t *testing.T) {
	app, st := setup(t)
	f := newPelanggaranFixture(t, st, staff(t, app, st))
	koor := f.tokens[rbac.RoleAsprakKoor]

	code, env := do(t, app, http.MethodPost, "/api/pelanggaran", koor, f.body(t, f.jadwalP1, "1"))
	require.Equal(t, http.StatusCreated, code, env.Error)
	var created pelanggaran.Pelanggaran
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.False(t, created.IsFinal)

	finalize := []byte(fmt.Sprintf(`{"id_mk":%d}`, f.mkP1))
	runHTTPTests(t, app, []httpTest{
		{
			name: "finalize", method: http.MethodPost, path: "/api/pelanggaran/finalize", token: koor, body: finalize,
			wantCode: http.StatusOK, wantData: marshalObj(t, httpOK{OK: true, Data: map[string]int{"finalized": 1}}),
		},
		{
			name: "finalize again", method: http.MethodPost, path: "/api/pelanggaran/finalize", token: koor, body: finalize,
			wantCode: http.StatusOK, wantData: marshalObj(t, httpOK{OK: true, Data: map[string]int{"finalized": 0}}),
		},
		{
			name: "final cannot be deleted", method: http.MethodDelete, path: fmt.Sprintf("/api/pelanggaran/%d", created.ID), token: koor,
			wantCode: http.StatusConflict,
		},
		{name: "unknown", method: http.MethodDelete, path: "/api/pelanggaran/999", token: koor, wantCode: http.StatusNotFound},
	})

	code, env = do(t, app, http.MethodPost, "/api/pelanggaran", koor, f.body(t, f.jadwalP1, "2"))
	require.Equal(t, http.StatusCreated, code, env.Error)
	require.NoError(t, json.Unmarshal(env.Data, &created))
	code, _ = do(t, app, http.MethodDelete, fmt.Sprintf("/api/pelanggaran/%d", created.ID), koor)
	assert.Equal(t, http.StatusOK, code)
}

func Test_pelanggaranApi_export(t *testing.T) {
	app, st := setup(t)
	f := newPelanggaranFixture(t, st, staff(t, app, st))
	aslab, koor := f.tokens[rbac.RoleAslab], f.tokens[rbac.RoleAsprakKoor]

	for _, j := range []jadwal.Jadwal{f.jadwalP1, f.jadwalP2} {
		code, env := do(t, app, http.MethodPost, "/api/pelanggaran", aslab, f.body(t, j, "3"))
		require.Equal(t, http.StatusCreated, code, env.Error)
	}

	export := func(token, query string) *httptest.ResponseRecorder {
		req, rec := newAuthRequest(http.MethodGet, "/api/pelanggaran/export"+query, token)
		app.ServeHTTP(rec, req)
		return rec
	}

	rec := export(aslab, "?tahun_ajaran=2425-1")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, spreadsheet.ContentTypeXLSX, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "pelanggaran_2425-1.xlsx")

	wb, err := spreadsheet.ReadWorkbook(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	require.Len(t, wb["pelanggaran"], 2)

	rec = export(koor, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	wb, err = spreadsheet.ReadWorkbook(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	rows := wb["pelanggaran"]
	require.Len(t, rows, 1)
	assert.Equal(t, "Algoritma Pemrograman", rows[0]["MK"])
	assert.Equal(t, "BUS", rows[0]["KODE"])
	assert.Equal(t, "IF-01", rows[0]["KELAS"])

	p2, err := st.Praktikum.GetOrCreate(context.Background(), "BASDAT", "2425-1")
	require.NoError(t, err)
	rec = export(koor, "?id_praktikum="+p2.ID)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
