package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labasprak/asprak/core/importer"
	"github.com/labasprak/asprak/core/rbac"
	"github.com/labasprak/asprak/services/spreadsheet"
	"github.com/labasprak/asprak/tests"
)

var seed = importer.Dataset{
	Praktikum: []importer.PraktikumRow{{NamaSingkat: "ALPRO", TahunAjaran: "2425-1"}},
	MataKuliah: []importer.MataKuliahRow{
		{MKSingkat: "ALPRO", ProgramStudi: "IF", NamaLengkap: "ALGORITMA PEMROGRAMAN", DosenKoor: "DR. X"},
	},
	Asprak: []importer.AsprakRow{{NIM: "1301", NamaLengkap: "BUNGA SARI", Kode: "BUS", Angkatan: 2023}},
	Jadwal: []importer.JadwalRow{
		{Kelas: "IF-01", NamaSingkat: "ALPRO", Hari: "SENIN", Sesi: 1, Jam: "06:30", Ruangan: "A101", TotalAsprak: 2, Dosen: "DR. X"},
	},
	AsprakPraktikum: []importer.LinkRow{{KodeAsprak: "BUS", MKSingkat: "ALPRO"}},
}

func uploadRequest(t *testing.T, path, token, filename string, content []byte, fields map[string]string) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if filename != "" {
		fw, err := w.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	return req, httptest.NewRecorder()
}

func workbook(t *testing.T, d importer.Dataset) []byte {
	var buf bytes.Buffer
	require.NoError(t, spreadsheet.WriteWorkbook(&buf, d.Tables()...))
	return buf.Bytes()
}

func Test_datasetApi_importExport(t *testing.T) {
	app, st := setup(t)
	tokens := staff(t, app, st)
	admin := tokens[rbac.RoleAdmin]

	upload := func(token, filename string, content []byte) (int, envelope) {
		req, rec := uploadRequest(t, "/api/import", token, filename, content, map[string]string{"term": "2425-1"})
		app.ServeHTTP(rec, req)
		var env envelope
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
		return rec.Code, env
	}

	code, env := upload(tokens[rbac.RoleAslab], "seed.xlsx", workbook(t, seed))
	assert.Equal(t, http.StatusForbidden, code)
	code, env = upload(admin, "", nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "No file provided", env.Error)
	code, _ = upload(admin, "seed.csv", []byte("a,b\n1,2\n"))
	assert.Equal(t, http.StatusBadRequest, code)

	code, env = upload(admin, "seed.xlsx", workbook(t, seed))
	require.Equal(t, http.StatusOK, code, env.Error)
	var res importer.Result
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, 1, res.Inserted)

	code, env = do(t, app, http.MethodGet, "/api/export?term=2425-1", tokens[rbac.RoleAslab])
	require.Equal(t, http.StatusOK, code, env.Error)
	var exported importer.Dataset
	require.NoError(t, json.Unmarshal(env.Data, &exported))
	assert.Equal(t, seed, exported)

	code, _ = do(t, app, http.MethodGet, "/api/export", tokens[rbac.RoleAslab])
	assert.Equal(t, http.StatusBadRequest, code)

	req, rec := newAuthRequest(http.MethodGet, "/api/export/xlsx?term=2425-1", tokens[rbac.RoleAslab])
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), "dataset_2425-1.xlsx")
	wb, err := spreadsheet.ReadWorkbook(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	for _, sheet := range importer.Sheets {
		assert.Contains(t, wb, sheet)
	}
	require.Len(t, wb[importer.SheetJadwal], 1)
	assert.Equal(t, "IF-01", wb[importer.SheetJadwal][0]["kelas"])
}

func Test_datasetApi_importRollback(t *testing.T) {
	app, st := setup(t)
	tokens := staff(t, app, st)

	broken := seed
	broken.Jadwal = append([]importer.JadwalRow{}, seed.Jadwal...)
	broken.Jadwal = append(broken.Jadwal, importer.JadwalRow{Kelas: "SI-01", NamaSingkat: "UNKNOWN", Hari: "RABU"})

	req, rec := uploadRequest(t, "/api/import", tokens[rbac.RoleAdmin], "seed.xlsx", workbook(t, broken), nil)
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Import FAILED & ROLLED BACK")

	ctx := context.Background()
	ps, err := st.Praktikum.ByTerm(ctx, "2425-1")
	require.NoError(t, err)
	assert.Empty(t, ps)
	_, err = st.AsprakRepo.GetByNIM(ctx, "1301")
	assert.Error(t, err)
}

func Test_datasetApi_clear(t *testing.T) {
	app, st := setup(t)
	tokens := staff(t, app, st)
	p := testutil.CreatePraktikum(t, st.PraktikumRepo, "ALPRO", "2425-1")
	mk := testutil.CreateMataKuliah(t, st.MataKuliahRepo, p, "ALGORITMA", "IF")
	testutil.CreateJadwal(t, st.JadwalRepo, mk, "IF-01", "SENIN", 1, "06:30", "A101")
	a := testutil.CreateAsprak(t, st.AsprakRepo, "1301", "BUNGA SARI", "BUS", 2023)
	testutil.Link(t, st.PlottingRepo, a, p)

	runHTTPTests(t, app, []httpTest{
		{name: "aslab forbidden", method: http.MethodPost, path: "/api/clear", token: tokens[rbac.RoleAslab], wantCode: http.StatusForbidden},
		{
			name: "ok", method: http.MethodPost, path: "/api/clear", token: tokens[rbac.RoleAdmin], wantCode: http.StatusOK,
			wantData: marshalObj(t, httpOK{OK: true, Message: "Database cleared"}),
		},
	})

	ctx := context.Background()
	terms, err := st.Praktikum.Terms(ctx)
	require.NoError(t, err)
	assert.Empty(t, terms)
	as, err := st.Asprak.Query(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, as)

	// pengguna survive
	_, err = st.Pengguna.GetByEmail(ctx, "admin@lab.id")
	assert.NoError(t, err)
}
