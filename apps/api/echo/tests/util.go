package tests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"

	echoapi "github.com/labasprak/asprak/apps/api/echo"
	"github.com/labasprak/asprak/core/pengguna"
	"github.com/labasprak/asprak/core/rbac"
	"github.com/labasprak/asprak/tests"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

const testPassword = "Sup3r-s3cret!"

func setup(t *testing.T) (*echoapi.Server, *testutil.Stack) {
	t.Helper()
	st := testutil.NewStack()
	app := echoapi.NewServer(echoapi.ServerDeps{
		Conf:           st.Conf,
		Logger:         st.Logger,
		Validate:       st.Validate,
		Translator:     st.Translator,
		DisableReqLogs: true,

		PenggunaSvc:    st.Pengguna,
		AsprakSvc:      st.Asprak,
		PraktikumSvc:   st.Praktikum,
		MataKuliahSvc:  st.MataKuliah,
		JadwalSvc:      st.Jadwal,
		PelanggaranSvc: st.Pelanggaran,
		PlottingSvc:    st.Plotting,
		AuditLogSvc:    st.AuditLog,
		SystemSvc:      st.System,
		StatsSvc:       st.Stats,
		ImporterSvc:    st.Importer,
	})
	return app, st
}

// staff creates one active pengguna per role and returns their tokens by role.
func staff(t *testing.T, app *echoapi.Server, st *testutil.Stack) map[string]string {
	t.Helper()
	admin := testutil.CreatePengguna(t, st.PenggunaRepo, "Admin", "admin@lab.id", testPassword, rbac.RoleAdmin, true)
	aslab := testutil.CreatePengguna(t, st.PenggunaRepo, "Aslab", "aslab@lab.id", testPassword, rbac.RoleAslab, true)
	koor := testutil.CreatePengguna(t, st.PenggunaRepo, "Koor", "koor@lab.id", testPassword, rbac.RoleAsprakKoor, true)
	return map[string]string{
		rbac.RoleAdmin:      getToken(t, app, admin),
		rbac.RoleAslab:      getToken(t, app, aslab),
		rbac.RoleAsprakKoor: getToken(t, app, koor),
	}
}

type httpErr struct {
	OK     bool              `json:"ok"`
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

type httpOK struct {
	OK      bool        `json:"ok"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

type envelope struct {
	OK      bool              `json:"ok"`
	Data    json.RawMessage   `json:"data"`
	Message string            `json:"message"`
	Error   string            `json:"error"`
	Fields  map[string]string `json:"fields"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

// do sends a request and decodes the envelope of the answer.
func do(t *testing.T, app *echoapi.Server, method, path, token string, data ...[]byte) (int, envelope) {
	t.Helper()
	req, rec := newAuthRequest(method, path, token, data...)
	app.ServeHTTP(rec, req)

	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("do(%s %s) body %q: %v", method, path, rec.Body.String(), err)
	}
	return rec.Code, env
}

func getToken(t *testing.T, app *echoapi.Server, p pengguna.Pengguna) string {
	token, err := app.GenerateToken(app.NewClaims(p))
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func marshalObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshalObj() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	assert.Equal(t, tt.wantCode, rec.Code, "code")
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func runHTTPTests(t *testing.T, app *echoapi.Server, tests []httpTest) {
	t.Helper()
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			method := tt.method
			if method == "" {
				method = http.MethodGet
			}
			req, rec := newAuthRequest(method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}
