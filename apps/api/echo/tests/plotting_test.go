package tests

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labasprak/asprak/core/plotting"
	"github.com/labasprak/asprak/core/rbac"
	"github.com/labasprak/asprak/tests"
)

func Test_plottingApi(t *testing.T) {
	app, st := setup(t)
	tokens := staff(t, app, st)
	aslab := tokens[rbac.RoleAslab]

	alpro := testutil.CreatePraktikum(t, st.PraktikumRepo, "ALPRO", "2425-1")
	basdat := testutil.CreatePraktikum(t, st.PraktikumRepo, "BASDAT", "2425-1")
	bus := testutil.CreateAsprak(t, st.AsprakRepo, "1301", "BUNGA SARI", "BUS", 2023)
	and1 := testutil.CreateAsprak(t, st.AsprakRepo, "1302", "ANDI", "AND", 2022)
	and2 := testutil.CreateAsprak(t, st.AsprakRepo, "1101", "ANDRE", "AND", 2015)

	validate := marshalObj(t, plotting.ValidateRequest{Term: "2425-1", Rows: []plotting.ImportRow{
		{KodeAsprak: "BUS", MKSingkat: "alpro"},
		{KodeAsprak: "AND", MKSingkat: "ALPRO"},
		{KodeAsprak: "AND", MKSingkat: "BASDAT", SelectedAsprakID: and1.ID},
		{KodeAsprak: "XXX", MKSingkat: "ALPRO"},
		{KodeAsprak: "BUS", MKSingkat: "JARKOM"},
	}})
	code, env := do(t, app, http.MethodPost, "/api/plotting/validate", aslab, validate)
	require.Equal(t, http.StatusOK, code, env.Error)
	var vr plotting.ValidationResult
	require.NoError(t, json.Unmarshal(env.Data, &vr))
	require.Len(t, vr.ValidRows, 2)
	assert.Equal(t, bus.ID, vr.ValidRows[0].AsprakID)
	assert.Equal(t, alpro.ID, vr.ValidRows[0].PraktikumID)
	assert.Equal(t, and1.ID, vr.ValidRows[1].AsprakID)
	require.Len(t, vr.AmbiguousRows, 1)
	assert.Len(t, vr.AmbiguousRows[0].Candidates, 2)
	assert.Len(t, vr.InvalidRows, 2)

	save := marshalObj(t, plotting.SaveRequest{Assignments: []plotting.Assignment{
		{AsprakID: bus.ID, PraktikumID: alpro.ID},
		{AsprakID: and1.ID, PraktikumID: basdat.ID},
		{AsprakID: and2.ID, PraktikumID: alpro.ID},
		{AsprakID: bus.ID, PraktikumID: alpro.ID},
	}})
	runHTTPTests(t, app, []httpTest{
		{name: "term required", method: http.MethodPost, path: "/api/plotting/validate", token: aslab, body: []byte(`{"rows":[]}`), wantCode: http.StatusBadRequest},
		{name: "koor cannot save", method: http.MethodPost, path: "/api/plotting", token: tokens[rbac.RoleAsprakKoor], body: save, wantCode: http.StatusForbidden},
		{
			name: "save", method: http.MethodPost, path: "/api/plotting", token: aslab, body: save, wantCode: http.StatusOK,
			wantData: marshalObj(t, httpOK{OK: true, Data: map[string]int{"inserted": 3}}),
		},
		{
			name: "save again", method: http.MethodPost, path: "/api/plotting", token: aslab, body: save, wantCode: http.StatusOK,
			wantData: marshalObj(t, httpOK{OK: true, Data: map[string]int{"inserted": 0}}),
		},
	})

	list := func(query string) plotting.ListResult {
		code, env := do(t, app, http.MethodGet, "/api/plotting"+query, tokens[rbac.RoleAsprakKoor])
		require.Equal(t, http.StatusOK, code, env.Error)
		var res plotting.ListResult
		require.NoError(t, json.Unmarshal(env.Data, &res))
		return res
	}
	assert.Equal(t, 3, list("?term=2425-1&praktikum=all").Total)
	assert.Equal(t, 2, list("?praktikum="+alpro.ID).Total)
	page := list("?limit=2&page=2")
	assert.Equal(t, 3, page.Total)
	require.Len(t, page.Data, 1)

	first := list("?praktikum=" + basdat.ID).Data[0]
	runHTTPTests(t, app, []httpTest{
		{name: "delete", method: http.MethodDelete, path: fmt.Sprintf("/api/plotting/%d", first.ID), token: aslab, wantCode: http.StatusOK},
		{name: "delete again", method: http.MethodDelete, path: fmt.Sprintf("/api/plotting/%d", first.ID), token: aslab, wantCode: http.StatusNotFound},
		{name: "bad id", method: http.MethodDelete, path: "/api/plotting/abc", token: aslab, wantCode: http.StatusBadRequest},
	})
	assert.Equal(t, 2, list("").Total)
}
