package plotting_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labasprak/asprak/core"
	"github.com/labasprak/asprak/core/plotting"
	"github.com/labasprak/asprak/tests"
)

func TestService_ValidateImport(t *testing.T) {
	st := testutil.NewStack()
	ctx := context.Background()

	alpro := testutil.CreatePraktikum(t, st.PraktikumRepo, "ALPRO", "2425-1")
	testutil.CreatePraktikum(t, st.PraktikumRepo, "JARKOM", "2425-2")
	bus := testutil.CreateAsprak(t, st.AsprakRepo, "1301", "BUNGA SARI", "BUS", 2023)
	and1 := testutil.CreateAsprak(t, st.AsprakRepo, "1302", "ANDI", "AND", 2022)
	testutil.CreateAsprak(t, st.AsprakRepo, "1101", "ANDRE", "AND", 2015)

	tests := []struct {
		name       string
		row        plotting.ImportRow
		wantValid  string // asprak id
		wantAmbig  int    // number of candidates
		wantReason string
	}{
		{name: "single holder", row: plotting.ImportRow{KodeAsprak: " BUS ", MKSingkat: "alpro"}, wantValid: bus.ID},
		{name: "chosen asprak", row: plotting.ImportRow{KodeAsprak: "AND", MKSingkat: "ALPRO", SelectedAsprakID: and1.ID}, wantValid: and1.ID},
		{name: "shared code", row: plotting.ImportRow{KodeAsprak: "AND", MKSingkat: "ALPRO"}, wantAmbig: 2},
		{name: "unknown code", row: plotting.ImportRow{KodeAsprak: "XXX", MKSingkat: "ALPRO"}, wantReason: "Asprak code 'XXX' not found"},
		{name: "blank code", row: plotting.ImportRow{KodeAsprak: " ", MKSingkat: "ALPRO"}, wantReason: "Asprak code '' not found"},
		{name: "unknown praktikum", row: plotting.ImportRow{KodeAsprak: "BUS", MKSingkat: "basdat"}, wantReason: "Praktikum 'BASDAT' not found in term 2425-1"},
		{name: "praktikum of another term", row: plotting.ImportRow{KodeAsprak: "BUS", MKSingkat: "JARKOM"}, wantReason: "Praktikum 'JARKOM' not found in term 2425-1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := st.Plotting.ValidateImport(ctx, []plotting.ImportRow{tt.row}, "2425-1")
			require.NoError(t, err)

			switch {
			case tt.wantValid != "":
				require.Len(t, res.ValidRows, 1)
				assert.Equal(t, tt.wantValid, res.ValidRows[0].AsprakID)
				assert.Equal(t, alpro.ID, res.ValidRows[0].PraktikumID)
				assert.Equal(t, tt.row, res.ValidRows[0].Original)
			case tt.wantAmbig > 0:
				require.Len(t, res.AmbiguousRows, 1)
				assert.Len(t, res.AmbiguousRows[0].Candidates, tt.wantAmbig)
				assert.Equal(t, alpro.ID, res.AmbiguousRows[0].PraktikumID)
				assert.Equal(t, "Multiple aspraks found with code 'AND'", res.AmbiguousRows[0].Reason)
			default:
				require.Len(t, res.InvalidRows, 1)
				assert.Equal(t, tt.wantReason, res.InvalidRows[0].Reason)
				assert.Empty(t, res.ValidRows)
				assert.Empty(t, res.AmbiguousRows)
			}
		})
	}

	t.Run("no rows", func(t *testing.T) {
		res, err := st.Plotting.ValidateImport(ctx, nil, "2425-1")
		require.NoError(t, err)
		assert.NotNil(t, res.ValidRows)
		assert.NotNil(t, res.AmbiguousRows)
		assert.NotNil(t, res.InvalidRows)
	})
}

func TestService_SaveAndList(t *testing.T) {
	st := testutil.NewStack()
	ctx := context.Background()

	alpro := testutil.CreatePraktikum(t, st.PraktikumRepo, "ALPRO", "2425-1")
	bus := testutil.CreateAsprak(t, st.AsprakRepo, "1301", "BUNGA SARI", "BUS", 2023)

	n, err := st.Plotting.Save(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, n)

	as := []plotting.Assignment{{AsprakID: bus.ID, PraktikumID: alpro.ID}, {AsprakID: bus.ID, PraktikumID: alpro.ID}}
	n, err = st.Plotting.Save(ctx, as)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	res, err := st.Plotting.List(ctx, plotting.ListFilter{Term: "all", PraktikumID: "all"})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Total)
	require.Len(t, res.Data, 1)
	assert.Equal(t, "BUS", res.Data[0].Asprak.Kode)

	require.NoError(t, st.Plotting.Delete(ctx, res.Data[0].ID))
	res, err = st.Plotting.List(ctx, plotting.ListFilter{Page: core.NewPage(1, 10, 10)})
	require.NoError(t, err)
	assert.NotNil(t, res.Data)
	assert.Zero(t, res.Total)
}
