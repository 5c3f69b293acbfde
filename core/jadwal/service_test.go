package jadwal_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labasprak/asprak/core/jadwal"
	"github.com/labasprak/asprak/tests"
)

func TestService_BulkCreate(t *testing.T) {
	st := testutil.NewStack()
	ctx := context.Background()
	p := testutil.CreatePraktikum(t, st.PraktikumRepo, "ALPRO", "2425-1")
	mk := testutil.CreateMataKuliah(t, st.MataKuliahRepo, p, "ALGORITMA PEMROGRAMAN", "IF")

	tests := []struct {
		name         string
		rows         []jadwal.NewJadwal
		wantInserted int
		wantErrors   []string
	}{
		{name: "empty", wantErrors: []string{}},
		{
			name: "all known",
			rows: []jadwal.NewJadwal{
				{IDMK: mk.ID, Kelas: "IF-01", Hari: "SENIN", Sesi: 1},
				{IDMK: mk.ID, Kelas: "IF-02", Hari: "SELASA", Sesi: 2},
			},
			wantInserted: 2,
			wantErrors:   []string{},
		},
		{
			name: "unknown mata kuliah",
			rows: []jadwal.NewJadwal{
				{IDMK: mk.ID, Kelas: "IF-03", Hari: "RABU", Sesi: 3},
				{IDMK: 9999, Kelas: "IF-04", Hari: "KAMIS", Sesi: 4},
				{IDMK: 9999, Kelas: "IF-05", Hari: "JUMAT", Sesi: 5},
			},
			wantInserted: 1,
			wantErrors: []string{
				"Row 2 (IF-04): mata kuliah 9999 not found",
				"Row 3 (IF-05): mata kuliah 9999 not found",
			},
		},
		{
			name:       "nothing to insert",
			rows:       []jadwal.NewJadwal{{IDMK: 4242, Kelas: "IF-06", Hari: "SABTU", Sesi: 1}},
			wantErrors: []string{"Row 1 (IF-06): mata kuliah 4242 not found"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := st.Jadwal.BulkCreate(ctx, tt.rows)
			require.NoError(t, err)
			assert.Equal(t, tt.wantInserted, res.Inserted)
			assert.Equal(t, tt.wantErrors, res.Errors)
		})
	}

	js, err := st.Jadwal.ByTerm(ctx, "2425-1")
	require.NoError(t, err)
	assert.Len(t, js, 3)
}
