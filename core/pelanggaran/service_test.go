package pelanggaran_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labasprak/asprak/core"
	"github.com/labasprak/asprak/core/pelanggaran"
	"github.com/labasprak/asprak/tests"
)

type fixture struct {
	st       *testutil.Stack
	alproID  string
	pbo      int64
	alpro    int64
	alproJdw int64
	pboJdw   int64
	asprakID string
}

func newFixture(t *testing.T) fixture {
	st := testutil.NewStack()
	alpro := testutil.CreatePraktikum(t, st.PraktikumRepo, "ALPRO", "2425-1")
	pbo := testutil.CreatePraktikum(t, st.PraktikumRepo, "PBO", "2425-1")
	alproMK := testutil.CreateMataKuliah(t, st.MataKuliahRepo, alpro, "ALGORITMA PEMROGRAMAN", "IF")
	pboMK := testutil.CreateMataKuliah(t, st.MataKuliahRepo, pbo, "PEMROGRAMAN BERORIENTASI OBJEK", "IF")
	a := testutil.CreateAsprak(t, st.AsprakRepo, "1301", "BUNGA SARI", "BUS", 2023)

	return fixture{
		st:       st,
		alproID:  alpro.ID,
		alpro:    alproMK.ID,
		pbo:      pboMK.ID,
		alproJdw: testutil.CreateJadwal(t, st.JadwalRepo, alproMK, "IF-01", "SENIN", 1, "06:30", "A101").ID,
		pboJdw:   testutil.CreateJadwal(t, st.JadwalRepo, pboMK, "IF-02", "RABU", 3, "12:30", "B202").ID,
		asprakID: a.ID,
	}
}

func TestService_CreateScope(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	koor := pelanggaran.PraktikumScope([]string{fx.alproID})

	p, err := fx.st.Pelanggaran.Create(ctx, koor, pelanggaran.NewPelanggaran{
		IDAsprak: fx.asprakID, IDJadwal: fx.alproJdw, Jenis: "TERLAMBAT", Modul: "1",
	})
	require.NoError(t, err)
	assert.False(t, p.IsFinal)
	assert.False(t, p.CreatedAt.IsZero())

	_, err = fx.st.Pelanggaran.Create(ctx, koor, pelanggaran.NewPelanggaran{
		IDAsprak: fx.asprakID, IDJadwal: fx.pboJdw, Jenis: "TIDAK HADIR",
	})
	var ferr *core.ForbiddenError
	assert.ErrorAs(t, err, &ferr)

	var verr *core.ValidationError
	_, err = fx.st.Pelanggaran.Create(ctx, koor, pelanggaran.NewPelanggaran{
		IDAsprak: "4a3e4f0e-0000-4000-8000-000000000000", IDJadwal: fx.alproJdw, Jenis: "TERLAMBAT",
	})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "id_asprak", verr.Fields[0].Field)

	_, err = fx.st.Pelanggaran.Create(ctx, pelanggaran.FullScope(), pelanggaran.NewPelanggaran{
		IDAsprak: fx.asprakID, IDJadwal: 9999, Jenis: "TERLAMBAT",
	})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "id_jadwal", verr.Fields[0].Field)

	_, err = fx.st.Pelanggaran.Create(ctx, pelanggaran.FullScope(), pelanggaran.NewPelanggaran{
		IDAsprak: fx.asprakID, IDJadwal: fx.pboJdw, Jenis: "TIDAK HADIR",
	})
	require.NoError(t, err)

	all, err := fx.st.Pelanggaran.Query(ctx, pelanggaran.FullScope())
	require.NoError(t, err)
	assert.Len(t, all, 2)

	scoped, err := fx.st.Pelanggaran.Query(ctx, koor)
	require.NoError(t, err)
	require.Len(t, scoped, 1)
	assert.Equal(t, "BUS", scoped[0].Asprak.Kode)
	assert.Equal(t, "IF-01", scoped[0].Jadwal.Kelas)

	none, err := fx.st.Pelanggaran.Query(ctx, pelanggaran.PraktikumScope(nil))
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	_, err = fx.st.Pelanggaran.ByMataKuliah(ctx, koor, fx.pbo)
	assert.ErrorAs(t, err, &ferr)
}

func TestService_FinalizeAndDelete(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	full := pelanggaran.FullScope()

	first, err := fx.st.Pelanggaran.Create(ctx, full, pelanggaran.NewPelanggaran{IDAsprak: fx.asprakID, IDJadwal: fx.alproJdw, Jenis: "TERLAMBAT"})
	require.NoError(t, err)

	n, err := fx.st.Pelanggaran.Finalize(ctx, full, fx.alpro)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	n, err = fx.st.Pelanggaran.Finalize(ctx, full, fx.alpro)
	require.NoError(t, err)
	assert.Zero(t, n)

	var cerr *core.ConflictError
	assert.ErrorAs(t, fx.st.Pelanggaran.Delete(ctx, full, first.ID), &cerr)

	second, err := fx.st.Pelanggaran.Create(ctx, full, pelanggaran.NewPelanggaran{IDAsprak: fx.asprakID, IDJadwal: fx.pboJdw, Jenis: "TIDAK HADIR"})
	require.NoError(t, err)

	var ferr *core.ForbiddenError
	assert.ErrorAs(t, fx.st.Pelanggaran.Delete(ctx, pelanggaran.PraktikumScope([]string{fx.alproID}), second.ID), &ferr)
	assert.NoError(t, fx.st.Pelanggaran.Delete(ctx, full, second.ID))
	assert.True(t, core.IsNotFound(fx.st.Pelanggaran.Delete(ctx, full, second.ID)))

	rows, err := fx.st.Pelanggaran.ByMataKuliah(ctx, full, fx.alpro)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].IsFinal)
	assert.NotNil(t, rows[0].FinalizedAt)
}

func TestService_Export(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	full := pelanggaran.FullScope()

	for _, jdw := range []int64{fx.alproJdw, fx.pboJdw} {
		_, err := fx.st.Pelanggaran.Create(ctx, full, pelanggaran.NewPelanggaran{IDAsprak: fx.asprakID, IDJadwal: jdw, Jenis: "TERLAMBAT", Modul: "2"})
		require.NoError(t, err)
	}

	table, err := fx.st.Pelanggaran.Export(ctx, full, "", "2425-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"MK", "KODE", "MODUL", "KELAS", "JENIS"}, table.Columns)
	assert.Len(t, table.Rows, 2)

	koor := pelanggaran.PraktikumScope([]string{fx.alproID})
	table, err = fx.st.Pelanggaran.Export(ctx, koor, "", "")
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, []interface{}{"ALGORITMA PEMROGRAMAN", "BUS", "2", "IF-01", "TERLAMBAT"}, table.Rows[0])

	table, err = fx.st.Pelanggaran.Export(ctx, full, "", "2526-1")
	require.NoError(t, err)
	assert.Empty(t, table.Rows)

	var ferr *core.ForbiddenError
	_, err = fx.st.Pelanggaran.Export(ctx, koor, "4a3e4f0e-0000-4000-8000-000000000000", "")
	assert.ErrorAs(t, err, &ferr)
}

func TestExportFileName(t *testing.T) {
	assert.Equal(t, "pelanggaran_export.xlsx", pelanggaran.ExportFileName(" "))
	assert.Equal(t, "pelanggaran_2425-1.xlsx", pelanggaran.ExportFileName("2425-1"))
	assert.Equal(t, "pelanggaran_2024-2025.xlsx", pelanggaran.ExportFileName("2024/2025"))
}
