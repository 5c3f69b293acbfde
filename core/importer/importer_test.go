package importer_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labasprak/asprak/core"
	"github.com/labasprak/asprak/core/asprak"
	"github.com/labasprak/asprak/core/importer"
	"github.com/labasprak/asprak/core/plotting"
	"github.com/labasprak/asprak/tests"
)

// workbookOf lays a dataset out the way spreadsheet.ReadWorkbook returns it.
func workbookOf(d importer.Dataset) importer.Workbook {
	wb := make(importer.Workbook)
	for _, t := range d.Tables() {
		records := make([]core.Record, 0, len(t.Rows))
		for _, row := range t.Rows {
			r := make(core.Record, len(t.Columns))
			for i, col := range t.Columns {
				r[col] = fmt.Sprint(row[i])
			}
			records = append(records, r)
		}
		wb[t.Name] = records
	}
	return wb
}

func seedDataset() importer.Dataset {
	return importer.Dataset{
		Praktikum: []importer.PraktikumRow{
			{NamaSingkat: "ALPRO", TahunAjaran: "2425-1"},
			{NamaSingkat: "PBO", TahunAjaran: "2425-1"},
		},
		MataKuliah: []importer.MataKuliahRow{
			{MKSingkat: "ALPRO", ProgramStudi: "IF", NamaLengkap: "ALGORITMA PEMROGRAMAN", DosenKoor: "DR. X"},
			{MKSingkat: "PBO", ProgramStudi: "IF", NamaLengkap: "PEMROGRAMAN BERORIENTASI OBJEK", DosenKoor: "DR. Y"},
		},
		Asprak: []importer.AsprakRow{
			{NIM: "1301", NamaLengkap: "BUNGA SARI", Kode: "BUS", Angkatan: 2023},
			{NIM: "1302", NamaLengkap: "ADI PUTRA", Kode: "ADP", Angkatan: 2022},
		},
		Jadwal: []importer.JadwalRow{
			{Kelas: "IF-01", NamaSingkat: "ALPRO", Hari: "SENIN", Sesi: 1, Jam: "06:30", Ruangan: "A101", TotalAsprak: 2, Dosen: "DR. X"},
			{Kelas: "IF-02", NamaSingkat: "PBO", Hari: "KAMIS", Sesi: 4, Jam: "15:30", Ruangan: "B202", TotalAsprak: 3, Dosen: "DR. Y"},
		},
		AsprakPraktikum: []importer.LinkRow{
			{KodeAsprak: "BUS", MKSingkat: "ALPRO"},
			{KodeAsprak: "ADP", MKSingkat: "PBO"},
		},
	}
}

func TestWorkbook_CheckSheets(t *testing.T) {
	wb := workbookOf(seedDataset())
	assert.NoError(t, wb.CheckSheets())

	delete(wb, importer.SheetJadwal)
	err := wb.CheckSheets()
	var verr *core.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, err.Error(), "Missing required sheets")
}

func TestService_ImportExport(t *testing.T) {
	st := testutil.NewStack()
	ctx := context.Background()
	d := seedDataset()

	res, err := st.Importer.Import(ctx, workbookOf(d), importer.Options{})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Inserted)
	assert.Equal(t, "Import completed! Inserted 2 schedules.", res.Message)

	exported, err := st.Importer.Export(ctx, "2425-1")
	require.NoError(t, err)
	assert.ElementsMatch(t, d.Praktikum, exported.Praktikum)
	assert.ElementsMatch(t, d.MataKuliah, exported.MataKuliah)
	assert.ElementsMatch(t, d.Asprak, exported.Asprak)
	assert.ElementsMatch(t, d.Jadwal, exported.Jadwal)
	assert.ElementsMatch(t, d.AsprakPraktikum, exported.AsprakPraktikum)

	// importing the export again only adds jadwal
	res, err = st.Importer.Import(ctx, workbookOf(exported), importer.Options{})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Inserted)
	_, total, err := st.PlottingRepo.Query(ctx, plotting.ListFilter{Term: "2425-1"})
	require.NoError(t, err)
	assert.Equal(t, 2, total)

	empty, err := st.Importer.Export(ctx, "2526-1")
	require.NoError(t, err)
	assert.NotNil(t, empty.Jadwal)
	assert.Empty(t, empty.Praktikum)

	_, err = st.Importer.Export(ctx, " ")
	var verr *core.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestService_ImportDefaultTerm(t *testing.T) {
	st := testutil.NewStack()
	ctx := context.Background()
	d := seedDataset()
	for i := range d.Praktikum {
		d.Praktikum[i].TahunAjaran = ""
	}

	_, err := st.Importer.Import(ctx, workbookOf(d), importer.Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Tahun Ajaran missing for ALPRO")

	_, err = st.Importer.Import(ctx, workbookOf(d), importer.Options{Term: " 2526-2 "})
	require.NoError(t, err)
	ps, err := st.PraktikumRepo.QueryByTerm(ctx, "2526-2")
	require.NoError(t, err)
	assert.Len(t, ps, 2)
}

func TestService_ImportRollback(t *testing.T) {
	st := testutil.NewStack()
	ctx := context.Background()
	d := seedDataset()
	d.Jadwal = append(d.Jadwal, importer.JadwalRow{Kelas: "SI-01", NamaSingkat: "BASDAT", Hari: "JUMAT", Sesi: 2})

	_, err := st.Importer.Import(ctx, workbookOf(d), importer.Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Import FAILED & ROLLED BACK")
	assert.Contains(t, err.Error(), "Data Integrity Error")

	ps, err := st.PraktikumRepo.QueryByTerm(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, ps)
	_, err = st.AsprakRepo.GetByNIM(ctx, "1301")
	assert.True(t, core.IsNotFound(err))
	assert.NotEmpty(t, st.Logger.Errors)
}

func TestService_ImportCodeConflicts(t *testing.T) {
	now := time.Now()
	st := testutil.NewStack()
	ctx := context.Background()
	holder := testutil.CreateAsprak(t, st.AsprakRepo, "9901", "BUDI SANTOSO", "BUS", now.Year())
	retired := testutil.CreateAsprak(t, st.AsprakRepo, "9902", "ANDI DARMA", "ADP", now.Year()-asprak.ActiveYearsThreshold-2)

	_, err := st.Importer.Import(ctx, workbookOf(seedDataset()), importer.Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), asprak.ConflictMessage("BUS", holder))

	res, err := st.Importer.Import(ctx, workbookOf(seedDataset()), importer.Options{SkipConflicts: true})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Inserted)

	_, err = st.AsprakRepo.GetByNIM(ctx, "1301")
	assert.True(t, core.IsNotFound(err))

	recycled, err := st.AsprakRepo.GetByNIM(ctx, "1302")
	require.NoError(t, err)
	assert.Equal(t, "ADP", recycled.Kode)
	old, err := st.AsprakRepo.GetByID(ctx, retired.ID)
	require.NoError(t, err)
	assert.Equal(t, asprak.ExpiredCode(retired), old.Kode)

	// only ADP -> PBO is linked, BUS rows were skipped
	items, total, err := st.PlottingRepo.Query(ctx, plotting.ListFilter{Term: "2425-1", Page: core.NewPage(1, 10, 10)})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	assert.Equal(t, recycled.ID, items[0].Asprak.ID)
}

func TestService_Clear(t *testing.T) {
	st := testutil.NewStack()
	ctx := context.Background()
	testutil.CreatePengguna(t, st.PenggunaRepo, "Admin", "admin@lab.test", "passw0rd-admin", "ADMIN", true)

	_, err := st.Importer.Import(ctx, workbookOf(seedDataset()), importer.Options{})
	require.NoError(t, err)
	require.NoError(t, st.Importer.Clear(ctx))

	exported, err := st.Importer.Export(ctx, "2425-1")
	require.NoError(t, err)
	assert.Empty(t, exported.Praktikum)
	_, err = st.AsprakRepo.GetByNIM(ctx, "1302")
	assert.True(t, core.IsNotFound(err))

	users, err := st.Pengguna.QueryAll(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestExportFileName(t *testing.T) {
	assert.Equal(t, "dataset_2425-1.xlsx", importer.ExportFileName("2425-1"))
	assert.Equal(t, "dataset_2024-2025.xlsx", importer.ExportFileName("2024/2025"))
}
