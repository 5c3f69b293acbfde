package importer

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/labasprak/asprak/core"
)

// Sheet names of a seed workbook.
const (
	SheetPraktikum       = "praktikum"
	SheetMataKuliah      = "mata_kuliah"
	SheetAsprak          = "asprak"
	SheetJadwal          = "jadwal"
	SheetAsprakPraktikum = "asprak_praktikum"
)

var Sheets = []string{SheetPraktikum, SheetMataKuliah, SheetAsprak, SheetJadwal, SheetAsprakPraktikum}

// Workbook holds the rows of a seed workbook by sheet name.
type Workbook map[string][]core.Record

// CheckSheets fails when a required sheet is missing.
func (wb Workbook) CheckSheets() error {
	for _, name := range Sheets {
		if _, ok := wb[name]; !ok {
			return core.NewValidationError(errors.New(
				"Missing required sheets. Excel must contain: " + strings.Join(Sheets, ", "),
			))
		}
	}
	return nil
}

type PraktikumRow struct {
	NamaSingkat string `json:"nama_singkat"`
	TahunAjaran string `json:"tahun_ajaran"`
}

type MataKuliahRow struct {
	MKSingkat    string `json:"mk_singkat"`
	ProgramStudi string `json:"program_studi"`
	NamaLengkap  string `json:"nama_lengkap"`
	DosenKoor    string `json:"dosen_koor"`
}

type AsprakRow struct {
	NIM         string `json:"nim"`
	NamaLengkap string `json:"nama_lengkap"`
	Kode        string `json:"kode"`
	Angkatan    int    `json:"angkatan"`
}

type JadwalRow struct {
	Kelas       string `json:"kelas"`
	NamaSingkat string `json:"nama_singkat"`
	Hari        string `json:"hari"`
	Sesi        int    `json:"sesi"`
	Jam         string `json:"jam"`
	Ruangan     string `json:"ruangan"`
	TotalAsprak int    `json:"total_asprak"`
	Dosen       string `json:"dosen"`
}

type LinkRow struct {
	KodeAsprak string `json:"kode_asprak"`
	MKSingkat  string `json:"mk_singkat"`
}

// Dataset is the content of one term, laid out like a seed workbook.
type Dataset struct {
	Praktikum       []PraktikumRow  `json:"praktikum"`
	MataKuliah      []MataKuliahRow `json:"mata_kuliah"`
	Asprak          []AsprakRow     `json:"asprak"`
	Jadwal          []JadwalRow     `json:"jadwal"`
	AsprakPraktikum []LinkRow       `json:"asprak_praktikum"`
}

func newDataset() Dataset {
	return Dataset{
		Praktikum:       []PraktikumRow{},
		MataKuliah:      []MataKuliahRow{},
		Asprak:          []AsprakRow{},
		Jadwal:          []JadwalRow{},
		AsprakPraktikum: []LinkRow{},
	}
}

// Tables lays the dataset out as workbook sheets, re-importable as is.
func (d Dataset) Tables() []core.Table {
	praktikum := core.Table{Name: SheetPraktikum, Columns: []string{"nama_singkat", "tahun_ajaran"}}
	for _, r := range d.Praktikum {
		praktikum.Rows = append(praktikum.Rows, []interface{}{r.NamaSingkat, r.TahunAjaran})
	}

	mataKuliah := core.Table{Name: SheetMataKuliah, Columns: []string{"mk_singkat", "program_studi", "nama_lengkap", "dosen_koor"}}
	for _, r := range d.MataKuliah {
		mataKuliah.Rows = append(mataKuliah.Rows, []interface{}{r.MKSingkat, r.ProgramStudi, r.NamaLengkap, r.DosenKoor})
	}

	asprak := core.Table{Name: SheetAsprak, Columns: []string{"nim", "nama_lengkap", "kode", "angkatan"}}
	for _, r := range d.Asprak {
		asprak.Rows = append(asprak.Rows, []interface{}{r.NIM, r.NamaLengkap, r.Kode, r.Angkatan})
	}

	jadwal := core.Table{
		Name:    SheetJadwal,
		Columns: []string{"kelas", "nama_singkat", "hari", "sesi", "jam", "ruangan", "total_asprak", "dosen"},
	}
	for _, r := range d.Jadwal {
		jadwal.Rows = append(jadwal.Rows, []interface{}{r.Kelas, r.NamaSingkat, r.Hari, r.Sesi, r.Jam, r.Ruangan, r.TotalAsprak, r.Dosen})
	}

	links := core.Table{Name: SheetAsprakPraktikum, Columns: []string{"kode_asprak", "mk_singkat"}}
	for _, r := range d.AsprakPraktikum {
		links.Rows = append(links.Rows, []interface{}{r.KodeAsprak, r.MKSingkat})
	}

	return []core.Table{praktikum, mataKuliah, asprak, jadwal, links}
}

// ExportFileName names the workbook of a term export.
func ExportFileName(term string) string {
	return "dataset_" + strings.ReplaceAll(term, "/", "-") + ".xlsx"
}
