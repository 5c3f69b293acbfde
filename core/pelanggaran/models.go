package pelanggaran

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/labasprak/asprak/core"
)

type Pelanggaran struct {
	ID          int64      `json:"id"`
	IDAsprak    string     `json:"id_asprak"`
	IDJadwal    int64      `json:"id_jadwal"`
	Modul       string     `json:"modul"`
	Jenis       string     `json:"jenis"`
	Keterangan  string     `json:"keterangan"`
	IsFinal     bool       `json:"is_final"`
	FinalizedAt *time.Time `json:"finalized_at"`
	CreatedAt   time.Time  `json:"created_at"` // UTC
}

type AsprakInfo struct {
	NamaLengkap string `json:"nama_lengkap"`
	NIM         string `json:"nim"`
	Kode        string `json:"kode"`
}

type MataKuliahInfo struct {
	ID           int64  `json:"id"`
	IDPraktikum  string `json:"id_praktikum"`
	NamaLengkap  string `json:"nama_lengkap"`
	ProgramStudi string `json:"program_studi"`
}

type JadwalInfo struct {
	Hari       string         `json:"hari"`
	Jam        string         `json:"jam"`
	Kelas      string         `json:"kelas"`
	MataKuliah MataKuliahInfo `json:"mata_kuliah"`
}

// Detail is a pelanggaran with the asprak and jadwal it concerns.
type Detail struct {
	Pelanggaran
	Asprak AsprakInfo `json:"asprak"`
	Jadwal JadwalInfo `json:"jadwal"`
}

// Filter narrows a pelanggaran listing. Zero values do not filter.
type Filter struct {
	IDMK int64
	// PraktikumIDs restricts the listing to these praktikum when not nil.
	PraktikumIDs []string
}

type NewPelanggaran struct {
	IDAsprak   string `json:"id_asprak" validate:"required"`
	IDJadwal   int64  `json:"id_jadwal" validate:"required"`
	Jenis      string `json:"jenis" validate:"required"`
	Modul      string `json:"modul"`
	Keterangan string `json:"keterangan"`
}

func (np *NewPelanggaran) Validate(validate *validator.Validate) error {
	np.IDAsprak = core.CleanString(np.IDAsprak)
	np.Jenis = core.CleanString(np.Jenis)
	np.Modul = core.CleanString(np.Modul)
	np.Keterangan = core.CleanString(np.Keterangan)
	if np.IDAsprak == "" || np.IDJadwal == 0 || np.Jenis == "" {
		return core.NewValidationError(errors.New("Missing required fields: id_asprak, id_jadwal, jenis"))
	}
	return validate.Struct(np)
}

type FinalizeRequest struct {
	IDMK int64 `json:"id_mk" validate:"required"`
}

func (fr *FinalizeRequest) Validate(validate *validator.Validate) error {
	return validate.Struct(fr)
}

// ExportRow is one line of the pelanggaran workbook.
type ExportRow struct {
	IDPraktikum string
	MK          string
	Kode        string
	Modul       string
	Kelas       string
	Jenis       string
}

// ExportFileName names the workbook of a tahun ajaran.
func ExportFileName(tahunAjaran string) string {
	if tahunAjaran = strings.TrimSpace(tahunAjaran); tahunAjaran == "" {
		return "pelanggaran_export.xlsx"
	}
	return "pelanggaran_" + strings.ReplaceAll(tahunAjaran, "/", "-") + ".xlsx"
}

// ExportTable lays export rows out as the "Pelanggaran" sheet.
func ExportTable(rows []ExportRow) core.Table {
	t := core.Table{
		Name:    "Pelanggaran",
		Columns: []string{"MK", "KODE", "MODUL", "KELAS", "JENIS"},
		Widths:  []float64{30, 14, 10, 10, 20},
		Rows:    make([][]interface{}, 0, len(rows)),
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, []interface{}{r.MK, r.Kode, r.Modul, r.Kelas, r.Jenis})
	}
	return t
}
