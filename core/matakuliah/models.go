package matakuliah

import (
	"github.com/go-playground/validator/v10"

	"github.com/labasprak/asprak/core"
	"github.com/labasprak/asprak/core/praktikum"
)

type MataKuliah struct {
	ID           int64  `json:"id"`
	IDPraktikum  string `json:"id_praktikum"`
	NamaLengkap  string `json:"nama_lengkap"`
	ProgramStudi string `json:"program_studi"`
	DosenKoor    string `json:"dosen_koor"`
	Warna        string `json:"warna"`
}

// WithPraktikum is a mata kuliah joined with the praktikum it belongs to.
type WithPraktikum struct {
	MataKuliah
	Praktikum praktikum.Praktikum `json:"praktikum"`
}

// Group gathers the mata kuliah sharing a praktikum name.
type Group struct {
	MKSingkat   string          `json:"mk_singkat"`
	PraktikumID string          `json:"praktikum_id"`
	Items       []WithPraktikum `json:"items"`
}

// NewMataKuliah creates a mata kuliah either under IDPraktikum or, when empty, under the
// praktikum named MKSingkat in the requested term (created when missing).
type NewMataKuliah struct {
	IDPraktikum  string `json:"id_praktikum"`
	MKSingkat    string `json:"mk_singkat"`
	NamaLengkap  string `json:"nama_lengkap" validate:"required"`
	ProgramStudi string `json:"program_studi" validate:"required,prodi"`
	DosenKoor    string `json:"dosen_koor"`
	Warna        string `json:"warna" validate:"omitempty,hexcolor"`
}

func (nm *NewMataKuliah) Validate(validate *validator.Validate) error {
	nm.IDPraktikum = core.CleanString(nm.IDPraktikum)
	nm.MKSingkat = core.CleanUpper(nm.MKSingkat)
	nm.NamaLengkap = core.CleanString(nm.NamaLengkap)
	nm.ProgramStudi = core.CleanUpper(nm.ProgramStudi)
	nm.DosenKoor = core.CleanUpper(nm.DosenKoor)
	nm.Warna = core.CleanString(nm.Warna)
	if err := validate.Struct(nm); err != nil {
		return err
	}
	if nm.IDPraktikum == "" && nm.MKSingkat == "" {
		return core.NewValidationError(nil, core.FieldError{Field: "mk_singkat", Error: "this field is required"})
	}
	return nil
}

type BulkResult struct {
	Inserted int      `json:"inserted"`
	Errors   []string `json:"errors"`
}

type ColorUpdate struct {
	ID    int64  `json:"id"`
	Warna string `json:"warna"`
}

type ColorResult struct {
	Updated int      `json:"updated"`
	Errors  []string `json:"errors"`
}

type PraktikumColor struct {
	Nama  string `json:"nama" validate:"required"`
	Warna string `json:"warna" validate:"required,hexcolor"`
}

func (pc *PraktikumColor) Validate(validate *validator.Validate) error {
	pc.Nama = core.CleanUpper(pc.Nama)
	pc.Warna = core.CleanString(pc.Warna)
	return validate.Struct(pc)
}
