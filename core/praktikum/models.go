package praktikum

import (
	"github.com/go-playground/validator/v10"

	"github.com/labasprak/asprak/core"
)

type Praktikum struct {
	ID          string `json:"id"`
	Nama        string `json:"nama"`
	TahunAjaran string `json:"tahun_ajaran"`
}

// key identifies a praktikum by its unique (nama, tahun_ajaran) pair.
func (p Praktikum) key() string {
	return p.Nama + "_" + p.TahunAjaran
}

type WithStats struct {
	Praktikum
	AsprakCount int `json:"asprak_count"`
}

type Name struct {
	ID   string `json:"id"`
	Nama string `json:"nama"`
}

// Slot is one schedule row of a praktikum class.
type Slot struct {
	Kelas   string `json:"-"`
	Hari    string `json:"hari"`
	Jam     string `json:"jam"`
	Ruangan string `json:"ruangan"`
}

type Class struct {
	Kelas  string `json:"kelas"`
	Jadwal []Slot `json:"jadwal"`
}

type Details struct {
	TotalKelas int     `json:"total_kelas"`
	Classes    []Class `json:"classes"`
}

type NewPraktikum struct {
	Nama        string `json:"nama" validate:"required"`
	TahunAjaran string `json:"tahun_ajaran" validate:"required,term"`
}

func (np *NewPraktikum) Validate(validate *validator.Validate) error {
	np.Nama = core.CleanUpper(np.Nama)
	np.TahunAjaran = core.CleanString(np.TahunAjaran)
	return validate.Struct(np)
}

type BulkResult struct {
	Inserted int      `json:"inserted"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors"`
}
