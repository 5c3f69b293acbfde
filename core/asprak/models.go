package asprak

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/labasprak/asprak/core"
)

type Asprak struct {
	ID          string    `json:"id"`
	NIM         string    `json:"nim"`
	NamaLengkap string    `json:"nama_lengkap"`
	Kode        string    `json:"kode"`
	Angkatan    int       `json:"angkatan"`
	CreatedAt   time.Time `json:"created_at"` // UTC
}

// Assignment is a praktikum an asprak is plotted on.
type Assignment struct {
	ID          int    `json:"id"`
	IDPraktikum string `json:"id_praktikum"`
	Nama        string `json:"nama"`
	TahunAjaran string `json:"tahun_ajaran"`
}

// UpsertAsprak creates or updates an asprak (matched by NIM) and links it to the named praktikum of a term.
type UpsertAsprak struct {
	NIM            string   `json:"nim" validate:"required"`
	NamaLengkap    string   `json:"nama_lengkap" validate:"required"`
	Kode           string   `json:"kode" validate:"required,kode"`
	Angkatan       int      `json:"angkatan" validate:"required,gt=0"`
	Term           string   `json:"term" validate:"omitempty,term"`
	PraktikumNames []string `json:"praktikum_names" validate:"dive,required"`
}

func (ua *UpsertAsprak) Validate(validate *validator.Validate) error {
	ua.NIM = core.CleanString(ua.NIM)
	ua.NamaLengkap = core.CleanUpper(ua.NamaLengkap)
	ua.Kode = core.CleanUpper(ua.Kode)
	ua.Term = core.CleanString(ua.Term)
	names := make([]string, 0, len(ua.PraktikumNames))
	for _, n := range ua.PraktikumNames {
		if n = core.CleanUpper(n); n != "" {
			names = append(names, n)
		}
	}
	ua.PraktikumNames = core.UniqueStrings(names)
	if err := validate.Struct(ua); err != nil {
		return err
	}
	if len(ua.PraktikumNames) > 0 && ua.Term == "" {
		return core.NewValidationError(nil, core.FieldError{Field: "term", Error: "this field is required"})
	}
	return nil
}

// GenerateCodeRequest asks for a code for a name, given the codes already in use.
type GenerateCodeRequest struct {
	NamaLengkap string `json:"nama_lengkap" validate:"required"`
}

func (gr *GenerateCodeRequest) Validate(validate *validator.Validate) error {
	gr.NamaLengkap = strings.TrimSpace(gr.NamaLengkap)
	return validate.Struct(gr)
}
