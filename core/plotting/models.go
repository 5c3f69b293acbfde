package plotting

import (
	"github.com/go-playground/validator/v10"

	"github.com/labasprak/asprak/core"
)

const DefaultPageSize = 1000

type AsprakInfo struct {
	ID          string `json:"id"`
	Kode        string `json:"kode"`
	NamaLengkap string `json:"nama_lengkap"`
	NIM         string `json:"nim"`
	Angkatan    int    `json:"angkatan"`
}

type PraktikumInfo struct {
	ID          string `json:"id"`
	Nama        string `json:"nama"`
	TahunAjaran string `json:"tahun_ajaran"`
}

// Item is one asprak-to-praktikum assignment.
type Item struct {
	ID        int           `json:"id"`
	Asprak    AsprakInfo    `json:"asprak"`
	Praktikum PraktikumInfo `json:"praktikum"`
}

type ListResult struct {
	Data  []Item `json:"data"`
	Total int    `json:"total"`
}

// ListFilter narrows a listing; empty fields do not filter.
type ListFilter struct {
	Term        string
	PraktikumID string
	Page        core.Page
}

type ImportRow struct {
	KodeAsprak       string `json:"kode_asprak"`
	MKSingkat        string `json:"mk_singkat"`
	SelectedAsprakID string `json:"selected_asprak_id,omitempty"`
}

type ValidateRequest struct {
	Rows []ImportRow `json:"rows"`
	Term string      `json:"term" validate:"required"`
}

func (vr *ValidateRequest) Validate(validate *validator.Validate) error {
	vr.Term = core.CleanString(vr.Term)
	return validate.Struct(vr)
}

type ValidRow struct {
	AsprakID    string    `json:"asprak_id"`
	PraktikumID string    `json:"praktikum_id"`
	Original    ImportRow `json:"original"`
}

type Candidate struct {
	ID          string `json:"id"`
	NamaLengkap string `json:"nama_lengkap"`
	NIM         string `json:"nim"`
	Angkatan    int    `json:"angkatan"`
}

type AmbiguousRow struct {
	Original    ImportRow   `json:"original"`
	Candidates  []Candidate `json:"candidates"`
	Reason      string      `json:"reason"`
	PraktikumID string      `json:"praktikum_id"`
}

type InvalidRow struct {
	Original ImportRow `json:"original"`
	Reason   string    `json:"reason"`
}

type ValidationResult struct {
	ValidRows     []ValidRow     `json:"validRows"`
	AmbiguousRows []AmbiguousRow `json:"ambiguousRows"`
	InvalidRows   []InvalidRow   `json:"invalidRows"`
}

type Assignment struct {
	AsprakID    string `json:"asprak_id" validate:"required"`
	PraktikumID string `json:"praktikum_id" validate:"required"`
}

type SaveRequest struct {
	Assignments []Assignment `json:"assignments" validate:"dive"`
}

func (sr *SaveRequest) Validate(validate *validator.Validate) error {
	return validate.Struct(sr)
}
