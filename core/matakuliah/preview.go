package matakuliah

import (
	"strings"

	"github.com/labasprak/asprak/core"
)

const (
	StatusOK    = "ok"
	StatusError = "error"
)

type PreviewRow struct {
	MKSingkat         string `json:"mk_singkat"`
	NamaLengkap       string `json:"nama_lengkap"`
	ProgramStudi      string `json:"program_studi"`
	DosenKoor         string `json:"dosen_koor"`
	Status            string `json:"status"`
	StatusMessage     string `json:"status_message"`
	OriginalMKSingkat string `json:"original_mk_singkat"`
	Selected          bool   `json:"selected"`
}

// ValidatePreview checks spreadsheet rows against the known praktikum names and the
// mata kuliah already stored for the term.
func ValidatePreview(records []core.Record, knownPraktikum []string, existing []Group) []PreviewRow {
	known := make(map[string]bool, len(knownPraktikum))
	for _, n := range knownPraktikum {
		known[strings.ToUpper(n)] = true
	}
	stored := make(map[string]bool)
	for _, g := range existing {
		for _, it := range g.Items {
			stored[strings.ToUpper(g.MKSingkat)+"|"+strings.ToUpper(it.ProgramStudi)] = true
		}
	}
	seen := make(map[string]bool, len(records))

	out := make([]PreviewRow, 0, len(records))
	for _, r := range records {
		row := PreviewRow{
			MKSingkat:    r.Get("mk_singkat", "nama_singkat"),
			NamaLengkap:  r.Get("nama_lengkap"),
			ProgramStudi: core.CleanUpper(r.Get("program_studi", "prodi")),
			DosenKoor:    core.CleanUpper(r.Get("dosen_koor", "koor")),
			Status:       StatusOK,
		}
		row.OriginalMKSingkat = row.MKSingkat
		key := strings.ToUpper(row.MKSingkat) + "|" + row.ProgramStudi

		switch {
		case stored[key]:
			row.Status, row.StatusMessage = StatusError, "Data Duplikat di Database"
		case seen[key]:
			row.Status, row.StatusMessage = StatusError, "Duplikat dalam file csv/excel"
		case !core.IsValidProdi(row.ProgramStudi) || len(row.DosenKoor) != 3:
			row.Status, row.StatusMessage = StatusError, "Data Tidak Valid (Prodi/Dosen)"
		case row.MKSingkat == "" || row.NamaLengkap == "":
			row.Status, row.StatusMessage = StatusError, "Field Wajib Kurang"
		case !known[strings.ToUpper(row.MKSingkat)]:
			row.StatusMessage = "Praktikum baru akan dibuat otomatis"
		}
		if row.MKSingkat != "" && row.ProgramStudi != "" {
			seen[key] = true
		}
		row.Selected = row.Status != StatusError
		out = append(out, row)
	}
	return out
}
