package praktikum

import (
	"strings"

	"github.com/labasprak/asprak/core"
)

const (
	StatusOK      = "ok"
	StatusError   = "error"
	StatusSkipped = "skipped"
)

type PreviewRow struct {
	Nama          string `json:"nama"`
	TahunAjaran   string `json:"tahun_ajaran"`
	Status        string `json:"status"`
	StatusMessage string `json:"status_message"`
	Selected      bool   `json:"selected"`
}

// ValidatePreview marks rows that are empty, already stored, or repeated in the file.
func ValidatePreview(records []core.Record, existing []Praktikum) []PreviewRow {
	stored := make(map[string]bool, len(existing))
	for _, p := range existing {
		stored[strings.ToUpper(p.Nama)+"|"+p.TahunAjaran] = true
	}
	seen := make(map[string]bool, len(records))

	preview := make([]PreviewRow, 0, len(records))
	for _, r := range records {
		row := PreviewRow{
			Nama:        core.CleanUpper(r.Get("nama_singkat", "nama_lengkap", "nama")),
			TahunAjaran: r.Get("tahun_ajaran"),
			Status:      StatusOK,
			Selected:    true,
		}
		switch {
		case row.Nama == "":
			row.Status, row.StatusMessage, row.Selected = StatusError, "Nama kosong", false
		case row.TahunAjaran == "":
			row.Status, row.StatusMessage, row.Selected = StatusError, "Tahun Ajaran kosong", false
		default:
			key := row.Nama + "|" + row.TahunAjaran
			if stored[key] {
				row.Status, row.StatusMessage, row.Selected = StatusSkipped, "Sudah ada di database", false
			} else if seen[key] {
				row.Status, row.StatusMessage, row.Selected = StatusSkipped, "Duplikat dalam file csv/excel", false
			}
			seen[key] = true
		}
		preview = append(preview, row)
	}
	return preview
}
