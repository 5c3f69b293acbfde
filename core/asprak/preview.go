package asprak

import (
	"fmt"
	"strings"

	"github.com/labasprak/asprak/core"
)

// Preview statuses
const (
	StatusOK           = "ok"
	StatusWarning      = "warning"
	StatusError        = "error"
	StatusDuplicateCSV = "duplicate-csv"

	SourceCSV       = "csv"
	SourceGenerated = "generated"
)

// PreviewRow is one CSV row after validation and code assignment.
type PreviewRow struct {
	NamaLengkap        string `json:"nama_lengkap"`
	NIM                string `json:"nim"`
	Kode               string `json:"kode"`
	Angkatan           int    `json:"angkatan"`
	CodeRule           string `json:"code_rule"`
	CodeSource         string `json:"code_source"`
	Status             string `json:"status"`
	StatusMessage      string `json:"status_message"`
	OriginalKode       string `json:"original_kode"`
	OriginalCodeRule   string `json:"original_code_rule"`
	OriginalCodeSource string `json:"original_code_source"`
	Selected           bool   `json:"selected"`
}

// ExistingCode is a code held in the database and the angkatan of its holder.
type ExistingCode struct {
	Kode     string `json:"kode"`
	Angkatan int    `json:"angkatan"`
}

type importRow struct {
	nama     string
	nim      string
	kode     string
	angkatan int
}

func normalizeImportRow(r core.Record) importRow {
	return importRow{
		nama:     r.Get("nama_lengkap", "namalengkap", "nama"),
		nim:      r.Get("nim"),
		kode:     r.Get("kode"),
		angkatan: NormalizeAngkatan(r.Int("angkatan", "tahun")),
	}
}

// ValidateImport checks CSV rows against the database NIMs and codes, and assigns codes.
// With forceOverride, codes given in the file win over database codes.
func ValidateImport(records []core.Record, existingCodes, existingNIMs []string, forceOverride bool) []PreviewRow {
	used := make(map[string]bool, len(existingCodes))
	if !forceOverride {
		for _, c := range existingCodes {
			used[strings.ToUpper(c)] = true
		}
	}
	nims := make(map[string]bool, len(existingNIMs))
	for _, n := range existingNIMs {
		nims[n] = true
	}

	rows := make([]importRow, len(records))
	reqs := make([]CodeRequest, len(records))
	for i, r := range records {
		rows[i] = normalizeImportRow(r)
		reqs[i] = CodeRequest{Name: rows[i].nama, ProvidedCode: rows[i].kode}
	}
	generated := BatchGenerateCodes(reqs, used)

	preview := make([]PreviewRow, 0, len(rows))
	seenNIMs := make(map[string]bool, len(rows))
	for i, row := range rows {
		origKode := strings.ToUpper(row.kode)
		gen := generated[i]

		status, msg := StatusOK, ""
		switch {
		case row.nama == "":
			status, msg = StatusError, "Nama kosong"
		case row.nim == "":
			status, msg = StatusError, "NIM kosong"
		case nims[row.nim]:
			status, msg = StatusError, "Duplikat — NIM sudah ada di database"
		case seenNIMs[row.nim]:
			status, msg = StatusDuplicateCSV, "Duplikat dalam CSV — NIM sama dengan row sebelumnya"
		case row.angkatan <= 0:
			status, msg = StatusWarning, "Angkatan tidak valid"
		}
		if gen.Rule == RuleFailed && origKode == "" && status == StatusOK {
			status, msg = StatusError, "Kode gagal di-generate — isi manual di kolom kode"
		}
		if row.nim != "" {
			seenNIMs[row.nim] = true
		}

		source := SourceGenerated
		if gen.Rule == RuleProvided {
			source = SourceCSV
		}
		isDuplicate := (status == StatusError && strings.Contains(msg, "Duplikat")) || status == StatusDuplicateCSV

		rule, kode := gen.Rule, gen.Code
		if isDuplicate {
			rule = "Duplikat"
			if origKode != "" {
				kode = origKode
			}
		}
		if forceOverride && origKode != "" {
			kode = origKode
			if !isDuplicate {
				rule = RuleProvided + " [Forced]"
			}
			source = SourceCSV
			if strings.Contains(msg, "Kode gagal di-generate") {
				status, msg = StatusOK, ""
			}
		}

		angkatan := row.angkatan
		if angkatan < 0 {
			angkatan = 0
		}
		preview = append(preview, PreviewRow{
			NamaLengkap:        strings.ToUpper(row.nama),
			NIM:                row.nim,
			Kode:               kode,
			Angkatan:           angkatan,
			CodeRule:           rule,
			CodeSource:         source,
			Status:             status,
			StatusMessage:      msg,
			OriginalKode:       kode,
			OriginalCodeRule:   rule,
			OriginalCodeSource: source,
			Selected:           status == StatusOK || status == StatusWarning,
		})
	}
	return preview
}

// ValidateCodeEdit re-checks row `idx` after its code was edited by hand.
// Errors about the name or NIM, and CSV duplicates, are kept as they are.
func ValidateCodeEdit(rows []PreviewRow, idx int, newCode string, existing []ExistingCode, forceOverride bool) ([]PreviewRow, error) {
	if idx < 0 || idx >= len(rows) {
		return nil, core.NewValidationError(nil, core.FieldError{Field: "index", Error: "out of range"})
	}
	updated := make([]PreviewRow, len(rows))
	copy(updated, rows)
	row := updated[idx]

	code := strings.ToUpper(strings.TrimSpace(newCode))
	row.Kode = code
	if code == row.OriginalKode {
		row.CodeSource, row.CodeRule = row.OriginalCodeSource, row.OriginalCodeRule
	} else {
		row.CodeSource, row.CodeRule = SourceCSV, "Manual edit"
	}

	preserve := (row.Status == StatusError && (strings.Contains(row.StatusMessage, "NIM") || strings.Contains(row.StatusMessage, "Nama"))) ||
		row.Status == StatusDuplicateCSV

	switch {
	case core.IsValidCode(code):
		inCSV := false
		for i, r := range updated {
			if i != idx && r.Kode == code && r.Status != StatusError && r.Status != StatusDuplicateCSV {
				inCSV = true
				break
			}
		}
		inDB := false
		if !forceOverride {
			for _, e := range existing {
				if strings.ToUpper(e.Kode) == code && row.Angkatan-e.Angkatan < CodeRecycleYears {
					inDB = true
					break
				}
			}
		}
		if !preserve {
			switch {
			case inCSV:
				row.Status, row.StatusMessage = StatusWarning, fmt.Sprintf("Kode %q sudah dipakai row lain di CSV ini", code)
			case inDB:
				row.Status, row.StatusMessage = StatusWarning,
					fmt.Sprintf("Kode %q sudah dipakai asprak lain di DB (< %d thn)", code, CodeRecycleYears)
			default:
				row.Status, row.StatusMessage = StatusOK, ""
			}
		}
		row.Selected = row.Status == StatusOK || row.Status == StatusWarning
	case code == "":
		if !preserve {
			row.Status, row.StatusMessage = StatusError, "Kode tidak boleh kosong"
		}
		row.Selected = false
	default:
		if !preserve {
			row.Status, row.StatusMessage = StatusError, "Kode harus 3 huruf"
		}
		row.Selected = false
	}

	updated[idx] = row
	return updated, nil
}
