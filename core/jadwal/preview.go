package jadwal

import (
	"fmt"
	"strings"

	"github.com/labasprak/asprak/core"
	"github.com/labasprak/asprak/core/matakuliah"
)

const (
	StatusOK    = "ok"
	StatusError = "error"
)

// prodiFallbacks are tried, in order, when no mata kuliah matches the kelas prefix.
var prodiFallbacks = []string{"IF", "SE", "IT", "DS"}

type PreviewRow struct {
	IDMK            int64  `json:"id_mk"`
	Kelas           string `json:"kelas"`
	Hari            string `json:"hari"`
	Sesi            int    `json:"sesi"`
	Jam             string `json:"jam"`
	Ruangan         string `json:"ruangan"`
	TotalAsprak     int    `json:"total_asprak"`
	Dosen           string `json:"dosen"`
	MKName          string `json:"mk_name"`
	FromSystemLogic bool   `json:"from_system_logic"`
	Status          string `json:"status"`
	StatusMessage   string `json:"status_message"`
	Selected        bool   `json:"selected"`
	OriginalRow     int    `json:"original_row"`
}

func isPJJ(kelas string) bool {
	return strings.Contains(strings.ToUpper(kelas), "PJJ")
}

// findMataKuliah matches a name against the praktikum name or full name of a mata kuliah of prodi.
func findMataKuliah(mks []matakuliah.WithPraktikum, name, prodi string) *matakuliah.WithPraktikum {
	for i, mk := range mks {
		if (strings.EqualFold(mk.Praktikum.Nama, name) || strings.EqualFold(mk.NamaLengkap, name)) &&
			strings.EqualFold(mk.ProgramStudi, prodi) {
			return &mks[i]
		}
	}
	return nil
}

// ResolveMataKuliah looks for the mata kuliah of the kelas prefix, then IF-PJJ for distance
// classes, then each regular prodi in turn.
func ResolveMataKuliah(mks []matakuliah.WithPraktikum, name, kelas string) *matakuliah.WithPraktikum {
	prodi := strings.ToUpper(strings.SplitN(kelas, "-", 2)[0])
	if mk := findMataKuliah(mks, name, prodi); mk != nil {
		return mk
	}
	if isPJJ(kelas) {
		if mk := findMataKuliah(mks, name, "IF-PJJ"); mk != nil {
			return mk
		}
	}
	for _, p := range prodiFallbacks {
		if mk := findMataKuliah(mks, name, p); mk != nil {
			return mk
		}
	}
	return nil
}

// CleanRoom keeps the first room of a shared "A & B" entry.
func CleanRoom(ruangan string) string {
	ruangan = strings.TrimSpace(ruangan)
	if i := strings.Index(ruangan, "&"); i >= 0 {
		ruangan = strings.TrimSpace(ruangan[:i])
	}
	return ruangan
}

// BuildPreview resolves spreadsheet rows to the mata kuliah of a term.
// OriginalRow is the spreadsheet line, counting the header as line 1.
func BuildPreview(records []core.Record, mks []matakuliah.WithPraktikum, term string) []PreviewRow {
	candidates := mks
	if term != "" {
		candidates = make([]matakuliah.WithPraktikum, 0, len(mks))
		for _, mk := range mks {
			if mk.Praktikum.TahunAjaran == term {
				candidates = append(candidates, mk)
			}
		}
	}

	preview := make([]PreviewRow, 0, len(records))
	for _, r := range records {
		name := r.Get("nama_singkat", "mata_kuliah")
		kelas := r.Get("kelas")
		row := PreviewRow{
			Kelas:       kelas,
			Hari:        strings.ToUpper(r.Get("hari")),
			Sesi:        r.Int("sesi"),
			Jam:         r.Get("jam"),
			Ruangan:     CleanRoom(r.Get("ruangan")),
			TotalAsprak: r.Int("total_asprak"),
			Dosen:       r.Get("dosen"),
			MKName:      name,
			Status:      StatusOK,
			OriginalRow: len(preview) + 2,
		}

		mk := ResolveMataKuliah(candidates, name, kelas)
		if mk != nil {
			row.IDMK = mk.ID
			row.MKName = mk.NamaLengkap
			row.FromSystemLogic = true
		}

		switch {
		case mk == nil:
			row.Status, row.StatusMessage = StatusError, fmt.Sprintf("Mata Kuliah %q tidak ditemukan.", name)
		case !core.IsValidDay(row.Hari):
			row.Status, row.StatusMessage = StatusError, fmt.Sprintf("Hari %q tidak valid.", row.Hari)
		case !isPJJ(kelas) && row.Sesi <= 0:
			row.Status, row.StatusMessage = StatusError, "Sesi harus > 0 (Kecuali PJJ)"
		}
		row.Selected = row.Status == StatusOK
		preview = append(preview, row)
	}
	return preview
}

func slotKey(hari string, sesi int, jam, ruangan string) string {
	return fmt.Sprintf("%s-%d-%s-%s", hari, sesi, jam, ruangan)
}

func fullKey(idMK int64, kelas, hari string, sesi int, ruangan string) string {
	return fmt.Sprintf("%d-%s-%s-%d-%s", idMK, kelas, hari, sesi, ruangan)
}

// ValidateConflicts marks preview rows that repeat a stored jadwal, share a room slot with
// another non-PJJ row of the file, or take a room slot already used in the database.
// PJJ classes never collide.
func ValidateConflicts(rows []PreviewRow, stored []WithMataKuliah) []PreviewRow {
	dbSlots := make(map[string]WithMataKuliah)
	dbFull := make(map[string]bool)
	for _, s := range stored {
		if s.Ruangan == "" {
			continue
		}
		dbSlots[slotKey(s.Hari, s.Sesi, s.Jam, s.Ruangan)] = s
		dbFull[fullKey(s.IDMK, s.Kelas, s.Hari, s.Sesi, s.Ruangan)] = true
	}

	internal := make(map[string][]int)
	for i, r := range rows {
		if r.Status == StatusError || r.Ruangan == "" {
			continue
		}
		k := slotKey(r.Hari, r.Sesi, r.Jam, r.Ruangan)
		internal[k] = append(internal[k], i)
	}

	out := make([]PreviewRow, len(rows))
	for i, row := range rows {
		out[i] = row
		if row.Status == StatusError {
			continue
		}
		fail := func(msg string) {
			out[i].Status, out[i].StatusMessage, out[i].Selected = StatusError, msg, false
		}

		if dbFull[fullKey(row.IDMK, row.Kelas, row.Hari, row.Sesi, row.Ruangan)] {
			fail("Duplikat: Jadwal ini sudah ada di database.")
			continue
		}
		if row.Ruangan == "" || isPJJ(row.Kelas) {
			continue
		}

		k := slotKey(row.Hari, row.Sesi, row.Jam, row.Ruangan)
		lines := make([]string, 0)
		for _, idx := range internal[k] {
			if !isPJJ(rows[idx].Kelas) {
				lines = append(lines, fmt.Sprint(rows[idx].OriginalRow))
			}
		}
		if len(lines) > 1 {
			fail(fmt.Sprintf("Tabrakan Internal CSV (Baris %s)", strings.Join(lines, ", ")))
			continue
		}

		if existing, ok := dbSlots[k]; ok && !existing.IsPJJ() {
			name := existing.MataKuliah.NamaLengkap
			if name == "" {
				name = "MK lain"
			}
			fail(fmt.Sprintf("Tabrakan Database: Ruangan %s dipakai %s (%s)", row.Ruangan, name, existing.Kelas))
		}
	}
	return out
}
