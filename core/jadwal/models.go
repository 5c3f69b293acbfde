package jadwal

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/labasprak/asprak/core"
)

// Rooms are the laboratory rooms a class can be scheduled in.
var Rooms = []string{
	"TULT 0604", "TULT 0605", "TULT 0617", "TULT 0618",
	"TULT 0704", "TULT 0705", "TULT 0712", "TULT 0713",
}

type Session struct {
	Sesi int    `json:"sesi"`
	Jam  string `json:"jam"`
}

// StaticSessions are the fixed session start times of each day.
var StaticSessions = map[string][]Session{
	"SENIN":  {{1, "06:30"}, {2, "09:30"}, {3, "12:30"}, {4, "15:30"}},
	"SELASA": {{1, "06:30"}, {2, "09:30"}, {3, "12:30"}, {4, "15:30"}},
	"RABU":   {{1, "06:30"}, {2, "09:30"}, {3, "12:30"}, {4, "15:30"}},
	"KAMIS":  {{1, "06:30"}, {2, "09:30"}, {3, "12:30"}, {4, "15:30"}},
	"JUMAT":  {{1, "07:30"}, {3, "13:30"}, {4, "16:30"}},
	"SABTU":  {{1, "07:30"}, {2, "10:30"}, {3, "13:30"}, {4, "16:30"}},
}

type Jadwal struct {
	ID          int64  `json:"id"`
	IDMK        int64  `json:"id_mk"`
	Kelas       string `json:"kelas"`
	Hari        string `json:"hari"`
	Sesi        int    `json:"sesi"`
	Jam         string `json:"jam"`
	Ruangan     string `json:"ruangan"`
	TotalAsprak int    `json:"total_asprak"`
	Dosen       string `json:"dosen"`
}

// IsPJJ reports whether the class is a distance-learning one.
func (j Jadwal) IsPJJ() bool {
	return isPJJ(j.Kelas)
}

type MKPraktikum struct {
	Nama        string `json:"nama"`
	TahunAjaran string `json:"tahun_ajaran"`
}

type MKInfo struct {
	NamaLengkap  string      `json:"nama_lengkap"`
	ProgramStudi string      `json:"program_studi"`
	Praktikum    MKPraktikum `json:"praktikum"`
}

// WithMataKuliah is a jadwal joined with its mata kuliah and praktikum.
type WithMataKuliah struct {
	Jadwal
	MataKuliah MKInfo `json:"mata_kuliah"`
}

// Pengganti is a replacement session of a jadwal for one modul.
type Pengganti struct {
	ID        string    `json:"id"`
	IDJadwal  int64     `json:"id_jadwal"`
	Modul     int       `json:"modul"`
	Tanggal   string    `json:"tanggal"`
	Hari      string    `json:"hari"`
	Sesi      int       `json:"sesi"`
	Jam       string    `json:"jam"`
	Ruangan   string    `json:"ruangan"`
	CreatedAt time.Time `json:"created_at"` // UTC
}

type NewJadwal struct {
	IDMK        int64  `json:"id_mk" validate:"required"`
	Kelas       string `json:"kelas" validate:"required"`
	Hari        string `json:"hari" validate:"required,hari"`
	Sesi        int    `json:"sesi" validate:"gte=0"`
	Jam         string `json:"jam"`
	Ruangan     string `json:"ruangan"`
	TotalAsprak int    `json:"total_asprak" validate:"gte=0"`
	Dosen       string `json:"dosen"`
}

func (nj *NewJadwal) Validate(validate *validator.Validate) error {
	nj.Kelas = core.CleanString(nj.Kelas)
	nj.Hari = core.CleanUpper(nj.Hari)
	nj.Jam = core.CleanString(nj.Jam)
	nj.Ruangan = core.CleanString(nj.Ruangan)
	nj.Dosen = core.CleanString(nj.Dosen)
	return validate.Struct(nj)
}

func (nj NewJadwal) jadwal() Jadwal {
	return Jadwal{
		IDMK:        nj.IDMK,
		Kelas:       nj.Kelas,
		Hari:        nj.Hari,
		Sesi:        nj.Sesi,
		Jam:         nj.Jam,
		Ruangan:     nj.Ruangan,
		TotalAsprak: nj.TotalAsprak,
		Dosen:       nj.Dosen,
	}
}

// UpdateJadwal changes only the fields that are set.
type UpdateJadwal struct {
	IDMK        *int64  `json:"id_mk" validate:"omitempty,gt=0"`
	Kelas       *string `json:"kelas" validate:"omitempty,min=1"`
	Hari        *string `json:"hari" validate:"omitempty,hari"`
	Sesi        *int    `json:"sesi" validate:"omitempty,gte=0"`
	Jam         *string `json:"jam"`
	Ruangan     *string `json:"ruangan"`
	TotalAsprak *int    `json:"total_asprak" validate:"omitempty,gte=0"`
	Dosen       *string `json:"dosen"`
}

func (uj *UpdateJadwal) Validate(validate *validator.Validate) error {
	if uj.Hari != nil {
		h := core.CleanUpper(*uj.Hari)
		uj.Hari = &h
	}
	return validate.Struct(uj)
}

func (uj UpdateJadwal) apply(j Jadwal) Jadwal {
	if uj.IDMK != nil {
		j.IDMK = *uj.IDMK
	}
	if uj.Kelas != nil {
		j.Kelas = core.CleanString(*uj.Kelas)
	}
	if uj.Hari != nil {
		j.Hari = *uj.Hari
	}
	if uj.Sesi != nil {
		j.Sesi = *uj.Sesi
	}
	if uj.Jam != nil {
		j.Jam = core.CleanString(*uj.Jam)
	}
	if uj.Ruangan != nil {
		j.Ruangan = core.CleanString(*uj.Ruangan)
	}
	if uj.TotalAsprak != nil {
		j.TotalAsprak = *uj.TotalAsprak
	}
	if uj.Dosen != nil {
		j.Dosen = core.CleanString(*uj.Dosen)
	}
	return j
}

type UpsertPengganti struct {
	IDJadwal int64  `json:"id_jadwal" validate:"required"`
	Modul    int    `json:"modul" validate:"required,gt=0"`
	Tanggal  string `json:"tanggal" validate:"omitempty,datetime=2006-01-02"`
	Hari     string `json:"hari" validate:"omitempty,hari"`
	Sesi     int    `json:"sesi" validate:"gte=0"`
	Jam      string `json:"jam"`
	Ruangan  string `json:"ruangan"`
}

func (up *UpsertPengganti) Validate(validate *validator.Validate) error {
	up.Tanggal = core.CleanString(up.Tanggal)
	up.Hari = core.CleanUpper(up.Hari)
	up.Jam = core.CleanString(up.Jam)
	up.Ruangan = core.CleanString(up.Ruangan)
	if up.Tanggal == "" {
		return core.NewValidationError(
			nil, core.FieldError{Field: "tanggal", Error: "Tanggal wajib diisi untuk jadwal pengganti"},
		)
	}
	return validate.Struct(up)
}

type BulkResult struct {
	Inserted int      `json:"inserted"`
	Errors   []string `json:"errors"`
}
