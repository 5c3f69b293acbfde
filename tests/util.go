package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/labasprak/asprak/core"
	"github.com/labasprak/asprak/core/asprak"
	"github.com/labasprak/asprak/core/auditlog"
	"github.com/labasprak/asprak/core/importer"
	"github.com/labasprak/asprak/core/jadwal"
	"github.com/labasprak/asprak/core/matakuliah"
	"github.com/labasprak/asprak/core/pelanggaran"
	"github.com/labasprak/asprak/core/pengguna"
	"github.com/labasprak/asprak/core/plotting"
	"github.com/labasprak/asprak/core/praktikum"
	"github.com/labasprak/asprak/core/stats"
	"github.com/labasprak/asprak/core/system"
	emailsvc "github.com/labasprak/asprak/services/email"
	inmemdb "github.com/labasprak/asprak/storage/database/inmem"
)

// NopLogger drops every message but keeps errors for assertions.
type NopLogger struct {
	Errors []string
}

func (l *NopLogger) Debug(string, ...interface{})       {}
func (l *NopLogger) Info(string, ...interface{})        {}
func (l *NopLogger) Warn(string, ...interface{})        {}
func (l *NopLogger) Error(msg string, _ ...interface{}) { l.Errors = append(l.Errors, msg) }
func (l *NopLogger) Fatal(msg string, _ ...interface{}) { l.Errors = append(l.Errors, msg) }

func NewConfig() *core.Config {
	conf := core.NewConfig()
	conf.Debug = false
	conf.TestMode = true
	conf.DefaultTerm = "2425-1"
	return conf
}

func NewValidator() (*validator.Validate, ut.Translator) {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")

	validate := validator.New()
	core.InitValidators(validate, translator)
	pengguna.InitValidators(validate, translator)
	return validate, translator
}

// Stack is every service wired on one in-memory database.
type Stack struct {
	Conf       *core.Config
	Logger     *NopLogger
	Validate   *validator.Validate
	Translator ut.Translator
	DB         *inmemdb.DB

	PenggunaRepo   pengguna.Repository
	AsprakRepo     asprak.Repository
	PraktikumRepo  praktikum.Repository
	MataKuliahRepo matakuliah.Repository
	JadwalRepo     jadwal.Repository
	PlottingRepo   plotting.Repository

	Pengguna    *pengguna.Service
	Asprak      *asprak.Service
	Praktikum   *praktikum.Service
	MataKuliah  *matakuliah.Service
	Jadwal      *jadwal.Service
	Pelanggaran *pelanggaran.Service
	Plotting    *plotting.Service
	AuditLog    *auditlog.Service
	System      *system.Service
	Stats       *stats.Service
	Importer    *importer.Service
}

func NewStack() *Stack {
	conf := NewConfig()
	logger := new(NopLogger)
	validate, translator := NewValidator()
	core.ParseEmailTemplates(logger)
	db := inmemdb.NewDB()

	penggunaRepo := inmemdb.NewPenggunaRepository(db)
	asprakRepo := inmemdb.NewAsprakRepository(db)
	praktikumRepo := inmemdb.NewPraktikumRepository(db)
	mkRepo := inmemdb.NewMataKuliahRepository(db)
	jadwalRepo := inmemdb.NewJadwalRepository(db)
	plottingRepo := inmemdb.NewPlottingRepository(db)

	praktikumSvc := praktikum.NewService(praktikumRepo)
	mkSvc := matakuliah.NewService(mkRepo, praktikumSvc)
	return &Stack{
		Conf:       conf,
		Logger:     logger,
		Validate:   validate,
		Translator: translator,
		DB:         db,

		PenggunaRepo:   penggunaRepo,
		AsprakRepo:     asprakRepo,
		PraktikumRepo:  praktikumRepo,
		MataKuliahRepo: mkRepo,
		JadwalRepo:     jadwalRepo,
		PlottingRepo:   plottingRepo,

		Pengguna:    pengguna.NewService(penggunaRepo, emailsvc.NewConsoleServiceMock(conf, logger), conf),
		Asprak:      asprak.NewService(asprakRepo, praktikumSvc, plottingRepo),
		Praktikum:   praktikumSvc,
		MataKuliah:  mkSvc,
		Jadwal:      jadwal.NewService(jadwalRepo, mkSvc, praktikumSvc),
		Pelanggaran: pelanggaran.NewService(inmemdb.NewPelanggaranRepository(db), asprakRepo, jadwalRepo, mkRepo),
		Plotting:    plotting.NewService(plottingRepo, asprakRepo, praktikumSvc),
		AuditLog:    auditlog.NewService(inmemdb.NewAuditLogRepository(db), logger),
		System:      system.NewService(inmemdb.NewSystemRepository(db), logger),
		Stats:       stats.NewService(inmemdb.NewStatsRepository(db), praktikumSvc, conf),
		Importer: importer.NewService(
			inmemdb.NewDatasetRepository(db), praktikumRepo, mkRepo, asprakRepo, plottingRepo, jadwalRepo, logger,
		),
	}
}

func CreatePengguna(t *testing.T, repo pengguna.Repository, nama, email, pwd, role string, isActive bool) pengguna.Pengguna {
	now := time.Now().UTC()
	p := pengguna.Pengguna{
		NamaLengkap: nama,
		Email:       email,
		Role:        role,
		IsActive:    isActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if pwd != "" {
		if err := p.SetPassword(pwd); err != nil {
			t.Fatalf("CreatePengguna() failed: %v", err)
		}
	}
	p, err := repo.Create(context.Background(), p)
	if err != nil {
		t.Fatalf("CreatePengguna() failed: %v", err)
	}
	return p
}

func CreatePraktikum(t *testing.T, repo praktikum.Repository, nama, term string) praktikum.Praktikum {
	p, err := repo.Create(context.Background(), praktikum.Praktikum{Nama: nama, TahunAjaran: term})
	if err != nil {
		t.Fatalf("CreatePraktikum() failed: %v", err)
	}
	return p
}

func CreateMataKuliah(t *testing.T, repo matakuliah.Repository, p praktikum.Praktikum, nama, prodi string) matakuliah.MataKuliah {
	mk, err := repo.Create(context.Background(), matakuliah.MataKuliah{
		IDPraktikum:  p.ID,
		NamaLengkap:  nama,
		ProgramStudi: prodi,
		Warna:        matakuliah.CourseColor(p.Nama),
	})
	if err != nil {
		t.Fatalf("CreateMataKuliah() failed: %v", err)
	}
	return mk
}

func CreateAsprak(t *testing.T, repo asprak.Repository, nim, nama, kode string, angkatan int) asprak.Asprak {
	a, err := repo.Create(context.Background(), asprak.Asprak{
		NIM:         nim,
		NamaLengkap: nama,
		Kode:        kode,
		Angkatan:    angkatan,
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateAsprak() failed: %v", err)
	}
	return a
}

func CreateJadwal(t *testing.T, repo jadwal.Repository, mk matakuliah.MataKuliah, kelas, hari string, sesi int, jam, ruangan string) jadwal.Jadwal {
	j, err := repo.Create(context.Background(), jadwal.Jadwal{
		IDMK:        mk.ID,
		Kelas:       kelas,
		Hari:        hari,
		Sesi:        sesi,
		Jam:         jam,
		Ruangan:     ruangan,
		TotalAsprak: 2,
	})
	if err != nil {
		t.Fatalf("CreateJadwal() failed: %v", err)
	}
	return j
}

func Link(t *testing.T, repo plotting.Repository, a asprak.Asprak, p praktikum.Praktikum) int {
	id, _, err := repo.Link(context.Background(), a.ID, p.ID)
	if err != nil {
		t.Fatalf("Link() failed: %v", err)
	}
	return id
}
