package dig_container

import (
	"fmt"
	"log"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoapi "github.com/labasprak/asprak/apps/api/echo"
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
	logsvc "github.com/labasprak/asprak/services/logger"
	"github.com/labasprak/asprak/storage/database"
	sqlxrepos "github.com/labasprak/asprak/storage/database/sqlx"
)

type DBLoggerParam struct {
	dig.In
	Logger core.Logger `name:"dbLogger"`
}

func newLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "API : ", log.LstdFlags)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug)
	return logger
}

func newDBLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug)
	return logger
}

func newDB(conf *core.Config, loggerParam DBLoggerParam) *sqlx.DB {
	setUp := func() (*sqlx.DB, error) {
		if err := database.CreateIfNotExist(conf); err != nil {
			return nil, err
		}

		db, err := database.Open(conf)
		if err != nil {
			return nil, err
		}

		if err = database.Migrate(db.DB); err != nil {
			_ = db.Close()
			return nil, err
		}
		return db, nil
	}

	db, err := setUp()
	if err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	return db
}

func newEmailService(conf *core.Config, logger core.Logger) core.EmailService {
	if conf.Debug {
		return emailsvc.NewConsoleService(conf, logger)
	}
	return emailsvc.NewSendgridService(conf, logger)
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

// services whose collaborators are other services

func newMataKuliahService(repo matakuliah.Repository, praktikumSvc *praktikum.Service) *matakuliah.Service {
	return matakuliah.NewService(repo, praktikumSvc)
}

func newAsprakService(repo asprak.Repository, praktikumSvc *praktikum.Service, links asprak.Linker) *asprak.Service {
	return asprak.NewService(repo, praktikumSvc, links)
}

func newJadwalService(repo jadwal.Repository, mkSvc *matakuliah.Service, praktikumSvc *praktikum.Service) *jadwal.Service {
	return jadwal.NewService(repo, mkSvc, praktikumSvc)
}

func newPlottingService(repo plotting.Repository, aspraks plotting.Aspraks, praktikumSvc *praktikum.Service) *plotting.Service {
	return plotting.NewService(repo, aspraks, praktikumSvc)
}

func newStatsService(repo stats.Repository, praktikumSvc *praktikum.Service, conf *core.Config) *stats.Service {
	return stats.NewService(repo, praktikumSvc, conf)
}

type serverParams struct {
	dig.In

	Conf       *core.Config
	Logger     core.Logger
	Validate   *validator.Validate
	Translator ut.Translator

	PenggunaSvc    *pengguna.Service
	AsprakSvc      *asprak.Service
	PraktikumSvc   *praktikum.Service
	MataKuliahSvc  *matakuliah.Service
	JadwalSvc      *jadwal.Service
	PelanggaranSvc *pelanggaran.Service
	PlottingSvc    *plotting.Service
	AuditLogSvc    *auditlog.Service
	SystemSvc      *system.Service
	StatsSvc       *stats.Service
	ImporterSvc    *importer.Service
}

func newServer(p serverParams) *echoapi.Server {
	return echoapi.NewServer(echoapi.ServerDeps{
		Conf:           p.Conf,
		Logger:         p.Logger,
		Validate:       p.Validate,
		Translator:     p.Translator,
		PenggunaSvc:    p.PenggunaSvc,
		AsprakSvc:      p.AsprakSvc,
		PraktikumSvc:   p.PraktikumSvc,
		MataKuliahSvc:  p.MataKuliahSvc,
		JadwalSvc:      p.JadwalSvc,
		PelanggaranSvc: p.PelanggaranSvc,
		PlottingSvc:    p.PlottingSvc,
		AuditLogSvc:    p.AuditLogSvc,
		SystemSvc:      p.SystemSvc,
		StatsSvc:       p.StatsSvc,
		ImporterSvc:    p.ImporterSvc,
	})
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newDB))
	must(c.Provide(newEmailService))
	must(c.Provide(validator.New))
	must(c.Provide(newTranslator))

	// repositories
	must(c.Provide(sqlxrepos.NewPenggunaRepository, dig.As(new(pengguna.Repository))))
	must(c.Provide(sqlxrepos.NewPraktikumRepository, dig.As(new(praktikum.Repository), new(importer.Praktikums))))
	must(c.Provide(sqlxrepos.NewMataKuliahRepository, dig.As(
		new(matakuliah.Repository), new(pelanggaran.MataKuliahs), new(importer.MataKuliahs),
	)))
	must(c.Provide(sqlxrepos.NewAsprakRepository, dig.As(
		new(asprak.Repository), new(pelanggaran.Aspraks), new(plotting.Aspraks), new(importer.Aspraks),
	)))
	must(c.Provide(sqlxrepos.NewPlottingRepository, dig.As(new(plotting.Repository), new(asprak.Linker), new(importer.Links))))
	must(c.Provide(sqlxrepos.NewJadwalRepository, dig.As(new(jadwal.Repository), new(pelanggaran.Jadwals), new(importer.Jadwals))))
	must(c.Provide(sqlxrepos.NewPelanggaranRepository, dig.As(new(pelanggaran.Repository))))
	must(c.Provide(sqlxrepos.NewAuditLogRepository, dig.As(new(auditlog.Repository))))
	must(c.Provide(sqlxrepos.NewSystemRepository, dig.As(new(system.Repository))))
	must(c.Provide(sqlxrepos.NewStatsRepository, dig.As(new(stats.Repository))))
	must(c.Provide(sqlxrepos.NewDatasetRepository, dig.As(new(importer.Repository))))

	// services
	must(c.Provide(pengguna.NewService))
	must(c.Provide(praktikum.NewService))
	must(c.Provide(newMataKuliahService))
	must(c.Provide(newAsprakService))
	must(c.Provide(newJadwalService))
	must(c.Provide(pelanggaran.NewService))
	must(c.Provide(newPlottingService))
	must(c.Provide(auditlog.NewService))
	must(c.Provide(system.NewService))
	must(c.Provide(newStatsService))
	must(c.Provide(importer.NewService))

	must(c.Provide(newServer))

	return c
}

// Visualize writes the dependency graph of c in DOT format.
func Visualize(c *dig.Container) error {
	return dig.Visualize(c, os.Stdout)
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
