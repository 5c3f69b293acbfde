package main

import (
	"log"
	"os"

	"github.com/labasprak/asprak/core"
	"github.com/labasprak/asprak/core/importer"
	"github.com/labasprak/asprak/core/pengguna"
	emailsvc "github.com/labasprak/asprak/services/email"
	logsvc "github.com/labasprak/asprak/services/logger"
	"github.com/labasprak/asprak/storage/database"
	sqlxrepos "github.com/labasprak/asprak/storage/database/sqlx"
)

var logger core.Logger

func main() {
	defer os.Exit(0)

	conf := core.NewConfig()
	stdLogger := log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	rbLogger := logsvc.NewRollbarLogger(stdLogger, conf)
	rbLogger.Enable(!conf.Debug)
	logger = rbLogger

	// set up DB
	errAndDie(database.CreateIfNotExist(conf))
	db, err := database.Open(conf)
	errAndDie(err)
	defer db.Close()

	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf, logger)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}

	praktikumRepo := sqlxrepos.NewPraktikumRepository(db)
	mkRepo := sqlxrepos.NewMataKuliahRepository(db)
	asprakRepo := sqlxrepos.NewAsprakRepository(db)
	plottingRepo := sqlxrepos.NewPlottingRepository(db)
	jadwalRepo := sqlxrepos.NewJadwalRepository(db)

	// start CLI
	cli := commandLine{
		db:          db.DB,
		penggunaSvc: pengguna.NewService(sqlxrepos.NewPenggunaRepository(db), mailSvc, conf),
		importerSvc: importer.NewService(
			sqlxrepos.NewDatasetRepository(db), praktikumRepo, mkRepo, asprakRepo, plottingRepo, jadwalRepo, logger,
		),
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Error("admin command failed", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err.Error(), err)
	}
}
