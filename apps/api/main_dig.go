package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"

	dig_container "github.com/labasprak/asprak/apps/api/di/dig"
	echoapi "github.com/labasprak/asprak/apps/api/echo"
	"github.com/labasprak/asprak/core"
	"github.com/labasprak/asprak/core/pengguna"
)

type app struct {
	conf     *core.Config
	logger   core.Logger
	dbLogger core.Logger
	db       *sqlx.DB
	server   *echoapi.Server
}

func startWithDig() {
	c := dig_container.New()

	must(c.Invoke(func(
		conf *core.Config,
		apiLogger core.Logger,
		dbLoggerParam dig_container.DBLoggerParam,
		db *sqlx.DB,
		validate *validator.Validate,
		translator ut.Translator,
		server *echoapi.Server,
	) {
		apiLogger.Info(fmt.Sprintf("asprak API starting : build %q, env %s", conf.Build, conf.Env))

		core.InitValidators(validate, translator)
		pengguna.InitValidators(validate, translator)
		core.ParseEmailTemplates(apiLogger)

		a := app{conf: conf, logger: apiLogger, dbLogger: dbLoggerParam.Logger, db: db, server: server}
		a.run()
	}))
}

func (a app) run() {
	defer a.closeDB()
	defer a.logger.Info("asprak API stopped")

	a.startDebugServer()
	go a.server.Start()
	a.waitForShutdown()
}

func (a app) closeDB() {
	if err := a.db.Close(); err != nil {
		a.dbLogger.Fatal("Failed to close", err)
	}
}

// startDebugServer serves /debug/vars (registered on the default mux by expvar).
func (a app) startDebugServer() {
	expvar.NewString("build").Set(a.conf.Build)
	expvar.NewString("env").Set(a.conf.Env)

	go func() {
		if err := http.ListenAndServe(a.conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			a.logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()
}

// waitForShutdown blocks until the server fails or a shutdown is requested, then drains
// outstanding requests within the configured timeout.
func (a app) waitForShutdown() {
	select {
	case err := <-a.server.Errors():
		a.logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-a.server.ShutdownSignal():
		a.logger.Info(fmt.Sprintf("%v: shutting down", sig))

		ctx, cancel := context.WithTimeout(context.Background(), a.conf.Server.ShutdownTimeout)
		defer cancel()

		if err := a.server.Shutdown(ctx); err != nil {
			a.logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)
			if err = a.server.Close(); err != nil {
				a.logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}
