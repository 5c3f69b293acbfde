package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

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
)

type (
	ServerDeps struct {
		Conf           *core.Config
		Logger         core.Logger
		Validate       *validator.Validate
		Translator     ut.Translator
		DisableReqLogs bool

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

	Server struct {
		ServerDeps
		app      *echo.Echo
		jwt      middleware.JWTConfig
		registry *prometheus.Registry
		shutdown chan os.Signal
		errors   chan error
	}
)

func NewServer(deps ServerDeps) *Server {
	s := &Server{
		ServerDeps: deps,
		app:        echo.New(),
		jwt:        newJWTConfig(deps.Conf),
		registry:   prometheus.NewRegistry(),
		shutdown:   make(chan os.Signal, 1),
		errors:     make(chan error, 1),
	}
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *Server) setup() {
	s.app.Server.ReadTimeout = s.Conf.Server.ReadTimeout
	s.app.Server.WriteTimeout = s.Conf.Server.WriteTimeout
	s.app.HideBanner = true
	s.app.Debug = s.Conf.Debug
	s.app.HTTPErrorHandler = s.newHTTPErrorHandler(s.signalShutdown)

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(s.Conf.Debug || s.Conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	s.app.Use(newMetrics(s.registry).middleware)

	s.app.GET("/", home)
	s.app.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))

	api := s.app.Group("/api")
	authed := api.Group("", middleware.JWTWithConfig(s.jwt), s.maintenanceMiddleware)

	s.registerAuthAPI(api, authed)
	s.registerSystemAPI(api, authed)
	s.registerPenggunaAPI(authed)
	s.registerAsprakAPI(authed)
	s.registerPraktikumAPI(authed)
	s.registerMataKuliahAPI(authed)
	s.registerJadwalAPI(authed)
	s.registerPelanggaranAPI(authed)
	s.registerPlottingAPI(authed)
	s.registerAuditLogAPI(authed)
	s.registerStatsAPI(authed)
	s.registerDatasetAPI(authed)
}

func (s *Server) Start() {
	if err := s.app.Start(s.Conf.Server.Host); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *Server) Errors() <-chan error { return s.errors }

func (s *Server) ShutdownSignal() <-chan os.Signal { return s.shutdown }

func (s *Server) signalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default: // already shutting down
	}
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.app.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to Asprak API!")
}
