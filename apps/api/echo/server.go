package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/trezcool/kazi/core"
	"github.com/trezcool/kazi/core/checkin"
	"github.com/trezcool/kazi/core/claim"
	"github.com/trezcool/kazi/core/competitor"
	"github.com/trezcool/kazi/core/journal"
	"github.com/trezcool/kazi/core/lead"
	"github.com/trezcool/kazi/core/org"
	"github.com/trezcool/kazi/core/report"
	"github.com/trezcool/kazi/core/user"
)

type (
	// Pinger probes a backing service for the health endpoint.
	Pinger func(ctx context.Context) error

	ServerDeps struct {
		Logger         core.Logger
		UserSvc        user.ServiceInterface
		OrgSvc         org.ServiceInterface
		CheckInSvc     checkin.ServiceInterface
		ClaimSvc       claim.ServiceInterface
		CompetitorSvc  competitor.ServiceInterface
		JournalSvc     journal.ServiceInterface
		LeadSvc        lead.ServiceInterface
		ReportSvc      report.ServiceInterface
		PingDB         Pinger
		PingCache      Pinger
		DisableReqLogs bool
	}

	Server interface {
		http.Handler
		Start()
		Shutdown(context.Context) error
		Close() error
		Errors() chan error
		ShutdownSignal() chan os.Signal
	}

	server struct {
		addr string
		deps *ServerDeps
		app  *echo.Echo

		serverErrors chan error
		shutdownChan chan os.Signal
	}
)

var _ Server = (*server)(nil)

func NewServer(addr string, deps *ServerDeps) Server {
	s := &server{
		addr:         addr,
		deps:         deps,
		app:          echo.New(),
		serverErrors: make(chan error, 1),
		shutdownChan: make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdownChan, os.Interrupt, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *server) setup() {
	s.app.Pre(middleware.RemoveTrailingSlash())
	s.app.Use(metricsMiddleware())
	if !s.deps.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(core.Conf.Debug || core.Conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.signalShutdown)
	s.app.Debug = core.Conf.Debug

	s.app.GET("/", home)
	s.app.GET("/healthz", s.healthz)
	s.app.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	v1 := s.app.Group("/v1")
	jwt := jwtMiddleware()

	registerUserAPI(v1, jwt, s.deps.UserSvc)
	registerOrgAPI(v1, jwt, s.deps.OrgSvc)
	registerCheckInAPI(v1, jwt, s.deps.CheckInSvc)
	registerClaimAPI(v1, jwt, s.deps.ClaimSvc)
	registerCompetitorAPI(v1, jwt, s.deps.CompetitorSvc)
	registerJournalAPI(v1, jwt, s.deps.JournalSvc)
	registerLeadAPI(v1, jwt, s.deps.LeadSvc)
	registerReportAPI(v1, jwt, s.deps.ReportSvc)
}

func (s *server) Start() {
	s.serverErrors <- s.app.Start(s.addr)
}

func (s *server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) Close() error {
	return s.app.Close()
}

func (s *server) Errors() chan error {
	return s.serverErrors
}

func (s *server) ShutdownSignal() chan os.Signal {
	return s.shutdownChan
}

func (s *server) signalShutdown() {
	s.shutdownChan <- syscall.SIGTERM
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return respond(ctx, http.StatusOK, echo.Map{"app": core.Conf.AppName, "version": core.Conf.Build})
}

// healthz reports liveness of the DB and cache backends.
func (s *server) healthz(ctx echo.Context) error {
	checkCtx, cancel := context.WithTimeout(ctx.Request().Context(), 2*time.Second)
	defer cancel()

	status := echo.Map{}
	healthy := true
	for name, ping := range map[string]Pinger{"database": s.deps.PingDB, "cache": s.deps.PingCache} {
		if ping == nil {
			continue
		}
		if err := ping(checkCtx); err != nil {
			status[name] = err.Error()
			healthy = false
		} else {
			status[name] = "ok"
		}
	}

	if !healthy {
		return ctx.JSON(http.StatusServiceUnavailable, Response{Message: "unhealthy", Data: status})
	}
	return respond(ctx, http.StatusOK, status)
}
