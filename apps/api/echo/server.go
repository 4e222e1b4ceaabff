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

	"github.com/website360/clientpulse-suite-sub003/core"
	"github.com/website360/clientpulse-suite-sub003/core/billing"
	"github.com/website360/clientpulse-suite-sub003/core/client"
	"github.com/website360/clientpulse-suite-sub003/core/maintenance"
	"github.com/website360/clientpulse-suite-sub003/core/org"
	"github.com/website360/clientpulse-suite-sub003/core/project"
	"github.com/website360/clientpulse-suite-sub003/core/ticket"
	"github.com/website360/clientpulse-suite-sub003/core/user"
)

type (
	// Deps carries the services and helpers the handlers need.
	Deps struct {
		Logger         core.Logger
		UserSvc        *user.Service
		ClientSvc      *client.Service
		MaintenanceSvc *maintenance.Service
		BillingSvc     *billing.Service
		ProjectSvc     *project.Service
		TicketSvc      *ticket.Service
		OrgSvc         *org.Service
		Validate       *validator.Validate
		Translator     ut.Translator
	}

	Options struct {
		Addr           string
		DisableReqLogs bool
		Deps           *Deps
	}

	Server interface {
		http.Handler
		Start() error
		Shutdown(context.Context) error
		ShutdownSignal() <-chan os.Signal
	}

	server struct {
		opts     *Options
		app      *echo.Echo
		shutdown chan os.Signal
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options) Server {
	s := &server{
		opts:     opts,
		app:      echo.New(),
		shutdown: make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *server) setup() {
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(core.Conf.Debug || core.Conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Deps.Logger, s.opts.Deps, s.signalShutdown)
	s.app.Debug = core.Conf.Debug

	s.app.GET("/", home)

	v1 := s.app.Group("/v1")
	jwt := middleware.JWTWithConfig(appJWTConfig)

	registerUserAPI(v1, jwt, s.opts.Deps)
	registerClientAPI(v1, jwt, s.opts.Deps)
	registerMaintenanceAPI(v1, jwt, s.opts.Deps)
	registerBillingAPI(v1, jwt, s.opts.Deps)
	registerProjectAPI(v1, jwt, s.opts.Deps)
	registerTicketAPI(v1, jwt, s.opts.Deps)
	registerOrgAPI(v1, jwt, s.opts.Deps)
}

func (s *server) Start() error {
	return s.app.Start(s.opts.Addr)
}

func (s *server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

// signalShutdown sends a SIGTERM down the shutdown channel when a fatal
// server error is caught.
func (s *server) signalShutdown() {
	s.shutdown <- syscall.SIGTERM
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to "+core.Conf.AppName+" API!")
}
