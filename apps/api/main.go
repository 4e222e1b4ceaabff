package main

import (
	"context"
	"database/sql"
	"fmt"
	stdlog "log"
	"os"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"

	echoapi "github.com/website360/clientpulse-suite-sub003/apps/api/echo"
	"github.com/website360/clientpulse-suite-sub003/core"
	"github.com/website360/clientpulse-suite-sub003/core/billing"
	"github.com/website360/clientpulse-suite-sub003/core/client"
	"github.com/website360/clientpulse-suite-sub003/core/maintenance"
	"github.com/website360/clientpulse-suite-sub003/core/org"
	"github.com/website360/clientpulse-suite-sub003/core/project"
	"github.com/website360/clientpulse-suite-sub003/core/ticket"
	"github.com/website360/clientpulse-suite-sub003/core/user"
	emailsvc "github.com/website360/clientpulse-suite-sub003/services/email"
	logsvc "github.com/website360/clientpulse-suite-sub003/services/logger"
	notifsvc "github.com/website360/clientpulse-suite-sub003/services/notify"
	paysvc "github.com/website360/clientpulse-suite-sub003/services/payment"
	"github.com/website360/clientpulse-suite-sub003/storage/database"
	sqlxrepos "github.com/website360/clientpulse-suite-sub003/storage/database/sqlx"
)

const shutdownTimeout = 20 * time.Second

func main() {
	// =========================================================================
	// Set up Dependencies

	logger := logsvc.NewRollbarLogger(
		stdlog.New(os.Stdout, "API : ", stdlog.LstdFlags|stdlog.Lmicroseconds|stdlog.Lshortfile),
		core.Conf,
	)
	logger.Enable(!core.Conf.Debug)

	db, err := setUpDB()
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = db.Close(); err != nil {
			logger.Error("failed to close DB", err)
		}
	}()
	sdb := sqlx.NewDb(db, core.Conf.Database.Engine)

	var mailSvc core.EmailService
	if core.Conf.Debug {
		mailSvc = emailsvc.NewConsoleService()
	} else {
		mailSvc = emailsvc.NewSendgridService(logger)
	}
	notifier := notifsvc.NewWebhookNotifier(core.Conf)
	gateway := paysvc.NewHTTPGateway(core.Conf)

	policy := maintenance.RollForward
	if core.Conf.ClampScheduleRollover {
		policy = maintenance.ClampToMonthEnd
	}

	usrSvc := user.NewService(sqlxrepos.NewUserRepository(sdb), mailSvc)
	clientSvc := client.NewService(sqlxrepos.NewClientRepository(sdb))
	maintSvc := maintenance.NewService(sqlxrepos.NewMaintenanceRepository(sdb), notifier, logger, policy)
	billingSvc := billing.NewService(sqlxrepos.NewBillingRepository(sdb), clientSvc, gateway, mailSvc, notifier, logger)
	projectSvc := project.NewService(sqlxrepos.NewProjectRepository(sdb))
	ticketSvc := ticket.NewService(sqlxrepos.NewTicketRepository(sdb))
	orgSvc := org.NewService(sqlxrepos.NewOrgRepository(sdb))

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", core.Conf.Build))
	defer logger.Info("Application stopped")

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)
	user.RegisterRolesValidation(validate)

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		&echoapi.Options{
			Addr: core.Conf.Server.Addr,
			Deps: &echoapi.Deps{
				Logger:         logger,
				UserSvc:        usrSvc,
				ClientSvc:      clientSvc,
				MaintenanceSvc: maintSvc,
				BillingSvc:     billingSvc,
				ProjectSvc:     projectSvc,
				TicketSvc:      ticketSvc,
				OrgSvc:         orgSvc,
				Validate:       validate,
				Translator:     translator,
			},
		},
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-serverErrors:
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)
		}
	}
}

func setUpDB() (*sql.DB, error) {
	if err := database.CreateIfNotExist(core.Conf); err != nil {
		return nil, err
	}

	db, err := database.Open(core.Conf)
	if err != nil {
		return nil, err
	}

	if err = database.Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}
