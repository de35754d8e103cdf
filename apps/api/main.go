package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"

	"github.com/jmoiron/sqlx"

	echoapi "github.com/trezcool/kazi/apps/api/echo"
	"github.com/trezcool/kazi/core"
	"github.com/trezcool/kazi/core/checkin"
	"github.com/trezcool/kazi/core/claim"
	"github.com/trezcool/kazi/core/competitor"
	"github.com/trezcool/kazi/core/journal"
	"github.com/trezcool/kazi/core/lead"
	"github.com/trezcool/kazi/core/org"
	"github.com/trezcool/kazi/core/report"
	"github.com/trezcool/kazi/core/user"
	emailsvc "github.com/trezcool/kazi/services/email"
	geosvc "github.com/trezcool/kazi/services/geocoder"
	logsvc "github.com/trezcool/kazi/services/logger"
	"github.com/trezcool/kazi/storage/cache"
	"github.com/trezcool/kazi/storage/database"
	"github.com/trezcool/kazi/storage/database/sqlxrepos"
)

func main() {
	conf := core.Conf

	// =========================================================================
	// Set up Dependencies

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	dbLogger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	dbLogger.Enable(!conf.Debug)

	db, err := setUpDB(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = db.Close(); err != nil {
			dbLogger.Fatal("Failed to close", err)
		}
	}()

	redisCache := cache.NewRedisCache(conf)
	defer func() {
		if err = redisCache.Close(); err != nil {
			logger.Error("Failed to close redis client", err)
		}
	}()

	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService()
	} else {
		mailSvc = emailsvc.NewSendgridService(logger)
	}

	geocoder := geosvc.NewNominatimGeocoder(redisCache, logger)

	usrRepo := sqlxrepos.NewUserRepository(db)
	orgRepo := sqlxrepos.NewOrgRepository(db)
	checkinRepo := sqlxrepos.NewCheckInRepository(db)
	claimRepo := sqlxrepos.NewClaimRepository(db)
	competitorRepo := sqlxrepos.NewCompetitorRepository(db)
	journalRepo := sqlxrepos.NewJournalRepository(db)
	leadRepo := sqlxrepos.NewLeadRepository(db)

	usrSvc := user.NewService(usrRepo, mailSvc)
	orgSvc := org.NewService(orgRepo)
	checkinSvc := checkin.NewService(checkinRepo, geocoder, logger)
	claimSvc := claim.NewService(claimRepo)
	competitorSvc := competitor.NewService(competitorRepo)
	journalSvc := journal.NewService(journalRepo)
	leadSvc := lead.NewService(leadRepo, logger)
	reportSvc := report.NewService(
		orgRepo, usrRepo, checkinRepo, claimRepo, journalRepo, leadRepo,
		geocoder, redisCache, mailSvc, logger,
	)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		conf.Addr(),
		&echoapi.ServerDeps{
			Logger:        logger,
			UserSvc:       usrSvc,
			OrgSvc:        orgSvc,
			CheckInSvc:    checkinSvc,
			ClaimSvc:      claimSvc,
			CompetitorSvc: competitorSvc,
			JournalSvc:    journalSvc,
			LeadSvc:       leadSvc,
			ReportSvc:     reportSvc,
			PingDB:        db.PingContext,
			PingCache:     redisCache.Ping,
		},
	)

	go server.Start()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

func setUpDB(conf *core.Config) (*sqlx.DB, error) {
	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, err
	}

	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}

	if err = database.Migrate(db.DB); err != nil {
		return nil, err
	}
	return db, nil
}
