package main

import (
	"log"
	"os"

	"github.com/trezcool/kazi/core"
	"github.com/trezcool/kazi/core/report"
	emailsvc "github.com/trezcool/kazi/services/email"
	geosvc "github.com/trezcool/kazi/services/geocoder"
	logsvc "github.com/trezcool/kazi/services/logger"
	"github.com/trezcool/kazi/storage/cache"
	"github.com/trezcool/kazi/storage/database"
	"github.com/trezcool/kazi/storage/database/sqlxrepos"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.Conf

	// set up DB
	db, err := database.Open(conf)
	errAndDie(err)
	defer db.Close()
	errAndDie(db.Ping())

	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService()
	} else {
		mailSvc = emailsvc.NewSendgridService(logsvc.NewStdLogger(logger))
	}

	redisCache := cache.NewRedisCache(conf)
	defer redisCache.Close()

	stdLogger := logsvc.NewStdLogger(logger)

	orgRepo := sqlxrepos.NewOrgRepository(db)
	usrRepo := sqlxrepos.NewUserRepository(db)

	// start CLI
	cli := commandLine{
		db:      db.DB,
		orgRepo: orgRepo,
		usrRepo: usrRepo,
		reportSvc: report.NewService(
			orgRepo,
			usrRepo,
			sqlxrepos.NewCheckInRepository(db),
			sqlxrepos.NewClaimRepository(db),
			sqlxrepos.NewJournalRepository(db),
			sqlxrepos.NewLeadRepository(db),
			geosvc.NewNominatimGeocoder(redisCache, stdLogger),
			redisCache,
			mailSvc,
			stdLogger,
		),
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
