package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/ratiba/apps/api/echo"
	"github.com/trezcool/ratiba/core"
	"github.com/trezcool/ratiba/core/schedule"
	"github.com/trezcool/ratiba/core/user"
	"github.com/trezcool/ratiba/services/email"
	"github.com/trezcool/ratiba/services/logger"
	"github.com/trezcool/ratiba/storage/database"
	"github.com/trezcool/ratiba/storage/database/inmem"
	"github.com/trezcool/ratiba/storage/database/sqlx"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		core.Conf,
	)
	logger.Enable(!core.Conf.Debug)

	var mailSvc core.EmailService
	if core.Conf.Debug {
		mailSvc = emailsvc.NewConsoleService()
	} else {
		mailSvc = emailsvc.NewSendgridService(logger)
	}

	// set up repositories; the in-memory store is meant for local hacking
	// without a postgres instance around.
	var usrRepo user.Repository
	var sessRepo schedule.Repository
	var roster schedule.Roster
	if core.Conf.Database.Engine == "inmem" {
		db := inmemdb.Open()
		usrRepo = inmemdb.NewUserRepository(db)
		repo := inmemdb.NewSessionRepository(db)
		sessRepo, roster = repo, repo
	} else {
		db, err := setUpDB()
		if err != nil {
			logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
		}
		defer func() {
			if err = db.Close(); err != nil {
				logger.Error("closing database", err)
			}
		}()
		usrRepo = sqlxrepos.NewUserRepository(db)
		repo := sqlxrepos.NewSessionRepository(db)
		sessRepo, roster = repo, repo
	}

	// set up services
	usrSvc := user.NewService(usrRepo, mailSvc)
	dispatcher := schedule.NewDispatcher(roster, usrSvc, mailSvc)
	schedSvc := schedule.NewService(sessRepo, dispatcher, logger)

	// =========================================================================
	// Start API Service

	logger.Info(fmt.Sprintf("Application initializing : version %q", core.Conf.Build))
	defer logger.Info("Application stopped")

	server := echoapi.NewServer(
		&echoapi.Options{
			Address:     core.Conf.Server.Address(),
			Logger:      logger,
			UserSvc:     usrSvc,
			ScheduleSvc: schedSvc,
		},
	)

	go server.Start()

	// =========================================================================
	// Shutdown

	select {
	case err := <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), core.Conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err := server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

func setUpDB() (*sqlx.DB, error) {
	if err := database.CreateIfNotExist(core.Conf); err != nil {
		return nil, err
	}

	db, err := database.Open(core.Conf)
	if err != nil {
		return nil, err
	}
	if err = database.Ping(db); err != nil {
		return nil, err
	}

	if err = database.Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}
