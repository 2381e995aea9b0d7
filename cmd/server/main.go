package main

import (
	"database/sql"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	_ "github.com/lib/pq"

	"github.com/deskbank/deskbank/db"
	"github.com/deskbank/deskbank/internal/accountdelivery"
	"github.com/deskbank/deskbank/internal/accountrepo"
	"github.com/deskbank/deskbank/internal/accountservice"
	"github.com/deskbank/deskbank/internal/ledgerdelivery"
	"github.com/deskbank/deskbank/internal/ledgerrepo"
	"github.com/deskbank/deskbank/internal/ledgerservice"
	"github.com/deskbank/deskbank/internal/middleware"
	"github.com/deskbank/deskbank/internal/transactionrepo"
	"github.com/deskbank/deskbank/pkg/configpkg"
	"github.com/deskbank/deskbank/pkg/dbpkg"
)

func main() {
	config, err := configpkg.Load("./configs")
	if err != nil {
		log.Fatal().Err(err).Msg("cannot load config")
	}

	logger := middleware.CreateLogger(config)

	conn, err := dbpkg.Setup(config.DBDriver, config.DBSource)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot connect to db")
	}

	if err := dbpkg.Migrate(conn, db.MigrationsFS, "migration"); err != nil {
		logger.Fatal().Err(err).Msg("cannot migrate db")
	}

	server, err := createServer(conn, logger, config)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot create server")
	}

	if err := server.Run(config.ServerAddress); err != nil {
		logger.Fatal().Err(err).Msg("cannot start server")
	}
}

func createServer(conn *sql.DB, logger zerolog.Logger, config configpkg.Config) (*gin.Engine, error) {
	accountRepo := accountrepo.NewRepoPGS(conn)
	transactionRepo := transactionrepo.NewRepoPGS(conn)
	ledgerRepo := ledgerrepo.NewRepoPGS(conn)

	accountService := accountservice.New(accountRepo)
	ledgerService := ledgerservice.New(ledgerRepo, transactionRepo, config.OperationTimeout)

	accountHandler := accountdelivery.NewHandler(accountService)
	ledgerHandler := ledgerdelivery.NewHandler(ledgerService)

	gin.SetMode(gin.ReleaseMode)
	server := gin.New()

	server.Use(middleware.RequestLogger(logger))
	server.Use(gin.Recovery())

	server.POST("/accounts", accountHandler.Create)
	server.GET("/accounts", accountHandler.List)
	server.GET("/accounts/:id", accountHandler.Get)
	server.GET("/accounts/number/:number", accountHandler.GetByNumber)
	server.PATCH("/accounts/:id/status", accountHandler.SetStatus)

	server.POST("/accounts/:id/deposits", ledgerHandler.Deposit)
	server.POST("/accounts/:id/withdrawals", ledgerHandler.Withdraw)
	server.POST("/transfers", ledgerHandler.Transfer)
	server.GET("/accounts/:id/transactions", ledgerHandler.ListTransactions)
	server.GET("/transactions/:id", ledgerHandler.GetTransaction)

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := v.RegisterValidation("accounttype", accountdelivery.ValidAccountType); err != nil {
			return nil, errors.New("cannot register account type validator")
		}
	}

	return server, nil
}
