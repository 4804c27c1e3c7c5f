package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"finledger/internal/api"
	"finledger/internal/api/handlers"
	"finledger/internal/repository"
	"finledger/internal/service"
	"finledger/pkg/config"
	"finledger/pkg/logger"
	"finledger/pkg/postgres"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logger.Level); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	appLogger := logger.Get()
	appLogger.Info("Starting finledger service")

	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Repositories
	userRepo := repository.NewPostgresUserRepository(db, appLogger)
	accountRepo := repository.NewPostgresAccountRepository(db, appLogger)
	categoryRepo := repository.NewPostgresCategoryRepository(db, appLogger)
	personRepo := repository.NewPostgresPersonRepository(db, appLogger)
	txRepo := repository.NewPostgresTransactionRepository(db, appLogger)
	shareRepo := repository.NewPostgresDebtShareRepository(db, appLogger)
	paymentRepo := repository.NewPostgresDebtPaymentRepository(db, appLogger)

	// Services
	txService := service.NewTransactionService(userRepo, accountRepo, categoryRepo, txRepo, appLogger)
	debtService := service.NewDebtService(txRepo, accountRepo, personRepo, shareRepo, paymentRepo, appLogger)
	settlementService := service.NewSettlementService(debtService, shareRepo, paymentRepo, appLogger)

	// Handlers
	txHandler := handlers.NewTransactionHandler(txService, appLogger)
	debtHandler := handlers.NewDebtHandler(debtService, appLogger)
	settlementHandler := handlers.NewSettlementHandler(settlementService, appLogger)

	app := api.SetupRouter(txHandler, debtHandler, settlementHandler, appLogger)

	go func() {
		addr := ":" + cfg.Server.Port
		appLogger.Info("Server starting", zap.String("address", addr))
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")
	if err := app.Shutdown(); err != nil {
		appLogger.Error("Server shutdown error", zap.Error(err))
	}
}
