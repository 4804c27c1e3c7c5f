// Command seed populates the database with a demo user, accounts,
// categories and external people so the API can be exercised locally.
package main

import (
	"context"
	"log"
	"time"

	"finledger/internal/models"
	"finledger/internal/money"
	"finledger/internal/repository"
	"finledger/pkg/config"
	"finledger/pkg/logger"
	"finledger/pkg/postgres"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Logger.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	appLogger := logger.Get()

	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	userRepo := repository.NewPostgresUserRepository(db, appLogger)
	accountRepo := repository.NewPostgresAccountRepository(db, appLogger)
	categoryRepo := repository.NewPostgresCategoryRepository(db, appLogger)
	personRepo := repository.NewPostgresPersonRepository(db, appLogger)

	now := time.Now().UTC()

	user := &models.User{
		ID:        uuid.New(),
		Username:  "demo",
		Email:     "demo@example.com",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := userRepo.Create(ctx, user); err != nil {
		appLogger.Fatal("Failed to seed user", zap.Error(err))
	}

	accounts := []*models.Account{
		{ID: uuid.New(), UserID: user.ID, Name: "Checking", Type: models.AccountChecking, BalanceMinor: money.Amount(100_000), Currency: "EUR", IsActive: true, CreatedAt: now, UpdatedAt: now},
		{ID: uuid.New(), UserID: user.ID, Name: "Savings", Type: models.AccountSavings, BalanceMinor: money.Amount(500_000), Currency: "EUR", IsActive: true, CreatedAt: now, UpdatedAt: now},
		{ID: uuid.New(), UserID: user.ID, Name: "Credit Card", Type: models.AccountCredit, BalanceMinor: 0, Currency: "EUR", IsActive: true, CreatedAt: now, UpdatedAt: now},
	}
	for _, a := range accounts {
		if err := accountRepo.Create(ctx, a); err != nil {
			appLogger.Fatal("Failed to seed account", zap.Error(err))
		}
	}

	categories := []*models.Category{
		{ID: uuid.New(), UserID: user.ID, Name: "Salary", Type: models.CategoryIncome, BudgetingMethod: "fixed", IsActive: true, CreatedAt: now, UpdatedAt: now},
		{ID: uuid.New(), UserID: user.ID, Name: "Groceries", Type: models.CategoryExpense, BudgetingMethod: "envelope", IsActive: true, CreatedAt: now, UpdatedAt: now},
		{ID: uuid.New(), UserID: user.ID, Name: "Dining Out", Type: models.CategoryExpense, BudgetingMethod: "envelope", IsActive: true, CreatedAt: now, UpdatedAt: now},
		{ID: uuid.New(), UserID: user.ID, Name: "Internal Transfer", Type: models.CategoryTransfer, BudgetingMethod: "none", IsActive: true, CreatedAt: now, UpdatedAt: now},
	}
	for _, c := range categories {
		if err := categoryRepo.Create(ctx, c); err != nil {
			appLogger.Fatal("Failed to seed category", zap.Error(err))
		}
	}

	persons := []*models.ExternalPerson{
		{ID: uuid.New(), UserID: user.ID, Name: "Alice Cooper", Email: "alice@example.com", IsActive: true, CreatedAt: now, UpdatedAt: now},
		{ID: uuid.New(), UserID: user.ID, Name: "Bob Martin", Phone: "+49 151 0000000", IsActive: true, CreatedAt: now, UpdatedAt: now},
	}
	for _, p := range persons {
		if err := personRepo.Create(ctx, p); err != nil {
			appLogger.Fatal("Failed to seed person", zap.Error(err))
		}
	}

	appLogger.Info("Seeding complete",
		zap.String("user_id", user.ID.String()),
		zap.Int("accounts", len(accounts)),
		zap.Int("categories", len(categories)),
		zap.Int("persons", len(persons)),
	)
}
