package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"finledger/internal/api/handlers"
	"finledger/pkg/middleware"
)

func SetupRouter(
	txHandler *handlers.TransactionHandler,
	debtHandler *handlers.DebtHandler,
	settlementHandler *handlers.SettlementHandler,
	appLogger *zap.Logger,
) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,X-User-ID",
	}))
	app.Use(logger.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	v1 := app.Group("/api/v1", middleware.RequireUser(appLogger))

	transactions := v1.Group("/transactions")
	transactions.Post("/", txHandler.Create)
	transactions.Get("/:id", txHandler.Get)
	transactions.Put("/:id/splits", txHandler.Split)
	transactions.Post("/:id/reconcile", txHandler.Reconcile)
	transactions.Post("/:id/debt-shares", debtHandler.CreateShares)

	v1.Get("/accounts/:id/transactions", txHandler.ListByAccount)

	debtShares := v1.Group("/debt-shares")
	debtShares.Post("/:id/payments", debtHandler.RecordPayment)
	debtShares.Get("/:id/payments", debtHandler.ListPayments)

	debts := v1.Group("/debts")
	debts.Get("/owed-to-me", debtHandler.OwedToMe)
	debts.Get("/i-owe", debtHandler.IOwe)

	settlements := v1.Group("/settlements")
	settlements.Get("/", settlementHandler.List)
	settlements.Post("/settle-up", settlementHandler.SettleUp)

	return app
}
