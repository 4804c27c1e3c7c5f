package handlers

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"finledger/internal/dto"
	"finledger/internal/models"
	"finledger/internal/money"
	"finledger/internal/service"
	"finledger/pkg/middleware"
)

type TransactionHandler struct {
	transactions *service.TransactionService
	validate     *validator.Validate
	logger       *zap.Logger
}

func NewTransactionHandler(transactions *service.TransactionService, logger *zap.Logger) *TransactionHandler {
	return &TransactionHandler{
		transactions: transactions,
		validate:     validator.New(),
		logger:       logger,
	}
}

func (h *TransactionHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateTransactionRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := h.validate.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	date, err := parseDate(req.Date)
	if err != nil {
		return badRequest(c, "invalid date, expected RFC3339 or YYYY-MM-DD")
	}

	accountID, err := uuid.Parse(req.AccountID)
	if err != nil {
		return badRequest(c, "invalid account_id")
	}

	input := service.CreateTransactionInput{
		UserID:       middleware.UserID(c),
		AccountID:    accountID,
		Date:         date,
		AmountMinor:  money.Amount(req.AmountMinor),
		Type:         models.TransactionType(req.Type),
		Counterparty: req.Counterparty,
		Description:  req.Description,
	}
	if req.CategoryID != "" {
		if input.CategoryID, err = uuid.Parse(req.CategoryID); err != nil {
			return badRequest(c, "invalid category_id")
		}
	}
	if req.CounterpartyAccountID != "" {
		if input.CounterpartyAccountID, err = uuid.Parse(req.CounterpartyAccountID); err != nil {
			return badRequest(c, "invalid counterparty_account_id")
		}
	}
	for _, s := range req.Splits {
		categoryID, err := uuid.Parse(s.CategoryID)
		if err != nil {
			return badRequest(c, "invalid split category_id")
		}
		input.Splits = append(input.Splits, service.SplitInput{
			CategoryID:  categoryID,
			AmountMinor: money.Amount(s.AmountMinor),
			Note:        s.Note,
		})
	}

	tx, err := h.transactions.Create(c.Context(), input)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return c.Status(fiber.StatusCreated).JSON(dto.NewTransactionResponse(tx))
}

func (h *TransactionHandler) Split(c *fiber.Ctx) error {
	transactionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid transaction id")
	}

	var req dto.SplitTransactionRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := h.validate.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	splits := make([]service.SplitInput, 0, len(req.Splits))
	for _, s := range req.Splits {
		categoryID, err := uuid.Parse(s.CategoryID)
		if err != nil {
			return badRequest(c, "invalid split category_id")
		}
		splits = append(splits, service.SplitInput{
			CategoryID:  categoryID,
			AmountMinor: money.Amount(s.AmountMinor),
			Note:        s.Note,
		})
	}

	tx, err := h.transactions.Split(c.Context(), transactionID, splits)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return c.JSON(dto.NewTransactionResponse(tx))
}

func (h *TransactionHandler) Reconcile(c *fiber.Ctx) error {
	transactionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid transaction id")
	}

	tx, err := h.transactions.Reconcile(c.Context(), transactionID)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return c.JSON(dto.NewTransactionResponse(tx))
}

func (h *TransactionHandler) Get(c *fiber.Ctx) error {
	transactionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid transaction id")
	}

	tx, err := h.transactions.Get(c.Context(), transactionID)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return c.JSON(dto.NewTransactionResponse(tx))
}

func (h *TransactionHandler) ListByAccount(c *fiber.Ctx) error {
	accountID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid account id")
	}

	txs, err := h.transactions.ListByAccount(c.Context(), accountID)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return c.JSON(dto.NewTransactionResponses(txs))
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
