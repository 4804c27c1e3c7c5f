package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"finledger/internal/dto"
	"finledger/internal/money"
	"finledger/internal/service"
	"finledger/pkg/middleware"
)

type DebtHandler struct {
	debts    *service.DebtService
	validate *validator.Validate
	logger   *zap.Logger
}

func NewDebtHandler(debts *service.DebtService, logger *zap.Logger) *DebtHandler {
	return &DebtHandler{
		debts:    debts,
		validate: validator.New(),
		logger:   logger,
	}
}

func (h *DebtHandler) CreateShares(c *fiber.Ctx) error {
	transactionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid transaction id")
	}

	var req dto.CreateDebtSharesRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := h.validate.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	inputs := make([]service.DebtShareInput, 0, len(req.Shares))
	for _, s := range req.Shares {
		debtorID, err := uuid.Parse(s.PersonID)
		if err != nil {
			return badRequest(c, "invalid person_id")
		}
		inputs = append(inputs, service.DebtShareInput{
			DebtorID:    debtorID,
			AmountMinor: money.Amount(s.AmountMinor),
		})
	}

	shares, err := h.debts.CreateShares(c.Context(), transactionID, inputs)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return c.Status(fiber.StatusCreated).JSON(dto.NewDebtShareResponses(shares))
}

func (h *DebtHandler) RecordPayment(c *fiber.Ctx) error {
	debtShareID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid debt share id")
	}

	var req dto.RecordPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := h.validate.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	opts := service.PaymentOptions{Note: req.Note}
	if req.TransactionID != "" {
		transactionID, err := uuid.Parse(req.TransactionID)
		if err != nil {
			return badRequest(c, "invalid transaction_id")
		}
		opts.TransactionID = transactionID
	}

	payment, err := h.debts.RecordPayment(c.Context(), debtShareID, money.Amount(req.AmountMinor), opts)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return c.Status(fiber.StatusCreated).JSON(dto.NewDebtPaymentResponse(payment))
}

func (h *DebtHandler) ListPayments(c *fiber.Ctx) error {
	debtShareID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid debt share id")
	}

	payments, err := h.debts.ListPayments(c.Context(), debtShareID)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return c.JSON(dto.NewDebtPaymentResponses(payments))
}

func (h *DebtHandler) OwedToMe(c *fiber.Ctx) error {
	summaries, err := h.debts.DebtsOwedToMe(c.Context(), middleware.UserID(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return c.JSON(dto.NewDebtSummaryResponses(summaries))
}

func (h *DebtHandler) IOwe(c *fiber.Ctx) error {
	summaries, err := h.debts.DebtsIOwe(c.Context(), middleware.UserID(c))
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return c.JSON(dto.NewDebtSummaryResponses(summaries))
}
