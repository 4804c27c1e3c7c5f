package handlers

import (
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"finledger/internal/dto"
	"finledger/internal/money"
	"finledger/internal/service"
	"finledger/pkg/middleware"
)

type SettlementHandler struct {
	settlements *service.SettlementService
	validate    *validator.Validate
	logger      *zap.Logger
}

func NewSettlementHandler(settlements *service.SettlementService, logger *zap.Logger) *SettlementHandler {
	return &SettlementHandler{
		settlements: settlements,
		validate:    validator.New(),
		logger:      logger,
	}
}

func (h *SettlementHandler) List(c *fiber.Ctx) error {
	query := service.ListQuery{
		Currency:  c.Query("currency"),
		SortBy:    service.SortKey(c.Query("sort")),
		Direction: service.SortDirection(c.Query("dir")),
	}

	if raw := c.Query("person_id"); raw != "" {
		personID, err := uuid.Parse(raw)
		if err != nil {
			return badRequest(c, "invalid person_id")
		}
		query.PersonID = personID
	}
	if raw := c.Query("min_outstanding_minor"); raw != "" {
		min, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || min < 0 {
			return badRequest(c, "invalid min_outstanding_minor")
		}
		query.MinOutstandingMinor = money.Amount(min)
	}
	if raw := c.Query("include_zero"); raw != "" {
		includeZero, err := strconv.ParseBool(raw)
		if err != nil {
			return badRequest(c, "invalid include_zero")
		}
		query.IncludeZero = includeZero
	}

	switch query.SortBy {
	case "", service.SortOutstanding, service.SortPerson, service.SortRecent:
	default:
		return badRequest(c, "invalid sort key")
	}
	switch query.Direction {
	case "", service.SortAsc, service.SortDesc:
	default:
		return badRequest(c, "invalid sort direction")
	}

	items, err := h.settlements.List(c.Context(), middleware.UserID(c), query)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return c.JSON(dto.NewSettlementItemResponses(items))
}

func (h *SettlementHandler) SettleUp(c *fiber.Ctx) error {
	var req dto.SettleUpRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := h.validate.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	personID, err := uuid.Parse(req.PersonID)
	if err != nil {
		return badRequest(c, "invalid person_id")
	}

	payments, err := h.settlements.SettleUp(
		c.Context(),
		middleware.UserID(c),
		personID,
		money.Amount(req.AmountMinor),
		req.Note,
	)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	return c.Status(fiber.StatusCreated).JSON(dto.NewDebtPaymentResponses(payments))
}
