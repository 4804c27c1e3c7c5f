package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"finledger/internal/bizerror"
)

// statusForCode maps business error codes to HTTP statuses. Unknown
// codes fall back to 400: every business error is a caller problem.
func statusForCode(code string) int {
	switch code {
	case bizerror.CodeTransactionNotFound,
		bizerror.CodeAccountNotFound,
		bizerror.CodeUserNotFound,
		bizerror.CodeCategoryNotFound,
		bizerror.CodeDebtorNotFound,
		bizerror.CodeDebtShareNotFound:
		return fiber.StatusNotFound
	case bizerror.CodeDuplicateDebtShares,
		bizerror.CodeAlreadyReconciled,
		bizerror.CodeDebtAlreadyPaid:
		return fiber.StatusConflict
	case bizerror.CodeInsufficientFunds,
		bizerror.CodeSplitAmountMismatch,
		bizerror.CodeSharesAmountMismatch,
		bizerror.CodePaymentExceedsDebt,
		bizerror.CodeAmountExceedsOutstanding,
		bizerror.CodeNoOutstandingDebts:
		return fiber.StatusUnprocessableEntity
	default:
		return fiber.StatusBadRequest
	}
}

func respondError(c *fiber.Ctx, logger *zap.Logger, err error) error {
	if be, ok := bizerror.As(err); ok {
		return c.Status(statusForCode(be.Code)).JSON(fiber.Map{
			"error": be.Message,
			"code":  be.Code,
		})
	}

	logger.Error("request failed", zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "internal server error",
	})
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": message,
	})
}
