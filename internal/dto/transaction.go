package dto

import (
	"time"

	"finledger/internal/models"
)

type SplitRequest struct {
	CategoryID  string `json:"category_id" validate:"required,uuid"`
	AmountMinor int64  `json:"amount_minor" validate:"required,gt=0"`
	Note        string `json:"note,omitempty"`
}

type CreateTransactionRequest struct {
	AccountID             string         `json:"account_id" validate:"required,uuid"`
	Date                  string         `json:"date" validate:"required"`
	AmountMinor           int64          `json:"amount_minor" validate:"required,gt=0"`
	Type                  string         `json:"type" validate:"required,oneof=income expense transfer"`
	CategoryID            string         `json:"category_id,omitempty" validate:"omitempty,uuid"`
	Splits                []SplitRequest `json:"splits,omitempty" validate:"omitempty,dive"`
	CounterpartyAccountID string         `json:"counterparty_account_id,omitempty" validate:"omitempty,uuid"`
	Counterparty          string         `json:"counterparty,omitempty" validate:"max=200"`
	Description           string         `json:"description,omitempty" validate:"max=500"`
}

type SplitTransactionRequest struct {
	Splits []SplitRequest `json:"splits" validate:"required,min=1,dive"`
}

type SplitResponse struct {
	CategoryID  string `json:"category_id"`
	AmountMinor int64  `json:"amount_minor"`
	Note        string `json:"note,omitempty"`
}

type TransactionResponse struct {
	ID           string          `json:"id"`
	AccountID    string          `json:"account_id"`
	Date         string          `json:"date"`
	AmountMinor  int64           `json:"amount_minor"`
	Amount       string          `json:"amount"`
	Type         string          `json:"type"`
	Status       string          `json:"status"`
	Splits       []SplitResponse `json:"splits"`
	Counterparty string          `json:"counterparty,omitempty"`
	Description  string          `json:"description,omitempty"`
	CreatedAt    string          `json:"created_at"`
	UpdatedAt    string          `json:"updated_at"`
}

func NewTransactionResponse(tx *models.Transaction) TransactionResponse {
	splits := make([]SplitResponse, 0, len(tx.Splits))
	for _, s := range tx.Splits {
		splits = append(splits, SplitResponse{
			CategoryID:  s.CategoryID.String(),
			AmountMinor: int64(s.AmountMinor),
			Note:        s.Note,
		})
	}
	return TransactionResponse{
		ID:           tx.ID.String(),
		AccountID:    tx.AccountID.String(),
		Date:         tx.Date.Format(time.RFC3339),
		AmountMinor:  int64(tx.AmountMinor),
		Amount:       tx.AmountMinor.String(),
		Type:         string(tx.Type),
		Status:       string(tx.Status),
		Splits:       splits,
		Counterparty: tx.Counterparty,
		Description:  tx.Description,
		CreatedAt:    tx.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    tx.UpdatedAt.Format(time.RFC3339),
	}
}

func NewTransactionResponses(txs []*models.Transaction) []TransactionResponse {
	out := make([]TransactionResponse, 0, len(txs))
	for _, tx := range txs {
		out = append(out, NewTransactionResponse(tx))
	}
	return out
}
