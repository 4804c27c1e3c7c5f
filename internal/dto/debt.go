package dto

import (
	"time"

	"github.com/google/uuid"

	"finledger/internal/models"
	"finledger/internal/service"
)

type DebtShareRequest struct {
	PersonID    string `json:"person_id" validate:"required,uuid"`
	AmountMinor int64  `json:"amount_minor" validate:"required,gt=0"`
}

type CreateDebtSharesRequest struct {
	Shares []DebtShareRequest `json:"shares" validate:"required,min=1,dive"`
}

type RecordPaymentRequest struct {
	AmountMinor   int64  `json:"amount_minor" validate:"required,gt=0"`
	TransactionID string `json:"transaction_id,omitempty" validate:"omitempty,uuid"`
	Note          string `json:"note,omitempty" validate:"max=500"`
}

type DebtShareResponse struct {
	ID            string `json:"id"`
	CreditorID    string `json:"creditor_id"`
	DebtorID      string `json:"debtor_id"`
	TransactionID string `json:"transaction_id"`
	AmountMinor   int64  `json:"amount_minor"`
	Amount        string `json:"amount"`
	Currency      string `json:"currency"`
	Status        string `json:"status"`
	CreatedAt     string `json:"created_at"`
}

func NewDebtShareResponse(share *models.DebtShare) DebtShareResponse {
	return DebtShareResponse{
		ID:            share.ID.String(),
		CreditorID:    share.CreditorID.String(),
		DebtorID:      share.DebtorID.String(),
		TransactionID: share.TransactionID.String(),
		AmountMinor:   int64(share.AmountMinor),
		Amount:        share.AmountMinor.String(),
		Currency:      share.Currency,
		Status:        string(share.Status),
		CreatedAt:     share.CreatedAt.Format(time.RFC3339),
	}
}

func NewDebtShareResponses(shares []*models.DebtShare) []DebtShareResponse {
	out := make([]DebtShareResponse, 0, len(shares))
	for _, s := range shares {
		out = append(out, NewDebtShareResponse(s))
	}
	return out
}

type DebtPaymentResponse struct {
	ID            string `json:"id"`
	DebtShareID   string `json:"debt_share_id"`
	PayerID       string `json:"payer_id"`
	PayeeID       string `json:"payee_id"`
	AmountMinor   int64  `json:"amount_minor"`
	Amount        string `json:"amount"`
	PaymentDate   string `json:"payment_date"`
	TransactionID string `json:"transaction_id,omitempty"`
	Note          string `json:"note,omitempty"`
}

func NewDebtPaymentResponse(p *models.DebtPayment) DebtPaymentResponse {
	resp := DebtPaymentResponse{
		ID:          p.ID.String(),
		DebtShareID: p.DebtShareID.String(),
		PayerID:     p.PayerID.String(),
		PayeeID:     p.PayeeID.String(),
		AmountMinor: int64(p.AmountMinor),
		Amount:      p.AmountMinor.String(),
		PaymentDate: p.PaymentDate.Format(time.RFC3339),
		Note:        p.Note,
	}
	if p.TransactionID != uuid.Nil {
		resp.TransactionID = p.TransactionID.String()
	}
	return resp
}

func NewDebtPaymentResponses(payments []*models.DebtPayment) []DebtPaymentResponse {
	out := make([]DebtPaymentResponse, 0, len(payments))
	for _, p := range payments {
		out = append(out, NewDebtPaymentResponse(p))
	}
	return out
}

type DebtSummaryResponse struct {
	PersonID       string `json:"person_id"`
	PersonName     string `json:"person_name"`
	PersonActive   bool   `json:"person_active"`
	Currency       string `json:"currency,omitempty"`
	TotalOwedMinor int64  `json:"total_owed_minor"`
	TotalOwed      string `json:"total_owed"`
	DebtCount      int    `json:"debt_count"`
	OldestDebtDate string `json:"oldest_debt_date"`
}

func NewDebtSummaryResponses(summaries []service.DebtSummary) []DebtSummaryResponse {
	out := make([]DebtSummaryResponse, 0, len(summaries))
	for _, s := range summaries {
		out = append(out, DebtSummaryResponse{
			PersonID:       s.PersonID.String(),
			PersonName:     s.PersonName,
			PersonActive:   s.PersonActive,
			Currency:       s.Currency,
			TotalOwedMinor: int64(s.TotalOwedMinor),
			TotalOwed:      s.TotalOwedMinor.String(),
			DebtCount:      s.DebtCount,
			OldestDebtDate: s.OldestDebtDate.Format(time.RFC3339),
		})
	}
	return out
}
