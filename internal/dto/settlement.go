package dto

import (
	"time"

	"finledger/internal/service"
)

type SettleUpRequest struct {
	PersonID    string `json:"person_id" validate:"required,uuid"`
	AmountMinor int64  `json:"amount_minor" validate:"required,gt=0"`
	Note        string `json:"note,omitempty" validate:"max=500"`
}

type SettlementItemResponse struct {
	PersonID         string   `json:"person_id"`
	PersonName       string   `json:"person_name"`
	PersonActive     bool     `json:"person_active"`
	Currency         string   `json:"currency,omitempty"`
	DebtShareIDs     []string `json:"debt_share_ids"`
	TotalOwedMinor   int64    `json:"total_owed_minor"`
	TotalPaidMinor   int64    `json:"total_paid_minor"`
	OutstandingMinor int64    `json:"outstanding_minor"`
	Outstanding      string   `json:"outstanding"`
	DebtCount        int      `json:"debt_count"`
	OldestDebtDate   string   `json:"oldest_debt_date"`
	LastActivityAt   string   `json:"last_activity_at"`
}

func NewSettlementItemResponses(items []service.SettlementItem) []SettlementItemResponse {
	out := make([]SettlementItemResponse, 0, len(items))
	for _, item := range items {
		shareIDs := make([]string, 0, len(item.DebtShareIDs))
		for _, id := range item.DebtShareIDs {
			shareIDs = append(shareIDs, id.String())
		}
		out = append(out, SettlementItemResponse{
			PersonID:         item.PersonID.String(),
			PersonName:       item.PersonName,
			PersonActive:     item.PersonActive,
			Currency:         item.Currency,
			DebtShareIDs:     shareIDs,
			TotalOwedMinor:   int64(item.TotalOwedMinor),
			TotalPaidMinor:   int64(item.TotalPaidMinor),
			OutstandingMinor: int64(item.OutstandingMinor),
			Outstanding:      item.OutstandingMinor.String(),
			DebtCount:        item.DebtCount,
			OldestDebtDate:   item.OldestDebtDate.Format(time.RFC3339),
			LastActivityAt:   item.LastActivityAt.Format(time.RFC3339),
		})
	}
	return out
}
