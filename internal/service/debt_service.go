package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"finledger/internal/bizerror"
	"finledger/internal/models"
	"finledger/internal/money"
	"finledger/internal/repository"
)

type DebtService struct {
	transactions repository.TransactionRepository
	accounts     repository.AccountRepository
	persons      repository.PersonRepository
	shares       repository.DebtShareRepository
	payments     repository.DebtPaymentRepository
	logger       *zap.Logger
}

func NewDebtService(
	transactions repository.TransactionRepository,
	accounts repository.AccountRepository,
	persons repository.PersonRepository,
	shares repository.DebtShareRepository,
	payments repository.DebtPaymentRepository,
	logger *zap.Logger,
) *DebtService {
	return &DebtService{
		transactions: transactions,
		accounts:     accounts,
		persons:      persons,
		shares:       shares,
		payments:     payments,
		logger:       logger,
	}
}

type DebtShareInput struct {
	DebtorID    uuid.UUID
	AmountMinor money.Amount
}

// DebtSummary aggregates a user's non-paid shares against one
// counterparty. TotalOwedMinor is net of payments already made.
type DebtSummary struct {
	PersonID       uuid.UUID
	PersonName     string
	PersonActive   bool
	Currency       string
	TotalOwedMinor money.Amount
	DebtCount      int
	OldestDebtDate time.Time
}

// CreateShares splits an expense transaction's amount into debt shares
// owed by external people. The share amounts must cover the
// transaction exactly, and only one share set may ever exist per
// transaction.
func (s *DebtService) CreateShares(ctx context.Context, transactionID uuid.UUID, inputs []DebtShareInput) ([]*models.DebtShare, error) {
	tx, err := s.transactions.GetByID(ctx, transactionID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, bizerror.New(bizerror.CodeTransactionNotFound, "transaction %s not found", transactionID)
	}
	if err != nil {
		return nil, fmt.Errorf("look up transaction: %w", err)
	}
	if tx.Type != models.TransactionExpense {
		return nil, bizerror.New(bizerror.CodeTransactionNotExpense, "debt shares require an expense transaction, got %s", tx.Type)
	}

	var sum money.Amount
	for _, in := range inputs {
		if err := in.AmountMinor.Validate(); err != nil {
			return nil, bizerror.New(bizerror.CodeInvalidAmount, "invalid share amount: %v", err)
		}
		if _, err := s.persons.GetByID(ctx, in.DebtorID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, bizerror.New(bizerror.CodeDebtorNotFound, "debtor %s not found", in.DebtorID)
			}
			return nil, fmt.Errorf("look up debtor: %w", err)
		}
		sum += in.AmountMinor
	}
	if sum != tx.AmountMinor {
		return nil, bizerror.New(bizerror.CodeSharesAmountMismatch, "shares sum to %d, transaction amount is %d", sum, tx.AmountMinor)
	}

	existing, err := s.shares.GetByTransactionID(ctx, transactionID)
	if err != nil {
		return nil, fmt.Errorf("check existing shares: %w", err)
	}
	if len(existing) > 0 {
		return nil, bizerror.New(bizerror.CodeDuplicateDebtShares, "debt shares already exist for transaction %s", transactionID)
	}

	currency := ""
	if account, err := s.accounts.GetByID(ctx, tx.AccountID); err == nil {
		currency = account.Currency
	}

	now := time.Now().UTC()
	created := make([]*models.DebtShare, 0, len(inputs))
	for _, in := range inputs {
		created = append(created, &models.DebtShare{
			ID:            uuid.New(),
			CreditorID:    tx.UserID,
			DebtorID:      in.DebtorID,
			TransactionID: transactionID,
			AmountMinor:   in.AmountMinor,
			Currency:      currency,
			Status:        models.DebtPending,
			CreatedAt:     now,
			UpdatedAt:     now,
		})
	}
	if err := s.shares.CreateBatch(ctx, created); err != nil {
		return nil, fmt.Errorf("persist debt shares: %w", err)
	}

	s.logger.Info("debt shares created",
		zap.String("transaction_id", transactionID.String()),
		zap.Int("count", len(created)),
	)

	return created, nil
}

type PaymentOptions struct {
	TransactionID uuid.UUID
	Note          string
}

// RecordPayment appends a payment against a debt share and advances
// its status. The status write doubles as a reservation: it is
// version-checked, so two concurrent payments cannot both pass the
// remaining-amount check and overpay the share.
func (s *DebtService) RecordPayment(ctx context.Context, debtShareID uuid.UUID, amount money.Amount, opts PaymentOptions) (*models.DebtPayment, error) {
	if err := amount.Validate(); err != nil {
		return nil, bizerror.New(bizerror.CodeInvalidAmount, "invalid payment amount: %v", err)
	}

	for attempt := 0; attempt < maxCASRetries; attempt++ {
		share, err := s.getShare(ctx, debtShareID)
		if err != nil {
			return nil, err
		}
		if share.Status == models.DebtPaid {
			return nil, bizerror.New(bizerror.CodeDebtAlreadyPaid, "debt share %s is already paid", debtShareID)
		}

		totalPaid, err := s.totalPaid(ctx, debtShareID)
		if err != nil {
			return nil, err
		}
		remaining := share.AmountMinor - totalPaid
		if amount > remaining {
			return nil, bizerror.New(bizerror.CodePaymentExceedsDebt, "payment %d exceeds remaining debt %d", amount, remaining)
		}

		newStatus := models.DebtStatusFor(totalPaid+amount, share.AmountMinor)
		if !share.Status.CanTransition(newStatus) {
			return nil, fmt.Errorf("debt share %s: illegal status transition %s -> %s", debtShareID, share.Status, newStatus)
		}

		err = s.shares.UpdateStatus(ctx, debtShareID, newStatus, share.Version)
		if errors.Is(err, repository.ErrVersionConflict) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("update share status: %w", err)
		}

		now := time.Now().UTC()
		payment := &models.DebtPayment{
			ID:            uuid.New(),
			DebtShareID:   debtShareID,
			PayerID:       share.DebtorID,
			PayeeID:       share.CreditorID,
			AmountMinor:   amount,
			PaymentDate:   now,
			TransactionID: opts.TransactionID,
			Note:          opts.Note,
			CreatedAt:     now,
		}
		if err := s.payments.Create(ctx, payment); err != nil {
			return nil, fmt.Errorf("persist payment: %w", err)
		}

		s.logger.Info("debt payment recorded",
			zap.String("debt_share_id", debtShareID.String()),
			zap.Int64("amount_minor", int64(amount)),
			zap.String("status", string(newStatus)),
		)

		return payment, nil
	}
	return nil, fmt.Errorf("debt share %s: payment contention not resolved after %d attempts", debtShareID, maxCASRetries)
}

// ListPayments returns the payment history of a share, oldest first.
func (s *DebtService) ListPayments(ctx context.Context, debtShareID uuid.UUID) ([]*models.DebtPayment, error) {
	if _, err := s.getShare(ctx, debtShareID); err != nil {
		return nil, err
	}
	return s.payments.GetByDebtShareID(ctx, debtShareID)
}

// DebtsOwedToMe summarizes non-paid shares where the user is creditor,
// grouped by debtor, largest outstanding first.
func (s *DebtService) DebtsOwedToMe(ctx context.Context, userID uuid.UUID) ([]DebtSummary, error) {
	shares, err := s.shares.GetByCreditorID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("fetch shares: %w", err)
	}
	return s.summarize(ctx, shares, func(share *models.DebtShare) uuid.UUID {
		return share.DebtorID
	})
}

// DebtsIOwe summarizes non-paid shares where the user is debtor,
// grouped by creditor, largest outstanding first.
func (s *DebtService) DebtsIOwe(ctx context.Context, userID uuid.UUID) ([]DebtSummary, error) {
	shares, err := s.shares.GetByDebtorID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("fetch shares: %w", err)
	}
	return s.summarize(ctx, shares, func(share *models.DebtShare) uuid.UUID {
		return share.CreditorID
	})
}

type summaryKey struct {
	personID uuid.UUID
	currency string
}

func (s *DebtService) summarize(ctx context.Context, shares []*models.DebtShare, counterparty func(*models.DebtShare) uuid.UUID) ([]DebtSummary, error) {
	// Shares in different currencies never fold into one row; amounts
	// are only summed within a single currency.
	groups := map[summaryKey]*DebtSummary{}
	for _, share := range shares {
		if share.Status == models.DebtPaid {
			continue
		}
		totalPaid, err := s.totalPaid(ctx, share.ID)
		if err != nil {
			return nil, err
		}
		remaining := share.AmountMinor - totalPaid

		key := summaryKey{personID: counterparty(share), currency: share.Currency}
		group, ok := groups[key]
		if !ok {
			group = &DebtSummary{
				PersonID:       key.personID,
				Currency:       share.Currency,
				OldestDebtDate: share.CreatedAt,
			}
			groups[key] = group
		}
		group.TotalOwedMinor += remaining
		group.DebtCount++
		if share.CreatedAt.Before(group.OldestDebtDate) {
			group.OldestDebtDate = share.CreatedAt
		}
	}

	summaries := make([]DebtSummary, 0, len(groups))
	for _, group := range groups {
		person, err := s.persons.GetByID(ctx, group.PersonID)
		if errors.Is(err, repository.ErrNotFound) {
			// A deleted person record must not break the summary view.
			person = models.UnknownPerson(group.PersonID)
		} else if err != nil {
			return nil, fmt.Errorf("look up person: %w", err)
		}
		group.PersonName = person.Name
		group.PersonActive = person.IsActive
		summaries = append(summaries, *group)
	}

	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].TotalOwedMinor != summaries[j].TotalOwedMinor {
			return summaries[i].TotalOwedMinor > summaries[j].TotalOwedMinor
		}
		if summaries[i].PersonID != summaries[j].PersonID {
			return summaries[i].PersonID.String() < summaries[j].PersonID.String()
		}
		return summaries[i].Currency < summaries[j].Currency
	})
	return summaries, nil
}

func (s *DebtService) getShare(ctx context.Context, debtShareID uuid.UUID) (*models.DebtShare, error) {
	share, err := s.shares.GetByID(ctx, debtShareID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, bizerror.New(bizerror.CodeDebtShareNotFound, "debt share %s not found", debtShareID)
	}
	if err != nil {
		return nil, fmt.Errorf("look up debt share: %w", err)
	}
	return share, nil
}

func (s *DebtService) totalPaid(ctx context.Context, debtShareID uuid.UUID) (money.Amount, error) {
	payments, err := s.payments.GetByDebtShareID(ctx, debtShareID)
	if err != nil {
		return 0, fmt.Errorf("fetch payments: %w", err)
	}
	var total money.Amount
	for _, p := range payments {
		total += p.AmountMinor
	}
	return total, nil
}
