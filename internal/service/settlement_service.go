package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"finledger/internal/bizerror"
	"finledger/internal/models"
	"finledger/internal/money"
	"finledger/internal/repository"
)

// SettlementService presents the currency-aware, filterable view over
// the user's debts and settles a lump payment across multiple shares
// oldest-first. It reads summaries through the debt engine but walks
// shares and payments against the repositories directly.
type SettlementService struct {
	debts    *DebtService
	shares   repository.DebtShareRepository
	payments repository.DebtPaymentRepository
	logger   *zap.Logger
}

func NewSettlementService(
	debts *DebtService,
	shares repository.DebtShareRepository,
	payments repository.DebtPaymentRepository,
	logger *zap.Logger,
) *SettlementService {
	return &SettlementService{
		debts:    debts,
		shares:   shares,
		payments: payments,
		logger:   logger,
	}
}

type SortKey string

const (
	SortOutstanding SortKey = "outstanding"
	SortPerson      SortKey = "person"
	SortRecent      SortKey = "recent"
)

type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// ListQuery filters and orders the settlement view. Zero values mean
// "no filter"; zero-outstanding items are excluded unless IncludeZero.
type ListQuery struct {
	PersonID            uuid.UUID
	Currency            string
	MinOutstandingMinor money.Amount
	IncludeZero         bool
	SortBy              SortKey
	Direction           SortDirection
}

// SettlementItem is one counterparty row in the settlement view.
// TotalOwedMinor is the gross debt, OutstandingMinor what is still
// unpaid; TotalOwedMinor == OutstandingMinor + TotalPaidMinor.
type SettlementItem struct {
	PersonID         uuid.UUID
	PersonName       string
	PersonActive     bool
	Currency         string
	DebtShareIDs     []uuid.UUID
	TotalOwedMinor   money.Amount
	TotalPaidMinor   money.Amount
	OutstandingMinor money.Amount
	DebtCount        int
	OldestDebtDate   time.Time
	LastActivityAt   time.Time
}

// List builds the aggregated settlement view for debts the user owes.
// Per-item enrichment is read-only and independent, so items are
// enriched concurrently.
func (s *SettlementService) List(ctx context.Context, userID uuid.UUID, query ListQuery) ([]SettlementItem, error) {
	summaries, err := s.debts.DebtsIOwe(ctx, userID)
	if err != nil {
		return nil, err
	}

	items := make([]SettlementItem, len(summaries))
	g, gctx := errgroup.WithContext(ctx)
	for i, summary := range summaries {
		i, summary := i, summary
		g.Go(func() error {
			item, err := s.enrich(gctx, userID, summary)
			if err != nil {
				return err
			}
			items[i] = item
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	filtered := items[:0]
	for _, item := range items {
		if query.PersonID != uuid.Nil && item.PersonID != query.PersonID {
			continue
		}
		if query.Currency != "" && item.Currency != query.Currency {
			continue
		}
		if item.OutstandingMinor < query.MinOutstandingMinor {
			continue
		}
		if item.OutstandingMinor == 0 && !query.IncludeZero {
			continue
		}
		filtered = append(filtered, item)
	}

	sortItems(filtered, query.SortBy, query.Direction)
	return filtered, nil
}

func (s *SettlementService) enrich(ctx context.Context, userID uuid.UUID, summary DebtSummary) (SettlementItem, error) {
	pairShares, err := s.shares.GetByPair(ctx, userID, summary.PersonID)
	if err != nil {
		return SettlementItem{}, fmt.Errorf("fetch pair shares: %w", err)
	}

	item := SettlementItem{
		PersonID:         summary.PersonID,
		PersonName:       summary.PersonName,
		PersonActive:     summary.PersonActive,
		Currency:         summary.Currency,
		OutstandingMinor: summary.TotalOwedMinor,
		DebtCount:        summary.DebtCount,
		OldestDebtDate:   summary.OldestDebtDate,
		LastActivityAt:   summary.OldestDebtDate,
	}

	for _, share := range pairShares {
		// Summaries are per currency; shares of another currency belong
		// to a sibling item.
		if share.Currency != summary.Currency {
			continue
		}
		item.DebtShareIDs = append(item.DebtShareIDs, share.ID)
		payments, err := s.payments.GetByDebtShareID(ctx, share.ID)
		if err != nil {
			return SettlementItem{}, fmt.Errorf("fetch payments: %w", err)
		}
		for _, p := range payments {
			item.TotalPaidMinor += p.AmountMinor
			if p.PaymentDate.After(item.LastActivityAt) {
				item.LastActivityAt = p.PaymentDate
			}
		}
	}
	item.TotalOwedMinor = item.OutstandingMinor + item.TotalPaidMinor

	return item, nil
}

func sortItems(items []SettlementItem, key SortKey, direction SortDirection) {
	if key == "" {
		key = SortOutstanding
	}
	if direction == "" {
		// Each key carries its natural default direction.
		switch key {
		case SortPerson:
			direction = SortAsc
		default:
			direction = SortDesc
		}
	}

	less := func(a, b SettlementItem) bool {
		switch key {
		case SortPerson:
			return a.PersonName < b.PersonName
		case SortRecent:
			return a.LastActivityAt.Before(b.LastActivityAt)
		default:
			return a.OutstandingMinor < b.OutstandingMinor
		}
	}

	sort.SliceStable(items, func(i, j int) bool {
		if direction == SortDesc {
			return less(items[j], items[i])
		}
		return less(items[i], items[j])
	})
}

// SettleUp applies one lump payment across the user's outstanding
// shares toward a person, oldest debt first. It returns the payment
// records created, one per touched share, in allocation order. The
// walk never overpays a share and the payments sum exactly to the
// requested amount.
func (s *SettlementService) SettleUp(ctx context.Context, userID, personID uuid.UUID, amount money.Amount, note string) ([]*models.DebtPayment, error) {
	if err := amount.Validate(); err != nil {
		return nil, bizerror.New(bizerror.CodeInvalidAmount, "invalid settlement amount: %v", err)
	}

	// The user is normally the debtor settling what they owe; when the
	// pair has no such shares the orientation flips and the user is
	// the creditor recording that the person settled up with them.
	// Payer and payee always come from the share itself, so both
	// orientations produce correct payment rows.
	open, outstanding, err := s.openShares(ctx, userID, personID)
	if err != nil {
		return nil, err
	}
	if outstanding == 0 {
		open, outstanding, err = s.openShares(ctx, personID, userID)
		if err != nil {
			return nil, err
		}
	}

	if outstanding == 0 {
		return nil, bizerror.New(bizerror.CodeNoOutstandingDebts, "no outstanding debts toward person %s", personID)
	}
	if amount > outstanding {
		return nil, bizerror.New(bizerror.CodeAmountExceedsOutstanding, "amount %d exceeds outstanding %d", amount, outstanding)
	}

	var created []*models.DebtPayment
	left := amount
	for _, os := range open {
		if left == 0 {
			break
		}
		pay := left
		if os.remaining < pay {
			pay = os.remaining
		}

		payment, err := s.payShare(ctx, os.shareID, pay, note)
		if err != nil {
			return nil, err
		}
		created = append(created, payment)
		left -= pay
	}

	s.logger.Info("settlement applied",
		zap.String("person_id", personID.String()),
		zap.Int64("amount_minor", int64(amount)),
		zap.Int("payments", len(created)),
	)

	return created, nil
}

type openShare struct {
	shareID   uuid.UUID
	remaining money.Amount
}

// openShares returns the pair's non-paid shares with their remaining
// balances, in FIFO order. The repositories return pair shares ordered
// by (created_at, id) ascending, which is exactly the FIFO contract.
func (s *SettlementService) openShares(ctx context.Context, debtorID, creditorID uuid.UUID) ([]openShare, money.Amount, error) {
	pairShares, err := s.shares.GetByPair(ctx, debtorID, creditorID)
	if err != nil {
		return nil, 0, fmt.Errorf("fetch pair shares: %w", err)
	}

	var open []openShare
	var outstanding money.Amount
	for _, share := range pairShares {
		if share.Status == models.DebtPaid {
			continue
		}
		paid, err := s.totalPaid(ctx, share.ID)
		if err != nil {
			return nil, 0, err
		}
		remaining := share.AmountMinor - paid
		if remaining <= 0 {
			continue
		}
		open = append(open, openShare{shareID: share.ID, remaining: remaining})
		outstanding += remaining
	}
	return open, outstanding, nil
}

// payShare records a payment against one share with the same
// reservation-by-version scheme the debt engine uses: the status CAS
// is attempted before the payment row is appended, so a concurrent
// writer cannot make this allocation overpay the share.
func (s *SettlementService) payShare(ctx context.Context, debtShareID uuid.UUID, amount money.Amount, note string) (*models.DebtPayment, error) {
	for attempt := 0; attempt < maxCASRetries; attempt++ {
		share, err := s.shares.GetByID(ctx, debtShareID)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, bizerror.New(bizerror.CodeDebtShareNotFound, "debt share %s not found", debtShareID)
		}
		if err != nil {
			return nil, fmt.Errorf("look up debt share: %w", err)
		}
		if share.Status == models.DebtPaid {
			return nil, bizerror.New(bizerror.CodeDebtAlreadyPaid, "debt share %s is already paid", debtShareID)
		}

		paid, err := s.totalPaid(ctx, debtShareID)
		if err != nil {
			return nil, err
		}
		remaining := share.AmountMinor - paid
		if amount > remaining {
			return nil, bizerror.New(bizerror.CodePaymentExceedsDebt, "payment %d exceeds remaining debt %d", amount, remaining)
		}

		newStatus := models.DebtStatusFor(paid+amount, share.AmountMinor)
		err = s.shares.UpdateStatus(ctx, debtShareID, newStatus, share.Version)
		if errors.Is(err, repository.ErrVersionConflict) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("update share status: %w", err)
		}

		now := time.Now().UTC()
		payment := &models.DebtPayment{
			ID:          uuid.New(),
			DebtShareID: debtShareID,
			PayerID:     share.DebtorID,
			PayeeID:     share.CreditorID,
			AmountMinor: amount,
			PaymentDate: now,
			Note:        note,
			CreatedAt:   now,
		}
		if err := s.payments.Create(ctx, payment); err != nil {
			return nil, fmt.Errorf("persist payment: %w", err)
		}
		return payment, nil
	}
	return nil, fmt.Errorf("debt share %s: settlement contention not resolved after %d attempts", debtShareID, maxCASRetries)
}

func (s *SettlementService) totalPaid(ctx context.Context, debtShareID uuid.UUID) (money.Amount, error) {
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
