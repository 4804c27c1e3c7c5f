// Package memory provides in-memory implementations of the repository
// contracts. They define the reference persistence behavior the
// engines are tested against: copy-on-read, version-checked writes and
// stable (created_at, id) ordering for debt shares.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"finledger/internal/models"
	"finledger/internal/money"
	"finledger/internal/repository"
)

// Stores bundles one instance of every in-memory repository, sharing
// nothing; each store guards its own map.
type Stores struct {
	Users        *UserStore
	Accounts     *AccountStore
	Categories   *CategoryStore
	Persons      *PersonStore
	Transactions *TransactionStore
	DebtShares   *DebtShareStore
	DebtPayments *DebtPaymentStore
}

func NewStores() *Stores {
	return &Stores{
		Users:        &UserStore{items: map[uuid.UUID]models.User{}},
		Accounts:     &AccountStore{items: map[uuid.UUID]models.Account{}},
		Categories:   &CategoryStore{items: map[uuid.UUID]models.Category{}},
		Persons:      &PersonStore{items: map[uuid.UUID]models.ExternalPerson{}},
		Transactions: &TransactionStore{items: map[uuid.UUID]models.Transaction{}},
		DebtShares:   &DebtShareStore{items: map[uuid.UUID]models.DebtShare{}},
		DebtPayments: &DebtPaymentStore{},
	}
}

type UserStore struct {
	mu    sync.Mutex
	items map[uuid.UUID]models.User
}

func (s *UserStore) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[user.ID] = *user
	return nil
}

func (s *UserStore) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

type AccountStore struct {
	mu    sync.Mutex
	items map[uuid.UUID]models.Account
}

func (s *AccountStore) Create(_ context.Context, account *models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[account.ID] = *account
	return nil
}

func (s *AccountStore) GetByID(_ context.Context, id uuid.UUID) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &a, nil
}

func (s *AccountStore) GetByUserID(_ context.Context, userID uuid.UUID) ([]*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var accounts []*models.Account
	for _, a := range s.items {
		if a.UserID == userID {
			copied := a
			accounts = append(accounts, &copied)
		}
	}
	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i].CreatedAt.Before(accounts[j].CreatedAt)
	})
	return accounts, nil
}

func (s *AccountStore) UpdateBalance(_ context.Context, id uuid.UUID, balance money.Amount, expectedVersion int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.items[id]
	if !ok {
		return repository.ErrNotFound
	}
	if a.Version != expectedVersion {
		return repository.ErrVersionConflict
	}
	a.BalanceMinor = balance
	a.Version++
	a.UpdatedAt = time.Now().UTC()
	s.items[id] = a
	return nil
}

type CategoryStore struct {
	mu    sync.Mutex
	items map[uuid.UUID]models.Category
}

func (s *CategoryStore) Create(_ context.Context, category *models.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[category.ID] = *category
	return nil
}

func (s *CategoryStore) GetByID(_ context.Context, id uuid.UUID) (*models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

type PersonStore struct {
	mu    sync.Mutex
	items map[uuid.UUID]models.ExternalPerson
}

func (s *PersonStore) Create(_ context.Context, person *models.ExternalPerson) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[person.ID] = *person
	return nil
}

func (s *PersonStore) GetByID(_ context.Context, id uuid.UUID) (*models.ExternalPerson, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

type TransactionStore struct {
	mu    sync.Mutex
	items map[uuid.UUID]models.Transaction
}

func (s *TransactionStore) Create(_ context.Context, tx *models.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *tx
	copied.Splits = append([]models.Split(nil), tx.Splits...)
	s.items[tx.ID] = copied
	return nil
}

func (s *TransactionStore) GetByID(_ context.Context, id uuid.UUID) (*models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, ok := s.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := tx
	copied.Splits = append([]models.Split(nil), tx.Splits...)
	return &copied, nil
}

func (s *TransactionStore) GetByAccountID(_ context.Context, accountID uuid.UUID) ([]*models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var transactions []*models.Transaction
	for _, tx := range s.items {
		if tx.AccountID == accountID {
			copied := tx
			copied.Splits = append([]models.Split(nil), tx.Splits...)
			transactions = append(transactions, &copied)
		}
	}
	sort.Slice(transactions, func(i, j int) bool {
		if !transactions[i].Date.Equal(transactions[j].Date) {
			return transactions[i].Date.After(transactions[j].Date)
		}
		return transactions[i].CreatedAt.After(transactions[j].CreatedAt)
	})
	return transactions, nil
}

func (s *TransactionStore) ReplaceSplits(_ context.Context, id uuid.UUID, splits []models.Split, updatedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, ok := s.items[id]
	if !ok {
		return repository.ErrNotFound
	}
	tx.Splits = append([]models.Split(nil), splits...)
	tx.UpdatedAt = updatedAt
	s.items[id] = tx
	return nil
}

func (s *TransactionStore) UpdateStatus(_ context.Context, id uuid.UUID, status models.TransactionStatus, updatedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, ok := s.items[id]
	if !ok {
		return repository.ErrNotFound
	}
	tx.Status = status
	tx.UpdatedAt = updatedAt
	s.items[id] = tx
	return nil
}

type DebtShareStore struct {
	mu    sync.Mutex
	items map[uuid.UUID]models.DebtShare
}

func (s *DebtShareStore) CreateBatch(_ context.Context, shares []*models.DebtShare) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, share := range shares {
		s.items[share.ID] = *share
	}
	return nil
}

func (s *DebtShareStore) GetByID(_ context.Context, id uuid.UUID) (*models.DebtShare, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	share, ok := s.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &share, nil
}

func (s *DebtShareStore) GetByTransactionID(_ context.Context, transactionID uuid.UUID) ([]*models.DebtShare, error) {
	return s.filter(func(share models.DebtShare) bool {
		return share.TransactionID == transactionID
	})
}

func (s *DebtShareStore) GetByCreditorID(_ context.Context, creditorID uuid.UUID) ([]*models.DebtShare, error) {
	return s.filter(func(share models.DebtShare) bool {
		return share.CreditorID == creditorID
	})
}

func (s *DebtShareStore) GetByDebtorID(_ context.Context, debtorID uuid.UUID) ([]*models.DebtShare, error) {
	return s.filter(func(share models.DebtShare) bool {
		return share.DebtorID == debtorID
	})
}

func (s *DebtShareStore) GetByPair(_ context.Context, debtorID, creditorID uuid.UUID) ([]*models.DebtShare, error) {
	return s.filter(func(share models.DebtShare) bool {
		return share.DebtorID == debtorID && share.CreditorID == creditorID
	})
}

func (s *DebtShareStore) UpdateStatus(_ context.Context, id uuid.UUID, status models.DebtStatus, expectedVersion int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	share, ok := s.items[id]
	if !ok {
		return repository.ErrNotFound
	}
	if share.Version != expectedVersion {
		return repository.ErrVersionConflict
	}
	share.Status = status
	share.Version++
	share.UpdatedAt = time.Now().UTC()
	s.items[id] = share
	return nil
}

func (s *DebtShareStore) filter(keep func(models.DebtShare) bool) ([]*models.DebtShare, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var shares []*models.DebtShare
	for _, share := range s.items {
		if keep(share) {
			copied := share
			shares = append(shares, &copied)
		}
	}
	// Same ordering contract as the postgres implementation.
	sort.Slice(shares, func(i, j int) bool {
		if !shares[i].CreatedAt.Equal(shares[j].CreatedAt) {
			return shares[i].CreatedAt.Before(shares[j].CreatedAt)
		}
		return shares[i].ID.String() < shares[j].ID.String()
	})
	return shares, nil
}

// DebtPaymentStore is append-only; the slice is only ever grown.
type DebtPaymentStore struct {
	mu    sync.Mutex
	items []models.DebtPayment
}

func (s *DebtPaymentStore) Create(_ context.Context, payment *models.DebtPayment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, *payment)
	return nil
}

func (s *DebtPaymentStore) GetByDebtShareID(_ context.Context, debtShareID uuid.UUID) ([]*models.DebtPayment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var payments []*models.DebtPayment
	for _, p := range s.items {
		if p.DebtShareID == debtShareID {
			copied := p
			payments = append(payments, &copied)
		}
	}
	sort.Slice(payments, func(i, j int) bool {
		if !payments[i].PaymentDate.Equal(payments[j].PaymentDate) {
			return payments[i].PaymentDate.Before(payments[j].PaymentDate)
		}
		return payments[i].CreatedAt.Before(payments[j].CreatedAt)
	})
	return payments, nil
}
