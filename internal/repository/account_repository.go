package repository

import (
	"context"
	"errors"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"finledger/internal/models"
	"finledger/internal/money"
)

type PostgresAccountRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewPostgresAccountRepository(db *pgxpool.Pool, logger *zap.Logger) *PostgresAccountRepository {
	return &PostgresAccountRepository{
		db:     db,
		logger: logger,
	}
}

const accountColumns = "id, user_id, name, type, balance_minor, currency, is_active, version, created_at, updated_at"

func (r *PostgresAccountRepository) Create(ctx context.Context, account *models.Account) error {
	query := squirrel.Insert("accounts").
		Columns("id", "user_id", "name", "type", "balance_minor", "currency", "is_active", "version", "created_at", "updated_at").
		Values(account.ID, account.UserID, account.Name, account.Type, account.BalanceMinor, account.Currency, account.IsActive, account.Version, account.CreatedAt, account.UpdatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *PostgresAccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	query := squirrel.Select(accountColumns).
		From("accounts").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var a models.Account
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&a.ID, &a.UserID, &a.Name, &a.Type, &a.BalanceMinor, &a.Currency, &a.IsActive, &a.Version, &a.CreatedAt, &a.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &a, nil
}

func (r *PostgresAccountRepository) GetByUserID(ctx context.Context, userID uuid.UUID) ([]*models.Account, error) {
	query := squirrel.Select(accountColumns).
		From("accounts").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("created_at ASC").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []*models.Account
	for rows.Next() {
		var a models.Account
		if err := rows.Scan(
			&a.ID, &a.UserID, &a.Name, &a.Type, &a.BalanceMinor, &a.Currency, &a.IsActive, &a.Version, &a.CreatedAt, &a.UpdatedAt,
		); err != nil {
			return nil, err
		}
		accounts = append(accounts, &a)
	}

	return accounts, rows.Err()
}

// UpdateBalance performs the compare-and-swap balance write. The WHERE
// clause on version turns a lost-update race into ErrVersionConflict.
func (r *PostgresAccountRepository) UpdateBalance(ctx context.Context, id uuid.UUID, balance money.Amount, expectedVersion int64) error {
	query := squirrel.Update("accounts").
		Set("balance_minor", balance).
		Set("version", expectedVersion+1).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id, "version": expectedVersion}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		r.logger.Debug("account balance CAS missed",
			zap.String("account_id", id.String()),
			zap.Int64("expected_version", expectedVersion),
		)
		return ErrVersionConflict
	}

	return nil
}
