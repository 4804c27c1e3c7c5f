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
)

type PostgresDebtShareRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewPostgresDebtShareRepository(db *pgxpool.Pool, logger *zap.Logger) *PostgresDebtShareRepository {
	return &PostgresDebtShareRepository{
		db:     db,
		logger: logger,
	}
}

const debtShareColumns = "id, creditor_id, debtor_id, transaction_id, amount_minor, currency, status, version, created_at, updated_at"

func (r *PostgresDebtShareRepository) CreateBatch(ctx context.Context, shares []*models.DebtShare) error {
	if len(shares) == 0 {
		return nil
	}

	builder := squirrel.Insert("debt_shares").
		Columns("id", "creditor_id", "debtor_id", "transaction_id", "amount_minor", "currency", "status", "version", "created_at", "updated_at").
		PlaceholderFormat(squirrel.Dollar)
	for _, s := range shares {
		builder = builder.Values(s.ID, s.CreditorID, s.DebtorID, s.TransactionID, s.AmountMinor, s.Currency, s.Status, s.Version, s.CreatedAt, s.UpdatedAt)
	}

	sql, args, err := builder.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *PostgresDebtShareRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.DebtShare, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id})
}

func (r *PostgresDebtShareRepository) GetByTransactionID(ctx context.Context, transactionID uuid.UUID) ([]*models.DebtShare, error) {
	return r.getMany(ctx, squirrel.Eq{"transaction_id": transactionID})
}

func (r *PostgresDebtShareRepository) GetByCreditorID(ctx context.Context, creditorID uuid.UUID) ([]*models.DebtShare, error) {
	return r.getMany(ctx, squirrel.Eq{"creditor_id": creditorID})
}

func (r *PostgresDebtShareRepository) GetByDebtorID(ctx context.Context, debtorID uuid.UUID) ([]*models.DebtShare, error) {
	return r.getMany(ctx, squirrel.Eq{"debtor_id": debtorID})
}

func (r *PostgresDebtShareRepository) GetByPair(ctx context.Context, debtorID, creditorID uuid.UUID) ([]*models.DebtShare, error) {
	return r.getMany(ctx, squirrel.Eq{"debtor_id": debtorID, "creditor_id": creditorID})
}

// UpdateStatus performs a version-checked status write so concurrent
// payments against the same share cannot overwrite each other.
func (r *PostgresDebtShareRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.DebtStatus, expectedVersion int64) error {
	query := squirrel.Update("debt_shares").
		Set("status", status).
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
		r.logger.Debug("debt share status CAS missed",
			zap.String("debt_share_id", id.String()),
			zap.Int64("expected_version", expectedVersion),
		)
		return ErrVersionConflict
	}

	return nil
}

func (r *PostgresDebtShareRepository) getOne(ctx context.Context, where squirrel.Eq) (*models.DebtShare, error) {
	query := squirrel.Select(debtShareColumns).
		From("debt_shares").
		Where(where).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var s models.DebtShare
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&s.ID, &s.CreditorID, &s.DebtorID, &s.TransactionID, &s.AmountMinor, &s.Currency, &s.Status, &s.Version, &s.CreatedAt, &s.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &s, nil
}

func (r *PostgresDebtShareRepository) getMany(ctx context.Context, where squirrel.Eq) ([]*models.DebtShare, error) {
	// (created_at, id) ascending is a correctness contract for FIFO
	// settlement, not a presentation choice.
	query := squirrel.Select(debtShareColumns).
		From("debt_shares").
		Where(where).
		OrderBy("created_at ASC", "id ASC").
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

	var shares []*models.DebtShare
	for rows.Next() {
		var s models.DebtShare
		if err := rows.Scan(
			&s.ID, &s.CreditorID, &s.DebtorID, &s.TransactionID, &s.AmountMinor, &s.Currency, &s.Status, &s.Version, &s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			return nil, err
		}
		shares = append(shares, &s)
	}

	return shares, rows.Err()
}
