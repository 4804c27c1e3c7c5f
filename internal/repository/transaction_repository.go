package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"finledger/internal/models"
)

type PostgresTransactionRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewPostgresTransactionRepository(db *pgxpool.Pool, logger *zap.Logger) *PostgresTransactionRepository {
	return &PostgresTransactionRepository{
		db:     db,
		logger: logger,
	}
}

const transactionColumns = "id, user_id, account_id, date, amount_minor, type, status, counterparty, description, recurring_transaction_id, created_at, updated_at"

// Create inserts the transaction together with its splits in one
// database transaction, so a transaction row can never be observed
// without its split set.
func (r *PostgresTransactionRepository) Create(ctx context.Context, tx *models.Transaction) error {
	dbTx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer dbTx.Rollback(ctx)

	query := squirrel.Insert("transactions").
		Columns("id", "user_id", "account_id", "date", "amount_minor", "type", "status", "counterparty", "description", "recurring_transaction_id", "created_at", "updated_at").
		Values(tx.ID, tx.UserID, tx.AccountID, tx.Date, tx.AmountMinor, tx.Type, tx.Status, tx.Counterparty, tx.Description, nullableUUID(tx.RecurringTransactionID), tx.CreatedAt, tx.UpdatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}
	if _, err := dbTx.Exec(ctx, sql, args...); err != nil {
		return err
	}

	if err := insertSplits(ctx, dbTx, tx.ID, tx.Splits); err != nil {
		return err
	}

	return dbTx.Commit(ctx)
}

func (r *PostgresTransactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	query := squirrel.Select(transactionColumns).
		From("transactions").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	tx, err := scanTransaction(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, err
	}

	splits, err := r.loadSplits(ctx, id)
	if err != nil {
		return nil, err
	}
	tx.Splits = splits

	return tx, nil
}

func (r *PostgresTransactionRepository) GetByAccountID(ctx context.Context, accountID uuid.UUID) ([]*models.Transaction, error) {
	query := squirrel.Select(transactionColumns).
		From("transactions").
		Where(squirrel.Eq{"account_id": accountID}).
		OrderBy("date DESC", "created_at DESC").
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

	var transactions []*models.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, tx := range transactions {
		splits, err := r.loadSplits(ctx, tx.ID)
		if err != nil {
			return nil, err
		}
		tx.Splits = splits
	}

	return transactions, nil
}

func (r *PostgresTransactionRepository) ReplaceSplits(ctx context.Context, id uuid.UUID, splits []models.Split, updatedAt time.Time) error {
	dbTx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer dbTx.Rollback(ctx)

	del := squirrel.Delete("transaction_splits").
		Where(squirrel.Eq{"transaction_id": id}).
		PlaceholderFormat(squirrel.Dollar)
	sql, args, err := del.ToSql()
	if err != nil {
		return err
	}
	if _, err := dbTx.Exec(ctx, sql, args...); err != nil {
		return err
	}

	if err := insertSplits(ctx, dbTx, id, splits); err != nil {
		return err
	}

	upd := squirrel.Update("transactions").
		Set("updated_at", updatedAt).
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)
	sql, args, err = upd.ToSql()
	if err != nil {
		return err
	}
	tag, err := dbTx.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return dbTx.Commit(ctx)
}

func (r *PostgresTransactionRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.TransactionStatus, updatedAt time.Time) error {
	query := squirrel.Update("transactions").
		Set("status", status).
		Set("updated_at", updatedAt).
		Where(squirrel.Eq{"id": id}).
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
		return ErrNotFound
	}

	return nil
}

func (r *PostgresTransactionRepository) loadSplits(ctx context.Context, transactionID uuid.UUID) ([]models.Split, error) {
	query := squirrel.Select("category_id", "amount_minor", "note").
		From("transaction_splits").
		Where(squirrel.Eq{"transaction_id": transactionID}).
		OrderBy("position ASC").
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

	var splits []models.Split
	for rows.Next() {
		var s models.Split
		if err := rows.Scan(&s.CategoryID, &s.AmountMinor, &s.Note); err != nil {
			return nil, err
		}
		splits = append(splits, s)
	}

	return splits, rows.Err()
}

func insertSplits(ctx context.Context, dbTx pgx.Tx, transactionID uuid.UUID, splits []models.Split) error {
	if len(splits) == 0 {
		return nil
	}

	builder := squirrel.Insert("transaction_splits").
		Columns("transaction_id", "position", "category_id", "amount_minor", "note").
		PlaceholderFormat(squirrel.Dollar)
	for i, s := range splits {
		builder = builder.Values(transactionID, i, s.CategoryID, s.AmountMinor, s.Note)
	}

	sql, args, err := builder.ToSql()
	if err != nil {
		return err
	}
	_, err = dbTx.Exec(ctx, sql, args...)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (*models.Transaction, error) {
	var tx models.Transaction
	var recurring uuid.NullUUID
	err := row.Scan(
		&tx.ID, &tx.UserID, &tx.AccountID, &tx.Date, &tx.AmountMinor, &tx.Type, &tx.Status,
		&tx.Counterparty, &tx.Description, &recurring, &tx.CreatedAt, &tx.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if recurring.Valid {
		tx.RecurringTransactionID = recurring.UUID
	}
	return &tx, nil
}

func nullableUUID(id uuid.UUID) uuid.NullUUID {
	return uuid.NullUUID{UUID: id, Valid: id != uuid.Nil}
}
