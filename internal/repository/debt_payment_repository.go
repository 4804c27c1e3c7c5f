package repository

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"finledger/internal/models"
)

// PostgresDebtPaymentRepository is append-only; the table carries no
// update path and the type deliberately exposes none.
type PostgresDebtPaymentRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewPostgresDebtPaymentRepository(db *pgxpool.Pool, logger *zap.Logger) *PostgresDebtPaymentRepository {
	return &PostgresDebtPaymentRepository{
		db:     db,
		logger: logger,
	}
}

const debtPaymentColumns = "id, debt_share_id, payer_id, payee_id, amount_minor, payment_date, transaction_id, note, created_at"

func (r *PostgresDebtPaymentRepository) Create(ctx context.Context, payment *models.DebtPayment) error {
	query := squirrel.Insert("debt_payments").
		Columns("id", "debt_share_id", "payer_id", "payee_id", "amount_minor", "payment_date", "transaction_id", "note", "created_at").
		Values(payment.ID, payment.DebtShareID, payment.PayerID, payment.PayeeID, payment.AmountMinor, payment.PaymentDate, nullableUUID(payment.TransactionID), payment.Note, payment.CreatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *PostgresDebtPaymentRepository) GetByDebtShareID(ctx context.Context, debtShareID uuid.UUID) ([]*models.DebtPayment, error) {
	query := squirrel.Select(debtPaymentColumns).
		From("debt_payments").
		Where(squirrel.Eq{"debt_share_id": debtShareID}).
		OrderBy("payment_date ASC", "created_at ASC").
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

	var payments []*models.DebtPayment
	for rows.Next() {
		var p models.DebtPayment
		var txID uuid.NullUUID
		if err := rows.Scan(
			&p.ID, &p.DebtShareID, &p.PayerID, &p.PayeeID, &p.AmountMinor, &p.PaymentDate, &txID, &p.Note, &p.CreatedAt,
		); err != nil {
			return nil, err
		}
		if txID.Valid {
			p.TransactionID = txID.UUID
		}
		payments = append(payments, &p)
	}

	return payments, rows.Err()
}
