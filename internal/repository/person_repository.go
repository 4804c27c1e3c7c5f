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

type PostgresPersonRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewPostgresPersonRepository(db *pgxpool.Pool, logger *zap.Logger) *PostgresPersonRepository {
	return &PostgresPersonRepository{
		db:     db,
		logger: logger,
	}
}

const personColumns = "id, user_id, name, email, phone, is_active, created_at, updated_at"

func (r *PostgresPersonRepository) Create(ctx context.Context, person *models.ExternalPerson) error {
	query := squirrel.Insert("external_persons").
		Columns("id", "user_id", "name", "email", "phone", "is_active", "created_at", "updated_at").
		Values(person.ID, person.UserID, person.Name, person.Email, person.Phone, person.IsActive, person.CreatedAt, person.UpdatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *PostgresPersonRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.ExternalPerson, error) {
	query := squirrel.Select(personColumns).
		From("external_persons").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var p models.ExternalPerson
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&p.ID, &p.UserID, &p.Name, &p.Email, &p.Phone, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &p, nil
}
