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

type PostgresCategoryRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewPostgresCategoryRepository(db *pgxpool.Pool, logger *zap.Logger) *PostgresCategoryRepository {
	return &PostgresCategoryRepository{
		db:     db,
		logger: logger,
	}
}

const categoryColumns = "id, user_id, name, type, budgeting_method, is_active, created_at, updated_at"

func (r *PostgresCategoryRepository) Create(ctx context.Context, category *models.Category) error {
	query := squirrel.Insert("categories").
		Columns("id", "user_id", "name", "type", "budgeting_method", "is_active", "created_at", "updated_at").
		Values(category.ID, category.UserID, category.Name, category.Type, category.BudgetingMethod, category.IsActive, category.CreatedAt, category.UpdatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *PostgresCategoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	query := squirrel.Select(categoryColumns).
		From("categories").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var c models.Category
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&c.ID, &c.UserID, &c.Name, &c.Type, &c.BudgetingMethod, &c.IsActive, &c.CreatedAt, &c.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &c, nil
}
