package models

import (
	"time"

	"github.com/google/uuid"
)

// ExternalPerson is a debt counterparty that is not a system user.
type ExternalPerson struct {
	ID        uuid.UUID `db:"id"`
	UserID    uuid.UUID `db:"user_id"`
	Name      string    `db:"name"`
	Email     string    `db:"email"`
	Phone     string    `db:"phone"`
	IsActive  bool      `db:"is_active"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// UnknownPerson stands in for a counterparty whose person record has
// gone missing; summaries render it instead of failing.
func UnknownPerson(id uuid.UUID) *ExternalPerson {
	return &ExternalPerson{ID: id, Name: "Unknown Person", IsActive: false}
}
