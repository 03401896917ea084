package models

import (
	"time"

	"github.com/google/uuid"
)

// Program is a purchasable training content reference. Companies carry a set
// of assigned program ids; provisioning validates the set against this table.
type Program struct {
	ID         uuid.UUID `json:"id" db:"id"`
	Name       string    `json:"name" db:"name"`
	PriceCents int64     `json:"price_cents" db:"price_cents"`
	IsActive   bool      `json:"is_active" db:"is_active"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}
