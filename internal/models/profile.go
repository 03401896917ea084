package models

import (
	"time"

	"github.com/google/uuid"
)

// Profile is a platform user. Its email mirrors the identity-provider
// identity it was created alongside; AssignedLocationIDs must all belong to
// the owning company.
type Profile struct {
	ID                  uuid.UUID   `json:"id" db:"id"`
	CompanyID           uuid.UUID   `json:"company_id" db:"company_id"`
	IdentityID          string      `json:"identity_id" db:"identity_id"`
	Email               string      `json:"email" db:"email"`
	Name                string      `json:"name" db:"name"`
	PasswordHash        string      `json:"-" db:"password_hash"` // Never serialize in JSON
	Role                Role        `json:"role" db:"role"`
	AssignedLocationIDs []uuid.UUID `json:"assigned_location_ids" db:"assigned_location_ids"`
	IsActive            bool        `json:"is_active" db:"is_active"`
	IsDeleted           bool        `json:"is_deleted" db:"is_deleted"`
	CreatedAt           time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time   `json:"updated_at" db:"updated_at"`
}
