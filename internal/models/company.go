package models

import (
	"time"

	"github.com/google/uuid"
)

// Company is the billable organizational unit (a brand). A company may be a
// child brand of exactly one parent; children never have children of their
// own, so the hierarchy is capped at two levels by construction.
type Company struct {
	ID                   uuid.UUID   `json:"id" db:"id"`
	Name                 string      `json:"name" db:"name"`
	ParentBrandID        *uuid.UUID  `json:"parent_brand_id,omitempty" db:"parent_brand_id"`
	IsTrial              bool        `json:"is_trial" db:"is_trial"`
	TrialEndsAt          *time.Time  `json:"trial_ends_at,omitempty" db:"trial_ends_at"`
	MaxUsers             *int        `json:"max_users" db:"max_users"` // nil = unlimited
	AssignedProgramIDs   []uuid.UUID `json:"assigned_program_ids" db:"assigned_program_ids"`
	StripeCustomerID     *string     `json:"stripe_customer_id,omitempty" db:"stripe_customer_id"`
	StripeSubscriptionID *string     `json:"stripe_subscription_id,omitempty" db:"stripe_subscription_id"`
	LogoObjectKey        *string     `json:"logo_object_key,omitempty" db:"logo_object_key"`
	IsDeleted            bool        `json:"is_deleted" db:"is_deleted"`
	CreatedAt            time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time   `json:"updated_at" db:"updated_at"`
}
