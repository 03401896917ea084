package models

import (
	"time"

	"github.com/google/uuid"
)

// Incident kinds recorded by the provisioning saga.
const (
	IncidentReconcilePayment   = "reconcile_payment"
	IncidentCompensationFailed = "compensation_failed"
)

// ProvisioningIncident records a condition that needs operator attention:
// a confirmed charge whose provisioning later failed (no automatic refund is
// attempted), or a compensation step that itself failed and may have left an
// orphan record behind.
type ProvisioningIncident struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	Kind        string     `json:"kind" db:"kind"`
	ChargeRef   *string    `json:"charge_ref,omitempty" db:"charge_ref"`
	CompanyID   *uuid.UUID `json:"company_id,omitempty" db:"company_id"`
	Email       string     `json:"email" db:"email"`
	AmountCents int64      `json:"amount_cents" db:"amount_cents"`
	Detail      string     `json:"detail" db:"detail"`
	Resolved    bool       `json:"resolved" db:"resolved"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
}
