package repositories

import (
	"context"

	"github.com/google/uuid"

	"trainhub/internal/models"
)

type IncidentRepository interface {
	Create(ctx context.Context, incident *models.ProvisioningIncident) error
	ListUnresolved(ctx context.Context, limit int) ([]*models.ProvisioningIncident, error)
	Resolve(ctx context.Context, id uuid.UUID) error
}

type incidentRepo struct {
	db DB
}

func NewIncidentRepo(db DB) IncidentRepository {
	return &incidentRepo{db: db}
}

func (r *incidentRepo) Create(ctx context.Context, incident *models.ProvisioningIncident) error {
	query := `
		INSERT INTO provisioning_incidents (id, kind, charge_ref, company_id, email, amount_cents, detail, resolved, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, false, NOW())
	`
	_, err := r.db.Exec(ctx, query, incident.ID, incident.Kind, incident.ChargeRef,
		incident.CompanyID, incident.Email, incident.AmountCents, incident.Detail)
	return err
}

func (r *incidentRepo) ListUnresolved(ctx context.Context, limit int) ([]*models.ProvisioningIncident, error) {
	query := `
		SELECT id, kind, charge_ref, company_id, email, amount_cents, detail, resolved, created_at
		FROM provisioning_incidents
		WHERE resolved = false
		ORDER BY created_at ASC
		LIMIT $1
	`
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var incidents []*models.ProvisioningIncident
	for rows.Next() {
		incident := &models.ProvisioningIncident{}
		if err := rows.Scan(&incident.ID, &incident.Kind, &incident.ChargeRef, &incident.CompanyID,
			&incident.Email, &incident.AmountCents, &incident.Detail, &incident.Resolved,
			&incident.CreatedAt); err != nil {
			return nil, err
		}
		incidents = append(incidents, incident)
	}
	return incidents, rows.Err()
}

func (r *incidentRepo) Resolve(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE provisioning_incidents SET resolved = true WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}
