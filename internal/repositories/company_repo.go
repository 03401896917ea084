package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"trainhub/internal/models"
)

var ErrNotFound = errors.New("record not found")

type CompanyRepository interface {
	Create(ctx context.Context, company *models.Company) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Company, error)
	Update(ctx context.Context, company *models.Company) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
	// Delete removes the row entirely. It is the saga's compensation hook and
	// must stay idempotent: deleting a missing company is not an error.
	Delete(ctx context.Context, id uuid.UUID) error
	ListChildren(ctx context.Context, parentBrandID uuid.UUID) ([]*models.Company, error)
	List(ctx context.Context, limit, offset int) ([]*models.Company, error)
	ListTrialsEndingBefore(ctx context.Context, cutoff string) ([]*models.Company, error)
}

type companyRepo struct {
	db DB
}

func NewCompanyRepo(db DB) CompanyRepository {
	return &companyRepo{db: db}
}

const companyColumns = `id, name, parent_brand_id, is_trial, trial_ends_at, max_users,
		assigned_program_ids, stripe_customer_id, stripe_subscription_id, logo_object_key,
		is_deleted, created_at, updated_at`

func scanCompany(row pgx.Row) (*models.Company, error) {
	company := &models.Company{}
	err := row.Scan(&company.ID, &company.Name, &company.ParentBrandID, &company.IsTrial,
		&company.TrialEndsAt, &company.MaxUsers, &company.AssignedProgramIDs,
		&company.StripeCustomerID, &company.StripeSubscriptionID, &company.LogoObjectKey,
		&company.IsDeleted, &company.CreatedAt, &company.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return company, nil
}

func (r *companyRepo) Create(ctx context.Context, company *models.Company) error {
	query := `
		INSERT INTO companies (id, name, parent_brand_id, is_trial, trial_ends_at, max_users,
			assigned_program_ids, stripe_customer_id, stripe_subscription_id, logo_object_key,
			is_deleted, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, false, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, company.ID, company.Name, company.ParentBrandID,
		company.IsTrial, company.TrialEndsAt, company.MaxUsers, company.AssignedProgramIDs,
		company.StripeCustomerID, company.StripeSubscriptionID, company.LogoObjectKey)
	return err
}

func (r *companyRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	query := `SELECT ` + companyColumns + ` FROM companies WHERE id = $1`
	return scanCompany(r.db.QueryRow(ctx, query, id))
}

func (r *companyRepo) Update(ctx context.Context, company *models.Company) error {
	query := `
		UPDATE companies
		SET name = $1, is_trial = $2, trial_ends_at = $3, max_users = $4,
			assigned_program_ids = $5, stripe_customer_id = $6, stripe_subscription_id = $7,
			logo_object_key = $8, updated_at = NOW()
		WHERE id = $9
	`
	_, err := r.db.Exec(ctx, query, company.Name, company.IsTrial, company.TrialEndsAt,
		company.MaxUsers, company.AssignedProgramIDs, company.StripeCustomerID,
		company.StripeSubscriptionID, company.LogoObjectKey, company.ID)
	return err
}

func (r *companyRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE companies SET is_deleted = true, updated_at = NOW() WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}

func (r *companyRepo) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM companies WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}

func (r *companyRepo) ListChildren(ctx context.Context, parentBrandID uuid.UUID) ([]*models.Company, error) {
	query := `SELECT ` + companyColumns + ` FROM companies WHERE parent_brand_id = $1 AND is_deleted = false ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query, parentBrandID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectCompanies(rows)
}

func (r *companyRepo) List(ctx context.Context, limit, offset int) ([]*models.Company, error) {
	query := `SELECT ` + companyColumns + ` FROM companies WHERE is_deleted = false ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectCompanies(rows)
}

// ListTrialsEndingBefore is used by the trial-expiry sweep. cutoff is an
// RFC 3339 timestamp; passing it as text keeps the comparison server-side.
func (r *companyRepo) ListTrialsEndingBefore(ctx context.Context, cutoff string) ([]*models.Company, error) {
	query := `SELECT ` + companyColumns + ` FROM companies
		WHERE is_trial = true AND is_deleted = false AND trial_ends_at IS NOT NULL AND trial_ends_at < $1::timestamptz
		ORDER BY trial_ends_at ASC`
	rows, err := r.db.Query(ctx, query, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectCompanies(rows)
}

func collectCompanies(rows pgx.Rows) ([]*models.Company, error) {
	var companies []*models.Company
	for rows.Next() {
		company := &models.Company{}
		if err := rows.Scan(&company.ID, &company.Name, &company.ParentBrandID, &company.IsTrial,
			&company.TrialEndsAt, &company.MaxUsers, &company.AssignedProgramIDs,
			&company.StripeCustomerID, &company.StripeSubscriptionID, &company.LogoObjectKey,
			&company.IsDeleted, &company.CreatedAt, &company.UpdatedAt); err != nil {
			return nil, err
		}
		companies = append(companies, company)
	}
	return companies, rows.Err()
}
