package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"trainhub/internal/models"
)

type ProfileRepository interface {
	Create(ctx context.Context, profile *models.Profile) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error)
	// GetByEmail searches across all companies; email is globally unique
	// because the identity provider enforces one identity per email.
	GetByEmail(ctx context.Context, email string) (*models.Profile, error)
	// GetByIdentityID resolves the profile bound to a provider identity.
	GetByIdentityID(ctx context.Context, identityID string) (*models.Profile, error)
	Update(ctx context.Context, profile *models.Profile) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
	// Delete removes the row entirely; idempotent, used by compensation.
	Delete(ctx context.Context, id uuid.UUID) error
	ListByCompany(ctx context.Context, companyID uuid.UUID, limit, offset int) ([]*models.Profile, error)
	CountActiveByCompany(ctx context.Context, companyID uuid.UUID) (int, error)
}

type profileRepo struct {
	db DB
}

func NewProfileRepo(db DB) ProfileRepository {
	return &profileRepo{db: db}
}

const profileColumns = `id, company_id, identity_id, email, name, password_hash, role,
		assigned_location_ids, is_active, is_deleted, created_at, updated_at`

func scanProfile(row pgx.Row) (*models.Profile, error) {
	profile := &models.Profile{}
	err := row.Scan(&profile.ID, &profile.CompanyID, &profile.IdentityID, &profile.Email,
		&profile.Name, &profile.PasswordHash, &profile.Role, &profile.AssignedLocationIDs,
		&profile.IsActive, &profile.IsDeleted, &profile.CreatedAt, &profile.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return profile, nil
}

func (r *profileRepo) Create(ctx context.Context, profile *models.Profile) error {
	query := `
		INSERT INTO profiles (id, company_id, identity_id, email, name, password_hash, role,
			assigned_location_ids, is_active, is_deleted, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, false, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, profile.ID, profile.CompanyID, profile.IdentityID,
		profile.Email, profile.Name, profile.PasswordHash, profile.Role,
		profile.AssignedLocationIDs, profile.IsActive)
	return err
}

func (r *profileRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1 AND is_deleted = false`
	return scanProfile(r.db.QueryRow(ctx, query, id))
}

func (r *profileRepo) GetByEmail(ctx context.Context, email string) (*models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE email = $1 AND is_deleted = false`
	return scanProfile(r.db.QueryRow(ctx, query, email))
}

func (r *profileRepo) GetByIdentityID(ctx context.Context, identityID string) (*models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE identity_id = $1 AND is_deleted = false`
	return scanProfile(r.db.QueryRow(ctx, query, identityID))
}

func (r *profileRepo) Update(ctx context.Context, profile *models.Profile) error {
	query := `
		UPDATE profiles
		SET name = $1, role = $2, assigned_location_ids = $3, is_active = $4, updated_at = NOW()
		WHERE id = $5
	`
	_, err := r.db.Exec(ctx, query, profile.Name, profile.Role,
		profile.AssignedLocationIDs, profile.IsActive, profile.ID)
	return err
}

func (r *profileRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE profiles SET is_deleted = true, is_active = false, updated_at = NOW() WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}

func (r *profileRepo) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM profiles WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}

func (r *profileRepo) ListByCompany(ctx context.Context, companyID uuid.UUID, limit, offset int) ([]*models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles
		WHERE company_id = $1 AND is_deleted = false
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.db.Query(ctx, query, companyID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []*models.Profile
	for rows.Next() {
		profile := &models.Profile{}
		if err := rows.Scan(&profile.ID, &profile.CompanyID, &profile.IdentityID, &profile.Email,
			&profile.Name, &profile.PasswordHash, &profile.Role, &profile.AssignedLocationIDs,
			&profile.IsActive, &profile.IsDeleted, &profile.CreatedAt, &profile.UpdatedAt); err != nil {
			return nil, err
		}
		profiles = append(profiles, profile)
	}
	return profiles, rows.Err()
}

func (r *profileRepo) CountActiveByCompany(ctx context.Context, companyID uuid.UUID) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM profiles WHERE company_id = $1 AND is_active = true AND is_deleted = false`
	err := r.db.QueryRow(ctx, query, companyID).Scan(&count)
	return count, err
}
