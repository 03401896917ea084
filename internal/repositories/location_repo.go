package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"trainhub/internal/models"
)

type LocationRepository interface {
	Create(ctx context.Context, location *models.Location) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Location, error)
	Update(ctx context.Context, location *models.Location) error
	ListByCompany(ctx context.Context, companyID uuid.UUID) ([]*models.Location, error)
	// Delete is idempotent; compensation relies on that.
	Delete(ctx context.Context, id uuid.UUID) error
}

type locationRepo struct {
	db DB
}

func NewLocationRepo(db DB) LocationRepository {
	return &locationRepo{db: db}
}

func (r *locationRepo) Create(ctx context.Context, location *models.Location) error {
	query := `
		INSERT INTO locations (id, company_id, name, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, location.ID, location.CompanyID, location.Name)
	return err
}

func (r *locationRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Location, error) {
	location := &models.Location{}
	query := `SELECT id, company_id, name, created_at, updated_at FROM locations WHERE id = $1`
	err := r.db.QueryRow(ctx, query, id).Scan(&location.ID, &location.CompanyID,
		&location.Name, &location.CreatedAt, &location.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return location, nil
}

func (r *locationRepo) Update(ctx context.Context, location *models.Location) error {
	query := `UPDATE locations SET name = $1, updated_at = NOW() WHERE id = $2`
	_, err := r.db.Exec(ctx, query, location.Name, location.ID)
	return err
}

func (r *locationRepo) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]*models.Location, error) {
	query := `SELECT id, company_id, name, created_at, updated_at FROM locations WHERE company_id = $1 ORDER BY created_at ASC`
	rows, err := r.db.Query(ctx, query, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var locations []*models.Location
	for rows.Next() {
		location := &models.Location{}
		if err := rows.Scan(&location.ID, &location.CompanyID, &location.Name,
			&location.CreatedAt, &location.UpdatedAt); err != nil {
			return nil, err
		}
		locations = append(locations, location)
	}
	return locations, rows.Err()
}

func (r *locationRepo) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM locations WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}
