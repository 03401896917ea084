package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"trainhub/internal/models"
)

type ProgramRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Program, error)
	ListActive(ctx context.Context) ([]*models.Program, error)
	// ExistAll reports whether every id resolves to an active program.
	ExistAll(ctx context.Context, ids []uuid.UUID) (bool, error)
}

type programRepo struct {
	db DB
}

func NewProgramRepo(db DB) ProgramRepository {
	return &programRepo{db: db}
}

func (r *programRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Program, error) {
	program := &models.Program{}
	query := `SELECT id, name, price_cents, is_active, created_at FROM programs WHERE id = $1`
	err := r.db.QueryRow(ctx, query, id).Scan(&program.ID, &program.Name,
		&program.PriceCents, &program.IsActive, &program.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return program, nil
}

func (r *programRepo) ListActive(ctx context.Context) ([]*models.Program, error) {
	query := `SELECT id, name, price_cents, is_active, created_at FROM programs WHERE is_active = true ORDER BY name ASC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var programs []*models.Program
	for rows.Next() {
		program := &models.Program{}
		if err := rows.Scan(&program.ID, &program.Name, &program.PriceCents,
			&program.IsActive, &program.CreatedAt); err != nil {
			return nil, err
		}
		programs = append(programs, program)
	}
	return programs, rows.Err()
}

func (r *programRepo) ExistAll(ctx context.Context, ids []uuid.UUID) (bool, error) {
	if len(ids) == 0 {
		return true, nil
	}
	var count int
	query := `SELECT COUNT(*) FROM programs WHERE is_active = true AND id = ANY($1)`
	if err := r.db.QueryRow(ctx, query, ids).Scan(&count); err != nil {
		return false, err
	}
	return count == len(ids), nil
}
