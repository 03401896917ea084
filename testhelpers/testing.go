package testhelpers

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"trainhub/internal/models"
)

// TestDB holds the database connection for integration tests
type TestDB struct {
	Pool    *pgxpool.Pool
	Cleanup func() error
}

// SetupTestDB creates a pooled connection for testing
func SetupTestDB(t *testing.T, connString string) *TestDB {
	t.Helper()

	if connString == "" {
		connString = os.Getenv("TEST_DATABASE_URL")
		if connString == "" {
			connString = "host=localhost port=5432 user=postgres password=postgres dbname=trainhub_test sslmode=disable"
		}
	}

	pool, err := pgxpool.New(context.Background(), connString)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	return &TestDB{
		Pool: pool,
		Cleanup: func() error {
			pool.Close()
			return nil
		},
	}
}

// SetupTestCompany creates a brand for testing. parentBrandID may be nil.
func SetupTestCompany(t *testing.T, db *TestDB, name string, parentBrandID *uuid.UUID) uuid.UUID {
	t.Helper()

	companyID := uuid.New()
	query := `
		INSERT INTO companies (id, name, parent_brand_id, is_trial, is_deleted, created_at, updated_at)
		VALUES ($1, $2, $3, false, false, NOW(), NOW())
	`
	_, err := db.Pool.Exec(context.Background(), query, companyID, name, parentBrandID)
	if err != nil {
		t.Fatalf("Failed to create test company: %v", err)
	}
	return companyID
}

// SetupTestLocation creates a location under a company
func SetupTestLocation(t *testing.T, db *TestDB, companyID uuid.UUID, name string) uuid.UUID {
	t.Helper()

	locationID := uuid.New()
	query := `
		INSERT INTO locations (id, company_id, name, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
	`
	_, err := db.Pool.Exec(context.Background(), query, locationID, companyID, name)
	if err != nil {
		t.Fatalf("Failed to create test location: %v", err)
	}
	return locationID
}

// SetupTestProfile creates a profile within a company with the given role
func SetupTestProfile(t *testing.T, db *TestDB, companyID uuid.UUID, email string, role models.Role, locationIDs []uuid.UUID) *models.Profile {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("test-password"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("Failed to hash test password: %v", err)
	}

	profile := &models.Profile{
		ID:                  uuid.New(),
		CompanyID:           companyID,
		IdentityID:          uuid.NewString(),
		Email:               email,
		Name:                "Test Profile",
		PasswordHash:        string(hash),
		Role:                role,
		AssignedLocationIDs: locationIDs,
		IsActive:            true,
		CreatedAt:           time.Now(),
		UpdatedAt:           time.Now(),
	}

	query := `
		INSERT INTO profiles (id, company_id, identity_id, email, name, password_hash, role,
			assigned_location_ids, is_active, is_deleted, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, true, false, NOW(), NOW())
	`
	_, err = db.Pool.Exec(context.Background(), query,
		profile.ID, profile.CompanyID, profile.IdentityID, profile.Email, profile.Name,
		profile.PasswordHash, profile.Role, profile.AssignedLocationIDs)
	if err != nil {
		t.Fatalf("Failed to create test profile: %v", err)
	}
	return profile
}

// SetupTestProgram creates an active training program
func SetupTestProgram(t *testing.T, db *TestDB, name string, priceCents int64) uuid.UUID {
	t.Helper()

	programID := uuid.New()
	query := `
		INSERT INTO programs (id, name, price_cents, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, true, NOW(), NOW())
	`
	_, err := db.Pool.Exec(context.Background(), query, programID, name, priceCents)
	if err != nil {
		t.Fatalf("Failed to create test program: %v", err)
	}
	return programID
}
