package repositories

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trainhub/internal/models"
	"trainhub/testhelpers"
)

// These tests run against a real database and are skipped unless
// TEST_DATABASE_URL is set.
func setupIntegrationDB(t *testing.T) *testhelpers.TestDB {
	t.Helper()
	if os.Getenv("TEST_DATABASE_URL") == "" {
		t.Skip("TEST_DATABASE_URL not set; skipping database integration tests")
	}
	db := testhelpers.SetupTestDB(t, "")
	t.Cleanup(func() { _ = db.Cleanup() })
	return db
}

func uniqueEmail(prefix string) string {
	return fmt.Sprintf("%s-%s@integration.example", prefix, uuid.NewString()[:8])
}

func TestCompanyRepoIntegration_Lineage(t *testing.T) {
	db := setupIntegrationDB(t)
	ctx := context.Background()
	repo := NewCompanyRepo(db.Pool)

	parentID := testhelpers.SetupTestCompany(t, db, "Integration Parent", nil)
	childID := testhelpers.SetupTestCompany(t, db, "Integration Child", &parentID)
	t.Cleanup(func() {
		_ = repo.Delete(ctx, childID)
		_ = repo.Delete(ctx, parentID)
	})

	child, err := repo.GetByID(ctx, childID)
	require.NoError(t, err)
	require.NotNil(t, child.ParentBrandID)
	assert.Equal(t, parentID, *child.ParentBrandID)

	children, err := repo.ListChildren(ctx, parentID)
	require.NoError(t, err)
	found := false
	for _, c := range children {
		if c.ID == childID {
			found = true
		}
	}
	assert.True(t, found, "child brand missing from ListChildren")
}

func TestCompanyRepoIntegration_DeleteIsIdempotent(t *testing.T) {
	db := setupIntegrationDB(t)
	ctx := context.Background()
	repo := NewCompanyRepo(db.Pool)

	companyID := testhelpers.SetupTestCompany(t, db, "Integration Doomed", nil)

	require.NoError(t, repo.Delete(ctx, companyID))
	// Compensation may retry a delete; the second pass must not error.
	assert.NoError(t, repo.Delete(ctx, companyID))

	_, err := repo.GetByID(ctx, companyID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocationRepoIntegration_ListByCompany(t *testing.T) {
	db := setupIntegrationDB(t)
	ctx := context.Background()
	companies := NewCompanyRepo(db.Pool)
	repo := NewLocationRepo(db.Pool)

	companyID := testhelpers.SetupTestCompany(t, db, "Integration Gym Group", nil)
	locA := testhelpers.SetupTestLocation(t, db, companyID, "Downtown")
	locB := testhelpers.SetupTestLocation(t, db, companyID, "Westside")
	t.Cleanup(func() {
		_ = repo.Delete(ctx, locA)
		_ = repo.Delete(ctx, locB)
		_ = companies.Delete(ctx, companyID)
	})

	locations, err := repo.ListByCompany(ctx, companyID)
	require.NoError(t, err)
	assert.Len(t, locations, 2)
}

func TestProfileRepoIntegration_Lookups(t *testing.T) {
	db := setupIntegrationDB(t)
	ctx := context.Background()
	companies := NewCompanyRepo(db.Pool)
	repo := NewProfileRepo(db.Pool)

	companyID := testhelpers.SetupTestCompany(t, db, "Integration Staffing", nil)
	locationID := testhelpers.SetupTestLocation(t, db, companyID, "Main")
	seeded := testhelpers.SetupTestProfile(t, db, companyID, uniqueEmail("manager"),
		models.RoleManager, []uuid.UUID{locationID})
	t.Cleanup(func() {
		_ = repo.Delete(ctx, seeded.ID)
		_ = NewLocationRepo(db.Pool).Delete(ctx, locationID)
		_ = companies.Delete(ctx, companyID)
	})

	byEmail, err := repo.GetByEmail(ctx, seeded.Email)
	require.NoError(t, err)
	assert.Equal(t, seeded.ID, byEmail.ID)
	assert.Equal(t, models.RoleManager, byEmail.Role)
	assert.Equal(t, []uuid.UUID{locationID}, byEmail.AssignedLocationIDs)

	byIdentity, err := repo.GetByIdentityID(ctx, seeded.IdentityID)
	require.NoError(t, err)
	assert.Equal(t, seeded.ID, byIdentity.ID)

	count, err := repo.CountActiveByCompany(ctx, companyID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestProgramRepoIntegration_ExistAll(t *testing.T) {
	db := setupIntegrationDB(t)
	ctx := context.Background()
	repo := NewProgramRepo(db.Pool)

	programID := testhelpers.SetupTestProgram(t, db, "Integration Strength Basics", 4900)
	t.Cleanup(func() {
		_, _ = db.Pool.Exec(ctx, `DELETE FROM programs WHERE id = $1`, programID)
	})

	ok, err := repo.ExistAll(ctx, []uuid.UUID{programID})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.ExistAll(ctx, []uuid.UUID{programID, uuid.New()})
	require.NoError(t, err)
	assert.False(t, ok)
}
