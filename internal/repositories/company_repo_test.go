package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"trainhub/internal/models"
)

type CompanyRepoTestSuite struct {
	suite.Suite
	mock    pgxmock.PgxPoolIface
	repo    CompanyRepository
	context context.Context
}

func (suite *CompanyRepoTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	assert.NoError(suite.T(), err)
	suite.mock = mock
	suite.repo = NewCompanyRepo(mock)
	suite.context = context.Background()
}

func (suite *CompanyRepoTestSuite) TearDownTest() {
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
	suite.mock.Close()
}

func TestCompanyRepoTestSuite(t *testing.T) {
	suite.Run(t, new(CompanyRepoTestSuite))
}

func (suite *CompanyRepoTestSuite) TestCreate_Success() {
	company := &models.Company{
		ID:   uuid.New(),
		Name: "Acme Gym",
	}

	suite.mock.ExpectExec(`INSERT INTO companies`).
		WithArgs(company.ID, company.Name, company.ParentBrandID, company.IsTrial,
			company.TrialEndsAt, company.MaxUsers, company.AssignedProgramIDs,
			company.StripeCustomerID, company.StripeSubscriptionID, company.LogoObjectKey).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := suite.repo.Create(suite.context, company)
	assert.NoError(suite.T(), err)
}

func (suite *CompanyRepoTestSuite) TestGetByID_NotFound() {
	id := uuid.New()

	suite.mock.ExpectQuery(`SELECT .+ FROM companies WHERE id = \$1`).
		WithArgs(id).
		WillReturnError(errors.New("no rows in result set"))

	company, err := suite.repo.GetByID(suite.context, id)
	assert.Error(suite.T(), err)
	assert.Nil(suite.T(), company)
}

func (suite *CompanyRepoTestSuite) TestGetByID_Success() {
	id := uuid.New()
	now := time.Now()

	rows := pgxmock.NewRows([]string{
		"id", "name", "parent_brand_id", "is_trial", "trial_ends_at", "max_users",
		"assigned_program_ids", "stripe_customer_id", "stripe_subscription_id",
		"logo_object_key", "is_deleted", "created_at", "updated_at",
	}).AddRow(id, "Acme Gym", (*uuid.UUID)(nil), false, (*time.Time)(nil), (*int)(nil),
		[]uuid.UUID(nil), (*string)(nil), (*string)(nil), (*string)(nil), false, now, now)

	suite.mock.ExpectQuery(`SELECT .+ FROM companies WHERE id = \$1`).
		WithArgs(id).
		WillReturnRows(rows)

	company, err := suite.repo.GetByID(suite.context, id)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Acme Gym", company.Name)
	assert.False(suite.T(), company.IsDeleted)
}

func (suite *CompanyRepoTestSuite) TestDelete_IsIdempotent() {
	id := uuid.New()

	// Deleting a row that no longer exists affects zero rows and still succeeds.
	suite.mock.ExpectExec(`DELETE FROM companies WHERE id = \$1`).
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := suite.repo.Delete(suite.context, id)
	assert.NoError(suite.T(), err)
}

func (suite *CompanyRepoTestSuite) TestSoftDelete() {
	id := uuid.New()

	suite.mock.ExpectExec(`UPDATE companies SET is_deleted = true`).
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := suite.repo.SoftDelete(suite.context, id)
	assert.NoError(suite.T(), err)
}
