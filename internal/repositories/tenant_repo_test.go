package repositories

import (
	"context"
	"testing"
	"time"

	"rewardbase/internal/models"

	"github.com/google/uuid"
	pgx "github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type TenantRepoTestSuite struct {
	suite.Suite
	mock        pgxmock.PgxPoolIface
	repo        TenantRepository
	workspaceID uuid.UUID
	ctx         context.Context
}

func (suite *TenantRepoTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	assert.NoError(suite.T(), err)
	suite.mock = mock

	suite.repo = NewTenantRepo(mock)
	suite.workspaceID = uuid.New()
	suite.ctx = context.Background()
}

func (suite *TenantRepoTestSuite) TearDownTest() {
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
	suite.mock.Close()
}

func TestTenantRepoTestSuite(t *testing.T) {
	suite.Run(t, new(TenantRepoTestSuite))
}

func (suite *TenantRepoTestSuite) tenantColumns() []string {
	return []string{"id", "slug", "workspace_id", "name", "logo_url", "theme_color", "created_at", "updated_at"}
}

func (suite *TenantRepoTestSuite) TestCreate_Success() {
	tenant := &models.Tenant{
		ID:          uuid.New(),
		Slug:        "acme",
		WorkspaceID: suite.workspaceID,
		Name:        "Acme Rewards",
	}

	suite.mock.ExpectExec(`INSERT INTO tenants`).
		WithArgs(tenant.ID, tenant.Slug, tenant.WorkspaceID, tenant.Name, tenant.LogoURL, tenant.ThemeColor).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := suite.repo.Create(suite.ctx, tenant)
	assert.NoError(suite.T(), err)
}

func (suite *TenantRepoTestSuite) TestCreate_DuplicateSlug() {
	tenant := &models.Tenant{
		ID:          uuid.New(),
		Slug:        "acme",
		WorkspaceID: suite.workspaceID,
		Name:        "Acme Rewards",
	}

	suite.mock.ExpectExec(`INSERT INTO tenants`).
		WithArgs(tenant.ID, tenant.Slug, tenant.WorkspaceID, tenant.Name, tenant.LogoURL, tenant.ThemeColor).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	err := suite.repo.Create(suite.ctx, tenant)
	assert.Error(suite.T(), err)
	assert.True(suite.T(), IsUniqueViolation(err))
}

func (suite *TenantRepoTestSuite) TestGetBySlug_Found() {
	now := time.Now()
	rows := pgxmock.NewRows(suite.tenantColumns()).
		AddRow(uuid.New(), "acme", suite.workspaceID, "Acme Rewards", nil, nil, now, now)

	suite.mock.ExpectQuery(`FROM tenants\s+WHERE slug = \$1`).
		WithArgs("acme").
		WillReturnRows(rows)

	tenant, err := suite.repo.GetBySlug(suite.ctx, "acme")
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "acme", tenant.Slug)
	assert.Equal(suite.T(), suite.workspaceID, tenant.WorkspaceID)
}

func (suite *TenantRepoTestSuite) TestGetBySlug_Unknown() {
	suite.mock.ExpectQuery(`FROM tenants\s+WHERE slug = \$1`).
		WithArgs("ghost").
		WillReturnError(pgx.ErrNoRows)

	tenant, err := suite.repo.GetBySlug(suite.ctx, "ghost")
	assert.ErrorIs(suite.T(), err, pgx.ErrNoRows)
	assert.Nil(suite.T(), tenant)
}

func (suite *TenantRepoTestSuite) TestUpdateBranding_DoesNotTouchSlug() {
	name := "Acme Rewards Plus"
	logo := "https://cdn.example.com/logo.png"
	theme := "#ff6600"

	suite.mock.ExpectExec(`UPDATE tenants\s+SET name = \$1, logo_url = \$2, theme_color = \$3, updated_at = NOW\(\)\s+WHERE workspace_id = \$4`).
		WithArgs(name, &logo, &theme, suite.workspaceID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := suite.repo.UpdateBranding(suite.ctx, suite.workspaceID, name, &logo, &theme)
	assert.NoError(suite.T(), err)
}
