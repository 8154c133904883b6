package services

import (
	"context"
	"errors"
	"testing"

	"rewardbase/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type AuthzServiceTestSuite struct {
	suite.Suite
	tenantRepo     *MockTenantRepository
	membershipRepo *MockMembershipRepository
	service        AuthzService
	ctx            context.Context
	userID         uuid.UUID
	workspaceID    uuid.UUID
}

func (suite *AuthzServiceTestSuite) SetupTest() {
	suite.tenantRepo = &MockTenantRepository{}
	suite.membershipRepo = &MockMembershipRepository{}
	tenantSvc := NewTenantService(suite.tenantRepo, suite.membershipRepo, &MockSubscriberRepository{})
	suite.service = NewAuthzService(tenantSvc, suite.membershipRepo)
	suite.ctx = context.Background()
	suite.userID = uuid.New()
	suite.workspaceID = uuid.New()

	suite.tenantRepo.Test(suite.T())
	suite.membershipRepo.Test(suite.T())
}

func (suite *AuthzServiceTestSuite) TearDownTest() {
	suite.tenantRepo.AssertExpectations(suite.T())
	suite.membershipRepo.AssertExpectations(suite.T())
}

func TestAuthzServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AuthzServiceTestSuite))
}

func (suite *AuthzServiceTestSuite) confirmedMembership(roles ...string) *models.Membership {
	return &models.Membership{
		ID:          uuid.New(),
		UserID:      suite.userID,
		WorkspaceID: suite.workspaceID,
		Roles:       roles,
		Confirmed:   true,
	}
}

func (suite *AuthzServiceTestSuite) TestResolveRoles_ConfirmedMembership() {
	memberships := []*models.Membership{suite.confirmedMembership("owner", "member")}
	suite.membershipRepo.On("ListByWorkspace", suite.ctx, suite.workspaceID, 100, 0).Return(memberships, nil)

	roles, err := suite.service.ResolveRoles(suite.ctx, suite.userID, suite.workspaceID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), []models.Role{models.RoleOwner, models.RoleMember}, roles)
}

func (suite *AuthzServiceTestSuite) TestResolveRoles_LegacyLabelNormalizes() {
	memberships := []*models.Membership{suite.confirmedMembership("user")}
	suite.membershipRepo.On("ListByWorkspace", suite.ctx, suite.workspaceID, 100, 0).Return(memberships, nil)

	roles, err := suite.service.ResolveRoles(suite.ctx, suite.userID, suite.workspaceID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), []models.Role{models.RoleMember}, roles)
}

func (suite *AuthzServiceTestSuite) TestResolveRoles_UnrecognizedLabelMapsToUnknown() {
	memberships := []*models.Membership{suite.confirmedMembership("superuser")}
	suite.membershipRepo.On("ListByWorkspace", suite.ctx, suite.workspaceID, 100, 0).Return(memberships, nil)

	roles, err := suite.service.ResolveRoles(suite.ctx, suite.userID, suite.workspaceID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), []models.Role{models.RoleUnknown}, roles)

	decision := AuthzDecision{Roles: roles}
	assert.False(suite.T(), decision.Privileged(), "unknown labels grant nothing")
}

func (suite *AuthzServiceTestSuite) TestResolveRoles_NoMembershipIsEmptySet() {
	suite.membershipRepo.On("ListByWorkspace", suite.ctx, suite.workspaceID, 100, 0).Return([]*models.Membership{}, nil)

	roles, err := suite.service.ResolveRoles(suite.ctx, suite.userID, suite.workspaceID)
	assert.NoError(suite.T(), err)
	assert.Empty(suite.T(), roles)
}

func (suite *AuthzServiceTestSuite) TestResolveRoles_UnconfirmedMembershipIsEmptySet() {
	pending := &models.Membership{
		ID:          uuid.New(),
		UserID:      suite.userID,
		WorkspaceID: suite.workspaceID,
		Roles:       []string{"admin"},
		Confirmed:   false,
	}
	suite.membershipRepo.On("ListByWorkspace", suite.ctx, suite.workspaceID, 100, 0).Return([]*models.Membership{pending}, nil)

	roles, err := suite.service.ResolveRoles(suite.ctx, suite.userID, suite.workspaceID)
	assert.NoError(suite.T(), err)
	assert.Empty(suite.T(), roles, "pending invitations grant no access")
}

func (suite *AuthzServiceTestSuite) TestResolveRoles_PagesThroughLargeWorkspaces() {
	// First page is full and does not contain the user; the second does.
	firstPage := make([]*models.Membership, 100)
	for i := range firstPage {
		firstPage[i] = &models.Membership{ID: uuid.New(), UserID: uuid.New(), WorkspaceID: suite.workspaceID, Confirmed: true}
	}
	secondPage := []*models.Membership{suite.confirmedMembership("admin")}

	suite.membershipRepo.On("ListByWorkspace", suite.ctx, suite.workspaceID, 100, 0).Return(firstPage, nil)
	suite.membershipRepo.On("ListByWorkspace", suite.ctx, suite.workspaceID, 100, 100).Return(secondPage, nil)

	roles, err := suite.service.ResolveRoles(suite.ctx, suite.userID, suite.workspaceID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), []models.Role{models.RoleAdmin}, roles)
}

func (suite *AuthzServiceTestSuite) TestCheck_UnknownTenantIsEmptyDecision() {
	suite.tenantRepo.On("GetBySlug", suite.ctx, "ghost").Return(nil, pgx.ErrNoRows)

	decision, err := suite.service.Check(suite.ctx, suite.userID, "ghost")
	assert.NoError(suite.T(), err)
	assert.Empty(suite.T(), decision.Roles)
	assert.Equal(suite.T(), uuid.Nil, decision.WorkspaceID)
}

func (suite *AuthzServiceTestSuite) TestCheck_ResolvesSlugAndRoles() {
	tenant := &models.Tenant{ID: uuid.New(), Slug: "acme", WorkspaceID: suite.workspaceID, Name: "Acme"}
	memberships := []*models.Membership{suite.confirmedMembership("owner")}

	suite.tenantRepo.On("GetBySlug", suite.ctx, "acme").Return(tenant, nil)
	suite.membershipRepo.On("ListByWorkspace", suite.ctx, suite.workspaceID, 100, 0).Return(memberships, nil)

	decision, err := suite.service.Check(suite.ctx, suite.userID, "acme")
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), suite.workspaceID, decision.WorkspaceID)
	assert.True(suite.T(), decision.Privileged())
}

func (suite *AuthzServiceTestSuite) TestCheck_ResolverFaultPropagates() {
	suite.tenantRepo.On("GetBySlug", suite.ctx, "acme").Return(nil, errors.New("connection refused"))

	decision, err := suite.service.Check(suite.ctx, suite.userID, "acme")
	assert.Error(suite.T(), err)
	assert.Nil(suite.T(), decision)
}
