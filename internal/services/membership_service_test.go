package services

import (
	"context"
	"testing"

	"rewardbase/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type MembershipServiceTestSuite struct {
	suite.Suite
	userRepo       *MockUserRepository
	membershipRepo *MockMembershipRepository
	tenantRepo     *MockTenantRepository
	service        MembershipService
	ctx            context.Context
	workspaceID    uuid.UUID
	userID         uuid.UUID
}

func (suite *MembershipServiceTestSuite) SetupTest() {
	suite.userRepo = &MockUserRepository{}
	suite.membershipRepo = &MockMembershipRepository{}
	suite.tenantRepo = &MockTenantRepository{}
	suite.service = NewMembershipService(suite.userRepo, suite.membershipRepo, suite.tenantRepo)
	suite.ctx = context.Background()
	suite.workspaceID = uuid.New()
	suite.userID = uuid.New()

	suite.userRepo.Test(suite.T())
	suite.membershipRepo.Test(suite.T())
	suite.tenantRepo.Test(suite.T())
}

func (suite *MembershipServiceTestSuite) TearDownTest() {
	suite.userRepo.AssertExpectations(suite.T())
	suite.membershipRepo.AssertExpectations(suite.T())
	suite.tenantRepo.AssertExpectations(suite.T())
}

func TestMembershipServiceTestSuite(t *testing.T) {
	suite.Run(t, new(MembershipServiceTestSuite))
}

func uniqueViolation() error {
	return &pgconn.PgError{Code: "23505"}
}

func (suite *MembershipServiceTestSuite) TestAddExisting_Success() {
	user := &models.User{ID: suite.userID, Email: "a@example.com", Status: models.UserStatusActive}

	suite.userRepo.On("GetByEmail", suite.ctx, "a@example.com").Return(user, nil)
	suite.membershipRepo.On("GetConfirmedByUser", suite.ctx, suite.userID).Return(nil, pgx.ErrNoRows)
	suite.membershipRepo.On("Create", suite.ctx, mock.AnythingOfType("*models.Membership")).Return(nil)

	outcome, err := suite.service.AddExisting(suite.ctx, suite.workspaceID, "a@example.com", []models.Role{models.RoleAdmin})
	assert.NoError(suite.T(), err)
	assert.Empty(suite.T(), outcome.Note)
	assert.True(suite.T(), outcome.Membership.Confirmed)
	assert.Equal(suite.T(), []string{"admin"}, outcome.Membership.Roles)
	assert.Equal(suite.T(), suite.workspaceID, outcome.Membership.WorkspaceID)
}

func (suite *MembershipServiceTestSuite) TestAddExisting_UnregisteredEmail() {
	suite.userRepo.On("GetByEmail", suite.ctx, "ghost@example.com").Return(nil, pgx.ErrNoRows)

	outcome, err := suite.service.AddExisting(suite.ctx, suite.workspaceID, "ghost@example.com", nil)
	assert.ErrorIs(suite.T(), err, ErrEmailNotRegistered)
	assert.Nil(suite.T(), outcome)
}

func (suite *MembershipServiceTestSuite) TestAddExisting_InvitedStubIsNotRegistered() {
	stub := &models.User{ID: suite.userID, Email: "stub@example.com", Status: models.UserStatusInvited}
	suite.userRepo.On("GetByEmail", suite.ctx, "stub@example.com").Return(stub, nil)

	outcome, err := suite.service.AddExisting(suite.ctx, suite.workspaceID, "stub@example.com", nil)
	assert.ErrorIs(suite.T(), err, ErrEmailNotRegistered, "stubs without credentials cannot skip confirmation")
	assert.Nil(suite.T(), outcome)
}

func (suite *MembershipServiceTestSuite) TestAddExisting_AlreadyMemberIsSuccessWithNote() {
	user := &models.User{ID: suite.userID, Email: "a@example.com", Status: models.UserStatusActive}
	existing := &models.Membership{ID: uuid.New(), UserID: suite.userID, WorkspaceID: suite.workspaceID, Confirmed: true}

	suite.userRepo.On("GetByEmail", suite.ctx, "a@example.com").Return(user, nil)
	suite.membershipRepo.On("GetConfirmedByUser", suite.ctx, suite.userID).Return(existing, nil)

	outcome, err := suite.service.AddExisting(suite.ctx, suite.workspaceID, "a@example.com", nil)
	assert.NoError(suite.T(), err)
	assert.NotEmpty(suite.T(), outcome.Note)
	assert.Equal(suite.T(), existing, outcome.Membership)
}

func (suite *MembershipServiceTestSuite) TestAddExisting_ConfirmedElsewhereConflicts() {
	user := &models.User{ID: suite.userID, Email: "a@example.com", Status: models.UserStatusActive}
	elsewhere := &models.Membership{ID: uuid.New(), UserID: suite.userID, WorkspaceID: uuid.New(), Confirmed: true}

	suite.userRepo.On("GetByEmail", suite.ctx, "a@example.com").Return(user, nil)
	suite.membershipRepo.On("GetConfirmedByUser", suite.ctx, suite.userID).Return(elsewhere, nil)

	_, err := suite.service.AddExisting(suite.ctx, suite.workspaceID, "a@example.com", nil)
	assert.ErrorIs(suite.T(), err, ErrWorkspaceConflict)
}

func (suite *MembershipServiceTestSuite) TestAddExisting_ConcurrentDuplicateIsSuccessWithNote() {
	user := &models.User{ID: suite.userID, Email: "a@example.com", Status: models.UserStatusActive}
	existing := &models.Membership{ID: uuid.New(), UserID: suite.userID, WorkspaceID: suite.workspaceID, Confirmed: true}

	suite.userRepo.On("GetByEmail", suite.ctx, "a@example.com").Return(user, nil)
	suite.membershipRepo.On("GetConfirmedByUser", suite.ctx, suite.userID).Return(nil, pgx.ErrNoRows)
	// The insert loses the race; the unique constraint reports the duplicate.
	suite.membershipRepo.On("Create", suite.ctx, mock.AnythingOfType("*models.Membership")).Return(uniqueViolation())
	suite.membershipRepo.On("GetByUserAndWorkspace", suite.ctx, suite.userID, suite.workspaceID).Return(existing, nil)

	outcome, err := suite.service.AddExisting(suite.ctx, suite.workspaceID, "a@example.com", nil)
	assert.NoError(suite.T(), err)
	assert.NotEmpty(suite.T(), outcome.Note)
	assert.Equal(suite.T(), existing, outcome.Membership)
}

func (suite *MembershipServiceTestSuite) TestAddExisting_DefaultsToMemberRole() {
	user := &models.User{ID: suite.userID, Email: "a@example.com", Status: models.UserStatusActive}

	suite.userRepo.On("GetByEmail", suite.ctx, "a@example.com").Return(user, nil)
	suite.membershipRepo.On("GetConfirmedByUser", suite.ctx, suite.userID).Return(nil, pgx.ErrNoRows)
	suite.membershipRepo.On("Create", suite.ctx, mock.AnythingOfType("*models.Membership")).Return(nil)

	outcome, err := suite.service.AddExisting(suite.ctx, suite.workspaceID, "a@example.com", []models.Role{models.RoleUnknown})
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), []string{"member"}, outcome.Membership.Roles)
}

func (suite *MembershipServiceTestSuite) TestInvite_ActiveUserIsAddedDirectly() {
	user := &models.User{ID: suite.userID, Email: "a@example.com", Status: models.UserStatusActive}

	suite.userRepo.On("GetByEmail", suite.ctx, "a@example.com").Return(user, nil)
	suite.membershipRepo.On("GetConfirmedByUser", suite.ctx, suite.userID).Return(nil, pgx.ErrNoRows)
	suite.membershipRepo.On("Create", suite.ctx, mock.AnythingOfType("*models.Membership")).Return(nil)

	outcome, err := suite.service.Invite(suite.ctx, suite.workspaceID, "a@example.com", nil)
	assert.NoError(suite.T(), err)
	assert.True(suite.T(), outcome.Membership.Confirmed)
	assert.Empty(suite.T(), outcome.InviteSecret, "direct adds carry no invite secret")
}

func (suite *MembershipServiceTestSuite) TestInvite_UnknownEmailCreatesPendingInvitation() {
	suite.userRepo.On("GetByEmail", suite.ctx, "new@example.com").Return(nil, pgx.ErrNoRows)
	suite.userRepo.On("Create", suite.ctx, mock.AnythingOfType("*models.User")).Return(nil).Run(func(args mock.Arguments) {
		user := args.Get(1).(*models.User)
		assert.Equal(suite.T(), models.UserStatusInvited, user.Status)
	})
	suite.membershipRepo.On("Create", suite.ctx, mock.AnythingOfType("*models.Membership")).Return(nil).Run(func(args mock.Arguments) {
		m := args.Get(1).(*models.Membership)
		assert.False(suite.T(), m.Confirmed)
		assert.NotNil(suite.T(), m.InviteSecretHash)
		assert.NotNil(suite.T(), m.InvitedAt)
	})

	outcome, err := suite.service.Invite(suite.ctx, suite.workspaceID, "new@example.com", nil)
	assert.NoError(suite.T(), err)
	assert.NotEmpty(suite.T(), outcome.InviteSecret)
	assert.NotEqual(suite.T(), outcome.InviteSecret, *outcome.Membership.InviteSecretHash, "the stored hash never equals the secret")
}

func (suite *MembershipServiceTestSuite) TestInvite_DuplicateInvitationIsSuccessWithNote() {
	stub := &models.User{ID: suite.userID, Email: "new@example.com", Status: models.UserStatusInvited}
	existing := &models.Membership{ID: uuid.New(), UserID: suite.userID, WorkspaceID: suite.workspaceID}

	suite.userRepo.On("GetByEmail", suite.ctx, "new@example.com").Return(stub, nil)
	suite.membershipRepo.On("Create", suite.ctx, mock.AnythingOfType("*models.Membership")).Return(uniqueViolation())
	suite.membershipRepo.On("GetByUserAndWorkspace", suite.ctx, suite.userID, suite.workspaceID).Return(existing, nil)

	outcome, err := suite.service.Invite(suite.ctx, suite.workspaceID, "new@example.com", nil)
	assert.NoError(suite.T(), err)
	assert.NotEmpty(suite.T(), outcome.Note)
	assert.Empty(suite.T(), outcome.InviteSecret)
}

func (suite *MembershipServiceTestSuite) TestRemove_Success() {
	membershipID := uuid.New()
	membership := &models.Membership{ID: membershipID, UserID: suite.userID, WorkspaceID: suite.workspaceID}
	tenant := &models.Tenant{ID: uuid.New(), WorkspaceID: suite.workspaceID, Slug: "acme"}

	suite.membershipRepo.On("GetByID", suite.ctx, membershipID).Return(membership, nil)
	suite.tenantRepo.On("GetByWorkspaceID", suite.ctx, suite.workspaceID).Return(tenant, nil)
	suite.membershipRepo.On("Delete", suite.ctx, membershipID).Return(nil)

	err := suite.service.Remove(suite.ctx, suite.workspaceID, membershipID)
	assert.NoError(suite.T(), err)
}

func (suite *MembershipServiceTestSuite) TestRemove_UnknownMembership() {
	membershipID := uuid.New()
	suite.membershipRepo.On("GetByID", suite.ctx, membershipID).Return(nil, pgx.ErrNoRows)

	err := suite.service.Remove(suite.ctx, suite.workspaceID, membershipID)
	assert.ErrorIs(suite.T(), err, ErrNotFound)
}

func (suite *MembershipServiceTestSuite) TestRemove_OtherWorkspaceReadsAsNotFound() {
	membershipID := uuid.New()
	membership := &models.Membership{ID: membershipID, UserID: suite.userID, WorkspaceID: uuid.New()}

	suite.membershipRepo.On("GetByID", suite.ctx, membershipID).Return(membership, nil)

	err := suite.service.Remove(suite.ctx, suite.workspaceID, membershipID)
	assert.ErrorIs(suite.T(), err, ErrNotFound)
}

func (suite *MembershipServiceTestSuite) TestConfirmInvite_Success() {
	membershipID := uuid.New()
	secret := "invite-secret-value"
	hash := hashToken(secret)
	membership := &models.Membership{
		ID:               membershipID,
		UserID:           suite.userID,
		WorkspaceID:      suite.workspaceID,
		Confirmed:        false,
		InviteSecretHash: &hash,
	}
	tenant := &models.Tenant{ID: uuid.New(), WorkspaceID: suite.workspaceID, Slug: "acme"}

	suite.membershipRepo.On("GetByID", suite.ctx, membershipID).Return(membership, nil)
	suite.tenantRepo.On("GetByWorkspaceID", suite.ctx, suite.workspaceID).Return(tenant, nil)
	suite.membershipRepo.On("GetConfirmedByUser", suite.ctx, suite.userID).Return(nil, pgx.ErrNoRows)
	suite.membershipRepo.On("Confirm", suite.ctx, membershipID).Return(nil)

	slug, err := suite.service.ConfirmInvite(suite.ctx, membershipID, suite.userID, secret)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "acme", slug)
}

func (suite *MembershipServiceTestSuite) TestConfirmInvite_WrongUser() {
	membershipID := uuid.New()
	membership := &models.Membership{ID: membershipID, UserID: uuid.New(), WorkspaceID: suite.workspaceID}

	suite.membershipRepo.On("GetByID", suite.ctx, membershipID).Return(membership, nil)

	_, err := suite.service.ConfirmInvite(suite.ctx, membershipID, suite.userID, "whatever")
	assert.ErrorIs(suite.T(), err, ErrInvalidSecret)
}

func (suite *MembershipServiceTestSuite) TestConfirmInvite_WrongSecret() {
	membershipID := uuid.New()
	hash := hashToken("the-real-secret")
	membership := &models.Membership{
		ID:               membershipID,
		UserID:           suite.userID,
		WorkspaceID:      suite.workspaceID,
		InviteSecretHash: &hash,
	}
	tenant := &models.Tenant{ID: uuid.New(), WorkspaceID: suite.workspaceID, Slug: "acme"}

	suite.membershipRepo.On("GetByID", suite.ctx, membershipID).Return(membership, nil)
	suite.tenantRepo.On("GetByWorkspaceID", suite.ctx, suite.workspaceID).Return(tenant, nil)

	_, err := suite.service.ConfirmInvite(suite.ctx, membershipID, suite.userID, "a-guess")
	assert.ErrorIs(suite.T(), err, ErrInvalidSecret)
}

func (suite *MembershipServiceTestSuite) TestConfirmInvite_AlreadyConfirmedIsIdempotent() {
	membershipID := uuid.New()
	membership := &models.Membership{
		ID:          membershipID,
		UserID:      suite.userID,
		WorkspaceID: suite.workspaceID,
		Confirmed:   true,
	}
	tenant := &models.Tenant{ID: uuid.New(), WorkspaceID: suite.workspaceID, Slug: "acme"}

	suite.membershipRepo.On("GetByID", suite.ctx, membershipID).Return(membership, nil)
	suite.tenantRepo.On("GetByWorkspaceID", suite.ctx, suite.workspaceID).Return(tenant, nil)

	slug, err := suite.service.ConfirmInvite(suite.ctx, membershipID, suite.userID, "irrelevant")
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "acme", slug)
}

func (suite *MembershipServiceTestSuite) TestConfirmInvite_ConfirmedElsewhereConflicts() {
	membershipID := uuid.New()
	secret := "invite-secret-value"
	hash := hashToken(secret)
	membership := &models.Membership{
		ID:               membershipID,
		UserID:           suite.userID,
		WorkspaceID:      suite.workspaceID,
		InviteSecretHash: &hash,
	}
	tenant := &models.Tenant{ID: uuid.New(), WorkspaceID: suite.workspaceID, Slug: "acme"}
	elsewhere := &models.Membership{ID: uuid.New(), UserID: suite.userID, WorkspaceID: uuid.New(), Confirmed: true}

	suite.membershipRepo.On("GetByID", suite.ctx, membershipID).Return(membership, nil)
	suite.tenantRepo.On("GetByWorkspaceID", suite.ctx, suite.workspaceID).Return(tenant, nil)
	suite.membershipRepo.On("GetConfirmedByUser", suite.ctx, suite.userID).Return(elsewhere, nil)

	_, err := suite.service.ConfirmInvite(suite.ctx, membershipID, suite.userID, secret)
	assert.ErrorIs(suite.T(), err, ErrWorkspaceConflict)
}
