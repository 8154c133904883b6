package repositories

import (
	"context"
	"testing"
	"time"

	"rewardbase/internal/models"

	"github.com/google/uuid"
	pgx "github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type MembershipRepoTestSuite struct {
	suite.Suite
	mock        pgxmock.PgxPoolIface
	repo        MembershipRepository
	userID      uuid.UUID
	workspaceID uuid.UUID
	ctx         context.Context
}

func (suite *MembershipRepoTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	assert.NoError(suite.T(), err)
	suite.mock = mock

	suite.repo = NewMembershipRepo(mock)
	suite.userID = uuid.New()
	suite.workspaceID = uuid.New()
	suite.ctx = context.Background()
}

func (suite *MembershipRepoTestSuite) TearDownTest() {
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
	suite.mock.Close()
}

func TestMembershipRepoTestSuite(t *testing.T) {
	suite.Run(t, new(MembershipRepoTestSuite))
}

func (suite *MembershipRepoTestSuite) membershipColumns() []string {
	return []string{"id", "user_id", "workspace_id", "roles", "confirmed", "invite_secret_hash", "invited_at", "created_at", "updated_at"}
}

func (suite *MembershipRepoTestSuite) TestCreate_Success() {
	m := &models.Membership{
		ID:          uuid.New(),
		UserID:      suite.userID,
		WorkspaceID: suite.workspaceID,
		Roles:       []string{"member"},
		Confirmed:   true,
	}

	suite.mock.ExpectExec(`INSERT INTO memberships`).
		WithArgs(m.ID, m.UserID, m.WorkspaceID, m.Roles, m.Confirmed, m.InviteSecretHash, m.InvitedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := suite.repo.Create(suite.ctx, m)
	assert.NoError(suite.T(), err)
}

func (suite *MembershipRepoTestSuite) TestGetConfirmedByUser_Found() {
	now := time.Now()
	rows := pgxmock.NewRows(suite.membershipColumns()).
		AddRow(uuid.New(), suite.userID, suite.workspaceID, []string{"owner"}, true, nil, nil, now, now)

	suite.mock.ExpectQuery(`SELECT id, user_id, workspace_id, roles, confirmed, invite_secret_hash, invited_at, created_at, updated_at\s+FROM memberships\s+WHERE user_id = \$1 AND confirmed = TRUE`).
		WithArgs(suite.userID).
		WillReturnRows(rows)

	m, err := suite.repo.GetConfirmedByUser(suite.ctx, suite.userID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), suite.workspaceID, m.WorkspaceID)
	assert.True(suite.T(), m.Confirmed)
	assert.Equal(suite.T(), []string{"owner"}, m.Roles)
}

func (suite *MembershipRepoTestSuite) TestGetConfirmedByUser_NoneReturnsErrNoRows() {
	suite.mock.ExpectQuery(`FROM memberships\s+WHERE user_id = \$1 AND confirmed = TRUE`).
		WithArgs(suite.userID).
		WillReturnError(pgx.ErrNoRows)

	m, err := suite.repo.GetConfirmedByUser(suite.ctx, suite.userID)
	assert.ErrorIs(suite.T(), err, pgx.ErrNoRows)
	assert.Nil(suite.T(), m)
}

func (suite *MembershipRepoTestSuite) TestListByWorkspace() {
	now := time.Now()
	rows := pgxmock.NewRows(suite.membershipColumns()).
		AddRow(uuid.New(), suite.userID, suite.workspaceID, []string{"admin"}, true, nil, nil, now, now).
		AddRow(uuid.New(), uuid.New(), suite.workspaceID, []string{"member"}, false, nil, nil, now, now)

	suite.mock.ExpectQuery(`FROM memberships\s+WHERE workspace_id = \$1\s+ORDER BY created_at DESC\s+LIMIT \$2 OFFSET \$3`).
		WithArgs(suite.workspaceID, 100, 0).
		WillReturnRows(rows)

	memberships, err := suite.repo.ListByWorkspace(suite.ctx, suite.workspaceID, 100, 0)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), memberships, 2)
	assert.False(suite.T(), memberships[1].Confirmed)
}

func (suite *MembershipRepoTestSuite) TestConfirm_ClearsSecret() {
	id := uuid.New()

	suite.mock.ExpectExec(`UPDATE memberships\s+SET confirmed = TRUE, invite_secret_hash = NULL, updated_at = NOW\(\)\s+WHERE id = \$1`).
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := suite.repo.Confirm(suite.ctx, id)
	assert.NoError(suite.T(), err)
}

func (suite *MembershipRepoTestSuite) TestDelete() {
	id := uuid.New()

	suite.mock.ExpectExec(`DELETE FROM memberships WHERE id = \$1`).
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	err := suite.repo.Delete(suite.ctx, id)
	assert.NoError(suite.T(), err)
}

func (suite *MembershipRepoTestSuite) TestDeletePendingBefore_ReportsCount() {
	cutoff := time.Now().Add(-14 * 24 * time.Hour)

	suite.mock.ExpectExec(`DELETE FROM memberships WHERE confirmed = FALSE AND invited_at < \$1`).
		WithArgs(cutoff).
		WillReturnResult(pgxmock.NewResult("DELETE", 3))

	deleted, err := suite.repo.DeletePendingBefore(suite.ctx, cutoff)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(3), deleted)
}
