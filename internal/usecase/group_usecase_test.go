package usecase_test

import (
	"go-finance-ledger/internal/entity"
	"go-finance-ledger/internal/params"
	"go-finance-ledger/internal/usecase"
	"net/http"
	"regexp"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (e *testEnv) createGroup(t *testing.T, creatorID uuid.UUID) *params.GroupResponse {
	t.Helper()
	group, cerr := e.groups.CreateGroup(e.ctx, creatorID, &params.CreateGroupRequest{
		Name:         "Flat share",
		Description:  "Shared costs",
		TargetAmount: dec(6000),
		Deadline:     "2030-12-31",
	})
	require.Nil(t, cerr)
	return group
}

func TestGenerateInviteCode(t *testing.T) {
	pattern := regexp.MustCompile(`^[A-Z0-9]{8}$`)
	seen := make(map[string]struct{})
	for i := 0; i < 50; i++ {
		code, err := usecase.GenerateInviteCode()
		require.NoError(t, err)
		assert.Regexp(t, pattern, code)
		seen[code] = struct{}{}
	}
	assert.Greater(t, len(seen), 45)
}

func TestCreateAndJoinGroup(t *testing.T) {
	env := setupTest(t)
	admin := env.createUser(t)
	member := env.createUser(t)

	group := env.createGroup(t, admin.ID)
	require.Len(t, group.Members, 1)
	assert.Equal(t, entity.MembershipRoleAdmin, group.Members[0].Role)
	assert.Equal(t, admin.ID, group.CreatorID)
	assert.Len(t, group.InviteCode, 8)

	_, cerr := env.groups.GetGroup(env.ctx, member.ID, group.ID)
	require.NotNil(t, cerr)
	assert.Equal(t, http.StatusForbidden, cerr.StatusCode)

	joined, cerr := env.groups.JoinGroup(env.ctx, member.ID, &params.JoinGroupRequest{InviteCode: strings.ToLower(group.InviteCode)})
	require.Nil(t, cerr)
	assert.Len(t, joined.Members, 2)

	_, cerr = env.groups.JoinGroup(env.ctx, member.ID, &params.JoinGroupRequest{InviteCode: group.InviteCode})
	require.NotNil(t, cerr)
	assert.Equal(t, http.StatusConflict, cerr.StatusCode)

	_, cerr = env.groups.JoinGroup(env.ctx, member.ID, &params.JoinGroupRequest{InviteCode: "ZZZZZZZZ"})
	require.NotNil(t, cerr)
	assert.Equal(t, http.StatusNotFound, cerr.StatusCode)
}

func TestInviteMember(t *testing.T) {
	env := setupTest(t)
	admin := env.createUser(t)
	member := env.createUser(t)
	group := env.createGroup(t, admin.ID)

	_, cerr := env.groups.JoinGroup(env.ctx, member.ID, &params.JoinGroupRequest{InviteCode: group.InviteCode})
	require.Nil(t, cerr)

	cerr = env.groups.InviteMember(env.ctx, member.ID, group.ID, &params.InviteMemberRequest{Email: "friend@example.com"})
	require.NotNil(t, cerr)
	assert.Equal(t, http.StatusForbidden, cerr.StatusCode)

	cerr = env.groups.InviteMember(env.ctx, admin.ID, group.ID, &params.InviteMemberRequest{Email: "friend@example.com"})
	require.Nil(t, cerr)

	sent := env.sentMessages()
	require.Len(t, sent, 1)
	assert.Equal(t, "friend@example.com", sent[0].To)
	assert.Equal(t, "You are invited to Flat share", sent[0].Subject)
	assert.Contains(t, sent[0].Text, group.InviteCode)
}

func TestContribute_ToGoal(t *testing.T) {
	env := setupTest(t)
	admin := env.createUser(t)
	member := env.createUser(t)
	group := env.createGroup(t, admin.ID)
	_, cerr := env.groups.JoinGroup(env.ctx, member.ID, &params.JoinGroupRequest{InviteCode: group.InviteCode})
	require.Nil(t, cerr)

	_, cerr = env.groups.CreateGroupGoal(env.ctx, member.ID, group.ID, &params.CreateGroupGoalRequest{
		Title:        "Sofa",
		TargetAmount: dec(900),
		Deadline:     "2030-06-01",
	})
	require.NotNil(t, cerr)
	assert.Equal(t, http.StatusForbidden, cerr.StatusCode)

	goal, cerr := env.groups.CreateGroupGoal(env.ctx, admin.ID, group.ID, &params.CreateGroupGoalRequest{
		Title:        "Sofa",
		TargetAmount: dec(900),
		Deadline:     "2030-06-01",
	})
	require.Nil(t, cerr)
	assert.Equal(t, entity.GroupGoalTypeSavings, goal.GoalType)

	req := &params.GroupContributionRequest{GoalID: &goal.ID, Amount: dec(400)}
	resp, cerr := env.groups.Contribute(env.ctx, member.ID, group.ID, req.Target(), req)
	require.Nil(t, cerr)
	require.NotNil(t, resp.Goal)
	assertDecimal(t, 400, resp.Goal.CurrentAmount)
	assert.Nil(t, resp.Group)

	req = &params.GroupContributionRequest{GoalID: &goal.ID, Amount: dec(500)}
	resp, cerr = env.groups.Contribute(env.ctx, admin.ID, group.ID, req.Target(), req)
	require.Nil(t, cerr)
	assert.Equal(t, entity.GoalStatusCompleted, resp.Goal.Status)

	// Goal contributions leave the legacy totals alone.
	fetched, cerr := env.groups.GetGroup(env.ctx, admin.ID, group.ID)
	require.Nil(t, cerr)
	assertDecimal(t, 0, fetched.CurrentAmount)
	require.Len(t, fetched.Goals, 1)
	assertDecimal(t, 900, fetched.Goals[0].CurrentAmount)
}

func TestContribute_LegacyAggregate(t *testing.T) {
	env := setupTest(t)
	admin := env.createUser(t)
	group := env.createGroup(t, admin.ID)

	req := &params.GroupContributionRequest{Amount: dec(1500)}
	assert.Equal(t, entity.ToGroupLegacyAggregate{}, req.Target())

	resp, cerr := env.groups.Contribute(env.ctx, admin.ID, group.ID, req.Target(), req)
	require.Nil(t, cerr)
	require.NotNil(t, resp.Group)
	assertDecimal(t, 1500, resp.Group.CurrentAmount)
	assertDecimal(t, 25, resp.Group.Percentage)
}

func TestContribute_RequiresMembership(t *testing.T) {
	env := setupTest(t)
	admin := env.createUser(t)
	outsider := env.createUser(t)
	group := env.createGroup(t, admin.ID)

	req := &params.GroupContributionRequest{Amount: dec(10)}
	_, cerr := env.groups.Contribute(env.ctx, outsider.ID, group.ID, req.Target(), req)
	require.NotNil(t, cerr)
	assert.Equal(t, http.StatusForbidden, cerr.StatusCode)

	unknown := uuid.New()
	req = &params.GroupContributionRequest{GoalID: &unknown, Amount: dec(10)}
	_, cerr = env.groups.Contribute(env.ctx, admin.ID, group.ID, req.Target(), req)
	require.NotNil(t, cerr)
	assert.Equal(t, http.StatusNotFound, cerr.StatusCode)
}

func TestRemoveMember(t *testing.T) {
	env := setupTest(t)
	creator := env.createUser(t)
	coAdmin := env.createUser(t)
	member := env.createUser(t)
	outsider := env.createUser(t)
	group := env.createGroup(t, creator.ID)

	for _, u := range []*entity.User{coAdmin, member} {
		_, cerr := env.groups.JoinGroup(env.ctx, u.ID, &params.JoinGroupRequest{InviteCode: group.InviteCode})
		require.Nil(t, cerr)
	}
	require.NoError(t, env.db.Model(&entity.Membership{}).
		Where("group_id = ? AND user_id = ?", group.ID, coAdmin.ID).
		Update("role", entity.MembershipRoleAdmin).Error)

	t.Run("members cannot remove others", func(t *testing.T) {
		_, cerr := env.groups.RemoveMember(env.ctx, member.ID, group.ID, coAdmin.ID)
		require.NotNil(t, cerr)
		assert.Equal(t, http.StatusForbidden, cerr.StatusCode)
	})

	t.Run("creator stays", func(t *testing.T) {
		_, cerr := env.groups.RemoveMember(env.ctx, coAdmin.ID, group.ID, creator.ID)
		require.NotNil(t, cerr)
		assert.Equal(t, http.StatusBadRequest, cerr.StatusCode)
	})

	t.Run("admins cannot remove themselves", func(t *testing.T) {
		_, cerr := env.groups.RemoveMember(env.ctx, coAdmin.ID, group.ID, coAdmin.ID)
		require.NotNil(t, cerr)
		assert.Equal(t, http.StatusBadRequest, cerr.StatusCode)
	})

	t.Run("unknown member", func(t *testing.T) {
		_, cerr := env.groups.RemoveMember(env.ctx, creator.ID, group.ID, outsider.ID)
		require.NotNil(t, cerr)
		assert.Equal(t, http.StatusNotFound, cerr.StatusCode)
	})

	t.Run("unknown group", func(t *testing.T) {
		_, cerr := env.groups.RemoveMember(env.ctx, creator.ID, uuid.New(), member.ID)
		require.NotNil(t, cerr)
		assert.Equal(t, http.StatusNotFound, cerr.StatusCode)
	})

	resp, cerr := env.groups.RemoveMember(env.ctx, creator.ID, group.ID, member.ID)
	require.Nil(t, cerr)
	require.Len(t, resp.Members, 2)
	for _, m := range resp.Members {
		assert.NotEqual(t, member.ID, m.UserID)
	}

	_, cerr = env.groups.GetGroup(env.ctx, member.ID, group.ID)
	require.NotNil(t, cerr)
	assert.Equal(t, http.StatusForbidden, cerr.StatusCode)

	_, cerr = env.groups.RemoveMember(env.ctx, creator.ID, group.ID, member.ID)
	require.NotNil(t, cerr)
	assert.Equal(t, http.StatusNotFound, cerr.StatusCode)
}
