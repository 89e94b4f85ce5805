package usecase_test

import (
	"go-finance-ledger/internal/entity"
	"go-finance-ledger/internal/params"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateGoal(t *testing.T) {
	env := setupTest(t)
	user := env.createUser(t)

	resp, cerr := env.goals.CreateGoal(env.ctx, user.ID, &params.CreateGoalRequest{
		Title:        "New laptop",
		TargetAmount: dec(15000),
		Deadline:     "2030-01-31",
	})
	require.Nil(t, cerr)
	assert.Equal(t, "New laptop", resp.Title)
	assert.Equal(t, entity.GoalStatusActive, resp.Status)
	assert.Equal(t, "2030-01-31", resp.Deadline)
	assertDecimal(t, 15000, resp.Remaining)
	assertDecimal(t, 0, resp.Percentage)

	list, cerr := env.goals.ListGoals(env.ctx, user.ID)
	require.Nil(t, cerr)
	require.Len(t, list, 1)
	assert.Equal(t, resp.ID, list[0].ID)

	_, cerr = env.goals.CreateGoal(env.ctx, user.ID, &params.CreateGoalRequest{
		Title:        "Nothing",
		TargetAmount: dec(0),
		Deadline:     "2030-01-31",
	})
	require.NotNil(t, cerr)
	assert.Equal(t, http.StatusBadRequest, cerr.StatusCode)
}

func TestGetGoal_OtherUser(t *testing.T) {
	env := setupTest(t)
	owner := env.createUser(t)
	other := env.createUser(t)
	goal := env.createGoal(t, owner.ID, 100)

	_, cerr := env.goals.GetGoal(env.ctx, other.ID, goal.ID)
	require.NotNil(t, cerr)
	assert.Equal(t, http.StatusNotFound, cerr.StatusCode)

	_, cerr = env.goals.GetGoal(env.ctx, owner.ID, uuid.New())
	require.NotNil(t, cerr)
	assert.Equal(t, http.StatusNotFound, cerr.StatusCode)
}

func TestAddContribution_CompletesGoal(t *testing.T) {
	env := setupTest(t)
	user := env.createUser(t)
	goal := env.createGoal(t, user.ID, 1000)

	resp, cerr := env.goals.AddContribution(env.ctx, user.ID, goal.ID, &params.ContributionRequest{Amount: dec(400)})
	require.Nil(t, cerr)
	assert.Equal(t, entity.GoalStatusActive, resp.Goal.Status)
	assertDecimal(t, 40, resp.Goal.Percentage)
	assert.Empty(t, env.sentMessages())

	resp, cerr = env.goals.AddContribution(env.ctx, user.ID, goal.ID, &params.ContributionRequest{Amount: dec(700)})
	require.Nil(t, cerr)
	assert.Equal(t, entity.GoalStatusCompleted, resp.Goal.Status)
	assertDecimal(t, 1100, resp.Goal.CurrentAmount)
	assertDecimal(t, 100, resp.Goal.Percentage, "percentage is capped")
	assertDecimal(t, 0, resp.Goal.Remaining)

	sent := env.sentMessages()
	require.Len(t, sent, 1)
	assert.Equal(t, user.Email, sent[0].To)
	assert.Equal(t, "Goal reached: Emergency fund", sent[0].Subject)

	// Completion is one-way and only notifies once.
	resp, cerr = env.goals.AddContribution(env.ctx, user.ID, goal.ID, &params.ContributionRequest{Amount: dec(1)})
	require.Nil(t, cerr)
	assert.Equal(t, entity.GoalStatusCompleted, resp.Goal.Status)
	assert.Len(t, env.sentMessages(), 1)

	contributions, err := env.goalRepo.ListContributions(env.ctx, goal.ID)
	require.NoError(t, err)
	assert.Len(t, contributions, 3)
}

func TestAddContribution_DoesNotTouchWallet(t *testing.T) {
	env := setupTest(t)
	user := env.createUser(t)
	goal := env.createGoal(t, user.ID, 1000)

	_, cerr := env.wallets.AddTransaction(env.ctx, user.ID, income(500))
	require.Nil(t, cerr)

	_, cerr = env.goals.AddContribution(env.ctx, user.ID, goal.ID, &params.ContributionRequest{Amount: dec(300)})
	require.Nil(t, cerr)

	wallet := env.wallet(t, user.ID)
	assertDecimal(t, 500, wallet.TotalBalance)
	assertDecimal(t, 500, wallet.AvailableBalance)
}

func TestReleaseFunds(t *testing.T) {
	env := setupTest(t)
	user := env.createUser(t)
	goal := env.createGoal(t, user.ID, 5000)

	_, cerr := env.wallets.AddTransaction(env.ctx, user.ID, income(3000))
	require.Nil(t, cerr)
	for _, amount := range []int64{500, 700} {
		_, cerr = env.wallets.AllocateToGoal(env.ctx, user.ID, &params.AllocateRequest{GoalID: goal.ID, Amount: dec(amount)})
		require.Nil(t, cerr)
	}
	assertDecimal(t, 1800, env.wallet(t, user.ID).AvailableBalance)

	resp, cerr := env.goals.ReleaseFunds(env.ctx, user.ID, goal.ID)
	require.Nil(t, cerr)
	assertDecimal(t, 1200, resp.Released)
	assert.Equal(t, entity.GoalStatusCancelled, resp.Goal.Status)
	assertDecimal(t, 0, resp.Goal.CurrentAmount)
	assertDecimal(t, 3000, resp.Wallet.AvailableBalance)
	assertDecimal(t, 3000, resp.Wallet.TotalBalance)

	stored := env.goal(t, user.ID, goal.ID)
	assert.Equal(t, entity.GoalStatusCancelled, stored.Status)

	_, cerr = env.goals.ReleaseFunds(env.ctx, user.ID, goal.ID)
	require.NotNil(t, cerr)
	assert.Equal(t, http.StatusConflict, cerr.StatusCode)

	_, cerr = env.goals.AddContribution(env.ctx, user.ID, goal.ID, &params.ContributionRequest{Amount: dec(10)})
	require.NotNil(t, cerr)
	assert.Equal(t, http.StatusConflict, cerr.StatusCode)
}

func TestUpdateGoal(t *testing.T) {
	env := setupTest(t)
	user := env.createUser(t)
	goal := env.createGoal(t, user.ID, 5000)

	_, cerr := env.goals.AddContribution(env.ctx, user.ID, goal.ID, &params.ContributionRequest{Amount: dec(1000)})
	require.Nil(t, cerr)

	description := "Six months of rent"
	updated, cerr := env.goals.UpdateGoal(env.ctx, user.ID, goal.ID, &params.UpdateGoalRequest{
		Title:        "Rainy day fund",
		Description:  &description,
		TargetAmount: dec(4000),
		Deadline:     "2031-06-30",
	})
	require.Nil(t, cerr)
	assert.Equal(t, "Rainy day fund", updated.Title)
	assert.Equal(t, "2031-06-30", updated.Deadline)
	assertDecimal(t, 1000, updated.CurrentAmount)
	assert.Equal(t, entity.GoalStatusActive, updated.Status)
	assert.Empty(t, env.sentMessages())

	t.Run("lowering the target below the saved amount completes the goal", func(t *testing.T) {
		updated, cerr := env.goals.UpdateGoal(env.ctx, user.ID, goal.ID, &params.UpdateGoalRequest{
			Title:        "Rainy day fund",
			TargetAmount: dec(800),
			Deadline:     "2031-06-30",
		})
		require.Nil(t, cerr)
		assert.Equal(t, entity.GoalStatusCompleted, updated.Status)
		assertDecimal(t, 1000, updated.CurrentAmount)

		sent := env.sentMessages()
		require.Len(t, sent, 1)
		assert.Equal(t, "Goal reached: Rainy day fund", sent[0].Subject)
		assert.Equal(t, entity.GoalStatusCompleted, env.goal(t, user.ID, goal.ID).Status)
	})

	t.Run("rejects a zero target", func(t *testing.T) {
		_, cerr := env.goals.UpdateGoal(env.ctx, user.ID, goal.ID, &params.UpdateGoalRequest{
			Title:        "x",
			TargetAmount: dec(0),
			Deadline:     "2031-06-30",
		})
		require.NotNil(t, cerr)
		assert.Equal(t, http.StatusBadRequest, cerr.StatusCode)
	})

	t.Run("other user's goal", func(t *testing.T) {
		other := env.createUser(t)
		_, cerr := env.goals.UpdateGoal(env.ctx, other.ID, goal.ID, &params.UpdateGoalRequest{
			Title:        "mine now",
			TargetAmount: dec(10),
			Deadline:     "2031-06-30",
		})
		require.NotNil(t, cerr)
		assert.Equal(t, http.StatusNotFound, cerr.StatusCode)
	})
}

func TestDeleteGoal_ReturnsAllocationsToWallet(t *testing.T) {
	env := setupTest(t)
	user := env.createUser(t)
	goal := env.createGoal(t, user.ID, 5000)
	kept := env.createGoal(t, user.ID, 5000)

	_, cerr := env.wallets.AddTransaction(env.ctx, user.ID, income(3000))
	require.Nil(t, cerr)
	for _, amount := range []int64{500, 700} {
		_, cerr = env.wallets.AllocateToGoal(env.ctx, user.ID, &params.AllocateRequest{GoalID: goal.ID, Amount: dec(amount)})
		require.Nil(t, cerr)
	}
	_, cerr = env.wallets.AllocateToGoal(env.ctx, user.ID, &params.AllocateRequest{GoalID: kept.ID, Amount: dec(300)})
	require.Nil(t, cerr)
	_, cerr = env.goals.AddContribution(env.ctx, user.ID, goal.ID, &params.ContributionRequest{Amount: dec(100)})
	require.Nil(t, cerr)
	assertDecimal(t, 1500, env.wallet(t, user.ID).AvailableBalance)

	other := env.createUser(t)
	_, cerr = env.goals.DeleteGoal(env.ctx, other.ID, goal.ID)
	require.NotNil(t, cerr)
	assert.Equal(t, http.StatusNotFound, cerr.StatusCode)

	resp, cerr := env.goals.DeleteGoal(env.ctx, user.ID, goal.ID)
	require.Nil(t, cerr)
	assertDecimal(t, 1200, resp.Released)
	assertDecimal(t, 3000, resp.Wallet.TotalBalance)
	assertDecimal(t, 2700, resp.Wallet.AvailableBalance)

	_, cerr = env.goals.GetGoal(env.ctx, user.ID, goal.ID)
	require.NotNil(t, cerr)
	assert.Equal(t, http.StatusNotFound, cerr.StatusCode)

	contributions, err := env.goalRepo.ListContributions(env.ctx, goal.ID)
	require.NoError(t, err)
	assert.Empty(t, contributions)

	remaining, err := env.walletRepo.SumAllocationsByGoal(env.ctx, goal.ID)
	require.NoError(t, err)
	assert.True(t, remaining.IsZero())
	assertDecimal(t, 300, env.goal(t, user.ID, kept.ID).CurrentAmount)

	_, cerr = env.goals.DeleteGoal(env.ctx, user.ID, goal.ID)
	require.NotNil(t, cerr)
	assert.Equal(t, http.StatusNotFound, cerr.StatusCode)
}
