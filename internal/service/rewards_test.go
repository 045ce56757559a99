package service

import (
	"context"
	"testing"

	"github.com/mkealoha/ainabucks-server/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (e *testEnv) giveBucks(t *testing.T, userID string, amount int64) {
	t.Helper()
	ctx := context.Background()

	admin := e.createUser(t, "granter-"+userID+"@example.com", models.RoleAdmin)
	event := e.createEvent(t, 5, amount) // 1 hour at `amount` bucks/hour

	_, err := e.svc.Register(ctx, userID, event.ID)
	require.NoError(t, err)
	att, err := e.svc.CheckIn(ctx, userID, event.ID, event.CheckInToken)
	require.NoError(t, err)
	_, _, err = e.svc.CheckOut(ctx, userID, event.ID, event.CheckOutToken)
	require.NoError(t, err)
	_, err = e.svc.Award(ctx, admin.ID, att.ID, models.AwardRequest{HoursWorked: 1})
	require.NoError(t, err)
}

func TestRedeemDebitsBalance(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.createUser(t, "volunteer@example.com", models.RoleUser)
	env.giveBucks(t, user.ID, 100)

	reward, err := env.svc.CreateReward(ctx, models.CreateRewardRequest{
		Name:              "Farm stand voucher",
		BucksCost:         30,
		QuantityAvailable: models.UnlimitedQuantity,
	})
	require.NoError(t, err)

	result, err := env.svc.Redeem(ctx, user.ID, reward.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(60), result.Redemption.BucksSpent)
	assert.Equal(t, int64(40), result.RemainingBalance)

	after, err := env.repo.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(40), after.CurrentBucks)
	// Earned total is untouched by redemption
	assert.Equal(t, int64(100), after.TotalBucksEarned)

	// A REDEEMED ledger entry was appended
	txs, err := env.repo.ListTransactions(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, txs, 2)
}

func TestRedeemInsufficientBalance(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.createUser(t, "volunteer@example.com", models.RoleUser)
	env.giveBucks(t, user.ID, 100)

	reward, err := env.svc.CreateReward(ctx, models.CreateRewardRequest{
		Name:              "Koa paddle",
		BucksCost:         50,
		QuantityAvailable: models.UnlimitedQuantity,
	})
	require.NoError(t, err)

	// First redemption succeeds: 100 - 50 = 50
	_, err = env.svc.Redeem(ctx, user.ID, reward.ID, 1)
	require.NoError(t, err)

	// Second succeeds: 50 - 50 = 0
	_, err = env.svc.Redeem(ctx, user.ID, reward.ID, 1)
	require.NoError(t, err)

	// Third fails; the balance is unchanged
	_, err = env.svc.Redeem(ctx, user.ID, reward.ID, 1)
	assert.ErrorIs(t, err, models.ErrInsufficientBalance)

	after, err := env.repo.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), after.CurrentBucks)
}

func TestRedeemOutOfStock(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.createUser(t, "volunteer@example.com", models.RoleUser)
	env.giveBucks(t, user.ID, 500)

	reward, err := env.svc.CreateReward(ctx, models.CreateRewardRequest{
		Name:              "Limited print",
		BucksCost:         10,
		QuantityAvailable: 2,
	})
	require.NoError(t, err)

	_, err = env.svc.Redeem(ctx, user.ID, reward.ID, 2)
	require.NoError(t, err)

	_, err = env.svc.Redeem(ctx, user.ID, reward.ID, 1)
	assert.ErrorIs(t, err, models.ErrOutOfStock)

	stocked, err := env.repo.GetReward(ctx, reward.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stocked.QuantityRedeemed)
}

func TestRedeemUnknownReward(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "volunteer@example.com", models.RoleUser)

	_, err := env.svc.Redeem(context.Background(), user.ID, "no-such-reward", 1)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestReconcileDetectsDrift(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.createUser(t, "volunteer@example.com", models.RoleUser)
	env.giveBucks(t, user.ID, 60)

	// Earn and spend through the proper flows: aggregates match the ledger
	reward, err := env.svc.CreateReward(ctx, models.CreateRewardRequest{
		Name:              "Voucher",
		BucksCost:         25,
		QuantityAvailable: models.UnlimitedQuantity,
	})
	require.NoError(t, err)
	_, err = env.svc.Redeem(ctx, user.ID, reward.ID, 1)
	require.NoError(t, err)

	report, err := env.svc.ReconcileUser(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, report.Consistent)
	assert.Equal(t, int64(60), report.LedgerEarned)
	assert.Equal(t, int64(25), report.LedgerRedeemed)
	assert.Equal(t, int64(35), report.LedgerBalance)
	assert.Equal(t, report.StoredBalance, report.LedgerBalance)
}

func TestReviewUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	pending := &models.User{
		Email:          "pending@example.com",
		Name:           "Pending User",
		Password:       "hashed",
		Role:           models.RoleUser,
		ApprovalStatus: models.ApprovalPending,
	}
	require.NoError(t, env.repo.CreateUser(ctx, pending))

	users, err := env.svc.ListPendingUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)

	require.NoError(t, env.svc.ReviewUser(ctx, pending.ID, models.ApprovalApproved))

	// A second review fails: approval transitions exactly once
	err = env.svc.ReviewUser(ctx, pending.ID, models.ApprovalRejected)
	assert.ErrorIs(t, err, models.ErrNotPending)

	err = env.svc.ReviewUser(ctx, "no-such-user", models.ApprovalApproved)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestSignUpDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	req := models.SignUpRequest{
		Email:    "dup@example.com",
		Password: "password123",
		Name:     "Dup User",
	}

	resp, err := env.svc.SignUp(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, models.ApprovalPending, resp.ApprovalStatus)

	_, err = env.svc.SignUp(ctx, req)
	assert.ErrorIs(t, err, models.ErrEmailExists)
}
