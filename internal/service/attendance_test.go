package service

import (
	"context"
	"testing"

	"github.com/mkealoha/ainabucks-server/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndCancel(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.createUser(t, "volunteer@example.com", models.RoleUser)
	event := env.createEvent(t, 5, 15)

	reg, err := env.svc.Register(ctx, user.ID, event.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RegistrationRegistered, reg.Status)

	// Registering twice fails while the first registration is active
	_, err = env.svc.Register(ctx, user.ID, event.ID)
	assert.ErrorIs(t, err, models.ErrAlreadyRegistered)

	// Cancelling flips the row to CANCELLED
	require.NoError(t, env.svc.Cancel(ctx, user.ID, event.ID))
	active, err := env.repo.GetActiveRegistration(ctx, user.ID, event.ID)
	require.NoError(t, err)
	assert.Nil(t, active)

	// Cancelling again, with nothing to cancel, is a silent no-op
	assert.NoError(t, env.svc.Cancel(ctx, user.ID, event.ID))

	// After cancelling, the user can register again
	_, err = env.svc.Register(ctx, user.ID, event.ID)
	assert.NoError(t, err)
}

func TestRegisterUnknownEvent(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "volunteer@example.com", models.RoleUser)

	_, err := env.svc.Register(context.Background(), user.ID, "no-such-event")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestRegisterCapacity(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	event := env.createEvent(t, 2, 15)

	first := env.createUser(t, "first@example.com", models.RoleUser)
	second := env.createUser(t, "second@example.com", models.RoleUser)
	third := env.createUser(t, "third@example.com", models.RoleUser)

	_, err := env.svc.Register(ctx, first.ID, event.ID)
	require.NoError(t, err)
	_, err = env.svc.Register(ctx, second.ID, event.ID)
	require.NoError(t, err)

	// Capacity 2 reached: the third sequential registration fails
	_, err = env.svc.Register(ctx, third.ID, event.ID)
	assert.ErrorIs(t, err, models.ErrEventFull)

	// A cancellation frees the slot
	require.NoError(t, env.svc.Cancel(ctx, first.ID, event.ID))
	_, err = env.svc.Register(ctx, third.ID, event.ID)
	assert.NoError(t, err)
}

func TestCheckInTokenBinding(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.createUser(t, "volunteer@example.com", models.RoleUser)
	event := env.createEvent(t, 5, 15)

	// Wrong token fails regardless of registration state
	_, err := env.svc.CheckIn(ctx, user.ID, event.ID, "wrong-token")
	assert.ErrorIs(t, err, models.ErrInvalidToken)

	_, err = env.svc.Register(ctx, user.ID, event.ID)
	require.NoError(t, err)

	_, err = env.svc.CheckIn(ctx, user.ID, event.ID, "wrong-token")
	assert.ErrorIs(t, err, models.ErrInvalidToken)

	// The check-out token is not valid for check-in
	_, err = env.svc.CheckIn(ctx, user.ID, event.ID, event.CheckOutToken)
	assert.ErrorIs(t, err, models.ErrInvalidToken)
}

func TestCheckInRequiresRegistration(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.createUser(t, "volunteer@example.com", models.RoleUser)
	event := env.createEvent(t, 5, 15)

	_, err := env.svc.CheckIn(ctx, user.ID, event.ID, event.CheckInToken)
	assert.ErrorIs(t, err, models.ErrNotRegistered)
}

func TestCheckInAndOutStateMachine(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.createUser(t, "volunteer@example.com", models.RoleUser)
	event := env.createEvent(t, 5, 15)

	_, err := env.svc.Register(ctx, user.ID, event.ID)
	require.NoError(t, err)

	// Check-out before check-in fails
	_, _, err = env.svc.CheckOut(ctx, user.ID, event.ID, event.CheckOutToken)
	assert.ErrorIs(t, err, models.ErrNotCheckedIn)

	att, err := env.svc.CheckIn(ctx, user.ID, event.ID, event.CheckInToken)
	require.NoError(t, err)
	assert.Equal(t, models.AttendanceCheckedIn, att.Status)
	assert.Nil(t, att.CheckOutTime)
	assert.Nil(t, att.HoursWorked)

	// Duplicate check-in is rejected
	_, err = env.svc.CheckIn(ctx, user.ID, event.ID, event.CheckInToken)
	assert.ErrorIs(t, err, models.ErrAlreadyCheckedIn)

	out, estimate, err := env.svc.CheckOut(ctx, user.ID, event.ID, event.CheckOutToken)
	require.NoError(t, err)
	assert.Equal(t, models.AttendanceCheckedOut, out.Status)
	assert.NotNil(t, out.CheckOutTime)
	assert.Nil(t, out.HoursWorked) // hours stay unset until the admin awards
	assert.GreaterOrEqual(t, estimate, 0.0)

	// Duplicate check-out is rejected
	_, _, err = env.svc.CheckOut(ctx, user.ID, event.ID, event.CheckOutToken)
	assert.ErrorIs(t, err, models.ErrAlreadyCheckedOut)
}

func TestAwardAtMostOnce(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	admin := env.createUser(t, "admin@example.com", models.RoleAdmin)
	user := env.createUser(t, "volunteer@example.com", models.RoleUser)
	event := env.createEvent(t, 5, 15)

	_, err := env.svc.Register(ctx, user.ID, event.ID)
	require.NoError(t, err)
	att, err := env.svc.CheckIn(ctx, user.ID, event.ID, event.CheckInToken)
	require.NoError(t, err)
	_, _, err = env.svc.CheckOut(ctx, user.ID, event.ID, event.CheckOutToken)
	require.NoError(t, err)

	result, err := env.svc.Award(ctx, admin.ID, att.ID, models.AwardRequest{HoursWorked: 4})
	require.NoError(t, err)
	assert.Equal(t, int64(60), result.Amount)
	assert.Equal(t, 4.0, result.HoursWorked)

	// The second award attempt fails and changes nothing
	_, err = env.svc.Award(ctx, admin.ID, att.ID, models.AwardRequest{HoursWorked: 4})
	assert.ErrorIs(t, err, models.ErrAlreadyAwarded)

	after, err := env.repo.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(60), after.CurrentBucks)
	assert.Equal(t, int64(60), after.TotalBucksEarned)
	assert.Equal(t, 4.0, after.TotalHours)

	txs, err := env.repo.ListTransactions(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, txs, 1)
}

func TestAwardRequiresAdmin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := env.createUser(t, "volunteer@example.com", models.RoleUser)
	event := env.createEvent(t, 5, 15)

	_, err := env.svc.Register(ctx, user.ID, event.ID)
	require.NoError(t, err)
	att, err := env.svc.CheckIn(ctx, user.ID, event.ID, event.CheckInToken)
	require.NoError(t, err)

	_, err = env.svc.Award(ctx, user.ID, att.ID, models.AwardRequest{HoursWorked: 4})
	assert.ErrorIs(t, err, models.ErrUnauthorized)

	_, err = env.svc.Award(ctx, "no-such-admin", att.ID, models.AwardRequest{HoursWorked: 4})
	assert.ErrorIs(t, err, models.ErrUnauthorized)
}

func TestAwardUnknownAttendance(t *testing.T) {
	env := newTestEnv(t)
	admin := env.createUser(t, "admin@example.com", models.RoleAdmin)

	_, err := env.svc.Award(context.Background(), admin.ID, "no-such-attendance", models.AwardRequest{HoursWorked: 2})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

// The full lifecycle: register -> check in -> check out -> award 3h at 20
// bucks/hour. Verifies every observable effect of the award transaction.
func TestAttendanceLifecycleScenario(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	admin := env.createUser(t, "admin@example.com", models.RoleAdmin)
	user := env.createUser(t, "volunteer@example.com", models.RoleUser)
	event := env.createEvent(t, 5, 20)

	reg, err := env.svc.Register(ctx, user.ID, event.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RegistrationRegistered, reg.Status)

	att, err := env.svc.CheckIn(ctx, user.ID, event.ID, event.CheckInToken)
	require.NoError(t, err)
	assert.Equal(t, models.AttendanceCheckedIn, att.Status)

	out, _, err := env.svc.CheckOut(ctx, user.ID, event.ID, event.CheckOutToken)
	require.NoError(t, err)
	assert.Equal(t, models.AttendanceCheckedOut, out.Status)
	assert.Nil(t, out.HoursWorked)

	result, err := env.svc.Award(ctx, admin.ID, att.ID, models.AwardRequest{
		HoursWorked: 3,
		AdminNotes:  "great work on the loʻi wall",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(60), result.Amount)

	// Attendance is finalized
	finalAtt, err := env.repo.GetAttendanceByID(ctx, att.ID)
	require.NoError(t, err)
	require.NotNil(t, finalAtt.HoursWorked)
	assert.Equal(t, 3.0, *finalAtt.HoursWorked)
	assert.True(t, finalAtt.Awarded)
	assert.Equal(t, "great work on the loʻi wall", finalAtt.AdminNotes)

	// An EARNED ledger entry of amount 60 exists, approved by the admin
	txs, err := env.repo.ListTransactions(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, models.TransactionEarned, txs[0].Type)
	assert.Equal(t, int64(60), txs[0].Amount)
	require.NotNil(t, txs[0].ApprovedBy)
	assert.Equal(t, admin.ID, *txs[0].ApprovedBy)

	// The registration moved to ATTENDED, so no active registration remains
	active, err := env.repo.GetActiveRegistration(ctx, user.ID, event.ID)
	require.NoError(t, err)
	assert.Nil(t, active)

	// The user's balance grew by 60
	finalUser, err := env.repo.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(60), finalUser.CurrentBucks)
	assert.Equal(t, int64(60), finalUser.TotalBucksEarned)
	assert.Equal(t, 3.0, finalUser.TotalHours)
}

func TestAwardHalfUpRounding(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	admin := env.createUser(t, "admin@example.com", models.RoleAdmin)
	user := env.createUser(t, "volunteer@example.com", models.RoleUser)
	event := env.createEvent(t, 5, 15)

	_, err := env.svc.Register(ctx, user.ID, event.ID)
	require.NoError(t, err)
	att, err := env.svc.CheckIn(ctx, user.ID, event.ID, event.CheckInToken)
	require.NoError(t, err)
	_, _, err = env.svc.CheckOut(ctx, user.ID, event.ID, event.CheckOutToken)
	require.NoError(t, err)

	// 2.5h * 15 bucks/hour = 37.5 -> 38
	result, err := env.svc.Award(ctx, admin.ID, att.ID, models.AwardRequest{HoursWorked: 2.5})
	require.NoError(t, err)
	assert.Equal(t, int64(38), result.Amount)
}
