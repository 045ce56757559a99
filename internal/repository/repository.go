package repository

import (
	"context"
	"time"

	"github.com/mkealoha/ainabucks-server/internal/models"
)

// AwardParams carries the admin-finalized values for one award.
type AwardParams struct {
	AttendanceID string
	HoursWorked  float64
	AdminID      string
	AdminNotes   string
}

// AwardResult reports what a committed award granted.
type AwardResult struct {
	Amount      int64
	HoursWorked float64
}

// RedeemParams identifies one redemption attempt.
type RedeemParams struct {
	UserID   string
	RewardID string
	Quantity int
}

// RedeemResult reports a committed redemption.
type RedeemResult struct {
	Redemption       *models.RewardRedemption
	RemainingBalance int64
}

// LedgerTotals are the sums recomputed from bucks_transactions, used to audit
// the materialized user aggregates.
type LedgerTotals struct {
	Earned   int64
	Redeemed int64
	Hours    float64
}

// Repository interface defines the methods that any repository implementation
// must satisfy. Multi-statement writes (registration, award, redemption) are
// single methods so implementations can make them atomic.
type Repository interface {
	// User operations
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	ListUsersByApproval(ctx context.Context, status models.ApprovalStatus) ([]models.User, error)
	UpdateUserApproval(ctx context.Context, userID string, status models.ApprovalStatus) error

	// Event operations
	CreateEvent(ctx context.Context, event *models.Event) error
	UpdateEvent(ctx context.Context, event *models.Event) error
	DeleteEvent(ctx context.Context, eventID string) error
	GetEvent(ctx context.Context, eventID string) (*models.Event, error)
	ListEvents(ctx context.Context) ([]models.Event, error)

	// Registration ledger operations
	CreateRegistration(ctx context.Context, reg *models.Registration) error
	CancelRegistration(ctx context.Context, userID, eventID string) error
	GetActiveRegistration(ctx context.Context, userID, eventID string) (*models.Registration, error)

	// Attendance operations
	CreateAttendance(ctx context.Context, att *models.Attendance) error
	GetAttendance(ctx context.Context, userID, eventID string) (*models.Attendance, error)
	GetAttendanceByID(ctx context.Context, id string) (*models.Attendance, error)
	CompleteAttendance(ctx context.Context, attendanceID string, checkOutTime time.Time) error
	ListEventAttendance(ctx context.Context, eventID string) ([]models.Attendance, error)

	// Award engine
	AwardAttendance(ctx context.Context, params AwardParams) (*AwardResult, error)

	// Reward operations
	CreateReward(ctx context.Context, reward *models.Reward) error
	UpdateReward(ctx context.Context, reward *models.Reward) error
	GetReward(ctx context.Context, rewardID string) (*models.Reward, error)
	ListRewards(ctx context.Context) ([]models.Reward, error)
	RedeemReward(ctx context.Context, params RedeemParams) (*RedeemResult, error)

	// Ledger operations
	ListTransactions(ctx context.Context, userID string) ([]models.BucksTransaction, error)
	LedgerTotals(ctx context.Context, userID string) (*LedgerTotals, error)
}
