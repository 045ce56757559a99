package models

import (
	"time"
)

// UserRole determines which operations a session may perform
type UserRole string

// ApprovalStatus tracks the admin review of a new account
type ApprovalStatus string

// RegistrationStatus tracks a user's intent to attend an event
type RegistrationStatus string

// AttendanceStatus tracks the check-in/check-out state machine
type AttendanceStatus string

// TransactionType tags entries in the ʻĀina Bucks ledger
type TransactionType string

const (
	RoleUser  UserRole = "USER"
	RoleAdmin UserRole = "ADMIN"

	ApprovalPending  ApprovalStatus = "PENDING"
	ApprovalApproved ApprovalStatus = "APPROVED"
	ApprovalRejected ApprovalStatus = "REJECTED"

	RegistrationRegistered RegistrationStatus = "REGISTERED"
	RegistrationCancelled  RegistrationStatus = "CANCELLED"
	RegistrationAttended   RegistrationStatus = "ATTENDED"

	AttendanceCheckedIn  AttendanceStatus = "CHECKED_IN"
	AttendanceCheckedOut AttendanceStatus = "CHECKED_OUT"

	TransactionEarned   TransactionType = "EARNED"
	TransactionRedeemed TransactionType = "REDEEMED"
)

// UnlimitedQuantity marks a reward with no stock limit
const UnlimitedQuantity = -1

// User represents a volunteer or administrator account. The three aggregate
// counters are a materialized view of the bucks_transactions ledger and are
// mutated only inside the award and redemption transactions.
type User struct {
	ID               string         `db:"id" json:"id"`
	Email            string         `db:"email" json:"email"`
	Name             string         `db:"name" json:"name"`
	Password         string         `db:"password" json:"-"` // Password hash, not returned in JSON
	Role             UserRole       `db:"role" json:"role"`
	ApprovalStatus   ApprovalStatus `db:"approval_status" json:"approvalStatus"`
	TotalBucksEarned int64          `db:"total_bucks_earned" json:"totalAinaBucksEarned"`
	CurrentBucks     int64          `db:"current_bucks" json:"currentAinaBucks"`
	TotalHours       float64        `db:"total_hours" json:"totalHoursVolunteered"`
	CreatedAt        time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt        time.Time      `db:"updated_at" json:"updatedAt"`
}

// Event represents a volunteer opportunity. The two tokens are opaque bearer
// capabilities provisioned at creation; presenting the matching QR token is
// the only way to check in or out.
type Event struct {
	ID               string    `db:"id" json:"id"`
	Name             string    `db:"name" json:"name"`
	Description      string    `db:"description" json:"description"`
	Location         string    `db:"location" json:"location"`
	StartTime        time.Time `db:"start_time" json:"startTime"`
	EndTime          time.Time `db:"end_time" json:"endTime"`
	VolunteersNeeded int       `db:"volunteers_needed" json:"volunteersNeeded"`
	BucksPerHour     int64     `db:"bucks_per_hour" json:"bucksPerHour"`
	TotalBucksCap    int64     `db:"total_bucks_cap" json:"ainaBucks"`
	CheckInToken     string    `db:"check_in_token" json:"-"`
	CheckOutToken    string    `db:"check_out_token" json:"-"`
	CreatedBy        string    `db:"created_by" json:"createdBy"`
	CreatedAt        time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt        time.Time `db:"updated_at" json:"updatedAt"`
}

// Registration records a user's intent to attend an event. At most one row
// with status REGISTERED may exist per (user, event) pair.
type Registration struct {
	ID        string             `db:"id" json:"id"`
	UserID    string             `db:"user_id" json:"userId"`
	EventID   string             `db:"event_id" json:"eventId"`
	Status    RegistrationStatus `db:"status" json:"status"`
	CreatedAt time.Time          `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time          `db:"updated_at" json:"updatedAt"`
}

// Attendance records check-in/check-out timestamps for one user at one event.
// Awarded is the at-most-once guard for the award engine; HoursWorked is the
// admin-finalized value and stays nil until the award commits.
type Attendance struct {
	ID             string           `db:"id" json:"id"`
	UserID         string           `db:"user_id" json:"userId"`
	EventID        string           `db:"event_id" json:"eventId"`
	RegistrationID string           `db:"registration_id" json:"registrationId"`
	CheckInTime    time.Time        `db:"check_in_time" json:"checkInTime"`
	CheckOutTime   *time.Time       `db:"check_out_time" json:"checkOutTime,omitempty"`
	HoursWorked    *float64         `db:"hours_worked" json:"hoursWorked,omitempty"`
	Awarded        bool             `db:"awarded" json:"awarded"`
	Status         AttendanceStatus `db:"status" json:"status"`
	AdminNotes     string           `db:"admin_notes" json:"adminNotes,omitempty"`
	CreatedAt      time.Time        `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time        `db:"updated_at" json:"updatedAt"`
}

// BucksTransaction is an append-only ledger entry. Rows are never updated or
// deleted, so the user aggregates can always be recomputed from them.
type BucksTransaction struct {
	ID          string          `db:"id" json:"id"`
	UserID      string          `db:"user_id" json:"userId"`
	EventID     *string         `db:"event_id" json:"eventId,omitempty"`
	Type        TransactionType `db:"type" json:"type"`
	Amount      int64           `db:"amount" json:"amount"`
	HoursWorked *float64        `db:"hours_worked" json:"hoursWorked,omitempty"`
	Description string          `db:"description" json:"description"`
	ApprovedBy  *string         `db:"approved_by" json:"approvedBy,omitempty"`
	CreatedAt   time.Time       `db:"created_at" json:"createdAt"`
}

// Reward is a catalog item users can redeem bucks for.
// QuantityAvailable of -1 means unlimited stock.
type Reward struct {
	ID                string    `db:"id" json:"id"`
	Name              string    `db:"name" json:"name"`
	Description       string    `db:"description" json:"description"`
	BucksCost         int64     `db:"bucks_cost" json:"ainaBucksCost"`
	QuantityAvailable int       `db:"quantity_available" json:"quantityAvailable"`
	QuantityRedeemed  int       `db:"quantity_redeemed" json:"quantityRedeemed"`
	CreatedAt         time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt         time.Time `db:"updated_at" json:"updatedAt"`
}

// RewardRedemption records one successful redemption.
type RewardRedemption struct {
	ID         string    `db:"id" json:"id"`
	UserID     string    `db:"user_id" json:"userId"`
	RewardID   string    `db:"reward_id" json:"rewardId"`
	Quantity   int       `db:"quantity" json:"quantity"`
	BucksSpent int64     `db:"bucks_spent" json:"ainaBucksSpent"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}
