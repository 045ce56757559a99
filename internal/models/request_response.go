package models

import "time"

// Request models
type SignUpRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Name     string `json:"name" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type CreateEventRequest struct {
	Name             string    `json:"name" binding:"required"`
	Description      string    `json:"description"`
	Location         string    `json:"location"`
	StartTime        time.Time `json:"startTime" binding:"required"`
	EndTime          time.Time `json:"endTime" binding:"required"`
	VolunteersNeeded int       `json:"volunteersNeeded" binding:"required,gt=0"`
	BucksPerHour     int64     `json:"bucksPerHour" binding:"required,gt=0"`
	TotalBucksCap    int64     `json:"ainaBucks" binding:"gte=0"`
}

type UpdateEventRequest struct {
	Name             string    `json:"name" binding:"required"`
	Description      string    `json:"description"`
	Location         string    `json:"location"`
	StartTime        time.Time `json:"startTime" binding:"required"`
	EndTime          time.Time `json:"endTime" binding:"required"`
	VolunteersNeeded int       `json:"volunteersNeeded" binding:"required,gt=0"`
	BucksPerHour     int64     `json:"bucksPerHour" binding:"required,gt=0"`
	TotalBucksCap    int64     `json:"ainaBucks" binding:"gte=0"`
}

type CheckInRequest struct {
	Token string `json:"token" binding:"required"`
}

type CheckOutRequest struct {
	Token string `json:"token" binding:"required"`
}

type AwardRequest struct {
	HoursWorked float64 `json:"hoursWorked" binding:"required,gt=0"`
	AdminNotes  string  `json:"adminNotes"`
}

type ReviewUserRequest struct {
	Status ApprovalStatus `json:"status" binding:"required,oneof=APPROVED REJECTED"`
}

type CreateRewardRequest struct {
	Name              string `json:"name" binding:"required"`
	Description       string `json:"description"`
	BucksCost         int64  `json:"ainaBucksCost" binding:"required,gt=0"`
	QuantityAvailable int    `json:"quantityAvailable" binding:"gte=-1"`
}

type RedeemRequest struct {
	Quantity int `json:"quantity"`
}

// Response models
type AuthResponse struct {
	Status         string         `json:"status"`
	UserID         string         `json:"userId,omitempty"`
	Email          string         `json:"email,omitempty"`
	Name           string         `json:"name,omitempty"`
	Role           UserRole       `json:"role,omitempty"`
	ApprovalStatus ApprovalStatus `json:"approvalStatus,omitempty"`
	Token          string         `json:"token,omitempty"`
	ExpiresIn      int            `json:"expiresIn,omitempty"`
}

type RegistrationResponse struct {
	Status       string        `json:"status"`
	Registration *Registration `json:"registration,omitempty"`
	Message      string        `json:"message,omitempty"`
}

type CheckInResponse struct {
	Status     string      `json:"status"`
	Attendance *Attendance `json:"attendance"`
}

type CheckOutResponse struct {
	Status         string      `json:"status"`
	Attendance     *Attendance `json:"attendance"`
	EstimatedHours float64     `json:"estimatedHours"`
}

type AwardResponse struct {
	Status      string  `json:"status"`
	AinaBucks   int64   `json:"ainaBucks"`
	HoursWorked float64 `json:"hoursWorked"`
}

type RedeemResponse struct {
	Status           string            `json:"status"`
	Redemption       *RewardRedemption `json:"redemption"`
	RemainingBalance int64             `json:"remainingBalance"`
}

// ReconcileResponse reports drift between the stored user aggregates and the
// sums recomputed from the transaction ledger.
type ReconcileResponse struct {
	Status         string  `json:"status"`
	UserID         string  `json:"userId"`
	LedgerEarned   int64   `json:"ledgerEarned"`
	LedgerRedeemed int64   `json:"ledgerRedeemed"`
	LedgerBalance  int64   `json:"ledgerBalance"`
	LedgerHours    float64 `json:"ledgerHours"`
	StoredEarned   int64   `json:"storedEarned"`
	StoredBalance  int64   `json:"storedBalance"`
	StoredHours    float64 `json:"storedHours"`
	Consistent     bool    `json:"consistent"`
}

type ErrorResponse struct {
	Status  string `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}
