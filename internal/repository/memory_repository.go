package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mkealoha/ainabucks-server/internal/models"
)

// MemoryRepository is an in-memory Repository used by the test suites. A
// single mutex serializes every operation, which gives the multi-statement
// methods the same all-or-nothing behavior the Postgres transactions provide.
type MemoryRepository struct {
	mu sync.Mutex

	users         map[string]models.User
	events        map[string]models.Event
	registrations map[string]models.Registration
	attendance    map[string]models.Attendance
	transactions  []models.BucksTransaction
	rewards       map[string]models.Reward
	redemptions   map[string]models.RewardRedemption
}

// NewMemoryRepository creates an empty in-memory repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		users:         make(map[string]models.User),
		events:        make(map[string]models.Event),
		registrations: make(map[string]models.Registration),
		attendance:    make(map[string]models.Attendance),
		rewards:       make(map[string]models.Reward),
		redemptions:   make(map[string]models.RewardRedemption),
	}
}

// User methods
func (r *MemoryRepository) CreateUser(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == user.Email {
			return models.ErrEmailExists
		}
	}

	if user.ID == "" {
		user.ID = uuid.New().String()
	}

	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	r.users[user.ID] = *user
	return nil
}

func (r *MemoryRepository) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == email {
			user := u
			return &user, nil
		}
	}
	return nil, nil
}

func (r *MemoryRepository) GetUserByID(_ context.Context, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if u, ok := r.users[id]; ok {
		user := u
		return &user, nil
	}
	return nil, nil
}

func (r *MemoryRepository) ListUsersByApproval(_ context.Context, status models.ApprovalStatus) ([]models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var users []models.User
	for _, u := range r.users {
		if u.ApprovalStatus == status {
			users = append(users, u)
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.Before(users[j].CreatedAt) })
	return users, nil
}

func (r *MemoryRepository) UpdateUserApproval(_ context.Context, userID string, status models.ApprovalStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[userID]
	if !ok {
		return models.ErrNotFound
	}
	if user.ApprovalStatus != models.ApprovalPending {
		return models.ErrNotPending
	}

	user.ApprovalStatus = status
	user.UpdatedAt = time.Now().UTC()
	r.users[userID] = user
	return nil
}

// Event methods
func (r *MemoryRepository) CreateEvent(_ context.Context, event *models.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if event.ID == "" {
		event.ID = uuid.New().String()
	}

	now := time.Now().UTC()
	event.CreatedAt = now
	event.UpdatedAt = now

	r.events[event.ID] = *event
	return nil
}

func (r *MemoryRepository) UpdateEvent(_ context.Context, event *models.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.events[event.ID]
	if !ok {
		return models.ErrNotFound
	}

	// Tokens and provenance are immutable after creation
	event.CheckInToken = existing.CheckInToken
	event.CheckOutToken = existing.CheckOutToken
	event.CreatedBy = existing.CreatedBy
	event.CreatedAt = existing.CreatedAt
	event.UpdatedAt = time.Now().UTC()

	r.events[event.ID] = *event
	return nil
}

func (r *MemoryRepository) DeleteEvent(_ context.Context, eventID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.events[eventID]; !ok {
		return models.ErrNotFound
	}
	delete(r.events, eventID)
	return nil
}

func (r *MemoryRepository) GetEvent(_ context.Context, eventID string) (*models.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.events[eventID]; ok {
		event := e
		return &event, nil
	}
	return nil, nil
}

func (r *MemoryRepository) ListEvents(_ context.Context) ([]models.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	events := make([]models.Event, 0, len(r.events))
	for _, e := range r.events {
		events = append(events, e)
	}
	sort.Slice(events, func(i, j int) bool { return events[i].StartTime.Before(events[j].StartTime) })
	return events, nil
}

// Registration ledger methods
func (r *MemoryRepository) CreateRegistration(_ context.Context, reg *models.Registration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	event, ok := r.events[reg.EventID]
	if !ok {
		return models.ErrNotFound
	}

	registered := 0
	for _, existing := range r.registrations {
		if existing.EventID != reg.EventID || existing.Status != models.RegistrationRegistered {
			continue
		}
		if existing.UserID == reg.UserID {
			return models.ErrAlreadyRegistered
		}
		registered++
	}

	if registered >= event.VolunteersNeeded {
		return models.ErrEventFull
	}

	if reg.ID == "" {
		reg.ID = uuid.New().String()
	}
	reg.Status = models.RegistrationRegistered

	now := time.Now().UTC()
	reg.CreatedAt = now
	reg.UpdatedAt = now

	r.registrations[reg.ID] = *reg
	return nil
}

func (r *MemoryRepository) CancelRegistration(_ context.Context, userID, eventID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, reg := range r.registrations {
		if reg.UserID == userID && reg.EventID == eventID && reg.Status == models.RegistrationRegistered {
			reg.Status = models.RegistrationCancelled
			reg.UpdatedAt = time.Now().UTC()
			r.registrations[id] = reg
			return nil
		}
	}
	// Nothing to cancel is a silent no-op
	return nil
}

func (r *MemoryRepository) GetActiveRegistration(_ context.Context, userID, eventID string) (*models.Registration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, reg := range r.registrations {
		if reg.UserID == userID && reg.EventID == eventID && reg.Status == models.RegistrationRegistered {
			out := reg
			return &out, nil
		}
	}
	return nil, nil
}

// Attendance methods
func (r *MemoryRepository) CreateAttendance(_ context.Context, att *models.Attendance) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.attendance {
		if existing.UserID == att.UserID && existing.EventID == att.EventID {
			return models.ErrAlreadyCheckedIn
		}
	}

	if att.ID == "" {
		att.ID = uuid.New().String()
	}

	now := time.Now().UTC()
	att.CreatedAt = now
	att.UpdatedAt = now

	r.attendance[att.ID] = *att
	return nil
}

func (r *MemoryRepository) GetAttendance(_ context.Context, userID, eventID string) (*models.Attendance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, att := range r.attendance {
		if att.UserID == userID && att.EventID == eventID {
			out := att
			return &out, nil
		}
	}
	return nil, nil
}

func (r *MemoryRepository) GetAttendanceByID(_ context.Context, id string) (*models.Attendance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if att, ok := r.attendance[id]; ok {
		out := att
		return &out, nil
	}
	return nil, nil
}

func (r *MemoryRepository) CompleteAttendance(_ context.Context, attendanceID string, checkOutTime time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	att, ok := r.attendance[attendanceID]
	if !ok {
		return models.ErrNotFound
	}
	if att.CheckOutTime != nil {
		return models.ErrAlreadyCheckedOut
	}

	att.CheckOutTime = &checkOutTime
	att.Status = models.AttendanceCheckedOut
	att.UpdatedAt = time.Now().UTC()
	r.attendance[attendanceID] = att
	return nil
}

func (r *MemoryRepository) ListEventAttendance(_ context.Context, eventID string) ([]models.Attendance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var rows []models.Attendance
	for _, att := range r.attendance {
		if att.EventID == eventID {
			rows = append(rows, att)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].CheckInTime.Before(rows[j].CheckInTime) })
	return rows, nil
}

// AwardAttendance mirrors the Postgres transaction: every write below happens
// under the same lock, so either all of them land or none do.
func (r *MemoryRepository) AwardAttendance(_ context.Context, params AwardParams) (*AwardResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	att, ok := r.attendance[params.AttendanceID]
	if !ok {
		return nil, models.ErrNotFound
	}
	if att.Awarded {
		return nil, models.ErrAlreadyAwarded
	}

	event, ok := r.events[att.EventID]
	if !ok {
		return nil, models.ErrNotFound
	}
	user, ok := r.users[att.UserID]
	if !ok {
		return nil, models.ErrNotFound
	}

	amount := models.AwardAmount(params.HoursWorked, event.BucksPerHour)
	now := time.Now().UTC()
	hours := params.HoursWorked

	att.HoursWorked = &hours
	att.Awarded = true
	att.Status = models.AttendanceCheckedOut
	att.AdminNotes = params.AdminNotes
	att.UpdatedAt = now
	r.attendance[att.ID] = att

	eventID := att.EventID
	adminID := params.AdminID
	r.transactions = append(r.transactions, models.BucksTransaction{
		ID:          uuid.New().String(),
		UserID:      att.UserID,
		EventID:     &eventID,
		Type:        models.TransactionEarned,
		Amount:      amount,
		HoursWorked: &hours,
		Description: fmt.Sprintf("Earned %d ʻĀina Bucks for %.2f hours at %s", amount, hours, event.Name),
		ApprovedBy:  &adminID,
		CreatedAt:   now,
	})

	user.TotalBucksEarned += amount
	user.CurrentBucks += amount
	user.TotalHours += hours
	user.UpdatedAt = now
	r.users[user.ID] = user

	if reg, ok := r.registrations[att.RegistrationID]; ok {
		reg.Status = models.RegistrationAttended
		reg.UpdatedAt = now
		r.registrations[reg.ID] = reg
	}

	return &AwardResult{Amount: amount, HoursWorked: hours}, nil
}

// Reward methods
func (r *MemoryRepository) CreateReward(_ context.Context, reward *models.Reward) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if reward.ID == "" {
		reward.ID = uuid.New().String()
	}

	now := time.Now().UTC()
	reward.CreatedAt = now
	reward.UpdatedAt = now

	r.rewards[reward.ID] = *reward
	return nil
}

func (r *MemoryRepository) UpdateReward(_ context.Context, reward *models.Reward) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.rewards[reward.ID]
	if !ok {
		return models.ErrNotFound
	}

	reward.QuantityRedeemed = existing.QuantityRedeemed
	reward.CreatedAt = existing.CreatedAt
	reward.UpdatedAt = time.Now().UTC()
	r.rewards[reward.ID] = *reward
	return nil
}

func (r *MemoryRepository) GetReward(_ context.Context, rewardID string) (*models.Reward, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if reward, ok := r.rewards[rewardID]; ok {
		out := reward
		return &out, nil
	}
	return nil, nil
}

func (r *MemoryRepository) ListRewards(_ context.Context) ([]models.Reward, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rewards := make([]models.Reward, 0, len(r.rewards))
	for _, reward := range r.rewards {
		rewards = append(rewards, reward)
	}
	sort.Slice(rewards, func(i, j int) bool { return rewards[i].BucksCost < rewards[j].BucksCost })
	return rewards, nil
}

func (r *MemoryRepository) RedeemReward(_ context.Context, params RedeemParams) (*RedeemResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[params.UserID]
	if !ok {
		return nil, models.ErrNotFound
	}
	reward, ok := r.rewards[params.RewardID]
	if !ok {
		return nil, models.ErrNotFound
	}

	total := reward.BucksCost * int64(params.Quantity)
	if user.CurrentBucks < total {
		return nil, models.ErrInsufficientBalance
	}
	if reward.QuantityAvailable != models.UnlimitedQuantity &&
		reward.QuantityAvailable-reward.QuantityRedeemed < params.Quantity {
		return nil, models.ErrOutOfStock
	}

	now := time.Now().UTC()

	user.CurrentBucks -= total
	user.UpdatedAt = now
	r.users[user.ID] = user

	reward.QuantityRedeemed += params.Quantity
	reward.UpdatedAt = now
	r.rewards[reward.ID] = reward

	redemption := models.RewardRedemption{
		ID:         uuid.New().String(),
		UserID:     params.UserID,
		RewardID:   params.RewardID,
		Quantity:   params.Quantity,
		BucksSpent: total,
		CreatedAt:  now,
	}
	r.redemptions[redemption.ID] = redemption

	r.transactions = append(r.transactions, models.BucksTransaction{
		ID:          uuid.New().String(),
		UserID:      params.UserID,
		Type:        models.TransactionRedeemed,
		Amount:      total,
		Description: fmt.Sprintf("Redeemed %dx %s", params.Quantity, reward.Name),
		CreatedAt:   now,
	})

	out := redemption
	return &RedeemResult{
		Redemption:       &out,
		RemainingBalance: user.CurrentBucks,
	}, nil
}

// Ledger methods
func (r *MemoryRepository) ListTransactions(_ context.Context, userID string) ([]models.BucksTransaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var txs []models.BucksTransaction
	for _, tx := range r.transactions {
		if tx.UserID == userID {
			txs = append(txs, tx)
		}
	}
	sort.Slice(txs, func(i, j int) bool { return txs[i].CreatedAt.After(txs[j].CreatedAt) })
	return txs, nil
}

func (r *MemoryRepository) LedgerTotals(_ context.Context, userID string) (*LedgerTotals, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var totals LedgerTotals
	for _, tx := range r.transactions {
		if tx.UserID != userID {
			continue
		}
		switch tx.Type {
		case models.TransactionEarned:
			totals.Earned += tx.Amount
			if tx.HoursWorked != nil {
				totals.Hours += *tx.HoursWorked
			}
		case models.TransactionRedeemed:
			totals.Redeemed += tx.Amount
		}
	}
	return &totals, nil
}
