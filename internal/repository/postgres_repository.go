package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/mkealoha/ainabucks-server/internal/models"
)

// uniqueViolation is the Postgres error code for duplicate key violations
const uniqueViolation = "23505"

// PostgresRepository implements the Repository interface using PostgreSQL
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{
		db: db,
	}
}

// GetDB returns the underlying database connection
func (r *PostgresRepository) GetDB() *sqlx.DB {
	return r.db
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation
}

// User repository methods
func (r *PostgresRepository) CreateUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, email, name, password, role, approval_status,
			total_bucks_earned, current_bucks, total_hours, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	// Generate a new UUID if not provided
	if user.ID == "" {
		user.ID = uuid.New().String()
	}

	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.Email, user.Name, user.Password, user.Role, user.ApprovalStatus,
		user.TotalBucksEarned, user.CurrentBucks, user.TotalHours,
		user.CreatedAt, user.UpdatedAt)
	if isUniqueViolation(err) {
		return models.ErrEmailExists
	}

	return err
}

func (r *PostgresRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT * FROM users WHERE email = $1`

	var user models.User
	err := r.db.GetContext(ctx, &user, query, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // User not found
		}
		return nil, err
	}

	return &user, nil
}

func (r *PostgresRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT * FROM users WHERE id = $1`

	var user models.User
	err := r.db.GetContext(ctx, &user, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // User not found
		}
		return nil, err
	}

	return &user, nil
}

func (r *PostgresRepository) ListUsersByApproval(ctx context.Context, status models.ApprovalStatus) ([]models.User, error) {
	query := `SELECT * FROM users WHERE approval_status = $1 ORDER BY created_at ASC`

	var users []models.User
	if err := r.db.SelectContext(ctx, &users, query, status); err != nil {
		return nil, err
	}

	return users, nil
}

func (r *PostgresRepository) UpdateUserApproval(ctx context.Context, userID string, status models.ApprovalStatus) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			tx.Rollback()
			return
		}
	}()

	var current models.ApprovalStatus
	err = tx.QueryRowContext(ctx,
		`SELECT approval_status FROM users WHERE id = $1 FOR UPDATE`,
		userID).Scan(&current)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = models.ErrNotFound
		}
		return err
	}

	if current != models.ApprovalPending {
		err = models.ErrNotPending
		return err
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE users SET approval_status = $1, updated_at = $2 WHERE id = $3`,
		status, time.Now().UTC(), userID)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// Event repository methods
func (r *PostgresRepository) CreateEvent(ctx context.Context, event *models.Event) error {
	query := `
		INSERT INTO events (id, name, description, location, start_time, end_time,
			volunteers_needed, bucks_per_hour, total_bucks_cap,
			check_in_token, check_out_token, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	if event.ID == "" {
		event.ID = uuid.New().String()
	}

	now := time.Now().UTC()
	event.CreatedAt = now
	event.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, query,
		event.ID, event.Name, event.Description, event.Location,
		event.StartTime, event.EndTime, event.VolunteersNeeded,
		event.BucksPerHour, event.TotalBucksCap,
		event.CheckInToken, event.CheckOutToken, event.CreatedBy,
		event.CreatedAt, event.UpdatedAt)

	return err
}

func (r *PostgresRepository) UpdateEvent(ctx context.Context, event *models.Event) error {
	query := `
		UPDATE events
		SET name = $1, description = $2, location = $3, start_time = $4,
			end_time = $5, volunteers_needed = $6, bucks_per_hour = $7,
			total_bucks_cap = $8, updated_at = $9
		WHERE id = $10
	`

	event.UpdatedAt = time.Now().UTC()

	res, err := r.db.ExecContext(ctx, query,
		event.Name, event.Description, event.Location, event.StartTime,
		event.EndTime, event.VolunteersNeeded, event.BucksPerHour,
		event.TotalBucksCap, event.UpdatedAt, event.ID)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return models.ErrNotFound
	}

	return nil
}

func (r *PostgresRepository) DeleteEvent(ctx context.Context, eventID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, eventID)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return models.ErrNotFound
	}

	return nil
}

func (r *PostgresRepository) GetEvent(ctx context.Context, eventID string) (*models.Event, error) {
	query := `SELECT * FROM events WHERE id = $1`

	var event models.Event
	err := r.db.GetContext(ctx, &event, query, eventID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Event not found
		}
		return nil, err
	}

	return &event, nil
}

func (r *PostgresRepository) ListEvents(ctx context.Context) ([]models.Event, error) {
	query := `SELECT * FROM events ORDER BY start_time ASC`

	var events []models.Event
	if err := r.db.SelectContext(ctx, &events, query); err != nil {
		return nil, err
	}

	return events, nil
}

// Registration ledger methods

// CreateRegistration inserts a REGISTERED row with the duplicate and capacity
// guards inside the same transaction. The event row is locked for the
// duration so concurrent registrations for the same event serialize and the
// capacity count cannot be overtaken between check and insert.
func (r *PostgresRepository) CreateRegistration(ctx context.Context, reg *models.Registration) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			tx.Rollback()
			return
		}
	}()

	var capacity int
	err = tx.QueryRowContext(ctx,
		`SELECT volunteers_needed FROM events WHERE id = $1 FOR UPDATE`,
		reg.EventID).Scan(&capacity)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = models.ErrNotFound
		}
		return err
	}

	var exists bool
	err = tx.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM registrations WHERE user_id = $1 AND event_id = $2 AND status = $3)`,
		reg.UserID, reg.EventID, models.RegistrationRegistered).Scan(&exists)
	if err != nil {
		return err
	}
	if exists {
		err = models.ErrAlreadyRegistered
		return err
	}

	var registered int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM registrations WHERE event_id = $1 AND status = $2`,
		reg.EventID, models.RegistrationRegistered).Scan(&registered)
	if err != nil {
		return err
	}
	if registered >= capacity {
		err = models.ErrEventFull
		return err
	}

	if reg.ID == "" {
		reg.ID = uuid.New().String()
	}
	reg.Status = models.RegistrationRegistered

	now := time.Now().UTC()
	reg.CreatedAt = now
	reg.UpdatedAt = now

	_, err = tx.ExecContext(ctx,
		`INSERT INTO registrations (id, user_id, event_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		reg.ID, reg.UserID, reg.EventID, reg.Status, reg.CreatedAt, reg.UpdatedAt)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// CancelRegistration flips the active row to CANCELLED. Cancelling with no
// active registration is a silent no-op.
func (r *PostgresRepository) CancelRegistration(ctx context.Context, userID, eventID string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE registrations SET status = $1, updated_at = $2
		WHERE user_id = $3 AND event_id = $4 AND status = $5`,
		models.RegistrationCancelled, time.Now().UTC(),
		userID, eventID, models.RegistrationRegistered)

	return err
}

func (r *PostgresRepository) GetActiveRegistration(ctx context.Context, userID, eventID string) (*models.Registration, error) {
	query := `SELECT * FROM registrations WHERE user_id = $1 AND event_id = $2 AND status = $3`

	var reg models.Registration
	err := r.db.GetContext(ctx, &reg, query, userID, eventID, models.RegistrationRegistered)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // No active registration
		}
		return nil, err
	}

	return &reg, nil
}

// Attendance methods
func (r *PostgresRepository) CreateAttendance(ctx context.Context, att *models.Attendance) error {
	query := `
		INSERT INTO attendance (id, user_id, event_id, registration_id,
			check_in_time, awarded, status, admin_notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	if att.ID == "" {
		att.ID = uuid.New().String()
	}

	now := time.Now().UTC()
	att.CreatedAt = now
	att.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, query,
		att.ID, att.UserID, att.EventID, att.RegistrationID,
		att.CheckInTime, att.Awarded, att.Status, att.AdminNotes,
		att.CreatedAt, att.UpdatedAt)
	if isUniqueViolation(err) {
		return models.ErrAlreadyCheckedIn
	}

	return err
}

func (r *PostgresRepository) GetAttendance(ctx context.Context, userID, eventID string) (*models.Attendance, error) {
	query := `SELECT * FROM attendance WHERE user_id = $1 AND event_id = $2`

	var att models.Attendance
	err := r.db.GetContext(ctx, &att, query, userID, eventID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not checked in
		}
		return nil, err
	}

	return &att, nil
}

func (r *PostgresRepository) GetAttendanceByID(ctx context.Context, id string) (*models.Attendance, error) {
	query := `SELECT * FROM attendance WHERE id = $1`

	var att models.Attendance
	err := r.db.GetContext(ctx, &att, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &att, nil
}

// CompleteAttendance stamps the check-out time. The conditional update keeps
// a racing second scan from moving the timestamp.
func (r *PostgresRepository) CompleteAttendance(ctx context.Context, attendanceID string, checkOutTime time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE attendance SET check_out_time = $1, status = $2, updated_at = $3
		WHERE id = $4 AND check_out_time IS NULL`,
		checkOutTime, models.AttendanceCheckedOut, time.Now().UTC(), attendanceID)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		att, lookupErr := r.GetAttendanceByID(ctx, attendanceID)
		if lookupErr != nil {
			return lookupErr
		}
		if att == nil {
			return models.ErrNotFound
		}
		return models.ErrAlreadyCheckedOut
	}

	return nil
}

func (r *PostgresRepository) ListEventAttendance(ctx context.Context, eventID string) ([]models.Attendance, error) {
	query := `SELECT * FROM attendance WHERE event_id = $1 ORDER BY check_in_time ASC`

	var rows []models.Attendance
	if err := r.db.SelectContext(ctx, &rows, query, eventID); err != nil {
		return nil, err
	}

	return rows, nil
}

// AwardAttendance performs the award as a single atomic transaction. The
// attendance row is locked for the duration, which makes the at-most-once
// guard race-free: a concurrent award for the same attendance id blocks on
// the lock and then sees awarded = TRUE.
func (r *PostgresRepository) AwardAttendance(ctx context.Context, params AwardParams) (*AwardResult, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}

	defer func() {
		if err != nil {
			tx.Rollback()
			return
		}
	}()

	var row struct {
		UserID         string `db:"user_id"`
		EventID        string `db:"event_id"`
		RegistrationID string `db:"registration_id"`
		Awarded        bool   `db:"awarded"`
		BucksPerHour   int64  `db:"bucks_per_hour"`
		EventName      string `db:"event_name"`
	}
	err = tx.GetContext(ctx, &row,
		`SELECT a.user_id, a.event_id, a.registration_id, a.awarded,
			e.bucks_per_hour, e.name AS event_name
		FROM attendance a
		JOIN events e ON e.id = a.event_id
		WHERE a.id = $1
		FOR UPDATE OF a`,
		params.AttendanceID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = models.ErrNotFound
		}
		return nil, err
	}

	if row.Awarded {
		err = models.ErrAlreadyAwarded
		return nil, err
	}

	amount := models.AwardAmount(params.HoursWorked, row.BucksPerHour)
	now := time.Now().UTC()

	// Step 1: finalize the attendance row
	_, err = tx.ExecContext(ctx,
		`UPDATE attendance SET hours_worked = $1, awarded = TRUE, status = $2,
			admin_notes = $3, updated_at = $4 WHERE id = $5`,
		params.HoursWorked, models.AttendanceCheckedOut,
		params.AdminNotes, now, params.AttendanceID)
	if err != nil {
		return nil, err
	}

	// Step 2: append the immutable EARNED ledger entry
	description := fmt.Sprintf("Earned %d ʻĀina Bucks for %.2f hours at %s",
		amount, params.HoursWorked, row.EventName)
	_, err = tx.ExecContext(ctx,
		`INSERT INTO bucks_transactions (id, user_id, event_id, type, amount,
			hours_worked, description, approved_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		uuid.New().String(), row.UserID, row.EventID, models.TransactionEarned,
		amount, params.HoursWorked, description, params.AdminID, now)
	if err != nil {
		return nil, err
	}

	// Step 3: bump the user's materialized aggregates
	_, err = tx.ExecContext(ctx,
		`UPDATE users SET total_bucks_earned = total_bucks_earned + $1,
			current_bucks = current_bucks + $1,
			total_hours = total_hours + $2,
			updated_at = $3
		WHERE id = $4`,
		amount, params.HoursWorked, now, row.UserID)
	if err != nil {
		return nil, err
	}

	// Step 4: the registration this attendance fulfilled is now ATTENDED
	_, err = tx.ExecContext(ctx,
		`UPDATE registrations SET status = $1, updated_at = $2 WHERE id = $3`,
		models.RegistrationAttended, now, row.RegistrationID)
	if err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}

	return &AwardResult{
		Amount:      amount,
		HoursWorked: params.HoursWorked,
	}, nil
}

// Reward methods
func (r *PostgresRepository) CreateReward(ctx context.Context, reward *models.Reward) error {
	query := `
		INSERT INTO rewards (id, name, description, bucks_cost,
			quantity_available, quantity_redeemed, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	if reward.ID == "" {
		reward.ID = uuid.New().String()
	}

	now := time.Now().UTC()
	reward.CreatedAt = now
	reward.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, query,
		reward.ID, reward.Name, reward.Description, reward.BucksCost,
		reward.QuantityAvailable, reward.QuantityRedeemed,
		reward.CreatedAt, reward.UpdatedAt)

	return err
}

func (r *PostgresRepository) UpdateReward(ctx context.Context, reward *models.Reward) error {
	query := `
		UPDATE rewards SET name = $1, description = $2, bucks_cost = $3,
			quantity_available = $4, updated_at = $5
		WHERE id = $6
	`

	reward.UpdatedAt = time.Now().UTC()

	res, err := r.db.ExecContext(ctx, query,
		reward.Name, reward.Description, reward.BucksCost,
		reward.QuantityAvailable, reward.UpdatedAt, reward.ID)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return models.ErrNotFound
	}

	return nil
}

func (r *PostgresRepository) GetReward(ctx context.Context, rewardID string) (*models.Reward, error) {
	query := `SELECT * FROM rewards WHERE id = $1`

	var reward models.Reward
	err := r.db.GetContext(ctx, &reward, query, rewardID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &reward, nil
}

func (r *PostgresRepository) ListRewards(ctx context.Context) ([]models.Reward, error) {
	query := `SELECT * FROM rewards ORDER BY bucks_cost ASC`

	var rewards []models.Reward
	if err := r.db.SelectContext(ctx, &rewards, query); err != nil {
		return nil, err
	}

	return rewards, nil
}

// RedeemReward atomically debits the user's balance, bumps the redeemed
// counter and appends the REDEEMED ledger entry. Both rows are locked so
// concurrent redemptions cannot overdraw the balance or the stock.
func (r *PostgresRepository) RedeemReward(ctx context.Context, params RedeemParams) (*RedeemResult, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}

	defer func() {
		if err != nil {
			tx.Rollback()
			return
		}
	}()

	var balance int64
	err = tx.QueryRowContext(ctx,
		`SELECT current_bucks FROM users WHERE id = $1 FOR UPDATE`,
		params.UserID).Scan(&balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = models.ErrNotFound
		}
		return nil, err
	}

	var reward models.Reward
	err = tx.GetContext(ctx, &reward,
		`SELECT * FROM rewards WHERE id = $1 FOR UPDATE`, params.RewardID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = models.ErrNotFound
		}
		return nil, err
	}

	total := reward.BucksCost * int64(params.Quantity)
	if balance < total {
		err = models.ErrInsufficientBalance
		return nil, err
	}

	if reward.QuantityAvailable != models.UnlimitedQuantity &&
		reward.QuantityAvailable-reward.QuantityRedeemed < params.Quantity {
		err = models.ErrOutOfStock
		return nil, err
	}

	now := time.Now().UTC()

	_, err = tx.ExecContext(ctx,
		`UPDATE users SET current_bucks = current_bucks - $1, updated_at = $2 WHERE id = $3`,
		total, now, params.UserID)
	if err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE rewards SET quantity_redeemed = quantity_redeemed + $1, updated_at = $2 WHERE id = $3`,
		params.Quantity, now, params.RewardID)
	if err != nil {
		return nil, err
	}

	redemption := &models.RewardRedemption{
		ID:         uuid.New().String(),
		UserID:     params.UserID,
		RewardID:   params.RewardID,
		Quantity:   params.Quantity,
		BucksSpent: total,
		CreatedAt:  now,
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO reward_redemptions (id, user_id, reward_id, quantity, bucks_spent, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		redemption.ID, redemption.UserID, redemption.RewardID,
		redemption.Quantity, redemption.BucksSpent, redemption.CreatedAt)
	if err != nil {
		return nil, err
	}

	description := fmt.Sprintf("Redeemed %dx %s", params.Quantity, reward.Name)
	_, err = tx.ExecContext(ctx,
		`INSERT INTO bucks_transactions (id, user_id, type, amount, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		uuid.New().String(), params.UserID, models.TransactionRedeemed,
		total, description, now)
	if err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}

	return &RedeemResult{
		Redemption:       redemption,
		RemainingBalance: balance - total,
	}, nil
}

// Ledger methods
func (r *PostgresRepository) ListTransactions(ctx context.Context, userID string) ([]models.BucksTransaction, error) {
	query := `SELECT * FROM bucks_transactions WHERE user_id = $1 ORDER BY created_at DESC`

	var txs []models.BucksTransaction
	if err := r.db.SelectContext(ctx, &txs, query, userID); err != nil {
		return nil, err
	}

	return txs, nil
}

// LedgerTotals recomputes earned, redeemed and hour sums from the ledger so
// callers can audit the materialized user counters for drift.
func (r *PostgresRepository) LedgerTotals(ctx context.Context, userID string) (*LedgerTotals, error) {
	query := `
		SELECT
			COALESCE(SUM(CASE WHEN type = $1 THEN amount ELSE 0 END), 0) AS earned,
			COALESCE(SUM(CASE WHEN type = $2 THEN amount ELSE 0 END), 0) AS redeemed,
			COALESCE(SUM(CASE WHEN type = $1 THEN hours_worked ELSE 0 END), 0) AS hours
		FROM bucks_transactions
		WHERE user_id = $3
	`

	var totals LedgerTotals
	err := r.db.QueryRowContext(ctx, query,
		models.TransactionEarned, models.TransactionRedeemed, userID).
		Scan(&totals.Earned, &totals.Redeemed, &totals.Hours)
	if err != nil {
		return nil, err
	}

	return &totals, nil
}
