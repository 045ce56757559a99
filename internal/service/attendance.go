package service

import (
	"context"
	"time"

	"github.com/mkealoha/ainabucks-server/internal/cache"
	"github.com/mkealoha/ainabucks-server/internal/models"
	"github.com/mkealoha/ainabucks-server/internal/repository"
)

// Register records a user's intent to attend an event. The duplicate and
// capacity guards run inside the repository transaction.
func (s *DefaultService) Register(ctx context.Context, userID, eventID string) (*models.Registration, error) {
	reg := &models.Registration{
		UserID:  userID,
		EventID: eventID,
	}

	if err := s.repo.CreateRegistration(ctx, reg); err != nil {
		return nil, err
	}

	s.views.Invalidate(cache.EventListView, cache.EventView(eventID), cache.ProfileView(userID))
	return reg, nil
}

// Cancel withdraws the user's active registration. Cancelling when there is
// nothing to cancel succeeds silently.
func (s *DefaultService) Cancel(ctx context.Context, userID, eventID string) error {
	if err := s.repo.CancelRegistration(ctx, userID, eventID); err != nil {
		return err
	}

	s.views.Invalidate(cache.EventListView, cache.EventView(eventID), cache.ProfileView(userID))
	return nil
}

// CheckIn validates the scanned token against the event's check-in token and
// opens an attendance record. This is a single write and deliberately not
// part of the award transaction.
func (s *DefaultService) CheckIn(ctx context.Context, userID, eventID, token string) (*models.Attendance, error) {
	event, err := s.repo.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, models.ErrNotFound
	}

	if token != event.CheckInToken {
		return nil, models.ErrInvalidToken
	}

	reg, err := s.repo.GetActiveRegistration(ctx, userID, eventID)
	if err != nil {
		return nil, err
	}
	if reg == nil {
		return nil, models.ErrNotRegistered
	}

	existing, err := s.repo.GetAttendance(ctx, userID, eventID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.ErrAlreadyCheckedIn
	}

	att := &models.Attendance{
		UserID:         userID,
		EventID:        eventID,
		RegistrationID: reg.ID,
		CheckInTime:    time.Now().UTC(),
		Status:         models.AttendanceCheckedIn,
	}

	if err := s.repo.CreateAttendance(ctx, att); err != nil {
		return nil, err
	}

	s.views.Invalidate(cache.EventView(eventID), cache.ProfileView(userID))
	return att, nil
}

// CheckOut stamps the check-out time and returns an advisory elapsed-hours
// estimate. The admin sets the authoritative hours at award time.
func (s *DefaultService) CheckOut(ctx context.Context, userID, eventID, token string) (*models.Attendance, float64, error) {
	event, err := s.repo.GetEvent(ctx, eventID)
	if err != nil {
		return nil, 0, err
	}
	if event == nil {
		return nil, 0, models.ErrNotFound
	}

	if token != event.CheckOutToken {
		return nil, 0, models.ErrInvalidToken
	}

	att, err := s.repo.GetAttendance(ctx, userID, eventID)
	if err != nil {
		return nil, 0, err
	}
	if att == nil {
		return nil, 0, models.ErrNotCheckedIn
	}
	if att.CheckOutTime != nil {
		return nil, 0, models.ErrAlreadyCheckedOut
	}

	checkOutTime := time.Now().UTC()
	if err := s.repo.CompleteAttendance(ctx, att.ID, checkOutTime); err != nil {
		return nil, 0, err
	}

	att.CheckOutTime = &checkOutTime
	att.Status = models.AttendanceCheckedOut

	estimate := models.EstimatedHours(att.CheckInTime, checkOutTime)

	s.views.Invalidate(cache.EventView(eventID), cache.ProfileView(userID))
	return att, estimate, nil
}

func (s *DefaultService) ListEventAttendance(ctx context.Context, eventID string) ([]models.Attendance, error) {
	event, err := s.repo.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, models.ErrNotFound
	}

	return s.repo.ListEventAttendance(ctx, eventID)
}

// Award converts a reviewed attendance record into an ʻĀina Bucks grant,
// exactly once. The caller must hold the ADMIN role; the atomic part
// (attendance finalization, ledger append, aggregate bump, registration
// transition) lives in the repository transaction.
func (s *DefaultService) Award(ctx context.Context, adminID, attendanceID string, req models.AwardRequest) (*repository.AwardResult, error) {
	admin, err := s.repo.GetUserByID(ctx, adminID)
	if err != nil {
		return nil, err
	}
	if admin == nil || admin.Role != models.RoleAdmin {
		return nil, models.ErrUnauthorized
	}

	result, err := s.repo.AwardAttendance(ctx, repository.AwardParams{
		AttendanceID: attendanceID,
		HoursWorked:  req.HoursWorked,
		AdminID:      adminID,
		AdminNotes:   req.AdminNotes,
	})
	if err != nil {
		return nil, err
	}

	att, err := s.repo.GetAttendanceByID(ctx, attendanceID)
	if err == nil && att != nil {
		s.views.Invalidate(cache.EventView(att.EventID), cache.ProfileView(att.UserID), cache.AdminDashboardView)
	}

	return result, nil
}
