package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/mkealoha/ainabucks-server/internal/cache"
	"github.com/mkealoha/ainabucks-server/internal/models"
)

// CreateEvent provisions a new event. The two QR tokens are minted here and
// never rotate; the QR images themselves are rendered elsewhere from these
// opaque values.
func (s *DefaultService) CreateEvent(ctx context.Context, adminID string, req models.CreateEventRequest) (*models.Event, error) {
	event := &models.Event{
		Name:             req.Name,
		Description:      req.Description,
		Location:         req.Location,
		StartTime:        req.StartTime,
		EndTime:          req.EndTime,
		VolunteersNeeded: req.VolunteersNeeded,
		BucksPerHour:     req.BucksPerHour,
		TotalBucksCap:    req.TotalBucksCap,
		CheckInToken:     uuid.New().String(),
		CheckOutToken:    uuid.New().String(),
		CreatedBy:        adminID,
	}

	if err := s.repo.CreateEvent(ctx, event); err != nil {
		return nil, err
	}

	s.views.Invalidate(cache.EventListView)
	return event, nil
}

func (s *DefaultService) UpdateEvent(ctx context.Context, eventID string, req models.UpdateEventRequest) (*models.Event, error) {
	existing, err := s.repo.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, models.ErrNotFound
	}

	existing.Name = req.Name
	existing.Description = req.Description
	existing.Location = req.Location
	existing.StartTime = req.StartTime
	existing.EndTime = req.EndTime
	existing.VolunteersNeeded = req.VolunteersNeeded
	existing.BucksPerHour = req.BucksPerHour
	existing.TotalBucksCap = req.TotalBucksCap

	if err := s.repo.UpdateEvent(ctx, existing); err != nil {
		return nil, err
	}

	s.views.Invalidate(cache.EventListView, cache.EventView(eventID))
	return existing, nil
}

func (s *DefaultService) DeleteEvent(ctx context.Context, eventID string) error {
	if err := s.repo.DeleteEvent(ctx, eventID); err != nil {
		return err
	}

	s.views.Invalidate(cache.EventListView, cache.EventView(eventID))
	return nil
}

func (s *DefaultService) GetEvent(ctx context.Context, eventID string) (*models.Event, error) {
	event, err := s.repo.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, models.ErrNotFound
	}
	return event, nil
}

func (s *DefaultService) ListEvents(ctx context.Context) ([]models.Event, error) {
	return s.repo.ListEvents(ctx)
}
