package service

import (
	"context"
	"testing"
	"time"

	"github.com/mkealoha/ainabucks-server/internal/cache"
	"github.com/mkealoha/ainabucks-server/internal/models"
	"github.com/mkealoha/ainabucks-server/internal/repository"
	"github.com/stretchr/testify/require"
)

// testEnv bundles the service with direct access to the repository so tests
// can seed data and inspect persisted state.
type testEnv struct {
	svc   Service
	repo  *repository.MemoryRepository
	views *cache.Views
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	repo := repository.NewMemoryRepository()
	views := cache.New()
	svc := NewDefaultService(repo, views, "test-secret-key")
	return &testEnv{svc: svc, repo: repo, views: views}
}

func (e *testEnv) createUser(t *testing.T, email string, role models.UserRole) *models.User {
	t.Helper()
	user := &models.User{
		Email:          email,
		Name:           "Test " + email,
		Password:       "hashed",
		Role:           role,
		ApprovalStatus: models.ApprovalApproved,
	}
	require.NoError(t, e.repo.CreateUser(context.Background(), user))
	return user
}

func (e *testEnv) createEvent(t *testing.T, capacity int, bucksPerHour int64) *models.Event {
	t.Helper()
	admin := e.createUser(t, "organizer-"+time.Now().Format("150405.000000000")+"@example.com", models.RoleAdmin)
	event, err := e.svc.CreateEvent(context.Background(), admin.ID, models.CreateEventRequest{
		Name:             "Loʻi Restoration Day",
		Description:      "Taro patch workday",
		Location:         "Heʻeia",
		StartTime:        time.Now().Add(24 * time.Hour),
		EndTime:          time.Now().Add(30 * time.Hour),
		VolunteersNeeded: capacity,
		BucksPerHour:     bucksPerHour,
	})
	require.NoError(t, err)
	return event
}
