package testutils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/mkealoha/ainabucks-server/internal/api"
	"github.com/mkealoha/ainabucks-server/internal/cache"
	"github.com/mkealoha/ainabucks-server/internal/models"
	"github.com/mkealoha/ainabucks-server/internal/repository"
	"github.com/mkealoha/ainabucks-server/internal/service"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testJWTSecret = "test-secret-key"

// TestContext holds all dependencies for tests
type TestContext struct {
	Router  *gin.Engine
	Repo    *repository.MemoryRepository
	Service service.Service
	Views   *cache.Views

	UserID     string
	UserJWT    string
	AdminID    string
	AdminJWT   string
	PendingID  string
	PendingJWT string
}

// SetupTestContext wires the full router against an in-memory repository and
// seeds an approved user, an admin and a pending user.
func SetupTestContext(t *testing.T) *TestContext {
	t.Helper()

	gin.SetMode(gin.TestMode)

	repo := repository.NewMemoryRepository()
	views := cache.New()
	svc := service.NewDefaultService(repo, views, testJWTSecret)
	handler := api.NewHandler(svc, views, zap.NewNop())

	router := gin.New()

	// Add middleware for JWT secret
	router.Use(func(c *gin.Context) {
		c.Set("jwtSecret", []byte(testJWTSecret))
		c.Next()
	})

	handler.SetupRoutes(router)

	ctx := &TestContext{
		Router:  router,
		Repo:    repo,
		Service: svc,
		Views:   views,
	}

	ctx.UserID, ctx.UserJWT = CreateTestUser(t, repo, "volunteer@example.com", models.RoleUser, models.ApprovalApproved)
	ctx.AdminID, ctx.AdminJWT = CreateTestUser(t, repo, "admin@example.com", models.RoleAdmin, models.ApprovalApproved)
	ctx.PendingID, ctx.PendingJWT = CreateTestUser(t, repo, "pending@example.com", models.RoleUser, models.ApprovalPending)

	return ctx
}

// CreateTestUser inserts a user and returns its id plus a signed JWT carrying
// the same role and approval claims the login flow would mint.
func CreateTestUser(t *testing.T, repo repository.Repository, email string, role models.UserRole, approval models.ApprovalStatus) (string, string) {
	t.Helper()

	user := &models.User{
		Email:          email,
		Name:           "Test " + email,
		Password:       "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy",
		Role:           role,
		ApprovalStatus: approval,
	}
	require.NoError(t, repo.CreateUser(context.Background(), user))

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":      user.ID,
		"role":     string(role),
		"approval": string(approval),
		"exp":      time.Now().Add(24 * time.Hour).Unix(),
		"iat":      time.Now().Unix(),
	})

	tokenString, err := token.SignedString([]byte(testJWTSecret))
	require.NoError(t, err)

	return user.ID, tokenString
}

// CreateTestEvent provisions an event through the service so it carries real
// check-in/check-out tokens.
func CreateTestEvent(t *testing.T, ctx *TestContext, capacity int, bucksPerHour int64) *models.Event {
	t.Helper()

	event, err := ctx.Service.CreateEvent(context.Background(), ctx.AdminID, models.CreateEventRequest{
		Name:             "Beach Cleanup",
		Description:      "Makai cleanup morning",
		Location:         "Kailua",
		StartTime:        time.Now().Add(24 * time.Hour),
		EndTime:          time.Now().Add(28 * time.Hour),
		VolunteersNeeded: capacity,
		BucksPerHour:     bucksPerHour,
	})
	require.NoError(t, err)

	return event
}

// PerformRequest executes an HTTP request against the router
func PerformRequest(r http.Handler, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer

	if body != nil {
		jsonBody, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonBody)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, _ := http.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// AuthHeaders returns headers with Authorization token
func AuthHeaders(token string) map[string]string {
	return map[string]string{
		"Authorization": fmt.Sprintf("Bearer %s", token),
	}
}
