package api_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/mkealoha/ainabucks-server/internal/api/testutils"
	"github.com/mkealoha/ainabucks-server/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReviewUserFlow(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)

	// The seeded pending user shows up in the queue
	w := testutils.PerformRequest(testCtx.Router, http.MethodGet, "/api/admin/users/pending",
		nil, testutils.AuthHeaders(testCtx.AdminJWT))
	require.Equal(t, http.StatusOK, w.Code)

	var listing struct {
		Users []models.User `json:"users"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listing))
	require.Len(t, listing.Users, 1)
	assert.Equal(t, testCtx.PendingID, listing.Users[0].ID)

	// Volunteers cannot see the queue
	w = testutils.PerformRequest(testCtx.Router, http.MethodGet, "/api/admin/users/pending",
		nil, testutils.AuthHeaders(testCtx.UserJWT))
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Approve
	w = testutils.PerformRequest(testCtx.Router, http.MethodPost,
		"/api/admin/users/"+testCtx.PendingID+"/review",
		models.ReviewUserRequest{Status: models.ApprovalApproved},
		testutils.AuthHeaders(testCtx.AdminJWT))
	require.Equal(t, http.StatusOK, w.Code)

	// The queue drains
	w = testutils.PerformRequest(testCtx.Router, http.MethodGet, "/api/admin/users/pending",
		nil, testutils.AuthHeaders(testCtx.AdminJWT))
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listing))
	assert.Len(t, listing.Users, 0)

	// Reviewing the same user again conflicts
	w = testutils.PerformRequest(testCtx.Router, http.MethodPost,
		"/api/admin/users/"+testCtx.PendingID+"/review",
		models.ReviewUserRequest{Status: models.ApprovalRejected},
		testutils.AuthHeaders(testCtx.AdminJWT))
	assert.Equal(t, http.StatusConflict, w.Code)

	// Unknown users 404
	w = testutils.PerformRequest(testCtx.Router, http.MethodPost,
		"/api/admin/users/no-such-user/review",
		models.ReviewUserRequest{Status: models.ApprovalApproved},
		testutils.AuthHeaders(testCtx.AdminJWT))
	assert.Equal(t, http.StatusNotFound, w.Code)

	// An invalid status fails validation
	w = testutils.PerformRequest(testCtx.Router, http.MethodPost,
		"/api/admin/users/"+testCtx.PendingID+"/review",
		map[string]string{"status": "MAYBE"},
		testutils.AuthHeaders(testCtx.AdminJWT))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReconcileEndpoint(t *testing.T) {
	testCtx := testutils.SetupTestContext(t)
	earnBucks(t, testCtx, 75)

	w := testutils.PerformRequest(testCtx.Router, http.MethodGet,
		"/api/admin/users/"+testCtx.UserID+"/reconcile",
		nil, testutils.AuthHeaders(testCtx.AdminJWT))
	require.Equal(t, http.StatusOK, w.Code)

	var report models.ReconcileResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.True(t, report.Consistent)
	assert.Equal(t, int64(75), report.LedgerEarned)
	assert.Equal(t, int64(75), report.StoredBalance)

	// Volunteers cannot reconcile accounts
	w = testutils.PerformRequest(testCtx.Router, http.MethodGet,
		"/api/admin/users/"+testCtx.UserID+"/reconcile",
		nil, testutils.AuthHeaders(testCtx.UserJWT))
	assert.Equal(t, http.StatusForbidden, w.Code)
}
