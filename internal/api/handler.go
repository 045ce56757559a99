package api

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mkealoha/ainabucks-server/internal/cache"
	"github.com/mkealoha/ainabucks-server/internal/models"
	"github.com/mkealoha/ainabucks-server/internal/service"
	"go.uber.org/zap"
)

// Handler holds the service and wires it to the HTTP routes
type Handler struct {
	svc    service.Service
	views  *cache.Views
	logger *zap.Logger
}

// NewHandler creates a new API handler
func NewHandler(svc service.Service, views *cache.Views, logger *zap.Logger) *Handler {
	return &Handler{
		svc:    svc,
		views:  views,
		logger: logger,
	}
}

// SetupRoutes registers all API routes on the router
func (h *Handler) SetupRoutes(router *gin.Engine) {
	auth := router.Group("/api/auth")
	{
		auth.POST("/signup", h.SignUp)
		auth.POST("/login", h.Login)
	}

	authed := router.Group("/api")
	authed.Use(AuthMiddleware())
	{
		authed.GET("/events", h.ListEvents)
		authed.GET("/events/:eventId", h.GetEvent)
		authed.GET("/profile", h.GetProfile)
		authed.GET("/transactions", h.ListTransactions)
		authed.GET("/rewards", h.ListRewards)
	}

	approved := router.Group("/api")
	approved.Use(AuthMiddleware(), ApprovedOnlyMiddleware())
	{
		approved.POST("/events/:eventId/register", h.Register)
		approved.POST("/events/:eventId/cancel", h.Cancel)
		approved.POST("/events/:eventId/check-in", h.CheckIn)
		approved.POST("/events/:eventId/check-out", h.CheckOut)
		approved.POST("/rewards/:rewardId/redeem", h.Redeem)
	}

	admin := router.Group("/api/admin")
	admin.Use(AuthMiddleware(), AdminOnlyMiddleware())
	{
		admin.POST("/events", h.CreateEvent)
		admin.PUT("/events/:eventId", h.UpdateEvent)
		admin.DELETE("/events/:eventId", h.DeleteEvent)
		admin.GET("/events/:eventId/tokens", h.GetEventTokens)
		admin.GET("/events/:eventId/attendance", h.ListEventAttendance)
		admin.POST("/attendance/:attendanceId/award", h.Award)
		admin.GET("/users/pending", h.ListPendingUsers)
		admin.POST("/users/:userId/review", h.ReviewUser)
		admin.GET("/users/:userId/reconcile", h.ReconcileUser)
		admin.POST("/rewards", h.CreateReward)
		admin.PUT("/rewards/:rewardId", h.UpdateReward)
	}
}

// respondError maps a service error onto the wire taxonomy. Transaction
// failures are the only kind logged with full detail.
func (h *Handler) respondError(c *gin.Context, err error) {
	code := models.ErrorCode(err)
	status := httpStatus(code)

	message := err.Error()
	if status == http.StatusInternalServerError {
		h.logger.Error("transaction failure",
			zap.String("path", c.FullPath()),
			zap.String("method", c.Request.Method),
			zap.Error(err))
		message = "Unexpected error, please try again"
	}

	c.JSON(status, models.ErrorResponse{
		Status:  "error",
		Code:    code,
		Message: message,
	})
}

func httpStatus(code string) int {
	switch code {
	case "UNAUTHENTICATED", "INVALID_CREDENTIALS":
		return http.StatusUnauthorized
	case "UNAUTHORIZED":
		return http.StatusForbidden
	case "NOT_FOUND":
		return http.StatusNotFound
	case "INVALID_TOKEN":
		return http.StatusBadRequest
	case "ALREADY_REGISTERED", "ALREADY_CHECKED_IN", "ALREADY_CHECKED_OUT",
		"NOT_REGISTERED", "NOT_CHECKED_IN", "ALREADY_AWARDED", "EVENT_FULL",
		"INSUFFICIENT_BALANCE", "OUT_OF_STOCK", "EMAIL_EXISTS", "NOT_PENDING":
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Auth handlers

func (h *Handler) SignUp(c *gin.Context) {
	var req models.SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Status: "error", Code: "INVALID_REQUEST", Message: err.Error(),
		})
		return
	}

	resp, err := h.svc.SignUp(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *Handler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Status: "error", Code: "INVALID_REQUEST", Message: err.Error(),
		})
		return
	}

	resp, err := h.svc.Login(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) GetProfile(c *gin.Context) {
	userID := c.GetString("userId")

	key := cache.ProfileView(userID)
	if data, ok := h.views.Get(key); ok {
		c.Data(http.StatusOK, "application/json; charset=utf-8", data)
		return
	}

	user, err := h.svc.GetProfile(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	if data, err := json.Marshal(user); err == nil {
		h.views.Set(key, data)
	}
	c.JSON(http.StatusOK, user)
}

// Event handlers

func (h *Handler) ListEvents(c *gin.Context) {
	if data, ok := h.views.Get(cache.EventListView); ok {
		c.Data(http.StatusOK, "application/json; charset=utf-8", data)
		return
	}

	events, err := h.svc.ListEvents(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	if data, err := json.Marshal(events); err == nil {
		h.views.Set(cache.EventListView, data)
	}
	c.JSON(http.StatusOK, events)
}

func (h *Handler) GetEvent(c *gin.Context) {
	eventID := c.Param("eventId")

	key := cache.EventView(eventID)
	if data, ok := h.views.Get(key); ok {
		c.Data(http.StatusOK, "application/json; charset=utf-8", data)
		return
	}

	event, err := h.svc.GetEvent(c.Request.Context(), eventID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	if data, err := json.Marshal(event); err == nil {
		h.views.Set(key, data)
	}
	c.JSON(http.StatusOK, event)
}

func (h *Handler) CreateEvent(c *gin.Context) {
	var req models.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Status: "error", Code: "INVALID_REQUEST", Message: err.Error(),
		})
		return
	}

	if !req.EndTime.After(req.StartTime) {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Status: "error", Code: "INVALID_REQUEST", Message: "startTime must be before endTime",
		})
		return
	}

	event, err := h.svc.CreateEvent(c.Request.Context(), c.GetString("userId"), req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, event)
}

func (h *Handler) UpdateEvent(c *gin.Context) {
	var req models.UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Status: "error", Code: "INVALID_REQUEST", Message: err.Error(),
		})
		return
	}

	if !req.EndTime.After(req.StartTime) {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Status: "error", Code: "INVALID_REQUEST", Message: "startTime must be before endTime",
		})
		return
	}

	event, err := h.svc.UpdateEvent(c.Request.Context(), c.Param("eventId"), req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, event)
}

func (h *Handler) DeleteEvent(c *gin.Context) {
	if err := h.svc.DeleteEvent(c.Request.Context(), c.Param("eventId")); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Event deleted"})
}

// GetEventTokens surfaces the QR bearer tokens so an admin client can render
// the check-in and check-out codes. The tokens are excluded from every other
// event payload.
func (h *Handler) GetEventTokens(c *gin.Context) {
	event, err := h.svc.GetEvent(c.Request.Context(), c.Param("eventId"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":        "success",
		"eventId":       event.ID,
		"checkInToken":  event.CheckInToken,
		"checkOutToken": event.CheckOutToken,
	})
}

// Registration handlers

func (h *Handler) Register(c *gin.Context) {
	reg, err := h.svc.Register(c.Request.Context(), c.GetString("userId"), c.Param("eventId"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.RegistrationResponse{
		Status:       "success",
		Registration: reg,
	})
}

func (h *Handler) Cancel(c *gin.Context) {
	err := h.svc.Cancel(c.Request.Context(), c.GetString("userId"), c.Param("eventId"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.RegistrationResponse{
		Status:  "success",
		Message: "Registration cancelled",
	})
}

// Attendance handlers

func (h *Handler) CheckIn(c *gin.Context) {
	var req models.CheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Status: "error", Code: "INVALID_REQUEST", Message: err.Error(),
		})
		return
	}

	att, err := h.svc.CheckIn(c.Request.Context(), c.GetString("userId"), c.Param("eventId"), req.Token)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.CheckInResponse{
		Status:     "success",
		Attendance: att,
	})
}

func (h *Handler) CheckOut(c *gin.Context) {
	var req models.CheckOutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Status: "error", Code: "INVALID_REQUEST", Message: err.Error(),
		})
		return
	}

	att, estimate, err := h.svc.CheckOut(c.Request.Context(), c.GetString("userId"), c.Param("eventId"), req.Token)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.CheckOutResponse{
		Status:         "success",
		Attendance:     att,
		EstimatedHours: estimate,
	})
}

func (h *Handler) ListEventAttendance(c *gin.Context) {
	rows, err := h.svc.ListEventAttendance(c.Request.Context(), c.Param("eventId"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "attendance": rows})
}

// Award handler

func (h *Handler) Award(c *gin.Context) {
	var req models.AwardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Status: "error", Code: "INVALID_REQUEST", Message: err.Error(),
		})
		return
	}

	result, err := h.svc.Award(c.Request.Context(), c.GetString("userId"), c.Param("attendanceId"), req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.AwardResponse{
		Status:      "success",
		AinaBucks:   result.Amount,
		HoursWorked: result.HoursWorked,
	})
}

// User administration handlers

func (h *Handler) ListPendingUsers(c *gin.Context) {
	users, err := h.svc.ListPendingUsers(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "users": users})
}

func (h *Handler) ReviewUser(c *gin.Context) {
	var req models.ReviewUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Status: "error", Code: "INVALID_REQUEST", Message: err.Error(),
		})
		return
	}

	if err := h.svc.ReviewUser(c.Request.Context(), c.Param("userId"), req.Status); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Account reviewed"})
}

func (h *Handler) ReconcileUser(c *gin.Context) {
	resp, err := h.svc.ReconcileUser(c.Request.Context(), c.Param("userId"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Reward handlers

func (h *Handler) ListRewards(c *gin.Context) {
	rewards, err := h.svc.ListRewards(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "rewards": rewards})
}

func (h *Handler) CreateReward(c *gin.Context) {
	var req models.CreateRewardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Status: "error", Code: "INVALID_REQUEST", Message: err.Error(),
		})
		return
	}

	reward, err := h.svc.CreateReward(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, reward)
}

func (h *Handler) UpdateReward(c *gin.Context) {
	var req models.CreateRewardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Status: "error", Code: "INVALID_REQUEST", Message: err.Error(),
		})
		return
	}

	reward, err := h.svc.UpdateReward(c.Request.Context(), c.Param("rewardId"), req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, reward)
}

func (h *Handler) Redeem(c *gin.Context) {
	var req models.RedeemRequest
	// Body is optional; quantity defaults to 1
	_ = c.ShouldBindJSON(&req)
	if req.Quantity < 1 {
		req.Quantity = 1
	}

	result, err := h.svc.Redeem(c.Request.Context(), c.GetString("userId"), c.Param("rewardId"), req.Quantity)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.RedeemResponse{
		Status:           "success",
		Redemption:       result.Redemption,
		RemainingBalance: result.RemainingBalance,
	})
}
