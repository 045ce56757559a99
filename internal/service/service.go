package service

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/mkealoha/ainabucks-server/internal/cache"
	"github.com/mkealoha/ainabucks-server/internal/models"
	"github.com/mkealoha/ainabucks-server/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

// Service defines all the business logic operations
type Service interface {
	// Authentication and accounts
	SignUp(ctx context.Context, req models.SignUpRequest) (*models.AuthResponse, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error)
	GetProfile(ctx context.Context, userID string) (*models.User, error)
	ListPendingUsers(ctx context.Context) ([]models.User, error)
	ReviewUser(ctx context.Context, userID string, status models.ApprovalStatus) error

	// Events
	CreateEvent(ctx context.Context, adminID string, req models.CreateEventRequest) (*models.Event, error)
	UpdateEvent(ctx context.Context, eventID string, req models.UpdateEventRequest) (*models.Event, error)
	DeleteEvent(ctx context.Context, eventID string) error
	GetEvent(ctx context.Context, eventID string) (*models.Event, error)
	ListEvents(ctx context.Context) ([]models.Event, error)

	// Registration ledger
	Register(ctx context.Context, userID, eventID string) (*models.Registration, error)
	Cancel(ctx context.Context, userID, eventID string) error

	// Attendance tracker
	CheckIn(ctx context.Context, userID, eventID, token string) (*models.Attendance, error)
	CheckOut(ctx context.Context, userID, eventID, token string) (*models.Attendance, float64, error)
	ListEventAttendance(ctx context.Context, eventID string) ([]models.Attendance, error)

	// Award engine
	Award(ctx context.Context, adminID, attendanceID string, req models.AwardRequest) (*repository.AwardResult, error)

	// Rewards
	CreateReward(ctx context.Context, req models.CreateRewardRequest) (*models.Reward, error)
	UpdateReward(ctx context.Context, rewardID string, req models.CreateRewardRequest) (*models.Reward, error)
	ListRewards(ctx context.Context) ([]models.Reward, error)
	Redeem(ctx context.Context, userID, rewardID string, quantity int) (*repository.RedeemResult, error)

	// Ledger and audit
	ListTransactions(ctx context.Context, userID string) ([]models.BucksTransaction, error)
	ReconcileUser(ctx context.Context, userID string) (*models.ReconcileResponse, error)
}

// DefaultService implements the Service interface
type DefaultService struct {
	repo          repository.Repository
	views         *cache.Views
	jwtSecret     []byte
	tokenDuration time.Duration
}

// NewDefaultService creates a new DefaultService
func NewDefaultService(repo repository.Repository, views *cache.Views, jwtSecret string) Service {
	return &DefaultService{
		repo:          repo,
		views:         views,
		jwtSecret:     []byte(jwtSecret),
		tokenDuration: 24 * time.Hour, // 24 hours token validity
	}
}

// SignUp creates a new account in PENDING state; an admin must approve it
// before the user can register for events.
func (s *DefaultService) SignUp(ctx context.Context, req models.SignUpRequest) (*models.AuthResponse, error) {
	// Check if user already exists
	existingUser, err := s.repo.GetUserByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("error checking user existence: %w", err)
	}

	if existingUser != nil {
		return nil, models.ErrEmailExists
	}

	// Hash the password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user := &models.User{
		Email:          req.Email,
		Name:           req.Name,
		Password:       string(hashedPassword),
		Role:           models.RoleUser,
		ApprovalStatus: models.ApprovalPending,
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	return &models.AuthResponse{
		Status:         "success",
		UserID:         user.ID,
		Email:          user.Email,
		Name:           user.Name,
		Role:           user.Role,
		ApprovalStatus: user.ApprovalStatus,
	}, nil
}

func (s *DefaultService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	user, err := s.repo.GetUserByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("error getting user: %w", err)
	}

	if user == nil {
		return nil, models.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, models.ErrInvalidCredentials
	}

	token, err := s.generateJWT(user)
	if err != nil {
		return nil, fmt.Errorf("error generating token: %w", err)
	}

	return &models.AuthResponse{
		Status:         "success",
		UserID:         user.ID,
		Role:           user.Role,
		ApprovalStatus: user.ApprovalStatus,
		Token:          token,
		ExpiresIn:      int(s.tokenDuration.Seconds()),
	}, nil
}

func (s *DefaultService) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.ErrNotFound
	}
	return user, nil
}

func (s *DefaultService) ListPendingUsers(ctx context.Context) ([]models.User, error) {
	return s.repo.ListUsersByApproval(ctx, models.ApprovalPending)
}

// ReviewUser resolves a pending account to APPROVED or REJECTED. An account
// can only be reviewed once.
func (s *DefaultService) ReviewUser(ctx context.Context, userID string, status models.ApprovalStatus) error {
	if status != models.ApprovalApproved && status != models.ApprovalRejected {
		return models.ErrNotPending
	}

	if err := s.repo.UpdateUserApproval(ctx, userID, status); err != nil {
		return err
	}

	s.views.Invalidate(cache.AdminDashboardView, cache.ProfileView(userID))
	return nil
}

// generateJWT mints the session token. Role and approval status travel in the
// claims so the middleware can authorize without a database round-trip.
func (s *DefaultService) generateJWT(user *models.User) (string, error) {
	expirationTime := time.Now().Add(s.tokenDuration)

	claims := jwt.MapClaims{
		"sub":      user.ID, // subject
		"role":     string(user.Role),
		"approval": string(user.ApprovalStatus),
		"exp":      expirationTime.Unix(),
		"iat":      time.Now().Unix(), // issued at
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}
