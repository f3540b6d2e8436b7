package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"neuromentor/internal/model"
	"neuromentor/internal/pkg/jwtutil"
	"neuromentor/internal/repository"
)

const minPasswordLength = 8

var ErrInvalidCredential = errors.New("invalid user id or password")

type AdminService struct {
	userRepo         *repository.UserRepository
	adminRepo        *repository.AdminRepository
	subscriptionRepo *repository.SubscriptionRepository
	usageRepo        *repository.UsageLogRepository
	jwtSecret        string
	jwtExpiration    time.Duration
}

type CreateAdminInput struct {
	UserID   uint
	Role     string
	Password string
}

type LoginInput struct {
	UserID   uint
	Password string
}

type LoginResult struct {
	Token string
	Role  string
}

type UserDetail struct {
	User          *model.User          `json:"user"`
	Subscriptions []model.Subscription `json:"subscriptions"`
	Usage         []model.UsageLog     `json:"usage"`
}

func NewAdminService(
	userRepo *repository.UserRepository,
	adminRepo *repository.AdminRepository,
	subscriptionRepo *repository.SubscriptionRepository,
	usageRepo *repository.UsageLogRepository,
	jwtSecret string,
	jwtExpiration time.Duration,
) *AdminService {
	return &AdminService{
		userRepo:         userRepo,
		adminRepo:        adminRepo,
		subscriptionRepo: subscriptionRepo,
		usageRepo:        usageRepo,
		jwtSecret:        jwtSecret,
		jwtExpiration:    jwtExpiration,
	}
}

func (s *AdminService) CreateAdmin(ctx context.Context, input CreateAdminInput) (*model.Admin, error) {
	role := strings.TrimSpace(input.Role)
	if role == "" {
		role = model.AdminRoleModerator
	}
	if !model.ValidAdminRole(role) || len(input.Password) < minPasswordLength {
		return nil, ErrInvalidInput
	}

	user, err := s.userRepo.GetByID(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password failed: %w", err)
	}

	admin := &model.Admin{
		UserID:       user.ID,
		Role:         role,
		PasswordHash: string(hash),
	}
	if err := s.adminRepo.Create(ctx, admin); err != nil {
		return nil, err
	}
	return admin, nil
}

func (s *AdminService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	if input.UserID == 0 || input.Password == "" {
		return nil, ErrInvalidInput
	}

	admin, err := s.adminRepo.GetByUserID(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	if admin == nil {
		return nil, ErrInvalidCredential
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrInvalidCredential
	}

	token, err := jwtutil.GenerateToken(s.jwtSecret, s.jwtExpiration, admin.UserID, admin.Role)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, Role: admin.Role}, nil
}

func (s *AdminService) UserDetail(ctx context.Context, userID uint) (*UserDetail, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	subscriptions, err := s.subscriptionRepo.ListByUserID(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	usage, err := s.usageRepo.ListByUserID(ctx, user.ID, 0)
	if err != nil {
		return nil, err
	}

	return &UserDetail{User: user, Subscriptions: subscriptions, Usage: usage}, nil
}
