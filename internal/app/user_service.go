package app

import (
	"context"
	"strings"

	"neuromentor/internal/model"
	"neuromentor/internal/repository"
)

const maxNameLength = 255

type UserService struct {
	userRepo         *repository.UserRepository
	subscriptionRepo *repository.SubscriptionRepository
}

type RegisterInput struct {
	Name   string
	Gender *string
	Age    *int
}

func NewUserService(userRepo *repository.UserRepository, subscriptionRepo *repository.SubscriptionRepository) *UserService {
	return &UserService{userRepo: userRepo, subscriptionRepo: subscriptionRepo}
}

// Register returns the existing user when the (name, gender, age) profile is
// already known. Every registered user holds at least the free plan.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (*model.User, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" || len(name) > maxNameLength {
		return nil, ErrInvalidInput
	}
	if input.Age != nil && *input.Age < 0 {
		return nil, ErrInvalidInput
	}

	var gender *string
	if input.Gender != nil {
		if g := strings.TrimSpace(*input.Gender); g != "" {
			gender = &g
		}
	}

	user, err := s.userRepo.CreateOrGet(ctx, name, gender, input.Age)
	if err != nil {
		return nil, err
	}
	if _, err := s.subscriptionRepo.EnsureDefault(ctx, user.ID); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) Get(ctx context.Context, id uint) (*model.User, error) {
	if id == 0 {
		return nil, ErrUserNotFound
	}
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}
