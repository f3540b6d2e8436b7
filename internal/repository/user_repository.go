package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"neuromentor/internal/model"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// CreateOrGet returns the user registered with the same (name, gender, age)
// triple, inserting one when none exists. A nil gender or age only matches NULL.
func (r *UserRepository) CreateOrGet(ctx context.Context, name string, gender *string, age *int) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		query := tx.Where("first_name = ?", name)
		if gender == nil {
			query = query.Where("gender IS NULL")
		} else {
			query = query.Where("gender = ?", *gender)
		}
		if age == nil {
			query = query.Where("age IS NULL")
		} else {
			query = query.Where("age = ?", *age)
		}

		var candidates []model.User
		if err := query.Order("id ASC").Find(&candidates).Error; err != nil {
			return fmt.Errorf("query user by profile failed: %w", err)
		}
		if found := exactProfileMatch(candidates, name, gender); found != nil {
			user = *found
			return nil
		}

		user = model.User{
			FirstName: name,
			Gender:    gender,
			Age:       age,
		}
		if err := tx.Create(&user).Error; err != nil {
			return fmt.Errorf("create user failed: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// exactProfileMatch picks the first candidate whose name and gender match
// byte for byte. Case- or accent-insensitive column collations can return rows
// that belong to a different person.
func exactProfileMatch(candidates []model.User, name string, gender *string) *model.User {
	for i := range candidates {
		c := &candidates[i]
		if c.FirstName != name {
			continue
		}
		if (c.Gender == nil) != (gender == nil) {
			continue
		}
		if gender != nil && *c.Gender != *gender {
			continue
		}
		return c
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query user by id failed: %w", err)
	}
	return &user, nil
}
