package services

import (
	"context"
	"fmt"
	"yatube/internal/models"
	"yatube/internal/utils"

	"gorm.io/gorm"
)

// NewUser describes an account to register.
type NewUser struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      string
}

// CreateUser hashes the password and stores the account.
func CreateUser(ctx context.Context, tx *gorm.DB, nu NewUser) (*models.User, error) {
	hash, err := utils.HashPassword(nu.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	role := nu.Role
	if role == "" {
		role = models.RoleUser
	}
	user := models.User{
		Username:  nu.Username,
		Email:     nu.Email,
		Password:  hash,
		FirstName: nu.FirstName,
		LastName:  nu.LastName,
		Role:      role,
	}
	if err := tx.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, fmt.Errorf("create user %q: %w", nu.Username, err)
	}
	return &user, nil
}

// Authenticate returns the user when the credentials match, nil otherwise.
func Authenticate(ctx context.Context, tx *gorm.DB, username, password string) (*models.User, error) {
	var user models.User
	res := tx.WithContext(ctx).Where("username = ?", username).Limit(1).Find(&user)
	if res.Error != nil {
		return nil, fmt.Errorf("find user %q: %w", username, res.Error)
	}
	if res.RowsAffected == 0 || !utils.CheckPasswordHash(password, user.Password) {
		return nil, nil
	}
	return &user, nil
}

// CreateGroup stores a new group. Slugs are unique; a taken slug surfaces as
// gorm.ErrDuplicatedKey.
func CreateGroup(ctx context.Context, tx *gorm.DB, title, slug, description string) (*models.Group, error) {
	group := models.Group{Title: title, Slug: slug, Description: description}
	if err := tx.WithContext(ctx).Create(&group).Error; err != nil {
		return nil, fmt.Errorf("create group %q: %w", slug, err)
	}
	return &group, nil
}
