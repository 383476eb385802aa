package forms

import (
	"fmt"
	"strings"
	"yatube/internal/models"

	"gorm.io/gorm"
)

// ReservedUsernames collide with top level routes and cannot be registered.
var ReservedUsernames = map[string]bool{
	"about": true, "admin": true, "auth": true, "follow": true,
	"followees": true, "followers": true, "group": true, "groups": true,
	"media": true, "metrics": true, "new": true, "robots.txt": true,
	"search": true, "sitemap.xml": true, "static": true, "users": true,
}

type SignupForm struct {
	FirstName string `form:"first_name" binding:"max=150"`
	LastName  string `form:"last_name" binding:"max=150"`
	Username  string `form:"username" binding:"required,max=150,username"`
	Email     string `form:"email" binding:"omitempty,max=254,email"`
	Password1 string `form:"password1" binding:"required,min=8"`
	Password2 string `form:"password2" binding:"required,eqfield=Password1"`
}

// Check runs the validations that need the database.
func (f *SignupForm) Check(tx *gorm.DB, errs Errors) error {
	if f.Username == "" {
		return nil
	}
	if ReservedUsernames[strings.ToLower(f.Username)] {
		errs.Add("username", "This username is reserved.")
		return nil
	}

	var count int64
	if err := tx.Model(&models.User{}).Where("username = ?", f.Username).Count(&count).Error; err != nil {
		return fmt.Errorf("check username: %w", err)
	}
	if count > 0 {
		errs.Add("username", "A user with that username already exists.")
	}
	return nil
}

type LoginForm struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
}

type GroupForm struct {
	Title       string `form:"title" binding:"required,notblank,max=200"`
	Slug        string `form:"slug" binding:"required,max=30,slug"`
	Description string `form:"description"`
}

func (f *GroupForm) Check(tx *gorm.DB, errs Errors) error {
	if f.Slug == "" {
		return nil
	}
	var count int64
	if err := tx.Model(&models.Group{}).Where("slug = ?", f.Slug).Count(&count).Error; err != nil {
		return fmt.Errorf("check slug: %w", err)
	}
	if count > 0 {
		errs.Add("slug", "Group with this slug already exists.")
	}
	return nil
}
