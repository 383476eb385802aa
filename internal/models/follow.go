package models

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

var ErrSelfFollow = errors.New("user cannot follow themselves")

// Follow is a directed subscription edge from User to Author. The pair is
// unique and a user may not follow themselves; both rules are also database
// constraints.
type Follow struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index;uniqueIndex:idx_follow_user_author" json:"user_id"`
	User      User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`
	AuthorID  uint      `gorm:"not null;index;uniqueIndex:idx_follow_user_author;check:user_not_author,user_id <> author_id" json:"author_id"`
	Author    User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"author"`
	CreatedAt time.Time `json:"created_at"`
}

func (f *Follow) Validate() error {
	if f.UserID == f.AuthorID {
		return ErrSelfFollow
	}
	return nil
}

func (f *Follow) BeforeCreate(tx *gorm.DB) error {
	return f.Validate()
}
