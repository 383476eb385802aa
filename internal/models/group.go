package models

import (
	"time"
)

// Group is a named category a post may optionally belong to. Slug is the
// public identity and is not edited once created.
type Group struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:200;not null" json:"title"`
	Slug        string    `gorm:"size:30;uniqueIndex;not null" json:"slug"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

func (g Group) String() string {
	return g.Title
}
