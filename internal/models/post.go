package models

import (
	"time"
)

// PostOrder is the default listing order, newest first.
const PostOrder = "pub_date DESC, id DESC"

type Post struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	PubDate   time.Time `gorm:"autoCreateTime;index" json:"pub_date"`
	AuthorID  uint      `gorm:"not null;index" json:"author_id"`
	Author    User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"author"`
	GroupID   *uint     `gorm:"index" json:"group_id"`
	Group     *Group    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"group"`
	Image     string    `gorm:"size:255" json:"image"` // path relative to the media root
	UpdatedAt time.Time `json:"updated_at"`

	// Filled by listing queries, not stored.
	CommentCount int `gorm:"-" json:"comment_count"`
}

func (p Post) String() string {
	runes := []rune(p.Text)
	if len(runes) > 15 {
		return string(runes[:15])
	}
	return p.Text
}
