package services

import (
	"context"
	"errors"
	"fmt"
	"yatube/internal/models"

	"gorm.io/gorm"
)

// FollowService manages follow edges and the feed built from them.
type FollowService struct {
	db *gorm.DB
}

func NewFollowService(db *gorm.DB) *FollowService {
	return &FollowService{db: db}
}

// FeedScope limits a posts query to authors the user follows.
func FeedScope(userID uint) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		return tx.Where("posts.author_id IN (?)",
			tx.Session(&gorm.Session{NewDB: true}).
				Model(&models.Follow{}).
				Select("author_id").
				Where("user_id = ?", userID))
	}
}

// FollowQuery returns the feed for userID, newest first.
func (s *FollowService) FollowQuery(ctx context.Context, userID uint) *gorm.DB {
	return s.db.WithContext(ctx).
		Model(&models.Post{}).
		Scopes(FeedScope(userID)).
		Order(models.PostOrder)
}

// Follow creates the edge if it does not exist yet. The result reports whether
// a new row was inserted. A concurrent insert of the same edge is not an error.
func (s *FollowService) Follow(ctx context.Context, userID, authorID uint) (bool, error) {
	follow := models.Follow{UserID: userID, AuthorID: authorID}
	if err := follow.Validate(); err != nil {
		return false, err
	}

	tx := s.db.WithContext(ctx)
	var existing int64
	err := tx.Model(&models.Follow{}).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Count(&existing).Error
	if err != nil {
		return false, fmt.Errorf("follow %d -> %d: %w", userID, authorID, err)
	}
	if existing > 0 {
		return false, nil
	}

	err = tx.Create(&follow).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("follow %d -> %d: %w", userID, authorID, err)
	}
	return true, nil
}

// Unfollow removes the edge. The result reports whether a row was deleted.
func (s *FollowService) Unfollow(ctx context.Context, userID, authorID uint) (bool, error) {
	res := s.db.WithContext(ctx).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Delete(&models.Follow{})
	if res.Error != nil {
		return false, fmt.Errorf("unfollow %d -> %d: %w", userID, authorID, res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (s *FollowService) IsFollowing(ctx context.Context, userID, authorID uint) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check follow %d -> %d: %w", userID, authorID, err)
	}
	return count > 0, nil
}

// FollowingIDs returns the set of author IDs the user follows.
func (s *FollowService) FollowingIDs(ctx context.Context, userID uint) (map[uint]bool, error) {
	var ids []uint
	err := s.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("user_id = ?", userID).
		Pluck("author_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("list followed authors of %d: %w", userID, err)
	}

	set := make(map[uint]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

// Followees lists users followed by userID.
func Followees(userID uint) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		return tx.Where("users.id IN (?)",
			tx.Session(&gorm.Session{NewDB: true}).
				Model(&models.Follow{}).
				Select("author_id").
				Where("user_id = ?", userID))
	}
}

// Followers lists users following userID.
func Followers(userID uint) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		return tx.Where("users.id IN (?)",
			tx.Session(&gorm.Session{NewDB: true}).
				Model(&models.Follow{}).
				Select("user_id").
				Where("author_id = ?", userID))
	}
}
