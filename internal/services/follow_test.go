package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"yatube/internal/config"
	"yatube/internal/db"
	"yatube/internal/models"

	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := db.Open(config.DriverSQLite, fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := db.Migrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return conn
}

func createUsers(t *testing.T, conn *gorm.DB, names ...string) []models.User {
	t.Helper()
	users := make([]models.User, len(names))
	for i, name := range names {
		users[i] = models.User{Username: name, Password: "x"}
		if err := conn.Create(&users[i]).Error; err != nil {
			t.Fatalf("create user %s: %v", name, err)
		}
	}
	return users
}

func countFollows(t *testing.T, conn *gorm.DB) int64 {
	t.Helper()
	var n int64
	conn.Model(&models.Follow{}).Count(&n)
	return n
}

func TestFollowIsIdempotent(t *testing.T) {
	conn := openTestDB(t)
	users := createUsers(t, conn, "reader", "writer")
	s := NewFollowService(conn)
	ctx := context.Background()

	created, err := s.Follow(ctx, users[0].ID, users[1].ID)
	if err != nil || !created {
		t.Fatalf("first follow: created=%v err=%v", created, err)
	}
	for i := 0; i < 3; i++ {
		created, err = s.Follow(ctx, users[0].ID, users[1].ID)
		if err != nil || created {
			t.Fatalf("repeat follow: created=%v err=%v", created, err)
		}
	}
	if n := countFollows(t, conn); n != 1 {
		t.Errorf("expected 1 follow, got %d", n)
	}
}

func TestFollowSelf(t *testing.T) {
	conn := openTestDB(t)
	users := createUsers(t, conn, "narcissus")
	s := NewFollowService(conn)

	_, err := s.Follow(context.Background(), users[0].ID, users[0].ID)
	if !errors.Is(err, models.ErrSelfFollow) {
		t.Fatalf("expected ErrSelfFollow, got %v", err)
	}
	if n := countFollows(t, conn); n != 0 {
		t.Errorf("expected no follows, got %d", n)
	}
}

func TestUnfollow(t *testing.T) {
	conn := openTestDB(t)
	users := createUsers(t, conn, "a", "b", "c")
	s := NewFollowService(conn)
	ctx := context.Background()

	s.Follow(ctx, users[0].ID, users[1].ID)
	s.Follow(ctx, users[0].ID, users[2].ID)

	removed, err := s.Unfollow(ctx, users[0].ID, users[1].ID)
	if err != nil || !removed {
		t.Fatalf("unfollow: removed=%v err=%v", removed, err)
	}
	if n := countFollows(t, conn); n != 1 {
		t.Errorf("expected 1 follow left, got %d", n)
	}

	removed, err = s.Unfollow(ctx, users[0].ID, users[1].ID)
	if err != nil || removed {
		t.Errorf("second unfollow: removed=%v err=%v", removed, err)
	}

	following, _ := s.IsFollowing(ctx, users[0].ID, users[2].ID)
	if !following {
		t.Error("expected a to still follow c")
	}
	following, _ = s.IsFollowing(ctx, users[0].ID, users[1].ID)
	if following {
		t.Error("expected a to no longer follow b")
	}
}

func TestFeedContainsOnlyFollowedAuthors(t *testing.T) {
	conn := openTestDB(t)
	users := createUsers(t, conn, "reader", "liked", "ignored")
	reader, liked, ignored := users[0], users[1], users[2]
	s := NewFollowService(conn)
	ctx := context.Background()

	for _, p := range []models.Post{
		{Text: "first", AuthorID: liked.ID},
		{Text: "noise", AuthorID: ignored.ID},
		{Text: "second", AuthorID: liked.ID},
		{Text: "own", AuthorID: reader.ID},
	} {
		if err := conn.Create(&p).Error; err != nil {
			t.Fatalf("create post: %v", err)
		}
	}

	var empty []models.Post
	s.FollowQuery(ctx, reader.ID).Find(&empty)
	if len(empty) != 0 {
		t.Fatalf("expected empty feed, got %d posts", len(empty))
	}

	s.Follow(ctx, reader.ID, liked.ID)

	var feed []models.Post
	if err := s.FollowQuery(ctx, reader.ID).Find(&feed).Error; err != nil {
		t.Fatalf("feed: %v", err)
	}
	if len(feed) != 2 {
		t.Fatalf("expected 2 posts, got %d", len(feed))
	}
	if feed[0].Text != "second" || feed[1].Text != "first" {
		t.Errorf("unexpected order: %q, %q", feed[0].Text, feed[1].Text)
	}
}

func TestFolloweesAndFollowers(t *testing.T) {
	conn := openTestDB(t)
	users := createUsers(t, conn, "a", "b", "c")
	s := NewFollowService(conn)
	ctx := context.Background()

	s.Follow(ctx, users[0].ID, users[1].ID)
	s.Follow(ctx, users[0].ID, users[2].ID)
	s.Follow(ctx, users[2].ID, users[1].ID)

	var followees []models.User
	conn.Model(&models.User{}).Scopes(Followees(users[0].ID)).Order("id").Find(&followees)
	if len(followees) != 2 || followees[0].Username != "b" || followees[1].Username != "c" {
		t.Errorf("unexpected followees: %+v", followees)
	}

	var followers []models.User
	conn.Model(&models.User{}).Scopes(Followers(users[1].ID)).Order("id").Find(&followers)
	if len(followers) != 2 || followers[0].Username != "a" || followers[1].Username != "c" {
		t.Errorf("unexpected followers: %+v", followers)
	}

	ids, err := s.FollowingIDs(ctx, users[0].ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 2 || !ids[users[1].ID] || !ids[users[2].ID] {
		t.Errorf("unexpected following ids: %v", ids)
	}
}
