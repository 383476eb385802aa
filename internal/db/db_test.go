package db

import (
	"errors"
	"fmt"
	"testing"
	"yatube/internal/config"
	"yatube/internal/models"

	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := Open(config.DriverSQLite, dsn)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := Migrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return conn
}

func TestWithForeignKeys(t *testing.T) {
	cases := map[string]string{
		"yatube.db":                 "yatube.db?_foreign_keys=1",
		"file:x?mode=memory":        "file:x?mode=memory&_foreign_keys=1",
		"file:x?_fk=1":              "file:x?_fk=1",
		"file:x?_foreign_keys=true": "file:x?_foreign_keys=true",
	}
	for in, want := range cases {
		if got := withForeignKeys(in); got != want {
			t.Errorf("withForeignKeys(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	if _, err := Open("mysql", "dsn"); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestSeedGroupsOnlyOnce(t *testing.T) {
	conn := openTestDB(t)

	if err := SeedGroups(conn); err != nil {
		t.Fatalf("seed: %v", err)
	}
	var first int64
	conn.Model(&models.Group{}).Count(&first)
	if first == 0 {
		t.Fatal("expected seeded groups")
	}

	if err := SeedGroups(conn); err != nil {
		t.Fatalf("second seed: %v", err)
	}
	var second int64
	conn.Model(&models.Group{}).Count(&second)
	if first != second {
		t.Errorf("expected %d groups after reseed, got %d", first, second)
	}
}

func TestDeletingAuthorCascades(t *testing.T) {
	conn := openTestDB(t)

	author := models.User{Username: "author", Password: "x"}
	reader := models.User{Username: "reader", Password: "x"}
	conn.Create(&author)
	conn.Create(&reader)

	post := models.Post{Text: "hello", AuthorID: author.ID}
	conn.Create(&post)
	conn.Create(&models.Comment{PostID: post.ID, AuthorID: reader.ID, Text: "hi"})
	conn.Create(&models.Follow{UserID: reader.ID, AuthorID: author.ID})

	if err := conn.Delete(&author).Error; err != nil {
		t.Fatalf("delete author: %v", err)
	}

	var posts, comments, follows int64
	conn.Model(&models.Post{}).Count(&posts)
	conn.Model(&models.Comment{}).Count(&comments)
	conn.Model(&models.Follow{}).Count(&follows)
	if posts != 0 || comments != 0 || follows != 0 {
		t.Errorf("expected cascade delete, got posts=%d comments=%d follows=%d", posts, comments, follows)
	}
}

func TestDeletingGroupKeepsPosts(t *testing.T) {
	conn := openTestDB(t)

	author := models.User{Username: "author", Password: "x"}
	conn.Create(&author)
	group := models.Group{Title: "Cats", Slug: "cats"}
	conn.Create(&group)
	post := models.Post{Text: "meow", AuthorID: author.ID, GroupID: &group.ID}
	conn.Create(&post)

	if err := conn.Delete(&group).Error; err != nil {
		t.Fatalf("delete group: %v", err)
	}

	var reloaded models.Post
	if err := conn.First(&reloaded, post.ID).Error; err != nil {
		t.Fatalf("post should survive group deletion: %v", err)
	}
	if reloaded.GroupID != nil {
		t.Errorf("expected group to be cleared, got %d", *reloaded.GroupID)
	}
}

func TestFollowConstraints(t *testing.T) {
	conn := openTestDB(t)

	a := models.User{Username: "a", Password: "x"}
	b := models.User{Username: "b", Password: "x"}
	conn.Create(&a)
	conn.Create(&b)

	if err := conn.Create(&models.Follow{UserID: a.ID, AuthorID: a.ID}).Error; !errors.Is(err, models.ErrSelfFollow) {
		t.Errorf("expected ErrSelfFollow, got %v", err)
	}

	if err := conn.Create(&models.Follow{UserID: a.ID, AuthorID: b.ID}).Error; err != nil {
		t.Fatalf("first follow: %v", err)
	}
	if err := conn.Create(&models.Follow{UserID: a.ID, AuthorID: b.ID}).Error; !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Errorf("expected duplicated key error, got %v", err)
	}

	// The check constraint holds even when the model hook is bypassed.
	err := conn.Exec("INSERT INTO follows (user_id, author_id, created_at) VALUES (?, ?, CURRENT_TIMESTAMP)", b.ID, b.ID).Error
	if err == nil {
		t.Error("expected check constraint to reject self-follow")
	}
}
