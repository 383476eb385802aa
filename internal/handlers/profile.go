package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"yatube/internal/db"
	"yatube/internal/middleware"
	"yatube/internal/models"
	"yatube/internal/monitoring"
	"yatube/internal/pagination"
	"yatube/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type ProfileHandler struct{}

func NewProfileHandler() *ProfileHandler {
	return &ProfileHandler{}
}

func findUser(c *gin.Context) *models.User {
	var user models.User
	err := db.DB.WithContext(c.Request.Context()).Where("username = ?", c.Param("username")).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		NotFound(c)
		return nil
	}
	if err != nil {
		ServerError(c, err)
		return nil
	}
	return &user
}

func (h *ProfileHandler) followService(c *gin.Context) *services.FollowService {
	return services.NewFollowService(db.DB.WithContext(c.Request.Context()))
}

// followingSet is the set of authors the current user follows, empty for
// anonymous visitors.
func (h *ProfileHandler) followingSet(c *gin.Context) (map[uint]bool, error) {
	user := middleware.CurrentUser(c)
	if user == nil {
		return map[uint]bool{}, nil
	}
	return h.followService(c).FollowingIDs(c.Request.Context(), user.ID)
}

func (h *ProfileHandler) Profile(c *gin.Context) {
	author := findUser(c)
	if author == nil {
		return
	}

	page, posts, err := listPosts(c, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("posts.author_id = ?", author.ID)
	})
	if err != nil {
		ServerError(c, err)
		return
	}

	following := false
	if user := middleware.CurrentUser(c); user != nil {
		if following, err = h.followService(c).IsFollowing(c.Request.Context(), user.ID, author.ID); err != nil {
			ServerError(c, err)
			return
		}
	}

	var followers, followees int64
	conn := db.DB.WithContext(c.Request.Context())
	if err := conn.Model(&models.Follow{}).Where("author_id = ?", author.ID).Count(&followers).Error; err != nil {
		ServerError(c, err)
		return
	}
	if err := conn.Model(&models.Follow{}).Where("user_id = ?", author.ID).Count(&followees).Error; err != nil {
		ServerError(c, err)
		return
	}

	Render(c, http.StatusOK, "posts/profile.html", gin.H{
		"Author":         author,
		"Page":           page,
		"Posts":          posts,
		"Following":      following,
		"FollowersCount": followers,
		"FolloweesCount": followees,
	})
}

// renderUsers paginates users matched by scopes, ordered by id.
func (h *ProfileHandler) renderUsers(c *gin.Context, heading string, scopes ...func(*gorm.DB) *gorm.DB) {
	query := db.DB.WithContext(c.Request.Context()).Model(&models.User{}).Scopes(scopes...)
	page, err := pagination.Paginate(query, pagination.UsersPerPage, c.Query("page"))
	if err != nil {
		ServerError(c, err)
		return
	}

	var users []models.User
	if err := page.Apply(query.Session(&gorm.Session{})).Order("users.id").Find(&users).Error; err != nil {
		ServerError(c, err)
		return
	}

	following, err := h.followingSet(c)
	if err != nil {
		ServerError(c, err)
		return
	}

	Render(c, http.StatusOK, "posts/users.html", gin.H{
		"Heading":   heading,
		"Page":      page,
		"Users":     users,
		"Following": following,
	})
}

func (h *ProfileHandler) Users(c *gin.Context) {
	h.renderUsers(c, "Authors")
}

func (h *ProfileHandler) Followees(c *gin.Context) {
	h.renderUsers(c, "You follow", services.Followees(middleware.CurrentUser(c).ID))
}

func (h *ProfileHandler) Followers(c *gin.Context) {
	h.renderUsers(c, "Your followers", services.Followers(middleware.CurrentUser(c).ID))
}

// FollowIndex is the feed of posts by followed authors.
func (h *ProfileHandler) FollowIndex(c *gin.Context) {
	page, posts, err := listPosts(c, services.FeedScope(middleware.CurrentUser(c).ID))
	if err != nil {
		ServerError(c, err)
		return
	}
	Render(c, http.StatusOK, "posts/follow.html", gin.H{
		"Page":  page,
		"Posts": posts,
	})
}

func (h *ProfileHandler) ProfileFollow(c *gin.Context) {
	author := findUser(c)
	if author == nil {
		return
	}

	user := middleware.CurrentUser(c)
	if user.ID != author.ID {
		created, err := h.followService(c).Follow(c.Request.Context(), user.ID, author.ID)
		if err != nil {
			ServerError(c, err)
			return
		}
		if created {
			monitoring.Follows.Inc()
			logrus.WithFields(logrus.Fields{"user": user.Username, "author": author.Username}).Info("Followed author")
		}
	}
	redirectBack(c, fmt.Sprintf("/%s/", author.Username))
}

func (h *ProfileHandler) ProfileUnfollow(c *gin.Context) {
	username := c.Param("username")
	user := middleware.CurrentUser(c)
	conn := db.DB.WithContext(c.Request.Context())

	var author models.User
	err := conn.Select("id").Where("username = ?", username).First(&author).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		ServerError(c, err)
		return
	}
	if err == nil {
		removed, err := h.followService(c).Unfollow(c.Request.Context(), user.ID, author.ID)
		if err != nil {
			ServerError(c, err)
			return
		}
		if removed {
			monitoring.Unfollows.Inc()
		}
	}
	redirectBack(c, fmt.Sprintf("/%s/", username))
}
