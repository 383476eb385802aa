package handlers

import (
	"net/http"
	"yatube/internal/db"
	"yatube/internal/pagination"
	"yatube/internal/search"

	"github.com/gin-gonic/gin"
)

// Search lists posts matching ?q=. An empty query sends the user back.
func (h *PostHandler) Search(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		redirectBack(c, "/")
		return
	}

	plan, err := search.Construct(q).Plan(db.DB.WithContext(c.Request.Context()))
	if err != nil {
		ServerError(c, err)
		return
	}

	data := gin.H{
		"Q":         q,
		"Message":   plan.Message,
		"PageQuery": q,
	}
	if plan.Found {
		page, posts, err := listPosts(c, plan.Scopes...)
		if err != nil {
			ServerError(c, err)
			return
		}
		data["Page"], data["Posts"] = page, posts
	} else {
		data["Page"] = pagination.New(0, pagination.PostsPerPage).Page("")
	}
	Render(c, http.StatusOK, "posts/search.html", data)
}
