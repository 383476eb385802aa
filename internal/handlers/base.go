package handlers

import (
	"net/http"
	"yatube/internal/db"
	"yatube/internal/middleware"
	"yatube/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Render helper to inject common variables like 'current user'
func Render(c *gin.Context, code int, name string, obj gin.H) {
	if obj == nil {
		obj = gin.H{}
	}

	if user := middleware.CurrentUser(c); user != nil {
		obj["CurrentUser"] = user
	}
	obj["CurrentPath"] = c.Request.URL.Path
	if _, ok := obj["Q"]; !ok {
		obj["Q"] = ""
	}

	// Site-wide counters shown in the footer. Failed counts are logged and
	// omitted.
	conn := db.DB.WithContext(c.Request.Context())
	for key, model := range map[string]any{
		"PostsTotal":   &models.Post{},
		"GroupsTotal":  &models.Group{},
		"AuthorsTotal": &models.User{},
	} {
		var n int64
		if err := conn.Model(model).Count(&n).Error; err != nil {
			logrus.WithError(err).WithField("counter", key).Warn("Failed to count footer totals")
			continue
		}
		obj[key] = n
	}

	c.HTML(code, name, obj)
}

// NotFound renders the 404 page for the current path.
func NotFound(c *gin.Context) {
	Render(c, http.StatusNotFound, "misc/404.html", gin.H{"Path": c.Request.URL.Path})
}

func Forbidden(c *gin.Context) {
	Render(c, http.StatusForbidden, "misc/403.html", nil)
}

// ServerError logs err and renders the 500 page.
func ServerError(c *gin.Context, err error) {
	logrus.WithError(err).WithFields(logrus.Fields{
		"method": c.Request.Method,
		"path":   c.Request.URL.Path,
	}).Error("Request failed")
	Render(c, http.StatusInternalServerError, "misc/500.html", nil)
}

// Recovery renders the 500 page for panics recovered by gin.
func Recovery(c *gin.Context, recovered any) {
	logrus.WithField("panic", recovered).WithField("path", c.Request.URL.Path).Error("Recovered from panic")
	Render(c, http.StatusInternalServerError, "misc/500.html", nil)
	c.Abort()
}

// redirectBack sends the user to the Referer, or to fallback without one.
func redirectBack(c *gin.Context, fallback string) {
	target := c.Request.Referer()
	if target == "" {
		target = fallback
	}
	c.Redirect(http.StatusFound, target)
}
