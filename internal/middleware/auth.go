package middleware

import (
	"net/http"
	"net/url"
	"yatube/internal/db"
	"yatube/internal/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const CheckUserKey = "user"

// SessionUserKey is the session field holding the logged in user's id.
const SessionUserKey = "user_id"

// LoginURL is where anonymous visitors of protected pages are sent.
const LoginURL = "/auth/login/"

// AuthRequired redirects anonymous users to the login page, keeping the
// requested path in ?next=.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) == nil {
			c.Redirect(http.StatusFound, LoginURL+"?next="+url.QueryEscape(c.Request.URL.RequestURI()))
			c.Abort()
			return
		}
		c.Next()
	}
}

// LoadUser retrieves user from session and sets to context
func LoadUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		userID := session.Get(SessionUserKey)

		if userID != nil {
			var user models.User
			err := db.DB.First(&user, userID).Error
			if err == nil {
				c.Set(CheckUserKey, &user)
			} else {
				logrus.WithError(err).WithField("user_id", userID).Debug("Dropping stale session")
				session.Delete(SessionUserKey)
				session.Save()
			}
		}
		c.Next()
	}
}

// CurrentUser returns the logged in user or nil.
func CurrentUser(c *gin.Context) *models.User {
	if v, ok := c.Get(CheckUserKey); ok {
		if user, ok := v.(*models.User); ok {
			return user
		}
	}
	return nil
}
