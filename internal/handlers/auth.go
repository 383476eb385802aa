package handlers

import (
	"errors"
	"net/http"
	"strings"
	"yatube/internal/db"
	"yatube/internal/forms"
	"yatube/internal/middleware"
	"yatube/internal/monitoring"
	"yatube/internal/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type AuthHandler struct{}

func NewAuthHandler() *AuthHandler {
	return &AuthHandler{}
}

// safeNext keeps only local redirect targets.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}

func login(c *gin.Context, userID uint) error {
	session := sessions.Default(c)
	session.Set(middleware.SessionUserKey, userID)
	return session.Save()
}

func (h *AuthHandler) ShowSignup(c *gin.Context) {
	Render(c, http.StatusOK, "auth/signup.html", gin.H{"Form": forms.SignupForm{}, "Errors": forms.Errors{}})
}

func (h *AuthHandler) Signup(c *gin.Context) {
	conn := db.DB.WithContext(c.Request.Context())

	var form forms.SignupForm
	errs := forms.Bind(c, &form)
	if err := form.Check(conn, errs); err != nil {
		ServerError(c, err)
		return
	}
	if errs.Any() {
		Render(c, http.StatusBadRequest, "auth/signup.html", gin.H{"Form": form, "Errors": errs})
		return
	}

	user, err := services.CreateUser(c.Request.Context(), conn, services.NewUser{
		Username:  form.Username,
		Email:     form.Email,
		Password:  form.Password1,
		FirstName: form.FirstName,
		LastName:  form.LastName,
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		errs.Add("username", "A user with that username already exists.")
		Render(c, http.StatusBadRequest, "auth/signup.html", gin.H{"Form": form, "Errors": errs})
		return
	}
	if err != nil {
		ServerError(c, err)
		return
	}

	if err := login(c, user.ID); err != nil {
		ServerError(c, err)
		return
	}
	monitoring.Signups.Inc()
	logrus.WithField("username", user.Username).Info("User signed up")
	c.Redirect(http.StatusFound, "/")
}

func (h *AuthHandler) ShowLogin(c *gin.Context) {
	Render(c, http.StatusOK, "auth/login.html", gin.H{
		"Form":   forms.LoginForm{},
		"Errors": forms.Errors{},
		"Next":   c.Query("next"),
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	next := c.PostForm("next")
	if next == "" {
		next = c.Query("next")
	}

	var form forms.LoginForm
	errs := forms.Bind(c, &form)
	if errs.Any() {
		monitoring.LoginFailure.WithLabelValues("invalid_form").Inc()
		Render(c, http.StatusBadRequest, "auth/login.html", gin.H{"Form": form, "Errors": errs, "Next": next})
		return
	}

	user, err := services.Authenticate(c.Request.Context(), db.DB, form.Username, form.Password)
	if err != nil {
		ServerError(c, err)
		return
	}
	if user == nil {
		monitoring.LoginFailure.WithLabelValues("bad_credentials").Inc()
		errs.Add(forms.NonField, "Please enter a correct username and password. Note that both fields may be case-sensitive.")
		Render(c, http.StatusBadRequest, "auth/login.html", gin.H{"Form": form, "Errors": errs, "Next": next})
		return
	}

	if err := login(c, user.ID); err != nil {
		ServerError(c, err)
		return
	}
	monitoring.LoginSuccess.Inc()
	c.Redirect(http.StatusFound, safeNext(next))
}

func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Save()
	c.Set(middleware.CheckUserKey, nil)
	Render(c, http.StatusOK, "auth/logged_out.html", nil)
}
