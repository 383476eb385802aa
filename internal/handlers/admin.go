package handlers

import (
	"errors"
	"net/http"
	"yatube/internal/db"
	"yatube/internal/forms"
	"yatube/internal/middleware"
	"yatube/internal/models"
	"yatube/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type AdminHandler struct{}

func NewAdminHandler() *AdminHandler {
	return &AdminHandler{}
}

// checkModerator returns the current user when they may manage groups.
func (h *AdminHandler) checkModerator(c *gin.Context) *models.User {
	user := middleware.CurrentUser(c)
	if user == nil || !user.IsModerator() {
		return nil
	}
	return user
}

func (h *AdminHandler) ShowGroupForm(c *gin.Context) {
	if h.checkModerator(c) == nil {
		Forbidden(c)
		return
	}
	Render(c, http.StatusOK, "admin/group_form.html", gin.H{"Form": forms.GroupForm{}, "Errors": forms.Errors{}})
}

func (h *AdminHandler) CreateGroup(c *gin.Context) {
	user := h.checkModerator(c)
	if user == nil {
		Forbidden(c)
		return
	}

	conn := db.DB.WithContext(c.Request.Context())
	var form forms.GroupForm
	errs := forms.Bind(c, &form)
	if err := form.Check(conn, errs); err != nil {
		ServerError(c, err)
		return
	}
	if errs.Any() {
		Render(c, http.StatusBadRequest, "admin/group_form.html", gin.H{"Form": form, "Errors": errs})
		return
	}

	group, err := services.CreateGroup(c.Request.Context(), conn, form.Title, form.Slug, form.Description)
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		errs.Add("slug", "Group with this slug already exists.")
		Render(c, http.StatusBadRequest, "admin/group_form.html", gin.H{"Form": form, "Errors": errs})
		return
	}
	if err != nil {
		ServerError(c, err)
		return
	}

	logrus.WithFields(logrus.Fields{"slug": group.Slug, "moderator": user.Username}).Info("Group created")
	c.Redirect(http.StatusFound, "/group/"+group.Slug+"/")
}
