package forms

import (
	"errors"
	"fmt"
	"yatube/internal/models"
	"yatube/internal/utils"

	"gorm.io/gorm"
)

type PostForm struct {
	Text       string `form:"text" binding:"required,notblank"`
	Group      string `form:"group"`
	ClearImage bool   `form:"image-clear"`
}

// PostFormFrom prefills the form for editing.
func PostFormFrom(p *models.Post) PostForm {
	f := PostForm{Text: p.Text}
	if p.GroupID != nil {
		f.Group = fmt.Sprint(*p.GroupID)
	}
	return f
}

// ResolveGroup looks up the selected group. An empty choice means no group.
func (f *PostForm) ResolveGroup(tx *gorm.DB, errs Errors) *uint {
	if f.Group == "" {
		return nil
	}
	id, ok := utils.ParseID(f.Group)
	if !ok {
		errs.Add("group", "Select a valid choice.")
		return nil
	}

	var group models.Group
	err := tx.Select("id").First(&group, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		errs.Add("group", "Select a valid choice.")
		return nil
	}
	if err != nil {
		errs.Add(NonField, "Could not check the selected group.")
		return nil
	}
	return &group.ID
}

type CommentForm struct {
	Text string `form:"text" binding:"required,notblank"`
}
