package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"yatube/internal/db"
	"yatube/internal/forms"
	"yatube/internal/middleware"
	"yatube/internal/models"
	"yatube/internal/monitoring"
	"yatube/internal/pagination"
	"yatube/internal/services"
	"yatube/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type PostHandler struct {
	images *services.ImageStore
}

func NewPostHandler(images *services.ImageStore) *PostHandler {
	return &PostHandler{images: images}
}

// fillCommentCounts loads comment counts for a page of posts in one query.
func fillCommentCounts(tx *gorm.DB, posts []models.Post) error {
	if len(posts) == 0 {
		return nil
	}

	postIDs := make([]uint, len(posts))
	for i, p := range posts {
		postIDs[i] = p.ID
	}

	type CountResult struct {
		PostID uint
		Count  int
	}
	var results []CountResult
	err := tx.Model(&models.Comment{}).
		Select("post_id, COUNT(*) as count").
		Where("post_id IN ?", postIDs).
		Group("post_id").
		Scan(&results).Error
	if err != nil {
		return fmt.Errorf("count comments: %w", err)
	}

	countMap := make(map[uint]int, len(results))
	for _, r := range results {
		countMap[r.PostID] = r.Count
	}
	for i := range posts {
		posts[i].CommentCount = countMap[posts[i].ID]
	}
	return nil
}

// listPosts paginates the posts matched by scopes, newest first.
func listPosts(c *gin.Context, scopes ...func(*gorm.DB) *gorm.DB) (pagination.Page, []models.Post, error) {
	conn := db.DB.WithContext(c.Request.Context())
	query := conn.Model(&models.Post{}).Scopes(scopes...)

	page, err := pagination.Paginate(query, pagination.PostsPerPage, c.Query("page"))
	if err != nil {
		return page, nil, fmt.Errorf("count posts: %w", err)
	}

	var posts []models.Post
	err = page.Apply(query.Session(&gorm.Session{})).
		Preload("Author").
		Preload("Group").
		Order(models.PostOrder).
		Find(&posts).Error
	if err != nil {
		return page, nil, fmt.Errorf("list posts: %w", err)
	}
	return page, posts, fillCommentCounts(conn, posts)
}

// Index lists every post. The route caches its output.
func (h *PostHandler) Index(c *gin.Context) {
	page, posts, err := listPosts(c)
	if err != nil {
		ServerError(c, err)
		return
	}
	Render(c, http.StatusOK, "posts/index.html", gin.H{
		"Page":  page,
		"Posts": posts,
	})
}

func (h *PostHandler) GroupPosts(c *gin.Context) {
	var group models.Group
	err := db.DB.WithContext(c.Request.Context()).Where("slug = ?", c.Param("slug")).First(&group).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		NotFound(c)
		return
	}
	if err != nil {
		ServerError(c, err)
		return
	}

	page, posts, err := listPosts(c, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("posts.group_id = ?", group.ID)
	})
	if err != nil {
		ServerError(c, err)
		return
	}
	Render(c, http.StatusOK, "posts/group.html", gin.H{
		"Group": group,
		"Page":  page,
		"Posts": posts,
	})
}

func (h *PostHandler) Groups(c *gin.Context) {
	query := db.DB.WithContext(c.Request.Context()).Model(&models.Group{})
	page, err := pagination.Paginate(query, pagination.GroupsPerPage, c.Query("page"))
	if err != nil {
		ServerError(c, err)
		return
	}

	var groups []models.Group
	if err := page.Apply(query.Session(&gorm.Session{})).Order("id").Find(&groups).Error; err != nil {
		ServerError(c, err)
		return
	}
	Render(c, http.StatusOK, "posts/groups.html", gin.H{
		"Page":   page,
		"Groups": groups,
	})
}

// findPost loads the post with id post_id written by username. It renders
// the error page itself and returns nil when there is nothing to show.
func findPost(c *gin.Context) *models.Post {
	id, ok := utils.ParseID(c.Param("post_id"))
	if !ok {
		NotFound(c)
		return nil
	}

	conn := db.DB.WithContext(c.Request.Context())
	author := conn.Model(&models.User{}).Select("id").Where("username = ?", c.Param("username"))

	var post models.Post
	err := conn.Preload("Author").
		Preload("Group").
		Where("posts.id = ? AND posts.author_id = (?)", id, author).
		First(&post).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		NotFound(c)
		return nil
	}
	if err != nil {
		ServerError(c, err)
		return nil
	}
	return &post
}

func (h *PostHandler) PostView(c *gin.Context) {
	post := findPost(c)
	if post == nil {
		return
	}

	conn := db.DB.WithContext(c.Request.Context())
	var comments []models.Comment
	if err := conn.Preload("Author").Where("post_id = ?", post.ID).Order(models.CommentOrder).Find(&comments).Error; err != nil {
		ServerError(c, err)
		return
	}
	post.CommentCount = len(comments)

	following := false
	if user := middleware.CurrentUser(c); user != nil {
		var err error
		following, err = services.NewFollowService(conn).IsFollowing(c.Request.Context(), user.ID, post.AuthorID)
		if err != nil {
			ServerError(c, err)
			return
		}
	}

	Render(c, http.StatusOK, "posts/post.html", gin.H{
		"Post":      post,
		"Author":    post.Author,
		"Comments":  comments,
		"Following": following,
	})
}

func (h *PostHandler) renderPostForm(c *gin.Context, code int, form forms.PostForm, errs forms.Errors, post *models.Post) {
	var groups []models.Group
	if err := db.DB.WithContext(c.Request.Context()).Order("title").Find(&groups).Error; err != nil {
		ServerError(c, err)
		return
	}

	data := gin.H{
		"Form":   form,
		"Errors": errs,
		"Groups": groups,
	}
	if post != nil {
		data["Post"] = post
	}
	Render(c, code, "posts/new_post.html", data)
}

// saveImage stores the uploaded image, if any. ok is false when the upload
// was rejected and errs has been filled.
func (h *PostHandler) saveImage(c *gin.Context, errs forms.Errors) (string, bool) {
	header, err := c.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return "", true
	}
	if err != nil {
		errs.Add("image", "Upload a valid image.")
		return "", false
	}

	rel, err := h.images.Save(header)
	switch {
	case errors.Is(err, services.ErrImageTooLarge):
		errs.Add("image", "The image must not exceed 5 MiB.")
		return "", false
	case errors.Is(err, services.ErrInvalidImage):
		errs.Add("image", "Upload a valid image. The file you uploaded was either not an image or a corrupted image.")
		return "", false
	case err != nil:
		logrus.WithError(err).Error("Failed to store image")
		errs.Add("image", "Could not store the image.")
		return "", false
	}
	return rel, true
}

func (h *PostHandler) NewPost(c *gin.Context) {
	if c.Request.Method != http.MethodPost {
		h.renderPostForm(c, http.StatusOK, forms.PostForm{}, forms.Errors{}, nil)
		return
	}

	user := middleware.CurrentUser(c)
	conn := db.DB.WithContext(c.Request.Context())

	var form forms.PostForm
	errs := forms.Bind(c, &form)
	groupID := form.ResolveGroup(conn, errs)
	if errs.Any() {
		h.renderPostForm(c, http.StatusBadRequest, form, errs, nil)
		return
	}

	image, ok := h.saveImage(c, errs)
	if !ok {
		h.renderPostForm(c, http.StatusBadRequest, form, errs, nil)
		return
	}

	post := models.Post{
		Text:     form.Text,
		AuthorID: user.ID,
		GroupID:  groupID,
		Image:    image,
	}
	if err := conn.Create(&post).Error; err != nil {
		h.images.Remove(image)
		ServerError(c, fmt.Errorf("create post: %w", err))
		return
	}

	monitoring.PostsCreated.Inc()
	logrus.WithFields(logrus.Fields{"post_id": post.ID, "author": user.Username}).Info("Post created")
	c.Redirect(http.StatusFound, "/")
}

func (h *PostHandler) PostEdit(c *gin.Context) {
	post := findPost(c)
	if post == nil {
		return
	}
	postURL := fmt.Sprintf("/%s/%d/", post.Author.Username, post.ID)

	user := middleware.CurrentUser(c)
	if user.ID != post.AuthorID {
		c.Redirect(http.StatusFound, postURL)
		return
	}

	if c.Request.Method != http.MethodPost {
		h.renderPostForm(c, http.StatusOK, forms.PostFormFrom(post), forms.Errors{}, post)
		return
	}

	conn := db.DB.WithContext(c.Request.Context())
	var form forms.PostForm
	errs := forms.Bind(c, &form)
	groupID := form.ResolveGroup(conn, errs)
	if form.ClearImage {
		if _, err := c.FormFile("image"); err == nil {
			errs.Add("image", "Please either submit a file or check the clear checkbox, not both.")
		}
	}
	if errs.Any() {
		h.renderPostForm(c, http.StatusBadRequest, form, errs, post)
		return
	}

	image, ok := h.saveImage(c, errs)
	if !ok {
		h.renderPostForm(c, http.StatusBadRequest, form, errs, post)
		return
	}

	oldImage := post.Image
	newImage := oldImage
	switch {
	case image != "":
		newImage = image
	case form.ClearImage:
		newImage = ""
	}

	err := conn.Model(&models.Post{}).Where("id = ?", post.ID).Updates(map[string]any{
		"text":     form.Text,
		"group_id": groupID,
		"image":    newImage,
	}).Error
	if err != nil {
		h.images.Remove(image)
		ServerError(c, fmt.Errorf("update post %d: %w", post.ID, err))
		return
	}
	if oldImage != newImage {
		if err := h.images.Remove(oldImage); err != nil {
			logrus.WithError(err).Warn("Failed to remove replaced image")
		}
	}

	monitoring.PostsEdited.Inc()
	c.Redirect(http.StatusFound, postURL)
}

func (h *PostHandler) AddComment(c *gin.Context) {
	post := findPost(c)
	if post == nil {
		return
	}
	postURL := fmt.Sprintf("/%s/%d/", post.Author.Username, post.ID)

	var form forms.CommentForm
	if c.Request.Method != http.MethodPost || forms.Bind(c, &form).Any() {
		c.Redirect(http.StatusFound, postURL+"#add_comment")
		return
	}

	comment := models.Comment{
		PostID:   post.ID,
		AuthorID: middleware.CurrentUser(c).ID,
		Text:     form.Text,
	}
	if err := db.DB.WithContext(c.Request.Context()).Create(&comment).Error; err != nil {
		ServerError(c, fmt.Errorf("create comment: %w", err))
		return
	}

	monitoring.CommentsCreated.Inc()
	c.Redirect(http.StatusFound, postURL+"#all_comments")
}
