package posts

import (
	"net/http"
	"strconv"
	"time"

	"github.com/alumnihub/alumnihub/pkg/portal/auth"
	"github.com/alumnihub/alumnihub/pkg/portal/moderation"
	"github.com/alumnihub/alumnihub/pkg/portal/models"
	"github.com/alumnihub/alumnihub/pkg/portal/visibility"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Handler handles post-related requests
type Handler struct {
	db *gorm.DB
}

// NewHandler creates a new posts handler
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// CreatePostRequest represents the request to create a post.
// Content carries the rich-text editor's block payload verbatim.
type CreatePostRequest struct {
	Title   string `json:"title"`
	Content string `json:"content" binding:"required"`
}

// UpdatePostRequest represents the author's edit of a pending post
type UpdatePostRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// PostResponse represents a post in API responses
type PostResponse struct {
	ID           uint   `json:"id"`
	Title        string `json:"title"`
	Content      string `json:"content"`
	AuthorID     uint   `json:"author_id"`
	AuthorName   string `json:"author_name,omitempty"`
	Status       string `json:"status"`
	RejectReason string `json:"reject_reason,omitempty"`
	GroupIDs     []uint `json:"group_ids"`
	CommentCount int64  `json:"comment_count"`
	LikeCount    int64  `json:"like_count"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
}

func (h *Handler) postToResponse(post models.Post) PostResponse {
	groupIDs := make([]uint, len(post.Groups))
	for i, g := range post.Groups {
		groupIDs[i] = g.ID
	}
	var commentCount, likeCount int64
	h.db.Model(&models.Comment{}).
		Where("target_kind = ? AND target_id = ?", models.TargetPost, post.ID).Count(&commentCount)
	h.db.Model(&models.Like{}).
		Where("target_kind = ? AND target_id = ?", models.TargetPost, post.ID).Count(&likeCount)

	return PostResponse{
		ID:           post.ID,
		Title:        post.Title,
		Content:      post.Content,
		AuthorID:     post.AuthorID,
		AuthorName:   post.Author.Name,
		Status:       string(post.Status),
		RejectReason: post.RejectReason,
		GroupIDs:     groupIDs,
		CommentCount: commentCount,
		LikeCount:    likeCount,
		CreatedAt:    post.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:    post.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// viewerGroupIDs returns the group IDs the viewer belongs to
func (h *Handler) viewerGroupIDs(userID uint) []uint {
	var ids []uint
	h.db.Model(&models.GroupMembership{}).Where("user_id = ?", userID).Pluck("group_id", &ids)
	return ids
}

// loadVisiblePost fetches a post and enforces the visibility predicate,
// responding 404 when the viewer may not see it.
func (h *Handler) loadVisiblePost(c *gin.Context, postID uint) (models.Post, bool) {
	var post models.Post
	if err := h.db.Preload("Groups").Preload("Author").First(&post, postID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return post, false
	}

	viewer := visibility.ViewerFromContext(c)
	postGroupIDs := make([]uint, len(post.Groups))
	for i, g := range post.Groups {
		postGroupIDs[i] = g.ID
	}
	if !visibility.CanSeePost(viewer, post.AuthorID, post.Status, postGroupIDs, h.viewerGroupIDs(viewer.ID)) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return post, false
	}
	return post, true
}

// parsePage reads page/limit query params with sane bounds
func parsePage(c *gin.Context) (page, limit int) {
	page, limit = 1, 20
	if p := c.Query("page"); p != "" {
		if parsed, err := strconv.Atoi(p); err == nil && parsed > 0 {
			page = parsed
		}
	}
	if l := c.Query("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}
	return page, limit
}

// Create submits a new post for moderation
// @Summary Create a post
// @Description Submit a post. It starts pending and is only published once an admin approves it with a group set.
// @Tags posts
// @Accept json
// @Produce json
// @Param request body CreatePostRequest true "Post content"
// @Success 201 {object} PostResponse
// @Failure 400 {object} map[string]string "Validation error"
// @Security BearerAuth
// @Router /posts [post]
func (h *Handler) Create(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	var req CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	post := models.Post{
		Title:    req.Title,
		Content:  req.Content,
		AuthorID: userID,
		Status:   moderation.StatusPending,
	}
	if err := h.db.Create(&post).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create post"})
		return
	}

	c.JSON(http.StatusCreated, h.postToResponse(post))
}

// List returns posts visible to the viewer, newest first
// @Summary List posts
// @Description List posts visible to the viewer. Admins see every moderation state; members see approved posts from shared groups plus their own submissions.
// @Tags posts
// @Produce json
// @Param status query string false "Filter by moderation status (pending|approved|rejected)"
// @Param page query int false "Page number (default 1)"
// @Param limit query int false "Page size (default 20, max 100)"
// @Success 200 {array} PostResponse
// @Security BearerAuth
// @Router /posts [get]
func (h *Handler) List(c *gin.Context) {
	viewer := visibility.ViewerFromContext(c)
	query := visibility.PostsFor(h.db, viewer)

	if status := c.Query("status"); status != "" {
		if !moderation.Status(status).Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status filter"})
			return
		}
		query = query.Where("posts.status = ?", status)
	}

	page, limit := parsePage(c)
	query = query.Limit(limit).Offset((page - 1) * limit)

	var posts []models.Post
	if err := query.Preload("Groups").Preload("Author").Find(&posts).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch posts"})
		return
	}

	responses := make([]PostResponse, len(posts))
	for i, post := range posts {
		responses[i] = h.postToResponse(post)
	}
	c.JSON(http.StatusOK, responses)
}

// Get returns a single post, subject to visibility
// @Summary Get a post
// @Tags posts
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} PostResponse
// @Failure 404 {object} map[string]string "Post not found"
// @Security BearerAuth
// @Router /posts/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	postID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid post ID"})
		return
	}

	post, ok := h.loadVisiblePost(c, uint(postID))
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.postToResponse(post))
}

// Update lets the author edit a post while it is still pending
// @Summary Update a post
// @Description Edit title/content of your own pending post
// @Tags posts
// @Accept json
// @Produce json
// @Param id path int true "Post ID"
// @Param request body UpdatePostRequest true "Updated content"
// @Success 200 {object} PostResponse
// @Failure 403 {object} map[string]string "Not the author or post already reviewed"
// @Failure 404 {object} map[string]string "Post not found"
// @Security BearerAuth
// @Router /posts/{id} [patch]
func (h *Handler) Update(c *gin.Context) {
	userID, _ := auth.GetUserID(c)
	postID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid post ID"})
		return
	}

	var post models.Post
	if err := h.db.First(&post, postID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	if post.AuthorID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the author can edit a post"})
		return
	}
	if post.Status != moderation.StatusPending {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only pending posts can be edited"})
		return
	}

	var req UpdatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Title != "" {
		post.Title = req.Title
	}
	if req.Content != "" {
		post.Content = req.Content
	}
	if err := h.db.Save(&post).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update post"})
		return
	}

	c.JSON(http.StatusOK, h.postToResponse(post))
}

// Delete permanently removes a post (admin only). Moderators normally
// "delete" via rejection, which keeps the row; this is the erase path and
// cascades to comments, likes and group associations.
// @Summary Delete a post permanently
// @Tags posts
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} map[string]string "Post deleted"
// @Failure 404 {object} map[string]string "Post not found"
// @Security BearerAuth
// @Router /posts/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	postID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid post ID"})
		return
	}

	var post models.Post
	if err := h.db.First(&post, postID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().
			Where("target_kind = ? AND target_id = ?", models.TargetPost, post.ID).
			Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().
			Where("target_kind = ? AND target_id = ?", models.TargetPost, post.ID).
			Delete(&models.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM post_groups WHERE post_id = ?", post.ID).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&post).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete post"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Post deleted"})
}

// RegisterRoutes registers post routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, requireAdmin gin.HandlerFunc) {
	rg.GET("/posts", h.List)
	rg.POST("/posts", h.Create)
	rg.GET("/posts/:id", h.Get)
	rg.PATCH("/posts/:id", h.Update)
	rg.PATCH("/posts/:id/status", requireAdmin, h.UpdateStatus)
	rg.DELETE("/posts/:id", requireAdmin, h.Delete)

	rg.GET("/posts/:id/comments", h.ListComments)
	rg.POST("/posts/:id/comments", h.CreateComment)
	rg.DELETE("/comments/:id", h.DeleteComment)
	rg.PUT("/posts/:id/like", h.Like)
	rg.DELETE("/posts/:id/like", h.Unlike)
}
