package posts

import (
	"net/http"
	"strconv"
	"time"

	"github.com/alumnihub/alumnihub/pkg/portal/auth"
	"github.com/alumnihub/alumnihub/pkg/portal/models"
	"github.com/gin-gonic/gin"
)

// CreateCommentRequest represents the request to comment on a post
type CreateCommentRequest struct {
	Body string `json:"body" binding:"required"`
}

// CommentResponse represents a comment in API responses
type CommentResponse struct {
	ID         uint   `json:"id"`
	TargetKind string `json:"target_kind"`
	TargetID   uint   `json:"target_id"`
	AuthorID   uint   `json:"author_id"`
	AuthorName string `json:"author_name,omitempty"`
	Body       string `json:"body"`
	CreatedAt  string `json:"created_at"`
}

func commentToResponse(comment models.Comment) CommentResponse {
	return CommentResponse{
		ID:         comment.ID,
		TargetKind: string(comment.TargetKind),
		TargetID:   comment.TargetID,
		AuthorID:   comment.AuthorID,
		AuthorName: comment.Author.Name,
		Body:       comment.Body,
		CreatedAt:  comment.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// ListComments returns the comments on a post the viewer can see
// @Summary List comments on a post
// @Tags comments
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {array} CommentResponse
// @Failure 404 {object} map[string]string "Post not found"
// @Security BearerAuth
// @Router /posts/{id}/comments [get]
func (h *Handler) ListComments(c *gin.Context) {
	postID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid post ID"})
		return
	}

	post, ok := h.loadVisiblePost(c, uint(postID))
	if !ok {
		return
	}

	var comments []models.Comment
	if err := h.db.Preload("Author").
		Where("target_kind = ? AND target_id = ?", models.TargetPost, post.ID).
		Order("created_at ASC, id ASC").Find(&comments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch comments"})
		return
	}

	responses := make([]CommentResponse, len(comments))
	for i, comment := range comments {
		responses[i] = commentToResponse(comment)
	}
	c.JSON(http.StatusOK, responses)
}

// CreateComment adds a comment to a post the viewer can see
// @Summary Comment on a post
// @Tags comments
// @Accept json
// @Produce json
// @Param id path int true "Post ID"
// @Param request body CreateCommentRequest true "Comment body"
// @Success 201 {object} CommentResponse
// @Failure 404 {object} map[string]string "Post not found"
// @Security BearerAuth
// @Router /posts/{id}/comments [post]
func (h *Handler) CreateComment(c *gin.Context) {
	userID, _ := auth.GetUserID(c)
	postID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid post ID"})
		return
	}

	post, ok := h.loadVisiblePost(c, uint(postID))
	if !ok {
		return
	}

	var req CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	comment := models.Comment{
		TargetKind: models.TargetPost,
		TargetID:   post.ID,
		AuthorID:   userID,
		Body:       req.Body,
	}
	if err := h.db.Create(&comment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create comment"})
		return
	}

	h.db.Preload("Author").First(&comment, comment.ID)
	c.JSON(http.StatusCreated, commentToResponse(comment))
}

// DeleteComment removes a comment (author or admin)
// @Summary Delete a comment
// @Tags comments
// @Produce json
// @Param id path int true "Comment ID"
// @Success 200 {object} map[string]string "Comment deleted"
// @Failure 403 {object} map[string]string "Not the author"
// @Failure 404 {object} map[string]string "Comment not found"
// @Security BearerAuth
// @Router /comments/{id} [delete]
func (h *Handler) DeleteComment(c *gin.Context) {
	userID, _ := auth.GetUserID(c)
	commentID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid comment ID"})
		return
	}

	var comment models.Comment
	if err := h.db.First(&comment, commentID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Comment not found"})
		return
	}

	if comment.AuthorID != userID && !auth.IsAdmin(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the author or an admin can delete a comment"})
		return
	}

	if err := h.db.Delete(&comment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete comment"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Comment deleted"})
}

// Like records the viewer's like on a post. Idempotent: liking twice is a no-op.
// @Summary Like a post
// @Tags likes
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} map[string]string "Liked"
// @Failure 404 {object} map[string]string "Post not found"
// @Security BearerAuth
// @Router /posts/{id}/like [put]
func (h *Handler) Like(c *gin.Context) {
	userID, _ := auth.GetUserID(c)
	postID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid post ID"})
		return
	}

	post, ok := h.loadVisiblePost(c, uint(postID))
	if !ok {
		return
	}

	var existing models.Like
	if err := h.db.Where("target_kind = ? AND target_id = ? AND user_id = ?",
		models.TargetPost, post.ID, userID).First(&existing).Error; err == nil {
		c.JSON(http.StatusOK, gin.H{"message": "Already liked"})
		return
	}

	like := models.Like{
		TargetKind: models.TargetPost,
		TargetID:   post.ID,
		UserID:     userID,
	}
	if err := h.db.Create(&like).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to like post"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Liked"})
}

// Unlike removes the viewer's like. Idempotent: unliking an unliked post is a no-op.
// @Summary Unlike a post
// @Tags likes
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} map[string]string "Unliked"
// @Failure 404 {object} map[string]string "Post not found"
// @Security BearerAuth
// @Router /posts/{id}/like [delete]
func (h *Handler) Unlike(c *gin.Context) {
	userID, _ := auth.GetUserID(c)
	postID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid post ID"})
		return
	}

	post, ok := h.loadVisiblePost(c, uint(postID))
	if !ok {
		return
	}

	// Hard delete: a soft-deleted row would keep idx_like_target_user occupied
	// and break liking the post again later.
	if err := h.db.Unscoped().Where("target_kind = ? AND target_id = ? AND user_id = ?",
		models.TargetPost, post.ID, userID).Delete(&models.Like{}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to unlike post"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Unliked"})
}
