package posts

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/alumnihub/alumnihub/pkg/portal/auth"
	"github.com/alumnihub/alumnihub/pkg/portal/groups"
	"github.com/alumnihub/alumnihub/pkg/portal/moderation"
	"github.com/alumnihub/alumnihub/pkg/portal/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// UpdateStatusRequest drives a moderation transition. GroupIDs is only
// meaningful when transitioning to approved; Reason is required when
// transitioning to rejected.
type UpdateStatusRequest struct {
	Status   string `json:"status" binding:"required,oneof=pending approved rejected"`
	Reason   string `json:"reason"`
	GroupIDs []uint `json:"group_ids"`
}

// UpdateStatus applies a moderation transition to a post (admin only).
// The transition is validated first; on any validation failure the post is
// left exactly as it was.
// @Summary Moderate a post
// @Description Approve (with a group set), reject (with a reason), or return a post to pending. Approving with an empty group set leaves the post visible to admins and its author only.
// @Tags posts
// @Accept json
// @Produce json
// @Param id path int true "Post ID"
// @Param request body UpdateStatusRequest true "Transition"
// @Success 200 {object} PostResponse
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 404 {object} map[string]string "Post or group not found"
// @Failure 409 {object} map[string]string "Illegal status transition"
// @Security BearerAuth
// @Router /posts/{id}/status [patch]
func (h *Handler) UpdateStatus(c *gin.Context) {
	adminID, _ := auth.GetUserID(c)
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

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	target := moderation.Status(req.Status)
	if err := moderation.Apply(post.Status, moderation.Request{
		To:           target,
		Reason:       req.Reason,
		ActorIsAdmin: auth.IsAdmin(c),
	}); err != nil {
		switch {
		case errors.Is(err, moderation.ErrAdminRequired):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		case errors.Is(err, moderation.ErrInvalidTransition):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
		return
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		switch target {
		case moderation.StatusApproved:
			resolved, err := groups.Resolve(tx, req.GroupIDs)
			if err != nil {
				return err
			}
			post.Status = moderation.StatusApproved
			post.ReviewedByID = &adminID
			post.ReviewedAt = &now
			post.RejectReason = ""
			if err := tx.Save(&post).Error; err != nil {
				return err
			}
			return tx.Model(&post).Association("Groups").Replace(&resolved)
		case moderation.StatusRejected:
			post.Status = moderation.StatusRejected
			post.ReviewedByID = &adminID
			post.ReviewedAt = &now
			post.RejectReason = req.Reason
			return tx.Save(&post).Error
		default: // back to pending; group associations stay untouched
			post.Status = moderation.StatusPending
			post.ReviewedByID = nil
			post.ReviewedAt = nil
			post.RejectReason = ""
			return tx.Save(&post).Error
		}
	})
	if err != nil {
		if errors.Is(err, groups.ErrGroupMissing) {
			c.JSON(http.StatusNotFound, gin.H{"error": "One or more groups not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update status"})
		return
	}

	h.db.Preload("Groups").Preload("Author").First(&post, post.ID)
	c.JSON(http.StatusOK, h.postToResponse(post))
}
