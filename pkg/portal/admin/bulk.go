package admin

import (
	"errors"
	"net/http"
	"time"

	"github.com/alumnihub/alumnihub/pkg/portal/auth"
	"github.com/alumnihub/alumnihub/pkg/portal/groups"
	"github.com/alumnihub/alumnihub/pkg/portal/moderation"
	"github.com/alumnihub/alumnihub/pkg/portal/models"
	"github.com/alumnihub/alumnihub/pkg/portal/selection"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// BulkModerateRequest applies one moderation transition to many posts.
// Reason and GroupIDs follow the same rules as single-post moderation.
type BulkModerateRequest struct {
	IDs      []uint `json:"ids" binding:"required,min=1"`
	Status   string `json:"status" binding:"required,oneof=pending approved rejected"`
	Reason   string `json:"reason"`
	GroupIDs []uint `json:"group_ids"`
}

// BulkResult reports the outcome for one post ID
type BulkResult struct {
	ID    uint   `json:"id"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// BulkModerateResponse aggregates per-post outcomes
type BulkModerateResponse struct {
	Results   []BulkResult `json:"results"`
	Succeeded int          `json:"succeeded"`
	Failed    int          `json:"failed"`
}

// moderateOne applies the transition to a single post inside its own
// transaction, so one bad ID never rolls back the rest of the batch.
func (h *Handler) moderateOne(postID uint, adminID uint, req BulkModerateRequest) error {
	return h.db.Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.First(&post, postID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errors.New("post not found")
			}
			return err
		}

		target := moderation.Status(req.Status)
		if err := moderation.Apply(post.Status, moderation.Request{
			To:           target,
			Reason:       req.Reason,
			ActorIsAdmin: true,
		}); err != nil {
			return err
		}

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
		default:
			post.Status = moderation.StatusPending
			post.ReviewedByID = nil
			post.ReviewedAt = nil
			post.RejectReason = ""
			return tx.Save(&post).Error
		}
	})
}

// BulkModerate applies a moderation transition to many posts at once (admin
// only). Each post is handled independently: failures are reported per ID and
// never abort the batch.
// @Summary Bulk moderate posts
// @Tags admin
// @Accept json
// @Produce json
// @Param request body BulkModerateRequest true "Transition and post IDs"
// @Success 200 {object} BulkModerateResponse
// @Failure 400 {object} map[string]string "Validation error"
// @Security BearerAuth
// @Router /admin/posts/bulk [post]
func (h *Handler) BulkModerate(c *gin.Context) {
	adminID, _ := auth.GetUserID(c)

	var req BulkModerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if moderation.Status(req.Status) == moderation.StatusRejected && req.Reason == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": moderation.ErrReasonRequired.Error()})
		return
	}

	resp := BulkModerateResponse{Results: make([]BulkResult, 0, len(req.IDs))}
	for _, id := range selection.Dedupe(req.IDs) {
		result := BulkResult{ID: id, OK: true}
		if err := h.moderateOne(id, adminID, req); err != nil {
			result.OK = false
			result.Error = err.Error()
			resp.Failed++
		} else {
			resp.Succeeded++
		}
		resp.Results = append(resp.Results, result)
	}

	c.JSON(http.StatusOK, resp)
}
