package groups

import (
	"net/http"
	"strconv"

	"github.com/alumnihub/alumnihub/pkg/portal/models"
	"github.com/gin-gonic/gin"
)

// GroupTypeRequest represents a create/update request for a group type
type GroupTypeRequest struct {
	Label       string `json:"label" binding:"required"`
	Description string `json:"description"`
}

// GroupTypeResponse represents a group type in API responses
type GroupTypeResponse struct {
	ID          uint   `json:"id"`
	Label       string `json:"label"`
	Description string `json:"description"`
	GroupCount  int64  `json:"group_count"`
}

func (h *Handler) groupTypeToResponse(gt models.GroupType) GroupTypeResponse {
	var groupCount int64
	h.db.Model(&models.Group{}).Where("group_type_id = ?", gt.ID).Count(&groupCount)
	return GroupTypeResponse{
		ID:          gt.ID,
		Label:       gt.Label,
		Description: gt.Description,
		GroupCount:  groupCount,
	}
}

// ListTypes returns all group types
// @Summary List group types
// @Tags group-types
// @Produce json
// @Success 200 {array} GroupTypeResponse
// @Security BearerAuth
// @Router /group-types [get]
func (h *Handler) ListTypes(c *gin.Context) {
	var types []models.GroupType
	if err := h.db.Order("label ASC").Find(&types).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch group types"})
		return
	}

	responses := make([]GroupTypeResponse, len(types))
	for i, gt := range types {
		responses[i] = h.groupTypeToResponse(gt)
	}
	c.JSON(http.StatusOK, responses)
}

// CreateType creates a new group type (admin only)
// @Summary Create a group type
// @Tags group-types
// @Accept json
// @Produce json
// @Param request body GroupTypeRequest true "Group type details"
// @Success 201 {object} GroupTypeResponse
// @Failure 409 {object} map[string]string "Label already exists"
// @Security BearerAuth
// @Router /group-types [post]
func (h *Handler) CreateType(c *gin.Context) {
	var req GroupTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var existing models.GroupType
	if err := h.db.Where("label = ?", req.Label).First(&existing).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "A group type with this label already exists"})
		return
	}

	gt := models.GroupType{Label: req.Label, Description: req.Description}
	if err := h.db.Create(&gt).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create group type"})
		return
	}

	c.JSON(http.StatusCreated, h.groupTypeToResponse(gt))
}

// UpdateType updates a group type (admin only)
// @Summary Update a group type
// @Tags group-types
// @Accept json
// @Produce json
// @Param id path int true "Group type ID"
// @Param request body GroupTypeRequest true "Updated details"
// @Success 200 {object} GroupTypeResponse
// @Failure 404 {object} map[string]string "Group type not found"
// @Security BearerAuth
// @Router /group-types/{id} [patch]
func (h *Handler) UpdateType(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid group type ID"})
		return
	}

	var gt models.GroupType
	if err := h.db.First(&gt, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Group type not found"})
		return
	}

	var req GroupTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Label != gt.Label {
		var existing models.GroupType
		if err := h.db.Where("label = ? AND id != ?", req.Label, gt.ID).First(&existing).Error; err == nil {
			c.JSON(http.StatusConflict, gin.H{"error": "A group type with this label already exists"})
			return
		}
	}
	gt.Label = req.Label
	gt.Description = req.Description

	if err := h.db.Save(&gt).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update group type"})
		return
	}

	c.JSON(http.StatusOK, h.groupTypeToResponse(gt))
}

// DeleteType deletes a group type (admin only). Refused while any group still
// references it; the caller must reassign those groups first.
// @Summary Delete a group type
// @Tags group-types
// @Produce json
// @Param id path int true "Group type ID"
// @Success 200 {object} map[string]string "Group type deleted"
// @Failure 404 {object} map[string]string "Group type not found"
// @Failure 409 {object} map[string]string "Group type in use"
// @Security BearerAuth
// @Router /group-types/{id} [delete]
func (h *Handler) DeleteType(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid group type ID"})
		return
	}

	var gt models.GroupType
	if err := h.db.First(&gt, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Group type not found"})
		return
	}

	var groupCount int64
	h.db.Model(&models.Group{}).Where("group_type_id = ?", gt.ID).Count(&groupCount)
	if groupCount > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Group type is in use by existing groups"})
		return
	}

	// Hard delete so the label's unique index frees up for reuse
	if err := h.db.Unscoped().Delete(&gt).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete group type"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Group type deleted"})
}

// RegisterTypeRoutes registers group type routes
func (h *Handler) RegisterTypeRoutes(rg *gin.RouterGroup, requireAdmin gin.HandlerFunc) {
	rg.GET("", h.ListTypes)
	rg.POST("", requireAdmin, h.CreateType)
	rg.PATCH("/:id", requireAdmin, h.UpdateType)
	rg.DELETE("/:id", requireAdmin, h.DeleteType)
}
