package groups

import (
	"net/http"
	"strconv"

	"github.com/alumnihub/alumnihub/pkg/portal/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Handler handles group-related requests
type Handler struct {
	db *gorm.DB
}

// NewHandler creates a new groups handler
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// CreateGroupRequest represents the request to create a group
type CreateGroupRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	GroupTypeID *uint  `json:"group_type_id"`
}

// UpdateGroupRequest represents the request to update a group
type UpdateGroupRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	GroupTypeID *uint  `json:"group_type_id"`
}

// GroupResponse represents a group in API responses
type GroupResponse struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	GroupTypeID *uint  `json:"group_type_id,omitempty"`
	MemberCount int64  `json:"member_count"`
}

// GroupListResponse wraps a page of groups
type GroupListResponse struct {
	Groups []GroupResponse `json:"groups"`
	Total  int64           `json:"total"`
	Page   int             `json:"page"`
	Limit  int             `json:"limit"`
}

func (h *Handler) groupToResponse(group models.Group) GroupResponse {
	var memberCount int64
	h.db.Model(&models.GroupMembership{}).Where("group_id = ?", group.ID).Count(&memberCount)
	return GroupResponse{
		ID:          group.ID,
		Name:        group.Name,
		Description: group.Description,
		GroupTypeID: group.GroupTypeID,
		MemberCount: memberCount,
	}
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

// List returns groups, paginated by default.
// With all=true the complete filtered result set is returned in one response;
// the bulk "Add All" controls depend on getting every match for the search,
// not just the rendered page.
// @Summary List groups
// @Description List groups with optional search. Pass all=true to get the complete filtered set (used by bulk group pickers).
// @Tags groups
// @Produce json
// @Param search query string false "Filter by name substring"
// @Param all query bool false "Return all matches instead of one page"
// @Param page query int false "Page number (default 1)"
// @Param limit query int false "Page size (default 20, max 100)"
// @Success 200 {object} GroupListResponse
// @Security BearerAuth
// @Router /groups [get]
func (h *Handler) List(c *gin.Context) {
	query := h.db.Model(&models.Group{}).Order("name ASC")

	if search := c.Query("search"); search != "" {
		query = query.Where("name LIKE ?", "%"+search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch groups"})
		return
	}

	page, limit := parsePage(c)
	if c.Query("all") == "true" {
		page, limit = 1, 0
	} else {
		query = query.Limit(limit).Offset((page - 1) * limit)
	}

	var groups []models.Group
	if err := query.Find(&groups).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch groups"})
		return
	}

	responses := make([]GroupResponse, len(groups))
	for i, group := range groups {
		responses[i] = h.groupToResponse(group)
	}

	c.JSON(http.StatusOK, GroupListResponse{
		Groups: responses,
		Total:  total,
		Page:   page,
		Limit:  limit,
	})
}

// Create creates a new group (admin only)
// @Summary Create a group
// @Tags groups
// @Accept json
// @Produce json
// @Param request body CreateGroupRequest true "Group details"
// @Success 201 {object} GroupResponse
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 409 {object} map[string]string "Group name already exists"
// @Security BearerAuth
// @Router /groups [post]
func (h *Handler) Create(c *gin.Context) {
	var req CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var existing models.Group
	if err := h.db.Where("name = ?", req.Name).First(&existing).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "A group with this name already exists"})
		return
	}

	if req.GroupTypeID != nil {
		var groupType models.GroupType
		if err := h.db.First(&groupType, *req.GroupTypeID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Group type not found"})
			return
		}
	}

	group := models.Group{
		Name:        req.Name,
		Description: req.Description,
		GroupTypeID: req.GroupTypeID,
	}
	if err := h.db.Create(&group).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create group"})
		return
	}

	c.JSON(http.StatusCreated, h.groupToResponse(group))
}

// Get returns a specific group
// @Summary Get a group
// @Tags groups
// @Produce json
// @Param id path int true "Group ID"
// @Success 200 {object} GroupResponse
// @Failure 404 {object} map[string]string "Group not found"
// @Security BearerAuth
// @Router /groups/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	groupID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid group ID"})
		return
	}

	var group models.Group
	if err := h.db.First(&group, groupID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Group not found"})
		return
	}

	c.JSON(http.StatusOK, h.groupToResponse(group))
}

// Update updates a group (admin only)
// @Summary Update a group
// @Tags groups
// @Accept json
// @Produce json
// @Param id path int true "Group ID"
// @Param request body UpdateGroupRequest true "Updated group details"
// @Success 200 {object} GroupResponse
// @Failure 404 {object} map[string]string "Group not found"
// @Security BearerAuth
// @Router /groups/{id} [patch]
func (h *Handler) Update(c *gin.Context) {
	groupID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid group ID"})
		return
	}

	var group models.Group
	if err := h.db.First(&group, groupID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Group not found"})
		return
	}

	var req UpdateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Name != "" && req.Name != group.Name {
		var existing models.Group
		if err := h.db.Where("name = ? AND id != ?", req.Name, group.ID).First(&existing).Error; err == nil {
			c.JSON(http.StatusConflict, gin.H{"error": "A group with this name already exists"})
			return
		}
		group.Name = req.Name
	}
	if req.Description != "" {
		group.Description = req.Description
	}
	if req.GroupTypeID != nil {
		var groupType models.GroupType
		if err := h.db.First(&groupType, *req.GroupTypeID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Group type not found"})
			return
		}
		group.GroupTypeID = req.GroupTypeID
	}

	if err := h.db.Save(&group).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update group"})
		return
	}

	c.JSON(http.StatusOK, h.groupToResponse(group))
}

// Delete deletes a group (admin only). Memberships and content associations
// are removed with it; the content itself survives, just less visible.
// @Summary Delete a group
// @Tags groups
// @Produce json
// @Param id path int true "Group ID"
// @Success 200 {object} map[string]string "Group deleted"
// @Failure 404 {object} map[string]string "Group not found"
// @Security BearerAuth
// @Router /groups/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	groupID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid group ID"})
		return
	}

	var group models.Group
	if err := h.db.First(&group, groupID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Group not found"})
		return
	}

	// Hard deletes throughout: soft-deleted rows would keep the unique
	// indexes on (user_id, group_id) and on the group name occupied, making
	// the membership or the name unusable forever.
	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("group_id = ?", group.ID).Delete(&models.GroupMembership{}).Error; err != nil {
			return err
		}
		for _, join := range []string{"post_groups", "album_groups", "event_groups"} {
			if err := tx.Exec("DELETE FROM "+join+" WHERE group_id = ?", group.ID).Error; err != nil {
				return err
			}
		}
		return tx.Unscoped().Delete(&group).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete group"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Group deleted"})
}

// RegisterRoutes registers group routes. Reads are open to any authenticated
// user (the pickers need them); mutations require the admin role.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, requireAdmin gin.HandlerFunc) {
	rg.GET("", h.List)
	rg.GET("/:id", h.Get)
	rg.POST("", requireAdmin, h.Create)
	rg.PATCH("/:id", requireAdmin, h.Update)
	rg.DELETE("/:id", requireAdmin, h.Delete)
}
