package admin

import (
	"net/http"
	"strconv"
	"time"

	"github.com/alumnihub/alumnihub/pkg/portal/auth"
	"github.com/alumnihub/alumnihub/pkg/portal/moderation"
	"github.com/alumnihub/alumnihub/pkg/portal/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Handler handles admin console requests
type Handler struct {
	db *gorm.DB
}

// NewHandler creates a new admin handler
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// UserResponse represents user data in admin responses
type UserResponse struct {
	ID         uint   `json:"id"`
	Phone      string `json:"phone"`
	Email      string `json:"email,omitempty"`
	Name       string `json:"name"`
	Status     string `json:"status"`
	SystemRole string `json:"system_role"`
	CreatedAt  string `json:"created_at"`
	PostCount  int64  `json:"post_count"`
	GroupCount int64  `json:"group_count"`
}

// UpdateUserRequest represents the request to update a user
type UpdateUserRequest struct {
	Name       *string `json:"name"`
	Status     *string `json:"status" binding:"omitempty,oneof=pending approved rejected"`
	SystemRole *string `json:"system_role" binding:"omitempty,oneof=admin user"`
}

// StatsResponse represents portal-wide statistics
type StatsResponse struct {
	TotalUsers    int64 `json:"total_users"`
	PendingUsers  int64 `json:"pending_users"`
	TotalGroups   int64 `json:"total_groups"`
	TotalPosts    int64 `json:"total_posts"`
	PendingPosts  int64 `json:"pending_posts"`
	ApprovedPosts int64 `json:"approved_posts"`
	RejectedPosts int64 `json:"rejected_posts"`
	TotalEvents   int64 `json:"total_events"`
	TotalAlbums   int64 `json:"total_albums"`
	TotalMedia    int64 `json:"total_media"`
	TotalComments int64 `json:"total_comments"`
	TotalLikes    int64 `json:"total_likes"`
	AdminUsers    int64 `json:"admin_users"`
}

func (h *Handler) userToResponse(user models.User) UserResponse {
	var postCount, groupCount int64
	h.db.Model(&models.Post{}).Where("author_id = ?", user.ID).Count(&postCount)
	h.db.Model(&models.GroupMembership{}).Where("user_id = ?", user.ID).Count(&groupCount)

	return UserResponse{
		ID:         user.ID,
		Phone:      user.Phone,
		Email:      user.Email,
		Name:       user.Name,
		Status:     string(user.Status),
		SystemRole: string(user.SystemRole),
		CreatedAt:  user.CreatedAt.UTC().Format(time.RFC3339),
		PostCount:  postCount,
		GroupCount: groupCount,
	}
}

// ListUsers returns all users (admin only)
// @Summary List users
// @Tags admin
// @Produce json
// @Param q query string false "Search by phone or name"
// @Param status query string false "Filter by account status"
// @Param role query string false "Filter by system role"
// @Success 200 {array} UserResponse
// @Security BearerAuth
// @Router /admin/users [get]
func (h *Handler) ListUsers(c *gin.Context) {
	var users []models.User

	query := h.db.Order("created_at DESC, id DESC")

	if search := c.Query("q"); search != "" {
		query = query.Where("phone LIKE ? OR name LIKE ?", "%"+search+"%", "%"+search+"%")
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if role := c.Query("role"); role != "" {
		query = query.Where("system_role = ?", role)
	}

	if err := query.Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"})
		return
	}

	responses := make([]UserResponse, len(users))
	for i, user := range users {
		responses[i] = h.userToResponse(user)
	}
	c.JSON(http.StatusOK, responses)
}

// GetUser returns a single user by ID (admin only)
// @Summary Get a user
// @Tags admin
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} UserResponse
// @Failure 404 {object} map[string]string "User not found"
// @Security BearerAuth
// @Router /admin/users/{id} [get]
func (h *Handler) GetUser(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	var user models.User
	if err := h.db.First(&user, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, h.userToResponse(user))
}

// UpdateUser updates a user's name, account status or role (admin only).
// Account status only ever changes here: registration leaves users pending
// until an admin approves them.
// @Summary Update a user
// @Tags admin
// @Accept json
// @Produce json
// @Param id path int true "User ID"
// @Param request body UpdateUserRequest true "Fields to update"
// @Success 200 {object} UserResponse
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 404 {object} map[string]string "User not found"
// @Security BearerAuth
// @Router /admin/users/{id} [patch]
func (h *Handler) UpdateUser(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	var user models.User
	if err := h.db.First(&user, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	currentUserID, _ := auth.GetUserID(c)
	if uint(id) == currentUserID {
		if req.SystemRole != nil && *req.SystemRole != "admin" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot demote yourself"})
			return
		}
		if req.Status != nil && *req.Status != string(models.UserStatusApproved) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot change your own account status"})
			return
		}
	}

	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Status != nil {
		updates["status"] = *req.Status
	}
	if req.SystemRole != nil {
		updates["system_role"] = *req.SystemRole
	}

	if len(updates) > 0 {
		if err := h.db.Model(&user).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user"})
			return
		}
	}

	h.db.First(&user, id)
	c.JSON(http.StatusOK, h.userToResponse(user))
}

// DeleteUser deletes a user (admin only). Refused while the user still has
// posts; their memberships, comments and likes are removed with them.
// @Summary Delete a user
// @Tags admin
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} map[string]string "User deleted"
// @Failure 404 {object} map[string]string "User not found"
// @Failure 409 {object} map[string]string "User still has posts"
// @Security BearerAuth
// @Router /admin/users/{id} [delete]
func (h *Handler) DeleteUser(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	currentUserID, _ := auth.GetUserID(c)
	if uint(id) == currentUserID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot delete yourself"})
		return
	}

	var user models.User
	if err := h.db.First(&user, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	var postCount int64
	h.db.Model(&models.Post{}).Where("author_id = ?", user.ID).Count(&postCount)
	if postCount > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "User still has posts; delete or reassign them first"})
		return
	}

	// Hard deletes: soft-deleted rows would keep the phone's unique index and
	// the membership index occupied, blocking re-registration with the same
	// phone and re-adding members after the account is recreated.
	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("user_id = ?", user.ID).Delete(&models.GroupMembership{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("author_id = ?", user.ID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("user_id = ?", user.ID).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&user).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User deleted"})
}

// GetStats returns portal-wide statistics (admin only)
// @Summary Portal statistics
// @Tags admin
// @Produce json
// @Success 200 {object} StatsResponse
// @Security BearerAuth
// @Router /admin/stats [get]
func (h *Handler) GetStats(c *gin.Context) {
	var stats StatsResponse

	h.db.Model(&models.User{}).Count(&stats.TotalUsers)
	h.db.Model(&models.User{}).Where("status = ?", models.UserStatusPending).Count(&stats.PendingUsers)
	h.db.Model(&models.User{}).Where("system_role = ?", models.SystemRoleAdmin).Count(&stats.AdminUsers)
	h.db.Model(&models.Group{}).Count(&stats.TotalGroups)
	h.db.Model(&models.Post{}).Count(&stats.TotalPosts)
	h.db.Model(&models.Post{}).Where("status = ?", moderation.StatusPending).Count(&stats.PendingPosts)
	h.db.Model(&models.Post{}).Where("status = ?", moderation.StatusApproved).Count(&stats.ApprovedPosts)
	h.db.Model(&models.Post{}).Where("status = ?", moderation.StatusRejected).Count(&stats.RejectedPosts)
	h.db.Model(&models.Event{}).Count(&stats.TotalEvents)
	h.db.Model(&models.Album{}).Count(&stats.TotalAlbums)
	h.db.Model(&models.Media{}).Count(&stats.TotalMedia)
	h.db.Model(&models.Comment{}).Count(&stats.TotalComments)
	h.db.Model(&models.Like{}).Count(&stats.TotalLikes)

	c.JSON(http.StatusOK, stats)
}

// RegisterRoutes registers admin routes on the given router group
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/stats", h.GetStats)
	rg.GET("/users", h.ListUsers)
	rg.GET("/users/:id", h.GetUser)
	rg.PATCH("/users/:id", h.UpdateUser)
	rg.DELETE("/users/:id", h.DeleteUser)
	rg.POST("/posts/bulk", h.BulkModerate)
}
