package albums

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/alumnihub/alumnihub/pkg/portal/groups"
	"github.com/alumnihub/alumnihub/pkg/portal/models"
	"github.com/alumnihub/alumnihub/pkg/portal/visibility"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Handler handles album and media requests
type Handler struct {
	db *gorm.DB
}

// NewHandler creates a new albums handler
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// CreateAlbumRequest represents the request to create an album under an event.
// When GroupIDs is omitted the album inherits a snapshot of the event's
// current group set; when supplied it overrides inheritance entirely.
type CreateAlbumRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	GroupIDs    *[]uint `json:"group_ids"`
}

// UpdateAlbumRequest represents the request to update an album.
// GroupIDs, when present, replaces the full group set.
type UpdateAlbumRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	GroupIDs    *[]uint `json:"group_ids"`
}

// AlbumResponse represents an album in API responses
type AlbumResponse struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	EventID     *uint  `json:"event_id,omitempty"`
	GroupIDs    []uint `json:"group_ids"`
	MediaCount  int64  `json:"media_count"`
	CreatedAt   string `json:"created_at"`
}

func (h *Handler) albumToResponse(album models.Album) AlbumResponse {
	groupIDs := make([]uint, len(album.Groups))
	for i, g := range album.Groups {
		groupIDs[i] = g.ID
	}
	var mediaCount int64
	h.db.Model(&models.Media{}).Where("album_id = ?", album.ID).Count(&mediaCount)

	return AlbumResponse{
		ID:          album.ID,
		Name:        album.Name,
		Description: album.Description,
		EventID:     album.EventID,
		GroupIDs:    groupIDs,
		MediaCount:  mediaCount,
		CreatedAt:   album.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// loadVisibleAlbum fetches an album and enforces the group-intersection rule,
// responding 404 when the viewer may not see it.
func (h *Handler) loadVisibleAlbum(c *gin.Context, albumID uint) (models.Album, bool) {
	var album models.Album
	if err := h.db.Preload("Groups").First(&album, albumID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Album not found"})
		return album, false
	}

	viewer := visibility.ViewerFromContext(c)
	groupIDs := make([]uint, len(album.Groups))
	for i, g := range album.Groups {
		groupIDs[i] = g.ID
	}
	var viewerGroups []uint
	h.db.Model(&models.GroupMembership{}).Where("user_id = ?", viewer.ID).Pluck("group_id", &viewerGroups)
	if !visibility.CanSeeItem(viewer, groupIDs, viewerGroups) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Album not found"})
		return album, false
	}
	return album, true
}

// CreateUnderEvent creates an album under an event (admin only)
// @Summary Create an album under an event
// @Description Create an album. Omitting group_ids copies the event's current groups onto the album (a one-time snapshot, not a live link).
// @Tags albums
// @Accept json
// @Produce json
// @Param id path int true "Event ID"
// @Param request body CreateAlbumRequest true "Album details"
// @Success 201 {object} AlbumResponse
// @Failure 404 {object} map[string]string "Event or group not found"
// @Security BearerAuth
// @Router /events/{id}/albums [post]
func (h *Handler) CreateUnderEvent(c *gin.Context) {
	eventID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event ID"})
		return
	}

	var event models.Event
	if err := h.db.Preload("Groups").First(&event, eventID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
		return
	}

	var req CreateAlbumRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	parentID := event.ID
	album := models.Album{
		Name:        req.Name,
		Description: req.Description,
		EventID:     &parentID,
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		var resolved []models.Group
		if req.GroupIDs != nil {
			var err error
			resolved, err = groups.Resolve(tx, *req.GroupIDs)
			if err != nil {
				return err
			}
		} else {
			// Inherit: value copy of the event's groups as of right now
			resolved = make([]models.Group, len(event.Groups))
			copy(resolved, event.Groups)
		}
		if err := tx.Create(&album).Error; err != nil {
			return err
		}
		return tx.Model(&album).Association("Groups").Replace(&resolved)
	})
	if err != nil {
		if errors.Is(err, groups.ErrGroupMissing) {
			c.JSON(http.StatusNotFound, gin.H{"error": "One or more groups not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create album"})
		return
	}

	h.db.Preload("Groups").First(&album, album.ID)
	c.JSON(http.StatusCreated, h.albumToResponse(album))
}

// List returns albums visible to the viewer
// @Summary List albums
// @Tags albums
// @Produce json
// @Success 200 {array} AlbumResponse
// @Security BearerAuth
// @Router /albums [get]
func (h *Handler) List(c *gin.Context) {
	viewer := visibility.ViewerFromContext(c)

	var albums []models.Album
	if err := visibility.AlbumsFor(h.db, viewer).Preload("Groups").Find(&albums).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch albums"})
		return
	}

	responses := make([]AlbumResponse, len(albums))
	for i, album := range albums {
		responses[i] = h.albumToResponse(album)
	}
	c.JSON(http.StatusOK, responses)
}

// Get returns a single album, subject to visibility
// @Summary Get an album
// @Tags albums
// @Produce json
// @Param id path int true "Album ID"
// @Success 200 {object} AlbumResponse
// @Failure 404 {object} map[string]string "Album not found"
// @Security BearerAuth
// @Router /albums/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	albumID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid album ID"})
		return
	}

	album, ok := h.loadVisibleAlbum(c, uint(albumID))
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.albumToResponse(album))
}

// Update updates an album (admin only). A supplied group_ids set replaces the
// existing one; the parent event's groups are never consulted again.
// @Summary Update an album
// @Tags albums
// @Accept json
// @Produce json
// @Param id path int true "Album ID"
// @Param request body UpdateAlbumRequest true "Updated details"
// @Success 200 {object} AlbumResponse
// @Failure 404 {object} map[string]string "Album not found"
// @Security BearerAuth
// @Router /albums/{id} [patch]
func (h *Handler) Update(c *gin.Context) {
	albumID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid album ID"})
		return
	}

	var album models.Album
	if err := h.db.First(&album, albumID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Album not found"})
		return
	}

	var req UpdateAlbumRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Name != "" {
		album.Name = req.Name
	}
	if req.Description != "" {
		album.Description = req.Description
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&album).Error; err != nil {
			return err
		}
		if req.GroupIDs != nil {
			resolved, err := groups.Resolve(tx, *req.GroupIDs)
			if err != nil {
				return err
			}
			return tx.Model(&album).Association("Groups").Replace(&resolved)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, groups.ErrGroupMissing) {
			c.JSON(http.StatusNotFound, gin.H{"error": "One or more groups not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update album"})
		return
	}

	h.db.Preload("Groups").First(&album, album.ID)
	c.JSON(http.StatusOK, h.albumToResponse(album))
}

// Delete deletes an album (admin only), cascading to its media
// @Summary Delete an album
// @Tags albums
// @Produce json
// @Param id path int true "Album ID"
// @Success 200 {object} map[string]string "Album deleted"
// @Failure 404 {object} map[string]string "Album not found"
// @Security BearerAuth
// @Router /albums/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	albumID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid album ID"})
		return
	}

	var album models.Album
	if err := h.db.First(&album, albumID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Album not found"})
		return
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("album_id = ?", album.ID).Delete(&models.Media{}).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM album_groups WHERE album_id = ?", album.ID).Error; err != nil {
			return err
		}
		return tx.Delete(&album).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete album"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Album deleted"})
}

// RegisterRoutes registers album routes. Reads for all authenticated users,
// mutations admin-only.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, requireAdmin gin.HandlerFunc) {
	rg.GET("/albums", h.List)
	rg.GET("/albums/:id", h.Get)
	rg.PATCH("/albums/:id", requireAdmin, h.Update)
	rg.DELETE("/albums/:id", requireAdmin, h.Delete)
	rg.POST("/events/:id/albums", requireAdmin, h.CreateUnderEvent)

	rg.GET("/albums/:id/media", h.ListMedia)
	rg.POST("/albums/:id/media", requireAdmin, h.AddMedia)
	rg.DELETE("/media/:id", requireAdmin, h.DeleteMedia)
}
