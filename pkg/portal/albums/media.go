package albums

import (
	"net/http"
	"strconv"

	"github.com/alumnihub/alumnihub/pkg/portal/models"
	"github.com/gin-gonic/gin"
)

// AddMediaRequest represents the request to add a media item to an album
type AddMediaRequest struct {
	URL     string `json:"url" binding:"required,url"`
	Type    string `json:"type" binding:"required,oneof=image video"`
	Caption string `json:"caption"`
}

// MediaResponse represents a media item in API responses
type MediaResponse struct {
	ID       uint   `json:"id"`
	AlbumID  uint   `json:"album_id"`
	URL      string `json:"url"`
	Type     string `json:"type"`
	Caption  string `json:"caption"`
	Position int    `json:"position"`
}

func mediaToResponse(media models.Media) MediaResponse {
	return MediaResponse{
		ID:       media.ID,
		AlbumID:  media.AlbumID,
		URL:      media.URL,
		Type:     string(media.Type),
		Caption:  media.Caption,
		Position: media.Position,
	}
}

// ListMedia returns an album's media in display order
// @Summary List album media
// @Tags media
// @Produce json
// @Param id path int true "Album ID"
// @Success 200 {array} MediaResponse
// @Failure 404 {object} map[string]string "Album not found"
// @Security BearerAuth
// @Router /albums/{id}/media [get]
func (h *Handler) ListMedia(c *gin.Context) {
	albumID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid album ID"})
		return
	}

	album, ok := h.loadVisibleAlbum(c, uint(albumID))
	if !ok {
		return
	}

	var media []models.Media
	if err := h.db.Where("album_id = ?", album.ID).
		Order("position ASC, id ASC").Find(&media).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch media"})
		return
	}

	responses := make([]MediaResponse, len(media))
	for i, m := range media {
		responses[i] = mediaToResponse(m)
	}
	c.JSON(http.StatusOK, responses)
}

// AddMedia appends a media item to an album (admin only)
// @Summary Add media to an album
// @Tags media
// @Accept json
// @Produce json
// @Param id path int true "Album ID"
// @Param request body AddMediaRequest true "Media details"
// @Success 201 {object} MediaResponse
// @Failure 404 {object} map[string]string "Album not found"
// @Security BearerAuth
// @Router /albums/{id}/media [post]
func (h *Handler) AddMedia(c *gin.Context) {
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

	var req AddMediaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var count int64
	h.db.Model(&models.Media{}).Where("album_id = ?", album.ID).Count(&count)

	media := models.Media{
		AlbumID:  album.ID,
		URL:      req.URL,
		Type:     models.MediaType(req.Type),
		Caption:  req.Caption,
		Position: int(count) + 1,
	}
	if err := h.db.Create(&media).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add media"})
		return
	}

	c.JSON(http.StatusCreated, mediaToResponse(media))
}

// DeleteMedia removes a media item (admin only)
// @Summary Delete a media item
// @Tags media
// @Produce json
// @Param id path int true "Media ID"
// @Success 200 {object} map[string]string "Media deleted"
// @Failure 404 {object} map[string]string "Media not found"
// @Security BearerAuth
// @Router /media/{id} [delete]
func (h *Handler) DeleteMedia(c *gin.Context) {
	mediaID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid media ID"})
		return
	}

	var media models.Media
	if err := h.db.First(&media, mediaID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Media not found"})
		return
	}

	if err := h.db.Delete(&media).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete media"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Media deleted"})
}
