package events

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/alumnihub/alumnihub/pkg/portal/auth"
	"github.com/alumnihub/alumnihub/pkg/portal/groups"
	"github.com/alumnihub/alumnihub/pkg/portal/models"
	"github.com/alumnihub/alumnihub/pkg/portal/visibility"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

// Handler handles event-related requests
type Handler struct {
	db *gorm.DB
}

// NewHandler creates a new events handler
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// CreateEventRequest represents the request to create an event
type CreateEventRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	StartDate   string `json:"start_date" binding:"required,datetime=2006-01-02"`
	EndDate     string `json:"end_date" binding:"omitempty,datetime=2006-01-02"`
	StartTime   string `json:"start_time" binding:"omitempty,datetime=15:04"`
	EndTime     string `json:"end_time" binding:"omitempty,datetime=15:04"`
	GroupIDs    []uint `json:"group_ids"`
}

// UpdateEventRequest represents the request to update an event.
// GroupIDs, when present, replaces the full group set.
type UpdateEventRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	StartDate   string  `json:"start_date" binding:"omitempty,datetime=2006-01-02"`
	EndDate     string  `json:"end_date" binding:"omitempty,datetime=2006-01-02"`
	StartTime   string  `json:"start_time" binding:"omitempty,datetime=15:04"`
	EndTime     string  `json:"end_time" binding:"omitempty,datetime=15:04"`
	GroupIDs    *[]uint `json:"group_ids"`
}

// EventResponse represents an event in API responses
type EventResponse struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date,omitempty"`
	StartTime   string `json:"start_time,omitempty"`
	EndTime     string `json:"end_time,omitempty"`
	CreatedByID uint   `json:"created_by_id"`
	GroupIDs    []uint `json:"group_ids"`
	AlbumCount  int64  `json:"album_count"`
	CreatedAt   string `json:"created_at"`
}

func (h *Handler) eventToResponse(event models.Event) EventResponse {
	groupIDs := make([]uint, len(event.Groups))
	for i, g := range event.Groups {
		groupIDs[i] = g.ID
	}
	var albumCount int64
	h.db.Model(&models.Album{}).Where("event_id = ?", event.ID).Count(&albumCount)

	resp := EventResponse{
		ID:          event.ID,
		Name:        event.Name,
		Description: event.Description,
		StartDate:   event.StartDate.Format(dateLayout),
		StartTime:   event.StartTime,
		EndTime:     event.EndTime,
		CreatedByID: event.CreatedByID,
		GroupIDs:    groupIDs,
		AlbumCount:  albumCount,
		CreatedAt:   event.CreatedAt.UTC().Format(time.RFC3339),
	}
	if event.EndDate != nil {
		resp.EndDate = event.EndDate.Format(dateLayout)
	}
	return resp
}

// List returns events visible to the viewer
// @Summary List events
// @Description List events the viewer shares a group with (admins see all)
// @Tags events
// @Produce json
// @Success 200 {array} EventResponse
// @Security BearerAuth
// @Router /events [get]
func (h *Handler) List(c *gin.Context) {
	viewer := visibility.ViewerFromContext(c)

	var events []models.Event
	if err := visibility.EventsFor(h.db, viewer).Preload("Groups").Find(&events).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch events"})
		return
	}

	responses := make([]EventResponse, len(events))
	for i, event := range events {
		responses[i] = h.eventToResponse(event)
	}
	c.JSON(http.StatusOK, responses)
}

// Create creates a new event (admin only)
// @Summary Create an event
// @Tags events
// @Accept json
// @Produce json
// @Param request body CreateEventRequest true "Event details"
// @Success 201 {object} EventResponse
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 404 {object} map[string]string "Group not found"
// @Security BearerAuth
// @Router /events [post]
func (h *Handler) Create(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	var req CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	startDate, _ := time.Parse(dateLayout, req.StartDate)
	event := models.Event{
		Name:        req.Name,
		Description: req.Description,
		StartDate:   startDate,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		CreatedByID: userID,
	}
	if req.EndDate != "" {
		endDate, _ := time.Parse(dateLayout, req.EndDate)
		event.EndDate = &endDate
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		resolved, err := groups.Resolve(tx, req.GroupIDs)
		if err != nil {
			return err
		}
		if err := tx.Create(&event).Error; err != nil {
			return err
		}
		return tx.Model(&event).Association("Groups").Replace(&resolved)
	})
	if err != nil {
		if errors.Is(err, groups.ErrGroupMissing) {
			c.JSON(http.StatusNotFound, gin.H{"error": "One or more groups not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create event"})
		return
	}

	h.db.Preload("Groups").First(&event, event.ID)
	c.JSON(http.StatusCreated, h.eventToResponse(event))
}

// Get returns a single event, subject to visibility
// @Summary Get an event
// @Tags events
// @Produce json
// @Param id path int true "Event ID"
// @Success 200 {object} EventResponse
// @Failure 404 {object} map[string]string "Event not found"
// @Security BearerAuth
// @Router /events/{id} [get]
func (h *Handler) Get(c *gin.Context) {
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

	viewer := visibility.ViewerFromContext(c)
	groupIDs := make([]uint, len(event.Groups))
	for i, g := range event.Groups {
		groupIDs[i] = g.ID
	}
	var viewerGroups []uint
	h.db.Model(&models.GroupMembership{}).Where("user_id = ?", viewer.ID).Pluck("group_id", &viewerGroups)
	if !visibility.CanSeeItem(viewer, groupIDs, viewerGroups) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
		return
	}

	c.JSON(http.StatusOK, h.eventToResponse(event))
}

// Update updates an event (admin only). A supplied group_ids set replaces the
// existing one entirely; albums created earlier keep their own group sets.
// @Summary Update an event
// @Tags events
// @Accept json
// @Produce json
// @Param id path int true "Event ID"
// @Param request body UpdateEventRequest true "Updated details"
// @Success 200 {object} EventResponse
// @Failure 404 {object} map[string]string "Event not found"
// @Security BearerAuth
// @Router /events/{id} [patch]
func (h *Handler) Update(c *gin.Context) {
	eventID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event ID"})
		return
	}

	var event models.Event
	if err := h.db.First(&event, eventID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
		return
	}

	var req UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Name != "" {
		event.Name = req.Name
	}
	if req.Description != "" {
		event.Description = req.Description
	}
	if req.StartDate != "" {
		startDate, _ := time.Parse(dateLayout, req.StartDate)
		event.StartDate = startDate
	}
	if req.EndDate != "" {
		endDate, _ := time.Parse(dateLayout, req.EndDate)
		event.EndDate = &endDate
	}
	if req.StartTime != "" {
		event.StartTime = req.StartTime
	}
	if req.EndTime != "" {
		event.EndTime = req.EndTime
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&event).Error; err != nil {
			return err
		}
		if req.GroupIDs != nil {
			resolved, err := groups.Resolve(tx, *req.GroupIDs)
			if err != nil {
				return err
			}
			return tx.Model(&event).Association("Groups").Replace(&resolved)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, groups.ErrGroupMissing) {
			c.JSON(http.StatusNotFound, gin.H{"error": "One or more groups not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update event"})
		return
	}

	h.db.Preload("Groups").First(&event, event.ID)
	c.JSON(http.StatusOK, h.eventToResponse(event))
}

// Delete deletes an event (admin only), cascading to its albums and their media
// @Summary Delete an event
// @Tags events
// @Produce json
// @Param id path int true "Event ID"
// @Success 200 {object} map[string]string "Event deleted"
// @Failure 404 {object} map[string]string "Event not found"
// @Security BearerAuth
// @Router /events/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	eventID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event ID"})
		return
	}

	var event models.Event
	if err := h.db.First(&event, eventID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
		return
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		var albumIDs []uint
		if err := tx.Model(&models.Album{}).Where("event_id = ?", event.ID).Pluck("id", &albumIDs).Error; err != nil {
			return err
		}
		if len(albumIDs) > 0 {
			if err := tx.Where("album_id IN ?", albumIDs).Delete(&models.Media{}).Error; err != nil {
				return err
			}
			if err := tx.Exec("DELETE FROM album_groups WHERE album_id IN ?", albumIDs).Error; err != nil {
				return err
			}
			if err := tx.Where("event_id = ?", event.ID).Delete(&models.Album{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Exec("DELETE FROM event_groups WHERE event_id = ?", event.ID).Error; err != nil {
			return err
		}
		return tx.Delete(&event).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete event"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Event deleted"})
}

// RegisterRoutes registers event routes. Reads for all authenticated users,
// mutations admin-only.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, requireAdmin gin.HandlerFunc) {
	rg.GET("/events", h.List)
	rg.GET("/events/:id", h.Get)
	rg.POST("/events", requireAdmin, h.Create)
	rg.PATCH("/events/:id", requireAdmin, h.Update)
	rg.DELETE("/events/:id", requireAdmin, h.Delete)
}
