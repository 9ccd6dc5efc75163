package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/evenzahq/evenza-backend/models"
	"github.com/evenzahq/evenza-backend/utils"
)

type EventController struct {
	DB *gorm.DB
}

func NewEventController(db *gorm.DB) *EventController {
	return &EventController{DB: db}
}

// GetAllEvents -> publik
func (ec *EventController) GetAllEvents(c *gin.Context) {
	var events []models.Event
	if err := ec.DB.Order("created_at DESC").Find(&events).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "All events", events)
}

// GetEventByID -> publik
func (ec *EventController) GetEventByID(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("event_id"))

	var event models.Event
	if err := ec.DB.First(&event, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("event not found"))
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Event detail", event)
}

// CreateEvent -> organizer/admin
func (ec *EventController) CreateEvent(c *gin.Context) {
	type request struct {
		Title       string     `json:"title" binding:"required"`
		Description string     `json:"description"`
		Location    string     `json:"location"`
		Capacity    int        `json:"capacity"`
		StartsAt    *time.Time `json:"starts_at"`
		EndsAt      *time.Time `json:"ends_at"`
	}
	var req request
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	userID, _ := CurrentUserID(c)

	event := models.Event{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		Capacity:    req.Capacity,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
		OrganizerID: userID,
	}

	if err := ec.DB.Create(&event).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("Event created: %s (id=%d)", event.Title, event.ID)
	utils.RespondJSON(c, http.StatusCreated, "Event created", event)
}

// UpdateEvent -> hanya organizer pemilik atau admin
func (ec *EventController) UpdateEvent(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("event_id"))

	var event models.Event
	if err := ec.DB.First(&event, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("event not found"))
		return
	}

	if !ec.canManage(c, &event) {
		utils.RespondError(c, http.StatusForbidden, errors.New("you do not own this event"))
		return
	}

	type request struct {
		Title       *string    `json:"title"`
		Description *string    `json:"description"`
		Location    *string    `json:"location"`
		Capacity    *int       `json:"capacity"`
		StartsAt    *time.Time `json:"starts_at"`
		EndsAt      *time.Time `json:"ends_at"`
	}
	var req request
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if req.Title != nil {
		event.Title = *req.Title
	}
	if req.Description != nil {
		event.Description = *req.Description
	}
	if req.Location != nil {
		event.Location = *req.Location
	}
	if req.Capacity != nil {
		event.Capacity = *req.Capacity
	}
	if req.StartsAt != nil {
		event.StartsAt = req.StartsAt
	}
	if req.EndsAt != nil {
		event.EndsAt = req.EndsAt
	}

	if err := ec.DB.Save(&event).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Event updated", event)
}

// DeleteEvent -> hanya organizer pemilik atau admin
func (ec *EventController) DeleteEvent(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("event_id"))

	var event models.Event
	if err := ec.DB.First(&event, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("event not found"))
		return
	}

	if !ec.canManage(c, &event) {
		utils.RespondError(c, http.StatusForbidden, errors.New("you do not own this event"))
		return
	}

	if err := ec.DB.Delete(&event).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Event deleted", gin.H{"event_id": id})
}

func (ec *EventController) canManage(c *gin.Context, event *models.Event) bool {
	userID, _ := CurrentUserID(c)
	role, _ := c.Get("role")
	return event.OrganizerID == userID || role == "admin"
}
