package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/evenzahq/evenza-backend/models"
	"github.com/evenzahq/evenza-backend/utils"
)

type SavedEventController struct {
	DB *gorm.DB
}

func NewSavedEventController(db *gorm.DB) *SavedEventController {
	return &SavedEventController{DB: db}
}

// SaveEvent -> bookmark sebuah event, idempotent
func (sc *SavedEventController) SaveEvent(c *gin.Context) {
	eventID, _ := strconv.Atoi(c.Param("event_id"))
	userID, _ := CurrentUserID(c)

	var event models.Event
	if err := sc.DB.First(&event, eventID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("event not found"))
		return
	}

	var existing models.SavedEvent
	err := sc.DB.Where("user_id = ? AND event_id = ?", userID, eventID).First(&existing).Error
	if err == nil {
		utils.RespondJSON(c, http.StatusOK, "Event already saved", existing)
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	saved := models.SavedEvent{UserID: userID, EventID: uint(eventID)}
	if err := sc.DB.Create(&saved).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Event saved", saved)
}

// UnsaveEvent -> hapus bookmark
func (sc *SavedEventController) UnsaveEvent(c *gin.Context) {
	eventID, _ := strconv.Atoi(c.Param("event_id"))
	userID, _ := CurrentUserID(c)

	res := sc.DB.Where("user_id = ? AND event_id = ?", userID, eventID).Delete(&models.SavedEvent{})
	if res.Error != nil {
		utils.RespondError(c, http.StatusInternalServerError, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		utils.RespondError(c, http.StatusNotFound, errors.New("saved event not found"))
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Event unsaved", gin.H{"event_id": eventID})
}

// GetMySavedEvents -> daftar bookmark caller
func (sc *SavedEventController) GetMySavedEvents(c *gin.Context) {
	userID, _ := CurrentUserID(c)

	var saved []models.SavedEvent
	if err := sc.DB.Preload("Event").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&saved).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "My saved events", saved)
}
