package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/evenzahq/evenza-backend/services"
	"github.com/evenzahq/evenza-backend/utils"
)

type AnnouncementController struct {
	DB      *gorm.DB
	service *services.AnnouncementService
}

func NewAnnouncementController(db *gorm.DB) *AnnouncementController {
	return &AnnouncementController{
		DB:      db,
		service: services.NewAnnouncementService(db),
	}
}

// GetAllAnnouncements -> view agregasi dari notifications, publik
func (ac *AnnouncementController) GetAllAnnouncements(c *gin.Context) {
	views, err := ac.service.ListAnnouncements()
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "All announcements", views)
}

// CreateAnnouncement -> organizer/admin. Status sent memicu fan-out sinkron.
func (ac *AnnouncementController) CreateAnnouncement(c *gin.Context) {
	var input services.CreateAnnouncementInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	userID, _ := CurrentUserID(c)

	ann, result, err := ac.service.CreateAnnouncement(userID, input)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	data := gin.H{"announcement_id": ann.ID}
	if result != nil {
		data["sent"] = result
		utils.InfoLogger.Printf("Announcement %d dispatched to %d recipients", ann.ID, result.Inserted)
	}

	utils.RespondJSON(c, http.StatusCreated, "Announcement created", data)
}

// UpdateAnnouncement -> partial update, termasuk jalur upgrade notification lama
func (ac *AnnouncementController) UpdateAnnouncement(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("announcement_id"))

	var input services.UpdateAnnouncementInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	userID, _ := CurrentUserID(c)

	ann, result, err := ac.service.UpdateAnnouncement(uint(id), userID, input)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	data := gin.H{"announcement": ann}
	if result != nil {
		data["sent"] = result
	}

	utils.RespondJSON(c, http.StatusOK, "Announcement updated", data)
}

// SendAnnouncementNow -> dispatch langsung tanpa row announcement
func (ac *AnnouncementController) SendAnnouncementNow(c *gin.Context) {
	var input services.SendNowInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	userID, _ := CurrentUserID(c)

	result, err := ac.service.SendNow(userID, input)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	utils.InfoLogger.Printf("Direct send: %d/%d notifications inserted", result.Inserted, result.Requested)
	utils.RespondJSON(c, http.StatusOK, "Announcement sent", result)
}

// ClearAnnouncements -> hapus semua row announcement (admin)
func (ac *AnnouncementController) ClearAnnouncements(c *gin.Context) {
	deleted, err := ac.service.ClearAnnouncements()
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Announcements cleared", gin.H{"deleted": deleted})
}
