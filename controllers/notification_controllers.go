package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/evenzahq/evenza-backend/models"
	"github.com/evenzahq/evenza-backend/services"
	"github.com/evenzahq/evenza-backend/utils"
)

type NotificationController struct {
	DB      *gorm.DB
	service *services.AnnouncementService
}

func NewNotificationController(db *gorm.DB) *NotificationController {
	return &NotificationController{
		DB:      db,
		service: services.NewAnnouncementService(db),
	}
}

// GetMyNotifications -> daftar notifikasi milik caller, terbaru dulu
func (nc *NotificationController) GetMyNotifications(c *gin.Context) {
	userID, ok := CurrentUserID(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("user id not found in context"))
		return
	}

	var notifs []models.Notification
	if err := nc.DB.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&notifs).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "My notifications", notifs)
}

// MarkNotificationRead -> hanya pemilik, idempotent
func (nc *NotificationController) MarkNotificationRead(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("notif_id"))

	userID, ok := CurrentUserID(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("user id not found in context"))
		return
	}

	if err := nc.service.MarkRead(uint(id), userID); err != nil {
		utils.RespondAppError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Notification marked as read", gin.H{"success": true})
}

// ClearNotifications -> hapus semua notifikasi (admin)
func (nc *NotificationController) ClearNotifications(c *gin.Context) {
	deleted, err := nc.service.ClearNotifications()
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Notifications cleared", gin.H{"deleted": deleted})
}
