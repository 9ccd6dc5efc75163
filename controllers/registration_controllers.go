package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/evenzahq/evenza-backend/models"
	"github.com/evenzahq/evenza-backend/services"
	"github.com/evenzahq/evenza-backend/utils"
)

type RegistrationController struct {
	DB      *gorm.DB
	service *services.RegistrationService
}

func NewRegistrationController(db *gorm.DB) *RegistrationController {
	return &RegistrationController{
		DB:      db,
		service: services.NewRegistrationService(db),
	}
}

// RegisterForEvent -> daftar ke event; event penuh masuk waitlist
func (rc *RegistrationController) RegisterForEvent(c *gin.Context) {
	eventID, _ := strconv.Atoi(c.Param("event_id"))
	userID, _ := CurrentUserID(c)

	reg, ticket, err := rc.service.Register(uint(eventID), userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondError(c, http.StatusNotFound, errors.New("event not found"))
			return
		}
		if strings.Contains(err.Error(), "already registered") {
			utils.RespondError(c, http.StatusConflict, err)
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	data := gin.H{"registration": reg}
	if ticket != nil {
		data["ticket"] = ticket
	}

	message := "Registered"
	if reg.Status == models.RegistrationStatusWaitlisted {
		message = "Event is full, you have been waitlisted"
	}

	utils.RespondJSON(c, http.StatusCreated, message, data)
}

// CancelRegistration -> batalkan registrasi milik sendiri
func (rc *RegistrationController) CancelRegistration(c *gin.Context) {
	regID, _ := strconv.Atoi(c.Param("reg_id"))
	userID, _ := CurrentUserID(c)

	if err := rc.service.Cancel(uint(regID), userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondError(c, http.StatusNotFound, errors.New("registration not found"))
			return
		}
		if strings.Contains(err.Error(), "does not belong") {
			utils.RespondError(c, http.StatusForbidden, err)
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Registration cancelled", gin.H{"registration_id": regID})
}

// GetMyRegistrations -> registrasi milik caller
func (rc *RegistrationController) GetMyRegistrations(c *gin.Context) {
	userID, _ := CurrentUserID(c)

	var regs []models.Registration
	if err := rc.DB.Preload("Event").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&regs).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "My registrations", regs)
}

// GetEventAttendees -> daftar peserta sebuah event (organizer/admin)
func (rc *RegistrationController) GetEventAttendees(c *gin.Context) {
	eventID, _ := strconv.Atoi(c.Param("event_id"))

	var event models.Event
	if err := rc.DB.First(&event, eventID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("event not found"))
		return
	}

	userID, _ := CurrentUserID(c)
	role, _ := c.Get("role")
	if event.OrganizerID != userID && role != "admin" {
		utils.RespondError(c, http.StatusForbidden, errors.New("you do not own this event"))
		return
	}

	var regs []models.Registration
	if err := rc.DB.Preload("User").
		Where("event_id = ? AND status <> ?", eventID, models.RegistrationStatusCancelled).
		Order("created_at ASC").
		Find(&regs).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Event attendees", regs)
}

// GetTicketByCode -> lookup tiket untuk check-in
func (rc *RegistrationController) GetTicketByCode(c *gin.Context) {
	code := c.Param("code")

	var ticket models.Ticket
	if err := rc.DB.Preload("Registration").
		Where("code = ?", code).
		First(&ticket).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("ticket not found"))
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Ticket detail", ticket)
}
