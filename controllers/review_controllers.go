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

type ReviewController struct {
	DB *gorm.DB
}

func NewReviewController(db *gorm.DB) *ReviewController {
	return &ReviewController{DB: db}
}

// CreateReview -> satu review per (user, event)
func (rc *ReviewController) CreateReview(c *gin.Context) {
	eventID, _ := strconv.Atoi(c.Param("event_id"))

	type request struct {
		Rating  int    `json:"rating" binding:"required,min=1,max=5"`
		Comment string `json:"comment"`
	}
	var req request
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var event models.Event
	if err := rc.DB.First(&event, eventID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("event not found"))
		return
	}

	userID, _ := CurrentUserID(c)

	var existing models.Review
	err := rc.DB.Where("event_id = ? AND user_id = ?", eventID, userID).First(&existing).Error
	if err == nil {
		utils.RespondError(c, http.StatusConflict, errors.New("you already reviewed this event"))
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	review := models.Review{
		EventID: uint(eventID),
		UserID:  userID,
		Rating:  req.Rating,
		Comment: req.Comment,
	}
	if err := rc.DB.Create(&review).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Review created", review)
}

// GetEventReviews -> publik
func (rc *ReviewController) GetEventReviews(c *gin.Context) {
	eventID, _ := strconv.Atoi(c.Param("event_id"))

	var reviews []models.Review
	if err := rc.DB.Where("event_id = ?", eventID).
		Order("created_at DESC").
		Find(&reviews).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Event reviews", reviews)
}
