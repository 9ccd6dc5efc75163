package Controllers_test

import (
	"encoding/json"
	"net/http"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/evenzahq/evenza-backend/controllers"
	"github.com/evenzahq/evenza-backend/models"
	"github.com/evenzahq/evenza-backend/utils"
)

func setupNotificationRouter(db *gorm.DB, userID uint) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.Default()
	router.Use(authAs(userID, "attendee"))

	notifCtrl := controllers.NewNotificationController(db)
	router.GET("/notifications", notifCtrl.GetMyNotifications)
	router.PATCH("/notifications/:notif_id/read", notifCtrl.MarkNotificationRead)
	return router
}

func TestGetMyNotificationsOnlyMine(t *testing.T) {
	utils.InitLogger()
	db := setupTestDB()

	mine := models.Notification{UserID: 1, Type: "in-app", Message: "for me", Status: "sent"}
	other := models.Notification{UserID: 2, Type: "in-app", Message: "for someone else", Status: "sent"}
	assert.NoError(t, db.Create(&mine).Error)
	assert.NoError(t, db.Create(&other).Error)

	router := setupNotificationRouter(db, 1)
	w := doJSON(t, router, "GET", "/notifications", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	list := resp["data"].([]interface{})
	assert.Len(t, list, 1)
	assert.Equal(t, "for me", list[0].(map[string]interface{})["message"])
}

func TestMarkNotificationRead(t *testing.T) {
	utils.InitLogger()
	db := setupTestDB()

	notif := models.Notification{UserID: 1, Type: "in-app", Message: "read me", Status: "sent"}
	assert.NoError(t, db.Create(&notif).Error)

	router := setupNotificationRouter(db, 1)
	url := "/notifications/" + strconv.Itoa(int(notif.ID)) + "/read"

	// Dua kali berturut-turut tetap sukses (idempotent)
	w := doJSON(t, router, "PATCH", url, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = doJSON(t, router, "PATCH", url, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var saved models.Notification
	assert.NoError(t, db.First(&saved, notif.ID).Error)
	assert.True(t, saved.IsRead)
}

func TestMarkNotificationReadForbiddenForOthers(t *testing.T) {
	utils.InitLogger()
	db := setupTestDB()

	notif := models.Notification{UserID: 2, Type: "in-app", Message: "not yours", Status: "sent"}
	assert.NoError(t, db.Create(&notif).Error)

	router := setupNotificationRouter(db, 1)
	w := doJSON(t, router, "PATCH", "/notifications/"+strconv.Itoa(int(notif.ID))+"/read", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestMarkNotificationReadNotFound(t *testing.T) {
	utils.InitLogger()
	db := setupTestDB()

	router := setupNotificationRouter(db, 1)
	w := doJSON(t, router, "PATCH", "/notifications/99999/read", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
