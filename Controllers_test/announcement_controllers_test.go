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

func setupAnnouncementRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.Default()
	router.Use(authAs(1, "organizer"))

	annCtrl := controllers.NewAnnouncementController(db)
	router.GET("/announcements", annCtrl.GetAllAnnouncements)
	router.POST("/announcements", annCtrl.CreateAnnouncement)
	router.PATCH("/announcements/:announcement_id", annCtrl.UpdateAnnouncement)
	router.POST("/announcements/send", annCtrl.SendAnnouncementNow)
	router.DELETE("/admin/announcements", annCtrl.ClearAnnouncements)
	return router
}

// seedAnnouncementFixture -> organizer (id=1), event dengan 2 peserta
func seedAnnouncementFixture(t *testing.T, db *gorm.DB) models.Event {
	organizer := models.User{Name: "Org", Email: "org@evenza.io", Password: "secret", Role: "organizer"}
	assert.NoError(t, db.Create(&organizer).Error)

	event := models.Event{Title: "Launch Party", OrganizerID: organizer.ID}
	assert.NoError(t, db.Create(&event).Error)

	for _, email := range []string{"a@evenza.io", "b@evenza.io"} {
		user := models.User{Name: "Attendee", Email: email, Password: "secret"}
		assert.NoError(t, db.Create(&user).Error)
		assert.NoError(t, db.Create(&models.Registration{
			EventID: event.ID, UserID: user.ID, Status: models.RegistrationStatusConfirmed,
		}).Error)
	}

	return event
}

func TestCreateAnnouncementSentEndToEnd(t *testing.T) {
	utils.InitLogger()
	db := setupTestDB()
	router := setupAnnouncementRouter(db)
	event := seedAnnouncementFixture(t, db)

	w := doJSON(t, router, "POST", "/announcements", map[string]interface{}{
		"event_id": event.ID,
		"title":    "Reminder",
		"message":  "Doors open at 6pm",
		"status":   "sent",
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.NotNil(t, data["announcement_id"])

	sent := data["sent"].(map[string]interface{})
	assert.Equal(t, float64(2), sent["inserted"])
	assert.Equal(t, float64(2), sent["requested"])

	// Dua baris notification tercipta
	var count int64
	db.Model(&models.Notification{}).Where("status = ?", "sent").Count(&count)
	assert.Equal(t, int64(2), count)
}

func TestCreateAnnouncementMissingFields(t *testing.T) {
	utils.InitLogger()
	db := setupTestDB()
	router := setupAnnouncementRouter(db)

	w := doJSON(t, router, "POST", "/announcements", map[string]interface{}{
		"title": "No message here",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateAnnouncementScheduleFlow(t *testing.T) {
	utils.InitLogger()
	db := setupTestDB()
	router := setupAnnouncementRouter(db)
	event := seedAnnouncementFixture(t, db)

	// Buat draft
	w := doJSON(t, router, "POST", "/announcements", map[string]interface{}{
		"event_id": event.ID,
		"title":    "Save the date",
		"message":  "More info soon",
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	annID := int(resp["data"].(map[string]interface{})["announcement_id"].(float64))

	// Jadwalkan
	w = doJSON(t, router, "PATCH", "/announcements/"+strconv.Itoa(annID), map[string]interface{}{
		"status":       "scheduled",
		"scheduled_at": "2099-01-01T00:00:00Z",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	var ann models.Announcement
	assert.NoError(t, db.First(&ann, annID).Error)
	assert.Equal(t, "Scheduled", ann.Status)

	// Belum ada fan-out
	var count int64
	db.Model(&models.Notification{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestUpdateAnnouncementNotFoundReturns404(t *testing.T) {
	utils.InitLogger()
	db := setupTestDB()
	router := setupAnnouncementRouter(db)

	w := doJSON(t, router, "PATCH", "/announcements/99999", map[string]interface{}{
		"title": "Ghost",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSendNowUnknownEventTitle(t *testing.T) {
	utils.InitLogger()
	db := setupTestDB()
	router := setupAnnouncementRouter(db)

	w := doJSON(t, router, "POST", "/announcements/send", map[string]interface{}{
		"event_title": "Nonexistent Event",
		"title":       "Hello",
		"message":     "Anyone?",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, float64(0), data["inserted"])
	assert.Equal(t, float64(0), data["requested"])
}

func TestListAnnouncementsView(t *testing.T) {
	utils.InitLogger()
	db := setupTestDB()
	router := setupAnnouncementRouter(db)
	event := seedAnnouncementFixture(t, db)

	w := doJSON(t, router, "POST", "/announcements/send", map[string]interface{}{
		"event_id": event.ID,
		"title":    "Visible",
		"message":  "In the list view",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, "GET", "/announcements", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	views := resp["data"].([]interface{})
	assert.Len(t, views, 1)

	view := views[0].(map[string]interface{})
	assert.Equal(t, "Visible", view["title"])
	assert.Equal(t, "sent", view["status"])
	assert.Equal(t, float64(2), view["recipients"])
	assert.Equal(t, "Launch Party", view["event_title"])
}

func TestClearAnnouncements(t *testing.T) {
	utils.InitLogger()
	db := setupTestDB()
	router := setupAnnouncementRouter(db)
	event := seedAnnouncementFixture(t, db)

	for i := 0; i < 2; i++ {
		w := doJSON(t, router, "POST", "/announcements", map[string]interface{}{
			"event_id": event.ID,
			"title":    "Bulk " + strconv.Itoa(i),
			"message":  "m",
		})
		assert.Equal(t, http.StatusCreated, w.Code)
	}

	w := doJSON(t, router, "DELETE", "/admin/announcements", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, float64(2), resp["data"].(map[string]interface{})["deleted"])
}
