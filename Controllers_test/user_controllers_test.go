package Controllers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/evenzahq/evenza-backend/controllers"
	"github.com/evenzahq/evenza-backend/models"
	"github.com/evenzahq/evenza-backend/utils"
)

// setupTestDB menggunakan SQLite in-memory untuk testing
func setupTestDB() *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		panic("failed to connect database")
	}

	// AutoMigrate semua model yang diperlukan
	err = db.AutoMigrate(
		&models.User{},
		&models.Event{},
		&models.Registration{},
		&models.Ticket{},
		&models.Announcement{},
		&models.Notification{},
		&models.Review{},
		&models.SavedEvent{},
	)
	if err != nil {
		panic(err)
	}

	return db
}

// setupRouterForTest mengonfigurasi router dengan endpoint yang akan diuji
func setupRouterForTest(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.Default()

	userCtrl := controllers.NewUserController(db)
	router.POST("/register", userCtrl.Register)
	router.POST("/login", userCtrl.Login)

	return router
}

// authAs men-stub context auth untuk testing controller terproteksi
func authAs(userID uint, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Set("role", role)
		c.Next()
	}
}

func doJSON(t *testing.T, router *gin.Engine, method, url string, payload interface{}) *httptest.ResponseRecorder {
	var body *bytes.Buffer
	if payload != nil {
		b, err := json.Marshal(payload)
		assert.NoError(t, err)
		body = bytes.NewBuffer(b)
	} else {
		body = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequest(method, url, body)
	assert.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRegisterAndLogin(t *testing.T) {
	utils.InitLogger()

	db := setupTestDB()
	router := setupRouterForTest(db)

	// --- Test Register User ---
	w := doJSON(t, router, "POST", "/register", map[string]string{
		"name":     "Test User",
		"email":    "test@example.com",
		"password": "password123",
		"role":     "organizer",
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	var registerResponse map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &registerResponse)
	assert.NoError(t, err)
	assert.Equal(t, true, registerResponse["status"])
	data := registerResponse["data"].(map[string]interface{})
	assert.NotNil(t, data["user_id"])

	// --- Test Login User ---
	w = doJSON(t, router, "POST", "/login", map[string]string{
		"email":    "test@example.com",
		"password": "password123",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	var loginResponse map[string]interface{}
	err = json.Unmarshal(w.Body.Bytes(), &loginResponse)
	assert.NoError(t, err)
	assert.Equal(t, true, loginResponse["status"])
	data = loginResponse["data"].(map[string]interface{})
	token, ok := data["token"].(string)
	assert.True(t, ok)
	assert.NotEmpty(t, token)
	assert.Equal(t, "organizer", data["user_role"])
}

func TestLoginWrongPassword(t *testing.T) {
	utils.InitLogger()

	db := setupTestDB()
	router := setupRouterForTest(db)

	w := doJSON(t, router, "POST", "/register", map[string]string{
		"name":     "Test User",
		"email":    "test@example.com",
		"password": "password123",
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, router, "POST", "/login", map[string]string{
		"email":    "test@example.com",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRegisterRejectsUnknownRole(t *testing.T) {
	utils.InitLogger()

	db := setupTestDB()
	router := setupRouterForTest(db)

	w := doJSON(t, router, "POST", "/register", map[string]string{
		"name":     "Test User",
		"email":    "test@example.com",
		"password": "password123",
		"role":     "superuser",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
