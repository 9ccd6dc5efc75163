package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/evenzahq/evenza-backend/config"
	"github.com/evenzahq/evenza-backend/models"
	"github.com/evenzahq/evenza-backend/router"
	"github.com/evenzahq/evenza-backend/services"
	"github.com/evenzahq/evenza-backend/utils"
)

func init() {
	// Load .env di awal sebelum apapun
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or error loading: %v", err)
	}

	// Initialize logger
	utils.InfoLogger = logrus.New()
	utils.ErrorLogger = logrus.New()

	utils.InfoLogger.SetOutput(os.Stdout)
	utils.ErrorLogger.SetOutput(os.Stderr)

	utils.InfoLogger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
		ForceColors:   true,
	})
	utils.ErrorLogger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
		ForceColors:   true,
	})
}

func main() {
	// Initialize DB
	db, err := config.InitDB()
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}

	// Simpan koneksi database untuk dipakai lintas package
	utils.InitDB(db)

	// Set gin mode
	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	autoMigrate(db)

	// Scheduler announcement: promosi Scheduled -> Sent tiap interval
	scheduler := services.NewAnnouncementScheduler(db)
	scheduler.Interval = config.SweepInterval()
	scheduler.Start()
	defer scheduler.Stop()

	// Setup router
	r := router.SetupRouter(db)

	r.SetTrustedProxies([]string{"127.0.0.1", "localhost"})

	// Run server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	utils.InfoLogger.Printf("Listening on port %s", port)
	if err := r.Run(":" + port); err != nil {
		utils.ErrorLogger.Fatal(err)
	}
}

func autoMigrate(db *gorm.DB) {
	err := db.AutoMigrate(
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
		utils.ErrorLogger.Fatalf("Failed to AutoMigrate: %v", err)
	}
	utils.InfoLogger.Println("AutoMigrate completed.")
}
