package router

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/evenzahq/evenza-backend/controllers"
	"github.com/evenzahq/evenza-backend/middlewares"
)

func SetupRouter(db *gorm.DB) *gin.Engine {
	r := gin.Default()

	// Apply security middlewares
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares())
	r.Use(middlewares.LoggerMiddleware())

	// Rate limiter global per IP, dipasang sebelum route didaftarkan
	r.Use(middlewares.NewRateLimiter(50, 1).RateLimit())

	// Inisialisasi controller
	userCtrl := controllers.NewUserController(db)
	eventCtrl := controllers.NewEventController(db)
	regCtrl := controllers.NewRegistrationController(db)
	announcementCtrl := controllers.NewAnnouncementController(db)
	notificationCtrl := controllers.NewNotificationController(db)
	reviewCtrl := controllers.NewReviewController(db)
	savedCtrl := controllers.NewSavedEventController(db)

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	// Rate limiter untuk login/register
	public := r.Group("/")
	public.Use(middlewares.NewStrictRateLimiter())
	{
		public.POST("/register", userCtrl.Register)
		public.POST("/login", userCtrl.Login)
	}

	// Lihat event dan review tanpa login
	r.GET("/events", eventCtrl.GetAllEvents)
	r.GET("/events/:event_id", eventCtrl.GetEventByID)
	r.GET("/events/:event_id/reviews", reviewCtrl.GetEventReviews)

	// Announcement view publik (agregasi notifications)
	r.GET("/announcements", announcementCtrl.GetAllAnnouncements)

	// ----------------------------------------------------------------
	//                      AUTHENTICATED ROUTES
	// ----------------------------------------------------------------
	auth := r.Group("/")
	auth.Use(middlewares.AuthMiddleware())

	auth.GET("/profile", userCtrl.GetProfile)
	auth.POST("/logout", userCtrl.Logout)
	auth.GET("/users", userCtrl.GetAllUsers)

	// EVENTS (organizer/admin)
	organizer := auth.Group("/")
	organizer.Use(middlewares.RequireRole("organizer"))
	{
		organizer.POST("/events", eventCtrl.CreateEvent)
		organizer.PATCH("/events/:event_id", eventCtrl.UpdateEvent)
		organizer.DELETE("/events/:event_id", eventCtrl.DeleteEvent)
		organizer.GET("/events/:event_id/attendees", regCtrl.GetEventAttendees)

		// ANNOUNCEMENTS (organizer/admin)
		organizer.POST("/announcements", announcementCtrl.CreateAnnouncement)
		organizer.PATCH("/announcements/:announcement_id", announcementCtrl.UpdateAnnouncement)
		organizer.POST("/announcements/send", announcementCtrl.SendAnnouncementNow)
	}

	// REGISTRATIONS
	auth.POST("/events/:event_id/register", regCtrl.RegisterForEvent)
	auth.DELETE("/registrations/:reg_id", regCtrl.CancelRegistration)
	auth.GET("/registrations", regCtrl.GetMyRegistrations)
	auth.GET("/tickets/:code", regCtrl.GetTicketByCode)

	// REVIEWS
	auth.POST("/events/:event_id/reviews", reviewCtrl.CreateReview)

	// SAVED EVENTS
	auth.POST("/events/:event_id/save", savedCtrl.SaveEvent)
	auth.DELETE("/events/:event_id/save", savedCtrl.UnsaveEvent)
	auth.GET("/saved-events", savedCtrl.GetMySavedEvents)

	// NOTIFICATIONS
	auth.GET("/notifications", notificationCtrl.GetMyNotifications)
	auth.PATCH("/notifications/:notif_id/read", notificationCtrl.MarkNotificationRead)

	// ADMIN
	admin := auth.Group("/admin")
	admin.Use(middlewares.RequireRole("admin"))
	{
		admin.DELETE("/announcements", announcementCtrl.ClearAnnouncements)
		admin.DELETE("/notifications", notificationCtrl.ClearNotifications)
	}

	return r
}
