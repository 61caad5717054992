package main

import (
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/yeremiapane/projectdesk-app/config"
	"github.com/yeremiapane/projectdesk-app/middlewares"
	"github.com/yeremiapane/projectdesk-app/models"
	"github.com/yeremiapane/projectdesk-app/router"
	"github.com/yeremiapane/projectdesk-app/services"
	"github.com/yeremiapane/projectdesk-app/utils"
	"gorm.io/gorm"
)

func main() {
	// Load .env
	if err := godotenv.Load(); err == nil {
		utils.InitLogger()
		utils.InfoLogger.Println("Loaded .env file")
	} else {
		utils.InitLogger()
		utils.InfoLogger.Println("Warning: .env file not found")
	}

	// Initialize DB
	db, err := config.InitDB()
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}

	// Simpan koneksi database untuk dipakai di controller
	utils.InitDB(db)

	// Set gin mode
	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	autoMigrate(db)

	// Rangkai pipeline notifikasi
	resolver := services.NewRecipientResolver(db)
	store := services.NewNotificationStore(db)
	mailer := services.NewLogMailer(getEnv("MAIL_FROM", "projectdesk@example.com"))

	scheduler := services.NewWorkflowScheduler(db, resolver, store, mailer, config.AggregationWindow())
	scheduler.Start()
	defer scheduler.Stop()

	calc, err := services.NewTimeSlotCalculator(nil)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to load reminder time zones: %v", err)
	}
	matcher := services.NewReminderMatcher(db, store, resolver, mailer, calc)
	matcher.Start()
	defer matcher.Stop()

	// Setup rate limiter (50 requests per second per IP)
	rateLimiter := middlewares.NewRateLimiter(50, 1)

	// Setup router
	r := router.SetupRouter(db, store, scheduler)
	r.Use(rateLimiter.RateLimit())

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
		&models.Project{},
		&models.Member{},
		&models.WorkPackage{},
		&models.Journal{},
		&models.Notification{},
		&models.NotificationSetting{},
		&models.UserReminderConfig{},
		&models.ScheduledWorkflow{},
	)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to AutoMigrate: %v", err)
	}
	utils.InfoLogger.Println("AutoMigrate completed.")
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
