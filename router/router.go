package router

import (
	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/projectdesk-app/controllers"
	"github.com/yeremiapane/projectdesk-app/middlewares"
	"github.com/yeremiapane/projectdesk-app/services"
	"gorm.io/gorm"
)

func SetupRouter(db *gorm.DB, store *services.NotificationStore, scheduler *services.WorkflowScheduler) *gin.Engine {
	r := gin.Default()

	// Apply security middlewares
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares())
	r.Use(middlewares.LoggerMiddleware())

	// Inisialisasi controller
	userCtrl := controllers.NewUserController(db)
	notificationCtrl := controllers.NewNotificationController(db, store)
	projectCtrl := controllers.NewProjectController(db)
	wpCtrl := controllers.NewWorkPackageController(db, scheduler)

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

	// Endpoint WebSocket notifikasi (token lewat query param)
	r.GET("/notifications/ws",
		middlewares.WebSocketAuthMiddleware(),
		controllers.NotificationStreamHandler)

	// ----------------------------------------------------------------
	//                      PROTECTED ROUTES
	// ----------------------------------------------------------------
	auth := r.Group("/")
	auth.Use(middlewares.AuthMiddleware())
	{
		auth.POST("/logout", userCtrl.Logout)
		auth.GET("/profile", userCtrl.GetProfile)

		auth.GET("/notifications", notificationCtrl.GetMyNotifications)
		auth.GET("/notifications/unread_count", notificationCtrl.GetUnreadCount)
		auth.PATCH("/notifications/:notif_id/read", notificationCtrl.MarkRead)
		auth.PATCH("/notifications/read_all", notificationCtrl.MarkAllRead)

		// Administrasi project hanya untuk admin
		admin := auth.Group("/")
		admin.Use(middlewares.AdminOnly())
		{
			admin.POST("/projects", projectCtrl.CreateProject)
			admin.POST("/projects/:project_id/members", projectCtrl.AddMember)
		}

		auth.POST("/work_packages", wpCtrl.CreateWorkPackage)
		auth.GET("/work_packages/:wp_id", wpCtrl.GetWorkPackage)
		auth.POST("/work_packages/:wp_id/comments", wpCtrl.AddComment)
		auth.POST("/work_packages/:wp_id/watch", wpCtrl.AddWatcher)
	}

	return r
}
