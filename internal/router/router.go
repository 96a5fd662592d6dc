package router

import (
	"net/http"
	"time"

	"github.com/brightclass/brightclass-backend/internal/config"
	"github.com/brightclass/brightclass-backend/internal/handler"
	"github.com/brightclass/brightclass-backend/internal/middleware"
	"github.com/brightclass/brightclass-backend/internal/response"
	"github.com/brightclass/brightclass-backend/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth         *handler.AuthHandler
	Quiz         *handler.QuizHandler
	Notification *handler.NotificationHandler
	WS           *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// ─── 1. Auth Group (Public) ────────────────────────────────────────
	auth := router.Group("/api/v1/auth")
	{
		auth.POST("/teacher/login", handlers.Auth.TeacherLogin)
		auth.POST("/student/login", handlers.Auth.StudentLogin)
		auth.GET("/me", middleware.RequireAnyJWT(authService), handlers.Auth.Me)
	}

	// ─── 2. Teacher Group (Teacher JWT) ────────────────────────────────
	teacherAPI := router.Group("/api/v1/teacher")
	teacherAPI.Use(middleware.RequireTeacherJWT(authService))
	{
		teacherAPI.GET("/quizzes", handlers.Quiz.List)
		teacherAPI.POST("/quizzes", handlers.Quiz.Create)
		teacherAPI.GET("/quizzes/stats", handlers.Quiz.Stats)
		teacherAPI.POST("/quizzes/generate", handlers.Quiz.Generate)
		teacherAPI.GET("/quizzes/:quiz_id", handlers.Quiz.Get)
		teacherAPI.PUT("/quizzes/:quiz_id", handlers.Quiz.Update)
		teacherAPI.DELETE("/quizzes/:quiz_id", handlers.Quiz.Delete)
		teacherAPI.POST("/quizzes/:quiz_id/schedule", handlers.Quiz.Schedule)
		teacherAPI.POST("/quizzes/:quiz_id/close", handlers.Quiz.Close)
		teacherAPI.GET("/quizzes/:quiz_id/results", handlers.Quiz.Results)
	}

	// ─── 3. Student Group (Student JWT) ────────────────────────────────
	studentAPI := router.Group("/api/v1/student")
	studentAPI.Use(middleware.RequireStudentJWT(authService))
	{
		studentAPI.GET("/quizzes", handlers.Quiz.ListForStudent)
		studentAPI.POST("/quizzes/:quiz_id/submit", handlers.Quiz.Submit)
		studentAPI.GET("/quizzes/:quiz_id/feedback", handlers.Quiz.Feedback)
	}

	// ─── 4. Notifications (Either Role) ────────────────────────────────
	notifAPI := router.Group("/api/v1/notifications")
	notifAPI.Use(middleware.RequireAnyJWT(authService))
	{
		notifAPI.GET("", handlers.Notification.List)
		notifAPI.POST("/read-all", handlers.Notification.MarkAllRead)
		notifAPI.POST("/:notification_id/read", handlers.Notification.MarkRead)
		notifAPI.DELETE("/:notification_id", handlers.Notification.Delete)
	}

	// ─── 5. WebSocket Group ────────────────────────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireAnyJWT(authService))
	{
		ws.GET("/notifications/stream", handlers.WS.NotificationStream)
	}

	return router
}
