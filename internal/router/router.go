package router

import (
	"net/http"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/kgsuhu13-code/Sibentik-Exam-sub001/internal/config"
	"github.com/kgsuhu13-code/Sibentik-Exam-sub001/internal/handler"
	"github.com/kgsuhu13-code/Sibentik-Exam-sub001/internal/middleware"
	"github.com/kgsuhu13-code/Sibentik-Exam-sub001/internal/response"
	"github.com/kgsuhu13-code/Sibentik-Exam-sub001/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Session *handler.SessionHandler
	Monitor *handler.MonitorHandler
	WS      *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// If AllowedOrigins is set in config, restrict to that list; otherwise
	// allow all (*) so dev works without extra config.
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

	// Request ID middleware runs globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	router.Use(middleware.Brotli(brotli.DefaultCompression))

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// The token gate and the violation endpoint are the two routes a
	// misbehaving client can hammer; everything else is naturally paced.
	gateLimiter := middleware.NewRateLimiter(15, time.Minute)
	violationLimiter := middleware.NewRateLimiter(30, time.Minute)

	studentAPI := router.Group("/api/v1/student")
	studentAPI.Use(middleware.RequireStudentJWT(authService))
	{
		studentAPI.POST("/exams/:exam_id/verify-token", gateLimiter.Middleware(), handlers.Session.VerifyToken)
		studentAPI.GET("/exams/:exam_id/take", handlers.Session.TakeExam)
		studentAPI.PUT("/exams/:exam_id/submit", handlers.Session.SubmitProgress)
		studentAPI.POST("/exams/:exam_id/violation", violationLimiter.Middleware(), handlers.Session.ReportViolation)
	}

	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireStudentWSAuth(authService))
	{
		ws.GET("/student/exams/:exam_id/stream", handlers.WS.SessionStream)
	}

	teacherAPI := router.Group("/api/v1/teacher")
	teacherAPI.Use(middleware.RequireTeacherJWT(authService))
	{
		teacherAPI.GET("/exams/:exam_id/monitor", handlers.Monitor.GetSnapshot)
		teacherAPI.POST("/exams/:exam_id/monitor/:student_id/finish", handlers.Monitor.ForceFinish)
		teacherAPI.POST("/exams/:exam_id/reset", handlers.Monitor.ResetSession)
		teacherAPI.POST("/exams/:exam_id/unlock-student", handlers.Monitor.UnlockStudent)
		teacherAPI.POST("/exams/:exam_id/score/:student_id", handlers.Monitor.SubmitScore)
	}

	return router
}
