package routes

import (
	"rya_attendance_backend/handlers"
	"rya_attendance_backend/metrics"
	"rya_attendance_backend/middleware"
	"rya_attendance_backend/store"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type Dependencies struct {
	Sessions     *store.Sessions
	Storage      handlers.Pinger
	Secret       *middleware.SecretAuthorizer
	TokenService *middleware.TokenService
	Metrics      *metrics.Metrics
	Gatherer     prometheus.Gatherer
	Logger       *zap.Logger
}

// SetupRoutes configures all the routes for the application
func SetupRoutes(r *gin.Engine, deps Dependencies) {
	// Initialize handlers
	sessionHandler := handlers.NewSessionHandler(deps.Sessions, deps.Metrics, deps.Logger)
	attendanceHandler := handlers.NewAttendanceHandler(deps.Metrics, deps.Logger)
	exportHandler := handlers.NewExportHandler(deps.Logger)
	authHandler := handlers.NewAuthHandler(deps.Secret, deps.TokenService, deps.Logger)
	healthHandler := handlers.NewHealthHandler(deps.Storage)

	// Public routes
	r.GET("/health", healthHandler.HealthCheck)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	r.POST("/admin/login", authHandler.AdminLogin)
	r.POST("/session", sessionHandler.CreateSession)

	// Session routes
	session := r.Group("/")
	session.Use(sessionHandler.SessionMiddleware())
	{
		session.GET("/session", sessionHandler.GetSession)
		session.PUT("/session/day", sessionHandler.SelectDay)
		session.POST("/session/persist", sessionHandler.PersistSession)
		session.DELETE("/session", sessionHandler.CloseSession)

		session.GET("/days", attendanceHandler.GetDays)
		session.GET("/attendees", attendanceHandler.GetAttendees)
		session.GET("/progress", attendanceHandler.GetProgress)
		session.POST("/attendees/:id/checkin", attendanceHandler.CheckIn)

		// Admin gated inside the store
		session.POST("/days/:day/reset", attendanceHandler.ResetDay)

		session.GET("/export.xlsx", exportHandler.ExportAttendance)
	}
}
