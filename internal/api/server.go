package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/safebase/safebase/internal/api/handler"
	"github.com/safebase/safebase/internal/api/middleware"
	"github.com/safebase/safebase/internal/core/service"
	"github.com/safebase/safebase/pkg/config"
	"go.uber.org/zap"
)

type Server struct {
	router *gin.Engine
	srv    *http.Server
	config *config.Config
	logger *zap.Logger
}

// NewServer creates a new API server
func NewServer(
	cfg *config.Config,
	authService *service.AuthService,
	databaseService *service.DatabaseService,
	backupService *service.BackupService,
	scheduleService *service.ScheduleService,
	alertService *service.AlertService,
	statsService *service.StatsService,
	logger *zap.Logger,
) *Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.ErrorHandlerMiddleware(logger))
	router.Use(middleware.CORSMiddleware(cfg.CORSOrigins))

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService)
	databaseHandler := handler.NewDatabaseHandler(databaseService)
	backupHandler := handler.NewBackupHandler(backupService)
	scheduleHandler := handler.NewScheduleHandler(scheduleService)
	alertHandler := handler.NewAlertHandler(alertService)
	statsHandler := handler.NewStatsHandler(statsService)

	authMiddleware := middleware.AuthMiddleware(authService)

	// Auth: register and login are the only unauthenticated routes
	auth := router.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.GET("/me", authMiddleware, authHandler.Me)
		auth.PUT("/profile", authMiddleware, authHandler.UpdateProfile)
		auth.PUT("/password", authMiddleware, authHandler.ChangePassword)
	}

	// Database connections
	databases := router.Group("/databases")
	databases.Use(authMiddleware)
	{
		databases.GET("", databaseHandler.ListDatabases)
		databases.POST("", databaseHandler.CreateDatabase)
		databases.GET("/:id", databaseHandler.GetDatabase)
		databases.PUT("/:id", databaseHandler.UpdateDatabase)
		databases.DELETE("/:id", databaseHandler.DeleteDatabase)
	}

	// Backups
	backups := router.Group("/backups")
	backups.Use(authMiddleware)
	{
		backups.GET("", backupHandler.ListBackups)
		backups.POST("/manual", backupHandler.CreateManualBackup)
		backups.GET("/:id", backupHandler.GetBackup)
		backups.POST("/:id/restore", backupHandler.RestoreBackup)
	}

	// Schedules
	schedules := router.Group("/schedules")
	schedules.Use(authMiddleware)
	{
		schedules.GET("", scheduleHandler.ListSchedules)
		schedules.POST("", scheduleHandler.CreateSchedule)
		schedules.GET("/:id", scheduleHandler.GetSchedule)
		schedules.PUT("/:id", scheduleHandler.UpdateSchedule)
		schedules.DELETE("/:id", scheduleHandler.DeleteSchedule)
		schedules.POST("/:id/execute", scheduleHandler.ExecuteSchedule)
	}

	// Alerts
	alerts := router.Group("/alerts")
	alerts.Use(authMiddleware)
	{
		alerts.GET("", alertHandler.ListAlerts)
		alerts.GET("/unread-count", alertHandler.UnreadCount)
		alerts.PUT("/:id/read", alertHandler.MarkRead)
		alerts.PUT("/read-all", alertHandler.MarkAllRead)
	}

	// Dashboard stats
	router.GET("/stats", authMiddleware, statsHandler.GetStats)

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	return &Server{
		router: router,
		config: cfg,
		logger: logger,
	}
}

// Router exposes the underlying handler, used by tests
func (s *Server) Router() http.Handler {
	return s.router
}

// Start starts the HTTP server and blocks until it stops
func (s *Server) Start() error {
	addr := s.config.ListenAddr()

	s.srv = &http.Server{
		Addr:           addr,
		Handler:        s.router,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   15 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20, // 1 MB
	}

	s.logger.Info("http server listening", zap.String("addr", addr))
	return s.srv.ListenAndServe()
}

// Shutdown gracefully stops the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}
