package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/formpulse/formpulse-backend/internal/handlers"
	"github.com/formpulse/formpulse-backend/internal/middleware"
)

type RouterConfig struct {
	RequestLogger   *middleware.RequestLogger
	SettingsHandler *handlers.SettingsHandler
	ReportHandler   *handlers.ReportHandler
	ChartHandler    *handlers.ChartHandler
	ProgressHandler *handlers.ProgressHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	if cfg.RequestLogger != nil {
		router.Use(cfg.RequestLogger.Handler())
	}

	// Cors
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:80",
			"http://localhost:3000",
			"http://localhost:5174",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", handlers.HealthCheck)

	api := router.Group("/api")
	{
		// Settings
		api.GET("/surveys/:surveyID/settings", cfg.SettingsHandler.GetSettings)
		api.PUT("/surveys/:surveyID/settings", cfg.SettingsHandler.SaveSettings)
		api.DELETE("/surveys/:surveyID/settings", cfg.SettingsHandler.ResetSettings)
		api.GET("/surveys/:surveyID/questions/:questionID/settings", cfg.SettingsHandler.ResolveQuestionSettings)
		// Reports
		api.POST("/surveys/:surveyID/reports", cfg.ReportHandler.GenerateReport)
		api.GET("/surveys/:surveyID/reports", cfg.ReportHandler.ListReports)
		api.GET("/surveys/:surveyID/reports/progress", cfg.ProgressHandler.StreamProgress)
		api.GET("/reports/:reportID", cfg.ReportHandler.GetReport)
		api.GET("/reports/:reportID/download", cfg.ReportHandler.DownloadReport)
		api.DELETE("/reports/:reportID", cfg.ReportHandler.DeleteReport)
		// Charts
		api.POST("/charts/render", cfg.ChartHandler.RenderChart)
	}

	return router
}
