package main

import (
	"fmt"
	"os"

	"github.com/formpulse/formpulse-backend/internal/clients/analytics"
	"github.com/formpulse/formpulse-backend/internal/clients/gcp"
	"github.com/formpulse/formpulse-backend/internal/clients/redis"
	"github.com/formpulse/formpulse-backend/internal/db"
	"github.com/formpulse/formpulse-backend/internal/handlers"
	"github.com/formpulse/formpulse-backend/internal/logger"
	"github.com/formpulse/formpulse-backend/internal/middleware"
	"github.com/formpulse/formpulse-backend/internal/report"
	"github.com/formpulse/formpulse-backend/internal/repos"
	"github.com/formpulse/formpulse-backend/internal/server"
	"github.com/formpulse/formpulse-backend/internal/services"
	"github.com/formpulse/formpulse-backend/internal/utils"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Env
	log.Info("Loading environment variables from main...")
	port := utils.GetEnv("PORT", "8080", log)
	themePath := utils.GetEnv("REPORT_THEME_PATH", "", log)
	chartFontPath := utils.GetEnv("CHART_FONT_PATH", "", log)

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Warn("Postgres auto migration failed", "error", err)
	}
	thePG := postgresService.DB()

	// Repos
	log.Info("Setting up Repos from main...")
	settingsRepo := repos.NewSurveySettingsRepo(thePG, log)
	artifactRepo := repos.NewReportArtifactRepo(thePG, log)

	// Clients
	log.Info("Setting up Clients from main...")
	analyticsClient, err := analytics.NewClient(log)
	if err != nil {
		log.Error("Could not init AnalyticsClient", "error", err)
		os.Exit(1)
	}
	bucketService, err := gcp.NewBucketService(log)
	if err != nil {
		log.Error("Could not init BucketService", "error", err)
		os.Exit(1)
	}
	progressBus, err := redis.NewProgressBus(log)
	if err != nil {
		log.Warn("Could not init ProgressBus, progress events disabled", "error", err)
		progressBus = nil
	}

	// Document pipeline
	theme, err := report.LoadTheme(themePath)
	if err != nil {
		log.Warn("Could not load theme, using defaults", "path", themePath, "error", err)
	}
	if theme.ChartFontPath == "" {
		theme.ChartFontPath = chartFontPath
	}
	rasterizer := report.NewRasterizer(log, theme.ChartFontPath)
	builder := report.NewBuilder(log, theme, rasterizer)

	// Services
	log.Info("Setting up Services from main...")
	settingsService := services.NewSettingsService(thePG, log, settingsRepo)
	reportService := services.NewReportService(
		thePG,
		log,
		analyticsClient,
		settingsService,
		builder,
		bucketService,
		progressBus,
		artifactRepo,
	)

	// Handlers
	settingsHandler := handlers.NewSettingsHandler(settingsService)
	reportHandler := handlers.NewReportHandler(reportService)
	chartHandler := handlers.NewChartHandler(rasterizer)
	progressHandler := handlers.NewProgressHandler(progressBus, log)
	requestLogger := middleware.NewRequestLogger(log)

	// Router
	router := server.NewRouter(server.RouterConfig{
		RequestLogger:   requestLogger,
		SettingsHandler: settingsHandler,
		ReportHandler:   reportHandler,
		ChartHandler:    chartHandler,
		ProgressHandler: progressHandler,
	})

	log.Info("Starting server", "port", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal("Server exited", "error", err)
	}
}
