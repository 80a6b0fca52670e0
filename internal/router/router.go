package router

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"dealradar/internal/handler/api"
	"dealradar/internal/middleware"
	"dealradar/internal/repository"
	"dealradar/internal/scheduler"
)

// Setup configures all routes for the Echo server.
func Setup(
	e *echo.Echo,
	db *gorm.DB,
	sched *scheduler.Scheduler,
	recurrence *scheduler.Recurrence,
	runDeduper middleware.RunDeduper,
	logger *zap.Logger,
	apiKey string,
) {
	// Global middleware
	e.Use(echomw.Recover())
	e.Use(middleware.CORS())

	repos := &api.Repos{
		Job:     repository.NewScrapeJobRepository(db),
		Product: repository.NewProductRepository(db),
		Setting: repository.NewSettingRepository(db),
	}

	jobHandler := api.NewJobHandler(repos, sched, recurrence, runDeduper, logger)
	productHandler := api.NewProductHandler(repos, logger)
	settingsHandler := api.NewSettingsHandler(repos, logger)

	apiGroup := e.Group("/api")
	apiGroup.Use(middleware.APIAuth(apiKey))

	apiGroup.POST("/jobs", jobHandler.Handle)
	apiGroup.GET("/jobs", jobHandler.Handle)
	apiGroup.POST("/products", productHandler.Handle)
	apiGroup.GET("/products", productHandler.Handle)
	apiGroup.POST("/settings", settingsHandler.Handle)
	apiGroup.GET("/settings", settingsHandler.Handle)

	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})
}
