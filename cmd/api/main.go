package main

import (
	"log"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/goalkeeperkaa-ctrl/Kinozritel-main4/internal/auth"
	"github.com/goalkeeperkaa-ctrl/Kinozritel-main4/internal/config"
	"github.com/goalkeeperkaa-ctrl/Kinozritel-main4/internal/handlers"
	"github.com/goalkeeperkaa-ctrl/Kinozritel-main4/internal/services"
	"github.com/goalkeeperkaa-ctrl/Kinozritel-main4/internal/store"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	zapLogger, err := zap.NewProduction()
	if err != nil {
		log.Fatal("failed to build logger:", err)
	}
	defer zapLogger.Sync()
	logger := zapLogger.Sugar()

	cfg := config.Load(logger)

	var st store.Store
	if cfg.UsePostgres() {
		st, err = store.NewPostgresStore(cfg.DatabaseURL, logger)
	} else {
		st, err = store.NewFileStore(cfg.DataFile, logger)
	}
	if err != nil {
		logger.Fatalw("failed to initialize store", "error", err)
	}

	applicationService := services.NewApplicationService(st, cfg.DefaultAssignee, logger)
	syncService := services.NewSyncService(cfg.ExcelWebhookURL, cfg.ExcelWorkbookURL, logger)
	authService := auth.NewService(cfg.JWTSecret, cfg.JWTTTL, cfg.AdminUsers, logger)

	applicationHandler := handlers.NewApplicationHandler(applicationService, syncService, cfg.DefaultAssignee, logger)
	authHandler := handlers.NewAuthHandler(authService, logger)

	r := gin.Default()
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	r.Use(cors.New(corsConfig))

	api := r.Group("/api")
	{
		api.GET("/health", handlers.HealthCheck)

		api.POST("/auth/login", authHandler.Login)
		api.GET("/auth/me", authService.RequireAuth(), authHandler.Me)

		api.POST("/public/applications", applicationHandler.Create)

		admin := api.Group("/admin", authService.RequireAuth())
		{
			admin.GET("/meta", applicationHandler.Meta)
			admin.GET("/applications", applicationHandler.List)
			admin.GET("/applications/:id", applicationHandler.Get)
			admin.PATCH("/applications/:id", authService.RequireAdmin(), applicationHandler.Update)
			admin.POST("/applications/:id/contact", authService.RequireAdmin(), applicationHandler.Contact)
			admin.GET("/export.csv", authService.RequireAdmin(), applicationHandler.ExportCSV)
		}
	}

	logger.Infow("server starting", "port", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Fatalw("server failed", "error", err)
	}
}
