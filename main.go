// @title Exam Portal API
// @version 1.0
// @description Backend server for the online examination portal.

// @host localhost:8080
// @BasePath /api
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization

package main

import (
	"exam_portal_backend/internal/app"
	"exam_portal_backend/internal/config"
	"exam_portal_backend/pkg/configwatcher"
	"exam_portal_backend/pkg/logger"
	"flag"
	"log"

	"go.uber.org/zap"
)

func main() {
	migrateOnly := flag.Bool("migrate-only", false, "run database migration and exit")
	migrate := flag.Bool("migrate", false, "force database migration on startup, even in release mode")
	flag.Parse()

	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	cfg.ForceMigrate = *migrate || *migrateOnly
	cfg.MigrateOnly = *migrateOnly

	application := app.NewApp(cfg)
	defer logger.Log.Sync()

	if *migrateOnly {
		log.Println("Database migration completed, exiting")
		return
	}

	go configwatcher.WatchConfig("configs", func(newCfg *config.Config) {
		logger.Log.Info("config file changed, reloaded",
			zap.Strings("cors_allowed_origins", newCfg.CORS.AllowedOrigins))
	})

	application.Run()
}
