package main

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/hydrUsD/BetterBudgeter-sub001/internal/config"
	"github.com/hydrUsD/BetterBudgeter-sub001/internal/logger"
	"github.com/hydrUsD/BetterBudgeter-sub001/internal/models"
	"github.com/hydrUsD/BetterBudgeter-sub001/internal/routes"
)

func main() {
	log := logger.New()

	// Load .env
	if err := godotenv.Load(); err != nil {
		log.Info().Msg("no .env file found, relying on system env")
	}

	cfg := config.Load()

	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize database")
	}

	if err := db.AutoMigrate(
		&models.TransactionRecord{},
		&models.ImportBatch{},
	); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	r := gin.Default()
	// CORS config
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.CORSOrigin},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterRoutes(r, db, log)

	log.Info().Str("port", cfg.Port).Msg("starting server")
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}
