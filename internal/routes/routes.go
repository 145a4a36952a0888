package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	handler "github.com/hydrUsD/BetterBudgeter-sub001/internal/handlers"
	"github.com/hydrUsD/BetterBudgeter-sub001/internal/mockbank"
	"github.com/hydrUsD/BetterBudgeter-sub001/internal/repository"
	service "github.com/hydrUsD/BetterBudgeter-sub001/internal/services/importer"
)

func RegisterRoutes(r *gin.Engine, db *gorm.DB, logger zerolog.Logger) {
	txStore := repository.NewTransactionRepository(db)
	batchStore := repository.NewImportBatchRepository(db)
	catalog := mockbank.NewCatalog()

	importService := service.NewService(txStore, batchStore, catalog, logger)

	mockHandler := handler.NewMockDataHandler(catalog)
	importHandler := handler.NewImportHandler(importService, logger)

	api := r.Group("/api")

	// Health check
	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Mock PSD2 provider + import pipeline
	mock := api.Group("/mock")
	mock.GET("/banks", mockHandler.GetBanks)
	mock.GET("/transactions", mockHandler.GetTransactions)
	mock.POST("/import", importHandler.Import)
	mock.POST("/sync", importHandler.Sync)
	mock.GET("/imports/:batchId", importHandler.GetImportBatch)
}
