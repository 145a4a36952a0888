package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hydrUsD/BetterBudgeter-sub001/internal/models"
)

type ImportBatchRepository struct {
	db *gorm.DB
}

func NewImportBatchRepository(db *gorm.DB) *ImportBatchRepository {
	return &ImportBatchRepository{db: db}
}

func (r *ImportBatchRepository) CreateBatch(ctx context.Context, batch *models.ImportBatch) error {
	if batch.ID == uuid.Nil {
		batch.ID = uuid.New()
	}
	if batch.StartedAt.IsZero() {
		batch.StartedAt = time.Now()
	}
	batch.Status = "processing"
	if err := r.db.WithContext(ctx).Create(batch).Error; err != nil {
		return fmt.Errorf("create import batch: %w", err)
	}
	return nil
}

func (r *ImportBatchRepository) FinishBatch(ctx context.Context, batch *models.ImportBatch) error {
	now := time.Now()
	batch.CompletedAt = &now
	batch.Status = "completed"
	err := r.db.WithContext(ctx).Model(&models.ImportBatch{}).
		Where("id = ?", batch.ID).
		Updates(map[string]interface{}{
			"inserted":      batch.Inserted,
			"updated":       batch.Updated,
			"skipped":       batch.Skipped,
			"failure_count": batch.FailureCount,
			"failures":      batch.Failures,
			"status":        batch.Status,
			"completed_at":  batch.CompletedAt,
		}).Error
	if err != nil {
		return fmt.Errorf("finish import batch %s: %w", batch.ID, err)
	}
	return nil
}

func (r *ImportBatchRepository) GetBatch(ctx context.Context, id uuid.UUID) (*models.ImportBatch, error) {
	var batch models.ImportBatch
	err := r.db.WithContext(ctx).First(&batch, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get import batch %s: %w", id, err)
	}
	return &batch, nil
}
