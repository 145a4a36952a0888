package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hydrUsD/BetterBudgeter-sub001/internal/models"
)

type TransactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// Expose DB if needed
func (r *TransactionRepository) DB() *gorm.DB {
	return r.db
}

func (r *TransactionRepository) FindByExternalID(ctx context.Context, externalID string) (*models.TransactionRecord, error) {
	var rec models.TransactionRecord
	err := r.db.WithContext(ctx).First(&rec, "external_id = ?", externalID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup transaction %s: %w", externalID, err)
	}
	return &rec, nil
}

func (r *TransactionRepository) Insert(ctx context.Context, rec *models.TransactionRecord) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		return fmt.Errorf("insert transaction %s: %w", rec.ExternalID, err)
	}
	return nil
}

// UpdateSourced refreshes the provider-sourced columns for the row with
// rec's external id. A single UPDATE keyed on external_id, so concurrent
// importers serialize on the row lock. User-owned columns are never listed.
func (r *TransactionRepository) UpdateSourced(ctx context.Context, rec *models.TransactionRecord) error {
	res := r.db.WithContext(ctx).Model(&models.TransactionRecord{}).
		Where("external_id = ?", rec.ExternalID).
		Updates(map[string]interface{}{
			"transaction_date": rec.Date,
			"amount":           rec.Amount,
			"currency":         rec.Currency,
			"description":      rec.Description,
			"category":         rec.Category,
			"type":             rec.Type,
		})
	if res.Error != nil {
		return fmt.Errorf("update transaction %s: %w", rec.ExternalID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("no transaction found with external id: %s", rec.ExternalID)
	}
	return nil
}

func (r *TransactionRepository) ListByAccount(ctx context.Context, accountID string) ([]models.TransactionRecord, error) {
	var recs []models.TransactionRecord
	err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("transaction_date ASC, external_id ASC").
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("list transactions for %s: %w", accountID, err)
	}
	return recs, nil
}
